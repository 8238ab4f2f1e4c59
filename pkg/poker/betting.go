package poker

import (
	"context"
	"fmt"
)

// Community card tranches: 3 on the first reveal, then 1 per street. A hand
// has 4 betting loops before showdown.
const loopsPerHand = 4

// StartHand deals a new hand: a fresh deck from the deck service, 2 hole
// cards per player in join order, pot and loop state reset, betSize seeded
// with the ante. On deck-service failure the room is left entirely in its
// prior state.
func (r *Room) StartHand(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startHandLocked(ctx)
}

func (r *Room) startHandLocked(ctx context.Context) error {
	if r.destroyed {
		return ErrRoomNotFound
	}
	if r.phase == PhaseBetting {
		return ErrGameAlreadyStarted
	}
	if len(r.players) < 2 {
		return fmt.Errorf("cannot start hand: need at least 2 players, have %d", len(r.players))
	}

	// All deck-service work happens before any state is touched.
	handle, err := r.cfg.Dealer.NewDeck(ctx)
	if err != nil {
		r.log.Errorf("room %s: deck shuffle failed: %v", r.code, err)
		return fmt.Errorf("start hand: %w", err)
	}
	cards, err := r.cfg.Dealer.Draw(ctx, handle, 2*len(r.players))
	if err != nil {
		r.log.Errorf("room %s: hole card draw failed: %v", r.code, err)
		return fmt.Errorf("start hand: %w", err)
	}

	r.handNum++
	r.deckHandle = handle
	r.hands = make(map[string][]Card, len(r.players))
	for i, p := range r.players {
		p.resetForNewHand()
		r.hands[p.ID] = cards[2*i : 2*i+2]
	}
	r.communityCards = nil
	r.pot = 0
	r.betSize = r.cfg.Ante
	r.loopNum = 0
	r.turnIndex = 0
	r.aggressorIndex = 0
	r.phase = PhaseBetting

	r.log.Infof("room %s: hand %d dealt to %d players", r.code, r.handNum, len(r.players))

	r.publish(EventGameStarted, "", nil)
	r.publishRoomUpdate()
	for _, p := range r.players {
		r.publish(EventDealHand, p.ID, DealHandPayload{Cards: r.hands[p.ID]})
	}
	r.publish(EventUpdatePot, "", r.pot)
	r.publish(EventUpdateBetSize, "", r.betSize)
	r.publishTurn()
	return nil
}

// Call matches the current bet size. Checking is never permitted: a call
// that would move no chips is rejected.
func (r *Room) Call(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}

	toCall := r.betSize - p.Bet
	if toCall <= 0 {
		return ErrNothingToCall
	}
	if p.ChipBalance < toCall {
		return ErrInsufficientChips
	}

	p.ChipBalance -= toCall
	p.Bet += toCall
	r.pot += toCall
	p.HasActed = true

	r.publish(EventUpdatePot, "", r.pot)
	r.afterActionLocked()
	return nil
}

// Raise lifts the bet size to newBetSize, paying the call plus the raise in
// one contribution, and reopens the loop: every other player must act
// again.
func (r *Room) Raise(playerID string, newBetSize int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}

	if newBetSize <= r.betSize || newBetSize%r.cfg.BetStep != 0 {
		return ErrInvalidRaiseSize
	}
	toCall := r.betSize - p.Bet
	if toCall < 0 {
		toCall = 0
	}
	cost := toCall + (newBetSize - r.betSize)
	if p.ChipBalance < cost {
		return ErrInsufficientChips
	}

	p.ChipBalance -= cost
	p.Bet += cost
	r.pot += cost
	r.betSize = newBetSize

	// A raise always reopens the loop, however many players had already
	// acted.
	idx := r.playerIndexLocked(playerID)
	r.aggressorIndex = idx
	for _, other := range r.players {
		other.HasActed = other == p
	}

	r.publish(EventUpdateBetSize, "", r.betSize)
	r.publish(EventUpdatePot, "", r.pot)
	r.afterActionLocked()
	return nil
}

// Fold removes the player from the rest of the hand. If exactly one
// non-folded player remains the hand resolves immediately as a fold-out.
func (r *Room) Fold(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}

	p.Folded = true
	p.HasActed = true

	remaining := r.nonFoldedLocked()
	if len(remaining) == 1 {
		r.foldOutLocked(remaining[0])
		return nil
	}

	r.afterActionLocked()
	return nil
}

// actingPlayerLocked validates that playerID may act right now.
func (r *Room) actingPlayerLocked(playerID string) (*Player, error) {
	if r.destroyed {
		return nil, ErrRoomNotFound
	}
	if r.phase != PhaseBetting {
		return nil, ErrNoActiveHand
	}
	idx := r.playerIndexLocked(playerID)
	if idx < 0 {
		return nil, ErrNotInRoom
	}
	p := r.players[idx]
	if p.Folded {
		return nil, ErrAlreadyFolded
	}
	if idx != r.turnIndex {
		return nil, ErrNotYourTurn
	}
	if p.HasActed {
		return nil, ErrAlreadyActed
	}
	return p, nil
}

// afterActionLocked runs the loop-closure test and advances the turn. Must
// be called after every applied call/raise/fold.
func (r *Room) afterActionLocked() {
	next, ok := r.nextActionableLocked(r.turnIndex)

	if r.betsMatchedLocked() && r.allActedLocked() && r.returnsToAggressorLocked(next, ok) {
		r.closeLoopLocked()
		return
	}

	if !ok {
		// Nobody left who can act: the hand is effectively over. Run out
		// the remaining streets and go to showdown rather than loop
		// forever.
		r.runOutAndShowdownLocked()
		return
	}

	r.turnIndex = next
	r.publishRoomUpdate()
	r.publishTurn()
}

// betsMatchedLocked is closure condition (a): every non-folded player who
// can still act has matched betSize. All-in players keep their short
// contribution and are exempt.
func (r *Room) betsMatchedLocked() bool {
	for _, p := range r.players {
		if p.actionable() && p.Bet != r.betSize {
			return false
		}
	}
	return true
}

// allActedLocked is closure condition (b): every actionable player other
// than the current aggressor has acted since the loop last (re)opened.
func (r *Room) allActedLocked() bool {
	for i, p := range r.players {
		if i == r.aggressorIndex {
			continue
		}
		if p.actionable() && !p.HasActed {
			return false
		}
	}
	return true
}

// returnsToAggressorLocked is closure condition (c): the turn is about to
// come back around to the player who opened the loop. When the aggressor
// can no longer act (folded or all-in) the condition is vacuous.
func (r *Room) returnsToAggressorLocked(next int, ok bool) bool {
	if r.aggressorIndex >= len(r.players) || !r.players[r.aggressorIndex].actionable() {
		return true
	}
	return ok && next == r.aggressorIndex
}

// nextActionableLocked scans forward cyclically from the given index,
// skipping folded and zero-balance players, for at most one full lap.
func (r *Room) nextActionableLocked(from int) (int, bool) {
	n := len(r.players)
	for step := 1; step <= n; step++ {
		idx := (from + step) % n
		if r.players[idx].actionable() {
			return idx, true
		}
	}
	return 0, false
}

// firstActionableLocked finds the first actionable player in join order.
func (r *Room) firstActionableLocked() (int, bool) {
	for i, p := range r.players {
		if p.actionable() {
			return i, true
		}
	}
	return 0, false
}

// closeLoopLocked finishes the current betting loop: counters reset, the
// next street revealed, and the loop reopened from the top of the join
// order. After the final street the hand moves to showdown.
func (r *Room) closeLoopLocked() {
	r.loopNum++
	for _, p := range r.players {
		p.Bet = 0
		p.HasActed = false
	}
	r.betSize = 0

	r.publish(EventNewLoop, "", NewLoopPayload{LoopNum: r.loopNum})
	r.publish(EventUpdateBetSize, "", r.betSize)

	if r.loopNum >= loopsPerHand {
		r.showdownLocked()
		return
	}

	if err := r.revealStreetLocked(); err != nil {
		// Mid-hand deck loss: settle with what is on the table instead of
		// stalling the hand.
		r.log.Errorf("room %s: street reveal failed, settling early: %v", r.code, err)
		r.showdownLocked()
		return
	}

	// A betting loop needs at least two players who can respond to each
	// other. With everyone else all in, a lone actionable player has
	// nobody to bet against; the hand just runs out.
	if r.actionableCountLocked() < 2 {
		r.runOutAndShowdownLocked()
		return
	}
	next, _ := r.firstActionableLocked()
	r.turnIndex = next
	r.aggressorIndex = next
	r.publishRoomUpdate()
	r.publishTurn()
}

func (r *Room) actionableCountLocked() int {
	count := 0
	for _, p := range r.players {
		if p.actionable() {
			count++
		}
	}
	return count
}

// revealStreetLocked draws the next community tranche from the deck
// service: 3 cards after the first loop, 1 after each later loop.
func (r *Room) revealStreetLocked() error {
	n := 1
	if len(r.communityCards) == 0 {
		n = 3
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.DealTimeout)
	defer cancel()

	cards, err := r.cfg.Dealer.Draw(ctx, r.deckHandle, n)
	if err != nil {
		return err
	}
	r.communityCards = append(r.communityCards, cards...)
	r.publish(EventUpdateCommunityCards, "", r.communityCards)
	return nil
}

// runOutAndShowdownLocked reveals any remaining streets with no further
// betting and settles by showdown. All-in players stay in the hand and are
// evaluated like everyone else.
func (r *Room) runOutAndShowdownLocked() {
	for len(r.communityCards) < 5 {
		if err := r.revealStreetLocked(); err != nil {
			r.log.Errorf("room %s: run-out reveal failed, settling early: %v", r.code, err)
			break
		}
	}
	r.showdownLocked()
}
