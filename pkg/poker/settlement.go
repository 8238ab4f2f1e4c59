package poker

import (
	"context"
	"time"
)

// SettlementRecord describes one resolved hand, as reported to the
// settlement callback. Amount is the share credited to each listed winner;
// the first winner additionally receives any odd-split remainder.
type SettlementRecord struct {
	RoomCode  string
	HandNum   int
	Pot       int64
	WinnerIDs []string
	FoldOut   bool
}

// SettlementSink receives a record after every settled hand. Set via
// SetSettlementSink; the callback runs outside the room lock.
type SettlementSink func(SettlementRecord)

// SetSettlementSink installs the settlement callback. Pass nil to clear.
func (r *Room) SetSettlementSink(sink SettlementSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settleSink = sink
}

// foldOutLocked resolves the hand when a single non-folded player remains.
// The whole pot moves to that player without any hand evaluation.
func (r *Room) foldOutLocked(winner *Player) {
	amount := r.pot
	winner.ChipBalance += amount
	r.pot = 0
	r.phase = PhaseSettled

	r.log.Infof("room %s: hand %d fold-out, %s wins %d", r.code, r.handNum, winner.Name, amount)

	r.publish(EventRoundWinner, "", WinnerPayload{
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Amount:     amount,
		HandNum:    r.handNum,
	})
	r.publish(EventUpdatePot, "", r.pot)
	r.publishRoomUpdate()

	r.emitSettlementLocked(amount, []string{winner.ID}, true)
	r.scheduleNextHandLocked()
}

// showdownLocked evaluates every non-folded player's best five-card hand
// against the community cards and splits the pot among the lowest-scoring
// players. All-in players are evaluated like everyone else.
func (r *Room) showdownLocked() {
	r.phase = PhaseSettled

	type contender struct {
		p  *Player
		hv HandValue
	}
	var contenders []contender
	for _, p := range r.players {
		if p.Folded {
			continue
		}
		hv, err := r.cfg.Evaluator.Evaluate(r.hands[p.ID], r.communityCards)
		if err != nil {
			r.log.Warnf("room %s: skipping %s at showdown: %v", r.code, p.Name, err)
			continue
		}
		contenders = append(contenders, contender{p: p, hv: hv})
	}

	if len(contenders) == 0 {
		// No hand could be evaluated, usually a mid-hand deck loss before
		// five community cards were out. Refund the pot evenly rather than
		// carrying chips into the next hand. Zero scores make every
		// non-folded player a winner below.
		r.log.Warnf("room %s: hand %d had no evaluable hands, refunding pot %d", r.code, r.handNum, r.pot)
		for _, p := range r.players {
			if !p.Folded {
				contenders = append(contenders, contender{p: p})
			}
		}
		if len(contenders) == 0 {
			r.scheduleNextHandLocked()
			return
		}
	}

	best := contenders[0].hv.Score
	for _, c := range contenders[1:] {
		if c.hv.Score < best {
			best = c.hv.Score
		}
	}
	var winners []contender
	for _, c := range contenders {
		if c.hv.Score == best {
			winners = append(winners, c)
		}
	}

	pot := r.pot
	share := pot / int64(len(winners))
	rem := pot % int64(len(winners))

	amounts := make(map[string]int64, len(winners))
	winnerIDs := make([]string, 0, len(winners))
	for i, w := range winners {
		amt := share
		if i == 0 {
			// Odd chip goes to the earliest winner in join order.
			amt += rem
		}
		w.p.ChipBalance += amt
		amounts[w.p.ID] = amt
		winnerIDs = append(winnerIDs, w.p.ID)
	}
	r.pot = 0

	payload := ShowdownPayload{
		CommunityCards: r.communityCards,
		Pot:            pot,
		HandNum:        r.handNum,
	}
	winnerSet := make(map[string]bool, len(winners))
	for _, w := range winners {
		winnerSet[w.p.ID] = true
	}
	for _, c := range contenders {
		payload.Hands = append(payload.Hands, ShowdownHand{
			PlayerID:    c.p.ID,
			PlayerName:  c.p.Name,
			Cards:       r.hands[c.p.ID],
			Description: c.hv.Description,
			Winner:      winnerSet[c.p.ID],
			Amount:      amounts[c.p.ID],
		})
	}

	r.log.Infof("room %s: hand %d showdown, pot %d to %d winner(s)", r.code, r.handNum, pot, len(winners))

	r.publish(EventShowdown, "", payload)
	r.publish(EventRoundWinner, "", WinnerPayload{
		WinnerID:   winners[0].p.ID,
		WinnerName: winners[0].p.Name,
		Amount:     amounts[winners[0].p.ID],
		HandNum:    r.handNum,
	})
	r.publish(EventUpdatePot, "", r.pot)
	r.publishRoomUpdate()

	r.emitSettlementLocked(pot, winnerIDs, false)
	r.scheduleNextHandLocked()
}

// emitSettlementLocked hands the settled result to the sink, if any,
// outside the room lock.
func (r *Room) emitSettlementLocked(pot int64, winnerIDs []string, foldOut bool) {
	if r.settleSink == nil {
		return
	}
	rec := SettlementRecord{
		RoomCode:  r.code,
		HandNum:   r.handNum,
		Pot:       pot,
		WinnerIDs: winnerIDs,
		FoldOut:   foldOut,
	}
	sink := r.settleSink
	go sink(rec)
}

// scheduleNextHandLocked arms the re-deal timer. The deferred start is a
// no-op if the room has been destroyed or a hand was started by other
// means in the meantime.
func (r *Room) scheduleNextHandLocked() {
	if r.nextHandTimer != nil {
		r.nextHandTimer.Stop()
	}
	r.nextHandTimer = time.AfterFunc(r.cfg.SettleDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.destroyed || r.phase != PhaseSettled {
			return
		}
		if len(r.players) < 2 {
			r.log.Debugf("room %s: not re-dealing, %d player(s) seated", r.code, len(r.players))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.DealTimeout)
		defer cancel()
		if err := r.startHandLocked(ctx); err != nil {
			r.log.Errorf("room %s: re-deal failed: %v", r.code, err)
		}
	})
}
