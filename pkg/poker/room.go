package poker

import (
	"sync"
	"time"

	"github.com/decred/slog"
)

// Phase is the coarse lifecycle state of a room's hand.
type Phase int

const (
	// PhaseLobby means no hand has been dealt yet; players may join.
	PhaseLobby Phase = iota
	// PhaseBetting means a hand is in progress.
	PhaseBetting
	// PhaseSettled means the last hand has been resolved and the next one
	// is scheduled.
	PhaseSettled
)

// RoomConfig holds configuration for a new room.
type RoomConfig struct {
	Code      string
	Log       slog.Logger
	Dealer    Dealer
	Evaluator Evaluator

	// StartingChips is the balance each player receives on join.
	StartingChips int64
	// Ante seeds betSize for the first loop of every hand.
	Ante int64
	// BetStep is the granularity raises must respect.
	BetStep int64
	// SettleDelay is the pause between a hand resolving and the next one
	// being dealt.
	SettleDelay time.Duration
	// DealTimeout bounds each call to the deck service.
	DealTimeout time.Duration
}

// Default room parameters. Chips and the bet step match the original
// deployment; the ante is two steps so the opening loop has something in it.
const (
	DefaultStartingChips = 1000
	DefaultAnte          = 10
	DefaultBetStep       = 5
	DefaultSettleDelay   = 3 * time.Second
	DefaultDealTimeout   = 10 * time.Second
)

func (cfg *RoomConfig) applyDefaults() {
	if cfg.StartingChips == 0 {
		cfg.StartingChips = DefaultStartingChips
	}
	if cfg.Ante == 0 {
		cfg.Ante = DefaultAnte
	}
	if cfg.BetStep == 0 {
		cfg.BetStep = DefaultBetStep
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.DealTimeout == 0 {
		cfg.DealTimeout = DefaultDealTimeout
	}
	if cfg.Dealer == nil {
		cfg.Dealer = NewLocalDealer(0)
	}
	if cfg.Evaluator == nil {
		cfg.Evaluator = NewEvaluator()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
}

// Room is a single poker room. All state is guarded by mu; every inbound
// action and timer callback takes the lock, so mutations of one room never
// interleave. Rooms never share state, so distinct rooms proceed in
// parallel.
type Room struct {
	cfg RoomConfig
	log slog.Logger

	mu        sync.Mutex
	code      string
	players   []*Player // join order; host first; order fixes turn rotation
	phase     Phase
	destroyed bool

	deckHandle     string
	hands          map[string][]Card
	communityCards []Card

	pot            int64
	betSize        int64
	turnIndex      int
	aggressorIndex int
	loopNum        int
	handNum        int

	nextHandTimer *time.Timer
	publisher     EventPublisher
	settleSink    SettlementSink
}

// NewRoom creates a room with a single host player seated.
func NewRoom(cfg RoomConfig, hostID, hostName string) *Room {
	cfg.applyDefaults()
	r := &Room{
		cfg:   cfg,
		log:   cfg.Log,
		code:  cfg.Code,
		hands: make(map[string][]Card),
	}
	r.players = append(r.players, NewPlayer(hostID, hostName, cfg.StartingChips, true))
	return r
}

// SetEventPublisher sets the callback that receives room events.
func (r *Room) SetEventPublisher(pub EventPublisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publisher = pub
}

// Code returns the room's identifier.
func (r *Room) Code() string {
	return r.code
}

// Started reports whether a hand has ever been dealt in this room.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase != PhaseLobby
}

// AddPlayer seats a new player. Joining is rejected once the game has
// started; re-joining with an id already seated is a no-op.
func (r *Room) AddPlayer(id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return ErrRoomNotFound
	}
	if r.phase != PhaseLobby {
		return ErrGameAlreadyStarted
	}
	for _, p := range r.players {
		if p.ID == id {
			return nil
		}
	}

	r.players = append(r.players, NewPlayer(id, name, r.cfg.StartingChips, false))
	r.publishRoomUpdate()
	return nil
}

// HasPlayer reports whether the given id is seated in this room.
func (r *Room) HasPlayer(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerIndexLocked(id) >= 0
}

// PlayerIDs returns the ids of all seated players in join order.
func (r *Room) PlayerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

// Players returns a snapshot of all seated players in join order.
func (r *Room) Players() []PlayerSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerSnapshotsLocked()
}

func (r *Room) playerSnapshotsLocked() []PlayerSnapshot {
	snaps := make([]PlayerSnapshot, len(r.players))
	for i, p := range r.players {
		snaps[i] = p.snapshot()
	}
	return snaps
}

func (r *Room) playerIndexLocked(id string) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// RemoveResult describes the membership change RemovePlayer performed, so
// the caller can run the appropriate teardown.
type RemoveResult struct {
	Removed  bool
	WasHost  bool
	NowEmpty bool
}

// RemovePlayer unseats a departing player and discards their hand. If the
// departure leaves exactly one non-folded player mid-hand, the hand
// resolves as a fold-out in their favor.
func (r *Room) RemovePlayer(id string) RemoveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.playerIndexLocked(id)
	if idx < 0 || r.destroyed {
		return RemoveResult{}
	}

	res := RemoveResult{Removed: true, WasHost: r.players[idx].IsHost}
	wasTurn := r.phase == PhaseBetting && idx == r.turnIndex

	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.hands, id)
	res.NowEmpty = len(r.players) == 0

	if idx < r.turnIndex {
		r.turnIndex--
	}
	if idx < r.aggressorIndex {
		r.aggressorIndex--
	}
	if len(r.players) > 0 {
		r.turnIndex %= len(r.players)
		r.aggressorIndex %= len(r.players)
	}

	r.publishRoomUpdate()

	if res.NowEmpty || r.phase != PhaseBetting {
		return res
	}

	// The remaining player wins by default when everyone else is gone or
	// folded.
	remaining := r.nonFoldedLocked()
	if len(remaining) == 1 {
		r.foldOutLocked(remaining[0])
		return res
	}

	if wasTurn {
		// Removing the slice entry already shifted the next seat into
		// turnIndex; step back one so the advance lands on it.
		n := len(r.players)
		r.turnIndex = (r.turnIndex - 1 + n) % n
		r.afterActionLocked()
	}
	return res
}

// Destroy marks the room dead and stops its timers. Deferred callbacks
// re-check this flag before mutating, so a destroy racing a timer is safe.
func (r *Room) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.destroyed = true
	if r.nextHandTimer != nil {
		r.nextHandTimer.Stop()
		r.nextHandTimer = nil
	}
}

// Pot returns the chips collected this hand.
func (r *Room) Pot() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pot
}

// BetSize returns the amount a player must have contributed this loop to
// stay even.
func (r *Room) BetSize() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.betSize
}

// LoopNum returns the number of completed betting loops this hand.
func (r *Room) LoopNum() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loopNum
}

// HandNum returns the number of hands dealt in this room.
func (r *Room) HandNum() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handNum
}

// CurrentTurnID returns the id of the player who must act next, or "" when
// no hand is in progress.
func (r *Room) CurrentTurnID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseBetting || r.turnIndex < 0 || r.turnIndex >= len(r.players) {
		return ""
	}
	return r.players[r.turnIndex].ID
}

// CommunityCards returns the shared cards revealed so far.
func (r *Room) CommunityCards() []Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	cards := make([]Card, len(r.communityCards))
	copy(cards, r.communityCards)
	return cards
}

// Hand returns a player's hole cards, or nil if none were dealt.
func (r *Room) Hand(playerID string) []Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	hand, ok := r.hands[playerID]
	if !ok {
		return nil
	}
	cards := make([]Card, len(hand))
	copy(cards, hand)
	return cards
}

func (r *Room) nonFoldedLocked() []*Player {
	var alive []*Player
	for _, p := range r.players {
		if !p.Folded {
			alive = append(alive, p)
		}
	}
	return alive
}
