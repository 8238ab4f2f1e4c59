package poker

// Player is a seat in a room. ID is the stable per-connection identity;
// Name is a display name and is not unique. Exactly one player per room has
// IsHost set, fixed at room creation.
type Player struct {
	ID     string
	Name   string
	IsHost bool

	// ChipBalance persists across hands within a room and never goes
	// negative.
	ChipBalance int64

	// Hand-local state. Folded is reset at each new hand and never reset
	// mid-hand. Bet is the contribution to the pot in the current loop.
	// HasActed is cleared whenever the loop (re)opens.
	Folded   bool
	Bet      int64
	HasActed bool
}

// NewPlayer creates a player with the given starting chips.
func NewPlayer(id, name string, chips int64, isHost bool) *Player {
	return &Player{
		ID:          id,
		Name:        name,
		IsHost:      isHost,
		ChipBalance: chips,
	}
}

// resetForNewHand clears all hand-local state.
func (p *Player) resetForNewHand() {
	p.Folded = false
	p.Bet = 0
	p.HasActed = false
}

// actionable reports whether the player can still be asked to act: not
// folded and not out of chips (a zero balance is treated as all-in).
func (p *Player) actionable() bool {
	return !p.Folded && p.ChipBalance > 0
}

// PlayerSnapshot is an immutable copy of a player's visible state, used in
// room_update payloads.
type PlayerSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsHost      bool   `json:"isHost"`
	ChipBalance int64  `json:"chipBalance"`
	Folded      bool   `json:"folded"`
	Bet         int64  `json:"bet"`
	HasActed    bool   `json:"hasActed"`
}

func (p *Player) snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		IsHost:      p.IsHost,
		ChipBalance: p.ChipBalance,
		Folded:      p.Folded,
		Bet:         p.Bet,
		HasActed:    p.HasActed,
	}
}
