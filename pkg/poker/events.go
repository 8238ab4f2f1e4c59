package poker

// EventType identifies a room-scoped notification emitted by the engine.
type EventType string

const (
	EventRoomUpdate           EventType = "room_update"
	EventGameStarted          EventType = "game_started"
	EventDealHand             EventType = "deal_hand"
	EventCurrentTurn          EventType = "current_turn"
	EventYourTurn             EventType = "your_turn"
	EventUpdatePot            EventType = "update_pot"
	EventUpdateBetSize        EventType = "update_bet_size"
	EventNewLoop              EventType = "new_loop"
	EventUpdateCommunityCards EventType = "update_community_cards"
	EventRoundWinner          EventType = "round_winner"
	EventShowdown             EventType = "showdown"
	EventHostDisconnected     EventType = "host_disconnected"
	EventGameEnded            EventType = "game_ended"
	EventActionError          EventType = "action_error"
	EventJoinError            EventType = "join_error"
)

// RoomEvent is a single notification. TargetID, when set, restricts
// delivery to one player (deal_hand, your_turn); otherwise the event goes
// to everyone in the room.
type RoomEvent struct {
	Type     EventType
	RoomCode string
	TargetID string
	Payload  interface{}
}

// EventPublisher receives engine events. Implementations must not call
// back into the room; the room mutex may be held while publishing.
type EventPublisher func(RoomEvent)

// TurnPayload announces whose turn it is.
type TurnPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// DealHandPayload carries one player's 2 hole cards.
type DealHandPayload struct {
	Cards []Card `json:"cards"`
}

// NewLoopPayload announces a completed betting loop.
type NewLoopPayload struct {
	LoopNum int `json:"loopNum"`
}

// WinnerPayload reports a fold-out award.
type WinnerPayload struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
	Amount     int64  `json:"amount"`
	HandNum    int    `json:"handNum"`
}

// ShowdownHand is one player's revealed hand at showdown.
type ShowdownHand struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	Cards       []Card `json:"cards"`
	Description string `json:"description"`
	Winner      bool   `json:"winner"`
	Amount      int64  `json:"amount"`
}

// ShowdownPayload reports a showdown resolution.
type ShowdownPayload struct {
	Hands          []ShowdownHand `json:"hands"`
	CommunityCards []Card         `json:"communityCards"`
	Pot            int64          `json:"pot"`
	HandNum        int            `json:"handNum"`
}

func (r *Room) publish(typ EventType, target string, payload interface{}) {
	if r.publisher == nil {
		return
	}
	r.publisher(RoomEvent{
		Type:     typ,
		RoomCode: r.code,
		TargetID: target,
		Payload:  payload,
	})
}

func (r *Room) publishRoomUpdate() {
	r.publish(EventRoomUpdate, "", r.playerSnapshotsLocked())
}

func (r *Room) publishTurn() {
	if r.turnIndex < 0 || r.turnIndex >= len(r.players) {
		return
	}
	current := r.players[r.turnIndex]
	r.publish(EventCurrentTurn, "", TurnPayload{PlayerID: current.ID, PlayerName: current.Name})
	r.publish(EventYourTurn, current.ID, nil)
}
