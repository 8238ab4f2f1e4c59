package poker

import "errors"

// Join-time errors. Surfaced to the requester only; the room is never
// mutated when one of these is returned.
var (
	ErrRoomNotFound       = errors.New("room does not exist")
	ErrRoomExists         = errors.New("room code already in use")
	ErrGameAlreadyStarted = errors.New("game already started in this room")
)

// Action-time errors. Rejections leave all room state untouched and are
// reported to the acting player only.
var (
	ErrNoActiveHand      = errors.New("no hand in progress")
	ErrNotInRoom         = errors.New("player is not in this room")
	ErrNotYourTurn       = errors.New("not your turn to act")
	ErrAlreadyFolded     = errors.New("player has already folded")
	ErrAlreadyActed      = errors.New("player has already acted this loop")
	ErrNothingToCall     = errors.New("nothing to call; raise or fold")
	ErrInsufficientChips = errors.New("insufficient chips")
	ErrInvalidRaiseSize  = errors.New("invalid raise size")
)

// ErrDeckUnavailable is returned when the external deck service cannot
// supply cards. The room is left in its prior state and the hand simply
// does not start.
var ErrDeckUnavailable = errors.New("deck service unavailable")
