package server

import "github.com/ethanbrook-dev/pokerroom/pkg/poker"

// Notification is a single message bound for one or more clients. Type and
// Payload come straight from the engine event; RoomCode tells the transport
// which room the message concerns.
type Notification struct {
	Type     poker.EventType `json:"type"`
	RoomCode string          `json:"roomCode"`
	Payload  interface{}     `json:"payload,omitempty"`
}

// Notifier delivers notifications to connected clients. The transport
// layer implements it; delivery is best effort and must not block.
type Notifier interface {
	// NotifyPlayer delivers to a single player, wherever they are
	// connected. Unknown players are silently dropped.
	NotifyPlayer(playerID string, n *Notification)
	// NotifyRoom delivers to every player seated in the room.
	NotifyRoom(roomCode string, n *Notification)
}

// noopNotifier is used when no transport is attached, mainly in tests.
type noopNotifier struct{}

func (noopNotifier) NotifyPlayer(string, *Notification) {}
func (noopNotifier) NotifyRoom(string, *Notification)   {}
