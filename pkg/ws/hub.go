package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ethanbrook-dev/pokerroom/pkg/poker"
	"github.com/ethanbrook-dev/pokerroom/pkg/server"
)

// Hub is the websocket gateway. It owns the connection set, maps players
// to rooms for broadcast fan-out, and translates client messages into
// registry and room calls. No game rules live here.
type Hub struct {
	log      slog.Logger
	registry *server.Registry
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
	rooms   map[string]map[string]*client
}

// NewHub creates a hub serving rooms from the given registry.
func NewHub(log slog.Logger, registry *server.Registry) *Hub {
	if log == nil {
		log = slog.Disabled
	}
	return &Hub{
		log:      log,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Room codes are the access control; origins are not.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]*client),
	}
}

// ServeHTTP upgrades the connection and runs it until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{
		hub:  h,
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan *server.Notification, sendQueueSize),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.log.Debugf("client %s connected", c.id)

	// The client needs its assigned id to recognize targeted events.
	c.enqueue(&server.Notification{
		Type:    "connected",
		Payload: map[string]string{"playerId": c.id},
	})

	go c.writePump()
	c.readPump()
}

// handleMessage dispatches one client message.
func (h *Hub) handleMessage(c *client, msg *incoming) {
	switch msg.Action {
	case "join_room":
		h.joinRoom(c, msg.RoomCode, msg.PlayerName)
	case "start_game":
		h.startGame(c, msg.RoomCode)
	case "call_bet":
		h.playerAction(c, "call_bet", func(room *poker.Room) error {
			return room.Call(c.id)
		})
	case "raise_bet":
		amount := msg.Amount
		h.playerAction(c, "raise_bet", func(room *poker.Room) error {
			return room.Raise(c.id, amount)
		})
	case "fold":
		h.playerAction(c, "fold", func(room *poker.Room) error {
			return room.Fold(c.id)
		})
	case "leave_room":
		h.leaveRoom(c)
	default:
		h.sendError(c, poker.EventActionError, msg.Action, "unknown action")
	}
}

// joinRoom seats the client, creating the room on first use of a code.
func (h *Hub) joinRoom(c *client, code, name string) {
	if code == "" || name == "" {
		h.sendError(c, poker.EventJoinError, "join_room", "room code and player name are required")
		return
	}

	var (
		room *poker.Room
		err  error
	)
	if _, exists := h.registry.Room(code); exists {
		room, err = h.registry.Join(code, c.id, name)
	} else {
		room, err = h.registry.CreateRoom(code, c.id, name)
		if errors.Is(err, poker.ErrRoomExists) {
			// Raced another creator; join the winner's room.
			room, err = h.registry.Join(code, c.id, name)
		}
	}
	if err != nil {
		h.sendError(c, poker.EventJoinError, "join_room", err.Error())
		return
	}

	h.mu.Lock()
	h.detachLocked(c)
	members, ok := h.rooms[code]
	if !ok {
		members = make(map[string]*client)
		h.rooms[code] = members
	}
	members[c.id] = c
	h.mu.Unlock()

	// The engine's room_update broadcast may have been fanned out before
	// this client entered the set, so send the joiner their own snapshot.
	// Everyone else gets the engine event.
	c.enqueue(&server.Notification{
		Type:     poker.EventRoomUpdate,
		RoomCode: code,
		Payload:  room.Players(),
	})

	h.log.Infof("player %s joined room %s as %q", c.id, code, name)
}

func (h *Hub) startGame(c *client, code string) {
	room, ok := h.registry.RoomFor(c.id)
	if !ok || (code != "" && room.Code() != code) {
		h.sendError(c, poker.EventActionError, "start_game", poker.ErrNotInRoom.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), poker.DefaultDealTimeout)
	defer cancel()
	if err := room.StartHand(ctx); err != nil {
		h.sendError(c, poker.EventActionError, "start_game", err.Error())
	}
}

// playerAction runs a betting action against the client's current room and
// reports failures only to the acting client.
func (h *Hub) playerAction(c *client, action string, fn func(*poker.Room) error) {
	room, ok := h.registry.RoomFor(c.id)
	if !ok {
		h.sendError(c, poker.EventActionError, action, poker.ErrNotInRoom.Error())
		return
	}
	if err := fn(room); err != nil {
		h.sendError(c, poker.EventActionError, action, err.Error())
	}
}

func (h *Hub) leaveRoom(c *client) {
	h.registry.Remove(c.id)
	h.mu.Lock()
	h.detachLocked(c)
	h.mu.Unlock()
}

// disconnect runs when a connection dies: the player leaves their room and
// the connection is forgotten.
func (h *Hub) disconnect(c *client) {
	h.registry.Remove(c.id)

	h.mu.Lock()
	delete(h.clients, c.id)
	h.detachLocked(c)
	h.mu.Unlock()

	// Closed outside h.mu: notifiers hold only the client mutex when they
	// touch the send queue, so the close cannot race a delivery.
	c.markClosed()

	h.log.Debugf("client %s disconnected", c.id)
}

// detachLocked removes the client from whatever room fan-out set it is in.
func (h *Hub) detachLocked(c *client) {
	for code, members := range h.rooms {
		if _, ok := members[c.id]; ok {
			delete(members, c.id)
			if len(members) == 0 {
				delete(h.rooms, code)
			}
		}
	}
}

func (h *Hub) sendError(c *client, typ poker.EventType, action, message string) {
	c.enqueue(&server.Notification{
		Type: typ,
		Payload: map[string]string{
			"action": action,
			"error":  message,
		},
	})
}

// NotifyPlayer implements server.Notifier.
func (h *Hub) NotifyPlayer(playerID string, n *server.Notification) {
	h.mu.Lock()
	c, ok := h.clients[playerID]
	h.mu.Unlock()
	if !ok {
		return
	}
	if !c.enqueue(n) {
		h.log.Warnf("client %s send queue full, dropping %s", playerID, n.Type)
	}
}

// NotifyRoom implements server.Notifier. Delivery of game_ended also tears
// down the fan-out set, since the room no longer exists server-side.
func (h *Hub) NotifyRoom(roomCode string, n *server.Notification) {
	h.mu.Lock()
	members := h.rooms[roomCode]
	targets := make([]*client, 0, len(members))
	for _, c := range members {
		targets = append(targets, c)
	}
	if n.Type == poker.EventGameEnded {
		delete(h.rooms, roomCode)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if !c.enqueue(n) {
			h.log.Warnf("client %s send queue full, dropping %s", c.id, n.Type)
		}
	}
}
