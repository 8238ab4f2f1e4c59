package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/ethanbrook-dev/pokerroom/pkg/poker"
)

// DefaultHostGrace is how long a room survives its host leaving before it
// is torn down.
const DefaultHostGrace = 5 * time.Second

// RegistryConfig configures a Registry and the rooms it creates.
type RegistryConfig struct {
	Log       slog.Logger
	Dealer    poker.Dealer
	Evaluator poker.Evaluator

	// Events receives all room events for fan-out. Optional.
	Events *EventProcessor
	// Ledger records settled hands. Optional.
	Ledger Ledger

	StartingChips int64
	Ante          int64
	BetStep       int64
	SettleDelay   time.Duration
	DealTimeout   time.Duration
	// HostGrace is the teardown delay after the host leaves a non-empty
	// room.
	HostGrace time.Duration
}

// Registry owns every live room and tracks which room each player sits in.
// A player is in at most one room at a time.
type Registry struct {
	cfg RegistryConfig
	log slog.Logger

	mu       sync.Mutex
	rooms    map[string]*poker.Room
	byPlayer map[string]string
	grace    map[string]*time.Timer
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	if cfg.HostGrace == 0 {
		cfg.HostGrace = DefaultHostGrace
	}
	return &Registry{
		cfg:      cfg,
		log:      cfg.Log,
		rooms:    make(map[string]*poker.Room),
		byPlayer: make(map[string]string),
		grace:    make(map[string]*time.Timer),
	}
}

// CreateRoom creates a room under the given code with the creator seated
// as host. The code is chosen by the client, as room links are shared out
// of band.
func (reg *Registry) CreateRoom(code, hostID, hostName string) (*poker.Room, error) {
	if code == "" {
		return nil, fmt.Errorf("create room: empty room code")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.closed {
		return nil, poker.ErrRoomNotFound
	}
	if _, ok := reg.rooms[code]; ok {
		return nil, poker.ErrRoomExists
	}

	// A player can only sit in one room; creating a new one implies
	// leaving the old.
	reg.removeLocked(hostID)

	room := poker.NewRoom(poker.RoomConfig{
		Code:          code,
		Log:           reg.log,
		Dealer:        reg.cfg.Dealer,
		Evaluator:     reg.cfg.Evaluator,
		StartingChips: reg.cfg.StartingChips,
		Ante:          reg.cfg.Ante,
		BetStep:       reg.cfg.BetStep,
		SettleDelay:   reg.cfg.SettleDelay,
		DealTimeout:   reg.cfg.DealTimeout,
	}, hostID, hostName)

	if reg.cfg.Events != nil {
		room.SetEventPublisher(reg.cfg.Events.Publish)
	}
	if reg.cfg.Ledger != nil {
		ledger := reg.cfg.Ledger
		log := reg.log
		room.SetSettlementSink(func(rec poker.SettlementRecord) {
			if err := ledger.RecordSettlement(rec); err != nil {
				log.Errorf("room %s: ledger write failed: %v", rec.RoomCode, err)
			}
		})
	}

	reg.rooms[code] = room
	reg.byPlayer[hostID] = code
	reg.log.Infof("room %s created by %s", code, hostName)
	return room, nil
}

// Join seats a player in an existing room. Re-joining a room the player is
// already in is a no-op.
func (reg *Registry) Join(code, playerID, playerName string) (*poker.Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return nil, poker.ErrRoomNotFound
	}

	if prev, seated := reg.byPlayer[playerID]; seated && prev != code {
		reg.removeLocked(playerID)
		// removeLocked may have destroyed the player's old room; the
		// target room is unaffected.
	}

	if err := room.AddPlayer(playerID, playerName); err != nil {
		return nil, err
	}
	reg.byPlayer[playerID] = code
	return room, nil
}

// Room returns the room registered under code.
func (reg *Registry) Room(code string) (*poker.Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[code]
	return room, ok
}

// RoomFor returns the room the player currently sits in.
func (reg *Registry) RoomFor(playerID string) (*poker.Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	code, ok := reg.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	room, ok := reg.rooms[code]
	return room, ok
}

// RoomCount returns the number of live rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}
