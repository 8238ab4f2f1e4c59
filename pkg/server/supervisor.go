package server

import (
	"time"

	"github.com/ethanbrook-dev/pokerroom/pkg/poker"
)

// Remove handles a player leaving, whether by choice or disconnect. The
// player is unseated immediately; if they hosted a still-occupied room the
// room gets a grace period before teardown so brief outages don't nuke a
// game mid-hand.
func (reg *Registry) Remove(playerID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.removeLocked(playerID)
}

func (reg *Registry) removeLocked(playerID string) {
	code, ok := reg.byPlayer[playerID]
	if !ok {
		return
	}
	delete(reg.byPlayer, playerID)

	room, ok := reg.rooms[code]
	if !ok {
		return
	}
	res := room.RemovePlayer(playerID)
	if !res.Removed {
		return
	}

	if res.NowEmpty {
		// Nobody left to notify; the room just goes away. This takes
		// precedence over any pending host-grace timer.
		reg.destroyRoomLocked(code, false)
		return
	}

	if res.WasHost {
		reg.log.Infof("room %s: host %s left, teardown in %s", code, playerID, reg.cfg.HostGrace)
		reg.publishLocked(poker.RoomEvent{Type: poker.EventHostDisconnected, RoomCode: code})
		reg.scheduleTeardownLocked(code)
	}
}

// scheduleTeardownLocked arms the one-shot host-grace timer for a room.
// Re-arming while a timer is pending is a no-op.
func (reg *Registry) scheduleTeardownLocked(code string) {
	if _, pending := reg.grace[code]; pending {
		return
	}
	reg.grace[code] = time.AfterFunc(reg.cfg.HostGrace, func() {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		delete(reg.grace, code)
		if _, ok := reg.rooms[code]; !ok {
			// Emptied or torn down during the grace period.
			return
		}
		reg.log.Infof("room %s: host grace expired, destroying", code)
		reg.destroyRoomLocked(code, true)
	})
}

// destroyRoomLocked tears a room down: stops its timers, evicts its
// players from the index and deregisters it. Safe to call for codes that
// are already gone.
func (reg *Registry) destroyRoomLocked(code string, announce bool) {
	room, ok := reg.rooms[code]
	if !ok {
		return
	}
	if announce {
		reg.publishLocked(poker.RoomEvent{Type: poker.EventGameEnded, RoomCode: code})
	}
	room.Destroy()
	delete(reg.rooms, code)

	if t, ok := reg.grace[code]; ok {
		t.Stop()
		delete(reg.grace, code)
	}
	for id, c := range reg.byPlayer {
		if c == code {
			delete(reg.byPlayer, id)
		}
	}
	reg.log.Infof("room %s destroyed", code)
}

func (reg *Registry) publishLocked(ev poker.RoomEvent) {
	if reg.cfg.Events != nil {
		reg.cfg.Events.Publish(ev)
	}
}

// Close destroys every room. Used on shutdown.
func (reg *Registry) Close() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.closed = true
	for code := range reg.rooms {
		reg.destroyRoomLocked(code, false)
	}
}
