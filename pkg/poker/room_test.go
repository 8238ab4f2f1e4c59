package poker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomSeatsHost(t *testing.T) {
	room := NewRoom(RoomConfig{Code: "ABCD12"}, "h1", "host")

	assert.Equal(t, "ABCD12", room.Code())
	assert.False(t, room.Started())

	players := room.Players()
	require.Len(t, players, 1)
	assert.Equal(t, "h1", players[0].ID)
	assert.True(t, players[0].IsHost)
	assert.Equal(t, int64(DefaultStartingChips), players[0].ChipBalance)
}

func TestAddPlayerJoinOrderAndIdempotence(t *testing.T) {
	room := NewRoom(RoomConfig{Code: "R"}, "h1", "host")
	require.NoError(t, room.AddPlayer("p2", "bob"))
	require.NoError(t, room.AddPlayer("p3", "carol"))

	// A duplicate join must not reseat or reset the player.
	require.NoError(t, room.AddPlayer("p2", "bob"))

	assert.Equal(t, []string{"h1", "p2", "p3"}, room.PlayerIDs())
	assert.True(t, room.HasPlayer("p2"))
	assert.False(t, room.HasPlayer("ghost"))
}

func TestAddPlayerRejectedAfterStart(t *testing.T) {
	dealer := newScriptDealer("AS", "AH", "2C", "3D")
	room, _ := newBettingRoom(t, dealer, "alice", "bob")
	require.NoError(t, room.StartHand(context.Background()))

	assert.ErrorIs(t, room.AddPlayer("late", "dave"), ErrGameAlreadyStarted)
	assert.Len(t, room.PlayerIDs(), 2)
}

func TestAddPlayerRejectedAfterDestroy(t *testing.T) {
	room := NewRoom(RoomConfig{Code: "R"}, "h1", "host")
	room.Destroy()
	assert.ErrorIs(t, room.AddPlayer("p2", "bob"), ErrRoomNotFound)
}

func TestRemovePlayerResults(t *testing.T) {
	room := NewRoom(RoomConfig{Code: "R"}, "h1", "host")
	require.NoError(t, room.AddPlayer("p2", "bob"))

	res := room.RemovePlayer("p2")
	assert.True(t, res.Removed)
	assert.False(t, res.WasHost)
	assert.False(t, res.NowEmpty)

	res = room.RemovePlayer("p2")
	assert.False(t, res.Removed, "removing an absent player is a no-op")

	res = room.RemovePlayer("h1")
	assert.True(t, res.Removed)
	assert.True(t, res.WasHost)
	assert.True(t, res.NowEmpty)
}

func TestRemovePlayerMidHandFoldsThemOut(t *testing.T) {
	dealer := newScriptDealer(
		"AS", "AH", "2C", "3D", "4H", "6S",
		"KD", "QS", "JH",
	)
	room, _ := newBettingRoom(t, dealer, "alice", "bob", "carol")
	require.NoError(t, room.StartHand(context.Background()))
	require.NoError(t, room.Call("p1"))

	// p2 holds the turn and disconnects; the turn must pass to p3, not
	// skip them.
	res := room.RemovePlayer("p2")
	assert.True(t, res.Removed)
	assert.Equal(t, "p3", room.CurrentTurnID())
	assert.Nil(t, room.Hand("p2"))

	require.NoError(t, room.Call("p3"))
	assert.Equal(t, 1, room.LoopNum(), "hand continues for the remaining players")
}

func TestRemoveSecondToLastMidHandEndsHand(t *testing.T) {
	dealer := newScriptDealer("AS", "AH", "2C", "3D")
	room, rec := newBettingRoom(t, dealer, "alice", "bob")
	require.NoError(t, room.StartHand(context.Background()))
	require.NoError(t, room.Call("p1"))

	room.RemovePlayer("p2")

	assert.False(t, room.Started())
	assert.Equal(t, int64(0), room.Pot())

	winners := rec.ofType(EventRoundWinner)
	require.Len(t, winners, 1)
	payload := winners[0].Payload.(WinnerPayload)
	assert.Equal(t, "p1", payload.WinnerID)
	assert.Equal(t, int64(10), payload.Amount)
}

func TestRemoveFoldedPlayerDoesNotEndHand(t *testing.T) {
	dealer := newScriptDealer(
		"AS", "AH", "2C", "3D", "4H", "6S",
		"KD", "QS", "JH",
	)
	room, rec := newBettingRoom(t, dealer, "alice", "bob", "carol")
	require.NoError(t, room.StartHand(context.Background()))

	require.NoError(t, room.Call("p1"))
	require.NoError(t, room.Fold("p2"))
	room.RemovePlayer("p2")

	assert.True(t, room.Started())
	assert.Empty(t, rec.ofType(EventRoundWinner))
	assert.Equal(t, "p3", room.CurrentTurnID())
}

func TestDestroyIsIdempotent(t *testing.T) {
	room := NewRoom(RoomConfig{Code: "R"}, "h1", "host")
	room.Destroy()
	room.Destroy()
	assert.ErrorIs(t, room.AddPlayer("p2", "bob"), ErrRoomNotFound)
}

func TestRoomUpdatePublishedOnMembershipChange(t *testing.T) {
	room := NewRoom(RoomConfig{Code: "R", SettleDelay: time.Hour}, "h1", "host")
	rec := &eventRecorder{}
	room.SetEventPublisher(rec.publish)

	require.NoError(t, room.AddPlayer("p2", "bob"))
	room.RemovePlayer("p2")

	updates := rec.ofType(EventRoomUpdate)
	require.Len(t, updates, 2)
	for _, ev := range updates {
		assert.Empty(t, ev.TargetID, "room updates are broadcast")
	}
}
