package server

import (
	"path/filepath"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanbrook-dev/pokerroom/pkg/poker"
)

func newTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()
	ledger, err := NewSQLiteLedger(filepath.Join(t.TempDir(), "ledger.db"), slog.Disabled)
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func TestLedgerRecordsSettlements(t *testing.T) {
	ledger := newTestLedger(t)

	require.NoError(t, ledger.RecordSettlement(poker.SettlementRecord{
		RoomCode:  "R",
		HandNum:   1,
		Pot:       50,
		WinnerIDs: []string{"p1"},
		FoldOut:   true,
	}))
	require.NoError(t, ledger.RecordSettlement(poker.SettlementRecord{
		RoomCode:  "R",
		HandNum:   2,
		Pot:       80,
		WinnerIDs: []string{"p1"},
	}))

	hands, chips, err := ledger.PlayerTotals("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), hands)
	assert.Equal(t, int64(130), chips)

	hands, chips, err = ledger.PlayerTotals("stranger")
	require.NoError(t, err)
	assert.Zero(t, hands)
	assert.Zero(t, chips)
}

func TestLedgerSplitsPotLikeTheEngine(t *testing.T) {
	ledger := newTestLedger(t)

	require.NoError(t, ledger.RecordSettlement(poker.SettlementRecord{
		RoomCode:  "R",
		HandNum:   1,
		Pot:       45,
		WinnerIDs: []string{"p1", "p2"},
	}))

	_, chips, err := ledger.PlayerTotals("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(23), chips, "remainder goes to the first winner")

	_, chips, err = ledger.PlayerTotals("p2")
	require.NoError(t, err)
	assert.Equal(t, int64(22), chips)
}

func TestLedgerRoomHistoryNewestFirst(t *testing.T) {
	ledger := newTestLedger(t)

	require.NoError(t, ledger.RecordSettlement(poker.SettlementRecord{
		RoomCode:  "R",
		HandNum:   1,
		Pot:       50,
		WinnerIDs: []string{"p1"},
		FoldOut:   true,
	}))
	require.NoError(t, ledger.RecordSettlement(poker.SettlementRecord{
		RoomCode:  "R",
		HandNum:   2,
		Pot:       45,
		WinnerIDs: []string{"p1", "p2"},
	}))
	require.NoError(t, ledger.RecordSettlement(poker.SettlementRecord{
		RoomCode:  "OTHER",
		HandNum:   1,
		Pot:       30,
		WinnerIDs: []string{"p3"},
	}))

	history, err := ledger.RoomHistory("R", 10)
	require.NoError(t, err)
	require.Len(t, history, 3, "one row per winner, other rooms excluded")

	assert.Equal(t, 2, history[0].HandNum)
	assert.Equal(t, "p2", history[0].WinnerID)
	assert.Equal(t, int64(22), history[0].Amount)
	assert.Equal(t, 2, history[1].HandNum)
	assert.Equal(t, "p1", history[1].WinnerID)
	assert.Equal(t, int64(23), history[1].Amount)
	assert.Equal(t, 1, history[2].HandNum)
	assert.True(t, history[2].FoldOut)

	limited, err := ledger.RoomHistory("R", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "p2", limited[0].WinnerID)
}

func TestLedgerIgnoresEmptyWinnerList(t *testing.T) {
	ledger := newTestLedger(t)
	require.NoError(t, ledger.RecordSettlement(poker.SettlementRecord{RoomCode: "R", HandNum: 1, Pot: 10}))
}
