package server

import (
	"fmt"

	"github.com/decred/slog"

	"github.com/ethanbrook-dev/pokerroom/pkg/poker"
	"github.com/ethanbrook-dev/pokerroom/pkg/server/internal/db"
)

// Ledger records settled hands for bookkeeping. The game never reads chip
// state back from it; in-memory balances stay authoritative.
type Ledger interface {
	RecordSettlement(rec poker.SettlementRecord) error
	PlayerTotals(playerID string) (handsWon, chipsWon int64, err error)
	RoomHistory(roomCode string, limit int) ([]SettlementEntry, error)
	Close() error
}

// SettlementEntry is one winner's share of a settled hand, as read back
// from the ledger.
type SettlementEntry struct {
	RoomCode string
	HandNum  int
	Pot      int64
	WinnerID string
	Amount   int64
	FoldOut  bool
}

// SQLiteLedger persists settlements to a sqlite database.
type SQLiteLedger struct {
	db  *db.DB
	log slog.Logger
}

// NewSQLiteLedger opens (creating if needed) the ledger database at path.
func NewSQLiteLedger(path string, log slog.Logger) (*SQLiteLedger, error) {
	database, err := db.NewDB(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &SQLiteLedger{db: database, log: log}, nil
}

// RecordSettlement writes one row per winner, splitting the pot the same
// way the engine did: equal shares, remainder to the first winner.
func (l *SQLiteLedger) RecordSettlement(rec poker.SettlementRecord) error {
	if len(rec.WinnerIDs) == 0 {
		return nil
	}
	share := rec.Pot / int64(len(rec.WinnerIDs))
	rem := rec.Pot % int64(len(rec.WinnerIDs))

	for i, winnerID := range rec.WinnerIDs {
		amount := share
		if i == 0 {
			amount += rem
		}
		if err := l.db.RecordSettlement(rec.RoomCode, rec.HandNum, rec.Pot, winnerID, amount, rec.FoldOut); err != nil {
			return fmt.Errorf("record settlement for %s: %w", winnerID, err)
		}
	}
	return nil
}

// PlayerTotals returns lifetime hands and chips won.
func (l *SQLiteLedger) PlayerTotals(playerID string) (int64, int64, error) {
	return l.db.GetPlayerTotals(playerID)
}

// RoomHistory returns the room's most recent settlements, newest first.
func (l *SQLiteLedger) RoomHistory(roomCode string, limit int) ([]SettlementEntry, error) {
	rows, err := l.db.GetSettlements(roomCode, limit)
	if err != nil {
		return nil, fmt.Errorf("room history for %s: %w", roomCode, err)
	}
	out := make([]SettlementEntry, 0, len(rows))
	for _, s := range rows {
		out = append(out, SettlementEntry{
			RoomCode: s.RoomCode,
			HandNum:  s.HandNum,
			Pot:      s.Pot,
			WinnerID: s.WinnerID,
			Amount:   s.Amount,
			FoldOut:  s.FoldOut,
		})
	}
	return out, nil
}

// Close closes the underlying database.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
