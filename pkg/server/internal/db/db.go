package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary database tables
func createTables(db *sql.DB) error {
	// One row per winner per settled hand
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settlements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_code TEXT NOT NULL,
			hand_num INTEGER NOT NULL,
			pot INTEGER NOT NULL,
			winner_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			fold_out INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Lifetime aggregates per player
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS player_totals (
			player_id TEXT PRIMARY KEY,
			hands_won INTEGER NOT NULL DEFAULT 0,
			chips_won INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// RecordSettlement stores one winner's share of a settled hand and bumps
// their lifetime totals in a single transaction.
func (db *DB) RecordSettlement(roomCode string, handNum int, pot int64, winnerID string, amount int64, foldOut bool) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO settlements (room_code, hand_num, pot, winner_id, amount, fold_out)
		VALUES (?, ?, ?, ?, ?, ?)
	`, roomCode, handNum, pot, winnerID, amount, foldOut)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO player_totals (player_id, hands_won, chips_won)
		VALUES (?, 1, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			hands_won = hands_won + 1,
			chips_won = chips_won + ?
	`, winnerID, amount, amount)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetPlayerTotals returns a player's lifetime hands and chips won.
func (db *DB) GetPlayerTotals(playerID string) (handsWon, chipsWon int64, err error) {
	err = db.QueryRow(`
		SELECT hands_won, chips_won FROM player_totals WHERE player_id = ?
	`, playerID).Scan(&handsWon, &chipsWon)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get player totals: %v", err)
	}
	return handsWon, chipsWon, nil
}

// Settlement is one winner's share of a settled hand.
type Settlement struct {
	RoomCode string
	HandNum  int
	Pot      int64
	WinnerID string
	Amount   int64
	FoldOut  bool
}

// GetSettlements returns the most recent settlement rows for a room, newest
// first.
func (db *DB) GetSettlements(roomCode string, limit int) ([]Settlement, error) {
	rows, err := db.Query(`
		SELECT room_code, hand_num, pot, winner_id, amount, fold_out
		FROM settlements WHERE room_code = ?
		ORDER BY id DESC LIMIT ?
	`, roomCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Settlement
	for rows.Next() {
		var s Settlement
		if err := rows.Scan(&s.RoomCode, &s.HandNum, &s.Pot, &s.WinnerID, &s.Amount, &s.FoldOut); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
