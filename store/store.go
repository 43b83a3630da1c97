// Package store persists execution receipts in SQLite for replay audit.
package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chazu/ledgervm/wire"
)

// ErrReceiptNotFound indicates the requested receipt doesn't exist.
var ErrReceiptNotFound = errors.New("receipt not found")

// ReceiptStore handles SQLite storage for execution receipts, keyed by
// script hash and engine id.
type ReceiptStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open creates a receipt store backed by the database at dbPath.
func Open(dbPath string) (*ReceiptStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS receipts (
		script_hash TEXT NOT NULL,
		engine_id TEXT NOT NULL,
		state TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (script_hash, engine_id)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &ReceiptStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *ReceiptStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists a receipt, replacing any previous run of the same script by
// the same engine.
func (s *ReceiptStore) Save(r *wire.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := wire.MarshalReceipt(r)
	if err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO receipts (script_hash, engine_id, state, created_at, data) VALUES (?, ?, ?, ?, ?)",
		hex.EncodeToString(r.ScriptHash[:]), r.EngineID, r.State, time.Now().Unix(), data,
	)
	if err != nil {
		return fmt.Errorf("saving receipt: %w", err)
	}
	return nil
}

// Load retrieves the receipt for one script hash and engine id.
func (s *ReceiptStore) Load(scriptHash [32]byte, engineID string) (*wire.Receipt, error) {
	var data []byte
	err := s.db.QueryRow(
		"SELECT data FROM receipts WHERE script_hash = ? AND engine_id = ?",
		hex.EncodeToString(scriptHash[:]), engineID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("querying receipt: %w", err)
	}
	return wire.UnmarshalReceipt(data)
}

// LoadByScript retrieves every receipt recorded for a script, newest first.
func (s *ReceiptStore) LoadByScript(scriptHash [32]byte) ([]*wire.Receipt, error) {
	rows, err := s.db.Query(
		"SELECT data FROM receipts WHERE script_hash = ? ORDER BY created_at DESC",
		hex.EncodeToString(scriptHash[:]),
	)
	if err != nil {
		return nil, fmt.Errorf("querying receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*wire.Receipt
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}
		r, err := wire.UnmarshalReceipt(data)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}
