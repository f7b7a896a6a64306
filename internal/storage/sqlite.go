// Package storage provides SQLite-based persistence for the score backend:
// accounts, login tokens, scores, coin balances and purchased upgrades.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Sentinel errors returned by Store methods.
var (
	ErrNotFound           = errors.New("storage: not found")
	ErrInvalidCredentials = errors.New("storage: invalid credentials")
	ErrInsufficientCoins  = errors.New("storage: insufficient coins")
	ErrUserExists         = errors.New("storage: user already exists")
)

// Economy sets how coins are earned and spent.
type Economy struct {
	CoinDivisor int // Coins credited per saved score = score / CoinDivisor
	HeartPrice  int // Coins per extra heart
}

// DefaultEconomy returns the classic coin rates.
func DefaultEconomy() Economy {
	return Economy{CoinDivisor: 100, HeartPrice: 50}
}

// Store manages the SQLite database connection.
type Store struct {
	db       *sql.DB
	economy  Economy
	hashCost int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SQLite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, economy: DefaultEconomy(), hashCost: bcrypt.DefaultCost}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// SetEconomy replaces the coin rates. Non-positive values keep the defaults.
func (s *Store) SetEconomy(e Economy) {
	def := DefaultEconomy()
	if e.CoinDivisor <= 0 {
		e.CoinDivisor = def.CoinDivisor
	}
	if e.HeartPrice <= 0 {
		e.HeartPrice = def.HeartPrice
	}
	s.economy = e
}

// Economy returns the active coin rates.
func (s *Store) Economy() Economy {
	return s.economy
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS tokens (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_tokens_user ON tokens(user_id);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			score INTEGER NOT NULL,
			hood TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);
		CREATE INDEX IF NOT EXISTS idx_scores_user ON scores(user_id);

		CREATE TABLE IF NOT EXISTS coins (
			user_id INTEGER PRIMARY KEY,
			coins INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS upgrades (
			user_id INTEGER PRIMARY KEY,
			hearts INTEGER NOT NULL DEFAULT 0
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTime handles both time.Time and string values returned by the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
