package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ScoreEntry represents a single saved score.
type ScoreEntry struct {
	ID        int64
	UserID    int64
	UserName  string
	Score     int
	Hood      string
	CreatedAt time.Time
}

// Upgrade holds the purchased upgrades of a user.
type Upgrade struct {
	UserID int64
	Hearts int
}

// SaveScore records a finished run and credits score / CoinDivisor coins to
// the player in the same transaction.
func (s *Store) SaveScore(ctx context.Context, userID int64, score int, hood string) (ScoreEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO scores (user_id, score, hood) VALUES (?, ?, ?)",
		userID, score, hood,
	)
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot save score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	if earned := score / s.economy.CoinDivisor; earned > 0 {
		if err := addCoins(ctx, tx, userID, earned); err != nil {
			return ScoreEntry{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot commit score: %w", err)
	}

	entry := ScoreEntry{ID: id, UserID: userID, Score: score, Hood: hood, CreatedAt: time.Now().UTC()}
	if u, err := s.UserByID(ctx, userID); err == nil {
		entry.UserName = u.Name
	} else {
		entry.UserName = fallbackName(userID)
	}
	return entry, nil
}

// SubmitScore saves a score without returning the entry.
// It lets the store stand in for the HTTP backend in offline and SSH play.
func (s *Store) SubmitScore(ctx context.Context, userID, score int, hood string) error {
	_, err := s.SaveScore(ctx, int64(userID), score, hood)
	return err
}

// TopScores returns the best scores across all players, highest first.
// Ties keep submission order.
func (s *Store) TopScores(ctx context.Context, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.user_id, COALESCE(u.name, ''), s.score, s.hood, s.created_at
		 FROM scores s LEFT JOIN users u ON u.id = s.user_id
		 ORDER BY s.score DESC, s.id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Score, &e.Hood, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if e.UserName == "" {
			e.UserName = fallbackName(e.UserID)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the best score of a user, or 0 if they have none.
func (s *Store) HighScore(ctx context.Context, userID int64) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(score) FROM scores WHERE user_id = ?",
		userID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// Coins returns the coin balance of a user. Users without a balance have 0.
func (s *Store) Coins(ctx context.Context, userID int64) (int, error) {
	return queryCoins(ctx, s.db, userID)
}

// Upgrades returns the purchased upgrades of a user.
func (s *Store) Upgrades(ctx context.Context, userID int64) (Upgrade, error) {
	up := Upgrade{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		"SELECT hearts FROM upgrades WHERE user_id = ?",
		userID,
	).Scan(&up.Hearts)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Upgrade{}, fmt.Errorf("storage: cannot query upgrades: %w", err)
	}
	return up, nil
}

// BuyHearts spends HeartPrice coins per heart and adds the hearts to the
// user's upgrades. Returns ErrInsufficientCoins when the balance is too low.
func (s *Store) BuyHearts(ctx context.Context, userID int64, hearts int) (Upgrade, error) {
	if hearts <= 0 {
		return Upgrade{}, fmt.Errorf("storage: cannot buy %d hearts", hearts)
	}
	cost := hearts * s.economy.HeartPrice

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Upgrade{}, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	balance, err := queryCoins(ctx, tx, userID)
	if err != nil {
		return Upgrade{}, err
	}
	if balance < cost {
		return Upgrade{}, ErrInsufficientCoins
	}
	if err := addCoins(ctx, tx, userID, -cost); err != nil {
		return Upgrade{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO upgrades (user_id, hearts) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET hearts = hearts + excluded.hearts`,
		userID, hearts,
	)
	if err != nil {
		return Upgrade{}, fmt.Errorf("storage: cannot save upgrade: %w", err)
	}

	up := Upgrade{UserID: userID}
	err = tx.QueryRowContext(ctx, "SELECT hearts FROM upgrades WHERE user_id = ?", userID).Scan(&up.Hearts)
	if err != nil {
		return Upgrade{}, fmt.Errorf("storage: cannot query upgrades: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Upgrade{}, fmt.Errorf("storage: cannot commit upgrade: %w", err)
	}
	return up, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func queryCoins(ctx context.Context, q querier, userID int64) (int, error) {
	var coins int
	err := q.QueryRowContext(ctx, "SELECT coins FROM coins WHERE user_id = ?", userID).Scan(&coins)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query coins: %w", err)
	}
	return coins, nil
}

func addCoins(ctx context.Context, q querier, userID int64, delta int) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO coins (user_id, coins) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET coins = coins + excluded.coins`,
		userID, delta,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update coins: %w", err)
	}
	return nil
}

func fallbackName(userID int64) string {
	return fmt.Sprintf("player%d", userID)
}
