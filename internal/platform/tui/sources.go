package tui

import (
	"context"

	"github.com/vovakirdan/space-dodge/internal/backend"
	"github.com/vovakirdan/space-dodge/internal/leaderboard"
	"github.com/vovakirdan/space-dodge/internal/storage"
)

// ScoreSubmitter persists a finished run. Both the HTTP backend client and
// the local store satisfy it.
type ScoreSubmitter interface {
	SubmitScore(ctx context.Context, userID, score int, hood string) error
}

// ScoreSource lists leaderboard entries, best first.
type ScoreSource func(ctx context.Context, limit int) ([]leaderboard.Entry, error)

// BackendScores reads the leaderboard from the HTTP backend.
func BackendScores(c *backend.Client) ScoreSource {
	return func(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
		rows, err := c.Scores(ctx, limit)
		if err != nil {
			return nil, err
		}
		entries := make([]leaderboard.Entry, len(rows))
		for i, r := range rows {
			entries[i] = leaderboard.Entry{Rank: i, Name: r.Name(), Score: r.Score, Hood: r.Hood}
		}
		return entries, nil
	}
}

// StoreScores reads the leaderboard from the local database.
func StoreScores(s *storage.Store) ScoreSource {
	return func(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
		rows, err := s.TopScores(ctx, limit)
		if err != nil {
			return nil, err
		}
		entries := make([]leaderboard.Entry, len(rows))
		for i, r := range rows {
			entries[i] = leaderboard.Entry{Rank: i, Name: r.UserName, Score: r.Score, Hood: r.Hood}
		}
		return entries, nil
	}
}

// Wallet exposes a player's coins and purchased hearts.
type Wallet interface {
	Coins(ctx context.Context) (int, error)
	Hearts(ctx context.Context) (int, error)
	BuyHeart(ctx context.Context) (hearts int, err error)
}

// BackendWallet uses a logged-in backend client.
func BackendWallet(c *backend.Client) Wallet {
	return clientWallet{c: c}
}

type clientWallet struct {
	c *backend.Client
}

func (w clientWallet) Coins(ctx context.Context) (int, error) {
	return w.c.Coins(ctx)
}

func (w clientWallet) Hearts(ctx context.Context) (int, error) {
	up, err := w.c.Upgrades(ctx)
	return up.Hearts, err
}

func (w clientWallet) BuyHeart(ctx context.Context) (int, error) {
	up, err := w.c.BuyHearts(ctx, 1)
	return up.Hearts, err
}

// StoreWallet uses the local database for one user.
func StoreWallet(s *storage.Store, userID int64) Wallet {
	return storeWallet{s: s, userID: userID}
}

type storeWallet struct {
	s      *storage.Store
	userID int64
}

func (w storeWallet) Coins(ctx context.Context) (int, error) {
	return w.s.Coins(ctx, w.userID)
}

func (w storeWallet) Hearts(ctx context.Context) (int, error) {
	up, err := w.s.Upgrades(ctx, w.userID)
	return up.Hearts, err
}

func (w storeWallet) BuyHeart(ctx context.Context) (int, error) {
	up, err := w.s.BuyHearts(ctx, w.userID, 1)
	return up.Hearts, err
}
