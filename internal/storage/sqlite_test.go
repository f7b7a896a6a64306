package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	store.hashCost = bcrypt.MinCost
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveScore(ctx, 1, 300, "TheBronx"); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	scores, err := store.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 300 {
		t.Errorf("got %+v after reopen, expected one score of 300", scores)
	}
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	u, err := store.CreateUser(ctx, "ripley", "nostromo")
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if u.ID == 0 || u.Name != "ripley" {
		t.Errorf("CreateUser() = %+v", u)
	}

	if _, err := store.CreateUser(ctx, "ripley", "other"); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate CreateUser() error = %v, expected ErrUserExists", err)
	}

	got, err := store.Authenticate(ctx, "ripley", "nostromo")
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("Authenticate() id = %d, expected %d", got.ID, u.ID)
	}

	tests := []struct {
		name     string
		user     string
		password string
		want     error
	}{
		{"wrong password", "ripley", "sulaco", ErrInvalidCredentials},
		{"empty password", "ripley", "", ErrInvalidCredentials},
		{"unknown user", "hicks", "nostromo", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Authenticate(ctx, tt.user, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("Authenticate() error = %v, expected %v", err, tt.want)
			}
		})
	}
}

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first, err := store.EnsureUser(ctx, "bishop")
	if err != nil {
		t.Fatalf("EnsureUser() failed: %v", err)
	}
	second, err := store.EnsureUser(ctx, "bishop")
	if err != nil {
		t.Fatalf("second EnsureUser() failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("EnsureUser() created a second user: %d vs %d", first.ID, second.ID)
	}
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	u, err := store.CreateUser(ctx, "vasquez", "smartgun")
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	token, err := store.IssueToken(ctx, u.ID)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}
	if token == "" {
		t.Fatal("IssueToken() returned an empty token")
	}

	got, err := store.UserByToken(ctx, token)
	if err != nil {
		t.Fatalf("UserByToken() failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("UserByToken() id = %d, expected %d", got.ID, u.ID)
	}

	if err := store.RevokeToken(ctx, token); err != nil {
		t.Fatalf("RevokeToken() failed: %v", err)
	}
	if _, err := store.UserByToken(ctx, token); !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByToken() after revoke error = %v, expected ErrNotFound", err)
	}
	if err := store.RevokeToken(ctx, token); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RevokeToken() error = %v, expected ErrNotFound", err)
	}
}

func TestSaveScoreRanksAndCredits(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	u, err := store.CreateUser(ctx, "hudson", "gameover")
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	for _, score := range []int{100, 50, 1200} {
		if _, err := store.SaveScore(ctx, u.ID, score, "TheBronx"); err != nil {
			t.Fatalf("SaveScore(%d) failed: %v", score, err)
		}
	}
	// Anonymous player without an account
	entry, err := store.SaveScore(ctx, 99, 500, "Queens")
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}
	if entry.UserName != "player99" {
		t.Errorf("UserName = %q, expected player99", entry.UserName)
	}

	scores, err := store.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	wantScores := []int{1200, 500, 100, 50}
	if len(scores) != len(wantScores) {
		t.Fatalf("got %d scores, expected %d", len(scores), len(wantScores))
	}
	for i, want := range wantScores {
		if scores[i].Score != want {
			t.Errorf("scores[%d] = %d, expected %d", i, scores[i].Score, want)
		}
	}
	if scores[0].UserName != "hudson" || scores[0].Hood != "TheBronx" {
		t.Errorf("top entry = %+v", scores[0])
	}

	// 100/100 + 50/100 + 1200/100 = 1 + 0 + 12
	coins, err := store.Coins(ctx, u.ID)
	if err != nil {
		t.Fatalf("Coins() failed: %v", err)
	}
	if coins != 13 {
		t.Errorf("Coins() = %d, expected 13", coins)
	}

	high, err := store.HighScore(ctx, u.ID)
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 1200 {
		t.Errorf("HighScore() = %d, expected 1200", high)
	}

	limited, err := store.TopScores(ctx, 2)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("TopScores(2) returned %d entries", len(limited))
	}
}

func TestCoinsDefaultZero(t *testing.T) {
	store := openTestStore(t)
	coins, err := store.Coins(context.Background(), 42)
	if err != nil {
		t.Fatalf("Coins() failed: %v", err)
	}
	if coins != 0 {
		t.Errorf("Coins() = %d, expected 0", coins)
	}
}

func TestUpgradesDefaultZero(t *testing.T) {
	store := openTestStore(t)
	up, err := store.Upgrades(context.Background(), 42)
	if err != nil {
		t.Fatalf("Upgrades() failed: %v", err)
	}
	if up.UserID != 42 || up.Hearts != 0 {
		t.Errorf("Upgrades() = %+v, expected user 42 with 0 hearts", up)
	}
}

func TestBuyHearts(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	store.SetEconomy(Economy{CoinDivisor: 10, HeartPrice: 50})

	// 1200 / 10 = 120 coins
	if _, err := store.SaveScore(ctx, 7, 1200, "TheBronx"); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	up, err := store.BuyHearts(ctx, 7, 2)
	if err != nil {
		t.Fatalf("BuyHearts() failed: %v", err)
	}
	if up.Hearts != 2 {
		t.Errorf("Hearts = %d, expected 2", up.Hearts)
	}

	if _, err := store.BuyHearts(ctx, 7, 1); !errors.Is(err, ErrInsufficientCoins) {
		t.Errorf("BuyHearts() with 20 coins error = %v, expected ErrInsufficientCoins", err)
	}

	coins, _ := store.Coins(ctx, 7)
	if coins != 20 {
		t.Errorf("Coins() = %d, expected 20", coins)
	}

	up, err = store.Upgrades(ctx, 7)
	if err != nil {
		t.Fatalf("Upgrades() failed: %v", err)
	}
	if up.Hearts != 2 {
		t.Errorf("Upgrades().Hearts = %d, expected 2", up.Hearts)
	}

	if _, err := store.BuyHearts(ctx, 7, 0); err == nil {
		t.Error("BuyHearts(0) should fail")
	}
}

func TestSetEconomyKeepsDefaults(t *testing.T) {
	store := openTestStore(t)
	store.SetEconomy(Economy{})
	if store.Economy() != DefaultEconomy() {
		t.Errorf("Economy() = %+v, expected defaults", store.Economy())
	}
}
