package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/space-dodge/internal/backend"
	"github.com/vovakirdan/space-dodge/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s := New(store, nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func postRaw(t *testing.T, url, body string) (*http.Response, backend.ErrorResponse) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	var er backend.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&er)
	return resp, er
}

func TestScoreSaveAndLeaderboard(t *testing.T) {
	_, srv := newTestServer(t)
	ctx := context.Background()
	c := backend.New(srv.URL)

	for _, s := range []struct {
		user  int
		score int
		hood  string
	}{
		{1, 300, "TheBronx"},
		{2, 1200, "Queens"},
		{1, 700, "TheBronx"},
	} {
		if err := c.SubmitScore(ctx, s.user, s.score, s.hood); err != nil {
			t.Fatalf("SubmitScore(%d) failed: %v", s.score, err)
		}
	}

	rows, err := c.Scores(ctx, 0)
	if err != nil {
		t.Fatalf("Scores() failed: %v", err)
	}
	want := []int{1200, 700, 300}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, expected %d", len(rows), len(want))
	}
	for i, score := range want {
		if rows[i].Score != score {
			t.Errorf("rows[%d].Score = %d, expected %d", i, rows[i].Score, score)
		}
	}
	if rows[0].Name() != "player2" || rows[0].Hood != "Queens" {
		t.Errorf("top row = %+v", rows[0])
	}

	rows, err = c.Scores(ctx, 2)
	if err != nil {
		t.Fatalf("Scores(2) failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Scores(2) returned %d rows", len(rows))
	}
}

func TestScoreSaveValidation(t *testing.T) {
	_, srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"empty object", `{}`, []string{"user", "score", "hood"}},
		{"negative score", `{"user":1,"score":-5,"hood":"TheBronx"}`, []string{"score"}},
		{"zero user", `{"user":0,"score":5,"hood":"TheBronx"}`, []string{"user"}},
		{"empty hood", `{"user":1,"score":5,"hood":""}`, []string{"hood"}},
		{"malformed", `{"user":`, []string{"body"}},
		{"no body", ``, []string{"body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, er := postRaw(t, srv.URL+"/api/scoreSave", tt.body)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, expected 422", resp.StatusCode)
			}
			if er.Message != invalidData {
				t.Errorf("message = %q", er.Message)
			}
			for _, f := range tt.fields {
				if len(er.Errors[f]) == 0 {
					t.Errorf("expected an error for field %q, got %v", f, er.Errors)
				}
			}
			if len(er.Errors) != len(tt.fields) {
				t.Errorf("got errors for %d fields, expected %d: %v", len(er.Errors), len(tt.fields), er.Errors)
			}
		})
	}
}

func TestScoresInvalidLimit(t *testing.T) {
	_, srv := newTestServer(t)
	for _, limit := range []string{"0", "abc", "5000"} {
		resp, err := http.Get(srv.URL + "/api/scores?limit=" + limit)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("limit=%s: status = %d, expected 422", limit, resp.StatusCode)
		}
	}
}

func TestAccountFlow(t *testing.T) {
	_, srv := newTestServer(t)
	ctx := context.Background()
	c := backend.New(srv.URL)

	u, err := c.Register(ctx, "ripley", "nostromo")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if _, err := c.Register(ctx, "ripley", "nostromo"); err == nil {
		t.Error("registering a taken name should fail")
	}

	if _, err := c.Coins(ctx); !errors.Is(err, backend.ErrUnauthorized) {
		t.Errorf("Coins() before login error = %v, expected ErrUnauthorized", err)
	}

	if _, err := c.Login(ctx, "ripley", "nostromo"); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	// 1200 / 100 = 12 coins
	if err := c.SubmitScore(ctx, int(u.ID), 1200, "TheBronx"); err != nil {
		t.Fatalf("SubmitScore() failed: %v", err)
	}
	coins, err := c.Coins(ctx)
	if err != nil {
		t.Fatalf("Coins() failed: %v", err)
	}
	if coins != 12 {
		t.Errorf("Coins() = %d, expected 12", coins)
	}

	_, err = c.BuyHearts(ctx, 1)
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Errorf("BuyHearts() with 12 coins error = %v, expected 409", err)
	}

	if err := c.SubmitScore(ctx, int(u.ID), 5000, "TheBronx"); err != nil {
		t.Fatalf("SubmitScore() failed: %v", err)
	}
	up, err := c.BuyHearts(ctx, 1)
	if err != nil {
		t.Fatalf("BuyHearts() failed: %v", err)
	}
	if up.Hearts != 1 || up.HeartPrice != 50 {
		t.Errorf("BuyHearts() = %+v", up)
	}

	up, err = c.Upgrades(ctx)
	if err != nil {
		t.Fatalf("Upgrades() failed: %v", err)
	}
	if up.Hearts != 1 {
		t.Errorf("Upgrades().Hearts = %d, expected 1", up.Hearts)
	}

	token := c.Token()
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	stale := backend.New(srv.URL, backend.WithToken(token))
	if _, err := stale.Coins(ctx); !errors.Is(err, backend.ErrUnauthorized) {
		t.Errorf("Coins() with a revoked token error = %v, expected ErrUnauthorized", err)
	}
}

func TestLoginErrors(t *testing.T) {
	_, srv := newTestServer(t)
	ctx := context.Background()
	c := backend.New(srv.URL)

	if _, err := c.Register(ctx, "hicks", "sulaco1"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	tests := []struct {
		name     string
		user     string
		password string
		reason   string
	}{
		{"unknown user", "bishop", "sulaco1", "Username is unrecognized"},
		{"wrong password", "hicks", "nostromo", "Password is not correct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Login(ctx, tt.user, tt.password)
			if !errors.Is(err, backend.ErrUnauthorized) {
				t.Fatalf("Login() error = %v, expected ErrUnauthorized", err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("error %q should contain %q", err, tt.reason)
			}
		})
	}

	resp, er := postRaw(t, srv.URL+"/api/login", `{"username":"averyveryverylongname","password":""}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, expected 422", resp.StatusCode)
	}
	if len(er.Errors["username"]) == 0 || len(er.Errors["password"]) == 0 {
		t.Errorf("errors = %v, expected username and password", er.Errors)
	}
}

func TestLiveFeed(t *testing.T) {
	s, srv := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan backend.LiveScore, 1)
	go backend.New(srv.URL).Follow(ctx, func(ls backend.LiveScore) {
		got <- ls
	})

	deadline := time.Now().Add(5 * time.Second)
	for s.Hub().Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("live feed subscriber never connected")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := backend.New(srv.URL).SubmitScore(ctx, 3, 900, "Harlem"); err != nil {
		t.Fatalf("SubmitScore() failed: %v", err)
	}

	select {
	case ls := <-got:
		if ls.Score != 900 || ls.Hood != "Harlem" || ls.User != 3 {
			t.Errorf("live score = %+v", ls)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no live score received")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(store, nil).ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, expected nil after cancel", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}
