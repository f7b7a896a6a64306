package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeBackend records requests and answers like the real backend.
type fakeBackend struct {
	saved []ScoreSaveRequest
	auth  []string
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scoreSave", func(w http.ResponseWriter, r *http.Request) {
		var req ScoreSaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.saved = append(f.saved, req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ScoreSaveResponse{Data: SavedScore{ID: int64(len(f.saved))}})
	})
	mux.HandleFunc("GET /api/scores", func(w http.ResponseWriter, r *http.Request) {
		rows := []ScoreRecord{
			{User: []UserName{{Name: "ripley"}}, Score: 900, Hood: "TheBronx"},
			{User: []UserName{{Name: "hicks"}}, Score: 400, Hood: "Queens"},
		}
		if r.URL.Query().Get("limit") == "1" {
			rows = rows[:1]
		}
		json.NewEncoder(w).Encode(ScoresResponse{Data: rows})
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var c Credentials
		json.NewDecoder(r.Body).Decode(&c)
		if c.Username == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(ErrorResponse{
				Message: "The given data was invalid.",
				Errors:  map[string][]string{"username": {"The username field is required."}},
			})
			return
		}
		if c.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "Password is not correct"})
			return
		}
		json.NewEncoder(w).Encode(LoginResponse{AccessToken: "tok-1", TokenType: "Bearer", User: UserInfo{ID: 4, Name: c.Username}})
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/getUserCoin", func(w http.ResponseWriter, r *http.Request) {
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(CoinResponse{User: CoinUser{ID: 4, Name: "ripley", Coin: []CoinBalance{{Coins: 12}}}})
	})
	mux.HandleFunc("POST /api/upgrades", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(ErrorResponse{Message: "not enough coins"})
	})
	return mux
}

func TestSubmitScore(t *testing.T) {
	fake := &fakeBackend{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := New(srv.URL + "/")
	if err := c.SubmitScore(context.Background(), 1, 300, "TheBronx"); err != nil {
		t.Fatalf("SubmitScore() failed: %v", err)
	}

	if len(fake.saved) != 1 {
		t.Fatalf("backend received %d scores, expected 1", len(fake.saved))
	}
	want := ScoreSaveRequest{User: 1, Score: 300, Hood: "TheBronx"}
	if fake.saved[0] != want {
		t.Errorf("backend received %+v, expected %+v", fake.saved[0], want)
	}
}

func TestSubmitScoreUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithTimeout(time.Second))
	if err := c.SubmitScore(context.Background(), 1, 100, "TheBronx"); err == nil {
		t.Error("SubmitScore() against a closed server should fail")
	}
}

func TestScores(t *testing.T) {
	srv := httptest.NewServer((&fakeBackend{}).handler())
	defer srv.Close()

	c := New(srv.URL)
	rows, err := c.Scores(context.Background(), 0)
	if err != nil {
		t.Fatalf("Scores() failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Name() != "ripley" || rows[0].Score != 900 {
		t.Errorf("Scores() = %+v", rows)
	}

	rows, err = c.Scores(context.Background(), 1)
	if err != nil {
		t.Fatalf("Scores(1) failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Scores(1) returned %d rows", len(rows))
	}
}

func TestLoginCoinsLogout(t *testing.T) {
	fake := &fakeBackend{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	ctx := context.Background()

	c := New(srv.URL)
	if _, err := c.Coins(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Coins() without a token error = %v, expected ErrUnauthorized", err)
	}

	u, err := c.Login(ctx, "ripley", "secret")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if u.ID != 4 || c.Token() != "tok-1" {
		t.Errorf("Login() = %+v, token %q", u, c.Token())
	}

	coins, err := c.Coins(ctx)
	if err != nil {
		t.Fatalf("Coins() failed: %v", err)
	}
	if coins != 12 {
		t.Errorf("Coins() = %d, expected 12", coins)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	if c.Token() != "" {
		t.Error("Logout() should forget the token")
	}
	if last := fake.auth[len(fake.auth)-1]; last != "Bearer tok-1" {
		t.Errorf("Logout() sent Authorization %q", last)
	}
}

func TestLoginErrors(t *testing.T) {
	srv := httptest.NewServer((&fakeBackend{}).handler())
	defer srv.Close()
	ctx := context.Background()
	c := New(srv.URL)

	_, err := c.Login(ctx, "ripley", "wrong")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Login() with a bad password error = %v, expected ErrUnauthorized", err)
	}
	if err != nil && !strings.Contains(err.Error(), "Password is not correct") {
		t.Errorf("error %q should carry the backend reason", err)
	}

	_, err = c.Login(ctx, "", "secret")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login() with no name error = %v, expected *APIError", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, expected 422", apiErr.Status)
	}
	if len(apiErr.Errors["username"]) != 1 {
		t.Errorf("Errors = %v, expected a username error", apiErr.Errors)
	}
}

func TestBuyHeartsConflict(t *testing.T) {
	srv := httptest.NewServer((&fakeBackend{}).handler())
	defer srv.Close()

	c := New(srv.URL, WithToken("tok-1"))
	_, err := c.BuyHearts(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("BuyHearts() error = %v, expected a 409 APIError", err)
	}
	if !strings.Contains(err.Error(), "not enough coins") {
		t.Errorf("error %q should carry the backend message", err)
	}
}

func TestFollow(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scores/live" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteJSON(LiveScore{ID: 1, Name: "ripley", Score: 500, Hood: "TheBronx"})
		conn.WriteJSON(LiveScore{ID: 2, Name: "hicks", Score: 200, Hood: "Queens"})
	}))
	defer srv.Close()

	var got []LiveScore
	err := New(srv.URL).Follow(context.Background(), func(s LiveScore) {
		got = append(got, s)
	})
	if err == nil {
		t.Error("Follow() should report the closed feed")
	}
	if len(got) != 2 || got[0].Score != 500 || got[1].Name != "hicks" {
		t.Errorf("Follow() delivered %+v", got)
	}
}
