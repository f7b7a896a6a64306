// Package backend is the client for the Space Dodge score backend.
// It submits finished runs, reads the leaderboard and coin balance, manages the
// login token and follows the live score feed.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrUnauthorized is returned when the backend rejects the credentials or
// token, or when a call needs a token and the client has none.
var ErrUnauthorized = errors.New("backend: unauthorized")

// APIError is a non-2xx response other than 401.
type APIError struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Client talks to the score backend over HTTP.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken starts the client with an existing bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token, or empty when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// SubmitScore posts a finished run to /api/scoreSave.
func (c *Client) SubmitScore(ctx context.Context, userID, score int, hood string) error {
	var resp ScoreSaveResponse
	req := ScoreSaveRequest{User: userID, Score: score, Hood: hood}
	if err := c.do(ctx, http.MethodPost, "/api/scoreSave", req, &resp, false); err != nil {
		return fmt.Errorf("backend: cannot save score: %w", err)
	}
	return nil
}

// Scores returns up to limit leaderboard rows, best first. limit <= 0 uses the
// backend default.
func (c *Client) Scores(ctx context.Context, limit int) ([]ScoreRecord, error) {
	path := "/api/scores"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp ScoresResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return nil, fmt.Errorf("backend: cannot fetch scores: %w", err)
	}
	return resp.Data, nil
}

// Coins returns the logged-in user's coin balance.
func (c *Client) Coins(ctx context.Context) (int, error) {
	var resp CoinResponse
	if err := c.do(ctx, http.MethodGet, "/api/getUserCoin", nil, &resp, true); err != nil {
		return 0, fmt.Errorf("backend: cannot fetch coins: %w", err)
	}
	total := 0
	for _, b := range resp.User.Coin {
		total += b.Coins
	}
	return total, nil
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, name, password string) (UserInfo, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", Credentials{Username: name, Password: password}, &resp, false)
	if err != nil {
		return UserInfo{}, fmt.Errorf("backend: cannot log in: %w", err)
	}
	c.setToken(resp.AccessToken)
	return resp.User, nil
}

// Logout revokes the current token. The token is forgotten even when the
// backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil, true)
	c.setToken("")
	if err != nil {
		return fmt.Errorf("backend: cannot log out: %w", err)
	}
	return nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, password string) (UserInfo, error) {
	var resp RegisterResponse
	err := c.do(ctx, http.MethodPost, "/api/register", Credentials{Username: name, Password: password}, &resp, false)
	if err != nil {
		return UserInfo{}, fmt.Errorf("backend: cannot register: %w", err)
	}
	return resp.User, nil
}

// Upgrades returns the logged-in user's purchased upgrades.
func (c *Client) Upgrades(ctx context.Context) (UpgradeInfo, error) {
	var resp UpgradeResponse
	if err := c.do(ctx, http.MethodGet, "/api/upgrades", nil, &resp, true); err != nil {
		return UpgradeInfo{}, fmt.Errorf("backend: cannot fetch upgrades: %w", err)
	}
	return resp.Data, nil
}

// BuyHearts spends coins on extra hearts.
func (c *Client) BuyHearts(ctx context.Context, hearts int) (UpgradeInfo, error) {
	var resp UpgradeResponse
	if err := c.do(ctx, http.MethodPost, "/api/upgrades", BuyRequest{Hearts: hearts}, &resp, true); err != nil {
		return UpgradeInfo{}, fmt.Errorf("backend: cannot buy hearts: %w", err)
	}
	return resp.Data, nil
}

// Follow streams saved scores from the live feed until ctx is done or the
// connection drops. fn is called for each score in arrival order.
func (c *Client) Follow(ctx context.Context, fn func(LiveScore)) error {
	u, err := url.Parse(c.baseURL + "/api/scores/live")
	if err != nil {
		return fmt.Errorf("backend: invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("backend: cannot connect to live feed: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var s LiveScore
		if err := conn.ReadJSON(&s); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("backend: live feed closed: %w", err)
		}
		fn(s)
	}
}

// do sends a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.Token()
		if token == "" {
			return ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er ErrorResponse
		json.NewDecoder(resp.Body).Decode(&er)
		if resp.StatusCode == http.StatusUnauthorized {
			if er.Error != "" {
				return fmt.Errorf("%w: %s", ErrUnauthorized, er.Error)
			}
			return ErrUnauthorized
		}
		msg := er.Message
		if msg == "" {
			msg = er.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Errors: er.Errors}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}
	return nil
}
