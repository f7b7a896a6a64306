package backend

import "time"

// JSON shapes exchanged with the score backend.

// ScoreSaveRequest is the body of POST /api/scoreSave.
type ScoreSaveRequest struct {
	User  int    `json:"user"`
	Score int    `json:"score"`
	Hood  string `json:"hood"`
}

// ScoreSaveResponse is returned by POST /api/scoreSave.
type ScoreSaveResponse struct {
	Data SavedScore `json:"data"`
}

// SavedScore identifies a stored score.
type SavedScore struct {
	ID int64 `json:"id"`
}

// ScoresResponse is returned by GET /api/scores.
type ScoresResponse struct {
	Data []ScoreRecord `json:"data"`
}

// ScoreRecord is one leaderboard row. User is a list to match the backend's
// relation encoding; it normally holds exactly one name.
type ScoreRecord struct {
	User  []UserName `json:"user"`
	Score int        `json:"score"`
	Hood  string     `json:"hood"`
}

// Name returns the first user name of the record.
func (r ScoreRecord) Name() string {
	if len(r.User) == 0 {
		return ""
	}
	return r.User[0].Name
}

// UserName carries a display name.
type UserName struct {
	Name string `json:"name"`
}

// CoinResponse is returned by GET /api/getUserCoin.
type CoinResponse struct {
	User CoinUser `json:"user"`
}

// CoinUser is a user together with their coin balances.
type CoinUser struct {
	ID   int64         `json:"id"`
	Name string        `json:"name"`
	Coin []CoinBalance `json:"coin"`
}

// CoinBalance is a coin balance row.
type CoinBalance struct {
	Coins int `json:"coins"`
}

// Credentials is the body of POST /api/login and POST /api/register.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /api/login.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        UserInfo `json:"user"`
}

// UserInfo identifies an account.
type UserInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RegisterResponse is returned by POST /api/register.
type RegisterResponse struct {
	User UserInfo `json:"user"`
}

// UpgradeResponse is returned by GET and POST /api/upgrades.
type UpgradeResponse struct {
	Data UpgradeInfo `json:"data"`
}

// UpgradeInfo describes the purchased upgrades of a user.
type UpgradeInfo struct {
	UserID     int64 `json:"user_id"`
	Hearts     int   `json:"hearts"`
	HeartPrice int   `json:"heart_price"`
}

// BuyRequest is the body of POST /api/upgrades.
type BuyRequest struct {
	Hearts int `json:"hearts"`
}

// ErrorResponse is the body of every non-2xx response.
// Error is set by login failures ("Username is unrecognized",
// "Password is not correct"); Errors holds per-field validation messages.
type ErrorResponse struct {
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// LiveScore is pushed on the /api/scores/live feed for every saved score.
type LiveScore struct {
	ID      int64     `json:"id"`
	User    int64     `json:"user"`
	Name    string    `json:"name"`
	Score   int       `json:"score"`
	Hood    string    `json:"hood"`
	SavedAt time.Time `json:"saved_at"`
}
