package api

import (
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/vovakirdan/space-dodge/internal/backend"
	"github.com/vovakirdan/space-dodge/internal/storage"
)

// Input limits.
const (
	maxUsernameLen = 15
	minPasswordLen = 6
	maxHoodLen     = 64
	maxHearts      = 10
	defaultLimit   = 100
	maxLimit       = 1000
)

// scoreSaveInput uses pointers so missing fields can be told from zeros.
type scoreSaveInput struct {
	User  *int    `json:"user"`
	Score *int    `json:"score"`
	Hood  *string `json:"hood"`
}

func (in scoreSaveInput) validate() fieldErrors {
	errs := fieldErrors{}
	switch {
	case in.User == nil:
		errs.add("user", "The user field is required.")
	case *in.User < 1:
		errs.add("user", "The user must be at least 1.")
	}
	switch {
	case in.Score == nil:
		errs.add("score", "The score field is required.")
	case *in.Score < 0:
		errs.add("score", "The score must be at least 0.")
	}
	switch {
	case in.Hood == nil || *in.Hood == "":
		errs.add("hood", "The hood field is required.")
	case utf8.RuneCountInString(*in.Hood) > maxHoodLen:
		errs.add("hood", "The hood may not be greater than %d characters.", maxHoodLen)
	}
	return errs
}

func (s *Server) handleScoreSave(w http.ResponseWriter, r *http.Request) {
	var in scoreSaveInput
	if !decode(w, r, &in) {
		return
	}
	if errs := in.validate(); len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}

	entry, err := s.store.SaveScore(r.Context(), int64(*in.User), *in.Score, *in.Hood)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("score saved", "user", entry.UserID, "score", entry.Score, "hood", entry.Hood)

	s.hub.Broadcast(backend.LiveScore{
		ID:      entry.ID,
		User:    entry.UserID,
		Name:    entry.UserName,
		Score:   entry.Score,
		Hood:    entry.Hood,
		SavedAt: entry.CreatedAt,
	})

	writeJSON(w, http.StatusCreated, backend.ScoreSaveResponse{Data: backend.SavedScore{ID: entry.ID}})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			errs := fieldErrors{}
			errs.add("limit", "The limit must be an integer between 1 and %d.", maxLimit)
			writeInvalid(w, errs)
			return
		}
		limit = n
	}

	entries, err := s.store.TopScores(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rows := make([]backend.ScoreRecord, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, backend.ScoreRecord{
			User:  []backend.UserName{{Name: e.UserName}},
			Score: e.Score,
			Hood:  e.Hood,
		})
	}
	writeJSON(w, http.StatusOK, backend.ScoresResponse{Data: rows})
}

func (s *Server) handleUserCoin(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	coins, err := s.store.Coins(r.Context(), u.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.CoinResponse{User: backend.CoinUser{
		ID:   u.ID,
		Name: u.Name,
		Coin: []backend.CoinBalance{{Coins: coins}},
	}})
}

// validateCredentials checks a login or registration body.
func validateCredentials(c backend.Credentials, register bool) fieldErrors {
	errs := fieldErrors{}
	switch {
	case c.Username == "":
		errs.add("username", "The username field is required.")
	case utf8.RuneCountInString(c.Username) > maxUsernameLen:
		errs.add("username", "The username may not be greater than %d characters.", maxUsernameLen)
	}
	switch {
	case c.Password == "":
		errs.add("password", "The password field is required.")
	case register && utf8.RuneCountInString(c.Password) < minPasswordLen:
		errs.add("password", "The password must be at least %d characters.", minPasswordLen)
	}
	return errs
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c backend.Credentials
	if !decode(w, r, &c) {
		return
	}
	if errs := validateCredentials(c, false); len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}

	u, err := s.store.Authenticate(r.Context(), c.Username, c.Password)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusUnauthorized, backend.ErrorResponse{Error: "Username is unrecognized"})
		return
	case errors.Is(err, storage.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, backend.ErrorResponse{Error: "Password is not correct"})
		return
	case err != nil:
		s.writeError(w, r, err)
		return
	}

	token, err := s.store.IssueToken(r.Context(), u.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("user logged in", "user", u.ID)
	writeJSON(w, http.StatusOK, backend.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        backend.UserInfo{ID: u.ID, Name: u.Name},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RevokeToken(r.Context(), bearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("user logged out", "user", userFrom(r.Context()).ID)
	writeJSON(w, http.StatusOK, errorBody("Successfully logged out"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c backend.Credentials
	if !decode(w, r, &c) {
		return
	}
	if errs := validateCredentials(c, true); len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}

	u, err := s.store.CreateUser(r.Context(), c.Username, c.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("user registered", "user", u.ID, "name", u.Name)
	writeJSON(w, http.StatusCreated, backend.RegisterResponse{User: backend.UserInfo{ID: u.ID, Name: u.Name}})
}

func (s *Server) upgradeInfo(up storage.Upgrade) backend.UpgradeInfo {
	return backend.UpgradeInfo{
		UserID:     up.UserID,
		Hearts:     up.Hearts,
		HeartPrice: s.store.Economy().HeartPrice,
	}
}

func (s *Server) handleUpgrades(w http.ResponseWriter, r *http.Request) {
	up, err := s.store.Upgrades(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.UpgradeResponse{Data: s.upgradeInfo(up)})
}

func (s *Server) handleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	var in backend.BuyRequest
	if !decode(w, r, &in) {
		return
	}
	if in.Hearts < 1 || in.Hearts > maxHearts {
		errs := fieldErrors{}
		errs.add("hearts", "The hearts must be between 1 and %d.", maxHearts)
		writeInvalid(w, errs)
		return
	}

	u := userFrom(r.Context())
	up, err := s.store.BuyHearts(r.Context(), u.ID, in.Hearts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("hearts bought", "user", u.ID, "hearts", in.Hearts)
	writeJSON(w, http.StatusOK, backend.UpgradeResponse{Data: s.upgradeInfo(up)})
}
