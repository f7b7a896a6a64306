package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a registered player.
type User struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *Store) CreateUser(ctx context.Context, name, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE name = ?", name).Scan(&exists)
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot check user: %w", err)
	}
	if exists > 0 {
		return User{}, ErrUserExists
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (name, password_hash) VALUES (?, ?)",
		name, string(hash),
	)
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("storage: cannot commit user: %w", err)
	}
	return s.UserByID(ctx, id)
}

// EnsureUser returns the user with the given name, creating it with a random
// password when it does not exist. Used for SSH sessions, which are already
// authenticated by the SSH layer.
func (s *Store) EnsureUser(ctx context.Context, name string) (User, error) {
	u, err := s.UserByName(ctx, name)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	u, err = s.CreateUser(ctx, name, uuid.NewString())
	if errors.Is(err, ErrUserExists) {
		// Lost a race with another session for the same name.
		return s.UserByName(ctx, name)
	}
	return u, err
}

// Authenticate checks a name/password pair.
// Returns ErrNotFound for an unknown name and ErrInvalidCredentials for a
// wrong password.
func (s *Store) Authenticate(ctx context.Context, name, password string) (User, error) {
	var u User
	var hash string
	var createdAt any
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, password_hash, created_at FROM users WHERE name = ?",
		name,
	).Scan(&u.ID, &u.Name, &hash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// UserByID looks up a user by id.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	return s.queryUser(ctx, "SELECT id, name, created_at FROM users WHERE id = ?", id)
}

// UserByName looks up a user by name.
func (s *Store) UserByName(ctx context.Context, name string) (User, error) {
	return s.queryUser(ctx, "SELECT id, name, created_at FROM users WHERE name = ?", name)
}

func (s *Store) queryUser(ctx context.Context, query string, arg any) (User, error) {
	var u User
	var createdAt any
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot query user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// IssueToken creates a new bearer token for the user.
func (s *Store) IssueToken(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tokens (token, user_id) VALUES (?, ?)",
		token, userID,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot issue token: %w", err)
	}
	return token, nil
}

// UserByToken resolves a bearer token to its user.
func (s *Store) UserByToken(ctx context.Context, token string) (User, error) {
	var u User
	var createdAt any
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.name, u.created_at
		 FROM tokens t JOIN users u ON u.id = t.user_id
		 WHERE t.token = ?`,
		token,
	).Scan(&u.ID, &u.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot query token: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// RevokeToken deletes a bearer token.
func (s *Store) RevokeToken(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tokens WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("storage: cannot revoke token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot revoke token: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
