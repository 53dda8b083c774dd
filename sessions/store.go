// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/farmdesk/auth"
	"github.com/danielhkuo/farmdesk/models"
)

var ErrNotFound = errors.New("session not found")

// Session is the persisted login state of one browser
type Session struct {
	ID              string
	Username        string
	Email           string
	AccessToken     string
	RefreshToken    string
	PendingUsername string
	PendingEmail    string
}

// LoggedIn reports whether the session holds an access token
func (s *Session) LoggedIn() bool {
	return s.AccessToken != ""
}

// Store persists sessions in the session table
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts an empty session with a fresh id
func (s *Store) Create(ctx context.Context) (*Session, error) {
	id, err := auth.GenerateID(24)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session (id, created_at, updated_at)
		VALUES ($1, $2, $3)
	`, id, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &Session{ID: id}, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	sess := &Session{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT username, email, access_token, refresh_token, pending_username, pending_email
		FROM session
		WHERE id = $1
	`, id).Scan(&sess.Username, &sess.Email, &sess.AccessToken, &sess.RefreshToken,
		&sess.PendingUsername, &sess.PendingEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

// SetPending remembers who passed the password step and awaits an OTP
func (s *Store) SetPending(ctx context.Context, id, username, email string) error {
	return s.update(ctx, "set pending login", `
		UPDATE session SET pending_username = $2, pending_email = $3, updated_at = $4
		WHERE id = $1
	`, id, username, email)
}

func (s *Store) ClearPending(ctx context.Context, id string) error {
	return s.update(ctx, "clear pending login", `
		UPDATE session SET pending_username = '', pending_email = '', updated_at = $2
		WHERE id = $1
	`, id)
}

// SaveTokens completes a login: the pending user becomes the signed-in user
func (s *Store) SaveTokens(ctx context.Context, id string, tokens models.TokenPair) error {
	return s.update(ctx, "save tokens", `
		UPDATE session
		SET access_token = $2, refresh_token = $3,
		    username = pending_username, email = pending_email,
		    pending_username = '', pending_email = '', updated_at = $4
		WHERE id = $1
	`, id, tokens.Access, tokens.Refresh)
}

func (s *Store) SetProfile(ctx context.Context, id, username, email string) error {
	return s.update(ctx, "set profile", `
		UPDATE session SET username = $2, email = $3, updated_at = $4
		WHERE id = $1
	`, id, username, email)
}

// ClearTokens signs the session out, dropping any pending login too
func (s *Store) ClearTokens(ctx context.Context, id string) error {
	return s.update(ctx, "clear tokens", `
		UPDATE session
		SET access_token = '', refresh_token = '', username = '', email = '',
		    pending_username = '', pending_email = '', updated_at = $2
		WHERE id = $1
	`, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteIdle removes sessions not updated since before
func (s *Store) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE updated_at < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	return res.RowsAffected()
}

// update runs query with args followed by the current time, and reports
// ErrNotFound when no row matched
func (s *Store) update(ctx context.Context, what, query string, args ...any) error {
	args = append(args, time.Now().UTC())
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
