// Package session keeps the authentication state of panel sessions: the
// backend token (or the cookie session marker), the signed-in user and the
// web panel cookies forwarded on that user's behalf.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"zupos_panel/internal/cache"
	"zupos_panel/internal/webpanel"
)

// SessionMarker is stored as the token of cookie based sessions.
const SessionMarker = webpanel.SessionMarker

var ErrNotAuthenticated = errors.New("not authenticated")

// User is the profile shown in the panel header.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	BranchNo   string `json:"branchNo"`
	BranchName string `json:"branchName"`
	Role       string `json:"role"`
}

// State is everything stored for one authenticated session.
type State struct {
	ID      string
	Token   string
	User    User
	Cookies []webpanel.Cookie
}

// Backend is the view of the state the web panel client needs.
func (s *State) Backend() webpanel.Session {
	return webpanel.Session{Token: s.Token, Cookies: s.Cookies}
}

// NewID returns a fresh opaque session id.
func NewID() string {
	return uuid.NewString()
}

// Manager persists session state in a cache.Cache. It is created once at
// startup and shared by every handler.
type Manager struct {
	store  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewManager(store cache.Cache, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, ttl: ttl, logger: logger}
}

func tokenKey(id string) string   { return id + ":token" }
func userKey(id string) string    { return id + ":user" }
func cookiesKey(id string) string { return id + ":cookies" }

// GetToken returns the stored token, or "" when there is none.
func (m *Manager) GetToken(ctx context.Context, id string) (string, error) {
	raw, err := m.store.Get(ctx, tokenKey(id))
	if err != nil {
		if cache.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return string(raw), nil
}

// SetSession writes token, user and cookies for id.
func (m *Manager) SetSession(ctx context.Context, id, token string, user User, cookies []webpanel.Cookie) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if cookies == nil {
		cookies = []webpanel.Cookie{}
	}
	cookiesJSON, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	if err := m.store.Set(ctx, tokenKey(id), []byte(token), m.ttl); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := m.store.Set(ctx, userKey(id), userJSON, m.ttl); err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	if err := m.store.Set(ctx, cookiesKey(id), cookiesJSON, m.ttl); err != nil {
		return fmt.Errorf("write cookies: %w", err)
	}
	return nil
}

// ClearSession removes everything stored for id.
func (m *Manager) ClearSession(ctx context.Context, id string) error {
	if err := m.store.DeleteMulti(ctx, []string{tokenKey(id), userKey(id), cookiesKey(id)}); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Load restores the state of id. A missing token or user yields
// ErrNotAuthenticated; an unreadable user record is removed first.
func (m *Manager) Load(ctx context.Context, id string) (*State, error) {
	if id == "" {
		return nil, ErrNotAuthenticated
	}
	token, err := m.GetToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	raw, err := m.store.Get(ctx, userKey(id))
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("read user: %w", err)
	}

	st := &State{ID: id, Token: token}
	if err := json.Unmarshal(raw, &st.User); err != nil || st.User.Username == "" {
		m.logger.Warn("clearing session with corrupt user record", "session_id", id)
		if clearErr := m.ClearSession(ctx, id); clearErr != nil {
			m.logger.Error("failed to clear corrupt session", "session_id", id, "error", clearErr)
		}
		return nil, ErrNotAuthenticated
	}

	if rawCookies, err := m.store.Get(ctx, cookiesKey(id)); err == nil {
		if err := json.Unmarshal(rawCookies, &st.Cookies); err != nil {
			m.logger.Warn("ignoring unreadable session cookies", "session_id", id, "error", err)
			st.Cookies = nil
		}
	} else if !cache.IsNotFound(err) {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	return st, nil
}

// Touch extends the lifetime of every key of id.
func (m *Manager) Touch(ctx context.Context, id string) {
	for _, key := range []string{tokenKey(id), userKey(id), cookiesKey(id)} {
		if err := m.store.Expire(ctx, key, m.ttl); err != nil && !cache.IsNotFound(err) {
			m.logger.Debug("session touch failed", "key", key, "error", err)
		}
	}
}
