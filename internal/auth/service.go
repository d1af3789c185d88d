// Package auth signs users in and out of the panel through the ZuPOS web
// panel's cookie session.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"zupos_panel/internal/session"
	"zupos_panel/internal/webpanel"
)

// ErrInvalidCredentials covers every failed sign-in: rejected credentials,
// an unreachable web panel and a session that does not validate.
var ErrInvalidCredentials = errors.New("invalid username, password or branch number")

// GenericLoginError is the only message shown for ErrInvalidCredentials.
const GenericLoginError = "Kullanıcı adı, şifre veya şube numarası hatalı"

// Backend is the part of the web panel client used for sign-in.
type Backend interface {
	SignIn(ctx context.Context, creds webpanel.Credentials) ([]webpanel.Cookie, error)
	ValidateSession(ctx context.Context, s webpanel.Session) (bool, error)
	Logout(ctx context.Context, s webpanel.Session)
}

// Unmounter releases per-session navigation state.
type Unmounter interface {
	Drop(sessionID string) bool
}

type Service struct {
	backend  Backend
	sessions *session.Manager
	menus    Unmounter
	logger   *slog.Logger

	// LogoutTimeout bounds the background backend logout.
	LogoutTimeout time.Duration
}

func NewService(backend Backend, sessions *session.Manager, menus Unmounter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend:       backend,
		sessions:      sessions,
		menus:         menus,
		logger:        logger.With("component", "auth"),
		LogoutTimeout: 5 * time.Second,
	}
}

// NewUser builds the profile of a signed-in user.
func NewUser(username, branchNo string) session.User {
	return session.User{
		ID:         "user_" + username + "_" + branchNo,
		Username:   username,
		BranchNo:   branchNo,
		BranchName: "Şube " + branchNo,
		Role:       "user",
	}
}

// Login validates the form, signs in against the web panel, confirms the
// resulting session and stores it under sessionID. Nothing is stored on
// failure.
func (s *Service) Login(ctx context.Context, sessionID string, f Form) (*session.User, error) {
	if errs := ValidateForm(f); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	logger := s.logger.With("user", f.Username, "branch", f.BranchNo)

	cookies, err := s.backend.SignIn(ctx, webpanel.Credentials{
		BranchNo: f.BranchNo,
		UserName: f.Username,
		Password: f.Password,
	})
	if err != nil {
		logger.Warn("sign-in failed", "error", err)
		return nil, ErrInvalidCredentials
	}

	backend := webpanel.Session{Token: session.SessionMarker, Cookies: cookies}
	valid, err := s.backend.ValidateSession(ctx, backend)
	if err != nil {
		logger.Warn("session validation failed", "error", err)
		return nil, ErrInvalidCredentials
	}
	if !valid {
		logger.Warn("web panel session is not valid after sign-in")
		return nil, ErrInvalidCredentials
	}

	user := NewUser(f.Username, f.BranchNo)
	if err := s.sessions.SetSession(ctx, sessionID, session.SessionMarker, user, cookies); err != nil {
		_ = s.sessions.ClearSession(ctx, sessionID)
		return nil, err
	}

	logger.Info("user signed in")
	return &user, nil
}

// Logout forgets the session locally right away and ends the backend
// session in the background.
func (s *Service) Logout(ctx context.Context, st *session.State) {
	if st == nil {
		return
	}
	if err := s.sessions.ClearSession(ctx, st.ID); err != nil {
		s.logger.Error("failed to clear session", "session_id", st.ID, "error", err)
	}
	if s.menus != nil {
		s.menus.Drop(st.ID)
	}
	if st.Token != session.SessionMarker {
		return
	}

	backend := st.Backend()
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.LogoutTimeout)
	go func() {
		defer cancel()
		s.backend.Logout(bg, backend)
	}()
	s.logger.Info("user signed out", "user", st.User.Username)
}
