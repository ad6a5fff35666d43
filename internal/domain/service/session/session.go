// Package session keeps the single shared market login of the proxy.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/logx"
)

const DefaultTTL = time.Hour

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type AuthAPI interface {
	FetchCSRFToken(ctx context.Context) (string, error)
	SignIn(ctx context.Context, email, password, csrfToken string) (entity.SignInReply, error)
}

// Session is valid for a fixed TTL after login. There is no refresh: once
// the TTL passes the session is dropped and a new login is required.
type Session struct {
	api AuthAPI
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	token    string
	username string
	loginAt  time.Time
}

func New(api AuthAPI, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Session{
		api: api,
		ttl: ttl,
		now: time.Now,
	}
}

func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Login runs the probe + signin handshake. Failures are reported in the
// result, never as errors.
func (s *Session) Login(ctx context.Context, email, password string) entity.LoginResult {
	csrfToken, err := s.api.FetchCSRFToken(ctx)
	if err != nil {
		// The probe is best effort; signin may still succeed without it.
		logger(ctx).Warn("csrf probe failed", logx.Error(err))
	}

	reply, err := s.api.SignIn(ctx, email, password, csrfToken)
	if err != nil {
		logger(ctx).Error("signin failed", logx.Error(err))

		return entity.LoginResult{Message: fmt.Sprintf("Login error: %v", err)}
	}

	switch {
	case reply.StatusCode == http.StatusOK && reply.Token != "":
	case reply.StatusCode == http.StatusOK:
		return entity.LoginResult{Message: "No JWT token found in response"}
	default:
		message := reply.ErrorMessage
		if message == "" {
			message = "Unknown error"
		}

		return entity.LoginResult{Message: "Login failed: " + message}
	}

	s.mu.Lock()
	s.token = reply.Token
	s.username = reply.Username
	s.loginAt = s.now()
	s.mu.Unlock()

	logger(ctx).Info("logged in", slog.String(logx.FieldUsername, reply.Username))

	return entity.LoginResult{
		Success:  true,
		Message:  "Login successful",
		Token:    reply.Token,
		Username: reply.Username,
	}
}

func (s *Session) Logout() entity.LoginResult {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	return entity.LoginResult{Success: true, Message: "Logged out"}
}

func (s *Session) IsValid() bool {
	_, ok := s.current()
	return ok
}

// Username returns the in-game name of a valid session.
func (s *Session) Username() (string, bool) {
	snap, ok := s.current()
	return snap.username, ok
}

// AuthHeaders returns the headers the market expects on authenticated calls,
// or false when there is no valid session.
func (s *Session) AuthHeaders() (http.Header, bool) {
	snap, ok := s.current()
	if !ok {
		return nil, false
	}

	return http.Header{
		"Authorization": {"Bearer " + snap.token},
		"X-CSRF-Token":  {snap.token},
		"CSRF-Token":    {snap.token},
		"X-CSRF-TOKEN":  {snap.token},
		"Cookie":        {"JWT=" + snap.token},
	}, true
}

func (s *Session) Status() entity.SessionStatus {
	snap, ok := s.current()
	if !ok {
		return entity.SessionStatus{}
	}

	return entity.SessionStatus{
		LoggedIn:  true,
		Username:  snap.username,
		ExpiresAt: snap.loginAt.Add(s.ttl),
	}
}

type snapshot struct {
	token    string
	username string
	loginAt  time.Time
}

// current returns the session if it is still valid and drops it otherwise.
func (s *Session) current() (snapshot, bool) {
	s.mu.RLock()
	snap := snapshot{token: s.token, username: s.username, loginAt: s.loginAt}
	s.mu.RUnlock()

	if snap.token == "" {
		return snapshot{}, false
	}

	if s.now().Sub(snap.loginAt) < s.ttl {
		return snap, true
	}

	s.mu.Lock()
	// Another login may have happened since the read.
	if s.loginAt.Equal(snap.loginAt) {
		s.clearLocked()
	}
	s.mu.Unlock()

	return snapshot{}, false
}

func (s *Session) clearLocked() {
	s.token = ""
	s.username = ""
	s.loginAt = time.Time{}
}
