package session_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wfm_flipper/internal/config"
	"wfm_flipper/internal/domain/service/session"
	"wfm_flipper/internal/infrastructure/market"
)

type fakeMarket struct {
	mu          sync.Mutex
	probeCookie string
	signinCode  int
	signinToken string
	signinBody  string
	gotHeaders  http.Header
	gotBody     string
}

func (f *fakeMarket) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/auth", func(w http.ResponseWriter, _ *http.Request) {
		if f.probeCookie != "" {
			http.SetCookie(w, &http.Cookie{Name: "JWT", Value: f.probeCookie, Path: "/"})
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /v1/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.gotHeaders = r.Header.Clone()
		f.gotBody = string(body)
		f.mu.Unlock()

		if f.signinToken != "" {
			http.SetCookie(w, &http.Cookie{Name: "JWT", Value: f.signinToken, Path: "/"})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.signinCode)
		w.Write([]byte(f.signinBody))
	})

	return mux
}

func (f *fakeMarket) received() (http.Header, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.gotHeaders, f.gotBody
}

func newSession(t *testing.T, fake *fakeMarket, now func() time.Time) *session.Session {
	t.Helper()

	httpServer := httptest.NewServer(fake.handler())
	t.Cleanup(httpServer.Close)

	api := market.NewAuthAPI(config.Market{
		BaseURL:        httpServer.URL + "/v1",
		AuthUserAgent:  "Warframe-Market-Auth/1.0",
		RequestTimeout: 5 * time.Second,
	}, nil)

	return session.New(api, time.Hour).WithClock(now)
}

func TestSessionLogin(t *testing.T) {
	rq := require.New(t)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	testCases := []struct {
		name     string
		fake     *fakeMarket
		success  bool
		message  string
		username string
	}{
		{
			name: "Successful login",
			fake: &fakeMarket{
				probeCookie: "pre-token",
				signinCode:  http.StatusOK,
				signinToken: "session-token",
				signinBody:  `{"payload":{"user":{"ingame_name":"Tenno","slug":"tenno"}}}`,
			},
			success:  true,
			message:  "Login successful",
			username: "Tenno",
		},
		{
			name: "Username falls back to slug",
			fake: &fakeMarket{
				signinCode:  http.StatusOK,
				signinToken: "session-token",
				signinBody:  `{"payload":{"user":{"slug":"tenno"}}}`,
			},
			success:  true,
			message:  "Login successful",
			username: "tenno",
		},
		{
			name: "No token in response",
			fake: &fakeMarket{
				signinCode: http.StatusOK,
				signinBody: `{"payload":{"user":{"ingame_name":"Tenno"}}}`,
			},
			message: "No JWT token found in response",
		},
		{
			name: "Upstream rejects credentials",
			fake: &fakeMarket{
				signinCode: http.StatusUnauthorized,
				signinBody: `{"error":{"message":"Invalid email or password"}}`,
			},
			message: "Login failed: Invalid email or password",
		},
		{
			name: "Upstream error without message",
			fake: &fakeMarket{
				signinCode: http.StatusInternalServerError,
				signinBody: `oops`,
			},
			message: "Login failed: Unknown error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			s := newSession(t, tc.fake, clock)

			result := s.Login(context.Background(), "tenno@example.com", "hunter2")

			rq.Equal(tc.success, result.Success)
			rq.Equal(tc.message, result.Message)
			rq.Equal(tc.username, result.Username)
			rq.Equal(tc.success, s.IsValid())

			headers, body := tc.fake.received()
			rq.Equal("Warframe-Market-Auth/1.0", headers.Get("User-Agent"))

			if tc.success {
				rq.Equal("session-token", result.Token)
				rq.JSONEq(`{"email":"tenno@example.com","password":"hunter2"}`, body)

				status := s.Status()
				rq.True(status.LoggedIn)
				rq.Equal(tc.username, status.Username)
				rq.Equal(now.Add(time.Hour), status.ExpiresAt)
			}

			if tc.fake.probeCookie != "" {
				rq.Equal("pre-token", headers.Get("X-CSRF-Token"))
				rq.Equal("Bearer pre-token", headers.Get("Authorization"))
			} else {
				rq.Empty(headers.Get("Authorization"))
			}
		})
	}
}

func TestSessionNetworkError(t *testing.T) {
	rq := require.New(t)

	api := market.NewAuthAPI(config.Market{
		BaseURL:        "http://127.0.0.1:1/v1",
		RequestTimeout: time.Second,
	}, nil)

	s := session.New(api, time.Hour)

	result := s.Login(context.Background(), "tenno@example.com", "hunter2")

	rq.False(result.Success)
	rq.Contains(result.Message, "Login error: ")
	rq.False(s.IsValid())
}

func TestSessionExpiry(t *testing.T) {
	rq := require.New(t)

	var mu sync.Mutex

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	s := newSession(t, &fakeMarket{
		signinCode:  http.StatusOK,
		signinToken: "session-token",
		signinBody:  `{"payload":{"user":{"ingame_name":"Tenno"}}}`,
	}, clock)

	headers, ok := s.AuthHeaders()
	rq.False(ok)
	rq.Nil(headers)

	rq.True(s.Login(context.Background(), "tenno@example.com", "hunter2").Success)

	headers, ok = s.AuthHeaders()
	rq.True(ok)
	rq.Equal("Bearer session-token", headers.Get("Authorization"))
	rq.Equal("session-token", headers.Get("X-CSRF-Token"))
	rq.Equal("JWT=session-token", headers.Get("Cookie"))

	advance(59 * time.Minute)
	rq.True(s.IsValid())

	username, ok := s.Username()
	rq.True(ok)
	rq.Equal("Tenno", username)

	advance(time.Minute)
	rq.False(s.IsValid())
	rq.False(s.Status().LoggedIn)

	_, ok = s.Username()
	rq.False(ok)
}

func TestSessionLogout(t *testing.T) {
	rq := require.New(t)

	s := newSession(t, &fakeMarket{
		signinCode:  http.StatusOK,
		signinToken: "session-token",
		signinBody:  `{}`,
	}, time.Now)

	rq.True(s.Login(context.Background(), "tenno@example.com", "hunter2").Success)
	rq.True(s.IsValid())

	result := s.Logout()
	rq.True(result.Success)
	rq.Equal("Logged out", result.Message)
	rq.False(s.IsValid())
	rq.Empty(s.Status().Username)
}
