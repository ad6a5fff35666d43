package market

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"wfm_flipper/internal/config"
	"wfm_flipper/internal/domain/entity"
)

const jwtCookieName = "JWT"

// AuthAPI performs the two unauthenticated calls of the login handshake.
// It bypasses the rate limiter and never carries session headers.
type AuthAPI struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewAuthAPI(cfg config.Market, transport http.RoundTripper) AuthAPI {
	if transport == nil {
		transport = http.DefaultTransport
	}

	return AuthAPI{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.AuthUserAgent,
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
	}
}

// FetchCSRFToken harvests the pre-login JWT cookie from GET /auth.
// An empty token with nil error means the cookie was not set.
func (a AuthAPI) FetchCSRFToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth", http.NoBody)
	if err != nil {
		return "", fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	return jwtCookie(resp), nil
}

// SignIn posts the credentials. The returned error covers transport
// failures only; upstream rejections come back in the reply.
func (a AuthAPI) SignIn(ctx context.Context, email, password, csrfToken string) (entity.SignInReply, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password})
	if err != nil {
		return entity.SignInReply{}, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/signin", bytes.NewReader(body))
	if err != nil {
		return entity.SignInReply{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", a.userAgent)

	if csrfToken != "" {
		req.Header.Set("X-CSRF-Token", csrfToken)
		req.Header["CSRF-Token"] = []string{csrfToken}
		req.Header["X-CSRF-TOKEN"] = []string{csrfToken}
		req.Header.Set("Authorization", "Bearer "+csrfToken)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return entity.SignInReply{}, fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return entity.SignInReply{}, fmt.Errorf("io.ReadAll: %w", err)
	}

	reply := entity.SignInReply{
		StatusCode: resp.StatusCode,
		Token:      jwtCookie(resp),
	}

	if resp.StatusCode != http.StatusOK {
		reply.ErrorMessage = errorMessage(data)
		return reply, nil
	}

	var signIn signInResponse
	if err = json.Unmarshal(data, &signIn); err == nil {
		reply.Username = signIn.Payload.User.IngameName
		if reply.Username == "" {
			reply.Username = signIn.Payload.User.Slug
		}
	}

	return reply, nil
}

func jwtCookie(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == jwtCookieName && cookie.Value != "" {
			return cookie.Value
		}
	}

	return ""
}
