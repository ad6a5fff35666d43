package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"wfm_flipper/pkg/httpx"
)

type staticHeaders struct {
	headers http.Header
	ok      bool
}

func (s staticHeaders) AuthHeaders() (http.Header, bool) {
	return s.headers, s.ok
}

func TestAuthHeadersRoundTripper(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name          string
		source        staticHeaders
		requestHeader http.Header
		authorization string
		cookie        string
	}{
		{
			name: "No session",
			source: staticHeaders{
				ok: false,
			},
		},
		{
			name: "Session headers attached",
			source: staticHeaders{
				headers: http.Header{
					"Authorization": {"Bearer abc"},
					"Cookie":        {"JWT=abc"},
				},
				ok: true,
			},
			authorization: "Bearer abc",
			cookie:        "JWT=abc",
		},
		{
			name: "Explicit header wins",
			source: staticHeaders{
				headers: http.Header{"Authorization": {"Bearer abc"}},
				ok:      true,
			},
			requestHeader: http.Header{"Authorization": {"Bearer explicit"}},
			authorization: "Bearer explicit",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			var gotAuthorization, gotCookie string

			httpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuthorization = r.Header.Get("Authorization")
				gotCookie = r.Header.Get("Cookie")
				w.WriteHeader(http.StatusOK)
			}))
			defer httpServer.Close()

			client := &http.Client{
				Transport: httpx.NewAuthHeadersRoundTripper(http.DefaultTransport, tc.source),
			}

			req, err := http.NewRequest(http.MethodGet, httpServer.URL, http.NoBody)
			rq.NoError(err)

			for k, v := range tc.requestHeader {
				req.Header[k] = v
			}

			resp, err := client.Do(req)
			rq.NoError(err)
			resp.Body.Close()

			rq.Equal(tc.authorization, gotAuthorization)
			rq.Equal(tc.cookie, gotCookie)
		})
	}
}
