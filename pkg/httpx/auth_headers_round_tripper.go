package httpx

import (
	"fmt"
	"net/http"
)

type authHeaderSource interface {
	AuthHeaders() (http.Header, bool)
}

// AuthHeadersRoundTripper attaches the current session headers to every
// outgoing request that does not already carry them. Requests pass through
// untouched while there is no valid session.
type AuthHeadersRoundTripper struct {
	next   http.RoundTripper
	source authHeaderSource
}

func NewAuthHeadersRoundTripper(
	next http.RoundTripper,
	source authHeaderSource,
) AuthHeadersRoundTripper {
	return AuthHeadersRoundTripper{
		next:   next,
		source: source,
	}
}

func (rt AuthHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	headers, ok := rt.source.AuthHeaders()
	if ok {
		req = req.Clone(req.Context())

		for name, values := range headers {
			if req.Header.Get(name) != "" {
				continue
			}

			for _, v := range values {
				req.Header.Add(name, v)
			}
		}
	}

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	return resp, nil
}
