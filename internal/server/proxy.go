package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"wfm_flipper/internal/domain"
	"wfm_flipper/internal/infrastructure/market"
	"wfm_flipper/internal/infrastructure/ratelimit"
	"wfm_flipper/pkg/errcodes"
	"wfm_flipper/pkg/httpx/reply"
)

const maxProxyBodySize = 1 << 20

type forwarder interface {
	Forward(ctx context.Context, method, path string, query url.Values, body []byte) (market.Response, error)
}

type limiterStatus interface {
	Status() ratelimit.Status
}

type ProxyServer struct {
	market  forwarder
	limiter limiterStatus
}

func NewProxyServer(market forwarder, limiter limiterStatus) ProxyServer {
	return ProxyServer{
		market:  market,
		limiter: limiter,
	}
}

// proxy relays /api/* to the market API and copies the answer back as is.
func (s ProxyServer) proxy(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBodySize))
	if err != nil {
		return domain.WrapError(err, errcodes.ValidationError, "Invalid request body")
	}

	if len(body) == 0 {
		body = nil
	}

	resp, err := s.market.Forward(ctx, r.Method, chi.URLParam(r, "*"), r.URL.Query(), body)
	if err != nil {
		return fmt.Errorf("market.Forward: %w", err)
	}

	reply.Raw(ctx, w, resp.StatusCode, resp.ContentType, resp.Body)

	return nil
}

func (s ProxyServer) getRateLimitStatus(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, newRESTRateLimitStatus(s.limiter.Status()))

	return nil
}
