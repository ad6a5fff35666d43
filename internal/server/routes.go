package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wfm_flipper/internal/domain"
	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/errcodes"
	"wfm_flipper/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Get("/rate-limit-status", handler(s.getRateLimitStatus))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", handler(s.postLogin))
		r.Post("/logout", handler(s.postLogout))
		r.Get("/status", handler(s.getAuthStatus))
	})

	// authorized zone
	r.Route("/trading", func(r chi.Router) {
		r.Use(s.requireSession)

		r.Post("/create-wtb", handler(s.postCreateWTB))
		r.Post("/create-wts", handler(s.postCreateWTS))
		r.Post("/delete-order", handler(s.postDeleteOrder))
		r.Get("/my-wtb-orders", handler(s.getMyWTBOrders))
		r.Post("/delete-all-wtb-orders", handler(s.postDeleteAllWTBOrders))
	})

	r.Group(s.analysisRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Group(s.analysisRoutes)

		r.Get("/*", handler(s.proxy))
		r.Post("/*", handler(s.proxy))
		r.Put("/*", handler(s.proxy))
		r.Delete("/*", handler(s.proxy))
	})
}

func (s Server) analysisRoutes(r chi.Router) {
	r.Post("/trading-calc", handler(s.postTradingCalc))
	r.Get("/trading-calc-progress", handler(s.getTradingCalcProgress))
	r.Post("/cancel-analysis", handler(s.postCancelAnalysis))
}

// requireSession rejects requests without a valid market session and puts
// the session's username into the request context.
func (s Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := s.AuthServer.session.Username()
		if !ok {
			reply.Error(r.Context(), w, domain.NewError(errcodes.AuthRequired, "Not logged in"))
			return
		}

		ctx := contextx.WithUsername(r.Context(), contextx.Username(username))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
