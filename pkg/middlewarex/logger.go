package middlewarex

import (
	"log/slog"
	"net/http"

	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/logx"
)

// Logger puts a request scoped logger into the context. base is used when
// the incoming context carries no logger of its own.
func Logger(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			log, err := contextx.LoggerFromContext(ctx)
			if err != nil {
				log = base
			}

			traceID, err := contextx.TraceIDFromContext(ctx)
			if err != nil {
				log.Error("contextx.TraceIDFromContext", logx.Error(err))
			}

			ctx = contextx.WithLogger(
				ctx,
				log.With(
					logx.Stringer(logx.FieldTraceID, traceID),
					slog.String(logx.FieldURL, r.URL.Path),
					slog.String(logx.FieldHTTPMethod, r.Method),
					slog.String(logx.FieldIP, r.RemoteAddr),
				),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
