package middlewarex

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"wfm_flipper/internal/domain"
	"wfm_flipper/pkg/errcodes"
	"wfm_flipper/pkg/httpx/reply"
	"wfm_flipper/pkg/logx"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger(ctx).Error(
					"panic in handler",
					slog.Any(logx.FieldError, rec),
					slog.String(logx.FieldStack, string(debug.Stack())),
				)

				reply.Error(ctx, w, domain.WrapError(
					fmt.Errorf("panic: %v", rec),
					errcodes.InternalServerError,
					"internal error",
				))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
