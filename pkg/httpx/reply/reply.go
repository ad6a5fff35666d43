package reply

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"wfm_flipper/internal/domain"
	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/errcodes"
	"wfm_flipper/pkg/logx"
	"wfm_flipper/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

// Raw writes an already encoded body, keeping the upstream content type.
func Raw(ctx context.Context, w http.ResponseWriter, statusCode int, contentType string, body []byte) {
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		logger(ctx).Error("w.Write", logx.Error(err))
	}
}

func Error(ctx context.Context, w http.ResponseWriter, err error) {
	code, ok := domain.GetCode(err)
	if !ok {
		code = errcodes.InternalServerError
	}

	status := StatusFor(code)

	if status >= http.StatusInternalServerError {
		logger(ctx).Error("error", logx.Error(err))
	} else {
		logger(ctx).Warn("error", logx.Error(err))
	}

	message := domain.Description(err)
	if code == errcodes.InternalServerError {
		message = http.StatusText(http.StatusInternalServerError)
	}

	JSON(ctx, w, status, rest.Error{
		Code:      rest.ErrorCode(code),
		Message:   message,
		SupportID: contextx.TraceIDOr(ctx, "unsupported"),
	})
}

// StatusFor maps an error code to the status the facade answers with.
func StatusFor(code errcodes.ErrorCode) int {
	switch code {
	case errcodes.ValidationError:
		return http.StatusBadRequest
	case errcodes.AuthRequired:
		return http.StatusUnauthorized
	case errcodes.NotFound, errcodes.JobNotFound:
		return http.StatusNotFound
	case errcodes.RateLimited:
		return http.StatusTooManyRequests
	case errcodes.UpstreamHTTPError, errcodes.NetworkError, errcodes.NoTokenFound:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
