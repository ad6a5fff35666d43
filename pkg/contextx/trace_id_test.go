package contextx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"wfm_flipper/pkg/contextx"
)

func TestTraceID(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	traceID, err := contextx.TraceIDFromContext(ctx)
	rq.Empty(traceID)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "trace id: no value in context")
	rq.Equal("unsupported", contextx.TraceIDOr(ctx, "unsupported"))

	ctx = contextx.WithTraceID(ctx, "cv1t2pjk0s9g00bb1d9g")

	traceID, err = contextx.TraceIDFromContext(ctx)
	rq.NoError(err)
	rq.Equal(contextx.TraceID("cv1t2pjk0s9g00bb1d9g"), traceID)
	rq.Equal("cv1t2pjk0s9g00bb1d9g", contextx.TraceIDOr(ctx, "unsupported"))
}
