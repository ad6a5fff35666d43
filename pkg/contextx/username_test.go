package contextx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"wfm_flipper/pkg/contextx"
)

func TestUsername(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	username, err := contextx.UsernameFromContext(ctx)
	rq.Empty(username)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "username: no value in context")

	_, err = contextx.UsernameFromContext(contextx.WithUsername(ctx, ""))
	rq.ErrorIs(err, contextx.ErrNoValue)

	ctx = contextx.WithUsername(ctx, "Tenno")

	username, err = contextx.UsernameFromContext(ctx)
	rq.NoError(err)
	rq.Equal(contextx.Username("Tenno"), username)
	rq.Equal("Tenno", username.String())
}
