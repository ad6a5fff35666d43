package contextx

import (
	"context"
	"fmt"
)

// Username is the in-game name of the logged-in market account.
type Username string

type contextKeyUsername struct{}

func (u Username) String() string {
	return string(u)
}

func WithUsername(ctx context.Context, username Username) context.Context {
	return context.WithValue(ctx, contextKeyUsername{}, username)
}

func UsernameFromContext(ctx context.Context) (Username, error) {
	username, ok := ctx.Value(contextKeyUsername{}).(Username)
	if !ok || username == "" {
		return "", fmt.Errorf("username: %w", ErrNoValue)
	}

	return username, nil
}
