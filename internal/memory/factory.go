package memory

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when configured, otherwise
// in-memory with the given per-lead turn cap.
func NewStore(ctx context.Context, databaseURL string, maxTurns int) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(maxTurns), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
