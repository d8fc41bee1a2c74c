package store

import (
	"context"
	"errors"

	"github.com/majeanson/newjo-sub001/internal/game"
)

var ErrNotFound = errors.New("room not found")

// Store keeps one whole-state snapshot per room. Put replaces the
// snapshot atomically; readers never observe a partially written state.
type Store interface {
	Get(ctx context.Context, roomID string) (*game.State, error)
	Put(ctx context.Context, roomID string, s *game.State) error
}
