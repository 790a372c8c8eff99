package storage

import (
	"context"
	"errors"

	"github.com/jwebster45206/tale-engine/pkg/state"
)

// ErrNotFound is returned when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// Storage persists game snapshots by key. The core calls it as an atomic
// whole-state swap; partial writes are the implementation's problem.
type Storage interface {
	// Ping tests the backing store connection
	Ping(ctx context.Context) error

	// Close closes the backing store connection
	Close() error

	// SaveSnapshot stores a snapshot under the given key
	SaveSnapshot(ctx context.Context, key string, snap *state.Snapshot) error

	// LoadSnapshot retrieves a snapshot by key.
	// Returns ErrNotFound when no snapshot exists.
	LoadSnapshot(ctx context.Context, key string) (*state.Snapshot, error)

	// DeleteSnapshot removes a snapshot by key
	DeleteSnapshot(ctx context.Context, key string) error
}
