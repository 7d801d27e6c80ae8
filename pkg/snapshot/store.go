package snapshot

import (
	"context"
	"errors"

	"github.com/helmcode/devcompanion/pkg/model"
)

// MaxRecent is the default and upper bound for Recent.
const MaxRecent = 50

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

// Store persists versioned snapshots.
type Store interface {
	// Save validates p and stores it as the next version of its file.
	Save(ctx context.Context, p *Payload) (*model.Snapshot, error)
	Get(ctx context.Context, id string) (*model.Snapshot, error)
	// Latest returns the most recently created snapshot of any file.
	Latest(ctx context.Context) (*model.Snapshot, error)
	// ListByFile matches file against both path and filename, highest version first.
	ListByFile(ctx context.Context, file string) ([]*model.Snapshot, error)
	// Recent returns the newest snapshots. limit is clamped to 1..MaxRecent,
	// non-positive meaning MaxRecent.
	Recent(ctx context.Context, limit int) ([]*model.Snapshot, error)
	Close() error
}

// ClampLimit applies the Recent bounds to a caller supplied limit.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxRecent {
		return MaxRecent
	}
	return limit
}
