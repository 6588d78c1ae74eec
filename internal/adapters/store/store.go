// Package store persists composed snapshots. The filesystem layout is
// the published one: a Daily/ directory of per-date snapshot files, a
// latest.json symlink onto the newest, and a flat dashboard.json beside
// them.
package store

import (
	"context"
	"time"

	"github.com/covid-saarani/lipik/internal/domain/model"
)

// Store provides read/write access to the snapshot archive.
type Store interface {
	// Latest returns the most recently published snapshot.
	// Returns ErrNotFound when nothing has been published yet.
	Latest(ctx context.Context) (*model.Snapshot, error)

	// Save publishes a snapshot under its effective date and points
	// the latest marker at it.
	Save(ctx context.Context, snap *model.Snapshot, effective time.Time) error

	// SaveDashboard publishes the flat per-state dashboard rows.
	SaveDashboard(ctx context.Context, snap *model.Snapshot) error
}
