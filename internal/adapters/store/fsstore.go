package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/covid-saarani/lipik/internal/domain/model"
)

const (
	dailyDir      = "Daily"
	latestName    = "latest.json"
	dashboardName = "dashboard.json"
)

// FSStore is the filesystem snapshot archive.
type FSStore struct {
	root   string
	indent string
}

// Option applies a configuration option to the FSStore.
type Option func(*FSStore)

// WithIndent sets the JSON indentation of published files. The archive
// is consumed raw off version control, so it defaults to human-readable
// four spaces.
func WithIndent(indent string) Option {
	return func(s *FSStore) { s.indent = indent }
}

// NewFS constructs an FSStore rooted at dir, creating the daily
// directory if needed.
func NewFS(dir string, opts ...Option) (*FSStore, error) {
	s := &FSStore{root: dir, indent: "    "}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(filepath.Join(dir, dailyDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive layout: %w", err)
	}
	return s, nil
}

// Latest reads the snapshot the latest marker points at.
func (s *FSStore) Latest(_ context.Context) (*model.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.root, latestName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding latest snapshot: %w", err)
	}
	return &snap, nil
}

// Save publishes the snapshot under Daily/YYYY_MM_DD.json and repoints
// the latest symlink. The daily file is written atomically so a crashed
// run never leaves a truncated snapshot behind.
func (s *FSStore) Save(_ context.Context, snap *model.Snapshot, effective time.Time) error {
	name := effective.Format(model.FileDateFormat) + ".json"
	daily := filepath.Join(s.root, dailyDir, name)

	if err := s.writeJSON(daily, snap); err != nil {
		return err
	}

	latest := filepath.Join(s.root, latestName)
	if err := os.Remove(latest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("replacing latest marker: %w", err)
	}
	if err := os.Symlink(filepath.Join(dailyDir, name), latest); err != nil {
		return fmt.Errorf("linking latest marker: %w", err)
	}
	return nil
}

// SaveDashboard publishes the flat dashboard rows.
func (s *FSStore) SaveDashboard(_ context.Context, snap *model.Snapshot) error {
	return s.writeJSON(filepath.Join(s.root, dashboardName), snap.Dashboard())
}

func (s *FSStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", s.indent)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publishing %s: %w", filepath.Base(path), err)
	}
	return nil
}
