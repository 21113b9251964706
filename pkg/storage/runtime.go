// pkg/storage/runtime.go
// Package storage coordinates the persistence lifecycle of a
// configuration tree: startup recovery (snapshot load, then WAL replay),
// write-ahead logging of live mutations, checkpointing (snapshot write,
// then WAL truncate), and shutdown.
package storage

import (
	"os"
	"time"

	"go.uber.org/zap"

	"configx/pkg/snapshot"
	"configx/pkg/tree"
	"configx/pkg/types"
	"configx/pkg/wal"
)

// Runtime owns the WAL and the snapshot path for one tree. It implements
// tree.MutationHooks; attach it to a tree and every successful set or
// delete is durably logged before the in-memory mutation applies.
type Runtime struct {
	snapshotPath string
	wal          *wal.WAL
	log          *zap.Logger

	// loggingEnabled gates the mutation hooks. It is cleared for the
	// recovery window only: replay drives the tree through the same
	// mutation entry points, and without the gate every replayed record
	// would be appended to the WAL again.
	loggingEnabled bool
}

var _ tree.MutationHooks = (*Runtime)(nil)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger directs the runtime's recovery and checkpoint logging to l.
// The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) { r.log = l }
}

// NewRuntime creates a runtime persisting to the given snapshot and WAL
// paths. The WAL file (and its parent directory) is created on demand
// and held locked until Close.
func NewRuntime(snapshotPath, walPath string, opts ...Option) (*Runtime, error) {
	r := &Runtime{
		snapshotPath:   snapshotPath,
		log:            zap.NewNop(),
		loggingEnabled: true,
	}
	for _, opt := range opts {
		opt(r)
	}

	w, err := wal.Open(walPath)
	if err != nil {
		return nil, err
	}
	r.wal = w
	return r, nil
}

// Start recovers state into t: load the snapshot if one exists, then
// replay the WAL. Logging is disabled for the whole window and re-enabled
// only on success. On failure the tree is reset to an empty root so no
// partially recovered state is observable.
func (r *Runtime) Start(t *tree.Tree) error {
	r.loggingEnabled = false
	began := time.Now()

	loaded := false
	if _, err := os.Stat(r.snapshotPath); err == nil {
		if err := snapshot.Load(t, r.snapshotPath); err != nil {
			t.Reset()
			return err
		}
		loaded = true
	}

	applied, err := r.wal.Replay(t)
	if err != nil {
		t.Reset()
		return err
	}

	r.loggingEnabled = true
	r.log.Info("recovery complete",
		zap.Bool("snapshot_loaded", loaded),
		zap.Int("wal_records", applied),
		zap.Duration("elapsed", time.Since(began)))
	return nil
}

// BeforeSet durably appends a SET record, unless recovery is replaying.
func (r *Runtime) BeforeSet(path string, value types.Value) error {
	if !r.loggingEnabled {
		return nil
	}
	return r.wal.LogSet(path, value)
}

// BeforeDelete durably appends a DELETE record, unless recovery is
// replaying.
func (r *Runtime) BeforeDelete(path string) error {
	if !r.loggingEnabled {
		return nil
	}
	return r.wal.LogDelete(path)
}

// Checkpoint writes a fresh snapshot of t and then truncates the WAL.
// The ordering is a contract: a crash between the two steps leaves the
// WAL redundant, never lost.
func (r *Runtime) Checkpoint(t *tree.Tree) error {
	began := time.Now()

	if err := snapshot.Save(t, r.snapshotPath); err != nil {
		return err
	}
	if err := r.wal.Clear(); err != nil {
		return err
	}

	r.log.Info("checkpoint complete",
		zap.String("snapshot", r.snapshotPath),
		zap.Duration("elapsed", time.Since(began)))
	return nil
}

// Shutdown checkpoints t. The WAL handle stays open; use Close to
// release it.
func (r *Runtime) Shutdown(t *tree.Tree) error {
	return r.Checkpoint(t)
}

// Close releases the WAL file and its lock. The runtime cannot be used
// afterwards.
func (r *Runtime) Close() error {
	return r.wal.Close()
}
