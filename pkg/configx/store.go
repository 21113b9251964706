// pkg/configx/store.go
// Package configx is the embedding entry point: a durable, hierarchical
// configuration store that ties the in-memory tree to the storage
// runtime. Committed mutations survive process crashes; recovery happens
// inside Open.
package configx

import (
	"errors"

	"go.uber.org/zap"

	"configx/pkg/storage"
	"configx/pkg/tree"
)

// ErrStoreClosed is returned when operating on a closed store.
var ErrStoreClosed = errors.New("store is closed")

// WALSuffix is appended to the store path to name the write-ahead log.
const WALSuffix = "-wal"

// Options configures store opening behavior.
type Options struct {
	// StrictMode forbids auto-creation of intermediate nodes on Set.
	// It applies to live mutations; recovery replays history as written.
	StrictMode bool

	// Logger receives recovery and checkpoint events (default no-op).
	Logger *zap.Logger
}

// Store is an open configuration store.
// The caller is responsible for calling Close when done.
type Store struct {
	path    string
	tree    *tree.Tree
	runtime *storage.Runtime
	closed  bool
}

// Open opens the store persisted at path, creating it if necessary. The
// snapshot lives at path and the write-ahead log at path + WALSuffix.
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, Options{})
}

// OpenWithOptions opens a store with the specified options.
func OpenWithOptions(path string, opts Options) (*Store, error) {
	var ropts []storage.Option
	if opts.Logger != nil {
		ropts = append(ropts, storage.WithLogger(opts.Logger))
	}

	rt, err := storage.NewRuntime(path, path+WALSuffix, ropts...)
	if err != nil {
		return nil, err
	}

	t := tree.New()
	if err := rt.Start(t); err != nil {
		rt.Close()
		return nil, err
	}

	t.SetStrictMode(opts.StrictMode)
	t.AttachHooks(rt)

	return &Store{path: path, tree: t, runtime: rt}, nil
}

// Path returns the snapshot path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value at path: a scalar for a leaf, a nested map for
// an interior node.
func (s *Store) Get(path string) (interface{}, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.tree.Get(path)
}

// Set durably assigns a scalar value at path and returns the stored
// value.
func (s *Store) Set(path string, value interface{}) (interface{}, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.tree.Set(path, value)
}

// Delete durably removes the subtree at path. It reports whether a node
// was removed.
func (s *Store) Delete(path string) (bool, error) {
	if s.closed {
		return false, ErrStoreClosed
	}
	return s.tree.Delete(path)
}

// ToMap returns the whole store as a nested map of primitives.
func (s *Store) ToMap() (map[string]interface{}, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.tree.ToMap(), nil
}

// LoadMap replaces the store contents with the given nested map. The
// ingest itself is not logged; call Checkpoint to persist it.
func (s *Store) LoadMap(data map[string]interface{}) error {
	if s.closed {
		return ErrStoreClosed
	}
	return s.tree.LoadMap(data)
}

// SetStrictMode toggles strict path creation for subsequent Sets.
func (s *Store) SetStrictMode(enabled bool) error {
	if s.closed {
		return ErrStoreClosed
	}
	s.tree.SetStrictMode(enabled)
	return nil
}

// Checkpoint writes a fresh snapshot and truncates the write-ahead log.
func (s *Store) Checkpoint() error {
	if s.closed {
		return ErrStoreClosed
	}
	return s.runtime.Checkpoint(s.tree)
}

// Close checkpoints the store and releases the write-ahead log. Further
// operations return ErrStoreClosed.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	if err := s.runtime.Shutdown(s.tree); err != nil {
		s.runtime.Close()
		s.closed = true
		return err
	}
	s.closed = true
	return s.runtime.Close()
}
