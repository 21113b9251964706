// pkg/cfgerr/errors.go
// Package cfgerr defines the error taxonomy shared by the tree and the
// persistence layers. Each kind is a sentinel; call sites wrap it with
// the offending path or a reason so callers can both match the kind with
// errors.Is and read the detail.
package cfgerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned for paths that are empty or yield no
	// non-empty segments after splitting.
	ErrInvalidPath = errors.New("invalid config path")

	// ErrPathNotFound is returned when a walk needs an existing node
	// that is missing.
	ErrPathNotFound = errors.New("config path not found")

	// ErrStrictMode is returned when strict mode is on and an operation
	// would require creating intermediate nodes.
	ErrStrictMode = errors.New("strict mode forbids node creation")

	// ErrNodeStructure is returned on attempts to assign a value to an
	// interior node or to delete the root.
	ErrNodeStructure = errors.New("node structure violation")

	// ErrInvalidFormat is returned for malformed ingest data, malformed
	// snapshots, unsupported scalar kinds, and unknown WAL operations.
	ErrInvalidFormat = errors.New("invalid format")
)

// Pathf wraps kind with the offending path.
func Pathf(kind error, path string) error {
	return fmt.Errorf("%w: %q", kind, path)
}

// Reasonf wraps kind with a human-readable reason.
func Reasonf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
