// pkg/wal/wal.go
// Package wal implements the append-only logical write-ahead log that
// backs the configuration store's durability guarantee.
//
// # WAL FILE FORMAT
//
// The log is a sequence of UTF-8 lines, each holding one JSON object
// that describes a single logical mutation:
//
//	{"op":"SET","path":"app.ui.theme","value":"dark","ts":1722470400}
//	{"op":"DELETE","path":"app.ui.theme","ts":1722470401}
//
// The value field is a JSON scalar (null, boolean, number, or string)
// and maps one-to-one onto the node value arms. The ts field is advisory
// (unix seconds); replay ignores it. Blank lines are tolerated and
// skipped on replay.
//
// Every append writes the record and a trailing newline, then syncs the
// file before returning, so an acknowledged append survives a crash. The
// WAL holds an exclusive lock on its file for its lifetime to keep a
// second process from interleaving records. A WAL is owned by a single
// goroutine; it performs no internal locking.
package wal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"configx/pkg/cfgerr"
	"configx/pkg/tree"
	"configx/pkg/types"
)

// Logical operations recorded in the log.
const (
	OpSet    = "SET"
	OpDelete = "DELETE"
)

var (
	// ErrWALLocked is returned when the WAL file is already locked by
	// another process.
	ErrWALLocked = errors.New("wal is locked by another process")

	// ErrWALClosed is returned when appending to a closed WAL.
	ErrWALClosed = errors.New("wal is closed")
)

// Record is one logical mutation. For DELETE records Value is nil; for
// SET records it is always present (a null scalar is a non-nil Value
// holding the null arm).
type Record struct {
	Op    string       `json:"op"`
	Path  string       `json:"path"`
	Value *types.Value `json:"value,omitempty"`
	TS    int64        `json:"ts"`
}

// WAL is an append-only log bound to a single file. The file is created
// empty if it does not exist, along with its parent directory.
type WAL struct {
	path string
	file *os.File
}

// Open opens or creates the WAL file at path and acquires an exclusive
// lock on it. Returns ErrWALLocked if another process holds the file.
func Open(path string) (*WAL, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	w := &WAL{path: path, file: f}
	if err := w.acquireLock(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Path returns the WAL file path.
func (w *WAL) Path() string {
	return w.path
}

// LogSet appends a SET record for path and value.
func (w *WAL) LogSet(path string, value types.Value) error {
	v := value
	return w.append(Record{
		Op:    OpSet,
		Path:  path,
		Value: &v,
		TS:    time.Now().Unix(),
	})
}

// LogDelete appends a DELETE record for path.
func (w *WAL) LogDelete(path string) error {
	return w.append(Record{
		Op:   OpDelete,
		Path: path,
		TS:   time.Now().Unix(),
	})
}

// append writes one record durably: marshal, write line, sync.
func (w *WAL) append(rec Record) error {
	if w.file == nil {
		return ErrWALClosed
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	if _, err := w.file.Write(line); err != nil {
		return err
	}
	return w.file.Sync()
}

// Replay applies every record in file order against t, suppressing the
// tree's mutation hooks so replayed operations are not re-logged. It
// returns the number of records applied. An unknown operation fails with
// cfgerr.ErrInvalidFormat.
func (w *WAL) Replay(t *tree.Tree) (int, error) {
	f, err := os.Open(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	applied := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return applied, cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
				"malformed WAL record: %v", err)
		}

		switch rec.Op {
		case OpSet:
			var raw interface{}
			if rec.Value != nil {
				raw = rec.Value.Primitive()
			}
			if _, err := t.ApplySet(rec.Path, raw); err != nil {
				return applied, err
			}
		case OpDelete:
			if _, err := t.ApplyDelete(rec.Path); err != nil {
				return applied, err
			}
		default:
			return applied, cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
				"unknown WAL operation %q", rec.Op)
		}
		applied++
	}

	if err := scanner.Err(); err != nil {
		return applied, err
	}
	return applied, nil
}

// maxRecordSize bounds a single WAL line during replay.
const maxRecordSize = 16 << 20

// Clear truncates the log to zero bytes. Called by the runtime after a
// snapshot has made the logged mutations redundant.
func (w *WAL) Clear() error {
	if w.file == nil {
		return ErrWALClosed
	}
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close releases the single-writer lock and closes the WAL. The WAL
// cannot be used afterwards.
func (w *WAL) Close() error {
	if w.file == nil {
		return nil
	}
	w.releaseLock()
	err := w.file.Close()
	w.file = nil
	return err
}
