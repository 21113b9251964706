// pkg/snapshot/snapshot.go
// Package snapshot implements full-state persistence of a configuration
// tree in the CFGX binary format.
//
// # SNAPSHOT FILE FORMAT
//
// A snapshot file is a 5-byte header followed by a single recursive node
// record for the root. Multi-byte integers are big-endian.
//
// The header:
//
//	0-3:  Magic bytes, ASCII "CFGX"
//	4:    Format version (0x01)
//
// Each node record:
//
//	4 bytes  name length (uint32)
//	N bytes  name (UTF-8)
//	1 byte   value tag: 'N', 'B', 'I', 'F', or 'S'
//	4 bytes  value length (uint32)
//	L bytes  value payload
//	4 bytes  child count (uint32)
//	...      child node records
//
// Value payloads per tag: 'N' none, 'B' one byte (0x00/0x01), 'I' 8-byte
// big-endian two's complement, 'F' 8-byte IEEE-754 double, 'S' UTF-8
// bytes. Interior nodes carry tag 'N' with no payload; the interior/leaf
// distinction is implied by the child count.
package snapshot

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"configx/internal/encoding"
	"configx/pkg/cfgerr"
	"configx/pkg/tree"
	"configx/pkg/types"
)

const (
	// Magic identifies a CFGX snapshot file.
	Magic = "CFGX"

	// Version is the snapshot format version.
	Version = 1
)

// Value tags.
const (
	tagNull   = 'N'
	tagBool   = 'B'
	tagInt    = 'I'
	tagFloat  = 'F'
	tagString = 'S'
)

// Save writes the entire tree to a snapshot file at path, creating the
// parent directory if needed and truncating any previous snapshot. The
// file is synced before close so a completed Save is durable.
func Save(t *tree.Tree, path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if _, err = w.WriteString(Magic); err == nil {
		if err = w.WriteByte(Version); err == nil {
			err = writeNode(w, t.Root())
		}
	}
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = f.Sync()
	}

	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a snapshot file and installs its contents as the tree's
// root, replacing the previous state. A missing file fails with
// cfgerr.ErrPathNotFound; a malformed one with cfgerr.ErrInvalidFormat.
func Load(t *tree.Tree, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfgerr.Pathf(cfgerr.ErrPathNotFound, path)
		}
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if err := readHeader(r); err != nil {
		return err
	}

	root, err := readNode(r)
	if err != nil {
		return err
	}

	t.SetRoot(root)
	return nil
}

func readHeader(r io.Reader) error {
	magic, err := encoding.ReadBytes(r, len(Magic))
	if err != nil {
		return mapReadErr(err)
	}
	if string(magic) != Magic {
		return cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"bad snapshot magic %q", magic)
	}

	version, err := encoding.ReadByte(r)
	if err != nil {
		return mapReadErr(err)
	}
	if version != Version {
		return cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"unsupported snapshot version %d", version)
	}
	return nil
}

func writeNode(w io.Writer, n *tree.Node) error {
	name := []byte(n.Name())
	if err := encoding.WriteUint32(w, uint32(len(name))); err != nil {
		return err
	}
	if _, err := w.Write(name); err != nil {
		return err
	}

	if err := writeValue(w, n.Value()); err != nil {
		return err
	}

	children := n.Children()
	if err := encoding.WriteUint32(w, uint32(len(children))); err != nil {
		return err
	}

	// Child order is not a format contract, but deterministic output
	// keeps identical trees byte-identical.
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writeNode(w, children[name]); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w io.Writer, v types.Value) error {
	var tag byte
	var payload []byte

	switch v.Type() {
	case types.TypeNull:
		tag = tagNull
	case types.TypeBool:
		tag = tagBool
		payload = []byte{0x00}
		if v.Bool() {
			payload[0] = 0x01
		}
	case types.TypeInt:
		tag = tagInt
		payload = make([]byte, 8)
		binary.BigEndian.PutUint64(payload, uint64(v.Int()))
	case types.TypeFloat:
		tag = tagFloat
		payload = make([]byte, 8)
		binary.BigEndian.PutUint64(payload, math.Float64bits(v.Float()))
	case types.TypeString:
		tag = tagString
		payload = []byte(v.Str())
	default:
		return cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"unsupported value type %d", v.Type())
	}

	if err := encoding.WriteByte(w, tag); err != nil {
		return err
	}
	if err := encoding.WriteUint32(w, uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func readNode(r io.Reader) (*tree.Node, error) {
	nameLen, err := encoding.ReadUint32(r)
	if err != nil {
		return nil, mapReadErr(err)
	}
	name, err := encoding.ReadBytes(r, int(nameLen))
	if err != nil {
		return nil, mapReadErr(err)
	}

	node := tree.NewNode(string(name))

	val, err := readValue(r)
	if err != nil {
		return nil, err
	}
	if !val.IsNull() {
		node.SetValue(val)
	}

	childCnt, err := encoding.ReadUint32(r)
	if err != nil {
		return nil, mapReadErr(err)
	}
	for i := uint32(0); i < childCnt; i++ {
		child, err := readNode(r)
		if err != nil {
			return nil, err
		}
		node.AddChild(child)
	}

	return node, nil
}

func readValue(r io.Reader) (types.Value, error) {
	var null types.Value

	tag, err := encoding.ReadByte(r)
	if err != nil {
		return null, mapReadErr(err)
	}
	valLen, err := encoding.ReadUint32(r)
	if err != nil {
		return null, mapReadErr(err)
	}
	payload, err := encoding.ReadBytes(r, int(valLen))
	if err != nil {
		return null, mapReadErr(err)
	}

	switch tag {
	case tagNull:
		if valLen != 0 {
			return null, badPayload(tag, valLen)
		}
		return types.NewNull(), nil
	case tagBool:
		if valLen != 1 {
			return null, badPayload(tag, valLen)
		}
		return types.NewBool(payload[0] != 0x00), nil
	case tagInt:
		if valLen != 8 {
			return null, badPayload(tag, valLen)
		}
		return types.NewInt(int64(binary.BigEndian.Uint64(payload))), nil
	case tagFloat:
		if valLen != 8 {
			return null, badPayload(tag, valLen)
		}
		return types.NewFloat(math.Float64frombits(binary.BigEndian.Uint64(payload))), nil
	case tagString:
		return types.NewString(string(payload)), nil
	default:
		return null, cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"unknown value tag %q", tag)
	}
}

func badPayload(tag byte, n uint32) error {
	return cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
		"tag %q with %d-byte payload", tag, n)
}

func mapReadErr(err error) error {
	if errors.Is(err, encoding.ErrUnexpectedEOF) {
		return cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"unexpected end of snapshot")
	}
	return err
}

