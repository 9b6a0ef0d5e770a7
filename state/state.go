// Package state implements the §6 saved-state stream format: a sequence
// of (vid: u32 LE, bit-vector) pairs terminated by a zero vid, where each
// bit-vector uses bv's own (width:30|kind:2) header framing. Grounded on
// original_source's runtime.h save(path) (a flat named-snapshot file) and
// §6's exact wire layout; bv.Serialize/Deserialize already implement the
// per-value framing, so this package only adds the vid-keyed envelope and
// the "tolerate trailing garbage as an error" requirement.
package state

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sarchlab/cascade/bv"
)

// Snapshot is an in-memory saved-state image: every stateful variable id
// the engine reported via GetState at save time.
type Snapshot map[uint32]bv.Value

// Write serializes snap as a (vid, bit-vector) stream terminated by a zero
// vid (§6). Iteration order is unspecified; the terminator is the only
// structural requirement a reader depends on.
func Write(w io.Writer, snap Snapshot) error {
	for vid, v := range snap {
		if vid == 0 {
			return fmt.Errorf("state: vid 0 is reserved as the stream terminator")
		}
		if err := writeU32(w, vid); err != nil {
			return err
		}
		if err := bv.Serialize(w, v); err != nil {
			return err
		}
	}
	return writeU32(w, 0)
}

// Read deserializes a snapshot stream until the zero-vid terminator. Any
// non-EOF error, or any trailing bytes found after the terminator, is
// surfaced as an error rather than silently ignored (§6 "consumers must
// tolerate trailing garbage and surface it as an error").
func Read(r io.Reader) (Snapshot, error) {
	br := bufio.NewReader(r)
	out := Snapshot{}
	for {
		vid, err := readU32(br)
		if err != nil {
			return nil, fmt.Errorf("state: reading vid: %w", err)
		}
		if vid == 0 {
			break
		}
		v, err := bv.Deserialize(br)
		if err != nil {
			return nil, fmt.Errorf("state: reading value for vid %d: %w", vid, err)
		}
		out[vid] = v
	}
	if _, err := br.Peek(1); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("state: trailing garbage after terminator")
		}
		return nil, fmt.Errorf("state: checking for trailing garbage: %w", err)
	}
	return out, nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}
