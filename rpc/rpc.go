// Package rpc implements the §6 wire protocol between the compiler
// coordinator and a worker runtime: a message is one byte of Type followed
// by a little-endian u32 Id and a type-specific payload. Grounded on
// original_source's target/common/rpc.h (the Rpc::Type enum and its
// pid/eid/n addressing triple) and proxy_core.h's one-Rpc-per-method
// framing; Go's net.Conn plus encoding/binary stand in for sockstream
// since the wire format itself is a fixed custom binary layout no
// third-party codec in the example pack models.
package rpc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sarchlab/cascade/bv"
)

// Type tags a message's payload shape (§6).
type Type uint8

const (
	COMPILE Type = iota
	ABORT
	OKAY
	FAIL
	REGISTER_CONNECTION
	TEARDOWN_CONNECTION
	TEARDOWN_ENGINE
	GET_STATE
	SET_STATE
	GET_INPUT
	SET_INPUT
	FINALIZE
	OVERRIDES_DONE_STEP
	DONE_STEP
	OVERRIDES_DONE_SIMULATION
	DONE_SIMULATION
	READ
	EVALUATE
	THERE_ARE_UPDATES
	UPDATE
	THERE_WERE_TASKS
	CONDITIONAL_UPDATE
	OPEN_LOOP
	WRITE_BITS
	WRITE_BOOL
	DEBUG
	FINISH
	RESTART
	RETARGET
	SAVE
	FOPEN
	IN_AVAIL
	PUBSEEKOFF
	PUBSEEKPOS
	PUBSYNC
	SBUMPC
	SGETC
	SGETN
	SPUTC
	SPUTN
)

func (t Type) String() string {
	switch t {
	case COMPILE:
		return "COMPILE"
	case ABORT:
		return "ABORT"
	case OKAY:
		return "OKAY"
	case FAIL:
		return "FAIL"
	case REGISTER_CONNECTION:
		return "REGISTER_CONNECTION"
	case TEARDOWN_CONNECTION:
		return "TEARDOWN_CONNECTION"
	case TEARDOWN_ENGINE:
		return "TEARDOWN_ENGINE"
	case GET_STATE:
		return "GET_STATE"
	case SET_STATE:
		return "SET_STATE"
	case GET_INPUT:
		return "GET_INPUT"
	case SET_INPUT:
		return "SET_INPUT"
	case FINALIZE:
		return "FINALIZE"
	case OVERRIDES_DONE_STEP:
		return "OVERRIDES_DONE_STEP"
	case DONE_STEP:
		return "DONE_STEP"
	case OVERRIDES_DONE_SIMULATION:
		return "OVERRIDES_DONE_SIMULATION"
	case DONE_SIMULATION:
		return "DONE_SIMULATION"
	case READ:
		return "READ"
	case EVALUATE:
		return "EVALUATE"
	case THERE_ARE_UPDATES:
		return "THERE_ARE_UPDATES"
	case UPDATE:
		return "UPDATE"
	case THERE_WERE_TASKS:
		return "THERE_WERE_TASKS"
	case CONDITIONAL_UPDATE:
		return "CONDITIONAL_UPDATE"
	case OPEN_LOOP:
		return "OPEN_LOOP"
	case WRITE_BITS:
		return "WRITE_BITS"
	case WRITE_BOOL:
		return "WRITE_BOOL"
	case DEBUG:
		return "DEBUG"
	case FINISH:
		return "FINISH"
	case RESTART:
		return "RESTART"
	case RETARGET:
		return "RETARGET"
	case SAVE:
		return "SAVE"
	case FOPEN:
		return "FOPEN"
	case IN_AVAIL:
		return "IN_AVAIL"
	case PUBSEEKOFF:
		return "PUBSEEKOFF"
	case PUBSEEKPOS:
		return "PUBSEEKPOS"
	case PUBSYNC:
		return "PUBSYNC"
	case SBUMPC:
		return "SBUMPC"
	case SGETC:
		return "SGETC"
	case SGETN:
		return "SGETN"
	case SPUTC:
		return "SPUTC"
	case SPUTN:
		return "SPUTN"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Header is the fixed (type, id) pair every message opens with. Id
// addresses the engine a request targets (the coordinator's uuid-derived
// handle), mirroring the pid/eid/n triple of proxy_core.h collapsed to one
// correlation id since Cascade's engines are addressed by xid already.
type Header struct {
	Type Type
	ID   uint32
}

// WriteHeader writes t/id in the wire's (u8, u32 LE) framing.
func WriteHeader(w io.Writer, t Type, id uint32) error {
	var buf [5]byte
	buf[0] = byte(t)
	binary.LittleEndian.PutUint32(buf[1:], id)
	_, err := w.Write(buf[:])
	return err
}

// ReadHeader reads one (type, id) pair.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [5]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	return Header{Type: Type(buf[0]), ID: binary.LittleEndian.Uint32(buf[1:])}, nil
}

// WriteU32/ReadU32 frame a bare little-endian uint32 payload (ids, byte
// counts, OPEN_LOOP's clk field).
func WriteU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteU64/ReadU64 frame OpenLoop's 64-bit iteration budget and result.
func WriteU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteBool/ReadBool frame a single-byte boolean (0/1).
func WriteBool(w io.Writer, b bool) error {
	v := byte(0)
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func ReadBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] == 1, nil
}

// WriteString/ReadString frame a length-prefixed string (u32 LE length then
// the bytes), used for paths and stream-open modes.
func WriteString(w io.Writer, s string) error {
	if err := WriteU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func ReadString(r io.Reader) (string, error) {
	n, err := ReadU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteMap/ReadMap frame a GET_STATE/GET_INPUT/SET_STATE/SET_INPUT payload:
// a u32 LE count followed by (vid: u32 LE, bit-vector) pairs using bv's own
// Serialize/Deserialize framing (§3/§6).
func WriteMap(w io.Writer, m map[uint32]bv.Value) error {
	if err := WriteU32(w, uint32(len(m))); err != nil {
		return err
	}
	for id, v := range m {
		if err := WriteU32(w, id); err != nil {
			return err
		}
		if err := bv.Serialize(w, v); err != nil {
			return err
		}
	}
	return nil
}

func ReadMap(r io.Reader) (map[uint32]bv.Value, error) {
	n, err := ReadU32(r)
	if err != nil {
		return nil, err
	}
	out := make(map[uint32]bv.Value, n)
	for i := uint32(0); i < n; i++ {
		id, err := ReadU32(r)
		if err != nil {
			return nil, err
		}
		v, err := bv.Deserialize(r)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}
