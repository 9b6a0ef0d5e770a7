// Package streamio implements the stream-id-keyed virtual streambuf table
// backing Interface's fopen/sbumpc/sgetc/sgetn/sputc/sputn/pubseekoff/
// pubseekpos/pubsync/in_avail methods (§4.4, §6). It is modeled on
// original_source's sockstream.h/substream.h: a small registry mapping an
// integer id to an io.ReadWriteCloser-ish handle, the same shape as the
// teacher's core/port.go mapping a name to a live connection endpoint.
package streamio

import (
	"bytes"
	"io"
	"sync"
)

// Stream is one open stream: read/write/seek over a backing
// io.ReadWriteCloser, or a pure in-memory buffer for the reserved
// stdout/stderr/stdwarn/stdinfo/stdlog ids.
type Stream struct {
	mu   sync.Mutex
	rwc  io.ReadWriteCloser
	buf  *bytes.Buffer // used when rwc is nil (memory-backed sink)
	pos  int64
	name string
}

// NewMemory builds a stream backed purely by an in-memory buffer, the
// shape used for the reserved stdout/stderr/stdwarn/stdinfo/stdlog ids
// before the runtime binds them to real writers.
func NewMemory(name string) *Stream {
	return &Stream{buf: &bytes.Buffer{}, name: name}
}

// NewFile wraps an already-open handle (a real file, a worker-runtime
// socket, ...) as a stream.
func NewFile(name string, rwc io.ReadWriteCloser) *Stream {
	return &Stream{rwc: rwc, name: name}
}

// Table is the id-indexed registry every Interface implementation reads
// and writes through.
type Table struct {
	mu      sync.Mutex
	streams map[uint32]*Stream
	next    uint32
}

// New builds an empty table starting ids after the reserved
// engine.Stream* constants.
func New(firstDynamicID uint32) *Table {
	return &Table{streams: map[uint32]*Stream{}, next: firstDynamicID}
}

// Bind registers id (typically one of the engine.Stream* reserved ids)
// to an explicit stream, replacing whatever was there.
func (t *Table) Bind(id uint32, s *Stream) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.streams[id] = s
}

// Open allocates a fresh dynamic id for s (an fopen call) and returns it.
func (t *Table) Open(s *Stream) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	t.streams[id] = s
	return id
}

// Close releases id; tolerates id not being registered.
func (t *Table) Close(id uint32) {
	t.mu.Lock()
	s, ok := t.streams[id]
	delete(t.streams, id)
	t.mu.Unlock()
	if ok && s.rwc != nil {
		s.rwc.Close()
	}
}

func (t *Table) get(id uint32) (*Stream, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.streams[id]
	return s, ok
}

// Putn writes buf to id, returning the byte count actually written (-1 if
// id is not open).
func (t *Table) Putn(id uint32, buf []byte) int {
	s, ok := t.get(id)
	if !ok {
		return -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rwc != nil {
		n, _ := s.rwc.Write(buf)
		return n
	}
	n, _ := s.buf.Write(buf)
	return n
}

// Putc writes one byte, returning it back on success or -1 on failure.
func (t *Table) Putc(id uint32, ch byte) int32 {
	if t.Putn(id, []byte{ch}) != 1 {
		return -1
	}
	return int32(ch)
}

// Getn reads up to len(buf) bytes from id.
func (t *Table) Getn(id uint32, buf []byte) int {
	s, ok := t.get(id)
	if !ok {
		return -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rwc != nil {
		n, _ := s.rwc.Read(buf)
		return n
	}
	n, _ := s.buf.Read(buf)
	return n
}

// Getc reads one byte, returning -1 at end of stream or on a missing id.
func (t *Table) Getc(id uint32) int32 {
	var b [1]byte
	if n := t.Getn(id, b[:]); n != 1 {
		return -1
	}
	return int32(b[0])
}

// Bumpc reads and consumes one byte, identical to Getc for this
// implementation (no separate putback buffer).
func (t *Table) Bumpc(id uint32) int32 {
	return t.Getc(id)
}

// InAvail reports how many bytes are immediately available to read from a
// memory-backed stream; file/socket-backed streams report 0 (unknown
// without a syscall this package does not perform).
func (t *Table) InAvail(id uint32) int64 {
	s, ok := t.get(id)
	if !ok {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf != nil {
		return int64(s.buf.Len())
	}
	return 0
}

// Sync is a no-op for the memory-backed and generic ReadWriteCloser case;
// present for interface parity with Interface.PubSync.
func (t *Table) Sync(id uint32) int {
	_, ok := t.get(id)
	if !ok {
		return -1
	}
	return 0
}

// SeekOff and SeekPos are unsupported on the generic streamio table
// (neither bytes.Buffer nor a plain io.ReadWriteCloser guarantees
// seekability); both report failure rather than panicking.
func (t *Table) SeekOff(id uint32, off int64, whence int) int64 { return -1 }
func (t *Table) SeekPos(id uint32, pos int64) int64             { return -1 }
