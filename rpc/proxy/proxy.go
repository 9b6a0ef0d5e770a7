// Package proxy implements engine.Core and engine.Interface by forwarding
// every method across a net.Conn using the rpc wire protocol (§6),
// grounded on original_source's proxy_core.h (ProxyCore<T>, one rpc.Type
// per Core method, a trailing recv() loop that drains interface callbacks
// until a sentinel) and remote_runtime.h (the worker side driving the same
// protocol against a real local engine). compiler.Coordinator dispatches
// to a Core built here whenever a module's __loc annotation is "remote" or
// "runtime".
package proxy

import (
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/engine"
	"github.com/sarchlab/cascade/rpc"
)

// Core is a Core whose every method is a synchronous round trip over conn
// to a worker runtime holding the real engine.
type Core struct {
	mu   sync.Mutex
	conn net.Conn
	id   uint32
	iface engine.Interface

	thereAreUpdates bool
	thereWereTasks  bool
	thereAreReads   bool
}

// New wraps an already-registered connection (REGISTER_CONNECTION having
// already run) addressed by id, delivering interface callbacks the worker
// sends back (WRITE_BITS, WRITE_BOOL, FINISH, ...) to local.
func New(conn net.Conn, id uint32, local engine.Interface) *Core {
	return &Core{conn: conn, id: id, iface: local}
}

var _ engine.Core = (*Core)(nil)
var _ engine.DoneStepper = (*Core)(nil)
var _ engine.DoneSimulator = (*Core)(nil)
var _ engine.OpenLooper = (*Core)(nil)

func (c *Core) GetState() map[uint32]bv.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.GET_STATE, c.id); err != nil {
		return nil
	}
	m, err := rpc.ReadMap(c.conn)
	if err != nil {
		return nil
	}
	return m
}

func (c *Core) SetState(m map[uint32]bv.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.SET_STATE, c.id); err != nil {
		return
	}
	rpc.WriteMap(c.conn, m)
}

func (c *Core) GetInput() map[uint32]bv.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.GET_INPUT, c.id); err != nil {
		return nil
	}
	m, err := rpc.ReadMap(c.conn)
	if err != nil {
		return nil
	}
	return m
}

func (c *Core) SetInput(m map[uint32]bv.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.SET_INPUT, c.id); err != nil {
		return
	}
	rpc.WriteMap(c.conn, m)
}

// Resync corresponds to proxy_core.h's finalize(): the worker acks once
// SetState/SetInput have been applied and the new core is ready to
// participate in scheduling.
func (c *Core) Resync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.FINALIZE, c.id); err != nil {
		return
	}
	c.recvLocked()
}

// Read enqueues id's new value; like proxy_core.h's read(), the bytes are
// not required to reach the worker until the next Evaluate/Update/
// ConditionalUpdate/OpenLoop call, but this implementation writes eagerly
// since net.Conn has no user-space flush distinction worth modeling.
func (c *Core) Read(id uint32, bits bv.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.READ, c.id); err != nil {
		return
	}
	rpc.WriteU32(c.conn, id)
	bv.Serialize(c.conn, bits)
}

func (c *Core) Evaluate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thereAreReads = false
	if err := rpc.WriteHeader(c.conn, rpc.EVALUATE, c.id); err != nil {
		return
	}
	c.recvLocked()
}

func (c *Core) ThereAreReads() bool { return c.thereAreReads }

func (c *Core) ThereAreUpdates() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.THERE_ARE_UPDATES, c.id); err != nil {
		return false
	}
	b, err := rpc.ReadBool(c.conn)
	if err != nil {
		return false
	}
	c.thereAreUpdates = b
	return b
}

func (c *Core) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.UPDATE, c.id); err != nil {
		return
	}
	c.recvLocked()
}

func (c *Core) ThereWereTasks() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.THERE_WERE_TASKS, c.id); err != nil {
		return false
	}
	b, err := rpc.ReadBool(c.conn)
	if err != nil {
		return false
	}
	c.thereWereTasks = b
	return b
}

// DoneStep always forwards DONE_STEP; the worker's own core decides
// whether it actually overrides done_step (OVERRIDES_DONE_STEP exists for
// callers that want to skip the round trip entirely, which Cascade's
// scheduler does not need since it already gates on engine.DoneStepper).
func (c *Core) DoneStep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	rpc.WriteHeader(c.conn, rpc.DONE_STEP, c.id)
}

func (c *Core) DoneSimulation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	rpc.WriteHeader(c.conn, rpc.DONE_SIMULATION, c.id)
}

// OpenLoop forwards the open-loop fast path (§4.6); clkID is truncated to
// the wire's u32 id, val serializes as a single bit, itrs as a u64 budget.
func (c *Core) OpenLoop(clkID uint32, initial bv.Value, maxIters uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.OPEN_LOOP, c.id); err != nil {
		return 0
	}
	rpc.WriteU32(c.conn, clkID)
	rpc.WriteBool(c.conn, initial.ToBool())
	rpc.WriteU64(c.conn, maxIters)
	c.recvLocked()
	n, err := rpc.ReadU64(c.conn)
	if err != nil {
		return 0
	}
	return n
}

// recvLocked drains interface callbacks (WRITE_BITS, WRITE_BOOL, FINISH,
// RESTART, RETARGET, SAVE, DEBUG) until an OKAY or FAIL header (whatever its
// id), an unrecognized type, or a read error, mirroring ProxyCore<T>::recv().
// Caller must hold c.mu.
func (c *Core) recvLocked() {
	for {
		h, err := rpc.ReadHeader(c.conn)
		if err != nil {
			return
		}
		switch h.Type {
		case rpc.OKAY:
			return
		case rpc.FAIL:
			return
		case rpc.WRITE_BITS:
			id, _ := rpc.ReadU32(c.conn)
			bits, _ := bv.Deserialize(c.conn)
			if c.iface != nil {
				c.iface.Write(id, bits)
			}
			c.thereAreReads = true
		case rpc.WRITE_BOOL:
			id, _ := rpc.ReadU32(c.conn)
			bit, _ := rpc.ReadBool(c.conn)
			if c.iface != nil {
				c.iface.WriteBool(id, bit)
			}
			c.thereAreReads = true
		case rpc.FINISH:
			if c.iface != nil {
				c.iface.Finish()
			}
		case rpc.RESTART:
			if c.iface != nil {
				c.iface.Restart()
			}
		case rpc.RETARGET:
			if c.iface != nil {
				c.iface.Retarget()
			}
		case rpc.SAVE:
			name, _ := rpc.ReadString(c.conn)
			if c.iface != nil {
				c.iface.Save(name)
			}
		case rpc.DEBUG:
			// action code is consumed and ignored; Cascade exposes no
			// local sink for proxy debug actions.
			rpc.ReadU32(c.conn)
		default:
			return
		}
	}
}

// Teardown sends TEARDOWN_ENGINE and waits for the worker's ack, mirroring
// ProxyCore<T>'s destructor.
func (c *Core) Teardown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rpc.WriteHeader(c.conn, rpc.TEARDOWN_ENGINE, c.id); err != nil {
		return fmt.Errorf("proxy: teardown: %w", err)
	}
	c.recvLocked()
	return nil
}

// Interface is the worker-side counterpart to Core: a real local engine's
// Interface calls are forwarded over conn as WRITE_BITS/WRITE_BOOL/FINISH/
// RESTART/RETARGET/SAVE/stream-I/O messages for the coordinator's recvLocked
// to consume, mirroring remote_runtime.h's worker driving callbacks back
// over the same socket the compile request arrived on. FOpen and the
// stream-I/O methods round-trip synchronously since their return values
// feed back into the interpreter's $fopen/$fgetc call sites.
type Interface struct {
	mu   sync.Mutex
	conn net.Conn
	id   uint32
}

// NewInterface wraps conn for the worker side of one engine addressed by id.
func NewInterface(conn net.Conn, id uint32) *Interface {
	return &Interface{conn: conn, id: id}
}

var _ engine.Interface = (*Interface)(nil)

func (i *Interface) Write(id uint32, bits bv.Value) {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.WRITE_BITS, i.id)
	rpc.WriteU32(i.conn, id)
	bv.Serialize(i.conn, bits)
}

func (i *Interface) WriteBool(id uint32, bit bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.WRITE_BOOL, i.id)
	rpc.WriteU32(i.conn, id)
	rpc.WriteBool(i.conn, bit)
}

func (i *Interface) Finish() {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.FINISH, i.id)
}

func (i *Interface) Restart() {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.RESTART, i.id)
}

func (i *Interface) Retarget() {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.RETARGET, i.id)
}

func (i *Interface) Save(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.SAVE, i.id)
	rpc.WriteString(i.conn, name)
}

func (i *Interface) FOpen(path string, mode string) (uint32, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.FOPEN, i.id)
	rpc.WriteString(i.conn, path)
	rpc.WriteString(i.conn, mode)
	id, err := rpc.ReadU32(i.conn)
	if err != nil {
		return 0, false
	}
	ok, err := rpc.ReadBool(i.conn)
	if err != nil {
		return 0, false
	}
	return id, ok
}

func (i *Interface) SBumpc(streamID uint32) int32 { return i.streamCall(rpc.SBUMPC, streamID) }
func (i *Interface) SGetc(streamID uint32) int32  { return i.streamCall(rpc.SGETC, streamID) }

func (i *Interface) streamCall(t rpc.Type, streamID uint32) int32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, t, i.id)
	rpc.WriteU32(i.conn, streamID)
	v, err := rpc.ReadU32(i.conn)
	if err != nil {
		return -1
	}
	return int32(v)
}

func (i *Interface) SGetn(streamID uint32, buf []byte) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.SGETN, i.id)
	rpc.WriteU32(i.conn, streamID)
	rpc.WriteU32(i.conn, uint32(len(buf)))
	n, err := rpc.ReadU32(i.conn)
	if err != nil {
		return -1
	}
	if _, err := io.ReadFull(i.conn, buf[:n]); err != nil {
		return -1
	}
	return int(n)
}

func (i *Interface) SPutc(streamID uint32, ch byte) int32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.SPUTC, i.id)
	rpc.WriteU32(i.conn, streamID)
	i.conn.Write([]byte{ch})
	v, err := rpc.ReadU32(i.conn)
	if err != nil {
		return -1
	}
	return int32(v)
}

func (i *Interface) SPutn(streamID uint32, buf []byte) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.SPUTN, i.id)
	rpc.WriteU32(i.conn, streamID)
	rpc.WriteU32(i.conn, uint32(len(buf)))
	i.conn.Write(buf)
	n, err := rpc.ReadU32(i.conn)
	if err != nil {
		return -1
	}
	return int(n)
}

func (i *Interface) PubSeekOff(streamID uint32, off int64, whence int) int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.PUBSEEKOFF, i.id)
	rpc.WriteU32(i.conn, streamID)
	rpc.WriteU64(i.conn, uint64(off))
	rpc.WriteU32(i.conn, uint32(whence))
	n, err := rpc.ReadU64(i.conn)
	if err != nil {
		return -1
	}
	return int64(n)
}

func (i *Interface) PubSeekPos(streamID uint32, pos int64) int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.PUBSEEKPOS, i.id)
	rpc.WriteU32(i.conn, streamID)
	rpc.WriteU64(i.conn, uint64(pos))
	n, err := rpc.ReadU64(i.conn)
	if err != nil {
		return -1
	}
	return int64(n)
}

func (i *Interface) PubSync(streamID uint32) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.PUBSYNC, i.id)
	rpc.WriteU32(i.conn, streamID)
	n, err := rpc.ReadU32(i.conn)
	if err != nil {
		return -1
	}
	return int(n)
}

func (i *Interface) InAvail(streamID uint32) int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	rpc.WriteHeader(i.conn, rpc.IN_AVAIL, i.id)
	rpc.WriteU32(i.conn, streamID)
	n, err := rpc.ReadU64(i.conn)
	if err != nil {
		return -1
	}
	return int64(n)
}
