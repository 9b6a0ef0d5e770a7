// Package clock implements the __std="clock" engine.Core (§4.6): a single
// output that flips on every done_step, with no inputs and no combinational
// behavior of its own. It is grounded on the teacher's core/builder.go
// pattern of a tiny, purpose-built Core type alongside the general-purpose
// emulator core, just replacing instruction execution with one flip-flop.
package clock

import (
	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/engine"
)

// Core toggles a single stateful output id once per logical step (§4.6
// "clocks flip their output and re-raise updates for the next step").
type Core struct {
	id      uint32
	value   bv.Value
	iface   engine.Interface
	pending bool
}

// New builds a clock core whose sole output is id, starting at the given
// initial level.
func New(id uint32, initial bool, iface engine.Interface) *Core {
	v := uint64(0)
	if initial {
		v = 1
	}
	return &Core{id: id, value: bv.New(1, bv.Unsigned, v), iface: iface}
}

func (c *Core) GetState() map[uint32]bv.Value { return map[uint32]bv.Value{c.id: c.value} }

func (c *Core) SetState(s map[uint32]bv.Value) {
	if v, ok := s[c.id]; ok {
		c.value = v
	}
}

func (c *Core) GetInput() map[uint32]bv.Value { return nil }
func (c *Core) SetInput(map[uint32]bv.Value)  {}
func (c *Core) Resync()                       {}
func (c *Core) Read(uint32, bv.Value)         {} // clock has no inputs

func (c *Core) Evaluate() {}
func (c *Core) ThereAreReads() bool { return false }

func (c *Core) ThereAreUpdates() bool { return c.pending }

func (c *Core) Update() {
	c.pending = false
	c.iface.Write(c.id, c.value)
}

func (c *Core) ThereWereTasks() bool { return false }

// DoneStep flips the clock's value and queues the flip for delivery on the
// next drain-updates pass (§4.6 step 3).
func (c *Core) DoneStep() {
	c.value = bv.New(1, bv.Unsigned, c.value.ToUint64()^1)
	c.pending = true
}

var _ engine.Core = (*Core)(nil)
var _ engine.DoneStepper = (*Core)(nil)
