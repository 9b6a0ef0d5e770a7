// Package engine implements §4.4: the Core/Interface trait pair every
// compiled module instance runs behind, and the stub engine used for
// instances with no observable behavior.
package engine

import "github.com/sarchlab/cascade/bv"

// Core is the computation half of an engine; backend-specific (§4.4).
// Implementations: engine/sw (software interpreter), engine/clock,
// engine/stub, rpc/proxy (remote).
type Core interface {
	// GetState/SetState round-trip every stateful variable id to its
	// current bit-vector value.
	GetState() map[uint32]bv.Value
	SetState(map[uint32]bv.Value)

	// GetInput/SetInput round-trip every input variable id.
	GetInput() map[uint32]bv.Value
	SetInput(map[uint32]bv.Value)

	// Resync is called once after SetState/SetInput during engine
	// replacement, before the new core participates in scheduling.
	Resync()

	// Read delivers a new value on input id. Must be cheap: no
	// computation, just buffering.
	Read(id uint32, bits bv.Value)

	// Evaluate propagates current inputs to outputs and emits any
	// combinational system-task side effects through the interface. The
	// scheduler calls this whenever ThereAreReads is true.
	Evaluate()
	ThereAreReads() bool

	// ThereAreUpdates/Update service pending nonblocking assignments;
	// Update may re-raise ThereAreReads via additional output writes.
	ThereAreUpdates() bool
	Update()

	// ThereWereTasks reports whether the most recent Evaluate or Update
	// produced any system-task side effects.
	ThereWereTasks() bool
}

// DoneStepper is an optional Core extension: done_step is called at the
// end of every logical step (clock cores flip their output here).
type DoneStepper interface {
	DoneStep()
}

// DoneSimulator is an optional Core extension called once at shutdown.
type DoneSimulator interface {
	DoneSimulation()
}

// OpenLooper is an optional fast-path Core extension: when the entire
// reachable program is inlined into one core whose only input is the
// runtime clock with no outputs, OpenLoop repeatedly toggles clkID
// internally up to maxIters times or until a system task fires, returning
// the iterations actually consumed.
type OpenLooper interface {
	OpenLoop(clkID uint32, initial bv.Value, maxIters uint64) uint64
}

// Interface is the reverse channel: dataplane writes and pass-through
// control-plane/stream-IO methods (§4.4). StubInterface is a no-op
// instance for modules with neither I/O nor side effects.
type Interface interface {
	Write(id uint32, bits bv.Value)
	WriteBool(id uint32, bit bool)

	Finish()
	Restart()
	Retarget()
	Save(name string)

	FOpen(path string, mode string) (streamID uint32, ok bool)
	SBumpc(streamID uint32) (ch int32)
	SGetc(streamID uint32) (ch int32)
	SGetn(streamID uint32, buf []byte) int
	SPutc(streamID uint32, ch byte) int32
	SPutn(streamID uint32, buf []byte) int
	PubSeekOff(streamID uint32, off int64, whence int) int64
	PubSeekPos(streamID uint32, pos int64) int64
	PubSync(streamID uint32) int
	InAvail(streamID uint32) int64
}

// ConditionalUpdate is `if ThereAreUpdates then Update; true else false`
// (§4.4).
func ConditionalUpdate(c Core) bool {
	if c.ThereAreUpdates() {
		c.Update()
		return true
	}
	return false
}

// ConditionalEvaluate is `if ThereAreReads then Evaluate; true else false`
// (§4.4).
func ConditionalEvaluate(c Core) bool {
	if c.ThereAreReads() {
		c.Evaluate()
		return true
	}
	return false
}

// Engine pairs one Core and one Interface behind a single replaceable
// handle (§5 "each elaborated instance exclusively owns its engine").
type Engine struct {
	Core      Core
	Interface Interface
}

// ReplaceWith atomically swaps in a new core/interface pair, round-tripping
// state and input through the old core so the new one starts from
// identical observable state (§4.4, §8 invariant 7: replace-with
// atomicity). The caller must serialize this against Evaluate/Update; the
// scheduler does so by running posted interrupts on its Tick goroutine
// between steps, with no lock held while an interrupt runs (§4.6).
func (e *Engine) ReplaceWith(core Core, iface Interface) {
	var state, input map[uint32]bv.Value
	if e.Core != nil {
		state = e.Core.GetState()
		input = e.Core.GetInput()
	}
	e.Core = core
	e.Interface = iface
	if state != nil {
		e.Core.SetState(state)
	}
	if input != nil {
		e.Core.SetInput(input)
	}
	e.Core.Resync()
}
