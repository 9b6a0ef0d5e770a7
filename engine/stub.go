package engine

import "github.com/sarchlab/cascade/bv"

// StubCore is the Core half of a stub engine: a module with no inputs, no
// outputs, and no observable side effects short-circuits to this instead
// of a real backend compile (§4.7 "stub check").
type StubCore struct{}

func (StubCore) GetState() map[uint32]bv.Value { return nil }
func (StubCore) SetState(map[uint32]bv.Value)  {}
func (StubCore) GetInput() map[uint32]bv.Value { return nil }
func (StubCore) SetInput(map[uint32]bv.Value)  {}
func (StubCore) Resync()                       {}
func (StubCore) Read(uint32, bv.Value)          {}
func (StubCore) Evaluate()                      {}
func (StubCore) ThereAreReads() bool            { return false }
func (StubCore) ThereAreUpdates() bool          { return false }
func (StubCore) Update()                        {}
func (StubCore) ThereWereTasks() bool           { return false }

// StubInterface is the no-op Interface instance used by stub engines
// (§4.4): every method is a deliberate no-op rather than an error, since a
// stub engine by definition never has anything to say through it.
type StubInterface struct{}

func (StubInterface) Write(uint32, bv.Value)                    {}
func (StubInterface) WriteBool(uint32, bool)                    {}
func (StubInterface) Finish()                                   {}
func (StubInterface) Restart()                                  {}
func (StubInterface) Retarget()                                 {}
func (StubInterface) Save(string)                               {}
func (StubInterface) FOpen(string, string) (uint32, bool)        { return 0, false }
func (StubInterface) SBumpc(uint32) int32                        { return -1 }
func (StubInterface) SGetc(uint32) int32                         { return -1 }
func (StubInterface) SGetn(uint32, []byte) int                   { return 0 }
func (StubInterface) SPutc(uint32, byte) int32                   { return -1 }
func (StubInterface) SPutn(uint32, []byte) int                   { return 0 }
func (StubInterface) PubSeekOff(uint32, int64, int) int64        { return -1 }
func (StubInterface) PubSeekPos(uint32, int64) int64             { return -1 }
func (StubInterface) PubSync(uint32) int                         { return -1 }
func (StubInterface) InAvail(uint32) int64                       { return 0 }

// StubEngine wraps a stub Core/Interface pair as an *Engine.
func StubEngine() *Engine {
	return &Engine{Core: StubCore{}, Interface: StubInterface{}}
}

// IsStub reports whether md's module-info classifies it as having no
// inputs, no outputs, and no stateful/stream variables — the stub-check
// condition compiler.Compile applies before dispatching to a backend
// (§4.7).
func IsStub(inputs, outputs, stateful, streams int) bool {
	return inputs == 0 && outputs == 0 && stateful == 0 && streams == 0
}
