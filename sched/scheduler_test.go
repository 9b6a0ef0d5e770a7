package sched_test

import (
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/dataplane"
	"github.com/sarchlab/cascade/engine"
	"github.com/sarchlab/cascade/sched"
)

// fakeCore is a hand-written engine.Core double; the package also declares
// a go:generate mockgen directive for akita/v4/sim.Connection/Component,
// mirroring the teacher's core_suite_test.go convention of generating
// interface doubles for the ambient akita stack rather than domain types
// this small.
type fakeCore struct {
	reads      int
	evaluated  int
	updated    int
	hasReads   bool
	hasUpdates bool
	doneSteps  int
}

func (f *fakeCore) GetState() map[uint32]bv.Value { return nil }
func (f *fakeCore) SetState(map[uint32]bv.Value)  {}
func (f *fakeCore) GetInput() map[uint32]bv.Value { return nil }
func (f *fakeCore) SetInput(map[uint32]bv.Value)  {}
func (f *fakeCore) Resync()                       {}
func (f *fakeCore) Read(uint32, bv.Value)         { f.reads++ }
func (f *fakeCore) Evaluate() {
	f.evaluated++
	f.hasReads = false
}
func (f *fakeCore) ThereAreReads() bool { return f.hasReads }
func (f *fakeCore) ThereAreUpdates() bool {
	return f.hasUpdates
}
func (f *fakeCore) Update() {
	f.updated++
	f.hasUpdates = false
}
func (f *fakeCore) ThereWereTasks() bool { return false }
func (f *fakeCore) DoneStep()            { f.doneSteps++ }

var _ engine.Core = (*fakeCore)(nil)
var _ engine.DoneStepper = (*fakeCore)(nil)

var _ = Describe("Scheduler", func() {
	var (
		eng  sim.Engine
		data *dataplane.Dataplane
		s    *sched.Scheduler
	)

	BeforeEach(func() {
		eng = sim.NewSerialEngine()
		data = dataplane.New()
		s = sched.New("sched", eng, 1*sim.GHz, data, slog.Default())
	})

	It("evaluates a module with pending reads", func() {
		c := &fakeCore{hasReads: true}
		s.AddModule(&sched.Module{Name: "m", Engine: &engine.Engine{Core: c, Interface: engine.StubInterface{}}})

		s.Tick(0)

		Expect(c.evaluated).To(BeNumerically(">=", 1))
	})

	It("runs done_step once the drain settles", func() {
		c := &fakeCore{}
		s.AddModule(&sched.Module{Name: "m", Engine: &engine.Engine{Core: c, Interface: engine.StubInterface{}}})

		s.Tick(0)

		Expect(c.doneSteps).To(Equal(1))
	})

	It("runs posted interrupts during the drain step", func() {
		ran := false
		s.PostInterrupt(func() { ran = true })

		s.Tick(0)

		Expect(ran).To(BeTrue())
	})

	It("stops idempotently", func() {
		s.RequestStop()
		s.RequestStop()
		s.Tick(0)
		Expect(func() { s.WaitForStop() }).NotTo(Panic())
	})

	It("removes a module so it no longer participates", func() {
		c := &fakeCore{hasReads: true}
		m := &sched.Module{Name: "m", Engine: &engine.Engine{Core: c, Interface: engine.StubInterface{}}}
		s.AddModule(m)
		s.RemoveModule(m)

		s.Tick(0)

		Expect(c.evaluated).To(Equal(0))
	})
})
