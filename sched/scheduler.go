// Package sched implements §4.6: the reference schedule, its open-loop fast
// path, and interrupt-driven cancellation. It is grounded on the teacher's
// core/builder.go and api/driver.go, which embed *sim.TickingComponent and
// drive a device's simulation loop one Tick at a time; Scheduler reuses that
// embedding so Cascade's logical step runs as one Tick of an
// akita/v4 TickingComponent instead of inventing its own clock.
package sched

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cascade/dataplane"
	"github.com/sarchlab/cascade/engine"
)

// Module is one elaborated instance's engine, addressed by the dataplane ids
// its ports occupy (used only for OpenLoop's clock/logic detection; the
// reference schedule itself just walks every module in order).
type Module struct {
	Name    string
	Engine  *engine.Engine
	IsClock bool
	ClockID uint32
}

// Interrupt is a thunk the interrupt queue runs on the runtime thread
// between logical steps (§4.6 step 4): REPL eval requests, finish, restart,
// retarget, save, and engine replacements all arrive this way.
type Interrupt func()

// Scheduler drives the reference schedule (§4.6). One Scheduler instance is
// the "runtime thread" of §5: all engine methods and dataplane writes run
// on its Tick goroutine; everything else communicates with it only by
// posting interrupts.
type Scheduler struct {
	*sim.TickingComponent

	log  *slog.Logger
	data *dataplane.Dataplane

	mu      sync.Mutex
	modules []*Module

	interruptMu sync.Mutex
	interrupts  []Interrupt

	logicalTime uint64

	stopRequested atomic.Bool
	stopped       chan struct{}
	stopOnce      sync.Once

	// OpenLoopTarget is the fixed iteration budget Tick passes to OpenLoop
	// on the open-loop fast path (New sets it to 1,000,000; Tick uses 1 if
	// it is zero). It is not tuned against wall-clock time.
	OpenLoopTarget uint64
}

// New builds a Scheduler as an akita/v4 ticking component, grounded on
// core.Builder.Build's c.TickingComponent = sim.NewTickingComponent(...)
// wiring.
func New(name string, eng sim.Engine, freq sim.Freq, data *dataplane.Dataplane, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		log:            logger,
		data:           data,
		stopped:        make(chan struct{}),
		OpenLoopTarget: 1_000_000,
	}
	s.TickingComponent = sim.NewTickingComponent(name, eng, freq, s)
	return s
}

// AddModule registers a module to participate in the reference schedule.
func (s *Scheduler) AddModule(m *Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules = append(s.modules, m)
}

// RemoveModule drops a module (engine teardown); tolerates m not being
// present.
func (s *Scheduler) RemoveModule(m *Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.modules {
		if existing == m {
			s.modules = append(s.modules[:i], s.modules[i+1:]...)
			return
		}
	}
}

// LogicalTime returns the number of reference-schedule steps completed.
func (s *Scheduler) LogicalTime() uint64 {
	return atomic.LoadUint64(&s.logicalTime)
}

// PostInterrupt enqueues a thunk to run during the next interrupt drain
// (§4.6 step 4). Safe to call from any goroutine, including from within a
// running interrupt (the queue is only held while popping, never while a
// thunk executes, so posting from inside a thunk cannot deadlock — the Go
// equivalent of the re-entrant lock the reference schedule calls for).
func (s *Scheduler) PostInterrupt(i Interrupt) {
	s.interruptMu.Lock()
	s.interrupts = append(s.interrupts, i)
	s.interruptMu.Unlock()
}

func (s *Scheduler) popInterrupt() (Interrupt, bool) {
	s.interruptMu.Lock()
	defer s.interruptMu.Unlock()
	if len(s.interrupts) == 0 {
		return nil, false
	}
	i := s.interrupts[0]
	s.interrupts = s.interrupts[1:]
	return i, true
}

// RequestStop sets the flag checked at step boundaries. Idempotent.
func (s *Scheduler) RequestStop() {
	s.stopRequested.Store(true)
}

// Done returns a channel closed once the scheduler has observed
// RequestStop and finished its final step, for callers that want to
// select on shutdown rather than block in WaitForStop.
func (s *Scheduler) Done() <-chan struct{} { return s.stopped }

// WaitForStop blocks until the scheduler has observed RequestStop and
// finished its current step, draining the interrupt queue one final time
// (§5 "shutting down the runtime first drains the interrupt queue with all
// pending evals").
func (s *Scheduler) WaitForStop() {
	<-s.stopped
}

// StopNow is request + wait.
func (s *Scheduler) StopNow() {
	s.RequestStop()
	s.WaitForStop()
}

func (s *Scheduler) markStopped() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

// Tick performs one reference-schedule step (§4.6): drain active, drain
// updates (looping back to drain active if updates re-raised reads), done
// step, drain interrupts, advance logical time.
func (s *Scheduler) Tick(now sim.VTimeInSec) (madeProgress bool) {
	if s.stopRequested.Load() {
		s.drainInterrupts()
		s.markStopped()
		return false
	}

	s.mu.Lock()
	mods := append([]*Module(nil), s.modules...)
	s.mu.Unlock()

	if clk, logic, ok := singleClockAndLogic(mods); ok {
		iters := s.OpenLoopTarget
		if iters == 0 {
			iters = 1
		}
		cur, _ := s.data.Value(clk.ClockID)
		if ll, ok := logic.Engine.Core.(engine.OpenLooper); ok {
			consumed := ll.OpenLoop(clk.ClockID, cur, iters)
			atomic.AddUint64(&s.logicalTime, consumed)
			madeProgress = consumed > 0
		}
	} else {
		madeProgress = s.referenceStep(mods)
	}

	s.drainInterrupts()
	atomic.AddUint64(&s.logicalTime, 1)
	return madeProgress
}

func (s *Scheduler) referenceStep(mods []*Module) bool {
	any := false
	for {
		if !s.drainActive(mods) {
			break
		}
		any = true
		if !s.drainUpdates(mods) {
			break
		}
	}
	s.doneStep(mods)
	return any
}

// drainActive repeatedly calls Evaluate on every module with pending reads
// until a full pass produces no work (§4.6 step 1).
func (s *Scheduler) drainActive(mods []*Module) bool {
	progressed := false
	for {
		progress := false
		for _, m := range mods {
			if engine.ConditionalEvaluate(m.Engine.Core) {
				progress = true
				progressed = true
			}
		}
		if !progress {
			return progressed
		}
	}
}

// drainUpdates repeatedly calls Update on every module until one full pass
// produces no work, reporting whether any update re-raised reads (§4.6
// step 2).
func (s *Scheduler) drainUpdates(mods []*Module) bool {
	for {
		progress := false
		for _, m := range mods {
			if engine.ConditionalUpdate(m.Engine.Core) {
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	for _, m := range mods {
		if m.Engine.Core.ThereAreReads() {
			return true
		}
	}
	return false
}

// doneStep calls DoneStep on every module that implements it (§4.6 step 3).
func (s *Scheduler) doneStep(mods []*Module) {
	for _, m := range mods {
		if ds, ok := m.Engine.Core.(engine.DoneStepper); ok {
			ds.DoneStep()
		}
	}
}

func (s *Scheduler) drainInterrupts() {
	for {
		i, ok := s.popInterrupt()
		if !ok {
			return
		}
		i()
	}
}

// singleClockAndLogic reports whether mods contains exactly one clock
// module and exactly one non-clock module, the precondition for the
// open-loop fast path (§4.6).
func singleClockAndLogic(mods []*Module) (clock, logic *Module, ok bool) {
	if len(mods) != 2 {
		return nil, nil, false
	}
	var c, l *Module
	for _, m := range mods {
		if m.IsClock {
			c = m
		} else {
			l = m
		}
	}
	if c == nil || l == nil {
		return nil, nil, false
	}
	if _, isLooper := l.Engine.Core.(engine.OpenLooper); !isLooper {
		return nil, nil, false
	}
	return c, l, true
}
