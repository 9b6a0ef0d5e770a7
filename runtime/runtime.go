// Package runtime implements the §6 control surface: Run/RequestStop/
// WaitForStop/StopNow/Eval, named stream sinks for $display et al., and the
// $restart/$retarget/$save interrupts (original_source's runtime.h). It
// wires program.Program, sched.Scheduler, dataplane.Dataplane, and
// compiler.Coordinator into the one object an embedder or cmd/cascade
// drives, grounded on the teacher's core.Builder assembling a whole
// device from its constituent akita components.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/shirou/gopsutil/cpu"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cascade/ast"
	"github.com/sarchlab/cascade/compiler"
	"github.com/sarchlab/cascade/config"
	"github.com/sarchlab/cascade/dataplane"
	"github.com/sarchlab/cascade/engine"
	"github.com/sarchlab/cascade/program"
	"github.com/sarchlab/cascade/sched"
	"github.com/sarchlab/cascade/state"
	"github.com/sarchlab/cascade/state/catalog"
	"github.com/sarchlab/cascade/streamio"
)

// Stats summarizes one run for cmd/cascade's --stats reporting.
type Stats struct {
	LogicalTime    uint64
	EnginesBuilt   int
	CompileErrors  int
	OpenLoopBatch  uint64
	WallClockCPUPct float64
}

// Runtime owns the whole simulation: the akita engine, the scheduler
// thread, the dataplane, the compiler coordinator, and the stream table
// stdout/stderr/stdwarn/stdinfo/stdlog are pre-bound to (§6).
type Runtime struct {
	log *slog.Logger

	simEngine sim.Engine
	sched     *sched.Scheduler
	data      *dataplane.Dataplane
	prog      *program.Program
	compile   *compiler.Coordinator
	streams   *streamio.Table
	monitor   *monitoring.Monitor

	enginesBuilt  int
	compileErrors int

	modMu   sync.Mutex
	modules []*sched.Module

	saveDir string
	catalog *catalog.Catalog
}

// New builds an idle runtime at the default 1GHz logical-step rate. logger
// defaults to slog.Default if nil.
func New(logger *slog.Logger) *Runtime {
	return NewWithFreq(logger, 1*sim.GHz)
}

// NewWithFreq builds an idle runtime whose scheduler ticks at freq,
// exposed separately from New so config.Root's scheduler.freq_hz can drive
// construction without New itself growing an options list.
func NewWithFreq(logger *slog.Logger, freq sim.Freq) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	simEng := sim.NewSerialEngine()
	data := dataplane.New()
	s := sched.New("cascade.scheduler", simEng, freq, data, logger)

	rt := &Runtime{
		log:       logger,
		simEngine: simEng,
		sched:     s,
		data:      data,
		prog:      program.New(logger),
		streams:   streamio.New(uint32(engine.StreamStdlog) + 1),
	}
	rt.compile = compiler.New(compiler.NewResolver(rt.prog.Resolve()), logger)

	rt.streams.Bind(engine.StreamStdout, streamio.NewMemory("stdout"))
	rt.streams.Bind(engine.StreamStderr, streamio.NewMemory("stderr"))
	rt.streams.Bind(engine.StreamStdwarn, streamio.NewMemory("stdwarn"))
	rt.streams.Bind(engine.StreamStdinfo, streamio.NewMemory("stdinfo"))
	rt.streams.Bind(engine.StreamStdlog, streamio.NewMemory("stdlog"))

	return rt
}

// ApplyConfig applies a parsed config.Root to an already-built runtime:
// the open-loop iteration target, registered proxy backends per __std, and
// the saved-state catalog. Scheduler frequency is fixed at construction
// (NewWithFreq), since the scheduler itself is not swappable once running.
func (rt *Runtime) ApplyConfig(cfg *config.Root) error {
	if cfg.Scheduler.OpenLoopTarget > 0 {
		rt.sched.OpenLoopTarget = cfg.Scheduler.OpenLoopTarget
	}
	for _, b := range cfg.Backends {
		if b.Kind != "proxy" {
			continue
		}
		rt.compile.RegisterProxy(compiler.NewProxyBackend(b.Address, &boundInterface{rt: rt}))
	}
	if cfg.Save.Dir != "" || cfg.Save.Catalog != "" {
		if err := rt.EnableCatalog(cfg.Save.Dir, cfg.Save.Catalog); err != nil {
			return err
		}
	}
	return nil
}

// BindStdout and its siblings redirect a reserved stream id to a real
// io.Writer sink (e.g. os.Stdout), per §6's "named io.Writer sinks" — the
// runtime wraps w as a write-only streamio.Stream.
func (rt *Runtime) BindStdout(w io.Writer) { rt.bindSink(engine.StreamStdout, w) }
func (rt *Runtime) BindStderr(w io.Writer) { rt.bindSink(engine.StreamStderr, w) }
func (rt *Runtime) BindStdwarn(w io.Writer) { rt.bindSink(engine.StreamStdwarn, w) }
func (rt *Runtime) BindStdinfo(w io.Writer) { rt.bindSink(engine.StreamStdinfo, w) }
func (rt *Runtime) BindStdlog(w io.Writer) { rt.bindSink(engine.StreamStdlog, w) }

func (rt *Runtime) bindSink(id uint32, w io.Writer) {
	rt.streams.Bind(id, streamio.NewFile("sink", writeOnly{w}))
}

type writeOnly struct{ io.Writer }

func (writeOnly) Read([]byte) (int, error) { return 0, io.EOF }
func (writeOnly) Close() error             { return nil }

// EnableMonitoring registers the runtime's simulation engine with an
// akita/v4 monitor, mirroring core.Builder's monitor.RegisterEngine wiring
// in the teacher's device assembly.
func (rt *Runtime) EnableMonitoring(m *monitoring.Monitor) {
	rt.monitor = m
	m.RegisterEngine(rt.simEngine)
}

// Eval feeds one parsed top-level fragment into the program, exactly as
// §6's "the parser delivers typed AST fragments... either a
// ModuleDeclaration, a ModuleInstantiation... or a ModuleItem" describes.
func (rt *Runtime) Eval(item ast.Node) error {
	return rt.prog.Eval(item)
}

// Declare registers a module declaration (§4.3 Program.Declare).
func (rt *Runtime) Declare(md *ast.ModuleDeclaration) error {
	return rt.prog.Declare(md)
}

// Run drives the scheduler until RequestStop/StopNow is observed or ctx
// is cancelled, calling the scheduler's Tick directly in a loop (the akita
// engine's event loop is not run) with no wall-clock pacing beyond what
// open_loop's iteration budget imposes.
func (rt *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			rt.sched.StopNow()
			return ctx.Err()
		case <-rt.sched.Done():
			return nil
		default:
		}
		rt.sched.Tick(sim.VTimeInSec(rt.sched.LogicalTime()))
	}
}

// RequestStop/WaitForStop/StopNow pass straight through to the scheduler
// (§4.6 cancellation).
func (rt *Runtime) RequestStop() { rt.sched.RequestStop() }
func (rt *Runtime) WaitForStop() { rt.sched.WaitForStop() }
func (rt *Runtime) StopNow()     { rt.sched.StopNow() }

// Compile runs the compiler coordinator's compile_and_replace for one
// elaborated instance, wiring a boundInterface so the resulting engine's
// Write/stream calls reach this runtime's dataplane and stream table.
func (rt *Runtime) Compile(uuid xid.ID, version uint64, md *ast.ModuleDeclaration, secondPass bool) (*engine.Engine, error) {
	info := rt.prog.ModuleInfo(md)
	iface := &boundInterface{rt: rt}

	eng := &engine.Engine{}
	req := compiler.Request{UUID: uuid, Version: version, Module: md, Info: info, SecondPass: secondPass}
	if err := rt.compile.CompileAndReplace(eng, req, iface, func(i compiler.Interrupt) {
		rt.sched.PostInterrupt(sched.Interrupt(i))
	}); err != nil {
		rt.compileErrors++
		return nil, fmt.Errorf("runtime: compile %s: %w", uuid, err)
	}
	rt.enginesBuilt++
	return eng, nil
}

// AddModule registers a compiled engine with the scheduler for step
// participation.
func (rt *Runtime) AddModule(name string, eng *engine.Engine, isClock bool, clockID uint32) *sched.Module {
	m := &sched.Module{Name: name, Engine: eng, IsClock: isClock, ClockID: clockID}
	rt.sched.AddModule(m)
	rt.modMu.Lock()
	rt.modules = append(rt.modules, m)
	rt.modMu.Unlock()
	return m
}

// EnableCatalog opens a sqlite-backed index of named save files at
// dbPath, storing future $save snapshots under dir (a supplemental
// feature beyond original_source's bare save(path); §6 only specifies the
// stream format, not where snapshots live or how they're named).
func (rt *Runtime) EnableCatalog(dir, dbPath string) error {
	cat, err := catalog.Open(dbPath)
	if err != nil {
		return fmt.Errorf("runtime: enable catalog: %w", err)
	}
	rt.saveDir = dir
	rt.catalog = cat
	return nil
}

// saveSnapshot gathers GetState from every registered module's Core,
// writes it as one §6 saved-state stream, and records it in the catalog
// if one is enabled.
func (rt *Runtime) saveSnapshot(name string) error {
	rt.modMu.Lock()
	mods := append([]*sched.Module(nil), rt.modules...)
	rt.modMu.Unlock()

	snap := state.Snapshot{}
	for _, m := range mods {
		for vid, v := range m.Engine.Core.GetState() {
			snap[vid] = v
		}
	}

	dir := rt.saveDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, name+".cascade-state")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("runtime: save %s: %w", name, err)
	}
	defer f.Close()
	if err := state.Write(f, snap); err != nil {
		return fmt.Errorf("runtime: save %s: %w", name, err)
	}

	if rt.catalog != nil {
		if err := rt.catalog.Record(catalog.Entry{Name: name, Path: path, SavedAt: time.Now(), VarCount: len(snap)}); err != nil {
			return fmt.Errorf("runtime: catalog record %s: %w", name, err)
		}
	}
	return nil
}

// Stats reports a point-in-time summary, sampling CPU percent via
// gopsutil the way cmd/cascade's --stats table renders it.
func (rt *Runtime) Stats() Stats {
	pct, err := cpu.Percent(0, false)
	cpuPct := 0.0
	if err == nil && len(pct) > 0 {
		cpuPct = pct[0]
	}
	return Stats{
		LogicalTime:     rt.sched.LogicalTime(),
		EnginesBuilt:    rt.enginesBuilt,
		CompileErrors:   rt.compileErrors,
		OpenLoopBatch:   rt.sched.OpenLoopTarget,
		WallClockCPUPct: cpuPct,
	}
}

// Shutdown stops the scheduler, cancels any in-flight compiles, and
// registers a final stats flush with atexit so the process-wide shutdown
// hook runs even if the caller forgets to check err (mirrors the teacher's
// expectation that atexit.Exit drives clean process teardown).
func (rt *Runtime) Shutdown() {
	rt.sched.StopNow()
	rt.compile.Shutdown()
	if rt.catalog != nil {
		rt.catalog.Close()
	}
	stats := rt.Stats()
	atexit.Register(func() {
		rt.log.Info("cascade runtime shutdown", "logical_time", stats.LogicalTime, "engines_built", stats.EnginesBuilt)
	})
	atexit.Exit(0)
}

func (rt *Runtime) onFinish() {
	rt.log.Info("$finish")
	rt.sched.RequestStop()
}

func (rt *Runtime) onRestart() {
	rt.log.Info("$restart")
}

func (rt *Runtime) onRetarget() {
	rt.log.Info("$retarget")
}

func (rt *Runtime) onSave(name string) {
	if err := rt.saveSnapshot(name); err != nil {
		rt.log.Error("$save", "name", name, "error", err)
		return
	}
	rt.log.Info("$save", "name", name)
}
