// Package sw implements engine.Core/engine.Interface as a direct AST
// interpreter (§4.4), the software-compiler backend every module falls
// back to before (or instead of) a second-pass hardware compile. It is
// grounded on the teacher's core/emu.go instruction interpreter: a plain
// state struct walked by a Tick-shaped evaluation loop, just trading the
// teacher's fixed CGRA instruction set for Cascade's AST node variants.
package sw

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/cascade/ast"
	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/engine"
)

// Resolver resolves an identifier to the declaration it refers to. The
// compiler coordinator wires this to analyze.Resolve.GetResolution; engine/sw
// does not import analyze itself, to keep the dependency direction one-way
// (program/compiler depend on engine, not the reverse).
type Resolver func(*ast.Identifier) ast.Node

// Core interprets one elaborated module's items directly (§4.4). It is the
// "compile" the logic/custom std-annotations resolve to on the
// compile_and_replace first pass (§4.7); a slower second-pass backend may
// later replace it wholesale via engine.Engine.ReplaceWith.
type Core struct {
	log      *slog.Logger
	root     *ast.ModuleDeclaration
	resolve  Resolver
	iface    engine.Interface

	ids    map[ast.Node]uint32
	byID   map[uint32]ast.Node
	values map[ast.Node]bv.Value

	pendingNonblocking []pendingWrite
	inputsChanged      map[ast.Node]bool
	ranInitial         bool
	thereWereTasks     bool
	finished           bool
}

// Finished reports whether this core's $finish has run.
func (c *Core) Finished() bool { return c.finished }

type pendingWrite struct {
	decl ast.Node
	val  bv.Value
}

// New builds a software core over root's (already elaborated and, for the
// inline-fast-path case, already InlineAll-flattened) item tree.
func New(root *ast.ModuleDeclaration, resolve Resolver, iface engine.Interface, logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Core{
		log: logger, root: root, resolve: resolve, iface: iface,
		ids: map[ast.Node]uint32{}, byID: map[uint32]ast.Node{},
		values: map[ast.Node]bv.Value{}, inputsChanged: map[ast.Node]bool{},
	}
	c.registerVars(root)
	return c
}

func (c *Core) registerVars(container ast.ItemContainer) {
	for _, it := range container.Items() {
		switch v := it.(type) {
		case *ast.PortDeclaration:
			c.register(v)
		case *ast.VarDeclaration:
			c.register(v)
			if v.Init != nil {
				c.values[v] = c.eval(v.Init)
			}
		case *ast.GenerateBlock:
			c.registerVars(v)
		case *ast.ModuleInstantiation:
			if v.Inlined && v.Elab != nil {
				c.registerVars(v.Elab)
			}
		}
	}
}

func (c *Core) register(decl ast.Node) {
	if _, ok := c.ids[decl]; ok {
		return
	}
	id := uint32(len(c.ids))
	c.ids[decl] = id
	c.byID[id] = decl
}

// ID returns the dataplane variable id engine/sw assigned to decl, used by
// the compiler coordinator and dataplane to wire reader/writer
// registrations by declaration rather than by id (§4.5).
func (c *Core) ID(decl ast.Node) (uint32, bool) {
	id, ok := c.ids[decl]
	return id, ok
}

// GetState returns every stateful variable's current value.
func (c *Core) GetState() map[uint32]bv.Value {
	out := map[uint32]bv.Value{}
	for decl, id := range c.ids {
		if vd, ok := decl.(*ast.VarDeclaration); ok && (vd.Kind == ast.VarReg || vd.IsFopenInit) {
			if v, ok := c.values[decl]; ok {
				out[id] = v
			}
		}
	}
	return out
}

// SetState restores a previously captured state snapshot.
func (c *Core) SetState(s map[uint32]bv.Value) {
	for id, v := range s {
		if decl, ok := c.byID[id]; ok {
			c.values[decl] = v
		}
	}
}

// GetInput returns every input port's current value.
func (c *Core) GetInput() map[uint32]bv.Value {
	out := map[uint32]bv.Value{}
	for decl, id := range c.ids {
		if pd, ok := decl.(*ast.PortDeclaration); ok && pd.Dir != ast.DirOutput {
			if v, ok := c.values[decl]; ok {
				out[id] = v
			}
		}
	}
	return out
}

// SetInput restores a previously captured input snapshot.
func (c *Core) SetInput(s map[uint32]bv.Value) {
	for id, v := range s {
		if decl, ok := c.byID[id]; ok {
			c.values[decl] = v
		}
	}
}

// Resync re-seeds edge detection after a state/input round-trip so the
// first Evaluate after an engine replacement does not spuriously see every
// input as newly changed.
func (c *Core) Resync() {
	c.inputsChanged = map[ast.Node]bool{}
}

// Read buffers a new input value and marks it changed for edge detection.
func (c *Core) Read(id uint32, bits bv.Value) {
	decl, ok := c.byID[id]
	if !ok {
		return
	}
	old, had := c.values[decl]
	c.values[decl] = bits
	if !had || !old.Equal(bits) {
		c.inputsChanged[decl] = true
	}
}

// ThereAreReads reports whether Evaluate has work: an unconsumed input
// change, or the one-time initial pass has not yet run.
func (c *Core) ThereAreReads() bool {
	return !c.ranInitial || len(c.inputsChanged) > 0
}

// Evaluate runs every initial block once, then every always block whose
// sensitivity list includes a changed input (§4.4).
func (c *Core) Evaluate() {
	c.thereWereTasks = false
	if !c.ranInitial {
		c.ranInitial = true
		c.walk(c.root, func(body *ast.ProceduralConstruct) bool { return !body.Always })
	}
	if len(c.inputsChanged) > 0 {
		c.walk(c.root, func(body *ast.ProceduralConstruct) bool { return body.Always && c.sensitized(body) })
		c.inputsChanged = map[ast.Node]bool{}
	}
}

func (c *Core) sensitized(p *ast.ProceduralConstruct) bool {
	if len(p.Sensitivity) == 0 {
		return true // no sensitivity list: treated as combinational, always re-run
	}
	for _, s := range p.Sensitivity {
		if decl := c.resolve(s); decl != nil && c.inputsChanged[decl] {
			return true
		}
	}
	return false
}

func (c *Core) walk(container ast.ItemContainer, want func(*ast.ProceduralConstruct) bool) {
	for _, it := range container.Items() {
		switch v := it.(type) {
		case *ast.ProceduralConstruct:
			if want(v) {
				c.exec(v.Body)
			}
		case *ast.AssignStatement:
			c.exec(v) // continuous assign: executes as part of every evaluate pass
		case *ast.GenerateBlock:
			c.walk(v, want)
		case *ast.ModuleInstantiation:
			if v.Inlined && v.Elab != nil {
				c.walk(v.Elab, want)
			}
		}
	}
}

// ThereAreUpdates reports whether queued nonblocking assignments are
// waiting for phase 2 of the reference schedule.
func (c *Core) ThereAreUpdates() bool { return len(c.pendingNonblocking) > 0 }

// Update commits every queued nonblocking assignment, writing through the
// interface for any that target an output port (which may re-raise
// ThereAreReads on downstream engines via the dataplane).
func (c *Core) Update() {
	pending := c.pendingNonblocking
	c.pendingNonblocking = nil
	for _, w := range pending {
		c.values[w.decl] = w.val
		if id, ok := c.ids[w.decl]; ok {
			if pd, ok := w.decl.(*ast.PortDeclaration); ok && pd.Dir != ast.DirInput {
				c.iface.Write(id, w.val)
			}
		}
	}
}

// ThereWereTasks reports whether the most recent Evaluate/Update produced
// a system-task side effect.
func (c *Core) ThereWereTasks() bool { return c.thereWereTasks }

// DoneStep implements engine.DoneStepper: no-op for a plain software core
// (clock toggling lives in the sibling clock core).
func (c *Core) DoneStep() {}

func (c *Core) exec(n ast.Node) {
	switch v := n.(type) {
	case *ast.Block:
		for _, it := range v.Items() {
			c.exec(it)
		}
	case *ast.IfStatement:
		if c.eval(v.Cond).ToBool() {
			c.exec(v.Then)
		} else if v.Else != nil {
			c.exec(v.Else)
		}
	case *ast.AssignStatement:
		decl := c.lhsDecl(v.Lhs)
		if decl == nil {
			return
		}
		val := c.eval(v.Rhs)
		if v.Tag() == ast.TagNonblockingAssign {
			c.pendingNonblocking = append(c.pendingNonblocking, pendingWrite{decl: decl, val: val})
		} else {
			c.values[decl] = val
			if id, ok := c.ids[decl]; ok {
				if pd, ok := decl.(*ast.PortDeclaration); ok && pd.Dir != ast.DirInput {
					c.iface.Write(id, val)
				}
			}
		}
	case *ast.SystemTaskCall:
		c.task(v)
	case nil:
	}
}

func (c *Core) lhsDecl(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.Identifier:
		return c.resolve(v)
	case *ast.RangeExpr:
		return c.lhsDecl(v.Arg)
	default:
		return nil
	}
}

func (c *Core) task(call *ast.SystemTaskCall) {
	c.thereWereTasks = true
	switch call.Task {
	case "display":
		c.iface.SPutn(engine.StreamStdout, []byte(c.format(call.Args)+"\n"))
	case "write":
		c.iface.SPutn(engine.StreamStdout, []byte(c.format(call.Args)))
	case "error":
		c.log.Error(c.format(call.Args))
	case "warning":
		c.log.Warn(c.format(call.Args))
	case "info":
		c.log.Info(c.format(call.Args))
	case "finish":
		c.finished = true
		c.iface.Finish()
	case "restart":
		c.iface.Restart()
	case "retarget":
		c.iface.Retarget()
	case "save":
		name := ""
		if len(call.Args) > 0 {
			name = c.format(call.Args[:1])
		}
		c.iface.Save(name)
	}
}

// format renders a system-task argument list the way $display/$write do:
// each argument's bit-vector decimal value, space-separated. A richer
// format-string dialect is out of scope (spec.md's Non-goals exclude full
// IEEE-1364 coverage).
func (c *Core) format(args []ast.Node) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += c.eval(a).String()
	}
	return out
}

func (c *Core) eval(n ast.Node) bv.Value {
	switch v := n.(type) {
	case *ast.ConstExpr:
		return v.Value
	case *ast.Identifier:
		decl := c.resolve(v)
		if val, ok := c.values[decl]; ok {
			return val
		}
		if pd, ok := decl.(*ast.ParamDeclaration); ok {
			return c.eval(pd.Value)
		}
		return bv.Value{}
	case *ast.UnaryExpr:
		return evalUnary(v.Op, c.eval(v.Arg))
	case *ast.BinaryExpr:
		return evalBinary(v.Op, c.eval(v.Lhs), c.eval(v.Rhs))
	case *ast.ConcatExpr:
		acc := c.eval(v.Args[0])
		for _, a := range v.Args[1:] {
			acc = bv.Concat(acc, c.eval(a))
		}
		return acc
	case *ast.RangeExpr:
		base := c.eval(v.Arg)
		msb := c.eval(v.Msb)
		lsb := c.eval(v.Lsb)
		return bv.Slice(base, uint32(msb.ToUint64()), uint32(lsb.ToUint64()))
	case *ast.SystemTaskCall:
		if v.Task == "fopen" {
			id, ok := c.iface.FOpen("", "r")
			if !ok {
				return bv.New(32, bv.Unsigned, 0)
			}
			return bv.New(32, bv.Unsigned, uint64(id))
		}
		c.log.Warn("engine/sw: system task used where a value was required", "task", v.Task)
		return bv.Value{}
	default:
		c.log.Warn("engine/sw: unevaluable expression node", "type", fmt.Sprintf("%T", n))
		return bv.Value{}
	}
}
