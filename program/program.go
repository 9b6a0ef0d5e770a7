// Package program implements §4.3: the declaration table, the implicit
// top-level root module, and the elaboration worklist that drives
// Navigate/Resolve/Elaborate/ModuleInfo over whatever the caller feeds it.
package program

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sarchlab/cascade/analyze"
	"github.com/sarchlab/cascade/ast"
)

// Program owns the declaration table and the implicit root module that
// collects every top-level fragment fed to Eval (module instantiations,
// initial/always blocks).
type Program struct {
	log *slog.Logger

	decls     map[string]*ast.ModuleDeclaration
	declOrder []string
	root      *ast.ModuleDeclaration

	// elabs indexes every elaborated instance by its dotted hierarchical
	// path (e.g. "$root.f"), mirroring the source's elabs map (§4.3).
	elabs map[string]*ast.ModuleDeclaration

	resolve    *analyze.Resolve
	elaborate  *analyze.Elaborate
	moduleInfo *analyze.ModuleInfo
}

// New builds an empty program with the given diagnostics logger (nil uses
// slog.Default()).
func New(logger *slog.Logger) *Program {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Program{
		log:   logger,
		decls: map[string]*ast.ModuleDeclaration{},
		elabs: map[string]*ast.ModuleDeclaration{},
		root:  ast.NewModuleDeclaration("$root"),
	}
	p.resolve = analyze.NewResolve(p.Roots)
	p.elaborate = analyze.NewElaborate(p.lookupDecl, p.resolve)
	p.moduleInfo = analyze.NewModuleInfo(p.resolve, p.lookupDecl)
	return p
}

// Roots returns the program's single root module declaration, satisfying
// analyze.Resolve's root enumerator.
func (p *Program) Roots() []*ast.ModuleDeclaration { return []*ast.ModuleDeclaration{p.root} }

// Root returns the implicit top-level module every Eval fragment lives
// under.
func (p *Program) Root() *ast.ModuleDeclaration { return p.root }

// ModuleInfo returns the module-info summary for md, computing it first if
// stale (§4.2.4).
func (p *Program) ModuleInfo(md *ast.ModuleDeclaration) *ast.ModuleInfo {
	return p.moduleInfo.Get(md)
}

// Resolve returns the program's identifier resolver, the one point of
// contact compiler.NewResolver needs to adapt into an engine/sw.Resolver
// without engine/sw importing analyze directly.
func (p *Program) Resolve() *analyze.Resolve { return p.resolve }

// Elaborated looks up an instance by its dotted hierarchical path.
func (p *Program) Elaborated(path string) (*ast.ModuleDeclaration, bool) {
	md, ok := p.elabs[path]
	return md, ok
}

func (p *Program) lookupDecl(name string) (*ast.ModuleDeclaration, bool) {
	d, ok := p.decls[name]
	return d, ok
}

// checkpoint snapshots everything a rolled-back transaction restores.
type checkpoint struct {
	declOrder []string
	decls     map[string]*ast.ModuleDeclaration
	elabs     map[string]*ast.ModuleDeclaration
	rootLen   int
}

func (p *Program) snapshot() checkpoint {
	decls := make(map[string]*ast.ModuleDeclaration, len(p.decls))
	for k, v := range p.decls {
		decls[k] = v
	}
	elabs := make(map[string]*ast.ModuleDeclaration, len(p.elabs))
	for k, v := range p.elabs {
		elabs[k] = v
	}
	return checkpoint{
		declOrder: append([]string(nil), p.declOrder...),
		decls:     decls,
		elabs:     elabs,
		rootLen:   len(p.root.Items()),
	}
}

func (p *Program) restore(cp checkpoint) {
	p.declOrder = cp.declOrder
	p.decls = cp.decls
	p.elabs = cp.elabs
	p.root.Truncate(cp.rootLen)
	p.resolve.Invalidate()
}

// Declare type-checks md in declaration-only mode (local-only resolution,
// no instantiation expansion) and, if clean, inserts it into the
// declaration table (§4.3).
func (p *Program) Declare(md *ast.ModuleDeclaration) error {
	if _, exists := p.decls[md.Name]; exists {
		return fmt.Errorf("program: declaration error: duplicate module name %q", md.Name)
	}
	if err := checkLocal(md); err != nil {
		return fmt.Errorf("program: declaration error: %w", err)
	}
	p.decls[md.Name] = md
	p.declOrder = append(p.declOrder, md.Name)
	p.log.Debug("declared module", "name", md.Name, "std", md.Std)
	return nil
}

// checkLocal rejects a module with two declarations sharing one name, the
// only check decidable without expanding any instantiation.
func checkLocal(md *ast.ModuleDeclaration) error {
	ast.Refresh(md)
	scope := ast.ScopeOf(md)
	for _, it := range md.Items() {
		var id ast.Id
		switch v := it.(type) {
		case *ast.VarDeclaration:
			id = v.Name
		case *ast.ParamDeclaration:
			id = v.Name
		case *ast.PortDeclaration:
			id = v.Name
		default:
			continue
		}
		if scope.LookupDuplicate(id) != nil {
			return fmt.Errorf("duplicate identifier %q in module %q", id.Name, md.Name)
		}
	}
	return nil
}

// Eval appends a top-level fragment to the root module and drives the full
// elaborator. A ModuleInstantiation fragment must name an already-declared
// module. Any error aborts the whole transaction (§4.3, §7): the root's
// item list, the declaration table, and the elabs table are rolled back to
// the checkpoint taken before the fragment was appended.
func (p *Program) Eval(item ast.Node) error {
	cp := p.snapshot()

	if mi, ok := item.(*ast.ModuleInstantiation); ok {
		if _, ok := p.decls[mi.TargetName]; !ok {
			return fmt.Errorf("program: declaration error: undeclared module %q", mi.TargetName)
		}
	}

	p.root.AppendItem(item)
	if err := p.runWorklist(); err != nil {
		p.restore(cp)
		return err
	}
	p.resolve.Invalidate()
	return nil
}

// runWorklist repeatedly elaborates every pending instantiation and
// generate construct reachable from the root, registering each result and
// invalidating the container it was spliced into, until both queues drain
// (§4.3).
func (p *Program) runWorklist() error {
	queue := p.pending(p.root, p.root)
	for len(queue) > 0 {
		wi := queue[0]
		queue = queue[1:]

		switch n := wi.node.(type) {
		case *ast.ModuleInstantiation:
			if n.Elab != nil {
				continue
			}
			clone, err := p.elaborate.Instantiation(n)
			if err != nil {
				return err
			}
			invalidateContainer(wi.container)
			p.elabs[instancePath(n)] = clone
			p.log.Debug("elaborated instantiation", "target", n.TargetName, "inst", n.InstName)
			queue = append(queue, p.pending(clone, clone)...)

		case *ast.IfGenerateConstruct:
			blk, err := p.elaborate.If(n)
			if err != nil {
				return err
			}
			if !replaceConstruct(wi.container, n, blk) {
				return fmt.Errorf("program: elaboration error: if-generate construct not found in its container")
			}
			if blk != nil {
				queue = append(queue, p.pending(blk, wi.owner)...)
			}

		case *ast.CaseGenerateConstruct:
			blk, err := p.elaborate.Case(n)
			if err != nil {
				return err
			}
			if !replaceConstruct(wi.container, n, blk) {
				return fmt.Errorf("program: elaboration error: case-generate construct not found in its container")
			}
			if blk != nil {
				queue = append(queue, p.pending(blk, wi.owner)...)
			}

		case *ast.LoopGenerateConstruct:
			blk, err := p.elaborate.Loop(n)
			if err != nil {
				return err
			}
			if !replaceConstruct(wi.container, n, blk) {
				return fmt.Errorf("program: elaboration error: loop-generate construct not found in its container")
			}
			queue = append(queue, p.pending(blk, wi.owner)...)
		}
	}
	p.assignGenblkNames(p.root)
	return nil
}

// workItem is a pending elaboration unit: the node to elaborate, the
// container it currently lives in (for splicing the result back in), and
// the nearest enclosing module declaration (for ModuleInfo lookups during
// InlineAll).
type workItem struct {
	node      ast.Node
	container ast.ItemContainer
	owner     *ast.ModuleDeclaration
}

// pending walks container's items, queuing every unelaborated instantiation
// or generate construct and descending into everything already elaborated.
func (p *Program) pending(container ast.ItemContainer, owner *ast.ModuleDeclaration) []workItem {
	var out []workItem
	for _, it := range container.Items() {
		switch v := it.(type) {
		case *ast.ModuleInstantiation:
			if v.Elab == nil {
				out = append(out, workItem{node: v, container: container, owner: owner})
			} else {
				out = append(out, p.pending(v.Elab, v.Elab)...)
			}
		case *ast.GenerateBlock:
			out = append(out, p.pending(v, owner)...)
		case *ast.IfGenerateConstruct:
			if !v.IsElaborated() {
				out = append(out, workItem{node: v, container: container, owner: owner})
			} else if v.Result() != nil {
				out = append(out, p.pending(v.Result(), owner)...)
			}
		case *ast.CaseGenerateConstruct:
			if !v.IsElaborated() {
				out = append(out, workItem{node: v, container: container, owner: owner})
			} else if v.Result() != nil {
				out = append(out, p.pending(v.Result(), owner)...)
			}
		case *ast.LoopGenerateConstruct:
			if !v.IsElaborated() {
				out = append(out, workItem{node: v, container: container, owner: owner})
			} else {
				out = append(out, p.pending(v.Result(), owner)...)
			}
		}
	}
	return out
}

func invalidateContainer(c ast.ItemContainer) {
	if inv, ok := c.(ast.Invalidator); ok {
		inv.InvalidateScope()
	}
}

func replaceConstruct(container ast.ItemContainer, old ast.Node, new *ast.GenerateBlock) bool {
	var newNode ast.Node
	if new != nil {
		newNode = new
	} else {
		newNode = ast.NewGenerateBlock("")
	}
	switch c := container.(type) {
	case *ast.ModuleDeclaration:
		return c.ReplaceItem(old, newNode)
	case *ast.GenerateBlock:
		return c.ReplaceItem(old, newNode)
	default:
		return false
	}
}

// assignGenblkNames walks the elaborated hierarchy naming every remaining
// anonymous generate block, recursing into named/elaborated containers
// (§4.2.3).
func (p *Program) assignGenblkNames(container ast.ItemContainer) {
	p.elaborate.AssignGenblkNames(container)
	for _, it := range container.Items() {
		switch v := it.(type) {
		case *ast.GenerateBlock:
			p.assignGenblkNames(v)
		case *ast.ModuleInstantiation:
			if v.Elab != nil {
				p.assignGenblkNames(v.Elab)
			}
		}
	}
}

// instancePath builds mi's dotted hierarchical path from the program root
// down through its enclosing scope boundaries.
func instancePath(mi *ast.ModuleInstantiation) string {
	var segs []string
	var n ast.Node = mi
	for n != nil {
		if sb, ok := n.(ast.ScopeBoundary); ok {
			segs = append([]string{sb.ScopeName().Name}, segs...)
		}
		n = n.Parent()
	}
	segs = append(segs, mi.InstName)
	return strings.Join(segs, ".")
}
