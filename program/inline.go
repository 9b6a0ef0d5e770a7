package program

import "github.com/sarchlab/cascade/ast"

// InlineAll recursively visits the elaborated hierarchy and inlines every
// instantiation whose target is annotated __std="logic": the child's ports
// are downgraded to plain variables (tagged with their original
// direction), its parameters downgraded to localparams, continuous-assign
// connections are appended wiring caller-side expressions to callee-side
// names, and the instantiation is marked transparent so Navigate/Refresh
// flattens its scope directly into the caller's (§4.3, ast.bindItem).
func (p *Program) InlineAll() {
	p.walkInstantiations(p.root, p.root, p.inlineOne)
}

// OutlineAll reverses every inlining InlineAll performed: ports and
// parameters are restored, the appended connection assigns are dropped,
// and the instantiation is marked opaque again.
func (p *Program) OutlineAll() {
	p.walkInstantiations(p.root, p.root, p.outlineOne)
}

// walkInstantiations applies fn to every ModuleInstantiation reachable
// from container, tracking the nearest enclosing module declaration
// (needed for ModuleInfo.Connections lookups) and descending into both
// generate blocks and elaborated callees.
func (p *Program) walkInstantiations(container ast.ItemContainer, owner *ast.ModuleDeclaration, fn func(owner *ast.ModuleDeclaration, mi *ast.ModuleInstantiation)) {
	for _, it := range container.Items() {
		switch v := it.(type) {
		case *ast.ModuleInstantiation:
			if v.Elab == nil {
				continue
			}
			fn(owner, v)
			p.walkInstantiations(v.Elab, v.Elab, fn)
		case *ast.GenerateBlock:
			p.walkInstantiations(v, owner, fn)
		}
	}
}

func (p *Program) inlineOne(owner *ast.ModuleDeclaration, mi *ast.ModuleInstantiation) {
	callee := mi.Elab
	if mi.Inlined || callee.Std != "logic" {
		return
	}

	conns := p.moduleInfo.Get(owner).Connections[mi]

	var ports []*ast.PortDeclaration
	for _, it := range callee.Items() {
		switch v := it.(type) {
		case *ast.PortDeclaration:
			ports = append(ports, v)
			vd := ast.NewVarDeclaration(ast.VarWire, v.Name, v.Width, nil, false)
			vd.WasPort = true
			vd.PortDir = v.Dir
			callee.ReplaceItem(v, vd)
		case *ast.ParamDeclaration:
			if !v.Local {
				v.Local = true
				v.Downgraded = true
			}
		}
	}

	base := len(callee.Items())
	for _, pd := range ports {
		expr, ok := conns[pd.Name.Name]
		if !ok {
			continue
		}
		ref := ast.NewIdentifier(ast.Id{Name: pd.Name.Name})
		if pd.Dir == ast.DirOutput {
			callee.AppendItem(ast.NewBlockingAssign(ast.CloneNode(expr), ref))
		} else {
			callee.AppendItem(ast.NewBlockingAssign(ref, ast.CloneNode(expr)))
		}
	}
	mi.InlineAssignCount = len(callee.Items()) - base
	mi.Inlined = true

	// mi no longer occupies a name of its own once flattened; the caller's
	// own scope must be rebuilt to fold callee's items in directly.
	invalidateOwner(owner)
}

func (p *Program) outlineOne(owner *ast.ModuleDeclaration, mi *ast.ModuleInstantiation) {
	if !mi.Inlined {
		return
	}
	callee := mi.Elab

	if mi.InlineAssignCount > 0 {
		callee.Truncate(len(callee.Items()) - mi.InlineAssignCount)
	}
	mi.InlineAssignCount = 0

	for _, it := range callee.Items() {
		switch v := it.(type) {
		case *ast.VarDeclaration:
			if v.WasPort {
				pd := ast.NewPortDeclaration(v.PortDir, v.Name, v.Width)
				callee.ReplaceItem(v, pd)
			}
		case *ast.ParamDeclaration:
			if v.Downgraded {
				v.Local = false
				v.Downgraded = false
			}
		}
	}

	mi.Inlined = false
	invalidateOwner(owner)
}

func invalidateOwner(owner *ast.ModuleDeclaration) {
	owner.InvalidateScope()
	owner.InvalidateInfo()
}
