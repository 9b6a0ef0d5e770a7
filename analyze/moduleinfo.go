package analyze

import "github.com/sarchlab/cascade/ast"

// ModuleInfo implements §4.2.4: the per-module classification pass. It is
// memoized on the module declaration itself (ast.ModuleInfoOf), invalidated
// by ast.ModuleDeclaration.InvalidateInfo whenever the module's items
// change.
type ModuleInfo struct {
	Resolve *Resolve
	// Decls resolves an instantiation's target name to its (possibly not
	// yet elaborated) declaration, used to read a not-yet-elaborated
	// child's port order for Connections.
	Decls func(name string) (*ast.ModuleDeclaration, bool)
}

// NewModuleInfo builds a module-info analysis over the given resolver and
// declaration table.
func NewModuleInfo(resolve *Resolve, decls func(string) (*ast.ModuleDeclaration, bool)) *ModuleInfo {
	return &ModuleInfo{Resolve: resolve, Decls: decls}
}

// Get returns md's memoized ModuleInfo, rebuilding it first if it was
// invalidated.
func (m *ModuleInfo) Get(md *ast.ModuleDeclaration) *ast.ModuleInfo {
	info := ast.ModuleInfoOf(md)
	if info.Valid() {
		return info
	}

	b := &infoBuilder{md: md, info: info, m: m, declIn: map[ast.Node]bool{}, written: map[ast.Node]bool{}, read: map[ast.Node]bool{}, ext: map[*ast.Identifier]bool{}}
	b.walkItems(md.Items())
	info.MarkComputed()
	return info
}

// infoBuilder accumulates one module's classification, deduplicating
// multi-valued sets (a variable read in ten places appears once in Reads).
type infoBuilder struct {
	md      *ast.ModuleDeclaration
	info    *ast.ModuleInfo
	m       *ModuleInfo
	declIn  map[ast.Node]bool // declarations known to live inside md
	written map[ast.Node]bool
	read    map[ast.Node]bool
	ext     map[*ast.Identifier]bool
}

func (b *infoBuilder) walkItems(items []ast.Node) {
	for _, it := range items {
		b.visit(it)
	}
}

func (b *infoBuilder) visit(n ast.Node) {
	switch v := n.(type) {
	case *ast.PortDeclaration:
		b.declIn[n] = true
		b.info.NamedPorts[v.Name.Name] = v
		b.info.OrderedPorts = append(b.info.OrderedPorts, v)
		switch v.Dir {
		case ast.DirInput:
			b.info.Inputs = append(b.info.Inputs, v)
		case ast.DirOutput:
			b.info.Outputs = append(b.info.Outputs, v)
		case ast.DirInout:
			b.info.Inputs = append(b.info.Inputs, v)
			b.info.Outputs = append(b.info.Outputs, v)
		}

	case *ast.ParamDeclaration:
		b.declIn[n] = true
		if !v.Local {
			b.info.NamedParams[v.Name.Name] = v
			b.info.OrderedParams = append(b.info.OrderedParams, v)
		}

	case *ast.VarDeclaration:
		b.declIn[n] = true
		b.info.Locals = append(b.info.Locals, v)
		if v.IsFopenInit {
			b.info.Streams = append(b.info.Streams, v)
			b.markStateful(v)
		}
		for _, id := range identifiersIn(v.Init) {
			b.noteRead(id)
		}

	case *ast.ModuleInstantiation:
		b.info.Children = append(b.info.Children, v)
		b.buildConnections(v)
		for _, assign := range v.Ports {
			for _, id := range identifiersIn(assign.Expr) {
				b.noteRead(id)
			}
		}
		for _, assign := range v.Params {
			for _, id := range identifiersIn(assign.Expr) {
				b.noteRead(id)
			}
		}

	case *ast.GenerateBlock:
		b.walkItems(v.Items())

	case *ast.Block:
		b.walkItems(v.Items())

	case *ast.ProceduralConstruct:
		for _, s := range v.Sensitivity {
			b.noteRead(s)
		}
		b.visit(v.Body)

	case *ast.IfStatement:
		for _, id := range identifiersIn(v.Cond) {
			b.noteRead(id)
		}
		b.visit(v.Then)
		if v.Else != nil {
			b.visit(v.Else)
		}

	case *ast.AssignStatement:
		for _, id := range identifiersIn(v.Rhs) {
			b.noteRead(id)
		}
		for _, id := range lhsTargets(v.Lhs) {
			b.noteWrite(id, v.Tag() == ast.TagNonblockingAssign)
		}

	case *ast.SystemTaskCall:
		for i, a := range v.Args {
			ids := identifiersIn(a)
			for _, id := range ids {
				b.noteRead(id)
			}
			if v.Task == "get" && i == 0 {
				for _, id := range ids {
					if decl := b.m.Resolve.GetResolution(id); decl != nil {
						b.markStateful(decl)
					}
				}
			}
		}
	}
}

// lhsTargets extracts the identifiers actually assigned to by an assignment
// left-hand side, unwrapping bit-select/part-select ranges and concatenated
// multi-target assignments (§4.2.4).
func lhsTargets(n ast.Node) []*ast.Identifier {
	switch v := n.(type) {
	case *ast.Identifier:
		return []*ast.Identifier{v}
	case *ast.RangeExpr:
		return lhsTargets(v.Arg)
	case *ast.ConcatExpr:
		var out []*ast.Identifier
		for _, a := range v.Args {
			out = append(out, lhsTargets(a)...)
		}
		return out
	default:
		return nil
	}
}

func (b *infoBuilder) noteRead(id *ast.Identifier) {
	decl := b.m.Resolve.GetResolution(id)
	if decl == nil {
		return
	}
	if !b.read[decl] {
		b.read[decl] = true
		b.info.Reads = append(b.info.Reads, decl)
	}
	if !b.declaredIn(decl) && !b.ext[id] {
		b.ext[id] = true
		b.info.Externals = append(b.info.Externals, id)
	}
}

func (b *infoBuilder) noteWrite(id *ast.Identifier, nonblocking bool) {
	decl := b.m.Resolve.GetResolution(id)
	if decl == nil {
		return
	}
	if !b.written[decl] {
		b.written[decl] = true
		b.info.Writes = append(b.info.Writes, decl)
	}
	if !b.declaredIn(decl) && !b.ext[id] {
		b.ext[id] = true
		b.info.Externals = append(b.info.Externals, id)
	}
	if nonblocking {
		b.markStateful(decl)
	}
}

// markStateful adds decl to Stateful exactly once, only when decl is one of
// this module's own locals/inputs/outputs. A hierarchical nonblocking write
// from a different module is recorded in neither module's Stateful set:
// the writer's pass skips it here, and the owner's pass never sees the
// writer's statements.
func (b *infoBuilder) markStateful(decl ast.Node) {
	if !b.declaredIn(decl) {
		return
	}
	for _, s := range b.info.Stateful {
		if s == decl {
			return
		}
	}
	b.info.Stateful = append(b.info.Stateful, decl)
}

func (b *infoBuilder) declaredIn(decl ast.Node) bool {
	if b.declIn[decl] {
		return true
	}
	n := decl
	for n != nil {
		if n == ast.Node(b.md) {
			b.declIn[decl] = true
			return true
		}
		n = n.Parent()
	}
	return false
}

func (b *infoBuilder) buildConnections(mi *ast.ModuleInstantiation) {
	conns := map[string]ast.Node{}
	b.info.Connections[mi] = conns

	var child *ast.ModuleDeclaration
	if mi.Elab != nil {
		child = mi.Elab
	} else if b.m.Decls != nil {
		child, _ = b.m.Decls(mi.TargetName)
	}
	if child == nil {
		return
	}
	var ports []*ast.PortDeclaration
	for _, it := range child.Items() {
		if p, ok := it.(*ast.PortDeclaration); ok {
			ports = append(ports, p)
		}
	}

	pos := 0
	for _, assign := range mi.Ports {
		if assign.Expr == nil {
			pos++
			continue
		}
		if assign.Name.Name != "" {
			conns[assign.Name.Name] = assign.Expr
			continue
		}
		if pos < len(ports) {
			conns[ports[pos].Name.Name] = assign.Expr
			pos++
		}
	}
}

// identifiersIn walks an expression subtree collecting every Identifier
// leaf, reusing the same child-enumeration Resolve.buildUseIndex relies on.
func identifiersIn(n ast.Node) []*ast.Identifier {
	var out []*ast.Identifier
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		if id, ok := n.(*ast.Identifier); ok {
			out = append(out, id)
			return
		}
		for _, c := range children(n) {
			walk(c)
		}
	}
	walk(n)
	return out
}
