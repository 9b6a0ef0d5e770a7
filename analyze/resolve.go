package analyze

import "github.com/sarchlab/cascade/ast"

// Resolve implements Cascade's name resolution (§4.2.2): the standard
// Verilog upward-then-downward rule, memoized resolution pointers, and a
// global (lazily built) use-site index.
//
// The use-site index spans the whole elaborated hierarchy, so Resolve is
// constructed with a callback that enumerates every root module
// declaration currently known to the program; Program.Eval calls
// Invalidate whenever elaboration changes the scope structure (§4.2.2:
// "invalidated whenever any scope changes").
type Resolve struct {
	Roots func() []*ast.ModuleDeclaration

	usesBuilt bool
	uses      map[ast.Node][]ast.Node // declaration -> referencing expr subtrees
}

// NewResolve builds a resolver over the given root enumerator.
func NewResolve(roots func() []*ast.ModuleDeclaration) *Resolve {
	return &Resolve{Roots: roots}
}

// Invalidate discards the memoized use-site index; it is rebuilt lazily on
// the next UseSites query. Individual identifiers' memoized resolution
// pointers are not touched, here or by InvalidateScope: GetResolution keeps
// returning an identifier's memoized pointer until InvalidateResolution is
// called on that identifier.
func (r *Resolve) Invalidate() {
	r.usesBuilt = false
	r.uses = nil
}

// GetResolution resolves id to the declaration it refers to, memoizing the
// result on id itself. Arity 1 walks up scope boundaries until a matching
// name is found; arity > 1 walks up until the first segment matches a
// child scope, then walks down along the remaining segments.
func (r *Resolve) GetResolution(id *ast.Identifier) ast.Node {
	if id.Resolved() {
		return id.ResolvedDecl()
	}
	decl := r.resolve(id)
	if decl != nil {
		id.SetResolved(decl)
	}
	return decl
}

func (r *Resolve) resolve(id *ast.Identifier) ast.Node {
	if len(id.Ids) == 0 {
		return nil
	}
	if len(id.Ids) == 1 {
		nv := NewNavigate(id)
		for nv.Cursor() != nil {
			if d := nv.FindName(id.Ids[0]); d != nil {
				return d
			}
			nv.Up()
		}
		return nil
	}

	nv := NewNavigate(id)
	for nv.Cursor() != nil {
		if nv.FindChild(id.Ids[0]) != nil {
			break
		}
		if d := nv.FindName(id.Ids[0]); d != nil && len(id.Ids) == 1 {
			return d
		}
		nv.Up()
	}
	if nv.Cursor() == nil {
		return nil
	}
	if !nv.Down(id.Ids[0]) {
		return nil
	}
	for _, seg := range id.Ids[1 : len(id.Ids)-1] {
		if !nv.Down(seg) {
			return nil
		}
	}
	last := id.Ids[len(id.Ids)-1]
	if d := nv.FindName(last); d != nil {
		return d
	}
	if c := nv.FindChild(last); c != nil {
		if md, ok := c.(*ast.ModuleDeclaration); ok {
			return md
		}
	}
	return nil
}

// GetFullID returns a fresh identifier whose segments are the scope names
// from the program root down to the resolved declaration.
func (r *Resolve) GetFullID(id *ast.Identifier) ast.QualifiedId {
	decl := r.GetResolution(id)
	if decl == nil {
		return nil
	}
	var segs []ast.Id
	n := ast.Node(decl)
	for n != nil {
		if sb, ok := n.(ast.ScopeBoundary); ok {
			segs = append([]ast.Id{sb.ScopeName()}, segs...)
		}
		n = n.Parent()
	}
	return segs
}

// IsSlice reports whether id subscripts more dimensions than its resolved
// declaration has. This implementation's AST subset does not model
// multi-dimensional array declarations, so every declaration has exactly
// zero extra dimensions: IsSlice is true iff id carries any subscript at
// all on its final segment.
func (r *Resolve) IsSlice(id *ast.Identifier) bool {
	if len(id.Ids) == 0 {
		return false
	}
	return id.Ids[len(id.Ids)-1].Subscript != nil
}

// UseSites returns every expression subtree anywhere in the program that
// contains a resolved reference to decl. The backing index is built once,
// globally, on the first call after construction or Invalidate.
func (r *Resolve) UseSites(decl ast.Node) []ast.Node {
	if !r.usesBuilt {
		r.buildUseIndex()
	}
	return r.uses[decl]
}

func (r *Resolve) buildUseIndex() {
	r.uses = map[ast.Node][]ast.Node{}
	r.usesBuilt = true
	if r.Roots == nil {
		return
	}
	for _, root := range r.Roots() {
		r.walkForUses(root)
	}
}

// walkForUses recursively visits every node reachable from n, recording
// each resolved Identifier node itself as a use site of its declaration.
func (r *Resolve) walkForUses(n ast.Node) {
	if n == nil {
		return
	}
	if id, ok := n.(*ast.Identifier); ok {
		if decl := r.GetResolution(id); decl != nil {
			r.uses[decl] = append(r.uses[decl], id)
		}
	}
	for _, child := range children(n) {
		r.walkForUses(child)
	}
}

// children enumerates every direct AST child of n across the variant set
// relevant to elaborated modules; it is the one place that must be kept in
// sync with new node kinds.
func children(n ast.Node) []ast.Node {
	switch v := n.(type) {
	case ast.ItemContainer:
		return v.Items()
	case *ast.UnaryExpr:
		return []ast.Node{v.Arg}
	case *ast.BinaryExpr:
		return []ast.Node{v.Lhs, v.Rhs}
	case *ast.ConcatExpr:
		return v.Args
	case *ast.RangeExpr:
		return []ast.Node{v.Arg, v.Msb, v.Lsb}
	case *ast.AssignStatement:
		return []ast.Node{v.Lhs, v.Rhs}
	case *ast.IfStatement:
		out := []ast.Node{v.Cond, v.Then}
		if v.Else != nil {
			out = append(out, v.Else)
		}
		return out
	case *ast.SystemTaskCall:
		return v.Args
	case *ast.ProceduralConstruct:
		out := []ast.Node{v.Body}
		for _, s := range v.Sensitivity {
			out = append(out, s)
		}
		return out
	case *ast.ModuleInstantiation:
		out := make([]ast.Node, 0, len(v.Params)+len(v.Ports))
		for _, p := range v.Params {
			out = append(out, p)
		}
		for _, p := range v.Ports {
			out = append(out, p)
		}
		return out
	case *ast.ArgAssign:
		if v.Expr == nil {
			return nil
		}
		return []ast.Node{v.Expr}
	case *ast.VarDeclaration:
		var out []ast.Node
		if v.Width != nil {
			out = append(out, v.Width)
		}
		if v.Init != nil {
			out = append(out, v.Init)
		}
		return out
	case *ast.ParamDeclaration:
		if v.Value != nil {
			return []ast.Node{v.Value}
		}
	case *ast.IfGenerateConstruct:
		out := []ast.Node{v.Cond, v.Then}
		if v.Else != nil {
			out = append(out, v.Else)
		}
		return out
	case *ast.CaseGenerateConstruct:
		out := []ast.Node{v.Cond}
		for _, it := range v.Items {
			out = append(out, it.Block)
		}
		return out
	case *ast.LoopGenerateConstruct:
		return []ast.Node{v.Init, v.Cond, v.Step, v.Body}
	}
	return nil
}
