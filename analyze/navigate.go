// Package analyze implements the four cooperating analyses that maintain
// scope, name resolution, elaboration, and module-info caches over
// Cascade's AST (§4.2). Every analysis follows one caching rule: refresh
// lazily on query, invalidate by zeroing the refresh index.
package analyze

import "github.com/sarchlab/cascade/ast"

// Navigate positions a cursor at the nearest enclosing scope boundary and
// lets callers walk the scope hierarchy (§4.2.1).
type Navigate struct {
	cursor ast.ScopeBoundary
}

// NewNavigate attaches a cursor to the nearest enclosing scope boundary of
// node. Special case: if node is the Name side of an explicit ArgAssign
// inside a ModuleInstantiation that has already been elaborated, the
// cursor attaches to the elaborated callee's declaration scope instead of
// the caller's scope (§4.2.1).
func NewNavigate(node ast.Node) *Navigate {
	return &Navigate{cursor: boundaryOf(node)}
}

func boundaryOf(n ast.Node) ast.ScopeBoundary {
	start := n
	for n != nil {
		// Only the ArgAssign itself (its Name side) attaches to the callee;
		// nodes inside its Expr are caller-side and keep walking up.
		if aa, ok := n.(*ast.ArgAssign); ok && n == start && aa.Name.Name != "" {
			if mi, ok2 := aa.Parent().(*ast.ModuleInstantiation); ok2 && mi.Elab != nil {
				return mi.Elab
			}
		}
		if sb, ok := n.(ast.ScopeBoundary); ok && isBoundary(sb) {
			return sb
		}
		n = n.Parent()
	}
	return nil
}

func isBoundary(sb ast.ScopeBoundary) bool {
	if blk, ok := sb.(*ast.Block); ok {
		return blk.IsScopeBoundary()
	}
	return true
}

// Cursor returns the scope boundary the navigator currently sits at, or
// nil if node had no enclosing boundary.
func (nv *Navigate) Cursor() ast.ScopeBoundary { return nv.cursor }

// Up moves the cursor to the next enclosing boundary, or clears it if
// already at the root.
func (nv *Navigate) Up() *Navigate {
	if nv.cursor == nil {
		return nv
	}
	nv.cursor = boundaryOf(nv.cursor.Parent())
	return nv
}

// Down descends into a named child scope, if one exists directly inside
// the current boundary.
func (nv *Navigate) Down(id ast.Id) bool {
	if nv.cursor == nil {
		return false
	}
	ast.Refresh(nv.cursor)
	child, ok := ast.ScopeOf(nv.cursor).ChildByID(id)
	if !ok {
		return false
	}
	nv.cursor = child
	return true
}

// FindName performs a one-level name lookup in the current scope.
func (nv *Navigate) FindName(id ast.Id) ast.Node {
	if nv.cursor == nil {
		return nil
	}
	ast.Refresh(nv.cursor)
	return ast.ScopeOf(nv.cursor).LookupName(id)
}

// FindDuplicateName returns a different declaration sharing id's name, if
// the scope recorded one (used for duplicate-detection).
func (nv *Navigate) FindDuplicateName(id ast.Id) ast.Node {
	if nv.cursor == nil {
		return nil
	}
	ast.Refresh(nv.cursor)
	return ast.ScopeOf(nv.cursor).LookupDuplicate(id)
}

// FindChild performs a nested-scope lookup by name.
func (nv *Navigate) FindChild(id ast.Id) ast.ScopeBoundary {
	if nv.cursor == nil {
		return nil
	}
	ast.Refresh(nv.cursor)
	child, _ := ast.ScopeOf(nv.cursor).ChildByID(id)
	return child
}

// FindChildIgnoreSubscript performs a nested-scope lookup comparing only
// the string component of the name.
func (nv *Navigate) FindChildIgnoreSubscript(name string) []ast.ScopeBoundary {
	if nv.cursor == nil {
		return nil
	}
	ast.Refresh(nv.cursor)
	return ast.ScopeOf(nv.cursor).ChildrenByName(name)
}

// Names returns every name bound directly in the current scope.
func (nv *Navigate) Names() []string {
	if nv.cursor == nil {
		return nil
	}
	ast.Refresh(nv.cursor)
	return ast.ScopeOf(nv.cursor).Names()
}

// Children returns every nested scope boundary bound directly in the
// current scope.
func (nv *Navigate) Children() []ast.ScopeBoundary {
	if nv.cursor == nil {
		return nil
	}
	ast.Refresh(nv.cursor)
	return ast.ScopeOf(nv.cursor).Children()
}
