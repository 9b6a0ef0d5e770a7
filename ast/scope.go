package ast

// nameEntry holds a declaration and, if a second declaration shares the
// same name (a duplicate-detection condition the type-checker must
// reject), that second declaration too (§3, §4.2.1 find_duplicate_name).
type nameEntry struct {
	first  Node
	second Node // nil unless a same-named duplicate was seen
}

// Scope is the lazy per-scope-boundary decoration: a refresh index (how
// many of the boundary's items have been folded into the maps below), the
// declarations visible at this level by name, and nested scope boundaries
// by name (§3). A refresh index of 0 means "invalidated, must be rebuilt
// from scratch"; otherwise it is the count of items already indexed, so a
// query that appended new items only need fold in the tail.
type Scope struct {
	nextRefresh int
	nameMap     map[string]*nameEntry
	childMap    map[string]ScopeBoundary
	childByName map[string][]ScopeBoundary // ignore-subscript lookup
}

// ScopeOf returns the Scope decoration attached to a scope boundary node.
// Exported so analyze.Navigate can drive Refresh and the lookup methods
// below without the unexported scopeDecoration accessor.
func ScopeOf(sb ScopeBoundary) *Scope {
	return sb.scopeDecoration()
}

func newScope() *Scope {
	return &Scope{
		nameMap:     map[string]*nameEntry{},
		childMap:    map[string]ScopeBoundary{},
		childByName: map[string][]ScopeBoundary{},
	}
}

// Invalidate zeroes the scope's refresh index, forcing the next Navigate
// query to rebuild it from the current item list.
func (s *Scope) Invalidate() {
	if s == nil {
		return
	}
	s.nextRefresh = 0
	s.nameMap = map[string]*nameEntry{}
	s.childMap = map[string]ScopeBoundary{}
	s.childByName = map[string][]ScopeBoundary{}
}
