package ast

// Refresh folds any items appended since the scope's last refresh into its
// name and child maps (§4.2.1, §4.2 caching discipline). It is exported so
// analyze.Navigate (and analyze.Resolve, which walks scopes transitively)
// can trigger the lazy rebuild without reaching into Scope's internals.
func Refresh(sb ScopeBoundary) {
	scope := sb.scopeDecoration()
	items := sb.Items()
	for i := scope.nextRefresh; i < len(items); i++ {
		bindItem(scope, items[i])
	}
	scope.nextRefresh = len(items)
}

func bindItem(scope *Scope, item Node) {
	switch n := item.(type) {
	case *VarDeclaration:
		bindName(scope, n.Name, n)
	case *ParamDeclaration:
		bindName(scope, n.Name, n)
	case *PortDeclaration:
		bindName(scope, n.Name, n)
	case *ModuleInstantiation:
		bindName(scope, Id{Name: n.InstName}, n)
		if n.Inlined && n.Elab != nil {
			// Inlined instantiations are transparent: the callee's items
			// appear directly in the caller's scope (§4.2.1).
			for _, sub := range n.Elab.Items() {
				bindItem(scope, sub)
			}
			return
		}
		if n.Elab != nil {
			bindChild(scope, Id{Name: n.InstName}, n.Elab)
		}
	case *GenerateBlock:
		if n.Name != "" {
			bindChild(scope, Id{Name: n.Name}, n)
		} else {
			for _, sub := range n.Items() {
				bindItem(scope, sub)
			}
		}
	case *Block:
		if n.IsScopeBoundary() {
			bindChild(scope, Id{Name: n.Name}, n)
		} else {
			for _, sub := range n.Items() {
				bindItem(scope, sub)
			}
		}
	}
}

func bindName(scope *Scope, id Id, decl Node) {
	key := id.HashKey()
	if e, ok := scope.nameMap[key]; ok {
		if e.second == nil {
			e.second = decl
		}
		return
	}
	scope.nameMap[key] = &nameEntry{first: decl}
}

func bindChild(scope *Scope, id Id, child ScopeBoundary) {
	key := id.HashKey()
	scope.childMap[key] = child
	scope.childByName[id.Name] = append(scope.childByName[id.Name], child)
}

// LookupName returns the first declaration bound to id in scope, or nil.
func (s *Scope) LookupName(id Id) Node {
	e, ok := s.nameMap[id.HashKey()]
	if !ok {
		return nil
	}
	return e.first
}

// LookupDuplicate returns the second declaration sharing id's name, or
// nil.
func (s *Scope) LookupDuplicate(id Id) Node {
	e, ok := s.nameMap[id.HashKey()]
	if !ok {
		return nil
	}
	return e.second
}

// ChildByID returns the nested scope bound to id, if any.
func (s *Scope) ChildByID(id Id) (ScopeBoundary, bool) {
	c, ok := s.childMap[id.HashKey()]
	return c, ok
}

// ChildrenByName returns every nested scope bound under name, ignoring
// subscript.
func (s *Scope) ChildrenByName(name string) []ScopeBoundary {
	return s.childByName[name]
}

// Names returns every name bound directly in the scope.
func (s *Scope) Names() []string {
	out := make([]string, 0, len(s.nameMap))
	for k := range s.nameMap {
		out = append(out, k)
	}
	return out
}

// Children returns every nested scope bound directly in the scope.
func (s *Scope) Children() []ScopeBoundary {
	out := make([]ScopeBoundary, 0, len(s.childMap))
	for _, c := range s.childMap {
		out = append(out, c)
	}
	return out
}
