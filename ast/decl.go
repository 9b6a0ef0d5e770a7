package ast

// Direction is a port's declared direction.
type Direction int

const (
	DirInput Direction = iota
	DirOutput
	DirInout
)

// PortDeclaration declares one module port.
type PortDeclaration struct {
	base
	Dir   Direction
	Name  Id
	Width Node // constant-foldable expression; nil means 1 bit
}

// NewPortDeclaration builds a port declaration.
func NewPortDeclaration(dir Direction, name Id, width Node) *PortDeclaration {
	return &PortDeclaration{base: base{tag: TagPortDeclaration}, Dir: dir, Name: name, Width: width}
}

// ParamDeclaration declares a `parameter` or `localparam`.
type ParamDeclaration struct {
	base
	Local bool
	Name  Id
	Value Node

	// Downgraded marks a parameter that Program.InlineAll turned into a
	// localparam (§4.3); OutlineAll clears Local only where this is set.
	Downgraded bool
}

// NewParamDeclaration builds a parameter declaration.
func NewParamDeclaration(local bool, name Id, value Node) *ParamDeclaration {
	p := &ParamDeclaration{base: base{tag: TagParamDeclaration}, Local: local, Name: name, Value: value}
	if value != nil {
		value.SetParent(p)
	}
	return p
}

// VarKind distinguishes the declared storage class of a variable.
type VarKind int

const (
	VarReg VarKind = iota
	VarWire
	VarInteger
)

// VarDeclaration declares a reg/wire/integer variable, with an optional
// initializer. An fopen() initializer marks the variable a stream (§4.2.4).
type VarDeclaration struct {
	base
	Kind        VarKind
	Name        Id
	Width       Node
	Init        Node
	IsFopenInit bool

	// WasPort and PortDir record that Program.InlineAll downgraded a port
	// declaration into this plain variable declaration (§4.3); OutlineAll
	// reads them to restore the original PortDeclaration.
	WasPort bool
	PortDir Direction

	useSites   []Node // lazy: every expression subtree referencing this decl
	useListGen int    // 0 = not yet computed (populated globally on first query)
}

// NewVarDeclaration builds a variable declaration.
func NewVarDeclaration(kind VarKind, name Id, width, init Node, isFopen bool) *VarDeclaration {
	d := &VarDeclaration{base: base{tag: TagVarDeclaration}, Kind: kind, Name: name, Width: width, Init: init, IsFopenInit: isFopen}
	if width != nil {
		width.SetParent(d)
	}
	if init != nil {
		init.SetParent(d)
	}
	return d
}

// ModuleInfo is the lazy per-module summary computed by analyze.ModuleInfo
// (§4.2.4): classification of every declared identifier, and per-child
// connection maps.
type ModuleInfo struct {
	generation int // 0 = invalidated

	Locals, Inputs, Outputs  []Node
	Stateful, Streams        []Node
	Externals                []*Identifier
	Reads, Writes            []Node
	Children                 []*ModuleInstantiation

	// NamedParams/OrderedParams and NamedPorts/OrderedPorts summarize this
	// module's own parameter/port lists in both addressing modes.
	NamedParams   map[string]*ParamDeclaration
	OrderedParams []*ParamDeclaration
	NamedPorts    map[string]*PortDeclaration
	OrderedPorts  []*PortDeclaration

	// Connections maps each child instantiation to a map from the child's
	// port name to the expression bound to it in this module.
	Connections map[*ModuleInstantiation]map[string]Node
}

func newModuleInfo() *ModuleInfo {
	return &ModuleInfo{
		NamedParams: map[string]*ParamDeclaration{},
		NamedPorts:  map[string]*PortDeclaration{},
		Connections: map[*ModuleInstantiation]map[string]Node{},
	}
}

// Valid reports whether the ModuleInfo has been computed since the last
// invalidation.
func (mi *ModuleInfo) Valid() bool { return mi.generation != 0 }

// MarkComputed marks the ModuleInfo as freshly computed.
func (mi *ModuleInfo) MarkComputed() { mi.generation = 1 }

// ModuleInfoOf returns the ModuleInfo decoration attached to a module
// declaration, replacing it with a fresh empty record first if it was
// invalidated. Exported so analyze.ModuleInfo can rebuild it without an
// unexported accessor.
func ModuleInfoOf(md *ModuleDeclaration) *ModuleInfo {
	if !md.info.Valid() {
		md.info = newModuleInfo()
	}
	return md.info
}

// ModuleDeclaration is a module declaration: the root scope boundary. It
// carries a lazy Scope and a lazy ModuleInfo (§3).
type ModuleDeclaration struct {
	base
	Name  string
	items []Node

	Std string // the __std annotation (clock, gpio, led, pad, reset, logic, custom)
	Loc string // the __loc annotation (local, remote, runtime)

	scope *Scope
	info  *ModuleInfo

	elaborated   bool // memoized: true once this decl is the result of an elaborate() call
	elaboratedAt Node // the ModuleInstantiation (or generate construct) this was produced from
}

// NewModuleDeclaration builds an (initially empty) module declaration.
func NewModuleDeclaration(name string) *ModuleDeclaration {
	m := &ModuleDeclaration{base: base{tag: TagModuleDeclaration}, Name: name}
	m.scope = newScope()
	m.info = newModuleInfo()
	return m
}

// Items implements ItemContainer.
func (m *ModuleDeclaration) Items() []Node { return m.items }

// AppendItem appends a module item and invalidates this module's scope and
// module-info caches, per the "callers that mutate the AST must invalidate"
// rule in §4.2.
func (m *ModuleDeclaration) AppendItem(n Node) {
	m.items = append(m.items, n)
	n.SetParent(m)
	m.InvalidateScope()
	m.InvalidateInfo()
}

// ReplaceItem swaps an elaborated generate construct for its resulting
// block in place (Program's elaboration worklist "registers the result"
// step, §4.3), preserving item order, and invalidates the module's caches.
func (m *ModuleDeclaration) ReplaceItem(old, new Node) bool {
	for i, it := range m.items {
		if it == old {
			m.items[i] = new
			new.SetParent(m)
			m.InvalidateScope()
			m.InvalidateInfo()
			return true
		}
	}
	return false
}

// ScopeName returns the module's own name as an Id (a module declaration's
// scope is named after the module itself).
func (m *ModuleDeclaration) ScopeName() Id { return Id{Name: m.Name} }

func (m *ModuleDeclaration) scopeDecoration() *Scope { return m.scope }

// InvalidateScope zeroes the module's Scope generation.
func (m *ModuleDeclaration) InvalidateScope() { m.scope.Invalidate() }

// InvalidateInfo zeroes the module's ModuleInfo generation.
func (m *ModuleDeclaration) InvalidateInfo() { m.info.generation = 0 }

// Truncate drops every item past n, used to roll back a failed eval
// transaction (§4.3) to the checkpoint taken before the fragment was
// appended.
func (m *ModuleDeclaration) Truncate(n int) {
	m.items = m.items[:n]
	m.InvalidateScope()
	m.InvalidateInfo()
}

// Clone performs a structural copy suitable for elaboration's
// per-instance module clone (deep-copies Items but shares no decoration
// state with the original declaration).
func (m *ModuleDeclaration) Clone() *ModuleDeclaration {
	c := NewModuleDeclaration(m.Name)
	c.Std = m.Std
	c.Loc = m.Loc
	c.items = make([]Node, 0, len(m.items))
	for _, it := range m.items {
		cl := CloneNode(it)
		cl.SetParent(c)
		c.items = append(c.items, cl)
	}
	return c
}
