package ast

// ArgAssign binds one port or parameter of a module instantiation: either
// `.Name(Expr)` (named) or a positional slot (Name == ""). A zero-value
// Expr with Name == "" marks a skipped positional slot (§4.2.4).
type ArgAssign struct {
	base
	Name Id
	Expr Node
}

// NewArgAssign builds a port/parameter binding.
func NewArgAssign(name Id, expr Node) *ArgAssign {
	a := &ArgAssign{base: base{tag: TagArgAssign}, Name: name, Expr: expr}
	if expr != nil {
		expr.SetParent(a)
	}
	return a
}

// ModuleInstantiation instantiates Target (by name) under InstName,
// binding Params and Ports either by name or position.
type ModuleInstantiation struct {
	base
	TargetName string
	InstName   string
	Params     []*ArgAssign
	Ports      []*ArgAssign

	// Elab is the elaborated module declaration this instantiation
	// produced, memoized the first time elaborate() succeeds (§4.2.3).
	Elab       *ModuleDeclaration
	elaborated bool

	// Inlined marks an instantiation that Program.InlineAll has made
	// transparent: the instantiation stays in place (no if-generate wrapper
	// is built) and scope refresh binds Elab's items directly into the
	// caller's scope (§4.3).
	Inlined bool

	// InlineAssignCount is how many trailing continuous-assign connection
	// statements InlineAll appended to Elab's item list, so OutlineAll can
	// truncate exactly that many back off on reversal.
	InlineAssignCount int
}

// NewModuleInstantiation builds a module instantiation.
func NewModuleInstantiation(target, inst string, params, ports []*ArgAssign) *ModuleInstantiation {
	m := &ModuleInstantiation{base: base{tag: TagModuleInstantiation}, TargetName: target, InstName: inst, Params: params, Ports: ports}
	for _, p := range params {
		p.SetParent(m)
	}
	for _, p := range ports {
		p.SetParent(m)
	}
	return m
}
