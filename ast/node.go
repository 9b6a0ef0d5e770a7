// Package ast defines Cascade's typed AST node variants and the mutable
// per-node decorations (scope, resolution, module-info, elaboration caches)
// the analyses attach to them (§3).
package ast

// Tag identifies a node's variant. The set is closed: expressions,
// statements, declarations, module items, generate constructs,
// instantiations, and port/arg-assigns.
type Tag int

const (
	TagUnknown Tag = iota

	// Expressions.
	TagIdentifier
	TagConstExpr
	TagUnaryExpr
	TagBinaryExpr
	TagConcatExpr
	TagRangeExpr

	// Statements.
	TagBlockingAssign
	TagNonblockingAssign
	TagIfStatement
	TagSeqBlock
	TagParBlock
	TagSystemTaskCall
	TagInitialConstruct
	TagAlwaysConstruct

	// Declarations.
	TagModuleDeclaration
	TagPortDeclaration
	TagParamDeclaration
	TagVarDeclaration

	// Generate constructs.
	TagGenerateBlock
	TagIfGenerateConstruct
	TagCaseGenerateConstruct
	TagLoopGenerateConstruct

	// Instantiation.
	TagModuleInstantiation
	TagArgAssign
)

func (t Tag) String() string {
	names := [...]string{
		"Unknown", "Identifier", "ConstExpr", "UnaryExpr", "BinaryExpr",
		"ConcatExpr", "RangeExpr", "BlockingAssign", "NonblockingAssign",
		"IfStatement", "SeqBlock", "ParBlock", "SystemTaskCall",
		"InitialConstruct", "AlwaysConstruct", "ModuleDeclaration",
		"PortDeclaration", "ParamDeclaration", "VarDeclaration",
		"GenerateBlock", "IfGenerateConstruct", "CaseGenerateConstruct",
		"LoopGenerateConstruct", "ModuleInstantiation", "ArgAssign",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "?"
}

// Node is implemented by every AST variant. Parent is a plain pointer
// (not an arena handle) because Go's GC makes an owning-arena unnecessary;
// see DESIGN.md for why this departs from the systems-language sketch in
// spec.md §9.
type Node interface {
	Tag() Tag
	Parent() Node
	SetParent(Node)
}

// base is embedded by every concrete node and implements the Node
// bookkeeping common to all of them.
type base struct {
	tag    Tag
	parent Node
}

func (b *base) Tag() Tag         { return b.tag }
func (b *base) Parent() Node     { return b.parent }
func (b *base) SetParent(p Node) { b.parent = p }

// ItemContainer is implemented by nodes that hold an ordered list of
// module items: ModuleDeclaration, GenerateBlock and Block. Navigate and
// ModuleInfo walk this list; Program appends to it during elaboration.
type ItemContainer interface {
	Node
	Items() []Node
	AppendItem(Node)
}

// ScopeBoundary is implemented by nodes that begin a new name scope:
// module declarations and named generate/seq/par blocks (§4.2.1).
type ScopeBoundary interface {
	ItemContainer
	ScopeName() Id
	scopeDecoration() *Scope
}

// Invalidator is implemented by containers whose Scope cache needs
// explicit invalidation after a caller mutates their item list out of
// band (Program's elaboration worklist splicing in an elaborated result).
type Invalidator interface {
	InvalidateScope()
}
