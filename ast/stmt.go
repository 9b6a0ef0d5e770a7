package ast

// AssignStatement is either a blocking (`=`) or nonblocking (`<=`)
// assignment. Nonblocking assignment targets make their target variable
// stateful (§4.2.4).
type AssignStatement struct {
	base
	Lhs, Rhs Node
}

// NewBlockingAssign builds a blocking-assignment statement.
func NewBlockingAssign(lhs, rhs Node) *AssignStatement {
	a := &AssignStatement{base: base{tag: TagBlockingAssign}, Lhs: lhs, Rhs: rhs}
	lhs.SetParent(a)
	rhs.SetParent(a)
	return a
}

// NewNonblockingAssign builds a nonblocking-assignment statement.
func NewNonblockingAssign(lhs, rhs Node) *AssignStatement {
	a := &AssignStatement{base: base{tag: TagNonblockingAssign}, Lhs: lhs, Rhs: rhs}
	lhs.SetParent(a)
	rhs.SetParent(a)
	return a
}

// IfStatement is a procedural `if (cond) then else else`.
type IfStatement struct {
	base
	Cond, Then, Else Node // Else may be nil
}

// NewIfStatement builds an if-statement.
func NewIfStatement(cond, then, els Node) *IfStatement {
	s := &IfStatement{base: base{tag: TagIfStatement}, Cond: cond, Then: then, Else: els}
	cond.SetParent(s)
	if then != nil {
		then.SetParent(s)
	}
	if els != nil {
		els.SetParent(s)
	}
	return s
}

// Block is a named or unnamed seq (`begin...end`) or par
// (`fork...join`) block; a named block is a scope boundary (§4.2.1).
type Block struct {
	base
	Name     string // "" for unnamed
	Par      bool   // true for fork/join, false for begin/end
	items    []Node
	scope    *Scope
}

// NewBlock builds a block statement.
func NewBlock(name string, par bool) *Block {
	tag := TagSeqBlock
	if par {
		tag = TagParBlock
	}
	return &Block{base: base{tag: tag}, Name: name, Par: par, scope: newScope()}
}

// Items implements ItemContainer.
func (b *Block) Items() []Node { return b.items }

// AppendItem appends a statement and invalidates the block's scope cache
// (every block, named or not, carries one).
func (b *Block) AppendItem(n Node) {
	b.items = append(b.items, n)
	n.SetParent(b)
	b.InvalidateScope()
}

// ScopeName names the block's scope after itself.
func (b *Block) ScopeName() Id { return Id{Name: b.Name} }

func (b *Block) scopeDecoration() *Scope { return b.scope }

// InvalidateScope zeroes the block's Scope generation.
func (b *Block) InvalidateScope() { b.scope.Invalidate() }

// IsScopeBoundary reports whether a block is named (and thus a scope
// boundary) per §4.2.1.
func (b *Block) IsScopeBoundary() bool { return b.Name != "" }

// SystemTaskCall is a call to a builtin system task ($display, $write,
// $finish, $error, $warning, $info, $get, $fopen, $restart, $retarget,
// $save, ...).
type SystemTaskCall struct {
	base
	Task string
	Args []Node
}

// NewSystemTaskCall builds a system-task-call statement.
func NewSystemTaskCall(task string, args ...Node) *SystemTaskCall {
	s := &SystemTaskCall{base: base{tag: TagSystemTaskCall}, Task: task, Args: args}
	for _, a := range args {
		a.SetParent(s)
	}
	return s
}

// ProceduralConstruct is an `initial` or `always` block wrapping a
// statement; `always @(posedge clk)`-style event controls are recorded as
// a sensitivity identifier list (delay controls other than zero are
// parsed but not honored, per spec.md's Non-goals).
type ProceduralConstruct struct {
	base
	Always       bool
	Sensitivity  []*Identifier
	PosedgeOnly  []bool
	Body         Node
}

// NewInitialConstruct builds an `initial` block.
func NewInitialConstruct(body Node) *ProceduralConstruct {
	p := &ProceduralConstruct{base: base{tag: TagInitialConstruct}, Body: body}
	body.SetParent(p)
	return p
}

// NewAlwaysConstruct builds an `always` block with the given sensitivity
// list.
func NewAlwaysConstruct(body Node, sens []*Identifier, posedge []bool) *ProceduralConstruct {
	p := &ProceduralConstruct{base: base{tag: TagAlwaysConstruct}, Always: true, Body: body, Sensitivity: sens, PosedgeOnly: posedge}
	body.SetParent(p)
	for _, s := range sens {
		s.SetParent(p)
	}
	return p
}
