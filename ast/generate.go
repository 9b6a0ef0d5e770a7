package ast

// GenerateBlock is the body installed by an elaborated generate construct
// (if/case/loop). A named block is a scope boundary; anonymous nested
// blocks receive synthesized names genblk1, genblk2, ... numbered in item
// order among the unnamed generate blocks directly inside their container
// (§4.2.3, analyze.Elaborate.AssignGenblkNames).
type GenerateBlock struct {
	base
	Name  string
	items []Node
	scope *Scope
}

// NewGenerateBlock builds a generate block, named or anonymous.
func NewGenerateBlock(name string) *GenerateBlock {
	return &GenerateBlock{base: base{tag: TagGenerateBlock}, Name: name, scope: newScope()}
}

// Items implements ItemContainer.
func (g *GenerateBlock) Items() []Node { return g.items }

// AppendItem appends an item to the block and invalidates its scope.
func (g *GenerateBlock) AppendItem(n Node) {
	g.items = append(g.items, n)
	n.SetParent(g)
	g.InvalidateScope()
}

// ScopeName names the block's scope after itself.
func (g *GenerateBlock) ScopeName() Id { return Id{Name: g.Name} }

func (g *GenerateBlock) scopeDecoration() *Scope { return g.scope }

// InvalidateScope zeroes the block's Scope generation.
func (g *GenerateBlock) InvalidateScope() { g.scope.Invalidate() }

// SetName assigns a synthesized genblkN name to a previously-anonymous
// block (§4.2.3).
func (g *GenerateBlock) SetName(name string) { g.Name = name }

// ReplaceItem swaps an elaborated nested generate construct for its
// resulting block in place, preserving item order, and invalidates the
// block's scope cache.
func (g *GenerateBlock) ReplaceItem(old, new Node) bool {
	for i, it := range g.items {
		if it == old {
			g.items[i] = new
			new.SetParent(g)
			g.InvalidateScope()
			return true
		}
	}
	return false
}

// IfGenerateConstruct conditionally installs one of two generate blocks
// based on a constant-foldable condition. The chosen block (and thus the
// elaboration result) is memoized on the construct (§4.2.3).
type IfGenerateConstruct struct {
	base
	Cond             Node
	Then, Else       *GenerateBlock // Else may be nil

	elaborated bool
	result     *GenerateBlock
}

// NewIfGenerateConstruct builds an if-generate construct.
func NewIfGenerateConstruct(cond Node, then, els *GenerateBlock) *IfGenerateConstruct {
	c := &IfGenerateConstruct{base: base{tag: TagIfGenerateConstruct}, Cond: cond, Then: then, Else: els}
	cond.SetParent(c)
	then.SetParent(c)
	if els != nil {
		els.SetParent(c)
	}
	return c
}

// IsElaborated reports whether elaborate() has already run on c.
func (c *IfGenerateConstruct) IsElaborated() bool { return c.elaborated }

// Result returns the memoized elaboration result.
func (c *IfGenerateConstruct) Result() *GenerateBlock { return c.result }

// SetResult memoizes the elaboration result.
func (c *IfGenerateConstruct) SetResult(r *GenerateBlock) {
	c.result = r
	c.elaborated = true
}

// CaseItem is one arm of a case-generate construct; Exprs == nil marks the
// default arm.
type CaseItem struct {
	Exprs []Node
	Block *GenerateBlock
}

// CaseGenerateConstruct chooses the first matching case arm, falling back
// to the default (§4.2.3).
type CaseGenerateConstruct struct {
	base
	Cond       Node
	Items      []CaseItem

	elaborated bool
	result     *GenerateBlock
}

// NewCaseGenerateConstruct builds a case-generate construct.
func NewCaseGenerateConstruct(cond Node, items []CaseItem) *CaseGenerateConstruct {
	c := &CaseGenerateConstruct{base: base{tag: TagCaseGenerateConstruct}, Cond: cond, Items: items}
	cond.SetParent(c)
	for _, it := range items {
		it.Block.SetParent(c)
	}
	return c
}

// IsElaborated reports whether elaborate() has already run on c.
func (c *CaseGenerateConstruct) IsElaborated() bool { return c.elaborated }

// Result returns the memoized elaboration result.
func (c *CaseGenerateConstruct) Result() *GenerateBlock { return c.result }

// SetResult memoizes the elaboration result.
func (c *CaseGenerateConstruct) SetResult(r *GenerateBlock) {
	c.result = r
	c.elaborated = true
}

// LoopGenerateConstruct unrolls a `for` generate loop, naming each
// iteration's block with the loop variable's value and prepending a
// localparam shadowing the loop variable (§4.2.3).
type LoopGenerateConstruct struct {
	base
	Var              Id
	Init, Cond, Step Node
	Body             *GenerateBlock // the un-elaborated loop body template
	BlockNamePrefix  string

	elaborated bool
	result     *GenerateBlock // a synthetic container holding one block per iteration
}

// NewLoopGenerateConstruct builds a loop-generate construct.
func NewLoopGenerateConstruct(v Id, init, cond, step Node, body *GenerateBlock, namePrefix string) *LoopGenerateConstruct {
	l := &LoopGenerateConstruct{base: base{tag: TagLoopGenerateConstruct}, Var: v, Init: init, Cond: cond, Step: step, Body: body, BlockNamePrefix: namePrefix}
	init.SetParent(l)
	cond.SetParent(l)
	step.SetParent(l)
	body.SetParent(l)
	return l
}

// IsElaborated reports whether elaborate() has already run on c.
func (c *LoopGenerateConstruct) IsElaborated() bool { return c.elaborated }

// Result returns the memoized elaboration result: a synthetic container
// holding one named block per iteration.
func (c *LoopGenerateConstruct) Result() *GenerateBlock { return c.result }

// SetResult memoizes the elaboration result.
func (c *LoopGenerateConstruct) SetResult(r *GenerateBlock) {
	c.result = r
	c.elaborated = true
}
