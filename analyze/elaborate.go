package analyze

import (
	"fmt"

	"github.com/sarchlab/cascade/ast"
)

// Elaborate implements §4.2.3: expansion of generate constructs and module
// instantiations. Every elaboration function memoizes its result on the
// construct node (IsElaborated queries the memo), so calling elaborate
// twice on the same construct is idempotent (§8 invariant 4).
type Elaborate struct {
	Resolve *Resolve
	// Decls looks up a declared (not yet elaborated) module by name.
	Decls func(name string) (*ast.ModuleDeclaration, bool)

	genblkCounters map[ast.ItemContainer]int
}

// NewElaborate builds an elaborator over the given declaration table and
// resolver.
func NewElaborate(decls func(string) (*ast.ModuleDeclaration, bool), resolve *Resolve) *Elaborate {
	return &Elaborate{Resolve: resolve, Decls: decls, genblkCounters: map[ast.ItemContainer]int{}}
}

// Instantiation clones mi's target declaration and substitutes parameter
// values, named or positional (§4.2.3).
func (e *Elaborate) Instantiation(mi *ast.ModuleInstantiation) (*ast.ModuleDeclaration, error) {
	if mi.Elab != nil {
		return mi.Elab, nil
	}
	target, ok := e.Decls(mi.TargetName)
	if !ok {
		return nil, fmt.Errorf("analyze: elaboration error: undeclared module %q", mi.TargetName)
	}
	clone := target.Clone()

	var ordered []*ast.ParamDeclaration
	for _, it := range clone.Items() {
		if p, ok := it.(*ast.ParamDeclaration); ok && !p.Local {
			ordered = append(ordered, p)
		}
	}
	named := map[string]*ast.ParamDeclaration{}
	for _, p := range ordered {
		named[p.Name.Name] = p
	}

	pos := 0
	for _, assign := range mi.Params {
		if assign.Expr == nil {
			pos++
			continue
		}
		val, err := EvalConst(e.Resolve, assign.Expr)
		if err != nil {
			return nil, fmt.Errorf("analyze: elaboration error: parameter %q: %w", assign.Name.Name, err)
		}
		var target *ast.ParamDeclaration
		if assign.Name.Name != "" {
			target = named[assign.Name.Name]
		} else if pos < len(ordered) {
			target = ordered[pos]
			pos++
		}
		if target == nil {
			return nil, fmt.Errorf("analyze: elaboration error: arity mismatch binding parameter %q", assign.Name.Name)
		}
		target.Value = ast.NewConstExpr(val)
	}

	mi.Elab = clone
	return clone, nil
}

// If evaluates an if-generate construct's condition and installs the
// matching clause's block.
func (e *Elaborate) If(c *ast.IfGenerateConstruct) (*ast.GenerateBlock, error) {
	if c.IsElaborated() {
		return c.Result(), nil
	}
	val, err := EvalConst(e.Resolve, c.Cond)
	if err != nil {
		return nil, fmt.Errorf("analyze: elaboration error: %w", err)
	}
	var result *ast.GenerateBlock
	if val.ToBool() {
		result = c.Then
	} else {
		result = c.Else
	}
	c.SetResult(result)
	return result, nil
}

// Case chooses the first matching case arm, falling back to the default.
func (e *Elaborate) Case(c *ast.CaseGenerateConstruct) (*ast.GenerateBlock, error) {
	if c.IsElaborated() {
		return c.Result(), nil
	}
	cond, err := EvalConst(e.Resolve, c.Cond)
	if err != nil {
		return nil, fmt.Errorf("analyze: elaboration error: %w", err)
	}
	var result *ast.GenerateBlock
	for _, item := range c.Items {
		if item.Exprs == nil {
			if result == nil {
				result = item.Block
			}
			continue
		}
		for _, expr := range item.Exprs {
			v, err := EvalConst(e.Resolve, expr)
			if err != nil {
				return nil, fmt.Errorf("analyze: elaboration error: %w", err)
			}
			if v.Equal(cond) {
				c.SetResult(item.Block)
				return item.Block, nil
			}
		}
	}
	c.SetResult(result)
	return result, nil
}

// Loop unrolls a for-generate loop, naming each iteration's block with the
// loop variable's value and prepending a localparam shadowing the loop
// variable.
func (e *Elaborate) Loop(c *ast.LoopGenerateConstruct) (*ast.GenerateBlock, error) {
	if c.IsElaborated() {
		return c.Result(), nil
	}

	container := ast.NewGenerateBlock("")
	initVal, err := EvalConst(e.Resolve, c.Init)
	if err != nil {
		return nil, fmt.Errorf("analyze: elaboration error: %w", err)
	}
	iterVar := ast.NewParamDeclaration(true, c.Var, ast.NewConstExpr(initVal))

	guard := func() (bool, error) {
		v, err := EvalConst(e.Resolve, c.Cond)
		if err != nil {
			return false, err
		}
		return v.ToBool(), nil
	}

	// The loop-variable declaration must be visible while evaluating Cond
	// and Step between iterations, so it is installed in a scratch scope
	// that shadows whatever Var resolves to outside the loop. Since our
	// Resolve walks parent pointers, iterVar is temporarily parented under
	// the loop construct itself (a non-scope node, which simply means
	// nothing above it shadows Var at this level yet); each iteration's
	// emitted block carries its own independent copy.
	iterVar.SetParent(c)

	for {
		ok, err := guard()
		if err != nil {
			return nil, fmt.Errorf("analyze: elaboration error: %w", err)
		}
		if !ok {
			break
		}

		name := fmt.Sprintf("%s%d", c.BlockNamePrefix, iterVar.Value.(*ast.ConstExpr).Value.ToInt64())
		block := ast.NewGenerateBlock(name)
		shadow := ast.NewParamDeclaration(true, c.Var, ast.NewConstExpr(iterVar.Value.(*ast.ConstExpr).Value))
		block.AppendItem(shadow)
		for _, it := range c.Body.Items() {
			block.AppendItem(ast.CloneNode(it))
		}
		container.AppendItem(block)

		stepVal, err := EvalConst(e.Resolve, c.Step)
		if err != nil {
			return nil, fmt.Errorf("analyze: elaboration error: %w", err)
		}
		iterVar.Value = ast.NewConstExpr(stepVal)
	}

	c.SetResult(container)
	return container, nil
}

// AssignGenblkNames assigns synthesized genblk1, genblk2, ... names to
// unnamed nested generate blocks directly inside container, in item order,
// continuing from the count reached by earlier calls for the same
// container (§4.2.3). Only unnamed generate blocks are counted; other
// scopes do not advance the number. No check is made for a collision with
// a user-chosen name of the same form.
func (e *Elaborate) AssignGenblkNames(container ast.ItemContainer) {
	n := e.genblkCounters[container]
	for _, it := range container.Items() {
		gb, ok := it.(*ast.GenerateBlock)
		if !ok || gb.Name != "" {
			continue
		}
		n++
		gb.SetName(fmt.Sprintf("genblk%d", n))
	}
	e.genblkCounters[container] = n
}
