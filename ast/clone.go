package ast

// CloneNode performs a structural deep copy of an expression or statement
// subtree. It is used by generate-loop unrolling (§4.2.3), which must give
// each iteration its own AST nodes so that per-node decorations (resolution
// pointers, use-site membership) do not bleed across iterations.
func CloneNode(n Node) Node {
	switch v := n.(type) {
	case nil:
		return nil
	case *Identifier:
		return NewIdentifier(append(QualifiedId(nil), v.Ids...)...)
	case *ConstExpr:
		return NewConstExpr(v.Value.Clone())
	case *UnaryExpr:
		return NewUnaryExpr(v.Op, CloneNode(v.Arg))
	case *BinaryExpr:
		return NewBinaryExpr(v.Op, CloneNode(v.Lhs), CloneNode(v.Rhs))
	case *ConcatExpr:
		args := make([]Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = CloneNode(a)
		}
		return NewConcatExpr(args...)
	case *RangeExpr:
		return NewRangeExpr(CloneNode(v.Arg), CloneNode(v.Msb), CloneNode(v.Lsb))
	case *AssignStatement:
		if v.Tag() == TagNonblockingAssign {
			return NewNonblockingAssign(CloneNode(v.Lhs), CloneNode(v.Rhs))
		}
		return NewBlockingAssign(CloneNode(v.Lhs), CloneNode(v.Rhs))
	case *IfStatement:
		return NewIfStatement(CloneNode(v.Cond), CloneNode(v.Then), CloneNode(v.Else))
	case *Block:
		b := NewBlock(v.Name, v.Par)
		for _, it := range v.items {
			b.AppendItem(CloneNode(it))
		}
		return b
	case *SystemTaskCall:
		args := make([]Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = CloneNode(a)
		}
		return NewSystemTaskCall(v.Task, args...)
	case *ProceduralConstruct:
		sens := make([]*Identifier, len(v.Sensitivity))
		for i, s := range v.Sensitivity {
			sens[i] = CloneNode(s).(*Identifier)
		}
		if v.Always {
			return NewAlwaysConstruct(CloneNode(v.Body), sens, append([]bool(nil), v.PosedgeOnly...))
		}
		return NewInitialConstruct(CloneNode(v.Body))
	case *VarDeclaration:
		return NewVarDeclaration(v.Kind, v.Name, CloneNode(v.Width), CloneNode(v.Init), v.IsFopenInit)
	case *ParamDeclaration:
		return NewParamDeclaration(v.Local, v.Name, CloneNode(v.Value))
	case *PortDeclaration:
		return NewPortDeclaration(v.Dir, v.Name, CloneNode(v.Width))
	case *GenerateBlock:
		g := NewGenerateBlock(v.Name)
		for _, it := range v.items {
			g.AppendItem(CloneNode(it))
		}
		return g
	case *ModuleInstantiation:
		params := make([]*ArgAssign, len(v.Params))
		for i, p := range v.Params {
			params[i] = CloneNode(p).(*ArgAssign)
		}
		ports := make([]*ArgAssign, len(v.Ports))
		for i, p := range v.Ports {
			ports[i] = CloneNode(p).(*ArgAssign)
		}
		return NewModuleInstantiation(v.TargetName, v.InstName, params, ports)
	case *ArgAssign:
		return NewArgAssign(v.Name, CloneNode(v.Expr))
	case *IfGenerateConstruct:
		var els *GenerateBlock
		if v.Else != nil {
			els = CloneNode(v.Else).(*GenerateBlock)
		}
		return NewIfGenerateConstruct(CloneNode(v.Cond), CloneNode(v.Then).(*GenerateBlock), els)
	case *CaseGenerateConstruct:
		items := make([]CaseItem, len(v.Items))
		for i, it := range v.Items {
			exprs := make([]Node, len(it.Exprs))
			for j, e := range it.Exprs {
				exprs[j] = CloneNode(e)
			}
			items[i] = CaseItem{Exprs: exprs, Block: CloneNode(it.Block).(*GenerateBlock)}
		}
		return NewCaseGenerateConstruct(CloneNode(v.Cond), items)
	case *LoopGenerateConstruct:
		return NewLoopGenerateConstruct(v.Var, CloneNode(v.Init), CloneNode(v.Cond), CloneNode(v.Step), CloneNode(v.Body).(*GenerateBlock), v.BlockNamePrefix)
	default:
		panic("ast: CloneNode: unhandled node kind")
	}
}
