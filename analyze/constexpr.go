package analyze

import (
	"fmt"

	"github.com/sarchlab/cascade/ast"
	"github.com/sarchlab/cascade/bv"
)

// EvalConst evaluates a constant-foldable expression subtree to a bit-vector
// value, resolving identifiers against r. Elaboration (§4.2.3) requires
// this wherever a constant is needed: generate conditions, case labels,
// loop bounds, and parameter values.
func EvalConst(r *Resolve, n ast.Node) (bv.Value, error) {
	switch v := n.(type) {
	case *ast.ConstExpr:
		return v.Value, nil
	case *ast.Identifier:
		decl := r.GetResolution(v)
		if decl == nil {
			return bv.Value{}, fmt.Errorf("analyze: %s: undeclared identifier", v.Ids)
		}
		switch d := decl.(type) {
		case *ast.ParamDeclaration:
			return EvalConst(r, d.Value)
		default:
			return bv.Value{}, fmt.Errorf("analyze: %v: not a constant", v.Ids)
		}
	case *ast.UnaryExpr:
		arg, err := EvalConst(r, v.Arg)
		if err != nil {
			return bv.Value{}, err
		}
		return evalUnary(v.Op, arg), nil
	case *ast.BinaryExpr:
		lhs, err := EvalConst(r, v.Lhs)
		if err != nil {
			return bv.Value{}, err
		}
		rhs, err := EvalConst(r, v.Rhs)
		if err != nil {
			return bv.Value{}, err
		}
		return evalBinary(v.Op, lhs, rhs), nil
	case *ast.ConcatExpr:
		if len(v.Args) == 0 {
			return bv.Value{}, fmt.Errorf("analyze: empty concatenation")
		}
		acc, err := EvalConst(r, v.Args[0])
		if err != nil {
			return bv.Value{}, err
		}
		for _, a := range v.Args[1:] {
			rhs, err := EvalConst(r, a)
			if err != nil {
				return bv.Value{}, err
			}
			acc = bv.Concat(acc, rhs)
		}
		return acc, nil
	case *ast.RangeExpr:
		base, err := EvalConst(r, v.Arg)
		if err != nil {
			return bv.Value{}, err
		}
		msb, err := EvalConst(r, v.Msb)
		if err != nil {
			return bv.Value{}, err
		}
		lsb, err := EvalConst(r, v.Lsb)
		if err != nil {
			return bv.Value{}, err
		}
		return bv.Slice(base, uint32(msb.ToUint64()), uint32(lsb.ToUint64())), nil
	default:
		return bv.Value{}, fmt.Errorf("analyze: elaboration error: non-constant expression where a constant is required")
	}
}

func evalUnary(op ast.UnOp, a bv.Value) bv.Value {
	switch op {
	case ast.OpNeg:
		return bv.Neg(a)
	case ast.OpNot:
		return bv.Not(a)
	case ast.OpLogNot:
		return bv.LogicalNot(a)
	case ast.OpReduceAnd:
		return bv.ReduceAnd(a)
	case ast.OpReduceNand:
		return bv.ReduceNand(a)
	case ast.OpReduceOr:
		return bv.ReduceOr(a)
	case ast.OpReduceNor:
		return bv.ReduceNor(a)
	case ast.OpReduceXor:
		return bv.ReduceXor(a)
	case ast.OpReduceXnor:
		return bv.ReduceXnor(a)
	default:
		panic("analyze: unknown unary operator")
	}
}

func evalBinary(op ast.BinOp, a, b bv.Value) bv.Value {
	switch op {
	case ast.OpAnd:
		return bv.And(a, b)
	case ast.OpOr:
		return bv.Or(a, b)
	case ast.OpXor:
		return bv.Xor(a, b)
	case ast.OpXnor:
		return bv.Xnor(a, b)
	case ast.OpSll:
		return bv.Sll(a, b)
	case ast.OpSal:
		return bv.Sal(a, b)
	case ast.OpSlr:
		return bv.Slr(a, b)
	case ast.OpSar:
		return bv.Sar(a, b)
	case ast.OpAdd:
		return bv.Add(a, b)
	case ast.OpSub:
		return bv.Sub(a, b)
	case ast.OpMul:
		return bv.Mul(a, b)
	case ast.OpDiv:
		return bv.Div(a, b)
	case ast.OpMod:
		return bv.Mod(a, b)
	case ast.OpPow:
		return bv.Pow(a, b)
	case ast.OpLogAnd:
		return bv.LogicalAnd(a, b)
	case ast.OpLogOr:
		return bv.LogicalOr(a, b)
	case ast.OpEq:
		return bv.Eq(a, b)
	case ast.OpNe:
		return bv.Ne(a, b)
	case ast.OpLt:
		return bv.Lt(a, b)
	case ast.OpLte:
		return bv.Lte(a, b)
	case ast.OpGt:
		return bv.Gt(a, b)
	case ast.OpGte:
		return bv.Gte(a, b)
	default:
		panic("analyze: unknown binary operator")
	}
}
