package sw

import (
	"github.com/sarchlab/cascade/ast"
	"github.com/sarchlab/cascade/bv"
)

// evalUnary and evalBinary mirror analyze.EvalConst's operator dispatch
// (analyze/constexpr.go). engine/sw keeps its own copy rather than importing
// analyze, to preserve the one-way program/compiler -> engine dependency
// direction; a core evaluates the same operators analyze constant-folds,
// just over live values instead of declaration-time constants.

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
		return bv.Value{}
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
		return bv.Value{}
	}
}
