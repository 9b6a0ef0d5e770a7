package ast

import "github.com/sarchlab/cascade/bv"

// BinOp enumerates the binary bit-vector operators from §4.1.
type BinOp int

const (
	OpAnd BinOp = iota
	OpOr
	OpXor
	OpXnor
	OpSll
	OpSal
	OpSlr
	OpSar
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpLogAnd
	OpLogOr
	OpEq
	OpNe
	OpLt
	OpLte
	OpGt
	OpGte
)

// UnOp enumerates the unary operators from §4.1.
type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
	OpLogNot
	OpReduceAnd
	OpReduceNand
	OpReduceOr
	OpReduceNor
	OpReduceXor
	OpReduceXnor
)

// ConstExpr wraps a literal bit-vector value.
type ConstExpr struct {
	base
	Value bv.Value
}

// NewConstExpr builds a constant expression node.
func NewConstExpr(v bv.Value) *ConstExpr {
	return &ConstExpr{base: base{tag: TagConstExpr}, Value: v}
}

// UnaryExpr applies a unary operator to an operand expression.
type UnaryExpr struct {
	base
	Op  UnOp
	Arg Node
}

// NewUnaryExpr builds a unary expression node and attaches itself as arg's
// parent.
func NewUnaryExpr(op UnOp, arg Node) *UnaryExpr {
	u := &UnaryExpr{base: base{tag: TagUnaryExpr}, Op: op, Arg: arg}
	arg.SetParent(u)
	return u
}

// BinaryExpr applies a binary operator to two operand expressions.
type BinaryExpr struct {
	base
	Op       BinOp
	Lhs, Rhs Node
}

// NewBinaryExpr builds a binary expression node and attaches itself as
// both operands' parent.
func NewBinaryExpr(op BinOp, lhs, rhs Node) *BinaryExpr {
	b := &BinaryExpr{base: base{tag: TagBinaryExpr}, Op: op, Lhs: lhs, Rhs: rhs}
	lhs.SetParent(b)
	rhs.SetParent(b)
	return b
}

// ConcatExpr is a `{a, b, ...}` concatenation.
type ConcatExpr struct {
	base
	Args []Node
}

// NewConcatExpr builds a concatenation expression.
func NewConcatExpr(args ...Node) *ConcatExpr {
	c := &ConcatExpr{base: base{tag: TagConcatExpr}, Args: args}
	for _, a := range args {
		a.SetParent(c)
	}
	return c
}

// RangeExpr is a `id[msb:lsb]` or `id[idx]` slice/part-select; Lsb == Msb
// for a single-bit index.
type RangeExpr struct {
	base
	Arg      Node
	Msb, Lsb Node // constant-foldable expressions
}

// NewRangeExpr builds a slice/part-select expression.
func NewRangeExpr(arg, msb, lsb Node) *RangeExpr {
	r := &RangeExpr{base: base{tag: TagRangeExpr}, Arg: arg, Msb: msb, Lsb: lsb}
	arg.SetParent(r)
	msb.SetParent(r)
	lsb.SetParent(r)
	return r
}
