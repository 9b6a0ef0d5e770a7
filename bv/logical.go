package bv

// one1 and zero1 are the canonical one-bit unsigned results every
// logical/reduction/comparison operator produces.
func one1() Value  { return New(1, Unsigned, 1) }
func zero1() Value { return New(1, Unsigned, 0) }

func boolBit(b bool) Value {
	if b {
		return one1()
	}
	return zero1()
}

// LogicalAnd is Verilog's `&&`: true iff both operands are nonzero.
func LogicalAnd(a, b Value) Value { return boolBit(a.ToBool() && b.ToBool()) }

// LogicalOr is Verilog's `||`: true iff either operand is nonzero.
func LogicalOr(a, b Value) Value { return boolBit(a.ToBool() || b.ToBool()) }

// LogicalNot is Verilog's `!`.
func LogicalNot(a Value) Value { return boolBit(!a.ToBool()) }

// alignForCompare sign-extends the narrower operand to the wider operand's
// width, per §4.1's comparison rule.
func alignForCompare(a, b Value) (Value, Value) {
	switch {
	case a.width == b.width:
		return a, b
	case a.width < b.width:
		return a.Cast(b.width, a.kind), b
	default:
		return a, b.Cast(a.width, b.kind)
	}
}

// Eq is Verilog's `==`.
func Eq(a, b Value) Value {
	a, b = alignForCompare(a, b)
	return boolBit(a.Equal(b))
}

// Ne is Verilog's `!=`.
func Ne(a, b Value) Value {
	a, b = alignForCompare(a, b)
	return boolBit(!a.Equal(b))
}

// Lt is Verilog's `<`, honoring sign per operand kind after alignment.
func Lt(a, b Value) Value { return boolBit(compare(a, b) < 0) }

// Lte is Verilog's `<=`.
func Lte(a, b Value) Value { return boolBit(compare(a, b) <= 0) }

// Gt is Verilog's `>`.
func Gt(a, b Value) Value { return boolBit(compare(a, b) > 0) }

// Gte is Verilog's `>=`.
func Gte(a, b Value) Value { return boolBit(compare(a, b) >= 0) }

func compare(a, b Value) int {
	if a.kind == Real || b.kind == Real {
		af, bf := a.ToDouble(), b.ToDouble()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	a, b = alignForCompare(a, b)
	if a.kind == Signed || b.kind == Signed {
		ai, bi := a.ToInt64(), b.ToInt64()
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	for i := len(a.words) - 1; i >= 0; i-- {
		if a.words[i] != b.words[i] {
			if a.words[i] < b.words[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func reduce(a Value, f func(acc, bit bool) bool, init bool) bool {
	acc := init
	for b := uint32(0); b < a.width; b++ {
		acc = f(acc, getBit(a.words, b))
	}
	return acc
}

// ReduceAnd is the unary `&` reduction.
func ReduceAnd(a Value) Value {
	return boolBit(reduce(a, func(acc, bit bool) bool { return acc && bit }, true))
}

// ReduceNand is the unary `~&` reduction.
func ReduceNand(a Value) Value { return boolBit(!ReduceAnd(a).ToBool()) }

// ReduceOr is the unary `|` reduction.
func ReduceOr(a Value) Value {
	return boolBit(reduce(a, func(acc, bit bool) bool { return acc || bit }, false))
}

// ReduceNor is the unary `~|` reduction.
func ReduceNor(a Value) Value { return boolBit(!ReduceOr(a).ToBool()) }

// ReduceXor is the unary `^` reduction.
func ReduceXor(a Value) Value {
	return boolBit(reduce(a, func(acc, bit bool) bool { return acc != bit }, false))
}

// ReduceXnor is the unary `~^` reduction.
func ReduceXnor(a Value) Value { return boolBit(!ReduceXor(a).ToBool()) }
