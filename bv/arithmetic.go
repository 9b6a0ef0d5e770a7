package bv

// Add computes a + b, modulo 2^width for integer kinds.
func Add(a, b Value) Value {
	if a.kind == Real || b.kind == Real {
		return NewReal(a.ToDouble() + b.ToDouble())
	}
	requireSameWidth(a, b)
	out := Value{words: make([]uint32, len(a.words)), width: a.width, kind: a.kind}
	var carry uint64
	for i := range out.words {
		s := uint64(a.words[i]) + uint64(b.words[i]) + carry
		out.words[i] = uint32(s)
		carry = s >> 32
	}
	out.trim()
	return out
}

// Neg computes the two's-complement negation of a.
func Neg(a Value) Value {
	if a.kind == Real {
		return NewReal(-a.ToDouble())
	}
	return Add(Not(a), New(a.width, a.kind, 1))
}

// Sub computes a - b.
func Sub(a, b Value) Value {
	if a.kind == Real || b.kind == Real {
		return NewReal(a.ToDouble() - b.ToDouble())
	}
	return Add(a, Neg(b))
}

// Mul computes a * b, modulo 2^width for integer kinds.
func Mul(a, b Value) Value {
	if a.kind == Real || b.kind == Real {
		return NewReal(a.ToDouble() * b.ToDouble())
	}
	requireSameWidth(a, b)
	// Schoolbook multiply over words, truncated to width.
	n := len(a.words)
	wide := make([]uint32, 2*n)
	for i := 0; i < n; i++ {
		var carry uint64
		for j := 0; j < n; j++ {
			prod := uint64(a.words[i])*uint64(b.words[j]) + uint64(wide[i+j]) + carry
			wide[i+j] = uint32(prod)
			carry = prod >> 32
		}
		k := i + n
		for carry != 0 {
			s := uint64(wide[k]) + carry
			wide[k] = uint32(s)
			carry = s >> 32
			k++
		}
	}
	out := Value{words: make([]uint32, n), width: a.width, kind: a.kind}
	copy(out.words, wide[:n])
	out.trim()
	return out
}

// Div computes a / b. Division by zero is implementation-defined (§4.1,
// §9 open question a); this implementation returns all-ones rather than
// panicking, so evaluation never crashes.
func Div(a, b Value) Value {
	if a.kind == Real || b.kind == Real {
		d := b.ToDouble()
		if d == 0 {
			return NewReal(0)
		}
		return NewReal(a.ToDouble() / d)
	}
	if !b.ToBool() {
		return allOnes(a.width, a.kind)
	}
	if a.kind == Signed {
		an, bn := a.ToInt64(), b.ToInt64()
		return New(a.width, a.kind, uint64(an/bn))
	}
	return New(a.width, a.kind, a.ToUint64()/b.ToUint64())
}

// Mod computes a % b with the same division-by-zero behavior as Div.
func Mod(a, b Value) Value {
	if a.kind == Real || b.kind == Real {
		return NewReal(0)
	}
	if !b.ToBool() {
		return allOnes(a.width, a.kind)
	}
	if a.kind == Signed {
		an, bn := a.ToInt64(), b.ToInt64()
		return New(a.width, a.kind, uint64(an%bn))
	}
	return New(a.width, a.kind, a.ToUint64()%b.ToUint64())
}

// Pow computes a ** b via repeated squaring, modulo 2^width.
func Pow(a, b Value) Value {
	if a.kind == Real || b.kind == Real {
		return NewReal(powFloat(a.ToDouble(), b.ToDouble()))
	}
	result := New(a.width, a.kind, 1)
	base := a.Clone()
	exp := b.ToUint64()
	for exp > 0 {
		if exp&1 == 1 {
			result = Mul(result, base)
		}
		base = Mul(base, base)
		exp >>= 1
	}
	return result
}

func powFloat(base, exp float64) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for i := 0; i < int(exp); i++ {
		result *= base
	}
	if neg && result != 0 {
		result = 1 / result
	}
	return result
}

func allOnes(width uint32, kind Kind) Value {
	out := Value{words: make([]uint32, wordCount(width)), width: width, kind: kind}
	for i := range out.words {
		out.words[i] = ^uint32(0)
	}
	out.trim()
	return out
}
