package bv

// Concat extends the receiver by rhs's width, left-shifts by that amount,
// and bitwise-ORs rhs's bits into the freed low positions (§4.1).
func Concat(lhs, rhs Value) Value {
	newWidth := lhs.width + rhs.width
	out := Value{words: make([]uint32, wordCount(newWidth)), width: newWidth, kind: lhs.kind}
	for b := uint32(0); b < lhs.width; b++ {
		setBit(out.words, rhs.width+b, getBit(lhs.words, b))
	}
	for b := uint32(0); b < rhs.width; b++ {
		setBit(out.words, b, getBit(rhs.words, b))
	}
	out.trim()
	return out
}

// Slice extracts the inclusive [msb:lsb] range; msb must be >= lsb. A
// single-bit index [idx] is Slice(v, idx, idx).
func Slice(v Value, msb, lsb uint32) Value {
	if msb < lsb {
		panic("bv: slice requires msb >= lsb")
	}
	width := msb - lsb + 1
	out := Value{words: make([]uint32, wordCount(width)), width: width, kind: Unsigned}
	for b := uint32(0); b < width; b++ {
		setBit(out.words, b, getBit(v.words, lsb+b))
	}
	out.trim()
	return out
}

// PartAssign writes val into [msb:lsb] of dst, preserving every bit outside
// that range.
func PartAssign(dst Value, msb, lsb uint32, val Value) Value {
	out := dst.Clone()
	for b := lsb; b <= msb; b++ {
		setBit(out.words, b, getBit(val.words, b-lsb))
	}
	out.trim()
	return out
}
