package ast

// Id is one segment of a qualified name: a string plus an optional constant
// subscript expression (§3). Two Ids compare equal under the analyses'
// hashing iff their strings match and, when both have a subscript that
// evaluates to a constant, those constants match; hashing ignores the
// subscript's value when the expression is symbolic (not yet constant).
type Id struct {
	Name      string
	Subscript Node // nil, or an Expression; may be non-constant (symbolic)
}

// constIndex evaluates Subscript as a constant, if possible. Symbolic
// subscripts (e.g. a generate-loop variable before substitution) report ok
// == false, and comparisons/hashing fall back to the string alone.
func (id Id) constIndex() (int64, bool) {
	if id.Subscript == nil {
		return 0, true // no subscript: trivially "equal" on the index axis
	}
	ce, ok := id.Subscript.(*ConstExpr)
	if !ok {
		return 0, false
	}
	return ce.Value.ToInt64(), true
}

// Equal implements the identifier comparison rule from §3: string match
// pairwise, and subscripts (when both resolve to constants) must evaluate
// to the same integer.
func (id Id) Equal(o Id) bool {
	if id.Name != o.Name {
		return false
	}
	ai, aok := id.constIndex()
	bi, bok := o.constIndex()
	if !aok || !bok {
		// At least one side is symbolic: names alone decide equality, per
		// the "hashing must ignore subscript value when symbolic" rule.
		return true
	}
	return ai == bi
}

// HashKey returns a string usable as a map key that respects Equal for the
// common case of constant-or-absent subscripts. Symbolic subscripts hash
// to the bare name, matching the "ignore subscript value" rule.
func (id Id) HashKey() string {
	if idx, ok := id.constIndex(); ok && id.Subscript != nil {
		return id.Name + "#" + itoa(idx)
	}
	return id.Name
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// QualifiedId is an ordered sequence of Id segments, e.g. foo.bar[3].baz.
type QualifiedId []Id

func (q QualifiedId) String() string {
	s := ""
	for i, id := range q {
		if i > 0 {
			s += "."
		}
		s += id.Name
	}
	return s
}

// Identifier is an AST leaf referencing a (possibly qualified) name.
// It carries a lazy resolution pointer to its declaration (§3, §4.2.2).
// Declarations name themselves with an Id rather than an Identifier, so
// they carry no resolution pointer of their own.
type Identifier struct {
	base
	Ids QualifiedId

	resolved   Node // nil until first Resolve query
	resolvedAt int  // generation at which `resolved` was computed; 0 = invalid
}

// NewIdentifier builds an unresolved identifier over the given segments.
func NewIdentifier(ids ...Id) *Identifier {
	return &Identifier{base: base{tag: TagIdentifier}, Ids: ids}
}

// InvalidateResolution clears the memoized resolution pointer. Callers that
// mutate scope structure must call this on every identifier whose
// resolution may have changed; analyze.Resolve's own Invalidate does not
// clear identifiers' pointers (see analyze/resolve.go).
func (i *Identifier) InvalidateResolution() {
	i.resolvedAt = 0
	i.resolved = nil
}

// Resolved reports whether a resolution pointer has been memoized.
func (i *Identifier) Resolved() bool { return i.resolvedAt != 0 }

// ResolvedDecl returns the memoized resolution pointer (nil if none yet).
func (i *Identifier) ResolvedDecl() Node { return i.resolved }

// SetResolved memoizes decl as this identifier's resolution.
func (i *Identifier) SetResolved(decl Node) {
	i.resolved = decl
	i.resolvedAt = 1
}
