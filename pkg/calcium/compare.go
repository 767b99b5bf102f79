package calcium

import (
	"strings"

	"github.com/calcium-lang/calcium/pkg/num"
)

// Ternary is a three-valued truth result. Comparisons over incomparable
// expressions (distinct unbound symbols, unrelated shapes) are
// Undefined, and derived predicates propagate it rather than coercing
// to false.
type Ternary int

const (
	Undefined Ternary = iota
	False
	True
)

func (t Ternary) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "undefined"
	}
}

// Compare orders two expressions three-way. ok=false means the pair is
// incomparable.
//
// In order of precedence: real numeric values compare numerically
// (constant symbols count through their values); identical canonical
// structure compares equal; same head over the same operand multiset
// compares positionally by a deterministic structural order; anything
// else is incomparable.
func (ctx *Context) Compare(a, b Expr) (int, bool) {
	av, aok := ctx.NumericValue(a)
	bv, bok := ctx.NumericValue(b)
	if aok && bok {
		if c, ok := num.Cmp(av, bv); ok {
			return c, true
		}
		// Complex values have no order but still have equality.
		if num.Equal(av, bv) {
			return 0, true
		}
		return 0, false
	}

	if a.StructuralEq(b) {
		return 0, true
	}

	fa, aIsFn := a.(*Function)
	fb, bIsFn := b.(*Function)
	if aIsFn && bIsFn && fa.Head() == fb.Head() && sameOperandMultiset(fa.Ops(), fb.Ops()) {
		// Deterministic, non-mathematical ordering used for term
		// sorting: the first differing operand position decides.
		for i := range fa.Ops() {
			if c := ctx.termOrder(fa.Op(i), fb.Op(i)); c != 0 {
				return c, true
			}
		}
		return 0, true
	}

	return 0, false
}

// sameOperandMultiset reports whether the two operand sequences hold the
// same elements up to reordering, by structural equality.
func sameOperandMultiset(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, op := range a {
		for j, other := range b {
			if !used[j] && op.StructuralEq(other) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// termOrder is a total, deterministic structural order over canonical
// expressions: symbols sort before applications, applications before
// literals (so symbolic terms lead their numeric coefficients), and
// applications order by their head's complexity score.
func (ctx *Context) termOrder(a, b Expr) int {
	ra, rb := termRank(a), termRank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch a := a.(type) {
	case *Symbol:
		return strings.Compare(a.Name(), b.(*Symbol).Name())
	case *Literal:
		if c, ok := num.Cmp(a.Value(), b.(*Literal).Value()); ok {
			return c
		}
		return strings.Compare(a.String(), b.String())
	case *Function:
		fb := b.(*Function)
		if c := cmpInt(ctx.complexityOf(a.Head()), ctx.complexityOf(fb.Head())); c != 0 {
			return c
		}
		if c := strings.Compare(a.Head(), fb.Head()); c != 0 {
			return c
		}
		if c := cmpInt(a.Arity(), fb.Arity()); c != 0 {
			return c
		}
		for i := range a.Ops() {
			if c := ctx.termOrder(a.Op(i), fb.Op(i)); c != 0 {
				return c
			}
		}
		return 0
	default:
		return strings.Compare(a.String(), b.String())
	}
}

func termRank(e Expr) int {
	switch e.(type) {
	case *Symbol:
		return 0
	case *Function:
		return 1
	case *Literal:
		return 2
	default:
		return 3
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func ternaryFrom(c int, ok bool, pred func(int) bool) Ternary {
	if !ok {
		return Undefined
	}
	if pred(c) {
		return True
	}
	return False
}

// Equal is True iff Compare is 0, False for any other number, Undefined
// when the pair is incomparable.
func (ctx *Context) Equal(a, b Expr) Ternary {
	c, ok := ctx.Compare(a, b)
	return ternaryFrom(c, ok, func(c int) bool { return c == 0 })
}

func (ctx *Context) Less(a, b Expr) Ternary {
	c, ok := ctx.Compare(a, b)
	return ternaryFrom(c, ok, func(c int) bool { return c < 0 })
}

func (ctx *Context) LessEqual(a, b Expr) Ternary {
	c, ok := ctx.Compare(a, b)
	return ternaryFrom(c, ok, func(c int) bool { return c <= 0 })
}

func (ctx *Context) Greater(a, b Expr) Ternary {
	c, ok := ctx.Compare(a, b)
	return ternaryFrom(c, ok, func(c int) bool { return c > 0 })
}

func (ctx *Context) GreaterEqual(a, b Expr) Ternary {
	c, ok := ctx.Compare(a, b)
	return ternaryFrom(c, ok, func(c int) bool { return c >= 0 })
}
