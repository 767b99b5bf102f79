package calcium

import (
	"iter"
	"math/big"

	"github.com/calcium-lang/calcium/pkg/num"
)

// Distribute multiplies two expressions pairwise, pushing negation
// outward, distributing over Divide by distributing numerators and
// multiplying denominators, and distributing a sum on either side
// across the other operand.
func (ctx *Context) Distribute(a, b Expr) Expr {
	if n, ok := negated(a); ok {
		return ctx.Fn(HeadNegate, ctx.Distribute(n, b))
	}
	if n, ok := negated(b); ok {
		return ctx.Fn(HeadNegate, ctx.Distribute(a, n))
	}

	an, ad, aDiv := divided(a)
	bn, bd, bDiv := divided(b)
	if aDiv || bDiv {
		den := ad
		switch {
		case !aDiv:
			den = bd
		case bDiv:
			den = ctx.Fn(HeadMultiply, ad, bd)
		}
		return ctx.Fn(HeadDivide, ctx.Distribute(an, bn), den)
	}

	if sum, ok := a.(*Function); ok && sum.Head() == HeadAdd {
		terms := make([]Expr, sum.Arity())
		for i, t := range sum.Ops() {
			terms[i] = ctx.Distribute(t, b)
		}
		return ctx.Fn(HeadAdd, terms...)
	}
	if sum, ok := b.(*Function); ok && sum.Head() == HeadAdd {
		terms := make([]Expr, sum.Arity())
		for i, t := range sum.Ops() {
			terms[i] = ctx.Distribute(a, t)
		}
		return ctx.Fn(HeadAdd, terms...)
	}
	return ctx.Fn(HeadMultiply, a, b)
}

func negated(e Expr) (Expr, bool) {
	f, ok := e.(*Function)
	if ok && f.Head() == HeadNegate && f.Arity() == 1 {
		return f.Op(0), true
	}
	return nil, false
}

func divided(e Expr) (numer, denom Expr, ok bool) {
	f, isFn := e.(*Function)
	if isFn && f.Head() == HeadDivide && f.Arity() == 2 {
		return f.Op(0), f.Op(1), true
	}
	return e, nil, false
}

// compositions lazily enumerates every way of writing total as parts
// non-negative integers, in fixed lexicographic order: the first part
// ascends from 0 to total, recursively enumerating the rest. The order
// fixes the term order of expanded polynomials, so it must never
// change. The sequence is restartable: each range starts over.
func compositions(total, parts int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		comp := make([]int, parts)
		var rec func(pos, remaining int) bool
		rec = func(pos, remaining int) bool {
			if pos == parts-1 {
				comp[pos] = remaining
				return yield(comp)
			}
			for v := 0; v <= remaining; v++ {
				comp[pos] = v
				if !rec(pos+1, remaining-v) {
					return false
				}
			}
			return true
		}
		if parts > 0 {
			rec(0, total)
		}
	}
}

// multinomial computes total! / (k1!·k2!·…) as a product of
// successively smaller binomial coefficients from the context's cached
// Pascal's triangle.
func (ctx *Context) multinomial(total int, comp []int) *big.Int {
	coeff := big.NewInt(1)
	remaining := total
	for _, k := range comp {
		coeff = new(big.Int).Mul(coeff, ctx.binomial(remaining, k))
		remaining -= k
	}
	return coeff
}

// ExpandPower expands base^exp for an integer literal exponent using
// the multinomial theorem. ok=false means the form is not expandable
// (non-integer exponent, or a base that is not a sum after the sign and
// inversion cases are peeled off).
func (ctx *Context) ExpandPower(base, exp Expr) (Expr, bool) {
	lit, isLit := exp.(*Literal)
	if !isLit {
		return nil, false
	}
	rat, isRat := lit.Value().(num.Rational)
	if !isRat {
		return nil, false
	}
	n, fits := rat.Int64()
	if !fits {
		return nil, false
	}

	switch {
	case n == 0:
		return ctx.Int(1), true
	case n == 1:
		if e, ok := ctx.Expand(base); ok {
			return e, true
		}
		return base, true
	case n < 0:
		inner, ok := ctx.ExpandPower(base, ctx.Int(-n))
		if !ok {
			return nil, false
		}
		return ctx.Fn(HeadDivide, ctx.Int(1), inner), true
	}

	if mag, ok := negated(base); ok {
		inner, ok := ctx.ExpandPower(mag, exp)
		if !ok {
			return nil, false
		}
		if n%2 == 1 {
			inner = ctx.Fn(HeadNegate, inner)
		}
		return inner, true
	}

	sum, isSum := base.(*Function)
	if !isSum || sum.Head() != HeadAdd {
		return nil, false
	}

	addends := sum.Ops()
	var terms []Expr
	for comp := range compositions(int(n), len(addends)) {
		coeff := ctx.multinomial(int(n), comp)
		var factors []Expr
		if coeff.Cmp(big.NewInt(1)) != 0 {
			factors = append(factors, ctx.Lit(num.RatFromBig(new(big.Rat).SetInt(coeff))))
		}
		for i, k := range comp {
			switch k {
			case 0:
				// Omitted.
			case 1:
				factors = append(factors, addends[i])
			default:
				factors = append(factors, ctx.Fn(HeadPower, addends[i], ctx.Int(int64(k))))
			}
		}
		var term Expr
		switch len(factors) {
		case 0:
			term = ctx.Int(1)
		case 1:
			term = factors[0]
		default:
			term = ctx.Fn(HeadMultiply, factors...)
		}
		terms = append(terms, term)
	}
	return ctx.simplify(ctx, ctx.Fn(HeadAdd, terms...)), true
}

// Expand performs one level of algebraic expansion, dispatching on the
// head. ok=false is the "not expandable" sentinel: the shape has no
// expansion rule, which is different from expanding to itself.
func (ctx *Context) Expand(e Expr) (Expr, bool) {
	f, isFn := e.(*Function)
	if !isFn {
		return nil, false
	}
	switch {
	case relationalHeads[f.Head()]:
		ops := make([]Expr, f.Arity())
		for i, op := range f.Ops() {
			ops[i] = ctx.expandOr(op)
		}
		return ctx.Fn(f.Head(), ops...), true

	case f.Head() == HeadDivide && f.Arity() == 2:
		numer := ctx.expandOr(f.Op(0))
		den := f.Op(1)
		if sum, ok := numer.(*Function); ok && sum.Head() == HeadAdd {
			terms := make([]Expr, sum.Arity())
			for i, t := range sum.Ops() {
				terms[i] = ctx.Fn(HeadDivide, t, den)
			}
			return ctx.Fn(HeadAdd, terms...), true
		}
		return ctx.Fn(HeadDivide, numer, den), true

	case f.Head() == HeadMultiply:
		ops := f.Ops()
		if len(ops) == 0 {
			return nil, false
		}
		// Right-to-left reduction to repeated pairwise distribution.
		acc := ops[len(ops)-1]
		for i := len(ops) - 2; i >= 0; i-- {
			acc = ctx.Distribute(ops[i], acc)
		}
		return acc, true

	case f.Head() == HeadAdd:
		// The arithmetic simplifier collaborator owns sums; it
		// expands its own arguments.
		ops := make([]Expr, f.Arity())
		for i, op := range f.Ops() {
			ops[i] = ctx.expandOr(op)
		}
		return ctx.simplify(ctx, ctx.Fn(HeadAdd, ops...)), true

	case f.Head() == HeadNegate && f.Arity() == 1:
		return ctx.Fn(HeadNegate, ctx.expandOr(f.Op(0))), true

	case f.Head() == HeadPower && f.Arity() == 2:
		return ctx.ExpandPower(f.Op(0), f.Op(1))

	default:
		return nil, false
	}
}

// expandOr expands when possible and otherwise keeps the expression.
func (ctx *Context) expandOr(e Expr) Expr {
	if expanded, ok := ctx.Expand(e); ok {
		return expanded
	}
	return e
}

// ExpandAll expands every subexpression bottom-up before expanding the
// rebuilt node itself.
func (ctx *Context) ExpandAll(e Expr) Expr {
	f, isFn := e.(*Function)
	if !isFn {
		return e
	}
	ops := make([]Expr, f.Arity())
	for i, op := range f.Ops() {
		ops[i] = ctx.ExpandAll(op)
	}
	return ctx.expandOr(ctx.Fn(f.Head(), ops...))
}

// ExpandNumerator expands only the numerator of a Divide. ok=false when
// the expression is not a Divide.
func (ctx *Context) ExpandNumerator(e Expr) (Expr, bool) {
	f, isFn := e.(*Function)
	if !isFn || f.Head() != HeadDivide || f.Arity() != 2 {
		return nil, false
	}
	return ctx.Fn(HeadDivide, ctx.expandOr(f.Op(0)), f.Op(1)), true
}

// ExpandDenominator expands only the denominator of a Divide.
func (ctx *Context) ExpandDenominator(e Expr) (Expr, bool) {
	f, isFn := e.(*Function)
	if !isFn || f.Head() != HeadDivide || f.Arity() != 2 {
		return nil, false
	}
	return ctx.Fn(HeadDivide, f.Op(0), ctx.expandOr(f.Op(1))), true
}
