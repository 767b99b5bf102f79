package calcium

import (
	"github.com/calcium-lang/calcium/pkg/num"
)

// defaultSimplifier is the stand-in for the external arithmetic
// simplifier collaborator. It only normalizes sums: literal terms fold
// into one trailing literal and structurally equal terms collect into a
// single coefficient-carrying term, preserving first-occurrence order.
// Everything else passes through untouched.
func defaultSimplifier(ctx *Context, e Expr) Expr {
	f, ok := e.(*Function)
	if !ok || f.Head() != HeadAdd || !f.IsValid() {
		return e
	}

	type collected struct {
		coeff num.Value
		core  Expr
	}
	var order []collected
	litSum := num.Value(num.Int(0))
	hasLit := false

	for _, term := range f.Ops() {
		if lit, isLit := term.(*Literal); isLit {
			litSum = num.Add(ctx.Policy(), litSum, lit.Value())
			hasLit = true
			continue
		}
		coeff, core := splitCoefficient(ctx, term)
		merged := false
		for i := range order {
			if order[i].core.StructuralEq(core) {
				order[i].coeff = num.Add(ctx.Policy(), order[i].coeff, coeff)
				merged = true
				break
			}
		}
		if !merged {
			order = append(order, collected{coeff: coeff, core: core})
		}
	}

	terms := make([]Expr, 0, len(order)+1)
	for _, c := range order {
		if c.coeff.IsZero() {
			continue
		}
		terms = append(terms, rescale(ctx, c.coeff, c.core))
	}
	if hasLit && !litSum.IsZero() {
		terms = append(terms, ctx.Lit(litSum))
	}

	switch len(terms) {
	case 0:
		return ctx.Int(0)
	case 1:
		return terms[0]
	default:
		return ctx.Fn(HeadAdd, terms...)
	}
}

// splitCoefficient peels a leading numeric coefficient off a term:
// Negate contributes -1, a Multiply's literal factors multiply into the
// coefficient, anything else is a bare core with coefficient 1.
func splitCoefficient(ctx *Context, term Expr) (num.Value, Expr) {
	if inner, ok := negated(term); ok {
		c, core := splitCoefficient(ctx, inner)
		return num.Neg(c), core
	}
	f, isFn := term.(*Function)
	if !isFn || f.Head() != HeadMultiply {
		return num.Int(1), term
	}
	coeff := num.Value(num.Int(1))
	var rest []Expr
	for _, op := range f.Ops() {
		if lit, isLit := op.(*Literal); isLit {
			coeff = num.Mul(ctx.Policy(), coeff, lit.Value())
		} else {
			rest = append(rest, op)
		}
	}
	switch len(rest) {
	case 0:
		return coeff, ctx.Int(1)
	case 1:
		return coeff, rest[0]
	default:
		return coeff, ctx.Fn(HeadMultiply, rest...)
	}
}

// rescale rebuilds coeff·core, collapsing the 1 and -1 coefficients.
func rescale(ctx *Context, coeff num.Value, core Expr) Expr {
	if num.Equal(coeff, num.Int(1)) {
		return core
	}
	if num.Equal(coeff, num.Int(-1)) {
		return ctx.Fn(HeadNegate, core)
	}
	if lit, isLit := core.(*Literal); isLit {
		return ctx.Lit(num.Mul(ctx.Policy(), coeff, lit.Value()))
	}
	return ctx.Fn(HeadMultiply, ctx.Lit(coeff), core)
}
