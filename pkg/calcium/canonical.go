package calcium

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/calcium-lang/calcium/pkg/num"
)

// Box converts a raw expression shape into a canonical boxed expression.
// This is the boundary with the parser/serializer collaborator: strings
// box to symbols, Go numbers and num.Values to literals, and a []any
// whose first element is the head boxes to a function application.
func (ctx *Context) Box(raw any) (Expr, error) {
	switch raw := raw.(type) {
	case Expr:
		return raw.Canonical(), nil
	case string:
		return ctx.Sym(raw), nil
	case int:
		return ctx.Int(int64(raw)), nil
	case int64:
		return ctx.Int(raw), nil
	case float64:
		return ctx.Lit(num.FromFloat64(ctx.Policy(), raw)), nil
	case *big.Rat:
		return ctx.Lit(num.RatFromBig(raw)), nil
	case num.Value:
		return ctx.Lit(raw), nil
	case []any:
		if len(raw) == 0 {
			return nil, errors.New("calcium: empty application shape")
		}
		head, ok := raw[0].(string)
		if !ok {
			return nil, errors.Errorf("calcium: application head must be a string, got %T", raw[0])
		}
		ops := make([]Expr, len(raw)-1)
		for i, r := range raw[1:] {
			op, err := ctx.Box(r)
			if err != nil {
				return nil, err
			}
			ops[i] = op
		}
		return ctx.Fn(head, ops...), nil
	default:
		return nil, errors.Errorf("calcium: cannot box %T", raw)
	}
}

// CanonicalAngle converts an angle expression to radians per the
// context's angular unit, then reduces it modulo 2π. The reduction
// extracts k and t with angle = k·π + t, reduces k mod 2, and
// recombines. Shapes that cannot carry an angle yield an
// incompatible-domain error node.
func (ctx *Context) CanonicalAngle(e Expr) Expr {
	if !e.IsValid() {
		return e
	}
	switch e.Type() {
	case TypeBoolean, TypeCollection, TypeFunction, TypeError:
		return ctx.errIncompatibleDomain(e)
	}

	pi := ctx.Sym("Pi")
	switch ctx.angle {
	case Degrees:
		e = ctx.Fn(HeadMultiply, ctx.Frac(1, 180), pi, e)
	case Gradians:
		e = ctx.Fn(HeadMultiply, ctx.Frac(1, 200), pi, e)
	case Turns:
		e = ctx.Fn(HeadMultiply, ctx.Int(2), pi, e)
	}

	k, rest, ok := ctx.decomposePi(e)
	if !ok || k.IsZero() {
		return e
	}
	reduced, err := num.Mod(ctx.Policy(), k, num.Int(2))
	if err != nil {
		return e
	}
	return ctx.recomposePi(reduced, rest)
}

// decomposePi writes e as k·π + t via a recursive linear decomposition
// over Negate, Add, Multiply-by-literal, and Divide-by-literal. rest is
// nil when t is zero.
func (ctx *Context) decomposePi(e Expr) (k num.Value, rest Expr, ok bool) {
	switch e := e.(type) {
	case *Symbol:
		if e.Name() == "Pi" {
			return num.Int(1), nil, true
		}
		return num.Int(0), e, true
	case *Literal:
		return num.Int(0), e, true
	case *Function:
		switch e.Head() {
		case HeadNegate:
			if e.Arity() != 1 {
				return nil, nil, false
			}
			k, rest, ok := ctx.decomposePi(e.Op(0))
			if !ok {
				return nil, nil, false
			}
			if rest != nil {
				rest = ctx.Fn(HeadNegate, rest)
			}
			return num.Neg(k), rest, true
		case HeadAdd:
			k := num.Value(num.Int(0))
			var parts []Expr
			for _, op := range e.Ops() {
				opK, opRest, ok := ctx.decomposePi(op)
				if !ok {
					return nil, nil, false
				}
				k = num.Add(ctx.Policy(), k, opK)
				if opRest != nil {
					parts = append(parts, opRest)
				}
			}
			return k, addOf(ctx, parts), true
		case HeadMultiply:
			coeff := num.Value(num.Int(1))
			var others []Expr
			for _, op := range e.Ops() {
				if lit, isLit := op.(*Literal); isLit {
					coeff = num.Mul(ctx.Policy(), coeff, lit.Value())
				} else {
					others = append(others, op)
				}
			}
			if len(others) != 1 {
				return num.Int(0), e, true
			}
			innerK, innerRest, ok := ctx.decomposePi(others[0])
			if !ok {
				return nil, nil, false
			}
			if innerRest != nil {
				innerRest = ctx.Fn(HeadMultiply, ctx.Lit(coeff), innerRest)
			}
			return num.Mul(ctx.Policy(), coeff, innerK), innerRest, true
		case HeadDivide:
			if e.Arity() != 2 {
				return nil, nil, false
			}
			den, isLit := e.Op(1).(*Literal)
			if !isLit || den.Value().IsZero() {
				return num.Int(0), e, true
			}
			innerK, innerRest, ok := ctx.decomposePi(e.Op(0))
			if !ok {
				return nil, nil, false
			}
			q, err := num.Div(ctx.Policy(), innerK, den.Value())
			if err != nil {
				return nil, nil, false
			}
			if innerRest != nil {
				innerRest = ctx.Fn(HeadDivide, innerRest, den)
			}
			return q, innerRest, true
		}
		return num.Int(0), e, true
	default:
		return nil, nil, false
	}
}

func (ctx *Context) recomposePi(k num.Value, rest Expr) Expr {
	var piTerm Expr
	switch {
	case k.IsZero():
		piTerm = nil
	case num.Equal(k, num.Int(1)):
		piTerm = ctx.Sym("Pi")
	default:
		piTerm = ctx.Fn(HeadMultiply, ctx.Lit(k), ctx.Sym("Pi"))
	}
	switch {
	case piTerm == nil && rest == nil:
		return ctx.Int(0)
	case piTerm == nil:
		return rest
	case rest == nil:
		return piTerm
	default:
		return ctx.Fn(HeadAdd, piTerm, rest)
	}
}

// addOf builds an Add over parts, collapsing the empty and singleton
// cases. parts may be nil.
func addOf(ctx *Context, parts []Expr) Expr {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	default:
		return ctx.Fn(HeadAdd, parts...)
	}
}

// ImaginaryFactor extracts k from an expression proven to equal k·i,
// recursing through Negate, Multiply with an imaginary-unit or
// pure-imaginary operand, and Divide by a non-zero real denominator.
// ok=false means the expression is not of this form.
func (ctx *Context) ImaginaryFactor(e Expr) (Expr, bool) {
	switch e := e.(type) {
	case *Symbol:
		if e.Name() == "ImaginaryUnit" {
			return ctx.Int(1), true
		}
	case *Literal:
		if c, isCplx := e.Value().(num.Complex); isCplx && c.IsPurelyImaginary() {
			return ctx.Lit(c.Im()), true
		}
	case *Function:
		switch e.Head() {
		case HeadNegate:
			if e.Arity() != 1 {
				return nil, false
			}
			k, ok := ctx.ImaginaryFactor(e.Op(0))
			if !ok {
				return nil, false
			}
			return ctx.Fn(HeadNegate, k), true
		case HeadMultiply:
			// Exactly one operand may carry the imaginary unit; the
			// remaining product is the factor.
			factorAt := -1
			var factor Expr
			for i, op := range e.Ops() {
				var k Expr
				var carries bool
				if sym, isSym := op.(*Symbol); isSym && sym.Name() == "ImaginaryUnit" {
					k, carries = ctx.Int(1), true
				} else if lit, isLit := op.(*Literal); isLit {
					if c, isCplx := lit.Value().(num.Complex); isCplx && c.IsPurelyImaginary() {
						k, carries = ctx.Lit(c.Im()), true
					}
				}
				if carries {
					if factorAt >= 0 {
						return nil, false
					}
					factorAt, factor = i, k
				}
			}
			if factorAt < 0 {
				return nil, false
			}
			rest := make([]Expr, 0, len(e.Ops()))
			if lit, isLit := factor.(*Literal); !isLit || !num.Equal(lit.Value(), num.Int(1)) {
				rest = append(rest, factor)
			}
			for i, op := range e.Ops() {
				if i != factorAt {
					rest = append(rest, op)
				}
			}
			if len(rest) == 0 {
				return ctx.Int(1), true
			}
			if len(rest) == 1 {
				return rest[0], true
			}
			return ctx.Fn(HeadMultiply, rest...), true
		case HeadDivide:
			if e.Arity() != 2 {
				return nil, false
			}
			den := e.Op(1)
			if v, isNum := ctx.NumericValue(den); !isNum || !num.IsReal(v) || v.IsZero() {
				return nil, false
			}
			k, ok := ctx.ImaginaryFactor(e.Op(0))
			if !ok {
				return nil, false
			}
			return ctx.Fn(HeadDivide, k, den), true
		}
	}
	return nil, false
}
