package num

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
)

// lane is the representation a mixed-kind computation resolves to.
type lane int

const (
	laneRational lane = iota
	laneMachine
	laneFloating
	laneComplex
)

// laneOf picks the result representation for a pair of operands under a
// policy. Two exact rationals never leave the exact lane; any floating
// operand forces arbitrary precision; otherwise the policy decides
// between machine and bignum ("bignum-preferred").
func laneOf(p Policy, a, b Value) lane {
	if a.Kind() == KindComplex || b.Kind() == KindComplex {
		return laneComplex
	}
	if a.Kind() == KindRational && b.Kind() == KindRational {
		return laneRational
	}
	if a.Kind() == KindFloating || b.Kind() == KindFloating || p.Bignum() {
		return laneFloating
	}
	return laneMachine
}

func toBigFloat(v Value, p Policy) *big.Float {
	switch v := v.(type) {
	case Rational:
		return new(big.Float).SetPrec(p.bits()).SetRat(v.rat)
	case Floating:
		return new(big.Float).SetPrec(p.bits()).Set(v.f)
	case Machine:
		return new(big.Float).SetPrec(p.bits()).SetFloat64(float64(v))
	default:
		panic("num: toBigFloat on complex value")
	}
}

func toMachine(v Value) float64 {
	switch v := v.(type) {
	case Rational:
		f, _ := v.rat.Float64()
		return f
	case Floating:
		f, _ := v.f.Float64()
		return f
	case Machine:
		return float64(v)
	default:
		panic("num: toMachine on complex value")
	}
}

func asComplex(v Value) Complex {
	if c, ok := v.(Complex); ok {
		return c
	}
	return Complex{re: v, im: Int(0)}
}

// Add returns a+b in the lane selected by the policy.
func Add(p Policy, a, b Value) Value {
	switch laneOf(p, a, b) {
	case laneRational:
		return Rational{rat: new(big.Rat).Add(a.(Rational).rat, b.(Rational).rat)}
	case laneFloating:
		return Floating{f: new(big.Float).Add(toBigFloat(a, p), toBigFloat(b, p)), digits: p.Digits}
	case laneMachine:
		return Machine(toMachine(a) + toMachine(b))
	default:
		ca, cb := asComplex(a), asComplex(b)
		return Complex{re: Add(p, ca.re, cb.re), im: Add(p, ca.im, cb.im)}
	}
}

// Sub returns a-b.
func Sub(p Policy, a, b Value) Value { return Add(p, a, Neg(b)) }

// Neg returns -v, staying in v's representation.
func Neg(v Value) Value {
	switch v := v.(type) {
	case Rational:
		return Rational{rat: new(big.Rat).Neg(v.rat)}
	case Floating:
		return Floating{f: new(big.Float).Neg(v.f), digits: v.digits}
	case Machine:
		return Machine(-float64(v))
	default:
		c := v.(Complex)
		return Complex{re: Neg(c.re), im: Neg(c.im)}
	}
}

// Mul returns a*b in the lane selected by the policy.
func Mul(p Policy, a, b Value) Value {
	switch laneOf(p, a, b) {
	case laneRational:
		return Rational{rat: new(big.Rat).Mul(a.(Rational).rat, b.(Rational).rat)}
	case laneFloating:
		return Floating{f: new(big.Float).Mul(toBigFloat(a, p), toBigFloat(b, p)), digits: p.Digits}
	case laneMachine:
		return Machine(toMachine(a) * toMachine(b))
	default:
		ca, cb := asComplex(a), asComplex(b)
		// (ar+ai·i)(br+bi·i) = (ar·br − ai·bi) + (ar·bi + ai·br)i
		re := Sub(p, Mul(p, ca.re, cb.re), Mul(p, ca.im, cb.im))
		im := Add(p, Mul(p, ca.re, cb.im), Mul(p, ca.im, cb.re))
		return Complex{re: re, im: im}
	}
}

// Div returns a/b. Division of one exact rational by another stays exact;
// non-terminating decimals are never forced into a float.
func Div(p Policy, a, b Value) (Value, error) {
	if b.IsZero() {
		return nil, errors.New("division by zero")
	}
	switch laneOf(p, a, b) {
	case laneRational:
		return Rational{rat: new(big.Rat).Quo(a.(Rational).rat, b.(Rational).rat)}, nil
	case laneFloating:
		return Floating{f: new(big.Float).Quo(toBigFloat(a, p), toBigFloat(b, p)), digits: p.Digits}, nil
	case laneMachine:
		return Machine(toMachine(a) / toMachine(b)), nil
	default:
		ca, cb := asComplex(a), asComplex(b)
		// a/b = a·conj(b) / |b|²
		den := Add(p, Mul(p, cb.re, cb.re), Mul(p, cb.im, cb.im))
		re := Add(p, Mul(p, ca.re, cb.re), Mul(p, ca.im, cb.im))
		im := Sub(p, Mul(p, ca.im, cb.re), Mul(p, ca.re, cb.im))
		reQ, err := Div(p, re, den)
		if err != nil {
			return nil, err
		}
		imQ, err := Div(p, im, den)
		if err != nil {
			return nil, err
		}
		return Complex{re: reQ, im: imQ}, nil
	}
}

// Mod returns a - b*floor(a/b) for real operands.
func Mod(p Policy, a, b Value) (Value, error) {
	if !IsReal(a) || !IsReal(b) {
		return nil, errors.New("modulo of complex value")
	}
	if b.IsZero() {
		return nil, errors.New("modulo by zero")
	}
	q, err := Div(p, a, b)
	if err != nil {
		return nil, err
	}
	return Sub(p, a, Mul(p, b, Floor(q))), nil
}

// Floor rounds toward negative infinity, staying exact for rationals.
func Floor(v Value) Value {
	switch v := v.(type) {
	case Rational:
		q := new(big.Int).Quo(v.rat.Num(), v.rat.Denom())
		if v.rat.Sign() < 0 && !v.rat.IsInt() {
			q.Sub(q, big.NewInt(1))
		}
		return Rational{rat: new(big.Rat).SetInt(q)}
	case Floating:
		i, _ := v.f.Int(nil)
		if v.f.Sign() < 0 && !v.f.IsInt() {
			i.Sub(i, big.NewInt(1))
		}
		f := new(big.Float).SetPrec(v.f.Prec()).SetInt(i)
		return Floating{f: f, digits: v.digits}
	case Machine:
		return Machine(math.Floor(float64(v)))
	default:
		panic("num: Floor on complex value")
	}
}

// PowInt raises v to an integer power, staying exact for rationals.
// n must be >= 0 unless v is non-zero.
func PowInt(p Policy, v Value, n int64) (Value, error) {
	if n < 0 {
		inv, err := Div(p, Int(1), v)
		if err != nil {
			return nil, err
		}
		return PowInt(p, inv, -n)
	}
	acc := Value(Int(1))
	base := v
	for n > 0 {
		if n&1 == 1 {
			acc = Mul(p, acc, base)
		}
		base = Mul(p, base, base)
		n >>= 1
	}
	return acc, nil
}

// Cmp compares two values three-way. Values with a non-zero imaginary
// part are incomparable and report ok=false.
func Cmp(a, b Value) (int, bool) {
	ra, ok := RealPart(a)
	if !ok {
		return 0, false
	}
	rb, ok := RealPart(b)
	if !ok {
		return 0, false
	}
	if x, ok := ra.(Rational); ok {
		if y, ok := rb.(Rational); ok {
			return x.rat.Cmp(y.rat), true
		}
	}
	// Mixed kinds compare through big.Float at a precision generous
	// enough to cover both operands.
	p := Policy{Digits: MachineDigits}
	if f, ok := ra.(Floating); ok && f.digits > p.Digits {
		p.Digits = f.digits
	}
	if f, ok := rb.(Floating); ok && f.digits > p.Digits {
		p.Digits = f.digits
	}
	return toBigFloat(ra, p).Cmp(toBigFloat(rb, p)), true
}

// Equal reports exact numeric equality, treating representations of the
// same value as equal (e.g. Rational 1/2 and Machine 0.5).
func Equal(a, b Value) bool {
	if ca, ok := a.(Complex); ok {
		cb := asComplex(b)
		return Equal(ca.re, cb.re) && Equal(ca.im, cb.im)
	}
	if cb, ok := b.(Complex); ok {
		return Equal(asComplex(a), cb)
	}
	c, ok := Cmp(a, b)
	return ok && c == 0
}

// Float64 converts to a machine float, reporting ok=false for values with
// a non-zero imaginary part.
func Float64(v Value) (float64, bool) {
	r, ok := RealPart(v)
	if !ok {
		return 0, false
	}
	return toMachine(r), true
}

// FromFloat64 boxes a machine float. Under a bignum policy the value is
// widened so later arithmetic keeps the configured precision.
func FromFloat64(p Policy, f float64) Value {
	if p.Bignum() {
		return Floating{f: new(big.Float).SetPrec(p.bits()).SetFloat64(f), digits: p.Digits}
	}
	return Machine(f)
}
