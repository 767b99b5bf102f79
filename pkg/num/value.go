// Package num implements the numeric tower backing the expression kernel:
// exact rationals, arbitrary-precision reals, machine floats, and complex
// values built from the real kinds.
//
// Exactness is the load-bearing invariant: arithmetic between two exact
// rationals always yields an exact rational, and a value only enters the
// approximate lane when an operand is already approximate. Which
// approximate lane is used (machine float64 vs big.Float) is decided by a
// Policy, not by the values themselves.
package num

import (
	"fmt"
	"math"
	"math/big"
)

// Kind discriminates the closed set of value representations.
type Kind int

const (
	KindRational Kind = iota
	KindFloating
	KindMachine
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindRational:
		return "rational"
	case KindFloating:
		return "floating"
	case KindMachine:
		return "machine"
	case KindComplex:
		return "complex"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MachineDigits is the number of significant decimal digits a float64
// carries. A Policy asking for more than this routes computation through
// big.Float.
const MachineDigits = 15

// Policy selects the approximate lane for a computation. It is owned by
// the context that owns the values, never by a value.
type Policy struct {
	// Digits is the requested decimal precision for approximate results.
	Digits uint
}

// Bignum reports whether approximate arithmetic under this policy must use
// arbitrary precision.
func (p Policy) Bignum() bool { return p.Digits > MachineDigits }

// bits converts decimal digits to big.Float mantissa bits.
func (p Policy) bits() uint {
	d := p.Digits
	if d == 0 {
		d = MachineDigits
	}
	return uint(math.Ceil(float64(d)*math.Log2(10))) + 2
}

// Value is the closed union of numeric representations. The only
// implementations are Rational, Floating, Machine, and Complex.
type Value interface {
	Kind() Kind
	IsZero() bool
	IsInteger() bool
	fmt.Stringer

	sealed()
}

// Rational is an exact rational number. The underlying big.Rat is always
// reduced with a positive denominator; big.Rat maintains both invariants
// and promotes machine-range components to big integers transparently.
type Rational struct {
	rat *big.Rat
}

var _ Value = Rational{}

// Int returns the exact integer n.
func Int(n int64) Rational { return Rational{rat: new(big.Rat).SetInt64(n)} }

// Frac returns the exact rational p/q. q must be non-zero.
func Frac(p, q int64) Rational {
	if q == 0 {
		panic("num: zero denominator")
	}
	return Rational{rat: new(big.Rat).SetFrac64(p, q)}
}

// RatFromBig wraps a big.Rat, copying it.
func RatFromBig(r *big.Rat) Rational { return Rational{rat: new(big.Rat).Set(r)} }

func (r Rational) Kind() Kind      { return KindRational }
func (r Rational) IsZero() bool    { return r.rat.Sign() == 0 }
func (r Rational) IsInteger() bool { return r.rat.IsInt() }
func (r Rational) Sign() int       { return r.rat.Sign() }
func (r Rational) sealed()         {}

// Rat returns a copy of the underlying big.Rat.
func (r Rational) Rat() *big.Rat { return new(big.Rat).Set(r.rat) }

// Num and Denom expose the reduced numerator and denominator.
func (r Rational) Num() *big.Int   { return new(big.Int).Set(r.rat.Num()) }
func (r Rational) Denom() *big.Int { return new(big.Int).Set(r.rat.Denom()) }

// Int64 returns the value as an int64 when it is an integer in range.
func (r Rational) Int64() (int64, bool) {
	if !r.rat.IsInt() || !r.rat.Num().IsInt64() {
		return 0, false
	}
	return r.rat.Num().Int64(), true
}

func (r Rational) String() string {
	if r.rat.IsInt() {
		return r.rat.Num().String()
	}
	return r.rat.RatString()
}

// Floating is an arbitrary-precision real together with the decimal
// precision it was computed at.
type Floating struct {
	f      *big.Float
	digits uint
}

var _ Value = Floating{}

// Real returns an arbitrary-precision real at the policy's precision.
func Real(f *big.Float, p Policy) Floating {
	cp := new(big.Float).SetPrec(p.bits()).Set(f)
	return Floating{f: cp, digits: p.Digits}
}

// RealFromString parses a decimal literal at the policy's precision.
func RealFromString(s string, p Policy) (Floating, error) {
	f, _, err := big.ParseFloat(s, 10, p.bits(), big.ToNearestEven)
	if err != nil {
		return Floating{}, err
	}
	return Floating{f: f, digits: p.Digits}, nil
}

func (f Floating) Kind() Kind      { return KindFloating }
func (f Floating) IsZero() bool    { return f.f.Sign() == 0 }
func (f Floating) IsInteger() bool { return f.f.IsInt() }
func (f Floating) Sign() int       { return f.f.Sign() }
func (f Floating) Digits() uint    { return f.digits }
func (f Floating) sealed()         {}

// Float returns a copy of the underlying big.Float.
func (f Floating) Float() *big.Float { return new(big.Float).Copy(f.f) }

func (f Floating) String() string {
	d := f.digits
	if d == 0 {
		d = MachineDigits
	}
	return f.f.Text('g', int(d))
}

// Machine is a float64.
type Machine float64

var _ Value = Machine(0)

func (m Machine) Kind() Kind      { return KindMachine }
func (m Machine) IsZero() bool    { return float64(m) == 0 }
func (m Machine) IsInteger() bool { return float64(m) == math.Trunc(float64(m)) }
func (m Machine) String() string  { return fmt.Sprintf("%g", float64(m)) }
func (m Machine) sealed()         {}

func (m Machine) Sign() int {
	switch {
	case float64(m) > 0:
		return 1
	case float64(m) < 0:
		return -1
	default:
		return 0
	}
}

// Complex is a complex value whose parts are each one of the real kinds.
type Complex struct {
	re, im Value
}

var _ Value = Complex{}

// Cplx builds a complex value from real parts. Both must be real kinds.
func Cplx(re, im Value) Complex {
	if re.Kind() == KindComplex || im.Kind() == KindComplex {
		panic("num: complex parts must be real kinds")
	}
	return Complex{re: re, im: im}
}

// I is the imaginary unit.
var I = Complex{re: Int(0), im: Int(1)}

func (c Complex) Kind() Kind   { return KindComplex }
func (c Complex) IsZero() bool { return c.re.IsZero() && c.im.IsZero() }
func (c Complex) IsInteger() bool {
	return c.im.IsZero() && c.re.IsInteger()
}
func (c Complex) Re() Value { return c.re }
func (c Complex) Im() Value { return c.im }
func (c Complex) sealed()   {}

// IsPurelyImaginary reports whether the value is k*i with k != 0.
func (c Complex) IsPurelyImaginary() bool {
	return c.re.IsZero() && !c.im.IsZero()
}

func (c Complex) String() string {
	if c.im.IsZero() {
		return c.re.String()
	}
	if c.re.IsZero() {
		return c.im.String() + "i"
	}
	return fmt.Sprintf("(%s+%si)", c.re, c.im)
}

// Exact returns a lossless textual form of v. String rounds big floats
// to their working digits, so two distinct values can render the same
// string; keys and interning must use this form instead.
func Exact(v Value) string {
	switch v := v.(type) {
	case Floating:
		return v.f.Text('p', 0)
	case Complex:
		return Exact(v.re) + "+" + Exact(v.im) + "i"
	default:
		return v.String()
	}
}

// IsReal reports whether v is one of the real kinds, or a complex value
// with zero imaginary part.
func IsReal(v Value) bool {
	c, ok := v.(Complex)
	return !ok || c.im.IsZero()
}

// RealPart projects v onto the reals. Complex values with a non-zero
// imaginary part report ok=false.
func RealPart(v Value) (Value, bool) {
	c, ok := v.(Complex)
	if !ok {
		return v, true
	}
	if !c.im.IsZero() {
		return nil, false
	}
	return c.re, true
}
