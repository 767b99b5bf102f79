package num

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactness(t *testing.T) {
	p := Policy{Digits: MachineDigits}

	t.Run("rational addition stays exact", func(t *testing.T) {
		sum := Add(p, Frac(1, 3), Frac(1, 6))
		r, ok := sum.(Rational)
		require.True(t, ok, "sum of rationals must be rational")
		assert.Equal(t, "1/2", r.String())
	})

	t.Run("non-terminating division stays exact", func(t *testing.T) {
		q, err := Div(p, Int(1), Int(3))
		require.NoError(t, err)
		r, ok := q.(Rational)
		require.True(t, ok, "1/3 must not fall into a float lane")
		assert.Equal(t, "1/3", r.String())
	})

	t.Run("floating operand forces the approximate lane", func(t *testing.T) {
		f, err := RealFromString("0.5", Policy{Digits: 40})
		require.NoError(t, err)
		sum := Add(Policy{Digits: 40}, f, Frac(1, 2))
		require.IsType(t, Floating{}, sum)
		assert.True(t, sum.IsInteger())
	})

	t.Run("machine mix under machine policy", func(t *testing.T) {
		sum := Add(p, Machine(0.5), Frac(1, 2))
		require.IsType(t, Machine(0), sum)
		f, ok := Float64(sum)
		require.True(t, ok)
		assert.Equal(t, 1.0, f)
	})

	t.Run("bignum-preferred policy widens machine operands", func(t *testing.T) {
		sum := Add(Policy{Digits: 50}, Machine(0.5), Frac(1, 2))
		require.IsType(t, Floating{}, sum)
	})
}

func TestExactForm(t *testing.T) {
	p := Policy{Digits: MachineDigits}

	t.Run("distinguishes floats that render identically", func(t *testing.T) {
		one := Real(big.NewFloat(1), p)
		nudged := Real(new(big.Float).SetPrec(64).
			Add(big.NewFloat(1), new(big.Float).SetMantExp(big.NewFloat(1), -49)), p)

		require.Equal(t, one.String(), nudged.String())
		assert.NotEqual(t, Exact(one), Exact(nudged))
	})

	t.Run("exact kinds keep their display form", func(t *testing.T) {
		assert.Equal(t, "2/3", Exact(Frac(2, 3)))
		assert.Equal(t, Machine(0.5).String(), Exact(Machine(0.5)))
	})

	t.Run("complex values key both parts", func(t *testing.T) {
		assert.NotEqual(t, Exact(Cplx(Int(1), Int(2))), Exact(Cplx(Int(2), Int(1))))
	})
}

func TestArithmetic(t *testing.T) {
	p := Policy{Digits: MachineDigits}

	t.Run("negate", func(t *testing.T) {
		assert.True(t, Equal(Neg(Frac(2, 3)), Frac(-2, 3)))
		assert.True(t, Equal(Neg(Neg(Int(7))), Int(7)))
	})

	t.Run("subtract", func(t *testing.T) {
		assert.True(t, Equal(Sub(p, Int(5), Frac(1, 2)), Frac(9, 2)))
	})

	t.Run("division by zero", func(t *testing.T) {
		_, err := Div(p, Int(1), Int(0))
		require.Error(t, err)
	})

	t.Run("modulo", func(t *testing.T) {
		m, err := Mod(p, Frac(5, 2), Int(2))
		require.NoError(t, err)
		assert.True(t, Equal(m, Frac(1, 2)))

		m, err = Mod(p, Int(-3), Int(2))
		require.NoError(t, err)
		assert.True(t, Equal(m, Int(1)), "modulo follows the divisor's sign")
	})

	t.Run("floor", func(t *testing.T) {
		assert.True(t, Equal(Floor(Frac(7, 2)), Int(3)))
		assert.True(t, Equal(Floor(Frac(-7, 2)), Int(-4)))
		assert.True(t, Equal(Floor(Int(4)), Int(4)))
	})

	t.Run("integer powers stay exact", func(t *testing.T) {
		v, err := PowInt(p, Frac(2, 3), 3)
		require.NoError(t, err)
		assert.True(t, Equal(v, Frac(8, 27)))

		v, err = PowInt(p, Int(2), -2)
		require.NoError(t, err)
		assert.True(t, Equal(v, Frac(1, 4)))
	})

	t.Run("big rational promotion is transparent", func(t *testing.T) {
		huge, err := PowInt(p, Int(10), 40)
		require.NoError(t, err)
		r, ok := huge.(Rational)
		require.True(t, ok)
		want := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)
		assert.Zero(t, r.Num().Cmp(want))
	})
}

func TestComparison(t *testing.T) {
	t.Run("totality over reals", func(t *testing.T) {
		c, ok := Cmp(Frac(1, 2), Machine(0.75))
		require.True(t, ok)
		assert.Equal(t, -1, c)

		c, ok = Cmp(Int(3), Frac(6, 2))
		require.True(t, ok)
		assert.Equal(t, 0, c)
	})

	t.Run("complex values are incomparable", func(t *testing.T) {
		_, ok := Cmp(I, Int(0))
		assert.False(t, ok)
	})

	t.Run("equality across representations", func(t *testing.T) {
		assert.True(t, Equal(Frac(1, 2), Machine(0.5)))
		assert.True(t, Equal(Cplx(Int(1), Int(0)), Int(1)))
		assert.False(t, Equal(I, Int(1)))
	})
}

func TestComplex(t *testing.T) {
	p := Policy{Digits: MachineDigits}

	t.Run("purely imaginary predicate", func(t *testing.T) {
		assert.True(t, I.IsPurelyImaginary())
		assert.True(t, Cplx(Int(0), Frac(-3, 2)).IsPurelyImaginary())
		assert.False(t, Cplx(Int(1), Int(1)).IsPurelyImaginary())
		assert.False(t, Cplx(Int(0), Int(0)).IsPurelyImaginary())
	})

	t.Run("i squared", func(t *testing.T) {
		sq := Mul(p, I, I)
		assert.True(t, Equal(sq, Int(-1)))
	})

	t.Run("complex division", func(t *testing.T) {
		// (1+i)/(1-i) = i
		q, err := Div(p, Cplx(Int(1), Int(1)), Cplx(Int(1), Int(-1)))
		require.NoError(t, err)
		assert.True(t, Equal(q, I))
	})

	t.Run("real projection", func(t *testing.T) {
		r, ok := RealPart(Cplx(Frac(3, 4), Int(0)))
		require.True(t, ok)
		assert.True(t, Equal(r, Frac(3, 4)))

		_, ok = RealPart(I)
		assert.False(t, ok)
	})
}

func TestConversions(t *testing.T) {
	t.Run("float64 round trip", func(t *testing.T) {
		f, ok := Float64(Frac(1, 4))
		require.True(t, ok)
		assert.Equal(t, 0.25, f)

		_, ok = Float64(I)
		assert.False(t, ok)
	})

	t.Run("from float64 honors the policy", func(t *testing.T) {
		assert.IsType(t, Machine(0), FromFloat64(Policy{Digits: MachineDigits}, 1.5))
		assert.IsType(t, Floating{}, FromFloat64(Policy{Digits: 30}, 1.5))
	})
}
