package calcium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcium-lang/calcium/pkg/num"
)

func errorCodeAt(ops []Expr, i int) (ErrorCode, bool) {
	e, ok := ops[i].(*ErrorExpr)
	if !ok {
		return "", false
	}
	return e.Code(), true
}

func TestCheckArity(t *testing.T) {
	t.Run("short list pads missing at the tail", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		a := ctx.Sym("a")

		out := ctx.CheckArity([]Expr{a}, 3)
		require.Len(t, out, 3)
		assert.Same(t, a, out[0])
		for i := 1; i < 3; i++ {
			code, isErr := errorCodeAt(out, i)
			require.True(t, isErr)
			assert.Equal(t, ErrMissing, code)
		}
	})

	t.Run("long list flags excess in place", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		a, b, c := ctx.Sym("a"), ctx.Sym("b"), ctx.Sym("c")

		out := ctx.CheckArity([]Expr{a, b, c}, 1)
		require.Len(t, out, 3)
		assert.Same(t, a, out[0])
		for i := 1; i < 3; i++ {
			code, isErr := errorCodeAt(out, i)
			require.True(t, isErr)
			assert.Equal(t, ErrUnexpectedArgument, code)
		}
	})

	t.Run("non-strict passes operands through", func(t *testing.T) {
		ctx := NewContext()
		a := ctx.Sym("a")
		out := ctx.CheckArity([]Expr{a}, 3)
		require.Len(t, out, 1)
		assert.Same(t, a, out[0])
	})

	t.Run("sequences are spliced before counting", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		a, b := ctx.Sym("a"), ctx.Sym("b")
		out := ctx.CheckArity([]Expr{ctx.Fn(HeadSequence, a, b)}, 2)
		require.Len(t, out, 2)
		assert.Same(t, a, out[0])
		assert.Same(t, b, out[1])
	})
}

func TestCheckNumericArgs(t *testing.T) {
	t.Run("literal and constant in strict mode", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		out := ctx.CheckNumericArgs([]Expr{ctx.Int(7), ctx.Sym("Pi")})
		require.Len(t, out, 2)
		for i, op := range out {
			require.True(t, op.IsValid(), "operand %d must not be an error node", i)
			assert.True(t, op.Type().Compatible(TypeReal), "operand %d is real-typed", i)
		}
	})

	t.Run("undefined symbols are inferred on clean commit", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		out := ctx.CheckNumericArgs([]Expr{ctx.Sym("u"), ctx.Int(1)})
		require.True(t, allValid(out))

		def, ok := ctx.lookup("u")
		require.True(t, ok, "a definition is created by the inference commit")
		assert.Equal(t, TypeReal, def.Type())
		assert.True(t, def.Inferred())
	})

	t.Run("complex literal widens the group to number", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		out := ctx.CheckNumericArgs([]Expr{ctx.Sym("v"), ctx.Lit(num.I)})
		require.True(t, allValid(out))

		def, ok := ctx.lookup("v")
		require.True(t, ok)
		assert.Equal(t, TypeNumber, def.Type())
	})

	t.Run("commit is all-or-nothing", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		_, err := ctx.DefineSymbol("flag", SymbolSpec{Type: TypeBoolean})
		require.NoError(t, err)

		out := ctx.CheckNumericArgs([]Expr{ctx.Sym("w"), ctx.Sym("flag")})
		code, isErr := errorCodeAt(out, 1)
		require.True(t, isErr)
		assert.Equal(t, ErrTypeMismatch, code)

		_, defined := ctx.lookup("w")
		assert.False(t, defined, "a failed group must not touch definition metadata")
	})

	t.Run("unknown-typed applications narrow their head", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		_, err := ctx.DefineFunction("f", FuncSpec{
			Signature: Signature{Required: []Type{TypeUnknown}},
		})
		require.NoError(t, err)

		out := ctx.CheckNumericArgs([]Expr{ctx.Fn("f", ctx.Sym("y")), ctx.Int(1)})
		require.True(t, allValid(out))

		def, ok := ctx.lookup("f")
		require.True(t, ok)
		assert.Equal(t, TypeReal, def.Type())
		assert.True(t, def.Inferred())
	})

	t.Run("undefined heads pass without narrowing anything", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		out := ctx.CheckNumericArgs([]Expr{ctx.Fn("g", ctx.Sym("y")), ctx.Int(1)})
		require.True(t, allValid(out))

		_, defined := ctx.lookup("g")
		assert.False(t, defined, "no definition exists for the validator to narrow")
	})

	t.Run("held expressions pass verbatim", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		held := ctx.Fn(HeadHold, ctx.Sym("flag2"))
		out := ctx.CheckNumericArgs([]Expr{held, ctx.Int(1)})
		require.True(t, allValid(out))
		assert.Same(t, held, out[0])
	})

	t.Run("all-numeric collections thread through", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		list := ctx.Fn(HeadList, ctx.Int(1), ctx.Frac(1, 2))
		out := ctx.CheckNumericArgs([]Expr{list, ctx.Int(3)})
		require.True(t, allValid(out))
	})

	t.Run("non-strict is optimistic and error-free", func(t *testing.T) {
		ctx := NewContext()
		_, err := ctx.DefineSymbol("flag", SymbolSpec{Type: TypeBoolean})
		require.NoError(t, err)
		out := ctx.CheckNumericArgs([]Expr{ctx.Sym("flag"), ctx.Int(1)})
		assert.True(t, allValid(out), "non-strict mode never produces error nodes")
	})
}

func TestCheckSignature(t *testing.T) {
	newCtx := func(t *testing.T) (*Context, *Definition) {
		t.Helper()
		ctx := NewContext(WithStrict(true))
		intT := TypeInteger
		def, err := ctx.DefineFunction("clamp", FuncSpec{
			Signature: Signature{
				Required: []Type{TypeReal, TypeReal},
				Optional: []Type{TypeBoolean},
			},
			Result: TypeReal,
		})
		require.NoError(t, err)
		_, err = ctx.DefineFunction("sum_of", FuncSpec{
			Signature: Signature{Rest: &intT},
		})
		require.NoError(t, err)
		return ctx, def
	}

	t.Run("required, optional, and excess", func(t *testing.T) {
		ctx, def := newCtx(t)
		out := ctx.CheckSignature(def, []Expr{
			ctx.Int(1), ctx.Frac(1, 2), ctx.Sym("True"), ctx.Sym("extra"),
		})
		require.Len(t, out, 4)
		assert.True(t, out[0].IsValid())
		assert.True(t, out[1].IsValid())
		assert.True(t, out[2].IsValid())
		code, isErr := errorCodeAt(out, 3)
		require.True(t, isErr)
		assert.Equal(t, ErrUnexpectedArgument, code)
	})

	t.Run("missing required operands pad the tail", func(t *testing.T) {
		ctx, def := newCtx(t)
		out := ctx.CheckSignature(def, []Expr{ctx.Int(1)})
		require.Len(t, out, 2)
		code, isErr := errorCodeAt(out, 1)
		require.True(t, isErr)
		assert.Equal(t, ErrMissing, code)
	})

	t.Run("rest parameter absorbs the remainder", func(t *testing.T) {
		ctx, _ := newCtx(t)
		def, ok := ctx.lookup("sum_of")
		require.True(t, ok)
		out := ctx.CheckSignature(def, []Expr{ctx.Int(1), ctx.Int(2), ctx.Int(3)})
		assert.True(t, allValid(out))
	})

	t.Run("lazy definitions pass operands unchecked", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		def, ok := ctx.lookup(HeadHold)
		require.True(t, ok)
		flag := ctx.Sym("someFlag")
		out := ctx.CheckSignature(def, []Expr{flag, flag, flag})
		require.Len(t, out, 3)
		assert.True(t, allValid(out))
	})

	t.Run("mismatch carries both types", func(t *testing.T) {
		ctx, def := newCtx(t)
		_, err := ctx.DefineSymbol("flag", SymbolSpec{Type: TypeBoolean})
		require.NoError(t, err)
		out := ctx.CheckSignature(def, []Expr{ctx.Sym("flag"), ctx.Int(1)})
		errNode, isErr := out[0].(*ErrorExpr)
		require.True(t, isErr)
		assert.Equal(t, ErrTypeMismatch, errNode.Code())
		assert.Equal(t, TypeReal, errNode.Expected)
		assert.Equal(t, TypeBoolean, errNode.Actual)
	})
}

func TestStrictConstruction(t *testing.T) {
	t.Run("missing required operands invalidate the tree", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		x := ctx.Sym("x")

		e := ctx.Fn(HeadDivide, x)
		require.False(t, e.IsValid())

		f, ok := e.(*Function)
		require.True(t, ok)
		require.Equal(t, 2, f.Arity())
		assert.Same(t, x, f.Op(0))
		code, isErr := errorCodeAt(f.Ops(), 1)
		require.True(t, isErr)
		assert.Equal(t, ErrMissing, code)
	})

	t.Run("excess operands are flagged in place", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		e := ctx.Fn(HeadNegate, ctx.Sym("a"), ctx.Sym("b"))
		require.False(t, e.IsValid())

		f := e.(*Function)
		require.Equal(t, 2, f.Arity())
		assert.True(t, f.Op(0).IsValid())
		code, isErr := errorCodeAt(f.Ops(), 1)
		require.True(t, isErr)
		assert.Equal(t, ErrUnexpectedArgument, code)
	})

	t.Run("type mismatch embeds at the operand position", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		e := ctx.Fn(HeadDivide, ctx.Sym("True"), ctx.Int(2))
		require.False(t, e.IsValid())

		f := e.(*Function)
		errNode, isErr := f.Op(0).(*ErrorExpr)
		require.True(t, isErr)
		assert.Equal(t, ErrTypeMismatch, errNode.Code())
		assert.Equal(t, TypeNumber, errNode.Expected)
		assert.Equal(t, TypeBoolean, errNode.Actual)
		assert.True(t, f.Op(1).IsValid())
	})

	t.Run("clean construction commits inference", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		e := ctx.Fn(HeadDivide, ctx.Sym("n"), ctx.Int(2))
		require.True(t, e.IsValid())

		def, ok := ctx.lookup("n")
		require.True(t, ok)
		assert.Equal(t, TypeNumber, def.Type())
		assert.True(t, def.Inferred())
	})

	t.Run("undefined heads stay open", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		e := ctx.Fn("f", ctx.Sym("x"))
		assert.True(t, e.IsValid())
	})

	t.Run("non-strict construction stays permissive", func(t *testing.T) {
		ctx := NewContext()
		e := ctx.Fn(HeadDivide, ctx.Sym("x"))
		require.True(t, e.IsValid())
		assert.Equal(t, 1, e.(*Function).Arity())
	})
}

func TestCheckTypeAndPurity(t *testing.T) {
	t.Run("checkType gates on compatibility", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		assert.True(t, ctx.CheckType(ctx.Int(1), TypeReal).IsValid())

		out := ctx.CheckType(ctx.Sym("True"), TypeReal)
		errNode, isErr := out.(*ErrorExpr)
		require.True(t, isErr)
		assert.Equal(t, ErrTypeMismatch, errNode.Code())
	})

	t.Run("checkPure rejects impure heads anywhere", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		pure := ctx.Fn(HeadAdd, ctx.Sym("x"), ctx.Int(1))
		assert.True(t, ctx.CheckPure(pure).IsValid())

		impure := ctx.Fn(HeadAdd, ctx.Fn(HeadHold, ctx.Sym("x")), ctx.Int(1))
		out := ctx.CheckPure(impure)
		errNode, isErr := out.(*ErrorExpr)
		require.True(t, isErr)
		assert.Equal(t, ErrExpectedPure, errNode.Code())
	})
}
