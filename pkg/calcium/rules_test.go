package calcium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	ctx := NewContext()

	t.Run("variables bind positionally", func(t *testing.T) {
		pattern := ctx.Fn(HeadAdd, ctx.Sym("$x"), ctx.Int(1))
		subject := ctx.Fn(HeadAdd, ctx.Sym("y"), ctx.Int(1))
		subst, ok := Match(pattern, subject)
		require.True(t, ok)
		assert.True(t, subst["x"].StructuralEq(ctx.Sym("y")))
	})

	t.Run("repeated variables must agree", func(t *testing.T) {
		pattern := ctx.Fn(HeadMultiply, ctx.Sym("$x"), ctx.Sym("$x"))
		same := ctx.Fn(HeadMultiply, ctx.Sym("y"), ctx.Sym("y"))
		_, ok := Match(pattern, same)
		assert.True(t, ok)

		different := ctx.Fn(HeadMultiply, ctx.Sym("y"), ctx.Sym("z"))
		_, ok = Match(pattern, different)
		assert.False(t, ok)
	})

	t.Run("literal pattern parts must equal the subject", func(t *testing.T) {
		pattern := ctx.Fn(HeadAdd, ctx.Sym("$x"), ctx.Int(1))
		_, ok := Match(pattern, ctx.Fn(HeadAdd, ctx.Sym("y"), ctx.Int(2)))
		assert.False(t, ok)

		_, ok = Match(pattern, ctx.Fn(HeadMultiply, ctx.Sym("y"), ctx.Int(1)))
		assert.False(t, ok, "heads must match")
	})

	t.Run("a lone variable matches any subtree", func(t *testing.T) {
		whole := mustParse(t, ctx, "(a + b)^2")
		subst, ok := Match(ctx.Sym("$e"), whole)
		require.True(t, ok)
		assert.True(t, subst["e"].StructuralEq(whole))
	})
}

func TestSubstitute(t *testing.T) {
	ctx := NewContext()
	rhs := ctx.Fn(HeadAdd, ctx.Sym("$x"), ctx.Sym("$y"))

	out := Substitute(rhs, Substitution{"x": ctx.Int(1)})
	fn, ok := out.(*Function)
	require.True(t, ok)
	assert.True(t, fn.Op(0).StructuralEq(ctx.Int(1)))

	// Unbound variables stay in place so a later pass can still see them.
	unbound, ok := fn.Op(1).(*Symbol)
	require.True(t, ok)
	assert.True(t, unbound.IsPatternVariable())
}

func TestCompileRule(t *testing.T) {
	t.Run("free identifiers become variables, defined ones stay literal", func(t *testing.T) {
		ctx := NewContext()
		rule, err := ctx.CompileRule("f(x) + Pi -> g(x)")
		require.NoError(t, err)

		lhs, ok := rule.Pattern().(*Function)
		require.True(t, ok)
		require.Equal(t, HeadAdd, lhs.Head())
		pi, ok := lhs.Op(1).(*Symbol)
		require.True(t, ok)
		assert.False(t, pi.IsPatternVariable(), "Pi is defined and must stay literal")
	})

	t.Run("inferred definitions do not claim identifiers", func(t *testing.T) {
		ctx := NewContext(WithStrict(true))
		// Validating q + 1 infers a type for q; the name is still
		// free when a later rule mentions it.
		require.True(t, ctx.Fn(HeadAdd, ctx.Sym("q"), ctx.Int(1)).IsValid())
		def, ok := ctx.lookup("q")
		require.True(t, ok)
		require.True(t, def.Inferred())

		rule, err := ctx.CompileRule("q + 1 -> r")
		require.NoError(t, err)
		lhs := rule.Pattern().(*Function)
		q, ok := lhs.Op(0).(*Symbol)
		require.True(t, ok)
		assert.True(t, q.IsPatternVariable())
	})

	t.Run("a rule without an arrow fails to compile", func(t *testing.T) {
		ctx := NewContext()
		_, err := ctx.CompileRule("f(x) = g(x)")
		assert.Error(t, err)
	})

	t.Run("a rule with an unparsable side fails to compile", func(t *testing.T) {
		ctx := NewContext()
		_, err := ctx.CompileRule("f(x -> g(x)")
		assert.Error(t, err)
	})
}

func TestReplace(t *testing.T) {
	t.Run("no match returns the input untouched", func(t *testing.T) {
		ctx := NewContext()
		rs, err := ctx.CompileRuleSet("f(x) -> g(x)")
		require.NoError(t, err)
		in := mustParse(t, ctx, "h(a)")
		assert.Same(t, in, ctx.Replace(rs, in))
	})

	t.Run("the root driver rewrites the root only", func(t *testing.T) {
		ctx := NewContext()
		rs, err := ctx.CompileRuleSet("f(x) -> g(x)")
		require.NoError(t, err)

		out := ctx.Replace(rs, mustParse(t, ctx, "f(f(a))"))
		assert.True(t, out.StructuralEq(mustParse(t, ctx, "g(f(a))")),
			"inner f(a) is not the root and must survive")
	})

	t.Run("the root driver chains rules to fixpoint", func(t *testing.T) {
		ctx := NewContext()
		rs, err := ctx.CompileRuleSet("f(x) -> g(x)", "g(x) -> h(x)")
		require.NoError(t, err)

		out := ctx.Replace(rs, mustParse(t, ctx, "f(a)"))
		assert.True(t, out.StructuralEq(mustParse(t, ctx, "h(a)")))
	})

	t.Run("the tree driver rewrites every subtree", func(t *testing.T) {
		ctx := NewContext()
		rs, err := ctx.CompileRuleSet("f(x) -> g(x)")
		require.NoError(t, err)

		out := ctx.ReplaceAll(rs, mustParse(t, ctx, "f(f(a))"))
		assert.True(t, out.StructuralEq(mustParse(t, ctx, "g(g(a))")))
	})
}

func TestGuardedRules(t *testing.T) {
	t.Run("relational condition gates the rewrite", func(t *testing.T) {
		ctx := NewContext()
		rs, err := ctx.CompileRuleSet("abs(x) -> x ; GreaterEqual(x, 0)")
		require.NoError(t, err)

		out := ctx.Replace(rs, mustParse(t, ctx, "abs(3)"))
		assert.True(t, out.StructuralEq(ctx.Int(3)))

		negated := mustParse(t, ctx, "abs(-3)")
		assert.Same(t, negated, ctx.Replace(rs, negated),
			"a false condition must block the rewrite")
	})

	t.Run("an undecidable condition blocks the rewrite", func(t *testing.T) {
		ctx := NewContext()
		rs, err := ctx.CompileRuleSet("abs(x) -> x ; GreaterEqual(x, 0)")
		require.NoError(t, err)

		symbolic := mustParse(t, ctx, "abs(y)")
		assert.Same(t, symbolic, ctx.Replace(rs, symbolic))
	})

	t.Run("numeric conditions read as truth values", func(t *testing.T) {
		ctx := NewContext()
		rs, err := ctx.CompileRuleSet("gate(c, x) -> x ; c")
		require.NoError(t, err)

		out := ctx.Replace(rs, mustParse(t, ctx, "gate(1, a)"))
		assert.True(t, out.StructuralEq(ctx.Sym("a")))

		zero := mustParse(t, ctx, "gate(0, a)")
		assert.Same(t, zero, ctx.Replace(rs, zero))
	})

	t.Run("programmatic guards see the bindings", func(t *testing.T) {
		ctx := NewContext()
		seen := map[string]bool{}
		rule := NewRule(
			ctx.Fn("f", ctx.Sym("$x")),
			ctx.Sym("$x"),
			func(_ *Context, subst Substitution) bool {
				for name := range subst {
					seen[name] = true
				}
				return false
			},
		)
		in := mustParse(t, ctx, "f(a)")
		_, ok := ctx.ApplyRule(rule, in)
		assert.False(t, ok)
		assert.True(t, seen["x"])
	})
}
