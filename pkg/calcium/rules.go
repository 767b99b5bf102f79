package calcium

import (
	"strings"

	"github.com/pkg/errors"
)

// Guard decides whether a successful match may rewrite, given the
// rewriting context and the variable bindings.
type Guard func(*Context, Substitution) bool

// Rule pairs a left-hand pattern with a right-hand replacement and an
// optional guard. Rules are compiled once and immutable; termination of
// a rule set is the author's responsibility.
type Rule struct {
	lhs   Expr
	rhs   Expr
	guard Guard
}

// NewRule builds a rule from pre-built pattern and replacement
// expressions. Pattern variables are symbols carrying the internal
// marker; use CompileRule for the textual form.
func NewRule(lhs, rhs Expr, guard Guard) *Rule {
	return &Rule{lhs: lhs, rhs: rhs, guard: guard}
}

func (r *Rule) Pattern() Expr     { return r.lhs }
func (r *Rule) Replacement() Expr { return r.rhs }

// CompileRule compiles "pattern -> replacement" with an optional
// "; condition" suffix. Ordinary identifiers without a definition in
// the context are the rule's free variables; they are remapped onto
// internal pattern-variable markers on all three parts, so authors
// write plain names. The condition is compiled once and evaluated per
// match by substituting the bindings and testing truth.
func (ctx *Context) CompileRule(text string) (*Rule, error) {
	var condText string
	if i := strings.Index(text, ";"); i >= 0 {
		text, condText = text[:i], strings.TrimSpace(text[i+1:])
	}
	lhsText, rhsText, found := strings.Cut(text, "->")
	if !found {
		return nil, errors.Errorf("calcium: rule %q has no \"->\"", text)
	}
	lhs, err := ctx.Parse(strings.TrimSpace(lhsText))
	if err != nil {
		return nil, errors.Wrap(err, "rule pattern")
	}
	rhs, err := ctx.Parse(strings.TrimSpace(rhsText))
	if err != nil {
		return nil, errors.Wrap(err, "rule replacement")
	}
	lhs = ctx.markPatternVariables(lhs)
	rhs = ctx.markPatternVariables(rhs)

	var guard Guard
	if condText != "" {
		cond, err := ctx.Parse(condText)
		if err != nil {
			return nil, errors.Wrap(err, "rule condition")
		}
		cond = ctx.markPatternVariables(cond)
		guard = func(ctx *Context, subst Substitution) bool {
			return ctx.truth(Substitute(cond, subst)) == True
		}
	}
	return &Rule{lhs: lhs, rhs: rhs, guard: guard}, nil
}

// markPatternVariables remaps free identifiers onto pattern-variable
// markers. A name is free when it has no declared definition; a type
// inferred in passing does not claim the name for the context.
func (ctx *Context) markPatternVariables(e Expr) Expr {
	switch e := e.(type) {
	case *Symbol:
		if e.IsPatternVariable() {
			return e
		}
		if def, defined := ctx.lookup(e.Name()); defined && !def.inferred {
			return e
		}
		return ctx.Sym(patternPrefix + e.Name())
	case *Function:
		ops := make([]Expr, len(e.Ops()))
		for i, op := range e.Ops() {
			ops[i] = ctx.markPatternVariables(op)
		}
		return ctx.Fn(e.Head(), ops...)
	default:
		return e
	}
}

// truth evaluates a closed expression to a ternary truth value:
// the True/False symbols, non-zero numeric values, and relational
// applications over comparable sides.
func (ctx *Context) truth(e Expr) Ternary {
	if sym, ok := e.(*Symbol); ok {
		switch sym.Name() {
		case "True":
			return True
		case "False":
			return False
		}
	}
	if f, ok := e.(*Function); ok && relationalHeads[f.Head()] && f.Arity() == 2 {
		switch f.Head() {
		case HeadEqual:
			return ctx.Equal(f.Op(0), f.Op(1))
		case HeadLess:
			return ctx.Less(f.Op(0), f.Op(1))
		case HeadLessEqual:
			return ctx.LessEqual(f.Op(0), f.Op(1))
		case HeadGreater:
			return ctx.Greater(f.Op(0), f.Op(1))
		case HeadGreaterEqual:
			return ctx.GreaterEqual(f.Op(0), f.Op(1))
		}
	}
	if v, ok := ctx.NumericValue(e); ok {
		if v.IsZero() {
			return False
		}
		return True
	}
	return Undefined
}

// ApplyRule attempts one rule at the root of an expression. On a match
// whose guard holds, the replacement is rebuilt with the bindings
// substituted; otherwise ok=false and the input is returned unchanged.
func (ctx *Context) ApplyRule(rule *Rule, e Expr) (Expr, bool) {
	subst, ok := Match(rule.lhs, e)
	if !ok {
		return e, false
	}
	if rule.guard != nil && !rule.guard(ctx, subst) {
		return e, false
	}
	return Substitute(rule.rhs, subst), true
}

// RuleSet is an insertion-ordered collection of rules, built once and
// reused across rewrites.
type RuleSet struct {
	rules []*Rule
}

func NewRuleSet(rules ...*Rule) *RuleSet {
	return &RuleSet{rules: append([]*Rule(nil), rules...)}
}

// CompileRuleSet compiles a list of textual rules in order.
func (ctx *Context) CompileRuleSet(texts ...string) (*RuleSet, error) {
	rs := &RuleSet{rules: make([]*Rule, 0, len(texts))}
	for _, t := range texts {
		r, err := ctx.CompileRule(t)
		if err != nil {
			return nil, err
		}
		rs.rules = append(rs.rules, r)
	}
	return rs, nil
}

func (rs *RuleSet) Len() int { return len(rs.rules) }

// Replace rewrites the root of an expression to fixpoint. Rules are
// scanned in insertion order against the current root only; the first
// match rewrites and the scan restarts, until a full pass changes
// nothing. Rules meant to act on subexpressions must recurse themselves
// (see ReplaceAll). The driver does not bound iterations or detect
// cycles; termination is the rule author's contract.
func (ctx *Context) Replace(rs *RuleSet, e Expr) Expr {
	for {
		changed := false
		for _, rule := range rs.rules {
			next, ok := ctx.ApplyRule(rule, e)
			if ok && !next.StructuralEq(e) {
				e = next
				changed = true
				break
			}
		}
		if !changed {
			return e
		}
	}
}

// maxReplaceAllPasses bounds the tree-wide driver. Root-only Replace is
// deliberately unbounded to preserve its caller contract; the recursive
// driver gets a safety cap because a single misfiring rule multiplies
// across every subtree.
const maxReplaceAllPasses = 256

// ReplaceAll rewrites bottom-up across the whole tree, re-running until
// a pass changes nothing or the pass cap is hit.
func (ctx *Context) ReplaceAll(rs *RuleSet, e Expr) Expr {
	for range maxReplaceAllPasses {
		next := ctx.replaceRec(rs, e)
		if next.StructuralEq(e) {
			return next
		}
		e = next
	}
	return e
}

func (ctx *Context) replaceRec(rs *RuleSet, e Expr) Expr {
	if f, ok := e.(*Function); ok {
		changed := false
		ops := make([]Expr, len(f.Ops()))
		for i, op := range f.Ops() {
			ops[i] = ctx.replaceRec(rs, op)
			if ops[i] != op {
				changed = true
			}
		}
		if changed {
			e = ctx.Fn(f.Head(), ops...)
		}
	}
	for _, rule := range rs.rules {
		if next, ok := ctx.ApplyRule(rule, e); ok {
			return next
		}
	}
	return e
}
