package calcium

import "github.com/calcium-lang/calcium/pkg/num"

// patternPrefix marks internal pattern-variable symbols. Rule authors
// never write it: the rule compiler remaps ordinary identifiers onto
// marked symbols.
const patternPrefix = "$"

// Substitution maps pattern-variable names (without the marker) to the
// subexpressions they matched.
type Substitution map[string]Expr

// Match structurally unifies a pattern against a subject. Pattern
// variables bind to the subexpression at their position; a repeated
// variable must bind to structurally equal subexpressions. Literal
// symbols, heads, and numeric literals in the pattern must equal the
// subject's. A failed match reports ok=false with a nil substitution.
func Match(pattern, subject Expr) (Substitution, bool) {
	subst := Substitution{}
	if !matchInto(pattern, subject, subst) {
		return nil, false
	}
	return subst, true
}

func matchInto(pattern, subject Expr, subst Substitution) bool {
	switch pattern := pattern.(type) {
	case *Symbol:
		if pattern.IsPatternVariable() {
			name := pattern.Name()[len(patternPrefix):]
			if bound, ok := subst[name]; ok {
				return bound.StructuralEq(subject)
			}
			subst[name] = subject
			return true
		}
		sym, ok := subject.(*Symbol)
		return ok && sym.Name() == pattern.Name()
	case *Literal:
		lit, ok := subject.(*Literal)
		return ok && num.Equal(pattern.Value(), lit.Value())
	case *Function:
		fn, ok := subject.(*Function)
		if !ok || fn.Head() != pattern.Head() || fn.Arity() != pattern.Arity() {
			return false
		}
		for i := range pattern.Ops() {
			if !matchInto(pattern.Op(i), fn.Op(i), subst) {
				return false
			}
		}
		return true
	default:
		return pattern.StructuralEq(subject)
	}
}

// Substitute rebuilds an expression with every bound pattern variable
// replaced by its binding, recursively. Unbound pattern variables are
// left in place.
func Substitute(e Expr, subst Substitution) Expr {
	switch e := e.(type) {
	case *Symbol:
		if e.IsPatternVariable() {
			if bound, ok := subst[e.Name()[len(patternPrefix):]]; ok {
				return bound
			}
		}
		return e
	case *Function:
		changed := false
		ops := make([]Expr, len(e.Ops()))
		for i, op := range e.Ops() {
			ops[i] = Substitute(op, subst)
			if ops[i] != op {
				changed = true
			}
		}
		if !changed {
			return e
		}
		return e.Context().Fn(e.Head(), ops...)
	default:
		return e
	}
}
