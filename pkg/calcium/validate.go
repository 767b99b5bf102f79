package calcium

// The validator turns arity and type violations into error expression
// nodes at the exact operand position where they occurred. It is also
// the only writer of inferred definition types: a group of operands that
// validates cleanly commits its deferred inferences all at once, so a
// partially-invalid expression never corrupts definition metadata.

// pendingInference is a deferred type commit, applied only when the
// whole operand group validated.
type pendingInference struct {
	name string
	typ  Type
}

func (ctx *Context) commitInferences(pending []pendingInference) {
	for _, p := range pending {
		def, ok := ctx.lookup(p.name)
		if !ok {
			var err error
			def, err = ctx.DefineSymbol(p.name, SymbolSpec{})
			if err != nil {
				continue
			}
		}
		def.inferType(p.typ)
	}
}

// CheckArity checks an operand list against an expected count. Sequence
// operands are spliced first. Non-strict mode passes the flattened
// operands through unchanged; strict mode pads missing operands with
// "missing" error nodes at the tail and flags operands beyond the count
// as "unexpected-argument" in place.
func (ctx *Context) CheckArity(ops []Expr, count int) []Expr {
	ops = flatten("", ops)
	if !ctx.strict {
		return ops
	}
	out := append([]Expr(nil), ops...)
	for i := count; i < len(out); i++ {
		out[i] = ctx.errUnexpected(out[i])
	}
	for len(out) < count {
		out = append(out, ctx.errMissing())
	}
	return out
}

// CheckNumericArgs validates that every operand in a group is numeric.
//
// Non-strict mode is optimistic: every operand is inferred real unless
// any operand is a complex literal, in which case the group is inferred
// to be a general number; no error nodes are produced. Strict mode
// classifies each operand and defers inference for operands whose type
// is not yet known; the deferred inferences commit only if the whole
// group validated.
func (ctx *Context) CheckNumericArgs(ops []Expr) []Expr {
	ops = flatten("", ops)

	groupType := TypeReal
	for _, op := range ops {
		if lit, ok := op.(*Literal); ok && lit.Type() == TypeComplex {
			groupType = TypeNumber
		}
	}

	if !ctx.strict {
		var pending []pendingInference
		for _, op := range ops {
			if sym, ok := op.(*Symbol); ok && !sym.Type().Concrete() {
				pending = append(pending, pendingInference{sym.Name(), groupType})
			}
		}
		ctx.commitInferences(pending)
		return ops
	}

	out := append([]Expr(nil), ops...)
	var pending []pendingInference
	clean := true
	for i, op := range ops {
		checked, deferred, ok := ctx.checkOperand(op, groupType)
		if !ok {
			out[i] = checked
			clean = false
			continue
		}
		pending = append(pending, deferred...)
	}
	if clean {
		ctx.commitInferences(pending)
	}
	return out
}

// checkOperand classifies one operand against a wanted type, in the
// fixed precedence: already invalid; already numeric/compatible;
// unresolved or unknown-typed, deferred; all-numeric collection,
// threaded through; Hold-wrapped, kept verbatim; otherwise a mismatch.
// ok=false means the returned expression is an error node (or the
// operand's own error).
func (ctx *Context) checkOperand(op Expr, want Type) (Expr, []pendingInference, bool) {
	if !op.IsValid() {
		return op, nil, false
	}

	if t := op.Type(); t.Concrete() && t.Compatible(want) {
		return op, nil, true
	}

	switch op := op.(type) {
	case *Symbol:
		if op.IsPatternVariable() {
			// Pattern variables stand for whole subtrees; nothing to
			// check or infer.
			return op, nil, true
		}
		// Unresolved or not-yet-concrete symbols are assumed to fit
		// and inferred later. Inferring "unknown" records nothing.
		if !op.Type().Concrete() {
			if want.Concrete() {
				return op, []pendingInference{{op.Name(), want}}, true
			}
			return op, nil, true
		}
	case *Function:
		if op.Head() == HeadHold {
			// Held expressions are kept verbatim, never type-checked.
			return op, nil, true
		}
		if op.Head() == HeadList && want.Numeric() {
			// Threaded application: each element is checked
			// independently, and the collection contributes nothing
			// to inference.
			if allOpsNumeric(op.Ops()) {
				return op, nil, true
			}
		}
		def, defined := ctx.lookup(op.Head())
		if !defined || def.kind != defFunction {
			// Open-ended heads have no definition to check or narrow.
			return op, nil, true
		}
		if !def.typ.Concrete() {
			// Unknown-typed applications are assumed to fit; a clean
			// group narrows the head's definition.
			if want.Concrete() {
				return op, []pendingInference{{op.Head(), want}}, true
			}
			return op, nil, true
		}
	}
	return ctx.errTypeMismatch(op, want, op.Type()), nil, false
}

func allOpsNumeric(ops []Expr) bool {
	for _, op := range ops {
		if !op.Type().Numeric() {
			return false
		}
	}
	return true
}

// CheckSignature validates operands against a function definition's
// signature: required, then optional, then rest parameters. Lazy
// definitions pass every operand through unchecked. An operand position
// beyond all declared parameters becomes an unexpected-argument error;
// type inference commits only when the whole signature validated.
func (ctx *Context) CheckSignature(def *Definition, ops []Expr) []Expr {
	if def == nil || def.kind != defFunction || def.lazy {
		return ops
	}
	ops = flatten("", ops)
	sig := def.sig

	out := append([]Expr(nil), ops...)
	var pending []pendingInference
	clean := true
	for i, op := range ops {
		var want Type
		switch {
		case i < len(sig.Required):
			want = sig.Required[i]
		case i < len(sig.Required)+len(sig.Optional):
			want = sig.Optional[i-len(sig.Required)]
		case sig.Rest != nil:
			want = *sig.Rest
		default:
			out[i] = ctx.errUnexpected(op)
			clean = false
			continue
		}
		checked, deferred, ok := ctx.checkOperand(op, want)
		if !ok {
			out[i] = checked
			clean = false
			continue
		}
		pending = append(pending, deferred...)
	}
	for i := len(ops); i < len(sig.Required); i++ {
		out = append(out, ctx.errMissing())
		clean = false
	}
	if clean {
		ctx.commitInferences(pending)
	}
	return out
}

// CheckType canonicalizes one operand and gates it on a type. On
// mismatch the error node carries both sides and the offending operand.
func (ctx *Context) CheckType(op Expr, want Type) Expr {
	op = op.Canonical()
	if !op.IsValid() {
		return op
	}
	if op.Type().Compatible(want) {
		return op
	}
	return ctx.errTypeMismatch(op, want, op.Type())
}

// CheckPure gates an operand on purity: no head anywhere in the tree may
// be marked impure.
func (ctx *Context) CheckPure(op Expr) Expr {
	if ctx.isPure(op) {
		return op
	}
	return ctx.errExpectedPure(op)
}

func (ctx *Context) isPure(e Expr) bool {
	f, ok := e.(*Function)
	if !ok {
		return true
	}
	if def, ok := ctx.lookup(f.Head()); ok && def.kind == defFunction && def.impure {
		return false
	}
	for _, op := range f.Ops() {
		if !ctx.isPure(op) {
			return false
		}
	}
	return true
}
