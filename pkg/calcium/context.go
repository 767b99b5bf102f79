package calcium

import (
	"fmt"
	"math/big"

	"github.com/calcium-lang/calcium/pkg/num"
)

// AngleUnit selects how bare angle quantities are interpreted before
// canonicalization to radians.
type AngleUnit string

const (
	Radians  AngleUnit = "radians"
	Degrees  AngleUnit = "degrees"
	Gradians AngleUnit = "gradians"
	Turns    AngleUnit = "turns"
)

// Simplifier is the boundary with the external arithmetic simplifier.
// Expand hands Add nodes to it; the default implementation only
// flattens, folds literals, and collects like terms, which is enough for
// deterministic expansion output.
type Simplifier func(ctx *Context, e Expr) Expr

// Context owns everything an expression needs to exist: the definitions
// table, the intern arena, numeric policy, strictness, and the angular
// unit. Expressions hold a shared back-reference to their context and
// live as long as it does.
//
// A context is not safe for concurrent mutation; callers running
// multiple goroutines over one context must serialize externally.
type Context struct {
	precision uint
	strict    bool
	angle     AngleUnit

	defs     map[string]*Definition
	symbols  map[string]*Symbol
	interned map[string]Expr
	nextID   uint32

	// pascal is the incrementally extended Pascal's-triangle table
	// backing multinomial coefficients. It lives as long as the
	// context.
	pascal [][]*big.Int

	simplify Simplifier
}

// Option configures a Context at construction.
type Option func(*Context)

// WithPrecision sets the decimal precision for approximate arithmetic.
// Above num.MachineDigits, computation routes through big floats.
func WithPrecision(digits uint) Option {
	return func(ctx *Context) { ctx.precision = digits }
}

// WithStrict enables strict validation: arity padding, per-operand type
// checking, and inference commits.
func WithStrict(strict bool) Option {
	return func(ctx *Context) { ctx.strict = strict }
}

// WithAngleUnit sets the angular unit for angle canonicalization.
func WithAngleUnit(u AngleUnit) Option {
	return func(ctx *Context) { ctx.angle = u }
}

// WithSimplifier replaces the arithmetic simplifier collaborator.
func WithSimplifier(s Simplifier) Option {
	return func(ctx *Context) { ctx.simplify = s }
}

// NewContext creates a context with the built-in definitions installed.
func NewContext(opts ...Option) *Context {
	ctx := &Context{
		precision: num.MachineDigits,
		angle:     Radians,
		defs:      map[string]*Definition{},
		symbols:   map[string]*Symbol{},
		interned:  map[string]Expr{},
		simplify:  defaultSimplifier,
	}
	for _, opt := range opts {
		opt(ctx)
	}
	ctx.installBuiltins()
	return ctx
}

func (ctx *Context) Precision() uint      { return ctx.precision }
func (ctx *Context) Strict() bool         { return ctx.strict }
func (ctx *Context) AngleUnit() AngleUnit { return ctx.angle }

// Policy is the numeric policy derived from the context's precision.
func (ctx *Context) Policy() num.Policy { return num.Policy{Digits: ctx.precision} }

// piDigits is π to 80 decimal digits, parsed at the context's precision
// when the constant's numeric value is needed.
const piDigits = "3.1415926535897932384626433832795028841971693993751058209749445923078164062862090"

func (ctx *Context) installBuiltins() {
	must := func(_ *Definition, err error) {
		if err != nil {
			panic(err)
		}
	}

	must(ctx.DefineSymbol("Pi", SymbolSpec{
		Constant: true,
		Type:     TypeReal,
		Value: func(p num.Policy) num.Value {
			f, err := num.RealFromString(piDigits, p)
			if err != nil {
				panic(err)
			}
			if !p.Bignum() {
				v, _ := num.Float64(f)
				return num.Machine(v)
			}
			return f
		},
	}))
	must(ctx.DefineSymbol("ImaginaryUnit", SymbolSpec{
		Constant: true,
		Type:     TypeComplex,
		Value:    func(num.Policy) num.Value { return num.I },
	}))
	must(ctx.DefineSymbol("True", SymbolSpec{
		Constant: true,
		Type:     TypeBoolean,
		Value:    func(num.Policy) num.Value { return num.Int(1) },
	}))
	must(ctx.DefineSymbol("False", SymbolSpec{
		Constant: true,
		Type:     TypeBoolean,
		Value:    func(num.Policy) num.Value { return num.Int(0) },
	}))

	numT := TypeNumber
	must(ctx.DefineFunction(HeadAdd, FuncSpec{
		Signature:  Signature{Rest: &numT},
		Complexity: 1100,
		Result:     TypeNumber,
		Evaluate:   foldVariadic(num.Add),
	}))
	must(ctx.DefineFunction(HeadMultiply, FuncSpec{
		Signature:  Signature{Rest: &numT},
		Complexity: 2100,
		Result:     TypeNumber,
		Evaluate:   foldVariadic(num.Mul),
	}))
	must(ctx.DefineFunction(HeadNegate, FuncSpec{
		Signature:    Signature{Required: []Type{TypeNumber}},
		Complexity:   1000,
		Result:       TypeNumber,
		Canonicalize: canonicalNegate,
		Evaluate: func(ctx *Context, ops []Expr) (num.Value, bool) {
			v, ok := ctx.NumericValue(ops[0])
			if !ok {
				return nil, false
			}
			return num.Neg(v), true
		},
	}))
	must(ctx.DefineFunction(HeadDivide, FuncSpec{
		Signature:  Signature{Required: []Type{TypeNumber, TypeNumber}},
		Complexity: 3000,
		Result:     TypeNumber,
		Evaluate: func(ctx *Context, ops []Expr) (num.Value, bool) {
			a, ok := ctx.NumericValue(ops[0])
			if !ok {
				return nil, false
			}
			b, ok := ctx.NumericValue(ops[1])
			if !ok {
				return nil, false
			}
			q, err := num.Div(ctx.Policy(), a, b)
			if err != nil {
				return nil, false
			}
			return q, true
		},
	}))
	must(ctx.DefineFunction(HeadPower, FuncSpec{
		Signature:  Signature{Required: []Type{TypeNumber, TypeNumber}},
		Complexity: 3500,
		Result:     TypeNumber,
		Evaluate: func(ctx *Context, ops []Expr) (num.Value, bool) {
			base, ok := ctx.NumericValue(ops[0])
			if !ok {
				return nil, false
			}
			exp, ok := ctx.NumericValue(ops[1])
			if !ok {
				return nil, false
			}
			r, ok := exp.(num.Rational)
			if !ok {
				return nil, false
			}
			n, ok := r.Int64()
			if !ok {
				return nil, false
			}
			v, err := num.PowInt(ctx.Policy(), base, n)
			if err != nil {
				return nil, false
			}
			return v, true
		},
	}))
	must(ctx.DefineFunction(HeadHold, FuncSpec{
		Signature:  Signature{Required: []Type{TypeUnknown}},
		Complexity: 9000,
		Impure:     true,
		Lazy:       true,
	}))
	anyT := TypeUnknown
	must(ctx.DefineFunction(HeadSequence, FuncSpec{
		Signature:  Signature{Rest: &anyT},
		Complexity: 9100,
	}))
	must(ctx.DefineFunction(HeadList, FuncSpec{
		Signature:  Signature{Rest: &anyT},
		Complexity: 8000,
		Result:     TypeCollection,
	}))

	for i, head := range []string{HeadEqual, HeadLess, HeadLessEqual, HeadGreater, HeadGreaterEqual} {
		must(ctx.DefineFunction(head, FuncSpec{
			Signature:  Signature{Required: []Type{TypeUnknown, TypeUnknown}},
			Complexity: 5000 + i,
			Result:     TypeBoolean,
		}))
	}
}

func foldVariadic(op func(num.Policy, num.Value, num.Value) num.Value) func(*Context, []Expr) (num.Value, bool) {
	return func(ctx *Context, ops []Expr) (num.Value, bool) {
		if len(ops) == 0 {
			return nil, false
		}
		acc, ok := ctx.NumericValue(ops[0])
		if !ok {
			return nil, false
		}
		for _, operand := range ops[1:] {
			v, ok := ctx.NumericValue(operand)
			if !ok {
				return nil, false
			}
			acc = op(ctx.Policy(), acc, v)
		}
		return acc, true
	}
}

func canonicalNegate(ctx *Context, ops []Expr) Expr {
	if len(ops) != 1 {
		return nil
	}
	switch op := ops[0].(type) {
	case *Literal:
		return ctx.Lit(num.Neg(op.Value()))
	case *Function:
		if op.Head() == HeadNegate && op.Arity() == 1 {
			return op.Op(0)
		}
	}
	return nil
}

// Sym returns the interned symbol for a name.
func (ctx *Context) Sym(name string) *Symbol {
	if s, ok := ctx.symbols[name]; ok {
		return s
	}
	ctx.nextID++
	s := &Symbol{ctx: ctx, name: name, id: ctx.nextID}
	ctx.symbols[name] = s
	return s
}

// Lit boxes a numeric value. The intern key uses the lossless form:
// display rendering rounds to the working digits, so two distinct big
// floats can print identically.
func (ctx *Context) Lit(v num.Value) *Literal {
	key := "n:" + v.Kind().String() + ":" + num.Exact(v)
	if e, ok := ctx.interned[key]; ok {
		return e.(*Literal)
	}
	ctx.nextID++
	l := &Literal{ctx: ctx, val: v, id: ctx.nextID}
	ctx.interned[key] = l
	return l
}

// Int boxes an exact integer.
func (ctx *Context) Int(n int64) *Literal { return ctx.Lit(num.Int(n)) }

// Frac boxes an exact rational p/q.
func (ctx *Context) Frac(p, q int64) *Literal { return ctx.Lit(num.Frac(p, q)) }

// Fn constructs a canonical function application. Operands that are
// already canonical are used as-is (the fast path rewrite loops depend
// on); everything else is canonicalized first. Nested applications of
// associative heads and Sequence operands are spliced flat.
func (ctx *Context) Fn(head string, ops ...Expr) Expr {
	boxed := ops
	copied := false
	for i, op := range ops {
		if op == nil {
			panic(fmt.Sprintf("calcium: nil operand %d of %s", i, head))
		}
		if !op.IsCanonical() {
			// Copy-on-write: the common case is all-canonical and
			// allocates nothing.
			if !copied {
				boxed = append([]Expr(nil), ops...)
				copied = true
			}
			boxed[i] = op.Canonical()
		}
	}
	boxed = flatten(head, boxed)

	def, defined := ctx.lookup(head)
	if ctx.strict && defined {
		// Strict construction validates before boxing: operands are
		// checked against the head's signature and error nodes embed
		// at the offending positions.
		boxed = ctx.CheckSignature(def, boxed)
	}

	if defined && def.canonicalize != nil {
		if replaced := def.canonicalize(ctx, boxed); replaced != nil {
			return replaced
		}
	}

	f := &Function{
		ctx:       ctx,
		head:      head,
		ops:       boxed,
		canonical: true,
		valid:     allValid(boxed),
	}
	if !f.valid {
		// Invalid trees are not interned; they exist to carry their
		// error nodes to a diagnostic.
		return f
	}
	key := internKey(f)
	if e, ok := ctx.interned[key]; ok {
		return e
	}
	ctx.nextID++
	f.id = ctx.nextID
	ctx.interned[key] = f
	return f
}

// flatten splices Sequence operands into any head and same-head operands
// into associative heads.
func flatten(head string, ops []Expr) []Expr {
	needed := false
	for _, op := range ops {
		if f, ok := op.(*Function); ok {
			if f.head == HeadSequence || (associativeHeads[head] && f.head == head) {
				needed = true
				break
			}
		}
	}
	if !needed {
		return ops
	}
	out := make([]Expr, 0, len(ops)+4)
	for _, op := range ops {
		if f, ok := op.(*Function); ok {
			if f.head == HeadSequence || (associativeHeads[head] && f.head == head) {
				out = append(out, flatten(head, f.ops)...)
				continue
			}
		}
		out = append(out, op)
	}
	return out
}

// internKey builds the arena key for a canonical function node from its
// head and the intern handles of its children.
func internKey(f *Function) string {
	key := "f:" + f.head + "("
	for i, op := range f.ops {
		if i > 0 {
			key += ","
		}
		id := op.internID()
		if id == 0 {
			// Non-interned child (foreign context); fall back to its
			// serialized form.
			key += op.String()
		} else {
			key += fmt.Sprint(id)
		}
	}
	return key + ")"
}

// NumericValue reduces an expression to a numeric value when it is a
// literal, a constant symbol, or an application whose definition can
// evaluate fully-numeric operands. Reduction failing is a normal
// outcome, not an error.
func (ctx *Context) NumericValue(e Expr) (num.Value, bool) {
	switch e := e.(type) {
	case *Literal:
		return e.Value(), true
	case *Symbol:
		if def, ok := ctx.lookup(e.Name()); ok && def.constant && def.value != nil {
			return def.value(ctx.Policy()), true
		}
		return nil, false
	case *Function:
		def, ok := ctx.lookup(e.Head())
		if !ok || def.evaluate == nil {
			return nil, false
		}
		return def.evaluate(ctx, e.Ops())
	default:
		return nil, false
	}
}

// binomial returns C(n, k), extending the context's Pascal's-triangle
// table as needed. Rows are built once and reused for the lifetime of
// the context.
func (ctx *Context) binomial(n, k int) *big.Int {
	if k < 0 || k > n {
		return big.NewInt(0)
	}
	for len(ctx.pascal) <= n {
		r := len(ctx.pascal)
		row := make([]*big.Int, r+1)
		row[0] = big.NewInt(1)
		row[r] = big.NewInt(1)
		for i := 1; i < r; i++ {
			row[i] = new(big.Int).Add(ctx.pascal[r-1][i-1], ctx.pascal[r-1][i])
		}
		ctx.pascal = append(ctx.pascal, row)
	}
	return ctx.pascal[n][k]
}
