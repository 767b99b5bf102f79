package calcium

import (
	"github.com/pkg/errors"

	"github.com/calcium-lang/calcium/pkg/num"
)

// defKind discriminates the two definition variants. The variant is
// decided at construction and never changes; there is no field-presence
// probing anywhere downstream.
type defKind int

const (
	defSymbol defKind = iota
	defFunction
)

// Signature is a function definition's declared parameters: required
// first, then optional, then an optional rest parameter absorbing any
// remaining operands.
type Signature struct {
	Required []Type
	Optional []Type
	Rest     *Type
}

// Max returns the maximum operand count, or -1 when a rest parameter
// makes the signature open-ended.
func (s Signature) Max() int {
	if s.Rest != nil {
		return -1
	}
	return len(s.Required) + len(s.Optional)
}

// SymbolSpec describes a symbol definition at registration time.
type SymbolSpec struct {
	// Value is the symbol's value, when it has one. For constants it
	// is consulted by canonical comparison.
	Value func(num.Policy) num.Value

	Constant bool
	Type     Type

	// Even and Odd are parity flags. Setting one clears the other;
	// asking for both at once is a malformed record.
	Even bool
	Odd  bool
}

// FuncSpec describes a function definition at registration time.
type FuncSpec struct {
	Signature Signature

	// Complexity orders function applications canonically. Lower
	// sorts first.
	Complexity int

	// Impure marks heads whose evaluation is not referentially
	// transparent (Hold, random sources). The zero value is pure.
	Impure bool

	// Lazy heads have their operands passed through signature
	// validation unchecked, for deferred evaluation.
	Lazy bool

	// Canonicalize, when set, may replace the whole application during
	// construction, after flattening. Returning nil keeps the default
	// construction.
	Canonicalize func(*Context, []Expr) Expr

	// Evaluate, when set, folds an application to a value.
	Evaluate func(*Context, []Expr) (num.Value, bool)

	Result Type
}

// Definition is the closed tagged union over symbol and function
// metadata. Mutation happens on exactly one path: committing an
// inferred type narrows typ from Unknown to a concrete type once.
type Definition struct {
	kind defKind
	name string

	// typ starts as declared (possibly Unknown) and is narrowed at
	// most once by inference.
	typ      Type
	inferred bool

	// symbol variant
	value    func(num.Policy) num.Value
	constant bool
	even     bool
	odd      bool

	// function variant
	sig          Signature
	complexity   int
	impure       bool
	lazy         bool
	canonicalize func(*Context, []Expr) Expr
	evaluate     func(*Context, []Expr) (num.Value, bool)
}

func (d *Definition) Name() string     { return d.name }
func (d *Definition) Type() Type       { return d.typ }
func (d *Definition) IsConstant() bool { return d.kind == defSymbol && d.constant }
func (d *Definition) IsFunction() bool { return d.kind == defFunction }

// Inferred reports whether the current type came from inference rather
// than declaration.
func (d *Definition) Inferred() bool { return d.inferred }

// inferType commits an inferred type. The transition is monotonic:
// once a definition's type is concrete it never changes again.
func (d *Definition) inferType(t Type) {
	if d.typ.Concrete() {
		return
	}
	d.typ = t
	d.inferred = true
}

// DefineSymbol registers a symbol definition. Malformed records are
// programming errors and fail hard at registration, unlike expression
// validation which always degrades to error nodes.
func (ctx *Context) DefineSymbol(name string, spec SymbolSpec) (*Definition, error) {
	if name == "" {
		return nil, errors.New("calcium: symbol definition needs a name")
	}
	if _, exists := ctx.defs[name]; exists {
		return nil, errors.Errorf("calcium: %q is already defined", name)
	}
	if spec.Even && spec.Odd {
		// Parity flags are mutually exclusive; the later one wins
		// when set through normalization, but declaring both at once
		// is a malformed record.
		return nil, errors.Errorf("calcium: %q declares both even and odd parity", name)
	}
	if spec.Constant && spec.Value == nil {
		return nil, errors.Errorf("calcium: constant %q has no value", name)
	}
	def := &Definition{
		kind:     defSymbol,
		name:     name,
		typ:      spec.Type,
		value:    spec.Value,
		constant: spec.Constant,
		even:     spec.Even,
		odd:      spec.Odd,
	}
	ctx.defs[name] = def
	return def, nil
}

// SetParity flips a symbol definition's parity flags. Setting one
// clears the other.
func (d *Definition) SetParity(even, odd bool) error {
	if d.kind != defSymbol {
		return errors.Errorf("calcium: %q is not a symbol definition", d.name)
	}
	if even && odd {
		return errors.Errorf("calcium: %q cannot be both even and odd", d.name)
	}
	switch {
	case even:
		d.even, d.odd = true, false
	case odd:
		d.even, d.odd = false, true
	default:
		d.even, d.odd = false, false
	}
	return nil
}

// DefineFunction registers a function definition, validating the
// signature shape at registration time.
func (ctx *Context) DefineFunction(name string, spec FuncSpec) (*Definition, error) {
	if name == "" {
		return nil, errors.New("calcium: function definition needs a name")
	}
	if _, exists := ctx.defs[name]; exists {
		return nil, errors.Errorf("calcium: %q is already defined", name)
	}
	for i, t := range spec.Signature.Required {
		if t == TypeError {
			return nil, errors.Errorf("calcium: %q required parameter %d has error type", name, i)
		}
	}
	for i, t := range spec.Signature.Optional {
		if t == TypeError {
			return nil, errors.Errorf("calcium: %q optional parameter %d has error type", name, i)
		}
	}
	if spec.Signature.Rest != nil && *spec.Signature.Rest == TypeError {
		return nil, errors.Errorf("calcium: %q rest parameter has error type", name)
	}
	def := &Definition{
		kind:         defFunction,
		name:         name,
		typ:          spec.Result,
		sig:          spec.Signature,
		complexity:   spec.Complexity,
		impure:       spec.Impure,
		lazy:         spec.Lazy,
		canonicalize: spec.Canonicalize,
		evaluate:     spec.Evaluate,
	}
	ctx.defs[name] = def
	return def, nil
}

// lookup finds the definition for a name, if any.
func (ctx *Context) lookup(name string) (*Definition, bool) {
	def, ok := ctx.defs[name]
	return def, ok
}

// complexityOf returns the canonical-ordering complexity for a head.
// Heads without a definition sort after everything defined.
func (ctx *Context) complexityOf(head string) int {
	if def, ok := ctx.defs[head]; ok && def.kind == defFunction {
		return def.complexity
	}
	return 1 << 20
}
