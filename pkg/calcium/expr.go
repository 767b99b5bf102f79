// Package calcium is a symbolic-computation kernel: canonical boxed
// expression trees over an exact/approximate numeric tower, arity and
// type validation with monotonic inference, pattern-based term
// rewriting, and algebraic expansion.
//
// Expressions are immutable once constructed and shared freely; a
// canonical node lives as long as the Context that interned it. Failed
// validation never raises: it produces error expression nodes that flow
// through further construction like any other operand.
package calcium

import (
	"strings"

	"github.com/calcium-lang/calcium/pkg/num"
)

// Operator heads used by the kernel itself. Heads are open-ended
// strings; these are only the ones the kernel gives structure to.
const (
	HeadAdd      = "Add"
	HeadMultiply = "Multiply"
	HeadNegate   = "Negate"
	HeadDivide   = "Divide"
	HeadPower    = "Power"
	HeadHold     = "Hold"
	HeadSequence = "Sequence"
	HeadList     = "List"

	HeadEqual        = "Equal"
	HeadLess         = "Less"
	HeadLessEqual    = "LessEqual"
	HeadGreater      = "Greater"
	HeadGreaterEqual = "GreaterEqual"
)

// relationalHeads are expanded operand-wise by Expand.
var relationalHeads = map[string]bool{
	HeadEqual:        true,
	HeadLess:         true,
	HeadLessEqual:    true,
	HeadGreater:      true,
	HeadGreaterEqual: true,
}

// associativeHeads are flattened during canonicalization: nested
// applications of the same head splice into one n-ary node.
var associativeHeads = map[string]bool{
	HeadAdd:      true,
	HeadMultiply: true,
	HeadSequence: true,
}

// Expr is the closed union of expression nodes: *Symbol, *Literal,
// *Function, and *ErrorExpr.
type Expr interface {
	// Context is the owning context, shared by every node it creates.
	Context() *Context

	// IsCanonical reports whether the node has been through
	// canonicalization. Canonical() of a canonical node returns the
	// node itself.
	IsCanonical() bool
	Canonical() Expr

	// IsValid is false iff the node or any descendant is an error
	// node.
	IsValid() bool

	// Type is the node's inferred or declared type.
	Type() Type

	// StructuralEq is deep structural equality. Interned nodes of the
	// same context short-circuit on their intern handles.
	StructuralEq(Expr) bool

	String() string

	internID() uint32
	sealedExpr()
}

// Symbol is a named leaf. Its type and value, if any, live in the
// context's definition for the name.
type Symbol struct {
	ctx  *Context
	name string
	id   uint32
}

var _ Expr = (*Symbol)(nil)

func (s *Symbol) Name() string      { return s.name }
func (s *Symbol) Context() *Context { return s.ctx }
func (s *Symbol) IsCanonical() bool { return true }
func (s *Symbol) Canonical() Expr   { return s }
func (s *Symbol) IsValid() bool     { return true }
func (s *Symbol) String() string    { return s.name }
func (s *Symbol) internID() uint32  { return s.id }
func (s *Symbol) sealedExpr()       {}

func (s *Symbol) Type() Type {
	if def, ok := s.ctx.lookup(s.name); ok {
		return def.typ
	}
	return TypeUnknown
}

func (s *Symbol) StructuralEq(other Expr) bool {
	o, ok := other.(*Symbol)
	if !ok {
		return false
	}
	if s.id != 0 && s.ctx == o.ctx {
		return s.id == o.id
	}
	return s.name == o.name
}

// IsPatternVariable reports whether the symbol is an internal pattern
// variable marker.
func (s *Symbol) IsPatternVariable() bool {
	return strings.HasPrefix(s.name, patternPrefix)
}

// Literal is a boxed numeric value.
type Literal struct {
	ctx *Context
	val num.Value
	id  uint32
}

var _ Expr = (*Literal)(nil)

func (l *Literal) Value() num.Value  { return l.val }
func (l *Literal) Context() *Context { return l.ctx }
func (l *Literal) IsCanonical() bool { return true }
func (l *Literal) Canonical() Expr   { return l }
func (l *Literal) IsValid() bool     { return true }
func (l *Literal) String() string    { return l.val.String() }
func (l *Literal) internID() uint32  { return l.id }
func (l *Literal) sealedExpr()       {}

func (l *Literal) Type() Type {
	switch {
	case l.val.Kind() == num.KindComplex && !num.IsReal(l.val):
		return TypeComplex
	case l.val.IsInteger():
		return TypeInteger
	default:
		return TypeReal
	}
}

func (l *Literal) StructuralEq(other Expr) bool {
	o, ok := other.(*Literal)
	if !ok {
		return false
	}
	if l.id != 0 && o.id != 0 && l.ctx == o.ctx {
		return l.id == o.id
	}
	return num.Equal(l.val, o.val)
}

// Function is an application of a head to an ordered operand sequence.
type Function struct {
	ctx       *Context
	head      string
	ops       []Expr
	canonical bool
	valid     bool
	id        uint32
}

var _ Expr = (*Function)(nil)

func (f *Function) Head() string      { return f.head }
func (f *Function) Context() *Context { return f.ctx }
func (f *Function) IsCanonical() bool { return f.canonical }
func (f *Function) IsValid() bool     { return f.valid }
func (f *Function) Arity() int        { return len(f.ops) }
func (f *Function) internID() uint32  { return f.id }
func (f *Function) sealedExpr()       {}

// Ops returns the operand sequence. Callers must not mutate it.
func (f *Function) Ops() []Expr { return f.ops }

func (f *Function) Op(i int) Expr { return f.ops[i] }

func (f *Function) Canonical() Expr {
	if f.canonical {
		return f
	}
	return f.ctx.Fn(f.head, f.ops...)
}

func (f *Function) Type() Type {
	if def, ok := f.ctx.lookup(f.head); ok && def.kind == defFunction {
		return def.typ
	}
	return TypeUnknown
}

func (f *Function) StructuralEq(other Expr) bool {
	o, ok := other.(*Function)
	if !ok {
		return false
	}
	if f.id != 0 && o.id != 0 && f.ctx == o.ctx {
		return f.id == o.id
	}
	if f.head != o.head || len(f.ops) != len(o.ops) {
		return false
	}
	for i := range f.ops {
		if !f.ops[i].StructuralEq(o.ops[i]) {
			return false
		}
	}
	return true
}

func (f *Function) String() string { return serializeFn(f) }

// allValid reports whether every operand is a valid expression.
func allValid(ops []Expr) bool {
	for _, op := range ops {
		if !op.IsValid() {
			return false
		}
	}
	return true
}
