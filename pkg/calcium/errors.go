package calcium

// ErrorCode identifies why an expression position is invalid. Validation
// and matching failures travel as data (error expression nodes), never as
// Go errors; only malformed definition records are hard failures.
type ErrorCode string

const (
	// ErrMissing marks a required operand that was not supplied.
	ErrMissing ErrorCode = "missing"

	// ErrUnexpectedArgument marks an operand beyond the declared arity.
	ErrUnexpectedArgument ErrorCode = "unexpected-argument"

	// ErrTypeMismatch carries the expected and actual types together
	// with the offending operand.
	ErrTypeMismatch ErrorCode = "type-mismatch"

	// ErrExpectedPure marks an operand that must be free of side
	// effects but is not.
	ErrExpectedPure ErrorCode = "expected-pure-expression"

	// ErrIncompatibleDomain marks an angle conversion applied to a
	// shape that cannot carry an angle.
	ErrIncompatibleDomain ErrorCode = "incompatible-domain"
)

// ErrorExpr is an error sentinel that participates in expression trees as
// an ordinary operand. Expressions built over invalid operands are
// themselves invalid; nothing is repaired silently.
type ErrorExpr struct {
	ctx  *Context
	code ErrorCode

	// Where is the offending operand, when there is one.
	Where Expr

	// Expected and Actual are populated for type mismatches.
	Expected Type
	Actual   Type
}

var _ Expr = (*ErrorExpr)(nil)

func (e *ErrorExpr) Code() ErrorCode   { return e.code }
func (e *ErrorExpr) Context() *Context { return e.ctx }
func (e *ErrorExpr) IsCanonical() bool { return true }
func (e *ErrorExpr) IsValid() bool     { return false }
func (e *ErrorExpr) Type() Type        { return TypeError }
func (e *ErrorExpr) Canonical() Expr   { return e }
func (e *ErrorExpr) internID() uint32  { return 0 }
func (e *ErrorExpr) sealedExpr()       {}

func (e *ErrorExpr) StructuralEq(other Expr) bool {
	o, ok := other.(*ErrorExpr)
	if !ok || e.code != o.code || e.Expected != o.Expected || e.Actual != o.Actual {
		return false
	}
	if (e.Where == nil) != (o.Where == nil) {
		return false
	}
	return e.Where == nil || e.Where.StructuralEq(o.Where)
}

func (e *ErrorExpr) String() string {
	s := "Error(" + string(e.code)
	if e.code == ErrTypeMismatch {
		s += ", expected " + e.Expected.Name() + ", got " + e.Actual.Name()
	}
	if e.Where != nil {
		s += ", " + e.Where.String()
	}
	return s + ")"
}

// errMissing, errUnexpected and friends are the only constructors for
// error nodes; keeping them here keeps the taxonomy in one place.

func (ctx *Context) errMissing() *ErrorExpr {
	return &ErrorExpr{ctx: ctx, code: ErrMissing}
}

func (ctx *Context) errUnexpected(op Expr) *ErrorExpr {
	return &ErrorExpr{ctx: ctx, code: ErrUnexpectedArgument, Where: op}
}

func (ctx *Context) errTypeMismatch(op Expr, want, got Type) *ErrorExpr {
	return &ErrorExpr{ctx: ctx, code: ErrTypeMismatch, Where: op, Expected: want, Actual: got}
}

func (ctx *Context) errExpectedPure(op Expr) *ErrorExpr {
	return &ErrorExpr{ctx: ctx, code: ErrExpectedPure, Where: op}
}

func (ctx *Context) errIncompatibleDomain(op Expr) *ErrorExpr {
	return &ErrorExpr{ctx: ctx, code: ErrIncompatibleDomain, Where: op}
}
