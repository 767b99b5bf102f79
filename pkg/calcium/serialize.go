package calcium

import "strings"

// Serialize renders an expression in the kernel's textual form. The
// output round-trips through Parse up to canonicalization.
func Serialize(e Expr) string { return render(e, 0) }

// Precedence levels for infix rendering. A child renders in parentheses
// when its level is below the context it appears in.
const (
	precAdd = iota + 1
	precNeg
	precMul
	precPow
	precAtom
)

func precOf(e Expr) int {
	f, ok := e.(*Function)
	if !ok {
		return precAtom
	}
	switch f.Head() {
	case HeadAdd:
		return precAdd
	case HeadNegate:
		return precNeg
	case HeadMultiply, HeadDivide:
		return precMul
	case HeadPower:
		return precPow
	default:
		return precAtom
	}
}

func render(e Expr, min int) string {
	s := renderBare(e)
	if precOf(e) < min {
		return "(" + s + ")"
	}
	return s
}

func renderBare(e Expr) string {
	f, ok := e.(*Function)
	if !ok {
		return e.String()
	}
	switch f.Head() {
	case HeadAdd:
		var b strings.Builder
		for i, op := range f.Ops() {
			if inner, isNeg := negated(op); isNeg {
				if i > 0 {
					b.WriteString(" - ")
				} else {
					b.WriteString("-")
				}
				b.WriteString(render(inner, precNeg+1))
				continue
			}
			if i > 0 {
				b.WriteString(" + ")
			}
			b.WriteString(render(op, precAdd+1))
		}
		return b.String()
	case HeadNegate:
		if f.Arity() == 1 {
			return "-" + render(f.Op(0), precNeg+1)
		}
	case HeadMultiply:
		parts := make([]string, f.Arity())
		for i, op := range f.Ops() {
			parts[i] = render(op, precMul)
		}
		return strings.Join(parts, "*")
	case HeadDivide:
		if f.Arity() == 2 {
			return render(f.Op(0), precMul) + "/" + render(f.Op(1), precMul+1)
		}
	case HeadPower:
		if f.Arity() == 2 {
			return render(f.Op(0), precPow+1) + "^" + render(f.Op(1), precPow)
		}
	}
	parts := make([]string, f.Arity())
	for i, op := range f.Ops() {
		parts[i] = Serialize(op)
	}
	return f.Head() + "(" + strings.Join(parts, ", ") + ")"
}

// serializeFn backs Function.String.
func serializeFn(f *Function) string { return renderBare(f) }
