package calcium

// Type is the kernel's first-order type lattice. It is deliberately
// closed: definitions and validation only ever need to narrow Unknown to
// one of these, so a full substitution-based inference engine would be
// dead weight here.
type Type int

const (
	TypeUnknown Type = iota
	TypeNumber
	TypeComplex
	TypeReal
	TypeInteger
	TypeBoolean
	TypeCollection
	TypeFunction
	TypeError
)

func (t Type) Name() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeNumber:
		return "number"
	case TypeComplex:
		return "complex"
	case TypeReal:
		return "real"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeCollection:
		return "collection"
	case TypeFunction:
		return "function"
	case TypeError:
		return "error"
	default:
		return "invalid"
	}
}

func (t Type) String() string { return t.Name() }

// Concrete reports whether the type has been resolved past Unknown.
// Definition types move from Unknown to a concrete type exactly once.
func (t Type) Concrete() bool { return t != TypeUnknown }

// Supertype returns the direct supertype, or TypeUnknown at the top of
// a chain. Integer <: Real <: Complex <: Number.
func (t Type) Supertype() Type {
	switch t {
	case TypeInteger:
		return TypeReal
	case TypeReal:
		return TypeComplex
	case TypeComplex:
		return TypeNumber
	default:
		return TypeUnknown
	}
}

// Compatible reports whether a value of type t can stand where want is
// expected. Unknown is compatible with everything (it has not been
// narrowed yet); concrete types are compatible with themselves and any
// transitive supertype.
func (t Type) Compatible(want Type) bool {
	if t == TypeUnknown || want == TypeUnknown {
		return true
	}
	for cur := t; cur != TypeUnknown; cur = cur.Supertype() {
		if cur == want {
			return true
		}
	}
	return false
}

// Numeric reports whether the type lies in the number chain.
func (t Type) Numeric() bool {
	switch t {
	case TypeNumber, TypeComplex, TypeReal, TypeInteger:
		return true
	default:
		return false
	}
}
