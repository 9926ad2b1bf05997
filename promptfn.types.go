package promptfn

import "reflect"

// TypeKind identifies which variant of the TypeDescriptor sum a value is.
type TypeKind int

const (
	// KindAny accepts any reply content (un-decomposable declared type)
	KindAny TypeKind = iota
	// KindString is plain text output
	KindString
	// KindInt is integer output
	KindInt
	// KindFloat is floating-point output
	KindFloat
	// KindBool is boolean output
	KindBool
	// KindObject is structured output described by a Go type
	KindObject
	// KindFunctionCall is the invoke-a-side-callable output alternative
	KindFunctionCall
	// KindUnion is a set of alternative output types
	KindUnion
)

// TypeDescriptor describes one acceptable output shape, or a union of
// shapes, for a prompt function's declared return type. Descriptors are
// immutable values; a union flattens into its member descriptors exactly
// one level via FlattenOneLevel.
type TypeDescriptor struct {
	kind    TypeKind
	name    string
	goType  reflect.Type
	members []TypeDescriptor
}

// StringType describes plain text output.
func StringType() TypeDescriptor {
	return TypeDescriptor{kind: KindString, name: TypeNameString, goType: reflect.TypeFor[string]()}
}

// IntType describes integer output.
func IntType() TypeDescriptor {
	return TypeDescriptor{kind: KindInt, name: TypeNameInt, goType: reflect.TypeFor[int]()}
}

// FloatType describes floating-point output.
func FloatType() TypeDescriptor {
	return TypeDescriptor{kind: KindFloat, name: TypeNameFloat, goType: reflect.TypeFor[float64]()}
}

// BoolType describes boolean output.
func BoolType() TypeDescriptor {
	return TypeDescriptor{kind: KindBool, name: TypeNameBool, goType: reflect.TypeFor[bool]()}
}

// AnyType describes the opaque "accept any reply content" variant.
func AnyType() TypeDescriptor {
	return TypeDescriptor{kind: KindAny, name: TypeNameAny}
}

// FunctionCallType describes the output alternative where the model invokes
// one of the declared side-callables instead of answering directly.
func FunctionCallType() TypeDescriptor {
	return TypeDescriptor{kind: KindFunctionCall, name: TypeNameFunctionCall, goType: reflect.TypeFor[FunctionCall]()}
}

// ObjectType describes structured output shaped like the Go type T.
func ObjectType[T any]() TypeDescriptor {
	t := reflect.TypeFor[T]()
	return TypeDescriptor{kind: KindObject, name: t.String(), goType: t}
}

// Union combines several output alternatives. Nested unions are unpacked at
// construction, so flattening at resolve time never has to recurse.
func Union(members ...TypeDescriptor) TypeDescriptor {
	flat := make([]TypeDescriptor, 0, len(members))
	for _, m := range members {
		if m.kind == KindUnion {
			flat = append(flat, m.members...)
			continue
		}
		flat = append(flat, m)
	}
	return TypeDescriptor{kind: KindUnion, name: TypeNameUnion, members: flat}
}

// TypeFor derives a descriptor from a Go type. Interface types with no
// methods degrade to AnyType; FunctionCall maps to its dedicated variant.
func TypeFor[T any]() TypeDescriptor {
	t := reflect.TypeFor[T]()
	if t == reflect.TypeFor[FunctionCall]() {
		return FunctionCallType()
	}
	switch t.Kind() {
	case reflect.String:
		return StringType()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeDescriptor{kind: KindInt, name: TypeNameInt, goType: t}
	case reflect.Float32, reflect.Float64:
		return TypeDescriptor{kind: KindFloat, name: TypeNameFloat, goType: t}
	case reflect.Bool:
		return BoolType()
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return AnyType()
		}
		return TypeDescriptor{kind: KindObject, name: t.String(), goType: t}
	default:
		return TypeDescriptor{kind: KindObject, name: t.String(), goType: t}
	}
}

// Kind returns which variant of the sum this descriptor is.
func (d TypeDescriptor) Kind() TypeKind {
	return d.kind
}

// Name returns the descriptor's display name.
func (d TypeDescriptor) Name() string {
	return d.name
}

// GoType returns the underlying Go type, or nil for AnyType.
func (d TypeDescriptor) GoType() reflect.Type {
	return d.goType
}

// Members returns a copy of a union's member descriptors; nil otherwise.
func (d TypeDescriptor) Members() []TypeDescriptor {
	if d.kind != KindUnion {
		return nil
	}
	out := make([]TypeDescriptor, len(d.members))
	copy(out, d.members)
	return out
}

// FlattenOneLevel resolves the descriptor into the ordered, deduplicated
// set of individual output variants the backend must be told to produce.
// A non-union descriptor yields a one-element set.
func (d TypeDescriptor) FlattenOneLevel() []TypeDescriptor {
	if d.kind != KindUnion {
		return []TypeDescriptor{d}
	}
	out := make([]TypeDescriptor, 0, len(d.members))
	for _, m := range d.members {
		if containsDescriptor(out, m) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Matches reports whether a concrete reply content value satisfies this
// descriptor. Backends use it to validate coerced content.
func (d TypeDescriptor) Matches(value any) bool {
	switch d.kind {
	case KindAny:
		return true
	case KindUnion:
		for _, m := range d.members {
			if m.Matches(value) {
				return true
			}
		}
		return false
	case KindFunctionCall:
		_, ok := value.(FunctionCall)
		return ok
	default:
		if value == nil || d.goType == nil {
			return false
		}
		return reflect.TypeOf(value).AssignableTo(d.goType)
	}
}

// equal compares two non-union descriptors for deduplication.
func (d TypeDescriptor) equal(other TypeDescriptor) bool {
	return d.kind == other.kind && d.name == other.name && d.goType == other.goType
}

func containsDescriptor(set []TypeDescriptor, d TypeDescriptor) bool {
	for _, existing := range set {
		if existing.equal(d) {
			return true
		}
	}
	return false
}
