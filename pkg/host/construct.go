package host

import "fmt"

// Constructor tags for the option, pair, and list encodings shared
// with the host runtime.
const (
	TagNone uint32 = 0
	TagSome uint32 = 1

	TagNil  uint32 = 0
	TagCons uint32 = 1

	tagPair uint32 = 0
)

// None builds the empty option.
func None() Value { return NewTagged(TagNone) }

// Some wraps v in an option.
func Some(v Value) Value { return NewTagged(TagSome, v) }

// AsOption decomposes an option value. ok is false for none.
func AsOption(v Value) (Value, bool, error) {
	switch v.VariantTag() {
	case TagNone:
		return nil, false, nil
	case TagSome:
		return v.Field(0), true, nil
	default:
		return nil, false, fmt.Errorf("host: value with tag %d is not an option", v.VariantTag())
	}
}

// Pair builds a host pair.
func Pair(first, second Value) Value {
	return NewTagged(tagPair, first, second)
}

// First returns the first component of a pair.
func First(v Value) Value { return v.Field(0) }

// Second returns the second component of a pair.
func Second(v Value) Value { return v.Field(1) }

// List builds a host list from the given elements.
func List(vs ...Value) Value {
	l := Value(NewTagged(TagNil))
	for i := len(vs) - 1; i >= 0; i-- {
		l = NewTagged(TagCons, vs[i], l)
	}
	return l
}

// Elements decomposes a host list into a slice.
func Elements(v Value) ([]Value, error) {
	var out []Value
	for {
		switch v.VariantTag() {
		case TagNil:
			return out, nil
		case TagCons:
			if v.NumFields() != 2 {
				return nil, fmt.Errorf("host: malformed cons cell with %d fields", v.NumFields())
			}
			out = append(out, v.Field(0))
			v = v.Field(1)
		default:
			return nil, fmt.Errorf("host: value with tag %d is not a list", v.VariantTag())
		}
	}
}
