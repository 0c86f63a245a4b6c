package host

// ToJSON converts a host value to a JSON-encodable shape, for
// transports that surface bubbled actions to the client. Scalars map
// to their JSON counterparts; tagged values become {"tag", "fields"};
// closures and externals, which have no wire form, become nil.
func ToJSON(v Value) any {
	if v == nil {
		return nil
	}
	if n, ok := v.(*Nat); ok {
		return n.N()
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	if b, ok := v.AsBool(); ok {
		return b
	}
	if t, ok := v.(*Tagged); ok {
		fields := make([]any, 0, t.NumFields())
		for i := 0; i < t.NumFields(); i++ {
			fields = append(fields, ToJSON(t.Field(i)))
		}
		return map[string]any{"tag": t.VariantTag(), "fields": fields}
	}
	return nil
}

// FromJSON converts a decoded JSON value (as produced by
// encoding/json into any) to a host value. Transports use it to turn
// wire event arguments into values the engine can hand to handlers.
//
// Objects and unknown types wrap as External and therefore hash to
// the sentinel.
func FromJSON(v any) Value {
	switch x := v.(type) {
	case nil:
		return None()
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		if x >= 0 && x == float64(uint64(x)) {
			return Natural(uint64(x))
		}
		return NewExternal(x)
	case []any:
		vs := make([]Value, 0, len(x))
		for _, e := range x {
			vs = append(vs, FromJSON(e))
		}
		return List(vs...)
	default:
		return NewExternal(v)
	}
}
