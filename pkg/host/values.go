package host

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// closureIDs gives every closure handle a process-unique identity so
// that closure hashes are deterministic within a process. Two calls
// that build "the same" closure yield different handles and therefore
// different hashes; components built from them reset state.
var closureIDs atomic.Uint64

// base provides the defaults shared by the concrete value types.
// Scalars have no constructor fields and cannot be invoked.
type base struct{}

func (base) VariantTag() uint32 { return ^uint32(0) }
func (base) NumFields() int     { return 0 }
func (base) Field(i int) Value {
	panic(fmt.Sprintf("host: field %d of non-constructor value", i))
}
func (base) Invoke(args ...Value) (Value, error) {
	return nil, fmt.Errorf("host: value is not a closure")
}
func (base) AsString() (string, bool) { return "", false }
func (base) AsBool() (bool, bool)     { return false, false }

// Tagged is a constructor application: a variant tag plus fields.
type Tagged struct {
	base
	tag    uint32
	fields []Value
}

// NewTagged builds a tagged value.
func NewTagged(tag uint32, fields ...Value) *Tagged {
	return &Tagged{tag: tag, fields: fields}
}

func (t *Tagged) Hash() uint64       { return combineFields(t.tag, t.fields) }
func (t *Tagged) VariantTag() uint32 { return t.tag }
func (t *Tagged) NumFields() int     { return len(t.fields) }
func (t *Tagged) Field(i int) Value  { return t.fields[i] }

// Str is a host string.
type Str struct {
	base
	s string
}

// String builds a host string value.
func String(s string) *Str { return &Str{s: s} }

func (v *Str) Hash() uint64             { return hashString(v.s) }
func (v *Str) AsString() (string, bool) { return v.s, true }

// Boolean is a host bool.
type Boolean struct {
	base
	b bool
}

// Bool builds a host boolean value.
func Bool(b bool) *Boolean { return &Boolean{b: b} }

func (v *Boolean) Hash() uint64 {
	if v.b {
		return hashUint(1)
	}
	return hashUint(2)
}
func (v *Boolean) AsBool() (bool, bool) { return v.b, true }

// Nat is a host natural number.
type Nat struct {
	base
	n uint64
}

// Natural builds a host natural number.
func Natural(n uint64) *Nat { return &Nat{n: n} }

// N returns the numeric payload.
func (v *Nat) N() uint64 { return v.n }

func (v *Nat) Hash() uint64 { return hashUint(v.n + 3) }

func (v *Nat) AsString() (string, bool) {
	return strconv.FormatUint(v.n, 10), true
}

// Closure wraps a Go function as a host closure. Hash is by handle
// identity, assigned at construction.
type Closure struct {
	base
	id uint64
	fn func(args ...Value) (Value, error)
}

// NewClosure builds a host closure.
func NewClosure(fn func(args ...Value) (Value, error)) *Closure {
	return &Closure{id: closureIDs.Add(1), fn: fn}
}

func (c *Closure) Hash() uint64 { return hashUint(c.id + 1000) }

func (c *Closure) Invoke(args ...Value) (Value, error) {
	return c.fn(args...)
}

// External wraps an arbitrary Go value the host cannot hash. It
// collapses to the sentinel hash: see the package documentation for
// the reconciliation hazard this implies.
type External struct {
	base
	v any
}

// NewExternal wraps v as an unhashable host value.
func NewExternal(v any) *External { return &External{v: v} }

// Get returns the wrapped Go value.
func (e *External) Get() any { return e.v }

func (e *External) Hash() uint64 { return SentinelHash }
