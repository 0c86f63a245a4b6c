package host

import "testing"

func TestHashDeterministic(t *testing.T) {
	a := NewTagged(3, String("x"), Natural(7))
	b := NewTagged(3, String("x"), Natural(7))

	if a.Hash() != b.Hash() {
		t.Errorf("structurally equal tagged values hash differently: %d vs %d", a.Hash(), b.Hash())
	}
	if a.Hash() == SentinelHash {
		t.Error("hashable value collapsed to the sentinel")
	}
}

func TestHashDiffersByTag(t *testing.T) {
	a := NewTagged(0, String("x"))
	b := NewTagged(1, String("x"))

	if a.Hash() == b.Hash() {
		t.Error("values with different tags share a hash")
	}
}

func TestClosureHashByIdentity(t *testing.T) {
	fn := func(args ...Value) (Value, error) { return None(), nil }
	a := NewClosure(fn)
	b := NewClosure(fn)

	if a.Hash() == b.Hash() {
		t.Error("distinct closure handles share a hash")
	}
	if a.Hash() != a.Hash() {
		t.Error("closure hash is not stable")
	}
}

func TestExternalCollapsesToSentinel(t *testing.T) {
	e := NewExternal(struct{ x int }{42})
	if e.Hash() != SentinelHash {
		t.Errorf("external hash = %d, want sentinel", e.Hash())
	}

	// A composite containing an unhashable part is itself unhashable.
	composite := NewTagged(5, String("a"), e)
	if composite.Hash() != SentinelHash {
		t.Errorf("composite with external hash = %d, want sentinel", composite.Hash())
	}
}

func TestEqualIsHandleIdentity(t *testing.T) {
	a := String("same")
	b := String("same")

	if !Equal(a, a) {
		t.Error("value not equal to itself")
	}
	if Equal(a, b) {
		t.Error("distinct handles compare equal")
	}
}

func TestOptionRoundTrip(t *testing.T) {
	if _, ok, err := AsOption(None()); err != nil || ok {
		t.Errorf("AsOption(None()) = ok=%v err=%v, want none", ok, err)
	}

	inner := String("payload")
	v, ok, err := AsOption(Some(inner))
	if err != nil || !ok {
		t.Fatalf("AsOption(Some) = ok=%v err=%v", ok, err)
	}
	if v != inner {
		t.Error("Some did not preserve the payload handle")
	}

	if _, _, err := AsOption(NewTagged(9)); err == nil {
		t.Error("expected error decoding a non-option")
	}
}

func TestListRoundTrip(t *testing.T) {
	vs := []Value{String("a"), Natural(1), Bool(true)}
	got, err := Elements(List(vs...))
	if err != nil {
		t.Fatalf("Elements: %v", err)
	}
	if len(got) != len(vs) {
		t.Fatalf("len = %d, want %d", len(got), len(vs))
	}
	for i := range vs {
		if got[i] != vs[i] {
			t.Errorf("element %d: handle not preserved", i)
		}
	}

	empty, err := Elements(List())
	if err != nil || len(empty) != 0 {
		t.Errorf("empty list decoded to %v, %v", empty, err)
	}

	if _, err := Elements(String("not a list")); err == nil {
		t.Error("expected error decoding a non-list")
	}
}

func TestPairAccessors(t *testing.T) {
	p := Pair(String("l"), String("r"))
	if s, _ := First(p).AsString(); s != "l" {
		t.Errorf("First = %q, want l", s)
	}
	if s, _ := Second(p).AsString(); s != "r" {
		t.Errorf("Second = %q, want r", s)
	}
}

func TestCallWrapsErrors(t *testing.T) {
	boom := NewClosure(func(args ...Value) (Value, error) {
		return nil, errFail
	})
	_, err := Call("test op", boom)
	if err == nil {
		t.Fatal("expected error")
	}
	ie, ok := err.(*InvokeError)
	if !ok {
		t.Fatalf("error type = %T, want *InvokeError", err)
	}
	if ie.Op != "test op" {
		t.Errorf("Op = %q, want test op", ie.Op)
	}
	if ie.Unwrap() != errFail {
		t.Error("wrapped error lost")
	}
}

func TestInvokeOnNonClosure(t *testing.T) {
	if _, err := String("x").Invoke(); err == nil {
		t.Error("expected error invoking a string")
	}
}

func TestFromJSON(t *testing.T) {
	if s, ok := FromJSON("hi").AsString(); !ok || s != "hi" {
		t.Errorf("string mapped to %v", s)
	}
	if b, ok := FromJSON(true).AsBool(); !ok || !b {
		t.Error("bool mapped wrong")
	}
	n, ok := FromJSON(float64(3)).(*Nat)
	if !ok || n.N() != 3 {
		t.Errorf("number mapped to %T", FromJSON(float64(3)))
	}
	if _, ok, _ := AsOption(FromJSON(nil)); ok {
		t.Error("nil should map to none")
	}
	items, err := Elements(FromJSON([]any{"a", "b"}))
	if err != nil || len(items) != 2 {
		t.Errorf("array mapped to %v, %v", items, err)
	}
}

var errFail = errTest("host closure failed")

type errTest string

func (e errTest) Error() string { return string(e) }
