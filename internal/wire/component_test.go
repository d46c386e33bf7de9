package wire

import "testing"

func TestComponentRoundTrip(t *testing.T) {
	c := NewGenericComponent("hello")
	buf := make([]byte, c.EncodingLength())
	c.EncodeInto(buf)

	got, consumed, ok := ParseComponent(buf)
	if !ok || consumed != len(buf) {
		t.Fatalf("ParseComponent: ok=%v consumed=%d want=%d", ok, consumed, len(buf))
	}
	if !got.Equal(c) {
		t.Fatalf("got %v, want %v", got, c)
	}
}

func TestComponentCompareOrdersByTypeThenValue(t *testing.T) {
	a := NewGenericComponent("a")
	b := NewGenericComponent("b")
	if a.Compare(b) >= 0 {
		t.Error("expected a < b")
	}
	if b.Compare(a) <= 0 {
		t.Error("expected b > a")
	}
	if a.Compare(a) != 0 {
		t.Error("expected a == a")
	}
}

func TestComponentHashStableAndDistinct(t *testing.T) {
	a := NewGenericComponent("a")
	a2 := NewGenericComponent("a")
	b := NewGenericComponent("b")
	if a.Hash() != a2.Hash() {
		t.Error("expected equal components to hash equally")
	}
	if a.Hash() == b.Hash() {
		t.Error("did not expect a collision between distinct single-byte components")
	}
}
