package wire

import "testing"

func TestTLNumRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0xfc, 0xfd, 0xff, 0x100, 0xffff, 0x10000, 0xffffffff, 0x100000000, 1 << 40}
	for _, v := range cases {
		n := TLNum(v)
		buf := make([]byte, n.EncodingLength())
		n.EncodeInto(buf)

		got, consumed, ok := ParseTLNum(buf)
		if !ok {
			t.Fatalf("ParseTLNum(%d): not ok", v)
		}
		if consumed != len(buf) {
			t.Fatalf("ParseTLNum(%d): consumed %d, want %d", v, consumed, len(buf))
		}
		if uint64(got) != v {
			t.Fatalf("ParseTLNum(%d): got %d", v, got)
		}
	}
}

func TestTLNumEncodingLengthBoundaries(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0xfc, 1},
		{0xfd, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
	}
	for _, c := range cases {
		if got := TLNum(c.v).EncodingLength(); got != c.want {
			t.Errorf("EncodingLength(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestParseTLNumShortBuffer(t *testing.T) {
	_, _, ok := ParseTLNum(nil)
	if ok {
		t.Fatal("expected ok=false for empty buffer")
	}
	_, _, ok = ParseTLNum([]byte{0xfd, 0x01})
	if ok {
		t.Fatal("expected ok=false for truncated 3-byte TLNum")
	}
}
