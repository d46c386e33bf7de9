package face

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/ndn-tools/nrd/internal/wire"
)

func TestReadFrameSinglePacket(t *testing.T) {
	interest := &wire.Interest{NameV: wire.ParseName("/a/b"), Nonce: [4]byte{1, 2, 3, 4}}
	want := interest.Encode()

	r := bufio.NewReader(bytes.NewReader(want))
	got, err := readFrame(r)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestReadFrameRecoversBoundaryAcrossConcatenatedPackets(t *testing.T) {
	i1 := (&wire.Interest{NameV: wire.ParseName("/a")}).Encode()
	i2 := (&wire.Interest{NameV: wire.ParseName("/bb")}).Encode()

	r := bufio.NewReader(bytes.NewReader(append(append([]byte{}, i1...), i2...)))

	got1, err := readFrame(r)
	if err != nil {
		t.Fatalf("first readFrame: %v", err)
	}
	if !bytes.Equal(got1, i1) {
		t.Fatalf("first frame = %x, want %x", got1, i1)
	}

	got2, err := readFrame(r)
	if err != nil {
		t.Fatalf("second readFrame: %v", err)
	}
	if !bytes.Equal(got2, i2) {
		t.Fatalf("second frame = %x, want %x", got2, i2)
	}
}

func TestReadFrameEOFOnEmptyStream(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader(nil))
	_, err := readFrame(r)
	if err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestReadFrameErrorOnTruncatedValue(t *testing.T) {
	full := (&wire.Interest{NameV: wire.ParseName("/a/b/c")}).Encode()
	truncated := full[:len(full)-2]

	r := bufio.NewReader(bytes.NewReader(truncated))
	_, err := readFrame(r)
	if err != errShortRead {
		t.Fatalf("expected errShortRead, got %v", err)
	}
}

func TestReadTLNumMultiByteLength(t *testing.T) {
	n := wire.TLNum(0x10000)
	buf := make([]byte, n.EncodingLength())
	n.EncodeInto(buf)

	r := bufio.NewReader(bytes.NewReader(buf))
	got, raw, err := readTLNum(r)
	if err != nil {
		t.Fatalf("readTLNum: %v", err)
	}
	if got != n {
		t.Errorf("got %d, want %d", got, n)
	}
	if !bytes.Equal(raw, buf) {
		t.Errorf("raw = %x, want %x", raw, buf)
	}
}
