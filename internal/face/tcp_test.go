package face

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ndn-tools/nrd/internal/wire"
)

func TestTCPFaceSendWritesFramedPacket(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	f := NewTCPFace(AllocFaceID(), server, func(pkt []byte, from Face) {}, nil)
	defer f.Close()

	want := (&wire.Interest{NameV: wire.ParseName("/a/b")}).Encode()

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, len(want))
		if _, err := readFull(client, buf); err == nil {
			done <- buf
		} else {
			done <- nil
		}
	}()

	if err := f.Send(want); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-done:
		if !bytes.Equal(got, want) {
			t.Fatalf("got %x, want %x", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for write")
	}
}

func TestTCPFaceDeliversReceivedFrameToOnRecv(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	var mu sync.Mutex
	var got []byte
	recvCh := make(chan struct{})

	f := NewTCPFace(AllocFaceID(), server, func(pkt []byte, from Face) {
		mu.Lock()
		got = append([]byte{}, pkt...)
		mu.Unlock()
		close(recvCh)
	}, nil)
	defer f.Close()

	want := (&wire.Interest{NameV: wire.ParseName("/x")}).Encode()
	go client.Write(want)

	select {
	case <-recvCh:
		mu.Lock()
		defer mu.Unlock()
		if !bytes.Equal(got, want) {
			t.Fatalf("got %x, want %x", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for onRecv")
	}
}

func TestTCPFaceCloseInvokesOnCloseOnce(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	var calls int
	var mu sync.Mutex
	f := NewTCPFace(AllocFaceID(), server, func(pkt []byte, from Face) {}, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	f.Close()
	f.Close()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("onClose called %d times, want 1", calls)
	}
	if !f.Closed() {
		t.Fatal("expected face to report Closed() == true")
	}
}

func TestTCPFaceSendAfterCloseErrors(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	f := NewTCPFace(AllocFaceID(), server, func(pkt []byte, from Face) {}, nil)
	f.Close()

	if err := f.Send([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected Send on a closed face to error")
	}
}

// readFull blocks until buf is completely filled or the connection errors.
func readFull(r net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
