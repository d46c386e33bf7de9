// Package face implements the router's transports: TCP and UDP unicast
// faces plus a bonus WebSocket face, grounded on fw/face/transport.go and
// fw/face/tcp-listener.go in the teacher repo. Each face frames and
// delivers whole Interest/Data TLV packets to the router's single event
// loop via its inbound channel; nothing in this package touches the PIT or
// FIB directly (spec.md §5).
package face

import (
	"fmt"
	"sync/atomic"

	"github.com/ndn-tools/nrd/internal/corelog"
)

// Kind identifies the transport a face runs over. No control-plane reply
// currently carries it.
type Kind string

const (
	KindTCP Kind = "tcp"
	KindUDP Kind = "udp"
	KindWS  Kind = "ws"
)

// Face is what the router core and the forwarding tables need from a
// concrete transport: a stable ID, a liveness check, and a way to hand it
// an encoded packet to deliver. It satisfies table.Face structurally.
type Face interface {
	FaceID() uint64
	Kind() Kind
	RemoteURI() string
	Closed() bool
	// Send queues a single encoded Interest or Data TLV packet for
	// delivery. It must not block the caller (the router's single event
	// loop) for longer than a local channel send.
	Send(pkt []byte) error
	Close()
	String() string
}

var nextFaceID atomic.Uint64

// AllocFaceID returns a fresh, process-unique face identifier. Face ID 0 is
// reserved and never issued (spec.md §4.1: face IDs are assigned starting
// at 1, mirroring NFD convention).
func AllocFaceID() uint64 {
	return nextFaceID.Add(1)
}

// base is embedded by every concrete face type for the bookkeeping common
// to all of them, mirroring transportBase in the teacher repo.
type base struct {
	id        uint64
	kind      Kind
	remoteURI string
	closed    atomic.Bool
	onRecv    func(pkt []byte, from Face)
	// onClose, if set, is invoked exactly once when the face transitions to
	// closed. Transports call it from their own read/write goroutine, so
	// the router must re-enter its single event loop (e.g. via Engine.Post)
	// rather than touch shared state from inside the callback directly.
	onClose func()
}

func (b *base) FaceID() uint64    { return b.id }
func (b *base) Kind() Kind        { return b.kind }
func (b *base) RemoteURI() string { return b.remoteURI }
func (b *base) Closed() bool      { return b.closed.Load() }
func (b *base) String() string    { return fmt.Sprintf("%s-face(%d, %s)", b.kind, b.id, b.remoteURI) }

func (b *base) markClosed(log bool) {
	if b.closed.CompareAndSwap(false, true) {
		if log {
			corelog.Info(b, "Face closed")
		}
		if b.onClose != nil {
			b.onClose()
		}
	}
}
