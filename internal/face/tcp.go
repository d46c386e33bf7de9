package face

import (
	"bufio"
	"context"
	"fmt"
	"net"

	"github.com/ndn-tools/nrd/internal/corelog"
)

// TCPFace is a unicast face over a single TCP connection, grounded on
// fw/face/unicast-udp-transport.go and fw/face/tcp-listener.go's
// AcceptUnicastTCPTransport path in the teacher repo.
type TCPFace struct {
	base
	conn net.Conn
	out  chan []byte
	done chan struct{}
}

// NewTCPFace wraps an established TCP connection as a Face identified by
// id (allocated by the caller so an onClose callback can safely reference
// it before the goroutines below start). onRecv is called from the face's
// own read goroutine for every complete packet; the router is expected to
// re-post that work onto its single event loop (mirroring Engine.Post in
// the teacher's engine.go) rather than touch its tables from this goroutine
// directly. onClose, if non-nil, fires once when the connection drops.
func NewTCPFace(id uint64, conn net.Conn, onRecv func(pkt []byte, from Face), onClose func()) *TCPFace {
	return NewDialedFace(id, conn, KindTCP, onRecv, onClose)
}

// NewDialedFace wraps any stream-capable net.Conn (a dialed TCP connection,
// or a connected UDP socket used for an egress add_face request) as a
// Face, tagged with kind (reported by Kind and String). NDN TLV packets are
// self-delimiting, so the same readFrame logic recovers packet boundaries
// regardless of which transport actually carries the bytes (spec.md §4.1's
// add_face command creates "tcp" or "udp" faces identically from the
// router's point of view once the peer is connected).
func NewDialedFace(id uint64, conn net.Conn, kind Kind, onRecv func(pkt []byte, from Face), onClose func()) *TCPFace {
	f := &TCPFace{
		base: base{
			id:        id,
			kind:      kind,
			remoteURI: conn.RemoteAddr().String(),
			onRecv:    onRecv,
			onClose:   onClose,
		},
		conn: conn,
		out:  make(chan []byte, 64),
		done: make(chan struct{}),
	}
	go f.runWrite()
	go f.runRead()
	return f
}

// Send queues pkt for delivery on the connection's write goroutine.
func (f *TCPFace) Send(pkt []byte) error {
	if f.Closed() {
		return fmt.Errorf("face: %s is closed", f)
	}
	select {
	case f.out <- pkt:
		return nil
	default:
		corelog.Warn(f, "Send queue full, dropping packet")
		return fmt.Errorf("face: %s send queue full", f)
	}
}

func (f *TCPFace) runWrite() {
	for {
		select {
		case pkt := <-f.out:
			if _, err := f.conn.Write(pkt); err != nil {
				corelog.Warn(f, "Write failed", "err", err)
				f.Close()
				return
			}
		case <-f.done:
			return
		}
	}
}

func (f *TCPFace) runRead() {
	r := bufio.NewReader(f.conn)
	for {
		frame, err := readFrame(r)
		if err != nil {
			f.Close()
			return
		}
		f.onRecv(frame, f)
	}
}

// Close tears down the connection and its goroutines.
func (f *TCPFace) Close() {
	f.markClosed(true)
	f.conn.Close()
	select {
	case <-f.done:
	default:
		close(f.done)
	}
}

// TCPListener accepts incoming TCP connections and turns each into a
// TCPFace, mirroring fw/face/tcp-listener.go.
type TCPListener struct {
	addr        string
	ln          net.Listener
	onAccept    func(f Face)
	onRecv      func(pkt []byte, from Face)
	onFaceClose func(faceID uint64)
	stopped     chan struct{}
}

// NewTCPListener constructs a listener bound to addr (e.g. "0.0.0.0:6363").
// onAccept is invoked with each newly accepted face so the router can
// register it; onRecv is the same per-packet callback passed to every face
// this listener creates; onFaceClose, if non-nil, fires once per face when
// its connection drops (spec.md §4.6 "onMasterFaceError").
func NewTCPListener(addr string, onAccept func(f Face), onRecv func(pkt []byte, from Face), onFaceClose func(faceID uint64)) *TCPListener {
	return &TCPListener{addr: addr, onAccept: onAccept, onRecv: onRecv, onFaceClose: onFaceClose, stopped: make(chan struct{})}
}

// Run starts accepting connections. It blocks until the listener is closed
// and should be run in its own goroutine.
func (l *TCPListener) Run() error {
	defer close(l.stopped)

	lc := net.ListenConfig{Control: reuseAddrControl}
	ln, err := lc.Listen(context.Background(), "tcp", l.addr)
	if err != nil {
		corelog.Error(l, "Unable to start TCP listener", "err", err)
		return err
	}
	l.ln = ln
	corelog.Info(l, "Listening for TCP connections")

	for {
		conn, err := ln.Accept()
		if err != nil {
			return nil
		}
		id := AllocFaceID()
		var onClose func()
		if l.onFaceClose != nil {
			onClose = func() { l.onFaceClose(id) }
		}
		face := NewTCPFace(id, conn, l.onRecv, onClose)
		corelog.Info(l, "Accepted TCP face", "faceid", face.FaceID(), "remote", face.RemoteURI())
		l.onAccept(face)
	}
}

// Close stops accepting new connections.
func (l *TCPListener) Close() {
	if l.ln != nil {
		l.ln.Close()
		<-l.stopped
	}
}

func (l *TCPListener) String() string {
	return fmt.Sprintf("tcp-listener(%s)", l.addr)
}
