package face

import (
	"container/list"
	"fmt"
	"net"
	"sync"

	"github.com/ndn-tools/nrd/internal/corelog"
)

// DefaultMaxUDPChildren bounds how many per-remote pseudo-faces a single
// UDP listening socket keeps alive at once (spec.md §4.1 "max_children,
// default 16"). UDP has no connection teardown to observe, so the face set
// is pruned LRU instead.
const DefaultMaxUDPChildren = 16

// MaxUDPDatagramSize is the largest UDP datagram treated as a single NDN
// packet; a UDP face assumes one packet per datagram, so anything larger
// than the configured MTU can't be a well-formed packet and is dropped
// with an error log rather than handed to the router (spec.md §4.1
// "oversized datagrams (>MTU-configured, suggested 8800 bytes) are dropped
// with an error log").
const MaxUDPDatagramSize = 8800

// UDPFace is a pseudo-face representing one remote endpoint multiplexed
// over a shared UDP socket, grounded on fw/face/unicast-udp-transport.go
// and fw/face/multicast-udp-transport.go's per-remote dispatch in the
// teacher repo.
type UDPFace struct {
	base
	listener *UDPListener
	remote   *net.UDPAddr
	elem     *list.Element
}

// Send writes pkt as a single UDP datagram to this face's remote endpoint.
func (f *UDPFace) Send(pkt []byte) error {
	if f.Closed() {
		return fmt.Errorf("face: %s is closed", f)
	}
	_, err := f.listener.conn.WriteToUDP(pkt, f.remote)
	if err != nil {
		corelog.Warn(f, "Write failed", "err", err)
	}
	return err
}

// Close removes this pseudo-face from its listener's child set. The shared
// UDP socket itself is unaffected.
func (f *UDPFace) Close() {
	f.markClosed(true)
	f.listener.forget(f)
}

// UDPListener owns one UDP socket and fans datagrams out to per-remote
// UDPFace pseudo-faces, evicting the least-recently-used one once more than
// maxChildren are live.
type UDPListener struct {
	addr        string
	maxChildren int
	conn        *net.UDPConn
	onAccept    func(f Face)
	onRecv      func(pkt []byte, from Face)

	mu       sync.Mutex
	children map[string]*UDPFace
	order    *list.List // LRU: front = least recently used
	stopped  chan struct{}
}

// NewUDPListener constructs a listener bound to addr. maxChildren <= 0 uses
// DefaultMaxUDPChildren.
func NewUDPListener(addr string, maxChildren int, onAccept func(f Face), onRecv func(pkt []byte, from Face)) *UDPListener {
	if maxChildren <= 0 {
		maxChildren = DefaultMaxUDPChildren
	}
	return &UDPListener{
		addr:        addr,
		maxChildren: maxChildren,
		onAccept:    onAccept,
		onRecv:      onRecv,
		children:    make(map[string]*UDPFace),
		order:       list.New(),
		stopped:     make(chan struct{}),
	}
}

// Run binds the socket and reads datagrams until Close is called. It
// blocks and should be run in its own goroutine.
func (l *UDPListener) Run() error {
	defer close(l.stopped)

	laddr, err := net.ResolveUDPAddr("udp", l.addr)
	if err != nil {
		corelog.Error(l, "Unable to resolve UDP address", "err", err)
		return err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		corelog.Error(l, "Unable to start UDP listener", "err", err)
		return err
	}
	l.conn = conn
	corelog.Info(l, "Listening for UDP datagrams")

	buf := make([]byte, 65535)
	for {
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			return nil
		}
		if n > MaxUDPDatagramSize {
			corelog.Error(l, "Dropping oversized UDP datagram", "remote", remote.String(), "size", n)
			continue
		}
		pkt := make([]byte, n)
		copy(pkt, buf[:n])

		face := l.faceFor(remote)
		l.onRecv(pkt, face)
	}
}

// faceFor returns the pseudo-face for remote, creating one (and evicting
// the LRU child if at capacity) if this is a new peer, and otherwise
// bumping its recency.
func (l *UDPListener) faceFor(remote *net.UDPAddr) *UDPFace {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := remote.String()
	if f, ok := l.children[key]; ok {
		l.order.MoveToBack(f.elem)
		return f
	}

	if len(l.children) >= l.maxChildren {
		l.evictOldestLocked()
	}

	f := &UDPFace{
		base: base{
			id:        AllocFaceID(),
			kind:      KindUDP,
			remoteURI: key,
			onRecv:    l.onRecv,
		},
		listener: l,
		remote:   remote,
	}
	f.elem = l.order.PushBack(f)
	l.children[key] = f
	corelog.Info(l, "Accepted UDP pseudo-face", "faceid", f.FaceID(), "remote", key)
	l.onAccept(f)
	return f
}

func (l *UDPListener) evictOldestLocked() {
	front := l.order.Front()
	if front == nil {
		return
	}
	f := front.Value.(*UDPFace)
	corelog.Info(l, "Evicting least-recently-used UDP face", "faceid", f.FaceID())
	f.markClosed(false)
	delete(l.children, f.remoteURI)
	l.order.Remove(front)
}

func (l *UDPListener) forget(f *UDPFace) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.children[f.remoteURI]; ok && cur == f {
		delete(l.children, f.remoteURI)
		l.order.Remove(f.elem)
	}
}

// Close shuts down the shared UDP socket.
func (l *UDPListener) Close() {
	if l.conn != nil {
		l.conn.Close()
		<-l.stopped
	}
}

func (l *UDPListener) String() string {
	return fmt.Sprintf("udp-listener(%s)", l.addr)
}
