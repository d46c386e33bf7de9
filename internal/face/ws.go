// WebSocket face support, grounded on fw/face/web-socket-transport.go and
// fw/face/web-socket-listener.go in the teacher repo. This transport exists
// so browser-hosted applications can reach the router directly; the router
// itself treats a WebSocket face identically to any other (spec.md §4.1).
package face

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ndn-tools/nrd/internal/corelog"
)

// WSFace is a unicast face over a single WebSocket connection. Unlike TCP,
// WebSocket already frames messages, so each inbound binary message is
// handed to the router as one packet directly (no TLV framing pass needed).
type WSFace struct {
	base
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
}

// NewWSFace wraps an upgraded WebSocket connection as a Face identified by
// id (allocated by the caller, for the same reason NewTCPFace takes one).
func NewWSFace(id uint64, conn *websocket.Conn, onRecv func(pkt []byte, from Face), onClose func()) *WSFace {
	f := &WSFace{
		base: base{
			id:        id,
			kind:      KindWS,
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

// Send queues pkt for delivery as a single binary WebSocket message.
func (f *WSFace) Send(pkt []byte) error {
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

func (f *WSFace) runWrite() {
	for {
		select {
		case pkt := <-f.out:
			if err := f.conn.WriteMessage(websocket.BinaryMessage, pkt); err != nil {
				corelog.Warn(f, "Write failed", "err", err)
				f.Close()
				return
			}
		case <-f.done:
			return
		}
	}
}

func (f *WSFace) runRead() {
	defer f.Close()
	for {
		mt, msg, err := f.conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.BinaryMessage {
			corelog.Warn(f, "Ignored non-binary message")
			continue
		}
		f.onRecv(msg, f)
	}
}

// Close tears down the WebSocket connection and its goroutines.
func (f *WSFace) Close() {
	f.markClosed(true)
	f.conn.Close()
	select {
	case <-f.done:
	default:
		close(f.done)
	}
}

// WSListener upgrades incoming HTTP connections to WebSocket faces.
type WSListener struct {
	addr        string
	server      http.Server
	upgrader    websocket.Upgrader
	onAccept    func(f Face)
	onRecv      func(pkt []byte, from Face)
	onFaceClose func(faceID uint64)
}

// NewWSListener constructs a listener bound to addr serving the WebSocket
// upgrade at "/". onFaceClose, if non-nil, fires once per face when its
// connection drops.
func NewWSListener(addr string, onAccept func(f Face), onRecv func(pkt []byte, from Face), onFaceClose func(faceID uint64)) *WSListener {
	l := &WSListener{
		addr:        addr,
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		onAccept:    onAccept,
		onRecv:      onRecv,
		onFaceClose: onFaceClose,
	}
	l.server = http.Server{Addr: addr, Handler: http.HandlerFunc(l.handle)}
	return l
}

func (l *WSListener) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	id := AllocFaceID()
	var onClose func()
	if l.onFaceClose != nil {
		onClose = func() { l.onFaceClose(id) }
	}
	face := NewWSFace(id, conn, l.onRecv, onClose)
	corelog.Info(l, "Accepted WebSocket face", "faceid", face.FaceID(), "remote", face.RemoteURI())
	l.onAccept(face)
}

// Run starts the HTTP server. It blocks until the listener is closed and
// should be run in its own goroutine.
func (l *WSListener) Run() error {
	err := l.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close gracefully shuts the listener down.
func (l *WSListener) Close() {
	l.server.Shutdown(context.Background())
}

func (l *WSListener) String() string {
	return fmt.Sprintf("ws-listener(%s)", l.addr)
}
