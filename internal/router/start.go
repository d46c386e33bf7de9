package router

import (
	"fmt"

	"github.com/ndn-tools/nrd/internal/core"
	"github.com/ndn-tools/nrd/internal/corelog"
	"github.com/ndn-tools/nrd/internal/face"
)

// Start brings up the command socket and every configured face listener,
// then starts the router's event loop. It mirrors NameRouter::run, which
// opens the command socket and both master faces before returning.
func (r *Router) Start(cfg *core.Config) error {
	if err := r.startCommandSocket(cfg.LocalCommandBind); err != nil {
		return err
	}

	for _, fc := range cfg.Faces {
		switch fc.Kind {
		case "tcp":
			l := face.NewTCPListener(fc.Bind, r.onAcceptTask, r.onRecv, r.onMasterFaceCloseTask)
			r.listeners = append(r.listeners, l)
			go r.runListener(l)
		case "udp":
			l := face.NewUDPListener(fc.Bind, cfg.MaxUDPChildren, r.onAcceptTask, r.onRecv)
			r.listeners = append(r.listeners, l)
			go r.runListener(l)
		case "ws":
			l := face.NewWSListener(fc.Bind, r.onAcceptTask, r.onRecv, r.onMasterFaceCloseTask)
			r.listeners = append(r.listeners, l)
			go r.runListener(l)
		default:
			return fmt.Errorf("router: unknown face kind %q", fc.Kind)
		}
	}

	go r.Run()
	return nil
}

type runnable interface{ Run() error }

func (r *Router) runListener(l runnable) {
	if err := l.Run(); err != nil {
		corelog.Error(r, "Listener exited with error", "err", err)
	}
}

// onAcceptTask registers a newly accepted face, re-entering the event loop
// via Post since listeners accept on their own goroutine.
func (r *Router) onAcceptTask(f face.Face) {
	r.Post(func() { r.registerFace(f) })
}

// onMasterFaceCloseTask re-enters the event loop to run onMasterFaceError
// for a face a listener accepted, mirroring NameRouter::onMasterFaceError.
func (r *Router) onMasterFaceCloseTask(faceID uint64) {
	r.Post(func() { r.onMasterFaceError(faceID) })
}
