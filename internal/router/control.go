package router

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/ndn-tools/nrd/internal/corelog"
	"github.com/ndn-tools/nrd/internal/face"
	"github.com/ndn-tools/nrd/internal/wire"
)

// command is the JSON envelope every control-plane datagram is parsed
// into, mirroring the rapidjson::Document field lookups in
// basic_router.cpp's commandReadHandler and its per-action handlers. Every
// field is optional at the JSON level; each handler validates the subset
// it needs, exactly as the original does with HasMember/Is* checks.
type command struct {
	Action *string `json:"action"`
	ID     *uint64 `json:"id"`

	Result *bool `json:"result"`

	ManagerAddress *string `json:"manager_address"`
	ManagerPort    *uint16 `json:"manager_port"`
	CheckPrefix    *bool   `json:"check_prefix"`

	Layer   *string `json:"layer"`
	Address *string `json:"address"`
	Port    *uint16 `json:"port"`

	FaceID *uint64 `json:"face_id"`

	Prefixes []string `json:"prefixes"`
}

// startCommandSocket binds the control-plane UDP socket and starts its read
// loop in its own goroutine, mirroring NameRouter::commandRead /
// commandReadHandler's async_receive_from loop.
func (r *Router) startCommandSocket(bind string) error {
	addr, err := net.ResolveUDPAddr("udp", bind)
	if err != nil {
		return fmt.Errorf("router: resolving command bind address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("router: binding command socket: %w", err)
	}
	r.commandConn = conn
	go r.readCommands()
	return nil
}

func (r *Router) readCommands() {
	buf := make([]byte, 65536)
	for {
		n, remote, err := r.commandConn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		body := make([]byte, n)
		copy(body, buf[:n])
		r.Post(func() { r.dispatchCommand(body, remote) })
	}
}

// dispatchCommand parses and routes one control-plane datagram, mirroring
// commandReadHandler's ACTIONS lookup table. Parse failures, unknown
// actions and commands without an action or id are silently ignored, as
// are underspecified commands in general; add_route and del_route are the
// exception, answering a missing face_id or an empty prefix list with a
// "fail" reply.
func (r *Router) dispatchCommand(body []byte, remote *net.UDPAddr) {
	r.remoteCommandAddr = remote

	var cmd command
	if err := json.Unmarshal(body, &cmd); err != nil {
		return
	}
	if cmd.Action == nil || cmd.ID == nil {
		return
	}

	switch *cmd.Action {
	case "reply":
		r.commandReply(cmd)
	case "edit_config":
		r.commandEditConfig(cmd)
	case "add_face":
		r.commandAddFace(cmd)
	case "del_face":
		r.commandDelFace(cmd)
	case "add_route":
		r.commandAddRoute(cmd)
	case "del_route":
		r.commandDelRoute(cmd)
	case "list":
		r.commandList(cmd)
	}
}

func (r *Router) sendReply(msg string) {
	if r.commandConn == nil || r.remoteCommandAddr == nil {
		return
	}
	if _, err := r.commandConn.WriteToUDP([]byte(msg), r.remoteCommandAddr); err != nil {
		corelog.Warn(r, "Failed to send command reply", "err", err)
	}
}

// commandReply resolves a pending manager request by request_id, mirroring
// NameRouter::commandReply.
func (r *Router) commandReply(cmd command) {
	if cmd.Result == nil {
		return
	}
	r.reqs.Resolve(*cmd.ID, *cmd.Result)
}

// commandEditConfig updates the manager endpoint and/or check_prefix flag,
// mirroring NameRouter::commandEditConfig.
func (r *Router) commandEditConfig(cmd command) {
	changes := []string{}

	if cmd.ManagerAddress != nil && cmd.ManagerPort != nil {
		newAddr := &net.UDPAddr{IP: net.ParseIP(*cmd.ManagerAddress), Port: int(*cmd.ManagerPort)}
		if r.managerAddr == nil || r.managerAddr.String() != newAddr.String() {
			r.managerAddr = newAddr
			changes = append(changes, "manager_endpoint")
		}
	}

	if cmd.CheckPrefix != nil && *cmd.CheckPrefix != r.checkPrefix {
		r.checkPrefix = *cmd.CheckPrefix
		changes = append(changes, "check_prefix")
	}

	changesJSON, _ := json.Marshal(changes)
	r.sendReply(fmt.Sprintf(
		`{"name":%q, "type":"reply", "id":%d, "action":"edit_config", "changes":%s}`,
		r.name.String(), *cmd.ID, changesJSON))
}

// commandAddFace dials out to address:port over the requested layer and
// registers the resulting face as an egress face, mirroring
// NameRouter::commandAddFace.
func (r *Router) commandAddFace(cmd command) {
	if cmd.Layer == nil || cmd.Address == nil || cmd.Port == nil {
		return
	}

	var network string
	var kind face.Kind
	switch *cmd.Layer {
	case "tcp":
		network, kind = "tcp", face.KindTCP
	case "udp":
		network, kind = "udp", face.KindUDP
	default:
		return
	}

	target := net.JoinHostPort(*cmd.Address, fmt.Sprint(*cmd.Port))
	conn, err := net.Dial(network, target)
	if err != nil {
		corelog.Warn(r, "Failed to dial add_face target", "layer", *cmd.Layer, "target", target, "err", err)
		return
	}

	id := face.AllocFaceID()
	onClose := func() { r.Post(func() { r.onFaceError(id) }) }
	f := face.NewDialedFace(id, conn, kind, r.onRecv, onClose)

	r.registerFace(f)
	r.egressFaces[f.FaceID()] = f
	corelog.Info(r, "Added egress face", "faceid", f.FaceID(), "layer", *cmd.Layer, "target", target)

	r.sendReply(fmt.Sprintf(
		`{"name":%q, "type":"reply", "id":%d, "action":"add_face", "face_id":%d}`,
		r.name.String(), *cmd.ID, f.FaceID()))
}

// commandDelFace closes and forgets an egress face, mirroring
// NameRouter::commandDelFace — including a fix for the original's stray
// quote after "id":N that made its JSON reply malformed (spec.md §9).
func (r *Router) commandDelFace(cmd command) {
	if cmd.FaceID == nil {
		return
	}
	f, ok := r.egressFaces[*cmd.FaceID]
	if ok {
		f.Close()
		r.fib.RemoveFace(f)
		delete(r.egressFaces, *cmd.FaceID)
		delete(r.faces, *cmd.FaceID)
		corelog.Info(r, "Removed egress face", "faceid", *cmd.FaceID)
	}
	r.sendReply(fmt.Sprintf(
		`{"name":%q, "type":"reply", "id":%d, "action":"del_face", "face_id":%d, "status":%t}`,
		r.name.String(), *cmd.ID, *cmd.FaceID, ok))
}

// commandAddRoute registers prefixes for an existing egress face, mirroring
// NameRouter::commandAddRoutes.
func (r *Router) commandAddRoute(cmd command) {
	if cmd.FaceID == nil || len(cmd.Prefixes) == 0 {
		r.sendReply(fmt.Sprintf(
			`{"name":%q, "type":"reply", "id":%d, "action":"add_route", "status":"fail", "reason":"empty prefix list"}`,
			r.name.String(), *cmd.ID))
		return
	}
	f, ok := r.egressFaces[*cmd.FaceID]
	if !ok {
		r.sendReply(fmt.Sprintf(
			`{"name":%q, "type":"reply", "id":%d, "action":"add_route", "status":"fail", "reason":"unknown face id"}`,
			r.name.String(), *cmd.ID))
		return
	}
	for _, p := range cmd.Prefixes {
		name := wire.ParseName(p)
		r.fib.AddRoute(name, f, 0)
		corelog.Info(r, "Route added by manager", "prefix", name.String(), "faceid", f.FaceID())
	}
	r.sendReply(fmt.Sprintf(
		`{"name":%q, "type":"reply", "id":%d, "action":"add_route", "status":"success"}`,
		r.name.String(), *cmd.ID))
}

// commandDelRoute withdraws prefixes for an existing egress face, mirroring
// NameRouter::commandDelRoutes.
func (r *Router) commandDelRoute(cmd command) {
	if cmd.FaceID == nil || len(cmd.Prefixes) == 0 {
		r.sendReply(fmt.Sprintf(
			`{"name":%q, "type":"reply", "id":%d, "action":"del_route", "status":"fail", "reason":"empty prefix list"}`,
			r.name.String(), *cmd.ID))
		return
	}
	f, ok := r.egressFaces[*cmd.FaceID]
	if !ok {
		r.sendReply(fmt.Sprintf(
			`{"name":%q, "type":"reply", "id":%d, "action":"del_route", "status":"fail", "reason":"unknown face id"}`,
			r.name.String(), *cmd.ID))
		return
	}
	for _, p := range cmd.Prefixes {
		name := wire.ParseName(p)
		r.fib.RemoveRoute(name, f)
		corelog.Info(r, "Route removed by manager", "prefix", name.String(), "faceid", f.FaceID())
	}
	r.sendReply(fmt.Sprintf(
		`{"name":%q, "type":"reply", "id":%d, "action":"del_route", "status":"success"}`,
		r.name.String(), *cmd.ID))
}

// commandList reports the current FIB, mirroring NameRouter::commandList's
// `{"table":{"type":"fib","tree":...}}` shape: tree is the FIB's recursive
// depth-first dump (spec.md §4.3 `toJSON()`, §4.6 `list`), not a flattened
// entry list, so a client built against the documented wire format can walk
// it directly.
func (r *Router) commandList(cmd command) {
	tree, _ := json.Marshal(r.fib.ToJSON())
	r.sendReply(fmt.Sprintf(
		`{"name":%q, "type":"reply", "id":%d, "action":"list", "table":{"type":"fib", "tree":%s}}`,
		r.name.String(), *cmd.ID, tree))
}
