package router

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/ndn-tools/nrd/internal/table"
	"github.com/ndn-tools/nrd/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commandLoopback wires a router's command socket to a private UDP pair so
// sendReply's writes can be read back in-process without touching the real
// control-plane listener.
func commandLoopback(t *testing.T, r *Router) (read func() map[string]any) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	client, err := net.DialUDP("udp", nil, conn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	r.commandConn = conn
	r.remoteCommandAddr = client.LocalAddr().(*net.UDPAddr)

	return func() map[string]any {
		buf := make([]byte, 65536)
		n, err := client.Read(buf)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.Unmarshal(buf[:n], &out))
		return out
	}
}

func idPtr(v uint64) *uint64 { return &v }
func strPtr(v string) *string { return &v }
func u16Ptr(v uint16) *uint16 { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestCommandEditConfigReportsChanges(t *testing.T) {
	r := newTestRouter(t)
	read := commandLoopback(t, r)

	r.commandEditConfig(command{
		ID:             idPtr(1),
		ManagerAddress: strPtr("127.0.0.1"),
		ManagerPort:    u16Ptr(6000),
		CheckPrefix:    boolPtr(true),
	})

	reply := read()
	assert.Equal(t, "edit_config", reply["action"])
	changes, ok := reply["changes"].([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"manager_endpoint", "check_prefix"}, changes)
	assert.True(t, r.checkPrefix)
	assert.Equal(t, "127.0.0.1:6000", r.managerAddr.String())
}

func TestCommandEditConfigNoOpReportsNoChanges(t *testing.T) {
	r := newTestRouter(t)
	read := commandLoopback(t, r)

	r.commandEditConfig(command{ID: idPtr(1)})

	reply := read()
	changes, ok := reply["changes"].([]any)
	require.True(t, ok)
	assert.Empty(t, changes)
}

func TestCommandAddRouteThenDelRoute(t *testing.T) {
	r := newTestRouter(t)
	read := commandLoopback(t, r)

	egress := newFakeFace()
	r.registerFace(egress)
	r.egressFaces[egress.FaceID()] = egress

	r.commandAddRoute(command{ID: idPtr(1), FaceID: idPtr(egress.FaceID()), Prefixes: []string{"/a/b"}})
	reply := read()
	assert.Equal(t, "success", reply["status"])

	_, depth := r.fib.LongestMatch(wire.ParseName("/a/b/c"))
	assert.Equal(t, 2, depth)

	r.commandDelRoute(command{ID: idPtr(2), FaceID: idPtr(egress.FaceID()), Prefixes: []string{"/a/b"}})
	reply = read()
	assert.Equal(t, "success", reply["status"])

	_, depth = r.fib.LongestMatch(wire.ParseName("/a/b/c"))
	assert.Equal(t, 0, depth)
}

func TestCommandAddRouteUnknownFaceFails(t *testing.T) {
	r := newTestRouter(t)
	read := commandLoopback(t, r)

	r.commandAddRoute(command{ID: idPtr(1), FaceID: idPtr(999), Prefixes: []string{"/a"}})

	reply := read()
	assert.Equal(t, "fail", reply["status"])
	assert.Equal(t, "unknown face id", reply["reason"])
}

func TestCommandAddRouteEmptyPrefixesFails(t *testing.T) {
	r := newTestRouter(t)
	read := commandLoopback(t, r)

	r.commandAddRoute(command{ID: idPtr(1), FaceID: idPtr(1)})

	reply := read()
	assert.Equal(t, "fail", reply["status"])
	assert.Equal(t, "empty prefix list", reply["reason"])
}

func TestCommandDelFaceClosesAndForgetsFace(t *testing.T) {
	r := newTestRouter(t)
	read := commandLoopback(t, r)

	egress := newFakeFace()
	r.registerFace(egress)
	r.egressFaces[egress.FaceID()] = egress

	r.commandDelFace(command{ID: idPtr(1), FaceID: idPtr(egress.FaceID())})

	reply := read()
	assert.Equal(t, true, reply["status"])
	assert.True(t, egress.Closed())
	_, ok := r.egressFaces[egress.FaceID()]
	assert.False(t, ok)
}

func TestCommandDelFaceUnknownReportsFalseStatus(t *testing.T) {
	r := newTestRouter(t)
	read := commandLoopback(t, r)

	r.commandDelFace(command{ID: idPtr(1), FaceID: idPtr(42)})

	reply := read()
	assert.Equal(t, false, reply["status"])
}

func TestCommandListReportsFIBTree(t *testing.T) {
	r := newTestRouter(t)
	read := commandLoopback(t, r)

	f := newFakeFace()
	r.fib.AddRoute(wire.ParseName("/a/b"), f, 3)

	r.commandList(command{ID: idPtr(1)})

	reply := read()
	tableField, ok := reply["table"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "fib", tableField["type"])

	var root table.TreeNode
	treeBytes, err := json.Marshal(tableField["tree"])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(treeBytes, &root))

	assert.Equal(t, "", root.Component)
	assert.Empty(t, root.Faces)
	require.Len(t, root.Children, 1)

	a := root.Children[0]
	assert.Equal(t, "a", a.Component)
	assert.Empty(t, a.Faces)
	require.Len(t, a.Children, 1)

	b := a.Children[0]
	assert.Equal(t, "b", b.Component)
	require.Equal(t, []uint64{f.FaceID()}, b.Faces)
	assert.Empty(t, b.Children)
}

func TestDispatchCommandIgnoresMalformedOrUnderspecifiedInput(t *testing.T) {
	r := newTestRouter(t)
	remote := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1}

	// Malformed JSON: no panic, no reply attempted (commandConn is nil).
	r.dispatchCommand([]byte("not json"), remote)
	// Missing action/id: silently ignored, per basic_router.cpp's commented-out error branches.
	r.dispatchCommand([]byte(`{"id":1}`), remote)
	r.dispatchCommand([]byte(`{"action":"list"}`), remote)
}
