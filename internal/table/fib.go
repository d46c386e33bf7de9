package table

import (
	"sort"

	"github.com/ndn-tools/nrd/internal/wire"
)

// fibNode is one level of the name trie. Children are keyed by the
// component's xxhash (wire.Component.Hash, grounded on the teacher's
// NameTrie child map) so lookups and inserts along a name's component path
// are O(depth) instead of O(entries).
type fibNode struct {
	comp     wire.Component
	children map[uint64][]*fibNode // bucketed by Hash(), chained on collision
	routes   map[uint64]*Route     // faceID -> Route, nil when this node has none
}

func newFibNode(c wire.Component) *fibNode {
	return &fibNode{comp: c, children: make(map[uint64][]*fibNode)}
}

func (n *fibNode) child(c wire.Component) *fibNode {
	for _, existing := range n.children[c.Hash()] {
		if existing.comp.Equal(c) {
			return existing
		}
	}
	return nil
}

func (n *fibNode) addChild(c *fibNode) {
	h := c.comp.Hash()
	n.children[h] = append(n.children[h], c)
}

// Route is one registered next hop: a face and a preference cost used to
// break ties among otherwise-equal routes (spec.md §4.3).
type Route struct {
	Face Face
	Cost int
}

// FIB is the Forwarding Information Base: a name-component trie mapping
// name prefixes to a set of (face, cost) routes, supporting longest-prefix
// match (spec.md §4.3).
type FIB struct {
	root *fibNode
}

// NewFIB constructs an empty FIB.
func NewFIB() *FIB {
	return &FIB{root: newFibNode(wire.Component{})}
}

// AddRoute registers a route for prefix via face, with the given cost. A
// second call for the same (prefix, face) overwrites the cost of the
// existing route (spec.md §4.3, §9 "add_route is idempotent per face").
func (f *FIB) AddRoute(prefix wire.Name, face Face, cost int) {
	n := f.root
	for _, c := range prefix {
		child := n.child(c)
		if child == nil {
			child = newFibNode(c)
			n.addChild(child)
		}
		n = child
	}
	if n.routes == nil {
		n.routes = make(map[uint64]*Route)
	}
	n.routes[face.FaceID()] = &Route{Face: face, Cost: cost}
}

// RemoveRoute removes the route for prefix via face, if any. It reports
// whether a route was removed.
func (f *FIB) RemoveRoute(prefix wire.Name, face Face) bool {
	n := f.root
	for _, c := range prefix {
		child := n.child(c)
		if child == nil {
			return false
		}
		n = child
	}
	if n.routes == nil {
		return false
	}
	if _, ok := n.routes[face.FaceID()]; !ok {
		return false
	}
	delete(n.routes, face.FaceID())
	return true
}

// RemoveFace removes every route anywhere in the FIB that points at face
// (spec.md §9: an "add_face"-issued face that is later destroyed leaves its
// FIB entries in place unless explicitly withdrawn — but a control-plane
// del_face does withdraw them; see router.go).
func (f *FIB) RemoveFace(face Face) {
	var walk func(n *fibNode)
	walk = func(n *fibNode) {
		delete(n.routes, face.FaceID())
		for _, bucket := range n.children {
			for _, c := range bucket {
				walk(c)
			}
		}
	}
	walk(f.root)
}

// LongestMatch returns the routes registered at the longest prefix of name
// that has any route at all, and that prefix's length in components. It
// returns (nil, 0) if no ancestor of name (including the root) has a route.
func (f *FIB) LongestMatch(name wire.Name) ([]*Route, int) {
	n := f.root
	var best []*Route
	bestDepth := 0
	if len(n.routes) > 0 {
		best = routeSlice(n.routes)
	}
	for i, c := range name {
		child := n.child(c)
		if child == nil {
			break
		}
		n = child
		if len(n.routes) > 0 {
			best = routeSlice(n.routes)
			bestDepth = i + 1
		}
	}
	return best, bestDepth
}

// HasRouteCovering reports whether face has registered any prefix that is
// an ancestor of (or equal to) name. This backs the "check_prefix" option
// (spec.md §4.4, §6): a Data packet is only accepted back from a face that
// is actually registered for some prefix of its name.
func (f *FIB) HasRouteCovering(face Face, name wire.Name) bool {
	n := f.root
	if _, ok := n.routes[face.FaceID()]; ok {
		return true
	}
	for _, c := range name {
		child := n.child(c)
		if child == nil {
			return false
		}
		n = child
		if _, ok := n.routes[face.FaceID()]; ok {
			return true
		}
	}
	return false
}

func routeSlice(m map[uint64]*Route) []*Route {
	out := make([]*Route, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}
		return out[i].Face.FaceID() < out[j].Face.FaceID()
	})
	return out
}

// Entry describes one FIB node that carries routes, as returned by Entries.
// The list control command uses ToJSON, not Entries.
type Entry struct {
	Name   wire.Name
	Routes []*Route
}

func sortedChildren(n *fibNode) []*fibNode {
	children := make([]*fibNode, 0, len(n.children))
	for _, bucket := range n.children {
		children = append(children, bucket...)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].comp.Compare(children[j].comp) < 0
	})
	return children
}

// Entries returns every FIB entry, ordered lexicographically by name.
func (f *FIB) Entries() []Entry {
	var out []Entry
	var walk func(prefix wire.Name, n *fibNode)
	walk = func(prefix wire.Name, n *fibNode) {
		if len(n.routes) > 0 {
			out = append(out, Entry{Name: prefix.Clone(), Routes: routeSlice(n.routes)})
		}
		for _, c := range sortedChildren(n) {
			walk(prefix.Append(c.comp), c)
		}
	}
	walk(wire.Name{}, f.root)
	return out
}

// TreeNode is one node of the FIB's JSON tree dump (spec.md §4.3
// `toJSON()`: "depth-first tree dump: {"component": "<bytes-hex-or-utf8>",
// "faces":[ids…], "children":[…]}"). Face IDs and children are sorted for
// determinism (spec.md §8 testable property 6: "FIB.toJSON is
// deterministic given a canonical component ordering").
type TreeNode struct {
	Component string      `json:"component"`
	Faces     []uint64    `json:"faces"`
	Children  []*TreeNode `json:"children"`
}

// ToJSON renders the FIB as the recursive tree spec.md §4.3 and §4.6 (the
// `list` command's `table.tree` field) require, rooted at the empty name.
func (f *FIB) ToJSON() *TreeNode {
	var walk func(n *fibNode) *TreeNode
	walk = func(n *fibNode) *TreeNode {
		faceIDs := make([]uint64, 0, len(n.routes))
		for id := range n.routes {
			faceIDs = append(faceIDs, id)
		}
		sort.Slice(faceIDs, func(i, j int) bool { return faceIDs[i] < faceIDs[j] })

		children := sortedChildren(n)
		out := &TreeNode{
			Component: n.comp.DisplayString(),
			Faces:     faceIDs,
			Children:  make([]*TreeNode, 0, len(children)),
		}
		for _, c := range children {
			out.Children = append(out.Children, walk(c))
		}
		return out
	}
	return walk(f.root)
}
