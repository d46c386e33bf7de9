package table

import (
	"testing"

	"github.com/ndn-tools/nrd/internal/wire"
	"github.com/stretchr/testify/assert"
)

func TestFIBLongestMatchPrefersDeepestRegisteredPrefix(t *testing.T) {
	f := NewFIB()
	fa := &fakeFace{id: 1}
	fb := &fakeFace{id: 2}

	f.AddRoute(wire.ParseName("/a"), fa, 0)
	f.AddRoute(wire.ParseName("/a/b"), fb, 0)

	routes, depth := f.LongestMatch(wire.ParseName("/a/b/c"))
	assert.Equal(t, 2, depth)
	assert.Len(t, routes, 1)
	assert.Equal(t, uint64(2), routes[0].Face.FaceID())
}

func TestFIBLongestMatchFallsBackToShorterPrefix(t *testing.T) {
	f := NewFIB()
	fa := &fakeFace{id: 1}
	f.AddRoute(wire.ParseName("/a"), fa, 0)

	routes, depth := f.LongestMatch(wire.ParseName("/a/b/c"))
	assert.Equal(t, 1, depth)
	assert.Len(t, routes, 1)
}

func TestFIBLongestMatchNoneRegisteredReturnsEmpty(t *testing.T) {
	f := NewFIB()
	routes, depth := f.LongestMatch(wire.ParseName("/x/y"))
	assert.Nil(t, routes)
	assert.Equal(t, 0, depth)
}

func TestFIBMultipleRoutesOrderedByCostThenFaceID(t *testing.T) {
	f := NewFIB()
	fa := &fakeFace{id: 5}
	fb := &fakeFace{id: 1}
	fc := &fakeFace{id: 3}

	f.AddRoute(wire.ParseName("/a"), fa, 10)
	f.AddRoute(wire.ParseName("/a"), fb, 10)
	f.AddRoute(wire.ParseName("/a"), fc, 1)

	routes, _ := f.LongestMatch(wire.ParseName("/a"))
	assert.Len(t, routes, 3)
	assert.Equal(t, uint64(3), routes[0].Face.FaceID())
	assert.Equal(t, uint64(1), routes[1].Face.FaceID())
	assert.Equal(t, uint64(5), routes[2].Face.FaceID())
}

func TestFIBAddRouteSameFaceOverwritesCost(t *testing.T) {
	f := NewFIB()
	fa := &fakeFace{id: 1}
	f.AddRoute(wire.ParseName("/a"), fa, 10)
	f.AddRoute(wire.ParseName("/a"), fa, 2)

	routes, _ := f.LongestMatch(wire.ParseName("/a"))
	assert.Len(t, routes, 1)
	assert.Equal(t, 2, routes[0].Cost)
}

func TestFIBRemoveRoute(t *testing.T) {
	f := NewFIB()
	fa := &fakeFace{id: 1}
	f.AddRoute(wire.ParseName("/a"), fa, 0)
	assert.True(t, f.RemoveRoute(wire.ParseName("/a"), fa))
	assert.False(t, f.RemoveRoute(wire.ParseName("/a"), fa))

	routes, depth := f.LongestMatch(wire.ParseName("/a"))
	assert.Nil(t, routes)
	assert.Equal(t, 0, depth)
}

func TestFIBRemoveFaceDropsAllItsRoutes(t *testing.T) {
	f := NewFIB()
	fa := &fakeFace{id: 1}
	fb := &fakeFace{id: 2}
	f.AddRoute(wire.ParseName("/a"), fa, 0)
	f.AddRoute(wire.ParseName("/a/b"), fa, 0)
	f.AddRoute(wire.ParseName("/a/b"), fb, 0)

	f.RemoveFace(fa)

	routesA, _ := f.LongestMatch(wire.ParseName("/a"))
	assert.Nil(t, routesA)

	routesAB, _ := f.LongestMatch(wire.ParseName("/a/b"))
	assert.Len(t, routesAB, 1)
	assert.Equal(t, uint64(2), routesAB[0].Face.FaceID())
}

func TestFIBEntriesOrderedLexicographically(t *testing.T) {
	f := NewFIB()
	fa := &fakeFace{id: 1}
	f.AddRoute(wire.ParseName("/b"), fa, 0)
	f.AddRoute(wire.ParseName("/a"), fa, 0)
	f.AddRoute(wire.ParseName("/a/z"), fa, 0)

	entries := f.Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, "/a", entries[0].Name.String())
	assert.Equal(t, "/a/z", entries[1].Name.String())
	assert.Equal(t, "/b", entries[2].Name.String())
}
