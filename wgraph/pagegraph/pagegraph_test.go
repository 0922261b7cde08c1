package pagegraph

import (
	"testing"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagesOf(titles ...string) []loader.Page {
	pages := make([]loader.Page, len(titles))
	for i, t := range titles {
		pages[i] = loader.Page{Title: t}
	}
	return pages
}

func TestMinimalGraphSingleShortestPath(t *testing.T) {
	// A(0) -> B(1) -> C(2), A(0) -> C(2) direct.
	pages := pagesOf("A", "B", "C")
	edges := []loader.Edge{{From: 0, To: 1}, {From: 0, To: 2}, {From: 1, To: 2}}
	g := BuildGraph(pages, edges, 0, nil)

	paths, err := g.AllShortestPaths(0, 2, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]uint32{{0, 2}}, paths)
}

func TestDiamondReturnsBothShortestPaths(t *testing.T) {
	// s(0) -> u(1), s(0) -> v(2), u(1) -> t(3), v(2) -> t(3).
	pages := pagesOf("s", "u", "v", "t")
	edges := []loader.Edge{{From: 0, To: 1}, {From: 0, To: 2}, {From: 1, To: 3}, {From: 2, To: 3}}
	g := BuildGraph(pages, edges, 0, nil)

	paths, err := g.AllShortestPaths(0, 3, 0, nil)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Contains(t, paths, []uint32{0, 1, 3})
	assert.Contains(t, paths, []uint32{0, 2, 3})
}

func TestNoPathReturnsEmpty(t *testing.T) {
	pages := pagesOf("a", "b", "c")
	edges := []loader.Edge{{From: 0, To: 1}}
	g := BuildGraph(pages, edges, 0, nil)

	paths, err := g.AllShortestPaths(0, 2, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.NotNil(t, paths)
}

func TestSelfQueryReturnsTrivialPath(t *testing.T) {
	pages := pagesOf("a", "b")
	edges := []loader.Edge{{From: 0, To: 1}}
	g := BuildGraph(pages, edges, 0, nil)

	paths, err := g.AllShortestPaths(0, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]uint32{{0}}, paths)
}

func TestOutOfBoundsQueryIsError(t *testing.T) {
	pages := pagesOf("a", "b")
	edges := []loader.Edge{{From: 0, To: 1}}
	g := BuildGraph(pages, edges, 0, nil)

	_, err := g.AllShortestPaths(0, 5, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestBFSLayerBoundaryStopsAtShortestLength(t *testing.T) {
	// s(0): two length-3 paths to t(4) via (1,2) and (via 5,6), plus one
	// length-4 path via (3, 7, 8). Only the two length-3 paths should be
	// returned.
	pages := pagesOf("s", "a1", "a2", "b1", "t", "c1", "c2", "d1", "d2")
	edges := []loader.Edge{
		{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 4}, // s-a1-a2-t (length 3)
		{From: 0, To: 5}, {From: 5, To: 6}, {From: 6, To: 4}, // s-c1-c2-t (length 3)
		{From: 0, To: 3}, {From: 3, To: 7}, {From: 7, To: 8}, {From: 8, To: 4}, // length 4
	}
	g := BuildGraph(pages, edges, 0, nil)

	paths, err := g.AllShortestPaths(0, 4, 0, nil)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		assert.Len(t, p, 4) // 4 nodes = length-3 path
	}
}

func TestBuildGraphCSRLayout(t *testing.T) {
	pages := pagesOf("a", "b", "c")
	edges := []loader.Edge{{From: 0, To: 1}, {From: 0, To: 2}, {From: 2, To: 1}}
	g := BuildGraph(pages, edges, 0, nil)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.ElementsMatch(t, []uint32{1, 2}, g.neighborsOf(0))
	assert.Empty(t, g.neighborsOf(1))
	assert.Equal(t, []uint32{1}, g.neighborsOf(2))
}
