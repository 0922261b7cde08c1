// Package pagegraph builds the compressed sparse row adjacency structure
// from a resolved edge list and answers all-shortest-paths queries over
// it, the Go counterpart of the reference PageGraph class.
package pagegraph

import (
	"time"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/loader"
)

// Graph is the immutable compressed sparse row adjacency structure over
// the page set. offsets has len(pages)+1 entries; offsets[i]..offsets[i+1]
// slices neighbors into node i's out-edges, mirroring the reference
// adjacency_list but as one flat allocation instead of one vector per
// node.
type Graph struct {
	pages     []loader.Page
	offsets   []uint64
	neighbors []uint32
}

// BuildProgress reports edge-processing throughput while the CSR
// structure is under construction, published without locking as a plain
// value snapshot (spec's "no locking, atomic POD snapshot" design note).
type BuildProgress struct {
	ProcessedEdges uint64
	TotalEdges     uint64
	EdgesPerSecond float64
}

// ProgressSink receives progress snapshots, throttled to roughly once per
// refreshInterval.
type ProgressSink func(BuildProgress)

// BuildGraph constructs the CSR structure from pages and edges in two
// passes: an out-degree count to size neighbor slots exactly (matching
// the reference's out_links_count reservation pass), then a single fill
// pass using a per-node cursor. Edge order within a node's neighbor run
// is insertion order, same as the reference's emplace_back into a
// per-node vector.
func BuildGraph(pages []loader.Page, edges []loader.Edge, refreshInterval time.Duration, sink ProgressSink) *Graph {
	n := len(pages)
	offsets := make([]uint64, n+1)

	for _, e := range edges {
		offsets[e.From+1]++
	}
	for i := 0; i < n; i++ {
		offsets[i+1] += offsets[i]
	}

	neighbors := make([]uint32, len(edges))
	cursor := make([]uint64, n)
	copy(cursor, offsets[:n])

	start := time.Now()
	lastUpdate := start
	total := uint64(len(edges))

	for i, e := range edges {
		neighbors[cursor[e.From]] = e.To
		cursor[e.From]++

		if sink != nil {
			now := time.Now()
			if now.Sub(lastUpdate) >= refreshInterval {
				elapsed := now.Sub(start).Seconds()
				rate := 0.0
				if elapsed > 0 {
					rate = float64(i+1) / elapsed
				}
				sink(BuildProgress{ProcessedEdges: uint64(i + 1), TotalEdges: total, EdgesPerSecond: rate})
				lastUpdate = now
			}
		}
	}

	if sink != nil {
		elapsed := time.Since(start).Seconds()
		rate := 0.0
		if elapsed > 0 {
			rate = float64(len(edges)) / elapsed
		}
		sink(BuildProgress{ProcessedEdges: total, TotalEdges: total, EdgesPerSecond: rate})
	}

	return &Graph{pages: pages, offsets: offsets, neighbors: neighbors}
}

// NodeCount returns the number of pages in the graph.
func (g *Graph) NodeCount() int { return len(g.pages) }

// EdgeCount returns the number of directed edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.neighbors) }

// Page returns the page at index i.
func (g *Graph) Page(i uint32) loader.Page { return g.pages[i] }

// neighborsOf returns the out-neighbor slice for node i.
func (g *Graph) neighborsOf(i uint32) []uint32 {
	return g.neighbors[g.offsets[i]:g.offsets[i+1]]
}
