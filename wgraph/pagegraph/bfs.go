package pagegraph

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidQuery is returned by AllShortestPaths when either endpoint is
// out of range for the graph.
var ErrInvalidQuery = errors.New("pagegraph: start or end index out of bounds")

const noDistance = math.MaxUint32

// QueryProgress reports layered-BFS traversal progress, published without
// locking as a plain value snapshot at roughly refreshInterval cadence,
// mirroring the reference's UIState.bfs_progress.
type QueryProgress struct {
	CurrentLayer        uint32
	LayerSize           uint32
	LayerExploredCount  uint32
	TotalExploredNodes  uint64
}

// QueryProgressSink receives QueryProgress snapshots.
type QueryProgressSink func(QueryProgress)

// bfsResult holds, for every node, the full set of predecessors on a
// shortest path from the query's start node, plus the end node's
// distance (noDistance if unreached).
type bfsResult struct {
	parents [][]uint32
	dist    uint32
}

// bfsWithParents runs a single-source BFS from start, recording every
// parent that reaches a node at its shortest distance (not just the
// first), so all shortest paths — not one — can be reconstructed. It
// stops as soon as the layer just before end's has been fully expanded
// (at which point end's parent list is complete), matching the
// reference's early-exit-on-next-layer check.
func (g *Graph) bfsWithParents(start, end uint32, refreshInterval time.Duration, sink QueryProgressSink) bfsResult {
	n := len(g.pages)
	dist := make([]uint32, n)
	for i := range dist {
		dist[i] = noDistance
	}
	parents := make([][]uint32, n)

	queue := make([]uint32, 0, n)
	queue = append(queue, start)
	dist[start] = 0

	explored := newExploredSet()
	explored.visit(start)

	currentLayer := uint32(0)
	layerSize := uint32(0)
	layerExploredCount := uint32(0)

	lastUpdate := time.Now()
	head := 0

	for head < len(queue) {
		currentNode := queue[head]
		head++

		if dist[currentNode] > currentLayer {
			if dist[end] != noDistance {
				break
			}
			currentLayer = dist[currentNode]
			layerSize = uint32(len(queue)-head) + 1
			layerExploredCount = 0

			if sink != nil {
				sink(QueryProgress{
					CurrentLayer:       currentLayer,
					LayerSize:          layerSize,
					LayerExploredCount: layerExploredCount,
					TotalExploredNodes: explored.count(),
				})
				lastUpdate = time.Now()
			}
		}

		for _, neighbor := range g.neighborsOf(currentNode) {
			if dist[neighbor] == noDistance {
				dist[neighbor] = dist[currentNode] + 1
				parents[neighbor] = append(parents[neighbor], currentNode)
				explored.visit(neighbor)
				queue = append(queue, neighbor)
			} else if dist[neighbor] == dist[currentNode]+1 {
				parents[neighbor] = append(parents[neighbor], currentNode)
			}
		}

		layerExploredCount++

		if sink != nil {
			now := time.Now()
			if now.Sub(lastUpdate) >= refreshInterval {
				sink(QueryProgress{
					CurrentLayer:       currentLayer,
					LayerSize:          layerSize,
					LayerExploredCount: layerExploredCount,
					TotalExploredNodes: explored.count(),
				})
				lastUpdate = now
			}
		}
	}

	if sink != nil {
		sink(QueryProgress{
			CurrentLayer:       currentLayer,
			LayerSize:          layerSize,
			LayerExploredCount: layerExploredCount,
			TotalExploredNodes: explored.count(),
		})
	}

	return bfsResult{parents: parents, dist: dist[end]}
}

// AllShortestPaths returns every path of minimum length from start to
// end, each as a sequence of node indices from start to end inclusive.
// start == end returns a single trivial one-node path. A disconnected
// pair returns an empty, non-nil slice. Backtracking uses an explicit
// stack of partial paths (end-to-start order, reversed on completion)
// rather than recursion, matching the reference algorithm exactly.
func (g *Graph) AllShortestPaths(start, end uint32, refreshInterval time.Duration, sink QueryProgressSink) ([][]uint32, error) {
	n := uint32(len(g.pages))
	if start >= n || end >= n {
		return nil, fmt.Errorf("%w: start=%d end=%d node_count=%d", ErrInvalidQuery, start, end, n)
	}
	if start == end {
		return [][]uint32{{start}}, nil
	}

	result := g.bfsWithParents(start, end, refreshInterval, sink)
	paths := make([][]uint32, 0)
	if result.dist == noDistance {
		return paths, nil
	}

	stack := [][]uint32{{end}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		currentNode := current[len(current)-1]
		if currentNode == start {
			reversed := make([]uint32, len(current))
			for i, v := range current {
				reversed[len(current)-1-i] = v
			}
			paths = append(paths, reversed)
			continue
		}

		for _, parent := range result.parents[currentNode] {
			next := make([]uint32, len(current)+1)
			copy(next, current)
			next[len(current)] = parent
			stack = append(stack, next)
		}
	}

	return paths, nil
}
