package pagegraph

import (
	roaring "github.com/RoaringBitmap/roaring"
)

// exploredSet tracks which page indices a BFS traversal has already
// enqueued, the same way the teacher's AttributeBitmaps tracks membership
// of a path id in an attribute's set, but keyed directly by node index
// instead of by an intermediate attribute id.
type exploredSet struct {
	bitmap *roaring.Bitmap
}

func newExploredSet() *exploredSet {
	return &exploredSet{bitmap: roaring.New()}
}

// visit marks index as explored and reports whether it was newly marked.
func (e *exploredSet) visit(index uint32) bool {
	if e.bitmap.Contains(index) {
		return false
	}
	e.bitmap.Add(index)
	return true
}

// count returns the number of distinct explored nodes so far.
func (e *exploredSet) count() uint64 {
	return e.bitmap.GetCardinality()
}
