package loader

import (
	"sync"

	radix "github.com/armon/go-radix"
)

// TitleRadixIndex layers a patricia tree over the page title lookup for
// prefix search, the same structure the teacher's PatriciaPathIndex
// (vvfs/trees/pathindex.go) uses for O(k) path lookups. It is populated
// alongside TitleLookup by PageLoader and used by interactive query
// resolution to suggest completions when an exact title match fails.
type TitleRadixIndex struct {
	mu   sync.RWMutex
	tree *radix.Tree
}

// NewTitleRadixIndex returns an empty index.
func NewTitleRadixIndex() *TitleRadixIndex {
	return &TitleRadixIndex{tree: radix.New()}
}

// Insert adds title -> pageIndex. First-wins on collision, matching
// TitleLookup's redirect-masking semantics (spec §3).
func (idx *TitleRadixIndex) Insert(title string, pageIndex uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.tree.Get(title); exists {
		return
	}
	idx.tree.Insert(title, pageIndex)
}

// PrefixSearch returns up to limit page indices whose title has the
// given prefix, in the radix tree's lexicographic order.
func (idx *TitleRadixIndex) PrefixSearch(prefix string, limit int) []uint32 {
	if limit <= 0 {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []uint32
	idx.tree.WalkPrefix(prefix, func(_ string, v interface{}) bool {
		out = append(out, v.(uint32))
		return len(out) >= limit
	})
	return out
}

// Len reports the number of distinct titles indexed.
func (idx *TitleRadixIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Len()
}
