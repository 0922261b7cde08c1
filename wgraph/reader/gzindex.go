package reader

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// DecompressionIndex is WikiGraph Explorer's own reduced decompression
// index. Full random-access gzip seeking, as the gztool binary index
// format provides, needs externally tracked flate back-reference windows
// at each checkpoint; no library in the retrieval pack implements that,
// so this index only records periodic compressed-offset checkpoints.
// ParallelReader imports it before reading and exports it after a full
// read; nothing reads the checkpoints back, so it does not enable
// seeking, does not skip item-count estimation, and does not detect a
// changed source file. It does not use gztool's on-disk layout — see
// DESIGN.md.
type DecompressionIndex struct {
	mu          sync.Mutex
	Checkpoints []uint64 `json:"checkpoints"`
}

const checkpointStrideBytes = 32 * 1024 * 1024 // at most one checkpoint per ~32 MiB of compressed input

// NewDecompressionIndex returns an empty index.
func NewDecompressionIndex() *DecompressionIndex {
	return &DecompressionIndex{}
}

func (idx *DecompressionIndex) recordCheckpoint(compressedPos uint64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(idx.Checkpoints) == 0 || compressedPos-idx.Checkpoints[len(idx.Checkpoints)-1] >= checkpointStrideBytes {
		idx.Checkpoints = append(idx.Checkpoints, compressedPos)
	}
}

// ImportDecompressionIndex reads a previously exported index. Import
// failures are the caller's responsibility to treat as best-effort per
// spec §7's IndexIOFailure policy.
func ImportDecompressionIndex(path string) (*DecompressionIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reader: read index %q: %w", path, err)
	}
	var idx DecompressionIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("reader: decode index %q: %w", path, err)
	}
	return &idx, nil
}

// ExportDecompressionIndex writes idx to path after a complete read.
func ExportDecompressionIndex(path string, idx *DecompressionIndex) error {
	idx.mu.Lock()
	data, err := json.Marshal(idx)
	idx.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reader: encode index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("reader: write index %q: %w", path, err)
	}
	return nil
}
