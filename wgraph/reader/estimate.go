package reader

import (
	"encoding/binary"
	"fmt"
	"os"
)

const bytesPerDumpChunk = 1024 * 1024 // Wikipedia dumps are emitted in ~1 MiB uncompressed line chunks.

// gzipISIZE reads the last 4 bytes of a gzip stream per RFC 1952: the
// uncompressed size modulo 2^32. For files whose uncompressed size
// exceeds 4 GiB this undercounts; EstimatedItemCount treats it as a
// heuristic lower bound and accepts under- or over-reservation.
func gzipISIZE(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reader: open %q for ISIZE read: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("reader: stat %q: %w", path, err)
	}
	if info.Size() < 4 {
		return 0, fmt.Errorf("reader: %q too small to contain a gzip trailer", path)
	}

	var buf [4]byte
	if _, err := f.ReadAt(buf[:], info.Size()-4); err != nil {
		return 0, fmt.Errorf("reader: read ISIZE trailer of %q: %w", path, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// EstimatedItemCount estimates the number of SQL tuples in the dump at
// path, given the byte length of its first INSERT line, per spec §4.3:
// (F / 1 MiB) * L1 * (O / F), where F is the compressed file size and O
// is the gzip-reported uncompressed size.
func EstimatedItemCount(path string, firstLineSize int) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("reader: stat %q: %w", path, err)
	}
	fileSize := info.Size()
	if fileSize == 0 {
		return 0, nil
	}

	isize, err := gzipISIZE(path)
	if err != nil {
		return 0, err
	}

	compressionRatio := float64(isize) / float64(fileSize)
	estimate := (float64(fileSize) / float64(bytesPerDumpChunk)) * float64(firstLineSize) * compressionRatio
	if estimate < 0 {
		return 0, nil
	}
	return uint64(estimate), nil
}
