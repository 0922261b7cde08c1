// Package reader produces newline-delimited lines from a gzip-compressed
// Wikipedia SQL dump file, reporting compressed-byte progress as it goes.
// Two interchangeable backends satisfy the same LineReader contract: a
// sequential single-goroutine decoder and a stripe-pipelined parallel
// decoder built on a bounded channel.
package reader

// ReadProgress reports byte-level progress against the compressed input
// stream.
type ReadProgress struct {
	TotalBytes   uint64
	CurrentBytes uint64
}

// LineReader is the contract both backends satisfy: GetLine blocks until
// a line is available or the stream ends; GetProgress is safe to call
// concurrently with GetLine.
type LineReader interface {
	// GetLine returns the next decompressed line with its trailing
	// newline stripped. ok is false once the stream is exhausted.
	GetLine() (line []byte, ok bool)
	GetProgress() ReadProgress
	// Close joins the backing goroutine(s). Safe to call once.
	Close() error
}
