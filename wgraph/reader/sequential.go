package reader

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/wikifile"
	"github.com/rs/zerolog"
)

const sequentialQueueCapacity = 16 // within the 10-32 line bound from spec §4.2
const sequentialBufferSize = 1 << 20

// countingReader tracks how many bytes have been pulled from the
// underlying compressed stream, standing in for zstr's compressed_tellg.
type countingReader struct {
	r   io.Reader
	pos atomic.Uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.pos.Add(uint64(n))
	return n, err
}

// SequentialReader is the C2 sequential backend: one decoder goroutine
// reads a gzip stream through a 1 MiB buffer, splits on '\n', and pushes
// lines into a bounded channel. The reader goroutine is started eagerly
// at construction; Close joins it.
type SequentialReader struct {
	file       *os.File
	counting   *countingReader
	gz         *gzip.Reader
	totalBytes uint64

	lines chan []byte
	done  chan struct{}
	err   error

	log zerolog.Logger
}

// NewSequentialReader opens file.DataPath() and starts the background
// decoder goroutine.
func NewSequentialReader(file wikifile.WikiFile, log zerolog.Logger) (*SequentialReader, error) {
	f, err := os.Open(file.DataPath())
	if err != nil {
		return nil, fmt.Errorf("reader: open %q: %w", file.DataPath(), err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reader: stat %q: %w", file.DataPath(), err)
	}

	cr := &countingReader{r: f}
	gz, err := gzip.NewReader(cr)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reader: parse gzip header of %q: %w", file.DataPath(), err)
	}

	sr := &SequentialReader{
		file:       f,
		counting:   cr,
		gz:         gz,
		totalBytes: uint64(info.Size()),
		lines:      make(chan []byte, sequentialQueueCapacity),
		done:       make(chan struct{}),
		log:        log,
	}
	go sr.readLines()
	return sr, nil
}

func (r *SequentialReader) readLines() {
	defer close(r.lines)
	defer close(r.done)

	br := bufio.NewReaderSize(r.gz, sequentialBufferSize)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if line[len(line)-1] == '\n' {
				line = line[:len(line)-1]
			}
			r.lines <- line
		}
		if err != nil {
			if err != io.EOF {
				r.err = fmt.Errorf("reader: read line: %w", err)
				r.log.Error().Err(err).Msg("sequential reader failed mid-stream")
			}
			return
		}
	}
}

// GetLine implements LineReader.
func (r *SequentialReader) GetLine() ([]byte, bool) {
	line, ok := <-r.lines
	return line, ok
}

// GetProgress implements LineReader.
func (r *SequentialReader) GetProgress() ReadProgress {
	return ReadProgress{
		TotalBytes:   r.totalBytes,
		CurrentBytes: r.counting.pos.Load(),
	}
}

// Close implements LineReader.
func (r *SequentialReader) Close() error {
	<-r.done
	if err := r.gz.Close(); err != nil {
		return err
	}
	if err := r.file.Close(); err != nil {
		return err
	}
	return r.err
}
