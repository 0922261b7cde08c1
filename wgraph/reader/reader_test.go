package reader

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/wikifile"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGzipFixture(t *testing.T, lines []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "enwiki-20240101-page.sql.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	for _, l := range lines {
		_, err := gw.Write([]byte(l + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gw.Close())
	return path
}

func TestSequentialReaderReadsLines(t *testing.T) {
	lines := []string{
		"INSERT INTO `page` VALUES (1,0,'Foo',0);",
		"INSERT INTO `page` VALUES (2,0,'Bar',0);",
	}
	path := writeGzipFixture(t, lines)
	wf, err := wikifile.NewFromPath(path, "")
	require.NoError(t, err)

	r, err := NewSequentialReader(wf, zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	var got []string
	for {
		line, ok := r.GetLine()
		if !ok {
			break
		}
		got = append(got, string(line))
	}
	assert.Equal(t, lines, got)

	progress := r.GetProgress()
	assert.Greater(t, progress.TotalBytes, uint64(0))
}

func TestParallelReaderReadsLines(t *testing.T) {
	lines := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		lines = append(lines, "INSERT INTO `page` VALUES (1,0,'Foo',0);")
	}
	path := writeGzipFixture(t, lines)
	wf, err := wikifile.NewFromPath(path, "")
	require.NoError(t, err)

	r, err := NewParallelReader(wf, 1024, zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	count := 0
	for {
		_, ok := r.GetLine()
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, len(lines), count)
}

func TestExtractISIZE(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	payload := bytes.Repeat([]byte("x"), 1000)
	_, err := gw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	dir := t.TempDir()
	path := filepath.Join(dir, "test.sql.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	isize, err := gzipISIZE(path)
	require.NoError(t, err)
	assert.EqualValues(t, len(payload), isize)
}

func TestDecompressionIndexRoundTrip(t *testing.T) {
	idx := NewDecompressionIndex()
	idx.recordCheckpoint(0)
	idx.recordCheckpoint(64 * 1024 * 1024)

	dir := t.TempDir()
	path := filepath.Join(dir, "index.gzi")
	require.NoError(t, ExportDecompressionIndex(path, idx))

	imported, err := ImportDecompressionIndex(path)
	require.NoError(t, err)
	assert.Equal(t, idx.Checkpoints, imported.Checkpoints)
}
