package pump

import (
	"testing"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/reader"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/workerpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	lines [][]byte
	idx   int
}

func (f *fakeReader) GetLine() ([]byte, bool) {
	if f.idx >= len(f.lines) {
		return nil, false
	}
	l := f.lines[f.idx]
	f.idx++
	return l, true
}
func (f *fakeReader) GetProgress() reader.ReadProgress { return reader.ReadProgress{} }
func (f *fakeReader) Close() error                     { return nil }

func TestRunSequentialFiltersAndFires(t *testing.T) {
	r := &fakeReader{lines: [][]byte{
		[]byte("-- prelude"),
		[]byte("INSERT INTO `page` VALUES (1);"),
		[]byte("INSERT INTO `page` VALUES (2);"),
	}}

	var results []string
	var first string
	firstCount := 0

	err := Run(r, func(line []byte) string { return string(line) },
		func(s string) { results = append(results, s) },
		func(s string) { first = s; firstCount++ },
		nil, 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT INTO `page` VALUES (1);", "INSERT INTO `page` VALUES (2);"}, results)
	assert.Equal(t, "INSERT INTO `page` VALUES (1);", first)
	assert.Equal(t, 1, firstCount)
}

func TestRunParallelPreservesAllResults(t *testing.T) {
	lines := make([][]byte, 0, 20)
	for i := 0; i < 20; i++ {
		lines = append(lines, []byte("INSERT INTO `page` VALUES (x);"))
	}
	r := &fakeReader{lines: lines}

	pool := workerpool.New(4, zerolog.Nop())
	defer pool.Close()

	count := 0
	firstCount := 0
	err := Run(r, func(line []byte) int { return len(line) },
		func(int) { count++ },
		func(int) { firstCount++ },
		pool, 4)

	require.NoError(t, err)
	assert.Equal(t, 20, count)
	assert.Equal(t, 1, firstCount)
}
