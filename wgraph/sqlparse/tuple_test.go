package sqlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTuples(t *testing.T) {
	line := []byte("INSERT INTO `page` VALUES (1,0,'Foo',0),(2,0,'Bar',1);")
	tuples := ExtractTuples(line)
	require.Len(t, tuples, 2)
	assert.Equal(t, "1,0,'Foo',0", string(tuples[0]))
	assert.Equal(t, "2,0,'Bar',1", string(tuples[1]))
}

func TestExtractTuplesSingle(t *testing.T) {
	line := []byte("INSERT INTO `linktarget` VALUES (100,0,'A');")
	tuples := ExtractTuples(line)
	require.Len(t, tuples, 1)
	assert.Equal(t, "100,0,'A'", string(tuples[0]))
}

func TestNextIntAndBool(t *testing.T) {
	p := NewTupleParser([]byte("1,0,'Foo',1"))
	id, err := p.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	ns, err := p.NextInt()
	require.NoError(t, err)
	assert.EqualValues(t, 0, ns)

	title, err := p.NextString()
	require.NoError(t, err)
	assert.Equal(t, "Foo", title)

	redirect, err := p.NextBool()
	require.NoError(t, err)
	assert.True(t, redirect)
}

func TestNextStringEscapes(t *testing.T) {
	p := NewTupleParser([]byte(`1,0,'O\'Brien_Jr\\.',0`))
	_, _ = p.NextInt()
	_, _ = p.NextInt()
	title, err := p.NextString()
	require.NoError(t, err)
	assert.Equal(t, `O'Brien Jr\.`, title)
}

func TestNextStringMissingOpenQuote(t *testing.T) {
	p := NewTupleParser([]byte("nope"))
	_, err := p.NextString()
	assert.ErrorIs(t, err, ErrMissingOpenQuote)
}

func TestNextStringMissingCloseQuote(t *testing.T) {
	p := NewTupleParser([]byte("'unterminated"))
	_, err := p.NextString()
	assert.ErrorIs(t, err, ErrMissingCloseQuote)
}

func TestNextStringTruncatedInsideEscape(t *testing.T) {
	p := NewTupleParser([]byte(`'trailing\`))
	_, err := p.NextString()
	assert.ErrorIs(t, err, ErrMissingCloseQuote)
}

func TestNextIntNoDigits(t *testing.T) {
	p := NewTupleParser([]byte("'notanumber'"))
	_, err := p.NextInt()
	assert.ErrorIs(t, err, ErrNoDigits)
}

func TestUnderscoreToSpace(t *testing.T) {
	p := NewTupleParser([]byte("'Foo_Bar_Baz'"))
	title, err := p.NextString()
	require.NoError(t, err)
	assert.Equal(t, "Foo Bar Baz", title)
}
