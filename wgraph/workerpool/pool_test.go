package workerpool

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReturnsResult(t *testing.T) {
	p := New(2, zerolog.Nop())
	defer p.Close()

	h, err := Submit(p, func() (int, error) { return 42, nil })
	require.NoError(t, err)

	v, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestSubmitPropagatesTaskError(t *testing.T) {
	p := New(1, zerolog.Nop())
	defer p.Close()

	wantErr := errors.New("boom")
	h, err := Submit(p, func() (int, error) { return 0, wantErr })
	require.NoError(t, err)

	_, err = h.Wait()
	assert.ErrorIs(t, err, wantErr)
}

func TestSubmitAfterCloseFails(t *testing.T) {
	p := New(1, zerolog.Nop())
	require.NoError(t, p.Close())

	_, err := Submit(p, func() (int, error) { return 0, nil })
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestSubmitRecoversPanic(t *testing.T) {
	p := New(1, zerolog.Nop())
	defer p.Close()

	h, err := Submit(p, func() (int, error) {
		panic("boom")
	})
	require.NoError(t, err)

	v, err := h.Wait()
	assert.NoError(t, err)
	assert.Equal(t, 0, v)
}
