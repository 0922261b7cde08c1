// Package pump drives a reader.LineReader to completion, filters to
// INSERT INTO lines, and dispatches each to a parser, optionally fanning
// parse work across a worker pool. This is the C3 insert-line pump; per
// spec §4.3 and design note "Capacity-estimation side channel", the
// first-batch capacity-estimation hook is a distinct callback so the
// parser itself stays pure.
package pump

import (
	"bytes"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/reader"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/workerpool"
)

var insertPrefix = []byte("INSERT INTO")

// ParseFn parses one INSERT line into a batch of records of type T.
type ParseFn[T any] func(line []byte) T

// Run drives r to completion. onResult is invoked for every parsed
// batch; onFirstBatch is invoked exactly once, with the first
// successfully produced batch, before onResult sees it — this is the
// hook where downstream loaders reserve capacity based on an
// item-count estimate. When pool is non-nil, parse calls are dispatched
// to the pool and drained keeping at most maxOutstanding results
// pending, bounding memory as spec §4.3 requires.
func Run[T any](r reader.LineReader, parseFn ParseFn[T], onResult func(T), onFirstBatch func(T), pool *workerpool.Pool, maxOutstanding int) error {
	if pool == nil {
		return runSequential(r, parseFn, onResult, onFirstBatch)
	}
	return runParallel(r, parseFn, onResult, onFirstBatch, pool, maxOutstanding)
}

func runSequential[T any](r reader.LineReader, parseFn ParseFn[T], onResult func(T), onFirstBatch func(T)) error {
	firstEmitted := false
	for {
		line, ok := r.GetLine()
		if !ok {
			break
		}
		if !bytes.HasPrefix(line, insertPrefix) {
			continue
		}
		result := parseFn(line)
		if !firstEmitted {
			onFirstBatch(result)
			firstEmitted = true
		}
		onResult(result)
	}
	return nil
}

func runParallel[T any](r reader.LineReader, parseFn ParseFn[T], onResult func(T), onFirstBatch func(T), pool *workerpool.Pool, maxOutstanding int) error {
	if maxOutstanding <= 0 {
		maxOutstanding = 8
	}

	var pending []workerpool.Handle[T]
	firstEmitted := false

	drainOne := func() error {
		if len(pending) == 0 {
			return nil
		}
		h := pending[0]
		pending = pending[1:]
		res, err := h.Wait()
		if err != nil {
			return err
		}
		if !firstEmitted {
			onFirstBatch(res)
			firstEmitted = true
		}
		onResult(res)
		return nil
	}

	for {
		line, ok := r.GetLine()
		if !ok {
			break
		}
		if !bytes.HasPrefix(line, insertPrefix) {
			continue
		}

		lineCopy := append([]byte(nil), line...)
		handle, err := workerpool.Submit(pool, func() (T, error) {
			return parseFn(lineCopy), nil
		})
		if err != nil {
			return err
		}
		pending = append(pending, handle)

		if len(pending) >= maxOutstanding {
			if err := drainOne(); err != nil {
				return err
			}
		}
	}

	for len(pending) > 0 {
		if err := drainOne(); err != nil {
			return err
		}
	}
	return nil
}
