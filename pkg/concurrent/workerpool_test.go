// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	assert.Equal(t, 4, NewWorkerPool(4).workerCount)
	assert.Equal(t, 1, NewWorkerPool(0).workerCount)
	assert.Equal(t, 1, NewWorkerPool(-3).workerCount)
}

func TestRun(t *testing.T) {
	t.Run("runs all functions", func(t *testing.T) {
		pool := NewWorkerPool(2)
		var counter int64

		functions := make([]func() error, 10)
		for i := range functions {
			functions[i] = func() error {
				atomic.AddInt64(&counter, 1)
				return nil
			}
		}

		err := pool.Run(context.Background(), functions...)

		require.NoError(t, err)
		assert.Equal(t, int64(10), counter)
	})

	t.Run("returns the first error", func(t *testing.T) {
		pool := NewWorkerPool(1)
		boom := errors.New("boom")

		err := pool.Run(context.Background(),
			func() error { return nil },
			func() error { return boom },
			func() error { return nil },
		)

		assert.ErrorIs(t, err, boom)
	})

	t.Run("no functions is a no-op", func(t *testing.T) {
		pool := NewWorkerPool(2)
		assert.NoError(t, pool.Run(context.Background()))
	})

	t.Run("respects the concurrency limit", func(t *testing.T) {
		pool := NewWorkerPool(2)

		var mu sync.Mutex
		inFlight, maxInFlight := 0, 0

		functions := make([]func() error, 8)
		for i := range functions {
			functions[i] = func() error {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			}
		}

		require.NoError(t, pool.Run(context.Background(), functions...))
		assert.LessOrEqual(t, maxInFlight, 2)
	})
}

func TestRunAll(t *testing.T) {
	t.Run("one failure does not stop the others", func(t *testing.T) {
		pool := NewWorkerPool(1)
		var counter int64

		errs := pool.RunAll(context.Background(),
			func() error { atomic.AddInt64(&counter, 1); return errors.New("first failed") },
			func() error { atomic.AddInt64(&counter, 1); return nil },
			func() error { atomic.AddInt64(&counter, 1); return errors.New("third failed") },
		)

		assert.Equal(t, int64(3), counter)
		assert.Len(t, errs, 2)
	})

	t.Run("all successes return no errors", func(t *testing.T) {
		pool := NewWorkerPool(4)

		errs := pool.RunAll(context.Background(),
			func() error { return nil },
			func() error { return nil },
		)

		assert.Empty(t, errs)
	})

	t.Run("no functions returns nil", func(t *testing.T) {
		pool := NewWorkerPool(2)
		assert.Nil(t, pool.RunAll(context.Background()))
	})

	t.Run("canceled context skips remaining work", func(t *testing.T) {
		pool := NewWorkerPool(1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var counter int64
		errs := pool.RunAll(ctx,
			func() error { atomic.AddInt64(&counter, 1); return nil },
			func() error { atomic.AddInt64(&counter, 1); return nil },
		)

		assert.Equal(t, int64(0), counter)
		assert.Len(t, errs, 2)
	})
}
