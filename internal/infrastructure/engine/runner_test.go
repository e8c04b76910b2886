package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compositions(n int) []values.Composition {
	out := make([]values.Composition, n)
	for i := range out {
		f := float64(i) / float64(n)
		out[i] = values.MustNewComposition(nil, []float64{f, 1 - f})
	}
	return out
}

func TestRunner_Sequential(t *testing.T) {
	t.Parallel()

	r := NewRunner(nil)
	var order []int
	err := r.Run(context.Background(), compositions(5), dto.ExecutionOptions{Parallel: false},
		func(_ context.Context, i int, _ values.Composition) error {
			order = append(order, i)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRunner_ParallelFillsEverySlot(t *testing.T) {
	t.Parallel()

	comps := compositions(40)
	results := make([]float64, len(comps))

	r := NewRunner(nil)
	err := r.Run(context.Background(), comps, dto.ExecutionOptions{Parallel: true, MaxWorkers: 3},
		func(_ context.Context, i int, c values.Composition) error {
			results[i] = c.Fraction(0)
			return nil
		})
	require.NoError(t, err)

	for i, c := range comps {
		assert.Equal(t, c.Fraction(0), results[i], "slot %d", i)
	}
}

func TestRunner_ParallelRespectsLimit(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32
	r := NewRunner(nil)
	err := r.Run(context.Background(), compositions(12), dto.ExecutionOptions{Parallel: true, MaxWorkers: 2},
		func(_ context.Context, _ int, _ values.Composition) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunner_FirstErrorWins(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	for _, parallel := range []bool{false, true} {
		var calls atomic.Int32
		r := NewRunner(nil)
		err := r.Run(context.Background(), compositions(8), dto.ExecutionOptions{Parallel: parallel, MaxWorkers: 1},
			func(_ context.Context, i int, _ values.Composition) error {
				calls.Add(1)
				if i == 2 {
					return boom
				}
				return nil
			})
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "composition 2")
		assert.Less(t, calls.Load(), int32(8), "parallel=%v", parallel)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var mu sync.Mutex
	var seen []int
	r := NewRunner(nil)
	err := r.Run(ctx, compositions(3), DefaultExecutionOptions(),
		func(_ context.Context, i int, _ values.Composition) error {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
			return nil
		})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, seen)
}

func TestRunner_Empty(t *testing.T) {
	t.Parallel()

	called := false
	err := NewRunner(nil).Run(context.Background(), nil, DefaultExecutionOptions(),
		func(context.Context, int, values.Composition) error {
			called = true
			return nil
		})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestWorkerCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, workerCount(3))
	assert.GreaterOrEqual(t, workerCount(0), MinWorkers)
	assert.GreaterOrEqual(t, DefaultExecutionOptions().MaxWorkers, MinWorkers)
}
