package worker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusub/rusub/internal/worker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func collect(ch <-chan worker.JobResult) []worker.JobResult {
	var out []worker.JobResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func feed(inputs ...string) <-chan worker.Input {
	ch := make(chan worker.Input, len(inputs))
	for _, i := range inputs {
		ch <- i
	}
	close(ch)
	return ch
}

func TestProcess_AllInputsProduceOneResultEach(t *testing.T) {
	inputs := make([]string, 20)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("input-%d", i)
	}

	pool := worker.NewPool(5, testLogger())
	results := collect(pool.Process(context.Background(), feed(inputs...), func(_ context.Context, in worker.Input) (interface{}, error) {
		return in.(string) + "-done", nil
	}))

	require.Len(t, results, len(inputs))
	seen := make(map[string]bool)
	for _, r := range results {
		assert.NoError(t, r.Error)
		seen[r.Input.(string)] = true
	}
	for _, in := range inputs {
		assert.True(t, seen[in])
	}
}

func TestProcess_ErrorPerInput(t *testing.T) {
	pool := worker.NewPool(3, testLogger())
	results := collect(pool.Process(context.Background(), feed("good", "bad", "good"), func(_ context.Context, in worker.Input) (interface{}, error) {
		if in.(string) == "bad" {
			return nil, errors.New("bad input")
		}
		return in, nil
	}))

	require.Len(t, results, 3)
	var errCount int
	for _, r := range results {
		if r.Error != nil {
			errCount++
		}
	}
	assert.Equal(t, 1, errCount)
}

func TestProcess_PanicIsRecoveredAsError(t *testing.T) {
	pool := worker.NewPool(2, testLogger())
	results := collect(pool.Process(context.Background(), feed("a", "boom", "c"), func(_ context.Context, in worker.Input) (interface{}, error) {
		if in.(string) == "boom" {
			panic("job exploded")
		}
		return in, nil
	}))

	require.Len(t, results, 3)
	var gotPanic bool
	for _, r := range results {
		if r.Input.(string) == "boom" {
			require.Error(t, r.Error)
			gotPanic = true
		} else {
			assert.NoError(t, r.Error)
		}
	}
	assert.True(t, gotPanic)
}

func TestProcess_EmptyInputs(t *testing.T) {
	pool := worker.NewPool(4, testLogger())
	results := collect(pool.Process(context.Background(), feed(), func(_ context.Context, in worker.Input) (interface{}, error) {
		return in, nil
	}))
	assert.Empty(t, results)
}

func TestProcess_ConcurrencyOnePreservesAllResults(t *testing.T) {
	inputs := []string{"x", "y", "z"}
	pool := worker.NewPool(1, testLogger())
	results := collect(pool.Process(context.Background(), feed(inputs...), func(_ context.Context, in worker.Input) (interface{}, error) {
		return in, nil
	}))

	require.Len(t, results, 3)
	var got []string
	for _, r := range results {
		got = append(got, r.Input.(string))
	}
	sort.Strings(got)
	assert.Equal(t, []string{"x", "y", "z"}, got)
}

func TestProcess_ContextCancelledStopsPromptly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := worker.NewPool(2, testLogger())
	results := collect(pool.Process(ctx, feed("a", "b"), func(_ context.Context, in worker.Input) (interface{}, error) {
		return in, nil
	}))
	assert.LessOrEqual(t, len(results), 2)
}
