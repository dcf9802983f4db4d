// Package worker runs the scan scheduler's bounded pool (spec.md §4.4,
// §5): a fixed number of goroutines pull candidates from an input channel,
// run a per-candidate job, and push one result per candidate onto an output
// channel. Concurrency is capped by pool size, not by the candidate source,
// which stays lazy and unbounded upstream.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Pool runs jobs with a bounded number of concurrent workers.
type Pool struct {
	size   int
	logger *slog.Logger
}

// Input is one unit of work; the scheduler passes candidate.Candidate.
type Input interface{}

// JobResult pairs the Input it came from with the job's output or error.
type JobResult struct {
	Input Input
	Value interface{}
	Error error
}

// NewPool returns a Pool of the given concurrency (spec.md §6 "-c,
// --concurrency", default 500).
func NewPool(size int, logger *slog.Logger) *Pool {
	return &Pool{
		size:   size,
		logger: logger,
	}
}

// Process runs fn over inputs with p.size concurrent workers, emitting one
// JobResult per input on the returned channel. A panic inside fn is
// recovered and converted into a JobResult.Error instead of crashing the
// pool (spec.md §4.4 "A worker panic must not kill the pool: it is
// converted into Failed for the candidate and the worker is replaced") —
// recovering in place and looping is equivalent to "replacing" the worker,
// since the goroutine itself never exits.
func (p *Pool) Process(ctx context.Context, inputs <-chan Input, fn func(context.Context, Input) (interface{}, error)) <-chan JobResult {
	results := make(chan JobResult)
	var wg sync.WaitGroup

	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case input, ok := <-inputs:
					if !ok {
						return
					}
					val, err := p.runJob(ctx, input, fn)
					select {
					case <-ctx.Done():
						return
					case results <- JobResult{
						Input: input,
						Value: val,
						Error: err,
					}:
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (p *Pool) runJob(ctx context.Context, input Input, fn func(context.Context, Input) (interface{}, error)) (val interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
			if p.logger != nil {
				p.logger.Error("worker panic recovered", "input", input, "recover", r)
			}
		}
	}()
	return fn(ctx, input)
}
