package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultSummaryMax is how many batch errors are listed before the rest are
// folded into a count.
const DefaultSummaryMax = 5

// BatchError is one input that failed inside a batch.
type BatchError struct {
	Path  string
	Err   error
	index int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// BatchErrors collects every failed input of a batch, in input order.
type BatchErrors []*BatchError

func (e BatchErrors) Error() string {
	return fmt.Sprintf("%d of the batch inputs failed:\n%s", len(e), e.Summary(DefaultSummaryMax))
}

// Summary lists at most max errors, one per line, followed by an
// "... and N more" line when some were left out.
func (e BatchErrors) Summary(max int) string {
	if max <= 0 {
		max = DefaultSummaryMax
	}
	var sb strings.Builder
	count := min(len(e), max)
	for i := 0; i < count; i++ {
		sb.WriteString("- ")
		sb.WriteString(e[i].Error())
		sb.WriteString("\n")
	}
	if len(e) > max {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(e)-max))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// lockedWriter serializes writes from concurrent runs sharing one output.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// shareOptions returns opts with Out and OnProgress made safe for use by
// several runs at once.
func shareOptions(opts Options) Options {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	opts.Out = &lockedWriter{mu: &sync.Mutex{}, w: opts.Out}

	if cb := opts.OnProgress; cb != nil {
		var mu sync.Mutex
		opts.OnProgress = func(event ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			cb(event)
		}
	}
	return opts
}

// RunBatch runs the pipeline over every input with at most workers running
// at once. Each run gets its own scratch namespace. A failing input never
// stops the others; all failures come back as BatchErrors alongside the
// successful results, which keep input order. Out and OnProgress are shared
// by all runs and are serialized here.
func RunBatch(ctx context.Context, inputs []string, opts Options, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > 1 {
		opts = shareOptions(opts)
	}

	results := make([]*Result, len(inputs))
	var mu sync.Mutex
	var errs BatchErrors

	var g errgroup.Group
	g.SetLimit(workers)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				errs = append(errs, &BatchError{Path: input, Err: err, index: i})
				mu.Unlock()
				return nil
			}

			runOpts := opts
			runOpts.InputPath = input
			p, err := New(runOpts)
			if err == nil {
				var res *Result
				res, err = p.Run(ctx)
				if err == nil {
					results[i] = res
					return nil
				}
			}

			mu.Lock()
			errs = append(errs, &BatchError{Path: input, Err: err, index: i})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	done := make([]*Result, 0, len(inputs))
	for _, r := range results {
		if r != nil {
			done = append(done, r)
		}
	}

	if len(errs) == 0 {
		return done, nil
	}
	sort.Slice(errs, func(a, b int) bool { return errs[a].index < errs[b].index })
	return done, errs
}
