// Package inbox watches a directory for mailing archives and processes new
// ones on a cron schedule.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/jimelj/mailApp/internal/observability"
	"github.com/jimelj/mailApp/internal/pipeline"
)

// Defaults
const (
	DefaultSchedule   = "@every 5m"
	DefaultMaxPerTick = 6
)

// Options configures a Watcher.
type Options struct {
	Dir        string
	Schedule   string
	MaxPerTick int
	// Job is the template for each archive; InputPath is set per archive.
	Job pipeline.JobOptions
}

// Watcher processes each archive in Dir once.
type Watcher struct {
	opts Options
	out  io.Writer

	mu   sync.Mutex
	seen map[string]bool
}

// New validates opts. It does no I/O.
func New(opts Options) (*Watcher, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("inbox directory is required")
	}
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(opts.Schedule); err != nil {
		return nil, fmt.Errorf("invalid inbox schedule %q: %w", opts.Schedule, err)
	}
	if opts.MaxPerTick <= 0 {
		opts.MaxPerTick = DefaultMaxPerTick
	}
	out := opts.Job.Out
	if out == nil {
		out = os.Stdout
		opts.Job.Out = out
	}
	return &Watcher{opts: opts, out: out, seen: make(map[string]bool)}, nil
}

// Pending returns the archives the next scan would process: the newest
// MaxPerTick .zip files by name, minus those already handled.
func (w *Watcher) Pending() ([]string, error) {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox %s: %w", w.opts.Dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > w.opts.MaxPerTick {
		names = names[:w.opts.MaxPerTick]
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	var pending []string
	for _, name := range names {
		path := filepath.Join(w.opts.Dir, name)
		if !w.seen[path] {
			pending = append(pending, path)
		}
	}
	return pending, nil
}

// Scan processes every pending archive. Archives are marked handled whether
// or not they succeed; failures come back as pipeline.BatchErrors.
func (w *Watcher) Scan(ctx context.Context) ([]*pipeline.JobResult, error) {
	pending, err := w.Pending()
	if err != nil {
		return nil, err
	}

	var results []*pipeline.JobResult
	var errs pipeline.BatchErrors
	for _, path := range pending {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		w.mu.Lock()
		w.seen[path] = true
		w.mu.Unlock()

		fmt.Fprintf(w.out, "Processing %s...\n", filepath.Base(path))
		opts := w.opts.Job
		opts.InputPath = path
		jr, err := pipeline.RunJob(ctx, opts)
		if err != nil {
			fmt.Fprintf(w.out, "Warning: %s failed: %v\n", filepath.Base(path), err)
			errs = append(errs, &pipeline.BatchError{Path: path, Err: err})
			continue
		}
		if err := jr.Cleanup(); err != nil {
			fmt.Fprintf(w.out, "Warning: failed to remove scratch data: %v\n", err)
		}
		if opts.Verbose && jr.Postage != nil {
			observability.NewPrinter(w.out).PrintReport(jr.Postage)
		}
		results = append(results, jr)
	}

	if len(errs) > 0 {
		return results, errs
	}
	return results, nil
}

// Run scans once immediately and then on the schedule until ctx is done.
// A tick that fires while the previous scan is still running is skipped.
func (w *Watcher) Run(ctx context.Context) error {
	tick := func() {
		results, err := w.Scan(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(w.out, "Warning: inbox scan: %v\n", err)
		}
		if len(results) > 0 {
			fmt.Fprintf(w.out, "Processed %d archive(s) from %s\n", len(results), w.opts.Dir)
		}
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(w.opts.Schedule, tick); err != nil {
		return fmt.Errorf("failed to schedule inbox scan: %w", err)
	}

	tick()
	c.Start()
	fmt.Fprintf(w.out, "Watching %s (%s)\n", w.opts.Dir, w.opts.Schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
