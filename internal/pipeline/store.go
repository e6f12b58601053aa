package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/jimelj/mailApp/internal/db"
	"github.com/jimelj/mailApp/internal/report"
)

// runStore records a run in Postgres when a database URL is configured.
// Every method is a no-op without a connection, and failures only print
// warnings.
type runStore struct {
	database *db.DB
	runID    uuid.UUID
	out      io.Writer
	verbose  bool
}

func connectStore(ctx context.Context, opts Options, out io.Writer) *runStore {
	s := &runStore{out: out, verbose: opts.Verbose}
	if opts.DatabaseURL == "" {
		return s
	}
	database, err := db.Connect(ctx, opts.DatabaseURL)
	if err != nil {
		fmt.Fprintf(out, "Warning: Failed to connect to database: %v\n", err)
		fmt.Fprintf(out, "Continuing without database persistence...\n")
		return s
	}
	if err := database.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
		database.Close()
		return s
	}
	if opts.Verbose {
		fmt.Fprintf(out, "[VERBOSE] Connected to database\n")
	}
	s.database = database
	return s
}

func (s *runStore) begin(ctx context.Context, kind, source string) {
	if s.database == nil {
		return
	}
	id, err := s.database.CreateRun(ctx, kind, source)
	if err != nil {
		fmt.Fprintf(s.out, "Warning: Failed to create database run: %v\n", err)
		return
	}
	s.runID = id
	if s.verbose {
		fmt.Fprintf(s.out, "[VERBOSE] Created database run: %s\n", id)
	}
}

func (s *runStore) save(ctx context.Context, step string, content any) {
	if s.database == nil || s.runID == uuid.Nil {
		return
	}
	if err := s.database.SaveArtifact(ctx, s.runID, step, content); err != nil {
		fmt.Fprintf(s.out, "Warning: %v\n", err)
	}
}

func (s *runStore) saveText(ctx context.Context, step, path string) {
	if s.database == nil || s.runID == uuid.Nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(s.out, "Warning: Failed to read %s: %v\n", path, err)
		return
	}
	if err := s.database.SaveTextArtifact(ctx, s.runID, step, string(data)); err != nil {
		fmt.Fprintf(s.out, "Warning: %v\n", err)
	}
}

func (s *runStore) finish(ctx context.Context, status string) {
	if s.database == nil || s.runID == uuid.Nil {
		return
	}
	if err := s.database.CompleteRun(ctx, s.runID, status); err != nil {
		fmt.Fprintf(s.out, "Warning: %v\n", err)
	}
}

func (s *runStore) close() {
	if s.database != nil {
		s.database.Close()
	}
}

// RecordReport stores an aggregated postage report as a run of its own.
// It does nothing when databaseURL is empty.
func RecordReport(ctx context.Context, databaseURL string, sources []string, agg *report.Aggregate, out io.Writer) {
	if databaseURL == "" || agg == nil {
		return
	}
	if out == nil {
		out = os.Stdout
	}
	store := connectStore(ctx, Options{DatabaseURL: databaseURL}, out)
	defer store.close()

	store.begin(ctx, db.KindReport, strings.Join(sources, ", "))
	store.save(ctx, db.StepReportAggregate, agg)
	status := db.StatusCompleted
	if len(agg.Errors) == len(sources) {
		status = db.StatusFailed
	}
	store.finish(ctx, status)
}
