package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a processing run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run kinds
const (
	KindCSM    = "csm"
	KindReport = "report"
)

// Run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Artifact step constants
const (
	StepDecodedCSM      = "decoded_csm"
	StepDisplayCSM      = "display_csm"
	StepParsedCSV       = "parsed_csm_csv"
	StepReportAggregate = "report_aggregate"
)

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 50
