// Package jobs implements the scheduled compliance batches: deletion
// finalization and audit retention sweeping. Each batch is invoked once per
// scheduled tick, runs to completion, and reports a single Result; no error
// ever escapes a batch's Run method.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is the contract the scheduler and the one-shot CLI invoke.
type Job interface {
	Name() string
	Run(ctx context.Context, now time.Time) Result
}

// Result is the report a batch returns to its caller. Details is a
// batch-specific struct serialized as-is for logs and the event bus.
type Result struct {
	Job     string `json:"job"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// DeletionDetails is the detail payload of the deletion finalization batch.
type DeletionDetails struct {
	TotalRequests   int      `json:"totalRequests"`
	ProcessedCount  int      `json:"processedCount"`
	AnonymizedCount int      `json:"anonymizedCount"`
	DeletedCount    int      `json:"deletedCount"`
	GracePeriodDays int      `json:"gracePeriodDays"`
	Errors          []string `json:"errors,omitempty"`
}

// AuditDetails is the detail payload of the audit retention sweep.
type AuditDetails struct {
	AnonymizedCount    int64     `json:"anonymizedCount"`
	MetadataAnonymized int       `json:"metadataAnonymized"`
	CutoffDate         time.Time `json:"cutoffDate"`
	RetentionYears     int       `json:"retentionYears"`
	Errors             []string  `json:"errors,omitempty"`
}

// tally accumulates per-record outcomes of one deletion batch run. It is a
// local value threaded through the run, never shared state, so batches stay
// reentrant.
type tally struct {
	processed  int
	anonymized int
	deleted    int
	errors     []string
}

func (t *tally) record(id uuid.UUID, o Outcome) {
	if o.Err != "" {
		t.errors = append(t.errors, "request "+id.String()+": "+o.Err)
		return
	}
	if !o.Processed {
		return
	}
	t.processed++
	switch o.Mode {
	case ModeAnonymize:
		t.anonymized++
	case ModeFullDelete:
		t.deleted++
	}
}
