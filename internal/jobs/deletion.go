package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tradepost/internal/store"
)

// DeletionJobName identifies the deletion finalization batch in logs,
// metrics, and bus subjects.
const DeletionJobName = "deletion_finalization"

const (
	// GracePeriodDays is the fixed interval between a deletion request
	// and its earliest eligible processing time.
	GracePeriodDays = 30
	gracePeriod     = GracePeriodDays * 24 * time.Hour
)

// DeletionJob finalizes deletion requests whose grace period has elapsed.
type DeletionJob struct {
	store     store.Store
	processor *Processor
	log       zerolog.Logger
}

// NewDeletionJob builds the batch around the given store. The logger is
// tagged with the job name for the run's duration.
func NewDeletionJob(st store.Store, log zerolog.Logger) *DeletionJob {
	jobLog := log.With().Str("job", DeletionJobName).Logger()
	return &DeletionJob{
		store:     st,
		processor: NewProcessor(st, jobLog),
		log:       jobLog,
	}
}

func (j *DeletionJob) Name() string { return DeletionJobName }

// Run queries all eligible requests and processes them sequentially, one
// processor call at a time. Sequential processing bounds store load and
// attributes every failure to exactly one record. Only a failed
// eligibility query is fatal for the tick.
func (j *DeletionJob) Run(ctx context.Context, now time.Time) Result {
	started := time.Now()

	cutoff := now.Add(-gracePeriod)
	requests, err := j.store.EligibleDeletionRequests(ctx, cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("eligibility query failed")
		observeRun(DeletionJobName, false, started)
		return Result{
			Job:     DeletionJobName,
			Success: false,
			Message: fmt.Sprintf("eligibility query failed: %v", err),
			Details: DeletionDetails{GracePeriodDays: GracePeriodDays, Errors: []string{err.Error()}},
		}
	}

	var t tally
	for _, req := range requests {
		outcome := j.processor.Process(ctx, req, now)
		t.record(req.ID, outcome)
		observeOutcome(DeletionJobName, outcome)
		if outcome.Err != "" {
			j.log.Warn().
				Stringer("request_id", req.ID).
				Str("error", outcome.Err).
				Msg("deletion request left pending for retry")
		}
	}

	success := len(t.errors) == 0
	observeRun(DeletionJobName, success, started)

	j.log.Info().
		Int("eligible", len(requests)).
		Int("processed", t.processed).
		Int("anonymized", t.anonymized).
		Int("deleted", t.deleted).
		Int("errors", len(t.errors)).
		Msg("deletion finalization run complete")

	return Result{
		Job:     DeletionJobName,
		Success: success,
		Message: fmt.Sprintf("finalized %d of %d eligible deletion requests", t.processed, len(requests)),
		Details: DeletionDetails{
			TotalRequests:   len(requests),
			ProcessedCount:  t.processed,
			AnonymizedCount: t.anonymized,
			DeletedCount:    t.deleted,
			GracePeriodDays: GracePeriodDays,
			Errors:          t.errors,
		},
	}
}
