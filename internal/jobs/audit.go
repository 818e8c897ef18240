package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"tradepost/internal/scrub"
	"tradepost/internal/store"
)

// AuditJobName identifies the audit retention sweep in logs, metrics, and
// bus subjects.
const AuditJobName = "audit_retention"

// RetentionYears is the age threshold beyond which audit entries must have
// identifying fields cleared.
const RetentionYears = 1

// AuditJob clears identifying fields from audit entries older than the
// retention window. Entries are scrubbed in place, never deleted.
type AuditJob struct {
	store store.Store
	log   zerolog.Logger
}

// NewAuditJob builds the sweep around the given store.
func NewAuditJob(st store.Store, log zerolog.Logger) *AuditJob {
	return &AuditJob{
		store: st,
		log:   log.With().Str("job", AuditJobName).Logger(),
	}
}

func (j *AuditJob) Name() string { return AuditJobName }

// Run sweeps in two phases: a single set-based update clearing identity
// columns, then a per-entry pass stripping PII keys from metadata bags.
// Both phases are no-ops on already-scrubbed rows, so re-running after a
// partial failure is safe. A phase-1 failure or a failed phase-2 query is
// fatal for the tick; individual metadata failures are not.
func (j *AuditJob) Run(ctx context.Context, now time.Time) Result {
	started := time.Now()
	cutoff := now.AddDate(-RetentionYears, 0, 0)

	cleared, err := j.store.ClearExpiredAuditIdentity(ctx, cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("identity clear failed")
		observeRun(AuditJobName, false, started)
		return Result{
			Job:     AuditJobName,
			Success: false,
			Message: fmt.Sprintf("identity clear failed: %v", err),
			Details: AuditDetails{CutoffDate: cutoff, RetentionYears: RetentionYears, Errors: []string{err.Error()}},
		}
	}

	entries, err := j.store.AuditEntriesWithMetadata(ctx, cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("metadata query failed")
		observeRun(AuditJobName, false, started)
		return Result{
			Job:     AuditJobName,
			Success: false,
			Message: fmt.Sprintf("metadata query failed: %v", err),
			Details: AuditDetails{AnonymizedCount: cleared, CutoffDate: cutoff, RetentionYears: RetentionYears, Errors: []string{err.Error()}},
		}
	}

	metadataAnonymized := 0
	var errs []string
	for _, entry := range entries {
		var meta map[string]any
		if err := json.Unmarshal(entry.Metadata, &meta); err != nil {
			errs = append(errs, fmt.Sprintf("entry %s: decode metadata: %v", entry.ID, err))
			continue
		}
		if !scrub.ScrubMetadata(meta) {
			continue
		}
		raw, err := json.Marshal(meta)
		if err != nil {
			errs = append(errs, fmt.Sprintf("entry %s: encode metadata: %v", entry.ID, err))
			continue
		}
		if err := j.store.SaveAuditMetadata(ctx, entry.ID, datatypes.JSON(raw)); err != nil {
			errs = append(errs, fmt.Sprintf("entry %s: save metadata: %v", entry.ID, err))
			continue
		}
		metadataAnonymized++
	}

	success := len(errs) == 0
	observeRun(AuditJobName, success, started)

	j.log.Info().
		Int64("identity_cleared", cleared).
		Int("metadata_anonymized", metadataAnonymized).
		Time("cutoff", cutoff).
		Int("errors", len(errs)).
		Msg("audit retention sweep complete")

	return Result{
		Job:     AuditJobName,
		Success: success,
		Message: fmt.Sprintf("cleared identity on %d entries, anonymized metadata on %d", cleared, metadataAnonymized),
		Details: AuditDetails{
			AnonymizedCount:    cleared,
			MetadataAnonymized: metadataAnonymized,
			CutoffDate:         cutoff,
			RetentionYears:     RetentionYears,
			Errors:             errs,
		},
	}
}
