package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradepost/internal/models"
	"tradepost/internal/scrub"
	"tradepost/internal/store"
)

// Mode names the destruction path taken for one deletion request.
type Mode string

const (
	// ModeNone means the target user was already gone and only the
	// request itself was finalized.
	ModeNone       Mode = "none"
	ModeAnonymize  Mode = "anonymize"
	ModeFullDelete Mode = "full_delete"
)

// StepResult reports one cleanup operation of a record's processing. A
// record's cleanup is not atomic; exposing per-step results makes the
// accepted partial-effect window visible to callers.
type StepResult struct {
	Name string `json:"name"`
	OK   bool   `json:"ok"`
	Err  string `json:"err,omitempty"`
}

// Outcome is what processing a single deletion request yields. Err is a
// captured message, never a live error: the processor's callers must be
// able to keep iterating regardless of what happened here.
type Outcome struct {
	Processed bool         `json:"processed"`
	Mode      Mode         `json:"mode"`
	Steps     []StepResult `json:"steps,omitempty"`
	Err       string       `json:"err,omitempty"`
}

// Processor executes the destruction strategy for one deletion request
// against the store. It knows nothing about batching.
type Processor struct {
	store store.Store
	log   zerolog.Logger
}

// NewProcessor returns a Processor writing through the given store.
func NewProcessor(st store.Store, log zerolog.Logger) *Processor {
	return &Processor{store: st, log: log}
}

// Process runs the full cleanup sequence for req. It never returns an
// error and never panics past its boundary; failures are captured in the
// outcome and the request is left PENDING so the next tick retries it.
func (p *Processor) Process(ctx context.Context, req models.DeletionRequest, now time.Time) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Mode: ModeNone, Err: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if req.UserID == nil {
		return p.finalizeOrphan(ctx, req, now)
	}

	user, err := p.store.UserByID(ctx, *req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		// The user was removed out of band; the request only needs
		// finalizing. This keeps re-runs idempotent.
		return p.finalizeOrphan(ctx, req, now)
	}
	if err != nil {
		return Outcome{Mode: ModeNone, Err: fmt.Sprintf("load user: %v", err)}
	}

	strategy := scrub.SelectStrategy(scrub.Options{AnonymizeContributions: req.AnonymizeContributions})

	var (
		mode  Mode
		steps []StepResult
	)
	switch strategy {
	case scrub.StrategyAnonymize:
		mode = ModeAnonymize
		steps = p.anonymize(ctx, user, now)
	case scrub.StrategyFullDelete:
		mode = ModeFullDelete
		steps = p.fullDelete(ctx, user)
	}

	if msg := joinStepErrors(steps); msg != "" {
		return Outcome{Mode: mode, Steps: steps, Err: msg}
	}

	if err := p.store.CompleteDeletionRequest(ctx, req.ID, now); err != nil {
		return Outcome{Mode: mode, Steps: steps, Err: fmt.Sprintf("complete request: %v", err)}
	}

	p.log.Info().
		Stringer("request_id", req.ID).
		Stringer("user_id", *req.UserID).
		Str("mode", string(mode)).
		Msg("deletion request finalized")

	return Outcome{Processed: true, Mode: mode, Steps: steps}
}

func (p *Processor) finalizeOrphan(ctx context.Context, req models.DeletionRequest, now time.Time) Outcome {
	if err := p.store.CompleteDeletionRequest(ctx, req.ID, now); err != nil {
		return Outcome{Mode: ModeNone, Err: fmt.Sprintf("complete request: %v", err)}
	}
	p.log.Info().Stringer("request_id", req.ID).Msg("user already removed, request finalized")
	return Outcome{Processed: true, Mode: ModeNone}
}

// anonymize scrubs the user row and clears credential, device, and consent
// linkage. The operations touch disjoint tables and run concurrently; audit
// entries are detached, not deleted. Content rows stay untouched.
func (p *Processor) anonymize(ctx context.Context, user *models.User, now time.Time) []StepResult {
	scrub.Anonymize(user, now)

	return runSteps(ctx, []step{
		{"scrub_user", func(ctx context.Context) error { return p.store.SaveUser(ctx, user) }},
		{"delete_push_tokens", func(ctx context.Context) error { return p.store.DeletePushTokens(ctx, user.ID) }},
		{"delete_refresh_tokens", func(ctx context.Context) error { return p.store.DeleteRefreshTokens(ctx, user.ID) }},
		{"delete_consent_records", func(ctx context.Context) error { return p.store.DeleteConsentRecords(ctx, user.ID) }},
		{"detach_audit_logs", func(ctx context.Context) error { return p.store.DetachAuditLogs(ctx, user.ID) }},
	})
}

// fullDelete removes enumerated personal-data rows concurrently, then the
// user row itself; remaining owned rows go via store cascade. The user
// delete only runs when every preceding step succeeded, so a failed run
// leaves the user reachable for retry.
func (p *Processor) fullDelete(ctx context.Context, user *models.User) []StepResult {
	steps := runSteps(ctx, []step{
		{"delete_notifications", func(ctx context.Context) error { return p.store.DeleteNotifications(ctx, user.ID) }},
		{"delete_push_tokens", func(ctx context.Context) error { return p.store.DeletePushTokens(ctx, user.ID) }},
		{"delete_refresh_tokens", func(ctx context.Context) error { return p.store.DeleteRefreshTokens(ctx, user.ID) }},
		{"delete_consent_records", func(ctx context.Context) error { return p.store.DeleteConsentRecords(ctx, user.ID) }},
		{"detach_audit_logs", func(ctx context.Context) error { return p.store.DetachAuditLogs(ctx, user.ID) }},
	})

	if joinStepErrors(steps) != "" {
		return steps
	}

	err := p.store.DeleteUser(ctx, user.ID)
	steps = append(steps, stepResult("delete_user", err))
	return steps
}

type step struct {
	name string
	fn   func(context.Context) error
}

// runSteps executes the given operations concurrently and waits for all of
// them. Every step gets its own result slot; a failure in one does not
// cancel the others, since the union of partial effects is accepted.
func runSteps(ctx context.Context, steps []step) []StepResult {
	results := make([]StepResult, len(steps))

	var wg sync.WaitGroup
	for i, s := range steps {
		wg.Add(1)
		go func(i int, s step) {
			defer wg.Done()
			results[i] = stepResult(s.name, s.fn(ctx))
		}(i, s)
	}
	wg.Wait()

	return results
}

func stepResult(name string, err error) StepResult {
	if err != nil {
		return StepResult{Name: name, Err: err.Error()}
	}
	return StepResult{Name: name, OK: true}
}

func joinStepErrors(steps []StepResult) string {
	var parts []string
	for _, s := range steps {
		if s.Err != "" {
			parts = append(parts, s.Name+": "+s.Err)
		}
	}
	return strings.Join(parts, "; ")
}
