package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tradepost/internal/models"
	"tradepost/internal/scrub"
	"tradepost/internal/store"
)

var testNow = time.Date(2026, 8, 23, 4, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

// failingStore wraps a Store and injects failures for specific calls.
type failingStore struct {
	store.Store
	failSaveUserID    uuid.UUID
	failEligible      bool
	failClearIdentity bool
	failMetadataQuery bool
}

func (f *failingStore) SaveUser(ctx context.Context, u *models.User) error {
	if u.ID == f.failSaveUserID {
		return errors.New("injected save failure")
	}
	return f.Store.SaveUser(ctx, u)
}

func (f *failingStore) EligibleDeletionRequests(ctx context.Context, cutoff time.Time) ([]models.DeletionRequest, error) {
	if f.failEligible {
		return nil, errors.New("injected query failure")
	}
	return f.Store.EligibleDeletionRequests(ctx, cutoff)
}

func (f *failingStore) ClearExpiredAuditIdentity(ctx context.Context, cutoff time.Time) (int64, error) {
	if f.failClearIdentity {
		return 0, errors.New("injected bulk update failure")
	}
	return f.Store.ClearExpiredAuditIdentity(ctx, cutoff)
}

func (f *failingStore) AuditEntriesWithMetadata(ctx context.Context, cutoff time.Time) ([]models.AuditLogEntry, error) {
	if f.failMetadataQuery {
		return nil, errors.New("injected metadata query failure")
	}
	return f.Store.AuditEntriesWithMetadata(ctx, cutoff)
}

// seedUser inserts a user with one row in every dependent table.
func seedUser(m *store.Memory) models.User {
	u := models.User{
		ID:                   uuid.New(),
		Email:                "maker@example.com",
		Name:                 "Maker McBuilder",
		Bio:                  strPtr("builds things"),
		AvatarURL:            strPtr("https://cdn.example.com/a.png"),
		ShowEmailOnProfile:   true,
		IncludeInSearch:      true,
		ShowActivityPublicly: true,
	}
	m.AddUser(u)
	m.AddPushToken(models.PushToken{ID: uuid.New(), UserID: u.ID, Token: "pt", Platform: "ios"})
	m.AddRefreshToken(models.RefreshToken{ID: uuid.New(), UserID: u.ID, Token: "rt", ExpiresAt: testNow.Add(time.Hour)})
	m.AddConsentRecord(models.ConsentRecord{ID: uuid.New(), UserID: u.ID, Policy: "marketing", Granted: true})
	m.AddNotification(models.Notification{ID: uuid.New(), UserID: u.ID, Kind: "welcome", Body: "hi"})
	m.AddProject(models.Project{ID: uuid.New(), OwnerID: u.ID, Title: "widget"})
	m.AddAuditEntry(models.AuditLogEntry{
		ID:        uuid.New(),
		UserID:    &u.ID,
		Action:    "login",
		IPAddress: strPtr("203.0.113.7"),
		UserAgent: strPtr("test-agent"),
		CreatedAt: testNow.Add(-time.Hour),
	})
	return u
}

func seedRequest(m *store.Memory, userID uuid.UUID, anonymize *bool) models.DeletionRequest {
	req := models.DeletionRequest{
		ID:                     uuid.New(),
		UserID:                 &userID,
		RequestedAt:            testNow.Add(-31 * 24 * time.Hour),
		Status:                 models.DeletionStatusPending,
		AnonymizeContributions: anonymize,
	}
	m.AddDeletionRequest(req)
	return req
}

func TestProcessAnonymize(t *testing.T) {
	m := store.NewMemory()
	u := seedUser(m)
	req := seedRequest(m, u.ID, nil)

	p := NewProcessor(m, zerolog.Nop())
	outcome := p.Process(context.Background(), req, testNow)

	if !outcome.Processed || outcome.Err != "" {
		t.Fatalf("outcome = %+v, want processed without error", outcome)
	}
	if outcome.Mode != ModeAnonymize {
		t.Fatalf("mode = %q, want anonymize", outcome.Mode)
	}
	for _, s := range outcome.Steps {
		if !s.OK {
			t.Fatalf("step %s failed: %s", s.Name, s.Err)
		}
	}

	got, err := m.UserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("anonymized user must still exist: %v", err)
	}
	if got.Email != scrub.PlaceholderEmail(u.ID) {
		t.Fatalf("email = %q, want placeholder", got.Email)
	}
	if got.Name != scrub.SentinelName {
		t.Fatalf("name = %q, want sentinel", got.Name)
	}
	if got.AnonymizedAt == nil || got.DeletedAt == nil {
		t.Fatal("terminal markers must be set")
	}

	if n := m.PushTokenCount(u.ID); n != 0 {
		t.Fatalf("push tokens remaining: %d", n)
	}
	if n := m.RefreshTokenCount(u.ID); n != 0 {
		t.Fatalf("refresh tokens remaining: %d", n)
	}
	if n := m.ConsentRecordCount(u.ID); n != 0 {
		t.Fatalf("consent records remaining: %d", n)
	}
	// Content stays attributed to the sentinel; notifications survive too.
	if n := m.ProjectCount(u.ID); n != 1 {
		t.Fatalf("projects remaining = %d, want 1", n)
	}
	if n := m.NotificationCount(u.ID); n != 1 {
		t.Fatalf("notifications remaining = %d, want 1", n)
	}

	stored, _ := m.DeletionRequestByID(req.ID)
	if stored.Status != models.DeletionStatusCompleted || stored.CompletedAt == nil {
		t.Fatalf("request not completed: %+v", stored)
	}
}

func TestProcessAnonymizeDetachesAuditOwnership(t *testing.T) {
	m := store.NewMemory()
	u := seedUser(m)
	req := seedRequest(m, u.ID, boolPtr(true))

	entry := models.AuditLogEntry{ID: uuid.New(), UserID: &u.ID, Action: "listing.create", CreatedAt: testNow}
	m.AddAuditEntry(entry)

	p := NewProcessor(m, zerolog.Nop())
	if outcome := p.Process(context.Background(), req, testNow); outcome.Err != "" {
		t.Fatalf("unexpected error: %s", outcome.Err)
	}

	got, _ := m.AuditEntryByID(entry.ID)
	if got.UserID != nil {
		t.Fatal("audit entry should be detached, not deleted")
	}
	if got.Action != "listing.create" {
		t.Fatal("audit entry content must survive detachment")
	}
}

func TestProcessFullDelete(t *testing.T) {
	m := store.NewMemory()
	u := seedUser(m)
	req := seedRequest(m, u.ID, boolPtr(false))

	p := NewProcessor(m, zerolog.Nop())
	outcome := p.Process(context.Background(), req, testNow)

	if !outcome.Processed || outcome.Err != "" {
		t.Fatalf("outcome = %+v, want processed without error", outcome)
	}
	if outcome.Mode != ModeFullDelete {
		t.Fatalf("mode = %q, want full_delete", outcome.Mode)
	}

	if _, err := m.UserByID(context.Background(), u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("user row should be gone, err = %v", err)
	}
	if n := m.NotificationCount(u.ID); n != 0 {
		t.Fatalf("notifications remaining: %d", n)
	}
	if n := m.ProjectCount(u.ID); n != 0 {
		t.Fatalf("cascade should remove content rows, %d remaining", n)
	}

	stored, _ := m.DeletionRequestByID(req.ID)
	if stored.Status != models.DeletionStatusCompleted {
		t.Fatalf("request status = %s, want COMPLETED", stored.Status)
	}
}

func TestProcessMissingUser(t *testing.T) {
	m := store.NewMemory()
	ghost := uuid.New()
	req := seedRequest(m, ghost, nil)

	p := NewProcessor(m, zerolog.Nop())
	outcome := p.Process(context.Background(), req, testNow)

	if !outcome.Processed || outcome.Err != "" {
		t.Fatalf("outcome = %+v, want clean completion", outcome)
	}
	if outcome.Mode != ModeNone {
		t.Fatalf("mode = %q, want none", outcome.Mode)
	}

	stored, _ := m.DeletionRequestByID(req.ID)
	if stored.Status != models.DeletionStatusCompleted {
		t.Fatalf("request status = %s, want COMPLETED", stored.Status)
	}
}

func TestProcessNilUserReference(t *testing.T) {
	m := store.NewMemory()
	req := models.DeletionRequest{
		ID:          uuid.New(),
		RequestedAt: testNow.Add(-31 * 24 * time.Hour),
		Status:      models.DeletionStatusPending,
	}
	m.AddDeletionRequest(req)

	p := NewProcessor(m, zerolog.Nop())
	outcome := p.Process(context.Background(), req, testNow)

	if !outcome.Processed || outcome.Mode != ModeNone {
		t.Fatalf("outcome = %+v, want completed with mode none", outcome)
	}
}

func TestProcessFailureLeavesRequestPending(t *testing.T) {
	m := store.NewMemory()
	u := seedUser(m)
	req := seedRequest(m, u.ID, nil)

	st := &failingStore{Store: m, failSaveUserID: u.ID}
	p := NewProcessor(st, zerolog.Nop())
	outcome := p.Process(context.Background(), req, testNow)

	if outcome.Processed {
		t.Fatal("a failed record must not count as processed")
	}
	if !strings.Contains(outcome.Err, "injected save failure") {
		t.Fatalf("err = %q, want captured step failure", outcome.Err)
	}

	var sawFailure bool
	for _, s := range outcome.Steps {
		if s.Name == "scrub_user" && !s.OK {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Fatalf("steps should pinpoint the failed operation: %+v", outcome.Steps)
	}

	stored, _ := m.DeletionRequestByID(req.ID)
	if stored.Status != models.DeletionStatusPending {
		t.Fatalf("request status = %s, want PENDING for retry", stored.Status)
	}
}
