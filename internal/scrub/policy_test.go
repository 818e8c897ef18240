package scrub

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Strategy
	}{
		{name: "unset defaults to anonymize", opts: Options{}, want: StrategyAnonymize},
		{name: "explicit true", opts: Options{AnonymizeContributions: boolPtr(true)}, want: StrategyAnonymize},
		{name: "explicit false", opts: Options{AnonymizeContributions: boolPtr(false)}, want: StrategyFullDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectStrategy(tt.opts); got != tt.want {
				t.Fatalf("SelectStrategy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnonymize(t *testing.T) {
	bio := "builds things"
	avatar := "https://cdn.example.com/a.png"
	u := models.User{
		ID:                   uuid.New(),
		Email:                "maker@example.com",
		Name:                 "Maker McBuilder",
		Bio:                  &bio,
		AvatarURL:            &avatar,
		ShowEmailOnProfile:   true,
		IncludeInSearch:      true,
		ShowActivityPublicly: true,
	}
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	Anonymize(&u, now)

	if want := "deleted-" + u.ID.String() + "@deleted.local"; u.Email != want {
		t.Fatalf("email = %q, want %q", u.Email, want)
	}
	if u.Name != SentinelName {
		t.Fatalf("name = %q, want sentinel", u.Name)
	}
	if u.Bio != nil || u.AvatarURL != nil {
		t.Fatalf("bio/avatar should be nil, got %v %v", u.Bio, u.AvatarURL)
	}
	if u.ShowEmailOnProfile || u.IncludeInSearch || u.ShowActivityPublicly {
		t.Fatal("visibility flags should all be false")
	}
	if u.AnonymizedAt == nil || !u.AnonymizedAt.Equal(now) {
		t.Fatalf("anonymizedAt = %v, want %v", u.AnonymizedAt, now)
	}
	if u.DeletedAt == nil || !u.DeletedAt.Equal(now) {
		t.Fatalf("deletedAt = %v, want %v", u.DeletedAt, now)
	}
	if !strings.HasPrefix(u.Email, "deleted-") {
		t.Fatalf("placeholder email has wrong shape: %q", u.Email)
	}
}

func TestScrubMetadata(t *testing.T) {
	meta := map[string]any{
		"email":       "maker@example.com",
		"name":        "Maker",
		"phoneNumber": "+15550100",
		"address":     "1 Main St",
		"action":      "login",
		"attempts":    3,
	}

	if !ScrubMetadata(meta) {
		t.Fatal("first scrub should report a change")
	}
	for _, key := range MetadataPIIKeys {
		if _, ok := meta[key]; ok {
			t.Fatalf("key %q should have been removed", key)
		}
	}
	if meta["action"] != "login" || meta["attempts"] != 3 {
		t.Fatalf("non-PII keys must survive, got %v", meta)
	}

	if ScrubMetadata(meta) {
		t.Fatal("second scrub over clean bag must be a no-op")
	}
}

func TestScrubMetadataEmptyBag(t *testing.T) {
	if ScrubMetadata(map[string]any{}) {
		t.Fatal("empty bag should report no change")
	}
}
