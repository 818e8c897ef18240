// Package scrub holds the pure data-destruction policy: strategy selection
// and the field-level scrub rules applied to users and audit metadata.
// Nothing in this package performs I/O.
package scrub

import (
	"fmt"
	"time"

	"tradepost/internal/models"
)

// Strategy is the closed set of data-destruction strategies. Keeping it a
// dedicated type forces switches over it to handle every variant instead of
// silently defaulting through a boolean branch.
type Strategy uint8

const (
	// StrategyAnonymize replaces identifying fields with sentinels and
	// keeps the user's content rows attributed to the sentinel name.
	StrategyAnonymize Strategy = iota
	// StrategyFullDelete removes the user row and enumerated personal-data
	// rows, relying on store cascades for the rest.
	StrategyFullDelete
)

func (s Strategy) String() string {
	switch s {
	case StrategyAnonymize:
		return "anonymize"
	case StrategyFullDelete:
		return "full_delete"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// SentinelName replaces the display name of anonymized users.
const SentinelName = "Deleted User"

// Options carries the per-request knobs that influence strategy selection.
type Options struct {
	// AnonymizeContributions defaults to true when unset.
	AnonymizeContributions *bool
}

// SelectStrategy decides the destruction strategy for a deletion request.
// Total over its input: absence of a choice means anonymize.
func SelectStrategy(opts Options) Strategy {
	if opts.AnonymizeContributions != nil && !*opts.AnonymizeContributions {
		return StrategyFullDelete
	}
	return StrategyAnonymize
}

// PlaceholderEmail derives a collision-resistant replacement address from
// the user id, so the unique constraint on email survives anonymization.
func PlaceholderEmail(id fmt.Stringer) string {
	return fmt.Sprintf("deleted-%s@deleted.local", id)
}

// Anonymize applies the scrub table to a user in place. The caller is
// responsible for persisting the result.
func Anonymize(u *models.User, now time.Time) {
	u.Email = PlaceholderEmail(u.ID)
	u.Name = SentinelName
	u.Bio = nil
	u.AvatarURL = nil
	u.ShowEmailOnProfile = false
	u.IncludeInSearch = false
	u.ShowActivityPublicly = false
	u.AnonymizedAt = &now
	u.DeletedAt = &now
}

// MetadataPIIKeys lists the metadata keys stripped from aged audit entries.
// The list is a policy parameter; the sweep removes exactly these keys and
// leaves everything else in the bag untouched.
var MetadataPIIKeys = []string{"email", "name", "phoneNumber", "address"}

// ScrubMetadata removes the PII-bearing keys from an audit metadata bag.
// It reports whether anything was removed so callers can skip writes for
// already-clean rows.
func ScrubMetadata(meta map[string]any) bool {
	changed := false
	for _, key := range MetadataPIIKeys {
		if _, ok := meta[key]; ok {
			delete(meta, key)
			changed = true
		}
	}
	return changed
}
