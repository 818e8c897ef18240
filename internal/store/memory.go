package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"tradepost/internal/models"
)

// Memory implements Store with in-memory maps. It exists for tests and
// local experiments; it mirrors the predicate semantics of the GORM store,
// including cascade behavior on user deletion.
type Memory struct {
	mu sync.Mutex

	users         map[uuid.UUID]models.User
	requests      map[uuid.UUID]models.DeletionRequest
	audit         map[uuid.UUID]models.AuditLogEntry
	pushTokens    map[uuid.UUID][]models.PushToken
	refreshTokens map[uuid.UUID][]models.RefreshToken
	consents      map[uuid.UUID][]models.ConsentRecord
	notifications map[uuid.UUID][]models.Notification
	projects      map[uuid.UUID][]models.Project
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[uuid.UUID]models.User),
		requests:      make(map[uuid.UUID]models.DeletionRequest),
		audit:         make(map[uuid.UUID]models.AuditLogEntry),
		pushTokens:    make(map[uuid.UUID][]models.PushToken),
		refreshTokens: make(map[uuid.UUID][]models.RefreshToken),
		consents:      make(map[uuid.UUID][]models.ConsentRecord),
		notifications: make(map[uuid.UUID][]models.Notification),
		projects:      make(map[uuid.UUID][]models.Project),
	}
}

func (m *Memory) EligibleDeletionRequests(_ context.Context, cutoff time.Time) ([]models.DeletionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.DeletionRequest
	for _, req := range m.requests {
		if req.Status == models.DeletionStatusPending && !req.RequestedAt.After(cutoff) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (m *Memory) CompleteDeletionRequest(_ context.Context, id uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.Status = models.DeletionStatusCompleted
	completed := now
	req.CompletedAt = &completed
	m.requests[id] = req
	return nil
}

func (m *Memory) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := u
	return &copied, nil
}

func (m *Memory) SaveUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[u.ID] = *u
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, id)
	// Cascade removes every row owned by the user.
	delete(m.pushTokens, id)
	delete(m.refreshTokens, id)
	delete(m.consents, id)
	delete(m.notifications, id)
	delete(m.projects, id)
	return nil
}

func (m *Memory) DeletePushTokens(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pushTokens, userID)
	return nil
}

func (m *Memory) DeleteRefreshTokens(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refreshTokens, userID)
	return nil
}

func (m *Memory) DeleteConsentRecords(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.consents, userID)
	return nil
}

func (m *Memory) DeleteNotifications(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notifications, userID)
	return nil
}

func (m *Memory) DetachAuditLogs(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, entry := range m.audit {
		if entry.UserID != nil && *entry.UserID == userID {
			entry.UserID = nil
			m.audit[id] = entry
		}
	}
	return nil
}

func (m *Memory) ClearExpiredAuditIdentity(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var affected int64
	for id, entry := range m.audit {
		if entry.CreatedAt.Before(cutoff) && entry.UserID != nil {
			entry.UserID = nil
			entry.IPAddress = nil
			entry.UserAgent = nil
			m.audit[id] = entry
			affected++
		}
	}
	return affected, nil
}

func (m *Memory) AuditEntriesWithMetadata(_ context.Context, cutoff time.Time) ([]models.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AuditLogEntry
	for _, entry := range m.audit {
		if entry.CreatedAt.Before(cutoff) && entry.Metadata != nil {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveAuditMetadata(_ context.Context, id uuid.UUID, meta datatypes.JSON) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.audit[id]
	if !ok {
		return ErrNotFound
	}
	entry.Metadata = meta
	m.audit[id] = entry
	return nil
}

// Seeding and inspection helpers for tests.

// AddUser inserts or replaces a user row.
func (m *Memory) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// AddDeletionRequest inserts or replaces a deletion request row.
func (m *Memory) AddDeletionRequest(req models.DeletionRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
}

// AddAuditEntry inserts or replaces an audit log entry.
func (m *Memory) AddAuditEntry(entry models.AuditLogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit[entry.ID] = entry
}

// AddPushToken registers a push token row for its user.
func (m *Memory) AddPushToken(t models.PushToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushTokens[t.UserID] = append(m.pushTokens[t.UserID], t)
}

// AddRefreshToken registers a refresh token row for its user.
func (m *Memory) AddRefreshToken(t models.RefreshToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshTokens[t.UserID] = append(m.refreshTokens[t.UserID], t)
}

// AddConsentRecord registers a consent row for its user.
func (m *Memory) AddConsentRecord(c models.ConsentRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consents[c.UserID] = append(m.consents[c.UserID], c)
}

// AddNotification registers a notification row for its user.
func (m *Memory) AddNotification(n models.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.UserID] = append(m.notifications[n.UserID], n)
}

// AddProject registers a content row for its owner.
func (m *Memory) AddProject(p models.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.OwnerID] = append(m.projects[p.OwnerID], p)
}

// DeletionRequestByID returns a copy of the stored request, if any.
func (m *Memory) DeletionRequestByID(id uuid.UUID) (models.DeletionRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	return req, ok
}

// AuditEntryByID returns a copy of the stored entry, if any.
func (m *Memory) AuditEntryByID(id uuid.UUID) (models.AuditLogEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.audit[id]
	return entry, ok
}

// PushTokenCount reports the remaining push tokens for a user.
func (m *Memory) PushTokenCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pushTokens[userID])
}

// RefreshTokenCount reports the remaining refresh tokens for a user.
func (m *Memory) RefreshTokenCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refreshTokens[userID])
}

// ConsentRecordCount reports the remaining consent rows for a user.
func (m *Memory) ConsentRecordCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.consents[userID])
}

// NotificationCount reports the remaining notifications for a user.
func (m *Memory) NotificationCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications[userID])
}

// ProjectCount reports the remaining content rows owned by a user.
func (m *Memory) ProjectCount(ownerID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.projects[ownerID])
}
