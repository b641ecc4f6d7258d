package profiles

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store persists skill profiles.
//
// PutAtomic is a compare-and-set on Version: Version 0 creates a profile that
// must not exist yet, any other value must equal the stored version. On success
// the stored version is incremented and written back into profile.Version.
// A mismatch returns ErrConflict.
//
// ListAll streams every profile ordered by user ID; returning an error from fn
// stops the scan and is returned unchanged.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (*SkillProfile, error)
	PutAtomic(ctx context.Context, profile *SkillProfile) error
	ListAll(ctx context.Context, fn func(SkillProfile) error) error
}

// UserDirectory resolves display names for candidates. A miss must be reported
// as a *NotFoundError.
type UserDirectory interface {
	LookupUserName(ctx context.Context, userID uuid.UUID) (string, error)
}

// MemoryStore is an in-process Store. Profiles are copied on the way in and
// out so readers never observe a half-written profile.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*SkillProfile
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[uuid.UUID]*SkillProfile)}
}

// Get returns a copy of the stored profile or nil when absent.
func (m *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (*SkillProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[userID].Clone(), nil
}

// PutAtomic stores profile if its Version matches the stored one.
func (m *MemoryStore) PutAtomic(ctx context.Context, profile *SkillProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.profiles[profile.UserID]
	switch {
	case profile.Version == 0 && exists:
		return ErrConflict
	case profile.Version != 0 && (!exists || current.Version != profile.Version):
		return ErrConflict
	}

	profile.Version++
	m.profiles[profile.UserID] = profile.Clone()
	return nil
}

// ListAll calls fn for a snapshot of every profile ordered by user ID.
func (m *MemoryStore) ListAll(ctx context.Context, fn func(SkillProfile) error) error {
	m.mu.RLock()
	snapshot := make([]*SkillProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		snapshot = append(snapshot, p.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return bytes.Compare(snapshot[i].UserID[:], snapshot[j].UserID[:]) < 0
	})

	for _, p := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(*p); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of stored profiles.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}
