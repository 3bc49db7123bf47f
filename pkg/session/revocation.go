package session

import (
	"context"
	"sync"
	"time"
)

// RevocationStore is the deny-list consulted for tokens revoked before
// their natural expiry. Entries only need to live until that expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string, now time.Time) (bool, error)
}

type MemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations(now func() time.Time) *MemoryRevocations {
	if now == nil {
		now = time.Now
	}
	return &MemoryRevocations{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

// Revoke also drops entries whose tokens have expired on their own.
func (m *MemoryRevocations) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, exp := range m.entries {
		if !exp.After(now) {
			delete(m.entries, id)
		}
	}
	if expiresAt.After(now) {
		m.entries[tokenID] = expiresAt
	}
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.entries[tokenID]
	return ok && exp.After(now), nil
}

func (m *MemoryRevocations) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
