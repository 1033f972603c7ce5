// internal/services/revocation.go
package services

import (
	"sync"
	"time"
)

// RevocationList remembers logged-out token ids until they would have
// expired anyway.
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (r *RevocationList) Revoke(tokenID string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[tokenID] = until
	r.purgeLocked()
}

func (r *RevocationList) IsRevoked(tokenID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.entries[tokenID]
	if !ok {
		return false
	}
	if r.now().After(until) {
		delete(r.entries, tokenID)
		return false
	}
	return true
}

func (r *RevocationList) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *RevocationList) purgeLocked() {
	now := r.now()
	for id, until := range r.entries {
		if now.After(until) {
			delete(r.entries, id)
		}
	}
}
