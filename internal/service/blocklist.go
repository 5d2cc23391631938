package service

import (
	"context"
	"sync"
	"time"
)

const blocklistSweepInterval = 10 * time.Minute

// TokenBlocklist remembers revoked token IDs until their expiry.
type TokenBlocklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewTokenBlocklist creates an empty blocklist.
func NewTokenBlocklist() *TokenBlocklist {
	return &TokenBlocklist{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke blocks the token id until expiresAt.
func (b *TokenBlocklist) Revoke(id string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[id] = expiresAt
}

// IsRevoked reports whether the token id was revoked and has not yet expired.
func (b *TokenBlocklist) IsRevoked(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.revoked[id]
	return ok && b.now().Before(exp)
}

// Len returns the number of tracked ids.
func (b *TokenBlocklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.revoked)
}

// Sweep drops ids whose tokens have expired.
func (b *TokenBlocklist) Sweep() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for id, exp := range b.revoked {
		if !now.Before(exp) {
			delete(b.revoked, id)
		}
	}
}

// Run sweeps periodically until ctx is done.
func (b *TokenBlocklist) Run(ctx context.Context) {
	ticker := time.NewTicker(blocklistSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Sweep()
		}
	}
}
