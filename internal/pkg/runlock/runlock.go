// Package runlock guards a unit of work against concurrent execution.
// The sync engine takes one lock per order so a cron tick and a manual sync
// never query a provider for the same order at the same time.
package runlock

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Locker acquires short-lived exclusive locks by key
type Locker interface {
	// TryLock acquires key for at most ttl without waiting. When acquired is false
	// another holder owns the key and release is nil.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// OrderKey returns the lock key for an order
func OrderKey(orderID int64) string {
	return "order:" + strconv.FormatInt(orderID, 10)
}

type memoryEntry struct {
	token     uint64
	expiresAt time.Time
}

// MemoryLocker is a process-local Locker suitable for single-instance deployments and tests
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	next    uint64
	now     func() time.Time
}

// NewMemoryLocker creates an empty in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// TryLock implements Locker
func (l *MemoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, held := l.entries[key]; held && now.Before(e.expiresAt) {
		return nil, false, nil
	}

	l.next++
	token := l.next
	l.entries[key] = memoryEntry{token: token, expiresAt: now.Add(ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			// an expired lock may have been taken over by another holder
			if e, ok := l.entries[key]; ok && e.token == token {
				delete(l.entries, key)
			}
		})
	}
	return release, true, nil
}

// Held reports whether key is currently locked
func (l *MemoryLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	return ok && l.now().Before(e.expiresAt)
}
