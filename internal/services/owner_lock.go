package services

import (
	"context"
	"sync"
)

// ownerLocks hands out one mutual-exclusion slot per owner ID. Entries are reference counted
// and dropped once nobody holds or waits for them.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	slot chan struct{}
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*ownerLock)}
}

// Lock blocks until the owner's slot is free or ctx is done. The returned func releases the slot
// and must be called exactly once.
func (l *ownerLocks) Lock(ctx context.Context, ownerID string) (func(), error) {
	l.mu.Lock()
	ol, ok := l.locks[ownerID]
	if !ok {
		ol = &ownerLock{slot: make(chan struct{}, 1)}
		l.locks[ownerID] = ol
	}
	ol.refs++
	l.mu.Unlock()

	select {
	case ol.slot <- struct{}{}:
		return func() {
			<-ol.slot
			l.release(ownerID, ol)
		}, nil
	case <-ctx.Done():
		l.release(ownerID, ol)
		return nil, ctx.Err()
	}
}

func (l *ownerLocks) release(ownerID string, ol *ownerLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ol.refs--
	if ol.refs == 0 {
		delete(l.locks, ownerID)
	}
}

// size reports the number of live entries.
func (l *ownerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
