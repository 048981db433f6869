// File: services/conversation/locks.go
package conversation

import (
	"fmt"
	"sync"
)

type convLock struct {
	mu   sync.Mutex
	refs int
}

// conversationLocks serializes handlers per (provider, slot, phone) key.
// Session load/modify/persist is not atomic, so at most one in-flight
// handler may own a conversation; handlers for different keys run fully in
// parallel. Entries are reference-counted and evicted once the last holder
// releases, so the map stays bounded by in-flight conversations.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[string]*convLock
}

func (c *conversationLocks) acquire(providerID, slotID, phone string) func() {
	key := fmt.Sprintf("%s:%s:%s", providerID, slotID, phone)

	c.mu.Lock()
	if c.locks == nil {
		c.locks = make(map[string]*convLock)
	}
	lock, exists := c.locks[key]
	if !exists {
		lock = &convLock{}
		c.locks[key] = lock
	}
	lock.refs++
	c.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		c.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}
