// File: services/conversation/locks_test.go
package conversation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationLocksEvictReleasedEntries(t *testing.T) {
	var locks conversationLocks

	release := locks.acquire("p1", "s1", "+5511999")
	assert.Len(t, locks.locks, 1)
	release()

	assert.Empty(t, locks.locks)
}

func TestConversationLocksSerializeSameKey(t *testing.T) {
	var locks conversationLocks

	active := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.acquire("p1", "s1", "+5511999")
			defer release()
			active++
			assert.Equal(t, 1, active)
			active--
		}()
	}
	wg.Wait()

	assert.Empty(t, locks.locks)
}

func TestConversationLocksDistinctKeysRunInParallel(t *testing.T) {
	var locks conversationLocks

	releaseA := locks.acquire("p1", "s1", "+5511111")
	releaseB := locks.acquire("p1", "s1", "+5522222")
	assert.Len(t, locks.locks, 2)

	releaseA()
	releaseB()
	assert.Empty(t, locks.locks)
}
