package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameConversationSharesOneLock(t *testing.T) {
	repo := NewConversationLockRepository()

	a := repo.Get("session-1")
	b := repo.Get("session-1")
	assert.Same(t, a, b)

	other := repo.Get("session-2")
	assert.NotSame(t, a, other)
}

func TestLockSerializesCounter(t *testing.T) {
	repo := NewConversationLockRepository()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock := repo.Get("session-1")
			lock.Lock()
			counter++
			lock.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
