package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ConversationLockRepository hands out one mutex per conversation so
// concurrent messages to the same session run strictly one at a time.
// Locks for idle conversations expire instead of accumulating forever.
type ConversationLockRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewConversationLockRepository() *ConversationLockRepository {
	// Idle conversation locks expire after 1 hour, purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationLockRepository{
		cache: c,
	}
}

func (r *ConversationLockRepository) Get(conversationID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(conversationID); found {
		// Refresh the TTL while the conversation is active.
		lock := x.(*sync.Mutex)
		r.cache.Set(conversationID, lock, cache.DefaultExpiration)
		return lock
	}

	lock := &sync.Mutex{}
	r.cache.Set(conversationID, lock, cache.DefaultExpiration)
	return lock
}

func (r *ConversationLockRepository) Delete(conversationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(conversationID)
}
