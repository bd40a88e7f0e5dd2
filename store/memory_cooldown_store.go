package store

import (
	"context"
	"sync"
	"time"

	"github.com/BatmanBruc/yt-audio-bot/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemoryCooldownSize = 100_000

// MemoryCooldownStore is a process-local cooldown table capped by LRU
// eviction. Evicting a user only forgets an old cooldown.
type MemoryCooldownStore struct {
	mu     sync.Mutex
	cache  *lru.Cache[types.UserID, time.Time]
	window time.Duration
	now    func() time.Time
}

func NewMemoryCooldownStore(window time.Duration, size int) (*MemoryCooldownStore, error) {
	if size <= 0 {
		size = defaultMemoryCooldownSize
	}
	cache, err := lru.New[types.UserID, time.Time](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCooldownStore{cache: cache, window: window, now: time.Now}, nil
}

func (s *MemoryCooldownStore) CheckCooldown(ctx context.Context, userID types.UserID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkLocked(userID)
}

func (s *MemoryCooldownStore) SetCooldown(ctx context.Context, userID types.UserID) {
	s.mu.Lock()
	s.cache.Add(userID, s.now())
	s.mu.Unlock()
}

func (s *MemoryCooldownStore) Acquire(ctx context.Context, userID types.UserID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if remaining, limited := s.checkLocked(userID); limited {
		return remaining, false
	}
	s.cache.Add(userID, s.now())
	return 0, true
}

func (s *MemoryCooldownStore) checkLocked(userID types.UserID) (int, bool) {
	last, ok := s.cache.Peek(userID)
	if !ok {
		return 0, false
	}
	remaining := remainingSeconds(s.window, s.now().Sub(last))
	return remaining, remaining > 0
}
