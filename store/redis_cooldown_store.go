package store

import (
	"context"
	"errors"
	"time"

	"github.com/BatmanBruc/yt-audio-bot/types"
	"github.com/rs/zerolog"
)

// RedisCooldownStore keeps one key per user holding the request timestamp.
// Keys expire with the window, so absence means no cooldown.
type RedisCooldownStore struct {
	client *RedisClient
	window time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewRedisCooldownStore(client *RedisClient, window time.Duration, log zerolog.Logger) *RedisCooldownStore {
	return &RedisCooldownStore{
		client: client,
		window: window,
		log:    log.With().Str("component", "cooldown_redis").Logger(),
		now:    time.Now,
	}
}

func (s *RedisCooldownStore) key(userID types.UserID) string {
	return s.client.generateKey("cooldown", userKey(userID))
}

func (s *RedisCooldownStore) CheckCooldown(ctx context.Context, userID types.UserID) (int, bool) {
	var ts float64
	if err := s.client.Get(ctx, s.key(userID), &ts); err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.log.Error().Err(err).Stringer("user_id", userID).Msg("cooldown check failed")
		}
		return 0, false
	}
	remaining := remainingSeconds(s.window, s.now().Sub(fromUnixSeconds(ts)))
	return remaining, remaining > 0
}

func (s *RedisCooldownStore) SetCooldown(ctx context.Context, userID types.UserID) {
	if err := s.client.Set(ctx, s.key(userID), unixSeconds(s.now()), s.window); err != nil {
		s.log.Error().Err(err).Stringer("user_id", userID).Msg("cooldown set failed")
	}
}

func (s *RedisCooldownStore) Acquire(ctx context.Context, userID types.UserID) (int, bool) {
	ok, err := s.client.SetNX(ctx, s.key(userID), unixSeconds(s.now()), s.window)
	if err != nil {
		s.log.Error().Err(err).Stringer("user_id", userID).Msg("cooldown acquire failed")
		return 0, true
	}
	if ok {
		return 0, true
	}
	remaining, limited := s.CheckCooldown(ctx, userID)
	if !limited {
		// Key expired between SETNX and GET; the window is over.
		s.SetCooldown(ctx, userID)
		return 0, true
	}
	return remaining, false
}
