package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BatmanBruc/yt-audio-bot/types"
	"github.com/rs/zerolog"
)

// FileCooldownStore keeps cooldowns in a single JSON object mapping user id to
// a Unix timestamp in seconds. Every write re-reads the file, merges one
// entry and writes the whole object back.
type FileCooldownStore struct {
	path      string
	window    time.Duration
	retention time.Duration
	log       zerolog.Logger
	now       func() time.Time

	// mu covers the whole read-merge-write cycle, which also makes Acquire
	// indivisible.
	mu sync.Mutex
}

func NewFileCooldownStore(path string, window, retention time.Duration, log zerolog.Logger) (*FileCooldownStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cooldown dir: %w", err)
		}
	}
	if retention < window {
		retention = window
	}
	return &FileCooldownStore{
		path:      path,
		window:    window,
		retention: retention,
		log:       log.With().Str("component", "cooldown_file").Logger(),
		now:       time.Now,
	}, nil
}

func (s *FileCooldownStore) CheckCooldown(ctx context.Context, userID types.UserID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkLocked(userID)
}

func (s *FileCooldownStore) SetCooldown(ctx context.Context, userID types.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setLocked(userID); err != nil {
		s.log.Error().Err(err).Stringer("user_id", userID).Msg("cooldown set failed")
	}
}

func (s *FileCooldownStore) Acquire(ctx context.Context, userID types.UserID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if remaining, limited := s.checkLocked(userID); limited {
		return remaining, false
	}
	if err := s.setLocked(userID); err != nil {
		s.log.Error().Err(err).Stringer("user_id", userID).Msg("cooldown acquire write failed")
	}
	return 0, true
}

func (s *FileCooldownStore) checkLocked(userID types.UserID) (int, bool) {
	entries, err := s.readAll()
	if err != nil {
		s.log.Error().Err(err).Stringer("user_id", userID).Msg("cooldown check failed")
		return 0, false
	}
	ts, ok := entries[userKey(userID)]
	if !ok {
		return 0, false
	}
	remaining := remainingSeconds(s.window, s.now().Sub(fromUnixSeconds(ts)))
	return remaining, remaining > 0
}

func (s *FileCooldownStore) setLocked(userID types.UserID) error {
	entries, err := s.readAll()
	if err != nil {
		// A corrupt file is replaced rather than blocking every user forever.
		s.log.Warn().Err(err).Msg("cooldown file unreadable, rewriting")
		entries = map[string]float64{}
	}
	now := s.now()
	entries[userKey(userID)] = unixSeconds(now)
	s.evict(entries, now)
	return s.writeAll(entries)
}

func (s *FileCooldownStore) evict(entries map[string]float64, now time.Time) {
	for k, ts := range entries {
		if now.Sub(fromUnixSeconds(ts)) > s.retention {
			delete(entries, k)
		}
	}
}

func (s *FileCooldownStore) readAll() (map[string]float64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]float64{}, nil
	}
	if err != nil {
		return nil, err
	}
	entries := map[string]float64{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *FileCooldownStore) writeAll(entries map[string]float64) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cooldown-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
