package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"jazzcoasters-backend/internal/domain"
)

// AbuseStore is the in-process RateWindow and CooldownRegistry. A single mutex
// makes every read-modify-write atomic.
type AbuseStore struct {
	mu        sync.Mutex
	windows   map[string][]time.Time
	expiresAt map[string]time.Time // when a window holds only stale entries
	cooldowns map[string]time.Time // when an address may submit again
}

var _ domain.AbuseStore = (*AbuseStore)(nil)

func NewAbuseStore() *AbuseStore {
	return &AbuseStore{
		windows:   make(map[string][]time.Time),
		expiresAt: make(map[string]time.Time),
		cooldowns: make(map[string]time.Time),
	}
}

func (s *AbuseStore) RecordAttempt(_ context.Context, ip string, now time.Time, window time.Duration, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.windows[ip][:0:0]
	for _, ts := range s.windows[ip] {
		if now.Sub(ts) < window {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= limit {
		s.store(ip, recent, window)
		return false, nil
	}

	s.store(ip, append(recent, now), window)
	return true, nil
}

func (s *AbuseStore) store(ip string, entries []time.Time, window time.Duration) {
	if len(entries) == 0 {
		delete(s.windows, ip)
		delete(s.expiresAt, ip)
		return
	}
	s.windows[ip] = entries
	s.expiresAt[ip] = entries[len(entries)-1].Add(window)
}

func (s *AbuseStore) ClaimCooldown(_ context.Context, email string, now time.Time, cooldown time.Duration) (bool, error) {
	key := strings.ToLower(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if until, ok := s.cooldowns[key]; ok && now.Before(until) {
		return false, nil
	}
	s.cooldowns[key] = now.Add(cooldown)
	return true, nil
}

// Purge drops windows and cooldowns that can no longer affect a decision.
func (s *AbuseStore) Purge(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ip, exp := range s.expiresAt {
		if !now.Before(exp) {
			delete(s.windows, ip)
			delete(s.expiresAt, ip)
		}
	}
	for email, until := range s.cooldowns {
		if !now.Before(until) {
			delete(s.cooldowns, email)
		}
	}
}

// StartJanitor purges on every tick until ctx is done.
func (s *AbuseStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Purge(now)
			}
		}
	}()
}

// Len reports how many IP windows and cooldowns are held.
func (s *AbuseStore) Len() (windows, cooldowns int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows), len(s.cooldowns)
}
