package repository

import (
	"context"
	"time"

	"jazzcoasters-backend/internal/domain"
	"jazzcoasters-backend/pkg/logger"
)

// FallbackAbuseStore uses primary (Redis) and switches to secondary (in-memory)
// for any call where primary errors. Counters are therefore split while Redis
// is down, which favours availability of the contact form.
type FallbackAbuseStore struct {
	primary   domain.AbuseStore
	secondary domain.AbuseStore
}

func NewFallbackAbuseStore(primary, secondary domain.AbuseStore) *FallbackAbuseStore {
	return &FallbackAbuseStore{primary: primary, secondary: secondary}
}

func (s *FallbackAbuseStore) RecordAttempt(ctx context.Context, ip string, now time.Time, window time.Duration, limit int) (bool, error) {
	ok, err := s.primary.RecordAttempt(ctx, ip, now, window, limit)
	if err == nil {
		return ok, nil
	}
	logger.Log.Warn("Abuse store unavailable, using in-memory rate window", "error", err)
	return s.secondary.RecordAttempt(ctx, ip, now, window, limit)
}

func (s *FallbackAbuseStore) ClaimCooldown(ctx context.Context, email string, now time.Time, cooldown time.Duration) (bool, error) {
	ok, err := s.primary.ClaimCooldown(ctx, email, now, cooldown)
	if err == nil {
		return ok, nil
	}
	logger.Log.Warn("Abuse store unavailable, using in-memory cooldown registry", "error", err)
	return s.secondary.ClaimCooldown(ctx, email, now, cooldown)
}
