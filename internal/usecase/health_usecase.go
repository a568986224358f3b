package usecase

import (
	"context"
	"time"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// Probe reports the state of one dependency. A nil error means healthy.
type Probe func(ctx context.Context) error

type healthUsecase struct {
	probes map[string]Probe
}

// NewHealthUsecase takes named dependency probes, e.g. "redis".
func NewHealthUsecase(probes map[string]Probe) HealthUsecase {
	return &healthUsecase{probes: probes}
}

// Check always reports "ok" for the process itself; a failing dependency is
// reported as "degraded" since every dependency has an in-process fallback.
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	result := map[string]string{
		"status": "ok",
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	for name, probe := range u.probes {
		if err := probe(ctx); err != nil {
			result[name] = "unavailable"
			result["status"] = "degraded"
			continue
		}
		result[name] = "ok"
	}
	return result
}
