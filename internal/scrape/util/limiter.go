package util

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces requests per host. Greenhouse and Mapbox each get their
// own bucket so a long geocoding run does not starve page navigation.
type HostLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	perHost  map[string]rate.Limit
	fallback rate.Limit
	burst    int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		buckets:  make(map[string]*rate.Limiter),
		perHost:  make(map[string]rate.Limit),
		fallback: rate.Limit(reqPerSec),
		burst:    burst,
	}
}

// WithHost sets a dedicated rate for the host of raw. A non-positive rate or
// an unparsable URL leaves the shared rate in place.
func (hl *HostLimiter) WithHost(raw string, reqPerSec float64) *HostLimiter {
	host := Host(raw)
	if host == "" || reqPerSec <= 0 {
		return hl
	}
	hl.mu.Lock()
	defer hl.mu.Unlock()
	hl.perHost[host] = rate.Limit(reqPerSec)
	delete(hl.buckets, host)
	return hl
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.buckets[host]; ok {
		return lim
	}
	r, ok := hl.perHost[host]
	if !ok {
		r = hl.fallback
	}
	lim := rate.NewLimiter(r, hl.burst)
	hl.buckets[host] = lim
	return lim
}

// WaitURL blocks until the host of raw may be hit again. Relative or broken
// URLs share one bucket. A nil limiter never waits.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return nil
	}
	host := Host(raw)
	if host == "" {
		host = "_"
	}
	return hl.bucket(host).Wait(ctx)
}
