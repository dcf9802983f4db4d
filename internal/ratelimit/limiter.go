// Package ratelimit implements the scan-wide wire-query rate limiter
// (spec.md §4.4): a token bucket sized to the user's requested band, with
// burst capacity equal to one second of that rate. Tokens are consumed on
// every wire send, including retries, never on candidate dequeue.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// Limiter gates wire sends to a queries/second band. It is safe for
// concurrent use by many workers (spec.md §5 "Rate limiter: shared,
// internally synchronized; fair across workers").
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a Limiter allowing rps queries/second with the given burst.
// Per spec.md §4.4, callers should size burst to rps (one second of rate).
func New(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a token is available or ctx is cancelled. It is the
// single suspension point callers use before issuing a wire query.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Rate reports the configured queries/second limit.
func (l *Limiter) Rate() float64 {
	return float64(l.limiter.Limit())
}

// ParseBand parses a human-suffixed rate string as used by the -b/--band
// flag (spec.md §6): a positive number, optionally suffixed with k/K
// (10^3) or m/M (10^6). Decimal values such as "1.5k" are accepted.
// Returns an error for an empty, non-numeric or non-positive value.
func ParseBand(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("band must not be empty")
	}

	multiplier := 1.0
	suffix := s[len(s)-1:]
	numeric := s
	switch suffix {
	case "k", "K":
		multiplier = 1_000
		numeric = s[:len(s)-1]
	case "m", "M":
		multiplier = 1_000_000
		numeric = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid band %q: %w", s, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid band %q: must be positive", s)
	}
	return value * multiplier, nil
}
