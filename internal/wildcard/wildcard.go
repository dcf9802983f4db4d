// Package wildcard implements the catch-all detector (spec.md §4.3): it
// probes random labels under an apex, classifies addresses that keep
// reappearing as wildcard answers, and hands back an immutable per-apex
// profile the scanner uses to filter results.
package wildcard

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rusub/rusub/internal/apperr"
	"github.com/rusub/rusub/internal/dnsclient"
	"github.com/rusub/rusub/internal/dnsrecord"
)

// probeCount is K in spec.md §4.3.
const probeCount = 6

// threshold is the frequency a probed address must reach across probeCount
// probes to be classified as a wildcard. With probeCount = 6, a 0.60
// threshold needs 4 of 6 probes (3/6 = 0.50 < 0.60), so it classifies
// exactly as the stricter ≥4/6 majority reading does.
const threshold = 0.60

// errorRateAbort is the fraction of failed probes above which the apex is
// aborted with ErrWildcardUnknown rather than guessed at.
const errorRateAbort = 0.50

// Profile is the empirical set of catch-all addresses for one apex. It is
// built once and is safe for concurrent read-only use thereafter (spec.md §5
// "Wildcard profiles: written once per apex under exclusive access, then
// read-only and shared across workers").
type Profile struct {
	addrs map[string]struct{}
}

// Contains reports whether addr is classified as a wildcard answer.
func (p *Profile) Contains(addr string) bool {
	_, ok := p.addrs[addr]
	return ok
}

// IsSubset reports whether every element of addrs (which must be non-empty)
// is in the wildcard profile — the filter rule's core predicate (spec.md
// §4.3 "A candidate result is suppressed iff its non-empty address set is a
// subset of the wildcard profile").
func (p *Profile) IsSubset(addrs []string) bool {
	if len(addrs) == 0 {
		return false
	}
	for _, a := range addrs {
		if !p.Contains(a) {
			return false
		}
	}
	return true
}

// Len returns the number of addresses in the profile.
func (p *Profile) Len() int { return len(p.addrs) }

// Detector runs the probing algorithm using an injected DNS client, so tests
// can point it at a stub resolver.
type Detector struct {
	client *dnsclient.Client
}

// NewDetector returns a Detector backed by client.
func NewDetector(client *dnsclient.Client) *Detector {
	return &Detector{client: client}
}

// Profile executes the K=6 random-label probing algorithm for apex (spec.md
// §4.3) and returns the resulting wildcard profile. It returns
// apperr.ErrWildcardUnknown if more than half the probes fail outright.
func (d *Detector) Profile(ctx context.Context, apex string) (*Profile, error) {
	counts := make(map[string]int)
	errs := 0

	for i := 0; i < probeCount; i++ {
		label := fmt.Sprintf("%016x.%s", rand.Uint64(), apex) //nolint:gosec // unpredictability, not cryptographic secrecy, is all that's needed here
		records, err := d.client.QueryFull(ctx, label)
		if err != nil {
			errs++
			continue
		}
		for _, addr := range dnsrecord.Addresses(records) {
			counts[addr]++
		}
	}

	if float64(errs)/float64(probeCount) > errorRateAbort {
		return nil, apperr.ErrWildcardUnknown
	}

	profile := &Profile{addrs: make(map[string]struct{})}
	for addr, count := range counts {
		if float64(count)/float64(probeCount) >= threshold {
			profile.addrs[addr] = struct{}{}
		}
	}
	return profile, nil
}
