// Package resolver implements the resolver-source adapter (spec.md §4.5): it
// normalizes user-supplied and OS-provided resolver addresses into an
// ordered, deduplicated pool of UDP endpoints that the DNS client rotates
// across on retry.
package resolver

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/rusub/rusub/internal/apperr"
)

// DefaultPort is used for any resolver address supplied without an explicit port.
const DefaultPort = 53

// Fallback is used when neither the user nor the OS supplies any resolvers.
var Fallback = []string{"1.1.1.1", "8.8.8.8"}

// Endpoint is a UDP IPv4 address + port pair. IPv6 is out of scope for this
// core (spec.md §3 invariant).
type Endpoint struct {
	IP   netip.Addr
	Port uint16
}

// String renders the endpoint in net.Dial's "host:port" form.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP.String(), fmt.Sprintf("%d", e.Port))
}

// Pool is the immutable, ordered, non-empty list of resolver endpoints a scan
// uses. It is built once before a scan starts and is shared read-only across
// all workers thereafter (spec.md §5 "Resolver list: immutable after scan
// start; shared read").
type Pool struct {
	endpoints []Endpoint
}

// At returns the resolver for retry attempt k, rotating through the pool
// (spec.md §4.1 "Attempt k picks resolver resolvers[k mod N]").
func (p *Pool) At(attempt int) Endpoint {
	return p.endpoints[attempt%len(p.endpoints)]
}

// Len returns the number of distinct endpoints in the pool.
func (p *Pool) Len() int { return len(p.endpoints) }

// All returns a copy of the pool's endpoints in priority order.
func (p *Pool) All() []Endpoint {
	out := make([]Endpoint, len(p.endpoints))
	copy(out, p.endpoints)
	return out
}

// NewPool builds the resolver pool from, in priority order: user-supplied
// addresses, OS-provided addresses (the caller's responsibility to gather —
// system-DNS discovery is an external collaborator per spec.md §1), and the
// package Fallback list. It drops loopback and IPv6 addresses and
// deduplicates while preserving order. Returns apperr.ErrNoResolvers if the
// result is empty.
func NewPool(userSupplied, osProvided []string) (*Pool, error) {
	seen := make(map[netip.Addr]struct{})
	var endpoints []Endpoint

	add := func(raw string) {
		ep, ok := parseEndpoint(raw)
		if !ok {
			return
		}
		if ep.IP.Is4In6() {
			ep.IP = ep.IP.Unmap()
		}
		if !ep.IP.Is4() {
			return // no IPv6 in this core
		}
		if ep.IP.IsLoopback() {
			return
		}
		if _, dup := seen[ep.IP]; dup {
			return
		}
		seen[ep.IP] = struct{}{}
		endpoints = append(endpoints, ep)
	}

	for _, raw := range userSupplied {
		add(raw)
	}
	for _, raw := range osProvided {
		add(raw)
	}
	for _, raw := range Fallback {
		add(raw)
	}

	if len(endpoints) == 0 {
		return nil, apperr.ErrNoResolvers
	}
	return &Pool{endpoints: endpoints}, nil
}

// NewPoolForTest builds a Pool directly from endpoints, bypassing the
// loopback/IPv6 filtering NewPool applies. Production code (reached from the
// CLI) never calls this; it exists so tests can point the DNS client at a
// local stub resolver.
func NewPoolForTest(endpoints ...Endpoint) *Pool {
	return &Pool{endpoints: endpoints}
}

// parseEndpoint accepts either a bare IP ("1.1.1.1") or an "ip:port" pair.
func parseEndpoint(raw string) (Endpoint, bool) {
	if host, port, err := net.SplitHostPort(raw); err == nil {
		ip, err := netip.ParseAddr(host)
		if err != nil {
			return Endpoint{}, false
		}
		var p uint16
		if _, err := fmt.Sscanf(port, "%d", &p); err != nil {
			return Endpoint{}, false
		}
		return Endpoint{IP: ip, Port: p}, true
	}
	ip, err := netip.ParseAddr(raw)
	if err != nil {
		return Endpoint{}, false
	}
	return Endpoint{IP: ip, Port: DefaultPort}, true
}
