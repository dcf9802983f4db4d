// Package dnsclient implements the raw-UDP DNS client (spec.md §4.1). It
// bypasses the host resolver entirely: every query opens its own UDP socket
// to a resolver endpoint from the caller's pool, manages its own per-attempt
// deadline and retry/rotation policy, and matches responses by transaction
// ID and question. Wire marshal/unmarshal is delegated to
// github.com/miekg/dns — the ecosystem's purpose-built library for DNS wire
// format — while everything above the wire (sockets, timeouts, retries,
// resolver rotation, rate limiting) is hand-rolled per spec.
package dnsclient

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/rusub/rusub/internal/apperr"
	"github.com/rusub/rusub/internal/dnsrecord"
	"github.com/rusub/rusub/internal/ratelimit"
	"github.com/rusub/rusub/internal/resolver"
)

// maxWireMessage is the send-size ceiling from spec.md §4.1: "Messages
// limited to 512 bytes on send". Responses are read into a generously sized
// buffer since the limit only binds what we transmit.
const maxWireMessage = 512

// readBufferSize comfortably holds a non-EDNS response plus any padding; EDNS0
// is out of scope (spec.md §1 Non-goals) so UDP responses never legitimately
// exceed the classic 512-byte envelope by much.
const readBufferSize = 4096

// Dialer opens a connected UDP socket to a resolver endpoint. Production
// code uses DialUDP; tests substitute a fake to talk to an in-memory stub
// resolver without touching the network.
type Dialer func(ctx context.Context, address string) (net.Conn, error)

// DialUDP is the production Dialer: a plain UDP socket, no host resolver
// involved.
func DialUDP(ctx context.Context, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "udp", address)
}

// QueryResult is the answer to a single (name, type) query.
type QueryResult struct {
	Answers   []dnsrecord.Record
	Truncated bool
}

// Client is the raw-UDP DNS client. It holds no per-query state; all of it
// (pool, timeout, retry count) is immutable configuration set at
// construction, matching spec.md §5 "Resolver list: immutable after scan
// start; shared read".
type Client struct {
	pool    *resolver.Pool
	timeout time.Duration
	retries int
	limiter *ratelimit.Limiter
	dial    Dialer
}

// New returns a Client. timeout is the per-attempt deadline, retries is the
// maximum number of attempts (spec.md §4.1 defaults: timeout=6s, retry=3).
// limiter may be nil, in which case wire sends are unthrottled (the tests
// build clients this way; the scanner passes its limiter, and its wildcard
// detector shares that same rate-limited client).
func New(pool *resolver.Pool, timeout time.Duration, retries int, limiter *ratelimit.Limiter) *Client {
	return &Client{pool: pool, timeout: timeout, retries: retries, limiter: limiter, dial: DialUDP}
}

// WithDialer returns a copy of c that uses dial instead of DialUDP. Used by
// tests to point the client at an in-process stub resolver.
func (c *Client) WithDialer(dial Dialer) *Client {
	cp := *c
	cp.dial = dial
	return &cp
}

// Query resolves one (name, type) pair, honoring the per-attempt deadline
// and retry/rotation policy described in spec.md §4.1.
func (c *Client) Query(ctx context.Context, name string, qtype uint16) (QueryResult, error) {
	if err := validateName(name); err != nil {
		return QueryResult{}, err
	}
	fqdn := dns.Fqdn(name)

	var lastErr error = apperr.ErrTimeout
	for attempt := 0; attempt < c.retries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return QueryResult{}, fmt.Errorf("%w: %w", apperr.ErrCancelled, err)
			}
		}

		result, err := c.attempt(ctx, fqdn, qtype, attempt)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, apperr.ErrNxdomain) {
			// Terminal: no retry, returns empty per spec.md §4.1.
			return QueryResult{}, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return QueryResult{}, fmt.Errorf("%w: %w", apperr.ErrCancelled, err)
			}
		}
		lastErr = err
	}
	return QueryResult{}, lastErr
}

// attempt performs one send/receive cycle against resolvers[attempt mod N].
func (c *Client) attempt(ctx context.Context, fqdn string, qtype uint16, attempt int) (QueryResult, error) {
	ep := c.pool.At(attempt)

	msg := new(dns.Msg)
	msg.Id = uint16(rand.Intn(1 << 16)) //nolint:gosec // transaction ID only needs to be unpredictable, not cryptographically secure
	msg.RecursionDesired = true
	msg.Question = []dns.Question{{Name: fqdn, Qtype: qtype, Qclass: dns.ClassINET}}

	packed, err := msg.Pack()
	if err != nil {
		return QueryResult{}, fmt.Errorf("%w: packing query: %w", apperr.ErrMalformed, err)
	}
	if len(packed) > maxWireMessage {
		return QueryResult{}, fmt.Errorf("%w: query exceeds %d bytes", apperr.ErrMalformed, maxWireMessage)
	}

	deadline := time.Now().Add(c.timeout)
	dialCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	conn, err := c.dial(dialCtx, ep.String())
	if err != nil {
		return QueryResult{}, fmt.Errorf("%w: dialing %s: %w", apperr.ErrNetworkError, ep, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return QueryResult{}, fmt.Errorf("%w: setting deadline: %w", apperr.ErrNetworkError, err)
	}
	if _, err := conn.Write(packed); err != nil {
		return QueryResult{}, fmt.Errorf("%w: writing query: %w", apperr.ErrNetworkError, err)
	}

	buf := make([]byte, readBufferSize)
	for {
		if ctx.Err() != nil {
			return QueryResult{}, fmt.Errorf("%w: %w", apperr.ErrCancelled, ctx.Err())
		}
		n, err := conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return QueryResult{}, apperr.ErrTimeout
			}
			return QueryResult{}, fmt.Errorf("%w: reading response: %w", apperr.ErrNetworkError, err)
		}

		resp := new(dns.Msg)
		if err := resp.Unpack(buf[:n]); err != nil {
			// A malformed datagram on the wire counts as a failed attempt,
			// not grounds to keep waiting for a different one.
			return QueryResult{}, fmt.Errorf("%w: unpacking response: %w", apperr.ErrMalformed, err)
		}

		if !responseMatches(msg, resp) {
			// Stale or spoofed reply — discard and keep waiting for the
			// real one until the deadline (spec.md §4.1).
			continue
		}

		return classifyResponse(resp)
	}
}

// responseMatches reports whether resp answers the question asked in req,
// matching transaction ID, question name, and question type per spec.md
// §4.1: "responses whose ID, question name, or question type do not match
// the attempt are discarded".
func responseMatches(req, resp *dns.Msg) bool {
	if resp.Id != req.Id || len(resp.Question) != 1 || len(req.Question) != 1 {
		return false
	}
	rq, qq := resp.Question[0], req.Question[0]
	return rq.Qtype == qq.Qtype && dns.CanonicalName(rq.Name) == dns.CanonicalName(qq.Name)
}

// classifyResponse converts a matched response into a QueryResult or an
// apperr-tagged error per spec.md §4.1's retry table.
func classifyResponse(resp *dns.Msg) (QueryResult, error) {
	switch resp.Rcode {
	case dns.RcodeNameError:
		return QueryResult{}, apperr.ErrNxdomain
	case dns.RcodeServerFailure, dns.RcodeRefused:
		return QueryResult{}, fmt.Errorf("%w: rcode %s", apperr.ErrNetworkError, dns.RcodeToString[resp.Rcode])
	case dns.RcodeSuccess:
		// fall through
	default:
		return QueryResult{}, fmt.Errorf("%w: unexpected rcode %s", apperr.ErrNetworkError, dns.RcodeToString[resp.Rcode])
	}

	if resp.Truncated {
		// TC=1 is reported as an answer-less success; TCP fallback is out
		// of scope (spec.md §4.1).
		return QueryResult{Truncated: true}, nil
	}

	var answers []dnsrecord.Record
	for _, rr := range resp.Answer {
		if rec, ok := dnsrecord.FromRR(rr); ok {
			answers = append(answers, rec)
		}
	}
	return QueryResult{Answers: answers}, nil
}
