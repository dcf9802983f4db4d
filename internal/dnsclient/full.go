package dnsclient

import (
	"context"
	"errors"

	"github.com/miekg/dns"

	"github.com/rusub/rusub/internal/apperr"
	"github.com/rusub/rusub/internal/dnsrecord"
)

// maxChainDepth bounds CNAME-following per spec.md §4.1: "follows CNAME
// chains up to depth 8".
const maxChainDepth = 8

// QueryFull resolves name by issuing A and AAAA in parallel, following CNAME
// chains up to depth 8 on each branch, and returning the union of terminal
// address records plus every CNAME hop encountered. It fails only if both
// branches fail (spec.md §4.1).
func (c *Client) QueryFull(ctx context.Context, name string) ([]dnsrecord.Record, error) {
	type branchResult struct {
		records []dnsrecord.Record
		err     error
	}

	aCh := make(chan branchResult, 1)
	aaaaCh := make(chan branchResult, 1)

	go func() {
		recs, err := c.chainResolve(ctx, name, dns.TypeA)
		aCh <- branchResult{recs, err}
	}()
	go func() {
		recs, err := c.chainResolve(ctx, name, dns.TypeAAAA)
		aaaaCh <- branchResult{recs, err}
	}()

	a := <-aCh
	aaaa := <-aaaaCh

	if a.err != nil && aaaa.err != nil {
		return nil, errors.Join(a.err, aaaa.err)
	}

	seen := make(map[dnsrecord.Record]struct{})
	var merged []dnsrecord.Record
	for _, recs := range [][]dnsrecord.Record{a.records, aaaa.records} {
		for _, r := range recs {
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			merged = append(merged, r)
		}
	}
	return merged, nil
}

// chainResolve walks the CNAME chain for (name, qtype) up to maxChainDepth
// hops, returning every CNAME hop encountered plus any terminal address
// records found. An NXDOMAIN partway through the chain is not an error for
// this branch: it means the chain has no address, but hops already
// collected (and any partial answer) are still reported, matching
// query_full's "fails only if all branches fail".
func (c *Client) chainResolve(ctx context.Context, name string, qtype uint16) ([]dnsrecord.Record, error) {
	var hops []dnsrecord.Record
	current := name

	for depth := 0; depth < maxChainDepth; depth++ {
		result, err := c.Query(ctx, current, qtype)
		if err != nil {
			if errors.Is(err, apperr.ErrNxdomain) {
				return hops, nil
			}
			if len(hops) > 0 {
				// Partial chain discovered before the failure; still useful
				// to the caller, and the sibling branch may carry the query.
				return hops, nil
			}
			return nil, err
		}

		var next string
		var terminal []dnsrecord.Record
		for _, rec := range result.Answers {
			switch rec.Type {
			case dnsrecord.TypeCNAME:
				hops = append(hops, rec)
				next = rec.Data
			case dnsrecord.TypeA, dnsrecord.TypeAAAA:
				terminal = append(terminal, rec)
			}
		}

		if len(terminal) > 0 {
			return append(hops, terminal...), nil
		}
		if next == "" {
			return hops, nil
		}
		current = next
	}
	return hops, nil
}
