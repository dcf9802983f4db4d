// Package dnsrecord holds the tagged-variant DNS record type shared by the
// DNS client, the wildcard detector and the scanner. Keeping it independent
// of internal/dnsclient lets the wildcard detector and scanner depend on the
// data model without depending on the UDP transport.
package dnsrecord

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// Type identifies which of the four record kinds rusub understands. Any RR
// type the parser does not recognize is discarded by FromRR, which
// internal/dnsclient calls on every answer RR.
type Type string

const (
	TypeA     Type = "A"
	TypeAAAA  Type = "AAAA"
	TypeCNAME Type = "CNAME"
	TypeTXT   Type = "TXT"
)

// Record is one answer RR, reduced to the tagged variant the data model (spec.md
// §3) describes: an IPv4/IPv6 address, a CNAME target, or TXT bytes rendered
// as a string. Data is always lowercase and trailing-dot-stripped for names.
type Record struct {
	Type Type
	Data string
}

// FromRR converts a single miekg/dns answer RR into a Record. It returns
// ok=false for any RR type outside {A, AAAA, CNAME, TXT} or any RR whose
// class is not IN — both are silently discarded by the parser per spec.md §4.1.
func FromRR(rr dns.RR) (Record, bool) {
	if rr.Header().Class != dns.ClassINET {
		return Record{}, false
	}
	switch r := rr.(type) {
	case *dns.A:
		return Record{Type: TypeA, Data: r.A.String()}, true
	case *dns.AAAA:
		return Record{Type: TypeAAAA, Data: r.AAAA.String()}, true
	case *dns.CNAME:
		return Record{Type: TypeCNAME, Data: normalizeName(r.Target)}, true
	case *dns.TXT:
		return Record{Type: TypeTXT, Data: strings.Join(r.Txt, "")}, true
	default:
		return Record{}, false
	}
}

// normalizeName lowercases and strips the trailing root dot from a wire name,
// per the invariant in spec.md §3: "records[*].data for CNAME always
// lowercase, trailing-dot-stripped".
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

// Addresses returns the A/AAAA record data as a deduplicated string slice,
// preserving first-seen order.
func Addresses(records []Record) []string {
	seen := make(map[string]struct{}, len(records))
	var out []string
	for _, r := range records {
		if r.Type != TypeA && r.Type != TypeAAAA {
			continue
		}
		if _, dup := seen[r.Data]; dup {
			continue
		}
		seen[r.Data] = struct{}{}
		out = append(out, r.Data)
	}
	return out
}

// String renders a record for diagnostics, e.g. "A 93.184.216.34".
func (r Record) String() string {
	return fmt.Sprintf("%s %s", r.Type, r.Data)
}
