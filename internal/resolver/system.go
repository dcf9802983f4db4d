package resolver

import (
	"github.com/miekg/dns"
)

// SystemResolvers reads the OS resolver configuration at path (typically
// "/etc/resolv.conf") and returns its nameserver addresses. A missing or
// unparseable file is not an error: it simply yields no addresses, letting
// NewPool fall through to its Fallback list (spec.md §4.5).
func SystemResolvers(path string) []string {
	cfg, err := dns.ClientConfigFromFile(path)
	if err != nil || cfg == nil {
		return nil
	}
	return cfg.Servers
}
