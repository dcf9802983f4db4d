package validate

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// Normalize turns user input into the apex domain form the data model (spec.md
// §3) requires: lowercase, trailing-dot-stripped, IDNA-encoded. It is applied
// once at input parse time; the result is immutable for the scan.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return "", fmt.Errorf("apex domain is empty")
	}
	ascii, err := idna.Lookup.ToASCII(strings.ToLower(s))
	if err != nil {
		return "", fmt.Errorf("encoding apex domain %q: %w", raw, err)
	}
	return ascii, nil
}

// FQDN joins a candidate label (or label sequence) with the apex, producing
// the candidate FQDN described in spec.md §3. apex must already be normalized.
func FQDN(label, apex string) string {
	if label == "" {
		return apex
	}
	return label + "." + apex
}
