package dnsclient

import (
	"fmt"
	"strings"

	"github.com/rusub/rusub/internal/apperr"
)

const (
	maxLabelOctets = 63
	// maxNameOctets counts length-prefixed labels plus the terminating null
	// byte, per spec.md §4.1 "total name ≤255 octets including length
	// prefixes and final null".
	maxNameOctets = 255
)

// validateName rejects names that would violate wire-format limits before
// any packet is built, per spec.md §4.1: "Inputs exceeding limits fail with
// Malformed before any packet is sent."
func validateName(name string) error {
	trimmed := strings.TrimSuffix(name, ".")
	if trimmed == "" {
		return fmt.Errorf("%w: empty name", apperr.ErrMalformed)
	}

	wireLen := 1 // terminating null
	for _, label := range strings.Split(trimmed, ".") {
		if len(label) == 0 {
			return fmt.Errorf("%w: empty label in %q", apperr.ErrMalformed, name)
		}
		if len(label) > maxLabelOctets {
			return fmt.Errorf("%w: label %q exceeds %d octets", apperr.ErrMalformed, label, maxLabelOctets)
		}
		wireLen += len(label) + 1 // length octet + label bytes
	}
	if wireLen > maxNameOctets {
		return fmt.Errorf("%w: name %q exceeds %d wire octets", apperr.ErrMalformed, name, maxNameOctets)
	}
	return nil
}
