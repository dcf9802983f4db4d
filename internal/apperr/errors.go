// Package apperr defines the sentinel error taxonomy shared across rusub's
// subsystems. Callers detect a failure kind with errors.Is instead of type
// assertions, the same convention the rest of the codebase uses for
// cross-package error handling.
package apperr

import "errors"

// Error kinds from the per-query DNS client up through the CLI exit code.
var (
	// ErrCliError marks a CLI/config validation failure (exit code 2).
	ErrCliError = errors.New("cli error")

	// ErrNoResolvers is returned when the resolver-source adapter cannot
	// produce at least one usable endpoint (exit code 3).
	ErrNoResolvers = errors.New("no resolvers available")

	// ErrTimeout marks a single DNS attempt that did not receive a matching
	// response before its per-attempt deadline.
	ErrTimeout = errors.New("dns query timed out")

	// ErrNetworkError marks a transport-level failure (socket, SERVFAIL,
	// REFUSED, or any other attempt that is not terminal).
	ErrNetworkError = errors.New("dns network error")

	// ErrMalformed marks a name that violates wire-format limits, or a
	// response that failed to parse.
	ErrMalformed = errors.New("malformed dns message")

	// ErrNxdomain is the terminal non-existence answer; no retry follows it.
	ErrNxdomain = errors.New("nxdomain")

	// ErrWildcardUnknown is returned when wildcard detection for an apex
	// could not reach a verdict because too many probes failed.
	ErrWildcardUnknown = errors.New("wildcard status unknown")

	// ErrCheckpointIO marks a failure to read or persist checkpoint state.
	ErrCheckpointIO = errors.New("checkpoint io error")

	// ErrSinkIO marks a failure to write scan results to the output sink.
	ErrSinkIO = errors.New("sink io error")

	// ErrCancelled is returned along every in-flight operation once the
	// scan-wide cancellation signal fires.
	ErrCancelled = errors.New("scan cancelled")
)

// ExitCode maps a scan-ending error to the process exit code defined in
// spec.md §6: 0 success, 2 CLI/config error, 3 no resolvers, 4 every apex
// failed wildcard detection. nil exits 0; any other error (for example a
// sink or checkpoint I/O failure at the end of a run) exits 2. Per-candidate
// failures never reach here: they are counted, not returned as errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrCliError):
		return 2
	case errors.Is(err, ErrNoResolvers):
		return 3
	case errors.Is(err, ErrWildcardUnknown):
		return 4
	default:
		return 2
	}
}
