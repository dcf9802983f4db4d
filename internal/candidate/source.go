// Package candidate implements the lazy FQDN source the scanner pulls from
// (spec.md §4.4): either the heuristic generator or a wordlist stream,
// interleaved round-robin across apexes so the wildcard-detection warmup is
// shared across the pool instead of paid once per apex in sequence.
package candidate

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rusub/rusub/internal/heuristic"
)

// Candidate is one FQDN proposed for resolution, tagged with the apex it was
// generated for so the scheduler can look up the right wildcard profile.
type Candidate struct {
	Apex string
	FQDN string
}

// Source is a lazy, single-pass sequence of candidates. Next returns
// io.EOF once exhausted. Implementations must not materialize their full
// output in memory (spec.md §9 "the scheduler must not materialize either
// in full").
type Source interface {
	Next() (Candidate, error)
	Close() error
}

// heuristicSource wraps the bounded, already-materialized slice the
// heuristic generator produces. It is small by construction (max ≤ 2048), so
// holding it in memory does not violate the laziness requirement, which
// exists primarily for wordlist streams of unbounded size.
type heuristicSource struct {
	apex   string
	labels []string
	pos    int
}

// NewHeuristic returns a Source that yields generate(apex, max) as FQDNs.
func NewHeuristic(apex string, max int) Source {
	return &heuristicSource{apex: apex, labels: heuristic.Generate(apex, max)}
}

func (h *heuristicSource) Next() (Candidate, error) {
	if h.pos >= len(h.labels) {
		return Candidate{}, io.EOF
	}
	// heuristic.Generate already returns full FQDNs under h.apex.
	fqdn := h.labels[h.pos]
	h.pos++
	return Candidate{Apex: h.apex, FQDN: fqdn}, nil
}

func (h *heuristicSource) Close() error { return nil }

// wordlistSource reads labels lazily from an underlying reader, one per
// line, never holding more than the current line in memory.
type wordlistSource struct {
	apex    string
	scanner *bufio.Scanner
	closer  io.Closer
}

// NewWordlist returns a Source that reads labels from path, one per line,
// skipping blank lines. The file is opened eagerly, here, since the
// scheduler treats source construction as part of setup, not the hot path;
// lines are still read lazily, and the caller must Close the Source.
func NewWordlist(apex, path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wordlist %s: %w", path, err)
	}
	return &wordlistSource{apex: apex, scanner: bufio.NewScanner(f), closer: f}, nil
}

// NewWordlistFromReader builds a wordlist Source directly over r, useful for
// tests and for streaming a wordlist that is not file-backed.
func NewWordlistFromReader(apex string, r io.Reader) Source {
	closer, _ := r.(io.Closer)
	if closer == nil {
		closer = io.NopCloser(r)
	}
	return &wordlistSource{apex: apex, scanner: bufio.NewScanner(r), closer: closer}
}

func (w *wordlistSource) Next() (Candidate, error) {
	for w.scanner.Scan() {
		line := w.scanner.Text()
		if line == "" {
			continue
		}
		return Candidate{Apex: w.apex, FQDN: line + "." + w.apex}, nil
	}
	if err := w.scanner.Err(); err != nil {
		return Candidate{}, err
	}
	return Candidate{}, io.EOF
}

func (w *wordlistSource) Close() error { return w.closer.Close() }

// Interleaved round-robins Next across multiple per-apex sources, so that
// with several apexes in flight the pool sees an even mix instead of
// draining one apex before starting the next (spec.md §4.4).
type Interleaved struct {
	sources []Source
	next    int
}

// NewInterleaved builds a round-robin Source over sources. Exhausted
// sources are dropped from rotation; Next returns io.EOF once all are
// exhausted.
func NewInterleaved(sources ...Source) *Interleaved {
	return &Interleaved{sources: sources}
}

func (r *Interleaved) Next() (Candidate, error) {
	for len(r.sources) > 0 {
		i := r.next % len(r.sources)
		c, err := r.sources[i].Next()
		if err == io.EOF {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			continue
		}
		if err != nil {
			return Candidate{}, err
		}
		r.next++
		return c, nil
	}
	return Candidate{}, io.EOF
}

func (r *Interleaved) Close() error {
	var first error
	for _, s := range r.sources {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
