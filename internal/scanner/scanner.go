// Package scanner implements the scan scheduler (spec.md §4.4): it fans a
// lazy candidate stream out across a bounded worker pool, resolves each
// candidate with the full A/AAAA/CNAME chain, filters wildcard-subsumed
// answers, and drives the checkpoint state machine for every candidate it
// touches.
package scanner

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rusub/rusub/internal/candidate"
	"github.com/rusub/rusub/internal/checkpoint"
	"github.com/rusub/rusub/internal/dnsclient"
	"github.com/rusub/rusub/internal/dnsrecord"
	"github.com/rusub/rusub/internal/ratelimit"
	"github.com/rusub/rusub/internal/resolver"
	"github.com/rusub/rusub/internal/wildcard"
	"github.com/rusub/rusub/internal/worker"
)

// ScanResult is the data model's scan result (spec.md §3), emitted only for
// candidates that resolve to at least one address and whose addresses are
// not wholly explained by the apex's wildcard profile, or whose CNAME chain
// leaves the apex (see crossesApex).
type ScanResult struct {
	Subdomain string
	Answers   []string
	Records   []dnsrecord.Record
}

// Config assembles everything the scheduler needs for one run. Callers
// (the CLI layer) are responsible for normalizing apexes, parsing flags,
// and constructing the resolver pool and rate limiter.
type Config struct {
	Apexes         []string
	WordlistPath   string // if non-empty, wordlist wins over heuristic (spec.md §9)
	HeuristicMax   int
	Pool           *resolver.Pool
	Timeout        time.Duration
	Retries        int
	Limiter        *ratelimit.Limiter
	Concurrency    int
	CheckpointPath string
	Logger         *slog.Logger
}

// Counters tallies end-of-run totals for the logger summary (spec.md §7
// "counts of dispatched / finished / failed / wildcard-filtered").
type Counters struct {
	Dispatched       uint64
	Finished         uint64
	Failed           uint64
	WildcardFiltered uint64
}

type profileHandle struct {
	once    sync.Once
	profile *wildcard.Profile
	err     error
}

// Scanner runs one scan: a set of apexes, each resolved through the shared
// DNS client, worker pool, and checkpoint store.
type Scanner struct {
	cfg      Config
	client   *dnsclient.Client
	detector *wildcard.Detector
	store    *checkpoint.Store
	profiles map[string]*profileHandle

	dispatched, finished, failed, wildcardFiltered uint64
}

// New builds a Scanner for cfg. Checkpoint state is loaded from
// cfg.CheckpointPath immediately, tolerating an absent or corrupt file.
func New(cfg Config) *Scanner {
	client := dnsclient.New(cfg.Pool, cfg.Timeout, cfg.Retries, cfg.Limiter)
	profiles := make(map[string]*profileHandle, len(cfg.Apexes))
	for _, apex := range cfg.Apexes {
		profiles[apex] = &profileHandle{}
	}
	return &Scanner{
		cfg:      cfg,
		client:   client,
		detector: wildcard.NewDetector(client),
		store:    checkpoint.Load(cfg.CheckpointPath, cfg.Logger),
		profiles: profiles,
	}
}

// Counters returns a snapshot of the running totals.
func (s *Scanner) Counters() Counters {
	return Counters{
		Dispatched:       atomic.LoadUint64(&s.dispatched),
		Finished:         atomic.LoadUint64(&s.finished),
		Failed:           atomic.LoadUint64(&s.failed),
		WildcardFiltered: atomic.LoadUint64(&s.wildcardFiltered),
	}
}

// Flush persists any pending checkpoint transitions. Callers should call
// this periodically and always on shutdown (spec.md §5 "partial checkpoint
// state is flushed" on cancellation).
func (s *Scanner) Flush() error {
	return s.store.Flush()
}

// FailedApexes returns the apexes whose wildcard profile could not be
// computed (spec.md §4.3 abort condition), in the order given to Config.
// Used by the CLI to decide exit code 4 ("every apex failed wildcard
// detection"). An apex with no dispatched candidates (e.g. an empty
// wordlist) never attempts profiling and is not reported as failed.
func (s *Scanner) FailedApexes() []string {
	var failed []string
	for _, apex := range s.cfg.Apexes {
		if h := s.profiles[apex]; h.err != nil {
			failed = append(failed, apex)
		}
	}
	return failed
}

// Run starts the scan and returns a channel of results. The channel closes
// once every candidate has been dispatched and processed, or ctx is
// cancelled. Callers must drain the channel or cancel ctx to avoid leaking
// the worker pool's goroutines.
func (s *Scanner) Run(ctx context.Context) (<-chan ScanResult, error) {
	sources := make([]candidate.Source, 0, len(s.cfg.Apexes))
	for _, apex := range s.cfg.Apexes {
		src, err := s.sourceFor(apex)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	merged := candidate.NewInterleaved(sources...)

	inputs := make(chan worker.Input)
	go s.feed(ctx, merged, inputs)

	pool := worker.NewPool(s.cfg.Concurrency, s.cfg.Logger)
	jobResults := pool.Process(ctx, inputs, s.runCandidate)

	out := make(chan ScanResult)
	go func() {
		defer close(out)
		for jr := range jobResults {
			if jr.Error != nil {
				s.handleJobError(jr)
			}
			res, ok := jr.Value.(ScanResult)
			if !ok {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- res:
			}
		}
	}()
	return out, nil
}

// handleJobError logs every candidate failure (spec.md §7 "Malformed is
// logged and treated as Failed") and, for a worker panic specifically — the
// one case where runCandidate never ran to completion and so never reached a
// terminal checkpoint state itself — transitions the candidate to Failed and
// counts it. A controlled failure returned by runCandidate (profile/query
// error) already did both before returning, so it is left alone here to
// avoid double-counting.
func (s *Scanner) handleJobError(jr worker.JobResult) {
	c, ok := jr.Input.(candidate.Candidate)
	if !ok {
		s.cfg.Logger.Error("candidate resolution failed", "error", jr.Error)
		return
	}
	s.cfg.Logger.Error("candidate resolution failed", "fqdn", c.FQDN, "error", jr.Error)

	if state, tracked := s.store.State(c.FQDN); !tracked || state == checkpoint.StateInProgress {
		s.store.Transition(c.FQDN, checkpoint.StateFailed, 0)
		atomic.AddUint64(&s.failed, 1)
	}
}

func (s *Scanner) sourceFor(apex string) (candidate.Source, error) {
	if s.cfg.WordlistPath != "" {
		return candidate.NewWordlist(apex, s.cfg.WordlistPath)
	}
	return candidate.NewHeuristic(apex, s.cfg.HeuristicMax), nil
}

// feed drains merged onto inputs, skipping any candidate already Finished
// in a prior run (spec.md §4.4 resume semantics) and honoring cancellation.
func (s *Scanner) feed(ctx context.Context, merged *candidate.Interleaved, inputs chan<- worker.Input) {
	defer close(inputs)
	defer func() { _ = merged.Close() }()
	for {
		c, err := merged.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			s.cfg.Logger.Warn("candidate source error, stopping dispatch", "error", err)
			return
		}
		if s.store.ShouldSkip(c.FQDN) {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case inputs <- c:
		}
	}
}

// runCandidate is the per-candidate job the worker pool runs. Its return
// value is (ScanResult, nil) when a result should be emitted, (nil, nil) when
// the candidate finished with no address or was wildcard-filtered, and
// (nil, err) when it failed — err is surfaced only for logging, never
// treated as fatal to the run.
func (s *Scanner) runCandidate(ctx context.Context, input worker.Input) (interface{}, error) {
	c := input.(candidate.Candidate)
	atomic.AddUint64(&s.dispatched, 1)
	s.store.Transition(c.FQDN, checkpoint.StateInProgress, 0)

	profile, err := s.profileFor(ctx, c.Apex)
	if err != nil {
		// Per-apex wildcard failure aborts that apex only (spec.md §7); this
		// candidate cannot be safely classified, so it is marked Failed.
		s.store.Transition(c.FQDN, checkpoint.StateFailed, 0)
		atomic.AddUint64(&s.failed, 1)
		return nil, err
	}

	records, err := s.client.QueryFull(ctx, c.FQDN)
	if err != nil {
		s.store.Transition(c.FQDN, checkpoint.StateFailed, uint(s.cfg.Retries))
		atomic.AddUint64(&s.failed, 1)
		return nil, err
	}

	s.store.Transition(c.FQDN, checkpoint.StateFinished, 0)
	atomic.AddUint64(&s.finished, 1)

	addrs := dnsrecord.Addresses(records)
	if len(addrs) == 0 {
		return nil, nil
	}
	if profile.IsSubset(addrs) && !crossesApex(records, c.Apex) {
		atomic.AddUint64(&s.wildcardFiltered, 1)
		return nil, nil
	}

	return ScanResult{Subdomain: c.FQDN, Answers: addrs, Records: records}, nil
}

// profileFor computes (once, lazily) and memoizes the wildcard profile for
// apex, per spec.md §4.3 "executed once per apex before user candidates are
// dispatched; result is memoized for the remainder of that scan".
func (s *Scanner) profileFor(ctx context.Context, apex string) (*wildcard.Profile, error) {
	h := s.profiles[apex]
	h.once.Do(func() {
		h.profile, h.err = s.detector.Profile(ctx, apex)
		if h.err != nil {
			s.cfg.Logger.Warn("wildcard detection aborted for apex", "apex", apex, "error", h.err)
		}
	})
	return h.profile, h.err
}

// crossesApex reports whether records contains a CNAME whose target's apex
// differs from apex — the exception clause in spec.md §4.3's filter rule
// that preserves legitimate CNAMEs landing on wildcard-adjacent addresses.
func crossesApex(records []dnsrecord.Record, apex string) bool {
	for _, r := range records {
		if r.Type != dnsrecord.TypeCNAME {
			continue
		}
		if r.Data != apex && !strings.HasSuffix(r.Data, "."+apex) {
			return true
		}
	}
	return false
}
