package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rusub/rusub/internal/apperr"
	"github.com/rusub/rusub/internal/checkpoint"
	"github.com/rusub/rusub/internal/config"
	"github.com/rusub/rusub/internal/output"
	"github.com/rusub/rusub/internal/ratelimit"
	"github.com/rusub/rusub/internal/resolver"
	"github.com/rusub/rusub/internal/scanner"
	"github.com/rusub/rusub/internal/validate"
	"github.com/rusub/rusub/internal/worker"
)

// systemResolvConf is the OS resolver file consulted when --resolvers is not
// given (spec.md §4.5's "OS-provided" resolver-source tier).
const systemResolvConf = "/etc/resolv.conf"

func newEnumCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:     "enum",
		Short:   "Enumerate subdomains of one or more apex domains",
		Args:    cobra.NoArgs,
		GroupID: "scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnum(cmd, d)
		},
	}
}

func runEnum(cmd *cobra.Command, d *deps) error {
	cfg := d.cfg
	ctx := cmd.Context()

	apexes, err := gatherApexes(cmd, d)
	if err != nil {
		return err
	}
	if len(apexes) == 0 {
		return fmt.Errorf("%w: no valid apex domains after normalization", apperr.ErrCliError)
	}

	osResolvers := resolver.SystemResolvers(systemResolvConf)
	pool, err := resolver.NewPool(cfg.Resolvers, osResolvers)
	if err != nil {
		return err
	}

	rps, err := ratelimit.ParseBand(cfg.Band)
	if err != nil {
		return fmt.Errorf("%w: --band: %w", apperr.ErrCliError, err)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	limiter := ratelimit.New(rps, burst)

	out, closeOut, err := openSink(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeOut() }()

	format, err := output.ParseFormat(cfg.OutputType)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrCliError, err)
	}
	sink, err := output.NewSink(out, format, output.ShouldGzip(cfg.Output, cfg.Gzip))
	if err != nil {
		return err
	}

	sc := scanner.New(scanner.Config{
		Apexes:         apexes,
		WordlistPath:   cfg.Wordlist,
		HeuristicMax:   int(cfg.HeuristicMax),
		Pool:           pool,
		Timeout:        time.Duration(cfg.Timeout) * time.Second,
		Retries:        int(cfg.Retry),
		Limiter:        limiter,
		Concurrency:    int(cfg.Concurrency),
		CheckpointPath: checkpoint.FileName,
		Logger:         d.logger,
	})

	results, err := sc.Run(ctx)
	if err != nil {
		return err
	}

	echoSubdomains := cfg.Output != "" && !cfg.NotPrint && !cfg.PureOutput
	stdout := cmd.OutOrStdout()

	const flushEvery = 50
	processed := 0
	for r := range results {
		if cfg.OnlyAlive && len(r.Answers) == 0 {
			continue
		}
		if err := sink.Write(r); err != nil {
			d.logger.Error("writing result to sink", "subdomain", r.Subdomain, "error", err)
			continue
		}
		if echoSubdomains {
			fmt.Fprintln(stdout, r.Subdomain)
		}
		processed++
		if processed%flushEvery == 0 {
			if err := sc.Flush(); err != nil {
				d.logger.Error("flushing checkpoint", "error", err)
			}
		}
	}

	if err := sink.Close(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrSinkIO, err)
	}
	if err := sc.Flush(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrCheckpointIO, err)
	}

	counters := sc.Counters()
	if !cfg.PureOutput {
		d.logger.Info("scan complete",
			"apexes", len(apexes),
			"dispatched", counters.Dispatched,
			"finished", counters.Finished,
			"failed", counters.Failed,
			"wildcard_filtered", counters.WildcardFiltered,
		)
	}

	if failed := sc.FailedApexes(); len(failed) > 0 && len(failed) == len(apexes) {
		return fmt.Errorf("%w: wildcard detection failed for every apex: %v", apperr.ErrWildcardUnknown, failed)
	}
	return nil
}

// gatherApexes collects apex domains from -d/--domain, --domain-list, and
// --stdin (spec.md §6), normalizing and deduplicating each. An entry that
// fails normalization is logged and dropped rather than aborting the scan.
func gatherApexes(cmd *cobra.Command, d *deps) ([]string, error) {
	cfg := d.cfg
	raw := append([]string{}, cfg.Domains...)

	if cfg.DomainList != "" {
		f, err := os.Open(cfg.DomainList)
		if err != nil {
			return nil, fmt.Errorf("%w: opening --domain-list: %w", apperr.ErrCliError, err)
		}
		lines, err := worker.ReadInputs(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading --domain-list: %w", apperr.ErrCliError, err)
		}
		raw = append(raw, lines...)
	}

	if cfg.Stdin {
		lines, err := resolveInputs(cmd)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperr.ErrCliError, err)
		}
		raw = append(raw, lines...)
	}

	seen := make(map[string]struct{}, len(raw))
	var apexes []string
	for _, entry := range raw {
		if !validate.IsDomain(entry) {
			d.logger.Warn("skipping malformed apex domain", "input", entry)
			continue
		}
		apex, err := validate.Normalize(entry)
		if err != nil {
			d.logger.Warn("skipping apex domain", "input", entry, "error", err)
			continue
		}
		if _, dup := seen[apex]; dup {
			continue
		}
		seen[apex] = struct{}{}
		apexes = append(apexes, apex)
	}
	return apexes, nil
}

// openSink resolves the result writer: stdout when --output is unset, or a
// newly created file otherwise. The returned closer is always safe to call.
func openSink(cmd *cobra.Command, cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.Output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: creating --output file: %w", apperr.ErrCliError, err)
	}
	return f, f.Close, nil
}
