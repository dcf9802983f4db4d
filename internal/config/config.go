// Package config resolves the `enum` subcommand's flags into a validated
// Config, following the teacher's viper-backed Load convention
// (internal/config/config.go) adapted to a flat flag-bound struct instead of
// a persisted YAML file — this CLI has no config file of its own (spec.md §6
// names flags and defaults as authoritative, not a config path).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rusub/rusub/internal/apperr"
	"github.com/rusub/rusub/internal/ratelimit"
)

// Config holds the fully-resolved settings for one `enum` run (spec.md §6).
type Config struct {
	Domains      []string
	DomainList   string
	Stdin        bool
	Wordlist     string
	HeuristicMax uint
	Resolvers    []string
	Concurrency  uint
	Band         string
	Timeout      uint
	Retry        uint
	Output       string
	OutputType   string
	Gzip         bool
	NotPrint     bool
	PureOutput   bool
	OnlyAlive    bool
	LogLevel     string
}

// RegisterFlags binds the `enum` subcommand's flags (spec.md §6) to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringArrayP("domain", "d", nil, "apex domain (repeatable)")
	fs.String("domain-list", "", "file of apex domains, one per line")
	fs.Bool("stdin", false, "read apex domains from standard input")
	fs.StringP("filename", "f", "", "wordlist path; if absent, heuristic mode is used")
	fs.Uint("heuristic-max", 512, "heuristic candidate cap")
	fs.StringArrayP("resolvers", "r", nil, "override resolvers (repeatable)")
	fs.UintP("concurrency", "c", 500, "worker pool size")
	fs.StringP("band", "b", "3m", "queries/sec; accepts N, Nk, Nm/NM")
	fs.Uint("timeout", 6, "per-attempt deadline in seconds")
	fs.Uint("retry", 3, "retry attempts")
	fs.StringP("output", "o", "", "sink path; stdout if absent")
	fs.String("output-type", "jsonl", "txt|json|jsonl|csv")
	fs.Bool("gzip", false, "force gzip (auto if output ends in .gz)")
	fs.Bool("not-print", false, "suppress per-result stdout echo")
	fs.Bool("pure-output", false, "emit only sink-formatted records, no summary")
	fs.Bool("only-alive", false, "drop results with an empty answer set")
	fs.String("log-level", "info", "error|warn|info|debug|silent")
}

// Load binds fs through viper with a RUSUB_ env-var prefix (the teacher's
// TRIDENT_ convention, renamed) and validates the result.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RUSUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	cfg := &Config{
		Domains:      v.GetStringSlice("domain"),
		DomainList:   v.GetString("domain-list"),
		Stdin:        v.GetBool("stdin"),
		Wordlist:     v.GetString("filename"),
		HeuristicMax: v.GetUint("heuristic-max"),
		Resolvers:    v.GetStringSlice("resolvers"),
		Concurrency:  v.GetUint("concurrency"),
		Band:         v.GetString("band"),
		Timeout:      v.GetUint("timeout"),
		Retry:        v.GetUint("retry"),
		Output:       v.GetString("output"),
		OutputType:   v.GetString("output-type"),
		Gzip:         v.GetBool("gzip"),
		NotPrint:     v.GetBool("not-print"),
		PureOutput:   v.GetBool("pure-output"),
		OnlyAlive:    v.GetBool("only-alive"),
		LogLevel:     v.GetString("log-level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks invariants that hold regardless of which subcommand is
// running. Apex-domain presence is enum-specific (version/completion don't
// need one) and is checked in the CLI layer instead (see runEnum).
func (c *Config) validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: --concurrency must be at least 1, got %d", apperr.ErrCliError, c.Concurrency)
	}
	if _, err := ratelimit.ParseBand(c.Band); err != nil {
		return fmt.Errorf("%w: --band: %w", apperr.ErrCliError, err)
	}
	switch c.OutputType {
	case "txt", "json", "jsonl", "csv":
	default:
		return fmt.Errorf("%w: --output-type must be one of txt, json, jsonl, csv, got %q", apperr.ErrCliError, c.OutputType)
	}
	switch c.LogLevel {
	case "error", "warn", "info", "debug", "silent":
	default:
		return fmt.Errorf("%w: --log-level must be one of error, warn, info, debug, silent, got %q", apperr.ErrCliError, c.LogLevel)
	}
	return nil
}
