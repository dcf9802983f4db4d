package config_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusub/rusub/internal/config"
)

func flagSet(args ...string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("enum", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(args)
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(flagSet("-d", "example.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, cfg.Domains)
	assert.EqualValues(t, 512, cfg.HeuristicMax)
	assert.EqualValues(t, 500, cfg.Concurrency)
	assert.Equal(t, "3m", cfg.Band)
	assert.EqualValues(t, 6, cfg.Timeout)
	assert.EqualValues(t, 3, cfg.Retry)
	assert.Equal(t, "jsonl", cfg.OutputType)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_RepeatableFlags(t *testing.T) {
	cfg, err := config.Load(flagSet("-d", "a.com", "-d", "b.com", "-r", "1.1.1.1", "-r", "9.9.9.9"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com"}, cfg.Domains)
	assert.Equal(t, []string{"1.1.1.1", "9.9.9.9"}, cfg.Resolvers)
}

func TestLoad_NoDomainFlagsIsNotAConfigError(t *testing.T) {
	// Apex-domain presence is validated by the enum subcommand, not here —
	// version/completion share this Config but need no domains at all.
	_, err := config.Load(flagSet())
	require.NoError(t, err)
}

func TestLoad_InvalidConcurrency(t *testing.T) {
	_, err := config.Load(flagSet("-d", "a.com", "-c", "0"))
	require.Error(t, err)
}

func TestLoad_InvalidBand(t *testing.T) {
	_, err := config.Load(flagSet("-d", "a.com", "-b", "nonsense"))
	require.Error(t, err)
}

func TestLoad_InvalidOutputType(t *testing.T) {
	_, err := config.Load(flagSet("-d", "a.com", "--output-type", "xml"))
	require.Error(t, err)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	_, err := config.Load(flagSet("-d", "a.com", "--log-level", "verbose"))
	require.Error(t, err)
}
