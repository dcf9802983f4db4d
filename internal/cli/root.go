// Package cli provides the Cobra command tree for rusub, following the
// teacher's root-command wiring (internal/cli/root.go): a PersistentPreRunE
// resolves shared dependencies once, subcommands receive them by reference.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rusub/rusub/internal/config"
	"github.com/rusub/rusub/internal/worker"
)

// deps holds fully-resolved runtime dependencies for the enum subcommand.
//
// INVARIANT: Cobra only executes the innermost PersistentPreRunE in the
// command chain. If a future subcommand defines its own PersistentPreRunE, the
// root hook will NOT run and d will be zero-valued. Do not add
// PersistentPreRunE to any subcommand without also re-calling buildDeps.
type deps struct {
	logger *slog.Logger
	cfg    *config.Config
}

// newRootCmd builds the top-level Cobra command for rusub.
// Callers must set stdin/stdout/stderr via cmd.SetIn/SetOut/SetErr before Execute.
func newRootCmd() *cobra.Command {
	var d deps

	cmd := &cobra.Command{
		Use:   "rusub",
		Short: "rusub — active DNS subdomain enumeration",
		Long: `rusub resolves subdomains of one or more apex domains by issuing raw DNS
queries directly against a resolver pool, with wildcard-response detection,
checkpointed resume, and rate-limited concurrent workers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := buildDeps(cmd)
			if err != nil {
				return err
			}
			d = *resolved
			return nil
		},
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddGroup(
		&cobra.Group{ID: "scan", Title: "Scan Commands:"},
		&cobra.Group{ID: "utility", Title: "Utility Commands:"},
	)

	cmd.AddCommand(
		newEnumCmd(&d),
		newCompletionCmd(),
		newVersionCmd(),
	)

	return cmd
}

// Execute builds the root command and runs it against args.
func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	cmd := newRootCmd()
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// buildDeps resolves config and a level-gated slog.Logger writing to stderr.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "silent":
		level = slog.Level(100) // above any real record; nothing is ever logged
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return &deps{cfg: cfg, logger: logger}, nil
}

// resolveInputs reads non-empty, trimmed lines from the command's stdin.
// Returns an error if stdin is an interactive terminal (i.e. the user forgot
// to pipe input). Used by gatherApexes when --stdin is set.
func resolveInputs(cmd *cobra.Command) ([]string, error) {
	r := cmd.InOrStdin()
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // uintptr→int is safe for file descriptors; they fit in int on all supported platforms
		return nil, fmt.Errorf("--stdin given but stdin is an interactive terminal")
	}
	return worker.ReadInputs(r)
}
