// Command rusub enumerates subdomains of one or more apex domains by
// issuing raw DNS queries directly against a resolver pool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rusub/rusub/internal/apperr"
	"github.com/rusub/rusub/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cli.Execute(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:])
	if err == nil || errors.Is(err, context.Canceled) {
		os.Exit(0)
	}
	_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(apperr.ExitCode(err))
}
