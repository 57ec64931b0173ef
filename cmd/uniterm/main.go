// Command uniterm stores sequencing records and composes uniterm
// expressions from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/uniterm/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}

	// Commands report their own ExitErrors; anything else is a usage or
	// setup error cobra left to us.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		stop()
		os.Exit(exitErr.Code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	stop()
	os.Exit(cli.ExitCommandError)
}
