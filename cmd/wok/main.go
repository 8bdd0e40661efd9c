// Command wok coordinates a feature branch across a root repository and
// its satellite repositories.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wokspace/wok/internal/cmd"
	"github.com/wokspace/wok/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()

	if err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
