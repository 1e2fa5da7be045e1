package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/soldexlabs/arbiter/cmd"
	"github.com/soldexlabs/arbiter/utils"
)

func main() {
	defer utils.CleanupLogger()

	// Cancel the run on SIGINT/SIGTERM; the session checks the context
	// between iterations.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
