package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"delupo-stats/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log := logging.Logger()
		log.Error().Err(err).Msg("échec")
		stop()
		os.Exit(1)
	}
}
