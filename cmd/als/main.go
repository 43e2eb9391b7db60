package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/ambient-light/internal/domain"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		reportError(log.Logger, err)
		stop()
		os.Exit(1)
	}
}

// reportError logs err unless the sampler already reported it
func reportError(logger zerolog.Logger, err error) {
	if errors.Is(err, domain.ErrSensorUnavailable) {
		return
	}
	logger.Error().Err(err).Msg("als failed")
}
