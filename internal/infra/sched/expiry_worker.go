package sched

import (
	"context"
	"time"

	"nightapp-server/internal/usecase"

	"github.com/rs/zerolog"
)

// CodeExpiryWorker periodically sweeps expired QR codes via the use case.
type CodeExpiryWorker struct {
	interval time.Duration
	codes    usecase.QRCodeUseCase
	log      *zerolog.Logger
}

func NewCodeExpiryWorker(interval time.Duration, codes usecase.QRCodeUseCase, logger *zerolog.Logger) *CodeExpiryWorker {
	compLog := logger.With().Str("component", "CodeExpiryWorker").Logger()
	return &CodeExpiryWorker{
		interval: interval,
		codes:    codes,
		log:      &compLog,
	}
}

func (w *CodeExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting code expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping code expiry worker")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.codes.ExpireOutstanding(ctx); err != nil {
				w.log.Error().Err(err).Msg("code expiry sweep failed")
			}
		}
	}
}
