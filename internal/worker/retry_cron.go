package worker

// Retry sweep. A background goroutine periodically finds sales whose fiscal
// issuance is pending with a due next_fiscal_retry and feeds them back into
// the invoice queue. The circuit breaker gates the sweep so a downed
// authority is not hammered every tick.

import (
	"context"
	"time"

	"github.com/rmoralez/pos-sub000/internal/infra"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds the dependencies of the retry sweep.
type RetryCronConfig struct {
	Sales      repository.SaleRepository
	Dispatcher *Dispatcher
	CB         *infra.CircuitBreaker
}

// StartRetryCron launches the sweep goroutine. It respects the context for
// graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				sweepRetries(ctx, cfg)
			}
		}
	}()
}

func sweepRetries(ctx context.Context, cfg RetryCronConfig) {
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	sales, err := cfg.Sales.ListPendingFiscalRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(sales) == 0 {
		return
	}

	log.Info().Int("count", len(sales)).Msg("retry_cron: re-enqueueing pending sales")

	for i := range sales {
		sale := &sales[i]

		// Clear the schedule before enqueueing so the next tick does not
		// double-enqueue while the job waits in the queue; the worker
		// re-schedules on failure.
		sale.NextFiscalRetry = nil
		if err := cfg.Sales.UpdateFiscal(ctx, sale); err != nil {
			log.Error().Err(err).Str("sale", sale.Number).Msg("retry_cron: failed to clear retry schedule")
			continue
		}
		if err := cfg.Dispatcher.EnqueueInvoice(ctx, sale.ID); err != nil {
			log.Error().Err(err).Str("sale", sale.Number).Msg("retry_cron: failed to enqueue, restoring schedule")
			next := time.Now().Add(retryBackoff(sale.FiscalRetries))
			sale.NextFiscalRetry = &next
			_ = cfg.Sales.UpdateFiscal(ctx, sale)
		}
	}
}
