package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/psx-portfolio-tracker/internal/pricecache"
	"github.com/ndewijer/psx-portfolio-tracker/internal/repository"
)

// PriceRefreshJob refetches the current price of every traded symbol so
// valuations are served from fresh cache entries and the last known prices
// stay current.
type PriceRefreshJob struct {
	tradeRepo *repository.TradeRepository
	prices    *pricecache.Cache
	timeout   time.Duration
	log       zerolog.Logger
}

// NewPriceRefreshJob creates a new PriceRefreshJob. Each run is bounded by timeout.
func NewPriceRefreshJob(tradeRepo *repository.TradeRepository, prices *pricecache.Cache, timeout time.Duration, log zerolog.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{
		tradeRepo: tradeRepo,
		prices:    prices,
		timeout:   timeout,
		log:       log.With().Str("job", "price_refresh").Logger(),
	}
}

// Name identifies the job in scheduler logs.
func (j *PriceRefreshJob) Name() string {
	return "price_refresh"
}

// Run refreshes every traded symbol and returns how many got a price.
func (j *PriceRefreshJob) Run(ctx context.Context) (int, error) {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	symbols, err := j.tradeRepo.GetTradedSymbols(ctx)
	if err != nil {
		return 0, err
	}
	if len(symbols) == 0 {
		j.log.Debug().Msg("No traded symbols to refresh")
		return 0, nil
	}

	start := time.Now()
	refreshed := j.prices.Refresh(ctx, symbols)

	j.log.Info().
		Int("symbols", len(symbols)).
		Int("refreshed", refreshed).
		Dur("duration", time.Since(start)).
		Msg("Prices refreshed")

	return refreshed, nil
}
