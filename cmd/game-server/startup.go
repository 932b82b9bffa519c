package main

import (
	"context"
	"time"

	"loser-pays/internal/config"
	"loser-pays/internal/currency"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

var readinessBackoff = func(retries int) retry.Backoff {
	return retry.WithMaxRetries(uint64(max(retries, 0)), retry.NewExponential(500*time.Millisecond))
}

// waitReady pings a dependency until it answers or the retries run out.
func waitReady(ctx context.Context, name string, retries int, ping func(context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, readinessBackoff(retries), func(ctx context.Context) error {
		attempt++
		if err := ping(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Int("attempt", attempt).Msg("dependency_not_ready")
			return retry.RetryableError(err)
		}
		return nil
	})
}

func newRateSource(cfg config.CurrencyConfig) (currency.RateSource, error) {
	table, err := currency.NewTable(cfg.Rates)
	if err != nil {
		return nil, err
	}
	if cfg.RatesURL == "" {
		return currency.StaticRates(table), nil
	}
	log.Info().Str("url", cfg.RatesURL).Dur("ttl", cfg.RatesTTL).Msg("currency_rates_remote")
	return currency.NewHTTPRates(cfg.RatesURL, cfg.RatesTTL, table), nil
}
