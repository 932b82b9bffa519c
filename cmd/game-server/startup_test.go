package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"loser-pays/internal/config"
	"loser-pays/internal/currency"

	"github.com/sethvargo/go-retry"
)

func fastBackoff(t *testing.T) {
	t.Helper()
	prev := readinessBackoff
	readinessBackoff = func(retries int) retry.Backoff {
		return retry.WithMaxRetries(uint64(retries), retry.NewConstant(time.Millisecond))
	}
	t.Cleanup(func() { readinessBackoff = prev })
}

func TestWaitReadyRetriesUntilUp(t *testing.T) {
	fastBackoff(t)
	calls := 0
	err := waitReady(context.Background(), "db", 5, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("waitReady: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestWaitReadyGivesUp(t *testing.T) {
	fastBackoff(t)
	down := errors.New("connection refused")
	calls := 0
	err := waitReady(context.Background(), "redis", 2, func(context.Context) error {
		calls++
		return down
	})
	if !errors.Is(err, down) {
		t.Fatalf("err = %v, want %v", err, down)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestNewRateSource(t *testing.T) {
	src, err := newRateSource(config.CurrencyConfig{Rates: map[string]string{"eur": "25.00"}})
	if err != nil {
		t.Fatalf("newRateSource: %v", err)
	}
	if _, ok := src.(currency.StaticRates); !ok {
		t.Fatalf("source = %T, want StaticRates", src)
	}
	src, err = newRateSource(config.CurrencyConfig{Rates: map[string]string{"eur": "25.00"}, RatesURL: "http://rates.local/latest"})
	if err != nil {
		t.Fatalf("newRateSource remote: %v", err)
	}
	if _, ok := src.(*currency.HTTPRates); !ok {
		t.Fatalf("source = %T, want *HTTPRates", src)
	}
	if _, err := newRateSource(config.CurrencyConfig{Rates: map[string]string{"gbp": "30"}}); !errors.Is(err, currency.ErrUnknownCurrency) {
		t.Fatalf("err = %v, want ErrUnknownCurrency", err)
	}
}
