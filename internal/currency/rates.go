package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

// RateSource yields the rate table in force right now.
type RateSource interface {
	Rates(ctx context.Context) (Table, error)
}

type StaticRates Table

func (s StaticRates) Rates(context.Context) (Table, error) {
	return Table(s), nil
}

// HTTPRates fetches a JSON object of code → rate from url and caches it for
// ttl. Fetched rates are laid over fallback, so a code missing from the
// response keeps its fallback rate. Failed refreshes keep serving the last
// good table, or fallback if no fetch has ever succeeded.
type HTTPRates struct {
	url      string
	ttl      time.Duration
	client   *http.Client
	fallback Table
	backoff  func() retry.Backoff

	mu        sync.Mutex
	cached    Table
	fetchedAt time.Time
	now       func() time.Time
}

func NewHTTPRates(url string, ttl time.Duration, fallback Table) *HTTPRates {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &HTTPRates{
		url:      url,
		ttl:      ttl,
		client:   &http.Client{Timeout: 5 * time.Second},
		fallback: fallback,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
		},
		now: time.Now,
	}
}

func (h *HTTPRates) Rates(ctx context.Context) (Table, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cached != nil && h.now().Sub(h.fetchedAt) < h.ttl {
		return h.cached, nil
	}
	var fetched Table
	err := retry.Do(ctx, h.backoff(), func(ctx context.Context) error {
		t, err := h.fetch(ctx)
		if err != nil {
			var perm *permanentError
			if errors.As(err, &perm) {
				return err
			}
			return retry.RetryableError(err)
		}
		fetched = lo.Assign(h.fallback, t)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("url", h.url).Msg("currency_rates_fetch_failed")
		if h.cached != nil {
			return h.cached, nil
		}
		return h.fallback, nil
	}
	h.cached = fetched
	h.fetchedAt = h.now()
	return fetched, nil
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func (h *HTTPRates) fetch(ctx context.Context) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, &permanentError{err}
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("rates endpoint status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &permanentError{fmt.Errorf("rates endpoint status %d", resp.StatusCode)}
	}
	var raw map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &permanentError{fmt.Errorf("decode rates: %w", err)}
	}
	t := make(Table, len(raw))
	for code, rate := range raw {
		c, err := Parse(code)
		if err != nil || c == Canonical || !rate.IsPositive() {
			continue
		}
		t[c] = rate
	}
	return t, nil
}
