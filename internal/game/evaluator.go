package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loser-pays/internal/actionlog"
	"loser-pays/internal/currency"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var ErrNoBetsRecorded = errors.New("no bets recorded")

type Bet struct {
	UserID string `json:"user_id"`
	Value  int    `json:"bet"`
}

type Result struct {
	RoomID string                    `json:"room_id"`
	Draw   int                       `json:"draw"`
	Loser  Bet                       `json:"loser"`
	Bets   []Bet                     `json:"bets"`
	Prices []currency.ConvertedPrice `json:"prices"`
	Total  decimal.Decimal           `json:"total"`
}

type Evaluator struct {
	log   actionlog.Log
	rates currency.RateSource
	rnd   Randomizer
}

func NewEvaluator(log actionlog.Log, rates currency.RateSource, rnd Randomizer) *Evaluator {
	if rnd == nil {
		rnd = NewRandomizer()
	}
	return &Evaluator{log: log, rates: rates, rnd: rnd}
}

// Evaluate settles the current round of roomID. It reads but never mutates
// the action log; clearing it is the caller's job once the result is stored.
func (e *Evaluator) Evaluate(ctx context.Context, roomID string) (res *Result, err error) {
	started := time.Now()
	defer func() {
		metricEvaluations.WithLabelValues(observeOutcome(err)).Inc()
		metricEvaluationSeconds.Observe(time.Since(started).Seconds())
	}()

	var (
		records []actionlog.Record
		table   currency.Table
		draw    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := e.log.Fetch(gctx, roomID, true)
		records = recs
		return err
	})
	g.Go(func() error {
		t, err := e.rates.Rates(gctx)
		table = t
		return err
	})
	g.Go(func() error {
		draw = e.rnd.Draw()
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	bets, prices := collect(records)
	loser, err := PickLoser(bets, draw, e.rnd.Pick)
	if err != nil {
		return nil, err
	}
	converted := make([]currency.ConvertedPrice, 0, len(prices))
	for _, p := range prices {
		cp, err := table.Convert(p)
		if err != nil {
			return nil, fmt.Errorf("convert price of %s: %w", p.UserID, err)
		}
		if err := currency.CheckAmount(cp.PriceInCZK); err != nil {
			return nil, fmt.Errorf("price of %s: %w", p.UserID, err)
		}
		converted = append(converted, cp)
	}
	total := currency.Total(converted)
	if err := currency.CheckAmount(total); err != nil {
		return nil, fmt.Errorf("total: %w", err)
	}
	return &Result{
		RoomID: roomID,
		Draw:   draw,
		Loser:  loser,
		Bets:   bets,
		Prices: converted,
		Total:  total,
	}, nil
}

// PickLoser returns the bet furthest from draw. Ties are resolved by pick,
// which must return a uniform index below its argument.
func PickLoser(bets []Bet, draw int, pick func(n int) int) (Bet, error) {
	if len(bets) == 0 {
		return Bet{}, ErrNoBetsRecorded
	}
	maxDist := lo.Max(lo.Map(bets, func(b Bet, _ int) int { return distance(b.Value, draw) }))
	tied := lo.Filter(bets, func(b Bet, _ int) bool { return distance(b.Value, draw) == maxDist })
	if len(tied) == 1 {
		return tied[0], nil
	}
	return tied[pick(len(tied))], nil
}

func distance(bet, draw int) int {
	if bet > draw {
		return bet - draw
	}
	return draw - bet
}

// collect keeps each user's latest bet and latest price, ordered by the
// user's first appearance in the log.
func collect(records []actionlog.Record) ([]Bet, []currency.Price) {
	var (
		betOrder   []string
		priceOrder []string
		betBy      = map[string]int{}
		priceBy    = map[string]currency.Price{}
	)
	for _, r := range records {
		switch {
		case r.Action == actionlog.KindBet && r.Bet != nil:
			if _, seen := betBy[r.UserID]; !seen {
				betOrder = append(betOrder, r.UserID)
			}
			betBy[r.UserID] = *r.Bet
		case r.Action == actionlog.KindSetPrice && r.Price != nil:
			if _, seen := priceBy[r.UserID]; !seen {
				priceOrder = append(priceOrder, r.UserID)
			}
			priceBy[r.UserID] = currency.Price{UserID: r.UserID, Amount: *r.Price, Currency: r.Currency}
		}
	}
	bets := lo.Map(betOrder, func(id string, _ int) Bet { return Bet{UserID: id, Value: betBy[id]} })
	prices := lo.Map(priceOrder, func(id string, _ int) currency.Price { return priceBy[id] })
	return bets, prices
}
