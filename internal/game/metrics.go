package game

import (
	"errors"

	"loser-pays/internal/currency"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loser_pays_evaluations_total",
		Help: "Round evaluations by outcome.",
	}, []string{"outcome"})
	metricEvaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loser_pays_evaluation_seconds",
		Help:    "Time spent fetching, drawing and converting for one evaluation.",
		Buckets: prometheus.DefBuckets,
	})
)

func observeOutcome(err error) string {
	switch {
	case err == nil:
		return "settled"
	case errors.Is(err, ErrNoBetsRecorded):
		return "no_bets"
	case errors.Is(err, currency.ErrAmountOutOfRange):
		return "out_of_range"
	default:
		return "error"
	}
}
