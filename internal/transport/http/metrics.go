package httptransport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricHTTPErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "loser_pays_http_errors_total",
	Help: "HTTP error responses by error code.",
}, []string{"code"})
