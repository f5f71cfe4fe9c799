package proxy

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var outboundDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "gateway_backend_request_duration_seconds",
	Help:    "Duration of outbound backend calls, labeled by pool and HTTP status code (code 0 when no response was received).",
	Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
}, []string{"pool", "code"})

func observe(pool string, code int, start time.Time) {
	outboundDuration.WithLabelValues(pool, strconv.Itoa(code)).Observe(time.Since(start).Seconds())
}
