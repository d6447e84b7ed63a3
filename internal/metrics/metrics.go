package metrics

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ShardsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market_metrics",
		Name:      "shards_processed_total",
		Help:      "Shard files fully consumed.",
	})
	ShardsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market_metrics",
		Name:      "shards_skipped_total",
		Help:      "Shard files abandoned due to truncation or malformed records.",
	})
	DaysClassified = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market_metrics",
		Name:      "days_classified_total",
		Help:      "Day records classified by the aggregator.",
	})
	NewIdentifiers = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market_metrics",
		Name:      "new_identifiers_total",
		Help:      "First-time identifiers added to a seen-set.",
	})
	RunsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market_metrics",
		Name:      "category_runs_completed_total",
		Help:      "Category runs that produced an output document.",
	})
	RunsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market_metrics",
		Name:      "category_runs_failed_total",
		Help:      "Category runs aborted by a fatal error.",
	})
)

// Init registers collectors; call once from main.
func Init() {
	prometheus.MustRegister(ShardsProcessed, ShardsSkipped, DaysClassified, NewIdentifiers, RunsCompleted, RunsFailed)
}

// Serve starts a /metrics server on the given addr (e.g., ":9090"). Non-blocking when run in goroutine.
func Serve(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, nil)
}

// AddrFromEnv returns listen address from METRICS_ADDR or default ":9090".
func AddrFromEnv() string {
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		return v
	}
	return ":9090"
}
