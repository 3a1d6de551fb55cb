// Package metrics holds the Prometheus collectors for data reads and
// refreshes. They are registered in init() and served at /metrics.
//
//   - dca_fetch_total{file,result}          – resource fetches (ok|not_found|network|parsing|absent)
//   - dca_fetch_duration_seconds{file}      – fetch latency
//   - dca_records_total{file}               – records accepted from NDJSON streams
//   - dca_lines_skipped_total{file}         – malformed NDJSON lines skipped
//   - dca_refresh_total{coordinator,result} – coordinator fetches (ok|error|superseded)
//   - dca_refresh_inflight{coordinator}     – fetches currently running
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for dca_fetch_total.
const (
	FetchOK       = "ok"
	FetchAbsent   = "absent"
	FetchNotFound = "not_found"
	FetchNetwork  = "network"
	FetchParsing  = "parsing"
)

// Result labels for dca_refresh_total.
const (
	RefreshOK         = "ok"
	RefreshError      = "error"
	RefreshSuperseded = "superseded"
)

var (
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_fetch_total",
			Help: "Bot data resource fetches by result",
		},
		[]string{"file", "result"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dca_fetch_duration_seconds",
			Help:    "Bot data resource fetch latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"file"},
	)

	recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_records_total",
			Help: "Records accepted from NDJSON streams",
		},
		[]string{"file"},
	)

	linesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_lines_skipped_total",
			Help: "Malformed NDJSON lines skipped",
		},
		[]string{"file"},
	)

	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_refresh_total",
			Help: "Refresh coordinator fetches by result",
		},
		[]string{"coordinator", "result"},
	)

	refreshInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dca_refresh_inflight",
			Help: "Refresh coordinator fetches currently running",
		},
		[]string{"coordinator"},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal, fetchDuration, recordsTotal, linesSkipped)
	prometheus.MustRegister(refreshTotal, refreshInflight)
}

func ObserveFetch(file, result string, d time.Duration) {
	fetchTotal.WithLabelValues(file, result).Inc()
	fetchDuration.WithLabelValues(file).Observe(d.Seconds())
}

func AddRecords(file string, n int) {
	recordsTotal.WithLabelValues(file).Add(float64(n))
}

func SkipLine(file string) {
	linesSkipped.WithLabelValues(file).Inc()
}

func ObserveRefresh(coordinator, result string) {
	refreshTotal.WithLabelValues(coordinator, result).Inc()
}

func RefreshStarted(coordinator string) {
	refreshInflight.WithLabelValues(coordinator).Inc()
}

func RefreshFinished(coordinator string) {
	refreshInflight.WithLabelValues(coordinator).Dec()
}

// Handler serves the default registry in the text exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
