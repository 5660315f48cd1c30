package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Card outcomes recorded by the result parser.
const (
	CardAccepted           = "accepted"
	CardNoHeading          = "no_heading"
	CardNoAnchor           = "no_anchor"
	CardInternalLink       = "internal_link"
	CardNotAbsolute        = "not_absolute"
	CardUnresolvedRedirect = "unresolved_redirect"
	CardEmptyTitle         = "empty_title"
)

var (
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serpkeep_fetch_requests_total",
			Help: "Total number of search page fetches executed",
		},
		[]string{"status", "detected", "detection_src"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "serpkeep_fetch_duration_seconds",
			Help:    "Duration of search page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	FetchBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "serpkeep_fetch_bytes_total",
			Help: "Total bytes downloaded across all fetches",
		},
	)

	CardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serpkeep_cards_total",
			Help: "Result cards seen by the parser, by outcome",
		},
		[]string{"outcome"},
	)

	ResultsSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "serpkeep_results_saved_total",
			Help: "Total number of result rows upserted",
		},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "serpkeep_last_run_timestamp_seconds",
			Help: "Unix time of the last run that completed without error",
		},
	)
)

// RecordFetch updates the fetch metrics. statusCode is 0 when the request
// failed before a response arrived.
func RecordFetch(statusCode int, detectionSrc string, size int, d time.Duration) {
	statusStr := "error"
	if statusCode > 0 {
		statusStr = strconv.Itoa(statusCode)
	}

	detectedStr := "false"
	if detectionSrc != "" {
		detectedStr = "true"
	}

	FetchRequestsTotal.WithLabelValues(statusStr, detectedStr, detectionSrc).Inc()
	FetchDuration.Observe(d.Seconds())
	FetchBytesTotal.Add(float64(size))
}

// RecordCard counts one parser decision for a candidate result card.
func RecordCard(outcome string) {
	CardsTotal.WithLabelValues(outcome).Inc()
}

// RecordSaved counts upserted rows.
func RecordSaved(n int) {
	ResultsSavedTotal.Add(float64(n))
}

// RecordRunCompleted stamps the time of a run that saved every row.
func RecordRunCompleted(at time.Time) {
	LastRunTimestamp.Set(float64(at.Unix()))
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for the node_exporter textfile collector. The process
// exits right after a run, so there is no HTTP endpoint to scrape.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
