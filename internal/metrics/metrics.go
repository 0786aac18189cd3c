package metrics

import (
    "net/http"
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    uploads = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "printdesk",
            Name:      "uploads_total",
            Help:      "Upload requests by result (success, invalid, rate_limited, failed)",
        },
        []string{"result"},
    )

    uploadLatency = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "printdesk",
            Name:      "upload_duration_seconds",
            Help:      "Duration of upload requests from parse to response",
            Buckets:   prometheus.DefBuckets,
        },
    )

    filesStored = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "printdesk",
            Name:      "files_stored_total",
            Help:      "Files stored by backend and requested color mode",
        },
        []string{"backend", "color_mode"},
    )

    pageEstimates = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "printdesk",
            Name:      "page_estimates_total",
            Help:      "Page count estimates by method (fixed, exact, heuristic)",
        },
        []string{"method"},
    )

    conversions = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "printdesk",
            Name:      "conversions_total",
            Help:      "Monochrome conversions by file kind and result",
        },
        []string{"kind", "result"},
    )

    rateLimited = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "printdesk",
            Name:      "rate_limited_total",
            Help:      "Upload requests rejected by the rate limiter",
        },
    )

    once sync.Once
)

// Init registers collectors. Safe to call more than once.
func Init() {
    once.Do(func() {
        prometheus.MustRegister(uploads, uploadLatency, filesStored, pageEstimates, conversions, rateLimited)
    })
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveUpload(result string, dur time.Duration) {
    uploads.WithLabelValues(result).Inc()
    uploadLatency.Observe(dur.Seconds())
}

func IncStored(backend, colorMode string) { filesStored.WithLabelValues(backend, colorMode).Inc() }
func IncEstimate(method string)           { pageEstimates.WithLabelValues(method).Inc() }
func IncConversion(kind, result string)   { conversions.WithLabelValues(kind, result).Inc() }
func IncRateLimited()                     { rateLimited.Inc() }
