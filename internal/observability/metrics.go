package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AppreciationsTotal counts applied reactions by level and outcome
	// (created, updated, unchanged).
	AppreciationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "highlights_appreciations_total",
		Help: "Total number of appreciations applied",
	}, []string{"level", "outcome"})

	// ReputationDelta observes the score change applied to authors.
	ReputationDelta = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "highlights_reputation_delta",
		Help:    "Score delta applied to the author per appreciation",
		Buckets: []float64{-20, -10, -4, 0, 4, 10, 20},
	})

	// ViewsRecorded counts recorded views by viewer kind.
	ViewsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "highlights_views_recorded_total",
		Help: "Total number of view upserts",
	}, []string{"viewer"})

	// FeedRequests counts feed page requests by feed type.
	FeedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "highlights_feed_requests_total",
		Help: "Total number of feed page requests",
	}, []string{"type"})

	// FeedBuildLatency records how long it takes to rank and assemble a page.
	FeedBuildLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "highlights_feed_build_seconds",
		Help:    "Feed assembly latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	// TrendingCacheResults counts trending lookups by cache result.
	TrendingCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "highlights_trending_cache_total",
		Help: "Trending hashtag cache lookups by result",
	}, []string{"result"})

	// EventPublishFailures counts best-effort deliveries that failed.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "highlights_event_publish_failures_total",
		Help: "Total number of failed notification or event publishes",
	}, []string{"sink"})
)

// RecordAppreciation updates the reaction counters.
func RecordAppreciation(level int, outcome string, delta int) {
	AppreciationsTotal.WithLabelValues(strconv.Itoa(level), outcome).Inc()
	ReputationDelta.Observe(float64(delta))
}

// TrackFeed returns a func that records the build latency of one feed page.
func TrackFeed(feedType string) func() {
	start := time.Now()
	FeedRequests.WithLabelValues(feedType).Inc()
	return func() {
		FeedBuildLatency.WithLabelValues(feedType).Observe(time.Since(start).Seconds())
	}
}
