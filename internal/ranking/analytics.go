package ranking

import (
	"math"
	"time"
)

// Metrics bundles the derived analytics shown next to a highlight.
type Metrics struct {
	EngagementRate   float64 `json:"engagement_rate"`
	AvgViewDuration  float64 `json:"avg_view_duration"`
	PerformanceScore float64 `json:"performance_score"`
}

// EngagementRate is 100 * (appreciations + comments) / views, rounded to two
// decimals. Zero when there are no views.
func EngagementRate(s HighlightSnapshot) float64 {
	if s.ViewsCount <= 0 {
		return 0
	}
	interactions := float64(s.AppreciationsCount + s.CommentsCount)
	return round(interactions/float64(s.ViewsCount)*100, 2)
}

// AvgViewDuration estimates seconds watched from engagement until real
// duration tracking is aggregated: 8 * (1 + min(ER/10, 2)).
func AvgViewDuration(s HighlightSnapshot) float64 {
	boost := math.Min(EngagementRate(s)/10, 2)
	return round(8*(1+boost), 1)
}

// PerformanceScore blends engagement, view volume and recency. The recency
// component reaches zero ten days after creation.
func PerformanceScore(s HighlightSnapshot, now time.Time) float64 {
	er := EngagementRate(s)
	views := math.Min(float64(s.ViewsCount)/10, 50)
	if views < 0 {
		views = 0
	}
	recency := math.Max(0, 100-float64(daysSince(s.CreatedAt, now))*10)
	return round(er*0.4+views*0.3+recency*0.3, 1)
}

// ComputeMetrics returns all three analytics for s.
func ComputeMetrics(s HighlightSnapshot, now time.Time) Metrics {
	return Metrics{
		EngagementRate:   EngagementRate(s),
		AvgViewDuration:  AvgViewDuration(s),
		PerformanceScore: PerformanceScore(s, now),
	}
}

// AverageEngagement is the mean engagement rate over snapshots, two decimals.
func AverageEngagement(snapshots []HighlightSnapshot) float64 {
	if len(snapshots) == 0 {
		return 0
	}
	var total float64
	for _, s := range snapshots {
		total += EngagementRate(s)
	}
	return round(total/float64(len(snapshots)), 2)
}

// daysSince counts whole elapsed days; never negative.
func daysSince(created, now time.Time) int {
	if created.IsZero() || !now.After(created) {
		return 0
	}
	return int(now.Sub(created) / (24 * time.Hour))
}
