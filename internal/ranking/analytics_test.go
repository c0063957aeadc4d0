package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngagementRate(t *testing.T) {
	tests := []struct {
		name     string
		snap     HighlightSnapshot
		expected float64
	}{
		{"No views", HighlightSnapshot{AppreciationsCount: 4, CommentsCount: 2}, 0},
		{"Hundred views", HighlightSnapshot{ViewsCount: 100, AppreciationsCount: 5, CommentsCount: 3}, 8.0},
		{"Rounded to two places", HighlightSnapshot{ViewsCount: 3, AppreciationsCount: 1}, 33.33},
		{"More interactions than views", HighlightSnapshot{ViewsCount: 2, AppreciationsCount: 3, CommentsCount: 1}, 200},
		{"Negative views treated as none", HighlightSnapshot{ViewsCount: -1, AppreciationsCount: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EngagementRate(tt.snap))
		})
	}
}

func TestAvgViewDuration(t *testing.T) {
	assert.Equal(t, 8.0, AvgViewDuration(HighlightSnapshot{}))
	// ER 8.0 -> 8 * 1.8
	assert.Equal(t, 14.4, AvgViewDuration(HighlightSnapshot{ViewsCount: 100, AppreciationsCount: 5, CommentsCount: 3}))
	// capped at 3x
	assert.Equal(t, 24.0, AvgViewDuration(HighlightSnapshot{ViewsCount: 10, AppreciationsCount: 10}))
}

func TestPerformanceScore(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		snap     HighlightSnapshot
		expected float64
	}{
		{"Fresh with no activity", HighlightSnapshot{CreatedAt: now}, 30},
		{"Fresh with engagement", HighlightSnapshot{CreatedAt: now.Add(-time.Hour), ViewsCount: 100, AppreciationsCount: 5, CommentsCount: 3}, 36.2},
		{"Partial days are floored", HighlightSnapshot{CreatedAt: now.Add(-47 * time.Hour)}, 27},
		{"Recency floor after ten days", HighlightSnapshot{CreatedAt: now.Add(-15 * 24 * time.Hour)}, 0},
		{"View component capped", HighlightSnapshot{CreatedAt: now.Add(-20 * 24 * time.Hour), ViewsCount: 10000}, 15},
		{"Future creation time counts as today", HighlightSnapshot{CreatedAt: now.Add(time.Hour)}, 30},
		{"Zero creation time", HighlightSnapshot{}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PerformanceScore(tt.snap, now))
		})
	}
}

func TestComputeMetrics(t *testing.T) {
	now := time.Now()
	s := HighlightSnapshot{CreatedAt: now, ViewsCount: 100, AppreciationsCount: 5, CommentsCount: 3}

	m := ComputeMetrics(s, now)
	assert.Equal(t, 8.0, m.EngagementRate)
	assert.Equal(t, 14.4, m.AvgViewDuration)
	assert.Equal(t, 36.2, m.PerformanceScore)
}

func TestAverageEngagement(t *testing.T) {
	assert.Equal(t, 0.0, AverageEngagement(nil))
	assert.Equal(t, 4.0, AverageEngagement([]HighlightSnapshot{
		{ViewsCount: 100, AppreciationsCount: 5, CommentsCount: 3},
		{},
	}))
}
