// Package ranking holds the pure scoring functions behind the highlights feed:
// per-item analytics, viewer preference mining, discovery ordering and
// trending hashtags. Nothing here touches the store; callers build
// HighlightSnapshot values from whatever they loaded.
package ranking

import (
	"math"
	"time"

	"blizz/internal/models"
)

// HighlightSnapshot is the minimal view of a highlight the ranking code needs.
type HighlightSnapshot struct {
	ID                 uint
	AuthorID           uint
	Hashtags           []string
	CreatedAt          time.Time
	ExpiresAt          time.Time
	IsActive           bool
	AppreciationsCount int
	CommentsCount      int
	ViewsCount         int
}

// Visible reports whether the snapshot may be shown at now.
func (s HighlightSnapshot) Visible(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

// SnapshotOf copies the ranking-relevant fields out of a loaded highlight.
func SnapshotOf(h *models.Highlight) HighlightSnapshot {
	return HighlightSnapshot{
		ID:                 h.ID,
		AuthorID:           h.AuthorID,
		Hashtags:           []string(h.Hashtags),
		CreatedAt:          h.CreatedAt,
		ExpiresAt:          h.ExpiresAt,
		IsActive:           h.IsActive,
		AppreciationsCount: h.AppreciationsCount,
		CommentsCount:      h.CommentsCount,
		ViewsCount:         h.ViewsCount,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
