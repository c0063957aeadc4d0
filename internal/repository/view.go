package repository

import (
	"context"
	"fmt"
	"time"

	"blizz/internal/models"

	"gorm.io/gorm"
)

// ViewRepository records highlight views.
type ViewRepository interface {
	Upsert(ctx context.Context, view *models.HighlightView) error
	CountByHighlight(ctx context.Context, highlightID uint) (int64, error)
}

type viewRepository struct {
	db *gorm.DB
}

// NewViewRepository returns a new ViewRepository implementation.
func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

const viewUpsertSQL = `INSERT INTO highlight_views (highlight_id, user_id, ip_address, view_duration, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT %s DO UPDATE SET
	view_duration = %s(highlight_views.view_duration, excluded.view_duration),
	updated_at = excluded.updated_at`

const (
	viewerConflict    = "(highlight_id, user_id) WHERE user_id IS NOT NULL"
	anonymousConflict = "(highlight_id, ip_address) WHERE user_id IS NULL"
)

// Upsert stores one view per (highlight, user), or per (highlight, ip) for
// anonymous viewers. A repeat view keeps the longest duration seen. The merge
// happens inside the statement so concurrent views cannot lose an update.
func (r *viewRepository) Upsert(ctx context.Context, view *models.HighlightView) error {
	if view.UserID == nil && view.IPAddress == "" {
		return models.NewValidationError("Anonymous views need an IP address")
	}
	if view.ViewDuration < 0 {
		view.ViewDuration = 0
	}

	now := view.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	target := viewerConflict
	if view.UserID == nil {
		target = anonymousConflict
	}
	greatest := "MAX"
	if isPostgres(r.db) {
		greatest = "GREATEST"
	}

	err := r.db.WithContext(ctx).Exec(
		fmt.Sprintf(viewUpsertSQL, target, greatest),
		view.HighlightID, view.UserID, view.IPAddress, view.ViewDuration, now, now,
	).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *viewRepository) CountByHighlight(ctx context.Context, highlightID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HighlightView{}).Where("highlight_id = ?", highlightID).Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
