package repository

import (
	"context"

	"blizz/internal/models"

	"gorm.io/gorm"
)

// ShareRepository records highlight shares.
type ShareRepository interface {
	Create(ctx context.Context, share *models.HighlightShare) error
}

type shareRepository struct {
	db *gorm.DB
}

// NewShareRepository returns a new ShareRepository implementation.
func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(ctx context.Context, share *models.HighlightShare) error {
	if err := r.db.WithContext(ctx).Create(share).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
