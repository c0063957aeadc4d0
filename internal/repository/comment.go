package repository

import (
	"context"

	"blizz/internal/models"
	"blizz/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for highlight comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.HighlightComment) error
	ListByHighlight(ctx context.Context, highlightID uint) ([]models.HighlightComment, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("highlight_comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.HighlightComment) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"comment_id": comment.ID, "highlight_id": comment.HighlightID})
	return nil
}

// ListByHighlight returns comments newest first with their authors.
func (r *commentRepository) ListByHighlight(ctx context.Context, highlightID uint) ([]models.HighlightComment, error) {
	comments := []models.HighlightComment{}
	err := r.db.WithContext(ctx).
		Preload("User.Profile").
		Where("highlight_id = ?", highlightID).
		Order("created_at desc").
		Order("id desc").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
