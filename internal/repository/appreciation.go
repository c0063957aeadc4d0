package repository

import (
	"context"
	"errors"
	"time"

	"blizz/internal/cache"
	"blizz/internal/models"
	"blizz/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errAppreciationRace = errors.New("appreciation insert lost unique race")

// ApplyOutcome describes what one Apply call changed.
type ApplyOutcome struct {
	AuthorID uint
	Previous models.AppreciationLevel // zero when the user had not reacted before
	Level    models.AppreciationLevel
	Created  bool
	Changed  bool
	Delta    int
}

// AppreciationRepository stores reactions and keeps author reputation in step
// with them.
type AppreciationRepository interface {
	Apply(ctx context.Context, highlightID, userID uint, level models.AppreciationLevel) (ApplyOutcome, error)
	LevelCounts(ctx context.Context, highlightIDs []uint) (map[uint]models.LevelCounts, error)
	ViewerLevels(ctx context.Context, userID uint, highlightIDs []uint) (map[uint]models.AppreciationLevel, error)
}

type appreciationRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
	now func() time.Time
}

// NewAppreciationRepository returns a new AppreciationRepository implementation.
func NewAppreciationRepository(db *gorm.DB) AppreciationRepository {
	return &appreciationRepository{
		db:  db,
		log: observability.NewRepoLogger("appreciations"),
		now: time.Now,
	}
}

// Apply records userID's reaction to highlightID and moves the author's score
// by PointValue(level) - PointValue(previous). The reaction row and the score
// change commit together. An insert that loses the unique race against a
// concurrent request is retried once, and then takes the update path.
func (r *appreciationRepository) Apply(ctx context.Context, highlightID, userID uint, level models.AppreciationLevel) (ApplyOutcome, error) {
	if !level.Valid() {
		return ApplyOutcome{}, models.NewValidationError("Invalid appreciation level")
	}

	out, err := r.apply(ctx, highlightID, userID, level)
	if errors.Is(err, errAppreciationRace) {
		out, err = r.apply(ctx, highlightID, userID, level)
	}
	if err != nil {
		if models.ErrorCode(err) != models.CodeNotFound {
			r.log.LogError(ctx, err, "apply")
		}
		return ApplyOutcome{}, internal(err)
	}

	if out.Changed {
		cache.InvalidateUser(ctx, out.AuthorID)
		r.log.LogUpdate(ctx, map[string]any{
			"highlight_id": highlightID,
			"user_id":      userID,
			"level":        int(level),
			"delta":        out.Delta,
		})
	}
	return out, nil
}

func (r *appreciationRepository) apply(ctx context.Context, highlightID, userID uint, level models.AppreciationLevel) (ApplyOutcome, error) {
	var out ApplyOutcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var h models.Highlight
		err := tx.Select("id", "author_id", "is_active", "expires_at").
			Where("id = ?", highlightID).
			Take(&h).Error
		if err != nil {
			return notFoundOr(err, "Highlight", highlightID)
		}
		if !h.Visible(r.now()) {
			return models.NewNotFoundError("Highlight", highlightID)
		}
		out.AuthorID = h.AuthorID
		out.Level = level

		q := tx.Where("highlight_id = ? AND user_id = ?", highlightID, userID)
		if isPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var existing models.Appreciation
		err = q.Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.Appreciation{HighlightID: highlightID, UserID: userID, Level: level}
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return errAppreciationRace
				}
				return err
			}
			out.Created = true
		case err != nil:
			return err
		case existing.Level == level:
			out.Previous = existing.Level
			return nil
		default:
			out.Previous = existing.Level
			if err := tx.Model(&existing).Update("level", level).Error; err != nil {
				return err
			}
		}

		out.Changed = true
		out.Delta = level.Points() - out.Previous.Points()
		return r.adjustProfile(tx, h.AuthorID, out.Delta, out.Created)
	})
	return out, err
}

func (r *appreciationRepository) adjustProfile(tx *gorm.DB, authorID uint, delta int, created bool) error {
	updates := map[string]any{"score": gorm.Expr("score + ?", delta)}
	added := 0
	if created {
		updates["appreciation_count"] = gorm.Expr("appreciation_count + ?", 1)
		added = 1
	}
	res := tx.Model(&models.Profile{}).Where("user_id = ?", authorID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return tx.Create(&models.Profile{UserID: authorID, Score: delta, AppreciationCount: added}).Error
}

// LevelCounts returns per-level reaction counts for each id. Every id is
// present, with zero counts when it has no reactions.
func (r *appreciationRepository) LevelCounts(ctx context.Context, highlightIDs []uint) (map[uint]models.LevelCounts, error) {
	out := make(map[uint]models.LevelCounts, len(highlightIDs))
	for _, id := range highlightIDs {
		out[id] = models.NewLevelCounts()
	}
	if len(highlightIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		HighlightID uint
		Level       models.AppreciationLevel
		Count       int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Appreciation{}).
		Select("highlight_id, level, COUNT(*) AS count").
		Where("highlight_id IN ?", highlightIDs).
		Group("highlight_id, level").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		if !row.Level.Valid() {
			continue
		}
		out[row.HighlightID][models.LevelKey(row.Level)] = row.Count
	}
	return out, nil
}

// ViewerLevels returns the user's own level for those ids they reacted to.
func (r *appreciationRepository) ViewerLevels(ctx context.Context, userID uint, highlightIDs []uint) (map[uint]models.AppreciationLevel, error) {
	out := make(map[uint]models.AppreciationLevel)
	if userID == 0 || len(highlightIDs) == 0 {
		return out, nil
	}
	var rows []models.Appreciation
	err := r.db.WithContext(ctx).
		Select("highlight_id", "level").
		Where("user_id = ? AND highlight_id IN ?", userID, highlightIDs).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.HighlightID] = row.Level
	}
	return out, nil
}
