package repository

import (
	"context"
	"sort"
	"time"

	"blizz/internal/models"
	"blizz/internal/observability"
	"blizz/internal/ranking"

	"gorm.io/gorm"
)

const (
	// MaxFeedCandidates caps how many visible highlights a feed ranks.
	MaxFeedCandidates = 1000
	// MaxHistoryEvents caps the viewer history mined for preferences.
	MaxHistoryEvents = 1000
)

const highlightDetailsSelect = `highlights.*,
	(SELECT COUNT(*) FROM appreciations WHERE appreciations.highlight_id = highlights.id) AS appreciations_count,
	(SELECT COUNT(*) FROM highlight_comments WHERE highlight_comments.highlight_id = highlights.id) AS comments_count,
	(SELECT COUNT(*) FROM highlight_views WHERE highlight_views.highlight_id = highlights.id) AS views_count,
	(SELECT COUNT(*) FROM highlight_shares WHERE highlight_shares.highlight_id = highlights.id) AS shares_count`

const highlightSnapshotSelect = `highlights.id, highlights.author_id, highlights.hashtags,
	highlights.created_at, highlights.expires_at, highlights.is_active,
	(SELECT COUNT(*) FROM appreciations WHERE appreciations.highlight_id = highlights.id) AS appreciations_count,
	(SELECT COUNT(*) FROM highlight_comments WHERE highlight_comments.highlight_id = highlights.id) AS comments_count,
	(SELECT COUNT(*) FROM highlight_views WHERE highlight_views.highlight_id = highlights.id) AS views_count`

// FeedFilter narrows feed candidates. With RestrictAuthors set, only
// AuthorIDs qualify, and an empty list yields nothing.
type FeedFilter struct {
	AuthorIDs       []uint
	RestrictAuthors bool
}

// SearchQuery matches either a hashtag substring or a username/caption
// substring. Hashtag wins when both are set.
type SearchQuery struct {
	Text    string
	Hashtag string
}

// Neighbors are the adjacent visible highlights of a detail view. Previous is
// the next newer one, Next the next older one.
type Neighbors struct {
	PreviousID *uint `json:"previous_id"`
	NextID     *uint `json:"next_id"`
}

// HighlightRepository defines persistence operations for highlights.
type HighlightRepository interface {
	Create(ctx context.Context, h *models.Highlight) error
	GetByID(ctx context.Context, id uint) (*models.Highlight, error)
	Delete(ctx context.Context, id uint) error
	ListByIDs(ctx context.Context, ids []uint) ([]models.Highlight, error)
	VisibleSnapshots(ctx context.Context, filter FeedFilter, now time.Time) ([]ranking.HighlightSnapshot, error)
	Neighbors(ctx context.Context, h *models.Highlight, now time.Time) (Neighbors, error)
	Search(ctx context.Context, q SearchQuery, page Page, now time.Time) ([]models.Highlight, int64, error)
	ByAuthor(ctx context.Context, authorID uint, page Page, now time.Time) ([]models.Highlight, int64, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	HashtagsSince(ctx context.Context, since time.Time) ([][]string, error)
	AppreciatedHashtags(ctx context.Context, userID uint) ([][]string, error)
	InteractionEvents(ctx context.Context, userID uint) ([]ranking.Interaction, error)
}

type highlightRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewHighlightRepository returns a new HighlightRepository implementation.
func NewHighlightRepository(db *gorm.DB) HighlightRepository {
	return &highlightRepository{db: db, log: observability.NewRepoLogger("highlights")}
}

func (r *highlightRepository) Create(ctx context.Context, h *models.Highlight) error {
	if h.Hashtags == nil {
		h.Hashtags = models.Hashtags{}
	}
	if err := r.db.WithContext(ctx).Omit("Author").Create(h).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"highlight_id": h.ID, "author_id": h.AuthorID})
	return nil
}

// GetByID loads a highlight in any state, with counts and author profile.
func (r *highlightRepository) GetByID(ctx context.Context, id uint) (*models.Highlight, error) {
	var h models.Highlight
	err := r.db.WithContext(ctx).
		Select(highlightDetailsSelect).
		Preload("Author.Profile").
		Where("highlights.id = ?", id).
		First(&h).Error
	if err != nil {
		return nil, notFoundOr(err, "Highlight", id)
	}
	return &h, nil
}

// Delete removes the highlight and everything hanging off it. Reputation
// already awarded to the author is kept.
func (r *highlightRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []any{
			&models.Appreciation{},
			&models.HighlightComment{},
			&models.HighlightView{},
			&models.HighlightShare{},
		}
		for _, child := range children {
			if err := tx.Where("highlight_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Highlight{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Highlight", id)
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return internal(err)
	}
	r.log.LogDelete(ctx, map[string]any{"highlight_id": id})
	return nil
}

// ListByIDs loads full rows for ids and returns them in the order given.
// Missing ids are skipped.
func (r *highlightRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Highlight, error) {
	if len(ids) == 0 {
		return []models.Highlight{}, nil
	}
	var rows []models.Highlight
	err := r.db.WithContext(ctx).
		Select(highlightDetailsSelect).
		Preload("Author.Profile").
		Where("highlights.id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	byID := make(map[uint]models.Highlight, len(rows))
	for _, h := range rows {
		byID[h.ID] = h
	}
	out := make([]models.Highlight, 0, len(ids))
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

// VisibleSnapshots returns up to MaxFeedCandidates visible highlights,
// newest first, in the light form ranking works on.
func (r *highlightRepository) VisibleSnapshots(ctx context.Context, filter FeedFilter, now time.Time) ([]ranking.HighlightSnapshot, error) {
	if filter.RestrictAuthors && len(filter.AuthorIDs) == 0 {
		return []ranking.HighlightSnapshot{}, nil
	}

	q := visible(r.db.WithContext(ctx).Model(&models.Highlight{}), now).
		Select(highlightSnapshotSelect)
	if filter.RestrictAuthors {
		q = q.Where("highlights.author_id IN ?", filter.AuthorIDs)
	}

	var rows []models.Highlight
	err := q.Order("highlights.created_at desc").
		Order("highlights.id desc").
		Limit(MaxFeedCandidates).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	snaps := make([]ranking.HighlightSnapshot, 0, len(rows))
	for i := range rows {
		snaps = append(snaps, ranking.SnapshotOf(&rows[i]))
	}
	return snaps, nil
}

func (r *highlightRepository) Neighbors(ctx context.Context, h *models.Highlight, now time.Time) (Neighbors, error) {
	var out Neighbors

	var newer []uint
	err := visible(r.db.WithContext(ctx).Model(&models.Highlight{}), now).
		Where("highlights.created_at > ?", h.CreatedAt).
		Order("highlights.created_at asc").
		Limit(1).
		Pluck("highlights.id", &newer).Error
	if err != nil {
		return out, models.NewInternalError(err)
	}
	if len(newer) > 0 {
		out.PreviousID = &newer[0]
	}

	var older []uint
	err = visible(r.db.WithContext(ctx).Model(&models.Highlight{}), now).
		Where("highlights.created_at < ?", h.CreatedAt).
		Order("highlights.created_at desc").
		Limit(1).
		Pluck("highlights.id", &older).Error
	if err != nil {
		return out, models.NewInternalError(err)
	}
	if len(older) > 0 {
		out.NextID = &older[0]
	}
	return out, nil
}

func (r *highlightRepository) Search(ctx context.Context, q SearchQuery, page Page, now time.Time) ([]models.Highlight, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = visible(db.Model(&models.Highlight{}), now)
		if q.Hashtag != "" {
			return db.Where("LOWER(highlights.hashtags) LIKE ? ESCAPE '!'", containsPattern(q.Hashtag))
		}
		pattern := containsPattern(q.Text)
		return db.Joins("JOIN users ON users.id = highlights.author_id").
			Where("LOWER(users.username) LIKE ? ESCAPE '!' OR LOWER(highlights.caption) LIKE ? ESCAPE '!'", pattern, pattern)
	}
	return r.page(ctx, scope, page)
}

func (r *highlightRepository) ByAuthor(ctx context.Context, authorID uint, page Page, now time.Time) ([]models.Highlight, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return visible(db.Model(&models.Highlight{}), now).Where("highlights.author_id = ?", authorID)
	}
	return r.page(ctx, scope, page)
}

func (r *highlightRepository) page(ctx context.Context, scope func(*gorm.DB) *gorm.DB, page Page) ([]models.Highlight, int64, error) {
	var total int64
	if err := scope(r.db.WithContext(ctx)).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	items := []models.Highlight{}
	if total == 0 {
		return items, 0, nil
	}
	err := scope(r.db.WithContext(ctx)).
		Select(highlightDetailsSelect).
		Preload("Author.Profile").
		Order("highlights.created_at desc").
		Order("highlights.id desc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

// CountByAuthor counts every highlight the author has posted, visible or not.
func (r *highlightRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Highlight{}).Where("author_id = ?", authorID).Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// HashtagsSince returns the tag lists of active highlights created at or
// after since, newest first.
func (r *highlightRepository) HashtagsSince(ctx context.Context, since time.Time) ([][]string, error) {
	var rows []models.Highlight
	err := r.db.WithContext(ctx).
		Select("id", "hashtags").
		Where("is_active = ? AND created_at >= ?", true, since).
		Order("created_at desc").
		Order("id desc").
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	lists := make([][]string, 0, len(rows))
	for _, h := range rows {
		lists = append(lists, []string(h.Hashtags))
	}
	return lists, nil
}

// AppreciatedHashtags returns the tag lists of the highlights the user most
// recently appreciated, oldest first.
func (r *highlightRepository) AppreciatedHashtags(ctx context.Context, userID uint) ([][]string, error) {
	var rows []struct {
		Hashtags models.Hashtags
	}
	err := r.db.WithContext(ctx).
		Table("appreciations").
		Select("highlights.hashtags").
		Joins("JOIN highlights ON highlights.id = appreciations.highlight_id").
		Where("appreciations.user_id = ?", userID).
		Order("appreciations.created_at desc").
		Order("appreciations.id desc").
		Limit(MaxHistoryEvents).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	lists := make([][]string, len(rows))
	for i, row := range rows {
		lists[len(rows)-1-i] = []string(row.Hashtags)
	}
	return lists, nil
}

type interactionRow struct {
	AuthorID  uint
	CreatedAt time.Time
}

// InteractionEvents merges the user's recent appreciations and comments into
// one chronological list of highlight authors.
func (r *highlightRepository) InteractionEvents(ctx context.Context, userID uint) ([]ranking.Interaction, error) {
	var rows []interactionRow
	for _, table := range []string{"appreciations", "highlight_comments"} {
		var part []interactionRow
		err := r.db.WithContext(ctx).
			Table(table).
			Select("highlights.author_id, "+table+".created_at").
			Joins("JOIN highlights ON highlights.id = "+table+".highlight_id").
			Where(table+".user_id = ?", userID).
			Order(table + ".created_at desc").
			Limit(MaxHistoryEvents).
			Scan(&part).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		rows = append(rows, part...)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	events := make([]ranking.Interaction, 0, len(rows))
	for _, row := range rows {
		events = append(events, ranking.Interaction{AuthorID: row.AuthorID})
	}
	return events, nil
}
