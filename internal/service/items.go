package service

import (
	"context"
	"math"
	"time"

	"blizz/internal/models"
	"blizz/internal/ranking"
	"blizz/internal/repository"
)

// TimeRemaining is the time left before a highlight expires.
type TimeRemaining struct {
	Seconds int64  `json:"seconds"`
	Display string `json:"display"`
}

// HighlightItem is a highlight as rendered in feeds, lists and detail views.
type HighlightItem struct {
	ID                 uint                      `json:"id"`
	VideoURL           string                    `json:"video_url"`
	Caption            string                    `json:"caption"`
	Hashtags           []string                  `json:"hashtags"`
	Author             models.AuthorSummary      `json:"author"`
	AppreciationsCount int                       `json:"appreciations_count"`
	CommentsCount      int                       `json:"comments_count"`
	ViewsCount         int                       `json:"views_count"`
	SharesCount        int                       `json:"shares_count"`
	AppreciationCounts models.LevelCounts        `json:"appreciation_counts"`
	UserAppreciation   *models.AppreciationLevel `json:"user_appreciation"`
	CreatedAt          time.Time                 `json:"created_at"`
	ExpiresAt          time.Time                 `json:"expires_at"`
	TimeRemaining      TimeRemaining             `json:"time_remaining"`
	ranking.Metrics
}

// ListPage is one page of highlights.
type ListPage struct {
	Items      []HighlightItem `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalCount int64           `json:"total_count"`
	HasNext    bool            `json:"has_next"`
	NextPage   *int            `json:"next_page"`
}

func newListPage(items []HighlightItem, page, size int, total int64) ListPage {
	lp := ListPage{Items: items, Page: page, PageSize: size, TotalCount: total}
	if int64(page*size) < total {
		next := page + 1
		lp.HasNext = true
		lp.NextPage = &next
	}
	return lp
}

// MaxPageSize caps page_size on every paginated endpoint.
const MaxPageSize = 50

// NormalizePage clamps size to 1..MaxPageSize, using fallback for a
// non-positive size, and page to 1..math.MaxInt/size so offsets never
// overflow.
func NormalizePage(page, size, fallback int) (int, int) {
	if size <= 0 {
		size = fallback
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / size; page > maxPage {
		page = maxPage
	}
	return page, size
}

func repoPage(page, size int) repository.Page {
	return repository.Page{Limit: size, Offset: (page - 1) * size}
}

// buildItems attaches per-level counts, the viewer's own level and the
// analytics metrics to loaded highlights, keeping their order.
func buildItems(
	ctx context.Context,
	appreciations repository.AppreciationRepository,
	highlights []models.Highlight,
	viewerID uint,
	now time.Time,
) ([]HighlightItem, error) {
	items := make([]HighlightItem, 0, len(highlights))
	if len(highlights) == 0 {
		return items, nil
	}

	ids := make([]uint, len(highlights))
	for i, h := range highlights {
		ids[i] = h.ID
	}
	counts, err := appreciations.LevelCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	levels, err := appreciations.ViewerLevels(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	for i := range highlights {
		h := &highlights[i]
		item := toItem(h, now)
		if c, ok := counts[h.ID]; ok {
			item.AppreciationCounts = c
		}
		if level, ok := levels[h.ID]; ok {
			item.UserAppreciation = &level
		}
		items = append(items, item)
	}
	return items, nil
}

func toItem(h *models.Highlight, now time.Time) HighlightItem {
	remaining := h.TimeRemaining(now)
	hashtags := []string(h.Hashtags)
	if hashtags == nil {
		hashtags = []string{}
	}
	return HighlightItem{
		ID:                 h.ID,
		VideoURL:           h.VideoURL,
		Caption:            h.Caption,
		Hashtags:           hashtags,
		Author:             h.Author.Summary(),
		AppreciationsCount: h.AppreciationsCount,
		CommentsCount:      h.CommentsCount,
		ViewsCount:         h.ViewsCount,
		SharesCount:        h.SharesCount,
		AppreciationCounts: models.NewLevelCounts(),
		CreatedAt:          h.CreatedAt,
		ExpiresAt:          h.ExpiresAt,
		TimeRemaining: TimeRemaining{
			Seconds: int64(remaining / time.Second),
			Display: models.FormatRemaining(remaining),
		},
		Metrics: ranking.ComputeMetrics(ranking.SnapshotOf(h), now),
	}
}
