package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"blizz/internal/events"
	"blizz/internal/middleware"
	"blizz/internal/models"
	"blizz/internal/observability"
	"blizz/internal/ranking"
	"blizz/internal/repository"
	"blizz/internal/storage"
	"blizz/internal/validation"
)

// DefaultListPageSize is the page size of search and profile listings.
const DefaultListPageSize = 20

// HighlightDeps wires the stores a HighlightService needs.
type HighlightDeps struct {
	Highlights    repository.HighlightRepository
	Appreciations repository.AppreciationRepository
	Comments      repository.CommentRepository
	Views         repository.ViewRepository
	Shares        repository.ShareRepository
	Users         repository.UserRepository
	Media         storage.MediaStore
	Events        events.Publisher
	Notifier      UserNotifier
	// TTL is how long new highlights stay visible. Defaults to 48h.
	TTL time.Duration
	// MaxUploadBytes rejects larger videos when positive.
	MaxUploadBytes int64
}

// HighlightService covers the highlight lifecycle outside ranking: posting,
// viewing, commenting, sharing and deleting.
type HighlightService struct {
	deps     HighlightDeps
	dispatch dispatcher
	now      func() time.Time
}

func NewHighlightService(deps HighlightDeps) *HighlightService {
	if deps.TTL <= 0 {
		deps.TTL = models.DefaultHighlightTTL
	}
	return &HighlightService{
		deps:     deps,
		dispatch: newDispatcher(deps.Events, deps.Notifier),
		now:      time.Now,
	}
}

type CreateHighlightInput struct {
	AuthorID    uint
	Caption     string
	Video       io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type RecordViewInput struct {
	HighlightID uint
	UserID      *uint
	IP          string
	Duration    float64
}

// ViewResult reports the highlight's counters after a view.
type ViewResult struct {
	ViewsCount     int     `json:"views_count"`
	EngagementRate float64 `json:"engagement_rate"`
}

// HighlightDetail is the single-highlight view.
type HighlightDetail struct {
	Highlight HighlightItem             `json:"highlight"`
	Comments  []models.HighlightComment `json:"comments"`
	repository.Neighbors
}

func (s *HighlightService) Create(ctx context.Context, in CreateHighlightInput) (*HighlightItem, error) {
	if in.Video == nil || in.Size <= 0 {
		return nil, models.NewValidationError("Video file is required")
	}
	if s.deps.MaxUploadBytes > 0 && in.Size > s.deps.MaxUploadBytes {
		return nil, models.NewValidationError("Video file is too large")
	}
	if err := validation.ValidateVideoContentType(in.ContentType); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	caption := strings.TrimSpace(in.Caption)
	if err := validation.ValidateCaption(caption); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	key := storage.NewHighlightKey(in.Filename)
	url, err := s.deps.Media.Put(ctx, key, in.Video, in.Size, in.ContentType)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now().UTC()
	h := &models.Highlight{
		AuthorID:  in.AuthorID,
		VideoURL:  url,
		VideoKey:  key,
		Caption:   caption,
		Hashtags:  models.Hashtags(ranking.ExtractHashtags(caption)),
		IsActive:  true,
		CreatedAt: now,
		ExpiresAt: now.Add(s.deps.TTL),
	}
	if err := s.deps.Highlights.Create(ctx, h); err != nil {
		s.removeMedia(ctx, key)
		return nil, err
	}

	s.dispatch.emit(ctx, events.Event{
		Type:        events.TypeHighlightCreated,
		HighlightID: h.ID,
		ActorID:     in.AuthorID,
	}, 0)

	loaded, err := s.deps.Highlights.GetByID(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	item := toItem(loaded, now)
	return &item, nil
}

// Get returns a visible highlight with its comments and neighbours. An
// authenticated viewer's view is recorded first.
func (s *HighlightService) Get(ctx context.Context, id, viewerID uint) (*HighlightDetail, error) {
	now := s.now().UTC()
	h, err := s.visible(ctx, id, now)
	if err != nil {
		return nil, err
	}

	if viewerID != 0 {
		uid := viewerID
		if err := s.deps.Views.Upsert(ctx, &models.HighlightView{HighlightID: id, UserID: &uid, UpdatedAt: now}); err != nil {
			return nil, err
		}
		observability.ViewsRecorded.WithLabelValues("user").Inc()
		if h, err = s.deps.Highlights.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	items, err := buildItems(ctx, s.deps.Appreciations, []models.Highlight{*h}, viewerID, now)
	if err != nil {
		return nil, err
	}
	comments, err := s.deps.Comments.ListByHighlight(ctx, id)
	if err != nil {
		return nil, err
	}
	neighbors, err := s.deps.Highlights.Neighbors(ctx, h, now)
	if err != nil {
		return nil, err
	}
	return &HighlightDetail{Highlight: items[0], Comments: comments, Neighbors: neighbors}, nil
}

// Delete removes a highlight. Only its author may do so.
func (s *HighlightService) Delete(ctx context.Context, id, actorID uint) error {
	h, err := s.deps.Highlights.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if h.AuthorID != actorID {
		return models.NewUnauthorizedError("You can only delete your own highlights")
	}
	if err := s.deps.Highlights.Delete(ctx, id); err != nil {
		return err
	}
	if h.VideoKey != "" {
		s.removeMedia(ctx, h.VideoKey)
	}
	s.dispatch.emit(ctx, events.Event{
		Type:        events.TypeHighlightDeleted,
		HighlightID: id,
		ActorID:     actorID,
	}, 0)
	return nil
}

// Search matches "#tag" queries against hashtags and anything else against
// usernames and captions.
func (s *HighlightService) Search(ctx context.Context, query string, viewerID uint, page, size int) (*ListPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	q := repository.SearchQuery{Text: query}
	if tag, ok := strings.CutPrefix(query, "#"); ok {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil, models.NewValidationError("Search query is required")
		}
		q = repository.SearchQuery{Hashtag: tag}
	}
	return s.list(ctx, viewerID, page, size, func(p repository.Page, now time.Time) ([]models.Highlight, int64, error) {
		return s.deps.Highlights.Search(ctx, q, p, now)
	})
}

func (s *HighlightService) ByHashtag(ctx context.Context, tag string, viewerID uint, page, size int) (*ListPage, error) {
	tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return nil, models.NewValidationError("Hashtag is required")
	}
	return s.list(ctx, viewerID, page, size, func(p repository.Page, now time.Time) ([]models.Highlight, int64, error) {
		return s.deps.Highlights.Search(ctx, repository.SearchQuery{Hashtag: tag}, p, now)
	})
}

func (s *HighlightService) ByAuthor(ctx context.Context, authorID, viewerID uint, page, size int) (*ListPage, error) {
	ok, err := s.deps.Users.Exists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("User", authorID)
	}
	return s.list(ctx, viewerID, page, size, func(p repository.Page, now time.Time) ([]models.Highlight, int64, error) {
		return s.deps.Highlights.ByAuthor(ctx, authorID, p, now)
	})
}

func (s *HighlightService) list(
	ctx context.Context,
	viewerID uint,
	page, size int,
	fetch func(repository.Page, time.Time) ([]models.Highlight, int64, error),
) (*ListPage, error) {
	page, size = NormalizePage(page, size, DefaultListPageSize)
	now := s.now().UTC()
	rows, total, err := fetch(repoPage(page, size), now)
	if err != nil {
		return nil, err
	}
	items, err := buildItems(ctx, s.deps.Appreciations, rows, viewerID, now)
	if err != nil {
		return nil, err
	}
	lp := newListPage(items, page, size, total)
	return &lp, nil
}

func (s *HighlightService) AddComment(ctx context.Context, highlightID, userID uint, content string) (*models.HighlightComment, error) {
	content, err := validation.NormalizeComment(content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	h, err := s.visible(ctx, highlightID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	user, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.HighlightComment{HighlightID: highlightID, UserID: userID, Content: content}
	if err := s.deps.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.User = *user

	s.dispatch.emit(ctx, events.Event{
		Type:        events.TypeHighlightCommented,
		HighlightID: highlightID,
		ActorID:     userID,
		TargetID:    h.AuthorID,
	}, h.AuthorID)
	return comment, nil
}

// ListComments returns a visible highlight's comments, newest first.
func (s *HighlightService) ListComments(ctx context.Context, highlightID uint) ([]models.HighlightComment, error) {
	if _, err := s.visible(ctx, highlightID, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.deps.Comments.ListByHighlight(ctx, highlightID)
}

// Share records a share, optionally addressed to another user who then gets
// notified.
func (s *HighlightService) Share(ctx context.Context, highlightID, userID uint, sharedToID *uint) error {
	if _, err := s.visible(ctx, highlightID, s.now().UTC()); err != nil {
		return err
	}
	var recipient uint
	if sharedToID != nil {
		ok, err := s.deps.Users.Exists(ctx, *sharedToID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError("User", *sharedToID)
		}
		recipient = *sharedToID
	}

	if err := s.deps.Shares.Create(ctx, &models.HighlightShare{
		HighlightID: highlightID,
		UserID:      userID,
		SharedToID:  sharedToID,
	}); err != nil {
		return err
	}
	s.dispatch.emit(ctx, events.Event{
		Type:        events.TypeHighlightShared,
		HighlightID: highlightID,
		ActorID:     userID,
		TargetID:    recipient,
	}, recipient)
	return nil
}

// RecordView stores a view keyed by user, or by IP for anonymous viewers,
// keeping the longest duration. An anonymous view without an IP is ignored.
func (s *HighlightService) RecordView(ctx context.Context, in RecordViewInput) (*ViewResult, error) {
	now := s.now().UTC()
	if _, err := s.visible(ctx, in.HighlightID, now); err != nil {
		return nil, err
	}

	if in.UserID != nil || in.IP != "" {
		duration := in.Duration
		if duration < 0 {
			duration = 0
		}
		view := &models.HighlightView{
			HighlightID:  in.HighlightID,
			UserID:       in.UserID,
			IPAddress:    in.IP,
			ViewDuration: duration,
			UpdatedAt:    now,
		}
		if err := s.deps.Views.Upsert(ctx, view); err != nil {
			return nil, err
		}
		viewer := "anonymous"
		if in.UserID != nil {
			viewer = "user"
		}
		observability.ViewsRecorded.WithLabelValues(viewer).Inc()
	}

	h, err := s.deps.Highlights.GetByID(ctx, in.HighlightID)
	if err != nil {
		return nil, err
	}
	return &ViewResult{
		ViewsCount:     h.ViewsCount,
		EngagementRate: ranking.EngagementRate(ranking.SnapshotOf(h)),
	}, nil
}

func (s *HighlightService) visible(ctx context.Context, id uint, now time.Time) (*models.Highlight, error) {
	h, err := s.deps.Highlights.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !h.Visible(now) {
		return nil, models.NewNotFoundError("Highlight", id)
	}
	return h, nil
}

func (s *HighlightService) removeMedia(ctx context.Context, key string) {
	if s.deps.Media == nil {
		return
	}
	if err := s.deps.Media.Remove(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "media cleanup failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
