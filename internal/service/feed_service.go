package service

import (
	"context"
	"slices"
	"time"

	"blizz/internal/cache"
	"blizz/internal/featureflags"
	"blizz/internal/models"
	"blizz/internal/observability"
	"blizz/internal/ranking"
	"blizz/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Feed types.
const (
	FeedForYou  = "for_you"
	FeedFriends = "friends"
)

// Defaults used when FeedConfig leaves a field zero.
const (
	DefaultFeedPageSize        = 10
	DefaultTrendingWindowHours = 24
)

// FeedConfig tunes feed assembly.
type FeedConfig struct {
	PageSize            int
	TrendingWindowHours int
	TrendingCacheTTL    time.Duration
}

// FeedService assembles ranked pages of visible highlights.
type FeedService struct {
	highlights    repository.HighlightRepository
	appreciations repository.AppreciationRepository
	subscriptions repository.SubscriptionRepository
	flags         *featureflags.Manager
	cfg           FeedConfig
	now           func() time.Time
}

// FeedInput selects one feed page. ViewerID is zero for anonymous requests.
type FeedInput struct {
	ViewerID uint
	Type     string
	Page     int
	PageSize int
}

// FeedAnalytics summarises a feed page.
type FeedAnalytics struct {
	AvgEngagement    float64            `json:"avg_engagement"`
	TrendingHashtags []ranking.TagCount `json:"trending_hashtags"`
}

// FeedPage is one page of a feed.
type FeedPage struct {
	Type string `json:"type"`
	ListPage
	Analytics FeedAnalytics `json:"analytics"`
}

func NewFeedService(
	highlights repository.HighlightRepository,
	appreciations repository.AppreciationRepository,
	subscriptions repository.SubscriptionRepository,
	flags *featureflags.Manager,
	cfg FeedConfig,
) *FeedService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultFeedPageSize
	}
	if cfg.TrendingWindowHours <= 0 {
		cfg.TrendingWindowHours = DefaultTrendingWindowHours
	}
	if cfg.TrendingCacheTTL <= 0 {
		cfg.TrendingCacheTTL = cache.TrendingTTL
	}
	return &FeedService{
		highlights:    highlights,
		appreciations: appreciations,
		subscriptions: subscriptions,
		flags:         flags,
		cfg:           cfg,
		now:           time.Now,
	}
}

// Feed returns one page of the requested feed. for_you is ranked by the
// viewer's affinities when known, otherwise by recency. friends holds only
// authors the viewer subscribes to and is empty for anonymous viewers.
func (s *FeedService) Feed(ctx context.Context, in FeedInput) (*FeedPage, error) {
	if in.Type == "" {
		in.Type = FeedForYou
	}
	if in.Type != FeedForYou && in.Type != FeedFriends {
		return nil, models.NewValidationError("Invalid feed type")
	}
	page, size := NormalizePage(in.Page, in.PageSize, s.cfg.PageSize)

	defer observability.TrackFeed(in.Type)()
	span, ctx := observability.NewSpan(ctx, "feed.build",
		attribute.String("feed.type", in.Type),
		attribute.Int("feed.page", page),
	)
	defer span.End()

	now := s.now().UTC()
	out := &FeedPage{Type: in.Type, ListPage: newListPage([]HighlightItem{}, page, size, 0)}

	filter := repository.FeedFilter{}
	if in.Type == FeedFriends {
		if in.ViewerID == 0 {
			return s.withAnalytics(ctx, out, nil)
		}
		ids, err := s.subscriptions.SubscribedIDs(ctx, in.ViewerID)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		filter = repository.FeedFilter{RestrictAuthors: true, AuthorIDs: ids}
	}

	candidates, err := s.highlights.VisibleSnapshots(ctx, filter, now)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	prefs := ranking.Preferences{}
	if in.Type == FeedForYou && in.ViewerID != 0 && s.flags.Enabled(featureflags.DiscoveryRanking, in.ViewerID) {
		prefs, err = s.preferences(ctx, in.ViewerID)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
	}
	ranked := ranking.Rank(candidates, prefs, now)
	span.AddAttributes(attribute.Int("feed.candidates", len(ranked)))

	start := (page - 1) * size
	var window []ranking.HighlightSnapshot
	if start < len(ranked) {
		end := min(start+size, len(ranked))
		window = ranked[start:end]
	}

	ids := make([]uint, len(window))
	for i, snap := range window {
		ids[i] = snap.ID
	}
	loaded, err := s.highlights.ListByIDs(ctx, ids)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	// Rows can be deactivated or expire between the snapshot and the reload.
	loaded = slices.DeleteFunc(loaded, func(h models.Highlight) bool { return !h.Visible(now) })
	items, err := buildItems(ctx, s.appreciations, loaded, in.ViewerID, now)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	out.ListPage = newListPage(items, page, size, int64(len(ranked)))
	return s.withAnalytics(ctx, out, window)
}

func (s *FeedService) withAnalytics(ctx context.Context, out *FeedPage, window []ranking.HighlightSnapshot) (*FeedPage, error) {
	trending, err := s.TrendingHashtags(ctx, s.cfg.TrendingWindowHours, ranking.DefaultTrendingLimit)
	if err != nil {
		return nil, err
	}
	out.Analytics = FeedAnalytics{
		AvgEngagement:    ranking.AverageEngagement(window),
		TrendingHashtags: trending,
	}
	return out, nil
}

func (s *FeedService) preferences(ctx context.Context, viewerID uint) (ranking.Preferences, error) {
	tagLists, err := s.highlights.AppreciatedHashtags(ctx, viewerID)
	if err != nil {
		return ranking.Preferences{}, err
	}
	interactions, err := s.highlights.InteractionEvents(ctx, viewerID)
	if err != nil {
		return ranking.Preferences{}, err
	}
	return ranking.Preferences{
		Hashtags: ranking.PreferredHashtags(tagLists, ranking.PreferredHashtagsLimit),
		Users:    ranking.InteractionUsers(interactions, ranking.InteractionUsersLimit),
	}, nil
}

// TrendingHashtags counts hashtags on active highlights created within the
// last windowHours. Results are cached briefly in Redis; a cache failure
// falls through to the store.
func (s *FeedService) TrendingHashtags(ctx context.Context, windowHours, limit int) ([]ranking.TagCount, error) {
	if windowHours <= 0 {
		windowHours = s.cfg.TrendingWindowHours
	}
	if limit <= 0 {
		limit = ranking.DefaultTrendingLimit
	}

	useCache := s.flags.Enabled(featureflags.TrendingCache, 0)
	key := cache.TrendingKey(windowHours, limit)
	if useCache {
		var cached []ranking.TagCount
		if found, err := cache.GetJSON(ctx, key, &cached); err == nil && found {
			observability.TrendingCacheResults.WithLabelValues("hit").Inc()
			return cached, nil
		}
		observability.TrendingCacheResults.WithLabelValues("miss").Inc()
	}

	since := s.now().UTC().Add(-time.Duration(windowHours) * time.Hour)
	lists, err := s.highlights.HashtagsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	trending := ranking.CountHashtags(lists, limit)

	if useCache {
		_ = cache.SetJSON(ctx, key, trending, s.cfg.TrendingCacheTTL)
	}
	return trending, nil
}
