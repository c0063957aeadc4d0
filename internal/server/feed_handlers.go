package server

import (
	"blizz/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxTrendingHours = 24 * 7

// GetFeed handles GET /api/highlights/feed?type=for_you|friends&page=N
// @Summary Ranked feed page
// @Description for_you ranks by the caller's hashtag and author affinities (recency when anonymous); friends shows subscribed authors only
// @Tags feed
// @Produce json
// @Param type query string false "for_you or friends"
// @Param page query int false "Page (1-based)"
// @Success 200 {object} service.FeedPage
// @Failure 400 {object} models.ErrorResponse
// @Router /highlights/feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	return s.feed(c, c.Query("type", service.FeedForYou), 0)
}

// GetForYouFeed handles GET /api/highlights/for-you?page=N
// @Summary Discovery feed page (web page size)
// @Tags feed
// @Produce json
// @Param page query int false "Page (1-based)"
// @Success 200 {object} service.FeedPage
// @Router /highlights/for-you [get]
func (s *Server) GetForYouFeed(c *fiber.Ctx) error {
	return s.feed(c, service.FeedForYou, s.config.WebFeedPageSize)
}

// GetFriendsFeed handles GET /api/highlights/friends?page=N
// @Summary Subscriptions feed page (web page size)
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Success 200 {object} service.FeedPage
// @Router /highlights/friends [get]
func (s *Server) GetFriendsFeed(c *fiber.Ctx) error {
	return s.feed(c, service.FeedFriends, s.config.WebFeedPageSize)
}

func (s *Server) feed(c *fiber.Ctx, feedType string, pageSize int) error {
	p := parsePagination(c, pageSize)
	page, err := s.feedService.Feed(c.UserContext(), service.FeedInput{
		ViewerID: currentUserID(c),
		Type:     feedType,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(page)
}

// GetTrendingHashtags handles GET /api/highlights/trending?hours=24&limit=10
// @Summary Trending hashtags
// @Tags feed
// @Produce json
// @Param hours query int false "Window in hours (max 168)"
// @Param limit query int false "Number of tags (max 50)"
// @Success 200 {object} object{hashtags=[]ranking.TagCount}
// @Router /highlights/trending [get]
func (s *Server) GetTrendingHashtags(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 0)
	if hours > maxTrendingHours {
		hours = maxTrendingHours
	}
	limit := c.QueryInt("limit", 0)
	if limit > service.MaxPageSize {
		limit = service.MaxPageSize
	}

	tags, err := s.feedService.TrendingHashtags(c.UserContext(), hours, limit)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"hashtags": tags})
}
