package server

import "github.com/gofiber/fiber/v2"

// ToggleSubscription handles POST /api/users/:id/subscribe
// @Summary Subscribe to or unsubscribe from a user
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} service.SubscriptionResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/subscribe [post]
func (s *Server) ToggleSubscription(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.subscriptionService.Toggle(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(res)
}

// GetMySubscriptions handles GET /api/users/me/subscriptions
// @Summary List users the caller subscribes to
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AuthorSummary
// @Router /users/me/subscriptions [get]
func (s *Server) GetMySubscriptions(c *fiber.Ctx) error {
	users, err := s.subscriptionService.Subscriptions(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(users)
}

// GetMySubscribers handles GET /api/users/me/subscribers
// @Summary List the caller's subscribers
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AuthorSummary
// @Router /users/me/subscribers [get]
func (s *Server) GetMySubscribers(c *fiber.Ctx) error {
	users, err := s.subscriptionService.Subscribers(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(users)
}

// GetMyStats handles GET /api/users/me/stats
// @Summary Profile counters of the caller
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserStats
// @Router /users/me/stats [get]
func (s *Server) GetMyStats(c *fiber.Ctx) error {
	stats, err := s.subscriptionService.Stats(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(stats)
}

// GetUserStats handles GET /api/users/:id/stats
// @Summary Profile counters of a user
// @Tags subscriptions
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserStats
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/stats [get]
func (s *Server) GetUserStats(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	stats, err := s.subscriptionService.Stats(c.UserContext(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(stats)
}
