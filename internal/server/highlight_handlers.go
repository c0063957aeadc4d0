package server

import (
	"blizz/internal/models"
	"blizz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateHighlight handles POST /api/highlights (multipart: video, caption)
// @Summary Post a highlight
// @Description Uploads a video that stays visible for 48 hours. Hashtags are taken from the caption.
// @Tags highlights
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param video formData file true "Video file"
// @Param caption formData string false "Caption"
// @Success 201 {object} service.HighlightItem
// @Failure 400 {object} models.ErrorResponse
// @Router /highlights [post]
func (s *Server) CreateHighlight(c *fiber.Ctx) error {
	fh, err := c.FormFile("video")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Video file is required"))
	}
	file, err := fh.Open()
	if err != nil {
		return respondAppError(c, models.NewInternalError(err))
	}
	defer func() { _ = file.Close() }()

	item, err := s.highlightService.Create(c.UserContext(), service.CreateHighlightInput{
		AuthorID:    currentUserID(c),
		Caption:     c.FormValue("caption"),
		Video:       file,
		Size:        fh.Size,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Filename:    fh.Filename,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetHighlight handles GET /api/highlights/:id
// @Summary Highlight detail
// @Description Returns the highlight with its comments and the ids of the previous and next visible highlights. Records a view for authenticated callers.
// @Tags highlights
// @Produce json
// @Param id path int true "Highlight ID"
// @Success 200 {object} service.HighlightDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /highlights/{id} [get]
func (s *Server) GetHighlight(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.highlightService.Get(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(detail)
}

// DeleteHighlight handles DELETE /api/highlights/:id
// @Summary Delete own highlight
// @Tags highlights
// @Security BearerAuth
// @Param id path int true "Highlight ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /highlights/{id} [delete]
func (s *Server) DeleteHighlight(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.highlightService.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AppreciateHighlight handles POST /api/highlights/:id/appreciate
// @Summary React to a highlight
// @Description Sets the caller's appreciation level (1 dislike .. 6 legendary). The author's score moves by the point difference.
// @Tags highlights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Highlight ID"
// @Param request body object{level=int} true "Appreciation level"
// @Success 200 {object} service.AppreciationResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /highlights/{id}/appreciate [post]
func (s *Server) AppreciateHighlight(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Level int `json:"level"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	res, err := s.appreciationService.Appreciate(c.UserContext(), id, currentUserID(c), req.Level)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(res)
}

// GetHighlightComments handles GET /api/highlights/:id/comments
// @Summary List comments, newest first
// @Tags highlights
// @Produce json
// @Param id path int true "Highlight ID"
// @Success 200 {array} models.HighlightComment
// @Failure 404 {object} models.ErrorResponse
// @Router /highlights/{id}/comments [get]
func (s *Server) GetHighlightComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.highlightService.ListComments(c.UserContext(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(comments)
}

// CreateHighlightComment handles POST /api/highlights/:id/comments
// @Summary Comment on a highlight
// @Tags highlights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Highlight ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.HighlightComment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /highlights/{id}/comments [post]
func (s *Server) CreateHighlightComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.highlightService.AddComment(c.UserContext(), id, currentUserID(c), req.Content)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ShareHighlight handles POST /api/highlights/:id/share
// @Summary Share a highlight, optionally with another user
// @Tags highlights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Highlight ID"
// @Param request body object{shared_to=int} false "Recipient"
// @Success 201 {object} object{shared=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /highlights/{id}/share [post]
func (s *Server) ShareHighlight(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		SharedTo *uint `json:"shared_to"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	if err := s.highlightService.Share(c.UserContext(), id, currentUserID(c), req.SharedTo); err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"shared": true})
}

// RecordHighlightView handles POST /api/highlights/:id/view
// @Summary Record a view
// @Description Views are keyed by user, or by client IP for anonymous callers. The longest reported duration is kept.
// @Tags highlights
// @Accept json
// @Produce json
// @Param id path int true "Highlight ID"
// @Param request body object{duration=number} false "Watched seconds"
// @Success 200 {object} service.ViewResult
// @Failure 404 {object} models.ErrorResponse
// @Router /highlights/{id}/view [post]
func (s *Server) RecordHighlightView(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Duration float64 `json:"duration"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	in := service.RecordViewInput{HighlightID: id, Duration: req.Duration}
	if uid := currentUserID(c); uid != 0 {
		in.UserID = &uid
	} else {
		in.IP = c.IP()
	}

	res, err := s.highlightService.RecordView(c.UserContext(), in)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(res)
}

// SearchHighlights handles GET /api/highlights/search?q=...
// @Summary Search visible highlights
// @Description "#tag" matches hashtags; anything else matches usernames and captions.
// @Tags highlights
// @Produce json
// @Param q query string true "Query"
// @Param page query int false "Page (1-based)"
// @Success 200 {object} service.ListPage
// @Failure 400 {object} models.ErrorResponse
// @Router /highlights/search [get]
func (s *Server) SearchHighlights(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultListPageSize)
	page, err := s.highlightService.Search(c.UserContext(), c.Query("q"), currentUserID(c), p.Page, p.PageSize)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(page)
}

// GetHashtagHighlights handles GET /api/highlights/hashtag/:tag
// @Summary Visible highlights carrying a hashtag
// @Tags highlights
// @Produce json
// @Param tag path string true "Hashtag without #"
// @Param page query int false "Page (1-based)"
// @Success 200 {object} service.ListPage
// @Router /highlights/hashtag/{tag} [get]
func (s *Server) GetHashtagHighlights(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultListPageSize)
	page, err := s.highlightService.ByHashtag(c.UserContext(), c.Params("tag"), currentUserID(c), p.Page, p.PageSize)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(page)
}
