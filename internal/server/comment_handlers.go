package server

import (
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment creates a comment on a content post (protected)
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req service.CreateCommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	comment, err := s.commentService.CreateComment(c.UserContext(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// GetCommentsByContent returns the comments of a post, oldest first.
func (s *Server) GetCommentsByContent(c *fiber.Ctx) error {
	contentID, err := s.parseID(c, "contentId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	comments, err := s.commentService.ListByContent(c.UserContext(), contentID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

func (s *Server) GetCommentsByUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	comments, err := s.commentService.ListByUser(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// UpdateComment lets the author edit the text.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), middleware.CurrentPrincipal(c), id, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), middleware.CurrentPrincipal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "comment deleted"})
}
