package server

import (
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateContent handles POST /api/content. The caller is the author.
// @Summary Publish content
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateContentInput true "Content"
// @Success 201 {object} models.Content
// @Failure 400 {object} models.ErrorResponse
// @Router /content [post]
func (s *Server) CreateContent(c *fiber.Ctx) error {
	var req service.CreateContentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	content, err := s.contentService.Create(c.UserContext(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(content)
}

func (s *Server) SearchContent(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	list, err := s.contentService.Search(c.UserContext(), c.Query("termino"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetContentByUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	list, err := s.contentService.ListByUser(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetContentByType(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	list, err := s.contentService.ListByType(c.UserContext(), models.ContentType(c.Params("type")), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetContent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	content, err := s.contentService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(content)
}

func (s *Server) UpdateContent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.ContentPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	content, err := s.contentService.Update(c.UserContext(), middleware.CurrentPrincipal(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(content)
}

// DeleteContent removes the post, its comments and any stored image.
func (s *Server) DeleteContent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.contentService.Delete(c.UserContext(), middleware.CurrentPrincipal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "content deleted"})
}

// UploadContentImage handles POST /api/content/:id/image. The picture is
// stored as webp.
// @Summary Attach image to content
// @Tags content
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Param image formData file true "Image file"
// @Success 200 {object} models.Content
// @Failure 400 {object} models.ErrorResponse
// @Router /content/{id}/image [post]
func (s *Server) UploadContentImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	data, _, err := readUpload(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	content, err := s.contentService.AttachImage(c.UserContext(), middleware.CurrentPrincipal(c), id, data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(content)
}
