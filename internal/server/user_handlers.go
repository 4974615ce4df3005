package server

import (
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users?limite&offset&termino
// @Summary List or search users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param termino query string false "Search term over name and email"
// @Param limite query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	users, err := s.userService.SearchUsers(c.UserContext(), c.Query("termino"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/:id. Only the user or an admin may
// update; only an admin may change the role to admin.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateUserInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateUser(c.UserContext(), middleware.CurrentPrincipal(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id and everything the user owns.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.DeleteUser(c.UserContext(), middleware.CurrentPrincipal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "user deleted"})
}
