package server

import (
	"fittlyfans/internal/models"
	"fittlyfans/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) CreateExperience(c *fiber.Ctx) error {
	var req service.CreateExperienceInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	exp, err := s.experienceService.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(exp)
}

func (s *Server) GetExperiences(c *fiber.Ctx) error {
	page := parsePagination(c, catalogPageSize)
	exps, err := s.experienceService.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exps)
}

func (s *Server) SearchExperiences(c *fiber.Ctx) error {
	page := parsePagination(c, catalogPageSize)
	exps, err := s.experienceService.Search(c.UserContext(), c.Query("termino"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exps)
}

func (s *Server) GetExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	exp, err := s.experienceService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exp)
}

func (s *Server) UpdateExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.ExperiencePatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	exp, err := s.experienceService.Update(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exp)
}

func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.experienceService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "experience deleted"})
}
