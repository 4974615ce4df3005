package server

import (
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateSubscriber handles POST /api/subscribers. The caller becomes a subscriber.
// @Summary Create own subscriber profile
// @Tags subscribers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateSubscriberInput true "Profile"
// @Success 201 {object} models.Subscriber
// @Failure 409 {object} models.ErrorResponse
// @Router /subscribers [post]
func (s *Server) CreateSubscriber(c *fiber.Ctx) error {
	var req service.CreateSubscriberInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	sub, err := s.profileService.CreateSubscriber(c.UserContext(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GetSubscribers handles GET /api/subscribers?nivel (trainer or admin).
func (s *Server) GetSubscribers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	subs, err := s.profileService.ListSubscribers(c.UserContext(), middleware.CurrentPrincipal(c),
		c.Query("nivel"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(subs)
}

func (s *Server) GetSubscriber(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	sub, err := s.profileService.GetSubscriber(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

func (s *Server) UpdateSubscriber(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.SubscriberPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	sub, err := s.profileService.UpdateSubscriber(c.UserContext(), middleware.CurrentPrincipal(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// CreateTrainer handles POST /api/trainers. The caller becomes a trainer.
// @Summary Create own trainer profile
// @Tags trainers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateTrainerInput true "Profile"
// @Success 201 {object} models.Trainer
// @Failure 409 {object} models.ErrorResponse
// @Router /trainers [post]
func (s *Server) CreateTrainer(c *fiber.Ctx) error {
	var req service.CreateTrainerInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	trainer, err := s.profileService.CreateTrainer(c.UserContext(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(trainer)
}

func (s *Server) GetTrainers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	trainers, err := s.profileService.ListTrainers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(trainers)
}

// SearchTrainers handles GET /api/trainers/search?especialidad
func (s *Server) SearchTrainers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	trainers, err := s.profileService.SearchTrainers(c.UserContext(), c.Query("especialidad"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(trainers)
}

func (s *Server) GetTrainer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	trainer, err := s.profileService.GetTrainer(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(trainer)
}

func (s *Server) UpdateTrainer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.TrainerPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	trainer, err := s.profileService.UpdateTrainer(c.UserContext(), middleware.CurrentPrincipal(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(trainer)
}
