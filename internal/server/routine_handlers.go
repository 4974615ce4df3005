package server

import (
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateRoutine handles POST /api/routines. The caller must be a trainer and
// becomes the routine's owner.
// @Summary Create routine
// @Tags routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateRoutineInput true "Routine"
// @Success 201 {object} models.Routine
// @Failure 403 {object} models.ErrorResponse
// @Router /routines [post]
func (s *Server) CreateRoutine(c *fiber.Ctx) error {
	var req service.CreateRoutineInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	routine, err := s.routineService.Create(c.UserContext(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(routine)
}

func (s *Server) SearchRoutines(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	list, err := s.routineService.Search(c.UserContext(), c.Query("termino"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetRoutinesByTrainer(c *fiber.Ctx) error {
	trainerID, err := s.parseID(c, "trainerId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	list, err := s.routineService.ListByTrainer(c.UserContext(), trainerID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetRoutinesByDifficulty(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	list, err := s.routineService.ListByDifficulty(c.UserContext(), models.Difficulty(c.Params("level")), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetRoutine(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	routine, err := s.routineService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(routine)
}

func (s *Server) UpdateRoutine(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.RoutinePatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	routine, err := s.routineService.Update(c.UserContext(), middleware.CurrentPrincipal(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(routine)
}

// DeleteRoutine removes the routine together with its exercise links.
func (s *Server) DeleteRoutine(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.routineService.Delete(c.UserContext(), middleware.CurrentPrincipal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "routine deleted"})
}

func (s *Server) GetRoutineExercises(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	links, err := s.routineService.ListExercises(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(links)
}

func (s *Server) AddRoutineExercise(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.AddRoutineExerciseInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	link, err := s.routineService.AddExercise(c.UserContext(), middleware.CurrentPrincipal(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

// ReorderRoutineExercises handles PUT /api/routines/:id/exercises/order
// with {items:[{exercise_id, order}]}. The batch is applied atomically.
func (s *Server) ReorderRoutineExercises(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Items []models.OrderItem `json:"items"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	links, err := s.routineService.ReorderExercises(c.UserContext(), middleware.CurrentPrincipal(c), id, req.Items)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(links)
}

func (s *Server) UpdateRoutineExercise(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	exerciseID, err := s.parseID(c, "exerciseId")
	if err != nil {
		return nil
	}
	var patch models.RoutineExercisePatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	link, err := s.routineService.UpdateExercise(c.UserContext(), middleware.CurrentPrincipal(c), id, exerciseID, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(link)
}

func (s *Server) RemoveRoutineExercise(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	exerciseID, err := s.parseID(c, "exerciseId")
	if err != nil {
		return nil
	}
	if err := s.routineService.RemoveExercise(c.UserContext(), middleware.CurrentPrincipal(c), id, exerciseID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "exercise removed from routine"})
}
