package server

import (
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateExercise handles POST /api/exercises (trainer or admin).
// @Summary Create exercise
// @Tags exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateExerciseInput true "Exercise"
// @Success 201 {object} models.Exercise
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /exercises [post]
func (s *Server) CreateExercise(c *fiber.Ctx) error {
	var req service.CreateExerciseInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	ex, err := s.exerciseService.Create(c.UserContext(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ex)
}

func (s *Server) GetExercises(c *fiber.Ctx) error {
	page := parsePagination(c, catalogPageSize)
	list, err := s.exerciseService.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) SearchExercises(c *fiber.Ctx) error {
	page := parsePagination(c, catalogPageSize)
	list, err := s.exerciseService.Search(c.UserContext(), c.Query("termino"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetExercisesByMuscleGroup(c *fiber.Ctx) error {
	page := parsePagination(c, catalogPageSize)
	list, err := s.exerciseService.ListByMuscleGroup(c.UserContext(), c.Params("group"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetExercisesByType(c *fiber.Ctx) error {
	page := parsePagination(c, catalogPageSize)
	list, err := s.exerciseService.ListByType(c.UserContext(), models.ExerciseType(c.Params("type")), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetExercise(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	ex, err := s.exerciseService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ex)
}

func (s *Server) UpdateExercise(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.ExercisePatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	ex, err := s.exerciseService.Update(c.UserContext(), middleware.CurrentPrincipal(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ex)
}

func (s *Server) DeleteExercise(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.exerciseService.Delete(c.UserContext(), middleware.CurrentPrincipal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "exercise deleted"})
}

// UploadExerciseVideo handles POST /api/exercises/:id/video
// @Summary Upload exercise video
// @Description Accepts mp4, mov, avi, webm or 3gp in the multipart field "video"
// @Tags exercises
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exercise ID"
// @Param video formData file true "Video file"
// @Success 200 {object} models.Exercise
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /exercises/{id}/video [post]
func (s *Server) UploadExerciseVideo(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	data, name, err := readUpload(c, "video")
	if err != nil {
		return respondError(c, err)
	}

	ex, err := s.exerciseService.AttachVideo(c.UserContext(), middleware.CurrentPrincipal(c), id, name, data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ex)
}
