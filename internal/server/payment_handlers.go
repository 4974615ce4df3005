package server

import (
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePayment handles POST /api/payments. Only subscribers pay; the
// payment starts pending.
// @Summary Create payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePaymentInput true "Payment"
// @Success 201 {object} models.Payment
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /payments [post]
func (s *Server) CreatePayment(c *fiber.Ctx) error {
	var req service.CreatePaymentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	payment, err := s.paymentService.Create(c.UserContext(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (s *Server) GetMyPayments(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	list, err := s.paymentService.ListMine(c.UserContext(), middleware.CurrentPrincipal(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetPaymentsByStatus is admin only.
func (s *Server) GetPaymentsByStatus(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	list, err := s.paymentService.ListByStatus(c.UserContext(), middleware.CurrentPrincipal(c),
		models.PaymentStatus(c.Params("status")), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetPaymentStats handles GET /api/payments/stats?mine=true
func (s *Server) GetPaymentStats(c *fiber.Ctx) error {
	stats, err := s.paymentService.Stats(c.UserContext(), middleware.CurrentPrincipal(c), c.QueryBool("mine", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (s *Server) GetPayment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	payment, err := s.paymentService.Get(c.UserContext(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

// UpdatePaymentStatus handles PUT /api/payments/:id with {status, description?}.
func (s *Server) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdatePaymentStatusInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	payment, err := s.paymentService.UpdateStatus(c.UserContext(), middleware.CurrentPrincipal(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}
