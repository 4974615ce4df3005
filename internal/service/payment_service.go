package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"
	"fittlyfans/internal/repository"
	"fittlyfans/internal/validation"
)

type PaymentService struct {
	repo repository.PaymentRepository
	log  *observability.RepoLogger
}

type CreatePaymentInput struct {
	Amount      float64              `json:"amount"`
	Method      models.PaymentMethod `json:"method"`
	Description string               `json:"description"`
}

type UpdatePaymentStatusInput struct {
	Status      models.PaymentStatus `json:"status"`
	Description *string              `json:"description"`
}

func NewPaymentService(repo repository.PaymentRepository) *PaymentService {
	return &PaymentService{repo: repo, log: observability.NewRepoLogger("payment")}
}

// Create records a pending payment made by the calling subscriber.
func (s *PaymentService) Create(ctx context.Context, actor *middleware.Principal, in CreatePaymentInput) (*models.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.Role != models.RoleSubscriber {
		return nil, models.NewForbiddenError("only subscribers can make payments")
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, models.NewValidationError("amount must be greater than zero")
	}
	if err := validation.OneOf("method", in.Method, models.MethodCard, models.MethodPaypal, models.MethodTransfer); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		SubscriberID: actor.UserID,
		Amount:       math.Round(in.Amount*100) / 100,
		Method:       in.Method,
		Status:       models.PaymentPending,
		Description:  strings.TrimSpace(in.Description),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, slog.Uint64("payment_id", uint64(payment.ID)), slog.String("method", string(payment.Method)))
	observability.RecordDomainEvent("payment", "create")

	return s.repo.GetByID(ctx, payment.ID)
}

func (s *PaymentService) Get(ctx context.Context, actor *middleware.Principal, id uint) (*models.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(payment.SubscriberID) {
		return nil, models.NewForbiddenError("not allowed to view this payment")
	}
	return payment, nil
}

// UpdateStatus lets admins settle any payment. A payer may only mark their
// own pending payment as failed.
func (s *PaymentService) UpdateStatus(ctx context.Context, actor *middleware.Principal, id uint, in UpdatePaymentStatusInput) (*models.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validation.OneOf("status", in.Status, models.PaymentPending, models.PaymentCompleted, models.PaymentFailed); err != nil {
		return nil, err
	}
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		payerCancelling := payment.SubscriberID == actor.UserID &&
			payment.Status == models.PaymentPending &&
			in.Status == models.PaymentFailed
		if !payerCancelling {
			return nil, models.NewForbiddenError("not allowed to change this payment")
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, in.Status, in.Description); err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, slog.Uint64("payment_id", uint64(id)), slog.String("status", string(in.Status)))
	observability.RecordDomainEvent("payment", string(in.Status))
	return s.repo.GetByID(ctx, id)
}

func (s *PaymentService) ListMine(ctx context.Context, actor *middleware.Principal, limit, offset int) ([]models.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repo.ListBySubscriber(ctx, actor.UserID, limit, offset)
}

func (s *PaymentService) ListByStatus(ctx context.Context, actor *middleware.Principal, status models.PaymentStatus, limit, offset int) ([]models.Payment, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validation.OneOf("status", status, models.PaymentPending, models.PaymentCompleted, models.PaymentFailed); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// Stats aggregates every payment for admins who do not ask for their own.
// Everyone else gets their own figures.
func (s *PaymentService) Stats(ctx context.Context, actor *middleware.Principal, mine bool) (*models.PaymentStats, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.IsAdmin() && !mine {
		return s.repo.Stats(ctx, nil)
	}
	id := actor.UserID
	return s.repo.Stats(ctx, &id)
}
