package repository

import (
	"context"
	"time"

	"fittlyfans/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository defines persistence operations for subscriber payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id uint, status models.PaymentStatus, description *string) error
	ListBySubscriber(ctx context.Context, subscriberID uint, limit, offset int) ([]models.Payment, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus, limit, offset int) ([]models.Payment, error)
	Stats(ctx context.Context, subscriberID *uint) (*models.PaymentStats, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository returns a new PaymentRepository implementation.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func paymentView(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Payment{}).
		Select("payments.*, users.name AS subscriber_name").
		Joins("LEFT JOIN users ON users.id = payments.subscriber_id")
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Scopes(paymentView).Where("payments.id = ?", id).Take(&payment).Error; err != nil {
		return nil, mapReadError(err, "Payment", id)
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id uint, status models.PaymentStatus, description *string) error {
	cols := map[string]any{"status": status}
	if description != nil {
		cols["description"] = *description
	}
	res := r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Payment", id)
	}
	return nil
}

func (r *paymentRepository) ListBySubscriber(ctx context.Context, subscriberID uint, limit, offset int) ([]models.Payment, error) {
	return r.list(ctx, limit, offset, "payments.subscriber_id = ?", subscriberID)
}

func (r *paymentRepository) ListByStatus(ctx context.Context, status models.PaymentStatus, limit, offset int) ([]models.Payment, error) {
	return r.list(ctx, limit, offset, "payments.status = ?", status)
}

func (r *paymentRepository) list(ctx context.Context, limit, offset int, where string, args ...any) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).
		Scopes(paymentView, paginate(limit, offset)).
		Where(where, args...).
		Order("payments.paid_at DESC, payments.id DESC").
		Find(&payments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return payments, nil
}

// Stats aggregates payment counts per status and the amount collected by
// completed payments. A nil subscriberID aggregates over every payment.
func (r *paymentRepository) Stats(ctx context.Context, subscriberID *uint) (*models.PaymentStats, error) {
	q := r.db.WithContext(ctx).Model(&models.Payment{}).Select(
		"COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed, " +
			"COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending, " +
			"COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed, " +
			"COALESCE(SUM(CASE WHEN status = 'completed' THEN amount ELSE 0 END), 0) AS total_collected")
	if subscriberID != nil {
		q = q.Where("subscriber_id = ?", *subscriberID)
	}

	var stats models.PaymentStats
	if err := q.Scan(&stats).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}
