package models

import "time"

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	MethodCard     PaymentMethod = "card"
	MethodPaypal   PaymentMethod = "paypal"
	MethodTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodPaypal, MethodTransfer:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// Payment is a charge made by a subscriber.
type Payment struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	SubscriberID uint          `gorm:"not null;index" json:"subscriber_id"`
	Amount       float64       `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method       PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Status       PaymentStatus `gorm:"type:varchar(20);default:'pending';not null;index" json:"status"`
	Description  string        `gorm:"type:text" json:"description"`
	PaidAt       time.Time     `gorm:"not null;index" json:"paid_at"`

	SubscriberName string `gorm:"->;-:migration" json:"subscriber_name,omitempty"`
}

// PaymentStats aggregates payments by status.
type PaymentStats struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	Pending        int64   `json:"pending"`
	Failed         int64   `json:"failed"`
	TotalCollected float64 `json:"total_collected"`
}
