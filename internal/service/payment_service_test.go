package service

import (
	"context"
	"math"
	"testing"

	"fittlyfans/internal/models"
	"fittlyfans/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentService_Lifecycle(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(repository.NewPaymentRepository(db))
	ctx := context.Background()

	sub := principal(seedUser(t, db, "sub", models.RoleSubscriber))
	otherSub := principal(seedUser(t, db, "other", models.RoleSubscriber))
	coach := principal(seedUser(t, db, "coach", models.RoleTrainer))
	admin := principal(seedUser(t, db, "root", models.RoleAdmin))

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, coach, CreatePaymentInput{Amount: 10, Method: models.MethodCard})
		assertForbiddenError(t, err)
		for _, amount := range []float64{0, -5, math.NaN()} {
			_, err = svc.Create(ctx, sub, CreatePaymentInput{Amount: amount, Method: models.MethodCard})
			assertValidationError(t, err)
		}
		_, err = svc.Create(ctx, sub, CreatePaymentInput{Amount: 10, Method: "bitcoin"})
		assertValidationError(t, err)
	})

	p1, err := svc.Create(ctx, sub, CreatePaymentInput{Amount: 19.999, Method: models.MethodCard, Description: "mensualidad"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p1.Status)
	assert.InDelta(t, 20.00, p1.Amount, 0.001)
	assert.Equal(t, "sub", p1.SubscriberName)

	p2, err := svc.Create(ctx, sub, CreatePaymentInput{Amount: 5, Method: models.MethodPaypal})
	require.NoError(t, err)

	_, err = svc.Get(ctx, otherSub, p1.ID)
	assertForbiddenError(t, err)
	_, err = svc.Get(ctx, admin, p1.ID)
	require.NoError(t, err)

	// The payer may only abandon a pending payment.
	_, err = svc.UpdateStatus(ctx, sub, p1.ID, UpdatePaymentStatusInput{Status: models.PaymentCompleted})
	assertForbiddenError(t, err)
	failed, err := svc.UpdateStatus(ctx, sub, p2.ID, UpdatePaymentStatusInput{Status: models.PaymentFailed})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, failed.Status)
	_, err = svc.UpdateStatus(ctx, sub, p2.ID, UpdatePaymentStatusInput{Status: models.PaymentFailed})
	assertForbiddenError(t, err)

	note := "cobrado"
	done, err := svc.UpdateStatus(ctx, admin, p1.ID, UpdatePaymentStatusInput{Status: models.PaymentCompleted, Description: &note})
	require.NoError(t, err)
	assert.Equal(t, "cobrado", done.Description)

	_, err = svc.UpdateStatus(ctx, admin, p1.ID, UpdatePaymentStatusInput{Status: "refunded"})
	assertValidationError(t, err)

	_, err = svc.ListByStatus(ctx, sub, models.PaymentCompleted, 10, 0)
	assertForbiddenError(t, err)
	completed, err := svc.ListByStatus(ctx, admin, models.PaymentCompleted, 10, 0)
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	mine, err := svc.ListMine(ctx, sub, 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = svc.Create(ctx, otherSub, CreatePaymentInput{Amount: 7, Method: models.MethodTransfer})
	require.NoError(t, err)

	own, err := svc.Stats(ctx, sub, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, own.Total)
	assert.EqualValues(t, 1, own.Completed)
	assert.EqualValues(t, 1, own.Failed)
	assert.InDelta(t, 20.0, own.TotalCollected, 0.001)

	all, err := svc.Stats(ctx, admin, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.EqualValues(t, 1, all.Pending)

	adminOwn, err := svc.Stats(ctx, admin, true)
	require.NoError(t, err)
	assert.Zero(t, adminOwn.Total)
}
