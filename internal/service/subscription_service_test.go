package service

import (
	"context"
	"testing"

	"fittlyfans/internal/models"
	"fittlyfans/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionService_FollowGraph(t *testing.T) {
	db := setupDB(t)
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db), repository.NewUserRepository(db))
	ctx := context.Background()

	ana := principal(seedUser(t, db, "ana", models.RoleSubscriber))
	coach := principal(seedUser(t, db, "coach", models.RoleTrainer))

	_, err := svc.Follow(ctx, ana, ana.UserID)
	assertValidationError(t, err)
	_, err = svc.Follow(ctx, ana, 999)
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.Follow(ctx, ana, coach.UserID)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, ana, coach.UserID)
	assertCode(t, err, models.CodeConflict)

	counts, err := svc.Counts(ctx, coach.UserID)
	require.NoError(t, err)
	assert.Equal(t, FollowCounts{Followers: 1, Following: 0}, counts, "duplicate follow leaves counts unchanged")

	mutual, err := svc.IsMutual(ctx, ana.UserID, coach.UserID)
	require.NoError(t, err)
	assert.False(t, mutual)

	_, err = svc.Follow(ctx, coach, ana.UserID)
	require.NoError(t, err)
	mutual, err = svc.IsMutual(ctx, ana.UserID, coach.UserID)
	require.NoError(t, err)
	assert.True(t, mutual)

	followers, err := svc.Followers(ctx, coach.UserID, 10, 0)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "ana", followers[0].Name)

	require.NoError(t, svc.Unfollow(ctx, ana, coach.UserID))
	assertCode(t, svc.Unfollow(ctx, ana, coach.UserID), models.CodeNotFound)

	following, err := svc.IsFollowing(ctx, ana.UserID, coach.UserID)
	require.NoError(t, err)
	assert.False(t, following)

	_, err = svc.IsFollowing(ctx, 0, coach.UserID)
	assertValidationError(t, err)
}
