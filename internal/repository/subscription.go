package repository

import (
	"context"
	"fmt"

	"fittlyfans/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository manages the directed follow graph between users.
type SubscriptionRepository interface {
	Follow(ctx context.Context, followerID, followedID uint) (*models.Subscription, error)
	Unfollow(ctx context.Context, followerID, followedID uint) error
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.FollowEntry, error)
	ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.FollowEntry, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Follow(ctx context.Context, followerID, followedID uint) (*models.Subscription, error) {
	sub := &models.Subscription{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, mapWriteError(err, "already following this user")
	}
	return sub, nil
}

func (r *subscriptionRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Subscription", fmt.Sprintf("%d->%d", followerID, followedID))
	}
	return nil
}

func (r *subscriptionRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return exists(ctx, r.db, &models.Subscription{}, "follower_id = ? AND followed_id = ?", followerID, followedID)
}

// ListFollowers returns the users following userID, newest first.
func (r *subscriptionRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.FollowEntry, error) {
	return r.edges(ctx, "follower_id", "followed_id", userID, limit, offset)
}

// ListFollowing returns the users userID follows, newest first.
func (r *subscriptionRepository) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.FollowEntry, error) {
	return r.edges(ctx, "followed_id", "follower_id", userID, limit, offset)
}

// edges lists the party in column other for every edge whose column self is userID.
func (r *subscriptionRepository) edges(ctx context.Context, other, self string, userID uint, limit, offset int) ([]models.FollowEntry, error) {
	entries := []models.FollowEntry{}
	if err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select("subscriptions."+other+" AS user_id, users.name, users.role, subscriptions.created_at AS followed_at").
		Joins("JOIN users ON users.id = subscriptions."+other).
		Where("subscriptions."+self+" = ?", userID).
		Order("subscriptions.created_at DESC, subscriptions.id DESC").
		Scopes(paginate(limit, offset)).
		Scan(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *subscriptionRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "followed_id = ?", userID)
}

func (r *subscriptionRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "follower_id = ?", userID)
}

func (r *subscriptionRepository) count(ctx context.Context, where string, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).Where(where, userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
