package service

import (
	"context"
	"log/slog"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"
	"fittlyfans/internal/repository"
)

// SubscriptionService manages the follow graph.
type SubscriptionService struct {
	subs  repository.SubscriptionRepository
	users repository.UserRepository
	log   *observability.RepoLogger
}

// FollowCounts summarises both directions of a user's follow graph.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

func NewSubscriptionService(subs repository.SubscriptionRepository, users repository.UserRepository) *SubscriptionService {
	return &SubscriptionService{subs: subs, users: users, log: observability.NewRepoLogger("subscription")}
}

func (s *SubscriptionService) Follow(ctx context.Context, actor *middleware.Principal, followedID uint) (*models.Subscription, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if followedID == 0 {
		return nil, models.NewValidationError("followed_id is required")
	}
	if followedID == actor.UserID {
		return nil, models.NewValidationError("you cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, followedID); err != nil {
		return nil, err
	}

	sub, err := s.subs.Follow(ctx, actor.UserID, followedID)
	if err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, slog.Uint64("follower_id", uint64(actor.UserID)), slog.Uint64("followed_id", uint64(followedID)))
	observability.RecordDomainEvent("subscription", "follow")
	return sub, nil
}

func (s *SubscriptionService) Unfollow(ctx context.Context, actor *middleware.Principal, followedID uint) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if followedID == 0 {
		return models.NewValidationError("followed_id is required")
	}
	if err := s.subs.Unfollow(ctx, actor.UserID, followedID); err != nil {
		return err
	}
	s.log.LogDelete(ctx, slog.Uint64("follower_id", uint64(actor.UserID)), slog.Uint64("followed_id", uint64(followedID)))
	observability.RecordDomainEvent("subscription", "unfollow")
	return nil
}

func (s *SubscriptionService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == 0 || followedID == 0 {
		return false, models.NewValidationError("follower_id and followed_id are required")
	}
	return s.subs.IsFollowing(ctx, followerID, followedID)
}

// IsMutual reports whether a and b follow each other.
func (s *SubscriptionService) IsMutual(ctx context.Context, a, b uint) (bool, error) {
	ab, err := s.IsFollowing(ctx, a, b)
	if err != nil || !ab {
		return false, err
	}
	return s.subs.IsFollowing(ctx, b, a)
}

func (s *SubscriptionService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.FollowEntry, error) {
	return s.subs.ListFollowers(ctx, userID, limit, offset)
}

func (s *SubscriptionService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.FollowEntry, error) {
	return s.subs.ListFollowing(ctx, userID, limit, offset)
}

func (s *SubscriptionService) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.subs.CountFollowers(ctx, userID)
}

func (s *SubscriptionService) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.subs.CountFollowing(ctx, userID)
}

func (s *SubscriptionService) Counts(ctx context.Context, userID uint) (FollowCounts, error) {
	followers, err := s.subs.CountFollowers(ctx, userID)
	if err != nil {
		return FollowCounts{}, err
	}
	following, err := s.subs.CountFollowing(ctx, userID)
	if err != nil {
		return FollowCounts{}, err
	}
	return FollowCounts{Followers: followers, Following: following}, nil
}
