package server

import (
	"fittlyfans/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type followRequest struct {
	FollowedID uint `json:"followed_id"`
}

// followedID reads followed_id from the JSON body, or from the query string
// when the request has no body.
func followedID(c *fiber.Ctx) (uint, error) {
	if len(c.Body()) == 0 {
		return uint(max(c.QueryInt("followed_id", 0), 0)), nil
	}
	var req followRequest
	if err := parseBody(c, &req); err != nil {
		return 0, err
	}
	return req.FollowedID, nil
}

// Follow handles POST /api/subscriptions
// @Summary Follow a user
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body followRequest true "User to follow"
// @Success 201 {object} models.Subscription
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /subscriptions [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	target, err := followedID(c)
	if err != nil {
		return nil
	}
	sub, err := s.subscriptionService.Follow(c.UserContext(), middleware.CurrentPrincipal(c), target)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// Unfollow handles DELETE /api/subscriptions
func (s *Server) Unfollow(c *fiber.Ctx) error {
	target, err := followedID(c)
	if err != nil {
		return nil
	}
	if err := s.subscriptionService.Unfollow(c.UserContext(), middleware.CurrentPrincipal(c), target); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "unfollowed"})
}

// CheckFollowing reports whether the caller follows followed_id.
func (s *Server) CheckFollowing(c *fiber.Ctx) error {
	target, err := s.parseQueryID(c, "followed_id")
	if err != nil {
		return nil
	}
	following, err := s.subscriptionService.IsFollowing(c.UserContext(), middleware.CurrentPrincipal(c).UserID, target)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

func (s *Server) CheckMutual(c *fiber.Ctx) error {
	follower, err := s.parseQueryID(c, "follower_id")
	if err != nil {
		return nil
	}
	followed, err := s.parseQueryID(c, "followed_id")
	if err != nil {
		return nil
	}
	mutual, err := s.subscriptionService.IsMutual(c.UserContext(), follower, followed)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"mutual": mutual})
}

func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	list, err := s.subscriptionService.Followers(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	list, err := s.subscriptionService.Following(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) CountFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	n, err := s.subscriptionService.CountFollowers(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user_id": userID, "followers": n})
}

func (s *Server) CountFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	n, err := s.subscriptionService.CountFollowing(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user_id": userID, "following": n})
}
