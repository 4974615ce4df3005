package server

import (
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateConversation handles POST /api/conversations. The caller must be one
// of the two participants.
// @Summary Open a subscriber/trainer conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateConversationInput true "Participants"
// @Success 201 {object} models.Conversation
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /conversations [post]
func (s *Server) CreateConversation(c *fiber.Ctx) error {
	var req service.CreateConversationInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	conv, err := s.conversationService.Create(c.UserContext(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

func (s *Server) GetSubscriberConversations(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	list, err := s.conversationService.ListBySubscriber(c.UserContext(), middleware.CurrentPrincipal(c), id, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetTrainerConversations(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	list, err := s.conversationService.ListByTrainer(c.UserContext(), middleware.CurrentPrincipal(c), id, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) GetConversation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	conv, err := s.conversationService.Participant(c.UserContext(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// DeleteConversation removes the thread and all of its messages.
func (s *Server) DeleteConversation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.conversationService.Delete(c.UserContext(), middleware.CurrentPrincipal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "conversation deleted"})
}

// UpdateConversationState handles PUT /api/conversations/:id/state with {state}.
func (s *Server) UpdateConversationState(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		State models.ConversationState `json:"state"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	conv, err := s.conversationService.UpdateState(c.UserContext(), middleware.CurrentPrincipal(c), id, req.State)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

func (s *Server) GetMessages(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, catalogPageSize)
	msgs, err := s.conversationService.ListMessages(c.UserContext(), middleware.CurrentPrincipal(c), id, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

// MarkConversationRead flags every message the caller received in the thread.
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	n, err := s.conversationService.MarkRead(c.UserContext(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// SendMessage handles POST /api/messages
// @Summary Send a message
// @Description Stores the message and pushes it to websocket subscribers of the conversation
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SendMessageInput true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req service.SendMessageInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.conversationService.SendMessage(c.UserContext(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	n, err := s.conversationService.CountUnread(c.UserContext(), middleware.CurrentPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.conversationService.DeleteMessage(c.UserContext(), middleware.CurrentPrincipal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "message deleted"})
}
