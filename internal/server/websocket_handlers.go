package server

import (
	"encoding/json"
	"log/slog"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const conversationLocal = "conversationID"

// ConversationStreamUpgrade runs before the websocket handshake. It rejects
// plain HTTP requests and callers outside the conversation.
func (s *Server) ConversationStreamUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.NewValidationError("websocket upgrade required"))
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.conversationService.Participant(c.UserContext(), middleware.CurrentPrincipal(c), id); err != nil {
		return respondError(c, err)
	}
	c.Locals(conversationLocal, id)
	return c.Next()
}

// ConversationStream streams message.created events of one conversation.
// Inbound frames are ignored apart from control traffic.
func (s *Server) ConversationStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		convID, _ := conn.Locals(conversationLocal).(uint)
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(convID, userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register rejected",
				slog.Uint64("user_id", uint64(userID)),
				slog.Uint64("conversation_id", uint64(convID)),
				slog.String("error", err.Error()),
			)
			payload, _ := json.Marshal(models.ErrorResponse{Error: err.Error()})
			_ = conn.WriteMessage(websocket.TextMessage, payload)
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
