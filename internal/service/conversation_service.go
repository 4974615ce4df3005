package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"
	"fittlyfans/internal/repository"
	"fittlyfans/internal/validation"
)

const maxMessageLen = 4000

// MessagePublisher pushes stored messages to live subscribers.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, msg *models.Message)
}

// ConversationService covers conversations and the messages inside them.
type ConversationService struct {
	convs     repository.ConversationRepository
	messages  repository.MessageRepository
	users     repository.UserRepository
	publisher MessagePublisher
	log       *observability.RepoLogger
}

type CreateConversationInput struct {
	SubscriberID uint `json:"subscriber_id"`
	TrainerID    uint `json:"trainer_id"`
}

type SendMessageInput struct {
	ConversationID uint   `json:"conversation_id"`
	Text           string `json:"text"`
}

func NewConversationService(
	convs repository.ConversationRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	publisher MessagePublisher,
) *ConversationService {
	return &ConversationService{
		convs:     convs,
		messages:  messages,
		users:     users,
		publisher: publisher,
		log:       observability.NewRepoLogger("conversation"),
	}
}

func (s *ConversationService) requireRoleOf(ctx context.Context, userID uint, role models.Role, field string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != role {
		return models.NewValidationError(field + " must belong to a " + string(role))
	}
	return nil
}

func (s *ConversationService) Create(ctx context.Context, actor *middleware.Principal, in CreateConversationInput) (*models.Conversation, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if in.SubscriberID == 0 || in.TrainerID == 0 {
		return nil, models.NewValidationError("subscriber_id and trainer_id are required")
	}
	if actor.UserID != in.SubscriberID && actor.UserID != in.TrainerID {
		return nil, models.NewForbiddenError("you must be a participant of the conversation")
	}
	if err := s.requireRoleOf(ctx, in.SubscriberID, models.RoleSubscriber, "subscriber_id"); err != nil {
		return nil, err
	}
	if err := s.requireRoleOf(ctx, in.TrainerID, models.RoleTrainer, "trainer_id"); err != nil {
		return nil, err
	}

	conv := &models.Conversation{
		SubscriberID: in.SubscriberID,
		TrainerID:    in.TrainerID,
		State:        models.ConversationActive,
	}
	if err := s.convs.Create(ctx, conv); err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, slog.Uint64("conversation_id", uint64(conv.ID)))
	observability.RecordDomainEvent("conversation", "create")
	return conv, nil
}

// Participant loads the conversation and checks the caller takes part in it.
func (s *ConversationService) Participant(ctx context.Context, actor *middleware.Principal, id uint) (*models.Conversation, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	conv, err := s.convs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(actor.UserID) {
		return nil, models.NewForbiddenError("you are not a participant of this conversation")
	}
	return conv, nil
}

func (s *ConversationService) ListBySubscriber(ctx context.Context, actor *middleware.Principal, subscriberID uint, limit, offset int) ([]models.Conversation, error) {
	if err := requireSelfOrAdmin(actor, subscriberID, "conversation list"); err != nil {
		return nil, err
	}
	return s.convs.ListBySubscriber(ctx, subscriberID, limit, offset)
}

func (s *ConversationService) ListByTrainer(ctx context.Context, actor *middleware.Principal, trainerID uint, limit, offset int) ([]models.Conversation, error) {
	if err := requireSelfOrAdmin(actor, trainerID, "conversation list"); err != nil {
		return nil, err
	}
	return s.convs.ListByTrainer(ctx, trainerID, limit, offset)
}

func (s *ConversationService) UpdateState(ctx context.Context, actor *middleware.Principal, id uint, state models.ConversationState) (*models.Conversation, error) {
	if err := validation.OneOf("state", state, models.ConversationActive, models.ConversationArchived); err != nil {
		return nil, err
	}
	if _, err := s.Participant(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.convs.UpdateState(ctx, id, state); err != nil {
		return nil, err
	}
	s.log.LogUpdate(ctx, slog.Uint64("conversation_id", uint64(id)), slog.String("state", string(state)))
	return s.convs.GetByID(ctx, id)
}

// Delete removes the conversation and all of its messages.
func (s *ConversationService) Delete(ctx context.Context, actor *middleware.Principal, id uint) error {
	if _, err := s.Participant(ctx, actor, id); err != nil {
		return err
	}
	if err := s.convs.Delete(ctx, id); err != nil {
		return err
	}
	s.log.LogDelete(ctx, slog.Uint64("conversation_id", uint64(id)), slog.Uint64("by", uint64(actor.UserID)))
	observability.RecordDomainEvent("conversation", "delete")
	return nil
}

// SendMessage stores a message in an active conversation and announces it.
func (s *ConversationService) SendMessage(ctx context.Context, actor *middleware.Principal, in SendMessageInput) (*models.Message, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("text is required")
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return nil, models.NewValidationError("message too long (max 4000 characters)")
	}
	if in.ConversationID == 0 {
		return nil, models.NewValidationError("conversation_id is required")
	}
	conv, err := s.Participant(ctx, actor, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv.State != models.ConversationActive {
		return nil, models.NewValidationError("conversation is archived")
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       actor.UserID,
		Text:           text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	observability.RecordDomainEvent("message", "create")

	if s.publisher != nil {
		s.publisher.PublishMessage(ctx, msg)
	}
	return msg, nil
}

func (s *ConversationService) ListMessages(ctx context.Context, actor *middleware.Principal, convID uint, limit, offset int) ([]models.Message, error) {
	if _, err := s.Participant(ctx, actor, convID); err != nil {
		return nil, err
	}
	return s.messages.ListByConversation(ctx, convID, limit, offset)
}

// MarkRead flags the messages the caller received in the conversation.
func (s *ConversationService) MarkRead(ctx context.Context, actor *middleware.Principal, convID uint) (int64, error) {
	if _, err := s.Participant(ctx, actor, convID); err != nil {
		return 0, err
	}
	return s.messages.MarkRead(ctx, convID, actor.UserID)
}

func (s *ConversationService) CountUnread(ctx context.Context, actor *middleware.Principal) (int64, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	return s.messages.CountUnread(ctx, actor.UserID)
}

// DeleteMessage is restricted to the sender.
func (s *ConversationService) DeleteMessage(ctx context.Context, actor *middleware.Principal, id uint) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != actor.UserID {
		return models.NewForbiddenError("only the sender can delete this message")
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return err
	}
	s.log.LogDelete(ctx, slog.Uint64("message_id", uint64(id)))
	return nil
}
