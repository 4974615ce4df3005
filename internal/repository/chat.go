package repository

import (
	"context"
	"errors"
	"time"

	"fittlyfans/internal/models"

	"gorm.io/gorm"
)

// ConversationRepository defines the interface for subscriber/trainer threads.
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	ListBySubscriber(ctx context.Context, subscriberID uint, limit, offset int) ([]models.Conversation, error)
	ListByTrainer(ctx context.Context, trainerID uint, limit, offset int) ([]models.Conversation, error)
	UpdateState(ctx context.Context, id uint, state models.ConversationState) error
	Delete(ctx context.Context, id uint) error
}

// MessageRepository defines the interface for messages inside a conversation.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByConversation(ctx context.Context, convID uint, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, convID, readerID uint) (int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	if conv.State == "" {
		conv.State = models.ConversationActive
	}
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		return mapWriteError(err, "conversation already exists")
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		return nil, mapReadError(err, "Conversation", id)
	}
	return &conv, nil
}

func (r *conversationRepository) ListBySubscriber(ctx context.Context, subscriberID uint, limit, offset int) ([]models.Conversation, error) {
	return r.list(ctx, "subscriber_id", "trainer_id", subscriberID, limit, offset)
}

func (r *conversationRepository) ListByTrainer(ctx context.Context, trainerID uint, limit, offset int) ([]models.Conversation, error) {
	return r.list(ctx, "trainer_id", "subscriber_id", trainerID, limit, offset)
}

// list selects conversations where column self is userID and names the
// participant in column other as the counterpart.
func (r *conversationRepository) list(ctx context.Context, self, other string, userID uint, limit, offset int) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Select("conversations.*, users.name AS counterpart_name").
		Joins("LEFT JOIN users ON users.id = conversations."+other).
		Where("conversations."+self+" = ?", userID).
		Order("conversations.created_at DESC, conversations.id DESC").
		Scopes(paginate(limit, offset)).
		Find(&convs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return convs, nil
}

func (r *conversationRepository) UpdateState(ctx context.Context, id uint, state models.ConversationState) error {
	res := r.db.WithContext(ctx).Model(&models.Conversation{}).Where("id = ?", id).Update("state", state)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Conversation", id)
	}
	return nil
}

// Delete removes the conversation and its messages.
func (r *conversationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Conversation{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Conversation", id)
		}
		return nil
	})
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create stores the message and refreshes the conversation preview in the
// same transaction.
func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]any{"last_message": msg.Text, "last_message_at": msg.SentAt})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Conversation", msg.ConversationID)
		}
		return nil
	})
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, mapReadError(err, "Message", id)
	}
	return &msg, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, convID uint, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("sent_at ASC, id ASC").
		Scopes(paginate(limit, offset)).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// MarkRead flags every unread message sent to readerID in the conversation
// and returns how many changed.
func (r *messageRepository) MarkRead(ctx context.Context, convID, readerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", convID, readerID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.subscriber_id = ? OR conversations.trainer_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// Delete removes the message and points the conversation preview at the
// latest message left, or clears it when none is.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.First(&msg, id).Error; err != nil {
			return mapReadError(err, "Message", id)
		}
		if err := tx.Delete(&models.Message{}, id).Error; err != nil {
			return models.NewInternalError(err)
		}

		preview := map[string]any{"last_message": "", "last_message_at": nil}
		var latest models.Message
		err := tx.Where("conversation_id = ?", msg.ConversationID).
			Order("sent_at DESC, id DESC").
			Take(&latest).Error
		switch {
		case err == nil:
			preview = map[string]any{"last_message": latest.Text, "last_message_at": latest.SentAt}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Conversation{}).Where("id = ?", msg.ConversationID).Updates(preview).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}
