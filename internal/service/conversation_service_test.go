package service

import (
	"context"
	"sync"
	"testing"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent []*models.Message
}

func (p *recordingPublisher) PublishMessage(_ context.Context, msg *models.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
}

func newConversationService(db *gorm.DB, pub MessagePublisher) *ConversationService {
	return NewConversationService(
		repository.NewConversationRepository(db),
		repository.NewMessageRepository(db),
		repository.NewUserRepository(db),
		pub,
	)
}

type chatFixture struct {
	sub, coach, outsider *middleware.Principal
	conv                 *models.Conversation
}

func setupChat(t *testing.T, svc *ConversationService, db *gorm.DB) chatFixture {
	t.Helper()
	f := chatFixture{
		sub:      principal(seedUser(t, db, "sub", models.RoleSubscriber)),
		coach:    principal(seedUser(t, db, "coach", models.RoleTrainer)),
		outsider: principal(seedUser(t, db, "outsider", models.RoleSubscriber)),
	}
	conv, err := svc.Create(context.Background(), f.sub, CreateConversationInput{SubscriberID: f.sub.UserID, TrainerID: f.coach.UserID})
	require.NoError(t, err)
	f.conv = conv
	return f
}

func TestConversationService_Create(t *testing.T) {
	db := setupDB(t)
	svc := newConversationService(db, nil)
	ctx := context.Background()
	f := setupChat(t, svc, db)

	assert.Equal(t, models.ConversationActive, f.conv.State)

	_, err := svc.Create(ctx, f.coach, CreateConversationInput{SubscriberID: f.sub.UserID, TrainerID: f.coach.UserID})
	assertCode(t, err, models.CodeConflict)

	_, err = svc.Create(ctx, f.outsider, CreateConversationInput{SubscriberID: f.sub.UserID, TrainerID: f.coach.UserID})
	assertForbiddenError(t, err)

	_, err = svc.Create(ctx, f.outsider, CreateConversationInput{SubscriberID: f.outsider.UserID, TrainerID: f.sub.UserID})
	assertValidationError(t, err)

	_, err = svc.Create(ctx, f.outsider, CreateConversationInput{SubscriberID: f.outsider.UserID, TrainerID: 999})
	assertCode(t, err, models.CodeNotFound)
}

func TestConversationService_MessagingFlow(t *testing.T) {
	db := setupDB(t)
	pub := &recordingPublisher{}
	svc := newConversationService(db, pub)
	ctx := context.Background()
	f := setupChat(t, svc, db)

	_, err := svc.SendMessage(ctx, f.outsider, SendMessageInput{ConversationID: f.conv.ID, Text: "hola"})
	assertForbiddenError(t, err)
	_, err = svc.SendMessage(ctx, f.sub, SendMessageInput{ConversationID: f.conv.ID, Text: "   "})
	assertValidationError(t, err)

	m1, err := svc.SendMessage(ctx, f.sub, SendMessageInput{ConversationID: f.conv.ID, Text: "hola coach"})
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, f.sub, SendMessageInput{ConversationID: f.conv.ID, Text: "tienes hueco?"})
	require.NoError(t, err)

	require.Len(t, pub.sent, 2)
	assert.Equal(t, m1.ID, pub.sent[0].ID)

	unread, err := svc.CountUnread(ctx, f.coach)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	marked, err := svc.MarkRead(ctx, f.coach, f.conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)
	unread, err = svc.CountUnread(ctx, f.coach)
	require.NoError(t, err)
	assert.Zero(t, unread)

	msgs, err := svc.ListMessages(ctx, f.coach, f.conv.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hola coach", msgs[0].Text)

	conv, err := svc.Participant(ctx, f.coach, f.conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "tienes hueco?", conv.LastMessage)

	assertForbiddenError(t, svc.DeleteMessage(ctx, f.coach, m1.ID))
	require.NoError(t, svc.DeleteMessage(ctx, f.sub, m1.ID))
	assertCode(t, svc.DeleteMessage(ctx, f.sub, m1.ID), models.CodeNotFound)

	_, err = svc.UpdateState(ctx, f.coach, f.conv.ID, models.ConversationArchived)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, f.sub, SendMessageInput{ConversationID: f.conv.ID, Text: "sigues?"})
	assertValidationError(t, err)
	assert.Len(t, pub.sent, 2)

	_, err = svc.UpdateState(ctx, f.coach, f.conv.ID, "closed")
	assertValidationError(t, err)
}

func TestConversationService_ListAndDelete(t *testing.T) {
	db := setupDB(t)
	svc := newConversationService(db, nil)
	ctx := context.Background()
	f := setupChat(t, svc, db)

	_, err := svc.ListBySubscriber(ctx, f.outsider, f.sub.UserID, 10, 0)
	assertForbiddenError(t, err)

	mine, err := svc.ListBySubscriber(ctx, f.sub, f.sub.UserID, 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "coach", mine[0].CounterpartName)

	theirs, err := svc.ListByTrainer(ctx, f.coach, f.coach.UserID, 10, 0)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "sub", theirs[0].CounterpartName)

	_, err = svc.SendMessage(ctx, f.coach, SendMessageInput{ConversationID: f.conv.ID, Text: "bienvenida"})
	require.NoError(t, err)

	assertForbiddenError(t, svc.Delete(ctx, f.outsider, f.conv.ID))
	require.NoError(t, svc.Delete(ctx, f.coach, f.conv.ID))
	_, err = svc.Participant(ctx, f.sub, f.conv.ID)
	assertCode(t, err, models.CodeNotFound)

	var n int64
	require.NoError(t, db.Model(&models.Message{}).Count(&n).Error)
	assert.Zero(t, n)
}
