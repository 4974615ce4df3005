package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"fittlyfans/internal/models"
	"fittlyfans/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	env   *testEnv
	sub   account
	coach account
	other account
	conv  models.Conversation
}

func newChatFixture(t *testing.T) chatFixture {
	t.Helper()
	env := newTestEnv(t, nil)
	f := chatFixture{
		env:   env,
		sub:   env.register(t, "ana", models.RoleSubscriber),
		coach: env.register(t, "coach", models.RoleTrainer),
		other: env.register(t, "eve", models.RoleSubscriber),
	}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/conversations", f.sub.Token, fiber.Map{
		"subscriber_id": f.sub.User.ID,
		"trainer_id":    f.coach.User.ID,
	}, &f.conv))
	return f
}

func TestConversations_Create(t *testing.T) {
	f := newChatFixture(t)
	env := f.env

	assert.Equal(t, models.ConversationActive, f.conv.State)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/conversations", f.coach.Token, fiber.Map{
		"subscriber_id": f.sub.User.ID, "trainer_id": f.coach.User.ID,
	}, nil))
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/conversations", f.other.Token, fiber.Map{
		"subscriber_id": f.sub.User.ID, "trainer_id": f.coach.User.ID,
	}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/conversations", f.other.Token, fiber.Map{
		"subscriber_id": f.other.User.ID, "trainer_id": f.sub.User.ID,
	}, nil), "trainer_id must be a trainer")

	var list []models.Conversation
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/conversations/trainer/"+itoa(f.coach.User.ID), f.coach.Token, nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "ana", list[0].CounterpartName)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/conversations/subscriber/"+itoa(f.sub.User.ID), f.other.Token, nil, nil))

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/conversations/"+itoa(f.conv.ID), f.other.Token, nil, nil))
}

func TestConversations_Messaging(t *testing.T) {
	f := newChatFixture(t)
	env := f.env
	convPath := "/api/conversations/" + itoa(f.conv.ID)

	var msg models.Message
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/messages", f.sub.Token,
		fiber.Map{"conversation_id": f.conv.ID, "text": "  Hola coach  "}, &msg))
	assert.Equal(t, "Hola coach", msg.Text)
	assert.Equal(t, f.sub.User.ID, msg.SenderID)
	assert.False(t, msg.Read)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/messages", f.sub.Token,
		fiber.Map{"conversation_id": f.conv.ID, "text": "   "}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/messages", f.sub.Token,
		fiber.Map{"conversation_id": f.conv.ID, "text": strings.Repeat("a", 4001)}, nil))
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/messages", f.other.Token,
		fiber.Map{"conversation_id": f.conv.ID, "text": "intruso"}, nil))

	var conv models.Conversation
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, convPath, f.coach.Token, nil, &conv))
	assert.Equal(t, "Hola coach", conv.LastMessage)
	require.NotNil(t, conv.LastMessageAt)

	var unread struct {
		Unread int64 `json:"unread"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/messages/unread", f.coach.Token, nil, &unread))
	assert.EqualValues(t, 1, unread.Unread)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/messages/unread", f.sub.Token, nil, &unread))
	assert.Zero(t, unread.Unread, "own messages are never unread")

	var marked struct {
		Updated int64 `json:"updated"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, convPath+"/read", f.coach.Token, nil, &marked))
	assert.EqualValues(t, 1, marked.Updated)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/messages/unread", f.coach.Token, nil, &unread))
	assert.Zero(t, unread.Unread)

	var thread []models.Message
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, convPath+"/messages", f.coach.Token, nil, &thread))
	require.Len(t, thread, 1)
	assert.True(t, thread[0].Read)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, "/api/messages/"+itoa(msg.ID), f.coach.Token, nil, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/messages/"+itoa(msg.ID), f.sub.Token, nil, nil))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, convPath+"/state", f.coach.Token,
		fiber.Map{"state": "archived"}, &conv))
	assert.Equal(t, models.ConversationArchived, conv.State)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/messages", f.sub.Token,
		fiber.Map{"conversation_id": f.conv.ID, "text": "sigues ahi?"}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, convPath+"/state", f.coach.Token,
		fiber.Map{"state": "closed"}, nil))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, convPath, f.sub.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, convPath, f.sub.Token, nil, nil))
}

func TestConversationStream_RequiresUpgrade(t *testing.T) {
	f := newChatFixture(t)

	var body models.ErrorResponse
	assert.Equal(t, http.StatusUpgradeRequired,
		f.env.do(t, http.MethodGet, "/api/ws/conversations/"+itoa(f.conv.ID), f.sub.Token, nil, &body))
	assert.Equal(t, "websocket upgrade required", body.Error)
}

func TestConversationStream_DeliversNewMessages(t *testing.T) {
	f := newChatFixture(t)
	env := f.env

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() { _ = env.app.Shutdown() })

	base := "ws://" + ln.Addr().String() + "/api/ws/conversations/" + itoa(f.conv.ID)

	_, resp, err := websocket.DefaultDialer.Dial(base+"?token="+f.other.Token, nil)
	require.Error(t, err, "outsiders cannot subscribe")
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	}

	conn, resp, err := websocket.DefaultDialer.Dial(base+"?token="+f.coach.Token, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return env.server.hub.Subscribers(f.conv.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var msg models.Message
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/messages", f.sub.Token,
		fiber.Map{"conversation_id": f.conv.ID, "text": "Entreno listo"}, &msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event realtime.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, realtime.EventMessageCreated, event.Type)
	assert.Equal(t, f.conv.ID, event.ConversationID)
	require.NotNil(t, event.Message)
	assert.Equal(t, msg.ID, event.Message.ID)
	assert.Equal(t, "Entreno listo", event.Message.Text)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return env.server.hub.Subscribers(f.conv.ID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConversationStream_ShutdownSendsGoingAway(t *testing.T) {
	f := newChatFixture(t)
	env := f.env

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() { _ = env.app.Shutdown() })

	url := "ws://" + ln.Addr().String() + "/api/ws/conversations/" + itoa(f.conv.ID) + "?token=" + f.sub.Token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return env.server.hub.Subscribers(f.conv.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, env.server.hub.Shutdown(context.Background()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Zero(t, env.server.hub.Subscribers(f.conv.ID))
}
