package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/yt-audio-bot/internal/contextkeys"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

func textUpdate(text string) *models.Update {
	return &models.Update{
		ID: 7,
		Message: &models.Message{
			ID:   3,
			Text: text,
			Chat: models.Chat{ID: 42},
			From: &models.User{ID: 42, Username: "alice", FirstName: "Alice"},
		},
	}
}

func callbackUpdate(data string, msg models.MaybeInaccessibleMessage) *models.Update {
	return &models.Update{
		ID: 8,
		CallbackQuery: &models.CallbackQuery{
			ID:      "cb-1",
			From:    models.User{ID: 42},
			Message: msg,
			Data:    data,
		},
	}
}

func TestNormalizeUpdate(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		ev, ok := NormalizeUpdate(textUpdate("abc song"))
		require.True(t, ok)
		require.NotNil(t, ev.Message)
		assert.Equal(t, types.EventMessage, ev.Kind())
		assert.Equal(t, types.UserID(42), ev.Message.UserID)
		assert.Equal(t, int64(42), ev.Message.ChatID)
		assert.Equal(t, "abc song", ev.Message.Text)
		assert.Equal(t, "alice", ev.Message.Username)
	})

	t.Run("callback on accessible message", func(t *testing.T) {
		ev, ok := NormalizeUpdate(callbackUpdate("check_membership", models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: 55, Chat: models.Chat{ID: 42}},
		}))
		require.True(t, ok)
		require.NotNil(t, ev.Callback)
		assert.Equal(t, "cb-1", ev.Callback.CallbackID)
		assert.Equal(t, 55, ev.Callback.MessageID)
		assert.Equal(t, "check_membership", ev.Callback.Data)
	})

	t.Run("callback on inaccessible message", func(t *testing.T) {
		ev, ok := NormalizeUpdate(callbackUpdate("x", models.MaybeInaccessibleMessage{
			InaccessibleMessage: &models.InaccessibleMessage{MessageID: 9, Chat: models.Chat{ID: 42}},
		}))
		require.True(t, ok)
		assert.Equal(t, 9, ev.Callback.MessageID)
		assert.Equal(t, int64(42), ev.Callback.ChatID)
	})

	for name, u := range map[string]*models.Update{
		"nil":                 nil,
		"empty":               {ID: 1},
		"no sender":           {Message: &models.Message{Text: "hi", Chat: models.Chat{ID: 1}}},
		"no text":             textUpdate(""),
		"callback no chat":    callbackUpdate("x", models.MaybeInaccessibleMessage{}),
		"edited message only": {EditedMessage: &models.Message{Text: "hi"}},
	} {
		t.Run("drops "+name, func(t *testing.T) {
			_, ok := NormalizeUpdate(u)
			assert.False(t, ok)
		})
	}
}

func TestDetermineMessageType(t *testing.T) {
	assert.Equal(t, contextkeys.MessageTypeCommand, determineMessageType(textUpdate("/start")))
	assert.Equal(t, contextkeys.MessageTypeText, determineMessageType(textUpdate("hello")))
	assert.Equal(t, contextkeys.MessageTypeClickButton, determineMessageType(callbackUpdate("download|x", models.MaybeInaccessibleMessage{})))
	assert.Equal(t, contextkeys.MessageTypeUnknown, determineMessageType(&models.Update{}))
}

func TestChainEnqueuesWithRequestContext(t *testing.T) {
	var (
		gotCtx context.Context
		gotEv  types.Event
	)
	m := NewMiddlewares(zerolog.Nop())
	h := m.Chain(func(ctx context.Context, ev types.Event) error {
		gotCtx, gotEv = ctx, ev
		return nil
	})

	h(context.Background(), (*bot.Bot)(nil), textUpdate("/start"))

	require.NotNil(t, gotCtx)
	rid, ok := contextkeys.GetRequestID(gotCtx)
	require.True(t, ok)
	assert.Len(t, rid, 36)
	mt, _ := contextkeys.GetMessageType(gotCtx)
	assert.Equal(t, contextkeys.MessageTypeCommand, mt)
	assert.Equal(t, "/start", gotEv.Message.Text)
}

func TestChainSkipsUnusableUpdates(t *testing.T) {
	called := false
	h := NewMiddlewares(zerolog.Nop()).Chain(func(ctx context.Context, ev types.Event) error {
		called = true
		return nil
	})
	h(context.Background(), nil, &models.Update{ID: 1})
	assert.False(t, called)
}

func TestChainSurvivesEnqueueFailureAndPanic(t *testing.T) {
	m := NewMiddlewares(zerolog.Nop())

	assert.NotPanics(t, func() {
		m.Chain(func(ctx context.Context, ev types.Event) error {
			return errors.New("stopped")
		})(context.Background(), nil, textUpdate("hi"))
	})
	assert.NotPanics(t, func() {
		m.Chain(func(ctx context.Context, ev types.Event) error {
			panic("boom")
		})(context.Background(), nil, textUpdate("hi"))
	})
}
