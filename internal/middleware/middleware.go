package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BatmanBruc/yt-audio-bot/internal/contextkeys"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

// EnqueueFunc hands a normalized event to whatever runs the flows.
type EnqueueFunc func(ctx context.Context, ev types.Event) error

type Middlewares struct {
	log zerolog.Logger
}

func NewMiddlewares(log zerolog.Logger) *Middlewares {
	return &Middlewares{
		log: log.With().Str("component", "updates").Logger(),
	}
}

// Chain wraps the terminal dispatch with the request, recovery and
// analysis middlewares in that order.
func (m *Middlewares) Chain(enqueue EnqueueFunc) bot.HandlerFunc {
	return m.RequestContextMiddleware(
		m.RecoverMiddleware(
			m.AnalyzeMessageMiddleware(
				m.DispatchHandler(enqueue),
			),
		),
	)
}

// RequestContextMiddleware tags the update with a request id and puts a
// logger carrying it on the context.
func (m *Middlewares) RequestContextMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		rid := uuid.NewString()
		lc := m.log.With().Str("request_id", rid)
		if update != nil {
			lc = lc.Int64("update_id", update.ID)
		}
		logger := lc.Logger()

		ctx = contextkeys.WithRequestID(ctx, rid)
		ctx = logger.WithContext(ctx)
		next(ctx, b, update)
	}
}

func (m *Middlewares) RecoverMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		defer func() {
			if r := recover(); r != nil {
				zerolog.Ctx(ctx).Error().Err(fmt.Errorf("panic: %v", r)).Msg("update handler panicked")
			}
		}()
		next(ctx, b, update)
	}
}

func (m *Middlewares) AnalyzeMessageMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		next(contextkeys.WithMessageType(ctx, determineMessageType(update)), b, update)
	}
}

// DispatchHandler normalizes the update and enqueues it. Updates that carry
// neither a usable message nor a callback are dropped here.
func (m *Middlewares) DispatchHandler(enqueue EnqueueFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		ev, ok := NormalizeUpdate(update)
		if !ok {
			zerolog.Ctx(ctx).Debug().Msg("skipping update")
			return
		}
		logger := zerolog.Ctx(ctx).With().
			Int64("user_id", int64(ev.UserID())).
			Str("kind", string(ev.Kind())).
			Logger()
		ctx = logger.WithContext(ctx)

		if err := enqueue(ctx, ev); err != nil {
			logger.Warn().Err(err).Msg("event not enqueued")
		}
	}
}

func determineMessageType(update *models.Update) contextkeys.MessageType {
	switch {
	case update == nil:
		return contextkeys.MessageTypeUnknown
	case update.CallbackQuery != nil && update.CallbackQuery.Data != "":
		return contextkeys.MessageTypeClickButton
	case update.Message != nil && strings.HasPrefix(update.Message.Text, "/"):
		return contextkeys.MessageTypeCommand
	case update.Message != nil && update.Message.Text != "":
		return contextkeys.MessageTypeText
	}
	return contextkeys.MessageTypeUnknown
}

// NormalizeUpdate converts a Bot API update into an Event. Messages need a
// sender and text; callbacks need a chat to edit in.
func NormalizeUpdate(update *models.Update) (types.Event, bool) {
	switch {
	case update == nil:
		return types.Event{}, false
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		chatID, messageID := getChatFromMaybeInaccessibleMessage(cq.Message)
		if chatID == 0 || cq.From.ID == 0 {
			return types.Event{}, false
		}
		return types.Event{Callback: &types.CallbackEvent{
			CallbackID: cq.ID,
			ChatID:     chatID,
			UserID:     types.UserID(cq.From.ID),
			MessageID:  messageID,
			Data:       cq.Data,
		}}, true
	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		if msg.Text == "" || msg.Chat.ID == 0 {
			return types.Event{}, false
		}
		return types.Event{Message: &types.MessageEvent{
			ChatID:    msg.Chat.ID,
			UserID:    types.UserID(msg.From.ID),
			Text:      msg.Text,
			Username:  msg.From.Username,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		}}, true
	}
	return types.Event{}, false
}

func getChatFromMaybeInaccessibleMessage(m models.MaybeInaccessibleMessage) (int64, int) {
	if m.Message != nil {
		return m.Message.Chat.ID, m.Message.ID
	}
	if m.InaccessibleMessage != nil {
		return m.InaccessibleMessage.Chat.ID, m.InaccessibleMessage.MessageID
	}
	return 0, 0
}
