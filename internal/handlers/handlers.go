package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BatmanBruc/yt-audio-bot/internal/contextkeys"
	"github.com/BatmanBruc/yt-audio-bot/internal/messages"
	"github.com/BatmanBruc/yt-audio-bot/internal/telemetry"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, out types.Outgoing) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, out types.Outgoing) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	SendChatAction(ctx context.Context, chatID int64, action types.ChatAction) error
	SendMedia(ctx context.Context, chatID int64, media types.Media) error
}

type ContentSource interface {
	FetchAudioInfo(ctx context.Context, link string) (types.AudioInfo, error)
	Search(ctx context.Context, query string) []types.SearchResult
}

type MembershipChecker interface {
	IsMember(ctx context.Context, userID types.UserID) bool
}

type Options struct {
	AdminID          types.UserID
	Channels         []string
	MaxSearchResults int
	Links            messages.Links
}

type Handlers struct {
	messenger Messenger
	content   ContentSource
	gate      MembershipChecker
	cooldowns types.CooldownStore
	// users is optional; nil disables the registry.
	users  types.UserStore
	opts   Options
	log    zerolog.Logger
	tracer trace.Tracer
}

func NewHandlers(m Messenger, content ContentSource, gate MembershipChecker, cooldowns types.CooldownStore, users types.UserStore, opts Options, log zerolog.Logger) *Handlers {
	if opts.MaxSearchResults <= 0 {
		opts.MaxSearchResults = 10
	}
	return &Handlers{
		messenger: m,
		content:   content,
		gate:      gate,
		cooldowns: cooldowns,
		users:     users,
		opts:      opts,
		log:       log.With().Str("component", "handlers").Logger(),
		tracer:    otel.Tracer("github.com/BatmanBruc/yt-audio-bot/internal/handlers"),
	}
}

// result is what one handled event amounts to.
type result struct {
	flow    types.Flow
	outcome types.Outcome
	input   string
}

// Dispatch handles one normalized event to completion.
func (h *Handlers) Dispatch(ctx context.Context, ev types.Event) {
	start := time.Now()
	kind := ev.Kind()
	telemetry.EventsTotal.WithLabelValues(string(kind)).Inc()

	ctx, span := h.tracer.Start(ctx, "event."+string(kind), trace.WithAttributes(
		attribute.Int64("user.id", int64(ev.UserID())),
	))
	defer span.End()

	var res result
	switch {
	case ev.Callback != nil:
		res = h.HandleCallback(ctx, ev.Callback)
	case ev.Message != nil:
		h.rememberUser(ctx, ev.Message)
		res = h.HandleMessage(ctx, ev.Message)
	default:
		return
	}

	span.SetAttributes(
		attribute.String("flow", string(res.flow)),
		attribute.String("outcome", string(res.outcome)),
	)
	if res.outcome == types.OutcomeFailed {
		span.SetStatus(codes.Error, "flow failed")
	}
	if res.flow == types.FlowNone {
		return
	}

	telemetry.FlowsTotal.WithLabelValues(string(res.flow), string(res.outcome)).Inc()
	telemetry.ObserveSince(telemetry.FlowDuration.WithLabelValues(string(res.flow)), start)
	h.logger(ctx).Info().
		Str("flow", string(res.flow)).
		Str("outcome", string(res.outcome)).
		Dur("took", time.Since(start)).
		Msg("flow done")
	h.recordRequest(ctx, ev.UserID(), res)
}

func (h *Handlers) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.log
}

func (h *Handlers) rememberUser(ctx context.Context, msg *types.MessageEvent) {
	if h.users == nil || msg == nil {
		return
	}
	err := h.users.UpsertUser(ctx, types.User{
		UserID:    msg.UserID,
		ChatID:    msg.ChatID,
		Username:  msg.Username,
		FirstName: msg.FirstName,
		LastName:  msg.LastName,
	})
	if err != nil {
		h.logger(ctx).Warn().Err(err).Msg("upsert user failed")
	}
}

func (h *Handlers) recordRequest(ctx context.Context, userID types.UserID, res result) {
	if h.users == nil {
		return
	}
	rid, _ := contextkeys.GetRequestID(ctx)
	err := h.users.RecordRequest(ctx, types.RequestRecord{
		ID:      rid,
		UserID:  userID,
		Flow:    res.flow,
		Input:   res.input,
		Outcome: res.outcome,
	})
	if err != nil {
		h.logger(ctx).Warn().Err(err).Msg("record request failed")
	}
}

func (h *Handlers) reply(ctx context.Context, chatID int64, out types.Outgoing) (int, bool) {
	id, err := h.messenger.SendMessage(ctx, chatID, out)
	if err != nil {
		h.logger(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
		return 0, false
	}
	return id, true
}

func (h *Handlers) edit(ctx context.Context, chatID int64, messageID int, out types.Outgoing) bool {
	if err := h.messenger.EditMessage(ctx, chatID, messageID, out); err != nil {
		h.logger(ctx).Error().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("edit message failed")
		return false
	}
	return true
}

func (h *Handlers) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := h.messenger.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		h.logger(ctx).Warn().Err(err).Msg("answer callback failed")
	}
}

func (h *Handlers) chatAction(ctx context.Context, chatID int64, action types.ChatAction) {
	if err := h.messenger.SendChatAction(ctx, chatID, action); err != nil {
		h.logger(ctx).Debug().Err(err).Str("action", string(action)).Msg("chat action failed")
	}
}
