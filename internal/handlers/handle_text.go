package handlers

import (
	"context"
	"strings"

	"github.com/BatmanBruc/yt-audio-bot/internal/contextkeys"
	"github.com/BatmanBruc/yt-audio-bot/internal/messages"
	"github.com/BatmanBruc/yt-audio-bot/internal/telemetry"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

// HandleMessage routes a plain message. Membership is checked before any
// flow runs, so a denied user never starts a cooldown.
func (h *Handlers) HandleMessage(ctx context.Context, msg *types.MessageEvent) result {
	text := strings.TrimSpace(msg.Text)
	flow := ClassifyText(text, msg.UserID, h.opts.AdminID)
	if flow == types.FlowNone {
		return result{flow: types.FlowNone, outcome: types.OutcomeIgnored}
	}
	ctx = contextkeys.WithFlow(ctx, flow)
	res := result{flow: flow, input: text}

	if !h.gate.IsMember(ctx, msg.UserID) {
		h.reply(ctx, msg.ChatID, messages.AccessDenied(h.opts.Channels))
		res.outcome = types.OutcomeDenied
		return res
	}

	switch flow {
	case types.FlowAdmin:
		res.outcome = h.handleAdmin(ctx, msg)
	case types.FlowStart:
		res.outcome = h.handleStart(ctx, msg)
	case types.FlowLinkDownload:
		res.outcome = h.handleLink(ctx, msg, text)
	case types.FlowSearch:
		res.outcome = h.handleSearch(ctx, msg, text)
	}
	return res
}

// acquire takes the user's cooldown or reports the seconds left.
func (h *Handlers) acquire(ctx context.Context, userID types.UserID) (int, bool) {
	remaining, ok := h.cooldowns.Acquire(ctx, userID)
	if !ok {
		telemetry.GateDenied.WithLabelValues("cooldown").Inc()
		h.logger(ctx).Debug().Err(&types.RateLimitError{Remaining: remaining}).Msg("cooldown active")
	}
	return remaining, ok
}

func (h *Handlers) handleSearch(ctx context.Context, msg *types.MessageEvent, query string) types.Outcome {
	if remaining, ok := h.acquire(ctx, msg.UserID); !ok {
		h.reply(ctx, msg.ChatID, messages.PleaseWaitMessage(remaining))
		return types.OutcomeRateLimited
	}

	h.chatAction(ctx, msg.ChatID, types.ChatActionTyping)
	placeholderID, ok := h.reply(ctx, msg.ChatID, messages.Searching(query))
	if !ok {
		return types.OutcomeFailed
	}

	results := h.content.Search(ctx, query)
	if len(results) == 0 {
		h.edit(ctx, msg.ChatID, placeholderID, messages.NoResults(query))
		return types.OutcomeNoResults
	}
	if len(results) > h.opts.MaxSearchResults {
		results = results[:h.opts.MaxSearchResults]
	}

	entries := make([]messages.SearchEntry, 0, len(results))
	for _, r := range results {
		payload := downloadPayload(r.URL)
		if payload == "" {
			h.logger(ctx).Warn().Str("url", r.URL).Msg("result link does not fit a button")
		}
		entries = append(entries, messages.SearchEntry{Title: r.Title, Payload: payload})
	}
	if !h.edit(ctx, msg.ChatID, placeholderID, messages.SearchResults(entries)) {
		return types.OutcomeFailed
	}
	return types.OutcomeOK
}

func (h *Handlers) handleLink(ctx context.Context, msg *types.MessageEvent, link string) types.Outcome {
	if remaining, ok := h.acquire(ctx, msg.UserID); !ok {
		h.reply(ctx, msg.ChatID, messages.PleaseWaitMessage(remaining))
		return types.OutcomeRateLimited
	}

	placeholderID, ok := h.reply(ctx, msg.ChatID, messages.ProcessingLink())
	if !ok {
		return types.OutcomeFailed
	}

	info, err := h.content.FetchAudioInfo(ctx, link)
	if err != nil {
		h.logger(ctx).Warn().Err(err).Str("link", link).Msg("audio info failed")
		h.edit(ctx, msg.ChatID, placeholderID, messages.LinkFailed(types.UserReason(err)))
		return types.OutcomeFailed
	}
	return h.deliver(ctx, msg.ChatID, placeholderID, info)
}
