package handlers

import (
	"context"

	"github.com/BatmanBruc/yt-audio-bot/internal/messages"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

func (h *Handlers) handleStart(ctx context.Context, msg *types.MessageEvent) types.Outcome {
	if _, ok := h.reply(ctx, msg.ChatID, messages.Welcome(h.opts.Links)); !ok {
		return types.OutcomeFailed
	}
	return types.OutcomeOK
}

// handleAdmin is a placeholder panel; it appends registry counts when a
// registry is configured.
func (h *Handlers) handleAdmin(ctx context.Context, msg *types.MessageEvent) types.Outcome {
	var stats *types.RegistryStats
	if h.users != nil {
		s, err := h.users.Stats(ctx)
		if err != nil {
			h.logger(ctx).Warn().Err(err).Msg("registry stats failed")
		} else {
			stats = &s
		}
	}
	if _, ok := h.reply(ctx, msg.ChatID, messages.AdminPanel(stats)); !ok {
		return types.OutcomeFailed
	}
	return types.OutcomeOK
}
