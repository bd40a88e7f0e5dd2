package handlers

import (
	"context"

	"github.com/BatmanBruc/yt-audio-bot/internal/messages"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

// deliver shows the title on the pending message, then uploads the audio.
// If the upload fails the message is edited once more to the direct link.
func (h *Handlers) deliver(ctx context.Context, chatID int64, messageID int, info types.AudioInfo) types.Outcome {
	h.edit(ctx, chatID, messageID, messages.Downloading(info, h.opts.Links))
	h.chatAction(ctx, chatID, types.ChatActionUploadAudio)

	if err := h.messenger.SendMedia(ctx, chatID, messages.AudioMedia(info, h.opts.Links)); err != nil {
		h.logger(ctx).Warn().Err(err).Str("title", info.Title).Msg("media send failed, falling back to link")
		h.edit(ctx, chatID, messageID, messages.DownloadFallback(info, h.opts.Links))
		return types.OutcomeFallback
	}
	return types.OutcomeOK
}
