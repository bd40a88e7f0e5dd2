package handlers

import (
	"context"

	"github.com/BatmanBruc/yt-audio-bot/internal/contextkeys"
	"github.com/BatmanBruc/yt-audio-bot/internal/messages"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

// HandleCallback routes a button press. Undecodable payloads are dropped
// without any reply.
func (h *Handlers) HandleCallback(ctx context.Context, cb *types.CallbackEvent) result {
	action, err := types.DecodeCallback(cb.Data)
	if err != nil {
		h.logger(ctx).Debug().Err(err).Str("data", cb.Data).Msg("ignoring callback")
		return result{flow: types.FlowNone, outcome: types.OutcomeIgnored}
	}

	switch action.Kind {
	case types.ActionCheckMembership:
		ctx = contextkeys.WithFlow(ctx, types.FlowMembershipVerify)
		return result{flow: types.FlowMembershipVerify, outcome: h.handleVerify(ctx, cb)}
	case types.ActionDownload:
		ctx = contextkeys.WithFlow(ctx, types.FlowCallbackDownload)
		res := result{flow: types.FlowCallbackDownload, input: action.Link}
		if !h.gate.IsMember(ctx, cb.UserID) {
			h.answer(ctx, cb.CallbackID, "", false)
			h.edit(ctx, cb.ChatID, cb.MessageID, messages.AccessDenied(h.opts.Channels))
			res.outcome = types.OutcomeDenied
			return res
		}
		res.outcome = h.handleCallbackDownload(ctx, cb, action.Link)
		return res
	}
	return result{flow: types.FlowNone, outcome: types.OutcomeIgnored}
}

// handleVerify re-runs the gate. On failure only an alert is shown so the
// join instructions stay on screen.
func (h *Handlers) handleVerify(ctx context.Context, cb *types.CallbackEvent) types.Outcome {
	if !h.gate.IsMember(ctx, cb.UserID) {
		h.answer(ctx, cb.CallbackID, messages.CallbackStillDenied, true)
		return types.OutcomeDenied
	}
	h.edit(ctx, cb.ChatID, cb.MessageID, messages.MembershipVerified())
	h.answer(ctx, cb.CallbackID, messages.CallbackVerified, false)
	return types.OutcomeOK
}

func (h *Handlers) handleCallbackDownload(ctx context.Context, cb *types.CallbackEvent, link string) types.Outcome {
	if remaining, ok := h.acquire(ctx, cb.UserID); !ok {
		h.answer(ctx, cb.CallbackID, messages.PleaseWait(remaining), true)
		return types.OutcomeRateLimited
	}

	h.answer(ctx, cb.CallbackID, messages.CallbackProcessing, false)
	h.edit(ctx, cb.ChatID, cb.MessageID, messages.ProcessingRequest())

	info, err := h.content.FetchAudioInfo(ctx, link)
	if err != nil {
		h.logger(ctx).Warn().Err(err).Str("link", link).Msg("audio info failed")
		h.edit(ctx, cb.ChatID, cb.MessageID, messages.CallbackFailed(types.UserReason(err)))
		return types.OutcomeFailed
	}
	return h.deliver(ctx, cb.ChatID, cb.MessageID, info)
}
