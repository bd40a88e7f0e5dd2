package contextkeys

import (
	"context"

	"github.com/BatmanBruc/yt-audio-bot/types"
)

type messageTypeKey struct{}
type requestIDKey struct{}
type flowKey struct{}

type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeCommand     MessageType = "command"
	MessageTypeClickButton MessageType = "click_button"
	MessageTypeUnknown     MessageType = "unknown"
)

func WithMessageType(ctx context.Context, msgType MessageType) context.Context {
	return context.WithValue(ctx, messageTypeKey{}, msgType)
}

func GetMessageType(ctx context.Context) (MessageType, bool) {
	v, ok := ctx.Value(messageTypeKey{}).(MessageType)
	if !ok {
		return MessageTypeUnknown, false
	}
	return v, true
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey{}).(string)
	return v, ok
}

func WithFlow(ctx context.Context, flow types.Flow) context.Context {
	return context.WithValue(ctx, flowKey{}, flow)
}

func GetFlow(ctx context.Context) (types.Flow, bool) {
	v, ok := ctx.Value(flowKey{}).(types.Flow)
	return v, ok
}
