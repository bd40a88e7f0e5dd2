// Package messenger wraps the Telegram Bot API calls the flows need.
package messenger

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/BatmanBruc/yt-audio-bot/internal/telemetry"
	"github.com/BatmanBruc/yt-audio-bot/internal/utils"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

// Client is the subset of *bot.Bot used here.
type Client interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	SendAudio(ctx context.Context, params *bot.SendAudioParams) (*models.Message, error)
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

type Options struct {
	MaxMessageLength int
	// SendRate is outbound calls per second across all chats.
	SendRate  float64
	SendBurst int
	// MediaClient downloads media before upload.
	MediaClient *http.Client
}

type Telegram struct {
	client  Client
	limiter *rate.Limiter
	maxLen  int
	media   *http.Client
	log     zerolog.Logger
}

func NewTelegram(client Client, opts Options, log zerolog.Logger) *Telegram {
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = 4000
	}
	if opts.SendRate <= 0 {
		opts.SendRate = 25
	}
	if opts.SendBurst < 1 {
		opts.SendBurst = 1
	}
	if opts.MediaClient == nil {
		opts.MediaClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Telegram{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.SendRate), opts.SendBurst),
		maxLen:  opts.MaxMessageLength,
		media:   opts.MediaClient,
		log:     log.With().Str("component", "messenger").Logger(),
	}
}

func (t *Telegram) wait(ctx context.Context, method string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		telemetry.MessengerCalls.WithLabelValues(method, "throttled").Inc()
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func record(method string, err error) {
	telemetry.MessengerCalls.WithLabelValues(method, telemetry.Outcome(err)).Inc()
}

func boolPtr(b bool) *bool { return &b }

// SendMessage sends out to chatID and returns the new message id.
func (t *Telegram) SendMessage(ctx context.Context, chatID int64, out types.Outgoing) (int, error) {
	if err := t.wait(ctx, "sendMessage"); err != nil {
		return 0, err
	}
	params := &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               utils.Truncate(out.Text, t.maxLen),
		ParseMode:          models.ParseMode(out.ParseMode),
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: boolPtr(true)},
	}
	if kb := utils.BuildInlineKeyboard(out.Keyboard); kb != nil {
		params.ReplyMarkup = kb
	}
	msg, err := t.client.SendMessage(ctx, params)
	record("sendMessage", err)
	if err != nil {
		return 0, fmt.Errorf("sendMessage: %w", err)
	}
	return msg.ID, nil
}

func (t *Telegram) EditMessage(ctx context.Context, chatID int64, messageID int, out types.Outgoing) error {
	if err := t.wait(ctx, "editMessageText"); err != nil {
		return err
	}
	params := &bot.EditMessageTextParams{
		ChatID:             chatID,
		MessageID:          messageID,
		Text:               utils.Truncate(out.Text, t.maxLen),
		ParseMode:          models.ParseMode(out.ParseMode),
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: boolPtr(true)},
	}
	if kb := utils.BuildInlineKeyboard(out.Keyboard); kb != nil {
		params.ReplyMarkup = kb
	}
	_, err := t.client.EditMessageText(ctx, params)
	record("editMessageText", err)
	if err != nil {
		return fmt.Errorf("editMessageText: %w", err)
	}
	return nil
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := t.wait(ctx, "answerCallbackQuery"); err != nil {
		return err
	}
	_, err := t.client.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            utils.Truncate(text, 200),
		ShowAlert:       alert,
	})
	record("answerCallbackQuery", err)
	if err != nil {
		return fmt.Errorf("answerCallbackQuery: %w", err)
	}
	return nil
}

func (t *Telegram) SendChatAction(ctx context.Context, chatID int64, action types.ChatAction) error {
	if err := t.wait(ctx, "sendChatAction"); err != nil {
		return err
	}
	_, err := t.client.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatAction(action),
	})
	record("sendChatAction", err)
	if err != nil {
		return fmt.Errorf("sendChatAction: %w", err)
	}
	return nil
}

// SendMedia streams media.SourceURL into an audio upload.
func (t *Telegram) SendMedia(ctx context.Context, chatID int64, media types.Media) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, media.SourceURL, nil)
	if err != nil {
		record("sendAudio", err)
		return fmt.Errorf("media request: %w", err)
	}
	resp, err := t.media.Do(req)
	if err != nil {
		record("sendAudio", err)
		return fmt.Errorf("media download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("media download: status %d", resp.StatusCode)
		record("sendAudio", err)
		return err
	}

	if err := t.wait(ctx, "sendAudio"); err != nil {
		return err
	}
	params := &bot.SendAudioParams{
		ChatID: chatID,
		Audio: &models.InputFileUpload{
			Filename: mediaFilename(media),
			Data:     resp.Body,
		},
		Caption: utils.Truncate(media.Caption, 1024),
		Title:   media.Title,
	}
	if kb := utils.BuildInlineKeyboard(media.Keyboard); kb != nil {
		params.ReplyMarkup = kb
	}
	_, err = t.client.SendAudio(ctx, params)
	record("sendAudio", err)
	if err != nil {
		return fmt.Errorf("sendAudio: %w", err)
	}
	return nil
}

func mediaFilename(media types.Media) string {
	if name := path.Base(strings.SplitN(media.SourceURL, "?", 2)[0]); strings.HasSuffix(strings.ToLower(name), ".mp3") {
		return name
	}
	return "audio.mp3"
}

// MemberStatus returns the raw chat member status, e.g. "member" or "left".
func (t *Telegram) MemberStatus(ctx context.Context, channel string, userID types.UserID) (string, error) {
	if err := t.wait(ctx, "getChatMember"); err != nil {
		return "", err
	}
	member, err := t.client.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: channel,
		UserID: int64(userID),
	})
	record("getChatMember", err)
	if err != nil {
		return "", fmt.Errorf("getChatMember %s: %w", channel, err)
	}
	return string(member.Type), nil
}
