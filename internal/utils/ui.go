package utils

import (
	"unicode/utf8"

	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/yt-audio-bot/types"
)

// BuildInlineKeyboard converts rows of buttons into Bot API markup. It
// returns nil for an empty keyboard so no reply_markup is sent.
func BuildInlineKeyboard(kb types.Keyboard) *models.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]models.InlineKeyboardButton, 0, len(kb))
	for _, buttons := range kb {
		row := make([]models.InlineKeyboardButton, 0, len(buttons))
		for _, button := range buttons {
			b := models.InlineKeyboardButton{Text: button.Text}
			switch {
			case button.WebAppURL != "":
				b.WebApp = &models.WebAppInfo{URL: button.WebAppURL}
			case button.URL != "":
				b.URL = button.URL
			default:
				b.CallbackData = button.CallbackData
			}
			row = append(row, b)
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
