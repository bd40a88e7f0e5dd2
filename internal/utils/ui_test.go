package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/yt-audio-bot/types"
)

func TestBuildInlineKeyboard(t *testing.T) {
	assert.Nil(t, BuildInlineKeyboard(nil))
	assert.Nil(t, BuildInlineKeyboard(types.Keyboard{{}}))

	kb := BuildInlineKeyboard(types.Keyboard{
		{{Text: "app", WebAppURL: "https://app"}},
		{{Text: "join", URL: "https://t.me/x"}},
		{{Text: "1. Download", CallbackData: "download|https://youtu.be/abc"}},
	})
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 3)

	require.NotNil(t, kb.InlineKeyboard[0][0].WebApp)
	assert.Equal(t, "https://app", kb.InlineKeyboard[0][0].WebApp.URL)
	assert.Equal(t, "https://t.me/x", kb.InlineKeyboard[1][0].URL)
	assert.Equal(t, "download|https://youtu.be/abc", kb.InlineKeyboard[2][0].CallbackData)
	assert.Empty(t, kb.InlineKeyboard[2][0].URL)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "🎵🎵", Truncate("🎵🎵🎵", 2))
	assert.Equal(t, "hello", Truncate("hello", 0))
}
