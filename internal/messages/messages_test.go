package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/yt-audio-bot/types"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Tom &amp; Jerry&lt;/b&gt; &quot;x&quot; &#39;y&#39;", Escape(` <b>Tom & Jerry</b> "x" 'y' `))
}

func TestAccessDeniedListsChannelsInOrder(t *testing.T) {
	out := AccessDenied([]string{"@first", "@second"})
	assert.Equal(t, "🚫 Access Denied\n\nYou need to join our channels to use this bot:\n\n1. @first\n2. @second\n\nJoin them and click the button below to verify:", out.Text)
	assert.Equal(t, ParseModeHTML, out.ParseMode)
	require.Len(t, out.Keyboard, 1)
	assert.Equal(t, "check_membership", out.Keyboard[0][0].CallbackData)
}

func TestWelcomeButtons(t *testing.T) {
	assert.Empty(t, Welcome(Links{}).Keyboard)

	out := Welcome(Links{JoinChannelURL: "https://t.me/x", MiniAppURL: "https://app", Credit: "by <me>"})
	require.Len(t, out.Keyboard, 2)
	assert.Equal(t, "https://app", out.Keyboard[0][0].WebAppURL)
	assert.Equal(t, "https://t.me/x", out.Keyboard[1][0].URL)
	assert.Contains(t, out.Text, "<i>by &lt;me&gt;</i>")
}

func TestPleaseWait(t *testing.T) {
	assert.Equal(t, "⏳ Please wait 7 seconds before your next request", PleaseWait(7))
}

func TestSearchResultsSkipsButtonWithoutPayload(t *testing.T) {
	out := SearchResults([]SearchEntry{
		{Title: "One", Payload: "download|a"},
		{Title: "Two"},
		{Title: "Three", Payload: "download|c"},
	})
	assert.Equal(t, "📋 <b>Search Results:</b>\n\n1. <b>One</b>\n2. <b>Two</b>\n3. <b>Three</b>\n", out.Text)
	require.Len(t, out.Keyboard, 2)
	assert.Equal(t, "1. Download", out.Keyboard[0][0].Text)
	assert.Equal(t, "3. Download", out.Keyboard[1][0].Text)
}

func TestDownloadingShowsDurationWhenKnown(t *testing.T) {
	l := Links{JoinChannelURL: "https://t.me/x"}
	out := Downloading(types.AudioInfo{Title: "Song", DurationLabel: "3:45"}, l)
	assert.Equal(t, "🎵 <b>Song</b>\n⏱ 3:45\n\n⏳ Downloading audio...", out.Text)
	require.Len(t, out.Keyboard, 1)

	out = Downloading(types.AudioInfo{Title: "Song"}, Links{})
	assert.Equal(t, "🎵 <b>Song</b>\n\n⏳ Downloading audio...", out.Text)
	assert.Nil(t, out.Keyboard)
}

func TestAudioMedia(t *testing.T) {
	m := AudioMedia(types.AudioInfo{Title: "Song", DownloadURL: "https://cdn/a.mp3"}, Links{JoinChannelURL: "https://t.me/x", Credit: "credit"})
	assert.Equal(t, "https://cdn/a.mp3", m.SourceURL)
	assert.Equal(t, "credit", m.Caption)
	assert.Equal(t, "💐 Join Our Channel", m.Keyboard[0][0].Text)
}

func TestAdminPanel(t *testing.T) {
	assert.Equal(t, "Admin panel coming soon...", AdminPanel(nil).Text)
	out := AdminPanel(&types.RegistryStats{Users: 2, ActiveToday: 1, Requests: 5, RequestsToday: 3, FailedRequests: 1})
	assert.Contains(t, out.Text, "👥 Users: 2 (active today: 1)")
	assert.Contains(t, out.Text, "⚠️ Failed: 1")
}
