package messages

import (
	"fmt"
	"strings"

	"github.com/BatmanBruc/yt-audio-bot/types"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func html(text string, kb types.Keyboard) types.Outgoing {
	return types.Outgoing{Text: text, ParseMode: ParseModeHTML, Keyboard: kb}
}

// Links holds the URLs and credit line shown on the welcome and result screens.
type Links struct {
	JoinChannelURL string
	MiniAppURL     string
	Credit         string
}

func AccessDenied(channels []string) types.Outgoing {
	var b strings.Builder
	b.WriteString("🚫 Access Denied\n\nYou need to join our channels to use this bot:\n\n")
	for i, ch := range channels {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, Escape(ch))
	}
	b.WriteString("\n\nJoin them and click the button below to verify:")
	return html(b.String(), types.Keyboard{
		{{Text: "✅ Verify Membership", CallbackData: types.CheckMembership().Encode()}},
	})
}

func Welcome(l Links) types.Outgoing {
	text := "🎵 <b>YouTube Music Bot</b>\n\n" +
		"Send me:\n" +
		"• A song name to search\n" +
		"• A YouTube URL to download"
	if l.Credit != "" {
		text += "\n\n<i>" + Escape(l.Credit) + "</i>"
	}
	var kb types.Keyboard
	if l.MiniAppURL != "" {
		kb = append(kb, []types.Button{{Text: "🎛️ Mini App", WebAppURL: l.MiniAppURL}})
	}
	if l.JoinChannelURL != "" {
		kb = append(kb, []types.Button{{Text: "📢 Join Channel", URL: l.JoinChannelURL}})
	}
	return html(text, kb)
}

func PleaseWait(remaining int) string {
	return fmt.Sprintf("⏳ Please wait %d seconds before your next request", remaining)
}

func PleaseWaitMessage(remaining int) types.Outgoing {
	return html(PleaseWait(remaining), nil)
}

func ProcessingLink() types.Outgoing {
	return html("⏳ Processing your YouTube link...", nil)
}

func ProcessingRequest() types.Outgoing {
	return html("⏳ Processing your request...", nil)
}

const CallbackProcessing = "Processing your request..."

func LinkFailed(reason string) types.Outgoing {
	return html("❌ Failed to process this YouTube URL\n\nError: "+Escape(reason), nil)
}

func CallbackFailed(reason string) types.Outgoing {
	return html("❌ Failed to process this video\n\nError: "+Escape(reason)+"\n\nTry again or contact support.", nil)
}

func joinKeyboard(l Links) types.Keyboard {
	if l.JoinChannelURL == "" {
		return nil
	}
	return types.Keyboard{{{Text: "📢 Join Channel", URL: l.JoinChannelURL}}}
}

func Downloading(info types.AudioInfo, l Links) types.Outgoing {
	text := fmt.Sprintf("🎵 <b>%s</b>", Escape(info.Title))
	if info.DurationLabel != "" {
		text += fmt.Sprintf("\n⏱ %s", Escape(info.DurationLabel))
	}
	text += "\n\n⏳ Downloading audio..."
	return html(text, joinKeyboard(l))
}

func DownloadFallback(info types.AudioInfo, l Links) types.Outgoing {
	text := fmt.Sprintf("🎵 <b>%s</b>\n\n🔗 <a href=\"%s\">Download Audio</a>\n\n"+
		"<i>Failed to send as audio file. Use the download link instead.</i>",
		Escape(info.Title), Escape(info.DownloadURL))
	return html(text, joinKeyboard(l))
}

// AudioMedia is the attachment sent on a successful download.
func AudioMedia(info types.AudioInfo, l Links) types.Media {
	var kb types.Keyboard
	if l.JoinChannelURL != "" {
		kb = types.Keyboard{{{Text: "💐 Join Our Channel", URL: l.JoinChannelURL}}}
	}
	return types.Media{
		SourceURL: info.DownloadURL,
		Title:     info.Title,
		Caption:   l.Credit,
		Keyboard:  kb,
	}
}

func Searching(query string) types.Outgoing {
	return html(fmt.Sprintf("🔍 Searching YouTube for \"%s\"...", Escape(query)), nil)
}

func NoResults(query string) types.Outgoing {
	return html(fmt.Sprintf("❌ No results found for \"%s\"", Escape(query)), nil)
}

// SearchEntry is one listed result; Payload is empty when no button fits.
type SearchEntry struct {
	Title   string
	Payload string
}

func SearchResults(entries []SearchEntry) types.Outgoing {
	var b strings.Builder
	b.WriteString("📋 <b>Search Results:</b>\n\n")
	kb := make(types.Keyboard, 0, len(entries))
	for i, e := range entries {
		num := i + 1
		fmt.Fprintf(&b, "%d. <b>%s</b>\n", num, Escape(e.Title))
		if e.Payload != "" {
			kb = append(kb, []types.Button{{Text: fmt.Sprintf("%d. Download", num), CallbackData: e.Payload}})
		}
	}
	return html(b.String(), kb)
}

func MembershipVerified() types.Outgoing {
	return html("✅ Membership Verified!\n\nYou can now use all bot features.\n\nSend /start to begin.", nil)
}

const (
	CallbackVerified    = "Membership verified successfully!"
	CallbackStillDenied = "❌ You still need to join all channels!"
)

func AdminPanel(stats *types.RegistryStats) types.Outgoing {
	text := "Admin panel coming soon..."
	if stats != nil {
		text += fmt.Sprintf("\n\n👥 Users: %d (active today: %d)\n📨 Requests: %d (today: %d)\n⚠️ Failed: %d",
			stats.Users, stats.ActiveToday, stats.Requests, stats.RequestsToday, stats.FailedRequests)
	}
	return html(text, nil)
}
