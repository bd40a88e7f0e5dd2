package handlers

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/BatmanBruc/yt-audio-bot/types"
)

var videoLinkPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.?be)/.+$`)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)

// IsVideoLink reports whether text looks like a supported video link.
func IsVideoLink(text string) bool {
	return videoLinkPattern.MatchString(strings.TrimSpace(text))
}

// commandName returns the leading /command of text without any @botname
// suffix, or "" when text is not a command.
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	first := strings.Fields(text)[0]
	name, _, _ := strings.Cut(first, "@")
	return strings.ToLower(name)
}

// ClassifyText picks the flow for a plain message, in priority order.
func ClassifyText(text string, from, admin types.UserID) types.Flow {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.FlowNone
	}
	switch cmd := commandName(text); {
	case cmd == "/admin" && admin != 0 && from == admin:
		return types.FlowAdmin
	case cmd == "/start":
		return types.FlowStart
	}
	if IsVideoLink(text) {
		return types.FlowLinkDownload
	}
	return types.FlowSearch
}

// CanonicalLink rewrites a recognizable video link to https://youtu.be/<id>.
// It returns "" when no id can be found.
func CanonicalLink(link string) string {
	raw := strings.TrimSpace(link)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch host {
	case "youtu.be", "youtube.be":
		id = parts[0]
	case "youtube.com", "music.youtube.com":
		switch {
		case parts[0] == "watch":
			id = u.Query().Get("v")
		case len(parts) >= 2 && (parts[0] == "shorts" || parts[0] == "embed" || parts[0] == "live" || parts[0] == "v"):
			id = parts[1]
		}
	}
	if !videoIDPattern.MatchString(id) {
		return ""
	}
	return "https://youtu.be/" + id
}

// downloadPayload encodes a download button for link within the callback
// data limit. It returns "" when even the canonical form does not fit.
func downloadPayload(link string) string {
	if p := types.Download(link).Encode(); len(p) <= types.MaxCallbackDataLen && !strings.Contains(link, types.CallbackDelimiter) {
		return p
	}
	if canon := CanonicalLink(link); canon != "" {
		if p := types.Download(canon).Encode(); len(p) <= types.MaxCallbackDataLen {
			return p
		}
	}
	return ""
}
