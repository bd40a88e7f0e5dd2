// Package content talks to the metadata-by-link and search-by-query APIs and
// normalizes their answers.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/BatmanBruc/yt-audio-bot/internal/telemetry"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

const (
	defaultTitle       = "Unknown Title"
	defaultResultTitle = "No title"
	maxBodyBytes       = 4 << 20

	apiMetadata = "metadata"
	apiSearch   = "search"
)

type Gateway struct {
	client      *http.Client
	metadataURL string
	searchURL   string
	log         zerolog.Logger
	group       singleflight.Group
}

func NewGateway(client *http.Client, metadataURL, searchURL string, log zerolog.Logger) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{
		client:      client,
		metadataURL: metadataURL,
		searchURL:   searchURL,
		log:         log.With().Str("component", "content").Logger(),
	}
}

type metadataResponse struct {
	Success     bool            `json:"success"`
	Title       string          `json:"title"`
	Image       string          `json:"image"`
	Duration    json.RawMessage `json:"duration"`
	DownloadURL string          `json:"download_url"`
	Error       string          `json:"error"`
}

// FetchAudioInfo resolves link to a title and a direct audio URL. Concurrent
// calls for the same link share one upstream request.
func (g *Gateway) FetchAudioInfo(ctx context.Context, link string) (types.AudioInfo, error) {
	v, err, _ := g.group.Do(link, func() (interface{}, error) {
		return g.fetchAudioInfo(ctx, link)
	})
	if err != nil {
		return types.AudioInfo{}, err
	}
	return v.(types.AudioInfo), nil
}

func (g *Gateway) fetchAudioInfo(ctx context.Context, link string) (types.AudioInfo, error) {
	start := time.Now()
	defer telemetry.ObserveSince(telemetry.ContentDuration.WithLabelValues(apiMetadata), start)

	body, err := g.get(ctx, g.metadataURL, "url", link)
	if err != nil {
		telemetry.ContentRequests.WithLabelValues(apiMetadata, "error").Inc()
		g.log.Error().Err(err).Str("link", link).Msg("audio info request failed")
		return types.AudioInfo{}, err
	}

	var resp metadataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		telemetry.ContentRequests.WithLabelValues(apiMetadata, "error").Inc()
		g.log.Error().Err(err).Str("link", link).Msg("audio info response undecodable")
		return types.AudioInfo{}, types.NewUpstreamError("Invalid API response", err)
	}
	if !resp.Success {
		telemetry.ContentRequests.WithLabelValues(apiMetadata, "error").Inc()
		reason := strings.TrimSpace(resp.Error)
		if reason == "" {
			reason = "Invalid API response"
		}
		g.log.Warn().Str("link", link).Str("reason", reason).Msg("audio info rejected")
		return types.AudioInfo{}, types.NewUpstreamError(reason, nil)
	}
	if strings.TrimSpace(resp.DownloadURL) == "" {
		telemetry.ContentRequests.WithLabelValues(apiMetadata, "error").Inc()
		g.log.Warn().Str("link", link).Msg("audio info without download url")
		return types.AudioInfo{}, types.NewUpstreamError("No download link returned", nil)
	}

	telemetry.ContentRequests.WithLabelValues(apiMetadata, "ok").Inc()
	title := strings.TrimSpace(resp.Title)
	if title == "" {
		title = defaultTitle
	}
	return types.AudioInfo{
		Title:         title,
		ThumbnailURL:  resp.Image,
		DurationLabel: durationLabel(resp.Duration),
		DownloadURL:   resp.DownloadURL,
	}, nil
}

// Search returns the API's hits in order. Any failure is logged and yields
// an empty result.
func (g *Gateway) Search(ctx context.Context, query string) []types.SearchResult {
	start := time.Now()
	defer telemetry.ObserveSince(telemetry.ContentDuration.WithLabelValues(apiSearch), start)

	body, err := g.get(ctx, g.searchURL, "query", query)
	if err != nil {
		telemetry.ContentRequests.WithLabelValues(apiSearch, "error").Inc()
		g.log.Error().Err(err).Str("query", query).Msg("search request failed")
		return nil
	}

	var raw []types.SearchResult
	if err := json.Unmarshal(body, &raw); err != nil {
		telemetry.ContentRequests.WithLabelValues(apiSearch, "error").Inc()
		g.log.Error().Err(err).Str("query", query).Msg("search response undecodable")
		return nil
	}

	out := make([]types.SearchResult, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		if strings.TrimSpace(r.Title) == "" {
			r.Title = defaultResultTitle
		}
		out = append(out, r)
	}
	telemetry.ContentRequests.WithLabelValues(apiSearch, "ok").Inc()
	return out
}

func (g *Gateway) get(ctx context.Context, base, param, value string) ([]byte, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, types.NewTransportError("Invalid API address", err)
	}
	q := u.Query()
	q.Set(param, value)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, types.NewTransportError("Invalid API request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, types.NewTransportError(transportReason(err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, types.NewTransportError("Failed to read API response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := fmt.Sprintf("API returned status %d", resp.StatusCode)
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && strings.TrimSpace(e.Error) != "" {
			reason = e.Error
		}
		return nil, types.NewUpstreamError(reason, nil)
	}
	return body, nil
}

func transportReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return "Request timed out"
	}
	return "Could not reach the API"
}

// durationLabel accepts "3:45", a number of seconds, or nothing.
func durationLabel(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		total := int(n)
		h, m, sec := total/3600, (total%3600)/60, total%60
		if h > 0 {
			return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
		}
		return strconv.Itoa(m) + ":" + fmt.Sprintf("%02d", sec)
	}
	return ""
}
