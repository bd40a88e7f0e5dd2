// Package config loads bot settings from the environment with defaults and
// validation.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModePolling Mode = "polling"
	ModeWebhook Mode = "webhook"
)

type CooldownBackend string

const (
	CooldownFile   CooldownBackend = "file"
	CooldownRedis  CooldownBackend = "redis"
	CooldownMemory CooldownBackend = "memory"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// OTELConfig mirrors the OTEL_* variables.
type OTELConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
	SampleRatio float64
}

type Config struct {
	// Telegram
	BotToken      string
	Mode          Mode
	WebhookURL    string
	WebhookSecret string
	HTTPAddr      string
	PollTimeout   time.Duration

	// Access and limits
	RequiredChannels []string
	AdminUserID      int64
	Cooldown         time.Duration
	MaxSearchResults int
	MaxMessageLength int

	// Cooldown storage
	CooldownBackend   CooldownBackend
	CooldownFile      string
	CooldownRetention time.Duration
	CooldownCacheSize int
	Redis             RedisConfig

	// Optional user registry
	PostgresDSN string

	// Content APIs
	MetadataAPIURL  string
	SearchAPIURL    string
	ContentTimeout  time.Duration
	ContentProxyURL string
	MediaTimeout    time.Duration

	// Outbound pacing and dispatch
	SendRate            float64
	SendBurst           int
	MaxConcurrentEvents int
	ShutdownTimeout     time.Duration

	// Presentation
	JoinChannelURL string
	MiniAppURL     string
	CreditLine     string

	// Logging
	LogLevel  string
	LogPretty bool
	LogFile   string

	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load() (Config, error) {
	cfg := Config{
		BotToken:      strings.TrimSpace(getenv("BOT_TOKEN", "")),
		Mode:          Mode(strings.ToLower(getenv("BOT_MODE", string(ModePolling)))),
		WebhookURL:    getenv("WEBHOOK_URL", ""),
		WebhookSecret: getenv("WEBHOOK_SECRET", ""),
		HTTPAddr:      getenv("HTTP_ADDR", ":8000"),
		PollTimeout:   getdur("POLL_TIMEOUT", 50*time.Second),

		RequiredChannels: splitCSV(getenv("REQUIRED_CHANNELS", "@Yagami_xlight,@movie_mmsb")),
		AdminUserID:      getint64("ADMIN_USER_ID", 6468293575),
		Cooldown:         getdur("COOLDOWN", 10*time.Second),
		MaxSearchResults: getint("MAX_SEARCH_RESULTS", 10),
		MaxMessageLength: getint("MAX_MESSAGE_LENGTH", 4000),

		CooldownBackend:   CooldownBackend(strings.ToLower(getenv("COOLDOWN_BACKEND", string(CooldownFile)))),
		CooldownFile:      getenv("COOLDOWN_FILE", "data/cooldown.json"),
		CooldownRetention: getdur("COOLDOWN_RETENTION", 24*time.Hour),
		CooldownCacheSize: getint("COOLDOWN_CACHE_SIZE", 100_000),
		Redis: RedisConfig{
			Host:     getenv("REDIS_HOST", "localhost"),
			Port:     getenv("REDIS_PORT", "6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
			Prefix:   getenv("REDIS_PREFIX", "yt_audio_bot"),
		},

		PostgresDSN: getenv("POSTGRES_DSN", ""),

		MetadataAPIURL:  getenv("METADATA_API_URL", "https://zawandkhin.serv00.net/api/yt.php"),
		SearchAPIURL:    getenv("SEARCH_API_URL", "https://zawmyo123.serv00.net/api/ytsearch.php"),
		ContentTimeout:  getdur("CONTENT_TIMEOUT", 15*time.Second),
		ContentProxyURL: getenv("CONTENT_PROXY_URL", ""),
		MediaTimeout:    getdur("MEDIA_TIMEOUT", 60*time.Second),

		SendRate:            getfloat("SEND_RATE", 25),
		SendBurst:           getint("SEND_BURST", 5),
		MaxConcurrentEvents: getint("MAX_CONCURRENT_EVENTS", 64),
		ShutdownTimeout:     getdur("SHUTDOWN_TIMEOUT", 30*time.Second),

		JoinChannelURL: getenv("JOIN_CHANNEL_URL", "https://t.me/Yagami_xlight"),
		MiniAppURL:     getenv("MINI_APP_URL", "https://itachi.x10.mx"),
		CreditLine:     getenv("CREDIT_LINE", "Made by @ItachiXCoder"),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),
		LogFile:   getenv("LOG_FILE", ""),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "yt-audio-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}

	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.BotToken == "" {
		return errors.New("BOT_TOKEN must be set")
	}
	switch cfg.Mode {
	case ModePolling:
	case ModeWebhook:
		if _, err := url.ParseRequestURI(cfg.WebhookURL); err != nil {
			return fmt.Errorf("WEBHOOK_URL must be an absolute URL in webhook mode: %w", err)
		}
	default:
		return errors.New("BOT_MODE must be one of: polling, webhook")
	}
	switch cfg.CooldownBackend {
	case CooldownFile:
		if strings.TrimSpace(cfg.CooldownFile) == "" {
			return errors.New("COOLDOWN_FILE must not be empty")
		}
	case CooldownRedis, CooldownMemory:
	default:
		return errors.New("COOLDOWN_BACKEND must be one of: file, redis, memory")
	}
	if cfg.Cooldown <= 0 {
		return errors.New("COOLDOWN must be > 0")
	}
	if cfg.MaxSearchResults < 1 {
		return errors.New("MAX_SEARCH_RESULTS must be >= 1")
	}
	if cfg.MaxMessageLength < 1 || cfg.MaxMessageLength > 4096 {
		return errors.New("MAX_MESSAGE_LENGTH must be between 1 and 4096")
	}
	if cfg.ContentTimeout <= 0 || cfg.MediaTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if cfg.SendRate <= 0 {
		return errors.New("SEND_RATE must be > 0")
	}
	if cfg.SendBurst < 1 {
		return errors.New("SEND_BURST must be >= 1")
	}
	if cfg.MaxConcurrentEvents < 1 {
		return errors.New("MAX_CONCURRENT_EVENTS must be >= 1")
	}
	for _, ch := range cfg.RequiredChannels {
		if !strings.HasPrefix(ch, "@") && !isNumeric(ch) {
			return fmt.Errorf("REQUIRED_CHANNELS entry %q must be @name or a numeric chat id", ch)
		}
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func isNumeric(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
