// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// FireWindow はリマインダーの発火時間帯の幅。スイープ間隔はこれを超えてはならない。
const FireWindow = 5 * time.Minute

// メール送信方式
const (
	MailTransportLog    = "log"
	MailTransportResend = "resend"
	MailTransportKafka  = "kafka"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Server
	ServerPort string
	BaseURL    string

	// CLIST
	CLISTBaseURL  string
	CLISTUsername string
	CLISTAPIKey   string
	CLISTTimeout  time.Duration
	CLISTLimit    int

	// Listing cache (Redis)
	ContestCacheTTL time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Sweep
	SweepInterval      time.Duration
	SweepMaxConcurrent int
	DisplayTimezone    *time.Location

	// Mail
	MailTransport  string
	MailTimeout    time.Duration
	MailFrom       string
	ResendAPIKey   string
	KafkaBrokers   []string
	KafkaMailTopic string

	// Session
	SessionMaxAge        int
	SessionRetentionDays int

	// Rate Limit
	RateLimitGeneral  int
	RateLimitReminder int

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Cron
	CronSecret string

	// Logging
	LogFormat string
	LogLevel  string
}

// LoadDotEnv はカレントディレクトリの .env を環境変数に読み込む。
// ファイルが存在しない場合は何もしない。既存の環境変数は上書きしない。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定、または値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")

	cfg.CLISTBaseURL = getEnvString("CLIST_BASE_URL", "https://clist.by/api/v4/contest/")
	cfg.CLISTUsername = os.Getenv("CLIST_USERNAME")
	cfg.CLISTAPIKey = os.Getenv("CLIST_API_KEY")
	cfg.CLISTTimeout = getEnvDuration("CLIST_TIMEOUT", 10*time.Second)
	cfg.CLISTLimit = getEnvInt("CLIST_LIMIT", 150)

	cfg.ContestCacheTTL = getEnvDuration("CONTEST_CACHE_TTL", 60*time.Second)
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)

	cfg.SweepInterval = min(getEnvDuration("SWEEP_INTERVAL", FireWindow), FireWindow)
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = FireWindow
	}
	cfg.SweepMaxConcurrent = max(getEnvInt("SWEEP_MAX_CONCURRENT", 1), 1)

	tzName := getEnvString("DISPLAY_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", tzName, err)
	}
	cfg.DisplayTimezone = loc

	cfg.MailTransport = strings.ToLower(getEnvString("MAIL_TRANSPORT", MailTransportLog))
	cfg.MailTimeout = getEnvDuration("MAIL_TIMEOUT", 10*time.Second)
	cfg.MailFrom = getEnvString("RESEND_FROM", "onboarding@resend.dev")
	cfg.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.KafkaBrokers = getEnvList("KAFKA_BROKERS")
	cfg.KafkaMailTopic = getEnvString("KAFKA_MAIL_TOPIC", "contesthub.reminder-mail")

	switch cfg.MailTransport {
	case MailTransportLog:
	case MailTransportResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required when MAIL_TRANSPORT=%s", MailTransportResend)
		}
	case MailTransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is required when MAIL_TRANSPORT=%s", MailTransportKafka)
		}
	default:
		return nil, fmt.Errorf("unknown MAIL_TRANSPORT %q (want log, resend or kafka)", cfg.MailTransport)
	}

	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.SessionRetentionDays = getEnvInt("SESSION_RETENTION_DAYS", 7)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitReminder = getEnvInt("RATE_LIMIT_REMINDER", 20)
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.CronSecret = os.Getenv("CRON_SECRET")
	cfg.LogFormat = getEnvString("LOG_FORMAT", "json")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマ区切りの環境変数を空要素を除いて返す。
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
