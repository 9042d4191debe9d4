package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionSecret string
	SessionMaxAge int // セッショントークンの有効期間（秒）

	// 登録・ログインを許可するメールアドレスの許可リスト。
	// ALLOWED_EMAILS をカンマ区切りで指定し、起動時に1回パースする。
	AllowedEmails []string

	// Rate Limit
	RateLimitGeneral int // API全般（req/min/user）
	RateLimitAuth    int // ログイン・登録（req/min/IP）

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Watch（クライアント同期ループ）
	WatchInterval time.Duration
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	allowedRaw := os.Getenv("ALLOWED_EMAILS")
	if allowedRaw == "" {
		missing = append(missing, "ALLOWED_EMAILS")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.AllowedEmails = parseAllowedEmails(allowedRaw)
	if len(cfg.AllowedEmails) == 0 {
		return nil, fmt.Errorf("ALLOWED_EMAILS contains no valid entries: %q", allowedRaw)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 604800) // 7日
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.WatchInterval = getEnvDuration("WATCH_INTERVAL", 10*time.Second)

	return cfg, nil
}

// IsEmailAllowed はメールアドレスが許可リストに含まれるかを判定する。
func (c *Config) IsEmailAllowed(email string) bool {
	for _, allowed := range c.AllowedEmails {
		if allowed == email {
			return true
		}
	}
	return false
}

// parseAllowedEmails はカンマ区切りの許可リストをパースする。
// 前後の空白を取り除き、空エントリは捨てる。
func parseAllowedEmails(raw string) []string {
	parts := strings.Split(raw, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			emails = append(emails, p)
		}
	}
	return emails
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
