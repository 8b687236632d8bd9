package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Currency   CurrencyConfig
	WhatsApp   WhatsAppConfig
	Cloudinary CloudinaryConfig
	Admin      AdminSeedConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig selects the gorm driver: mysql, postgres or sqlite.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is optional; with an empty Addr duplicate detection stays in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	DedupTTL time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type CurrencyConfig struct {
	Locale string
	Symbol string
}

type BotbizConfig struct {
	Enabled         bool
	BaseURL         string
	APIKey          string
	PhoneNumber     string
	VerifyToken     string
	PollingEnabled  bool
	PollingInterval time.Duration
}

type TwilioConfig struct {
	Enabled     bool
	BaseURL     string
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

type Dialog360Config struct {
	Enabled       bool
	BaseURL       string
	APIKey        string
	PhoneNumberID string
}

type MetaConfig struct {
	Enabled       bool
	BaseURL       string
	AppID         string
	AppSecret     string // verifies X-Hub-Signature-256 when set
	PhoneNumberID string
	AccessToken   string
	VerifyToken   string
}

type WhatsAppConfig struct {
	Botbiz    BotbizConfig
	Twilio    TwilioConfig
	Dialog360 Dialog360Config
	Meta      MetaConfig
}

// ActiveProvider picks the outbound provider: botbiz, meta, twilio, dialog360, or log when none is enabled.
func (w WhatsAppConfig) ActiveProvider() string {
	switch {
	case w.Botbiz.Enabled:
		return "botbiz"
	case w.Meta.Enabled:
		return "meta"
	case w.Twilio.Enabled:
		return "twilio"
	case w.Dialog360.Enabled:
		return "dialog360"
	}
	return "log"
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether receipt uploads can be served.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// AdminSeedConfig creates the first admin at startup when Email and Password are set.
type AdminSeedConfig struct {
	Name     string
	Email    string
	Password string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] .env not loaded:", err)
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT_SEC", 10, time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT_SEC", 30, time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DB_DSN", "root:@tcp(localhost:3306)/whatsledger?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			DedupTTL: getDurationEnv("DEDUP_TTL_HOURS", 24, time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_SECRET", "change-me-in-production"),
			AccessExpiry: getDurationEnv("JWT_EXPIRY_HOURS", 24, time.Hour),
			Issuer:       "whatsledger",
		},
		Currency: CurrencyConfig{
			Locale: getEnv("CURRENCY_LOCALE", "en-IN"),
			Symbol: getEnv("CURRENCY_SYMBOL", "₹"),
		},
		WhatsApp: WhatsAppConfig{
			Botbiz: BotbizConfig{
				Enabled:         getBoolEnv("BOTBIZ_ENABLED"),
				BaseURL:         getEnv("BOTBIZ_BASE_URL", "https://api.botbiz.io"),
				APIKey:          getEnv("BOTBIZ_API_KEY", ""),
				PhoneNumber:     getEnv("BOTBIZ_PHONE_NUMBER", ""),
				VerifyToken:     getEnv("BOTBIZ_VERIFY_TOKEN", "8450385012773603920"),
				PollingEnabled:  getBoolEnv("BOTBIZ_POLLING_ENABLED"),
				PollingInterval: getDurationEnv("BOTBIZ_POLLING_INTERVAL", 10000, time.Millisecond),
			},
			Twilio: TwilioConfig{
				Enabled:     getBoolEnv("TWILIO_ENABLED"),
				BaseURL:     getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
				AccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
				AuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
				PhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
			},
			Dialog360: Dialog360Config{
				Enabled:       getBoolEnv("DIALOG360_ENABLED"),
				BaseURL:       getEnv("DIALOG360_BASE_URL", "https://waba.360dialog.io"),
				APIKey:        getEnv("DIALOG360_API_KEY", ""),
				PhoneNumberID: getEnv("DIALOG360_PHONE_NUMBER_ID", ""),
			},
			Meta: MetaConfig{
				Enabled:       getBoolEnv("META_ENABLED"),
				BaseURL:       getEnv("META_BASE_URL", "https://graph.facebook.com"),
				AppID:         getEnv("META_APP_ID", ""),
				AppSecret:     getEnv("META_APP_SECRET", ""),
				PhoneNumberID: getEnv("META_PHONE_NUMBER_ID", ""),
				AccessToken:   getEnv("META_ACCESS_TOKEN", ""),
				VerifyToken:   getEnv("META_WEBHOOK_VERIFY_TOKEN", ""),
			},
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "whatsledger/receipts"),
		},
		Admin: AdminSeedConfig{
			Name:     getEnv("ADMIN_NAME", "Administrator"),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			Window:   getDurationEnv("RATE_LIMIT_WINDOW_SEC", 60, time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
