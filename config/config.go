package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "config.yaml"

type Config struct {
	// Server configuration
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	VenueName   string `yaml:"venue_name"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Database DatabaseConfig `yaml:"database"`

	// Redis configuration. Empty URL disables caching and rate limiting.
	RedisURL string `yaml:"redis_url"`

	LLM    LLMConfig    `yaml:"llm"`
	Email  EmailConfig  `yaml:"email"`
	Social SocialConfig `yaml:"social"`
	PubNub PubNubConfig `yaml:"pubnub"`

	DiscordWebhookURL string `yaml:"discord_webhook_url"`

	// Security
	AdminTokenHash     string `yaml:"admin_token_hash"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`

	// Outbound HTTP
	OutboundTimeout time.Duration `yaml:"outbound_timeout"`

	// Monitoring
	EnableMetrics bool `yaml:"enable_metrics"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url"`
	Path     string `yaml:"path"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type EmailConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	From        string `yaml:"from"`
	Concurrency int    `yaml:"concurrency"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_username"`
	SMTPPassword string `yaml:"smtp_password"`
	SMTPTLS      bool   `yaml:"smtp_tls"`
}

type SocialConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIVersion  string        `yaml:"api_version"`
	AccessToken string        `yaml:"access_token"`
	AccountID   string        `yaml:"account_id"`
	Fields      string        `yaml:"fields"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

type PubNubConfig struct {
	PublishKey   string `yaml:"publish_key"`
	SubscribeKey string `yaml:"subscribe_key"`
	UserID       string `yaml:"user_id"`
	Channel      string `yaml:"channel"`
}

func Default() *Config {
	return &Config{
		Port:        "8090",
		Environment: "development",
		VenueName:   "The Venue",
		LogLevel:    "info",
		LogFormat:   "text",
		Database: DatabaseConfig{
			Driver:   "postgres",
			Path:     "marketing.db",
			MaxConns: 10,
			MinConns: 2,
		},
		LLM: LLMConfig{
			Provider:    "anthropic",
			MaxTokens:   1024,
			Temperature: 0.7,
		},
		Email: EmailConfig{
			Provider:    "resend",
			BaseURL:     "https://api.resend.com",
			Concurrency: 5,
			SMTPPort:    587,
		},
		Social: SocialConfig{
			BaseURL:    "https://graph.facebook.com",
			APIVersion: "v19.0",
			Fields:     "id,message,created_time,permalink_url,reactions.summary(true),comments.summary(true),shares",
			CacheTTL:   10 * time.Minute,
		},
		PubNub: PubNubConfig{
			UserID:  "marketing-ops",
			Channel: "marketing-tasks",
		},
		RateLimitPerMinute: 20,
		OutboundTimeout:    30 * time.Second,
		EnableMetrics:      true,
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// at path and finally the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			content := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
				return nil, fmt.Errorf("error parsing config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist) && path == DefaultConfigFile:
			// the default file is optional
		default:
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	// Server
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.VenueName = getEnv("VENUE_NAME", cfg.VenueName)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	// Database
	cfg.Database.Driver = getEnv("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Path = getEnv("DATABASE_PATH", cfg.Database.Path)
	cfg.Database.MaxConns = getEnvAsInt("DATABASE_MAX_CONNS", cfg.Database.MaxConns)
	cfg.Database.MinConns = getEnvAsInt("DATABASE_MIN_CONNS", cfg.Database.MinConns)

	// Redis
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)

	// LLM
	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", getEnv("ANTHROPIC_API_KEY", cfg.LLM.APIKey))
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.LLM.Temperature = getEnvAsFloat("LLM_TEMPERATURE", cfg.LLM.Temperature)

	// Email
	cfg.Email.Provider = getEnv("EMAIL_PROVIDER", cfg.Email.Provider)
	cfg.Email.APIKey = getEnv("RESEND_API_KEY", cfg.Email.APIKey)
	cfg.Email.BaseURL = getEnv("EMAIL_BASE_URL", cfg.Email.BaseURL)
	cfg.Email.From = getEnv("EMAIL_FROM", cfg.Email.From)
	cfg.Email.Concurrency = getEnvAsInt("EMAIL_CONCURRENCY", cfg.Email.Concurrency)
	cfg.Email.SMTPHost = getEnv("SMTP_HOST", cfg.Email.SMTPHost)
	cfg.Email.SMTPPort = getEnvAsInt("SMTP_PORT", cfg.Email.SMTPPort)
	cfg.Email.SMTPUsername = getEnv("SMTP_USERNAME", cfg.Email.SMTPUsername)
	cfg.Email.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.Email.SMTPPassword)
	cfg.Email.SMTPTLS = getEnvAsBool("SMTP_TLS", cfg.Email.SMTPTLS)

	// Social graph
	cfg.Social.BaseURL = getEnv("SOCIAL_BASE_URL", cfg.Social.BaseURL)
	cfg.Social.APIVersion = getEnv("SOCIAL_API_VERSION", cfg.Social.APIVersion)
	cfg.Social.AccessToken = getEnv("SOCIAL_ACCESS_TOKEN", cfg.Social.AccessToken)
	cfg.Social.AccountID = getEnv("SOCIAL_ACCOUNT_ID", cfg.Social.AccountID)
	cfg.Social.Fields = getEnv("SOCIAL_FIELDS", cfg.Social.Fields)
	cfg.Social.CacheTTL = getEnvAsDuration("SOCIAL_CACHE_TTL", cfg.Social.CacheTTL)

	// PubNub
	cfg.PubNub.PublishKey = getEnv("PUBNUB_PUBLISH_KEY", cfg.PubNub.PublishKey)
	cfg.PubNub.SubscribeKey = getEnv("PUBNUB_SUBSCRIBE_KEY", cfg.PubNub.SubscribeKey)
	cfg.PubNub.UserID = getEnv("PUBNUB_USER_ID", cfg.PubNub.UserID)
	cfg.PubNub.Channel = getEnv("PUBNUB_CHANNEL", cfg.PubNub.Channel)

	cfg.DiscordWebhookURL = getEnv("DISCORD_WEBHOOK_URL", cfg.DiscordWebhookURL)

	// Security
	cfg.AdminTokenHash = getEnv("ADMIN_TOKEN_HASH", cfg.AdminTokenHash)
	cfg.RateLimitPerMinute = getEnvAsInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)

	cfg.OutboundTimeout = getEnvAsDuration("OUTBOUND_TIMEOUT", cfg.OutboundTimeout)
	cfg.EnableMetrics = getEnvAsBool("ENABLE_METRICS", cfg.EnableMetrics)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate reports configuration that makes startup impossible.
// Missing third-party credentials are not fatal; they surface per request.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}
