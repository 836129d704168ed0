package config

import (
	"time"

	"go-trading-coach/pkg/config"
)

// Coach holds coach-service specific configuration.
type Coach struct {
	// ResultCacheTTL bounds how long an identical message re-uses a cached
	// analysis instead of triggering a fresh LLM call.
	ResultCacheTTL time.Duration `mapstructure:"result_cache_ttl"`

	RedisStreamChatAnalyzeTimeout         time.Duration `mapstructure:"redis_stream_chat_analyze_timeout"`
	RedisStreamChatAnalyzeRetryInterval   time.Duration `mapstructure:"redis_stream_chat_analyze_retry_interval"`
	RedisStreamChatAnalyzeMaxIdleDuration time.Duration `mapstructure:"redis_stream_chat_analyze_max_idle_duration"`
	RedisStreamChatAnalyzeMaxRetry        int           `mapstructure:"redis_stream_chat_analyze_max_retry"`

	// UsageDigestSchedule is a cron expression for the daily usage summary.
	UsageDigestSchedule string `mapstructure:"usage_digest_schedule"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	TextModel           string `mapstructure:"text_model"`
	VisionModel         string `mapstructure:"vision_model"`
	PremiumModel        string `mapstructure:"premium_model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// AI holds configuration for AI providers.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Telegram holds configuration for the Telegram ops notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the coach service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Coach    Coach           `mapstructure:"coach"`
	Gemini   Gemini          `mapstructure:"gemini"`
	AI       AI              `mapstructure:"ai"`
	Telegram Telegram        `mapstructure:"telegram"`
}

// Load loads the coach service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
