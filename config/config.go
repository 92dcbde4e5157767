package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the webchat service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// RedisConfig contains connection settings for the shared quota store
type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// RateLimitConfig controls the sliding-window request gate.
// FailOpen admits requests when the quota store itself errors.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Window   time.Duration `mapstructure:"window"`
	Limit    int           `mapstructure:"limit"`
	FailOpen bool          `mapstructure:"fail_open"`
}

// LLMConfig contains the chat-completions provider settings
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ScrapeConfig contains page fetch and cleaning settings
type ScrapeConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	Extractor     string        `mapstructure:"extractor"` // selectors or readability
	UserAgent     string        `mapstructure:"user_agent"`
}

func (r RateLimitConfig) Validate() error {
	if r.Limit <= 0 {
		return fmt.Errorf("ratelimit.limit must be > 0")
	}
	if r.Window <= 0 {
		return fmt.Errorf("ratelimit.window must be > 0")
	}
	return nil
}

// LoadConfig reads configuration from file and environment, applying
// defaults for every knob so an empty environment still serves.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("server.address", ":10002")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.dial_timeout", 5*time.Second)

	viper.SetDefault("ratelimit.enabled", true)
	viper.SetDefault("ratelimit.window", 10*time.Second)
	viper.SetDefault("ratelimit.limit", 10)
	viper.SetDefault("ratelimit.fail_open", true)

	viper.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("llm.model", "llama-3.1-8b-instant")
	viper.SetDefault("llm.max_tokens", 8000)
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.timeout", 60*time.Second)

	viper.SetDefault("scrape.timeout", 15*time.Second)
	viper.SetDefault("scrape.max_tokens", 1500)
	viper.SetDefault("scrape.max_concurrent", 4)
	viper.SetDefault("scrape.extractor", "selectors")
	viper.SetDefault("scrape.user_agent", "webchat/1.0 (+contact@example.com)")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("WEBCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// env-only deployments run without a config file
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.RateLimit.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
