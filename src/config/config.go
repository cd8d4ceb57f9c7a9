// Package config loads service settings from SELFAI_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	// InteractRate is requests per minute per client on /interact, 0 disables.
	InteractRate int `env:"INTERACT_RATE" envDefault:"60"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY"`

	RedisURL string `env:"REDIS_URL"`
	MySQLDSN string `env:"MYSQL_DSN"`

	AIProvider  string `env:"AI_PROVIDER" envDefault:"openai"`
	AIModel     string `env:"AI_MODEL"`
	AIBaseURL   string `env:"AI_BASE_URL"`
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	ClaudeKey   string `env:"CLAUDE_API_KEY"`
	GeminiKey   string `env:"GEMINI_API_KEY"`
	DeepSeekKey string `env:"DEEPSEEK_API_KEY"`

	NeynarAPIKey  string `env:"NEYNAR_API_KEY"`
	NeynarBaseURL string `env:"NEYNAR_BASE_URL"`

	DiscordToken     string `env:"DISCORD_TOKEN"`
	DiscordChannelID string `env:"DISCORD_CHANNEL_ID"`

	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"45s"`
	PublishTimeout    time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"15s"`
	TrendingTimeout   time.Duration `env:"TRENDING_TIMEOUT" envDefault:"10s"`
}

const envPrefix = "SELFAI_"

// Load parses the environment into a Config.
func Load() (Config, error) {
	return load(env.Options{Prefix: envPrefix})
}

// LoadFrom parses a fixed set of variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Prefix: envPrefix, Environment: vars})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("config: port is required")
	}
	if c.InteractRate < 0 {
		return fmt.Errorf("config: interact rate must not be negative")
	}
	if c.GenerationTimeout <= 0 || c.PublishTimeout <= 0 || c.TrendingTimeout <= 0 {
		return fmt.Errorf("config: timeouts must be positive")
	}
	if (c.DiscordToken == "") != (c.DiscordChannelID == "") {
		return fmt.Errorf("config: discord token and channel must be set together")
	}
	return nil
}
