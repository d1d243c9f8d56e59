package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	BotToken       string
	OwnerID        int64
	DatabaseChatID int64
	OwnerUsername  string
	DatabasePath   string
	LogLevel       string
	LogFile        string
	Locale         string
	PromptTimeout  time.Duration
	ProgressEvery  int     // Completed users between broadcast progress edits
	BroadcastRate  float64 // Broadcast copies per second, 0 disables pacing
	MetricsAddr    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is required")
	}
	if _, err := parseBotID(token); err != nil {
		return nil, fmt.Errorf("invalid BOT_TOKEN: %w", err)
	}
	cfg.BotToken = token

	ownerID, err := requireInt64("OWNER_ID")
	if err != nil {
		return nil, err
	}
	if ownerID <= 0 {
		return nil, fmt.Errorf("invalid OWNER_ID '%d': must be a user ID", ownerID)
	}
	cfg.OwnerID = ownerID

	dbChatID, err := requireInt64("DATABASE_CHAT_ID")
	if err != nil {
		return nil, err
	}
	if dbChatID == 0 {
		return nil, fmt.Errorf("invalid DATABASE_CHAT_ID: must be non-zero")
	}
	cfg.DatabaseChatID = dbChatID

	cfg.OwnerUsername = strings.TrimPrefix(cfg.LookupEnvOrString("OWNER_USERNAME", "IlhamTG"), "@")
	cfg.DatabasePath = cfg.LookupEnvOrString("DATABASE_PATH", "./data/bot.db")
	cfg.LogLevel = cfg.LookupEnvOrString("LOG_LEVEL", "INFO")
	cfg.LogFile = cfg.LookupEnvOrString("LOG_FILE", "logs.txt")
	cfg.Locale = cfg.LookupEnvOrString("LOCALE", "en")
	cfg.MetricsAddr = cfg.LookupEnvOrString("METRICS_ADDR", "")

	cfg.PromptTimeout = 45 * time.Second
	if s := os.Getenv("PROMPT_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid PROMPT_TIMEOUT '%s': %w", s, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid PROMPT_TIMEOUT '%s': must be positive", s)
		}
		cfg.PromptTimeout = d
	}

	cfg.ProgressEvery = 250
	if s := os.Getenv("BROADCAST_PROGRESS_EVERY"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid BROADCAST_PROGRESS_EVERY '%s': must be a valid integer", s)
		}
		if n <= 0 {
			return nil, fmt.Errorf("invalid BROADCAST_PROGRESS_EVERY '%d': must be positive", n)
		}
		cfg.ProgressEvery = n
	}

	cfg.BroadcastRate = 25
	if s := os.Getenv("BROADCAST_RATE"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BROADCAST_RATE '%s': must be a number", s)
		}
		if r < 0 {
			return nil, fmt.Errorf("invalid BROADCAST_RATE '%s': must be non-negative", s)
		}
		cfg.BroadcastRate = r
	}

	return cfg, nil
}

// BotID returns the numeric id embedded in the bot token. Persistent state
// is keyed by it.
func (c *Config) BotID() int64 {
	id, _ := parseBotID(c.BotToken)
	return id
}

// parseBotID extracts the id part of "<id>:<secret>"
func parseBotID(token string) (int64, error) {
	idPart, secret, ok := strings.Cut(token, ":")
	if !ok || secret == "" {
		return 0, fmt.Errorf("expected <id>:<secret>")
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bot id '%s' is not a positive integer", idPart)
	}
	return id, nil
}

func requireInt64(key string) (int64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, fmt.Errorf("%s environment variable is required", key)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
