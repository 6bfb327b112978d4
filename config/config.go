package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration (optional; the engine runs headless without it)
	DiscordToken        string
	DiscordGuildID      string
	DiscordModRoleIDs   []string // roles whose approval fast-passes a vote
	DiscordAdminRoleIDs []string // roles eligible to vote
	DiscordMuteRoleID   string

	// Database configuration
	DatabaseURL string

	// Casino configuration
	StartingBalance int64 // balance granted on first access
	MinBet          int64 // floor for any single-player game stake
	BaccaratMinBet  int64 // table minimum for baccarat rooms

	// Big-win announcements (disabled when the channel is empty)
	BigWinChannelID string
	BigWinThreshold int64 // minimum single-game profit worth announcing

	// Work command configuration
	WorkBaseIncome   int64
	WorkCooldownSecs int64

	// Status page configuration
	StatusAddr       string   // listen address, empty disables the listener
	StatusAllowedIPs []string // IPs permitted to hit the status endpoints

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Casino settings with defaults
		StartingBalance: 1000,
		MinBet:          10,
		BaccaratMinBet:  50,

		// Work settings with defaults
		WorkBaseIncome:   1000,
		WorkCooldownSecs: 3600,

		// Big-win announcements
		BigWinChannelID: os.Getenv("BIG_WIN_CHANNEL_ID"),
		BigWinThreshold: 10000,

		// Status page
		StatusAddr: os.Getenv("STATUS_ADDR"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}
	if minBet := os.Getenv("MIN_BET"); minBet != "" {
		if parsed, err := strconv.ParseInt(minBet, 10, 64); err == nil {
			config.MinBet = parsed
		}
	}
	if minBet := os.Getenv("BACCARAT_MIN_BET"); minBet != "" {
		if parsed, err := strconv.ParseInt(minBet, 10, 64); err == nil {
			config.BaccaratMinBet = parsed
		}
	}
	if income := os.Getenv("WORK_BASE_INCOME"); income != "" {
		if parsed, err := strconv.ParseInt(income, 10, 64); err == nil {
			config.WorkBaseIncome = parsed
		}
	}
	if cooldown := os.Getenv("WORK_COOLDOWN_SECS"); cooldown != "" {
		if parsed, err := strconv.ParseInt(cooldown, 10, 64); err == nil {
			config.WorkCooldownSecs = parsed
		}
	}
	if threshold := os.Getenv("BIG_WIN_THRESHOLD"); threshold != "" {
		if parsed, err := strconv.ParseInt(threshold, 10, 64); err == nil {
			config.BigWinThreshold = parsed
		}
	}

	config.DiscordModRoleIDs = splitList(os.Getenv("DISCORD_MOD_ROLE_IDS"))
	config.DiscordAdminRoleIDs = splitList(os.Getenv("DISCORD_ADMIN_ROLE_IDS"))
	config.DiscordMuteRoleID = os.Getenv("DISCORD_MUTE_ROLE_ID")

	// Parse status page allow-list
	config.StatusAllowedIPs = splitList(os.Getenv("STATUS_ALLOWED_IPS"))

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
