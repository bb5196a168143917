package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel    string
	LogFormat   string // "json" or "console"
	HTTPPort    string
	CORSOrigins []string

	// Odds provider
	OddsAPIKey         string
	OddsAPIURL         string
	OddsSport          string
	OddsRegions        string
	OddsMarkets        string
	OddsRequestTimeout time.Duration
	OddsRateLimitRPS   float64

	// Side data written by the external scraper
	SideDataDir     string
	SideDataTimeout time.Duration

	// Storage
	DataDir         string
	StorageBackend  string // "json" or "postgres"
	AlertSink       string // "console" or "postgres"
	SaveHistorical  bool
	RetentionWindow time.Duration
	PostgresHost    string
	PostgresPort    string
	PostgresUser    string
	PostgresPass    string
	PostgresDB      string
	PostgresSSL     string

	// Analysis
	SeasonStart     time.Time
	SteamPolicy     string // "first" or "largest"
	ConsensusMethod string // "mean" or "median"
	SentimentNoVig  bool   // strip the vig from the implied probability proxy
	ThresholdsFile  string
	Thresholds      Thresholds

	// Scheduling
	Schedule string

	// Notifications
	TelegramBotToken string
	TelegramChatID   int64
}

// LoadFromEnv loads configuration from environment variables with defaults.
// A .env file in the working directory is read first when present.
func LoadFromEnv() (*Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	dataDir := getEnvOrDefault("DATA_DIR", "data")

	cfg := &Config{
		// Application defaults
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "json"),
		HTTPPort:    getEnvOrDefault("HTTP_PORT", "8080"),
		CORSOrigins: getListOrDefault("CORS_ORIGINS", []string{"*"}),

		// Odds provider defaults
		OddsAPIKey:         os.Getenv("ODDS_API_KEY"),
		OddsAPIURL:         getEnvOrDefault("ODDS_API_URL", "https://api.the-odds-api.com/v4"),
		OddsSport:          getEnvOrDefault("ODDS_SPORT", "americanfootball_nfl"),
		OddsRegions:        getEnvOrDefault("ODDS_REGIONS", "us"),
		OddsMarkets:        getEnvOrDefault("ODDS_MARKETS", "h2h,spreads,totals"),
		OddsRequestTimeout: getDurationOrDefault("ODDS_REQUEST_TIMEOUT", 30*time.Second),
		OddsRateLimitRPS:   getFloat64OrDefault("ODDS_RATE_LIMIT_RPS", 1.0),

		// Side data defaults
		SideDataDir:     getEnvOrDefault("SIDE_DATA_DIR", filepath.Join(dataDir, "scraped")),
		SideDataTimeout: getDurationOrDefault("SIDE_DATA_TIMEOUT", 10*time.Second),

		// Storage defaults
		DataDir:         dataDir,
		StorageBackend:  getEnvOrDefault("STORAGE_BACKEND", "json"),
		AlertSink:       getEnvOrDefault("ALERT_SINK", "console"),
		SaveHistorical:  getBoolOrDefault("SAVE_HISTORICAL", true),
		RetentionWindow: time.Duration(getIntOrDefault("RETENTION_DAYS", 30)) * 24 * time.Hour,
		PostgresHost:    getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:    getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser:    getEnvOrDefault("POSTGRES_USER", "postgres"),
		PostgresPass:    os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:      getEnvOrDefault("POSTGRES_DB", "nfl_betting"),
		PostgresSSL:     getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		// Analysis defaults
		SeasonStart:     getDateOrDefault("SEASON_START", time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC)),
		SteamPolicy:     getEnvOrDefault("STEAM_POLICY", "first"),
		ConsensusMethod: getEnvOrDefault("CONSENSUS_METHOD", "mean"),
		SentimentNoVig:  getBoolOrDefault("SENTIMENT_NO_VIG", false),
		ThresholdsFile:  os.Getenv("THRESHOLDS_FILE"),
		Thresholds:      DefaultThresholds(),

		// Scheduling defaults: 09:00 every day (seconds field enabled)
		Schedule: getEnvOrDefault("SCHEDULE", "0 0 9 * * *"),

		// Notifications
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   int64(getIntOrDefault("TELEGRAM_CHAT_ID", 0)),
	}

	if cfg.ThresholdsFile != "" {
		err = cfg.Thresholds.LoadFile(cfg.ThresholdsFile)
		if err != nil {
			return nil, fmt.Errorf("load thresholds: %w", err)
		}
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
// The odds API key is not checked here; commands that call the provider use RequireOddsAPIKey.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR cannot be empty")
	}

	if c.OddsAPIURL == "" {
		return fmt.Errorf("ODDS_API_URL cannot be empty")
	}

	if c.StorageBackend != "json" && c.StorageBackend != "postgres" {
		return fmt.Errorf("STORAGE_BACKEND must be 'json' or 'postgres', got %q", c.StorageBackend)
	}

	if c.AlertSink != "console" && c.AlertSink != "postgres" {
		return fmt.Errorf("ALERT_SINK must be 'console' or 'postgres', got %q", c.AlertSink)
	}

	if c.SteamPolicy != "first" && c.SteamPolicy != "largest" {
		return fmt.Errorf("STEAM_POLICY must be 'first' or 'largest', got %q", c.SteamPolicy)
	}

	if c.ConsensusMethod != "mean" && c.ConsensusMethod != "median" {
		return fmt.Errorf("CONSENSUS_METHOD must be 'mean' or 'median', got %q", c.ConsensusMethod)
	}

	if c.RetentionWindow <= 0 {
		return fmt.Errorf("RETENTION_DAYS must be positive")
	}

	if c.OddsRateLimitRPS <= 0 {
		return fmt.Errorf("ODDS_RATE_LIMIT_RPS must be positive, got %f", c.OddsRateLimitRPS)
	}

	return c.Thresholds.Validate()
}

// RequireOddsAPIKey fails when no provider key is configured.
func (c *Config) RequireOddsAPIKey() error {
	if strings.TrimSpace(c.OddsAPIKey) == "" {
		return fmt.Errorf("ODDS_API_KEY not set in environment")
	}
	return nil
}

// SnapshotDir is where per-poll snapshot files are written.
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.DataDir, "line_history")
}

// AlertsDir is where alert exports are written.
func (c *Config) AlertsDir() string {
	return filepath.Join(c.DataDir, "alerts")
}

// ReportsDir is where line movement reports are written.
func (c *Config) ReportsDir() string {
	return filepath.Join(c.DataDir, "reports")
}

// CurrentWeek returns the regular-season week (1-18) containing now.
func (c *Config) CurrentWeek(now time.Time) int {
	if now.Before(c.SeasonStart) {
		return 1
	}

	days := int(now.Sub(c.SeasonStart).Hours() / 24)
	week := days/7 + 1

	return min(max(1, week), 18)
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getDateOrDefault(key string, defaultValue time.Time) time.Time {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return defaultValue
	}

	return date
}
