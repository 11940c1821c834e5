package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env         string      `mapstructure:"env"` // current application environment (local, dev, prod etc)
	BotToken    string      `mapstructure:"-"`   // Telegram API token loaded from environment
	DB          DB          `mapstructure:"database"`
	Redis       Redis       `mapstructure:"redis"`
	HTTP        HTTP        `mapstructure:"http"`
	Admin       Admin       `mapstructure:"admin"`
	Telegram    Telegram    `mapstructure:"telegram"`
	Leaderboard Leaderboard `mapstructure:"leaderboard"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"` // connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Redis contains the connection settings for the admin session store.
type Redis struct {
	URL string `mapstructure:"-"` // loaded from environment
}

// HTTP configures the admin API server.
type HTTP struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Admin holds the admin panel credentials. Password is compared as-is unless
// PasswordHash is set, in which case bcrypt verification is used.
type Admin struct {
	Username     string        `mapstructure:"-"`
	Password     string        `mapstructure:"-"`
	PasswordHash string        `mapstructure:"-"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

// Telegram holds chat routing configuration. Zero chat IDs disable the
// corresponding feature.
type Telegram struct {
	AdminIDs          []int64 `mapstructure:"admin_ids"`
	LogChatID         int64   `mapstructure:"log_chat_id"`
	BingoChatID       int64   `mapstructure:"bingo_chat_id"`
	LeaderboardChatID int64   `mapstructure:"leaderboard_chat_id"`
}

// Leaderboard configures the periodic leaderboard refresh.
type Leaderboard struct {
	Schedule string `mapstructure:"schedule"` // cron expression, e.g. "@every 1m"
	Size     int    `mapstructure:"size"`
}

// IsAdmin reports whether the given Telegram user may run admin commands.
func (t Telegram) IsAdmin(userID int64) bool {
	for _, id := range t.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("http.port", 3000)
	v.SetDefault("admin.session_ttl", "1h")
	v.SetDefault("leaderboard.schedule", "@every 1m")
	v.SetDefault("leaderboard.size", 10)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("bot_token", "BOT_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("admin_username", "ADMIN_USERNAME")
	_ = v.BindEnv("admin_password", "ADMIN_PASSWORD")
	_ = v.BindEnv("admin_password_hash", "ADMIN_PASSWORD_HASH")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.BotToken = v.GetString("bot_token")
	if cfg.BotToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.Redis.URL = v.GetString("redis_url")
	if cfg.Redis.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.Admin.Username = v.GetString("admin_username")
	cfg.Admin.Password = v.GetString("admin_password")
	cfg.Admin.PasswordHash = v.GetString("admin_password_hash")
	if cfg.Admin.Username == "" || (cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "") {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
