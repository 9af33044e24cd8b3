package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Auth mode values for WebhookConfig.AuthMode
const (
	AuthModeBasic  = "basic"
	AuthModeSecret = "secret"
)

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds the relational store settings.
// Type selects the driver: "sqlite" (default) or "postgres".
type DatabaseConfig struct {
	Type            string
	DSN             string // postgres connection string, or sqlite file path
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// WebhookConfig holds the inbound webhook credentials.
// AuthMode selects the verifier variant: "basic" (Authorization: Basic user:pass)
// or "secret" (X-Webhook-Secret header).
type WebhookConfig struct {
	AuthMode string
	Username string
	Password string
	Secret   string
}

// AIConfig holds the text-generation service settings
type AIConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// LogConfig holds the logging settings
type LogConfig struct {
	Level       string
	Development bool
	File        string
}

// CORSConfig holds the allowed cross-origin settings for the read-side UI
type CORSConfig struct {
	AllowedOrigins []string
}

// Config is the root configuration, constructed once at startup and
// injected into the components that need it
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Webhook  WebhookConfig
	AI       AIConfig
	Log      LogConfig
	CORS     CORSConfig
}

// Load reads configuration from environment variables and an optional .env file.
// Load itself never fails on missing values: credential requirements are
// checked by Validate on the server path, so CLI commands that exist to
// create those credentials can run against an unconfigured environment.
//
// Priority: environment variables > .env file > defaults.
// Environment variable prefix: EMAILAGENT_ (e.g. EMAILAGENT_WEBHOOK_SECRET).
func Load() (*Config, error) {
	loadEnvFile()

	viper.SetEnvPrefix("emailagent")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.dsn", "data/messages.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("webhook.auth_mode", AuthModeBasic)
	viper.SetDefault("webhook.username", "")
	viper.SetDefault("webhook.password", "")
	viper.SetDefault("webhook.secret", "")
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.model", "")
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.timeout", "30s")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("cors.allowed_origins", "*")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("database.conn_max_lifetime"))
	if err != nil {
		connMaxLifetime = 5 * time.Minute
	}

	aiTimeout, err := time.ParseDuration(viper.GetString("ai.timeout"))
	if err != nil {
		aiTimeout = 30 * time.Second
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		Database: DatabaseConfig{
			Type:            strings.ToLower(viper.GetString("database.type")),
			DSN:             viper.GetString("database.dsn"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Webhook: WebhookConfig{
			AuthMode: strings.ToLower(viper.GetString("webhook.auth_mode")),
			Username: viper.GetString("webhook.username"),
			Password: viper.GetString("webhook.password"),
			Secret:   viper.GetString("webhook.secret"),
		},
		AI: AIConfig{
			Provider: viper.GetString("ai.provider"),
			APIKey:   viper.GetString("ai.api_key"),
			Model:    viper.GetString("ai.model"),
			BaseURL:  viper.GetString("ai.base_url"),
			Timeout:  aiTimeout,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
	}

	return cfg, nil
}

// Validate checks that the selected webhook auth mode has its credentials set
// and that the database type is supported. Called before the server starts,
// not at load time.
func (c *Config) Validate() error {
	switch c.Webhook.AuthMode {
	case AuthModeBasic:
		if c.Webhook.Username == "" || c.Webhook.Password == "" {
			return fmt.Errorf("webhook.auth_mode is %q but webhook.username or webhook.password is not set", AuthModeBasic)
		}
	case AuthModeSecret:
		if c.Webhook.Secret == "" {
			return fmt.Errorf("webhook.auth_mode is %q but webhook.secret is not set", AuthModeSecret)
		}
	default:
		return fmt.Errorf("unknown webhook.auth_mode %q (expected %q or %q)", c.Webhook.AuthMode, AuthModeBasic, AuthModeSecret)
	}

	switch c.Database.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database.type %q (expected \"sqlite\" or \"postgres\")", c.Database.Type)
	}

	return nil
}

// parseList splits a comma-separated string into trimmed items
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile loads an optional .env file from the working directory or its parent.
// Existing environment variables are never overridden.
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}
	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
