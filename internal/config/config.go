package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	CORSOrigin        string
	JWTSecret         string
	TokenTTL          time.Duration
	UploadDir         string
	AvatarMaxMB       int
	DocumentMaxMB     int
	MaxDocumentFiles  int
	DashboardCacheTTL time.Duration
	RealtimeChannel   string
	SeedAccounts      bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ADMINHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "AdminHub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.origin", "*")
	v.SetDefault("token.ttl", "168h")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.avatar_max_mb", 5)
	v.SetDefault("upload.document_max_mb", 10)
	v.SetDefault("upload.max_document_files", 10)
	v.SetDefault("dashboard.cache_ttl", "2m")
	v.SetDefault("realtime.channel", "adminhub")
	v.SetDefault("seed.accounts", true)

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		CORSOrigin:        v.GetString("cors.origin"),
		JWTSecret:         v.GetString("jwt.secret"),
		TokenTTL:          tokenTTL,
		UploadDir:         v.GetString("upload.dir"),
		AvatarMaxMB:       v.GetInt("upload.avatar_max_mb"),
		DocumentMaxMB:     v.GetInt("upload.document_max_mb"),
		MaxDocumentFiles:  v.GetInt("upload.max_document_files"),
		DashboardCacheTTL: cacheTTL,
		RealtimeChannel:   v.GetString("realtime.channel"),
		SeedAccounts:      v.GetBool("seed.accounts"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AvatarMaxMB <= 0 {
		cfg.AvatarMaxMB = 5
	}
	if cfg.DocumentMaxMB <= 0 {
		cfg.DocumentMaxMB = 10
	}
	if cfg.MaxDocumentFiles <= 0 {
		cfg.MaxDocumentFiles = 10
	}

	return cfg, nil
}
