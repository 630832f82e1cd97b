package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	AppBaseURL        string        `mapstructure:"APP_BASE_URL"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DatabaseName      string        `mapstructure:"DATABASE_NAME"`
	Env               string        `mapstructure:"ENV"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	TokenTTL          time.Duration `mapstructure:"TOKEN_TTL"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Outgoing email.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`

	// Slack Web API base URL, overridable for tests and proxies.
	SlackAPIURL string `mapstructure:"SLACK_API_URL"`

	// Identity provider (OAuth2 authorization code flow).
	SSOClientID     string `mapstructure:"SSO_CLIENT_ID"`
	SSOClientSecret string `mapstructure:"SSO_CLIENT_SECRET"`
	SSOAuthURL      string `mapstructure:"SSO_AUTH_URL"`
	SSOTokenURL     string `mapstructure:"SSO_TOKEN_URL"`
	SSOUserInfoURL  string `mapstructure:"SSO_USERINFO_URL"`
	SSORedirectURL  string `mapstructure:"SSO_REDIRECT_URL"`

	// FeatureFlags is a comma separated list of flags enabled by default;
	// Redis overrides take precedence.
	FeatureFlags string `mapstructure:"FEATURE_FLAGS"`

	DeliveryWorkerConcurrency int `mapstructure:"DELIVERY_WORKER_CONCURRENCY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_BASE_URL", "http://localhost:3000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("TOKEN_TTL", "72h")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "tenantdesk")
	viper.SetDefault("SMTP_HOST", "localhost")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("EMAIL_FROM", "notifications@tenantdesk.local")
	viper.SetDefault("SLACK_API_URL", "https://slack.com/api/")
	viper.SetDefault("SSO_CLIENT_ID", "")
	viper.SetDefault("SSO_CLIENT_SECRET", "")
	viper.SetDefault("SSO_AUTH_URL", "")
	viper.SetDefault("SSO_TOKEN_URL", "")
	viper.SetDefault("SSO_USERINFO_URL", "")
	viper.SetDefault("SSO_REDIRECT_URL", "")
	viper.SetDefault("FEATURE_FLAGS", "sso-login,slack-delivery")
	viper.SetDefault("DELIVERY_WORKER_CONCURRENCY", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if AppConfig.JWTSecret == "" && IsProduction() {
		log.Fatal("JWT_SECRET must be set in production")
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// DefaultFeatureFlags returns the flags switched on through configuration.
func DefaultFeatureFlags() map[string]bool {
	flags := make(map[string]bool)
	for _, f := range strings.Split(AppConfig.FeatureFlags, ",") {
		if f = strings.TrimSpace(f); f != "" {
			flags[f] = true
		}
	}
	return flags
}
