package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	AdminToken  string `mapstructure:"ADMIN_TOKEN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB       int    `mapstructure:"REDIS_SESSION_DB"`
	RedisGuardDB         int    `mapstructure:"REDIS_GUARD_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Gemini API key for classification fallback and reply drafting.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Chat gateway delivery endpoint. Empty means log-only transport.
	OutboundWebhookURL string `mapstructure:"OUTBOUND_WEBHOOK_URL"`

	// Scheduling parameters. All calendar arithmetic is anchored to TimeZone.
	TimeZone            string `mapstructure:"TIME_ZONE"`
	SlotStepMin         int    `mapstructure:"SLOT_STEP_MIN"`
	SessionIdleMin      int    `mapstructure:"SESSION_IDLE_MIN"`
	DisclosureWindowMin int    `mapstructure:"DISCLOSURE_WINDOW_MIN"`
	ReminderLeadMin     int    `mapstructure:"REMINDER_LEAD_MIN"`
	ReminderSweepSec    int    `mapstructure:"REMINDER_SWEEP_SEC"`
	NoShowBlockCount    int    `mapstructure:"NO_SHOW_BLOCK_COUNT"`
	TypingDelayMinMs    int    `mapstructure:"TYPING_DELAY_MIN_MS"`
	TypingDelayMaxMs    int    `mapstructure:"TYPING_DELAY_MAX_MS"`
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
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ADMIN_TOKEN", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_GUARD_DB", 1)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("OUTBOUND_WEBHOOK_URL", "")
	viper.SetDefault("TIME_ZONE", "America/Sao_Paulo")
	viper.SetDefault("SLOT_STEP_MIN", 30)
	viper.SetDefault("SESSION_IDLE_MIN", 30)
	viper.SetDefault("DISCLOSURE_WINDOW_MIN", 90)
	viper.SetDefault("REMINDER_LEAD_MIN", 120)
	viper.SetDefault("REMINDER_SWEEP_SEC", 300)
	viper.SetDefault("NO_SHOW_BLOCK_COUNT", 2)
	viper.SetDefault("TYPING_DELAY_MIN_MS", 800)
	viper.SetDefault("TYPING_DELAY_MAX_MS", 2500)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// GetEnv returns the application environment.
func GetEnv() string {
	return AppConfig.Env
}

// IsProduction checks if the environment is production.
func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves the configured business timezone. Falls back to UTC
// if the zone name cannot be loaded.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.TimeZone)
	if err != nil {
		log.Printf("Invalid TIME_ZONE %q, falling back to UTC", AppConfig.TimeZone)
		return time.UTC
	}
	return loc
}
