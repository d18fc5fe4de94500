package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisFlowDB   int    `mapstructure:"REDIS_FLOW_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking flow tuning.
	FlowContextTTLMin  int    `mapstructure:"FLOW_CONTEXT_TTL_MIN"`
	FlowVisitLookback  int    `mapstructure:"FLOW_VISIT_LOOKBACK"`
	FlowSensitiveViews string `mapstructure:"FLOW_SENSITIVE_VIEWS"`
	FlowExitRiskPaths  string `mapstructure:"FLOW_EXIT_RISK_PATHS"`
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
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_FLOW_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("FLOW_CONTEXT_TTL_MIN", 0)
	viper.SetDefault("FLOW_VISIT_LOOKBACK", 10)
	viper.SetDefault("FLOW_SENSITIVE_VIEWS", "technician-assignment,escrow-release")
	viper.SetDefault("FLOW_EXIT_RISK_PATHS", "/booking/cancel,/booking/price-review")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SensitiveViews returns the configured sensitive view tags.
func SensitiveViews() []string {
	return splitList(AppConfig.FlowSensitiveViews)
}

// ExitRiskPaths returns the configured exit-risk page paths.
func ExitRiskPaths() []string {
	return splitList(AppConfig.FlowExitRiskPaths)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
