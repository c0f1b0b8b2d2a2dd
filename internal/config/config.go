package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	ServerAddr  string `mapstructure:"SERVER_ADDR"`

	// Moderation / reputation knobs.
	ReportThreshold       int `mapstructure:"REPORT_THRESHOLD"`
	ReportCooldownMinutes int `mapstructure:"REPORT_COOLDOWN_MINUTES"`
	BanHours              int `mapstructure:"BAN_HOURS"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("REPORT_THRESHOLD", 5)
	viper.SetDefault("REPORT_COOLDOWN_MINUTES", 3)
	viper.SetDefault("BAN_HOURS", 24)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
