// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"storebot/internal/logger"
)

const (
	DefaultPort        = "8695"
	DefaultHost        = "0.0.0.0"
	DefaultWebAppURL   = "https://yourdomain.com"
	DefaultCatalogPath = "Gold Latest 116  Sheet1 5.csv"
)

// Config holds everything the bot reads once at startup. There is no hot reload.
type Config struct {
	Environment    string `mapstructure:"environment"`
	BotToken       string `mapstructure:"bot_token"`
	AdminChatID    string `mapstructure:"admin_chat_id"`
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	WebAppURL      string `mapstructure:"webapp_url"`
	CatalogPath    string `mapstructure:"catalog_path"`
	WatchCatalog   bool   `mapstructure:"watch_catalog"`
	NotifyMockMode bool   `mapstructure:"notify_mock_mode"`
	TelegramDebug  bool   `mapstructure:"telegram_debug"`
	TimeZone       string `mapstructure:"time_zone"`
}

//
// --- Utility Helpers ---
//

// Helper: get a setting based on ENVIRONMENT (dev or prod)
func GetEnvBasedSetting(base string) string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	return os.Getenv(fmt.Sprintf("%s_%s", base, strings.ToUpper(env)))
}

// Helper: log which environment is running
func LogCurrentEnvironment(cfg *Config) {
	if cfg.Environment == "dev" {
		logger.LogInfo("Running in development environment")
	} else {
		logger.LogInfo("Running in %s environment", cfg.Environment)
	}
}

//
// --- Loaders ---
//

// LoadEnv reads .env file
func LoadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("Could not determine working directory: %v", err)
	}

	err = godotenv.Load(".env")
	if err != nil {
		log.Printf("No .env file found in %s. Using system environment variables.", wd)
	} else {
		log.Printf("Loaded environment variables from .env file in %s", wd)
	}
}

// Load builds the Config from an optional YAML file and the environment.
// An empty path searches ./storebot.yaml and /etc/storebot/storebot.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("storebot")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("/etc/storebot/")
	}

	v.SetDefault("environment", "dev")
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("webapp_url", DefaultWebAppURL)
	v.SetDefault("catalog_path", DefaultCatalogPath)
	v.SetDefault("watch_catalog", false)
	v.SetDefault("notify_mock_mode", false)
	v.SetDefault("telegram_debug", false)
	v.SetDefault("time_zone", "Local")
	v.SetDefault("bot_token", "")
	v.SetDefault("admin_chat_id", "")

	bindings := map[string][]string{
		"environment":      {"ENVIRONMENT"},
		"bot_token":        {"BOT_TOKEN", "TELEGRAM_BOT_TOKEN"},
		"admin_chat_id":    {"ADMIN_CHAT_ID"},
		"host":             {"HOST"},
		"port":             {"PORT"},
		"webapp_url":       {"WEBAPP_URL"},
		"catalog_path":     {"CATALOG_PATH"},
		"watch_catalog":    {"WATCH_CATALOG"},
		"notify_mock_mode": {"NOTIFY_MOCK_MODE"},
		"telegram_debug":   {"TELEGRAM_DEBUG"},
		"time_zone":        {"TIME_ZONE"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("bot token is missing: set BOT_TOKEN or TELEGRAM_BOT_TOKEN")
	}
	if c.Port == "" {
		return fmt.Errorf("port is empty")
	}
	return nil
}

// Addr is the health server listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// LoggerConfig returns a logger.Config struct populated from environment
func (c *Config) LoggerConfig(verbose bool) logger.Config {
	logDir := GetEnvBasedSetting("LOGS_DIRECTORY")
	if logDir == "" {
		logDir = "./logs"
	}

	logFormat := GetEnvBasedSetting("LOG_FILE_FORMAT")
	if logFormat == "" {
		logFormat = "storebot_%Y-%m-%d.log"
	}

	return logger.Config{
		LogsDirectory: logDir,
		LogFileFormat: logFormat,
		TimeZone:      c.TimeZone,
		Verbose:       verbose,
	}
}
