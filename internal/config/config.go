package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	LogLevel    string
	HTTPAddr    string
	DBDSN       string

	RedisAddr     string
	RedisPassword string

	TelegramToken        string
	TelegramNoticeChatID string

	StudioTimezone     string
	CORSAllowedOrigins []string

	NotificationRetentionDays  int
	RetractNoticeNotifications bool
	FanoutConcurrency          int
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment:                getEnv("ENV", "development"),
		LogLevel:                   os.Getenv("LOG_LEVEL"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		DBDSN:                      os.Getenv("DB_DSN"),
		RedisAddr:                  os.Getenv("REDIS_ADDR"),
		RedisPassword:              os.Getenv("REDIS_PASSWORD"),
		TelegramToken:              os.Getenv("TELEGRAM_TOKEN"),
		TelegramNoticeChatID:       os.Getenv("TELEGRAM_NOTICE_CHAT_ID"),
		StudioTimezone:             getEnv("STUDIO_TIMEZONE", "Asia/Seoul"),
		CORSAllowedOrigins:         getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		NotificationRetentionDays:  getEnvAsInt("NOTIFICATION_RETENTION_DAYS", 0),
		RetractNoticeNotifications: getEnvAsBool("NOTICE_RETRACT_ON_DELETE", false),
		FanoutConcurrency:          getEnvAsInt("FANOUT_CONCURRENCY", 8),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if _, err := time.LoadLocation(c.StudioTimezone); err != nil {
		return fmt.Errorf("invalid STUDIO_TIMEZONE %q: %w", c.StudioTimezone, err)
	}
	if c.FanoutConcurrency <= 0 {
		return fmt.Errorf("FANOUT_CONCURRENCY must be positive, got %d", c.FanoutConcurrency)
	}
	if c.NotificationRetentionDays < 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION_DAYS must not be negative")
	}
	return nil
}

// Location возвращает часовой пояс студии. Вызывать после Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StudioTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// TelegramEnabled - заданы и токен, и канал для объявлений
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramNoticeChatID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
