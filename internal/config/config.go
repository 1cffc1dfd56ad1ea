package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iamasit07/join-dots/internal/domain"
)

type Config struct {
	Port               string
	Environment        string
	FrontendURL        string
	AllowedOrigins     []string
	SeatTokenSecret    string
	SeatTokenTTL       time.Duration
	Rules              domain.Rules
	DropDelay          time.Duration
	MaxSessions        int
	FinishedSessionTTL time.Duration
	IdleSessionTTL     time.Duration
	CleanupInterval    time.Duration
	RedisEnabled       bool
	RedisURL           string
	RedisPassword      string
	SnapshotTTL        time.Duration
	StaticDir          string
}

var AppConfig *Config

const defaultSeatSecret = "change-this-seat-secret-in-production"

func LoadConfig() (*Config, error) {
	port := GetEnv("PORT", "8080")
	environment := GetEnv("ENVIRONMENT", "development")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOriginsStr := GetEnv("ALLOWED_ORIGINS", "")

	// Build allowed origins list (Frontend URL + CSV values)
	allowedOrigins := []string{frontendURL}
	if allowedOriginsStr != "" {
		extras := strings.Split(allowedOriginsStr, ",")
		for _, origin := range extras {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	// Board
	rules := domain.Rules{
		Rows:      GetEnvAsInt("BOARD_ROWS", domain.Rows),
		Columns:   GetEnvAsInt("BOARD_COLUMNS", domain.Columns),
		WinLength: GetEnvAsInt("WIN_LENGTH", domain.ToWin),
	}

	AppConfig = &Config{
		Port:               port,
		Environment:        environment,
		FrontendURL:        frontendURL,
		AllowedOrigins:     allowedOrigins,
		SeatTokenSecret:    GetEnv("SEAT_TOKEN_SECRET", defaultSeatSecret),
		SeatTokenTTL:       time.Duration(GetEnvAsInt("SEAT_TOKEN_TTL_HOURS", 24)) * time.Hour,
		Rules:              rules,
		DropDelay:          time.Duration(GetEnvAsInt("DROP_DELAY_MS", 400)) * time.Millisecond,
		MaxSessions:        GetEnvAsInt("MAX_SESSIONS", 10000),
		FinishedSessionTTL: time.Duration(GetEnvAsInt("FINISHED_SESSION_TTL_MINUTES", 60)) * time.Minute,
		IdleSessionTTL:     time.Duration(GetEnvAsInt("IDLE_SESSION_TTL_MINUTES", 24*60)) * time.Minute,
		CleanupInterval:    time.Duration(GetEnvAsInt("CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute,
		RedisEnabled:       GetEnvAsBool("REDIS_ENABLED", true),
		RedisURL:           GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:      GetEnv("REDIS_PASSWORD", ""),
		SnapshotTTL:        time.Duration(GetEnvAsInt("SNAPSHOT_TTL_MINUTES", 60)) * time.Minute,
		StaticDir:          GetEnv("STATIC_DIR", "./static"),
	}

	if err := AppConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if AppConfig.SeatTokenSecret == defaultSeatSecret && AppConfig.IsProduction() {
		log.Println("[CONFIG] Warning: SEAT_TOKEN_SECRET is the built-in default")
	}

	return AppConfig, nil
}

// Validate checks the values LoadConfig cannot default its way out of.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.SeatTokenSecret == "" {
		return fmt.Errorf("SEAT_TOKEN_SECRET cannot be empty")
	}
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if c.DropDelay < 0 {
		return fmt.Errorf("DROP_DELAY_MS must be >= 0")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL_MINUTES must be > 0")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s: %s, using default: %t", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
