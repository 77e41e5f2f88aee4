package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/alimgiray/prslo/pkg/logger"
	"github.com/joho/godotenv"
)

type Config struct {
	GitHub   GitHubConfig
	Report   ReportConfig
	Calendar CalendarConfig
	Files    FilesConfig
	Database DatabaseConfig
	Log      LogConfig
}

type GitHubConfig struct {
	Token        string
	APIURL       string
	Org          string
	ArchivedRepo string
	HTTPTimeout  time.Duration
}

type ReportConfig struct {
	SLOHours       float64
	DaysToLookBack int
	Workers        int
}

type CalendarConfig struct {
	Timezone string
	File     string
}

type FilesConfig struct {
	BotConfig string
	UserMap   string
}

type DatabaseConfig struct {
	Path string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	DefaultSLOHours       = 4
	DefaultDaysToLookBack = 15
	DefaultWorkers        = 4
	DefaultHTTPTimeout    = 30
)

// Load loads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file found, using environment variables")
	}

	sloHours, err := getEnvAsFloat("SLO_HOURS", DefaultSLOHours)
	if err != nil {
		return nil, err
	}
	days, err := getEnvAsPositiveInt("DAYS_TO_LOOK_BACK", DefaultDaysToLookBack)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvAsPositiveInt("WORKERS", DefaultWorkers)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvAsPositiveInt("HTTP_TIMEOUT_SECONDS", DefaultHTTPTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		GitHub: GitHubConfig{
			Token:        getEnv("GITHUB_TOKEN", os.Getenv("GITHUB_PAT")),
			APIURL:       getEnv("GITHUB_API_URL", ""),
			Org:          getEnv("GITHUB_ORG", "squareup"),
			ArchivedRepo: getEnv("GITHUB_ARCHIVED_REPO", "zzz-archive-java"),
			HTTPTimeout:  time.Duration(timeout) * time.Second,
		},
		Report: ReportConfig{
			SLOHours:       sloHours,
			DaysToLookBack: days,
			Workers:        workers,
		},
		Calendar: CalendarConfig{
			Timezone: getEnv("TIMEZONE", ""),
			File:     getEnv("CALENDAR_FILE", ""),
		},
		Files: FilesConfig{
			BotConfig: getEnv("BOT_CONFIG_FILE", ""),
			UserMap:   getEnv("USER_MAP_FILE", "./github-username-to-ldap.csv"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

// Location resolves the configured timezone, defaulting to the local zone
func (c *Config) Location() (*time.Location, error) {
	if c.Calendar.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Calendar.Timezone, err)
	}
	return loc, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsPositiveInt gets an environment variable as a positive integer or returns a default value
func getEnvAsPositiveInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil || intValue <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return intValue, nil
}

// getEnvAsFloat gets an environment variable as a finite positive number or returns a default value
func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(floatValue) || math.IsInf(floatValue, 0) || floatValue <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, value)
	}
	return floatValue, nil
}
