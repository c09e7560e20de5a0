package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Database
	SQLiteDBPath string

	// Reporting
	BaseCurrency string

	// Duplicate detection
	LookbackDays int

	// Vision extraction
	GeminiModel string

	// AMQP
	AMQPURL          string
	AMQPExchange     string
	AMQPMetricsQueue string
	AMQPExportQueue  string

	// Google Sheets export
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
}

func Load() *Config {
	return &Config{
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/saldo.db"),
		BaseCurrency: getEnv("BASE_CURRENCY", "EUR"),
		LookbackDays: getEnvInt("DEDUP_LOOKBACK_DAYS", 30),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),

		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "saldo"),
		AMQPMetricsQueue: getEnv("AMQP_METRICS_QUEUE", "leaderboard_metrics"),
		AMQPExportQueue:  getEnv("AMQP_EXPORT_QUEUE", "month_exports"),

		SpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetName:       getEnv("GOOGLE_SHEET_NAME", ""),
		CredentialsFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
	}
}

// Validate returns a single error listing every violated rule, so a
// misconfigured deployment reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	}

	if len(c.BaseCurrency) != 3 {
		problems = append(problems, fmt.Sprintf("invalid base currency '%s': must be a 3-letter ISO code", c.BaseCurrency))
	}

	if c.LookbackDays < 1 {
		problems = append(problems, fmt.Sprintf("invalid dedup lookback %d: must be at least 1 day", c.LookbackDays))
	} else if c.LookbackDays > 365 {
		problems = append(problems, fmt.Sprintf("invalid dedup lookback %d: must be at most 365 days", c.LookbackDays))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPMetricsQueue == "" || c.AMQPExportQueue == "" {
			problems = append(problems, "AMQP queue names cannot be empty when AMQP URL is provided")
		}
	}

	// Sheets export is optional, but half a configuration is a mistake.
	if c.SpreadsheetID != "" || c.SheetName != "" || c.CredentialsFile != "" {
		if c.SpreadsheetID == "" {
			problems = append(problems, "GOOGLE_SPREADSHEET_ID is required when Sheets export is configured")
		}
		if c.SheetName == "" {
			problems = append(problems, "GOOGLE_SHEET_NAME is required when Sheets export is configured")
		}
		if c.CredentialsFile == "" {
			problems = append(problems, "GOOGLE_SERVICE_ACCOUNT_FILE is required when Sheets export is configured")
		} else if _, err := os.Stat(c.CredentialsFile); os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("service account file does not exist: %s", c.CredentialsFile))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// SheetsConfigured reports whether the Sheets export is fully set up.
func (c *Config) SheetsConfigured() bool {
	return c.SpreadsheetID != "" && c.SheetName != "" && c.CredentialsFile != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
