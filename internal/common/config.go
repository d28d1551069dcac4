package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"

	"github.com/joseph-ayodele/po-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Extract ExtractConfig
	Output  OutputConfig
	Batch   BatchConfig
	Ledger  LedgerConfig
	Log     LogConfig
}

// ExtractConfig holds parsing-related configuration
type ExtractConfig struct {
	Vendor         string
	ProfileFile    string
	IncrementDates bool
	PdftotextPath  string
	Timeout        time.Duration
}

// OutputConfig holds sink-related configuration
type OutputConfig struct {
	Dir     string
	Formats []string
	Debug   bool
}

// BatchConfig holds directory-mode configuration
type BatchConfig struct {
	Workers int
	Force   bool
	Summary string
}

// LedgerConfig holds run-ledger configuration. An empty DSN disables the ledger.
type LedgerConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			Vendor:         getEnv("PO_VENDOR", "auto"),
			ProfileFile:    getEnv("PO_PROFILE_FILE", ""),
			IncrementDates: getEnvAsBool("PO_INCREMENT_DATES", true),
			PdftotextPath:  getEnv("PO_PDFTOTEXT_PATH", "pdftotext"),
			Timeout:        getEnvAsDuration("PO_EXTRACT_TIMEOUT", 2*time.Minute),
		},
		Output: OutputConfig{
			Dir:     getEnv("PO_OUT_DIR", ""),
			Formats: getEnvAsList("PO_FORMATS", []string{constants.OutputXLSX}),
			Debug:   getEnvAsBool("PO_DEBUG", false),
		},
		Batch: BatchConfig{
			Workers: getEnvAsInt("PO_WORKERS", 4),
			Force:   getEnvAsBool("PO_FORCE", false),
			Summary: getEnv("PO_SUMMARY", ""),
		},
		Ledger: LedgerConfig{
			DSN:         getEnv("PO_LEDGER_DSN", ""),
			DialTimeout: getEnvAsDuration("PO_LEDGER_DIAL_TIMEOUT", 3*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("PO_LOG_LEVEL", "info"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return SplitList(value)
	}
	return defaultValue
}

// SplitList splits a comma separated flag or env value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("PO_VENDOR", c.Extract.Vendor, Required)
	v.Field("PO_FORMATS", c.Output.Formats, NonEmptyList, OneOf(constants.OutputFormats...))
	v.Field("PO_WORKERS", c.Batch.Workers, Positive)
	v.Field("PO_LOG_LEVEL", c.Log.Level, OneOf("debug", "info", "warn", "error"))
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
