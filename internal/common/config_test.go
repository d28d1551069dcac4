package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"PO_VENDOR", "PO_FORMATS", "PO_WORKERS", "PO_INCREMENT_DATES", "PO_LOG_LEVEL", "PO_EXTRACT_TIMEOUT", "PO_LEDGER_DSN"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()

	assert.Equal(t, "auto", cfg.Extract.Vendor)
	assert.True(t, cfg.Extract.IncrementDates)
	assert.Equal(t, 2*time.Minute, cfg.Extract.Timeout)
	assert.Equal(t, []string{"xlsx"}, cfg.Output.Formats)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Empty(t, cfg.Ledger.DSN)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("PO_VENDOR", "thom")
	t.Setenv("PO_FORMATS", " XLSX, csv ,,json")
	t.Setenv("PO_WORKERS", "8")
	t.Setenv("PO_INCREMENT_DATES", "false")
	t.Setenv("PO_EXTRACT_TIMEOUT", "10s")
	t.Setenv("PO_LEDGER_DSN", "runs.db")

	cfg := LoadConfig()
	assert.Equal(t, "thom", cfg.Extract.Vendor)
	assert.Equal(t, []string{"xlsx", "csv", "json"}, cfg.Output.Formats)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.False(t, cfg.Extract.IncrementDates)
	assert.Equal(t, 10*time.Second, cfg.Extract.Timeout)
	assert.Equal(t, "runs.db", cfg.Ledger.DSN)
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	t.Setenv("PO_WORKERS", "many")
	t.Setenv("PO_INCREMENT_DATES", "maybe")

	cfg := LoadConfig()
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.True(t, cfg.Extract.IncrementDates)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown format", func(c *Config) { c.Output.Formats = []string{"pdf"} }},
		{"no formats", func(c *Config) { c.Output.Formats = nil }},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"empty vendor", func(c *Config) { c.Extract.Vendor = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, CodeConfig, ErrorCode(err))
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" A ,, b,"))
	assert.Nil(t, SplitList(""))
}
