package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://data-argo.ifremer.fr"
	defaultDAC            = "incois"
	defaultStagePath      = "/tmp/argo_stage"
	defaultParquetPath    = "/tmp/argo_parquet"
	defaultCompression    = "zstd"
	defaultHTTPTimeout    = 60 * time.Second
	defaultDBTimeout      = 30 * time.Second
	defaultMaxConcurrency = 10
)

// Config holds all runtime settings for the worker. It is built once at
// startup and passed by reference; core packages never read the environment
// themselves.
type Config struct {
	// Remote Argo GDAC
	HTTPBaseURL    string
	HTTPTimeout    time.Duration
	DAC            string
	MaxConcurrency int

	// Local staging
	StagePath          string
	ParquetStagePath   string
	ParquetCompression string

	// Postgres
	PgWriteURL string
	DBTimeout  time.Duration

	// S3-compatible blob store (Cloudflare R2)
	S3AccessKey  string
	S3SecretKey  string
	S3BucketName string
	S3Endpoint   string
	S3Region     string

	LogFormat string
}

// Load reads configuration from environment variables. The caller is
// expected to have loaded a .env file beforehand if one exists.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPBaseURL:        getenv("HTTP_BASE_URL", defaultBaseURL),
		HTTPTimeout:        defaultHTTPTimeout,
		DAC:                getenv("ARGO_DAC", defaultDAC),
		MaxConcurrency:     defaultMaxConcurrency,
		StagePath:          getenv("LOCAL_STAGE_PATH", defaultStagePath),
		ParquetStagePath:   getenv("PARQUET_STAGING_PATH", defaultParquetPath),
		ParquetCompression: getenv("PARQUET_COMPRESSION", defaultCompression),
		PgWriteURL:         strings.TrimSpace(os.Getenv("PG_WRITE_URL")),
		DBTimeout:          defaultDBTimeout,
		S3AccessKey:        strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey:        strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		S3BucketName:       getenv("S3_BUCKET_NAME", "atlas"),
		S3Endpoint:         strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3Region:           getenv("S3_REGION", "auto"),
		LogFormat:          getenv("LOG_FORMAT", "text"),
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT")); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("DB_TIMEOUT")); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_TIMEOUT: %w", err)
		}
		cfg.DBTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("MAX_CONCURRENT_DOWNLOADS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_CONCURRENT_DOWNLOADS: %q", v)
		}
		cfg.MaxConcurrency = n
	}

	if cfg.PgWriteURL == "" {
		return nil, errors.New("PG_WRITE_URL is required")
	}

	return cfg, nil
}

// BlobConfigured reports whether the S3 settings are complete enough to
// attempt uploads. Missing blob credentials only disable the upload stage.
func (c *Config) BlobConfigured() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Endpoint != ""
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseTimeout accepts either a plain number of seconds (as the original
// deployment configured it) or a Go duration string.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
