package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultSearchAPIURL = "https://www.ebi.ac.uk/ebisearch/ws/rest/rnacentral"
	DefaultInitialDelay = time.Second
	DefaultPollInterval = 5 * time.Second
	DefaultHTTPTimeout  = 60 * time.Second
)

// ErrMissingAPIDomain is returned by Validate when no job service is configured
var ErrMissingAPIDomain = errors.New("API_DOMAIN is not set (use --api-domain or a .env file)")

// Config holds everything the exporter needs at runtime
type Config struct {
	// Base URL of the export job service, e.g. https://export.rnacentral.org
	APIDomain string
	// Search API the job service queries on our behalf
	SearchAPIURL string

	InitialDelay time.Duration
	PollInterval time.Duration
	HTTPTimeout  time.Duration

	DownloadDir string
	DBPath      string
	LogFile     string
	Verbose     bool
}

// Load reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// a missing file is fine, the environment alone is enough
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	homeDir, _ := os.UserHomeDir()

	cfg := &Config{
		APIDomain:    strings.TrimRight(getEnv("API_DOMAIN", ""), "/"),
		SearchAPIURL: getEnv("SEARCH_API_URL", DefaultSearchAPIURL),
		DownloadDir:  getEnv("EXPORT_DOWNLOAD_DIR", filepath.Join(homeDir, "Downloads")),
		DBPath:       getEnv("EXPORT_DB_PATH", filepath.Join(homeDir, ".rnaexport", "jobs.db")),
		LogFile:      getEnv("EXPORT_LOG_FILE", filepath.Join(homeDir, ".rnaexport", "rnaexport.log")),
	}

	durations := []struct {
		key   string
		value *time.Duration
		def   time.Duration
	}{
		{"EXPORT_INITIAL_DELAY", &cfg.InitialDelay, DefaultInitialDelay},
		{"EXPORT_POLL_INTERVAL", &cfg.PollInterval, DefaultPollInterval},
		{"EXPORT_HTTP_TIMEOUT", &cfg.HTTPTimeout, DefaultHTTPTimeout},
	}
	for _, d := range durations {
		value, err := getEnvAsDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.value = value
	}

	return cfg, nil
}

// Validate checks the settings needed to talk to the job service
func (c *Config) Validate() error {
	if c.APIDomain == "" {
		return ErrMissingAPIDomain
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial delay must not be negative, got %s", c.InitialDelay)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s"); unset means defaultValue
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, valueStr, err)
	}
	return value, nil
}
