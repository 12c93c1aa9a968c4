// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultUserAgent mimics a desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	CSV     CSVConfig     `mapstructure:"csv"`
	Sheets  SheetsConfig  `mapstructure:"sheets"`
	DB      DBConfig      `mapstructure:"db"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ScrapeConfig governs the catalog walk.
type ScrapeConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	MaxPages       int    `mapstructure:"max_pages"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MinDelayMs     int    `mapstructure:"min_delay_ms"`
	MaxDelayMs     int    `mapstructure:"max_delay_ms"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
	// MaxRPS caps requests per second per host; zero disables the cap.
	MaxRPS float64 `mapstructure:"max_rps"`
	Burst  int     `mapstructure:"burst"`
}

// CSVConfig sets where CSV snapshots are written. A non-empty GCSBucket
// selects Cloud Storage over the local directory.
type CSVConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// SheetsConfig locates the target spreadsheet.
type SheetsConfig struct {
	CredentialsPath string `mapstructure:"credentials_path"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	SheetName       string `mapstructure:"sheet_name"`
}

// DBConfig holds the relational database connection parameters.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	Table    string `mapstructure:"table"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig controls the Prometheus textfile dump.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// legacyEnv maps keys to the unprefixed variable names older deployments set.
var legacyEnv = map[string]string{
	"sheets.credentials_path": "GOOGLE_SHEET_CREDENTIALS_PATH",
	"sheets.spreadsheet_id":   "GOOGLE_SHEET_ID",
	"db.host":                 "DB_HOST",
	"db.port":                 "DB_PORT",
	"db.name":                 "DB_NAME",
	"db.user":                 "DB_USER",
	"db.password":             "DB_PASSWORD",
}

// Load builds a Config from .env, disk and environment. It does not validate:
// callers apply command-line overrides first and then call Validate.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("ETL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for key, legacy := range legacyEnv {
		prefixed := "ETL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scrape.base_url", "https://fashion-studio.dicoding.dev")
	v.SetDefault("scrape.max_pages", 50)
	v.SetDefault("scrape.user_agent", DefaultUserAgent)
	v.SetDefault("scrape.timeout_seconds", 10)
	v.SetDefault("scrape.min_delay_ms", 1000)
	v.SetDefault("scrape.max_delay_ms", 3000)
	v.SetDefault("scrape.respect_robots", false)
	v.SetDefault("scrape.max_rps", 0)
	v.SetDefault("scrape.burst", 1)
	v.SetDefault("csv.output_dir", ".")
	v.SetDefault("csv.gcs_bucket", "")
	v.SetDefault("csv.prefix", "")
	v.SetDefault("sheets.credentials_path", "")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.sheet_name", "fashion")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.table", "fashion_products")
	v.SetDefault("logging.development", true)
	v.SetDefault("metrics.textfile", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scrape.BaseURL == "" {
		return fmt.Errorf("scrape.base_url must be set")
	}
	if c.Scrape.MaxPages <= 0 {
		return fmt.Errorf("scrape.max_pages must be > 0")
	}
	if c.Scrape.TimeoutSeconds <= 0 {
		return fmt.Errorf("scrape.timeout_seconds must be > 0")
	}
	if c.Scrape.MinDelayMs < 0 {
		return fmt.Errorf("scrape.min_delay_ms must be >= 0")
	}
	if c.Scrape.MaxDelayMs < c.Scrape.MinDelayMs {
		return fmt.Errorf("scrape.max_delay_ms must be >= scrape.min_delay_ms")
	}
	if c.Scrape.MaxRPS < 0 {
		return fmt.Errorf("scrape.max_rps must be >= 0")
	}
	return nil
}

// Timeout returns the per-request budget.
func (c ScrapeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MinDelay returns the lower politeness bound.
func (c ScrapeConfig) MinDelay() time.Duration {
	return time.Duration(c.MinDelayMs) * time.Millisecond
}

// MaxDelay returns the upper politeness bound.
func (c ScrapeConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMs) * time.Millisecond
}
