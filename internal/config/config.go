package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"surveycli/internal/survey"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Tables    TablesConfig    `yaml:"tables" envconfig:"TABLES"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir   string `yaml:"base_dir" envconfig:"BASE_DIR"`
	ExportDir string `yaml:"export_dir" envconfig:"EXPORT_DIR"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// DataConfig names the codebook and the response data served by the API
type DataConfig struct {
	Codebook string `yaml:"codebook" envconfig:"CODEBOOK"`
	File     string `yaml:"file" envconfig:"FILE"`
	Sheet    string `yaml:"sheet" envconfig:"SHEET"`
	DuckDB   string `yaml:"duckdb" envconfig:"DUCKDB"`
	Table    string `yaml:"table" envconfig:"TABLE"`
}

// TablesConfig holds the default table options
type TablesConfig struct {
	PercentFormat     string        `yaml:"percent_format" envconfig:"PERCENT_FORMAT"`
	MeanFormat        string        `yaml:"mean_format" envconfig:"MEAN_FORMAT"`
	RemoveExclusions  bool          `yaml:"remove_exclusions" envconfig:"REMOVE_EXCLUSIONS"`
	ShowTotals        bool          `yaml:"show_totals" envconfig:"SHOW_TOTALS"`
	ShowMean          bool          `yaml:"show_mean" envconfig:"SHOW_MEAN"`
	SignificanceLevel float64       `yaml:"significance_level" envconfig:"SIGNIFICANCE_LEVEL"`
	ReportWorkers     int           `yaml:"report_workers" envconfig:"REPORT_WORKERS"`
	ReportTimeout     time.Duration `yaml:"report_timeout" envconfig:"REPORT_TIMEOUT"`
}

// TelemetryConfig controls metrics and tracing
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceStdout bool   `yaml:"trace_stdout" envconfig:"TRACE_STDOUT"`
}

// Load builds the configuration from defaults, then the YAML file at path (or
// the file named by SURVEY_CONFIG, or surveycli.yaml when present), then
// SURVEY_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// getConfigFilePath returns the path to the config file, or "" when there is none
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path is required for output %q", c.Logging.Output)
	}

	if err := c.TableOptions().Validate(); err != nil {
		return fmt.Errorf("tables: %w", err)
	}
	if c.Tables.SignificanceLevel <= 0 || c.Tables.SignificanceLevel >= 1 {
		return fmt.Errorf("tables: significance level %v outside (0,1)", c.Tables.SignificanceLevel)
	}
	if c.Tables.ReportWorkers < 1 {
		return fmt.Errorf("tables: report workers must be at least 1")
	}

	if c.Data.File != "" && c.Data.DuckDB != "" {
		return fmt.Errorf("data: set either file or duckdb, not both")
	}
	if c.Data.DuckDB != "" && c.Data.Table == "" {
		return fmt.Errorf("data: duckdb source needs a table")
	}
	return nil
}

// TableOptions converts the table defaults to survey options
func (c *Config) TableOptions() survey.Options {
	return survey.Options{
		PercentFormat:    c.Tables.PercentFormat,
		MeanFormat:       c.Tables.MeanFormat,
		RemoveExclusions: c.Tables.RemoveExclusions,
		ShowTotals:       c.Tables.ShowTotals,
		ShowMean:         c.Tables.ShowMean,
	}
}

// Address returns the host:port the HTTP server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     false,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "stdout",
			FilePath: "logs/surveytab.log",
		},
		Paths: PathsConfig{
			ExportDir: DefaultExportDir,
			LogsDir:   DefaultLogsDir,
		},
		Tables: TablesConfig{
			PercentFormat:     survey.DefaultPercentFormat,
			MeanFormat:        survey.DefaultMeanFormat,
			RemoveExclusions:  true,
			ShowTotals:        true,
			ShowMean:          true,
			SignificanceLevel: survey.DefaultSignificanceLevel,
			ReportWorkers:     DefaultReportWorkers,
			ReportTimeout:     DefaultReportTimeout,
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			ServiceName: AppName,
		},
	}
}
