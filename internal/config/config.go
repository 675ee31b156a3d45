package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Dataset DatasetConfig `yaml:"dataset"`
	Report  ReportConfig  `yaml:"report"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Dataset source types
const (
	SourceFile      = "file"
	SourceS3        = "s3"
	SourcePostgres  = "postgres"
	SourceSnowflake = "snowflake"
	SourceSQLite    = "sqlite"
)

// DatasetConfig describes where the transaction table is loaded from
type DatasetConfig struct {
	Source string `yaml:"source"` // file, s3, postgres, snowflake, sqlite
	Path   string `yaml:"path"`   // CSV path for the file source
	Watch  bool   `yaml:"watch"`  // reload when the CSV file changes

	S3Bucket     string `yaml:"s3_bucket"`
	S3Key        string `yaml:"s3_key"`
	S3Region     string `yaml:"s3_region"`
	AWSProfile   string `yaml:"aws_profile"` // Empty string uses default credential chain
	AWSAccessKey string `yaml:"aws_access_key"`
	AWSSecretKey string `yaml:"aws_secret_key"`

	DSN   string `yaml:"dsn"`
	Query string `yaml:"query"`

	LoadTimeoutSeconds int `yaml:"load_timeout_seconds"`
}

// LoadTimeout returns the configured table load timeout as a duration
func (c DatasetConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSeconds) * time.Second
}

// Report providers
const (
	ProviderOpenAI   = "openai"
	ProviderBedrock  = "bedrock"
	ProviderTemplate = "template"
)

const (
	defaultChatModel    = "llama-3.3-70b-versatile"
	defaultBedrockModel = "anthropic.claude-3-sonnet-20240229-v1:0"
	defaultTemperature  = 0.7
	defaultMaxRetries   = 1
)

// ReportConfig holds narrative report generation settings
type ReportConfig struct {
	Provider       string   `yaml:"provider"` // openai, bedrock, template
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url"`
	Model          string   `yaml:"model"`
	Temperature    *float64 `yaml:"temperature"`
	MaxTokens      int      `yaml:"max_tokens"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	MaxRetries     *int     `yaml:"max_retries"` // attempts after the first
	BedrockRegion  string   `yaml:"bedrock_region"`
	CacheTTLMins   int      `yaml:"cache_ttl_minutes"`
}

// Timeout returns the configured timeout as a duration
func (c ReportConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetTemperature returns the sampling temperature, 0.7 when unset.
// An explicit 0 is kept.
func (c ReportConfig) GetTemperature() float64 {
	if c.Temperature == nil {
		return defaultTemperature
	}
	return *c.Temperature
}

// GetMaxRetries returns the retry count, 1 when unset. An explicit 0
// disables retries.
func (c ReportConfig) GetMaxRetries() int {
	if c.MaxRetries == nil || *c.MaxRetries < 0 {
		return defaultMaxRetries
	}
	return *c.MaxRetries
}

// CacheTTL returns how long generated reports stay cached
func (c ReportConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMins) * time.Minute
}

// RedisConfig holds the optional report cache connection
type RedisConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// LogConfig holds structured logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Redact *bool  `yaml:"redact"`
}

// RedactEnabled defaults to true when unset
func (c LogConfig) RedactEnabled() bool {
	return c.Redact == nil || *c.Redact
}

// Default returns a configuration with every default applied and no file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:8501", "http://localhost:5173"}
	}
	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = SourceFile
	}
	if cfg.Dataset.Path == "" {
		cfg.Dataset.Path = "customer_data.csv"
	}
	if cfg.Dataset.S3Region == "" {
		cfg.Dataset.S3Region = "us-east-1"
	}
	if cfg.Dataset.Query == "" {
		cfg.Dataset.Query = "SELECT * FROM customer_transactions"
	}
	if cfg.Dataset.LoadTimeoutSeconds == 0 {
		cfg.Dataset.LoadTimeoutSeconds = 60
	}
	if cfg.Report.Provider == "" {
		cfg.Report.Provider = ProviderOpenAI
	}
	if cfg.Report.BaseURL == "" {
		cfg.Report.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Report.Model == "" {
		if cfg.Report.Provider == ProviderBedrock {
			cfg.Report.Model = defaultBedrockModel
		} else {
			cfg.Report.Model = defaultChatModel
		}
	}
	if cfg.Report.MaxTokens == 0 {
		cfg.Report.MaxTokens = 2000
	}
	if cfg.Report.TimeoutSeconds == 0 {
		cfg.Report.TimeoutSeconds = 60
	}
	if cfg.Report.BedrockRegion == "" {
		cfg.Report.BedrockRegion = "us-east-1"
	}
	if cfg.Report.CacheTTLMins == 0 {
		cfg.Report.CacheTTLMins = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets can
// live in .env locally and in real env vars in deployment. A missing config
// file is not an error: defaults plus environment are enough to run.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}

	if v := os.Getenv("DATASET_SOURCE"); v != "" {
		cfg.Dataset.Source = v
	}
	if v := os.Getenv("CSV_PATH"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Dataset.S3Bucket = v
	}
	if v := os.Getenv("S3_KEY"); v != "" {
		cfg.Dataset.S3Key = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Dataset.S3Region = v
		cfg.Report.BedrockRegion = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Dataset.DSN = v
	}

	// GROQ_API_KEY wins over OPENAI_API_KEY since the default base URL is Groq's
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Report.APIKey = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.Report.APIKey = v
	}
	if v := os.Getenv("REPORT_PROVIDER"); v != "" {
		cfg.Report.Provider = v
		if v == ProviderBedrock && cfg.Report.Model == defaultChatModel {
			cfg.Report.Model = defaultBedrockModel
		}
	}
	if v := os.Getenv("REPORT_MODEL"); v != "" {
		cfg.Report.Model = v
	}
	if v := os.Getenv("REPORT_BASE_URL"); v != "" {
		cfg.Report.BaseURL = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}
