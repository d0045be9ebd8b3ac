package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	domainconfig "canvaschat/domain/config"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	Store         StoreConfig         `yaml:"store"`
	Breaker       BreakerConfig       `yaml:"breaker"`
	Observability ObservabilityConfig `yaml:"observability"`
	Chain         ChainConfig         `yaml:"chain"`

	// LoadedFrom lists the sources applied, lowest priority first
	LoadedFrom []string `yaml:"-"`
}

// StoreConfig selects and configures the chat store adapter
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`

	AWSRegion        string `yaml:"aws_region"`
	DynamoDBTable    string `yaml:"dynamodb_table"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`
}

// BreakerConfig configures the circuit breaker around the store
type BreakerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	MaxRequests  uint32        `yaml:"max_requests"`
	Interval     time.Duration `yaml:"interval"`
	Timeout      time.Duration `yaml:"timeout"`
	FailureRatio float64       `yaml:"failure_ratio"`
	MinRequests  uint32        `yaml:"min_requests"`
}

// ObservabilityConfig configures metrics and tracing
type ObservabilityConfig struct {
	ServiceName     string `yaml:"service_name"`
	EnableMetrics   bool   `yaml:"enable_metrics"`
	MetricsTextfile string `yaml:"metrics_textfile"`
	EnableTracing   bool   `yaml:"enable_tracing"`
	TracingExporter string `yaml:"tracing_exporter"`
	OTLPEndpoint    string `yaml:"otlp_endpoint"`
}

// ChainConfig holds the chain limits handed to the domain
type ChainConfig struct {
	MaxChainLength      int `yaml:"max_chain_length"`
	MaxEdgesPerSnapshot int `yaml:"max_edges_per_snapshot"`
	MaxNewMessageLength int `yaml:"max_new_message_length"`
}

// LoadConfig loads configuration in order: defaults, the YAML file named by
// CONFIG_FILE (if any), then environment variables.
// Defaults follow ENVIRONMENT, else the file's environment, else development.
func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_FILE")

	var data []byte
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	environment := getEnv("ENVIRONMENT", "")
	if environment == "" && data != nil {
		var head struct {
			Environment string `yaml:"environment"`
		}
		if err := yaml.Unmarshal(data, &head); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		environment = head.Environment
	}
	if environment == "" {
		environment = "development"
	}

	cfg := defaultConfig(environment)
	cfg.LoadedFrom = []string{"defaults"}

	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.LoadedFrom = append(cfg.LoadedFrom, path)
	}

	cfg.applyEnv()
	cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig(environment string) *Config {
	domain := domainconfig.DefaultDomainConfig()
	switch environment {
	case "production":
		domain = domainconfig.ProductionDomainConfig()
	case "development":
		domain = domainconfig.DevelopmentDomainConfig()
	}

	return &Config{
		Environment: environment,
		LogLevel:    "info",
		Store: StoreConfig{
			Driver:        DriverMemory,
			AWSRegion:     "us-west-2",
			DynamoDBTable: "canvaschat",
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     60 * time.Second,
			Timeout:      30 * time.Second,
			FailureRatio: 0.6,
			MinRequests:  3,
		},
		Observability: ObservabilityConfig{
			ServiceName:     "canvaschat",
			TracingExporter: "stdout",
		},
		Chain: ChainConfig{
			MaxChainLength:      domain.MaxChainLength,
			MaxEdgesPerSnapshot: domain.MaxEdgesPerSnapshot,
			MaxNewMessageLength: domain.MaxNewMessageLength,
		},
	}
}

// applyEnv overrides every field whose environment variable is set
func (c *Config) applyEnv() {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.DSN = getEnv("DATABASE_DSN", c.Store.DSN)
	c.Store.AWSRegion = getEnv("AWS_REGION", c.Store.AWSRegion)
	c.Store.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.Store.DynamoDBTable))
	c.Store.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.Store.DynamoDBEndpoint)

	c.Breaker.Enabled = getEnvBool("BREAKER_ENABLED", c.Breaker.Enabled)
	c.Breaker.MaxRequests = getEnvUint32("BREAKER_MAX_REQUESTS", c.Breaker.MaxRequests)
	c.Breaker.Interval = getEnvDuration("BREAKER_INTERVAL", c.Breaker.Interval)
	c.Breaker.Timeout = getEnvDuration("BREAKER_TIMEOUT", c.Breaker.Timeout)
	c.Breaker.FailureRatio = getEnvFloat("BREAKER_FAILURE_RATIO", c.Breaker.FailureRatio)
	c.Breaker.MinRequests = getEnvUint32("BREAKER_MIN_REQUESTS", c.Breaker.MinRequests)

	c.Observability.ServiceName = getEnv("SERVICE_NAME", c.Observability.ServiceName)
	c.Observability.EnableMetrics = getEnvBool("ENABLE_METRICS", c.Observability.EnableMetrics)
	c.Observability.MetricsTextfile = getEnv("METRICS_TEXTFILE", c.Observability.MetricsTextfile)
	c.Observability.EnableTracing = getEnvBool("ENABLE_TRACING", c.Observability.EnableTracing)
	c.Observability.TracingExporter = getEnv("TRACING_EXPORTER", c.Observability.TracingExporter)
	c.Observability.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.Observability.OTLPEndpoint)

	c.Chain.MaxChainLength = getEnvInt("MAX_CHAIN_LENGTH", c.Chain.MaxChainLength)
	c.Chain.MaxEdgesPerSnapshot = getEnvInt("MAX_EDGES_PER_SNAPSHOT", c.Chain.MaxEdgesPerSnapshot)
	c.Chain.MaxNewMessageLength = getEnvInt("MAX_NEW_MESSAGE_LENGTH", c.Chain.MaxNewMessageLength)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s driver", c.Store.Driver)
		}
	case DriverDynamoDB:
		if c.Store.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Breaker.Enabled && (c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1) {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}

	if c.Observability.EnableTracing {
		switch c.Observability.TracingExporter {
		case "stdout":
		case "otlp":
			if c.Observability.OTLPEndpoint == "" {
				return fmt.Errorf("OTLP_ENDPOINT is required for the otlp exporter")
			}
		default:
			return fmt.Errorf("unknown TRACING_EXPORTER %q", c.Observability.TracingExporter)
		}
	}

	if c.Chain.MaxChainLength < 0 {
		return fmt.Errorf("MAX_CHAIN_LENGTH cannot be negative")
	}

	return nil
}

// DomainConfig converts the chain settings into domain limits
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	return &domainconfig.DomainConfig{
		MaxChainLength:      c.Chain.MaxChainLength,
		MaxEdgesPerSnapshot: c.Chain.MaxEdgesPerSnapshot,
		MaxNewMessageLength: c.Chain.MaxNewMessageLength,
	}
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvUint32(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(v)
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings such as "30s"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
