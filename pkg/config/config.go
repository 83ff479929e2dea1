package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. FINSIGNAL_SERVER_PORT.
const EnvPrefix = "FINSIGNAL"

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"5001"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
		// ErrorTopic enables shipping error logs to Kafka when set.
		ErrorTopic string `yaml:"error_topic"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Analysis struct {
		DefaultPeriodDays int           `yaml:"default_period_days" default:"90"`
		WarmupDays        int           `yaml:"warmup_days" default:"50"`
		MinBars           int           `yaml:"min_bars" default:"30"`
		MaxPeriodDays     int           `yaml:"max_period_days" default:"3650"`
		Parallel          bool          `yaml:"parallel" default:"true"`
		Timeout           time.Duration `yaml:"timeout" default:"45s"`
	} `yaml:"analysis"`
	Symbols struct {
		Suffix string   `yaml:"suffix" default:".IS"`
		Known  []string `yaml:"known" default:"[\"THYAO\",\"AKBNK\",\"ISCTR\",\"GARAN\",\"TCELL\",\"TUPRS\",\"ARCLK\",\"FROTO\",\"PETKM\",\"KOZAL\"]"`
	} `yaml:"symbols"`
	MarketData struct {
		Provider      string        `yaml:"provider" default:"yahoo"`
		YahooBaseURL  string        `yaml:"yahoo_base_url" default:"https://query1.finance.yahoo.com"`
		PolygonAPIKey string        `yaml:"polygon_api_key"`
		Timeout       time.Duration `yaml:"timeout" default:"20s"`
		CacheTTL      time.Duration `yaml:"cache_ttl" default:"15m"`
		// StoreFetched writes bars fetched from a remote provider into ClickHouse.
		StoreFetched bool `yaml:"store_fetched"`
	} `yaml:"market_data"`
	Cache struct {
		Backend   string        `yaml:"backend" default:"memory"`
		Prefix    string        `yaml:"prefix" default:"finsignal"`
		MemoryTTL time.Duration `yaml:"memory_ttl" default:"5m"`
		Redis     struct {
			URL      string `yaml:"url"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finsignal"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Topics       struct {
			AnalysisRequests string `yaml:"analysis_requests" default:"analysis.requests"`
			AnalysisResults  string `yaml:"analysis_results" default:"analysis.results"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID         string        `yaml:"group_id" default:"finsignal-analysis"`
			AutoOffsetReset string        `yaml:"auto_offset_reset" default:"earliest"`
			Workers         int           `yaml:"workers" default:"4"`
			BufferSize      int           `yaml:"buffer_size" default:"100"`
			RetryMax        int           `yaml:"retry_max" default:"3"`
			BackoffMin      time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax      time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic        string        `yaml:"dlq_topic" default:"analysis.requests.dlq"`
			MinBytes        int           `yaml:"min_bytes" default:"1"`
			MaxBytes        int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Predictor struct {
		BaseURL string        `yaml:"base_url" default:"http://localhost:5000"`
		Timeout time.Duration `yaml:"timeout" default:"30s"`
		Retries int           `yaml:"retries" default:"2"`
		// LookbackDays is the default training window when the caller gives no range.
		LookbackDays int `yaml:"lookback_days" default:"365"`
	} `yaml:"predictor"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled"`
		Capacity     float64 `yaml:"capacity" default:"20"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"5"`
	} `yaml:"rate_limit"`
}

// envOverrides lists the variables that may override the YAML file. Unset
// variables leave the pointer nil and the file value untouched.
type envOverrides struct {
	Environment        *string  `envconfig:"ENVIRONMENT"`
	ServerPort         *int     `envconfig:"SERVER_PORT"`
	LogLevel           *string  `envconfig:"LOG_LEVEL"`
	LogFormat          *string  `envconfig:"LOG_FORMAT"`
	Provider           *string  `envconfig:"MARKET_DATA_PROVIDER"`
	PolygonAPIKey      *string  `envconfig:"POLYGON_API_KEY"`
	CacheBackend       *string  `envconfig:"CACHE_BACKEND"`
	RedisURL           *string  `envconfig:"REDIS_URL"`
	RedisAddr          *string  `envconfig:"REDIS_ADDR"`
	RedisPassword      *string  `envconfig:"REDIS_PASSWORD"`
	ClickHouseEnabled  *bool    `envconfig:"CLICKHOUSE_ENABLED"`
	ClickHouseHost     *string  `envconfig:"CLICKHOUSE_HOST"`
	ClickHouseUser     *string  `envconfig:"CLICKHOUSE_USER"`
	ClickHousePassword *string  `envconfig:"CLICKHOUSE_PASSWORD"`
	KafkaEnabled       *bool    `envconfig:"KAFKA_ENABLED"`
	KafkaBrokers       []string `envconfig:"KAFKA_BROKERS"`
	PredictorURL       *string  `envconfig:"PREDICTOR_URL"`
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, then applies .env and FINSIGNAL_*
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overlays FINSIGNAL_* environment variables.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}

	setString(&c.Environment, o.Environment)
	setString(&c.Log.Level, o.LogLevel)
	setString(&c.Log.Format, o.LogFormat)
	setString(&c.MarketData.Provider, o.Provider)
	setString(&c.MarketData.PolygonAPIKey, o.PolygonAPIKey)
	setString(&c.Cache.Backend, o.CacheBackend)
	setString(&c.Cache.Redis.URL, o.RedisURL)
	setString(&c.Cache.Redis.Addr, o.RedisAddr)
	setString(&c.Cache.Redis.Password, o.RedisPassword)
	setString(&c.ClickHouse.Host, o.ClickHouseHost)
	setString(&c.ClickHouse.User, o.ClickHouseUser)
	setString(&c.ClickHouse.Password, o.ClickHousePassword)
	setString(&c.Predictor.BaseURL, o.PredictorURL)
	if o.ServerPort != nil {
		c.Server.Port = *o.ServerPort
	}
	if o.ClickHouseEnabled != nil {
		c.ClickHouse.Enabled = *o.ClickHouseEnabled
	}
	if o.KafkaEnabled != nil {
		c.Kafka.Enabled = *o.KafkaEnabled
	}
	if len(o.KafkaBrokers) > 0 {
		c.Kafka.Brokers = o.KafkaBrokers
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Analysis.DefaultPeriodDays <= 0 {
		return fmt.Errorf("analysis.default_period_days must be positive")
	}
	if c.Analysis.MaxPeriodDays < c.Analysis.DefaultPeriodDays {
		return fmt.Errorf("analysis.max_period_days must be >= default_period_days")
	}
	if c.Analysis.WarmupDays < 0 {
		return fmt.Errorf("analysis.warmup_days cannot be negative")
	}
	if c.Analysis.MinBars <= 0 {
		return fmt.Errorf("analysis.min_bars must be positive")
	}

	switch c.MarketData.Provider {
	case "yahoo":
		if c.MarketData.YahooBaseURL == "" {
			return fmt.Errorf("market_data.yahoo_base_url is required for the yahoo provider")
		}
	case "polygon":
		if c.MarketData.PolygonAPIKey == "" {
			return fmt.Errorf("market_data.polygon_api_key is required for the polygon provider")
		}
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("market_data.provider 'clickhouse' requires clickhouse.enabled")
		}
	default:
		return fmt.Errorf("market_data.provider must be 'yahoo', 'polygon' or 'clickhouse', got '%s'", c.MarketData.Provider)
	}
	if c.MarketData.StoreFetched && !c.ClickHouse.Enabled {
		return fmt.Errorf("market_data.store_fetched requires clickhouse.enabled")
	}

	switch c.Cache.Backend {
	case "none", "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'none', 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	switch c.Kafka.Consumer.AutoOffsetReset {
	case "earliest", "latest":
	default:
		return fmt.Errorf("kafka.consumer.auto_offset_reset must be 'earliest' or 'latest', got '%s'", c.Kafka.Consumer.AutoOffsetReset)
	}
	if c.Predictor.BaseURL == "" {
		return fmt.Errorf("predictor.base_url is required")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Capacity <= 0 || c.RateLimit.RefillPerSec <= 0) {
		return fmt.Errorf("rate_limit.capacity and refill_per_sec must be positive")
	}
	return nil
}
