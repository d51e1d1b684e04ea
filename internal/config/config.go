package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"bnfcli/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable, e.g. BNF_LOGGING_LEVEL.
const EnvPrefix = "BNF"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Strategy  StrategyConfig  `yaml:"strategy" envconfig:"STRATEGY"`
	Loader    LoaderConfig    `yaml:"loader" envconfig:"LOADER"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// StrategyConfig holds the ratchet thresholds. Times are HH:MM:SS and
// prices are decimal strings so YAML and env values keep exact precision.
type StrategyConfig struct {
	TickerPrefix    string `yaml:"ticker_prefix" envconfig:"TICKER_PREFIX" validate:"required,alphanum"`
	CESuffix        string `yaml:"ce_suffix" envconfig:"CE_SUFFIX" validate:"required"`
	AnchorStart     string `yaml:"anchor_start" envconfig:"ANCHOR_START" validate:"required"`
	AnchorEnd       string `yaml:"anchor_end" envconfig:"ANCHOR_END" validate:"required"`
	AnchorCeiling   string `yaml:"anchor_ceiling" envconfig:"ANCHOR_CEILING" validate:"required"`
	SeedStart       string `yaml:"seed_start" envconfig:"SEED_START" validate:"required"`
	SeedFloor       string `yaml:"seed_floor" envconfig:"SEED_FLOOR" validate:"required"`
	EntryTime       string `yaml:"entry_time" envconfig:"ENTRY_TIME" validate:"required"`
	ExitTime        string `yaml:"exit_time" envconfig:"EXIT_TIME" validate:"required"`
	ExitWindowEnd   string `yaml:"exit_window_end" envconfig:"EXIT_WINDOW_END" validate:"required"`
	PairingSentinel string `yaml:"pairing_sentinel" envconfig:"PAIRING_SENTINEL"`
}

// LoaderConfig controls dataset ingestion
type LoaderConfig struct {
	// StrictTime aborts the load on the first malformed Time cell.
	// When false the row is skipped and reported as a warning.
	StrictTime bool `yaml:"strict_time" envconfig:"STRICT_TIME"`
}

// OutputConfig controls rendering of the annotated table
type OutputConfig struct {
	Format    string `yaml:"format" envconfig:"FORMAT" validate:"oneof=table csv xlsx json"`
	Path      string `yaml:"path" envconfig:"FILE"`
	BOMPrefix bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
	Anchors   bool   `yaml:"anchors" envconfig:"ANCHORS"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// Load builds the configuration from defaults, an optional YAML file,
// an optional .env file and BNF_* environment variables, in that order.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML path; "" skips the file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Validate checks struct tags and the semantic relations between thresholds.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return c.Strategy.validate()
}

func (s StrategyConfig) validate() error {
	times := map[string]string{
		"anchor_start":    s.AnchorStart,
		"anchor_end":      s.AnchorEnd,
		"seed_start":      s.SeedStart,
		"entry_time":      s.EntryTime,
		"exit_time":       s.ExitTime,
		"exit_window_end": s.ExitWindowEnd,
	}
	parsed := make(map[string]domain.TimeOfDay, len(times))
	for name, v := range times {
		t, err := domain.ParseTimeOfDay(v)
		if err != nil {
			return fmt.Errorf("strategy.%s: %w", name, err)
		}
		parsed[name] = t
	}
	if parsed["anchor_start"] > parsed["anchor_end"] {
		return fmt.Errorf("strategy.anchor_start %s is after anchor_end %s", s.AnchorStart, s.AnchorEnd)
	}
	if parsed["exit_time"] >= parsed["exit_window_end"] {
		return fmt.Errorf("strategy.exit_window_end %s must be after exit_time %s", s.ExitWindowEnd, s.ExitTime)
	}

	for name, v := range map[string]string{"anchor_ceiling": s.AnchorCeiling, "seed_floor": s.SeedFloor} {
		if _, err := decimal.NewFromString(v); err != nil {
			return fmt.Errorf("strategy.%s: %w", name, err)
		}
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/bnfcli.log",
		},
		Strategy: StrategyConfig{
			TickerPrefix:    "BANKNIFTY",
			CESuffix:        "CE.NFO",
			AnchorStart:     "09:15:00",
			AnchorEnd:       "09:15:59",
			AnchorCeiling:   "200",
			SeedStart:       "09:30:00",
			SeedFloor:       "250",
			EntryTime:       "09:30:00",
			ExitTime:        "15:15:00",
			ExitWindowEnd:   "15:16:00",
			PairingSentinel: "3:15",
		},
		Loader: LoaderConfig{
			StrictTime: true,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "bnfcli",
			TraceExporter: "none",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  20 * time.Second,
			MaxUploadBytes:  32 << 20,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
	}
}
