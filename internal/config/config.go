package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "NETMOB"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Matching  MatchingConfig  `yaml:"matching" envconfig:"MATCHING"`
	Traffic   TrafficConfig   `yaml:"traffic" envconfig:"TRAFFIC"`
	Store     StoreConfig     `yaml:"store" envconfig:"STORE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig locates the traffic corpus, the geometry layers and the outputs.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	GeoDir       string `yaml:"geo_dir" envconfig:"GEO_DIR" validate:"required"`
	OutputDir    string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	MatchingFile string `yaml:"matching_file" envconfig:"MATCHING_FILE" validate:"required"`
	ZonesFile    string `yaml:"zones_file" envconfig:"ZONES_FILE" validate:"required"`
}

// MatchingConfig drives the tile to zone correspondence build.
type MatchingConfig struct {
	TargetCRS    string `yaml:"target_crs" envconfig:"TARGET_CRS" validate:"required"`
	TileIDField  string `yaml:"tile_id_field" envconfig:"TILE_ID_FIELD" validate:"required"`
	ZoneIDField  string `yaml:"zone_id_field" envconfig:"ZONE_ID_FIELD" validate:"required"`
	Workers      int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1"`
	ForceRebuild bool   `yaml:"force_rebuild" envconfig:"FORCE_REBUILD"`
}

// TrafficConfig drives cube assembly and the night reductions.
type TrafficConfig struct {
	Kind          string   `yaml:"kind" envconfig:"KIND" validate:"oneof=UL DL UL_AND_DL USERS"`
	Level         string   `yaml:"level" envconfig:"LEVEL" validate:"oneof=tile iris"`
	Workers       int      `yaml:"workers" envconfig:"WORKERS" validate:"min=1"`
	ServiceBatch  int      `yaml:"service_batch" envconfig:"SERVICE_BATCH" validate:"min=1"`
	NoisyStart    string   `yaml:"noisy_start" envconfig:"NOISY_START" validate:"required"`
	NightStart    string   `yaml:"night_start" envconfig:"NIGHT_START" validate:"required"`
	NightEnd      string   `yaml:"night_end" envconfig:"NIGHT_END" validate:"required"`
	Cities        []string `yaml:"cities" envconfig:"CITIES"`
	Services      []string `yaml:"services" envconfig:"SERVICES"`
	SeriesSubset  []string `yaml:"series_subset" envconfig:"SERIES_SUBSET"`
	MissingReport bool     `yaml:"missing_report" envconfig:"MISSING_REPORT"`
}

// StoreConfig selects where correspondences are persisted.
type StoreConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER" validate:"oneof=csv sqlite3 postgres"`
	DSN    string `yaml:"dsn" envconfig:"DSN" validate:"required_unless=Driver csv"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled        bool    `yaml:"enabled" envconfig:"ENABLED"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration from defaults, then the YAML file if one is
// found, then environment variables. Later sources win.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the file.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields carry no default tags, so unset variables leave the file values alone.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and the clock-time fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	for name, value := range map[string]string{
		"traffic.noisy_start": c.Traffic.NoisyStart,
		"traffic.night_start": c.Traffic.NightStart,
		"traffic.night_end":   c.Traffic.NightEnd,
	} {
		if _, err := time.Parse("15:04", value); err != nil {
			return fmt.Errorf("%s must be HH:MM, got %q", name, value)
		}
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
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

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/netmob.log",
		},
		Paths: PathsConfig{
			DataDir:      DefaultDataDir,
			GeoDir:       DefaultGeoDir,
			OutputDir:    DefaultOutputDir,
			MatchingFile: DefaultMatchingFile,
			ZonesFile:    DefaultZonesFile,
		},
		Matching: MatchingConfig{
			TargetCRS:   "EPSG:2154",
			TileIDField: "tile_id",
			ZoneIDField: "code_iris",
			Workers:     DefaultWorkers,
		},
		Traffic: TrafficConfig{
			Kind:         "UL_AND_DL",
			Level:        "iris",
			Workers:      DefaultWorkers,
			ServiceBatch: DefaultServiceBatch,
			NoisyStart:   DefaultNoisyStart,
			NightStart:   DefaultNightStart,
			NightEnd:     DefaultNightEnd,
		},
		Store: StoreConfig{
			Driver: "csv",
		},
		Telemetry: TelemetryConfig{
			Enabled:        true,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
