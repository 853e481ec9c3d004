package config

import (
	"time"

	"github.com/hupe1980/dinecluster/resource"
)

// Config is the complete application configuration.
type Config struct {
	Data    DataConfig    `koanf:"data"`
	Cluster ClusterConfig `koanf:"cluster"`
	Join    JoinConfig    `koanf:"join"`
	Query   QueryConfig   `koanf:"query"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Cache   CacheConfig   `koanf:"cache"`
}

// DataConfig selects where the two dataset files live.
type DataConfig struct {
	Source    string `koanf:"source" validate:"oneof=local s3 minio"`
	Root      string `koanf:"root" validate:"required_if=Source local"`
	Bucket    string `koanf:"bucket" validate:"required_unless=Source local"`
	Prefix    string `koanf:"prefix"`
	Endpoint  string `koanf:"endpoint" validate:"required_if=Source minio"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
	Canonical string `koanf:"canonical" validate:"required"`
	Features  string `koanf:"features" validate:"required"`

	IOLimitBytes     int64 `koanf:"io_limit_bytes" validate:"gte=0"`
	MemoryLimitBytes int64 `koanf:"memory_limit_bytes" validate:"gte=0"`
}

// Resources returns the load limits for the resource controller.
func (d DataConfig) Resources() resource.Config {
	return resource.Config{
		MemoryLimitBytes:   d.MemoryLimitBytes,
		IOLimitBytesPerSec: d.IOLimitBytes,
	}
}

// ClusterConfig holds k-means parameters.
type ClusterConfig struct {
	K          int      `koanf:"k" validate:"gte=1"`
	Seed       uint64   `koanf:"seed"`
	MaxIter    int      `koanf:"max_iter" validate:"gte=1"`
	Tolerance  float64  `koanf:"tolerance" validate:"gte=0"`
	NInit      int      `koanf:"n_init" validate:"gte=1"`
	Workers    int      `koanf:"workers" validate:"gte=0"`
	Degenerate string   `koanf:"degenerate" validate:"oneof=zero fail"`
	Exclude    []string `koanf:"exclude"`
}

// JoinConfig holds the duplicate-name policy.
type JoinConfig struct {
	Policy string `koanf:"policy" validate:"oneof=duplicate strict"`
}

// QueryConfig bounds query parameters.
type QueryConfig struct {
	TopN    int `koanf:"top_n" validate:"gte=1"`
	MaxTopN int `koanf:"max_top_n" validate:"gtefield=TopN"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimit       int           `koanf:"rate_limit" validate:"gte=0"`
	RateWindow      time.Duration `koanf:"rate_window" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig sizes the memo cache. Zero disables it.
type CacheConfig struct {
	Entries int `koanf:"entries" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Source:    "local",
			Root:      "data",
			Canonical: "zomato.csv",
			Features:  "clustering.csv",
		},
		Cluster: ClusterConfig{
			K:          5,
			Seed:       42,
			MaxIter:    300,
			Tolerance:  1e-4,
			NInit:      1,
			Degenerate: "zero",
		},
		Join: JoinConfig{
			Policy: "duplicate",
		},
		Query: QueryConfig{
			TopN:    5,
			MaxTopN: 100,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       100,
			RateWindow:      time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Entries: 16,
		},
	}
}
