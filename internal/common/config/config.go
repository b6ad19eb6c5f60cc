package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Log      LogConfig      `json:"log"`
	Seed     SeedConfig     `json:"seed"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Name      string          `json:"name"`
	Host      string          `json:"host"`
	HTTPPort  int             `json:"http_port"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// RateLimitConfig selects the server-wide rate limiter.
type RateLimitConfig struct {
	Strategy string `json:"strategy"`  // token_bucket, sliding_window, none
	Capacity int64  `json:"capacity"`  // bucket size / max requests per window
	Rate     int64  `json:"rate"`      // token_bucket: tokens added per second
	WindowMS int    `json:"window_ms"` // sliding_window: window size in milliseconds
}

// DatabaseConfig configures the MySQL connection pool.
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

// ConsulConfig locates the Consul agent used for KV config and registration.
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig configures tracing.
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // sampling rate 0.0-1.0
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // log file path when output=file
}

// SeedConfig controls the bootstrap dataset.
type SeedConfig struct {
	Enabled bool `json:"enabled"` // insert the sample fleet when the cars table is empty
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig loads configuration from a JSON file, falling back to the
// default development config when the file does not exist.
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig returns the loaded global config, or the defaults before LoadConfig.
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// defaultConfig is the development configuration.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "taxi-park-admin",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
			RateLimit: RateLimitConfig{
				Strategy: "token_bucket",
				Capacity: 200,
				Rate:     100,
				WindowMS: 1000,
			},
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "taxi_park",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
		Seed: SeedConfig{
			Enabled: true,
		},
	}
}
