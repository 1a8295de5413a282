package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset source
	DriveFileID  string `mapstructure:"drive_file_id" yaml:"drive_file_id"`
	DatasetURL   string `mapstructure:"dataset_url" yaml:"dataset_url"`
	DownloadPath string `mapstructure:"download_path" yaml:"download_path"`

	// Batch output
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	ImageFormat string `mapstructure:"image_format" yaml:"image_format"`
	GridColumns int    `mapstructure:"grid_columns" yaml:"grid_columns"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Dashboard
	ListenAddr    string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB   int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	SessionTTLMin int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`

	// Dataset cache
	CacheBackend  string `mapstructure:"cache_backend" yaml:"cache_backend"`
	CacheCapacity int    `mapstructure:"cache_capacity" yaml:"cache_capacity"`
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	CacheTTLMin   int    `mapstructure:"cache_ttl_min" yaml:"cache_ttl_min"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// HTTPTimeout returns the download client timeout.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// SessionTTL returns the dashboard session idle timeout.
func (c *Global) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// CacheTTL returns the Redis entry lifetime.
func (c *Global) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMin) * time.Minute
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Global) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Dir returns ~/.habitlens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".habitlens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.habitlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("drive_file_id", "16wVMAByC-TqBOKzybD2MRxEiZ41bzq5u")
	v.SetDefault("dataset_url", "")
	v.SetDefault("download_path", "dataset.zip")
	v.SetDefault("output_dir", ".")
	v.SetDefault("image_format", "png")
	v.SetDefault("grid_columns", 3)
	// HTTP/retry defaults; one attempt unless configured
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 1)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	// Dashboard defaults
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("max_upload_mb", 200)
	v.SetDefault("session_ttl_min", 60)
	// Cache defaults
	v.SetDefault("cache_backend", "memory")
	v.SetDefault("cache_capacity", 1)
	v.SetDefault("redis_addr", "")
	v.SetDefault("cache_ttl_min", 60)
	v.SetDefault("log_level", "info")
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HABITLENS")
	v.AutomaticEnv()
	setDefaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil && cfgFile != "" && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Defaults returns the built-in configuration without reading files or env.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}
