package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files, environment variables and flags.
type Config struct {
	AppName   string `mapstructure:"app_name"`
	LogLevel  string `mapstructure:"log_level"`
	LogOutput string `mapstructure:"log_output"`

	SpiritAPIURL            string        `mapstructure:"spirit_api_url"`
	SpiritTimeoutSeconds    int64         `mapstructure:"spirit_timeout_seconds"`
	SpiritTimeout           time.Duration `mapstructure:"-"`
	LookalikeAPIURL         string        `mapstructure:"lookalike_api_url"`
	LookalikeTimeoutSeconds int64         `mapstructure:"lookalike_timeout_seconds"`
	LookalikeTimeout        time.Duration `mapstructure:"-"`
	MaxRenderedMatches      int           `mapstructure:"max_rendered_matches"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`

	TMDBAPIKey         string        `mapstructure:"tmdb_api_key"`
	TMDBBaseURL        string        `mapstructure:"tmdb_base_url"`
	TMDBImageBaseURL   string        `mapstructure:"tmdb_image_base_url"`
	TMDBTimeoutSeconds int64         `mapstructure:"tmdb_timeout_seconds"`
	TMDBTimeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from configs/.env, environment variables and the
// given flag set (nil skips flag binding).
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "vision-probe")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_output", "stderr")
	v.SetDefault("spirit_api_url", "http://localhost:5001/animal")
	v.SetDefault("spirit_timeout_seconds", 60)
	v.SetDefault("lookalike_api_url", "http://localhost:5000/find")
	v.SetDefault("lookalike_timeout_seconds", 30)
	v.SetDefault("max_rendered_matches", 5)
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/probe-history.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("publishers_file", "")
	v.SetDefault("tmdb_api_key", "")
	v.SetDefault("tmdb_base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb_image_base_url", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("tmdb_timeout_seconds", 10)

	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("log-level"); f != nil {
			if err := v.BindPFlag("log_level", f); err != nil {
				return nil, fmt.Errorf("bind log-level flag: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.SpiritTimeout = time.Duration(cfg.SpiritTimeoutSeconds) * time.Second
	cfg.LookalikeTimeout = time.Duration(cfg.LookalikeTimeoutSeconds) * time.Second
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second
	cfg.TMDBTimeout = time.Duration(cfg.TMDBTimeoutSeconds) * time.Second

	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.SpiritAPIURL) == "" {
		return fmt.Errorf("spirit_api_url must not be empty")
	}
	if strings.TrimSpace(c.LookalikeAPIURL) == "" {
		return fmt.Errorf("lookalike_api_url must not be empty")
	}
	if c.SpiritTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid spirit_timeout_seconds (must be positive seconds)")
	}
	if c.LookalikeTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid lookalike_timeout_seconds (must be positive seconds)")
	}
	if c.MaxRenderedMatches <= 0 {
		return fmt.Errorf("invalid max_rendered_matches (must be positive)")
	}
	if c.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if c.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	if c.TMDBTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid tmdb_timeout_seconds (must be positive seconds)")
	}
	return nil
}
