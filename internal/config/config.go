package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"moodlens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Data     DataConfig     `mapstructure:"data" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Models   ModelConfig    `mapstructure:"models"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string        `mapstructure:"port" validate:"required,numeric"`
	GinMode        string        `mapstructure:"gin_mode" validate:"oneof=debug release test"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
}

// DataConfig says where the dataset and cluster profiles come from
type DataConfig struct {
	Source             string `mapstructure:"source" validate:"oneof=file sql"`
	File               string `mapstructure:"file"`
	ProfilesFile       string `mapstructure:"profiles_file"`
	PersonaDetailsFile string `mapstructure:"persona_details_file"`
}

// DatabaseConfig holds SQL store connection settings
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	URL    string `mapstructure:"url"`
}

// ModelConfig locates the prediction model manifest
type ModelConfig struct {
	ManifestFile string        `mapstructure:"manifest_file"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// LogConfig controls the zap backend of internal.Logger
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=ERROR WARN INFO DEBUG TRACE"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// environment variable names, keyed by config path
var envBindings = map[string]string{
	"server.port":               "PORT",
	"server.gin_mode":           "GIN_MODE",
	"server.read_timeout":       "READ_TIMEOUT",
	"server.metrics_enabled":    "METRICS_ENABLED",
	"data.source":               "DATA_SOURCE",
	"data.file":                 "DATA_FILE",
	"data.profiles_file":        "PROFILES_FILE",
	"data.persona_details_file": "PERSONA_DETAILS_FILE",
	"database.driver":           "DB_DRIVER",
	"database.url":              "DATABASE_URL",
	"models.manifest_file":      "MODELS_FILE",
	"models.timeout":            "PREDICT_TIMEOUT",
	"log.level":                 "LOG_LEVEL",
	"log.format":                "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("data.source", "file")
	v.SetDefault("data.file", "./data/social_media_mental_health.xlsx")
	v.SetDefault("data.profiles_file", "./data/cluster_profiles.csv")
	v.SetDefault("data.persona_details_file", "./data/personas.yaml")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("models.manifest_file", "./data/models/models.yaml")
	v.SetDefault("models.timeout", 5*time.Second)
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "console")
}

// Load reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables (highest precedence), then validates it
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind %s", env)
		}
	}

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read config file %s: %w", file, err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("decode configuration: %w", err))
	}
	cfg.Log.Level = strings.ToUpper(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := validateConfig(&cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

var validate = validator.New()

func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	switch cfg.Data.Source {
	case "file":
		if cfg.Data.File == "" {
			return errors.ConfigInvalid("DATA_FILE is required when DATA_SOURCE=file")
		}
	case "sql":
		if cfg.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when DATA_SOURCE=sql")
		}
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
