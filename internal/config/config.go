package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"clinsample/domain/design"
	"clinsample/internal"
	"clinsample/internal/errors"
)

const (
	envPrefix = "CLINSAMPLE"
	// configName is searched in the working directory when no path is given
	configName = "clinsample"
)

// Output formats understood by the CLI
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config represents the complete application configuration
type Config struct {
	Design DesignConfig `mapstructure:"design"`
	Server ServerConfig `mapstructure:"server"`
	Batch  BatchConfig  `mapstructure:"batch"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
}

// DesignConfig holds the design parameters used when a request omits them
type DesignConfig struct {
	Alpha       float64 `mapstructure:"alpha"`
	Power       float64 `mapstructure:"power"`
	TwoSided    bool    `mapstructure:"two_sided"`
	DropoutRate float64 `mapstructure:"dropout_rate"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string        `mapstructure:"port"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// BatchConfig holds batch planning settings
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig holds CLI rendering settings
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// DesignParameters converts the configured defaults to calculator input
func (c DesignConfig) DesignParameters() design.DesignParameters {
	return design.DesignParameters{
		Alpha:       c.Alpha,
		Power:       c.Power,
		TwoSided:    c.TwoSided,
		DropoutRate: c.DropoutRate,
	}
}

// LogLevel returns the configured level for internal.Logger
func (c LogConfig) LogLevel() internal.LogLevel {
	level, _ := internal.ParseLogLevel(c.Level)
	return level
}

// Load reads configuration from an optional YAML file, CLINSAMPLE_* environment
// variables and defaults, then validates it. A missing default config file is
// not an error; an explicit path that cannot be read is.
func Load(path string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read configuration")
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to decode configuration")
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the built-in configuration without reading files or environment
func Default() *Config {
	defaults := design.DefaultDesignParameters()
	return &Config{
		Design: DesignConfig{
			Alpha:       defaults.Alpha,
			Power:       defaults.Power,
			TwoSided:    defaults.TwoSided,
			DropoutRate: defaults.DropoutRate,
		},
		Server: ServerConfig{Port: "8080", ReadTimeout: 15 * time.Second},
		Batch:  BatchConfig{Concurrency: 4},
		Log:    LogConfig{Level: "INFO"},
		Output: OutputConfig{Format: FormatTable},
	}
}

func applyDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("design.alpha", d.Design.Alpha)
	v.SetDefault("design.power", d.Design.Power)
	v.SetDefault("design.two_sided", d.Design.TwoSided)
	v.SetDefault("design.dropout_rate", d.Design.DropoutRate)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)

	v.SetDefault("batch.concurrency", d.Batch.Concurrency)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("output.format", d.Output.Format)
}

func validateConfig(config *Config) error {
	if config.Design.Alpha <= 0 || config.Design.Alpha >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("design.alpha must be in (0, 1), got %v", config.Design.Alpha))
	}
	if config.Design.Power <= 0 || config.Design.Power >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("design.power must be in (0, 1), got %v", config.Design.Power))
	}
	if config.Design.DropoutRate < 0 || config.Design.DropoutRate >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("design.dropout_rate must be in [0, 1), got %v", config.Design.DropoutRate))
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server.port is required")
	}
	if config.Server.ReadTimeout <= 0 {
		return errors.ConfigInvalid("server.read_timeout must be positive")
	}
	if config.Batch.Concurrency < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("batch.concurrency must be at least 1, got %d", config.Batch.Concurrency))
	}
	if _, ok := internal.ParseLogLevel(config.Log.Level); !ok {
		return errors.ConfigInvalid(fmt.Sprintf("log.level %q is not one of ERROR, WARN, INFO, DEBUG, TRACE", config.Log.Level))
	}
	switch config.Output.Format {
	case FormatTable, FormatJSON, FormatMarkdown:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("output.format %q is not one of table, json, markdown", config.Output.Format))
	}
	return nil
}
