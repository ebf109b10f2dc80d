package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type InstrumentationConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	BufferSize      int  `mapstructure:"buffer_size"`
	FlushIntervalMs int  `mapstructure:"flush_interval_ms"`
}

type Config struct {
	Rules           RulesConfig           `mapstructure:"rules"`
	Forms           FormsConfig           `mapstructure:"forms"`
	Query           QueryConfig           `mapstructure:"query"`
	Instrumentation InstrumentationConfig `mapstructure:"instrumentation"`
}

type RulesConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

type FormsConfig struct {
	Dir string `mapstructure:"dir"`
}

type QueryConfig struct {
	Driver     string `mapstructure:"driver"` // postgres or sqlite
	ReplyTable string `mapstructure:"reply_table"`
	DataColumn string `mapstructure:"data_column"`
}

// Load reads configuration. An explicit path must exist; otherwise
// formrules.yaml is looked up in . and ./config and defaults apply when it is
// missing. FORMRULES_* environment variables override file values
// (e.g. FORMRULES_RULES_MAX_DEPTH).
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("formrules")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetDefault("rules.max_depth", 64)
	v.SetDefault("forms.dir", "./forms")
	v.SetDefault("query.driver", "postgres")
	v.SetDefault("query.reply_table", "replies")
	v.SetDefault("query.data_column", "data")
	v.SetDefault("instrumentation.enabled", true)
	v.SetDefault("instrumentation.buffer_size", 500)
	v.SetDefault("instrumentation.flush_interval_ms", 100)

	v.SetEnvPrefix("formrules")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	switch cfg.Query.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported query driver %q", cfg.Query.Driver)
	}
	if cfg.Rules.MaxDepth <= 0 {
		return nil, fmt.Errorf("rules.max_depth must be positive, got %d", cfg.Rules.MaxDepth)
	}

	return &cfg, nil
}
