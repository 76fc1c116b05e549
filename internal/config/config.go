// Package config loads qgen settings from defaults, an optional YAML file
// and QGEN_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. QGEN_SERVER_ADDR.
const EnvPrefix = "QGEN"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        logger.Config    `mapstructure:"log"`
	LLM        llm.Config       `mapstructure:"llm"`
	Library    LibraryConfig    `mapstructure:"library"`
	Generation GenerationConfig `mapstructure:"generation"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	DB         DBConfig         `mapstructure:"db"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	Mode           string   `mapstructure:"mode"` // gin mode: debug, release, test
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LibraryConfig points at an alternate library file. Empty uses the
// built-in PAES library.
type LibraryConfig struct {
	Path string `mapstructure:"path"`
}

type GenerationConfig struct {
	MaxAttempts      int           `mapstructure:"max_attempts"`
	SynthesisTimeout time.Duration `mapstructure:"synthesis_timeout"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// DBConfig controls the LLM request log. Empty Path resolves through
// store.DefaultDBPath.
type DBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{})

	lc := logger.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.file", lc.File)
	v.SetDefault("log.max_size_mb", lc.MaxSizeMB)
	v.SetDefault("log.max_backups", lc.MaxBackups)
	v.SetDefault("log.max_age_days", lc.MaxAgeDays)
	v.SetDefault("log.compress", lc.Compress)

	// llm.provider has no default: when neither file nor env name one,
	// Load falls back to API-key discovery.
	dc := llm.DefaultConfig()
	v.SetDefault("llm.anthropic.model", dc.Anthropic.Model)
	v.SetDefault("llm.openai.model", dc.OpenAI.Model)
	v.SetDefault("llm.gemini.model", dc.Gemini.Model)
	v.SetDefault("llm.openrouter.model", dc.OpenRouter.Model)
	v.SetDefault("llm.retry.max_attempts", dc.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", dc.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", dc.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", dc.Retry.Multiplier)
	v.SetDefault("llm.timeout", dc.Timeout)

	v.SetDefault("library.path", "")
	v.SetDefault("generation.max_attempts", 50)
	v.SetDefault("generation.synthesis_timeout", 60*time.Second)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "qgen")
	v.SetDefault("db.enabled", true)
	v.SetDefault("db.path", "")
}

// keys without defaults still need binding so AutomaticEnv reaches them.
var envOnly = []string{
	"llm.provider",
	"llm.anthropic.api_key",
	"llm.anthropic.base_url",
	"llm.openai.api_key",
	"llm.openai.base_url",
	"llm.gemini.api_key",
	"llm.openrouter.api_key",
	"llm.openrouter.base_url",
	"llm.openrouter.app_title",
	"llm.openrouter.referer",
}

// Load reads configuration. When path is empty, qgen.yaml is looked up in
// the working directory and $HOME/.config/qgen; a missing file is fine.
// An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envOnly {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("qgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/qgen")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.Provider == "" {
		if found, ok := llm.DiscoverConfig(); ok {
			adoptDiscovered(&cfg.LLM, found)
		}
	}

	return &cfg, nil
}

// adoptDiscovered copies the discovered provider and its key, keeping the
// configured models and retry policy.
func adoptDiscovered(dst *llm.Config, found llm.Config) {
	dst.Provider = found.Provider
	switch found.Provider {
	case "anthropic":
		dst.Anthropic.APIKey = found.Anthropic.APIKey
	case "openai":
		dst.OpenAI.APIKey = found.OpenAI.APIKey
	case "gemini":
		dst.Gemini.APIKey = found.Gemini.APIKey
	case "openrouter":
		dst.OpenRouter.APIKey = found.OpenRouter.APIKey
	}
}

// LLMEnabled reports whether an answer synthesizer can be built.
func (c *Config) LLMEnabled() bool {
	return c.LLM.Provider != ""
}
