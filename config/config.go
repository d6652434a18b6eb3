package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hogwarts-cloud/capturectl/pkg/constants"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const EnvPrefix = "CAPTURECTL"

const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSSM    = "ssm"
)

var ErrUnknownBackend = errors.New("unknown store backend")

type Store struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type AWS struct {
	Profile string `mapstructure:"profile"`
	Region  string `mapstructure:"region"`
}

type Rollout struct {
	PollInterval time.Duration `mapstructure:"pollInterval"`
}

type Network struct {
	AZs []string `mapstructure:"azs"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Store   Store   `mapstructure:"store"`
	AWS     AWS     `mapstructure:"aws"`
	Rollout Rollout `mapstructure:"rollout"`
	Network Network `mapstructure:"network"`
	Log     Log     `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendBolt)
	v.SetDefault("store.path", "capturectl.db")
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.region", "")
	v.SetDefault("rollout.pollInterval", 15*time.Second)
	v.SetDefault("network.azs", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads capturectl.yaml from path when present and applies CAPTURECTL_*
// environment overrides, e.g. CAPTURECTL_STORE_BACKEND.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(constants.ConfigFileName)
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := Config{}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		))); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendBolt, BackendSSM:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Store.Backend)
	}

	return cfg, nil
}
