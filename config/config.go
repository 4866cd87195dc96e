// Package config loads server settings from flags, environment
// variables and an optional pokemon-gym config file, in that
// precedence order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName = "pokemon-gym"
	envPrefix  = "POKEMON_GYM"
)

// Config carries everything the serve command needs to wire the harness.
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// ROM is the cartridge image path. Empty selects the built-in
	// development core.
	ROM  string `mapstructure:"rom"`
	Core string `mapstructure:"core"`

	Headless  bool `mapstructure:"headless"`
	Sound     bool `mapstructure:"sound"`
	Streaming bool `mapstructure:"streaming"`

	SessionsDir      string        `mapstructure:"sessions_dir"`
	AutosaveInterval int           `mapstructure:"autosave_interval"`
	SessionTimeout   time.Duration `mapstructure:"session_timeout"`
}

// Addr returns the host:port the API binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8080)
	v.SetDefault("rom", "")
	v.SetDefault("core", "dev")
	v.SetDefault("headless", true)
	v.SetDefault("sound", false)
	v.SetDefault("streaming", true)
	v.SetDefault("sessions_dir", "gameplay_sessions")
	v.SetDefault("autosave_interval", 50)
	v.SetDefault("session_timeout", time.Duration(0))
}

// Load resolves the configuration. flags may be nil; when given they
// take precedence over environment and file values. file selects an
// explicit config file, otherwise pokemon-gym.{yaml,toml} is searched
// in the working directory and the home directory.
func Load(flags *pflag.FlagSet, file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Core == "" {
		return errors.New("core name must not be empty")
	}
	if c.Core != "dev" && c.ROM == "" {
		return fmt.Errorf("core %q requires a rom path", c.Core)
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("autosave interval %d must not be negative", c.AutosaveInterval)
	}
	if c.SessionTimeout < 0 {
		return fmt.Errorf("session timeout %s must not be negative", c.SessionTimeout)
	}
	return nil
}
