package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/telemetry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LATCTL"

// Settings are the CLI preferences shared by every command. Values come
// from flags, then LATCTL_* environment variables, then an optional
// settings file, then defaults.
type Settings struct {
	DataDir  string `mapstructure:"data"`
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
	Config   string `mapstructure:"config"`
	Preset   string `mapstructure:"preset"`
	Theme    string `mapstructure:"theme"`
	CAN      CANSettings
}

type CANSettings struct {
	Interface string `mapstructure:"interface"`
	FrameID   uint32 `mapstructure:"frame_id"`
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("data", ".latctl")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("config", "")
	v.SetDefault("preset", "speed")
	v.SetDefault("theme", "cyberpunk")
	v.SetDefault("can.interface", "")
	v.SetDefault("can.frame_id", telemetry.DefaultFrameID)

	v.SetConfigType("yaml")
	if path := os.Getenv(envPrefix + "_SETTINGS"); path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "latctl"))
		}
		v.SetConfigName("settings")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// flagKeys maps settings keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"data":          "data",
	"log_level":     "log-level",
	"log_json":      "log-json",
	"config":        "config",
	"preset":        "preset",
	"theme":         "theme",
	"can.interface": "can",
	"can.frame_id":  "can-id",
}

// loadSettings resolves settings, with explicitly set flags taking priority.
func loadSettings(v *viper.Viper, flags *pflag.FlagSet) (Settings, error) {
	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return s, nil
}

// controlConfig returns the arbitration config named by the settings. A
// config file wins over a preset.
func (s Settings) controlConfig() (*config.Config, string, error) {
	if s.Config != "" {
		cfg, err := config.Load(s.Config)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, "", nil
	}
	cfg := config.GetPreset(s.Preset)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", s.Preset, config.ListPresets())
	}
	return cfg, s.Preset, nil
}
