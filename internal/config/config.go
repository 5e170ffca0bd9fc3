package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".hookguard"
	DefaultConfigFile = "config.yaml"
	DefaultPacksDir   = "packs"
	EnvPrefix         = "HOOKGUARD"
)

type Config struct {
	ConfigDir string      `mapstructure:"-"`
	Log       LogConfig   `mapstructure:"log"`
	Rules     RulesConfig `mapstructure:"rules"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: warn.
	Level string `mapstructure:"level"`
	// File redirects diagnostics from stderr to an append-only file.
	File string `mapstructure:"file"`
}

type RulesConfig struct {
	// File is an extra rule table merged over the embedded defaults.
	File string `mapstructure:"file"`
	// PacksDir holds additional rule packs. Default: ~/.hookguard/packs.
	PacksDir string `mapstructure:"packs_dir"`
}

// Overrides carries command-line flag values; empty fields are ignored.
type Overrides struct {
	RulesFile string
	LogLevel  string
}

// Dir returns the hookguard config directory. It is never created here:
// guard invocations must not touch the filesystem beyond reading.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, DefaultConfigDir), nil
}

func Default(configDir string) *Config {
	return &Config{
		ConfigDir: configDir,
		Log:       LogConfig{Level: "warn"},
		Rules:     RulesConfig{PacksDir: filepath.Join(configDir, DefaultPacksDir)},
	}
}

// Load reads ~/.hookguard/config.yaml when present, then HOOKGUARD_* environment
// variables, then flag overrides. A missing config file is not an error. On
// error the returned config is still usable and holds the defaults.
func Load(o Overrides) (*Config, error) {
	configDir, err := Dir()
	if err != nil {
		cfg := Default("")
		cfg.apply(o)
		return cfg, err
	}
	return LoadFrom(configDir, o)
}

// LoadFrom is Load with an explicit config directory.
func LoadFrom(configDir string, o Overrides) (*Config, error) {
	cfg := Default(configDir)

	v := viper.New()
	v.SetConfigFile(filepath.Join(configDir, DefaultConfigFile))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"log.level", "log.file", "rules.file", "rules.packs_dir"} {
		_ = v.BindEnv(key)
	}

	var loadErr error
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		loadErr = fmt.Errorf("read config: %w", err)
	}

	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.MatchName = func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		}
	}); err != nil {
		cfg = Default(configDir)
		loadErr = errors.Join(loadErr, fmt.Errorf("decode config: %w", err))
	}

	cfg.ConfigDir = configDir
	cfg.apply(o)
	cfg.Rules.File = expandHome(cfg.Rules.File)
	cfg.Rules.PacksDir = expandHome(cfg.Rules.PacksDir)
	cfg.Log.File = expandHome(cfg.Log.File)

	return cfg, loadErr
}

func (c *Config) apply(o Overrides) {
	if o.RulesFile != "" {
		c.Rules.File = o.RulesFile
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func normalizeKey(input string) string {
	input = strings.ReplaceAll(input, "_", "")
	input = strings.ReplaceAll(input, "-", "")
	return strings.ToLower(input)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}
