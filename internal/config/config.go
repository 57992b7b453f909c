package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultPath is read when neither --config nor ECSGEN_CONFIG names a file.
const DefaultPath = "ecsgen.toml"

// EnvPath overrides DefaultPath.
const EnvPath = "ECSGEN_CONFIG"

type Config struct {
	Generate GenerateConfig `toml:"generate"`
	Logging  LoggingConfig  `toml:"logging"`
	Profile  ProfileConfig  `toml:"profile"`
}

type GenerateConfig struct {
	Schema        string `toml:"schema"`
	Package       string `toml:"package"`    // defaults to the output dir name
	OutputDir     string `toml:"output_dir"` // defaults to the schema's dir
	SingleFile    bool   `toml:"single_file"`
	RuntimeImport string `toml:"runtime_import"`
	Header        string `toml:"header"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "", "cpu", "mem", "trace"
	Path string `toml:"path"`
}

// Load decodes the file at path over the defaults. A missing file is not
// an error when allowMissing is set; the defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse config %s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path resolves which config file to read: flag first, then ECSGEN_CONFIG,
// then DefaultPath. explicit reports whether the file was asked for.
func Path(flag string) (path string, explicit bool) {
	if flag != "" {
		return flag, true
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p, true
	}
	return DefaultPath, false
}

func (c *Config) validate() error {
	switch c.Profile.Mode {
	case "", "cpu", "mem", "trace":
	default:
		return fmt.Errorf("profile.mode %q is not one of cpu, mem, trace", c.Profile.Mode)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q is not json or console", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Generate: GenerateConfig{
			Schema: "world.ecs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profile: ProfileConfig{
			Path: ".",
		},
	}
}
