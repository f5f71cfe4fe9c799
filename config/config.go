// Package config holds the process-wide gateway configuration. It is
// resolved exactly once at startup and passed to constructors; nothing in
// the gateway reads configuration ambiently after that.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		Listen        string        `yaml:"listen"`
		MetricsListen string        `yaml:"metrics_listen"`
		Core          BackendConfig `yaml:"core_backend"`
		PR            BackendConfig `yaml:"pr_backend"`
		Log           LogConfig     `yaml:"log"`
	}

	// BackendConfig configures one backend pool. The core pool signs with
	// Token (bearer), the PR pool with APIKey.
	BackendConfig struct {
		BaseURL string   `yaml:"base_url"`
		Token   string   `yaml:"token"`
		APIKey  string   `yaml:"api_key"`
		Timeout Duration `yaml:"timeout"`
	}

	LogConfig struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}

	// Duration is a time.Duration that unmarshals from yaml strings like
	// "30s" or "2m".
	Duration time.Duration
)

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when the file leaves a field unset.
func Default() Config {
	return Config{
		Listen:        ":8080",
		MetricsListen: ":9090",
		Core:          BackendConfig{Timeout: Duration(30 * time.Second)},
		PR:            BackendConfig{Timeout: Duration(30 * time.Second)},
		Log:           LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads and validates the config file at path. Credentials can be
// supplied or overridden through PRAVADO_CORE_TOKEN and PRAVADO_PR_API_KEY
// so they can stay out of the file.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config file")
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PRAVADO_CORE_TOKEN"); v != "" {
		cfg.Core.Token = v
	}
	if v := os.Getenv("PRAVADO_PR_API_KEY"); v != "" {
		cfg.PR.APIKey = v
	}
}

func (c Config) Validate() error {
	if c.Core.BaseURL == "" {
		return errors.New("core_backend.base_url is required")
	}
	if c.PR.BaseURL == "" {
		return errors.New("pr_backend.base_url is required")
	}
	if c.Listen == "" {
		return errors.New("listen must not be empty")
	}
	return nil
}
