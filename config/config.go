// Package config loads the YAML process configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"

	qhttp "smartfarm/http"
	"smartfarm/logging"
	"smartfarm/ml"
	"smartfarm/ui"
)

type Config struct {
	HTTP   qhttp.ServerConfig `yaml:"http"`
	Log    logging.Config     `yaml:"log"`
	Models ModelsConfig       `yaml:"models"`
	UI     ui.Branding        `yaml:"ui"`
}

// ModelsConfig locates the two artifacts. When Registry is set, artifact
// paths are names in the sqlite registry instead of files under Dir.
type ModelsConfig struct {
	Dir        string      `yaml:"dir"`
	Registry   string      `yaml:"registry"`
	Watch      bool        `yaml:"watch"`
	Crop       ModelConfig `yaml:"crop"`
	Fertilizer ModelConfig `yaml:"fertilizer"`
}

type ModelConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

func (m ModelConfig) Spec() ml.ModelSpec {
	return ml.ModelSpec{Type: m.Type, Path: m.Path}
}

// Default matches the artifact names the models are exported under.
func Default() Config {
	return Config{
		HTTP: qhttp.DefaultServerConfig(),
		Log: logging.Config{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Models: ModelsConfig{
			Watch:      true,
			Crop:       ModelConfig{Type: ml.FormatDecisionTree, Path: "decision_tree_model.json"},
			Fertilizer: ModelConfig{Type: ml.FormatRandomForest, Path: "fertilizer_model.json"},
		},
		UI: ui.DefaultBranding(),
	}
}

// Load reads path over Default. Relative artifact locations resolve against
// the directory holding the config file unless models.dir says otherwise.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	if cfg.Models.Dir == "" {
		cfg.Models.Dir = base
	} else if !filepath.IsAbs(cfg.Models.Dir) {
		cfg.Models.Dir = filepath.Join(base, cfg.Models.Dir)
	}
	if cfg.Models.Registry != "" && !filepath.IsAbs(cfg.Models.Registry) {
		cfg.Models.Registry = filepath.Join(base, cfg.Models.Registry)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("http.timeout must not be negative"))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("http.max_body_bytes must be positive"))
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateClients <= 0 {
		errs = append(errs, errors.New("http.rate_clients must be positive when rate limiting"))
	}
	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level: %w", err))
		}
	}
	errs = append(errs, c.Models.Crop.validate("models.crop"), c.Models.Fertilizer.validate("models.fertilizer"))
	return errors.Join(errs...)
}

func (m ModelConfig) validate(key string) error {
	switch {
	case m.Path == "":
		return fmt.Errorf("%s.path is required", key)
	case m.Type != ml.FormatDecisionTree && m.Type != ml.FormatRandomForest:
		return fmt.Errorf("%s.type %q: %w", key, m.Type, ml.ErrUnsupportedModel)
	}
	return nil
}

// Artifacts maps model name to on-disk path, for the change watcher.
func (c Config) Artifacts() map[string]string {
	resolve := func(p string) string {
		if filepath.IsAbs(p) || c.Models.Dir == "" {
			return p
		}
		return filepath.Join(c.Models.Dir, p)
	}
	return map[string]string{
		"crop":       resolve(c.Models.Crop.Path),
		"fertilizer": resolve(c.Models.Fertilizer.Path),
	}
}
