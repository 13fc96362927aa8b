package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"moodlens/internal"
	"moodlens/internal/errors"
	"moodlens/internal/prediction"
)

// Entry is one model in the manifest: a local descriptor file or a remote URL
type Entry struct {
	Name   string `yaml:"name" validate:"required"`
	Target string `yaml:"target" validate:"required"`
	File   string `yaml:"file" validate:"required_without=URL,excluded_with=URL"`
	URL    string `yaml:"url" validate:"omitempty,url"`
}

// Manifest lists the models in display order
type Manifest struct {
	Models []Entry `yaml:"models" validate:"dive"`
}

// Options control how remote entries are built
type Options struct {
	Timeout time.Duration
	Breaker BreakerConfig
	Log     *internal.Logger
}

var validate = validator.New()

// LoadManifest reads the manifest at path and builds one prediction.Model per
// entry. Descriptor paths are relative to the manifest.
func LoadManifest(path string, opts Options) ([]prediction.Model, error) {
	if opts.Log == nil {
		opts.Log = internal.NewNopLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Breaker == (BreakerConfig{}) {
		opts.Breaker = DefaultBreakerConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.LoadFailed("model manifest", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.LoadFailed("model manifest", err)
	}
	if err := validate.Struct(m); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("model manifest %s: %v", path, err))
	}

	dir := filepath.Dir(path)
	models := make([]prediction.Model, 0, len(m.Models))
	for _, e := range m.Models {
		if !prediction.IsTarget(e.Target) {
			return nil, errors.ConfigInvalid(fmt.Sprintf("model %q: %q is not a prediction target", e.Name, e.Target))
		}
		if e.URL != "" {
			models = append(models, prediction.Model{
				Name:      e.Name,
				Target:    e.Target,
				Predictor: NewRemote(e.Name, e.URL, opts.Timeout, opts.Breaker, opts.Log),
			})
			opts.Log.Info("[Models] %s -> remote %s", e.Name, e.URL)
			continue
		}

		local, err := loadLocal(resolve(dir, e.File), e.Target)
		if err != nil {
			return nil, errors.Wrapf(err, "model %q", e.Name)
		}
		models = append(models, prediction.Model{Name: e.Name, Target: e.Target, Predictor: local})
		opts.Log.Info("[Models] %s -> %s (%d features)", e.Name, e.File, len(local.Features()))
	}
	return models, nil
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

func loadLocal(path, target string) (*Local, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.LoadFailed("model "+path, err)
	}
	defer f.Close()
	d, err := ParseDescriptor(f)
	if err != nil {
		return nil, errors.LoadFailed("model "+path, err)
	}
	return NewLocal(d, target)
}
