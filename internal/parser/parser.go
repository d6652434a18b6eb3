package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hogwarts-cloud/capturectl/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	YAMLExtension      = ".yaml"
	YAMLShortExtension = ".yml"
)

var ErrNotYAML = errors.New("sizing file must be yaml")

// Parse reads a sizing file. Keys the file does not mention stay nil so that
// stored or default values apply.
func Parse(path string) (models.UserConfigOverrides, error) {
	if ext := filepath.Ext(path); ext != YAMLExtension && ext != YAMLShortExtension {
		return models.UserConfigOverrides{}, fmt.Errorf("%w: %s", ErrNotYAML, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return models.UserConfigOverrides{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	overrides := models.UserConfigOverrides{}

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	if err := decoder.Decode(&overrides); err != nil {
		return models.UserConfigOverrides{}, fmt.Errorf("failed to unmarshal sizing file: %w", err)
	}

	return overrides, nil
}
