// Package config loads the wizard configuration: modules, questions and the
// guidance table. It is read once at startup and shared read-only.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"dossier/internal/models/wizard_models"

	"gopkg.in/yaml.v3"
)

//go:embed default_wizard.yaml
var defaultWizard []byte

// Load reads the configuration at path, or the embedded default when path is empty.
func Load(path string) (*wizard_models.WizardConfiguration, error) {
	if path == "" {
		return Parse(defaultWizard)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wizard config %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded configuration.
func Default() (*wizard_models.WizardConfiguration, error) {
	return Parse(defaultWizard)
}

// Parse decodes YAML strictly, validates it and compiles the guidance index.
func Parse(data []byte) (*wizard_models.WizardConfiguration, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg wizard_models.WizardConfiguration
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", wizard_models.ErrInvalidConfiguration)
		}
		return nil, fmt.Errorf("%w: %v", wizard_models.ErrInvalidConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, e := range cfg.Guidance.Entries {
		if _, ok := cfg.Module(e.ModuleID); !ok {
			return nil, fmt.Errorf("%w: guidance for unknown module %q", wizard_models.ErrInvalidConfiguration, e.ModuleID)
		}
		if e.QuestionID != "" {
			if _, ok := cfg.Question(e.ModuleID, e.QuestionID); !ok {
				return nil, fmt.Errorf("%w: guidance for unknown question %s/%s", wizard_models.ErrInvalidConfiguration, e.ModuleID, e.QuestionID)
			}
		}
	}
	cfg.Guidance.Compile()
	return &cfg, nil
}
