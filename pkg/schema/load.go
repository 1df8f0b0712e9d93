package schema

import (
	"fmt"
	"os"

	"github.com/espalier-dev/espalier/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ParseForm decodes a YAML form definition and validates it structurally.
func ParseForm(data []byte) (*domain.Form, error) {
	var form domain.Form
	if err := yaml.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("parsing form: %w", err)
	}
	if err := ValidateForm(&form); err != nil {
		return nil, err
	}
	return &form, nil
}

// LoadFile reads and parses a form definition from disk.
func LoadFile(path string) (*domain.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading form file: %w", err)
	}
	form, err := ParseForm(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return form, nil
}

// MarshalForm serializes a form back to YAML.
func MarshalForm(form *domain.Form) ([]byte, error) {
	return yaml.Marshal(form)
}
