package lint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/treematch/internal/constraint"
	tt "github.com/gnolang/treematch/internal/types"
)

// DefaultConfigPath is the configuration file looked up by default.
const DefaultConfigPath = ".treematch.yaml"

// Config represents the overall configuration with a name and a map of rules.
type Config struct {
	Name  string                   `yaml:"name"`
	Rules map[string]tt.ConfigRule `yaml:"rules"`
}

// LoadConfig reads the configuration file at path. An empty path yields an
// empty configuration.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	config, err := ParseConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// ParseConfig decodes a YAML configuration. Unknown keys are errors.
func ParseConfig(r io.Reader) (Config, error) {
	var config Config

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, err
	}
	return config, nil
}

// DefaultConfig is the starter configuration written by init.
func DefaultConfig() Config {
	return Config{
		Name: "treematch",
		Rules: map[string]tt.ConfigRule{
			"double-unlock": {
				Severity: tt.SeverityWarning,
				Message:  "mutex unlocked twice",
				Pattern:  "`_.Unlock()` `_.Unlock()`",
			},
			"unlock-before-lock": {
				Severity: tt.SeverityError,
				Message:  "unlock precedes lock",
				Fragments: map[string]string{
					"lock":   "`_.Lock()`",
					"unlock": "[`_.Unlock()`, `defer _.Unlock()`]",
				},
				Order: &tt.OrderSpec{Ord: constraint.Total{
					constraint.Name("lock"),
					constraint.Name("unlock"),
				}},
			},
		},
	}
}

// WriteConfig encodes config as YAML into path.
func WriteConfig(path string, config Config) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
