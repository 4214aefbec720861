// Package scenarios loads benchmark conversation scripts. Scenarios come
// from YAML files (one spec or a list per file) or from the built-in set,
// and are validated before being frozen into immutable domain.Scenario
// values.
package scenarios

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/olib-ai/bizcon/internal/domain"
)

var validate = validator.New()

// scenarioFile is the YAML shape of a scenario file: either a top-level
// list under "scenarios" or a single spec at the root.
type scenarioFile struct {
	Scenarios []domain.ScenarioSpec `yaml:"scenarios"`
}

// Parse decodes YAML scenario bytes and validates every spec.
func Parse(data []byte) ([]*domain.Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}

	specs := file.Scenarios
	if len(specs) == 0 {
		var single domain.ScenarioSpec
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("parse scenario: %w", err)
		}
		if single.ID == "" {
			return nil, fmt.Errorf("no scenarios found")
		}
		specs = []domain.ScenarioSpec{single}
	}

	out := make([]*domain.Scenario, 0, len(specs))
	for _, spec := range specs {
		if err := validate.Struct(spec); err != nil {
			return nil, fmt.Errorf("invalid scenario %q: %w", spec.ID, err)
		}
		out = append(out, domain.NewScenario(spec))
	}
	return out, nil
}

// LoadFile reads and parses one YAML scenario file.
func LoadFile(path string) ([]*domain.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	scenarios, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenarios, nil
}

// LoadPaths loads every given path; directories are walked recursively
// for .yaml/.yml files. Duplicate scenario ids across files are rejected.
func LoadPaths(paths []string) ([]*domain.Scenario, error) {
	var all []*domain.Scenario
	seen := make(map[string]string)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat scenario path: %w", err)
		}

		var files []string
		if info.IsDir() {
			err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				ext := strings.ToLower(filepath.Ext(p))
				if ext == ".yaml" || ext == ".yml" {
					files = append(files, p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walk scenario dir: %w", err)
			}
		} else {
			files = []string{path}
		}

		for _, file := range files {
			scenarios, err := LoadFile(file)
			if err != nil {
				return nil, err
			}
			for _, scenario := range scenarios {
				if prev, ok := seen[scenario.ID()]; ok {
					return nil, fmt.Errorf("duplicate scenario id %q in %s (already defined in %s)", scenario.ID(), file, prev)
				}
				seen[scenario.ID()] = file
				all = append(all, scenario)
			}
		}
	}
	return all, nil
}
