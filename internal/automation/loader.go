// ABOUTME: Loads routine definitions from YAML files
// ABOUTME: A file holds a top-level "routines" list
package automation

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type routineFile struct {
	Routines []Routine `yaml:"routines"`
}

// LoadRoutines parses and validates the routines in a YAML file
func LoadRoutines(path string) ([]Routine, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("read routines file: %w", err)
	}

	var file routineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse routines file %s: %w", path, err)
	}

	for _, rt := range file.Routines {
		if err := rt.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return file.Routines, nil
}

// LoadFile adds every routine in path to r. Names that already exist are
// skipped with a warning. It returns how many routines were added.
func (r *Runner) LoadFile(path string) (int, error) {
	routines, err := LoadRoutines(path)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, rt := range routines {
		if err := r.AddRoutine(rt); err != nil {
			if errors.Is(err, ErrRoutineExists) {
				log.Warn().Str("routine", rt.Name).Str("file", path).Msg("skipping duplicate routine")
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}
