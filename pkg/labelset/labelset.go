// Package labelset loads tagged-image label sets: the mapping from image
// files to the labeled regions they contain, used for object detection
// training uploads.
package labelset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Region is one labeled bounding box in an image. Coordinates are
// normalized to [0,1] relative to the image dimensions, (0,0) top-left.
type Region struct {
	Tag    string  `json:"tag" yaml:"tag"`
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// File maps an image filename to its labeled regions.
type File struct {
	Filename string   `json:"filename" yaml:"filename"`
	Tags     []Region `json:"tags" yaml:"tags"`
}

// Set is a complete label set.
type Set struct {
	Files []File `json:"files" yaml:"files"`
}

// TagNames returns the distinct tag names used in the set, in first-seen order.
func (s *Set) TagNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, f := range s.Files {
		for _, r := range f.Tags {
			if !seen[r.Tag] {
				seen[r.Tag] = true
				names = append(names, r.Tag)
			}
		}
	}
	return names
}

// Load reads and validates a label set from the given file path.
//
// The file format is determined by extension: .yaml/.yml for YAML, .json for
// JSON. If the extension is unrecognized, YAML is attempted first, then JSON.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("label set file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read label set file: %w", err)
	}
	return LoadFromBytes(data, path)
}

// LoadFromBytes parses and validates a label set from raw bytes. The path
// parameter is used for error messages and format detection; it may be empty.
func LoadFromBytes(data []byte, path string) (*Set, error) {
	if len(data) == 0 {
		return nil, errors.New("label set file is empty")
	}

	var set Set
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("invalid YAML label set: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("invalid JSON label set: %w", err)
		}
	default:
		// Unknown extension: YAML first (a superset accepting most JSON),
		// then strict JSON.
		if yamlErr := yaml.Unmarshal(data, &set); yamlErr != nil {
			if jsonErr := json.Unmarshal(data, &set); jsonErr != nil {
				return nil, fmt.Errorf("label set is neither valid YAML (%v) nor valid JSON (%v)", yamlErr, jsonErr)
			}
		}
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks structural invariants of the label set.
func (s *Set) Validate() error {
	if len(s.Files) == 0 {
		return errors.New("label set contains no files")
	}
	for i, f := range s.Files {
		if strings.TrimSpace(f.Filename) == "" {
			return fmt.Errorf("files[%d]: filename is required", i)
		}
		for j, r := range f.Tags {
			if strings.TrimSpace(r.Tag) == "" {
				return fmt.Errorf("files[%d] (%s): tags[%d]: tag name is required", i, f.Filename, j)
			}
			if err := checkUnit("left", r.Left); err != nil {
				return fmt.Errorf("files[%d] (%s): tags[%d]: %w", i, f.Filename, j, err)
			}
			if err := checkUnit("top", r.Top); err != nil {
				return fmt.Errorf("files[%d] (%s): tags[%d]: %w", i, f.Filename, j, err)
			}
			if err := checkUnit("width", r.Width); err != nil {
				return fmt.Errorf("files[%d] (%s): tags[%d]: %w", i, f.Filename, j, err)
			}
			if err := checkUnit("height", r.Height); err != nil {
				return fmt.Errorf("files[%d] (%s): tags[%d]: %w", i, f.Filename, j, err)
			}
			if r.Left+r.Width > 1.0000001 {
				return fmt.Errorf("files[%d] (%s): tags[%d]: region extends past right edge", i, f.Filename, j)
			}
			if r.Top+r.Height > 1.0000001 {
				return fmt.Errorf("files[%d] (%s): tags[%d]: region extends past bottom edge", i, f.Filename, j)
			}
		}
	}
	return nil
}

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0,1], got %v", name, v)
	}
	return nil
}
