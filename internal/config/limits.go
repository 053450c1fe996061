// Package config holds the tunable bounds and exclusion lists the analysis
// core reads from a YAML file, mirroring how funxy.yaml configures the
// teacher compiler's Go-interop layer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Limits bounds the fixed-point and recursion-guard loops in internal/infer
// and supplies the exclusion/singleton lists internal/paramresolve consults
// in steps 5 and 7 of its ranking pipeline.
type Limits struct {
	// LoopFixedPointBound caps how many times a for/while body is walked
	// while its flow state has not yet stabilized (spec.md §4.2).
	LoopFixedPointBound int `yaml:"loop_fixed_point_bound,omitempty"`

	// InferenceRecursionDepth caps how deep Engine.Infer will recurse
	// before giving up and returning Variant.
	InferenceRecursionDepth int `yaml:"inference_recursion_depth,omitempty"`

	// ExcludedTypes are dropped from parameter-type candidate sets
	// regardless of how strongly the usage evidence points to them.
	ExcludedTypes []string `yaml:"excluded_types,omitempty"`

	// SingletonTypes are autoload-style globals (Engine, OS, Input, ...)
	// that can never plausibly be a parameter's inferred type.
	SingletonTypes []string `yaml:"singleton_types,omitempty"`
}

// Default returns the bounds the core uses when no config file is present.
func Default() Limits {
	return Limits{
		LoopFixedPointBound:     10,
		InferenceRecursionDepth: 50,
		ExcludedTypes:           nil,
		SingletonTypes:          []string{"OS", "Engine", "Input"},
	}
}

// Load reads and parses a YAML limits file, filling in any field the file
// omits from Default.
func Load(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses limits YAML content from bytes. path is used only in error
// messages.
func Parse(data []byte, path string) (Limits, error) {
	lim := Default()
	if err := yaml.Unmarshal(data, &lim); err != nil {
		return Limits{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if lim.LoopFixedPointBound <= 0 {
		return Limits{}, fmt.Errorf("%s: loop_fixed_point_bound must be positive, got %d", path, lim.LoopFixedPointBound)
	}
	if lim.InferenceRecursionDepth <= 0 {
		return Limits{}, fmt.Errorf("%s: inference_recursion_depth must be positive, got %d", path, lim.InferenceRecursionDepth)
	}
	return lim, nil
}

// IsSingleton reports whether typeName is one of the configured singleton
// autoloads.
func (l Limits) IsSingleton(typeName string) bool {
	for _, s := range l.SingletonTypes {
		if s == typeName {
			return true
		}
	}
	return false
}

// IsExcluded reports whether typeName is configured to never be emitted
// as an inferred parameter type.
func (l Limits) IsExcluded(typeName string) bool {
	for _, s := range l.ExcludedTypes {
		if s == typeName {
			return true
		}
	}
	return false
}
