// Package scenario loads process simulation scenarios from YAML and builds runnable
// simulators from them.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is the top-level scenario configuration.
// Loaded from YAML via Load(path).
type Scenario struct {
	Seed         int64            `yaml:"seed"`
	Horizon      float64          `yaml:"horizon,omitempty"` // 0 = run until no events remain
	Resources    []ResourceSpec   `yaml:"resources"`
	Trajectories []TrajectorySpec `yaml:"trajectories"`
	Sources      []SourceSpec     `yaml:"sources"`
}

// ResourceSpec defines a server pool.
type ResourceSpec struct {
	Name      string `yaml:"name"`
	Capacity  int    `yaml:"capacity"`             // -1 = unbounded
	QueueSize *int   `yaml:"queue_size,omitempty"` // nil or -1 = unbounded
}

// TrajectorySpec is a named sequence of steps.
type TrajectorySpec struct {
	Name  string     `yaml:"name"`
	Steps []StepSpec `yaml:"steps"`
}

// StepSpec defines one activity. Which fields apply depends on Type.
type StepSpec struct {
	Type      string     `yaml:"type"`
	Delay     *ValueSpec `yaml:"delay,omitempty"`     // timeout
	Resource  string     `yaml:"resource,omitempty"`  // seize, release
	Key       string     `yaml:"key,omitempty"`       // set_attribute
	Value     *ValueSpec `yaml:"value,omitempty"`     // set_attribute
	Global    bool       `yaml:"global,omitempty"`    // set_attribute
	N         int        `yaml:"n,omitempty"`         // batch
	Timeout   *ValueSpec `yaml:"timeout,omitempty"`   // batch, renege_in
	Permanent bool       `yaml:"permanent,omitempty"` // batch
}

// ValueSpec parameterizes a constant or an entity-dependent expression.
type ValueSpec struct {
	Type    string  `yaml:"type,omitempty"` // constant (default), exponential, uniform, attribute
	Value   float64 `yaml:"value,omitempty"`
	Mean    float64 `yaml:"mean,omitempty"`
	Min     float64 `yaml:"min,omitempty"`
	Max     float64 `yaml:"max,omitempty"`
	Key     string  `yaml:"key,omitempty"`
	Default float64 `yaml:"default,omitempty"`
	Global  bool    `yaml:"global,omitempty"`
}

// SourceSpec defines an arrival generator.
type SourceSpec struct {
	Name         string    `yaml:"name"`
	Trajectory   string    `yaml:"trajectory"`
	Interarrival ValueSpec `yaml:"interarrival"`
	Count        int       `yaml:"count,omitempty"` // 0 = unlimited (use horizon only)
	Priority     int       `yaml:"priority,omitempty"`
	Monitor      bool      `yaml:"monitor"`
}

var (
	validStepTypes = map[string]bool{
		"timeout": true, "seize": true, "release": true, "set_attribute": true,
		"batch": true, "separate": true, "renege_in": true,
	}
	validValueTypes = map[string]bool{
		"": true, "constant": true, "exponential": true, "uniform": true, "attribute": true,
	}
)

// Load reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML scenario strictly.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &s, nil
}

// Validate checks that all fields in the scenario are valid.
func (s *Scenario) Validate() error {
	if s.Horizon < 0 || math.IsNaN(s.Horizon) {
		return fmt.Errorf("horizon must be non-negative, got %f", s.Horizon)
	}
	if len(s.Sources) == 0 {
		return fmt.Errorf("at least one source required")
	}

	resources := make(map[string]bool, len(s.Resources))
	for i, r := range s.Resources {
		prefix := fmt.Sprintf("resources[%d]", i)
		if r.Name == "" {
			return fmt.Errorf("%s: name required", prefix)
		}
		if resources[r.Name] {
			return fmt.Errorf("%s: duplicate resource %q", prefix, r.Name)
		}
		if r.Capacity == 0 || r.Capacity < -1 {
			return fmt.Errorf("%s: capacity must be positive or -1, got %d", prefix, r.Capacity)
		}
		if r.QueueSize != nil && *r.QueueSize < -1 {
			return fmt.Errorf("%s: queue_size must be non-negative or -1, got %d", prefix, *r.QueueSize)
		}
		resources[r.Name] = true
	}

	trajectories := make(map[string]bool, len(s.Trajectories))
	for i := range s.Trajectories {
		t := &s.Trajectories[i]
		prefix := fmt.Sprintf("trajectories[%d]", i)
		if t.Name == "" {
			return fmt.Errorf("%s: name required", prefix)
		}
		if trajectories[t.Name] {
			return fmt.Errorf("%s: duplicate trajectory %q", prefix, t.Name)
		}
		for j := range t.Steps {
			if err := validateStep(fmt.Sprintf("%s.steps[%d]", prefix, j), &t.Steps[j], resources); err != nil {
				return err
			}
		}
		trajectories[t.Name] = true
	}

	names := make(map[string]bool, len(s.Sources))
	for i := range s.Sources {
		src := &s.Sources[i]
		prefix := fmt.Sprintf("sources[%d]", i)
		if src.Name == "" {
			return fmt.Errorf("%s: name required", prefix)
		}
		if names[src.Name] {
			return fmt.Errorf("%s: duplicate source %q", prefix, src.Name)
		}
		names[src.Name] = true
		if !trajectories[src.Trajectory] {
			return fmt.Errorf("%s: unknown trajectory %q", prefix, src.Trajectory)
		}
		if src.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative, got %d", prefix, src.Count)
		}
		if src.Interarrival.Type == "attribute" {
			return fmt.Errorf("%s.interarrival: attribute values need an arrival and cannot drive a source", prefix)
		}
		if err := validateValue(prefix+".interarrival", &src.Interarrival); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(prefix string, st *StepSpec, resources map[string]bool) error {
	if !validStepTypes[st.Type] {
		return fmt.Errorf("%s: unknown step type %q; valid: timeout, seize, release, set_attribute, batch, separate, renege_in", prefix, st.Type)
	}
	switch st.Type {
	case "timeout":
		return requireValue(prefix+".delay", st.Delay)
	case "seize", "release":
		if !resources[st.Resource] {
			return fmt.Errorf("%s: unknown resource %q", prefix, st.Resource)
		}
	case "set_attribute":
		if st.Key == "" {
			return fmt.Errorf("%s: key required", prefix)
		}
		return requireValue(prefix+".value", st.Value)
	case "batch":
		if st.N < 1 {
			return fmt.Errorf("%s: n must be positive, got %d", prefix, st.N)
		}
		if st.Timeout != nil {
			return validateValue(prefix+".timeout", st.Timeout)
		}
	case "renege_in":
		return requireValue(prefix+".timeout", st.Timeout)
	}
	return nil
}

func requireValue(prefix string, v *ValueSpec) error {
	if v == nil {
		return fmt.Errorf("%s: required", prefix)
	}
	return validateValue(prefix, v)
}

func validateValue(prefix string, v *ValueSpec) error {
	if !validValueTypes[v.Type] {
		return fmt.Errorf("%s: unknown value type %q; valid: constant, exponential, uniform, attribute", prefix, v.Type)
	}
	for name, val := range map[string]float64{"value": v.Value, "mean": v.Mean, "min": v.Min, "max": v.Max, "default": v.Default} {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s.%s must be a finite number, got %f", prefix, name, val)
		}
	}
	switch v.Type {
	case "exponential":
		if v.Mean <= 0 {
			return fmt.Errorf("%s.mean must be positive, got %f", prefix, v.Mean)
		}
	case "uniform":
		if v.Max < v.Min {
			return fmt.Errorf("%s: max (%f) must not be below min (%f)", prefix, v.Max, v.Min)
		}
	case "attribute":
		if v.Key == "" {
			return fmt.Errorf("%s.key required", prefix)
		}
	}
	return nil
}
