// Package config parses the planner's YAML configuration document and
// converts its plant/loads sections into a plant.Plant.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Root is the full on-disk configuration document. server and
// homeassistant are out of this module's scope (the HTTP layer and
// the Home Assistant client own them) and are kept only so the
// document round-trips; ems, plant, and loads are what the planner
// consumes.
type Root struct {
	Server        map[string]any `yaml:"server,omitempty"`
	HomeAssistant map[string]any `yaml:"homeassistant,omitempty"`

	EMS   EMSConfig   `yaml:"ems"`
	Plant PlantConfig `yaml:"plant"`
	Loads LoadsConfig `yaml:"loads"`
}

// EMSConfig controls horizon construction and output location.
type EMSConfig struct {
	TimestepMinutes        int    `yaml:"timestep_minutes"`
	HighResTimestepMinutes int    `yaml:"high_res_timestep_minutes"`
	HighResHorizonMinutes  int    `yaml:"high_res_horizon_minutes"`
	MinHorizonMinutes      int    `yaml:"min_horizon_minutes"`
	Location               string `yaml:"location"`
	DataDir                string `yaml:"data_dir"`
}

// DefaultRoot returns a document with reasonable defaults for every
// field the planner reads.
func DefaultRoot() *Root {
	return &Root{
		EMS: EMSConfig{
			TimestepMinutes:   30,
			MinHorizonMinutes: 180,
			Location:          "Local",
			DataDir:           "./data",
		},
		Plant: PlantConfig{
			Grid: GridConfig{
				ImportMaxKW: 10,
				ExportMaxKW: 10,
			},
		},
	}
}

// Load reads and validates a configuration document from filename.
func Load(filename string) (*Root, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("config: failed to open %s: %w", filename, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads and validates a configuration document.
func LoadFromReader(r io.Reader) (*Root, error) {
	root := DefaultRoot()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(root); err != nil {
		return nil, fmt.Errorf("config: failed to decode YAML: %w", err)
	}
	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return root, nil
}

// Save writes the document to filename as YAML.
func (r *Root) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("config: failed to create %s: %w", filename, err)
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("config: failed to encode YAML: %w", err)
	}
	return nil
}

// InvalidError reports a malformed configuration document.
type InvalidError struct {
	Field   string
	Message string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Message)
}

// Validate checks the fields the planner itself requires to build a
// horizon; per-entity topology checks live in plant.Plant.Validate,
// run after ToPlant.
func (r *Root) Validate() error {
	if r.EMS.TimestepMinutes <= 0 {
		return &InvalidError{Field: "ems.timestep_minutes", Message: "must be positive"}
	}
	if r.EMS.MinHorizonMinutes <= 0 {
		return &InvalidError{Field: "ems.min_horizon_minutes", Message: "must be positive"}
	}
	if (r.EMS.HighResTimestepMinutes > 0) != (r.EMS.HighResHorizonMinutes > 0) {
		return &InvalidError{Field: "ems.high_res_timestep_minutes", Message: "high_res_timestep_minutes and high_res_horizon_minutes must be configured together"}
	}
	return nil
}
