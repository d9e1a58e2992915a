/*
components.go Species and phase configuration for a property package. The
configuration is declarative: the parameter block and equation of state consume
it to derive interaction sets and parameters. Declaration order is semantic; it
fixes the canonical ordering of species pairs.
*/

package components

import (
	"encoding/json"
	"fmt"
)

// Type classifies a chemical species.
type Type string

const (
	// Solvent is the dissolving medium of a liquid phase.
	Solvent Type = "solvent"
	// Solute is a molecular species dissolved in the solvent.
	Solute Type = "solute"
	// Apparent is an electrolyte assumed fully dissociated into ionic species.
	Apparent Type = "apparent"
	// Cation is a positively charged ionic species.
	Cation Type = "cation"
	// Anion is a negatively charged ionic species.
	Anion Type = "anion"
)

// Component is a single chemical species declaration.
type Component struct {
	Name         string             `json:"name"`
	Type         Type               `json:"type"`
	Charge       int                `json:"charge,omitempty"`
	Dissociation map[string]float64 `json:"dissociation,omitempty"`
}

// Molecular reports whether the component is an uncharged molecular species.
func (c Component) Molecular() bool {
	return c.Type == Solvent || c.Type == Solute
}

// Ionic reports whether the component is a charged species.
func (c Component) Ionic() bool {
	return c.Type == Cation || c.Type == Anion
}

// PhaseType classifies a phase.
type PhaseType string

const (
	// Aqueous is a liquid phase with a single aqueous solvent.
	Aqueous PhaseType = "aqueous"
	// Liquid is a generic liquid phase.
	Liquid PhaseType = "liquid"
)

// Phase is a single phase declaration with its equation of state selection.
type Phase struct {
	Name            string    `json:"name"`
	Type            PhaseType `json:"type"`
	EquationOfState string    `json:"equation_of_state"`
}

// PairEntry is a user-supplied interaction parameter for one species pair.
type PairEntry struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Value float64 `json:"value"`
}

// ParameterData holds user-supplied interaction parameters for one phase.
type ParameterData struct {
	Alpha []PairEntry `json:"alpha,omitempty"`
	Tau   []PairEntry `json:"tau,omitempty"`
}

// Config is the full property package configuration.
type Config struct {
	Components      []Component              `json:"components"`
	Phases          []Phase                  `json:"phases"`
	BaseUnits       map[string]string        `json:"base_units"`
	StateDefinition string                   `json:"state_definition"`
	PressureRef     float64                  `json:"pressure_ref"`
	TemperatureRef  float64                  `json:"temperature_ref"`
	ParameterData   map[string]ParameterData `json:"parameter_data,omitempty"`
}

// ConfigurationError reports an invalid property package configuration.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

// NewConfigurationError formats a ConfigurationError.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	_, ok := err.(*ConfigurationError)
	return ok
}

// baseUnitKeys are the dimensions every configuration must supply.
var baseUnitKeys = []string{"time", "length", "mass", "amount", "temperature"}

// ParseConfig unmarshals and validates a JSON configuration.
func ParseConfig(jsonConfig []byte) (Config, error) {
	cfg := Config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Component returns the named component declaration.
func (c Config) Component(name string) (Component, bool) {
	for _, comp := range c.Components {
		if comp.Name == name {
			return comp, true
		}
	}
	return Component{}, false
}

// OfType returns component names of the given type, in declaration order.
func (c Config) OfType(t Type) []string {
	names := make([]string, 0)
	for _, comp := range c.Components {
		if comp.Type == t {
			names = append(names, comp.Name)
		}
	}
	return names
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if len(c.Components) == 0 {
		return NewConfigurationError("configuration declares no components")
	}
	if len(c.Phases) == 0 {
		return NewConfigurationError("configuration declares no phases")
	}

	seen := make(map[string]bool)
	for _, comp := range c.Components {
		if seen[comp.Name] {
			return NewConfigurationError(
				"component %v declared more than once", comp.Name)
		}
		seen[comp.Name] = true

		if err := c.validateComponent(comp); err != nil {
			return err
		}
	}

	for _, p := range c.Phases {
		if p.Type != Aqueous && p.Type != Liquid {
			return NewConfigurationError(
				"phase %v has unknown type %v", p.Name, p.Type)
		}
		if p.Type == Aqueous {
			solvents := c.OfType(Solvent)
			if len(solvents) == 0 {
				return NewConfigurationError(
					"aqueous phase %v requires a solvent component", p.Name)
			}
			if len(solvents) > 1 {
				return NewConfigurationError(
					"aqueous phase %v requires a single solvent, found %v",
					p.Name, solvents)
			}
		}
	}

	for _, key := range baseUnitKeys {
		if _, ok := c.BaseUnits[key]; !ok {
			return NewConfigurationError("base_units missing %v", key)
		}
	}

	if c.StateDefinition != "FTPx" {
		return NewConfigurationError(
			"unknown state definition %v", c.StateDefinition)
	}

	for phase := range c.ParameterData {
		found := false
		for _, p := range c.Phases {
			if p.Name == phase {
				found = true
			}
		}
		if !found {
			return NewConfigurationError(
				"parameter_data provided for undeclared phase %v", phase)
		}
	}

	return nil
}

func (c Config) validateComponent(comp Component) error {
	switch comp.Type {
	case Solvent, Solute:
		if comp.Charge != 0 {
			return NewConfigurationError(
				"molecular component %v declares a charge", comp.Name)
		}
	case Cation:
		if comp.Charge <= 0 {
			return NewConfigurationError(
				"cation %v requires a positive charge", comp.Name)
		}
	case Anion:
		if comp.Charge >= 0 {
			return NewConfigurationError(
				"anion %v requires a negative charge", comp.Name)
		}
	case Apparent:
		if len(comp.Dissociation) == 0 {
			return NewConfigurationError(
				"apparent species %v requires dissociation species", comp.Name)
		}
		for ion := range comp.Dissociation {
			target, ok := c.Component(ion)
			if !ok {
				return NewConfigurationError(
					"apparent species %v dissociates to undeclared species %v",
					comp.Name, ion)
			}
			if !target.Ionic() {
				return NewConfigurationError(
					"apparent species %v dissociates to non-ionic species %v",
					comp.Name, ion)
			}
		}
	default:
		return NewConfigurationError(
			"component %v has unknown type %v", comp.Name, comp.Type)
	}
	return nil
}
