package config

import (
	"errors"
	"fmt"
)

// Columns is the static numeric / categorical partition of the dataset's columns.
// The partition is a domain decision (discovery_year is categorical) and is never
// inferred from the data.
type Columns struct {
	Numeric     []string `mapstructure:"numeric"`
	Categorical []string `mapstructure:"categorical"`
}

// DefaultColumns returns the classification used for the NASA exoplanet table.
func DefaultColumns() Columns {
	return Columns{
		Numeric: []string{
			"distance",
			"stellar_magnitude",
			"mass_multiplier",
			"radius_multiplier",
			"orbital_radius",
			"orbital_period",
			"eccentricity",
		},
		Categorical: []string{
			"planet_type",
			"discovery_year",
			"mass_wrt",
			"radius_wrt",
			"detection_method",
		},
	}
}

// All returns numeric columns followed by categorical columns.
func (c Columns) All() []string {
	out := make([]string, 0, len(c.Numeric)+len(c.Categorical))
	out = append(out, c.Numeric...)
	return append(out, c.Categorical...)
}

func (c Columns) IsNumeric(name string) bool {
	for _, n := range c.Numeric {
		if n == name {
			return true
		}
	}
	return false
}

func (c Columns) IsCategorical(name string) bool {
	for _, n := range c.Categorical {
		if n == name {
			return true
		}
	}
	return false
}

// Validate rejects an empty partition and names claimed by both groups.
func (c Columns) Validate() error {
	if len(c.Numeric) == 0 || len(c.Categorical) == 0 {
		return errors.New("config: both numeric and categorical column lists must be non-empty")
	}
	seen := make(map[string]bool, len(c.Numeric))
	for _, n := range c.Numeric {
		if seen[n] {
			return fmt.Errorf("config: numeric column %q listed twice", n)
		}
		seen[n] = true
	}
	cat := make(map[string]bool, len(c.Categorical))
	for _, n := range c.Categorical {
		if seen[n] {
			return fmt.Errorf("config: column %q is both numeric and categorical", n)
		}
		if cat[n] {
			return fmt.Errorf("config: categorical column %q listed twice", n)
		}
		cat[n] = true
	}
	return nil
}
