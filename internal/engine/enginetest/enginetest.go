// Package enginetest provides a small exoplanet table for tests of packages
// that consume engine.Table.
package enginetest

import (
	"strings"
	"testing"

	"exodash/internal/config"
	"exodash/internal/engine"
)

// SampleCSV mirrors the layout of the NASA exoplanet export. Row 5 has no distance.
const SampleCSV = `name,distance,stellar_magnitude,planet_type,discovery_year,mass_multiplier,mass_wrt,radius_multiplier,radius_wrt,orbital_radius,orbital_period,eccentricity,detection_method
11 Comae Berenices b,304.0,4.72307,Gas Giant,2007,19.4,Jupiter,1.08,Jupiter,1.29,0.892539357,0.23,Radial Velocity
11 Ursae Minoris b,409.0,5.013,Gas Giant,2009,14.74,Jupiter,1.09,Jupiter,1.53,1.4,0.08,Radial Velocity
14 Andromedae b,246.0,5.23133,Gas Giant,2008,4.8,Jupiter,1.15,Jupiter,0.83,0.508761123,0.0,Radial Velocity
55 Cancri e,41.0,5.95,Super Earth,2004,7.99,Earth,1.875,Earth,0.01544,0.002,0.05,Transit
Kepler-22 b,,11.664,Super Earth,2011,9.1,Earth,2.1,Earth,0.812,0.7,0.0,Transit
GJ 1214 b,48.0,14.71,Neptune-like,2009,8.17,Earth,2.742,Earth,0.01488,0.004,0.06,Transit
`

// Table parses SampleCSV with the default column classification and releases it when t ends.
func Table(t testing.TB) *engine.Table {
	t.Helper()
	return Parse(t, SampleCSV)
}

// Parse loads arbitrary CSV text with the default column classification.
func Parse(t testing.TB, csv string) *engine.Table {
	t.Helper()
	tbl, err := engine.ReadTable(strings.NewReader(csv), config.DefaultColumns())
	if err != nil {
		t.Fatalf("parse sample table: %v", err)
	}
	t.Cleanup(tbl.Release)
	return tbl
}
