package nfc15100

import (
	"errors"
	"fmt"
)

// Tables is the read-only reference data consumed by the sizing engine.
// A Tables value must not be modified once handed to an engine.
type Tables struct {
	Breakers       []float64                        `json:"breakers"`        // A, strictly increasing
	Sections       []float64                        `json:"sections"`        // mm², strictly increasing
	Ampacity       map[InstallationMethod][]float64 `json:"ampacity"`        // A, aligned with Sections
	Resistivity    map[Material]float64             `json:"resistivity"`     // Ω·mm²/m
	MaterialFactor map[Material]float64             `json:"material_factor"` // ampacity correction
	TopologyFactor map[VoltageClass]float64         `json:"topology_factor"` // ampacity correction
}

// DefaultTables returns a fresh copy of the NF C 15-100 reference data.
func DefaultTables() *Tables {
	return &Tables{
		Breakers: append([]float64(nil), StandardBreakers...),
		Sections: append([]float64(nil), StandardSections...),
		Ampacity: DefaultAmpacity(),
		Resistivity: map[Material]float64{
			Copper:   RhoCopper,
			Aluminum: RhoAluminum,
		},
		MaterialFactor: map[Material]float64{
			Copper:   1.0,
			Aluminum: AluminumFactor,
		},
		TopologyFactor: map[VoltageClass]float64{
			SinglePhase230: 1.0,
			ThreePhase400:  ThreePhaseFactor,
		},
	}
}

// DeratedAmpacity returns the corrected ampacity of the i-th section.
func (t *Tables) DeratedAmpacity(method InstallationMethod, m Material, v VoltageClass, i int) float64 {
	return t.Ampacity[method][i] * t.MaterialFactor[m] * t.TopologyFactor[v]
}

// Validate checks the structural consistency of the tables.
func (t *Tables) Validate() error {
	if err := checkLadder("breakers", t.Breakers); err != nil {
		return err
	}
	if err := checkLadder("sections", t.Sections); err != nil {
		return err
	}
	for _, m := range Methods {
		row, ok := t.Ampacity[m]
		if !ok {
			return fmt.Errorf("ampacity table has no row for method %s", m)
		}
		if len(row) != len(t.Sections) {
			return fmt.Errorf("ampacity row %s has %d entries, want %d", m, len(row), len(t.Sections))
		}
		for i, a := range row {
			if a <= 0 {
				return fmt.Errorf("ampacity row %s entry %d must be positive", m, i)
			}
		}
	}
	for _, m := range []Material{Copper, Aluminum} {
		if t.Resistivity[m] <= 0 {
			return fmt.Errorf("resistivity of %s must be positive", m)
		}
		if f := t.MaterialFactor[m]; f <= 0 || f > 1 {
			return fmt.Errorf("material factor of %s must be in (0, 1], got %g", m, f)
		}
	}
	for _, v := range []VoltageClass{SinglePhase230, ThreePhase400} {
		if f := t.TopologyFactor[v]; f <= 0 || f > 1 {
			return fmt.Errorf("topology factor of %s must be in (0, 1], got %g", v, f)
		}
	}
	return nil
}

func checkLadder(name string, ladder []float64) error {
	if len(ladder) == 0 {
		return errors.New(name + " ladder is empty")
	}
	for i, v := range ladder {
		if v <= 0 {
			return fmt.Errorf("%s ladder entry %d must be positive", name, i)
		}
		if i > 0 && v <= ladder[i-1] {
			return fmt.Errorf("%s ladder must be strictly increasing at entry %d (%g after %g)", name, i, v, ladder[i-1])
		}
	}
	return nil
}
