package circuit

import (
	"fmt"
	"math"

	"github.com/fcelec/cablesize/internal/nfc15100"
)

// Engine sizes circuits against a fixed set of reference tables.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	tables *nfc15100.Tables
}

// New creates an engine over the given tables. A nil value selects the
// NF C 15-100 defaults.
func New(tables *nfc15100.Tables) (*Engine, error) {
	if tables == nil {
		tables = nfc15100.DefaultTables()
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("reference tables: %w", err)
	}
	return &Engine{tables: tables}, nil
}

// Default returns an engine over the default reference tables.
func Default() *Engine {
	e, err := New(nil)
	if err != nil {
		panic(err)
	}
	return e
}

// Tables returns the reference data used by the engine. Callers must not
// modify it.
func (e *Engine) Tables() *nfc15100.Tables {
	return e.tables
}

// Size runs the staged calculation: design current, breaker, voltage-drop
// section, ampacity section, reconciliation and realized drop.
func (e *Engine) Size(spec CircuitSpec) (*SizingResult, error) {
	if err := e.Validate(spec); err != nil {
		return nil, err
	}

	ib := e.DesignCurrent(spec)

	in, err := e.SelectBreaker(ib)
	if err != nil {
		return nil, err
	}

	sDU, sTheo, err := e.SectionByVoltageDrop(in, spec)
	if err != nil {
		return nil, err
	}

	sIZ, _, err := e.SectionByAmpacity(in, spec)
	if err != nil {
		return nil, err
	}

	sFinal, governing := Reconcile(sDU, sIZ)
	i := nfc15100.IndexOf(e.tables.Sections, sFinal)
	dropV, dropPct := e.RealizedDrop(sFinal, in, spec)

	return &SizingResult{
		DesignCurrentAmps:          ib,
		BreakerRatingAmps:          in,
		TheoreticalSectionMm2:      sTheo,
		VoltageDropSectionMm2:      sDU,
		AmpacitySectionMm2:         sIZ,
		SelectedCrossSectionMm2:    sFinal,
		DeratedAmpacityAmps:        e.tables.DeratedAmpacity(spec.Method, spec.Material, spec.Voltage, i),
		RealizedVoltageDropVolts:   dropV,
		RealizedVoltageDropPercent: dropPct,
		MaxVoltageDropPercent:      spec.DropLimit(),
		Governing:                  governing,
	}, nil
}

// Validate rejects structurally invalid specs before any formula runs.
func (e *Engine) Validate(spec CircuitSpec) error {
	if math.IsNaN(spec.DesignCurrentAmps) || math.IsInf(spec.DesignCurrentAmps, 0) || spec.DesignCurrentAmps < 0 {
		return &ValidationError{Field: "current_a", Reason: "must be a positive number when given"}
	}
	if spec.UsesCurrentEntry() {
		if !finite(spec.ActivePowerWatts) || spec.ActivePowerWatts < 0 {
			return &ValidationError{Field: "power_w", Reason: "must not be negative"}
		}
		if spec.PowerFactor != 0 && !(spec.PowerFactor > 0 && spec.PowerFactor <= 1) {
			return &ValidationError{Field: "power_factor", Reason: fmt.Sprintf("must be in (0, 1], got %g", spec.PowerFactor)}
		}
	} else {
		if !finite(spec.ActivePowerWatts) || !(spec.ActivePowerWatts > 0) {
			return &ValidationError{Field: "power_w", Reason: fmt.Sprintf("must be positive, got %g", spec.ActivePowerWatts)}
		}
		if !(spec.PowerFactor > 0 && spec.PowerFactor <= 1) {
			return &ValidationError{Field: "power_factor", Reason: fmt.Sprintf("must be in (0, 1], got %g", spec.PowerFactor)}
		}
	}
	if !finite(spec.LengthMeters) || !(spec.LengthMeters > 0) {
		return &ValidationError{Field: "length_m", Reason: fmt.Sprintf("must be positive, got %g", spec.LengthMeters)}
	}
	if !spec.Voltage.Valid() {
		return &ValidationError{Field: "voltage", Reason: "must be single-phase or three-phase"}
	}
	if !spec.Material.Valid() {
		return &ValidationError{Field: "material", Reason: "must be copper or aluminum"}
	}
	if !spec.Method.Valid() {
		return &ValidationError{Field: "method", Reason: "unknown installation method"}
	}
	if spec.Application != 0 && !spec.Application.Valid() {
		return &ValidationError{Field: "application", Reason: "unknown application"}
	}
	if limit := spec.DropLimit(); !finite(limit) || !(limit > 0 && limit < 100) {
		return &ValidationError{Field: "max_drop_percent", Reason: fmt.Sprintf("must be in (0, 100), got %g", limit)}
	}
	return nil
}

// DesignCurrent returns Ib in amperes, unrounded.
func (e *Engine) DesignCurrent(spec CircuitSpec) float64 {
	if spec.UsesCurrentEntry() {
		return spec.DesignCurrentAmps
	}
	v := spec.Voltage.Volts()
	if spec.Voltage == nfc15100.ThreePhase400 {
		return spec.ActivePowerWatts / (v * math.Sqrt(3) * spec.PowerFactor)
	}
	return spec.ActivePowerWatts / (v * spec.PowerFactor)
}

// SelectBreaker returns the smallest standard rating >= ib. Above the ladder
// it returns the largest rating together with an Overcurrent RangeError.
func (e *Engine) SelectBreaker(ib float64) (float64, error) {
	if in, ok := nfc15100.SmallestAtLeast(e.tables.Breakers, ib); ok {
		return in, nil
	}
	largest := nfc15100.Largest(e.tables.Breakers)
	return largest, &RangeError{Kind: Overcurrent, Required: ib, Largest: largest}
}

// SectionByVoltageDrop sizes the conductor so that the breaker rating in
// produces at most the admissible drop. It returns the retained ladder
// section and the theoretical value.
func (e *Engine) SectionByVoltageDrop(in float64, spec CircuitSpec) (float64, float64, error) {
	rho := e.tables.Resistivity[spec.Material]
	sTheo := nfc15100.SectionForDrop(spec.Voltage, rho, spec.LengthMeters, in, spec.DropLimit())

	s, ok := nfc15100.SmallestAtLeast(e.tables.Sections, sTheo)
	if !ok {
		return 0, sTheo, &RangeError{
			Kind:     Oversection,
			Required: sTheo,
			Largest:  nfc15100.Largest(e.tables.Sections),
			Detail:   fmt.Sprintf("voltage-drop section %.2f mm²", sTheo),
		}
	}
	return s, sTheo, nil
}

// SectionByAmpacity returns the smallest ladder section whose derated
// ampacity carries in, along with that ampacity.
func (e *Engine) SectionByAmpacity(in float64, spec CircuitSpec) (float64, float64, error) {
	for i, s := range e.tables.Sections {
		iz := e.tables.DeratedAmpacity(spec.Method, spec.Material, spec.Voltage, i)
		if iz >= in {
			return s, iz, nil
		}
	}
	return 0, 0, &RangeError{
		Kind:     Oversection,
		Required: in,
		Largest:  nfc15100.Largest(e.tables.Sections),
		Detail:   fmt.Sprintf("ampacity for %g A (%s, %s, method %s)", in, spec.Material, spec.Voltage, spec.Method.Reference()),
	}
}

// Reconcile retains the larger of the two minimal sections. Ties are
// attributed to the voltage-drop rule.
func Reconcile(sDU, sIZ float64) (float64, Constraint) {
	if sIZ > sDU {
		return sIZ, Ampacity
	}
	return sDU, VoltageDrop
}

// RealizedDrop evaluates the voltage drop at the retained section, in volts
// and in percent of the nominal voltage.
func (e *Engine) RealizedDrop(s, in float64, spec CircuitSpec) (float64, float64) {
	rho := e.tables.Resistivity[spec.Material]
	volts := nfc15100.VoltageDropVolts(spec.Voltage, rho, spec.LengthMeters, in, s)
	return volts, volts / spec.Voltage.Volts() * 100
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
