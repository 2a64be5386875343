package circuit

import (
	"fmt"

	"github.com/fcelec/cablesize/internal/nfc15100"
)

// CircuitSpec describes one circuit to be sized.
type CircuitSpec struct {
	// Load
	ActivePowerWatts  float64 `json:"power_w,omitempty"`      // P (W)
	DesignCurrentAmps float64 `json:"current_a,omitempty"`    // Ib (A), overrides P when set
	PowerFactor       float64 `json:"power_factor,omitempty"` // cos φ

	// Supply and run
	Voltage      nfc15100.VoltageClass       `json:"voltage"`
	LengthMeters float64                     `json:"length_m"` // one-way run length (m)
	Material     nfc15100.Material           `json:"material"`
	Method       nfc15100.InstallationMethod `json:"method"`

	// Voltage-drop limit, either explicit or derived from the application
	MaxVoltageDropPercent float64              `json:"max_drop_percent,omitempty"`
	Application           nfc15100.Application `json:"application,omitempty"`
}

// DropLimit returns the admissible voltage drop in percent.
func (s CircuitSpec) DropLimit() float64 {
	if s.MaxVoltageDropPercent != 0 {
		return s.MaxVoltageDropPercent
	}
	return s.Application.DropLimit()
}

// UsesCurrentEntry reports whether the design current was entered directly.
func (s CircuitSpec) UsesCurrentEntry() bool {
	return s.DesignCurrentAmps > 0
}

// Constraint names the sizing rule that fixed the retained cross-section.
type Constraint int

const (
	VoltageDrop Constraint = iota + 1
	Ampacity
)

func (c Constraint) String() string {
	switch c {
	case VoltageDrop:
		return "voltage-drop"
	case Ampacity:
		return "ampacity"
	}
	return fmt.Sprintf("Constraint(%d)", int(c))
}

func (c Constraint) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Constraint) UnmarshalText(b []byte) error {
	switch string(b) {
	case "voltage-drop":
		*c = VoltageDrop
	case "ampacity":
		*c = Ampacity
	default:
		return fmt.Errorf("unknown constraint %q", b)
	}
	return nil
}

// SizingResult holds the outcome of a successful sizing.
type SizingResult struct {
	// Current and protection
	DesignCurrentAmps float64 `json:"design_current_a"` // Ib
	BreakerRatingAmps float64 `json:"breaker_rating_a"` // In

	// Cross-sections (mm²)
	TheoreticalSectionMm2   float64 `json:"theoretical_section_mm2"`    // S from the drop formula, unrounded
	VoltageDropSectionMm2   float64 `json:"voltage_drop_section_mm2"`   // smallest ladder entry >= theoretical
	AmpacitySectionMm2      float64 `json:"ampacity_section_mm2"`       // smallest ladder entry carrying In
	SelectedCrossSectionMm2 float64 `json:"selected_cross_section_mm2"` // max of the two

	// Checks at the selected section
	DeratedAmpacityAmps        float64 `json:"derated_ampacity_a"`
	RealizedVoltageDropVolts   float64 `json:"realized_drop_v"`
	RealizedVoltageDropPercent float64 `json:"realized_drop_percent"`
	MaxVoltageDropPercent      float64 `json:"max_drop_percent"`

	Governing Constraint `json:"governing"`
}

// DropMarginPercent is the unused part of the voltage-drop allowance.
func (r *SizingResult) DropMarginPercent() float64 {
	return r.MaxVoltageDropPercent - r.RealizedVoltageDropPercent
}
