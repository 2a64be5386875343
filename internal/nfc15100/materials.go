package nfc15100

// NF C 15-100 conductor constants (simplified voltage-drop method,
// resistivity at normal service temperature, 1.25 × ρ at 20 °C).

const (
	// Resistivity in Ω·mm²/m
	RhoCopper   = 0.0225
	RhoAluminum = 0.036

	// Ampacity correction for aluminum conductors relative to copper
	AluminumFactor = 0.78

	// Ampacity correction for three loaded conductors relative to two
	ThreePhaseFactor = 0.88
)

// DropCoefficient returns the topology coefficient b of the voltage-drop
// formula ΔU = b·ρ·L·I/S.
//
// Single-phase circuits carry the current out and back (b = 2). Three-phase
// balanced circuits use b = 1 with the drop expressed against the 400 V
// line voltage; the same coefficient is used for sizing and verification.
func DropCoefficient(v VoltageClass) float64 {
	if v == ThreePhase400 {
		return 1
	}
	return 2
}

// VoltageDropVolts evaluates ΔU = b·ρ·L·I/S in volts.
func VoltageDropVolts(v VoltageClass, rho, length, current, section float64) float64 {
	return DropCoefficient(v) * rho * length * current / section
}

// SectionForDrop evaluates the theoretical cross-section (mm²) that yields
// exactly maxDropPercent at the given current.
func SectionForDrop(v VoltageClass, rho, length, current, maxDropPercent float64) float64 {
	dropVolts := maxDropPercent / 100 * v.Volts()
	return DropCoefficient(v) * rho * length * current / dropVolts
}
