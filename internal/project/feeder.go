package project

import (
	"fmt"
	"math"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/nfc15100"
)

// FeederName is the circuit name given to a board feeder in reports.
const FeederName = "feeder"

// activePower returns the active power of a circuit, deriving it from the
// design current when the circuit was entered by current.
func activePower(spec circuit.CircuitSpec) float64 {
	if spec.ActivePowerWatts > 0 || !spec.UsesCurrentEntry() {
		return spec.ActivePowerWatts
	}
	pf := spec.PowerFactor
	if pf == 0 {
		pf = 1
	}
	p := spec.DesignCurrentAmps * spec.Voltage.Volts() * pf
	if spec.Voltage == nfc15100.ThreePhase400 {
		p *= math.Sqrt(3)
	}
	return p
}

// FeederLoadError reports a feeder that cannot be sized because one of the
// circuits it supplies is invalid. It matches circuit.ErrInvalidSpec.
type FeederLoadError struct {
	Circuit string
	Err     error
}

func (e *FeederLoadError) Error() string {
	return fmt.Sprintf("feeder load depends on invalid circuit %s: %v", e.Circuit, e.Err)
}

func (e *FeederLoadError) Unwrap() error {
	return e.Err
}

// FeederSpec builds the circuit spec of the board feeder from the
// diversified load of its circuits. The bool is false when the board has
// no feeder. Every circuit is validated first; an invalid circuit makes
// the load unknown and yields a *FeederLoadError.
func (b *Board) FeederSpec(e *circuit.Engine) (circuit.CircuitSpec, bool, error) {
	if b.Feeder == nil {
		return circuit.CircuitSpec{}, false, nil
	}
	spec := circuit.CircuitSpec{
		PowerFactor:           b.Feeder.PowerFactor,
		Voltage:               b.Voltage,
		LengthMeters:          b.Feeder.LengthMeters,
		Material:              b.Feeder.Material,
		Method:                b.Feeder.Method,
		MaxVoltageDropPercent: b.Feeder.MaxVoltageDropPercent,
		Application:           nfc15100.Submain,
	}

	load := nfc15100.BoardLoad{CircuitPowers: make([]float64, 0, len(b.Circuits))}
	for _, c := range b.Circuits {
		if err := e.Validate(c.CircuitSpec); err != nil {
			return spec, true, &FeederLoadError{Circuit: c.Name, Err: err}
		}
		load.CircuitPowers = append(load.CircuitPowers, activePower(c.CircuitSpec))
	}
	spec.ActivePowerWatts = load.DiversifiedPower()
	return spec, true, nil
}
