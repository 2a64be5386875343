package wizard

import (
	"testing"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/nfc15100"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Prefill(t *testing.T) {
	w := New(circuit.CircuitSpec{
		ActivePowerWatts: 3500,
		PowerFactor:      0.9,
		Voltage:          nfc15100.ThreePhase400,
		LengthMeters:     25,
		Material:         nfc15100.Aluminum,
		Method:           nfc15100.Buried,
	})
	assert.Equal(t, "3500", w.power)
	assert.Equal(t, "0.9", w.powerFactor)
	assert.Equal(t, "three-phase", w.voltage)
	assert.Equal(t, "aluminum", w.material)
	assert.Equal(t, "buried", w.method)
	assert.Equal(t, "power", w.application)
	assert.Equal(t, "", w.maxDrop)
	assert.Equal(t, entryPower, w.entry)

	w = New(circuit.CircuitSpec{DesignCurrentAmps: 16})
	assert.Equal(t, entryCurrent, w.entry)
	assert.Equal(t, "single-phase", w.voltage)
}

func TestSpec_PowerEntry(t *testing.T) {
	w := New(circuit.CircuitSpec{})
	w.power = "3500"
	w.powerFactor = "0,9" // decimal comma accepted
	w.length = "25"
	w.application = "lighting"

	spec, err := w.Spec()
	require.NoError(t, err)
	assert.Equal(t, 3500.0, spec.ActivePowerWatts)
	assert.Equal(t, 0.9, spec.PowerFactor)
	assert.Equal(t, 25.0, spec.LengthMeters)
	assert.Equal(t, nfc15100.SinglePhase230, spec.Voltage)
	assert.Equal(t, nfc15100.Conduit, spec.Method)
	assert.Equal(t, 3.0, spec.DropLimit())

	res, err := circuit.Default().Size(spec)
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.BreakerRatingAmps)
}

func TestSpec_CurrentEntry(t *testing.T) {
	w := New(circuit.CircuitSpec{})
	w.entry = entryCurrent
	w.current = "32"
	w.power = "not used"
	w.length = "10"
	w.maxDrop = "2"

	spec, err := w.Spec()
	require.NoError(t, err)
	assert.Equal(t, 32.0, spec.DesignCurrentAmps)
	assert.Zero(t, spec.ActivePowerWatts)
	assert.Equal(t, 2.0, spec.DropLimit())
}

func TestSpec_Errors(t *testing.T) {
	w := New(circuit.CircuitSpec{})
	w.length = "long"
	_, err := w.Spec()
	assert.Error(t, err)

	w = New(circuit.CircuitSpec{})
	w.length = "10"
	w.power = ""
	_, err = w.Spec()
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validatePositive("12.5"))
	assert.Error(t, validatePositive("0"))
	assert.Error(t, validatePositive("abc"))

	assert.NoError(t, validatePowerFactor("1"))
	assert.Error(t, validatePowerFactor("1.1"))

	assert.NoError(t, validateOptionalDrop(""))
	assert.NoError(t, validateOptionalDrop("3"))
	assert.Error(t, validateOptionalDrop("150"))
}

func TestForm_Builds(t *testing.T) {
	assert.NotNil(t, New(circuit.CircuitSpec{}).Form())
}
