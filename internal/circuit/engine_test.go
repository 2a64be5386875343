package circuit

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/fcelec/cablesize/internal/nfc15100"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singlePhase3500() CircuitSpec {
	return CircuitSpec{
		ActivePowerWatts:      3500,
		PowerFactor:           0.9,
		Voltage:               nfc15100.SinglePhase230,
		LengthMeters:          25,
		Material:              nfc15100.Copper,
		Method:                nfc15100.Conduit,
		MaxVoltageDropPercent: 3,
	}
}

func threePhase50k(length float64) CircuitSpec {
	return CircuitSpec{
		ActivePowerWatts:      50000,
		PowerFactor:           0.85,
		Voltage:               nfc15100.ThreePhase400,
		LengthMeters:          length,
		Material:              nfc15100.Copper,
		Method:                nfc15100.WallSurface,
		MaxVoltageDropPercent: 3,
	}
}

func TestSize_SinglePhaseExample(t *testing.T) {
	e := Default()
	spec := singlePhase3500()

	ib := e.DesignCurrent(spec)
	assert.InDelta(t, 16.908, ib, 1e-3)

	in, err := e.SelectBreaker(ib)
	require.NoError(t, err)
	assert.Equal(t, 20.0, in)

	sDU, sTheo, err := e.SectionByVoltageDrop(in, spec)
	require.NoError(t, err)
	assert.InDelta(t, 3.2609, sTheo, 1e-4)
	assert.Equal(t, 4.0, sDU)

	res, err := e.Size(spec)
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.BreakerRatingAmps)
	assert.Equal(t, 2.5, res.AmpacitySectionMm2)
	assert.Equal(t, 4.0, res.SelectedCrossSectionMm2)
	assert.Equal(t, VoltageDrop, res.Governing)
	assert.Equal(t, 32.0, res.DeratedAmpacityAmps)
	assert.InDelta(t, 5.625, res.RealizedVoltageDropVolts, 1e-9)
	assert.InDelta(t, 2.4457, res.RealizedVoltageDropPercent, 1e-4)
	assert.InDelta(t, 3-2.4457, res.DropMarginPercent(), 1e-4)
}

func TestSize_ThreePhaseAmpacityBinds(t *testing.T) {
	e := Default()
	res, err := e.Size(threePhase50k(50))
	require.NoError(t, err)

	assert.InDelta(t, 84.9, res.DesignCurrentAmps, 0.05)
	assert.Equal(t, 100.0, res.BreakerRatingAmps)
	assert.InDelta(t, 9.375, res.TheoreticalSectionMm2, 1e-9)
	assert.Equal(t, 10.0, res.VoltageDropSectionMm2)
	assert.Equal(t, 35.0, res.AmpacitySectionMm2)
	assert.Equal(t, 35.0, res.SelectedCrossSectionMm2)
	assert.Equal(t, Ampacity, res.Governing)
	assert.InDelta(t, 138*0.88, res.DeratedAmpacityAmps, 1e-9)

	// Ampacity bound, so the drop sits well under the limit.
	assert.InDelta(t, 0.0225*50*100/35/400*100, res.RealizedVoltageDropPercent, 1e-9)
	assert.Less(t, res.RealizedVoltageDropPercent, res.MaxVoltageDropPercent)
}

func TestSize_ThreePhaseOversection(t *testing.T) {
	e := Default()
	res, err := e.Size(threePhase50k(2000))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.False(t, errors.Is(err, ErrInvalidSpec))

	var re *RangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, Oversection, re.Kind)
	assert.InDelta(t, 375, re.Required, 1e-9)
	assert.Equal(t, 300.0, re.Largest)
	assert.Contains(t, err.Error(), "exceeds largest standard size")
}

func TestSize_AmpacityOversection(t *testing.T) {
	e := Default()
	spec := CircuitSpec{
		DesignCurrentAmps:     600,
		Voltage:               nfc15100.ThreePhase400,
		LengthMeters:          1,
		Material:              nfc15100.Aluminum,
		Method:                nfc15100.EnclosedInInsulation,
		MaxVoltageDropPercent: 5,
	}
	_, err := e.Size(spec)

	var re *RangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, Oversection, re.Kind)
	assert.Equal(t, 630.0, re.Required)
	assert.Contains(t, err.Error(), "ampacity")
}

func TestSize_Overcurrent(t *testing.T) {
	e := Default()

	in, err := e.SelectBreaker(700)
	assert.Equal(t, 630.0, in)
	var re *RangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, Overcurrent, re.Kind)

	spec := singlePhase3500()
	spec.ActivePowerWatts = 200000
	res, err := e.Size(spec)
	assert.Nil(t, res)
	require.True(t, errors.As(err, &re))
	assert.Equal(t, Overcurrent, re.Kind)
	assert.InDelta(t, 200000/(230*0.9), re.Required, 1e-9)
}

func TestSize_ExactLadderBoundary(t *testing.T) {
	e := Default()

	// 14490 W / 230 V / 1.0 = 63 A exactly
	spec := singlePhase3500()
	spec.ActivePowerWatts = 14490
	spec.PowerFactor = 1
	spec.LengthMeters = 5
	require.Equal(t, 63.0, e.DesignCurrent(spec))

	res, err := e.Size(spec)
	require.NoError(t, err)
	assert.Equal(t, 63.0, res.BreakerRatingAmps)

	spec = singlePhase3500()
	spec.ActivePowerWatts = 0
	spec.DesignCurrentAmps = 63
	res, err = e.Size(spec)
	require.NoError(t, err)
	assert.Equal(t, 63.0, res.DesignCurrentAmps)
	assert.Equal(t, 63.0, res.BreakerRatingAmps)
}

func TestSize_CurrentEntryIgnoresPower(t *testing.T) {
	e := Default()
	spec := singlePhase3500()
	spec.DesignCurrentAmps = 16
	spec.PowerFactor = 0

	res, err := e.Size(spec)
	require.NoError(t, err)
	assert.Equal(t, 16.0, res.DesignCurrentAmps)
	assert.Equal(t, 16.0, res.BreakerRatingAmps)
}

func TestSize_AluminumUsesHigherResistivity(t *testing.T) {
	e := Default()
	cu := singlePhase3500()
	al := cu
	al.Material = nfc15100.Aluminum

	_, sCu, err := e.SectionByVoltageDrop(20, cu)
	require.NoError(t, err)
	_, sAl, err := e.SectionByVoltageDrop(20, al)
	require.NoError(t, err)
	assert.InDelta(t, 0.036/0.0225, sAl/sCu, 1e-9)
}

func TestSize_ApplicationDropLimit(t *testing.T) {
	e := Default()
	spec := singlePhase3500()
	spec.MaxVoltageDropPercent = 0
	spec.Application = nfc15100.Power

	res, err := e.Size(spec)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.MaxVoltageDropPercent)

	// An explicit limit wins over the application.
	spec.MaxVoltageDropPercent = 2
	res, err = e.Size(spec)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.MaxVoltageDropPercent)
}

func TestValidate_RejectsBeforeArithmetic(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CircuitSpec)
		field  string
	}{
		{"negative power", func(s *CircuitSpec) { s.ActivePowerWatts = -100 }, "power_w"},
		{"zero power", func(s *CircuitSpec) { s.ActivePowerWatts = 0 }, "power_w"},
		{"NaN power", func(s *CircuitSpec) { s.ActivePowerWatts = math.NaN() }, "power_w"},
		{"negative current", func(s *CircuitSpec) { s.DesignCurrentAmps = -1 }, "current_a"},
		{"negative power with current", func(s *CircuitSpec) { s.DesignCurrentAmps = 10; s.ActivePowerWatts = -1 }, "power_w"},
		{"power factor above one", func(s *CircuitSpec) { s.PowerFactor = 1.2 }, "power_factor"},
		{"power factor zero", func(s *CircuitSpec) { s.PowerFactor = 0 }, "power_factor"},
		{"zero length", func(s *CircuitSpec) { s.LengthMeters = 0 }, "length_m"},
		{"infinite length", func(s *CircuitSpec) { s.LengthMeters = math.Inf(1) }, "length_m"},
		{"unknown voltage", func(s *CircuitSpec) { s.Voltage = 0 }, "voltage"},
		{"unknown material", func(s *CircuitSpec) { s.Material = 9 }, "material"},
		{"unknown method", func(s *CircuitSpec) { s.Method = 0 }, "method"},
		{"unknown application", func(s *CircuitSpec) { s.Application = 7 }, "application"},
		{"no drop limit", func(s *CircuitSpec) { s.MaxVoltageDropPercent = 0 }, "max_drop_percent"},
		{"drop limit too high", func(s *CircuitSpec) { s.MaxVoltageDropPercent = 100 }, "max_drop_percent"},
	}

	e := Default()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := singlePhase3500()
			tc.mutate(&spec)

			res, err := e.Size(spec)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSpec))
			assert.False(t, errors.Is(err, ErrOutOfRange))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestReconcile(t *testing.T) {
	s, c := Reconcile(4, 2.5)
	assert.Equal(t, 4.0, s)
	assert.Equal(t, VoltageDrop, c)

	s, c = Reconcile(10, 35)
	assert.Equal(t, 35.0, s)
	assert.Equal(t, Ampacity, c)

	s, c = Reconcile(6, 6)
	assert.Equal(t, 6.0, s)
	assert.Equal(t, VoltageDrop, c)
}

// specGrid covers every topology, material and method over a range of loads
// and lengths.
func specGrid() []CircuitSpec {
	var specs []CircuitSpec
	for _, v := range []nfc15100.VoltageClass{nfc15100.SinglePhase230, nfc15100.ThreePhase400} {
		for _, m := range []nfc15100.Material{nfc15100.Copper, nfc15100.Aluminum} {
			for _, method := range nfc15100.Methods {
				for _, p := range []float64{800, 3500, 9000, 22000, 60000, 150000} {
					for _, l := range []float64{3, 25, 80, 250} {
						for _, drop := range []float64{2, 3, 5} {
							specs = append(specs, CircuitSpec{
								ActivePowerWatts:      p,
								PowerFactor:           0.9,
								Voltage:               v,
								LengthMeters:          l,
								Material:              m,
								Method:                method,
								MaxVoltageDropPercent: drop,
							})
						}
					}
				}
			}
		}
	}
	return specs
}

func TestSize_Invariants(t *testing.T) {
	e := Default()
	tables := e.Tables()

	var ok, outOfRange int
	for i, spec := range specGrid() {
		res, err := e.Size(spec)
		if err != nil {
			require.True(t, errors.Is(err, ErrOutOfRange), "spec %d: %v", i, err)
			outOfRange++
			continue
		}
		ok++
		name := fmt.Sprintf("spec %d %+v", i, spec)

		assert.GreaterOrEqual(t, nfc15100.IndexOf(tables.Breakers, res.BreakerRatingAmps), 0, name)
		assert.GreaterOrEqual(t, nfc15100.IndexOf(tables.Sections, res.SelectedCrossSectionMm2), 0, name)
		assert.Equal(t, math.Max(res.VoltageDropSectionMm2, res.AmpacitySectionMm2), res.SelectedCrossSectionMm2, name)
		assert.GreaterOrEqual(t, res.BreakerRatingAmps, res.DesignCurrentAmps, name)
		assert.GreaterOrEqual(t, res.DeratedAmpacityAmps, res.BreakerRatingAmps, name)
		assert.LessOrEqual(t, res.RealizedVoltageDropPercent, res.MaxVoltageDropPercent+1e-6, name)
		assert.GreaterOrEqual(t, res.VoltageDropSectionMm2, res.TheoreticalSectionMm2, name)
	}
	assert.Positive(t, ok)
	assert.Positive(t, outOfRange)
}

func TestSize_MonotonicInPower(t *testing.T) {
	e := Default()
	for _, v := range []nfc15100.VoltageClass{nfc15100.SinglePhase230, nfc15100.ThreePhase400} {
		t.Run(v.String(), func(t *testing.T) {
			var prev *SizingResult
			for p := 500.0; p <= 300000; p += 500 {
				spec := CircuitSpec{
					ActivePowerWatts:      p,
					PowerFactor:           0.85,
					Voltage:               v,
					LengthMeters:          40,
					Material:              nfc15100.Copper,
					Method:                nfc15100.Conduit,
					MaxVoltageDropPercent: 5,
				}
				res, err := e.Size(spec)
				if err != nil {
					require.True(t, errors.Is(err, ErrOutOfRange))
					continue
				}
				if prev != nil {
					assert.GreaterOrEqual(t, res.DesignCurrentAmps, prev.DesignCurrentAmps, "P=%g", p)
					assert.GreaterOrEqual(t, res.BreakerRatingAmps, prev.BreakerRatingAmps, "P=%g", p)
					assert.GreaterOrEqual(t, res.SelectedCrossSectionMm2, prev.SelectedCrossSectionMm2, "P=%g", p)
				}
				prev = res
			}
			require.NotNil(t, prev)
		})
	}
}

func TestSize_IdempotentAndConcurrent(t *testing.T) {
	e := Default()
	spec := threePhase50k(120)

	first, err := e.Size(spec)
	require.NoError(t, err)
	second, err := e.Size(spec)
	require.NoError(t, err)
	assert.Equal(t, *first, *second)

	var wg sync.WaitGroup
	results := make([]*SizingResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = e.Size(spec)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, *first, *r)
	}
}

func TestNew_RejectsInvalidTables(t *testing.T) {
	tables := nfc15100.DefaultTables()
	tables.Sections = []float64{4, 2.5}
	_, err := New(tables)
	assert.Error(t, err)

	e, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, nfc15100.StandardSections, e.Tables().Sections)
}
