package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/nfc15100"
	"github.com/fcelec/cablesize/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(t *testing.T, name string) *project.Report {
	t.Helper()
	base := circuit.CircuitSpec{
		ActivePowerWatts:      3500,
		PowerFactor:           0.9,
		Voltage:               nfc15100.SinglePhase230,
		LengthMeters:          25,
		Material:              nfc15100.Copper,
		Method:                nfc15100.Conduit,
		MaxVoltageDropPercent: 3,
	}
	bad := base
	bad.LengthMeters = -1

	p := &project.Project{
		Name: name,
		Boards: []project.Board{{
			Name: "TD1",
			Circuits: []project.Circuit{
				{Name: "sockets", CircuitSpec: base},
				{Name: "bad", CircuitSpec: bad},
			},
		}},
	}
	report, err := project.NewSizer(circuit.Default(), 2).Size(context.Background(), p)
	require.NoError(t, err)
	return report
}

func TestSaveAndGetRun(t *testing.T) {
	s := tempDB(t)

	saved, err := s.SaveRun(sampleReport(t, "house"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 2, saved.Circuits)
	assert.Equal(t, 1, saved.Failed)

	got, err := s.GetRun(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "house", got.Project)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Outcomes, 2)

	ok := got.Outcomes[0]
	assert.Equal(t, "sockets", ok.Circuit)
	assert.Equal(t, "ok", ok.Status)
	assert.Empty(t, ok.Error)

	var res circuit.SizingResult
	require.NoError(t, json.Unmarshal(ok.Result, &res))
	assert.Equal(t, 20.0, res.BreakerRatingAmps)
	assert.Equal(t, 4.0, res.SelectedCrossSectionMm2)
	assert.Equal(t, circuit.VoltageDrop, res.Governing)

	var spec circuit.CircuitSpec
	require.NoError(t, json.Unmarshal(ok.Spec, &spec))
	assert.Equal(t, nfc15100.Conduit, spec.Method)

	bad := got.Outcomes[1]
	assert.Equal(t, "invalid", bad.Status)
	assert.Nil(t, bad.Result)
	assert.Contains(t, bad.Error, "length_m")
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := tempDB(t)

	first, err := s.SaveRun(sampleReport(t, "first"))
	require.NoError(t, err)
	second, err := s.SaveRun(sampleReport(t, "second"))
	require.NoError(t, err)

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
	assert.Empty(t, runs[0].Outcomes)

	runs, err = s.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestGetRun_NotFound(t *testing.T) {
	s := tempDB(t)
	_, err := s.GetRun("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	saved, err := s.SaveRun(sampleReport(t, "persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetRun(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Project)
}
