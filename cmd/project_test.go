package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/config"
	"github.com/fcelec/cablesize/internal/project"
	"github.com/fcelec/cablesize/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sizeWorkshop(t *testing.T) *project.Report {
	t.Helper()
	p, err := project.Load(filepath.Join("..", "internal", "project", "testdata", "workshop.json"))
	require.NoError(t, err)
	report, err := project.NewSizer(circuit.Default(), 2).Size(context.Background(), p)
	require.NoError(t, err)
	return report
}

func TestWriteProjectReport(t *testing.T) {
	var buf bytes.Buffer
	writeProjectReport(&buf, sizeWorkshop(t))

	out := buf.String()
	assert.Contains(t, out, "PROJECT SIZING - Workshop renovation")
	assert.Contains(t, out, "BOARD TGBT:")
	assert.Contains(t, out, "BOARD annex:")
	assert.Contains(t, out, "↑ feeder")
	assert.Contains(t, out, "OUT OF RANGE")
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "annex / welder: design current")
	assert.Contains(t, out, "Cable 4 mm² Cu:")
	assert.Contains(t, out, "Cable 4 mm² Al:")
	assert.Contains(t, out, "Breaker 10 A:")
	assert.Contains(t, out, "5 circuits sized, 2 failed")

	// boards are printed in input order
	assert.Less(t, strings.Index(out, "BOARD TGBT:"), strings.Index(out, "BOARD annex:"))
}

func TestReportExitCode(t *testing.T) {
	assert.Equal(t, exitInvalid, reportExitCode(sizeWorkshop(t)))

	r := project.NewReport("p")
	r.Add(project.Outcome{Board: "b", Circuit: "ok"})
	assert.Equal(t, exitOK, reportExitCode(r))

	r.Add(project.Outcome{Board: "b", Circuit: "long", Err: &circuit.RangeError{Kind: circuit.Oversection}})
	assert.Equal(t, exitOutOfRange, reportExitCode(r))
}

func TestSaveRunAndShow(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })
	cfg = config.Default()
	cfg.StorePath = filepath.Join(t.TempDir(), "history.db")

	var saved bytes.Buffer
	require.NoError(t, saveRun(&saved, sizeWorkshop(t)))
	assert.Contains(t, saved.String(), "Run saved: ")

	st, err := store.NewStore(cfg.StorePath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	var list bytes.Buffer
	writeRunList(&list, runs)
	assert.Contains(t, list.String(), runs[0].ID)
	assert.Contains(t, list.String(), "Workshop renovation")

	run, err := st.GetRun(runs[0].ID)
	require.NoError(t, err)

	var show bytes.Buffer
	require.NoError(t, writeRun(&show, run))
	assert.Contains(t, show.String(), "Project:  Workshop renovation")
	assert.Contains(t, show.String(), "heat-pump")
	assert.Contains(t, show.String(), "↑ feeder")
	assert.Contains(t, show.String(), "exceeds largest standard breaker")
}

func TestWriteRunList_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeRunList(&buf, nil)
	assert.Equal(t, "No stored runs.\n", buf.String())
}
