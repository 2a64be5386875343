package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fcelec/cablesize/internal/nfc15100"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRuntime(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "cablesize.ini")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = warn\n\n[tables]\nrho_copper = 0.018\n\n[project]\nworkers = 6\n"), 0o644))

	prevCfg, prevEngine, prevFile, prevLevel := cfg, engine, configFile, logLevel
	t.Cleanup(func() {
		cfg, engine, configFile, logLevel = prevCfg, prevEngine, prevFile, prevLevel
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	configFile, logLevel = path, "debug"
	require.NoError(t, loadRuntime(rootCmd, nil))

	require.NotNil(t, engine)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.Equal(t, 0.018, engine.Tables().Resistivity[nfc15100.Copper])
}

func TestLoadRuntime_BadConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	prevFile := configFile
	t.Cleanup(func() { configFile = prevFile })

	configFile = filepath.Join(t.TempDir(), "missing.ini")
	assert.Error(t, loadRuntime(rootCmd, nil))
}

func TestWriteTables(t *testing.T) {
	tables := nfc15100.DefaultTables()

	var buf bytes.Buffer
	require.NoError(t, writeTables(&buf, tables, false))
	out := buf.String()
	assert.Contains(t, out, "10, 16, 20, 25, 32, 40, 50, 63, 80, 100, 125, 160, 200, 250, 400, 630")
	assert.Contains(t, out, "B1")
	assert.Contains(t, out, "lighting:")
	assert.Contains(t, out, "10 circuits and more:")

	buf.Reset()
	require.NoError(t, writeTables(&buf, tables, true))
	var decoded struct {
		Breakers []float64            `json:"breakers"`
		Ampacity map[string][]float64 `json:"ampacity"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, tables.Breakers, decoded.Breakers)
	assert.Len(t, decoded.Ampacity["conduit"], len(tables.Sections))
}
