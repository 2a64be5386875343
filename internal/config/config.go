package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fcelec/cablesize/internal/nfc15100"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

const envPrefix = "CABLESIZE_"

// Config holds the runtime settings of the tool.
type Config struct {
	// [log]
	LogLevel  string
	LogFormat string // text or json

	// [tables] overrides of the reference data
	RhoCopper        float64
	RhoAluminum      float64
	AluminumFactor   float64
	ThreePhaseFactor float64

	// [project]
	Workers int

	// [store]
	StorePath string

	// [server]
	ServerAddr string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		RhoCopper:        nfc15100.RhoCopper,
		RhoAluminum:      nfc15100.RhoAluminum,
		AluminumFactor:   nfc15100.AluminumFactor,
		ThreePhaseFactor: nfc15100.ThreePhaseFactor,
		Workers:          4,
		StorePath:        "cablesize.db",
		ServerAddr:       ":9000",
	}
}

// Load reads settings from the optional ini file at path, then the .env file
// in the working directory, then CABLESIZE_* environment variables. Later
// sources override earlier ones.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		loadFile(cfg, file)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	if err := loadEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, file *ini.File) {
	cfg.LogLevel = file.Section("log").Key("level").MustString(cfg.LogLevel)
	cfg.LogFormat = file.Section("log").Key("format").MustString(cfg.LogFormat)

	tables := file.Section("tables")
	cfg.RhoCopper = tables.Key("rho_copper").MustFloat64(cfg.RhoCopper)
	cfg.RhoAluminum = tables.Key("rho_aluminum").MustFloat64(cfg.RhoAluminum)
	cfg.AluminumFactor = tables.Key("aluminum_factor").MustFloat64(cfg.AluminumFactor)
	cfg.ThreePhaseFactor = tables.Key("three_phase_factor").MustFloat64(cfg.ThreePhaseFactor)

	cfg.Workers = file.Section("project").Key("workers").MustInt(cfg.Workers)
	cfg.StorePath = file.Section("store").Key("path").MustString(cfg.StorePath)
	cfg.ServerAddr = file.Section("server").Key("addr").MustString(cfg.ServerAddr)
}

func loadEnv(cfg *Config) error {
	strs := map[string]*string{
		"LOG_LEVEL":   &cfg.LogLevel,
		"LOG_FORMAT":  &cfg.LogFormat,
		"STORE_PATH":  &cfg.StorePath,
		"SERVER_ADDR": &cfg.ServerAddr,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"RHO_COPPER":         &cfg.RhoCopper,
		"RHO_ALUMINUM":       &cfg.RhoAluminum,
		"ALUMINUM_FACTOR":    &cfg.AluminumFactor,
		"THREE_PHASE_FACTOR": &cfg.ThreePhaseFactor,
	}
	for key, dst := range floats {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = f
	}

	if v, ok := os.LookupEnv(envPrefix + "WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", envPrefix, err)
		}
		cfg.Workers = n
	}
	return nil
}

// Validate checks settings that do not depend on the reference tables.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("project workers must be at least 1, got %d", c.Workers)
	}
	_, err := c.Tables()
	return err
}

// Tables returns the default reference tables with the configured
// overrides applied.
func (c *Config) Tables() (*nfc15100.Tables, error) {
	t := nfc15100.DefaultTables()
	t.Resistivity[nfc15100.Copper] = c.RhoCopper
	t.Resistivity[nfc15100.Aluminum] = c.RhoAluminum
	t.MaterialFactor[nfc15100.Aluminum] = c.AluminumFactor
	t.TopologyFactor[nfc15100.ThreePhase400] = c.ThreePhaseFactor
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("config tables: %w", err)
	}
	return t, nil
}
