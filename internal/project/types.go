package project

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/nfc15100"
)

// Project is an installation made of distribution boards, each feeding a
// list of circuits. It is read from a JSON file.
type Project struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Boards      []Board `json:"boards"`
}

// Board is a distribution board and the circuits it feeds.
type Board struct {
	Name    string                `json:"name"`
	Voltage nfc15100.VoltageClass `json:"voltage"` // supply of the board feeder

	// Optional feeder from the upstream board; when present it is sized on
	// the diversified load of the circuits below.
	Feeder *Feeder `json:"feeder,omitempty"`

	Circuits []Circuit `json:"circuits"`
}

// Feeder describes the cable run supplying a board.
type Feeder struct {
	LengthMeters          float64                     `json:"length_m"`
	Material              nfc15100.Material           `json:"material"`
	Method                nfc15100.InstallationMethod `json:"method"`
	PowerFactor           float64                     `json:"power_factor"`
	MaxVoltageDropPercent float64                     `json:"max_drop_percent,omitempty"` // default: submain limit
}

// Circuit is one named outgoing circuit of a board.
type Circuit struct {
	Name string `json:"name"`
	circuit.CircuitSpec
}

// Load reads a project definition from a JSON file.
func Load(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a project definition.
func Parse(r io.Reader) (*Project, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var p Project
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the structure of the project. Circuit values are checked
// by the sizing engine, circuit by circuit.
func (p *Project) Validate() error {
	if p.Name == "" {
		return &ValidationError{"project must have a name"}
	}
	if len(p.Boards) == 0 {
		return &ValidationError{"project must have at least one board"}
	}
	boards := make(map[string]bool, len(p.Boards))
	for i, b := range p.Boards {
		if b.Name == "" {
			return &ValidationError{fmt.Sprintf("board %d must have a name", i+1)}
		}
		if boards[b.Name] {
			return &ValidationError{fmt.Sprintf("duplicate board name %q", b.Name)}
		}
		boards[b.Name] = true

		if len(b.Circuits) == 0 {
			return &ValidationError{fmt.Sprintf("board %q must have at least one circuit", b.Name)}
		}
		if b.Feeder != nil && !b.Voltage.Valid() {
			return &ValidationError{fmt.Sprintf("board %q has a feeder but no supply voltage", b.Name)}
		}
		names := make(map[string]bool, len(b.Circuits))
		for j, c := range b.Circuits {
			if c.Name == "" {
				return &ValidationError{fmt.Sprintf("board %q circuit %d must have a name", b.Name, j+1)}
			}
			if names[c.Name] {
				return &ValidationError{fmt.Sprintf("board %q has duplicate circuit %q", b.Name, c.Name)}
			}
			names[c.Name] = true
		}
	}
	return nil
}

// CircuitCount returns the number of circuits over all boards.
func (p *Project) CircuitCount() int {
	var n int
	for _, b := range p.Boards {
		n += len(b.Circuits)
	}
	return n
}

// ValidationError represents a project definition error
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}
