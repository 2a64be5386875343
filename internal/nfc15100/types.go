package nfc15100

import (
	"fmt"
	"strings"
)

// VoltageClass is the supply topology of a circuit.
type VoltageClass int

const (
	SinglePhase230 VoltageClass = iota + 1 // phase-neutral, 230 V
	ThreePhase400                          // three phases, 400 V between phases
)

// Volts returns the nominal voltage used in the sizing formulas.
func (v VoltageClass) Volts() float64 {
	switch v {
	case SinglePhase230:
		return 230
	case ThreePhase400:
		return 400
	}
	return 0
}

// Valid reports whether v is one of the declared voltage classes.
func (v VoltageClass) Valid() bool {
	return v == SinglePhase230 || v == ThreePhase400
}

func (v VoltageClass) String() string {
	switch v {
	case SinglePhase230:
		return "single-phase"
	case ThreePhase400:
		return "three-phase"
	}
	return fmt.Sprintf("VoltageClass(%d)", int(v))
}

// Label is the human-readable form used in reports.
func (v VoltageClass) Label() string {
	switch v {
	case SinglePhase230:
		return "Single-phase 230 V"
	case ThreePhase400:
		return "Three-phase 400 V"
	}
	return v.String()
}

func (v VoltageClass) MarshalText() ([]byte, error) {
	if v == 0 {
		return []byte{}, nil
	}
	if !v.Valid() {
		return nil, fmt.Errorf("invalid voltage class %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *VoltageClass) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*v = 0
		return nil
	}
	parsed, err := ParseVoltageClass(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

var voltageTokens = map[string]VoltageClass{
	"single-phase": SinglePhase230,
	"mono":         SinglePhase230,
	"230":          SinglePhase230,
	"three-phase":  ThreePhase400,
	"tri":          ThreePhase400,
	"400":          ThreePhase400,
}

// ParseVoltageClass maps a canonical token to a VoltageClass.
func ParseVoltageClass(s string) (VoltageClass, error) {
	if v, ok := voltageTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown voltage class %q (want single-phase|three-phase)", s)
}

// Material is the conductor metal.
type Material int

const (
	Copper Material = iota + 1
	Aluminum
)

func (m Material) Valid() bool {
	return m == Copper || m == Aluminum
}

func (m Material) String() string {
	switch m {
	case Copper:
		return "copper"
	case Aluminum:
		return "aluminum"
	}
	return fmt.Sprintf("Material(%d)", int(m))
}

func (m Material) MarshalText() ([]byte, error) {
	if m == 0 {
		return []byte{}, nil
	}
	if !m.Valid() {
		return nil, fmt.Errorf("invalid material %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Material) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = 0
		return nil
	}
	parsed, err := ParseMaterial(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

var materialTokens = map[string]Material{
	"copper":    Copper,
	"cu":        Copper,
	"aluminum":  Aluminum,
	"aluminium": Aluminum,
	"al":        Aluminum,
}

func ParseMaterial(s string) (Material, error) {
	if m, ok := materialTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown conductor material %q (want copper|aluminum)", s)
}

// InstallationMethod is a reference installation condition
// (IEC 60364-5-52 / NF C 15-100 table 52C reference methods).
type InstallationMethod int

const (
	EnclosedInInsulation InstallationMethod = iota + 1 // A1
	Conduit                                            // B1
	WallSurface                                        // C
	Buried                                             // D
	FreeAir                                            // E/F, cable tray
)

// Methods lists every installation method in declaration order.
var Methods = []InstallationMethod{EnclosedInInsulation, Conduit, WallSurface, Buried, FreeAir}

func (m InstallationMethod) Valid() bool {
	return m >= EnclosedInInsulation && m <= FreeAir
}

func (m InstallationMethod) String() string {
	switch m {
	case EnclosedInInsulation:
		return "insulation"
	case Conduit:
		return "conduit"
	case WallSurface:
		return "wall"
	case Buried:
		return "buried"
	case FreeAir:
		return "free-air"
	}
	return fmt.Sprintf("InstallationMethod(%d)", int(m))
}

// Reference returns the IEC reference letter of the method.
func (m InstallationMethod) Reference() string {
	switch m {
	case EnclosedInInsulation:
		return "A1"
	case Conduit:
		return "B1"
	case WallSurface:
		return "C"
	case Buried:
		return "D"
	case FreeAir:
		return "E"
	}
	return "?"
}

func (m InstallationMethod) MarshalText() ([]byte, error) {
	if m == 0 {
		return []byte{}, nil
	}
	if !m.Valid() {
		return nil, fmt.Errorf("invalid installation method %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *InstallationMethod) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = 0
		return nil
	}
	parsed, err := ParseInstallationMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

var methodTokens = map[string]InstallationMethod{
	"insulation": EnclosedInInsulation,
	"a1":         EnclosedInInsulation,
	"conduit":    Conduit,
	"b1":         Conduit,
	"wall":       WallSurface,
	"c":          WallSurface,
	"buried":     Buried,
	"d":          Buried,
	"free-air":   FreeAir,
	"tray":       FreeAir,
	"e":          FreeAir,
	"f":          FreeAir,
}

func ParseInstallationMethod(s string) (InstallationMethod, error) {
	if m, ok := methodTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown installation method %q (want insulation|conduit|wall|buried|free-air)", s)
}

// Application classifies what a circuit feeds; it fixes the admissible
// voltage drop.
type Application int

const (
	Lighting Application = iota + 1
	Power
	Submain
)

// DropLimit returns the admissible voltage drop in percent.
func (a Application) DropLimit() float64 {
	switch a {
	case Lighting:
		return 3
	case Power:
		return 5
	case Submain:
		return 2
	}
	return 0
}

func (a Application) Valid() bool {
	return a >= Lighting && a <= Submain
}

func (a Application) String() string {
	switch a {
	case Lighting:
		return "lighting"
	case Power:
		return "power"
	case Submain:
		return "submain"
	}
	return fmt.Sprintf("Application(%d)", int(a))
}

func (a Application) MarshalText() ([]byte, error) {
	if a == 0 {
		return []byte{}, nil
	}
	if !a.Valid() {
		return nil, fmt.Errorf("invalid application %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Application) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*a = 0
		return nil
	}
	parsed, err := ParseApplication(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

var applicationTokens = map[string]Application{
	"lighting": Lighting,
	"power":    Power,
	"submain":  Submain,
	"feeder":   Submain,
}

func ParseApplication(s string) (Application, error) {
	if a, ok := applicationTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown application %q (want lighting|power|submain)", s)
}
