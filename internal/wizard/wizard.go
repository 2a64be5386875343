package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/nfc15100"
)

// Load entry modes
const (
	entryPower   = "power"
	entryCurrent = "current"
)

// Wizard collects a circuit spec through an interactive form.
type Wizard struct {
	// Form field values (strings for huh)
	entry       string
	power       string
	current     string
	powerFactor string
	voltage     string
	length      string
	material    string
	method      string
	application string
	maxDrop     string
}

// New creates a wizard prefilled from spec.
func New(spec circuit.CircuitSpec) *Wizard {
	w := &Wizard{
		entry:       entryPower,
		power:       formatFloat(spec.ActivePowerWatts),
		current:     formatFloat(spec.DesignCurrentAmps),
		powerFactor: formatFloat(spec.PowerFactor),
		voltage:     nfc15100.SinglePhase230.String(),
		length:      formatFloat(spec.LengthMeters),
		material:    nfc15100.Copper.String(),
		method:      nfc15100.Conduit.String(),
		application: nfc15100.Power.String(),
		maxDrop:     formatFloat(spec.MaxVoltageDropPercent),
	}
	if spec.UsesCurrentEntry() {
		w.entry = entryCurrent
	}
	if spec.Voltage.Valid() {
		w.voltage = spec.Voltage.String()
	}
	if spec.Material.Valid() {
		w.material = spec.Material.String()
	}
	if spec.Method.Valid() {
		w.method = spec.Method.String()
	}
	if spec.Application.Valid() {
		w.application = spec.Application.String()
	}
	return w
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	cyan := lipgloss.Color("#06B6D4")
	gray := lipgloss.Color("#9CA3AF")
	red := lipgloss.Color("#F87171")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true).
		MarginBottom(1)
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(cyan)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)
	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	return t
}

func options[T fmt.Stringer](values []T, label func(T) string) []huh.Option[string] {
	out := make([]huh.Option[string], len(values))
	for i, v := range values {
		out[i] = huh.NewOption(label(v), v.String())
	}
	return out
}

// Form builds the huh form. It is exported so callers can run it with
// their own input and output.
func (w *Wizard) Form() *huh.Form {
	voltages := options([]nfc15100.VoltageClass{nfc15100.SinglePhase230, nfc15100.ThreePhase400}, nfc15100.VoltageClass.Label)
	materials := options([]nfc15100.Material{nfc15100.Copper, nfc15100.Aluminum}, func(m nfc15100.Material) string {
		return strings.ToUpper(m.String()[:1]) + m.String()[1:]
	})
	methods := options(nfc15100.Methods, func(m nfc15100.InstallationMethod) string {
		return fmt.Sprintf("%s (%s)", m, m.Reference())
	})
	applications := options([]nfc15100.Application{nfc15100.Lighting, nfc15100.Power, nfc15100.Submain}, func(a nfc15100.Application) string {
		return fmt.Sprintf("%s (%g %%)", a, a.DropLimit())
	})

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Load entered by").
				Options(
					huh.NewOption("Active power (W)", entryPower),
					huh.NewOption("Design current Ib (A)", entryCurrent),
				).
				Value(&w.entry),
			huh.NewSelect[string]().
				Title("Supply").
				Options(voltages...).
				Value(&w.voltage),
		).Title("Step 1: Load"),

		huh.NewGroup(
			huh.NewInput().
				Title("Active power (W)").
				Placeholder("e.g., 3500").
				Value(&w.power).
				Validate(validatePositive),
			huh.NewInput().
				Title("Power factor cos φ").
				Placeholder("0.8 to 1.0").
				Value(&w.powerFactor).
				Validate(validatePowerFactor),
		).Title("Step 2: Power").
			WithHideFunc(func() bool { return w.entry != entryPower }),

		huh.NewGroup(
			huh.NewInput().
				Title("Design current Ib (A)").
				Placeholder("e.g., 16").
				Value(&w.current).
				Validate(validatePositive),
		).Title("Step 2: Current").
			WithHideFunc(func() bool { return w.entry != entryCurrent }),

		huh.NewGroup(
			huh.NewInput().
				Title("Cable length (m)").
				Placeholder("e.g., 25").
				Value(&w.length).
				Validate(validatePositive),
			huh.NewSelect[string]().
				Title("Conductor").
				Options(materials...).
				Value(&w.material),
			huh.NewSelect[string]().
				Title("Installation method").
				Options(methods...).
				Value(&w.method),
		).Title("Step 3: Cable run"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Application").
				Options(applications...).
				Value(&w.application),
			huh.NewInput().
				Title("Override max voltage drop (%)").
				Description("Leave empty to use the application limit").
				Value(&w.maxDrop).
				Validate(validateOptionalDrop),
		).Title("Step 4: Voltage drop"),
	).WithTheme(createTheme())
}

// Run shows the form and returns the collected spec.
func (w *Wizard) Run() (circuit.CircuitSpec, error) {
	if err := w.Form().Run(); err != nil {
		return circuit.CircuitSpec{}, err
	}
	return w.Spec()
}

// Spec converts the current field values into a circuit spec.
func (w *Wizard) Spec() (circuit.CircuitSpec, error) {
	var (
		spec circuit.CircuitSpec
		err  error
	)
	if spec.Voltage, err = nfc15100.ParseVoltageClass(w.voltage); err != nil {
		return spec, err
	}
	if spec.Material, err = nfc15100.ParseMaterial(w.material); err != nil {
		return spec, err
	}
	if spec.Method, err = nfc15100.ParseInstallationMethod(w.method); err != nil {
		return spec, err
	}
	if spec.Application, err = nfc15100.ParseApplication(w.application); err != nil {
		return spec, err
	}
	if spec.LengthMeters, err = parseFloat("length", w.length); err != nil {
		return spec, err
	}
	if spec.MaxVoltageDropPercent, err = parseOptional("max voltage drop", w.maxDrop); err != nil {
		return spec, err
	}

	switch w.entry {
	case entryCurrent:
		if spec.DesignCurrentAmps, err = parseFloat("design current", w.current); err != nil {
			return spec, err
		}
	default:
		if spec.ActivePowerWatts, err = parseFloat("power", w.power); err != nil {
			return spec, err
		}
		if spec.PowerFactor, err = parseFloat("power factor", w.powerFactor); err != nil {
			return spec, err
		}
	}
	return spec, nil
}

func parseFloat(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return f, nil
}

func parseOptional(name, s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return parseFloat(name, s)
}

func validatePositive(s string) error {
	f, err := parseFloat("value", s)
	if err != nil {
		return errors.New("enter a number")
	}
	if f <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func validatePowerFactor(s string) error {
	f, err := parseFloat("value", s)
	if err != nil {
		return errors.New("enter a number")
	}
	if f <= 0 || f > 1 {
		return errors.New("must be in (0, 1]")
	}
	return nil
}

func validateOptionalDrop(s string) error {
	f, err := parseOptional("value", s)
	if err != nil {
		return errors.New("enter a number or leave empty")
	}
	if f < 0 || f >= 100 {
		return errors.New("must be between 0 and 100")
	}
	return nil
}
