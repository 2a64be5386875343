package project

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/nfc15100"
)

// Outcome is the sizing outcome of one circuit: either Result or Err is set.
type Outcome struct {
	Board   string
	Circuit string
	Feeder  bool
	Spec    circuit.CircuitSpec
	Result  *circuit.SizingResult
	Err     error
}

// Status returns "ok", "invalid" or "out-of-range".
func (o Outcome) Status() string {
	switch {
	case o.Err == nil:
		return "ok"
	case errors.Is(o.Err, circuit.ErrInvalidSpec):
		return "invalid"
	case errors.Is(o.Err, circuit.ErrOutOfRange):
		return "out-of-range"
	}
	return "error"
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Board   string                `json:"board"`
		Circuit string                `json:"circuit"`
		Feeder  bool                  `json:"feeder,omitempty"`
		Status  string                `json:"status"`
		Spec    circuit.CircuitSpec   `json:"spec"`
		Result  *circuit.SizingResult `json:"result,omitempty"`
		Error   string                `json:"error,omitempty"`
	}{
		Board:   o.Board,
		Circuit: o.Circuit,
		Feeder:  o.Feeder,
		Status:  o.Status(),
		Spec:    o.Spec,
		Result:  o.Result,
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

// Report accumulates circuit outcomes in input order. Outcomes can only be
// appended.
type Report struct {
	Project  string
	outcomes []Outcome
}

func NewReport(project string) *Report {
	return &Report{Project: project}
}

// Add appends an outcome.
func (r *Report) Add(o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

// Outcomes returns a copy of the outcomes.
func (r *Report) Outcomes() []Outcome {
	return append([]Outcome(nil), r.outcomes...)
}

// Failed returns the outcomes that carry an error.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Project    string     `json:"project"`
		Outcomes   []Outcome  `json:"outcomes"`
		Quantities Quantities `json:"quantities"`
	}{r.Project, r.outcomes, r.Quantities()})
}

// CableLine is the total cable length of one material and cross-section.
type CableLine struct {
	Material     nfc15100.Material `json:"material"`
	SectionMm2   float64           `json:"section_mm2"`
	LengthMeters float64           `json:"length_m"`
	Runs         int               `json:"runs"`
}

// BreakerLine is the number of protective devices of one rating.
type BreakerLine struct {
	RatingAmps float64 `json:"rating_a"`
	Count      int     `json:"count"`
}

// Quantities is the bill of quantities of the successfully sized circuits.
type Quantities struct {
	Cables   []CableLine   `json:"cables"`
	Breakers []BreakerLine `json:"breakers"`
}

// Quantities totals cable lengths per material and section and breakers per
// rating, over the outcomes without error.
func (r *Report) Quantities() Quantities {
	type cableKey struct {
		m nfc15100.Material
		s float64
	}
	cables := map[cableKey]*CableLine{}
	breakers := map[float64]int{}

	for _, o := range r.outcomes {
		if o.Err != nil || o.Result == nil {
			continue
		}
		k := cableKey{o.Spec.Material, o.Result.SelectedCrossSectionMm2}
		line, ok := cables[k]
		if !ok {
			line = &CableLine{Material: k.m, SectionMm2: k.s}
			cables[k] = line
		}
		line.LengthMeters += o.Spec.LengthMeters
		line.Runs++
		breakers[o.Result.BreakerRatingAmps]++
	}

	var q Quantities
	for _, line := range cables {
		q.Cables = append(q.Cables, *line)
	}
	sort.Slice(q.Cables, func(i, j int) bool {
		if q.Cables[i].Material != q.Cables[j].Material {
			return q.Cables[i].Material < q.Cables[j].Material
		}
		return q.Cables[i].SectionMm2 < q.Cables[j].SectionMm2
	})
	for rating, n := range breakers {
		q.Breakers = append(q.Breakers, BreakerLine{RatingAmps: rating, Count: n})
	}
	sort.Slice(q.Breakers, func(i, j int) bool { return q.Breakers[i].RatingAmps < q.Breakers[j].RatingAmps })
	return q
}
