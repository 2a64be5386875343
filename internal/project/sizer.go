package project

import (
	"context"
	"errors"
	"time"

	"github.com/fcelec/cablesize/internal/circuit"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Sizer sizes every circuit of a project with a bounded worker pool.
type Sizer struct {
	engine  *circuit.Engine
	workers int
}

// NewSizer creates a sizer. workers below 1 is treated as 1.
func NewSizer(engine *circuit.Engine, workers int) *Sizer {
	if workers < 1 {
		workers = 1
	}
	return &Sizer{engine: engine, workers: workers}
}

type job struct {
	board  string
	name   string
	feeder bool
	spec   circuit.CircuitSpec
	err    error // set when the job cannot be sized at all
}

func (s *Sizer) jobs(p *Project) []job {
	out := make([]job, 0, p.CircuitCount()+len(p.Boards))
	for _, b := range p.Boards {
		for _, c := range b.Circuits {
			out = append(out, job{board: b.Name, name: c.Name, spec: c.CircuitSpec})
		}
		if spec, ok, err := b.FeederSpec(s.engine); ok {
			out = append(out, job{board: b.Name, name: FeederName, feeder: true, spec: spec, err: err})
		}
	}
	return out
}

// Size sizes all circuits and board feeders. A circuit that fails sizing is
// recorded in its outcome and does not stop the others. The returned error
// is non-nil only when ctx is cancelled.
func (s *Sizer) Size(ctx context.Context, p *Project) (*Report, error) {
	start := time.Now()
	work := s.jobs(p)
	outcomes := make([]Outcome, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, j := range work {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var (
				res *circuit.SizingResult
				err = j.err
			)
			if err == nil {
				res, err = s.engine.Size(j.spec)
			}
			outcomes[i] = Outcome{
				Board:   j.board,
				Circuit: j.name,
				Feeder:  j.feeder,
				Spec:    j.spec,
				Result:  res,
				Err:     err,
			}

			entry := log.WithFields(log.Fields{"board": j.board, "circuit": j.name})
			switch {
			case err == nil:
				entry.WithFields(log.Fields{
					"breaker_a":   res.BreakerRatingAmps,
					"section_mm2": res.SelectedCrossSectionMm2,
					"governing":   res.Governing.String(),
				}).Debug("circuit sized")
			case errors.Is(err, circuit.ErrOutOfRange):
				entry.WithError(err).Warn("circuit out of standard range")
			default:
				entry.WithError(err).Warn("circuit rejected")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := NewReport(p.Name)
	for _, o := range outcomes {
		report.Add(o)
	}

	log.WithFields(log.Fields{
		"project":  p.Name,
		"circuits": len(work),
		"failed":   len(report.Failed()),
		"elapsed":  time.Since(start).String(),
	}).Info("project sized")
	return report, nil
}
