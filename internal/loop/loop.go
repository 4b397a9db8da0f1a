// Package loop runs a PID controller against a simulated plant on a
// synthetic sample clock.
package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/dkrol/pidlab/internal/integrators"
	"github.com/dkrol/pidlab/internal/metrics"
	"github.com/dkrol/pidlab/internal/plant"
	"github.com/dkrol/pidlab/pid"
)

type Config struct {
	Dt       float64 // sample period in seconds
	Duration float64 // run length in seconds
	Setpoint float64
}

// Observer sees every sample as it happens; the live view hangs off
// this.
type Observer interface {
	OnStep(t, setpoint, measured, control float64)
}

type Result struct {
	Times        []float64
	Setpoints    []float64
	Measurements []float64
	Controls     []float64
	PTerms       []float64
	ITerms       []float64
	DTerms       []float64
	Metrics      map[string]float64
}

// Runner closes the loop: each sample it reads the plant output,
// feeds the error to the controller, and integrates the plant under
// the resulting control until the next sample. The controller's
// manual clock is advanced by Dt per sample, so runs are deterministic
// and independent of wall time.
type Runner struct {
	dyn       plant.Dynamics
	integ     integrators.Integrator
	ctrl      *pid.Controller
	clock     *pid.ManualClock
	metrics   []metrics.Metric
	observers []Observer
}

func New(dyn plant.Dynamics, integ integrators.Integrator, ctrl *pid.Controller, clock *pid.ManualClock) *Runner {
	return &Runner{
		dyn:   dyn,
		integ: integ,
		ctrl:  ctrl,
		clock: clock,
	}
}

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, x0 plant.State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		Times:        make([]float64, 0, steps),
		Setpoints:    make([]float64, 0, steps),
		Measurements: make([]float64, 0, steps),
		Controls:     make([]float64, 0, steps),
		PTerms:       make([]float64, 0, steps),
		ITerms:       make([]float64, 0, steps),
		DTerms:       make([]float64, 0, steps),
		Metrics:      make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}
	r.ctrl.TurnOff()

	x := x0.Clone()
	t := 0.0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		measured := r.dyn.Output(x)
		u := r.ctrl.Compute(cfg.Setpoint - measured)

		result.Times = append(result.Times, t)
		result.Setpoints = append(result.Setpoints, cfg.Setpoint)
		result.Measurements = append(result.Measurements, measured)
		result.Controls = append(result.Controls, u)
		result.PTerms = append(result.PTerms, r.ctrl.ProportionalTerm())
		result.ITerms = append(result.ITerms, r.ctrl.IntegralTerm())
		result.DTerms = append(result.DTerms, r.ctrl.DerivativeTerm())

		for _, m := range r.metrics {
			m.Observe(t, cfg.Setpoint, measured, u)
		}
		for _, obs := range r.observers {
			obs.OnStep(t, cfg.Setpoint, measured, u)
		}

		x = r.integ.Step(r.dyn, x, u, t, cfg.Dt)
		t += cfg.Dt
		r.clock.Advance(time.Duration(cfg.Dt * float64(time.Second)))
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback drives the loop sample by sample without recording;
// returning false from the callback stops the run early.
func (r *Runner) RunWithCallback(ctx context.Context, x0 plant.State, cfg Config, callback func(t, setpoint, measured, control float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	r.ctrl.TurnOff()
	x := x0.Clone()
	t := 0.0

	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		measured := r.dyn.Output(x)
		u := r.ctrl.Compute(cfg.Setpoint - measured)

		if !callback(t, cfg.Setpoint, measured, u) {
			return nil
		}

		x = r.integ.Step(r.dyn, x, u, t, cfg.Dt)
		t += cfg.Dt
		r.clock.Advance(time.Duration(cfg.Dt * float64(time.Second)))
	}

	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
