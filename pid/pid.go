// Package pid implements a single-loop PID controller for sampled
// error signals, with output saturation, integral clamping and
// anti-windup conditioning of the integral term.
package pid

import "math"

const microsPerSecond = 1e6

// noSample marks a controller that has not computed yet; derivative
// and integral terms need a previous sample to work from.
const noSample int64 = -1

// Controller is a proportional-integral-derivative controller.
// It is mutated by every Compute call and is not safe for concurrent
// use; the loop that owns it must serialize access.
type Controller struct {
	kp float64 // proportional gain, may be negative for inverse-acting plants
	ti float64 // integral time in seconds, 0 disables the integral term
	td float64 // derivative time in seconds, 0 disables the derivative term

	clock     Clock
	prevTicks int64
	prevErr   float64

	proportional float64
	integral     float64 // accumulator and last integral term, one and the same
	derivative   float64
	output       float64

	limitOutput       bool
	limitIntegral     bool
	conditionIntegral bool
	outMin            float64
	outMax            float64
}

// New returns a controller with the given gains, no limits, and the
// system monotonic clock. Ti or Td of 0 disable their terms.
func New(kp, ti, td float64) *Controller {
	return NewWithClock(kp, ti, td, systemClock())
}

// NewWithClock is New with an injected time source, so callers can
// drive the controller with synthetic timestamps.
func NewWithClock(kp, ti, td float64, clock Clock) *Controller {
	c := &Controller{clock: clock}
	c.Configure(kp, ti, td)
	return c
}

// Configure replaces the gains and resets the running state: previous
// sample, previous error and integral accumulator. Limit configuration
// is kept as is, so retuning does not drop saturation bounds.
func (c *Controller) Configure(kp, ti, td float64) {
	c.kp = kp
	c.ti = ti
	c.td = td
	c.prevTicks = noSample
	c.prevErr = 0
	c.integral = 0
}

// SetOutputLimit stores [min, max] as the saturation band and enables
// or disables output limiting. A degenerate band (min == max) or an
// inverted one (min > max) disables limiting instead of erroring.
// Returns the resulting enabled state.
func (c *Controller) SetOutputLimit(enable bool, min, max float64) bool {
	c.outMin = min
	c.outMax = max
	c.limitOutput = enable
	if c.outMax == c.outMin || c.outMin > c.outMax {
		c.limitOutput = false
	}
	return c.limitOutput
}

// EnableOutputLimit toggles output limiting using the previously
// stored band. It cannot enable limiting before a band exists.
// Returns the resulting enabled state.
func (c *Controller) EnableOutputLimit(enable bool) bool {
	c.limitOutput = enable
	if c.outMax == 0 && c.outMin == 0 {
		c.limitOutput = false
	}
	return c.limitOutput
}

// OutputLimitEnabled reports whether the output is being clamped.
func (c *Controller) OutputLimitEnabled() bool { return c.limitOutput }

// SetIntegralLimit enables or disables clamping of the integral
// accumulator into the output band; there is no separate integral
// band. Forced off while the output band is degenerate.
// Returns the resulting enabled state.
func (c *Controller) SetIntegralLimit(enable bool) bool {
	c.limitIntegral = enable
	if c.outMax == c.outMin {
		c.limitIntegral = false
	}
	return c.limitIntegral
}

// IntegralLimitEnabled reports whether the accumulator is clamped.
func (c *Controller) IntegralLimitEnabled() bool { return c.limitIntegral }

// SetIntegralConditioning enables or disables anti-windup: while the
// output is saturated, integration is suspended. Requires output
// limiting, and is forced off without it.
// Returns the resulting enabled state.
func (c *Controller) SetIntegralConditioning(enable bool) bool {
	c.conditionIntegral = enable
	if !c.limitOutput {
		c.conditionIntegral = false
	}
	return c.conditionIntegral
}

// IntegralConditioningEnabled reports whether anti-windup is active.
func (c *Controller) IntegralConditioningEnabled() bool { return c.conditionIntegral }

// Compute advances the controller by one sample and returns the
// control output. Call it once per control period with the current
// error (setpoint minus measurement).
//
// The saturation check that gates anti-windup runs against the
// integral from the previous step, before this step's accumulation;
// integration must not proceed when the controller is already pinned
// to a bound.
func (c *Controller) Compute(err float64) float64 {
	now := c.clock()

	// A non-positive tick delta (same tick, or a clock that stepped
	// backward) is treated like a first sample: no derivative, no
	// accumulation. The elapsed-time divisions need dt > 0.
	havePrev := c.prevTicks != noSample && now > c.prevTicks

	c.proportional = c.kp * err

	if havePrev && c.td != 0 {
		c.derivative = c.kp * c.td * (err - c.prevErr) * microsPerSecond / float64(now-c.prevTicks)
	} else {
		c.derivative = 0
	}

	c.output = c.proportional + c.integral + c.derivative
	saturated := c.limitOutput && (c.output > c.outMax || c.output < c.outMin)

	if havePrev && c.ti != 0 {
		if !c.conditionIntegral || !saturated {
			// Trapezoidal rule over the last sample interval.
			c.integral += c.kp * (err + c.prevErr) * float64(now-c.prevTicks) / (2 * c.ti * microsPerSecond)
		}
		if c.limitIntegral {
			c.integral = math.Min(c.integral, c.outMax)
			c.integral = math.Max(c.integral, c.outMin)
		}
	}

	c.output = c.proportional + c.integral + c.derivative
	if c.limitOutput {
		c.output = math.Min(c.output, c.outMax)
		c.output = math.Max(c.output, c.outMin)
	}

	c.prevTicks = now
	c.prevErr = err
	return c.output
}

// ProportionalTerm returns the proportional term of the last Compute.
func (c *Controller) ProportionalTerm() float64 { return c.proportional }

// IntegralTerm returns the integral accumulator as of the last Compute.
func (c *Controller) IntegralTerm() float64 { return c.integral }

// DerivativeTerm returns the derivative term of the last Compute.
func (c *Controller) DerivativeTerm() float64 { return c.derivative }

// Output returns the output of the last Compute.
func (c *Controller) Output() float64 { return c.output }

// TurnOff resets the running state and cached terms, so the next
// Compute behaves like the first call after construction. Gains and
// limit configuration survive; use it when suspending the loop so a
// resume does not see a stale time delta.
func (c *Controller) TurnOff() {
	c.prevTicks = noSample
	c.prevErr = 0
	c.integral = 0
	c.proportional = 0
	c.derivative = 0
	c.output = 0
}
