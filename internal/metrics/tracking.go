package metrics

import "math"

// IAE accumulates the integral of absolute error over the run time.
type IAE struct {
	name  string
	sum   float64
	prevT float64
	first bool
}

func NewIAE() *IAE {
	return &IAE{name: "iae", first: true}
}

func (m *IAE) Name() string {
	return m.name
}

func (m *IAE) Observe(t, setpoint, measured, control float64) {
	if m.first {
		m.first = false
		m.prevT = t
		return
	}
	dt := t - m.prevT
	if dt > 0 {
		m.sum += math.Abs(setpoint-measured) * dt
	}
	m.prevT = t
}

func (m *IAE) Value() float64 {
	return m.sum
}

func (m *IAE) Reset() {
	m.sum = 0
	m.prevT = 0
	m.first = true
}

// Overshoot is the peak excursion of the measurement past the
// setpoint, in the direction the loop was driving.
type Overshoot struct {
	name string
	peak float64
}

func NewOvershoot() *Overshoot {
	return &Overshoot{name: "overshoot"}
}

func (m *Overshoot) Name() string {
	return m.name
}

func (m *Overshoot) Observe(t, setpoint, measured, control float64) {
	over := measured - setpoint
	if over > m.peak {
		m.peak = over
	}
}

func (m *Overshoot) Value() float64 {
	return m.peak
}

func (m *Overshoot) Reset() {
	m.peak = 0
}

// SettlingTime is the time of the last sample outside the tolerance
// band around the setpoint; after that the measurement stayed inside.
// The band is tolerance as a fraction of the setpoint, or an absolute
// band when the setpoint is zero.
type SettlingTime struct {
	name      string
	tolerance float64
	last      float64
}

func NewSettlingTime(tolerance float64) *SettlingTime {
	return &SettlingTime{name: "settling_time", tolerance: tolerance}
}

func (m *SettlingTime) Name() string {
	return m.name
}

func (m *SettlingTime) Observe(t, setpoint, measured, control float64) {
	band := m.tolerance * math.Abs(setpoint)
	if band == 0 {
		band = m.tolerance
	}
	if math.Abs(setpoint-measured) > band {
		m.last = t
	}
}

func (m *SettlingTime) Value() float64 {
	return m.last
}

func (m *SettlingTime) Reset() {
	m.last = 0
}
