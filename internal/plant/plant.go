// Package plant provides scalar-input process models for closed-loop
// controller runs.
package plant

import "fmt"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Dynamics is a continuous process driven by a single control input.
// Output maps the state vector to the measured process variable the
// controller regulates.
type Dynamics interface {
	Derivative(x State, u float64, t float64) State
	StateDim() int
	Output(x State) float64
}

// New returns the named plant with default parameters.
func New(name string) (Dynamics, error) {
	switch name {
	case "thermal":
		return NewThermal(), nil
	case "motor":
		return NewMotor(), nil
	case "spring_mass":
		return NewSpringMass(), nil
	default:
		return nil, fmt.Errorf("unknown plant: %s", name)
	}
}

// Names lists the available plants.
func Names() []string {
	return []string{"thermal", "motor", "spring_mass"}
}
