// Package integrators steps plant dynamics through time between
// controller samples.
package integrators

import "github.com/dkrol/pidlab/internal/plant"

type Integrator interface {
	Step(dyn plant.Dynamics, x plant.State, u float64, t float64, dt float64) plant.State
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn plant.Dynamics, x plant.State, u float64, t float64, dt float64) plant.State {
	dx := dyn.Derivative(x, u, t)
	result := make(plant.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
