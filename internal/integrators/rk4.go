package integrators

import "github.com/dkrol/pidlab/internal/plant"

type RK4 struct {
	k1, k2, k3, k4 plant.State
	scratch        plant.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(plant.State, n)
		r.k2 = make(plant.State, n)
		r.k3 = make(plant.State, n)
		r.k4 = make(plant.State, n)
		r.scratch = make(plant.State, n)
	}
}

func (r *RK4) Step(dyn plant.Dynamics, x plant.State, u float64, t float64, dt float64) plant.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, dyn.Derivative(x, u, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, dyn.Derivative(r.scratch, u, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, dyn.Derivative(r.scratch, u, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, dyn.Derivative(r.scratch, u, t+dt))

	result := make(plant.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}

// New returns the named integrator, defaulting to RK4.
func New(name string) Integrator {
	if name == "euler" {
		return NewEuler()
	}
	return NewRK4()
}
