package integrators

import (
	"math"
	"testing"

	"github.com/dkrol/pidlab/internal/plant"
)

// oscillator has the analytic solution x(t) = cos(t) for x0 = {1, 0}.
type oscillator struct{}

func (o *oscillator) Derivative(x plant.State, u float64, t float64) plant.State {
	return plant.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int                { return 2 }
func (o *oscillator) Output(x plant.State) float64 { return x[0] }

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := plant.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, 0, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerConvergesToSteadyState(t *testing.T) {
	dyn := plant.NewThermal()
	integ := NewEuler()

	x := plant.State{dyn.Ambient}
	drive := 1.0
	dt := 0.1

	for i := 0; i < 5000; i++ {
		x = integ.Step(dyn, x, drive, float64(i)*dt, dt)
	}

	want := dyn.Ambient + dyn.Gain*drive
	if math.Abs(x[0]-want) > 1e-3 {
		t.Errorf("steady state: got %.4f, expected %.4f", x[0], want)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New("euler").(*Euler); !ok {
		t.Error("expected Euler")
	}
	if _, ok := New("rk4").(*RK4); !ok {
		t.Error("expected RK4")
	}
}
