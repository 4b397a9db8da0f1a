package plant

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

// SpringMass is a damped positioning stage; the control input is a
// force on the mass and the measured variable is its position. Being
// second order, it shows overshoot and ringing that the first-order
// plants cannot.
type SpringMass struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

func (p *SpringMass) StateDim() int { return 2 }

func (p *SpringMass) Derivative(x State, u float64, t float64) State {
	pos, vel := x[0], x[1]
	accel := (u - p.Stiffness*pos - p.Damping*vel) / p.Mass
	return State{vel, accel}
}

func (p *SpringMass) Output(x State) float64 { return x[0] }
