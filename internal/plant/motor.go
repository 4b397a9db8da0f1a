package plant

const (
	DefaultTorqueConstant = 5.0
	DefaultInertia        = 0.5
	DefaultFriction       = 1.0
)

// Motor models DC motor shaft speed: drive produces torque, viscous
// friction opposes rotation.
type Motor struct {
	TorqueConstant float64
	Inertia        float64
	Friction       float64
}

func NewMotor() *Motor {
	return &Motor{
		TorqueConstant: DefaultTorqueConstant,
		Inertia:        DefaultInertia,
		Friction:       DefaultFriction,
	}
}

func (p *Motor) StateDim() int { return 1 }

func (p *Motor) Derivative(x State, u float64, t float64) State {
	omega := x[0]
	return State{(p.TorqueConstant*u - p.Friction*omega) / p.Inertia}
}

func (p *Motor) Output(x State) float64 { return x[0] }
