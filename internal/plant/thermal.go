package plant

const (
	DefaultHeaterGain   = 2.0  // degrees per unit of drive at steady state
	DefaultThermalTau   = 20.0 // seconds
	DefaultAmbientTemp  = 20.0
	DefaultThermalState = DefaultAmbientTemp
)

// Thermal is a first-order heated mass: the temperature relaxes toward
// ambient plus gain times drive with time constant Tau.
type Thermal struct {
	Gain    float64
	Tau     float64
	Ambient float64
}

func NewThermal() *Thermal {
	return &Thermal{
		Gain:    DefaultHeaterGain,
		Tau:     DefaultThermalTau,
		Ambient: DefaultAmbientTemp,
	}
}

func (p *Thermal) StateDim() int { return 1 }

func (p *Thermal) Derivative(x State, u float64, t float64) State {
	temp := x[0]
	return State{(p.Ambient + p.Gain*u - temp) / p.Tau}
}

func (p *Thermal) Output(x State) float64 { return x[0] }
