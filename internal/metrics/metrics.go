// Package metrics scores closed-loop runs: how hard the controller
// worked and how well the measurement tracked the setpoint.
package metrics

// Metric observes every sample of a run and reduces it to one number.
type Metric interface {
	Name() string
	Observe(t, setpoint, measured, control float64)
	Value() float64
	Reset()
}

// Defaults returns the standard set for a run summary.
func Defaults() []Metric {
	return []Metric{
		NewControlEffort(),
		NewIAE(),
		NewOvershoot(),
		NewSettlingTime(0.02),
	}
}
