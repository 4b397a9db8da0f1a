package config

var Presets = map[string]map[string]*Config{
	"thermal": {
		"soft": {
			Plant: "thermal", Integrator: "rk4", Dt: 0.05, Duration: 120.0, Setpoint: 25.0,
			Gains:  GainsConfig{Kp: 0.5, Ti: 8.0},
			Limits: LimitsConfig{Enabled: true, Min: 0, Max: 5},
		},
		"aggressive": {
			Plant: "thermal", Integrator: "rk4", Dt: 0.05, Duration: 120.0, Setpoint: 25.0,
			Gains:  GainsConfig{Kp: 4.0, Ti: 2.0},
			Limits: LimitsConfig{Enabled: true, Min: 0, Max: 5, Integral: true, Conditioning: true},
		},
		"windup": {
			// No conditioning on purpose: shows the accumulator growing
			// through a long saturation.
			Plant: "thermal", Integrator: "rk4", Dt: 0.05, Duration: 120.0, Setpoint: 28.0,
			Gains:  GainsConfig{Kp: 4.0, Ti: 2.0},
			Limits: LimitsConfig{Enabled: true, Min: 0, Max: 5},
		},
	},
	"motor": {
		"speed": {
			Plant: "motor", Integrator: "rk4", Dt: 0.01, Duration: 10.0, Setpoint: 20.0,
			Gains:  GainsConfig{Kp: 0.3, Ti: 0.5},
			Limits: LimitsConfig{Enabled: true, Min: -10, Max: 10},
		},
		"reverse": {
			Plant: "motor", Integrator: "rk4", Dt: 0.01, Duration: 10.0, Setpoint: -15.0,
			Gains:  GainsConfig{Kp: 0.3, Ti: 0.5},
			Limits: LimitsConfig{Enabled: true, Min: -10, Max: 10},
		},
	},
	"spring_mass": {
		"position": {
			Plant: "spring_mass", Integrator: "rk4", Dt: 0.01, Duration: 30.0, Setpoint: 1.0,
			Gains:  GainsConfig{Kp: 30.0, Ti: 2.0, Td: 0.4},
			Limits: LimitsConfig{Enabled: true, Min: -50, Max: 50, Integral: true, Conditioning: true},
		},
		"gentle": {
			Plant: "spring_mass", Integrator: "rk4", Dt: 0.01, Duration: 30.0, Setpoint: 0.5,
			Gains: GainsConfig{Kp: 12.0, Ti: 4.0, Td: 0.2},
		},
	},
}

func GetPreset(plantName, preset string) *Config {
	plantPresets, ok := Presets[plantName]
	if !ok {
		return nil
	}
	cfg, ok := plantPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(plantName string) []string {
	plantPresets, ok := Presets[plantName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(plantPresets))
	for name := range plantPresets {
		names = append(names, name)
	}
	return names
}
