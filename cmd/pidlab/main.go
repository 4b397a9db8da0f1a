package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/dkrol/pidlab/internal/config"
	"github.com/dkrol/pidlab/internal/integrators"
	"github.com/dkrol/pidlab/internal/loop"
	"github.com/dkrol/pidlab/internal/metrics"
	"github.com/dkrol/pidlab/internal/plant"
	"github.com/dkrol/pidlab/internal/storage"
	"github.com/dkrol/pidlab/internal/viz"
	"github.com/dkrol/pidlab/pid"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	setpoint   float64
	integrator string
	kp         float64
	ti         float64
	td         float64
	limit      bool
	limitMin   float64
	limitMax   float64
	intLimit   bool
	condition  bool
	configFile string
	preset     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pidlab",
		Short: "PID controller lab: run a tunable loop against simulated plants",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pidlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [plant]",
		Short: "run a closed-loop simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoop,
	}
	addLoopFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [plant]",
		Short: "run the loop with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addLoopFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a run's series to stdout as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a run to stdout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [plant]",
		Short: "list presets for a plant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for plant: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	plantsCmd := &cobra.Command{
		Use:   "plants",
		Short: "list available plants",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range plant.Names() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, plantsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addLoopFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "sample period (seconds)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (seconds)")
	cmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "plant integrator (euler, rk4)")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	cmd.Flags().Float64Var(&ti, "ti", config.DefaultTi, "integral time (seconds, 0 disables)")
	cmd.Flags().Float64Var(&td, "td", config.DefaultTd, "derivative time (seconds, 0 disables)")
	cmd.Flags().BoolVar(&limit, "limit", false, "enable output limiting")
	cmd.Flags().Float64Var(&limitMin, "limit-min", 0, "output band lower bound")
	cmd.Flags().Float64Var(&limitMax, "limit-max", 0, "output band upper bound")
	cmd.Flags().BoolVar(&intLimit, "integral-limit", false, "clamp the integral into the output band")
	cmd.Flags().BoolVar(&condition, "conditioning", false, "freeze integration while saturated (anti-windup)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig merges preset, config file, and flags; flags that were
// explicitly set win.
func resolveConfig(cmd *cobra.Command, plantName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Plant = plantName

	if preset != "" {
		p := config.GetPreset(plantName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(plantName))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
		cfg.Plant = plantName
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("setpoint") {
		cfg.Setpoint = setpoint
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("kp") {
		cfg.Gains.Kp = kp
	}
	if cmd.Flags().Changed("ti") {
		cfg.Gains.Ti = ti
	}
	if cmd.Flags().Changed("td") {
		cfg.Gains.Td = td
	}
	if cmd.Flags().Changed("limit") {
		cfg.Limits.Enabled = limit
	}
	if cmd.Flags().Changed("limit-min") {
		cfg.Limits.Min = limitMin
	}
	if cmd.Flags().Changed("limit-max") {
		cfg.Limits.Max = limitMax
	}
	if cmd.Flags().Changed("integral-limit") {
		cfg.Limits.Integral = intLimit
	}
	if cmd.Flags().Changed("conditioning") {
		cfg.Limits.Conditioning = condition
	}

	return cfg, nil
}

func buildController(cfg *config.Config) (*pid.Controller, *pid.ManualClock) {
	clk := pid.NewManualClock()
	ctrl := pid.NewWithClock(cfg.Gains.Kp, cfg.Gains.Ti, cfg.Gains.Td, clk.Now)

	if cfg.Limits.Min != 0 || cfg.Limits.Max != 0 || cfg.Limits.Enabled {
		if !ctrl.SetOutputLimit(cfg.Limits.Enabled, cfg.Limits.Min, cfg.Limits.Max) && cfg.Limits.Enabled {
			fmt.Printf("warning: output band [%g, %g] unusable, limiting disabled\n", cfg.Limits.Min, cfg.Limits.Max)
		}
	}
	if cfg.Limits.Integral && !ctrl.SetIntegralLimit(true) {
		fmt.Println("warning: integral limit needs a usable output band, disabled")
	}
	if cfg.Limits.Conditioning && !ctrl.SetIntegralConditioning(true) {
		fmt.Println("warning: conditioning needs output limiting, disabled")
	}

	return ctrl, clk
}

func initialState(dyn plant.Dynamics) plant.State {
	// The thermal plant rests at ambient, everything else at zero.
	if th, ok := dyn.(*plant.Thermal); ok {
		return plant.State{th.Ambient}
	}
	return make(plant.State, dyn.StateDim())
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	dyn, err := plant.New(cfg.Plant)
	if err != nil {
		return err
	}

	ctrl, clk := buildController(cfg)
	runner := loop.New(dyn, integrators.New(cfg.Integrator), ctrl, clk)
	for _, m := range metrics.Defaults() {
		runner.AddMetric(m)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s loop...\n", cfg.Plant)
	start := time.Now()

	result, err := runner.Run(context.Background(), initialState(dyn), loop.Config{
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Setpoint: cfg.Setpoint,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(result.Times))
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	fmt.Println()
	graph := asciigraph.Plot(result.Measurements,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("measurement (setpoint %.2f)", cfg.Setpoint)),
	)
	fmt.Println(graph)

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	dyn, err := plant.New(cfg.Plant)
	if err != nil {
		return err
	}

	ctrl, clk := buildController(cfg)
	return viz.RunLive(cfg.Plant, dyn, integrators.New(cfg.Integrator), ctrl, clk,
		initialState(dyn), cfg.Setpoint, cfg.Dt)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLANT\tTIME\tDURATION\tDT\tSETPOINT\tKP\tTI\tTD")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%.2f\t%.3f\t%.3f\t%.3f\n",
			run.ID,
			run.Plant,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Setpoint,
			run.Gains.Kp,
			run.Gains.Ti,
			run.Gains.Td,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("plant: %s\n", meta.Plant)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	plots := []struct {
		data    []float64
		caption string
	}{
		{series.Measurements, fmt.Sprintf("measurement (setpoint %.2f)", meta.Setpoint)},
		{series.Controls, "control output"},
		{series.ITerms, "integral term"},
	}

	for _, p := range plots {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, series)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, series)
}
