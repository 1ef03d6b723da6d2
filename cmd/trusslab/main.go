package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/trusslab/internal/analysis"
	"github.com/san-kum/trusslab/internal/automation"
	"github.com/san-kum/trusslab/internal/config"
	"github.com/san-kum/trusslab/internal/export"
	"github.com/san-kum/trusslab/internal/integrators"
	"github.com/san-kum/trusslab/internal/optim"
	"github.com/san-kum/trusslab/internal/scene"
	"github.com/san-kum/trusslab/internal/sim"
	"github.com/san-kum/trusslab/internal/storage"
	"github.com/san-kum/trusslab/internal/structure"
	"github.com/san-kum/trusslab/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var (
	configFile string
	verbose    bool
	logFile    string
	dataDir    string

	preset     string
	sceneName  string
	dt         float64
	duration   float64
	beamModel  string
	integrator string
	save       bool
	jsonOut    bool
	svgOut     string

	stiffness    []float64
	damping      []float64
	tuneMetric   string
	trials       int
	perturbation float64
	seed         int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "trusslab",
		Short:        "interactive 3d structure sandbox",
		SilenceUsage: true,
		RunE:         runSandbox,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to file (sandbox logs are discarded otherwise)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".trusslab", "run data directory")
	rootCmd.Flags().StringVar(&sceneName, "scene", "", "open this scene directly")
	rootCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration for --scene")

	runCmd := &cobra.Command{
		Use:   "run [scene]...",
		Short: "run scenes headless and report their telemetry",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScenes,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultFrameDt, "frame timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().StringVar(&beamModel, "model", config.DefaultBeamModel, "beam model (snapshot, spring)")
	runCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator for the spring model")
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under --data")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print runs as json")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the kinetic energy of the first scene as svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [scene]",
		Short: "static analysis of a scene",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeScene,
	}
	analyzeCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	analyzeCmd.Flags().StringVar(&svgOut, "svg", "", "write a rendered view as svg")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list built-in scenes",
		Run: func(cmd *cobra.Command, args []string) {
			reg := scene.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, name := range reg.List() {
				fmt.Fprintf(w, "%s\t%s\n", name, reg.Describe(name))
			}
			w.Flush()
		},
	}

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list the beam material catalog",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "name\tdensity\tE (GPa)\ttension (MPa)\tcompression (MPa)")
			for _, m := range structure.Materials() {
				fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.0f\t%.0f\n", m.Name, m.Density, m.YoungsModulus/1e9, m.TensileStrength/1e6, m.CompressiveStrength/1e6)
			}
			w.Flush()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	integratorsCmd := &cobra.Command{
		Use:   "integrators",
		Short: "list integrators for the spring model",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range integrators.Names() {
				fmt.Println(name)
			}
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write the kinetic energy as svg")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search spring stiffness and damping",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneScene,
	}
	tuneCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	tuneCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator for the spring model")
	tuneCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	tuneCmd.Flags().Float64SliceVar(&stiffness, "stiffness", []float64{250, 500, 1000, 2000}, "stiffness values")
	tuneCmd.Flags().Float64SliceVar(&damping, "damping", []float64{5, 20, 80}, "damping values")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "rest_time", "metric to minimise")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&save, "save", false, "store every run under --data")

	trialsCmd := &cobra.Command{
		Use:   "trials [scene]",
		Short: "randomised load trials",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrials,
	}
	trialsCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	trialsCmd.Flags().Float64Var(&duration, "time", 2, "duration per trial")
	trialsCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	trialsCmd.Flags().Float64Var(&perturbation, "perturbation", 0.3, "relative load perturbation")
	trialsCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	rootCmd.AddCommand(runCmd, analyzeCmd, scenesCmd, materialsCmd, presetsCmd, integratorsCmd, runsCmd, plotCmd, tuneCmd, batchCmd, trialsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger writes to w, or to --log-file when set.
func newLogger(w io.Writer) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	closer := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, func() { f.Close() }
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

// loadConfig layers defaults, preset, config file and changed flags, in
// that order.
func loadConfig(cmd *cobra.Command, name string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(name, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(name))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.FrameDt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("model") {
		cfg.BeamModel = beamModel
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	cfg.Scene = name
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSandbox(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	if sceneName == "" {
		cfg := config.DefaultConfig()
		if configFile != "" {
			if cfg, err = config.Load(configFile); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		}
		return viz.RunInteractive(cfg, logger)
	}
	cfg, err := loadConfig(cmd, sceneName)
	if err != nil {
		return err
	}
	return viz.RunSandbox(cfg, logger)
}

func runScenes(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cfgs := make([]*config.Config, len(args))
	jobs := make([]sim.Job, len(args))
	for i, name := range args {
		cfg, err := loadConfig(cmd, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		cfgs[i] = cfg
		jobs[i] = sim.Job{Name: name, Setup: func() (*sim.Simulator, error) { return automation.NewSimulator(cfg, logger) }}
	}

	// Every scene shares the frame settings of the first one.
	runCfg := sim.Config{Dt: cfgs[0].FrameDt, Duration: cfgs[0].Duration, ValidateState: true}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := sim.Sweep(ctx, jobs, runCfg)
	if err != nil {
		return err
	}
	logger.Info("sweep finished", "scenes", len(args), "elapsed", time.Since(start))

	if jsonOut {
		for i, r := range results {
			if err := storage.ExportJSON(os.Stdout, metadata(cfgs[i], runCfg), r); err != nil {
				return err
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "scene\tsteps\tmax KE\tpeak stress\tutilization\trest at\tdominant Hz\terrors")
	for i, r := range results {
		freq := "-"
		if f, ok := analysis.DominantFrequency(r.KineticEnergy, runCfg.Dt); ok {
			freq = fmt.Sprintf("%.3f", f)
		}
		rest := "-"
		if at := r.Metrics["rest_time"]; at >= 0 {
			rest = fmt.Sprintf("%.2fs", at)
		}
		fmt.Fprintf(w, "%s\t%d\t%.4g\t%.4g\t%.3f\t%s\t%s\t%d\n", args[i], r.StepsTaken, slices.Max(r.KineticEnergy),
			r.Metrics["peak_stress"], r.Metrics["max_utilization"], rest, freq, len(r.Errors))
	}
	w.Flush()

	for i, r := range results {
		for _, e := range r.Errors {
			fmt.Printf("%s: %v\n", args[i], e)
		}
		if len(r.KineticEnergy) > 1 {
			fmt.Println()
			fmt.Println(asciigraph.Plot(r.KineticEnergy, asciigraph.Height(8), asciigraph.Width(60),
				asciigraph.Caption(args[i]+" kinetic energy")))
		}
	}

	if svgOut != "" {
		svg := export.SeriesToSVG(results[0].Times, results[0].KineticEnergy, 640, 240, "#00ccff")
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		for i, r := range results {
			id, err := st.Save(metadata(cfgs[i], runCfg), r)
			if err != nil {
				return err
			}
			fmt.Printf("run id: %s\n", id)
		}
	}
	return nil
}

func metadata(cfg *config.Config, runCfg sim.Config) storage.RunMetadata {
	mgr := structure.NewManager(cfg.World(), cfg.NodeDefaults(), nil)
	_ = scene.NewRegistry().Build(cfg.Scene, mgr)
	return storage.RunMetadata{
		Scene:      cfg.Scene,
		Dt:         runCfg.Dt,
		Duration:   runCfg.Duration,
		BeamModel:  cfg.BeamModel,
		Integrator: cfg.Integrator,
		Material:   cfg.Material,
		Nodes:      mgr.NodeCount(),
		Beams:      mgr.BeamCount(),
	}
}

func analyzeScene(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	mgr := structure.NewManager(cfg.World(), cfg.NodeDefaults(), logger)
	stage := viz.NewStage(cfg.WorldSize)
	mgr.SetContainer(stage)
	if err := scene.NewRegistry().Build(cfg.Scene, mgr); err != nil {
		return err
	}
	mgr.Update(0)
	engine := analysis.New(mgr, cfg.EquilibriumTolerance)

	cog, mass := engine.CenterOfGravity()
	fmt.Printf("%s: %d nodes, %d beams, mass %.2f\n", cfg.Scene, mgr.NodeCount(), mgr.BeamCount(), mass)
	fmt.Printf("center of gravity: (%.3f, %.3f, %.3f) %s\n", cog.X, cog.Y, cog.Z, cfg.Unit)

	q := engine.CheckEquilibrium()
	fmt.Printf("%s: net force (%.3f, %.3f, %.3f), net moment (%.3f, %.3f, %.3f)\n", q.Message(),
		q.NetForce.X, q.NetForce.Y, q.NetForce.Z, q.NetMoment.X, q.NetMoment.Y, q.NetMoment.Z)

	if r, err := engine.CalculateMissingForces(); err != nil {
		fmt.Println(err)
	} else {
		fmt.Println(r)
		fmt.Printf("after reactions: %s\n", engine.CheckEquilibrium().Message())
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "beam\tmaterial\ttype\tforce\tstress (Pa)\tstrain\tutilization")
	for _, f := range engine.CalculateBeamForces() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.4g\t%.3g\t%.3f\n", f.Beam, f.Beam.Material().Name, f.Type, f.Value, f.Stress, f.Strain, f.Utilization)
	}
	w.Flush()

	c := engine.Connectivity()
	fmt.Printf("\n%d connected part(s), %d floating node(s)\n", len(c.Components), len(c.Floating))

	if svgOut != "" {
		canvas := viz.NewCanvas(80, 40)
		stage.Render(canvas, viz.NewCamera(cfg.WorldSize))
		if err := os.WriteFile(svgOut, []byte(export.CanvasToSVG(canvas, 4)), 0644); err != nil {
			return err
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tscene\tmodel\tsteps\tpeak stress\ttimestamp")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4g\t%s\n", r.ID, r.Scene, r.BeamModel, r.Steps, r.Metrics["peak_stress"], r.Timestamp.Format(time.DateTime))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series.Times) < 2 {
		return fmt.Errorf("run %s has too few samples to plot", meta.ID)
	}
	fmt.Println(asciigraph.Plot(series.KineticEnergy, asciigraph.Height(10), asciigraph.Width(60),
		asciigraph.Caption(meta.Scene+" kinetic energy")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(series.PeakStress, asciigraph.Height(6), asciigraph.Width(60),
		asciigraph.Caption(meta.Scene+" peak stress")))

	if svgOut != "" {
		return os.WriteFile(svgOut, []byte(export.SeriesToSVG(series.Times, series.KineticEnergy, 640, 240, "#00ccff")), 0644)
	}
	return nil
}

func tuneScene(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	base, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	base.BeamModel = "spring"

	g, err := optim.NewGridSearch([]string{"stiffness", "damping"}, [][]float64{stiffness, damping})
	if err != nil {
		return err
	}
	build := func(p optim.Point) (*sim.Simulator, error) {
		cfg := *base
		cfg.Spring = config.SpringConfig{Stiffness: p["stiffness"], Damping: p["damping"]}
		return automation.NewSimulator(&cfg, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, val, candidates, err := g.Search(ctx, build, sim.Config{Dt: base.FrameDt, Duration: base.Duration, ValidateState: true}, tuneMetric)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "stiffness\tdamping\t%s\n", tuneMetric)
	for _, c := range candidates {
		v := "-"
		if c.Usable {
			v = fmt.Sprintf("%.4g", c.Value)
		}
		fmt.Fprintf(w, "%g\t%g\t%s\n", c.Params["stiffness"], c.Params["damping"], v)
	}
	w.Flush()
	if err != nil {
		return err
	}
	fmt.Printf("\nbest: stiffness=%g damping=%g (%s %.4g)\n", best["stiffness"], best["damping"], tuneMetric, val)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base := config.DefaultConfig()
	if configFile != "" {
		if base, err = config.Load(configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, runErr := automation.RunScenario(ctx, scenario, base, logger)
	fmt.Printf("%s: %s\n", scenario.Name, scenario.Description)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tscene\tmodel\tsteps\tpeak stress\tutilization\terrors")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.4g\t%.3f\t%d\n", i+1, r.Config.Scene, r.Config.BeamModel, r.Result.StepsTaken,
			r.Result.Metrics["peak_stress"], r.Result.Metrics["max_utilization"], len(r.Result.Errors))
	}
	w.Flush()

	if save {
		st := storage.New(dataDir)
		for _, r := range results {
			id, err := st.Save(metadata(r.Config, sim.Config{Dt: r.Config.FrameDt, Duration: r.Config.Duration}), r.Result)
			if err != nil {
				return err
			}
			fmt.Printf("run id: %s\n", id)
		}
	}
	return runErr
}

func runTrials(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	base, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	base.Duration = duration

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, automation.MonteCarloConfig{
		Base:         base,
		Perturbation: perturbation,
		Trials:       trials,
		Seed:         seed,
	}, logger)
	if err != nil {
		return err
	}

	utils := make([]float64, len(results))
	for i, r := range results {
		utils[i] = r.MaxUtilization
	}
	intact, failed := automation.MonteCarloStats(results)
	fmt.Printf("%s: %d trials, %d intact, %d failed\n", base.Scene, len(results), intact, failed)
	fmt.Printf("utilization mean %.3f, sd %.3f\n", stat.Mean(utils, nil), stat.StdDev(utils, nil))
	if len(utils) > 1 {
		fmt.Println(asciigraph.Plot(utils, asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption("max utilization per trial")))
	}
	return nil
}
