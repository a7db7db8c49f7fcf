package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/logger"
	"github.com/san-kum/clothsim/internal/optim"
	"github.com/san-kum/clothsim/internal/scenario"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	logFile    string
	configFile string
	preset     string
	frames     int
	dt         float64
	subSteps   int
	integrator string
	noSave     bool
	// live view
	menu  bool
	theme string
	// plot and analyze
	plotSeries    string
	plotSVG       string
	analyzeSeries string
	// exports
	jsonOut     string
	recordOut   string
	recordEvery int
	recordLimit int
	objOut      string
	objEvery    int
	svgOut      string
	// bench
	benchFrames int
	profileMode string
	// sweep and optimize
	param    string
	from     float64
	to       float64
	steps    int
	metric   string
	grid     []string
	maximize bool
	// diverge, montecarlo and trace
	divergePerturb float64
	mcPerturb      float64
	trials         int
	seed           int64
	pointI         int
	pointJ         int
	traceSVG       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clothsim",
		Short: "mass-spring cloth simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "rotated JSON log file")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "hang", "scene preset")

	sceneFlags := func(cmd *cobra.Command) {
		cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
		cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "sub-step timestep")
		cmd.Flags().IntVar(&subSteps, "substeps", config.DefaultSubSteps, "sub-steps per frame")
		cmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator (euler, strain-limited, verlet)")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene headless and store the result",
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a scene in the terminal viewer",
		RunE:  runLive,
	}
	liveCmd.Flags().BoolVar(&menu, "menu", false, "pick a preset and tune it first")
	liveCmd.Flags().StringVar(&theme, "theme", "linen", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotSeries, "series", "all", "series name or all")
	plotCmd.Flags().StringVar(&plotSVG, "svg", "", "also write the series as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeSeries, "series", "centroid_y", "series name")

	divergeCmd := &cobra.Command{
		Use:   "diverge",
		Short: "measure sensitivity to a small displacement",
		RunE:  divergeScene,
	}
	sceneFlags(divergeCmd)
	divergeCmd.Flags().Float64Var(&divergePerturb, "perturb", 1e-6, "initial displacement")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter and report a metric",
		RunE:  sweepScene,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&param, "param", "structural", "parameter name")
	sweepCmd.Flags().Float64Var(&from, "from", 100, "first value")
	sweepCmd.Flags().Float64Var(&to, "to", 1000, "last value")
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of values")
	sweepCmd.Flags().StringVar(&metric, "metric", "max_strain", "result metric")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search parameters for the best metric",
		RunE:  optimizeScene,
	}
	sceneFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&grid, "grid", nil, "name=lo:hi:n, repeatable")
	optimizeCmd.Flags().StringVar(&metric, "metric", "max_strain", "result metric")
	optimizeCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run randomly perturbed copies of a scene",
		RunE:  monteCarloScene,
	}
	sceneFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 8, "number of trials")
	monteCarloCmd.Flags().Float64Var(&mcPerturb, "perturb", 0.05, "maximum displacement per axis")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the steps")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "follow one grid point",
		RunE:  traceScene,
	}
	sceneFlags(traceCmd)
	traceCmd.Flags().IntVar(&pointI, "i", 0, "grid row")
	traceCmd.Flags().IntVar(&pointJ, "j", 0, "grid column")
	traceCmd.Flags().StringVar(&traceSVG, "svg", "", "write the X/Y trace as SVG")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&jsonOut, "out", "-", "output path, - for stdout")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "run a scene and export positions every few frames to JSON",
		RunE:  recordScene,
	}
	sceneFlags(recordCmd)
	recordCmd.Flags().IntVar(&recordEvery, "every", 10, "record every n frames")
	recordCmd.Flags().IntVar(&recordLimit, "limit", 0, "keep at most n frames, 0 keeps all")
	recordCmd.Flags().StringVar(&recordOut, "out", "-", "output path, - for stdout")

	exportOBJCmd := &cobra.Command{
		Use:   "export-obj",
		Short: "run a scene and write the mesh as OBJ",
		RunE:  exportOBJ,
	}
	sceneFlags(exportOBJCmd)
	exportOBJCmd.Flags().IntVar(&objEvery, "every", 0, "also write every n frames")
	exportOBJCmd.Flags().StringVar(&objOut, "out", "cloth.obj", "output path")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "run a scene and write a wireframe SVG",
		RunE:  exportSVG,
	}
	sceneFlags(exportSVGCmd)
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "cloth.svg", "output path")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark every preset",
		RunE:  benchPresets,
	}
	benchCmd.Flags().IntVar(&benchFrames, "frames", 120, "frames per preset")
	benchCmd.Flags().StringVar(&profileMode, "profile", "", "cpu or mem profile")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the selected preset as a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return config.Save(args[0], cfg)
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, divergeCmd, sweepCmd, optimizeCmd,
		monteCarloCmd, scenarioCmd, traceCmd, exportJSONCmd, recordCmd, exportOBJCmd, exportSVGCmd,
		benchCmd, presetsCmd, initCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the scene config: a config file wins over the preset,
// and explicitly set flags win over both, logging flags included.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	var cfg *config.Config
	name := preset
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	} else {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if flags.Changed("substeps") {
		cfg.Simulation.SubSteps = subSteps
	}
	if flags.Changed("integrator") {
		cfg.Simulation.Integrator = integrator
	}
	if !flags.Changed("frames") && cfg.Simulation.Frames > 0 {
		frames = cfg.Simulation.Frames
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func initLogger(cfg *config.Config) error {
	return logger.Init(cfg.Logging.Level, cfg.Logging.File)
}

func newScene(cmd *cobra.Command) (*sim.Scene, string, error) {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	if err := initLogger(cfg); err != nil {
		return nil, "", err
	}
	scene, err := sim.NewScene(cfg, logger.Log)
	if err != nil {
		return nil, "", err
	}
	return scene, name, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	scene, name, err := newScene(cmd)
	if err != nil {
		return err
	}
	mesh := scene.Mesh()

	fmt.Printf("running %s (%dx%d points, %d frames)...\n", name, mesh.Rows(), mesh.Cols(), frames)
	start := time.Now()
	result, err := scene.Sim.Run(cmd.Context(), frames)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d (t=%.3fs)\n", result.FramesTaken, result.Time)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	printMetrics(result.Metrics)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, scene.Config, mesh.Rows(), mesh.Cols(), result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printMetrics(metrics map[string]float64) {
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, metrics[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Console logging would tear the terminal UI, so only the file sink is kept.
	fileCfg := logger.FileConfig{}
	if cfg.Logging.File != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.File)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, nil); err != nil {
		return err
	}

	viz.SetTheme(theme)
	if menu {
		return viz.RunMenu(logger.Log)
	}
	scene, err := sim.NewScene(cfg, logger.Log)
	if err != nil {
		return err
	}
	return viz.RunLive(scene, logger.Log)
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tFRAMES\tSIM TIME\tGRID\tINTEG\tERRORS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%dx%d\t%s\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Time,
			run.Rows, run.Cols,
			run.Integrator,
			len(run.Errors),
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

	names := []string{plotSeries}
	if plotSeries == "all" {
		names = sim.SeriesNames
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	for _, name := range names {
		data, err := st.Series(runID, name)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("no data to plot")
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		))
		fmt.Println()

		if plotSVG != "" && len(names) == 1 {
			if err := os.WriteFile(plotSVG, []byte(export.SeriesToSVG(data, 800, 400, "#e0c080")), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	data, err := st.Series(runID, analyzeSeries)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("not enough samples")
	}

	frameTime := meta.Dt * float64(meta.SubSteps)
	sampleRate := 1 / frameTime

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("series: %s\n\n", analyzeSeries)

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 2 {
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+analyzeSeries+")"),
		))
		fmt.Println()
	}

	sum := analysis.Describe(data)
	fmt.Printf("mean: %.6f  std: %.6f  min: %.6f  max: %.6f  last: %.6f\n", sum.Mean, sum.Std, sum.Min, sum.Max, sum.Last)

	freq, power := analysis.DominantFrequency(data, sampleRate)
	fmt.Printf("dominant frequency: %.3f hz (magnitude %.4g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func divergeScene(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}

	res, err := analysis.Divergence(cmd.Context(), cfg, divergePerturb, frames)
	if err != nil {
		return err
	}

	fmt.Printf("divergence: %s (d0=%g, %d frames)\n\n", name, divergePerturb, frames)
	logSep := make([]float64, 0, len(res.Separations))
	for _, d := range res.Separations {
		if d > 0 {
			logSep = append(logSep, math.Log(d))
		}
	}
	if len(logSep) > 1 {
		fmt.Println(asciigraph.Plot(logSep,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("log separation"),
		))
		fmt.Println()
	}
	fmt.Printf("rate: %.6f /s\n", res.Rate)
	if res.Rate > 0 {
		fmt.Println("perturbations grow")
	} else {
		fmt.Println("perturbations decay")
	}
	return nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}

	values := analysis.Linspace(from, to, steps)
	points, err := analysis.Sweep(cmd.Context(), cfg, param, values, frames, metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tSTABLE\n", strings.ToUpper(param), strings.ToUpper(metric))
	for _, p := range points {
		fmt.Fprintf(w, "%.4g\t%.6f\t%v\n", p.Param, p.Value, p.Stable)
	}
	return w.Flush()
}

// parseGrid reads name=lo:hi:n into a parameter name and its values.
func parseGrid(spec string) (string, []float64, error) {
	name, rng, ok := strings.Cut(spec, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid grid %q, want name=lo:hi:n", spec)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("invalid grid %q, want name=lo:hi:n", spec)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, err
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, err
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", nil, err
	}
	return name, analysis.Linspace(lo, hi, n), nil
}

func optimizeScene(cmd *cobra.Command, args []string) error {
	if len(grid) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, g := range grid {
		name, values, err := parseGrid(g)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	search := optim.NewGridSearch(names, ranges)
	if maximize {
		search.Goal = optim.Maximize
	}

	start := time.Now()
	best, trials, err := search.Search(cmd.Context(), cfg, frames, metric)
	if err != nil {
		return err
	}
	logger.Log.Info("grid search finished",
		zap.Int("trials", len(trials)),
		zap.Duration("elapsed", time.Since(start)),
	)

	fmt.Printf("evaluated %d trials\n", len(trials))
	fmt.Printf("best %s: %.6f\n", metric, best.Value)
	for _, name := range names {
		fmt.Printf("  %s = %.4g\n", name, best.Params[name])
	}
	return nil
}

func monteCarloScene(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}

	results, err := analysis.MonteCarlo(cmd.Context(), cfg, trials, mcPerturb, frames, seed)
	if err != nil {
		return err
	}

	fmt.Printf("monte carlo: %s (%d trials, perturbation %g, seed %d)\n\n", name, trials, mcPerturb, seed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSTABLE\tMAX STRAIN\tLOWEST Y")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%v\t%.6f\t%.4f\n", r.Trial, r.Stable, r.MaxStrain, r.LowestY)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := analysis.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	if err := logger.Init(logLevel, logFile); err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	results, err := scenario.Run(cmd.Context(), sc, st, logger.Log)
	for i, r := range results {
		fmt.Printf("\nstep %d: %s (%d frames, %d events)\n", i+1, r.Label, r.Result.FramesTaken, r.Events)
		for _, e := range r.Result.Errors {
			fmt.Printf("error: %v\n", e)
		}
		if r.RunID != "" {
			fmt.Printf("run id: %s\n", r.RunID)
		}
		printMetrics(r.Result.Metrics)
	}
	return err
}

func traceScene(cmd *cobra.Command, args []string) error {
	scene, _, err := newScene(cmd)
	if err != nil {
		return err
	}
	trace, err := analysis.TracePoint(scene.Sim, pointI, pointJ, frames)
	if err != nil {
		return err
	}

	ys := make([]float64, len(trace))
	for i, p := range trace {
		ys[i] = p.Y()
	}
	fmt.Println(asciigraph.Plot(ys,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("height of point (%d, %d)", pointI, pointJ)),
	))
	if len(trace) > 0 {
		last := trace[len(trace)-1]
		fmt.Printf("\nfinal position: (%.4f, %.4f, %.4f)\n", last.X(), last.Y(), last.Z())
	}

	if traceSVG != "" {
		return os.WriteFile(traceSVG, []byte(export.TraceToSVG(trace, 600, 600, "#e0c080")), 0644)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{
		Samples:     samples,
		Metrics:     meta.Metrics,
		FramesTaken: meta.Frames,
		Time:        meta.Time,
	}
	data := export.NewExportData(meta.Scene, cfg, result, nil)
	data.Errors = meta.Errors
	return export.SaveJSON(jsonOut, data)
}

func recordScene(cmd *cobra.Command, args []string) error {
	scene, name, err := newScene(cmd)
	if err != nil {
		return err
	}
	rec := sim.NewRecorder(len(scene.Mesh().Points()), recordEvery, recordLimit)
	scene.AddObserver(rec)
	defer rec.Release()

	result, err := scene.Sim.Run(cmd.Context(), frames)
	if err != nil {
		return err
	}

	data := export.NewExportData(name, scene.Config, result, scene.Mesh())
	data.Animation = export.NewAnimation(rec.Snapshots())
	return export.SaveJSON(recordOut, data)
}

func exportOBJ(cmd *cobra.Command, args []string) error {
	scene, name, err := newScene(cmd)
	if err != nil {
		return err
	}

	ext := filepath.Ext(objOut)
	base := strings.TrimSuffix(objOut, ext)
	written := 0

	err = scene.Sim.RunWithCallback(cmd.Context(), func(frame int, t float64, m *cloth.Mesh) bool {
		if objEvery > 0 && frame%objEvery == 0 && frame < frames {
			path := fmt.Sprintf("%s_%04d%s", base, frame, ext)
			if werr := export.SaveOBJ(path, name, m); werr != nil {
				logger.Log.Warn("obj export failed", zap.String("path", path), zap.Error(werr))
			} else {
				written++
			}
		}
		return frame < frames
	})
	if err != nil {
		return err
	}

	if err := export.SaveOBJ(objOut, name, scene.Mesh()); err != nil {
		return err
	}
	fmt.Printf("wrote %s", objOut)
	if written > 0 {
		fmt.Printf(" and %d frame files", written)
	}
	fmt.Println()
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	scene, _, err := newScene(cmd)
	if err != nil {
		return err
	}
	if _, err := scene.Sim.Run(cmd.Context(), frames); err != nil {
		return err
	}

	cam := viz.NewCamera(scene.Mesh().Centroid())
	svg := export.MeshToSVG(scene.Mesh(), cam, 800, 600, "#e0c080")
	return os.WriteFile(svgOut, []byte(svg), 0644)
}

func benchPresets(cmd *cobra.Command, args []string) error {
	switch profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "":
	default:
		return fmt.Errorf("unknown profile mode: %s", profileMode)
	}

	fmt.Printf("benchmarking %d frames per preset\n\n", benchFrames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPOINTS\tSPRINGS\tSUBSTEPS\tTIME\tFRAMES/SEC")

	for _, name := range config.ListPresets() {
		scene, err := sim.NewScene(config.GetPreset(name), nil)
		if err != nil {
			return err
		}
		mesh := scene.Mesh()

		start := time.Now()
		result, err := scene.Sim.Run(cmd.Context(), benchFrames)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%.0f\n",
			name, len(mesh.Points()), len(mesh.Springs()), scene.Config.Simulation.SubSteps,
			elapsed, float64(result.FramesTaken)/elapsed.Seconds())
	}
	return w.Flush()
}
