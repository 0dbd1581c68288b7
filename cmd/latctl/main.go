package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/latctl/internal/arbiter"
	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/export"
	"github.com/san-kum/latctl/internal/logging"
	"github.com/san-kum/latctl/internal/metrics"
	"github.com/san-kum/latctl/internal/sim"
	"github.com/san-kum/latctl/internal/storage"
	"github.com/san-kum/latctl/internal/telemetry"
	"github.com/san-kum/latctl/internal/tune"
	"github.com/san-kum/latctl/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	v        = newViper()
	settings Settings
	log      *zap.Logger

	runAll     bool
	noSave     bool
	plotWidth  int
	plotHeight int
	pngOut     string
	jsonOut    string

	tuneMetric string
	tuneLow    []float64
	tuneHigh   []float64
	tuneSteps  int
)

// main registers the latctl commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "latctl",
		Short:         "lateral control arbitration lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = loadSettings(v, cmd.Flags())
			if err != nil {
				return err
			}
			log, err = logging.New(settings.LogLevel, settings.LogJSON)
			if err != nil {
				return err
			}
			viz.SetTheme(settings.Theme)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("data", ".latctl", "data directory")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Bool("log-json", false, "log as JSON")
	pf.String("config", "", "arbitration config file (yaml)")
	pf.String("preset", "speed", "arbitration preset")
	pf.String("theme", "cyberpunk", "color theme")
	pf.String("can", "", "SocketCAN interface to publish commands on")
	pf.Uint32("can-id", telemetry.DefaultFrameID, "CAN frame id for published commands")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "validate the arbitration config",
		Args:  cobra.NoArgs,
		RunE:  validateConfig,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list arbitration presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tMODE\tBREAKPOINTS\tMETHODS\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\n",
					name, p.Mode, p.Zone.Breakpoints, strings.Join(p.Zone.Methods, ","), p.Description)
			}
			return w.Flush()
		},
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list builtin scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCENARIO\tDURATION\tDESCRIPTION")
			for _, name := range sim.ListBuiltins() {
				sc, err := sim.Builtin(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%.1fs\t%s\n", sc.Name, sc.Duration, sc.Description)
			}
			return w.Flush()
		},
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario|file.yaml]",
		Short: "run a scenario through the arbitration engine",
		Args:  cobra.RangeArgs(0, 1),
		RunE:  runScenario,
	}
	runCmd.Flags().BoolVar(&runAll, "all", false, "run every builtin scenario concurrently")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "", "output file (default stdout)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render run torque to a PNG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&pngOut, "out", "o", "", "output file (default <run_id>.png)")

	liveCmd := &cobra.Command{
		Use:   "live [scenario|file.yaml]",
		Short: "run a scenario with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario|file.yaml]",
		Short: "grid search zone breakpoints against a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneBreakpoints,
	}
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "max_torque_step", "metric to minimize")
	tuneCmd.Flags().Float64SliceVar(&tuneLow, "low", []float64{2, 10}, "low breakpoint range (min,max)")
	tuneCmd.Flags().Float64SliceVar(&tuneHigh, "high", []float64{12, 25}, "high breakpoint range (min,max)")
	tuneCmd.Flags().IntVar(&tuneSteps, "steps", 5, "grid points per breakpoint")

	rootCmd.AddCommand(validateCmd, presetsCmd, scenariosCmd, runCmd, listCmd, plotCmd, exportJSONCmd, exportPNGCmd, liveCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, _, err := settings.controlConfig()
	if err != nil {
		return err
	}
	mode, err := cfg.ArbitrationMode()
	if err != nil {
		return err
	}
	fmt.Printf("ok: %s %v %s\n", mode.Blend, mode.Breakpoints, methodNames(mode))
	return nil
}

// resolveScenario accepts a builtin name or a path to a scenario file.
func resolveScenario(arg string) (sim.Scenario, error) {
	ext := strings.ToLower(filepath.Ext(arg))
	if ext == ".yaml" || ext == ".yml" {
		return sim.LoadScenario(arg)
	}
	return sim.Builtin(arg)
}

// newOrchestrator builds a fresh engine from the settings and returns the
// preset name it came from, empty for a config file.
func newOrchestrator() (*arbiter.Orchestrator, string, error) {
	cfg, preset, err := settings.controlConfig()
	if err != nil {
		return nil, "", err
	}
	orch, err := arbiter.New(cfg, log)
	if err != nil {
		return nil, "", err
	}
	return orch, preset, nil
}

func newPublisher(ctx context.Context) (sim.Publisher, func(), error) {
	pubs := telemetry.Multi{telemetry.NewLogPublisher(log)}
	closer := func() {}
	if settings.CAN.Interface != "" {
		canPub, err := telemetry.DialSocketCAN(ctx, settings.CAN.Interface, settings.CAN.FrameID)
		if err != nil {
			return nil, nil, err
		}
		pubs = append(pubs, canPub)
		closer = func() {
			if err := canPub.Close(); err != nil {
				log.Warn("close can publisher", zap.Error(err))
			}
		}
	}
	return pubs, closer, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if runAll {
		return runBatch(ctx)
	}
	if len(args) != 1 {
		return fmt.Errorf("run needs a scenario name or file (builtins: %v)", sim.ListBuiltins())
	}

	sc, err := resolveScenario(args[0])
	if err != nil {
		return err
	}
	orch, preset, err := newOrchestrator()
	if err != nil {
		return err
	}

	runner := sim.New(orch, log)
	for _, m := range metrics.Default() {
		runner.AddMetric(m)
	}
	pub, closePub, err := newPublisher(ctx)
	if err != nil {
		return err
	}
	defer closePub()
	runner.SetPublisher(pub)

	result, err := runner.Run(ctx, sc)
	if err != nil {
		return err
	}
	if result.PublishErrors > 0 {
		log.Warn("commands not published", zap.Int("count", result.PublishErrors))
	}

	printResult(result)
	if noSave {
		return nil
	}
	return saveResult(orch.Mode(), preset, sc, result)
}

func runBatch(ctx context.Context) error {
	var scenarios []sim.Scenario
	for _, name := range sim.ListBuiltins() {
		sc, err := sim.Builtin(name)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
	}

	orch, preset, err := newOrchestrator()
	if err != nil {
		return err
	}
	mode := orch.Mode()

	batch := &sim.Batch{
		NewOrchestrator: func() (*arbiter.Orchestrator, error) {
			orch, _, err := newOrchestrator()
			return orch, err
		},
		NewMetrics: metrics.Default,
		Log:        log,
	}

	results, err := batch.Run(ctx, scenarios)
	if err != nil {
		return err
	}
	for i, result := range results {
		printResult(result)
		if noSave {
			continue
		}
		if err := saveResult(mode, preset, scenarios[i], result); err != nil {
			return err
		}
	}
	return nil
}

func printResult(result *sim.Result) {
	fmt.Printf("scenario: %s (%d cycles)\n", result.Scenario, result.Steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range metrics.Default() {
		fmt.Fprintf(w, "  %s\t%.4f\n", m.Name(), result.Metrics[m.Name()])
	}
	_ = w.Flush()
}

func saveResult(mode config.Mode, preset string, sc sim.Scenario, result *sim.Result) error {
	st := storage.New(settings.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Scenario:    sc.Name,
		Preset:      preset,
		Mode:        mode.Blend.String(),
		Breakpoints: mode.Breakpoints,
		Methods:     methodNames(mode),
		Dt:          sc.Dt,
		Duration:    sc.Duration,
	}
	id, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	fmt.Printf("saved run: %s\n\n", id)
	return nil
}

func methodNames(mode config.Mode) [3]string {
	var names [3]string
	for i, id := range mode.Methods {
		names[i] = id.String()
	}
	return names
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tMODE\tBREAKPOINTS\tMETHODS\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%s\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Breakpoints,
			strings.Join(run.Methods[:], ","),
			run.Steps,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Cycle, error) {
	st := storage.New(settings.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	cycles, err := st.LoadCycles(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, cycles, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, cycles, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("mode: %s %v %s\n", meta.Mode, meta.Breakpoints, strings.Join(meta.Methods[:], ","))
	fmt.Printf("samples: %d\n\n", len(cycles))

	fmt.Println(viz.PlotTorque(cycles, plotWidth, plotHeight))
	fmt.Println()
	fmt.Println(viz.PlotOperatingPoint(cycles, plotWidth, plotHeight))
	fmt.Println()
	fmt.Println(viz.SelectionStrip(cycles, plotWidth))
	fmt.Println(viz.SelectionLegend())
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, cycles, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if jsonOut == "" {
		return export.JSON(os.Stdout, *meta, cycles)
	}
	f, err := os.Create(jsonOut)
	if err != nil {
		return err
	}
	if err := export.JSON(f, *meta, cycles); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", jsonOut)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	meta, cycles, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := pngOut
	if out == "" {
		out = meta.ID + ".png"
	}
	title := fmt.Sprintf("%s: %s %s", meta.Scenario, meta.Mode, strings.Join(meta.Methods[:], ","))
	if err := export.RenderPNG(out, title, cycles); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", out)
	return nil
}

func tuneBreakpoints(cmd *cobra.Command, args []string) error {
	if len(tuneLow) != 2 || len(tuneHigh) != 2 {
		return fmt.Errorf("--low and --high take exactly two values")
	}
	sc, err := resolveScenario(args[0])
	if err != nil {
		return err
	}
	cfg, _, err := settings.controlConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	b := &tune.Breakpoints{Base: cfg, Scenario: sc, NewMetrics: metrics.Default}
	low := tune.Range(tuneLow[0], tuneLow[1], tuneSteps)
	high := tune.Range(tuneHigh[0], tuneHigh[1], tuneSteps)

	best, visited, err := tune.SearchBreakpoints(ctx, b, low, high, tuneMetric)
	if err != nil {
		return err
	}
	log.Info("tune finished", zap.Int("evaluated", len(visited)), zap.String("metric", tuneMetric))

	fmt.Printf("scenario: %s, mode: %s, metric: %s\n", sc.Name, cfg.Mode, tuneMetric)
	fmt.Printf("best breakpoints: [%g, %g] -> %.4f\n",
		best.Params[tune.ParamLow], best.Params[tune.ParamHigh], best.Score)
	return nil
}

func stepperFactory(sc sim.Scenario) viz.StepperFactory {
	return func() (*sim.Stepper, error) {
		orch, _, err := newOrchestrator()
		if err != nil {
			return nil, err
		}
		return sim.NewStepper(orch, sc)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := resolveScenario(args[0])
	if err != nil {
		return err
	}
	// The live view owns the terminal.
	log = zap.NewNop()
	return viz.Run(stepperFactory(sc))
}
