package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/game"
	"github.com/pthm-cable/murmur/pattern"
	"github.com/pthm-cable/murmur/telemetry"
	"github.com/pthm-cable/murmur/terminal"
	"github.com/pthm-cable/murmur/ui"
)

var (
	configPath string
	seed       int64
	cycles     int
	maxTicks   int
	outputDir  string
	logStats   bool
	fps        int
	text       string
	logFile    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "murmur",
		Short: "flocking agents that converge into text",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "RNG seed (0 = time-based)")
	rootCmd.PersistentFlags().StringVar(&text, "text", "", `message to form, overrides the pattern config ("\n" splits lines)`)
	rootCmd.PersistentFlags().IntVar(&fps, "fps", 0, "frames per second (0 = use config)")
	rootCmd.PersistentFlags().IntVar(&cycles, "cycles", 0, "stop after N completed cycles (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVar(&logStats, "log-stats", false, "log progress and perf samples")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory for CSV logs and config snapshot")

	headlessCmd := &cobra.Command{
		Use:   "headless",
		Short: "run without a display and print a summary",
		Long:  "Run without a display. JSON logs go to stderr and the summary to stdout.",
		RunE:  runHeadless,
	}
	headlessCmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "stop after N ticks (0 = unlimited)")

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "run in a raylib window",
		RunE:  runWindow,
	}

	termCmd := &cobra.Command{
		Use:   "term",
		Short: "run in the terminal",
		RunE:  runTerminal,
	}
	termCmd.Flags().StringVar(&logFile, "log-file", "murmur.log", "where logs go while the terminal is in use")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}

	rootCmd.AddCommand(headlessCmd, windowCmd, termCmd, configCmd)
	return rootCmd
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if fps > 0 {
		cfg.Canvas.TargetFPS = fps
	}
	if text != "" {
		cfg.Pattern.Source = "text"
		cfg.Pattern.Text = strings.ReplaceAll(text, `\n`, "\n")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Refresh()
	return cfg, nil
}

// setup loads config, installs the logger and opens the output directory.
func setup(logOut io.Writer, jsonLogs bool) (*config.Config, *telemetry.OutputManager, int64, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, 0, err
	}

	var handler slog.Handler = slog.NewTextHandler(logOut, nil)
	if jsonLogs {
		handler = slog.NewJSONHandler(logOut, nil)
	}
	slog.SetDefault(slog.New(handler))

	rngSeed := seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return nil, nil, 0, err
	}
	if err := out.WriteConfig(cfg); err != nil {
		out.Close()
		return nil, nil, 0, err
	}
	return cfg, out, rngSeed, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	// stdout carries only the summary
	cfg, out, rngSeed, err := setup(cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer out.Close()

	var (
		finished []telemetry.CycleStats
		samples  []telemetry.ProgressSample
	)
	e := game.New(cfg, pattern.FromConfig(cfg.Pattern), game.Options{
		Seed:     rngSeed,
		Output:   out,
		LogStats: logStats,
		OnCycle: func(s telemetry.CycleStats) {
			finished = append(finished, s)
		},
		OnProgress: func(p telemetry.ProgressSample) {
			samples = append(samples, p)
		},
	})

	maxCycles := cycles
	if maxCycles == 0 && maxTicks == 0 {
		maxCycles = 1
	}

	slog.Info("starting headless run",
		"seed", rngSeed,
		"cycles", maxCycles,
		"max_ticks", maxTicks,
	)

	ctx, stop := signalContext()
	defer stop()

	r := &game.Runner{Engine: e, MaxCycles: maxCycles, MaxTicks: maxTicks}
	runErr := r.Run(ctx)

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(finished, samples))
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// windowScale picks the configured scale, or the largest one that fits a
// 1280x720 window.
func windowScale(cfg *config.Config) int {
	if cfg.Canvas.Scale > 0 {
		return cfg.Canvas.Scale
	}
	return max(min(1280/cfg.Canvas.Width, 720/cfg.Canvas.Height), 1)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, out, rngSeed, err := setup(os.Stdout, true)
	if err != nil {
		return err
	}
	defer out.Close()

	win := ui.NewWindow(cfg.Canvas.Width, cfg.Canvas.Height, windowScale(cfg), cfg.Canvas.TargetFPS, "murmur")
	defer win.Close()

	e := game.New(cfg, pattern.FromConfig(cfg.Pattern), game.Options{
		Seed:     rngSeed,
		Sink:     win,
		Output:   out,
		LogStats: logStats,
	})
	win.SetStatus(func() ui.Status { return ui.StatusOf(e) })

	ctx, stop := signalContext()
	defer stop()

	// raylib paces frames in EndDrawing
	r := &game.Runner{Engine: e, MaxCycles: cycles, Input: win}
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runTerminal(cmd *cobra.Command, args []string) error {
	f, err := os.Create(logFile)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer f.Close()

	cfg, out, rngSeed, err := setup(f, false)
	if err != nil {
		return err
	}
	defer out.Close()

	scr, err := terminal.Open(cfg.Canvas.Width, cfg.Canvas.Height)
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer scr.Close()

	e := game.New(cfg, pattern.FromConfig(cfg.Pattern), game.Options{
		Seed:     rngSeed,
		Sink:     scr,
		Output:   out,
		LogStats: logStats,
	})
	scr.SetStatus(func() string {
		s := ui.StatusOf(e)
		return fmt.Sprintf("cycle %d  %d/%d  agents %d  q quit  r reset  space pause",
			s.Cycle, s.Captured, s.Targets, s.Agents)
	})

	ctx, stop := signalContext()
	defer stop()

	r := &game.Runner{Engine: e, MaxCycles: cycles, Input: scr, Realtime: true}
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
