// Package main provides the CLI entrypoint for telehud.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/telehud/internal/config"
	"github.com/verte-zerg/telehud/internal/hud"
	"github.com/verte-zerg/telehud/internal/model"
	"github.com/verte-zerg/telehud/internal/stats"
	"github.com/verte-zerg/telehud/internal/statsui"
	"github.com/verte-zerg/telehud/internal/store"
	"github.com/verte-zerg/telehud/internal/telemetry"
	"github.com/verte-zerg/telehud/internal/tui"
)

const version = "1.0.0"

const (
	defaultSparkWidth = 60
	minSparkWidth     = 10
	sparkChrome       = 20
)

var (
	runSeed   int
	runRecord bool
	runReplay int64
	runLoop   bool
	runLog    string

	sessionsSource string
	sessionsSince  string
	sessionsLast   int
	sessionsUI     bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "telehud",
		Short:         "Telemetry overlay in the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runHUDCmd,
	}

	rootCmd.Flags().IntVar(&runSeed, "seed", 0, "seed for the synthetic telemetry source (0: time based)")
	rootCmd.Flags().BoolVar(&runRecord, "record", true, "record live stints to the session archive")
	rootCmd.Flags().Int64Var(&runReplay, "replay", 0, "replay a recorded stint by ID instead of synthetic telemetry")
	rootCmd.Flags().BoolVar(&runLoop, "loop", false, "loop the replayed stint")
	rootCmd.Flags().StringVar(&runLog, "log", "", "lifecycle log file (default: XDG data dir)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSessionsCmd())

	return rootCmd
}

func runHUDCmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("telehud needs an interactive terminal")
	}

	paths, err := config.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	fileCfg := loadFileConfig(paths.Config)
	applyBoolConfig(cmd, "record", &runRecord, fileCfg.Host.Record)
	applyIntConfig(cmd, "seed", &runSeed, fileCfg.Host.Seed)
	if cmd.Flags().Changed("log") {
		paths.Log = runLog
	}

	logger, closeLog, err := openLog(paths.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(paths.DB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	hudCfg := fileCfg.HUD()
	interval := tui.DefaultTelemetryInterval
	if hudCfg.Time.HiresUpdates {
		interval = tui.HiresTelemetryInterval
	}

	source, err := newSource(cmd.Context(), st, interval)
	if err != nil {
		return err
	}

	magicKey := tui.ResolveMagicKey(hudCfg.Keyboard.MagicKey, logger)
	ctrl := hud.NewController(config.FileSource{Path: paths.Config, Logger: logger}, logger, welcomeMessage(magicKey))
	host := tui.NewModel(ctrl, source, st, logger, tui.Options{
		TelemetryInterval: interval,
		MagicKey:          magicKey,
		Record:            runRecord,
	})
	program := tea.NewProgram(host, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadFileConfig never fails: an unreadable file falls back to defaults.
// FileSource repeats the warning into the lifecycle log on every Load.
func loadFileConfig(path string) config.FileConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logErrf("warning: %v; using defaults\n", err)
		return config.FileConfig{}
	}
	return cfg
}

func newSource(ctx context.Context, st *store.Store, interval time.Duration) (telemetry.Source, error) {
	if runReplay == 0 {
		if runSeed != 0 {
			return telemetry.NewSyntheticSeeded(interval, int64(runSeed)), nil
		}
		return telemetry.NewSynthetic(interval), nil
	}
	samples, err := st.LoadSamples(ctx, runReplay)
	if err != nil {
		return nil, fmt.Errorf("failed to load stint %d: %w", runReplay, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("stint %d has no samples", runReplay)
	}
	return telemetry.NewReplay(samples, runLoop), nil
}

func openLog(path string) (*log.Logger, func(), error) {
	if path == "" || path == "-" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log: %w", err)
	}
	closeFn := func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort log close.
			_ = cerr
		}
	}
	return log.New(f, "", log.LstdFlags), closeFn, nil
}

func welcomeMessage(magicKey int) string {
	return fmt.Sprintf("telehud %s enabled (press %s to toggle)", version, keyName(magicKey))
}

func keyName(code int) string {
	r := rune(code)
	if unicode.IsPrint(r) && !unicode.IsSpace(r) {
		return string(unicode.ToLower(r))
	}
	return fmt.Sprintf("0x%02X", code)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	path := paths.Config
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded stints",
		Args:  cobra.NoArgs,
		RunE:  runSessionsCmd,
	}
	cmd.Flags().StringVar(&sessionsSource, "source", "", "source filter (synthetic, replay)")
	cmd.Flags().StringVar(&sessionsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&sessionsLast, "last", 0, "limit to last N stints")
	cmd.Flags().BoolVar(&sessionsUI, "ui", false, "browse stints interactively")
	return cmd
}

func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := sessionsConfig()
	if err != nil {
		return err
	}

	paths, err := config.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	st, err := store.Open(paths.DB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if sessionsUI {
		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderStints(cmd.OutOrStdout(), report, sparkWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func sessionsConfig() (model.SessionsConfig, error) {
	if sessionsLast < 0 {
		return model.SessionsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	var sinceTime *time.Time
	if sessionsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sessionsSince, time.Local)
		if err != nil {
			return model.SessionsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	return model.SessionsConfig{
		Source: sessionsSource,
		Since:  sinceTime,
		Last:   sessionsLast,
	}, nil
}

func sparkWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultSparkWidth
	}
	return max(width-sparkChrome, minSparkWidth)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# telehud configuration
# Uncomment a value to enable it. Flags override [host] values.

[bar]
# enabled = true          # Draw the downforce marker (true/false or 1/0)
# left = %d                # Bar left edge in pixels
# top = %d               # Bar and text block top in pixels
# width = %d             # Bar width in pixels
# height = %d             # Bar height in pixels
# gutter = %d              # Left margin of the text block

[time]
# enabled = true          # Draw the text readout
# hires-updates = false   # Sample telemetry every 20ms instead of 50ms
# fix-rear-load = false   # Show the rear-right load instead of repeating rear-left
# top = %d                 # 0: quarter of the screen height
# width = %d              # Text box width in pixels (0: screen width)
# height = %d             # Text box height in pixels (0: screen height)
# font-size = %d          # Font size
# font-name = %q # Font face, at most %d bytes

[keyboard]
# magic-key = "T"         # Toggle key: a character or a key code (default 0x%02X)

[host]
# record = true           # Record live stints to the session archive
# seed = 0                # Synthetic telemetry seed (0: time based)
`,
		config.DefaultBarLeft,
		config.DefaultBarTop,
		config.DefaultBarWidth,
		config.DefaultBarHeight,
		config.DefaultBarGutter,
		config.DefaultTimeTop,
		config.DefaultTimeWidth,
		config.DefaultTimeHeight,
		config.DefaultFontSize,
		config.DefaultFontName,
		model.FontNameMaxLen-1,
		config.DefaultMagicKey,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
