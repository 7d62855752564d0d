// Package main is the entry point for the vtbridge console host.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/dshills/vtbridge/internal/config"
	"github.com/dshills/vtbridge/internal/input"
	"github.com/dshills/vtbridge/internal/render"
	"github.com/dshills/vtbridge/internal/render/core"
	"github.com/dshills/vtbridge/internal/render/local"
	"github.com/dshills/vtbridge/internal/vtio"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	configPath string
	inPipe     string
	outPipe    string
	mode       string
	logLevel   string
	palette    string
	demo       bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading configuration: %v\n", err)
		return 1
	}
	applyFlags(&cfg, opts)

	log := initLogger(cfg.Logging.Level)

	table := core.DefaultColorTable()
	if cfg.Palette != "" {
		table, err = core.LoadPalette(cfg.Palette)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.Palette).Msg("loading palette")
			return 1
		}
	}

	queue := input.NewQueue(input.DefaultQueueSize)
	renderer := render.NewRenderer()
	defer renderer.Close()

	bridge := vtio.New(renderer, queue, table, log)
	if cfg.BridgeConfigured() {
		if err := bridge.Initialize(cfg.VT.InPipe, cfg.VT.OutPipe, cfg.VT.Mode); err != nil {
			log.Error().Err(err).Msg("initializing vt bridge")
			return 1
		}
	}

	// The local preview engine mirrors frames on the controlling
	// terminal. It only makes sense interactively.
	if opts.demo && term.IsTerminal(int(os.Stdout.Fd())) {
		screen, err := local.NewEngine()
		if err != nil {
			log.Error().Err(err).Msg("creating local screen")
			return 1
		}
		if err := renderer.AddEngine(screen); err != nil {
			log.Error().Err(err).Msg("registering local screen")
			return 1
		}
	}

	status, err := bridge.StartIfNeeded()
	if err != nil {
		log.Error().Err(err).Msg("starting vt bridge")
		return 1
	}
	log.Info().Stringer("status", status).Msg("vt bridge startup")

	if status == vtio.StatusSkipped && renderer.EngineCount() == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to do: no pipes configured and no local screen. See -help.")
		return 1
	}

	if opts.demo {
		return runDemo(renderer, queue, log)
	}
	return waitForSignal(log)
}

// runDemo paints a frame echoing decoded key events until Ctrl+C or a
// 'q' event arrives through the bridge.
func runDemo(renderer *render.Renderer, queue *input.Queue, log zerolog.Logger) int {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	frame := render.NewFrame(80, 24)
	title := core.DefaultStyle().Bold().WithForeground(core.ColorFromRGB(80, 250, 123))
	frame.SetText(0, 0, "vtbridge demo - press keys, q quits", title)
	if err := renderer.PaintFrame(frame); err != nil {
		log.Error().Err(err).Msg("painting initial frame")
		return 1
	}

	line := 2
	for {
		select {
		case <-signals:
			log.Info().Msg("interrupted")
			return 0
		default:
		}

		ev, ok := queue.TryPoll()
		if !ok {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if ev.IsChar() && ev.Rune == 'q' {
			return 0
		}

		frame.SetText(0, line, fmt.Sprintf("key: %-30s", ev), core.DefaultStyle())
		if err := renderer.PaintFrame(frame); err != nil {
			log.Error().Err(err).Msg("painting frame")
			return 1
		}
		line++
		if line >= frame.Height() {
			line = 2
		}
	}
}

func waitForSignal(log zerolog.Logger) int {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	return 0
}

func initLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "vtbridge").Logger()
}

// applyFlags lets command-line flags win over the file and environment.
func applyFlags(cfg *config.Config, opts options) {
	if opts.inPipe != "" {
		cfg.VT.InPipe = opts.inPipe
	}
	if opts.outPipe != "" {
		cfg.VT.OutPipe = opts.outPipe
	}
	if opts.mode != "" {
		cfg.VT.Mode = opts.mode
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.palette != "" {
		cfg.Palette = opts.palette
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.inPipe, "in", "", "Input pipe path (VT -> host)")
	flag.StringVar(&opts.outPipe, "out", "", "Output pipe path (host -> VT)")
	flag.StringVar(&opts.mode, "mode", "", "VT protocol mode (xterm-256color, xterm, win-telnet, default)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flag.StringVar(&opts.palette, "palette", "", "Path to a 16-color JSON palette file")
	flag.BoolVar(&opts.demo, "demo", false, "Paint a demo frame and echo decoded input")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "vtbridge - console host VT I/O bridge\n\n")
		fmt.Fprintf(os.Stderr, "Usage: vtbridge [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vtbridge -in /run/vt-in -out /run/vt-out -mode xterm-256color\n")
		fmt.Fprintf(os.Stderr, "  vtbridge -config /etc/vtbridge.toml -demo\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("vtbridge %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	return opts
}
