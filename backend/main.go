package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, ConfigFromEnv(DefaultConfig()))
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage(stderr)
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		usage(stderr)
		return 2
	}
	if err := setupLogging(stderr, cfg.LogLevel); err != nil {
		fmt.Fprintf(stderr, "Error: invalid log level %q: %v\n", cfg.LogLevel, err)
		return 2
	}
	configStore.Update(cfg)
	if cfg.Width*cfg.Height > 9 {
		log.Warn().
			Int("width", cfg.Width).
			Int("height", cfg.Height).
			Msg("engine-cache-unbounded: large boards may exhaust memory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Mode == ModeSelfPlay {
		report, _, err := RunSelfPlay(ctx, cfg)
		if err != nil {
			log.Error().Err(err).Msg("selfplay-failed")
			return 1
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Error().Err(err).Msg("selfplay-report-failed")
			return 1
		}
		return 0
	}

	engine := NewEngine()
	if _, err := loadEngineCache(cfg.CachePath, engine, cfg.Width, cfg.Height); err != nil {
		log.Warn().Err(err).Msg("engine-cache-load-failed")
	}
	controller := NewGameController(NewGame(cfg.Width, cfg.Height, engine))
	frontend, err := newFrontend(cfg, controller, stdin, stdout)
	if err != nil {
		log.Error().Err(err).Msg("frontend-init-failed")
		return 1
	}

	runErr := frontend.Run(ctx)
	if _, err := saveEngineCache(cfg.CachePath, engine, cfg.Width, cfg.Height); err != nil {
		log.Warn().Err(err).Msg("engine-cache-store-failed")
	}
	if runErr != nil {
		log.Error().Err(runErr).Str("mode", string(cfg.Mode)).Msg("frontend-failed")
		return 1
	}
	return 0
}

// parseArgs applies command line flags on top of base. Exactly one of
// --terminal, --window or --selfplay selects the execution mode.
func parseArgs(args []string, base Config) (Config, error) {
	cfg := base
	fs := flag.NewFlagSet("tictactoe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	terminal := fs.Bool("terminal", false, "run the game in a terminal")
	window := fs.Bool("window", false, "serve the game in a browser window")
	selfplay := fs.Bool("selfplay", false, "let the engine play itself and report results")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "board width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "board height")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address for --window")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.CachePath, "cache", cfg.CachePath, "file the engine cache is loaded from and stored to")
	fs.IntVar(&cfg.SelfPlayGames, "games", cfg.SelfPlayGames, "number of selfplay games")
	fs.IntVar(&cfg.SelfPlayWorkers, "workers", cfg.SelfPlayWorkers, "number of selfplay workers")
	fs.IntVar(&cfg.SelfPlayOpeningPly, "opening-plies", cfg.SelfPlayOpeningPly, "random plies before the engine takes over")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	selected := 0
	for _, mode := range []struct {
		set  bool
		mode FrontendMode
	}{{*terminal, ModeTerminal}, {*window, ModeWindow}, {*selfplay, ModeSelfPlay}} {
		if mode.set {
			cfg.Mode = mode.mode
			selected++
		}
	}
	if selected == 0 {
		return Config{}, errors.New("expected execution mode argument")
	}
	if selected > 1 {
		return Config{}, errors.New("only one execution mode may be selected")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tictactoe [--mode] [flags]")
	fmt.Fprintln(w, "Execution modes:")
	fmt.Fprintln(w, "    --window: serves the game on a browser canvas")
	fmt.Fprintln(w, "    --terminal: runs the game in a terminal")
	fmt.Fprintln(w, "    --selfplay: plays the engine against itself")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "    -width, -height, -addr, -log-level, -cache, -games, -workers, -opening-plies")
}
