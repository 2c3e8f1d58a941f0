// Command termswarm runs the swarm in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/engine"
	"github.com/pthm-cable/swarm/terminal"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logPath := flag.String("log", "", "Log file (empty = discard; stdout is the screen)")
	fps := flag.Int("fps", 30, "Frames per second")
	trails := flag.Bool("trails", true, "Draw particle trails")
	text := flag.String("text", "", "Text to form (overrides the config scene)")
	maxParticles := flag.Int("max-particles", 4000, "Particle limit; terminals have few pixels")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *text != "" {
		cfg.Scene.Text = *text
		cfg.Scene.SVG = ""
	}

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, nil)))

	if err := run(cfg, *fps, *trails, *maxParticles); err != nil {
		fmt.Fprintf(os.Stderr, "termswarm: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, fps int, trails bool, maxParticles int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ec := cfg.EngineConfig(nil)
	if maxParticles > 0 {
		ec.MaxParticles = maxParticles
	}
	eng := engine.New(ec)

	app := terminal.NewApp(screen, eng, terminal.Options{
		FPS:    fps,
		Trails: trails,
		Scene:  cfg.SpawnScene,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return app.Run(ctx)
}
