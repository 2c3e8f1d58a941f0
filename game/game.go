// Package game wires the swarm engine to a raylib window or a headless loop.
package game

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/engine"
	"github.com/pthm-cable/swarm/renderer"
	"github.com/pthm-cable/swarm/telemetry"
	"github.com/pthm-cable/swarm/ui"
	"github.com/pthm-cable/swarm/vmath"
)

// DT is the fixed step used by headless runs.
const DT = 1.0 / 60.0

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindow    int    // frames; 0 keeps the config value
	SnapshotDir    string // writes a snapshot here on exit when set
	RestorePath    string // starts from this snapshot instead of the scene
	OutputDir      string // CSV logs and config snapshot
	Headless       bool
	StepsPerUpdate int
}

// Game holds the complete application state.
type Game struct {
	cfg  *config.Config
	opts Options
	eng  *engine.Engine

	// Rendering (nil when headless)
	camera     *camera.Camera
	background *renderer.BackgroundRenderer
	particles  *renderer.ParticleRenderer
	fields     *renderer.FieldRenderer
	overlays   *ui.OverlayRegistry
	controls   *ui.ControlPanel
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel

	output *telemetry.OutputManager

	preset  string
	touches map[int]struct{}

	screenWidth, screenHeight float64
	stepsPerUpdate            int
}

// NewGameWithOptions creates a game from the global config.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	ec := cfg.EngineConfig(nil)
	if opts.Seed != 0 {
		ec.Seed = opts.Seed
	}
	if opts.LogStats {
		ec.LogStats = true
	}
	if opts.StatsWindow > 0 {
		ec.StatsWindow = opts.StatsWindow
	}
	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}

	g := &Game{
		cfg:            cfg,
		opts:           opts,
		eng:            engine.New(ec),
		stepsPerUpdate: opts.StepsPerUpdate,
		screenWidth:    float64(cfg.Screen.Width),
		screenHeight:   float64(cfg.Screen.Height),
		touches:        make(map[int]struct{}),
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
			g.output = om
			g.eng.SetOutput(om)
		}
	}

	if !opts.Headless {
		g.camera = camera.New(g.screenWidth, g.screenHeight, cfg.Derived.CanvasW, cfg.Derived.CanvasH, cfg.Screen.DPIScale)
		g.background = renderer.NewBackgroundRenderer(int32(cfg.Screen.Width), int32(cfg.Screen.Height), 12, 16, 28)
		g.particles = renderer.NewParticleRenderer()
		g.fields = renderer.NewFieldRenderer()
		g.overlays = ui.NewOverlayRegistry()
		g.controls = ui.NewControlPanel(10, 70, 230)
		g.controls.Sync(g.eng.Physics().State())
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(cfg.Screen.Width)-260, int32(cfg.Screen.Height)-140)
	}

	if opts.RestorePath != "" {
		if err := g.restore(opts.RestorePath); err != nil {
			slog.Error("failed to restore snapshot", "path", opts.RestorePath, "error", err)
		}
		return g
	}
	if err := cfg.SpawnScene(g.eng); err != nil {
		slog.Error("failed to spawn scene", "error", err)
	}
	if cfg.Derived.HasPreset {
		g.preset = cfg.Derived.Preset.String()
	}
	return g
}

// restore replaces the engine state with a saved snapshot.
func (g *Game) restore(path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := g.eng.RestoreSnapshot(snap); err != nil {
		return err
	}
	slog.Info("snapshot restored", "path", path, "particles", g.eng.Count(), "frame", g.eng.Frame())
	return nil
}

// Engine returns the underlying engine.
func (g *Game) Engine() *engine.Engine { return g.eng }

// Tick returns the number of simulated frames.
func (g *Game) Tick() int { return g.eng.Frame() }

// Update processes input and advances the simulation by the frame time.
func (g *Game) Update() {
	g.handleInput()

	dt := float64(rl.GetFrameTime())
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.eng.Update(dt)
	}
}

// UpdateHeadless advances the simulation by fixed steps without input.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.eng.Update(DT)
	}
}

// reset restores the initial configuration and respawns the scene.
func (g *Game) reset() {
	g.eng.Reset()
	g.preset = ""
	if err := g.cfg.SpawnScene(g.eng); err != nil {
		slog.Error("failed to spawn scene", "error", err)
	}
	if g.cfg.Derived.HasPreset {
		g.preset = g.cfg.Derived.Preset.String()
	}
	if g.controls != nil {
		g.controls.Sync(g.eng.Physics().State())
	}
}

// applyPreset applies p with its default options.
func (g *Game) applyPreset(p engine.Preset) {
	g.eng.ApplyPreset(p, engine.DefaultPresetOptions(p))
	g.preset = p.String()
	if g.controls != nil {
		g.controls.Sync(g.eng.Physics().State())
	}
}

// clear removes every particle, field and interaction.
func (g *Game) clear() {
	g.eng.RemoveAll()
	g.eng.Physics().ClearFields()
	g.eng.Tracker().Clear()
	g.preset = ""
}

// canvasPoint maps a raylib screen position to the canvas.
func (g *Game) canvasPoint(p rl.Vector2) vmath.Vec {
	return g.camera.ScreenToCanvas(vmath.V(float64(p.X), float64(p.Y)))
}

// Unload writes the final snapshot and closes outputs.
func (g *Game) Unload() {
	if g.opts.SnapshotDir != "" {
		snap := g.eng.CaptureSnapshot()
		if path, err := telemetry.SaveSnapshot(snap, g.opts.SnapshotDir); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "path", path)
		}
	}
	if g.output != nil {
		if err := g.output.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
	slog.Info("game unloaded", "frames", g.eng.Frame(), "sim_time", time.Duration(g.eng.SimTime()*float64(time.Second)))
}
