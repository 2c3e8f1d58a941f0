// Package config provides configuration loading and access for the swarm.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/swarm/engine"
	"github.com/pthm-cable/swarm/input"
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/shape"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/vmath"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all swarm configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Engine      EngineConfig      `yaml:"engine"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Interaction InteractionConfig `yaml:"interaction"`
	Particle    ParticleConfig    `yaml:"particle"`
	Sampler     SamplerConfig     `yaml:"sampler"`
	Homing      HomingConfig      `yaml:"homing"`
	Scene       SceneConfig       `yaml:"scene"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	DPIScale  float64 `yaml:"dpi_scale"` // canvas pixels per screen pixel (0 = 1)
}

// EngineConfig holds swarm-wide limits.
type EngineConfig struct {
	MaxParticles int     `yaml:"max_particles"`
	MaxDelta     float64 `yaml:"max_delta"` // seconds
	Seed         int64   `yaml:"seed"`
	ColorMode    string  `yaml:"color_mode"` // gradient, rainbow, mono, fire, ocean, random
}

// Vec2 is a YAML-friendly vector.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PhysicsConfig holds world physics parameters.
type PhysicsConfig struct {
	Gravity             Vec2    `yaml:"gravity"` // only y applies
	Wind                Vec2    `yaml:"wind"`    // only x applies
	Friction            float64 `yaml:"friction"`
	Bounce              float64 `yaml:"bounce"`
	TimeScale           float64 `yaml:"time_scale"`
	CollisionDetection  bool    `yaml:"collision_detection"`
	CollisionResponse   string  `yaml:"collision_response"` // bounce or none
	GridSize            float64 `yaml:"grid_size"`
	SpatialPartitioning bool    `yaml:"spatial_partitioning"`
	PartitionThreshold  int     `yaml:"partition_threshold"`
}

// InteractionConfig holds pointer, touch and wheel interaction tuning.
type InteractionConfig struct {
	AttractionRadius   float64       `yaml:"attraction_radius"`
	AttractionStrength float64       `yaml:"attraction_strength"`
	RepulsionRadius    float64       `yaml:"repulsion_radius"`
	RepulsionStrength  float64       `yaml:"repulsion_strength"`
	WheelDuration      time.Duration `yaml:"wheel_duration"`
	WheelStrength      float64       `yaml:"wheel_strength"`
	PulseRadiusScale   float64       `yaml:"pulse_radius_scale"`
	PulseStrength      float64       `yaml:"pulse_strength"`
	PulseDuration      time.Duration `yaml:"pulse_duration"`
	DragScale          float64       `yaml:"drag_scale"`
}

// ParticleConfig holds spawn defaults. Friction and bounce fall back to physics.
type ParticleConfig struct {
	Size               float64 `yaml:"size"`
	Mass               float64 `yaml:"mass"`
	Friction           float64 `yaml:"friction"`
	Bounce             float64 `yaml:"bounce"`
	Glow               float64 `yaml:"glow"`
	TrailLength        int     `yaml:"trail_length"` // negative disables trails
	AttractionRadius   float64 `yaml:"attraction_radius"`
	AttractionStrength float64 `yaml:"attraction_strength"`
	FixedSize          bool    `yaml:"fixed_size"`
}

// SamplerConfig holds text and SVG sampling defaults.
type SamplerConfig struct {
	FontSize      float64 `yaml:"font_size"`
	FontFamily    string  `yaml:"font_family"`
	FontWeight    string  `yaml:"font_weight"`
	Spacing       int     `yaml:"spacing"`
	Quality       int     `yaml:"quality"`
	MergeDistance float64 `yaml:"merge_distance"`
	SVGSpacing    float64 `yaml:"svg_spacing"`
	SVGScale      float64 `yaml:"svg_scale"`
	SVGQuality    int     `yaml:"svg_quality"`
	OptimizePaths bool    `yaml:"optimize_paths"`
}

// HomingConfig holds the spring pulling formed particles to their targets.
type HomingConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Stiffness      float64 `yaml:"stiffness"`
	Damping        float64 `yaml:"damping"`
	ArriveDistance float64 `yaml:"arrive_distance"`
}

// SceneConfig describes the shape spawned at startup.
type SceneConfig struct {
	Text    string `yaml:"text"`
	SVG     string `yaml:"svg"`  // path; takes precedence over text
	Mode    string `yaml:"mode"` // fill, outline, density
	Fill    bool   `yaml:"fill"` // rasterize SVG shapes instead of tracing outlines
	Pattern string `yaml:"pattern"`
	Reveal  string `yaml:"reveal"`
	Form    bool   `yaml:"form"`
	Preset  string `yaml:"preset"` // applied after spawning; empty for none
}

// TelemetryConfig holds stats window and bookmark parameters.
type TelemetryConfig struct {
	StatsWindow        int  `yaml:"stats_window"` // frames
	PerfWindow         int  `yaml:"perf_window"`  // steps
	LogStats           bool `yaml:"log_stats"`
	SnapshotOnBookmark bool `yaml:"snapshot_on_bookmark"`
}

// DerivedConfig holds values parsed or computed from the loaded config.
type DerivedConfig struct {
	ColorMode         particle.ColorMode
	CollisionResponse systems.CollisionResponse
	Mode              shape.Mode
	Pattern           shape.Pattern
	Reveal            shape.Reveal
	Preset            engine.Preset
	HasPreset         bool
	CanvasW, CanvasH  float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived parses enum names and computes the canvas size.
func (c *Config) computeDerived() error {
	var err error
	if c.Derived.ColorMode, err = particle.ParseColorMode(c.Engine.ColorMode); err != nil {
		return fmt.Errorf("engine.color_mode: %w", err)
	}
	if c.Derived.CollisionResponse, err = systems.ParseCollisionResponse(c.Physics.CollisionResponse); err != nil {
		return fmt.Errorf("physics.collision_response: %w", err)
	}
	if c.Derived.Mode, err = shape.ParseMode(c.Scene.Mode); err != nil {
		return fmt.Errorf("scene.mode: %w", err)
	}
	if c.Derived.Pattern, err = shape.ParsePattern(c.Scene.Pattern); err != nil {
		return fmt.Errorf("scene.pattern: %w", err)
	}
	if c.Derived.Reveal, err = shape.ParseReveal(c.Scene.Reveal); err != nil {
		return fmt.Errorf("scene.reveal: %w", err)
	}
	c.Derived.HasPreset = c.Scene.Preset != ""
	if c.Derived.HasPreset {
		if c.Derived.Preset, err = engine.ParsePreset(c.Scene.Preset); err != nil {
			return fmt.Errorf("scene.preset: %w", err)
		}
	}

	scale := c.Screen.DPIScale
	if scale <= 0 {
		scale = 1
	}
	c.Derived.CanvasW = float64(c.Screen.Width) * scale
	c.Derived.CanvasH = float64(c.Screen.Height) * scale
	return nil
}

// PhysicsWorld converts the physics section to a world config.
func (c *Config) PhysicsWorld() systems.Config {
	p := c.Physics
	return systems.Config{
		Gravity:                vmath.V(p.Gravity.X, p.Gravity.Y),
		Wind:                   vmath.V(p.Wind.X, p.Wind.Y),
		Friction:               p.Friction,
		Bounce:                 p.Bounce,
		TimeScale:              p.TimeScale,
		CollisionDetection:     p.CollisionDetection,
		CollisionResponse:      c.Derived.CollisionResponse,
		GridSize:               p.GridSize,
		UseSpatialPartitioning: p.SpatialPartitioning,
		PartitionThreshold:     p.PartitionThreshold,
	}
}

// Input converts the interaction section to a tracker config.
func (c *Config) Input() input.Config {
	i := c.Interaction
	return input.Config{
		AttractionRadius:   i.AttractionRadius,
		AttractionStrength: i.AttractionStrength,
		RepulsionRadius:    i.RepulsionRadius,
		RepulsionStrength:  i.RepulsionStrength,
		WheelDuration:      i.WheelDuration,
		WheelStrength:      i.WheelStrength,
		PulseRadiusScale:   i.PulseRadiusScale,
		PulseStrength:      i.PulseStrength,
		PulseDuration:      i.PulseDuration,
		DragScale:          i.DragScale,
	}
}

// ParticleOptions converts the particle section to spawn defaults.
func (c *Config) ParticleOptions() particle.Options {
	p := c.Particle
	return particle.Options{
		Size:               p.Size,
		Mass:               p.Mass,
		Friction:           p.Friction,
		Bounce:             p.Bounce,
		Glow:               p.Glow,
		MaxTrailLength:     p.TrailLength,
		AttractionRadius:   p.AttractionRadius,
		AttractionStrength: p.AttractionStrength,
		FixedSize:          p.FixedSize,
	}
}

// ShapeSampler converts the sampler section to a sampler config.
func (c *Config) ShapeSampler() shape.Config {
	s := c.Sampler
	return shape.Config{
		FontSize:      s.FontSize,
		FontFamily:    s.FontFamily,
		FontWeight:    s.FontWeight,
		Spacing:       s.Spacing,
		Quality:       s.Quality,
		MergeDistance: s.MergeDistance,
		SVGSpacing:    s.SVGSpacing,
		SVGScale:      s.SVGScale,
		SVGQuality:    s.SVGQuality,
		OptimizePaths: s.OptimizePaths,
	}
}

// EngineConfig assembles a full engine config. clock may be nil.
func (c *Config) EngineConfig(clock input.Clock) engine.Config {
	return engine.Config{
		Width:        c.Derived.CanvasW,
		Height:       c.Derived.CanvasH,
		MaxParticles: c.Engine.MaxParticles,
		MaxDelta:     c.Engine.MaxDelta,
		Seed:         c.Engine.Seed,
		Physics:      c.PhysicsWorld(),
		Input:        c.Input(),
		Sampler:      c.ShapeSampler(),
		Particle:     c.ParticleOptions(),
		Color:        c.Derived.ColorMode,
		Homing: engine.HomingConfig{
			Disabled:       !c.Homing.Enabled,
			Stiffness:      c.Homing.Stiffness,
			Damping:        c.Homing.Damping,
			ArriveDistance: c.Homing.ArriveDistance,
		},
		StatsWindow:        c.Telemetry.StatsWindow,
		PerfWindow:         c.Telemetry.PerfWindow,
		LogStats:           c.Telemetry.LogStats,
		SnapshotOnBookmark: c.Telemetry.SnapshotOnBookmark,
		Clock:              clock,
	}
}

// SpawnOptions returns the scene's spawn options.
func (c *Config) SpawnOptions() engine.SpawnOptions {
	return engine.SpawnOptions{
		Form:    c.Scene.Form,
		Pattern: c.Derived.Pattern,
		Reveal:  c.Derived.Reveal,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
