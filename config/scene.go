package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/swarm/engine"
	"github.com/pthm-cable/swarm/shape"
)

// SpawnScene spawns the configured startup shape into e and applies the
// scene preset. An SVG path takes precedence over text.
func (c *Config) SpawnScene(e *engine.Engine) error {
	opts := c.SpawnOptions()

	var (
		n   int
		err error
	)
	switch {
	case c.Scene.SVG != "":
		f, ferr := os.Open(c.Scene.SVG)
		if ferr != nil {
			return fmt.Errorf("opening scene svg: %w", ferr)
		}
		defer f.Close()
		n, err = e.SpawnSVG(f, shape.SVGOptions{}, c.Scene.Fill, opts)
	case c.Scene.Text != "":
		n, err = e.SpawnText(c.Scene.Text, shape.FontSpec{}, c.Derived.Mode, opts)
	}
	if err != nil {
		return fmt.Errorf("spawning scene: %w", err)
	}

	if c.Derived.HasPreset {
		e.ApplyPreset(c.Derived.Preset, engine.DefaultPresetOptions(c.Derived.Preset))
	}
	slog.Info("scene spawned", "particles", n, "preset", c.Scene.Preset)
	return nil
}
