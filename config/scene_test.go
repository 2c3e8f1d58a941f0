package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/swarm/engine"
)

func TestSpawnScene(t *testing.T) {
	svgPath := filepath.Join(t.TempDir(), "box.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><rect x="10" y="10" width="80" height="80"/></svg>`
	if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		scene      string
		wantFields bool
		wantErr    bool
	}{
		{"text", "scene:\n  text: HI\n", false, false},
		{"svg with preset", "scene:\n  svg: " + svgPath + "\n  preset: explosion\n", true, false},
		{"missing svg", "scene:\n  svg: /nonexistent/shape.svg\n", false, true},
		{"nothing", "scene:\n  text: \"\"\n", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.scene))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			eng := engine.New(cfg.EngineConfig(nil))

			err = cfg.SpawnScene(eng)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SpawnScene error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.Scene.Text != "" || cfg.Scene.SVG != "" {
				if eng.Count() == 0 {
					t.Error("expected particles to be spawned")
				}
			} else if eng.Count() != 0 {
				t.Errorf("empty scene spawned %d particles", eng.Count())
			}
			if got := eng.Physics().State().Fields > 0; got != tt.wantFields {
				t.Errorf("fields present = %v, want %v", got, tt.wantFields)
			}
		})
	}
}
