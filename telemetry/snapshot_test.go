package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	dir := t.TempDir()

	snap := &Snapshot{
		Version: SnapshotVersion,
		RNGSeed: 42,
		Width:   1280,
		Height:  720,
		Frame:   600,
		SimTime: 10,
		Particles: []ParticleState{
			{X: 10, Y: 20, VelX: 1, VelY: -2, Size: 3, Mass: 1, Color: "#00d4ff", Alpha: 1, Life: 1,
				Target: &TargetState{X: 100, Y: 200, Delay: 0.5}},
			{X: 30, Y: 40, Size: 2, Mass: 2, Color: "#ffffff", Alpha: 0.5, Life: 0.3, Decay: 0.1},
		},
		Fields:   []FieldState{{Kind: "vortex", X: 640, Y: 360, Strength: 40, Radius: 360}},
		Bookmark: &Bookmark{Type: BookmarkShapeFormed, Frame: 600},
	}

	path, err := SaveSnapshot(snap, dir)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if filepath.Base(path) != "snapshot_600_shape_formed.json" {
		t.Errorf("unexpected file name %s", filepath.Base(path))
	}

	got, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got.Particles) != 2 || got.Particles[0].Target == nil || got.Particles[1].Target != nil {
		t.Fatalf("particles = %+v", got.Particles)
	}
	if *got.Particles[0].Target != *snap.Particles[0].Target {
		t.Errorf("target = %+v", got.Particles[0].Target)
	}
	if got.Fields[0] != snap.Fields[0] {
		t.Errorf("field = %+v", got.Fields[0])
	}
}

func TestLoadSnapshotVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadSnapshot(path)
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("err = %v, want version error", err)
	}
}
