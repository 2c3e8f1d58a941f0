package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseInput)
		pc.StartPhase(PhasePhysics)
		pc.EndStep()
		pc.RecordPhase(PhaseInput, time.Millisecond)
		pc.RecordPhase(PhasePhysics, 9*time.Millisecond)
	}

	stats := pc.Stats()
	if stats.AvgStepDuration < 10*time.Millisecond {
		t.Errorf("avg step duration = %v, want at least 10ms", stats.AvgStepDuration)
	}
	for _, phase := range []string{PhaseInput, PhasePhysics} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected %s phase to be tracked", phase)
		}
	}
	if stats.PhasePct[PhasePhysics] <= stats.PhasePct[PhaseInput] {
		t.Errorf("physics %v%% <= input %v%%", stats.PhasePct[PhasePhysics], stats.PhasePct[PhaseInput])
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	for i := 0; i < 10; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseCleanup)
		pc.EndStep()
	}
	if pc.sampleCount != 5 {
		t.Errorf("sampleCount = %d, want window size 5", pc.sampleCount)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(10).Stats()
	if stats.AvgStepDuration != 0 {
		t.Error("expected zero avg step duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	s := PerfStats{
		AvgStepDuration: 2 * time.Millisecond,
		PhasePct:        map[string]float64{PhaseHoming: 25, PhaseRender: 40},
	}
	row := s.ToCSV(120)
	if row.WindowEnd != 120 || row.AvgStepUS != 2000 {
		t.Errorf("row = %+v", row)
	}
	if row.HomingPct != 25 || row.RenderPct != 40 || row.PhysicsPct != 0 {
		t.Errorf("phase columns = %+v", row)
	}
}

func TestPerfCollectorRecordPhase(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.RecordPhase(PhaseRender, time.Millisecond) // no step yet, ignored

	pc.StartStep()
	pc.StartPhase(PhasePhysics)
	pc.EndStep()
	pc.RecordPhase(PhaseRender, 2*time.Millisecond)

	stats := pc.Stats()
	if stats.PhaseAvg[PhaseRender] != 2*time.Millisecond {
		t.Errorf("render avg = %v, want 2ms", stats.PhaseAvg[PhaseRender])
	}
	if stats.AvgStepDuration < 2*time.Millisecond {
		t.Errorf("step duration %v should include the render phase", stats.AvgStepDuration)
	}
}
