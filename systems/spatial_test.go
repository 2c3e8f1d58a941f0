package systems

import (
	"sort"
	"testing"

	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/vmath"
)

func TestSpatialGridNeighbors(t *testing.T) {
	g := NewSpatialGrid(200, 200, 50)
	g.Insert(0, vmath.V(10, 10))   // cell (0,0)
	g.Insert(1, vmath.V(60, 60))   // cell (1,1)
	g.Insert(2, vmath.V(110, 110)) // cell (2,2)
	g.Insert(3, vmath.V(190, 10))  // cell (3,0)

	tests := []struct {
		name string
		pos  vmath.Vec
		want []int
	}{
		{"corner", vmath.V(5, 5), []int{0, 1}},
		{"centre", vmath.V(75, 75), []int{0, 1, 2}},
		{"far corner", vmath.V(190, 190), []int{2}},
		{"outside clamps to edge", vmath.V(-40, -40), []int{0, 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []int
			g.Neighbors(tc.pos, func(idx int) bool {
				got = append(got, idx)
				return true
			})
			sort.Ints(got)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestSpatialGridRebuildSkipsInactive(t *testing.T) {
	ps := []*particle.Particle{
		particle.New(vmath.V(10, 10), particle.Options{}),
		particle.New(vmath.V(20, 20), particle.Options{}),
		particle.New(vmath.V(30, 30), particle.Options{}),
	}
	ps[1].Destroy()

	g := NewSpatialGrid(0, 0, 50)
	g.Rebuild(ps, particle.Bounds{Width: 100, Height: 100})
	if g.Count() != 2 {
		t.Errorf("count = %d, want 2", g.Count())
	}

	g.Clear()
	if g.Count() != 0 {
		t.Errorf("count after clear = %d", g.Count())
	}
}

func TestSpatialGridEarlyStop(t *testing.T) {
	g := NewSpatialGrid(100, 100, 50)
	for i := 0; i < 10; i++ {
		g.Insert(i, vmath.V(5, 5))
	}
	calls := 0
	g.Neighbors(vmath.V(5, 5), func(int) bool {
		calls++
		return calls < 3
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
