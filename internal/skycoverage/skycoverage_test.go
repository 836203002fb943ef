package skycoverage

import (
	"testing"
	"time"

	"github.com/vievs/vievssched/internal/geo"
)

func TestNoveltyIsMaximalWithNoPriorPoints(t *testing.T) {
	a := NewArea(0.5, time.Hour, Linear, Linear)
	if got := a.Novelty(geo.AzEl{Az: 0, El: 1}, time.Now()); got != 1 {
		t.Errorf("Novelty with no recorded points = %v, want 1", got)
	}
}

func TestNoveltyDropsToZeroAtSameDirectionAndTime(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewArea(0.5, time.Hour, Linear, Linear)
	a.Record(geo.AzEl{Az: 0, El: 1}, base)

	if got := a.Novelty(geo.AzEl{Az: 0, El: 1}, base); got != 0 {
		t.Errorf("Novelty at the same direction and instant = %v, want 0", got)
	}
}

func TestNoveltyRecoversWithDistanceAndElapsedTime(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewArea(0.1, time.Hour, Linear, Linear)
	a.Record(geo.AzEl{Az: 0, El: 1}, base)

	far := a.Novelty(geo.AzEl{Az: 3, El: 1}, base)
	if far != 1 {
		t.Errorf("Novelty far beyond influence distance = %v, want 1", far)
	}

	later := a.Novelty(geo.AzEl{Az: 0, El: 1}, base.Add(2*time.Hour))
	if later != 1 {
		t.Errorf("Novelty well beyond influence interval = %v, want 1", later)
	}
}

func TestRecordPrunesPointsOlderThanInfluenceInterval(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewArea(0.5, 10*time.Minute, Linear, Linear)
	a.Record(geo.AzEl{Az: 0, El: 1}, base)
	a.Record(geo.AzEl{Az: 0, El: 1}, base.Add(time.Hour)) // prunes the first point

	if len(a.points) != 1 {
		t.Fatalf("expected the stale point to be pruned, got %d points", len(a.points))
	}
}

func TestKernelValueBoundaries(t *testing.T) {
	for _, k := range []Kernel{Linear, Cosine, Constant} {
		if v := k.value(0); v != 1 {
			t.Errorf("%v.value(0) = %v, want 1", k, v)
		}
		if v := k.value(1); v != 0 {
			t.Errorf("%v.value(1) = %v, want 0", k, v)
		}
	}
}
