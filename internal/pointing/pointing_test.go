package pointing

import (
	"math"
	"testing"
	"time"

	"github.com/vievs/vievssched/internal/astro"
	"github.com/vievs/vievssched/internal/catalog"
)

func station() *catalog.Station {
	return &catalog.Station{
		Name:            "A",
		LonRad:          0,
		LatRad:          52 * math.Pi / 180,
		MinElevationRad: 5 * math.Pi / 180,
	}
}

func TestEvaluateRejectsBelowHorizonMask(t *testing.T) {
	st := station()
	st.Horizon = denyAll{}
	src := &catalog.Source{Name: "S", RARad: 1, DecRad: 0.5}
	_, err := Evaluate(st, src, time.Date(2020, 6, 21, 12, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatalf("expected rejection from horizon mask")
	}
}

func TestEvaluateRejectsBelowElevationFloor(t *testing.T) {
	st := station()
	st.MinElevationRad = 89 * math.Pi / 180 // nearly impossible to satisfy
	src := &catalog.Source{Name: "S", RARad: 1, DecRad: -0.9}
	_, err := Evaluate(st, src, time.Date(2020, 6, 21, 12, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatalf("expected rejection from elevation floor")
	}
}

func TestEvaluateSucceedsForVisibleSource(t *testing.T) {
	st := station()
	now := time.Date(2020, 6, 21, 22, 0, 0, 0, time.UTC)
	// Place the source at zenith for this station/epoch (hour angle zero,
	// declination equal to station latitude), which guarantees elevation
	// near 90 degrees regardless of date; at 52N the sun never approaches
	// zenith, so the sun-separation check cannot trigger either.
	ra := astro.LocalApparentSiderealTime(now, st.LonRad)
	src := &catalog.Source{Name: "S", RARad: ra, DecRad: st.LatRad}
	pv, err := Evaluate(st, src, now)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if pv.HourAngleRad == nil || pv.DecRad == nil {
		t.Fatalf("expected hour angle and declination populated")
	}
	if pv.ElRad < 85*math.Pi/180 {
		t.Fatalf("expected near-zenith elevation, got %.2f deg", pv.ElRad*180/math.Pi)
	}
}

type denyAll struct{}

func (denyAll) Visible(az, el float64) bool { return false }
