package candidate

import (
	"math"
	"testing"
	"time"

	"github.com/vievs/vievssched/internal/catalog"
)

func makeStation(id catalog.StationID, name string) *catalog.Station {
	return &catalog.Station{
		ID:              id,
		Name:            name,
		LonRad:          0,
		LatRad:          52 * math.Pi / 180,
		MinElevationRad: -math.Pi, // permissive for these tests
		Mount:           catalog.MountAzEl,
		Axis1:           catalog.Axis{RateRadPerSec: math.Pi, Overhead: time.Second, LowerRad: -4 * math.Pi, UpperRad: 4 * math.Pi},
		Axis2:           catalog.Axis{RateRadPerSec: math.Pi, Overhead: time.Second, LowerRad: -math.Pi / 2, UpperRad: math.Pi / 2},
		Wraps:           []catalog.WrapLimits{{Section: catalog.WrapNeutral, LowerRad: -4 * math.Pi, UpperRad: 4 * math.Pi}},
	}
}

func TestEnumerateRejectsWhenBelowMinStations(t *testing.T) {
	now := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)
	stations := []*catalog.Station{makeStation(1, "A")}
	src := &catalog.Source{ID: 1, Name: "S", RARad: 1, DecRad: 0.5}
	_, ok := Enumerate(stations, src, now, Options{MinStations: 2})
	if ok {
		t.Fatalf("expected rejection: only one station available but MinStations=2")
	}
}

func TestEnumerateRejectsBeforeMinRepeatElapsed(t *testing.T) {
	now := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)
	stations := []*catalog.Station{makeStation(1, "A")}
	src := &catalog.Source{ID: 1, Name: "S", RARad: 1, DecRad: 0.5, MinRepeat: time.Hour}
	src.State.LastObserved = now.Add(-10 * time.Minute)
	_, ok := Enumerate(stations, src, now, Options{MinStations: 1})
	if ok {
		t.Fatalf("expected rejection: min-repeat interval has not elapsed")
	}
}

func TestEnumerateRejectsMissingRequiredStation(t *testing.T) {
	now := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)
	stations := []*catalog.Station{makeStation(1, "A")}
	src := &catalog.Source{ID: 1, Name: "S", RARad: 1, DecRad: 0.5, RequiredStations: []catalog.StationID{2}}
	_, ok := Enumerate(stations, src, now, Options{MinStations: 1})
	if ok {
		t.Fatalf("expected rejection: required station 2 never present")
	}
}
