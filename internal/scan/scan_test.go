package scan

import (
	"testing"
	"time"

	"github.com/vievs/vievssched/internal/catalog"
)

func mkTiming(id catalog.StationID, start time.Time, dur time.Duration) StationTiming {
	return StationTiming{
		Station:        id,
		ObservingStart: start,
		ObservingEnd:   start.Add(dur),
	}
}

func TestScanObservingStartEndUseLimitingStation(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := &Scan{Stations: []StationTiming{
		mkTiming(1, base, 5*time.Minute),
		mkTiming(2, base.Add(time.Minute), 2*time.Minute),
	}}

	if got, want := s.ObservingStart(), base.Add(time.Minute); !got.Equal(want) {
		t.Errorf("ObservingStart = %v, want %v (max of station starts)", got, want)
	}
	if got, want := s.ObservingEnd(), base.Add(3*time.Minute); !got.Equal(want) {
		t.Errorf("ObservingEnd = %v, want %v (min of station ends)", got, want)
	}
}

func TestScanStationIDsPreservesOrder(t *testing.T) {
	s := &Scan{Stations: []StationTiming{{Station: 3}, {Station: 1}, {Station: 2}}}
	ids := s.StationIDs()
	want := []catalog.StationID{3, 1, 2}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("StationIDs()[%d] = %d, want %d", i, ids[i], id)
		}
	}
}

func TestScanTimingLooksUpByStation(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := &Scan{Stations: []StationTiming{mkTiming(1, base, time.Minute), mkTiming(2, base, time.Minute)}}

	if _, ok := s.Timing(2); !ok {
		t.Fatalf("expected to find timing for station 2")
	}
	if _, ok := s.Timing(99); ok {
		t.Fatalf("expected no timing for an absent station")
	}
}

func TestTagString(t *testing.T) {
	cases := map[Tag]string{
		Standard:          "standard",
		FillIn:            "fillin",
		Calibrator:        "calibrator",
		HighImpact:        "high-impact",
		AstrometricCorner: "astrometric-corner",
	}
	for tag, want := range cases {
		if got := tag.String(); got != want {
			t.Errorf("Tag(%d).String() = %q, want %q", tag, got, want)
		}
	}
}
