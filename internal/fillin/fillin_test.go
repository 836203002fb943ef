package fillin

import (
	"testing"
	"time"

	"github.com/vievs/vievssched/internal/candidate"
	"github.com/vievs/vievssched/internal/catalog"
)

func TestFindGapsReportsIdleIntervalsAboveMinGap(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	busy := map[catalog.StationID][]Interval{
		1: {
			{Start: base, End: base.Add(10 * time.Minute)},
			{Start: base.Add(30 * time.Minute), End: base.Add(40 * time.Minute)},
		},
	}
	sessionEnd := base.Add(time.Hour)

	gaps := FindGaps(busy, sessionEnd, 15*time.Minute)
	if len(gaps) != 2 {
		t.Fatalf("expected two gaps (mid-session and trailing), got %d: %+v", len(gaps), gaps)
	}
	if !gaps[0].Start.Equal(base.Add(10 * time.Minute)) {
		t.Errorf("first gap should start at the end of the first busy interval, got %v", gaps[0].Start)
	}
	if !gaps[1].End.Equal(sessionEnd) {
		t.Errorf("trailing gap should extend to session end, got %v", gaps[1].End)
	}
}

func TestFindGapsOmitsGapsBelowMinGap(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	busy := map[catalog.StationID][]Interval{
		1: {
			{Start: base, End: base.Add(10 * time.Minute)},
			{Start: base.Add(12 * time.Minute), End: base.Add(20 * time.Minute)},
		},
	}
	gaps := FindGaps(busy, base.Add(20*time.Minute), 15*time.Minute)
	if len(gaps) != 0 {
		t.Fatalf("expected no gaps below MinGap, got %+v", gaps)
	}
}

func TestAdmissibleRequiresStationIdleAndWithinGap(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	gap := Gap{Stations: []catalog.StationID{1, 2}, Start: base, End: base.Add(20 * time.Minute)}
	opts := Options{MinGap: 10 * time.Minute, MinStations: 2}

	cand := &candidate.Candidate{Stations: []candidate.StationStart{
		{Station: 1, SlewEnd: base.Add(5 * time.Minute)},
		{Station: 2, SlewEnd: base.Add(6 * time.Minute)},
	}}
	if !Admissible(cand, gap, opts) {
		t.Fatalf("expected candidate with both stations idle and within the gap to be admissible")
	}

	late := &candidate.Candidate{Stations: []candidate.StationStart{
		{Station: 1, SlewEnd: base.Add(5 * time.Minute)},
		{Station: 2, SlewEnd: base.Add(30 * time.Minute)}, // outside the gap
	}}
	if Admissible(late, gap, opts) {
		t.Fatalf("expected candidate with a station slewing past the gap to be inadmissible")
	}
}

func TestAdmissibleRejectsShortGap(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	gap := Gap{Stations: []catalog.StationID{1}, Start: base, End: base.Add(time.Minute)}
	opts := Options{MinGap: 10 * time.Minute}
	cand := &candidate.Candidate{Stations: []candidate.StationStart{{Station: 1, SlewEnd: base.Add(30 * time.Second)}}}

	if Admissible(cand, gap, opts) {
		t.Fatalf("expected a gap shorter than MinGap to reject every candidate")
	}
}
