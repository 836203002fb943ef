package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/scan"
)

func newFixture() *Schedule {
	return &Schedule{
		Stations: []*catalog.Station{
			{ID: 1, Name: "STA", State: catalog.StationState{FirstScan: true}},
			{ID: 2, Name: "STB", State: catalog.StationState{FirstScan: true}},
		},
		Sources: []*catalog.Source{{ID: 1, Name: "SRC"}},
	}
}

func TestCommitUpdatesStationAndSourceState(t *testing.T) {
	sch := newFixture()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	s := &scan.Scan{
		Source: 1,
		Stations: []scan.StationTiming{
			{Station: 1, ObservingStart: base, ObservingEnd: base.Add(time.Minute), PostobEnd: base.Add(90 * time.Second)},
			{Station: 2, ObservingStart: base, ObservingEnd: base.Add(time.Minute), PostobEnd: base.Add(90 * time.Second)},
		},
		Observations: []scan.Observation{{StationA: 1, StationB: 2, Band: "X", Duration: time.Minute}},
	}
	sch.Commit(s)

	if len(sch.Scans) != 1 || sch.Scans[0].Index != 0 {
		t.Fatalf("expected one committed scan at index 0, got %+v", sch.Scans)
	}
	st := sch.Station(1)
	if st.State.NumberOfScans != 1 {
		t.Errorf("station 1 NumberOfScans = %d, want 1", st.State.NumberOfScans)
	}
	if st.State.FirstScan {
		t.Errorf("station 1 FirstScan should be cleared after commit")
	}
	src := sch.Source(1)
	if src.State.NumberOfObservations != 1 {
		t.Errorf("source NumberOfObservations = %d, want 1", src.State.NumberOfObservations)
	}
	if len(src.State.ObservedBy) != 2 {
		t.Errorf("source ObservedBy = %v, want 2 entries", src.State.ObservedBy)
	}
}

func TestObservationAndBaselineCounts(t *testing.T) {
	sch := newFixture()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mkScan := func(start time.Time) *scan.Scan {
		return &scan.Scan{
			Source: 1,
			Stations: []scan.StationTiming{
				{Station: 1, ObservingStart: start, ObservingEnd: start.Add(time.Minute)},
				{Station: 2, ObservingStart: start, ObservingEnd: start.Add(time.Minute)},
			},
			Observations: []scan.Observation{{StationA: 2, StationB: 1, Band: "X"}},
		}
	}
	sch.Commit(mkScan(base))
	sch.Commit(mkScan(base.Add(time.Hour)))

	if n := sch.ObservationCount(); n != 2 {
		t.Errorf("ObservationCount = %d, want 2", n)
	}
	counts := sch.BaselineObservationCounts()
	if counts[[2]catalog.StationID{1, 2}] != 2 {
		t.Errorf("baseline (1,2) count = %d, want 2 (canonical key regardless of A/B order)", counts[[2]catalog.StationID{1, 2}])
	}
	stationCounts := sch.StationObservationCounts()
	if stationCounts[1] != 2 || stationCounts[2] != 2 {
		t.Errorf("station observation counts = %v, want both stations at 2", stationCounts)
	}
}

func TestStatisticsRowMatchesHeaderColumns(t *testing.T) {
	sch := newFixture()
	sch.SessionStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sch.SessionEnd = sch.SessionStart.Add(time.Hour)
	sch.ExitReason = "session-end"

	var buf strings.Builder
	StatisticsHeader(&buf)
	StatisticsRow(&buf, sch)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + one row, got %d lines", len(lines))
	}
	header := strings.Split(lines[0], ",")
	row := strings.Split(lines[1], ",")
	if len(header) != len(row) {
		t.Fatalf("header has %d columns, row has %d", len(header), len(row))
	}
	if !strings.Contains(lines[1], "session-end") {
		t.Errorf("row %q should carry the exit reason", lines[1])
	}
}
