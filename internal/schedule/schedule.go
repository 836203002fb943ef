// Package schedule holds the Schedule type of spec §3: the ordered
// sequence of committed Scans together with the final mutable
// station/source state at session end, plus the statistics-line and
// multi-schedule-summary outputs of spec §6.
package schedule

import (
	"fmt"
	"io"
	"time"

	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/scan"
)

// Schedule is the sequence of committed Scans in strict observing-start
// order, together with the Station/Source arena the scans index into
// (spec §3, §9's arena-plus-index pattern).
type Schedule struct {
	SessionStart time.Time
	SessionEnd   time.Time

	Scans []*scan.Scan

	Stations []*catalog.Station
	Sources  []*catalog.Source

	// ExitReason records why the build stopped, for the multi-schedule
	// summary (spec §6): "session-end", "no-feasible-scan", or a fatal
	// error's message.
	ExitReason string
}

// Commit appends s to the Schedule (scans are appended monotonically and
// never reordered after commit, spec §3) and updates every participating
// station's and the scanned source's mutable state.
func (sch *Schedule) Commit(s *scan.Scan) {
	s.Index = len(sch.Scans)
	sch.Scans = append(sch.Scans, s)

	for _, st := range s.Stations {
		station := sch.Station(st.Station)
		if station == nil {
			continue
		}
		station.State.CurrentPointing = catalog.AzEl{Az: st.Pointing.AzRad, El: st.Pointing.ElRad}
		station.State.WrapValueRad = st.Pointing.Axis1Rad
		station.State.CurrentWrap = st.Pointing.Section
		station.State.LastScanEnd = st.ObservingEnd
		station.State.CommittedUntil = st.PostobEnd
		station.State.CumulativeObs += st.ObservingEnd.Sub(st.ObservingStart)
		station.State.NumberOfScans++
		station.State.FirstScan = false
	}

	src := sch.Source(s.Source)
	if src != nil {
		src.State.LastObserved = s.ObservingStart()
		src.State.NumberOfObservations++
		src.State.ObservedBy = append(src.State.ObservedBy, s.StationIDs()...)
	}
}

// Station looks up a Station by ID in the schedule's arena.
func (sch *Schedule) Station(id catalog.StationID) *catalog.Station {
	for _, s := range sch.Stations {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Source looks up a Source by ID in the schedule's arena.
func (sch *Schedule) Source(id catalog.SourceID) *catalog.Source {
	for _, s := range sch.Sources {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ObservationCount returns the total number of Observations across every
// committed Scan (one per baseline per scan).
func (sch *Schedule) ObservationCount() int {
	n := 0
	for _, s := range sch.Scans {
		n += len(s.Observations)
	}
	return n
}

// StationObservationCounts returns, per station, the number of committed
// scans it participated in.
func (sch *Schedule) StationObservationCounts() map[catalog.StationID]int {
	out := make(map[catalog.StationID]int, len(sch.Stations))
	for _, s := range sch.Scans {
		for _, st := range s.Stations {
			out[st.Station]++
		}
	}
	return out
}

// BaselineObservationCounts returns, per canonical baseline key, the
// number of Observations recorded against it.
func (sch *Schedule) BaselineObservationCounts() map[[2]catalog.StationID]int {
	out := map[[2]catalog.StationID]int{}
	for _, s := range sch.Scans {
		for _, o := range s.Observations {
			a, b := catalog.Key(o.StationA, o.StationB)
			out[[2]catalog.StationID{a, b}]++
		}
	}
	return out
}

// EarliestProjectedStart returns the minimum over every station's
// committed-until time, used by the planner to decide whether any station
// could still possibly start a new scan before SessionEnd (spec §4.11's
// termination condition).
func (sch *Schedule) EarliestProjectedStart() time.Time {
	var min time.Time
	for i, st := range sch.Stations {
		if i == 0 || st.State.CommittedUntil.Before(min) {
			min = st.State.CommittedUntil
		}
	}
	return min
}

// StatisticsHeader writes the CSV column header for one schedule's
// statistics line (spec §6: "a statistics line per schedule"): scan and
// observation counts, the session window and the exit reason. Its columns
// are separate from config.StatisticsHeader's weight-and-outcome columns.
func StatisticsHeader(w io.Writer) {
	fmt.Fprintln(w, "n_scans,n_observations,session_start,session_end,exit_reason")
}

// StatisticsRow writes one CSV row describing sch, matching the column
// order of StatisticsHeader.
func StatisticsRow(w io.Writer, sch *Schedule) {
	fmt.Fprintf(w, "%d,%d,%s,%s,%s\n",
		len(sch.Scans), sch.ObservationCount(),
		sch.SessionStart.Format(time.RFC3339), sch.SessionEnd.Format(time.RFC3339),
		sch.ExitReason)
}
