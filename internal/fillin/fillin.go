// Package fillin implements component C12: inserting short fill-in scans
// into gaps left by the main selection, both during the main selection
// pass and in an a-posteriori sweep over the finished schedule (spec
// §4.6 step 5).
package fillin

import (
	"time"

	"github.com/vievs/vievssched/internal/candidate"
	"github.com/vievs/vievssched/internal/catalog"
)

// Options controls which fill-in passes run (spec §9's two configured
// fill-in modes, carried in internal/config.FillinOptions).
type Options struct {
	DuringSelection bool
	APosteriori     bool
	MinGap          time.Duration
	MinStations     int
}

// Gap is an idle interval at one or more stations between committed scans.
type Gap struct {
	Stations []catalog.StationID
	Start    time.Time
	End      time.Time
}

func (g Gap) Duration() time.Duration { return g.End.Sub(g.Start) }

// Admissible reports whether cand fits inside gap: every one of cand's
// stations must be a station idle during the gap, each of those stations'
// slew-end must fall within the gap, and the gap
// must be at least MinGap long with at least MinStations idle stations
// (spec §4.6 step 5's fill-in admissibility rule).
func Admissible(cand *candidate.Candidate, gap Gap, opts Options) bool {
	if gap.Duration() < opts.MinGap {
		return false
	}
	if opts.MinStations > 0 && len(gap.Stations) < opts.MinStations {
		return false
	}
	idle := make(map[catalog.StationID]bool, len(gap.Stations))
	for _, id := range gap.Stations {
		idle[id] = true
	}
	count := 0
	for _, ss := range cand.Stations {
		if !idle[ss.Station] {
			return false
		}
		if ss.SlewEnd.Before(gap.Start) || ss.SlewEnd.After(gap.End) {
			return false
		}
		count++
	}
	return count >= opts.MinStations || (opts.MinStations == 0 && count > 0)
}

// FindGaps scans a sorted list of per-station busy intervals and returns
// the idle gaps of at least MinGap duration, used by the a-posteriori
// pass (spec §4.6 step 5: "a final sweep inspects the committed schedule
// for any gap the main pass left unfilled").
func FindGaps(busy map[catalog.StationID][]Interval, sessionEnd time.Time, minGap time.Duration) []Gap {
	var gaps []Gap
	for id, intervals := range busy {
		cursor := time.Time{}
		for _, iv := range intervals {
			if !cursor.IsZero() && iv.Start.Sub(cursor) >= minGap {
				gaps = append(gaps, Gap{Stations: []catalog.StationID{id}, Start: cursor, End: iv.Start})
			}
			if iv.End.After(cursor) {
				cursor = iv.End
			}
		}
		if !cursor.IsZero() && sessionEnd.Sub(cursor) >= minGap {
			gaps = append(gaps, Gap{Stations: []catalog.StationID{id}, Start: cursor, End: sessionEnd})
		}
	}
	return gaps
}

// Interval is a busy time range for one station.
type Interval struct {
	Start, End time.Time
}
