// Package candidate implements component C9: turning the current
// scheduler state into a list of feasible Candidate scans for the greedy
// planner to score (spec §4.6 step 1).
package candidate

import (
	"time"

	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/kinematics"
	"github.com/vievs/vievssched/internal/pointing"
)

// StationStart is the earliest-feasible-start projection for one station
// joining a candidate scan: when its slew would complete and what pointing
// it would arrive at (spec §4.6 step 1: "project each station's earliest
// feasible start forward from its current committed time").
type StationStart struct {
	Station        catalog.StationID
	SlewEnd        time.Time
	Pointing       kinematics.Pointing
	IdleBeforeSlew time.Duration
}

// Candidate is one feasible (source, station-subset) pairing the planner
// may choose to commit.
type Candidate struct {
	Source   catalog.SourceID
	Stations []StationStart
}

// Options bounds candidate admissibility (spec §4.6 step 1 rejections).
type Options struct {
	MinStations      int
	MaxSlew          time.Duration
	MaxWait          time.Duration
	MinRepeat        time.Duration
}

// Enumerate builds one Candidate for src given the current per-station
// pointing/clock state, rejecting stations that are excluded/required-out,
// whose slew exceeds MaxSlew, whose wait exceeds MaxWait, or that fail the
// fast pointing check; the candidate itself is rejected if fewer than
// MinStations remain or the source's MinRepeat has not elapsed.
func Enumerate(stations []*catalog.Station, src *catalog.Source, now time.Time, opts Options) (*Candidate, bool) {
	if !src.State.LastObserved.IsZero() && now.Sub(src.State.LastObserved) < src.MinRepeat {
		return nil, false
	}

	var starts []StationStart
	for _, st := range stations {
		if excluded(src.ExcludedStations, st.ID) {
			continue
		}
		if !pointing.Fast(st, src, now) {
			continue
		}

		current := kinematics.Pointing{Axis1Rad: st.State.WrapValueRad, Section: st.State.CurrentWrap}
		p, slewTime, err := kinematics.Slew(st, current, src.RARad, src.DecRad, now, kinematics.UnwrapNear, st.State.CurrentWrap)
		if err != nil {
			continue
		}
		if opts.MaxSlew > 0 && slewTime > opts.MaxSlew {
			continue
		}

		wait := time.Duration(0)
		if st.State.CommittedUntil.After(now) {
			wait = st.State.CommittedUntil.Sub(now)
		}
		if opts.MaxWait > 0 && wait > opts.MaxWait {
			continue
		}

		starts = append(starts, StationStart{
			Station:        st.ID,
			SlewEnd:        now.Add(wait).Add(slewTime),
			Pointing:       p,
			IdleBeforeSlew: wait,
		})
	}

	if opts.MinStations > 0 && len(starts) < opts.MinStations {
		return nil, false
	}
	if len(starts) < 1 {
		return nil, false
	}
	for _, req := range src.RequiredStations {
		if !containsStart(starts, req) {
			return nil, false
		}
	}
	return &Candidate{Source: src.ID, Stations: starts}, true
}

func containsStart(starts []StationStart, id catalog.StationID) bool {
	for _, s := range starts {
		if s.Station == id {
			return true
		}
	}
	return false
}

func excluded(ids []catalog.StationID, id catalog.StationID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
