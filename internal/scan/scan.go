// Package scan holds the Scan/Observation/PointingVector types of spec §3,
// modeled with the arena-plus-index pattern of spec §9: Scans live in a
// flat slice owned by the Schedule, Observations hold integer station
// indices rather than pointers, nothing owns another via back-reference.
package scan

import (
	"time"

	"github.com/vievs/vievssched/internal/catalog"
)

// Tag classifies a Scan per spec §3.
type Tag int

const (
	Standard Tag = iota
	FillIn
	Calibrator
	HighImpact
	AstrometricCorner
)

func (t Tag) String() string {
	switch t {
	case Standard:
		return "standard"
	case FillIn:
		return "fillin"
	case Calibrator:
		return "calibrator"
	case HighImpact:
		return "high-impact"
	case AstrometricCorner:
		return "astrometric-corner"
	default:
		return "unknown"
	}
}

// PointingVector is (station, source, epoch, az/el, wrap section, optional
// hour-angle/declination) per spec §3. Mutable only during construction;
// once attached to a committed Scan it must not be mutated.
type PointingVector struct {
	Station catalog.StationID
	Source  catalog.SourceID
	Epoch   time.Time

	AzRad       float64
	ElRad       float64
	Axis1Rad    float64 // wrap-adjusted unwrap-section value
	Section     catalog.WrapSection
	HourAngleRad *float64
	DecRad       *float64
}

// StationTiming holds the bracketing timestamps of one station's
// participation in a Scan (spec §3).
type StationTiming struct {
	Station catalog.StationID

	SlewStart    time.Time
	SlewEnd      time.Time
	IdleEnd      time.Time
	PreobEnd     time.Time
	ObservingStart time.Time
	ObservingEnd   time.Time
	PostobEnd      time.Time

	Pointing PointingVector
}

// Observation is one baseline's contribution inside a Scan (spec §3):
// integer station indices, no back-pointer to the owning Scan.
type Observation struct {
	StationA, StationB catalog.StationID
	Band               string
	Duration           time.Duration
}

// Scan is an ordered collection of PointingVectors at a single source
// (spec §3). Index is this scan's position in the owning Schedule's flat
// slice, set once on commit and never reordered afterwards (fill-in
// insertion only inserts, it never reorders committed scans' times).
type Scan struct {
	Index  int
	Source catalog.SourceID
	Tag    Tag

	Stations     []StationTiming
	Observations []Observation
}

// ObservingStart returns the max over participating stations of
// observing-start (spec §3's invariant definition).
func (s *Scan) ObservingStart() time.Time {
	var max time.Time
	for _, st := range s.Stations {
		if st.ObservingStart.After(max) {
			max = st.ObservingStart
		}
	}
	return max
}

// ObservingEnd returns the min over participating stations of
// observing-end: a scan's usable duration is bounded by whichever station
// must stop earliest.
func (s *Scan) ObservingEnd() time.Time {
	var min time.Time
	for i, st := range s.Stations {
		if i == 0 || st.ObservingEnd.Before(min) {
			min = st.ObservingEnd
		}
	}
	return min
}

// StationIDs returns the participating station IDs, in Stations order.
func (s *Scan) StationIDs() []catalog.StationID {
	ids := make([]catalog.StationID, len(s.Stations))
	for i, st := range s.Stations {
		ids[i] = st.Station
	}
	return ids
}

// Timing returns the StationTiming for the given station, if present.
func (s *Scan) Timing(id catalog.StationID) (StationTiming, bool) {
	for _, st := range s.Stations {
		if st.Station == id {
			return st, true
		}
	}
	return StationTiming{}, false
}
