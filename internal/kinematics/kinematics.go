// Package kinematics implements component C2: per-station slew-time over a
// two-axis mount with cable-wrap sections (spec §4.1).
package kinematics

import (
	"math"
	"time"

	"github.com/vievs/vievssched/internal/astro"
	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/schederr"
)

// UnwrapPolicy selects how a wrap-ambiguous primary-axis candidate is
// chosen among the admissible ones (spec §4.1 step 3).
type UnwrapPolicy int

const (
	// UnwrapNear picks the candidate whose primary-axis value is closest
	// to the station's current value.
	UnwrapNear UnwrapPolicy = iota
	// UnwrapInSection picks the candidate inside a named section.
	UnwrapInSection
)

// Pointing is a resolved mount-coordinate pointing: axis-1 value already
// wrap-adjusted, axis-2 value, and the section it was unwrapped into.
type Pointing struct {
	Axis1Rad float64
	Axis2Rad float64
	Section  catalog.WrapSection
}

// mountCoordinates converts (ra, dec, t) to (axis1, axis2) for the
// station's mount type, per spec §4.1 step 1.
func mountCoordinates(st *catalog.Station, ra, dec float64, t time.Time) (axis1, axis2 float64) {
	switch st.Mount {
	case catalog.MountAzEl:
		return astro.TopocentricAzEl(ra, dec, st.LonRad, st.LatRad, t)
	case catalog.MountHaDec:
		lst := astro.LocalApparentSiderealTime(t, st.LonRad)
		ha := astro.HourAngle(lst, ra)
		return ha, dec
	case catalog.MountXY:
		// XY mount: axis1 = rotated azimuth (90 deg offset), axis2 = elevation,
		// as the standard XY/turnstile 90-degree-rotation convention (spec §4.1).
		az, el := astro.TopocentricAzEl(ra, dec, st.LonRad, st.LatRad, t)
		return az - math.Pi/2, el
	default:
		return 0, 0
	}
}

// candidates enumerates up to three unwrapped axis-1 values, one per
// cable-wrap section, discarding any out of that section's limits
// (spec §4.1 step 2).
func candidates(st *catalog.Station, axis1 float64) []Pointing {
	var out []Pointing
	for _, w := range st.Wraps {
		v := unwrapInto(axis1, w)
		if v < w.LowerRad || v > w.UpperRad {
			continue
		}
		out = append(out, Pointing{Axis1Rad: v, Section: w.Section})
	}
	return out
}

// unwrapInto returns the representative of axis1 (mod 2*pi) that falls
// nearest the midpoint of section w's limits.
func unwrapInto(axis1 float64, w catalog.WrapLimits) float64 {
	mid := (w.LowerRad + w.UpperRad) / 2
	v := axis1
	for v < mid-math.Pi {
		v += 2 * math.Pi
	}
	for v > mid+math.Pi {
		v -= 2 * math.Pi
	}
	return v
}

// axisTime returns overhead + |delta|/rate for one axis move.
func axisTime(a catalog.Axis, delta float64) time.Duration {
	if a.RateRadPerSec <= 0 {
		return a.Overhead
	}
	secs := math.Abs(delta) / a.RateRadPerSec
	return a.Overhead + time.Duration(secs*float64(time.Second))
}

// Slew implements spec §4.1: computes the mount coordinates of (ra, dec) at
// epoch t, enumerates admissible cable-wrap candidates, and returns the
// chosen pointing and the time required to reach it from current.
func Slew(st *catalog.Station, current Pointing, ra, dec float64, t time.Time, policy UnwrapPolicy, preferredSection catalog.WrapSection) (Pointing, time.Duration, error) {
	axis1, axis2 := mountCoordinates(st, ra, dec, t)
	if axis2 < st.Axis2.LowerRad || axis2 > st.Axis2.UpperRad {
		return Pointing{}, 0, schederr.New(schederr.CableWrapUnreachable, "station %s: axis-2 value %.4f rad outside [%.4f,%.4f]", st.Name, axis2, st.Axis2.LowerRad, st.Axis2.UpperRad)
	}

	cands := candidates(st, axis1)
	if len(cands) == 0 {
		return Pointing{}, 0, schederr.New(schederr.CableWrapUnreachable, "station %s: no cable-wrap section admits axis-1 value %.4f rad", st.Name, axis1)
	}

	best := -1
	var bestTime time.Duration
	bestScore := math.Inf(1)
	for i, c := range cands {
		d1 := c.Axis1Rad - current.Axis1Rad
		d2 := axis2 - current.Axis2Rad
		tm := axisTime(st.Axis1, d1)
		if t2 := axisTime(st.Axis2, d2); t2 > tm {
			tm = t2
		}

		var score float64
		switch policy {
		case UnwrapInSection:
			if c.Section == preferredSection {
				score = 0
			} else {
				score = 1 + math.Abs(d1)
			}
		default: // UnwrapNear
			score = math.Abs(d1)
		}
		if score < bestScore {
			bestScore = score
			best = i
			bestTime = tm
		}
	}

	chosen := cands[best]
	chosen.Axis2Rad = axis2
	return chosen, bestTime, nil
}
