// Package skycoverage implements component C8: a per-station (or per twin-
// telescope area) rolling record of recently observed sky directions,
// producing a novelty score (spec §4.5).
package skycoverage

import (
	"math"
	"time"

	"github.com/vievs/vievssched/internal/geo"
)

// Kernel is one of {linear, cosine, constant}, going from 1 at zero
// separation/elapsed-time to 0 at the configured influence bound
// (spec §4.5).
type Kernel int

const (
	Linear Kernel = iota
	Cosine
	Constant
)

func (k Kernel) value(x float64) float64 {
	if x <= 0 {
		return 1
	}
	if x >= 1 {
		return 0
	}
	switch k {
	case Cosine:
		return 0.5 * (1 + math.Cos(math.Pi*x))
	case Constant:
		return 1
	default: // Linear
		return 1 - x
	}
}

// point is one recorded (az, el, t) pointing.
type point struct {
	Dir geo.AzEl
	At  time.Time
}

// Area tracks the recent pointings shared by one or more twin stations
// (spec §4.5: "each area owns one or more stations").
type Area struct {
	influenceDistance float64 // radians
	influenceInterval time.Duration
	distKernel        Kernel
	timeKernel        Kernel

	points []point
}

// NewArea builds an empty tracker for influenceDistance (radians) and
// influenceInterval.
func NewArea(influenceDistance float64, influenceInterval time.Duration, distKernel, timeKernel Kernel) *Area {
	return &Area{
		influenceDistance: influenceDistance,
		influenceInterval: influenceInterval,
		distKernel:        distKernel,
		timeKernel:        timeKernel,
	}
}

// Record appends a new pointing and prunes points older than
// influenceInterval relative to now.
func (a *Area) Record(dir geo.AzEl, at time.Time) {
	a.points = append(a.points, point{Dir: dir, At: at})
	a.prune(at)
}

func (a *Area) prune(now time.Time) {
	cutoff := now.Add(-a.influenceInterval)
	kept := a.points[:0]
	for _, p := range a.points {
		if p.At.After(cutoff) {
			kept = append(kept, p)
		}
	}
	a.points = kept
}

// Novelty returns the novelty score of spec §4.5:
//
//	1 - max over kept points p of [ f_dist(angle(d,p)) * f_time(t - p.t) ]
//
// Score is in [0,1] by construction.
func (a *Area) Novelty(dir geo.AzEl, at time.Time) float64 {
	if a.influenceInterval > 0 {
		a.prune(at)
	}
	if len(a.points) == 0 {
		return 1
	}
	var maxInfluence float64
	for _, p := range a.points {
		distFrac := 0.0
		if a.influenceDistance > 0 {
			distFrac = geo.SeparationAzEl(dir, p.Dir) / a.influenceDistance
		}
		elapsed := at.Sub(p.At)
		if elapsed < 0 {
			elapsed = 0
		}
		timeFrac := 0.0
		if a.influenceInterval > 0 {
			timeFrac = float64(elapsed) / float64(a.influenceInterval)
		}
		influence := a.distKernel.value(distFrac) * a.timeKernel.value(timeFrac)
		if influence > maxInfluence {
			maxInfluence = influence
		}
	}
	score := 1 - maxInfluence
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
