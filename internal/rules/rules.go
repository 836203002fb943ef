// Package rules implements component C14: the calibrator-block,
// high-impact-station and focus-corner rules consulted by the planner
// between SCORE and SUBNETTING/SELECT (spec §4.10, §4.11).
package rules

import (
	"time"

	"github.com/vievs/vievssched/internal/candidate"
	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/geo"
	"github.com/vievs/vievssched/internal/score"
)

// Rule biases a ranked candidate list in place, ahead of the planner's
// SELECT step (spec §4.10: "the planner raises the score of scans that
// [match a rule's criterion]").
type Rule interface {
	Apply(clock time.Time, scored []score.Scored, sources map[catalog.SourceID]*catalog.Source)
}

const (
	halfPi         = 1.5707963267948966
	pi             = 3.141592653589793
	twoPi          = 2 * pi
	quarterPi      = halfPi / 2
	threeQuarterPi = halfPi + quarterPi
)

// calibratorBonus is the additive score bump applied to a due calibrator
// candidate; large enough to outrank an ordinary candidate of comparable
// quality without being an absolute override (spec §4.10 keeps the
// reduced scorer "greedy", not mandatory).
const calibratorBonus = 0.5

// CalibratorBlocks fires either on a time cadence or every N committed
// scans; while a block is due it prefers candidates drawn from Group,
// weighted by how wide an elevation spread their stations cover, favoring
// low-el/high-el pairs at both ends of the network (spec §4.10).
type CalibratorBlocks struct {
	Cadence     time.Duration
	EveryNScans int
	MinScans    int
	Group       map[catalog.SourceID]bool

	lastBlock    time.Time
	scansInBlock int
	totalCommits int
}

// Due reports whether a calibrator block should be active at clock.
func (c *CalibratorBlocks) Due(clock time.Time) bool {
	if c.Cadence > 0 {
		return c.lastBlock.IsZero() || clock.Sub(c.lastBlock) >= c.Cadence
	}
	if c.EveryNScans > 0 {
		return c.totalCommits > 0 && c.totalCommits%c.EveryNScans == 0
	}
	return false
}

// Apply implements Rule.
func (c *CalibratorBlocks) Apply(clock time.Time, scored []score.Scored, sources map[catalog.SourceID]*catalog.Source) {
	if !c.Due(clock) || len(c.Group) == 0 {
		return
	}
	for i := range scored {
		if !c.Group[scored[i].Candidate.Source] {
			continue
		}
		scored[i].Total += calibratorBonus * elevationSpread(scored[i].Candidate.Stations)
	}
}

// Committed advances the block's internal bookkeeping after the planner
// commits a scan; fromGroup reports whether it belonged to the calibrator
// group, so a time-cadence block can close once MinScans calibrator scans
// have been committed since it opened.
func (c *CalibratorBlocks) Committed(at time.Time, fromGroup bool) {
	c.totalCommits++
	if c.Cadence > 0 && c.lastBlock.IsZero() {
		c.lastBlock = at
	}
	if fromGroup {
		c.scansInBlock++
		if c.MinScans > 0 && c.scansInBlock >= c.MinScans {
			c.lastBlock = at
			c.scansInBlock = 0
		}
	}
}

func elevationSpread(stations []candidate.StationStart) float64 {
	if len(stations) < 2 {
		return 0
	}
	lo, hi := stations[0].Pointing.Axis2Rad, stations[0].Pointing.Axis2Rad
	for _, s := range stations[1:] {
		if e := s.Pointing.Axis2Rad; e < lo {
			lo = e
		} else if e > hi {
			hi = e
		}
	}
	return clamp01((hi - lo) / halfPi)
}

// HighImpactTarget is a fixed (az, el) a monitored station is expected to
// be near within Interval (spec §4.10).
type HighImpactTarget struct {
	AzRad, ElRad float64
}

const highImpactBonus = 0.3

// HighImpactMonitor raises the score of candidates that keep a monitored
// station within MarginRad of its target. The projection uses the
// station's pointing for this candidate directly (rather than integrating
// a full trajectory over Interval): within Interval a committed scan's
// pointing does not move enough to matter at the margins this rule is
// meant to catch (spec §4.10).
type HighImpactMonitor struct {
	Targets   map[catalog.StationID]HighImpactTarget
	Interval  time.Duration
	MarginRad float64
}

// Apply implements Rule.
func (h *HighImpactMonitor) Apply(clock time.Time, scored []score.Scored, sources map[catalog.SourceID]*catalog.Source) {
	if len(h.Targets) == 0 {
		return
	}
	for i := range scored {
		for _, ss := range scored[i].Candidate.Stations {
			target, ok := h.Targets[ss.Station]
			if !ok {
				continue
			}
			here := geo.AzEl{Az: ss.Pointing.Axis1Rad, El: ss.Pointing.Axis2Rad}
			there := geo.AzEl{Az: target.AzRad, El: target.ElRad}
			if geo.SeparationAzEl(here, there) <= h.MarginRad {
				scored[i].Total += highImpactBonus
			}
		}
	}
}

// Corner names one of the four geometric corners of the mutually visible
// sky (spec §4.10).
type Corner int

const (
	NE Corner = iota
	NW
	SE
	SW
)

func (c Corner) center() float64 {
	switch c {
	case NE:
		return quarterPi
	case NW:
		return twoPi - quarterPi
	case SE:
		return threeQuarterPi
	default: // SW
		return threeQuarterPi + halfPi
	}
}

const focusCornerBonus = 0.2
const cornerHalfWidthRad = quarterPi / 2

// FocusCorner enforces periodic observation in each of the four corners,
// cycling through them round-robin at the configured Cadence (spec §4.10).
type FocusCorner struct {
	Cadence time.Duration

	lastByCorner [4]time.Time
	next         Corner
}

// Apply implements Rule: boosts any candidate whose mean station azimuth
// falls within the currently-due corner's arc.
func (f *FocusCorner) Apply(clock time.Time, scored []score.Scored, sources map[catalog.SourceID]*catalog.Source) {
	if f.Cadence <= 0 {
		return
	}
	due := f.lastByCorner[f.next].IsZero() || clock.Sub(f.lastByCorner[f.next]) >= f.Cadence
	if !due {
		return
	}
	target := f.next.center()
	for i := range scored {
		if meanAzimuthWithin(scored[i].Candidate.Stations, target, cornerHalfWidthRad) {
			scored[i].Total += focusCornerBonus
		}
	}
}

// Committed should be called once the planner commits a scan that
// satisfied the currently-due corner, advancing round-robin to the next.
func (f *FocusCorner) Committed(at time.Time) {
	f.lastByCorner[f.next] = at
	f.next = (f.next + 1) % 4
}

// Matches reports whether azimuthsRad's mean falls within the currently
// due corner's arc at clock, letting the planner decide whether a
// just-committed scan satisfied this round's rule and should advance the
// round-robin via Committed.
func (f *FocusCorner) Matches(clock time.Time, azimuthsRad []float64) bool {
	if f.Cadence <= 0 || len(azimuthsRad) == 0 {
		return false
	}
	due := f.lastByCorner[f.next].IsZero() || clock.Sub(f.lastByCorner[f.next]) >= f.Cadence
	if !due {
		return false
	}
	target := f.next.center()
	var sum float64
	for _, a := range azimuthsRad {
		sum += angularDelta(a, target)
	}
	mean := sum / float64(len(azimuthsRad))
	return mean >= -cornerHalfWidthRad && mean <= cornerHalfWidthRad
}

func meanAzimuthWithin(stations []candidate.StationStart, target, halfWidth float64) bool {
	if len(stations) == 0 {
		return false
	}
	var sum float64
	for _, s := range stations {
		sum += angularDelta(s.Pointing.Axis1Rad, target)
	}
	mean := sum / float64(len(stations))
	return mean >= -halfWidth && mean <= halfWidth
}

func angularDelta(a, b float64) float64 {
	d := a - b
	for d > pi {
		d -= twoPi
	}
	for d < -pi {
		d += twoPi
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
