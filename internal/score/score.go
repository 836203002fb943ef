// Package score implements component C10: the nine-term weighted scorer
// applied to each Candidate produced by component C9 (spec §4.6 step 2).
package score

import (
	"sort"
	"time"

	"github.com/vievs/vievssched/internal/candidate"
	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/config"
	"github.com/vievs/vievssched/internal/geo"
	"github.com/vievs/vievssched/internal/skycoverage"
)

// Terms holds the nine raw (unweighted) score components of spec §4.6 for
// one candidate, before weighting and summation.
type Terms struct {
	SkyCoverage      float64
	NumberOfObs      float64
	Duration         float64
	AverageSources   float64
	AverageStations  float64
	AverageBaselines float64
	Idle             float64
	LowDeclination   float64
	LowElevation     float64
}

// Scored pairs a Candidate with its computed score, keeping the nine raw
// terms available for weight-factor statistics (internal/config's
// BuildOutcome).
type Scored struct {
	Candidate *candidate.Candidate
	Terms     Terms
	Total     float64
}

// Inputs bundles the per-candidate data the nine terms are computed from;
// areas maps twin-station-area key to its skycoverage.Area tracker.
type Inputs struct {
	Sources        map[catalog.SourceID]*catalog.Source
	Stations       map[catalog.StationID]*catalog.Station
	Areas          map[catalog.StationID]*skycoverage.Area
	TotalSources   int
	TotalStations  int
	TotalBaselines int
	MaxIdle        time.Duration
}

// Score computes Terms and the weighted total for one candidate at epoch
// now, per spec §4.6 step 2.
func Score(c *candidate.Candidate, now time.Time, in Inputs, w config.WeightFactors) Scored {
	src := in.Sources[c.Source]

	var t Terms

	if len(in.Areas) > 0 {
		var novSum float64
		for _, ss := range c.Stations {
			if area, ok := in.Areas[ss.Station]; ok {
				novSum += area.Novelty(geo.AzEl{Az: ss.Pointing.Axis1Rad, El: ss.Pointing.Axis2Rad}, now)
			}
		}
		t.SkyCoverage = novSum / float64(max(1, len(c.Stations)))
	}

	if src != nil && src.State.NumberOfObservations == 0 {
		t.NumberOfObs = 1
	}

	nStations := len(c.Stations)
	if in.TotalStations > 0 {
		t.AverageStations = float64(nStations) / float64(in.TotalStations)
	}
	nBaselines := nStations * (nStations - 1) / 2
	if in.TotalBaselines > 0 {
		t.AverageBaselines = float64(nBaselines) / float64(in.TotalBaselines)
	}
	if in.TotalSources > 0 {
		t.AverageSources = 1.0 / float64(in.TotalSources)
	}

	if in.MaxIdle > 0 {
		var maxWait time.Duration
		for _, ss := range c.Stations {
			if ss.IdleBeforeSlew > maxWait {
				maxWait = ss.IdleBeforeSlew
			}
		}
		t.Idle = 1 - clamp01(float64(maxWait)/float64(in.MaxIdle))
	}

	if src != nil {
		absDec := abs(src.DecRad)
		t.LowDeclination = 1 - clamp01(absDec/(halfPi))
	}

	var minEl float64 = halfPi
	for _, ss := range c.Stations {
		el := elOf(ss)
		if el < minEl {
			minEl = el
		}
	}
	t.LowElevation = 1 - clamp01(minEl/halfPi)

	total := w.SkyCoverage*t.SkyCoverage + w.NumberOfObs*t.NumberOfObs + w.Duration*t.Duration +
		w.AverageSources*t.AverageSources + w.AverageStations*t.AverageStations + w.AverageBaselines*t.AverageBaselines +
		w.Idle*t.Idle + w.LowDeclination*t.LowDeclination + w.LowElevation*t.LowElevation

	return Scored{Candidate: c, Terms: t, Total: total}
}

const halfPi = 1.5707963267948966

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func elOf(ss candidate.StationStart) float64 {
	return ss.Pointing.Axis2Rad
}

// Rank sorts scored candidates highest-total-first, tie-breaking by
// (observation count descending, source name ascending) per spec §4.6
// step 2's determinism requirement.
func Rank(scored []Scored, sources map[catalog.SourceID]*catalog.Source) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Total != scored[j].Total {
			return scored[i].Total > scored[j].Total
		}
		si, sj := sources[scored[i].Candidate.Source], sources[scored[j].Candidate.Source]
		if si == nil || sj == nil {
			return false
		}
		if si.State.NumberOfObservations != sj.State.NumberOfObservations {
			return si.State.NumberOfObservations > sj.State.NumberOfObservations
		}
		return si.Name < sj.Name
	})
}
