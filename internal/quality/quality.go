// Package quality implements component C16: the post-build weighted
// figure of merit of spec §4.13, and the gentle-reduction rebuild signal
// the driver (component C15) acts on when a build fails a hard condition.
package quality

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/config"
	"github.com/vievs/vievssched/internal/schedule"
)

const halfPi = 1.5707963267948966

// azSectors and elBands partition the local sky into a coarse grid for the
// sky-coverage term: coarse enough that a handful of scans can plausibly
// fill it, fine enough to distinguish a clustered schedule from a spread
// one.
const (
	azSectors = 8
	elBands   = 3
)

// Terms holds the five raw figure-of-merit components of spec §4.13,
// before weighting and summation.
type Terms struct {
	Observations   float64
	SkyCoverage    float64
	StdDev         float64
	LowDeclination float64
	RepeatGoals    float64
}

// Report is the outcome of one Assess call.
type Report struct {
	Terms   Terms
	Score   float64
	Passed  bool
	Reasons []string
}

// Assess computes the weighted figure of merit of spec §4.13. A schedule
// that fails either hard condition (too few scans, too few distinct
// observed baselines) scores zero regardless of its terms, and Passed is
// false so the driver knows to apply GentleReduction and rebuild.
func Assess(s *schedule.Schedule, cfg config.Resolved) Report {
	var reasons []string
	if len(s.Scans) < cfg.Quality.MinScans {
		reasons = append(reasons, "fewer scans than the configured minimum")
	}
	if len(s.BaselineObservationCounts()) < cfg.Quality.MinBaselines {
		reasons = append(reasons, "fewer observed baselines than the configured minimum")
	}
	if len(reasons) > 0 {
		return Report{Passed: false, Reasons: reasons}
	}

	terms := Terms{
		Observations:   float64(s.ObservationCount()),
		SkyCoverage:    meanSkyCoverage(s),
		StdDev:         -relativeStdDev(s),
		LowDeclination: lowDeclinationFraction(s),
		RepeatGoals:    repeatGoalRatio(s),
	}

	q := cfg.Quality
	score := q.WeightObservations*terms.Observations + q.WeightSkyCoverage*terms.SkyCoverage +
		q.WeightStdDev*terms.StdDev + q.WeightLowDeclination*terms.LowDeclination +
		q.WeightRepeatGoals*terms.RepeatGoals

	return Report{Terms: terms, Score: score, Passed: true}
}

// meanSkyCoverage averages, over every station, the fraction of the
// station's az/el grid cells touched by at least one committed scan.
func meanSkyCoverage(s *schedule.Schedule) float64 {
	if len(s.Stations) == 0 {
		return 0
	}
	var sum float64
	for _, st := range s.Stations {
		sum += stationCoverage(s, st.ID)
	}
	return sum / float64(len(s.Stations))
}

func stationCoverage(s *schedule.Schedule, id catalog.StationID) float64 {
	var hit [azSectors * elBands]bool
	seen := 0
	for _, sc := range s.Scans {
		t, ok := sc.Timing(id)
		if !ok {
			continue
		}
		hit[cellIndex(t.Pointing.AzRad, t.Pointing.ElRad)] = true
		seen++
	}
	if seen == 0 {
		return 0
	}
	covered := 0
	for _, h := range hit {
		if h {
			covered++
		}
	}
	return float64(covered) / float64(len(hit))
}

const twoPi = 2 * 3.141592653589793

func cellIndex(azRad, elRad float64) int {
	az := azRad
	for az < 0 {
		az += twoPi
	}
	for az >= twoPi {
		az -= twoPi
	}
	azCell := int(az / (twoPi / azSectors))
	if azCell >= azSectors {
		azCell = azSectors - 1
	}

	el := elRad
	if el < 0 {
		el = 0
	}
	if el > halfPi {
		el = halfPi
	}
	elCell := int(el / (halfPi / elBands))
	if elCell >= elBands {
		elCell = elBands - 1
	}

	return elCell*azSectors + azCell
}

// relativeStdDev returns the standard deviation of per-station observation
// counts normalized by their mean, so it is comparable across schedules of
// very different overall size.
func relativeStdDev(s *schedule.Schedule) float64 {
	if len(s.Stations) == 0 {
		return 0
	}
	counts := s.StationObservationCounts()
	xs := make([]float64, len(s.Stations))
	for i, st := range s.Stations {
		xs[i] = float64(counts[st.ID])
	}
	mean := stat.Mean(xs, nil)
	if mean == 0 {
		return 0
	}
	return stat.StdDev(xs, nil) / mean
}

// lowDeclinationFraction is the observing-time-weighted mean of
// 1 - |dec|/90deg over the committed scans (1 for scans all on the
// celestial equator, 0 for scans all at a pole), favouring low absolute
// declination, the part of the sky a station's own horizon mask makes
// hardest to keep covered (spec §4.13).
func lowDeclinationFraction(s *schedule.Schedule) float64 {
	var total, low time.Duration
	for _, sc := range s.Scans {
		dur := sc.ObservingEnd().Sub(sc.ObservingStart())
		if dur <= 0 {
			continue
		}
		src := s.Source(sc.Source)
		if src == nil {
			continue
		}
		total += dur
		low += time.Duration(float64(dur) * (1 - clamp01(abs(src.DecRad)/halfPi)))
	}
	if total == 0 {
		return 0
	}
	return float64(low) / float64(total)
}

// repeatGoalRatio is the fraction of sources carrying a MinRepeat goal that
// were observed at least as many times as their goal requires within the
// session (spec §4.13's "repeat-goal completion ratio"). Sources without a
// goal don't count toward either side of the ratio.
func repeatGoalRatio(s *schedule.Schedule) float64 {
	sessionDur := s.SessionEnd.Sub(s.SessionStart)
	var total, satisfied int
	for _, src := range s.Sources {
		if src.MinRepeat <= 0 {
			continue
		}
		total++
		needed := int(sessionDur / src.MinRepeat)
		if needed < 1 {
			needed = 1
		}
		if src.State.NumberOfObservations >= needed {
			satisfied++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(satisfied) / float64(total)
}

// Reduction records which sources GentleReduction disabled.
type Reduction struct {
	Disabled []catalog.SourceID
}

// GentleReduction disables the n least-observed, not-already-ignored
// sources in sources (spec §4.13: a failed hard condition "disables the N
// least-observed sources and signals a rebuild"). The caller owns
// rebuilding; GentleReduction only flips Source.Ignore.
func GentleReduction(sources []*catalog.Source, n int) Reduction {
	if n <= 0 {
		return Reduction{}
	}
	candidates := make([]*catalog.Source, 0, len(sources))
	for _, src := range sources {
		if !src.Ignore {
			candidates = append(candidates, src)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].State.NumberOfObservations < candidates[j].State.NumberOfObservations
	})
	if n > len(candidates) {
		n = len(candidates)
	}

	var disabled []catalog.SourceID
	for _, src := range candidates[:n] {
		src.Ignore = true
		disabled = append(disabled, src.ID)
	}
	return Reduction{Disabled: disabled}
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

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
