package config

import (
	"fmt"
	"io"
	"strings"
)

// WeightFactors holds the scorer's nine term weights (spec §4.6 / §9). It is
// carried as a plain value passed explicitly into each build, rather than as
// package-level thread-local statics the way WeightFactors.h does it in
// VieSched++: Go builds run concurrently as goroutines sharing an address
// space, so a per-build value is the idiomatic equivalent of a thread-local.
type WeightFactors struct {
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

// Normalize rescales the factors so they sum to 1, leaving an all-zero set
// untouched (spec §4.6: "weights are normalized before use").
func (w WeightFactors) Normalize() WeightFactors {
	sum := w.SkyCoverage + w.NumberOfObs + w.Duration + w.AverageSources +
		w.AverageStations + w.AverageBaselines + w.Idle + w.LowDeclination + w.LowElevation
	if sum <= 0 {
		return w
	}
	return WeightFactors{
		SkyCoverage:      w.SkyCoverage / sum,
		NumberOfObs:      w.NumberOfObs / sum,
		Duration:         w.Duration / sum,
		AverageSources:   w.AverageSources / sum,
		AverageStations:  w.AverageStations / sum,
		AverageBaselines: w.AverageBaselines / sum,
		Idle:             w.Idle / sum,
		LowDeclination:   w.LowDeclination / sum,
		LowElevation:     w.LowElevation / sum,
	}
}

// StatisticsHeader writes the CSV column header for one row of
// per-build weight-factor and outcome statistics, mirroring
// WeightFactors::statisticsHeader.
func StatisticsHeader(w io.Writer) {
	cols := []string{
		"n_scans", "n_observations", "n_stations_used", "n_sources_used",
		"sky_coverage_score", "number_of_observations_score", "duration_score",
		"average_sources_score", "average_stations_score", "average_baselines_score",
		"idle_score", "low_declination_score", "low_elevation_score",
	}
	fmt.Fprintln(w, strings.Join(cols, ","))
}

// BuildOutcome is the per-build tally whose statistics get dumped in a
// StatisticsRow, mirroring WeightFactors::summary's running counters.
type BuildOutcome struct {
	Scans         int
	Observations  int
	StationsUsed  int
	SourcesUsed   int
	AverageScores WeightFactors
}

// StatisticsRow writes one CSV row of build outcome statistics, mirroring
// WeightFactors::statisticsValues.
func StatisticsRow(w io.Writer, o BuildOutcome) {
	fmt.Fprintf(w, "%d,%d,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
		o.Scans, o.Observations, o.StationsUsed, o.SourcesUsed,
		o.AverageScores.SkyCoverage, o.AverageScores.NumberOfObs, o.AverageScores.Duration,
		o.AverageScores.AverageSources, o.AverageScores.AverageStations, o.AverageScores.AverageBaselines,
		o.AverageScores.Idle, o.AverageScores.LowDeclination, o.AverageScores.LowElevation)
}

// Summary writes a human-readable dump of one build's weights and outcome,
// mirroring WeightFactors::summary's ofstream narrative.
func Summary(w io.Writer, wf WeightFactors, o BuildOutcome) {
	fmt.Fprintf(w, "scans: %d, observations: %d, stations used: %d, sources used: %d\n",
		o.Scans, o.Observations, o.StationsUsed, o.SourcesUsed)
	fmt.Fprintf(w, "weights: sky=%.3f nobs=%.3f dur=%.3f avgsrc=%.3f avgsta=%.3f avgbl=%.3f idle=%.3f lowdec=%.3f lowel=%.3f\n",
		wf.SkyCoverage, wf.NumberOfObs, wf.Duration, wf.AverageSources,
		wf.AverageStations, wf.AverageBaselines, wf.Idle, wf.LowDeclination, wf.LowElevation)
}
