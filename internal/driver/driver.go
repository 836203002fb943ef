// Package driver implements component C15: the multi-schedule grid and
// genetic search modes of spec §4.12/§5, running one planner.Build per
// parameter vector over a bounded worker pool.
package driver

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vievs/vievssched/internal/astro"
	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/config"
	"github.com/vievs/vievssched/internal/planner"
	"github.com/vievs/vievssched/internal/quality"
	"github.com/vievs/vievssched/internal/schederr"
	"github.com/vievs/vievssched/internal/schedule"
)

// Attempt is the outcome of building one parameter-vector point in a
// multi-schedule run (spec §6's "multi-schedule summary").
type Attempt struct {
	Index      int
	Parameters config.MultiScheduleParameters
	Schedule   *schedule.Schedule
	Report     quality.Report
	Err        error
}

// Result collects every attempted build plus the best one by quality
// score, ignoring attempts that errored or never passed the hard
// conditions.
type Result struct {
	Attempts []Attempt
	Best     *Attempt
}

// Grid runs the grid-search mode of spec §4.12: the Cartesian product of
// axes, truncated to MultiSchedOptions.MaxBuilds via a seeded shuffle, one
// build per point.
func Grid(ctx context.Context, cat catalog.Catalog, base *config.Resolved, axes config.GridAxes) (*Result, error) {
	points := axes.CartesianProduct(base.MultiSched.Seed, base.MultiSched.MaxBuilds)
	params := make([]config.MultiScheduleParameters, len(points))
	for i, pt := range points {
		params[i] = parametersFromPoint(base.Weights, pt)
	}
	attempts, err := run(ctx, cat, base, params)
	if err != nil {
		return nil, err
	}
	return finalize(attempts), nil
}

// Genetic runs the genetic-search mode of spec §4.12: an initial
// population seeded around base.Weights, evaluated by quality.Assess,
// bred generation over generation by keeping pool.EliteCount elites and
// filling the rest with Gaussian-mutated children, until
// MultiSchedOptions.MaxBuilds total attempts are spent.
func Genetic(ctx context.Context, cat catalog.Catalog, base *config.Resolved, pool config.GeneticPool) (*Result, error) {
	size := pool.PopulationSize
	if size <= 0 {
		size = 1
	}
	maxBuilds := base.MultiSched.MaxBuilds
	if maxBuilds <= 0 {
		maxBuilds = size
	}
	seed := base.MultiSched.Seed

	gen := make([]config.MultiScheduleParameters, size)
	gen[0] = config.MultiScheduleParameters{Weights: base.Weights}
	for i := 1; i < size; i++ {
		gen[i] = pool.Mutate(gen[0], seed+int64(i))
	}

	var all []Attempt
	for spent := 0; spent < maxBuilds; {
		batch := gen
		if spent+len(batch) > maxBuilds {
			batch = batch[:maxBuilds-spent]
		}

		attempts, err := run(ctx, cat, base, batch)
		if err != nil {
			return nil, err
		}
		for i := range attempts {
			attempts[i].Index = spent + i
		}
		all = append(all, attempts...)
		spent += len(batch)
		if spent >= maxBuilds {
			break
		}

		sort.SliceStable(all, func(i, j int) bool { return all[i].Report.Score > all[j].Report.Score })
		elite := pool.EliteCount
		if elite <= 0 {
			elite = 1
		}
		if elite > len(all) {
			elite = len(all)
		}

		next := make([]config.MultiScheduleParameters, 0, size)
		for i := 0; i < elite && i < size; i++ {
			next = append(next, all[i].Parameters)
		}
		for i := 0; len(next) < size; i++ {
			parent := all[i%elite].Parameters
			next = append(next, pool.Mutate(parent, seed+int64(spent+len(next))))
		}
		gen = next
	}

	return finalize(all), nil
}

// run spreads params across MultiSchedOptions.NThreads workers in batches
// of MultiSchedOptions.ChunkSize (default ceil(N/(4*NThreads)), spec
// §5), cooperatively canceling the remaining work on the first fatal
// (Configuration/CatalogInconsistency) error.
func run(ctx context.Context, cat catalog.Catalog, base *config.Resolved, params []config.MultiScheduleParameters) ([]Attempt, error) {
	n := len(params)
	attempts := make([]Attempt, n)
	if n == 0 {
		return attempts, nil
	}

	threads := base.MultiSched.NThreads
	if threads <= 0 {
		threads = 1
	}
	chunk := base.MultiSched.ChunkSize
	if chunk <= 0 {
		chunk = (n + 4*threads - 1) / (4 * threads)
		if chunk < 1 {
			chunk = 1
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)

	for start := 0; start < n; start += chunk {
		start := start
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				cfg := applyParameters(base, params[i])
				sch, report, err := buildOne(gctx, cat, cfg)
				attempts[i] = Attempt{Index: i, Parameters: params[i], Schedule: sch, Report: report, Err: err}
				if isFatal(err) {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return attempts, err
	}
	return attempts, nil
}

// buildOne runs the gentle-reduction rebuild loop of component C16 around
// a single planner.Build: a schedule failing Assess's hard conditions has
// its least-observed sources disabled and is rebuilt, up to
// QualityOptions.MaxNumberOfIterations attempts.
func buildOne(ctx context.Context, cat catalog.Catalog, cfg *config.Resolved) (*schedule.Schedule, quality.Report, error) {
	snap := newSnapshot(cat)
	maxIter := cfg.Quality.MaxNumberOfIterations
	if maxIter <= 0 {
		maxIter = 1
	}

	var sch *schedule.Schedule
	var report quality.Report
	for iter := 0; iter < maxIter; iter++ {
		built, err := planner.Build(ctx, snap, cfg)
		if err != nil {
			return built, report, err
		}
		sch = built
		report = quality.Assess(sch, *cfg)
		if report.Passed {
			return sch, report, nil
		}

		reduction := quality.GentleReduction(snap.sources, cfg.Quality.GentleReductionCount)
		if len(reduction.Disabled) == 0 {
			return sch, report, nil
		}
		snap.reset()
	}
	return sch, report, nil
}

func isFatal(err error) bool {
	e, ok := err.(*schederr.Error)
	return ok && e.Fatal()
}

func finalize(attempts []Attempt) *Result {
	best := -1
	for i, a := range attempts {
		if a.Err != nil || !a.Report.Passed {
			continue
		}
		if best == -1 || a.Report.Score > attempts[best].Report.Score {
			best = i
		}
	}
	r := &Result{Attempts: attempts}
	if best >= 0 {
		r.Best = &attempts[best]
	}
	return r
}

// WriteSummary writes one CSV row per attempted parameter vector (index,
// number of scans, score, passed/exit reason), marking the winning row,
// the "multi-schedule summary per driver invocation" spec §6 names without
// detailing a column set (mirrors VieSched++'s Misc/MultiScheduling.cpp
// summary generation).
func WriteSummary(w io.Writer, r *Result) {
	fmt.Fprintln(w, "index,n_scans,score,passed,exit_reason,best")
	for _, a := range r.Attempts {
		nScans, exitReason := 0, ""
		if a.Schedule != nil {
			nScans = len(a.Schedule.Scans)
			exitReason = a.Schedule.ExitReason
		}
		if a.Err != nil {
			exitReason = a.Err.Error()
		}
		best := r.Best != nil && r.Best.Index == a.Index
		fmt.Fprintf(w, "%d,%d,%.6f,%t,%s,%t\n", a.Index, nScans, a.Report.Score, a.Report.Passed, exitReason, best)
	}
}

// snapshot gives one build its own independent copy of a catalog.Catalog's
// mutable station/source State, so concurrent multi-schedule builds never
// share it (spec §9's arena-plus-index model shares only the immutable
// catalog data, never State); ObservingMode and HorizonMask delegate to
// the embedded Catalog since they carry no per-build state.
type snapshot struct {
	catalog.Catalog
	stations []*catalog.Station
	sources  []*catalog.Source
}

func newSnapshot(cat catalog.Catalog) *snapshot {
	orig := cat.Stations()
	stations := make([]*catalog.Station, len(orig))
	for i, st := range orig {
		cp := *st
		cp.State = catalog.StationState{}
		stations[i] = &cp
	}

	origSrc := cat.Sources()
	sources := make([]*catalog.Source, len(origSrc))
	for i, src := range origSrc {
		cp := *src
		cp.State = catalog.SourceState{}
		sources[i] = &cp
	}

	return &snapshot{Catalog: cat, stations: stations, sources: sources}
}

func (s *snapshot) Stations() []*catalog.Station { return s.stations }
func (s *snapshot) Sources() []*catalog.Source   { return s.sources }

// reset clears mutable State back to zero for another attempt within the
// same gentle-reduction loop, leaving Ignore flags a prior GentleReduction
// set untouched.
func (s *snapshot) reset() {
	for _, st := range s.stations {
		st.State = catalog.StationState{}
	}
	for _, src := range s.sources {
		src.State = catalog.SourceState{}
	}
}

// Recognized grid axis names, mapped onto MultiScheduleParameters fields.
const (
	axisWeightSkyCoverage      = "weight-sky-coverage"
	axisWeightNumberOfObs      = "weight-number-of-obs"
	axisWeightDuration         = "weight-duration"
	axisWeightAverageSources   = "weight-average-sources"
	axisWeightAverageStations  = "weight-average-stations"
	axisWeightAverageBaselines = "weight-average-baselines"
	axisWeightIdle             = "weight-idle"
	axisWeightLowDeclination   = "weight-low-declination"
	axisWeightLowElevation     = "weight-low-elevation"
	axisSubnettingEnabled      = "subnetting-enabled"
	axisSubnettingMinAngleDeg  = "subnetting-min-angle-deg"
	axisSubnettingMinStations  = "subnetting-min-stations"
	axisFillinDuringSelection  = "fillin-during-selection"
	axisFillinAPosteriori      = "fillin-a-posteriori"
	axisStartOffsetMinutes     = "start-offset-minutes"
)

// parametersFromPoint turns one grid point (axis name -> value) into a
// full MultiScheduleParameters, starting from base and overriding only the
// axes present in point.
func parametersFromPoint(base config.WeightFactors, point map[string]float64) config.MultiScheduleParameters {
	p := config.MultiScheduleParameters{Weights: base}
	for name, v := range point {
		switch name {
		case axisWeightSkyCoverage:
			p.Weights.SkyCoverage = v
		case axisWeightNumberOfObs:
			p.Weights.NumberOfObs = v
		case axisWeightDuration:
			p.Weights.Duration = v
		case axisWeightAverageSources:
			p.Weights.AverageSources = v
		case axisWeightAverageStations:
			p.Weights.AverageStations = v
		case axisWeightAverageBaselines:
			p.Weights.AverageBaselines = v
		case axisWeightIdle:
			p.Weights.Idle = v
		case axisWeightLowDeclination:
			p.Weights.LowDeclination = v
		case axisWeightLowElevation:
			p.Weights.LowElevation = v
		case axisSubnettingEnabled:
			p.SubnettingEnabled = v != 0
		case axisSubnettingMinAngleDeg:
			p.SubnettingMinAngleRad = v * astro.DegToRad
		case axisSubnettingMinStations:
			p.SubnettingMinStations = int(v)
		case axisFillinDuringSelection:
			p.FillinDuringSelection = v != 0
		case axisFillinAPosteriori:
			p.FillinAPosteriori = v != 0
		case axisStartOffsetMinutes:
			p.StartOffset = time.Duration(v * float64(time.Minute))
		}
	}
	p.Weights = p.Weights.Normalize()
	return p
}

// applyParameters produces the per-build config.Resolved for one parameter
// vector, preserving base's session length when StartOffset shifts its
// start.
func applyParameters(base *config.Resolved, p config.MultiScheduleParameters) *config.Resolved {
	cfg := *base
	cfg.Weights = p.Weights

	length := base.SessionEnd.Sub(base.SessionStart)
	cfg.SessionStart = base.SessionStart.Add(p.StartOffset)
	cfg.SessionEnd = cfg.SessionStart.Add(length)

	cfg.Subnetting.Enabled = p.SubnettingEnabled
	if p.SubnettingMinAngleRad > 0 {
		cfg.Subnetting.MinAngleDeg = p.SubnettingMinAngleRad * astro.RadToDeg
	}
	if p.SubnettingMinStations > 0 {
		cfg.Subnetting.MinStations = p.SubnettingMinStations
	}
	cfg.Fillin.DuringSelection = p.FillinDuringSelection
	cfg.Fillin.APosteriori = p.FillinAPosteriori

	return &cfg
}
