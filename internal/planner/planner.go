// Package planner implements component C13: the greedy forward-in-time
// scan-selection state machine of spec §4.11, consuming the candidate
// enumerator (C9), scorer (C10), subnetting solver (C11) and fill-in
// inserter (C12), and consulting the C14 rules before SELECT.
package planner

import (
	"context"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vievs/vievssched/internal/astro"
	"github.com/vievs/vievssched/internal/candidate"
	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/config"
	"github.com/vievs/vievssched/internal/duration"
	"github.com/vievs/vievssched/internal/fillin"
	"github.com/vievs/vievssched/internal/geo"
	"github.com/vievs/vievssched/internal/obsmode"
	"github.com/vievs/vievssched/internal/rules"
	"github.com/vievs/vievssched/internal/scan"
	"github.com/vievs/vievssched/internal/schederr"
	"github.com/vievs/vievssched/internal/schedule"
	"github.com/vievs/vievssched/internal/score"
	"github.com/vievs/vievssched/internal/skycoverage"
	"github.com/vievs/vievssched/internal/subnet"
)

// minAdvanceStep is the smallest forward jump the clock takes when no
// station's committed-until time lies strictly after the current clock,
// guaranteeing progress (spec §4.11: "advance to the earliest committed-
// until among stations and retry").
const minAdvanceStep = time.Second

// Build runs the greedy planner state machine of spec §4.11 over the
// session window named in cfg, consuming cat's stations/sources, and
// returns the resulting Schedule. Local errors (spec §7) are dropped
// per-candidate; only Configuration/CatalogInconsistency errors abort the
// build and are returned.
func Build(ctx context.Context, cat catalog.Catalog, cfg *config.Resolved) (*schedule.Schedule, error) {
	b, err := newBuilder(cat, cfg)
	if err != nil {
		return nil, err
	}
	return b.run(ctx)
}

type builder struct {
	cfg *config.Resolved
	cat catalog.Catalog

	stations    []*catalog.Station
	sources     []*catalog.Source
	stationByID map[catalog.StationID]*catalog.Station
	sourceByID  map[catalog.SourceID]*catalog.Source

	mode obsmode.Mode

	areas map[catalog.StationID]*skycoverage.Area

	calibrator *rules.CalibratorBlocks
	highImpact *rules.HighImpactMonitor
	focusCorner *rules.FocusCorner

	sch *schedule.Schedule
}

func newBuilder(cat catalog.Catalog, cfg *config.Resolved) (*builder, error) {
	stations := cat.Stations()
	sources := cat.Sources()

	b := &builder{
		cfg:         cfg,
		cat:         cat,
		stations:    stations,
		sources:     sources,
		stationByID: make(map[catalog.StationID]*catalog.Station, len(stations)),
		sourceByID:  make(map[catalog.SourceID]*catalog.Source, len(sources)),
	}
	for _, st := range stations {
		b.stationByID[st.ID] = st
		st.State.CommittedUntil = cfg.SessionStart
		st.State.Clock = cfg.SessionStart
		st.State.FirstScan = true
	}
	for _, src := range sources {
		b.sourceByID[src.ID] = src
	}

	desc, err := cat.ObservingMode(cfg.ObservingMode)
	if err != nil {
		return nil, schederr.New(schederr.CatalogInconsistency, "observing mode %q: %v", cfg.ObservingMode, err)
	}
	b.mode = modeFromDescriptor(desc)

	b.areas = buildAreas(stations, cfg.SkyCover)
	b.calibrator = buildCalibratorRule(sources, cfg.Rules)
	b.highImpact = buildHighImpactRule(stations, cfg.Rules)
	b.focusCorner = &rules.FocusCorner{Cadence: cfg.Rules.FocusCornerCadence.Duration}

	b.sch = &schedule.Schedule{
		SessionStart: cfg.SessionStart,
		SessionEnd:   cfg.SessionEnd,
		Stations:     stations,
		Sources:      sources,
	}
	return b, nil
}

// modeFromDescriptor adapts the external catalog.ModeDescriptor (spec §6)
// to the internal obsmode.Mode shape duration.Solve consumes; the recorded
// bandwidth is always the full band bandwidth, since catalog.BandMode
// carries no recorded bandwidth of its own (the catalog decoder reads
// recorded-bandwidth-mhz but does not keep it).
func modeFromDescriptor(d catalog.ModeDescriptor) obsmode.Mode {
	m := obsmode.Mode{Name: d.Name, SampleRateMsps: d.SampleRateMsps, BitDepth: d.BitDepth}
	for _, bm := range d.Bands {
		m.Bands = append(m.Bands, obsmode.Band{
			Name:                 bm.Name,
			CenterFreqMHz:        bm.CenterFreqMHz,
			BandwidthMHz:         bm.BandwidthMHz,
			RecordedBandwidthMHz: bm.BandwidthMHz,
		})
	}
	return m
}

// buildAreas groups stations into sky-coverage areas (component C8),
// merging twin telescopes within TwinDistanceMeters of each other into one
// shared Area (spec §4.5: "twin telescopes within a configurable distance
// share an area").
func buildAreas(stations []*catalog.Station, opts config.SkyCoverOptions) map[catalog.StationID]*skycoverage.Area {
	distKernel := kernelFromName(opts.DistanceKernel)
	timeKernel := kernelFromName(opts.TimeKernel)
	influenceDist := opts.InfluenceDistanceDeg * astro.DegToRad

	out := make(map[catalog.StationID]*skycoverage.Area, len(stations))
	var groups []*skycoverage.Area
	var groupPos []r3.Vec

	for _, st := range stations {
		joined := false
		if opts.TwinDistanceMeters > 0 {
			for i, pos := range groupPos {
				if r3.Norm(r3.Sub(pos, st.PositionXYZ)) <= opts.TwinDistanceMeters {
					out[st.ID] = groups[i]
					joined = true
					break
				}
			}
		}
		if joined {
			continue
		}
		area := skycoverage.NewArea(influenceDist, opts.InfluenceInterval.Duration, distKernel, timeKernel)
		groups = append(groups, area)
		groupPos = append(groupPos, st.PositionXYZ)
		out[st.ID] = area
	}
	return out
}

func kernelFromName(name string) skycoverage.Kernel {
	switch name {
	case "cosine":
		return skycoverage.Cosine
	case "constant":
		return skycoverage.Constant
	default:
		return skycoverage.Linear
	}
}

func buildCalibratorRule(sources []*catalog.Source, opts config.RulesOptions) *rules.CalibratorBlocks {
	group := make(map[catalog.SourceID]bool, len(opts.CalibratorGroup))
	names := make(map[string]bool, len(opts.CalibratorGroup))
	for _, n := range opts.CalibratorGroup {
		names[n] = true
	}
	for _, src := range sources {
		if names[src.Name] {
			group[src.ID] = true
		}
	}
	return &rules.CalibratorBlocks{
		Cadence:     opts.CalibratorCadence.Duration,
		EveryNScans: opts.CalibratorEveryNScans,
		MinScans:    opts.CalibratorMinScans,
		Group:       group,
	}
}

func buildHighImpactRule(stations []*catalog.Station, opts config.RulesOptions) *rules.HighImpactMonitor {
	targets := make(map[catalog.StationID]rules.HighImpactTarget, len(opts.HighImpactTargets))
	for _, st := range stations {
		if t, ok := opts.HighImpactTargets[st.Name]; ok {
			targets[st.ID] = rules.HighImpactTarget{AzRad: t.AzDeg * astro.DegToRad, ElRad: t.ElDeg * astro.DegToRad}
		}
	}
	return &rules.HighImpactMonitor{
		Targets:   targets,
		Interval:  opts.HighImpactInterval.Duration,
		MarginRad: opts.HighImpactMarginDeg * astro.DegToRad,
	}
}

// run drives the REQUEST_CANDIDATES -> SCORE -> SUBNETTING -> SELECT ->
// COMMIT -> FILLIN cycle of spec §4.11 until termination, with
// ADVANCE_CLOCK as the side branch taken whenever REQUEST_CANDIDATES comes
// back empty.
func (b *builder) run(ctx context.Context) (*schedule.Schedule, error) {
	clock := b.cfg.SessionStart
	var stalledSince time.Time

	for {
		if err := ctx.Err(); err != nil {
			b.sch.ExitReason = "canceled"
			b.aPosterioriFillin()
			return b.sch, nil
		}
		if !clock.Before(b.cfg.SessionEnd) {
			b.sch.ExitReason = "session-end"
			b.aPosterioriFillin()
			return b.sch, nil
		}

		cands := b.enumerate(clock) // REQUEST_CANDIDATES
		if len(cands) == 0 {
			if stalledSince.IsZero() {
				stalledSince = clock
			}
			next, ok := b.advanceClock(stalledSince, clock) // ADVANCE_CLOCK
			if !ok {
				b.sch.ExitReason = "no-feasible-scan"
				b.aPosterioriFillin()
				return b.sch, nil
			}
			clock = next
			continue
		}
		stalledSince = time.Time{}

		scored := b.scoreAll(cands, clock) // SCORE
		b.applyRules(clock, scored)
		score.Rank(scored, b.sourceByID)

		chosen := b.selectAt(clock, scored) // SUBNETTING + SELECT
		committed, err := b.commit(clock, chosen) // COMMIT
		if err != nil {
			b.sch.ExitReason = err.Error()
			return b.sch, err
		}
		if b.cfg.Fillin.DuringSelection {
			b.fillinDuringSelection(clock, cands, committed) // FILLIN
		}
		clock = b.nextEpoch(clock)
	}
}

// advanceClock implements the ADVANCE_CLOCK transition: jump to the
// earliest committed-until among stations, or minAdvanceStep if that does
// not move the clock forward; returns ok=false once the jump would take the
// clock more than MaxClockAdvance past origin, the clock at which the
// current run of empty candidate sets began (spec §4.11, §7's
// NoFeasibleScan).
func (b *builder) advanceClock(origin, clock time.Time) (time.Time, bool) {
	next := b.earliestCommittedAfter(clock)
	if !next.After(clock) {
		next = clock.Add(minAdvanceStep)
	}
	if b.cfg.MaxClockAdvance.Duration > 0 && next.Sub(origin) > b.cfg.MaxClockAdvance.Duration {
		return time.Time{}, false
	}
	return next, true
}

func (b *builder) earliestCommittedAfter(clock time.Time) time.Time {
	var min time.Time
	for i, st := range b.stations {
		u := st.State.CommittedUntil
		if u.Before(clock) {
			continue
		}
		if i == 0 || u.Before(min) || min.IsZero() {
			min = u
		}
	}
	if min.IsZero() {
		return clock.Add(minAdvanceStep)
	}
	return min
}

// nextEpoch advances the clock monotonically after a commit round, so the
// next REQUEST_CANDIDATES call sees genuinely new state.
func (b *builder) nextEpoch(clock time.Time) time.Time {
	next := b.sch.EarliestProjectedStart()
	if next.After(clock) {
		return next
	}
	return clock.Add(minAdvanceStep)
}

// enumerate runs component C9 over every non-ignored source, in catalog
// order (a fixed source-id-ascending ordering, spec §9's determinism
// note, since b.sources is itself catalog-ordered and never reshuffled).
func (b *builder) enumerate(clock time.Time) []*candidate.Candidate {
	opts := candidate.Options{
		MinStations: b.cfg.MinStations,
		MaxSlew:     b.cfg.MaxSlew.Duration,
		MaxWait:     b.cfg.MaxWait.Duration,
	}
	var out []*candidate.Candidate
	for _, src := range b.sources {
		if src.Ignore {
			continue
		}
		c, ok := candidate.Enumerate(b.stations, src, clock, opts)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

func (b *builder) scoreAll(cands []*candidate.Candidate, clock time.Time) []score.Scored {
	in := score.Inputs{
		Sources:        b.sourceByID,
		Stations:       b.stationByID,
		Areas:          b.areas,
		TotalSources:   len(b.sources),
		TotalStations:  len(b.stations),
		TotalBaselines: len(b.stations) * (len(b.stations) - 1) / 2,
		MaxIdle:        b.cfg.IdleTimeInterval.Duration,
	}
	out := make([]score.Scored, 0, len(cands))
	for _, c := range cands {
		out = append(out, score.Score(c, clock, in, b.cfg.Weights))
	}
	return out
}

func (b *builder) applyRules(clock time.Time, scored []score.Scored) {
	if b.calibrator != nil {
		b.calibrator.Apply(clock, scored, b.sourceByID)
	}
	if b.highImpact != nil {
		b.highImpact.Apply(clock, scored, b.sourceByID)
	}
	if b.focusCorner != nil {
		b.focusCorner.Apply(clock, scored, b.sourceByID)
	}
}

// selectAt implements SUBNETTING -> SELECT: the best admissible disjoint
// pair competes against the best single candidate (spec §4.8), falling
// back to the best single candidate whenever subnetting is disabled or no
// pair is admissible (spec §8's boundary case).
func (b *builder) selectAt(clock time.Time, scored []score.Scored) []score.Scored {
	if len(scored) == 0 {
		return nil
	}
	if !b.cfg.Subnetting.Enabled {
		return scored[:1]
	}

	nets := subnet.Partition(scored, b.sourceByID, subnet.Options{
		Enabled:           true,
		MinSeparationRad:  b.cfg.Subnetting.MinAngleDeg * astro.DegToRad,
		MinStationsPerNet: b.cfg.Subnetting.MinStations,
		TotalStations:     len(b.stations),
	})
	if len(nets) <= 1 {
		return scored[:1]
	}

	var flat []score.Scored
	pairTotal := 0.0
	stationsUsed := 0
	for _, net := range nets {
		for _, c := range net {
			flat = append(flat, c)
			pairTotal += c.Total
			stationsUsed += len(c.Candidate.Stations)
		}
	}
	if pairTotal > scored[0].Total && stationsUsed >= b.cfg.Subnetting.MinParticipatingStations {
		return flat
	}
	return scored[:1]
}

// commit builds and commits one Scan per chosen Candidate (spec §4.11's
// SELECT -> COMMIT transition), dropping any that fail a local error
// (spec §7: local errors are counted and logged, never abort the build) but
// propagating a fatal Configuration/CatalogInconsistency error so the build
// aborts immediately.
func (b *builder) commit(clock time.Time, chosen []score.Scored) ([]*scan.Scan, error) {
	var committed []*scan.Scan
	for _, c := range chosen {
		s, err := b.buildScan(scan.Standard, c.Candidate, clock)
		if err != nil {
			if e, ok := err.(*schederr.Error); ok && e.Fatal() {
				return committed, e
			}
			continue
		}
		b.sch.Commit(s)
		b.recordSkyCoverage(s)
		fromGroup := b.calibrator != nil && b.calibrator.Group[s.Source]
		if b.calibrator != nil {
			b.calibrator.Committed(clock, fromGroup)
		}
		if b.focusCorner != nil && b.focusCorner.Matches(clock, scanAzimuths(s)) {
			b.focusCorner.Committed(clock)
		}
		committed = append(committed, s)
	}
	return committed, nil
}

func scanAzimuths(s *scan.Scan) []float64 {
	out := make([]float64, len(s.Stations))
	for i, st := range s.Stations {
		out[i] = st.Pointing.AzRad
	}
	return out
}

// buildScan solves per-station durations (component C7) and assembles the
// Scan/Observation/PointingVector records of spec §3 for one candidate.
func (b *builder) buildScan(tag scan.Tag, cand *candidate.Candidate, clock time.Time) (*scan.Scan, error) {
	stations := make([]*catalog.Station, 0, len(cand.Stations))
	for _, ss := range cand.Stations {
		if st := b.stationByID[ss.Station]; st != nil {
			stations = append(stations, st)
		}
	}
	src := b.sourceByID[cand.Source]
	if src == nil {
		return nil, schederr.New(schederr.CatalogInconsistency, "candidate references unknown source %d", cand.Source)
	}

	policy := duration.SameDuration
	if b.cfg.StationEarlyStop {
		policy = duration.StationEarlyStop
	}
	includeCalibrationOnly := b.cfg.IncludeCalibrationOnly || tag == scan.Calibrator
	reqs, perStation, err := duration.Solve(stations, src, b.mode, uvRadii(stations, src), b.cat.Baseline, b.cfg.MinSNR, b.cfg.MinScan.Duration, b.cfg.MaxScan.Duration, policy, includeCalibrationOnly)
	if err != nil {
		return nil, err
	}

	s := &scan.Scan{Source: cand.Source, Tag: tag}
	timings := make([]scan.StationTiming, 0, len(cand.Stations))
	var obsStart time.Time
	for _, ss := range cand.Stations {
		st := b.stationByID[ss.Station]
		if st == nil {
			continue
		}
		firstScanRuleApplies := st.State.FirstScan && (b.cfg.FirstScanAppliesToTagalong || !isTagalong(src, ss.Station))
		var slewStart, slewEnd, preobEnd time.Time
		if firstScanRuleApplies {
			// spec §9 open question: field-system/preob/slew are zeroed
			// for a station's very first scan of the session.
			slewStart, slewEnd, preobEnd = clock, clock, clock
		} else {
			slewStart = clock.Add(ss.IdleBeforeSlew)
			slewEnd = ss.SlewEnd
			preobEnd = slewEnd.Add(b.cfg.Preob.Duration)
		}
		timings = append(timings, scan.StationTiming{
			Station:  ss.Station,
			SlewStart: slewStart,
			SlewEnd:   slewEnd,
			IdleEnd:   slewEnd,
			PreobEnd:  preobEnd,
			Pointing: scan.PointingVector{
				Station:  ss.Station,
				Source:   cand.Source,
				Epoch:    clock,
				AzRad:    ss.Pointing.Axis1Rad,
				ElRad:    ss.Pointing.Axis2Rad,
				Axis1Rad: ss.Pointing.Axis1Rad,
				Section:  ss.Pointing.Section,
			},
		})
		if preobEnd.After(obsStart) {
			obsStart = preobEnd
		}
	}
	for i := range timings {
		d := perStation[timings[i].Station]
		if d <= 0 {
			d = b.cfg.MinScan.Duration
		}
		timings[i].ObservingStart = obsStart
		timings[i].ObservingEnd = obsStart.Add(d)
		timings[i].PostobEnd = timings[i].ObservingEnd.Add(b.cfg.Postob.Duration)
	}
	s.Stations = timings
	for _, r := range reqs {
		s.Observations = append(s.Observations, scan.Observation{StationA: r.A, StationB: r.B, Band: r.Band, Duration: r.Duration})
	}
	return s, nil
}

// isTagalong reports whether station joins src's scan opportunistically
// rather than as one of its named required stations (spec §9 OQ1): a
// source with no RequiredStations list has no tagalong/required
// distinction at all, so every station counts as a primary join.
func isTagalong(src *catalog.Source, station catalog.StationID) bool {
	if len(src.RequiredStations) == 0 {
		return false
	}
	for _, id := range src.RequiredStations {
		if id == station {
			return false
		}
	}
	return true
}

func (b *builder) recordSkyCoverage(s *scan.Scan) {
	for _, st := range s.Stations {
		area, ok := b.areas[st.Station]
		if !ok {
			continue
		}
		area.Record(geo.AzEl{Az: st.Pointing.AzRad, El: st.Pointing.ElRad}, st.ObservingStart)
	}
}

// fillinDuringSelection implements the "during selection" mode of
// component C12: any enumerated candidate whose stations are all idle
// (not already committed this round) and small enough to complete within
// the fill-in options is committed immediately as a FillIn-tagged scan
// (spec §4.9).
func (b *builder) fillinDuringSelection(clock time.Time, all []*candidate.Candidate, committed []*scan.Scan) {
	used := map[catalog.StationID]bool{}
	for _, s := range committed {
		for _, st := range s.Stations {
			used[st.Station] = true
		}
	}
	opts := fillin.Options{
		DuringSelection: true,
		MinGap:          b.cfg.Fillin.MinGap.Duration,
		MinStations:     b.cfg.Fillin.MinStations,
	}
	for _, cand := range all {
		if anyStationUsed(cand, used) {
			continue
		}
		gap := fillin.Gap{Stations: candidateStationIDs(cand), Start: clock, End: b.cfg.SessionEnd}
		if !fillin.Admissible(cand, gap, opts) {
			continue
		}
		s, err := b.buildScan(scan.FillIn, cand, clock)
		if err != nil {
			continue
		}
		b.sch.Commit(s)
		b.recordSkyCoverage(s)
		for _, st := range s.Stations {
			used[st.Station] = true
		}
	}
}

// aPosterioriFillin implements component C12's final sweep: after the main
// loop ends, idle gaps in the committed schedule are re-offered to the
// candidate enumerator restricted to the gap's idle stations, and any
// admissible result is spliced in (spec §4.9).
func (b *builder) aPosterioriFillin() {
	if !b.cfg.Fillin.APosteriori {
		return
	}
	busy := b.busyIntervals()
	gaps := fillin.FindGaps(busy, b.cfg.SessionEnd, b.cfg.Fillin.MinGap.Duration)
	opts := fillin.Options{APosteriori: true, MinGap: b.cfg.Fillin.MinGap.Duration, MinStations: b.cfg.Fillin.MinStations}

	inserted := false
	for _, gap := range gaps {
		restricted := restrictStations(b.stations, gap.Stations)
		for _, src := range b.sources {
			if src.Ignore {
				continue
			}
			cand, ok := candidate.Enumerate(restricted, src, gap.Start, candidate.Options{MinStations: b.cfg.MinStations, MaxSlew: b.cfg.MaxSlew.Duration, MaxWait: b.cfg.MaxWait.Duration})
			if !ok {
				continue
			}
			if !fillin.Admissible(cand, gap, opts) {
				continue
			}
			s, err := b.buildScan(scan.FillIn, cand, gap.Start)
			if err != nil {
				continue
			}
			if s.ObservingEnd().After(gap.End) {
				continue
			}
			b.sch.Commit(s)
			b.recordSkyCoverage(s)
			inserted = true
			break
		}
	}
	if inserted {
		sort.SliceStable(b.sch.Scans, func(i, j int) bool {
			return b.sch.Scans[i].ObservingStart().Before(b.sch.Scans[j].ObservingStart())
		})
		for i, s := range b.sch.Scans {
			s.Index = i
		}
	}
}

func (b *builder) busyIntervals() map[catalog.StationID][]fillin.Interval {
	out := make(map[catalog.StationID][]fillin.Interval, len(b.stations))
	for _, s := range b.sch.Scans {
		for _, st := range s.Stations {
			out[st.Station] = append(out[st.Station], fillin.Interval{Start: st.SlewStart, End: st.PostobEnd})
		}
	}
	for id, ivs := range out {
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start.Before(ivs[j].Start) })
		out[id] = ivs
	}
	return out
}

func restrictStations(all []*catalog.Station, ids []catalog.StationID) []*catalog.Station {
	allowed := map[catalog.StationID]bool{}
	for _, id := range ids {
		allowed[id] = true
	}
	var out []*catalog.Station
	for _, st := range all {
		if allowed[st.ID] {
			out = append(out, st)
		}
	}
	return out
}

func anyStationUsed(c *candidate.Candidate, used map[catalog.StationID]bool) bool {
	for _, ss := range c.Stations {
		if used[ss.Station] {
			return true
		}
	}
	return false
}

func candidateStationIDs(c *candidate.Candidate) []catalog.StationID {
	out := make([]catalog.StationID, len(c.Stations))
	for i, ss := range c.Stations {
		out[i] = ss.Station
	}
	return out
}

// uvRadii computes the (u,v)-plane baseline projection (spec §4.4) for
// every station pair in stations toward src, used by the scan-duration
// solver (component C7).
func uvRadii(stations []*catalog.Station, src *catalog.Source) map[catalog.StationID]map[catalog.StationID]float64 {
	dir := sourceDirection(src.RARad, src.DecRad)
	out := make(map[catalog.StationID]map[catalog.StationID]float64)
	for i := 0; i < len(stations); i++ {
		for j := i + 1; j < len(stations); j++ {
			a, b := stations[i], stations[j]
			baseline := r3.Sub(a.PositionXYZ, b.PositionXYZ)
			uv := geo.UVProjection(baseline, dir)
			if out[a.ID] == nil {
				out[a.ID] = map[catalog.StationID]float64{}
			}
			out[a.ID][b.ID] = uv
		}
	}
	return out
}

func sourceDirection(raRad, decRad float64) r3.Vec {
	return r3.Vec{
		X: math.Cos(decRad) * math.Cos(raRad),
		Y: math.Cos(decRad) * math.Sin(raRad),
		Z: math.Sin(decRad),
	}
}
