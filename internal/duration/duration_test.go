package duration

import (
	"testing"
	"time"

	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/obsmode"
)

func threeStationFixture() ([]*catalog.Station, *catalog.Source, obsmode.Mode) {
	mk := func(id catalog.StationID, name string) *catalog.Station {
		return &catalog.Station{
			ID: id, Name: name,
			Equipment: map[string]catalog.Equipment{"X": {Band: "X", SEFDJansky: 500}},
		}
	}
	stations := []*catalog.Station{mk(1, "A"), mk(2, "B"), mk(3, "C")}
	src := &catalog.Source{
		ID: 1, Name: "3C84",
		Flux: []catalog.BandFlux{{Band: "X", PowerLaw: []catalog.FluxKnot{{UVRadiusMeters: 0, FluxJy: 5}}}},
	}
	mode := obsmode.Mode{
		Name: "geodetic", BitDepth: 2,
		Bands: []obsmode.Band{{Name: "X", CenterFreqMHz: 8400, BandwidthMHz: 32, RecordedBandwidthMHz: 32}},
	}
	return stations, src, mode
}

func noOverrides(a, b catalog.StationID) catalog.Baseline { return catalog.Baseline{} }

func TestSolveIgnoredBaselineContributesNoRequirement(t *testing.T) {
	stations, src, mode := threeStationFixture()
	ignoreAB := func(a, b catalog.StationID) catalog.Baseline {
		lo, hi := catalog.Key(a, b)
		if lo == 1 && hi == 2 {
			return catalog.Baseline{A: lo, B: hi, Ignore: true}
		}
		return catalog.Baseline{}
	}

	reqs, _, err := Solve(stations, src, mode, nil, ignoreAB, 20.0, 30*time.Second, 600*time.Second, SameDuration, false)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for _, r := range reqs {
		lo, hi := catalog.Key(r.A, r.B)
		if lo == 1 && hi == 2 {
			t.Fatalf("ignored baseline A-B produced a requirement: %+v", r)
		}
	}
	// A-C and B-C both survive.
	if len(reqs) != 2 {
		t.Fatalf("expected 2 surviving baseline requirements, got %d: %+v", len(reqs), reqs)
	}
}

func TestSolveIgnoredBaselineNeverFailsOnMaxScan(t *testing.T) {
	stations, src, mode := threeStationFixture()
	// An unreachable min-SNR on A-B would normally exceed max-scan; ignoring
	// the baseline must make that failure unreachable (spec §4.4: "fails
	// with InsufficientFlux ... for any baseline that is not ignored").
	ignoreAB := func(a, b catalog.StationID) catalog.Baseline {
		lo, hi := catalog.Key(a, b)
		if lo == 1 && hi == 2 {
			return catalog.Baseline{A: lo, B: hi, Ignore: true, MinSNRByBand: map[string]float64{"X": 1e6}}
		}
		return catalog.Baseline{}
	}

	if _, _, err := Solve(stations, src, mode, nil, ignoreAB, 20.0, 30*time.Second, 600*time.Second, SameDuration, false); err != nil {
		t.Fatalf("Solve: unexpected error with the unreachable baseline ignored: %v", err)
	}
}

func TestSolveUsesPerBaselineMinSNROverride(t *testing.T) {
	stations, src, mode := threeStationFixture()
	// The per-baseline override lowers A-B's target well below the
	// default, so A-B must come out needing less integration time than it
	// does under the default target.
	lowOverride := func(a, b catalog.StationID) catalog.Baseline {
		lo, hi := catalog.Key(a, b)
		if lo == 1 && hi == 2 {
			return catalog.Baseline{A: lo, B: hi, MinSNRByBand: map[string]float64{"X": 1.0}}
		}
		return catalog.Baseline{}
	}

	defaultReqs, _, err := Solve(stations, src, mode, nil, noOverrides, 20.0, 0, 600*time.Second, SameDuration, false)
	if err != nil {
		t.Fatalf("Solve (default target): %v", err)
	}
	overriddenReqs, _, err := Solve(stations, src, mode, nil, lowOverride, 20.0, 0, 600*time.Second, SameDuration, false)
	if err != nil {
		t.Fatalf("Solve (overridden target): %v", err)
	}

	find := func(reqs []BaselineRequirement, a, b catalog.StationID) BaselineRequirement {
		for _, r := range reqs {
			lo, hi := catalog.Key(r.A, r.B)
			if lo == a && hi == b {
				return r
			}
		}
		t.Fatalf("baseline %d-%d not found", a, b)
		return BaselineRequirement{}
	}

	def := find(defaultReqs, 1, 2)
	low := find(overriddenReqs, 1, 2)
	if low.Duration >= def.Duration {
		t.Fatalf("expected the lower per-baseline SNR override to require less integration time: default=%s override=%s", def.Duration, low.Duration)
	}
}

func TestPickBandSkipsCalibrationOnlyByDefault(t *testing.T) {
	a := &catalog.Station{Name: "A", Equipment: map[string]catalog.Equipment{
		"X": {Band: "X", SEFDJansky: 500, CalibrationOnly: true},
	}}
	b := &catalog.Station{Name: "B", Equipment: map[string]catalog.Equipment{
		"X": {Band: "X", SEFDJansky: 500, CalibrationOnly: true},
	}}
	mode := obsmode.Mode{Bands: []obsmode.Band{{Name: "X"}}}

	if _, err := pickBand(a, b, mode, false); err == nil {
		t.Fatalf("expected calibration-only equipment to be excluded by default")
	}
	if _, err := pickBand(a, b, mode, true); err != nil {
		t.Fatalf("expected includeCalibrationOnly=true to admit the band, got %v", err)
	}
}

func TestRequiredSecondsIncreasesWithTargetSNR(t *testing.T) {
	low, err := requiredSeconds(10, 1.0, 32e6, 500, 500, 0.881)
	if err != nil {
		t.Fatal(err)
	}
	high, err := requiredSeconds(20, 1.0, 32e6, 500, 500, 0.881)
	if err != nil {
		t.Fatal(err)
	}
	if high <= low {
		t.Fatalf("expected higher target SNR to require more integration time, got low=%f high=%f", low, high)
	}
}

func TestRequiredSecondsRejectsZeroFlux(t *testing.T) {
	_, err := requiredSeconds(20, 0, 32e6, 500, 500, 0.881)
	if err == nil {
		t.Fatalf("expected InsufficientFlux error for zero flux")
	}
}

func TestRequiredSecondsScalesWithSEFDProduct(t *testing.T) {
	lowSEFD, err := requiredSeconds(20, 1.0, 32e6, 100, 100, 0.881)
	if err != nil {
		t.Fatal(err)
	}
	highSEFD, err := requiredSeconds(20, 1.0, 32e6, 1000, 1000, 0.881)
	if err != nil {
		t.Fatal(err)
	}
	if highSEFD <= lowSEFD {
		t.Fatalf("expected higher SEFD to require more integration time")
	}
}
