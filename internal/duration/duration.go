// Package duration implements component C7: the scan-duration solver of
// spec §4.4 (SNR-driven integration time, min/max clipping, tie-break
// policy between "same observing duration for every station" and
// "per-station early stop").
package duration

import (
	"math"
	"time"

	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/flux"
	"github.com/vievs/vievssched/internal/obsmode"
	"github.com/vievs/vievssched/internal/schederr"
)

// StopPolicy selects how a multi-station scan's shared duration is derived
// from each baseline's required integration time (spec §4.4 step 4).
type StopPolicy int

const (
	// SameDuration makes every station in the scan observe for the same
	// wall-clock duration: the maximum over all baselines' required time.
	SameDuration StopPolicy = iota
	// StationEarlyStop lets each station stop as soon as its own
	// baselines are all satisfied, producing per-station durations.
	StationEarlyStop
)

// requiredSeconds solves the radiometer equation
//
//	SNR = (eta * S * sqrt(2 * B * tau)) / sqrt(SEFD_A * SEFD_B)
//
// for tau given a target SNR, returning the minimum integration time in
// seconds (spec §4.4 step 2). Declared at package scope so both Solve
// and the tests can exercise the closed-form inverse directly.
func requiredSeconds(targetSNR, fluxJy, bandwidthHz, sefdA, sefdB, efficiency float64) (float64, error) {
	if fluxJy <= 0 {
		return 0, schederr.New(schederr.InsufficientFlux, "zero or negative flux density")
	}
	denom := efficiency * efficiency * fluxJy * fluxJy * 2 * bandwidthHz
	if denom <= 0 {
		return 0, schederr.New(schederr.InsufficientFlux, "degenerate bandwidth/efficiency/flux product")
	}
	tau := (targetSNR * targetSNR * sefdA * sefdB) / denom
	if math.IsInf(tau, 1) || math.IsNaN(tau) {
		return 0, schederr.New(schederr.SnrUnreachable, "required integration time diverges for target SNR %.1f", targetSNR)
	}
	return tau, nil
}

// BaselineRequirement is the solved duration for one baseline within a
// candidate scan.
type BaselineRequirement struct {
	A, B     catalog.StationID
	Band     string
	Duration time.Duration
}

// Solve computes the per-baseline required durations for a scan of src
// observed by stations over mode, clipped to [minScan, maxScan], then
// combines them per policy into either one shared duration (SameDuration)
// or a per-station map (StationEarlyStop), per spec §4.4. baselineOf
// resolves each station pair's catalog.Baseline override (spec §3): a
// baseline flagged Ignore never generates a requirement and can never fail
// the scan on its own account ("fails with InsufficientFlux if computed
// tau > max-scan for any baseline that is not ignored", spec §4.4);
// otherwise its MinSNRByBand[band] entry overrides defaultMinSNR when
// present.
func Solve(stations []*catalog.Station, src *catalog.Source, mode obsmode.Mode, uvRadii map[catalog.StationID]map[catalog.StationID]float64, baselineOf func(a, b catalog.StationID) catalog.Baseline, defaultMinSNR float64, minScan, maxScan time.Duration, policy StopPolicy, includeCalibrationOnly bool) ([]BaselineRequirement, map[catalog.StationID]time.Duration, error) {
	var reqs []BaselineRequirement
	perStation := make(map[catalog.StationID]time.Duration)

	for i := 0; i < len(stations); i++ {
		for j := i + 1; j < len(stations); j++ {
			a, b := stations[i], stations[j]

			bl := baselineOf(a.ID, b.ID)
			if bl.Ignore {
				continue
			}

			band, err := pickBand(a, b, mode, includeCalibrationOnly)
			if err != nil {
				return nil, nil, err
			}
			bm, err := mode.Band(band)
			if err != nil {
				return nil, nil, err
			}

			model, err := flux.FromCatalog(bandFluxOf(src, band))
			if err != nil {
				return nil, nil, err
			}
			uv := 0.0
			if m, ok := uvRadii[a.ID]; ok {
				uv = m[b.ID]
			}
			fluxJy := model.FluxAt(uv, 299792458.0/(bm.CenterFreqMHz*1e6))

			sefdA := a.Equipment[band].SEFDJansky
			sefdB := b.Equipment[band].SEFDJansky
			eta := mode.DigitizationEfficiency()
			bandwidthHz := bm.RecordedBandwidthMHz * 1e6

			targetSNR := defaultMinSNR
			if v, ok := bl.MinSNRByBand[band]; ok {
				targetSNR = v
			}
			secs, err := requiredSeconds(targetSNR, fluxJy, bandwidthHz, sefdA, sefdB, eta)
			if err != nil {
				return nil, nil, err
			}

			d := time.Duration(secs * float64(time.Second))
			if d < minScan {
				d = minScan
			}
			if d > maxScan {
				return nil, nil, schederr.New(schederr.InsufficientFlux, "baseline %s-%s requires %s, exceeds max scan %s", a.Name, b.Name, d, maxScan)
			}

			reqs = append(reqs, BaselineRequirement{A: a.ID, B: b.ID, Band: band, Duration: d})

			switch policy {
			case SameDuration:
				// combined below
			case StationEarlyStop:
				if d > perStation[a.ID] {
					perStation[a.ID] = d
				}
				if d > perStation[b.ID] {
					perStation[b.ID] = d
				}
			}
		}
	}

	if len(reqs) == 0 {
		return nil, nil, schederr.New(schederr.InsufficientFlux, "no usable baselines for source")
	}

	if policy == SameDuration {
		var max time.Duration
		for _, r := range reqs {
			if r.Duration > max {
				max = r.Duration
			}
		}
		for _, st := range stations {
			perStation[st.ID] = max
		}
	}

	return reqs, perStation, nil
}

// pickBand returns the first band both stations carry non-calibration-only
// equipment for. Equipment flagged CalibrationOnly (the flux-model "C"
// column, spec §9 open question 2) is skipped unless includeCalibrationOnly
// is set, either globally (config.Resolved.IncludeCalibrationOnly) or
// because the scan being built is itself a calibrator-block scan.
func pickBand(a, b *catalog.Station, mode obsmode.Mode, includeCalibrationOnly bool) (string, error) {
	usable := func(st *catalog.Station, name string) bool {
		eq, ok := st.Equipment[name]
		if !ok {
			return false
		}
		return includeCalibrationOnly || !eq.CalibrationOnly
	}
	for _, band := range mode.Bands {
		if usable(a, band.Name) && usable(b, band.Name) {
			return band.Name, nil
		}
	}
	return "", schederr.New(schederr.InsufficientFlux, "stations %s/%s share no common non-calibration-only equipped band for mode %s", a.Name, b.Name, mode.Name)
}

func bandFluxOf(src *catalog.Source, band string) catalog.BandFlux {
	for _, bf := range src.Flux {
		if bf.Band == band {
			return bf
		}
	}
	return catalog.BandFlux{Band: band}
}
