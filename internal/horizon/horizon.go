// Package horizon implements component C3: per-station elevation-as-a-
// function-of-azimuth cut-off masks (spec §4.2).
package horizon

import "sort"

// Mask is satisfied by both LineMask and StepMask and by
// catalog.HorizonMask.
type Mask interface {
	Visible(azRad, elRad float64) bool
}

// sample is one (azimuth, minimum elevation) pair, radians.
type sample struct {
	Az, El float64
}

// LineMask interpolates linearly between azimuth-ordered elevation samples,
// wrapping around 2*pi (spec §4.2).
type LineMask struct {
	samples []sample
}

// NewLineMask builds a LineMask from (az, el) pairs in radians; the slice
// is sorted by azimuth at construction so Visible can binary-search it.
func NewLineMask(azRad, elRad []float64) *LineMask {
	m := &LineMask{samples: make([]sample, len(azRad))}
	for i := range azRad {
		m.samples[i] = sample{Az: azRad[i], El: elRad[i]}
	}
	sort.Slice(m.samples, func(i, j int) bool { return m.samples[i].Az < m.samples[j].Az })
	return m
}

const twoPi = 2 * 3.141592653589793

func normalizeAz(az float64) float64 {
	for az < 0 {
		az += twoPi
	}
	for az >= twoPi {
		az -= twoPi
	}
	return az
}

// Visible reports whether elRad is at or above the mask at azRad; ties (el
// exactly equal to the mask) are visible, per spec §4.2.
func (m *LineMask) Visible(azRad, elRad float64) bool {
	if len(m.samples) == 0 {
		return true
	}
	if len(m.samples) == 1 {
		return elRad >= m.samples[0].El
	}
	az := normalizeAz(azRad)
	n := len(m.samples)
	idx := sort.Search(n, func(i int) bool { return m.samples[i].Az >= az })

	var lo, hi sample
	switch idx {
	case 0:
		lo, hi = m.samples[n-1], m.samples[0]
	case n:
		lo, hi = m.samples[n-1], m.samples[0]
	default:
		lo, hi = m.samples[idx-1], m.samples[idx]
	}

	span := hi.Az - lo.Az
	if span <= 0 {
		span += twoPi
	}
	offset := az - lo.Az
	if offset < 0 {
		offset += twoPi
	}
	frac := offset / span
	limit := lo.El + frac*(hi.El-lo.El)
	// tieTolerance keeps an exact tie visible when the interpolated limit
	// picks up rounding error from the wrap-around offset arithmetic.
	const tieTolerance = 1e-12
	return elRad >= limit-tieTolerance
}

// StepMask holds a constant minimum elevation over each azimuth bin
// (spec §4.2).
type StepMask struct {
	bins []sample // Az is the bin's lower edge, ascending, wraps at 2*pi
}

// NewStepMask builds a StepMask from bin lower-edges and their elevation
// floors (radians); binAz must be sorted ascending.
func NewStepMask(binAz, binEl []float64) *StepMask {
	m := &StepMask{bins: make([]sample, len(binAz))}
	for i := range binAz {
		m.bins[i] = sample{Az: binAz[i], El: binEl[i]}
	}
	sort.Slice(m.bins, func(i, j int) bool { return m.bins[i].Az < m.bins[j].Az })
	return m
}

// Visible reports whether elRad clears the step floor at azRad.
func (m *StepMask) Visible(azRad, elRad float64) bool {
	if len(m.bins) == 0 {
		return true
	}
	az := normalizeAz(azRad)
	n := len(m.bins)
	idx := sort.Search(n, func(i int) bool { return m.bins[i].Az > az })
	idx--
	if idx < 0 {
		idx = n - 1
	}
	return elRad >= m.bins[idx].El
}

// Always is a permissive mask used when a station declares no horizon
// restrictions.
type Always struct{}

func (Always) Visible(float64, float64) bool { return true }
