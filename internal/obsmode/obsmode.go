// Package obsmode implements component C4: the per-baseline, per-band
// observing-mode table (sample rate, bit depth, bandwidth) that C7 consumes
// to compute SNR-derived scan durations. The actual data-rate lookup this
// table is built from is out of scope (spec §1); this package only holds
// and serves the resolved numbers.
package obsmode

import "fmt"

// Band is one frequency band inside a Mode.
type Band struct {
	Name          string
	CenterFreqMHz float64
	BandwidthMHz  float64
	// RecordedBandwidthMHz is the portion of Bandwidth actually recorded,
	// i.e. Delta-nu of spec §4.4, which may be narrower than BandwidthMHz
	// when channels are dropped.
	RecordedBandwidthMHz float64
}

// Mode is a named observing mode: sample rate, per-channel bit depth, and
// its band list (spec §6's ModeDescriptor).
type Mode struct {
	Name           string
	SampleRateMsps float64
	BitDepth       int
	Bands          []Band
}

// DigitizationEfficiency returns eta(b,k) of spec §4.4: the fraction of
// theoretical SNR retained after quantization, a function of bit depth
// only (1-bit ~ 0.637, 2-bit ~ 0.881, higher bit depths tend to 1).
func (m Mode) DigitizationEfficiency() float64 {
	switch {
	case m.BitDepth <= 1:
		return 0.637
	case m.BitDepth == 2:
		return 0.881
	case m.BitDepth >= 8:
		return 1.0
	default:
		// linear interpolation between the 2-bit and 8-bit anchors.
		frac := float64(m.BitDepth-2) / 6.0
		return 0.881 + frac*(1.0-0.881)
	}
}

// Band looks up a band by name.
func (m Mode) Band(name string) (Band, error) {
	for _, b := range m.Bands {
		if b.Name == name {
			return b, nil
		}
	}
	return Band{}, fmt.Errorf("obsmode: band %q not found in mode %q", name, m.Name)
}

// Table is a name-keyed set of Modes, serving Catalog.ObservingMode.
type Table map[string]Mode

// Lookup implements the getObservingMode(name) external interface of
// spec §6.
func (t Table) Lookup(name string) (Mode, error) {
	m, ok := t[name]
	if !ok {
		return Mode{}, fmt.Errorf("obsmode: unknown mode %q", name)
	}
	return m, nil
}
