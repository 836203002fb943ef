// Package catalog holds the immutable-snapshot data model of spec §3:
// Station, Source and Baseline, plus the catalog interface of spec §6. Core
// consumes these through the Catalog interface; the skd/vex readers that
// build a Catalog are out of scope (spec §1).
package catalog

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// MountType identifies the two-axis mount kinematics of a station (spec §3).
type MountType int

const (
	MountAzEl MountType = iota
	MountHaDec
	MountXY
)

func (m MountType) String() string {
	switch m {
	case MountAzEl:
		return "AzEl"
	case MountHaDec:
		return "HaDec"
	case MountXY:
		return "XY"
	default:
		return "unknown"
	}
}

// WrapSection names one of the (up to three) cable-wrap sections on the
// primary axis (spec §3, §9).
type WrapSection int

const (
	WrapClockwise WrapSection = iota
	WrapNeutral
	WrapCounterClockwise
)

func (w WrapSection) String() string {
	switch w {
	case WrapClockwise:
		return "CW"
	case WrapNeutral:
		return "N"
	case WrapCounterClockwise:
		return "CCW"
	default:
		return "unknown"
	}
}

// ParseWrapSection maps the catalog's string tags to WrapSection, per
// spec §9 ("the source's string tags are mapped at parse time").
func ParseWrapSection(tag string) (WrapSection, bool) {
	switch tag {
	case "CW":
		return WrapClockwise, true
	case "N":
		return WrapNeutral, true
	case "CCW":
		return WrapCounterClockwise, true
	default:
		return 0, false
	}
}

// WrapLimits gives the legal interval (radians) of one named cable-wrap
// section on the primary axis.
type WrapLimits struct {
	Section    WrapSection
	LowerRad   float64
	UpperRad   float64
}

// Axis is one of the two mount axes (spec §4.1).
type Axis struct {
	RateRadPerSec float64
	Overhead      time.Duration
	LowerRad      float64
	UpperRad      float64
}

// Equipment is the per-band reception equipment of a station (spec §6's
// "per-band SEFD"); CalibrationOnly implements the "C" flag resolved in
// spec §9's open question.
type Equipment struct {
	Band            string
	SEFDJansky      float64
	CalibrationOnly bool
}

// StationState is the mutable per-epoch state of spec §3.
type StationState struct {
	CurrentPointing  AzEl
	WrapValueRad     float64
	CurrentWrap      WrapSection
	Clock            time.Time
	LastScanEnd      time.Time
	CommittedUntil   time.Time
	CumulativeObs    time.Duration
	NumberOfScans    int
	FirstScan        bool
}

// AzEl is a horizontal pointing direction in radians.
type AzEl struct {
	Az, El float64
}

// Station is the immutable catalog snapshot plus its mutable per-build
// state (spec §3). Stations live in a flat slice; everything else refers
// to them by StationID (spec §9's arena-plus-index pattern).
type Station struct {
	ID       StationID
	Name     string
	OneCode  string
	TwoCode  string

	PositionXYZ r3.Vec
	LonRad      float64
	LatRad      float64

	Mount     MountType
	Axis1     Axis
	Axis2     Axis
	Wraps     []WrapLimits

	Horizon HorizonMask

	Equipment map[string]Equipment

	MinElevationRad float64
	MaxTotalObsTime time.Duration
	MaxNumberOfScans int

	State StationState
}

// StationID indexes a Station inside a Catalog's flat station slice.
type StationID int

// HorizonMask is implemented by internal/horizon; declared here to avoid an
// import cycle between catalog and horizon (horizon depends on nothing).
type HorizonMask interface {
	Visible(azRad, elRad float64) bool
}

// FluxComponent is one Gaussian component of a source's flux model
// (spec §6).
type FluxComponent struct {
	FluxJy    float64
	MajorMas  float64
	MinorMas  float64
	PositionAngleDeg float64
}

// FluxKnot is one (uv-radius, flux) sample of a piecewise power-law model.
type FluxKnot struct {
	UVRadiusMeters float64
	FluxJy         float64
}

// BandFlux is the flux model for one band, either a piecewise power law or
// a sum of Gaussian components (spec §3).
type BandFlux struct {
	Band       string
	PowerLaw   []FluxKnot
	Components []FluxComponent
}

// SourceState is the mutable per-build state of a Source (spec §3).
type SourceState struct {
	LastObserved       time.Time
	NumberOfObservations int
	ObservedBy         []StationID
	FocusBonus         bool
}

// SourceID indexes a Source inside a Catalog's flat source slice.
type SourceID int

// Source is the immutable catalog snapshot plus mutable per-build state
// (spec §3).
type Source struct {
	ID       SourceID
	Name     string
	RARad    float64
	DecRad   float64

	Flux []BandFlux

	MinElevationRad   *float64 // nil = inherit station default
	RequiredStations  []StationID
	ExcludedStations  []StationID
	MinRepeat         time.Duration
	Ignore            bool

	State SourceState
}

// Baseline is an unordered station pair (spec §3), derived rather than
// catalog-native; Ignore and per-band minimum-SNR overrides live here.
type Baseline struct {
	A, B         StationID
	Ignore       bool
	MinSNRByBand map[string]float64
}

// Key returns a canonical, order-independent identifier for a baseline.
func Key(a, b StationID) (StationID, StationID) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Catalog is the external interface of spec §6: getStations, getSources,
// getObservingMode, getHorizonMask, plus the derived per-baseline overrides
// of spec §3 (Baseline.Ignore, Baseline.MinSNRByBand) component C7 resolves
// against when solving scan durations.
type Catalog interface {
	Stations() []*Station
	Sources() []*Source
	ObservingMode(name string) (ModeDescriptor, error)
	HorizonMask(stationID StationID) (HorizonMask, error)
	// Baseline returns the derived override record for the unordered pair
	// (a, b), or the zero value (not ignored, no per-band override) when
	// the catalog declares none for this pair.
	Baseline(a, b StationID) Baseline
}

// ModeDescriptor mirrors spec §6's ModeDescriptor; declared here (rather
// than imported from internal/obsmode) to keep Catalog free of a
// dependency on the obsmode package's concrete table format.
type ModeDescriptor struct {
	Name          string
	SampleRateMsps float64
	BitDepth      int
	Bands         []BandMode
}

// BandMode is one band's contribution to a ModeDescriptor.
type BandMode struct {
	Name            string
	CenterFreqMHz   float64
	BandwidthMHz    float64
}
