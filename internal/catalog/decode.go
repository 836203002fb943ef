package catalog

import (
	"fmt"
	"time"

	"github.com/midbel/toml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vievs/vievssched/internal/astro"
	"github.com/vievs/vievssched/internal/geo"
	"github.com/vievs/vievssched/internal/horizon"
)

// document is the on-disk catalog shape decoded by Decode: a flat TOML
// document of stations, sources and observing modes, the equivalent-TOML
// stand-in for the skd/vex catalog readers spec §1 places out of scope.
type document struct {
	Stations  []stationSpec  `toml:"station"`
	Sources   []sourceSpec   `toml:"source"`
	Modes     []modeSpec     `toml:"mode"`
	Baselines []baselineSpec `toml:"baseline"`
}

// baselineSpec is the on-disk form of spec §3's Baseline entity: the
// per-pair ignore flag and per-band minimum-SNR overrides the catalog's
// station/source tables alone can't carry.
type baselineSpec struct {
	StationA     string             `toml:"station-a"`
	StationB     string             `toml:"station-b"`
	Ignore       bool               `toml:"ignore"`
	MinSNRByBand map[string]float64 `toml:"min-snr-by-band"`
}

type axisSpec struct {
	RateDegPerSec float64 `toml:"rate-deg-per-sec"`
	OverheadSec   float64 `toml:"overhead-sec"`
	LowerDeg      float64 `toml:"lower-deg"`
	UpperDeg      float64 `toml:"upper-deg"`
}

func (a axisSpec) resolve() Axis {
	return Axis{
		RateRadPerSec: a.RateDegPerSec * astro.DegToRad,
		Overhead:      time.Duration(a.OverheadSec * float64(time.Second)),
		LowerRad:      a.LowerDeg * astro.DegToRad,
		UpperRad:      a.UpperDeg * astro.DegToRad,
	}
}

type wrapSpec struct {
	Section  string  `toml:"section"`
	LowerDeg float64 `toml:"lower-deg"`
	UpperDeg float64 `toml:"upper-deg"`
}

type horizonSpec struct {
	Kind  string    `toml:"kind"` // "line" (default) or "step"
	AzDeg []float64 `toml:"az-deg"`
	ElDeg []float64 `toml:"el-deg"`
}

type equipmentSpec struct {
	Band            string  `toml:"band"`
	SEFDJansky      float64 `toml:"sefd-jansky"`
	CalibrationOnly bool    `toml:"calibration-only"`
}

type stationSpec struct {
	Name    string  `toml:"name"`
	OneCode string  `toml:"one-code"`
	TwoCode string  `toml:"two-code"`
	XMeters float64 `toml:"x-meters"`
	YMeters float64 `toml:"y-meters"`
	ZMeters float64 `toml:"z-meters"`

	Mount string   `toml:"mount"` // "azel" | "hadec" | "xy"
	Axis1 axisSpec `toml:"axis1"`
	Axis2 axisSpec `toml:"axis2"`
	Wraps []wrapSpec `toml:"wrap"`

	Horizon horizonSpec `toml:"horizon"`

	Equipment []equipmentSpec `toml:"equipment"`

	MinElevationDeg  float64 `toml:"min-elevation-deg"`
	MaxTotalObsHours float64 `toml:"max-total-obs-hours"`
	MaxNumberOfScans int     `toml:"max-number-of-scans"`
}

type fluxKnotSpec struct {
	UVRadiusMeters float64 `toml:"uv-radius-meters"`
	FluxJy         float64 `toml:"flux-jy"`
}

type fluxComponentSpec struct {
	FluxJy           float64 `toml:"flux-jy"`
	MajorMas         float64 `toml:"major-mas"`
	MinorMas         float64 `toml:"minor-mas"`
	PositionAngleDeg float64 `toml:"position-angle-deg"`
}

type bandFluxSpec struct {
	Band       string              `toml:"band"`
	PowerLaw   []fluxKnotSpec      `toml:"power-law"`
	Components []fluxComponentSpec `toml:"component"`
}

type sourceSpec struct {
	Name   string  `toml:"name"`
	RAHour float64 `toml:"ra-hour"`
	DecDeg float64 `toml:"dec-deg"`

	Flux []bandFluxSpec `toml:"flux"`

	MinElevationDeg  *float64 `toml:"min-elevation-deg"`
	RequiredStations []string `toml:"required-stations"`
	ExcludedStations []string `toml:"excluded-stations"`
	MinRepeatSec     float64  `toml:"min-repeat-sec"`
	Ignore           bool     `toml:"ignore"`
}

type bandModeSpec struct {
	Name                  string  `toml:"name"`
	CenterFreqMHz         float64 `toml:"center-freq-mhz"`
	BandwidthMHz          float64 `toml:"bandwidth-mhz"`
	RecordedBandwidthMHz  float64 `toml:"recorded-bandwidth-mhz"`
}

type modeSpec struct {
	Name           string         `toml:"name"`
	SampleRateMsps float64        `toml:"sample-rate-msps"`
	BitDepth       int            `toml:"bit-depth"`
	Bands          []bandModeSpec `toml:"band"`
}

// staticCatalog is the in-memory Catalog built once from a decoded
// document; stations and sources are addressed by the arena-plus-index
// StationID/SourceID (spec §9), built in file order.
type staticCatalog struct {
	stations  []*Station
	sources   []*Source
	modes     map[string]ModeDescriptor
	masks     map[StationID]HorizonMask
	baselines map[[2]StationID]Baseline
}

func (c *staticCatalog) Stations() []*Station { return c.stations }
func (c *staticCatalog) Sources() []*Source   { return c.sources }

// Baseline returns the decoded override for the unordered pair (a, b), or
// the zero value when the catalog declares no [[baseline]] entry for it.
func (c *staticCatalog) Baseline(a, b StationID) Baseline {
	lo, hi := Key(a, b)
	return c.baselines[[2]StationID{lo, hi}]
}

func (c *staticCatalog) ObservingMode(name string) (ModeDescriptor, error) {
	m, ok := c.modes[name]
	if !ok {
		return ModeDescriptor{}, fmt.Errorf("catalog: unknown observing mode %q", name)
	}
	return m, nil
}

func (c *staticCatalog) HorizonMask(id StationID) (HorizonMask, error) {
	m, ok := c.masks[id]
	if !ok {
		return nil, fmt.Errorf("catalog: no horizon mask for station id %d", id)
	}
	return m, nil
}

// Decode reads a catalog document from file (TOML, the same decoder the
// teacher uses for its configuration, per SPEC_FULL.md's ambient stack
// note that no XML/skd/vex reader is in scope) and builds a ready-to-use
// Catalog, resolving cross-references (source required/excluded station
// names to StationID) and cable-wrap string tags to WrapSection.
func Decode(file string) (Catalog, error) {
	var doc document
	if err := toml.DecodeFile(file, &doc); err != nil {
		return nil, err
	}
	return build(doc)
}

func build(doc document) (*staticCatalog, error) {
	c := &staticCatalog{
		modes: make(map[string]ModeDescriptor, len(doc.Modes)),
		masks: make(map[StationID]HorizonMask, len(doc.Stations)),
	}

	byName := make(map[string]StationID, len(doc.Stations))
	for i, sp := range doc.Stations {
		id := StationID(i)
		st, mask, err := resolveStation(id, sp)
		if err != nil {
			return nil, fmt.Errorf("catalog: station %q: %w", sp.Name, err)
		}
		c.stations = append(c.stations, st)
		c.masks[id] = mask
		st.Horizon = mask
		byName[sp.Name] = id
		if sp.OneCode != "" {
			byName[sp.OneCode] = id
		}
		if sp.TwoCode != "" {
			byName[sp.TwoCode] = id
		}
	}

	for i, sp := range doc.Sources {
		id := SourceID(i)
		src, err := resolveSource(id, sp, byName)
		if err != nil {
			return nil, fmt.Errorf("catalog: source %q: %w", sp.Name, err)
		}
		c.sources = append(c.sources, src)
	}

	for _, mp := range doc.Modes {
		c.modes[mp.Name] = resolveMode(mp)
	}

	c.baselines = make(map[[2]StationID]Baseline, len(doc.Baselines))
	for _, bp := range doc.Baselines {
		a, ok := byName[bp.StationA]
		if !ok {
			return nil, fmt.Errorf("catalog: baseline references unknown station %q", bp.StationA)
		}
		b, ok := byName[bp.StationB]
		if !ok {
			return nil, fmt.Errorf("catalog: baseline references unknown station %q", bp.StationB)
		}
		lo, hi := Key(a, b)
		c.baselines[[2]StationID{lo, hi}] = Baseline{A: lo, B: hi, Ignore: bp.Ignore, MinSNRByBand: bp.MinSNRByBand}
	}

	return c, nil
}

func resolveMount(tag string) MountType {
	switch tag {
	case "hadec":
		return MountHaDec
	case "xy":
		return MountXY
	default:
		return MountAzEl
	}
}

func resolveStation(id StationID, sp stationSpec) (*Station, HorizonMask, error) {
	st := &Station{
		ID:      id,
		Name:    sp.Name,
		OneCode: sp.OneCode,
		TwoCode: sp.TwoCode,

		PositionXYZ: r3.Vec{X: sp.XMeters, Y: sp.YMeters, Z: sp.ZMeters},

		Mount: resolveMount(sp.Mount),
		Axis1: sp.Axis1.resolve(),
		Axis2: sp.Axis2.resolve(),

		MinElevationRad:  sp.MinElevationDeg * astro.DegToRad,
		MaxTotalObsTime:  time.Duration(sp.MaxTotalObsHours * float64(time.Hour)),
		MaxNumberOfScans: sp.MaxNumberOfScans,

		Equipment: make(map[string]Equipment, len(sp.Equipment)),
	}
	st.LonRad, st.LatRad, _ = geo.GeodeticOf(st.PositionXYZ)

	for _, w := range sp.Wraps {
		section, ok := ParseWrapSection(w.Section)
		if !ok {
			return nil, nil, fmt.Errorf("unknown cable-wrap section %q", w.Section)
		}
		st.Wraps = append(st.Wraps, WrapLimits{
			Section:  section,
			LowerRad: w.LowerDeg * astro.DegToRad,
			UpperRad: w.UpperDeg * astro.DegToRad,
		})
	}
	if len(st.Wraps) == 0 {
		// No wrap sections declared: a single unrestricted neutral section,
		// so kinematics.Slew never rejects a mount with no cable-wrap limit.
		st.Wraps = append(st.Wraps, WrapLimits{Section: WrapNeutral, LowerRad: -1e9, UpperRad: 1e9})
	}

	for _, eq := range sp.Equipment {
		st.Equipment[eq.Band] = Equipment{Band: eq.Band, SEFDJansky: eq.SEFDJansky, CalibrationOnly: eq.CalibrationOnly}
	}

	mask, err := resolveHorizon(sp.Horizon)
	if err != nil {
		return nil, nil, err
	}
	return st, mask, nil
}

func resolveHorizon(hs horizonSpec) (HorizonMask, error) {
	if len(hs.AzDeg) == 0 {
		return horizon.NewLineMask(nil, nil), nil
	}
	if len(hs.AzDeg) != len(hs.ElDeg) {
		return nil, fmt.Errorf("horizon mask: az-deg and el-deg length mismatch")
	}
	az := make([]float64, len(hs.AzDeg))
	el := make([]float64, len(hs.ElDeg))
	for i := range hs.AzDeg {
		az[i] = hs.AzDeg[i] * astro.DegToRad
		el[i] = hs.ElDeg[i] * astro.DegToRad
	}
	if hs.Kind == "step" {
		return horizon.NewStepMask(az, el), nil
	}
	return horizon.NewLineMask(az, el), nil
}

func resolveSource(id SourceID, sp sourceSpec, byName map[string]StationID) (*Source, error) {
	src := &Source{
		ID:     id,
		Name:   sp.Name,
		RARad:  sp.RAHour * 15 * astro.DegToRad,
		DecRad: sp.DecDeg * astro.DegToRad,

		MinRepeat: time.Duration(sp.MinRepeatSec * float64(time.Second)),
		Ignore:    sp.Ignore,
	}
	if sp.MinElevationDeg != nil {
		v := *sp.MinElevationDeg * astro.DegToRad
		src.MinElevationRad = &v
	}
	for _, name := range sp.RequiredStations {
		stID, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("required station %q not in catalog", name)
		}
		src.RequiredStations = append(src.RequiredStations, stID)
	}
	for _, name := range sp.ExcludedStations {
		stID, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("excluded station %q not in catalog", name)
		}
		src.ExcludedStations = append(src.ExcludedStations, stID)
	}
	for _, bf := range sp.Flux {
		entry := BandFlux{Band: bf.Band}
		for _, k := range bf.PowerLaw {
			entry.PowerLaw = append(entry.PowerLaw, FluxKnot{UVRadiusMeters: k.UVRadiusMeters, FluxJy: k.FluxJy})
		}
		for _, comp := range bf.Components {
			entry.Components = append(entry.Components, FluxComponent{
				FluxJy: comp.FluxJy, MajorMas: comp.MajorMas, MinorMas: comp.MinorMas, PositionAngleDeg: comp.PositionAngleDeg,
			})
		}
		src.Flux = append(src.Flux, entry)
	}
	return src, nil
}

func resolveMode(mp modeSpec) ModeDescriptor {
	m := ModeDescriptor{Name: mp.Name, SampleRateMsps: mp.SampleRateMsps, BitDepth: mp.BitDepth}
	for _, b := range mp.Bands {
		m.Bands = append(m.Bands, BandMode{Name: b.Name, CenterFreqMHz: b.CenterFreqMHz, BandwidthMHz: b.BandwidthMHz})
	}
	return m
}
