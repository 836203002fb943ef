package config

import (
	"time"

	"github.com/midbel/toml"
)

// Resolved is the top-level decoded configuration, mirroring the shape of
// the teacher's Assist struct: a flat TOML document with a handful of
// nested option groups and Duration fields using custom (un)marshalling.
type Resolved struct {
	CatalogPath string `toml:"catalog"`
	SessionName string `toml:"session"`
	OutputPath  string `toml:"output"`

	SessionStart time.Time `toml:"session-start"`
	SessionEnd   time.Time `toml:"session-end"`

	MinScan Duration `toml:"min-scan"`
	MaxScan Duration `toml:"max-scan"`

	// Preob, Midob and Postob are the calibration/synchronisation/readout
	// intervals bracketing every scan's observing interval (glossary).
	Preob  Duration `toml:"preob"`
	Midob  Duration `toml:"midob"`
	Postob Duration `toml:"postob"`

	// FieldSystem is the fixed per-station overhead the field system needs
	// before it can accept a new slew command (spec §4.6 step 1).
	FieldSystem Duration `toml:"field-system"`

	MinStations int      `toml:"min-stations"`
	MaxSlew     Duration `toml:"max-slew"`
	MaxWait     Duration `toml:"max-wait"`

	// IdleTimeInterval is the idle-time-bonus threshold of spec §4.7 term 7:
	// a station idle longer than this since its previous scan contributes
	// to the idle-time score term.
	IdleTimeInterval Duration `toml:"idle-time-interval"`

	// MaxClockAdvance bounds how far the planner may advance its clock
	// looking for the next feasible scan before it ends the build with exit
	// reason "no-feasible-scan" (spec §4.11, §7).
	MaxClockAdvance Duration `toml:"max-clock-advance"`

	ObservingMode string `toml:"observing-mode"`

	// MinSNR is the default per-baseline, per-band SNR target SNR_min(b,k)
	// of spec §4.4's tau formula, used whenever a catalog.Baseline declares
	// no MinSNRByBand override for the band in question.
	MinSNR float64 `toml:"min-snr"`

	Weights WeightFactors `toml:"weights"`

	Subnetting SubnettingOptions `toml:"subnetting"`
	Fillin     FillinOptions     `toml:"fillin"`
	MultiSched MultiSchedOptions `toml:"multi-schedule"`
	SkyCover   SkyCoverOptions   `toml:"sky-coverage"`
	Rules      RulesOptions      `toml:"rules"`
	Quality    QualityOptions    `toml:"quality"`

	// Grid and Genetic configure the two multi-schedule driver (C15)
	// search modes; MultiSched.Mode selects which one the CLI runs.
	Grid    GridAxes    `toml:"grid"`
	Genetic GeneticPool `toml:"genetic"`

	// StationEarlyStop selects the C7 tie-break policy of spec §4.4's last
	// paragraph: false keeps "same observing duration" (a single shared
	// duration for the whole scan), true lets stations stop as soon as
	// their own baselines clear threshold.
	StationEarlyStop bool `toml:"station-early-stop"`

	// FirstScanAppliesToTagalong resolves spec §9 Open Question 1: whether
	// a station joining in tagalong mode is exempt from the "every station
	// must slew to its very first scan" rule. Default false: tagalong
	// stations still incur the first-scan slew, since a station that never
	// performed an ordinary first scan has no calibrated starting pointing
	// to tag along from.
	FirstScanAppliesToTagalong bool `toml:"first-scan-applies-to-tagalong"`

	// IncludeCalibrationOnly resolves spec §9 Open Question 2: whether
	// equipment flagged flux-component "C" (calibration-only) may still be
	// used for ordinary geodetic/astrometric scans. Default false: "C"
	// equipment is excluded from ordinary candidate generation and only
	// used by the calibrator-block rule (component C14).
	IncludeCalibrationOnly bool `toml:"include-calibration-only-equipment"`
}

type SubnettingOptions struct {
	Enabled     bool    `toml:"enabled"`
	MinAngleDeg float64 `toml:"min-angle-deg"`
	MinStations int     `toml:"min-stations"`
	// MinParticipatingStations is the joint station-count floor across
	// both sub-scans of an admissible pair (spec §4.8).
	MinParticipatingStations int `toml:"min-participating-stations"`
}

type FillinOptions struct {
	DuringSelection bool     `toml:"during-selection"`
	APosteriori     bool     `toml:"a-posteriori"`
	MinGap          Duration `toml:"min-gap"`
	MinStations     int      `toml:"min-stations"`
}

type MultiSchedOptions struct {
	Mode       string `toml:"mode"` // "grid" or "genetic"
	MaxBuilds  int    `toml:"max-builds"`
	Seed       int64  `toml:"seed"`
	Population int    `toml:"population"`
	Elite      int    `toml:"elite"`

	// NThreads is the worker-pool size of spec §5; ChunkSize is the
	// per-dequeue batch, defaulting to ceil(N/(4*NThreads)) when zero.
	NThreads  int `toml:"threads"`
	ChunkSize int `toml:"chunk-size"`
}

// SkyCoverOptions configures component C8's novelty tracker (spec §4.5).
type SkyCoverOptions struct {
	InfluenceDistanceDeg float64  `toml:"influence-distance-deg"`
	InfluenceInterval    Duration `toml:"influence-interval"`
	DistanceKernel       string   `toml:"distance-kernel"` // linear|cosine|constant
	TimeKernel           string   `toml:"time-kernel"`
	TwinDistanceMeters   float64  `toml:"twin-distance-meters"`
}

// RulesOptions configures component C14 (spec §4.10).
type RulesOptions struct {
	CalibratorCadence    Duration `toml:"calibrator-cadence"`
	CalibratorEveryNScans int     `toml:"calibrator-every-n-scans"`
	CalibratorMinScans   int      `toml:"calibrator-min-scans"`
	CalibratorGroup      []string `toml:"calibrator-group"`

	HighImpactTargets   map[string]HighImpactTarget `toml:"high-impact-targets"`
	HighImpactInterval  Duration                    `toml:"high-impact-interval"`
	HighImpactMarginDeg float64                     `toml:"high-impact-margin-deg"`

	FocusCornerCadence Duration `toml:"focus-corner-cadence"`
}

// HighImpactTarget is one monitored station's expected (az, el), degrees,
// consumed by component C14's high-impact rule (spec §4.10).
type HighImpactTarget struct {
	AzDeg float64 `toml:"az-deg"`
	ElDeg float64 `toml:"el-deg"`
}

// QualityOptions configures component C16 (spec §4.13).
type QualityOptions struct {
	MinScans              int     `toml:"min-scans"`
	MinBaselines          int     `toml:"min-baselines"`
	MaxNumberOfIterations int     `toml:"max-number-of-iterations"`
	GentleReductionCount  int     `toml:"gentle-reduction-count"`
	WeightObservations    float64 `toml:"weight-observations"`
	WeightSkyCoverage     float64 `toml:"weight-sky-coverage"`
	WeightStdDev          float64 `toml:"weight-stddev"`
	WeightLowDeclination  float64 `toml:"weight-low-declination"`
	WeightRepeatGoals     float64 `toml:"weight-repeat-goals"`
}

// Default mirrors the teacher's Default(): every field pre-populated with
// the system's stated defaults before the TOML file overrides them.
func Default() *Resolved {
	return &Resolved{
		MinScan: NewDuration(30),
		MaxScan: NewDuration(600),
		Preob:   NewDuration(10),
		Midob:   NewDuration(2),
		Postob:  NewDuration(10),

		MinStations:      2,
		MaxClockAdvance:  NewDuration(3600),
		IdleTimeInterval: NewDuration(600),
		MinSNR:           20,

		Weights: WeightFactors{
			SkyCoverage: 1, NumberOfObs: 1, Duration: 1,
			AverageSources: 1, AverageStations: 1, AverageBaselines: 1,
			Idle: 1, LowDeclination: 1, LowElevation: 1,
		}.Normalize(),
		Subnetting: SubnettingOptions{Enabled: true, MinAngleDeg: 20, MinStations: 2, MinParticipatingStations: 4},
		Fillin:     FillinOptions{DuringSelection: true, APosteriori: true, MinGap: NewDuration(60)},
		MultiSched: MultiSchedOptions{MaxBuilds: 1, NThreads: 1},
		SkyCover:   SkyCoverOptions{InfluenceDistanceDeg: 30, InfluenceInterval: NewDuration(3600), DistanceKernel: "linear", TimeKernel: "linear"},
		Quality:    QualityOptions{MaxNumberOfIterations: 1, GentleReductionCount: 1, WeightObservations: 1, WeightSkyCoverage: 1, WeightStdDev: 1, WeightLowDeclination: 1, WeightRepeatGoals: 1},
	}
}

// Load decodes file into a Resolved configuration on top of Default(),
// mirroring the teacher's Assist.Load.
func Load(file string) (*Resolved, error) {
	r := Default()
	if err := toml.DecodeFile(file, r); err != nil {
		return nil, err
	}
	return r, nil
}
