package config

import (
	"math"
	"time"
)

// MultiScheduleAxis names one knob the grid/genetic driver (component C15)
// varies across builds, mirroring the optional fields of VieSched++'s
// MultiScheduling::Parameters.
type MultiScheduleAxis struct {
	Name string `toml:"name"`

	// Values enumerates the candidate settings for a grid search axis.
	// Exactly one of Values or {Min,Max,Step} should be populated.
	Values []float64 `toml:"values"`

	Min  float64 `toml:"min"`
	Max  float64 `toml:"max"`
	Step float64 `toml:"step"`
}

// MultiScheduleParameters is one point in the multi-schedule parameter
// space: a concrete weight-factor set plus a handful of scalar/boolean
// overrides, mirroring MultiScheduling::Parameters' plain-old-data shape
// (there it is a struct of boost::optional<T> fields). The driver always
// copies Weights and the three boolean fields over the base configuration,
// adds StartOffset to the base session start, and replaces the base
// subnetting angle/station floor only when SubnettingMinAngleRad/
// SubnettingMinStations are non-zero.
type MultiScheduleParameters struct {
	Weights WeightFactors

	StartOffset time.Duration

	SubnettingEnabled     bool
	SubnettingMinAngleRad float64
	SubnettingMinStations int

	FillinDuringSelection bool
	FillinAPosteriori     bool

	// StationWeights/SourceWeights/BaselineWeights are name-keyed weights
	// mirroring MultiScheduling::Parameters' std::map<string,...> overrides;
	// neither the driver nor the scorer reads them.
	StationWeights  map[string]float64
	SourceWeights   map[string]float64
	BaselineWeights map[string]float64
}

// GridAxes is the set of axes a grid-mode search enumerates the Cartesian
// product of (spec §5.3).
type GridAxes struct {
	Axes []MultiScheduleAxis `toml:"axis"`
}

// CartesianProduct enumerates every combination across a's axes, truncated
// to maxBuilds after a seeded Fisher-Yates shuffle when the full product
// would exceed it (spec §5.3: "grid mode may truncate an overlarge
// product via a seeded shuffle").
func (a GridAxes) CartesianProduct(seed int64, maxBuilds int) []map[string]float64 {
	if len(a.Axes) == 0 {
		return nil
	}
	total := 1
	for _, ax := range a.Axes {
		n := len(ax.Values)
		if n == 0 {
			n = int((ax.Max-ax.Min)/ax.Step) + 1
		}
		if n <= 0 {
			n = 1
		}
		total *= n
	}

	out := make([]map[string]float64, 0, total)
	idx := make([]int, len(a.Axes))
	for {
		point := make(map[string]float64, len(a.Axes))
		for i, ax := range a.Axes {
			point[ax.Name] = axisValue(ax, idx[i])
		}
		out = append(out, point)

		i := len(a.Axes) - 1
		for i >= 0 {
			idx[i]++
			if idx[i] < axisLen(a.Axes[i]) {
				break
			}
			idx[i] = 0
			i--
		}
		if i < 0 {
			break
		}
	}

	if maxBuilds > 0 && len(out) > maxBuilds {
		shuffle(out, seed)
		out = out[:maxBuilds]
	}
	return out
}

func axisLen(a MultiScheduleAxis) int {
	if len(a.Values) > 0 {
		return len(a.Values)
	}
	n := int((a.Max-a.Min)/a.Step) + 1
	if n < 1 {
		return 1
	}
	return n
}

func axisValue(a MultiScheduleAxis, i int) float64 {
	if len(a.Values) > 0 {
		return a.Values[i]
	}
	return a.Min + float64(i)*a.Step
}

// shuffle is a seeded Fisher-Yates, deterministic for a given seed so grid
// truncation is reproducible across runs (spec §9 determinism invariant).
func shuffle(xs []map[string]float64, seed int64) {
	rnd := newLCG(seed)
	for i := len(xs) - 1; i > 0; i-- {
		j := int(rnd.next() % uint64(i+1))
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// lcg is a tiny deterministic linear-congruential generator, used instead
// of math/rand so build-parameter shuffling never depends on global
// generator state shared with other parts of the program.
type lcg struct{ state uint64 }

func newLCG(seed int64) *lcg {
	s := uint64(seed)
	if s == 0 {
		s = 0x9e3779b97f4a7c15
	}
	return &lcg{state: s}
}

func (g *lcg) next() uint64 {
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return g.state >> 1
}

// GeneticPool drives genetic-mode search: elite/random parent selection
// plus Gaussian perturbation with a mutation floor (spec §5.3).
type GeneticPool struct {
	PopulationSize int     `toml:"population-size"`
	EliteCount     int     `toml:"elite-count"`
	MutationSigma  float64 `toml:"mutation-sigma"`
	MutationFloor  float64 `toml:"mutation-floor"`
}

// Mutate perturbs each numeric weight of p by a Gaussian draw scaled by
// MutationSigma, floored at MutationFloor, then renormalizes the result
// (spec §5.3: "offspring weights are renormalized after perturbation").
func (g GeneticPool) Mutate(p MultiScheduleParameters, seed int64) MultiScheduleParameters {
	rnd := newLCG(seed)
	perturb := func(v float64) float64 {
		// Box-Muller: two uniform draws in (0,1) and [0,1) give one
		// standard-normal draw.
		u1 := (float64(rnd.next()%1_000_000) + 1) / 1_000_001
		u2 := float64(rnd.next()%1_000_000) / 1_000_000
		noise := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2) * g.MutationSigma
		out := v + noise
		if out < g.MutationFloor {
			out = g.MutationFloor
		}
		return out
	}
	p.Weights = WeightFactors{
		SkyCoverage:      perturb(p.Weights.SkyCoverage),
		NumberOfObs:      perturb(p.Weights.NumberOfObs),
		Duration:         perturb(p.Weights.Duration),
		AverageSources:   perturb(p.Weights.AverageSources),
		AverageStations:  perturb(p.Weights.AverageStations),
		AverageBaselines: perturb(p.Weights.AverageBaselines),
		Idle:             perturb(p.Weights.Idle),
		LowDeclination:   perturb(p.Weights.LowDeclination),
		LowElevation:     perturb(p.Weights.LowElevation),
	}.Normalize()
	return p
}
