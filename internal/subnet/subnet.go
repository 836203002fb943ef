// Package subnet implements component C11: splitting a set of Candidates
// into disjoint subnets (station-disjoint groups) that may be committed
// simultaneously, per spec §4.6 step 3.
package subnet

import (
	"math"

	"github.com/vievs/vievssched/internal/candidate"
	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/score"
)

// Options bounds subnet admissibility (spec §4.6 step 3).
type Options struct {
	Enabled           bool
	MinSeparationRad  float64
	MinStationsPerNet int
	// TotalStations is the full network's station count, used to scale
	// each accepted subnet's score by its own share of the network (spec
	// §4.8: "rescaling by the sub-scans' own share of the network"). Zero
	// falls back to the sum of stations actually participating across the
	// accepted subnets.
	TotalStations int
}

// maxNets caps Partition at a single pair of simultaneous subnets: spec
// §4.8 and the C11 component table describe subnetting as splitting the
// network into a best *pair* of disjoint candidates, never three or more
// simultaneous subnets.
const maxNets = 2

// Partition greedily assigns the highest-scoring remaining candidate to a
// new subnet, then keeps adding the next-highest candidate whose stations
// are disjoint from every subnet formed so far and whose source is
// angularly separated from every already-chosen source by at least
// MinSeparationRad, per spec §4.6 step 3, stopping once maxNets subnets are
// formed. Each accepted subnet's score is rescaled by its own share of the
// network: its station count divided by the total (spec §4.8).
func Partition(ranked []score.Scored, sources map[catalog.SourceID]*catalog.Source, opts Options) [][]score.Scored {
	if !opts.Enabled || len(ranked) == 0 {
		return [][]score.Scored{{ranked[0]}}
	}

	var nets [][]score.Scored
	usedStations := map[catalog.StationID]bool{}
	var chosenSources []catalog.SourceID

	for _, cand := range ranked {
		if len(nets) >= maxNets {
			break
		}
		if opts.MinStationsPerNet > 0 && len(cand.Candidate.Stations) < opts.MinStationsPerNet {
			continue
		}
		if anyStationUsed(cand.Candidate, usedStations) {
			continue
		}
		if !separatedFromAll(cand.Candidate.Source, chosenSources, sources, opts.MinSeparationRad) {
			continue
		}
		nets = append(nets, []score.Scored{cand})
		for _, ss := range cand.Candidate.Stations {
			usedStations[ss.Station] = true
		}
		chosenSources = append(chosenSources, cand.Candidate.Source)
	}

	if len(nets) == 0 {
		return [][]score.Scored{{ranked[0]}}
	}

	if len(nets) > 1 {
		total := opts.TotalStations
		if total <= 0 {
			for _, net := range nets {
				total += len(net[0].Candidate.Stations)
			}
		}
		for i := range nets {
			share := float64(len(nets[i][0].Candidate.Stations)) / float64(total)
			nets[i][0].Total *= share
		}
	}
	return nets
}

func anyStationUsed(c *candidate.Candidate, used map[catalog.StationID]bool) bool {
	for _, ss := range c.Stations {
		if used[ss.Station] {
			return true
		}
	}
	return false
}

func separatedFromAll(src catalog.SourceID, chosen []catalog.SourceID, sources map[catalog.SourceID]*catalog.Source, minSep float64) bool {
	if minSep <= 0 || len(chosen) == 0 {
		return true
	}
	s := sources[src]
	if s == nil {
		return true
	}
	for _, other := range chosen {
		o := sources[other]
		if o == nil {
			continue
		}
		if angularSeparation(s.RARad, s.DecRad, o.RARad, o.DecRad) < minSep {
			return false
		}
	}
	return true
}

func angularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	cosA := math.Sin(dec1)*math.Sin(dec2) + math.Cos(dec1)*math.Cos(dec2)*math.Cos(ra1-ra2)
	if cosA > 1 {
		cosA = 1
	}
	if cosA < -1 {
		cosA = -1
	}
	return math.Acos(cosA)
}
