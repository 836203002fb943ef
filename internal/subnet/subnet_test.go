package subnet

import (
	"math"
	"testing"

	"github.com/vievs/vievssched/internal/candidate"
	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/score"
)

func TestPartitionSplitsDisjointStations(t *testing.T) {
	sources := map[catalog.SourceID]*catalog.Source{
		1: {ID: 1, Name: "A", RARad: 0, DecRad: 0},
		2: {ID: 2, Name: "B", RARad: 3.0, DecRad: 1.0},
	}
	ranked := []score.Scored{
		{Candidate: &candidate.Candidate{Source: 1, Stations: []candidate.StationStart{{Station: 1}, {Station: 2}}}, Total: 2.0},
		{Candidate: &candidate.Candidate{Source: 2, Stations: []candidate.StationStart{{Station: 3}, {Station: 4}}}, Total: 1.5},
	}
	nets := Partition(ranked, sources, Options{Enabled: true, MinStationsPerNet: 2})
	if len(nets) != 2 {
		t.Fatalf("expected 2 disjoint subnets, got %d", len(nets))
	}
}

func TestPartitionRejectsOverlappingStations(t *testing.T) {
	sources := map[catalog.SourceID]*catalog.Source{
		1: {ID: 1, Name: "A", RARad: 0, DecRad: 0},
		2: {ID: 2, Name: "B", RARad: 3.0, DecRad: 1.0},
	}
	ranked := []score.Scored{
		{Candidate: &candidate.Candidate{Source: 1, Stations: []candidate.StationStart{{Station: 1}, {Station: 2}}}, Total: 2.0},
		{Candidate: &candidate.Candidate{Source: 2, Stations: []candidate.StationStart{{Station: 2}, {Station: 3}}}, Total: 1.5},
	}
	nets := Partition(ranked, sources, Options{Enabled: true, MinStationsPerNet: 2})
	if len(nets) != 1 {
		t.Fatalf("expected only 1 subnet since candidates share station 2, got %d", len(nets))
	}
}

func TestPartitionScalesByStationShareNotUniformly(t *testing.T) {
	sources := map[catalog.SourceID]*catalog.Source{
		1: {ID: 1, Name: "A", RARad: 0, DecRad: 0},
		2: {ID: 2, Name: "B", RARad: 3.0, DecRad: 1.0},
	}
	ranked := []score.Scored{
		{Candidate: &candidate.Candidate{Source: 1, Stations: []candidate.StationStart{{Station: 1}, {Station: 2}, {Station: 3}, {Station: 4}}}, Total: 1.0},
		{Candidate: &candidate.Candidate{Source: 2, Stations: []candidate.StationStart{{Station: 5}, {Station: 6}}}, Total: 1.0},
	}
	nets := Partition(ranked, sources, Options{Enabled: true, MinStationsPerNet: 2, TotalStations: 6})
	if len(nets) != 2 {
		t.Fatalf("expected 2 disjoint subnets, got %d", len(nets))
	}
	// 4-station net keeps 4/6 of its score, 2-station net keeps 2/6 — not
	// the uniform 1/len(nets)=0.5 a station-count-blind rescale would give.
	if got, want := nets[0][0].Total, 4.0/6.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("4-station net: got %.6f, want %.6f", got, want)
	}
	if got, want := nets[1][0].Total, 2.0/6.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("2-station net: got %.6f, want %.6f", got, want)
	}
}

func TestPartitionCapsAtTwoSubnets(t *testing.T) {
	sources := map[catalog.SourceID]*catalog.Source{
		1: {ID: 1, Name: "A", RARad: 0, DecRad: 0},
		2: {ID: 2, Name: "B", RARad: 1.5, DecRad: 0},
		3: {ID: 3, Name: "C", RARad: 3.0, DecRad: 0},
	}
	ranked := []score.Scored{
		{Candidate: &candidate.Candidate{Source: 1, Stations: []candidate.StationStart{{Station: 1}, {Station: 2}}}, Total: 3.0},
		{Candidate: &candidate.Candidate{Source: 2, Stations: []candidate.StationStart{{Station: 3}, {Station: 4}}}, Total: 2.0},
		{Candidate: &candidate.Candidate{Source: 3, Stations: []candidate.StationStart{{Station: 5}, {Station: 6}}}, Total: 1.0},
	}
	nets := Partition(ranked, sources, Options{Enabled: true, MinStationsPerNet: 2})
	if len(nets) != 2 {
		t.Fatalf("expected subnetting to cap at 2 simultaneous subnets (spec §4.8's pairwise split), got %d", len(nets))
	}
}

func TestPartitionDisabledReturnsSingleTop(t *testing.T) {
	ranked := []score.Scored{
		{Candidate: &candidate.Candidate{Source: 1, Stations: []candidate.StationStart{{Station: 1}}}, Total: 2.0},
	}
	nets := Partition(ranked, nil, Options{Enabled: false})
	if len(nets) != 1 || len(nets[0]) != 1 {
		t.Fatalf("expected single subnet with single candidate when disabled")
	}
}
