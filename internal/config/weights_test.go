package config

import "testing"

func TestNormalizeSumsToOne(t *testing.T) {
	w := WeightFactors{SkyCoverage: 2, NumberOfObs: 2, Duration: 0, AverageSources: 0,
		AverageStations: 0, AverageBaselines: 0, Idle: 0, LowDeclination: 0, LowElevation: 0}
	n := w.Normalize()
	sum := n.SkyCoverage + n.NumberOfObs + n.Duration + n.AverageSources +
		n.AverageStations + n.AverageBaselines + n.Idle + n.LowDeclination + n.LowElevation
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("expected normalized weights to sum to 1, got %f", sum)
	}
}

func TestNormalizeLeavesAllZeroUntouched(t *testing.T) {
	var w WeightFactors
	n := w.Normalize()
	if n != w {
		t.Fatalf("expected all-zero weights to pass through unchanged, got %#v", n)
	}
}
