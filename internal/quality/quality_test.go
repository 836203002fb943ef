package quality

import (
	"testing"
	"time"

	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/config"
	"github.com/vievs/vievssched/internal/schedule"
)

func TestAssessFailsHardConditionsWithZeroScore(t *testing.T) {
	sch := &schedule.Schedule{}
	cfg := config.Default()
	cfg.Quality.MinScans = 2

	report := Assess(sch, *cfg)
	if report.Passed {
		t.Fatalf("expected Assess to fail the minimum-scans hard condition")
	}
	if report.Score != 0 {
		t.Errorf("Score = %v, want 0 on a failed hard condition", report.Score)
	}
	if len(report.Reasons) == 0 {
		t.Errorf("expected at least one reason for failing")
	}
}

func TestGentleReductionDisablesLeastObservedFirst(t *testing.T) {
	sources := []*catalog.Source{
		{ID: 1, Name: "popular"},
		{ID: 2, Name: "rare"},
		{ID: 3, Name: "mid"},
	}
	sources[0].State.NumberOfObservations = 10
	sources[1].State.NumberOfObservations = 0
	sources[2].State.NumberOfObservations = 5

	red := GentleReduction(sources, 1)
	if len(red.Disabled) != 1 || red.Disabled[0] != 2 {
		t.Fatalf("expected the least-observed source (2) to be disabled, got %v", red.Disabled)
	}
	if !sources[1].Ignore {
		t.Errorf("expected source 2's Ignore flag to be set")
	}
	if sources[0].Ignore || sources[2].Ignore {
		t.Errorf("GentleReduction should not touch sources beyond the requested count")
	}
}

func TestGentleReductionSkipsAlreadyIgnoredSources(t *testing.T) {
	sources := []*catalog.Source{
		{ID: 1, Name: "already-off", Ignore: true},
		{ID: 2, Name: "next-least"},
	}
	sources[1].State.NumberOfObservations = 3

	red := GentleReduction(sources, 1)
	if len(red.Disabled) != 1 || red.Disabled[0] != 2 {
		t.Fatalf("expected the only eligible source to be disabled, got %v", red.Disabled)
	}
}

func TestRepeatGoalRatioCountsOnlySourcesWithAGoal(t *testing.T) {
	sch := &schedule.Schedule{
		SessionStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		SessionEnd:   time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC),
		Sources: []*catalog.Source{
			{ID: 1, MinRepeat: 20 * time.Minute}, // needs 3 within the hour
			{ID: 2},                              // no goal, ignored by the ratio
		},
	}
	sch.Sources[0].State.NumberOfObservations = 3

	if got := repeatGoalRatio(sch); got != 1 {
		t.Errorf("repeatGoalRatio = %v, want 1 (goal satisfied)", got)
	}
}
