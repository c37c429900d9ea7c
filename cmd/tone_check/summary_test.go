package main

import (
	"errors"
	"testing"

	"tone-drift/internal/domain"
)

func scored(score float64, alignment string) scenarioResult {
	return scenarioResult{Evaluation: domain.Evaluation{
		Score:       score,
		Qualitative: domain.QualitativeEvaluation{ToneAlignment: alignment},
	}}
}

func TestSummarize(t *testing.T) {
	sum := summarize([]scenarioResult{
		scored(0.9, "High"),
		scored(0.7, "Medium"),
		{Name: "roto", Err: errors.New("timeout")},
	})
	if sum.Scored != 2 || sum.Failed != 1 || sum.Drifted != 0 {
		t.Fatalf("unexpected counts %+v", sum)
	}
	if sum.Average != 0.8 {
		t.Fatalf("expected average 0.8, got %v", sum.Average)
	}
	if sum.Passes(0.6) {
		t.Fatalf("expected failure when a scenario errored")
	}
}

func TestSummaryPasses(t *testing.T) {
	ok := summarize([]scenarioResult{scored(0.85, "High"), scored(0.75, "Medium")})
	if !ok.Passes(0.6) {
		t.Fatalf("expected pass, got %+v", ok)
	}
	if ok.Passes(0.9) {
		t.Fatalf("expected failure below min score")
	}

	drift := summarize([]scenarioResult{scored(0.9, "High"), scored(0.8, "low")})
	if drift.Drifted != 1 || drift.Passes(0.5) {
		t.Fatalf("expected drift to fail the check, got %+v", drift)
	}

	if (checkSummary{}).Passes(0) {
		t.Fatalf("expected empty run to fail")
	}
}
