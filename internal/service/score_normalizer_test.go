package service

import (
	"testing"

	"tone-drift/internal/domain"
)

func TestScoreNormalizer_WorkedExample(t *testing.T) {
	score, points := ScoreNormalizer{}.Normalize(domain.QualitativeEvaluation{
		Fluency:       "High",
		Authenticity:  "Medium",
		ToneAlignment: "High",
		Readability:   "Good",
		Suggestions:   []string{"tighten the intro"},
	})

	want := domain.AccuracyPoints{Fluency: 3, Authenticity: 2, ToneAlignment: 3, Readability: 2}
	if points != want {
		t.Fatalf("expected points %+v, got %+v", want, points)
	}
	if score != 0.85 {
		t.Fatalf("expected score 0.85, got %v", score)
	}
}

func TestScoreNormalizer_PerfectAndFloor(t *testing.T) {
	perfect, _ := ScoreNormalizer{}.Normalize(domain.QualitativeEvaluation{
		Fluency: "High", Authenticity: "High", ToneAlignment: "High", Readability: "Excellent",
	})
	if perfect != 1.00 {
		t.Fatalf("expected perfect score 1.00, got %v", perfect)
	}

	// Manda la formula: todo Low con 6+ sugerencias da 2.5 / 16.5 = 0.15, no 0.
	// raw 5.5, penalty capped at 3 -> 2.5 / 16.5
	low, points := ScoreNormalizer{}.Normalize(domain.QualitativeEvaluation{
		Fluency: "Low", Authenticity: "Low", ToneAlignment: "Low", Readability: "Poor",
		Suggestions: []string{"a", "b", "c", "d", "e", "f", "g"},
	})
	if points != (domain.AccuracyPoints{Fluency: 1, Authenticity: 1, ToneAlignment: 1, Readability: 1}) {
		t.Fatalf("unexpected points %+v", points)
	}
	if low != 0.15 {
		t.Fatalf("expected all-low score 0.15, got %v", low)
	}

	unknown, points := ScoreNormalizer{}.Normalize(domain.QualitativeEvaluation{
		Fluency: "Unknown", Authenticity: "", ToneAlignment: "meh", Readability: "Unknown",
		Suggestions: []string{"a", "b", "c", "d", "e", "f"},
	})
	if points != (domain.AccuracyPoints{}) {
		t.Fatalf("expected zero points for unknown labels, got %+v", points)
	}
	if unknown != 0 {
		t.Fatalf("expected 0.00 for unknown labels, got %v", unknown)
	}
}

func TestScoreNormalizer_LabelsAreCaseInsensitive(t *testing.T) {
	a, _ := ScoreNormalizer{}.Normalize(domain.QualitativeEvaluation{
		Fluency: " high ", Authenticity: "MEDIUM", ToneAlignment: "High", Readability: "good",
	})
	b, _ := ScoreNormalizer{}.Normalize(domain.QualitativeEvaluation{
		Fluency: "High", Authenticity: "Medium", ToneAlignment: "High", Readability: "Good",
	})
	if a != b {
		t.Fatalf("expected normalized labels to match, got %v vs %v", a, b)
	}
}

func TestScoreNormalizer_AlwaysInRange(t *testing.T) {
	levels := []string{"High", "Medium", "Low", "Unknown"}
	readability := []string{"Excellent", "Good", "Poor", ""}
	for _, f := range levels {
		for _, a := range levels {
			for _, ta := range levels {
				for _, r := range readability {
					for n := 0; n <= 8; n++ {
						score, _ := ScoreNormalizer{}.Normalize(domain.QualitativeEvaluation{
							Fluency: f, Authenticity: a, ToneAlignment: ta, Readability: r,
							Suggestions: make([]string, n),
						})
						if score < 0 || score > 1 {
							t.Fatalf("score out of range: %v for %s/%s/%s/%s n=%d", score, f, a, ta, r, n)
						}
					}
				}
			}
		}
	}
}

func TestIsDrifted(t *testing.T) {
	if !IsDrifted(domain.Evaluation{Qualitative: domain.QualitativeEvaluation{ToneAlignment: "low"}}) {
		t.Fatalf("expected low alignment to be drift")
	}
	if IsDrifted(domain.Evaluation{Qualitative: domain.QualitativeEvaluation{ToneAlignment: "Medium"}}) {
		t.Fatalf("medium alignment is not drift")
	}
}
