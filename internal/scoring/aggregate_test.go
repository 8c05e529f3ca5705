package scoring

import (
	"math"
	"slices"
	"testing"
)

func TestOverallWeights(t *testing.T) {
	got := Overall(SubScores{Semantic: 50, Skills: 100, Experience: 100, Education: 0, Keywords: 40})
	if math.Abs(got-69) > 1e-9 {
		t.Fatalf("expected 69, got %v", got)
	}
}

func TestOverallStaysInRange(t *testing.T) {
	levels := []float64{0, 12.5, 50, 99.9, 100}
	for _, a := range levels {
		for _, b := range levels {
			for _, c := range levels {
				s := SubScores{Semantic: a, Skills: b, Experience: c, Education: a, Keywords: b}
				if got := Overall(s); got < 0 || got > 100+1e-9 {
					t.Fatalf("overall %v out of range for %+v", got, s)
				}
			}
		}
	}
}

func TestAggregateScenario(t *testing.T) {
	resume, job := NewDocument(scenarioResume), NewDocument(scenarioJob)
	scores, skills := Lexical(resume, job)
	scores.Semantic = SemanticScore(0.5)

	got := Aggregate(scores, skills)

	if math.Abs(got.Overall-71.25) > 1e-9 {
		t.Fatalf("expected overall 71.25, got %v", got.Overall)
	}
	expectStrengths := []string{StrengthExperience, StrengthEducation, StrengthSkills}
	if !slices.Equal(got.Strengths, expectStrengths) {
		t.Fatalf("expected strengths %q, got %q", expectStrengths, got.Strengths)
	}
	expectRecs := []string{
		"Highlight or acquire these important skills mentioned in the job description: aws",
		RecommendKeywords,
		RecommendMirrorLanguage,
	}
	if !slices.Equal(got.Recommendations, expectRecs) {
		t.Fatalf("expected recommendations %q, got %q", expectRecs, got.Recommendations)
	}
}

func TestAggregateRules(t *testing.T) {
	tests := []struct {
		name      string
		scores    SubScores
		missing   []string
		strengths []string
		recs      []string
	}{
		{
			name:      "weak everywhere falls back to foundation",
			scores:    SubScores{},
			missing:   []string{"aws", "sql"},
			strengths: []string{StrengthFoundation},
			recs: []string{
				MissingSkillsRecommendation([]string{"aws", "sql"}),
				RecommendKeywords,
				RecommendMirrorLanguage,
			},
		},
		{
			name:      "low skills without missing suggests a skills section",
			scores:    SubScores{Semantic: 90, Skills: 0, Experience: 70, Education: 10, Keywords: 80},
			strengths: []string{StrengthExperience},
			recs:      []string{RecommendSkillsSection},
		},
		{
			name:      "strong everywhere",
			scores:    SubScores{Semantic: 60, Skills: 80, Experience: 100, Education: 70, Keywords: 70},
			strengths: []string{StrengthExperience, StrengthEducation, StrengthSkills},
			recs:      []string{RecommendAlreadyAligned},
		},
		{
			name:      "skills strength below recommendation threshold",
			scores:    SubScores{Semantic: 80, Skills: 60, Experience: 0, Education: 0, Keywords: 90},
			missing:   []string{"docker"},
			strengths: []string{StrengthSkills},
			recs:      []string{MissingSkillsRecommendation([]string{"docker"})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.scores, SkillMatch{Score: tt.scores.Skills, Missing: tt.missing})
			if !slices.Equal(got.Strengths, tt.strengths) {
				t.Fatalf("expected strengths %q, got %q", tt.strengths, got.Strengths)
			}
			if !slices.Equal(got.Recommendations, tt.recs) {
				t.Fatalf("expected recommendations %q, got %q", tt.recs, got.Recommendations)
			}
		})
	}
}

func TestAggregateCopiesSkills(t *testing.T) {
	skills := SkillMatch{Matched: []string{"go"}, Missing: []string{"sql"}}
	got := Aggregate(SubScores{}, skills)
	skills.Matched[0] = "mutated"

	if got.MatchedSkills[0] != "go" {
		t.Fatalf("expected assessment to own its slices")
	}
}

func TestAssessmentClone(t *testing.T) {
	a := Aggregate(SubScores{}, SkillMatch{})
	c := a.Clone()
	c.Strengths[0] = "changed"
	c.Recommendations = append(c.Recommendations, "extra")

	if a.Strengths[0] == "changed" || len(a.Recommendations) == len(c.Recommendations) {
		t.Fatalf("expected clone to be independent")
	}
}
