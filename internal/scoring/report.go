package scoring

import (
	"math"

	"github.com/spigell/resume-scorer/internal/ai"
)

const (
	MethodTraditional = "traditional"
	MethodEnhancedLLM = "enhanced_llm"
)

// MatchReport is the serialized result of one analysis.
type MatchReport struct {
	OverallMatch    float64      `json:"overallMatch" yaml:"overallMatch"`
	SemanticMatch   float64      `json:"semanticMatch" yaml:"semanticMatch"`
	SkillsMatch     float64      `json:"skillsMatch" yaml:"skillsMatch"`
	ExperienceMatch float64      `json:"experienceMatch" yaml:"experienceMatch"`
	EducationMatch  float64      `json:"educationMatch" yaml:"educationMatch"`
	KeywordsMatch   float64      `json:"keywordsMatch" yaml:"keywordsMatch"`
	MatchedSkills   []string     `json:"matchedSkills" yaml:"matchedSkills"`
	MissingSkills   []string     `json:"missingSkills" yaml:"missingSkills"`
	Recommendations []string     `json:"recommendations" yaml:"recommendations"`
	Strengths       []string     `json:"strengths" yaml:"strengths"`
	AnalysisMethod  string       `json:"analysisMethod" yaml:"analysisMethod"`
	LLMAnalysis     *ai.Analysis `json:"llmAnalysis,omitempty" yaml:"llmAnalysis,omitempty"`
}

// Assemble builds the report. A non-nil analysis marks the report as LLM
// enhanced. Scores are rounded to one decimal here and nowhere else.
func Assemble(a Assessment, analysis *ai.Analysis) MatchReport {
	method := MethodTraditional
	if analysis != nil {
		method = MethodEnhancedLLM
	}

	return MatchReport{
		OverallMatch:    round1(a.Overall),
		SemanticMatch:   round1(a.Scores.Semantic),
		SkillsMatch:     round1(a.Scores.Skills),
		ExperienceMatch: round1(a.Scores.Experience),
		EducationMatch:  round1(a.Scores.Education),
		KeywordsMatch:   round1(a.Scores.Keywords),
		MatchedSkills:   append([]string{}, a.MatchedSkills...),
		MissingSkills:   append([]string{}, a.MissingSkills...),
		Recommendations: append([]string{}, a.Recommendations...),
		Strengths:       append([]string{}, a.Strengths...),
		AnalysisMethod:  method,
		LLMAnalysis:     analysis.Clone(),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
