package scoring

import "strings"

const (
	weightSemantic   = 0.30
	weightSkills     = 0.30
	weightExperience = 0.20
	weightEducation  = 0.10
	weightKeywords   = 0.10
)

const (
	StrengthExperience = "Strong experience alignment with the job description."
	StrengthEducation  = "Education background matches or exceeds the role requirements."
	StrengthSkills     = "Key technical skills overlap well with the job needs."
	StrengthFoundation = "Good foundation to build on. Focus on tailoring your resume to this role."

	missingSkillsPrefix     = "Highlight or acquire these important skills mentioned in the job description: "
	RecommendSkillsSection  = "Clarify your most relevant skills in a dedicated skills section."
	RecommendKeywords       = "Use more of the important phrases and keywords from the job description."
	RecommendMirrorLanguage = "Tailor your summary and bullet points to mirror the language of the job description."
	RecommendAlreadyAligned = "Your resume already aligns well. Consider minor polishing for clarity and impact."
)

// Assessment is the traditional result before optional LLM fusion.
// Overall is kept unrounded.
type Assessment struct {
	Scores          SubScores
	Overall         float64
	MatchedSkills   []string
	MissingSkills   []string
	Strengths       []string
	Recommendations []string
}

// Overall applies the fixed signal weights.
func Overall(s SubScores) float64 {
	return weightSemantic*s.Semantic +
		weightSkills*s.Skills +
		weightExperience*s.Experience +
		weightEducation*s.Education +
		weightKeywords*s.Keywords
}

// Aggregate derives the overall score and the rule based strengths and
// recommendations. Rules are evaluated in a fixed order.
func Aggregate(scores SubScores, skills SkillMatch) Assessment {
	var strengths []string
	if scores.Experience >= 70 {
		strengths = append(strengths, StrengthExperience)
	}
	if scores.Education >= 70 {
		strengths = append(strengths, StrengthEducation)
	}
	if scores.Skills >= 60 {
		strengths = append(strengths, StrengthSkills)
	}
	if len(strengths) == 0 {
		strengths = append(strengths, StrengthFoundation)
	}

	var recommendations []string
	if scores.Skills < 80 {
		if len(skills.Missing) > 0 {
			recommendations = append(recommendations, MissingSkillsRecommendation(skills.Missing))
		} else {
			recommendations = append(recommendations, RecommendSkillsSection)
		}
	}
	if scores.Keywords < 70 {
		recommendations = append(recommendations, RecommendKeywords)
	}
	if scores.Semantic < 60 {
		recommendations = append(recommendations, RecommendMirrorLanguage)
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, RecommendAlreadyAligned)
	}

	return Assessment{
		Scores:          scores,
		Overall:         Overall(scores),
		MatchedSkills:   append([]string{}, skills.Matched...),
		MissingSkills:   append([]string{}, skills.Missing...),
		Strengths:       strengths,
		Recommendations: recommendations,
	}
}

func MissingSkillsRecommendation(missing []string) string {
	return missingSkillsPrefix + strings.Join(missing, ", ")
}

// Clone returns a copy that shares no slices with a.
func (a Assessment) Clone() Assessment {
	out := a
	out.MatchedSkills = append([]string{}, a.MatchedSkills...)
	out.MissingSkills = append([]string{}, a.MissingSkills...)
	out.Strengths = append([]string{}, a.Strengths...)
	out.Recommendations = append([]string{}, a.Recommendations...)
	return out
}
