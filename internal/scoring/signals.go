package scoring

import (
	"cmp"
	"errors"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/resume-scorer/internal/lexicon"
)

const (
	keywordMinLength = 5
	keywordLimit     = 15
)

var yearsRe = regexp.MustCompile(`(\d+)[+ ]*years?`)

// SubScores holds the five independent measures, each in [0, 100].
type SubScores struct {
	Semantic   float64
	Skills     float64
	Experience float64
	Education  float64
	Keywords   float64
}

// SkillMatch is the lexicon skill comparison between the two documents.
type SkillMatch struct {
	Score   float64
	Matched []string
	Missing []string
}

// Lexical runs every extractor that works on the texts alone.
// Semantic is left at zero for the caller to fill from an encoder.
func Lexical(resume, job *Document) (SubScores, SkillMatch) {
	skills := SkillsScore(resume, job)
	return SubScores{
		Skills:     skills.Score,
		Experience: ExperienceScore(resume.Text(), job.Text()),
		Education:  EducationScore(resume.Text(), job.Text()),
		Keywords:   KeywordsScore(resume, job),
	}, skills
}

// SemanticScore maps a cosine similarity onto [0, 100]; negative similarity counts as none.
func SemanticScore(cosine float64) float64 {
	return lexicon.Ratio(cosine, 1) * 100
}

func SkillsScore(resume, job *Document) SkillMatch {
	resumeSkills := skillSet(resume)
	jobSkills := skillSet(job)

	matched := make([]string, 0, len(jobSkills))
	missing := make([]string, 0, len(jobSkills))
	for skill := range jobSkills {
		if _, ok := resumeSkills[skill]; ok {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	slices.Sort(matched)
	slices.Sort(missing)

	return SkillMatch{
		Score:   lexicon.Ratio(float64(len(matched)), float64(max(1, len(jobSkills)))) * 100,
		Matched: matched,
		Missing: missing,
	}
}

func skillSet(doc *Document) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range lexicon.SkillTokens(doc.Tokens()) {
		out[s] = struct{}{}
	}
	return out
}

// ExperienceScore compares the largest "N years" figure in each text.
func ExperienceScore(resumeText, jobText string) float64 {
	resumeYears := maxYears(resumeText)
	jobYears := maxYears(jobText)
	if jobYears == 0 {
		return binary(resumeYears > 0)
	}
	return lexicon.Ratio(float64(resumeYears), float64(jobYears)) * 100
}

func maxYears(text string) int {
	years := 0
	for _, m := range yearsRe.FindAllStringSubmatch(strings.ToLower(text), -1) {
		n, err := strconv.Atoi(m[1])
		switch {
		case errors.Is(err, strconv.ErrRange):
			n = math.MaxInt
		case err != nil:
			continue
		}
		years = max(years, n)
	}
	return years
}

// EducationScore compares how many education markers each text mentions.
func EducationScore(resumeText, jobText string) float64 {
	resumeHits := educationHits(resumeText)
	jobHits := educationHits(jobText)
	if jobHits == 0 {
		return binary(resumeHits > 0)
	}
	return lexicon.Ratio(float64(resumeHits), float64(jobHits)) * 100
}

func educationHits(text string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, marker := range lexicon.EducationMarkers {
		if strings.Contains(lower, marker) {
			hits++
		}
	}
	return hits
}

// KeywordsScore is the share of the job's top keywords that the résumé uses.
func KeywordsScore(resume, job *Document) float64 {
	top := TopKeywords(job.Tokens())
	present := 0
	for _, kw := range top {
		if resume.Has(kw) {
			present++
		}
	}
	return lexicon.Ratio(float64(present), float64(max(1, len(top)))) * 100
}

// TopKeywords returns up to 15 tokens longer than four characters ordered by
// descending frequency. Equal counts keep first-seen order.
func TopKeywords(tokens []string) []string {
	type entry struct {
		token string
		count int
	}

	index := make(map[string]int)
	var entries []entry
	for _, t := range tokens {
		if len(t) < keywordMinLength {
			continue
		}
		if i, ok := index[t]; ok {
			entries[i].count++
			continue
		}
		index[t] = len(entries)
		entries = append(entries, entry{token: t, count: 1})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(b.count, a.count)
	})

	out := make([]string, 0, min(keywordLimit, len(entries)))
	for _, e := range entries[:min(keywordLimit, len(entries))] {
		out = append(out, e.token)
	}
	return out
}

func binary(ok bool) float64 {
	if ok {
		return 100
	}
	return 0
}
