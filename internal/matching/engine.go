// Package matching computes the match score between a job description and a
// candidate resume. Scoring is a pure function of its inputs: no I/O, no
// shared state, safe for concurrent use.
package matching

import "strings"

// Scoring weights are a fixed policy, not user-configurable. Skill overlap
// dominates textual similarity.
const (
	SimilarityWeight = 0.4
	SkillWeight      = 0.6
)

// ScoreRequest carries the inputs to a single scoring run.
type ScoreRequest struct {
	JobDescription  string
	RequiredSkills  []string
	ResumeText      string
	ExtractedSkills []string
}

// ScoreResult is the bounded final score plus the matched-skill evidence,
// ordered the way the required skills were supplied.
type ScoreResult struct {
	FinalScore    int
	MatchedSkills []string
}

// Score combines TF-IDF cosine similarity and skill overlap into one integer
// score in [0, 100]. An empty required-skill list earns no skill credit
// rather than full credit, so a vacuous requirement is never rewarded.
func Score(req ScoreRequest) ScoreResult {
	similarity := Similarity(req.JobDescription, req.ResumeText)
	matched := MatchSkills(req.RequiredSkills, req.ExtractedSkills)

	skillScore := 0.0
	if n := countNonBlank(req.RequiredSkills); n > 0 {
		skillScore = float64(len(matched)) / float64(n)
	}

	final := (similarity*SimilarityWeight + skillScore*SkillWeight) * 100
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	return ScoreResult{
		FinalScore:    int(final),
		MatchedSkills: matched,
	}
}

func countNonBlank(skills []string) int {
	n := 0
	for _, s := range skills {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
