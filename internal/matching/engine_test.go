package matching

import (
	"reflect"
	"testing"
)

func TestScore_Deterministic(t *testing.T) {
	req := ScoreRequest{
		JobDescription:  "Looking for a Python backend engineer with AWS experience",
		RequiredSkills:  []string{"python", "aws", "docker"},
		ResumeText:      "Built services in Python, deployed on AWS",
		ExtractedSkills: []string{"python", "aws"},
	}

	first := Score(req)
	for i := 0; i < 10; i++ {
		got := Score(req)
		if got.FinalScore != first.FinalScore || !reflect.DeepEqual(got.MatchedSkills, first.MatchedSkills) {
			t.Fatalf("score not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestScore_Bounds(t *testing.T) {
	requests := []ScoreRequest{
		{},
		{JobDescription: "anything", ResumeText: "anything"},
		{RequiredSkills: []string{"python"}, ExtractedSkills: []string{"python"}},
		{
			JobDescription:  "python aws docker kubernetes",
			RequiredSkills:  []string{"python", "aws", "docker", "kubernetes"},
			ResumeText:      "python aws docker kubernetes",
			ExtractedSkills: []string{"python", "aws", "docker", "kubernetes"},
		},
	}
	for i, req := range requests {
		got := Score(req)
		if got.FinalScore < 0 || got.FinalScore > 100 {
			t.Errorf("request %d: score %d out of [0,100]", i, got.FinalScore)
		}
	}
}

func TestScore_IdenticalDocumentsFloor(t *testing.T) {
	doc := "Senior Python engineer with cloud experience"
	got := Score(ScoreRequest{
		JobDescription: doc,
		ResumeText:     doc,
		RequiredSkills: []string{"rust"},
	})
	// Similarity alone contributes 0.4 * 100 when the documents coincide.
	if got.FinalScore < 40 {
		t.Errorf("score for identical documents = %d, want >= 40", got.FinalScore)
	}
}

func TestScore_EmptyRequirementPolicy(t *testing.T) {
	got := Score(ScoreRequest{
		JobDescription:  "python engineer",
		RequiredSkills:  nil,
		ResumeText:      "python engineer with docker and aws",
		ExtractedSkills: []string{"python", "docker", "aws"},
	})
	if len(got.MatchedSkills) != 0 {
		t.Errorf("matched skills with no requirements = %v, want none", got.MatchedSkills)
	}
	// No required skills means no skill credit, not full credit.
	if got.FinalScore > 40 {
		t.Errorf("score %d exceeds the similarity-only ceiling of 40", got.FinalScore)
	}
}

func TestScore_ConcreteScenario(t *testing.T) {
	req := ScoreRequest{
		JobDescription:  "Looking for a Python backend engineer with AWS experience",
		RequiredSkills:  []string{"python", "aws", "docker"},
		ResumeText:      "...5 years Python and AWS Lambda development...",
		ExtractedSkills: []string{"python", "aws lambda"},
	}

	got := Score(req)

	wantMatched := []string{"python", "aws"}
	if !reflect.DeepEqual(got.MatchedSkills, wantMatched) {
		t.Errorf("matched skills = %v, want %v", got.MatchedSkills, wantMatched)
	}

	sim := Similarity(req.JobDescription, req.ResumeText)
	if sim <= 0 {
		t.Fatalf("similarity = %v, want > 0 (documents share vocabulary)", sim)
	}

	want := int((sim*SimilarityWeight + (2.0/3.0)*SkillWeight) * 100)
	if got.FinalScore != want {
		t.Errorf("final score = %d, want %d", got.FinalScore, want)
	}
	// Skill overlap alone guarantees 0.6 * 2/3 = 40 points.
	if got.FinalScore < 40 {
		t.Errorf("final score = %d, want >= 40", got.FinalScore)
	}
}

func TestScore_BlankRequiredSkillsIgnored(t *testing.T) {
	got := Score(ScoreRequest{
		JobDescription:  "python engineer",
		RequiredSkills:  []string{"python", "  ", ""},
		ResumeText:      "python developer",
		ExtractedSkills: []string{"python"},
	})
	if !reflect.DeepEqual(got.MatchedSkills, []string{"python"}) {
		t.Errorf("matched skills = %v, want [python]", got.MatchedSkills)
	}
	// Blank entries count toward neither numerator nor denominator, so the
	// skill portion is a full 60 here.
	if got.FinalScore < 60 {
		t.Errorf("final score = %d, want >= 60", got.FinalScore)
	}
}
