package matching

import (
	"reflect"
	"testing"
)

func TestMatchSkills_SubstringBothDirections(t *testing.T) {
	// Permissive by design: either side may contain the other.
	if got := MatchSkills([]string{"java"}, []string{"javascript"}); !reflect.DeepEqual(got, []string{"java"}) {
		t.Errorf(`required "java" vs extracted "javascript" = %v, want [java]`, got)
	}
	if got := MatchSkills([]string{"javascript"}, []string{"java"}); !reflect.DeepEqual(got, []string{"javascript"}) {
		t.Errorf(`required "javascript" vs extracted "java" = %v, want [javascript]`, got)
	}
	if got := MatchSkills([]string{"c"}, []string{"c++"}); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf(`required "c" vs extracted "c++" = %v, want [c]`, got)
	}
}

func TestMatchSkills_OrderFollowsRequired(t *testing.T) {
	got := MatchSkills(
		[]string{"docker", "python", "aws"},
		[]string{"aws lambda", "python"},
	)
	want := []string{"python", "aws"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchSkills = %v, want %v", got, want)
	}
}

func TestMatchSkills_EachRequiredMatchedOnce(t *testing.T) {
	got := MatchSkills([]string{"python"}, []string{"python", "python3", "micropython"})
	if !reflect.DeepEqual(got, []string{"python"}) {
		t.Errorf("MatchSkills = %v, want single python entry", got)
	}
}

func TestMatchSkills_CaseAndWhitespace(t *testing.T) {
	got := MatchSkills([]string{"  Python  "}, []string{"PYTHON"})
	if !reflect.DeepEqual(got, []string{"python"}) {
		t.Errorf("MatchSkills = %v, want [python]", got)
	}
}

func TestMatchSkills_Empty(t *testing.T) {
	if got := MatchSkills(nil, []string{"python"}); got != nil {
		t.Errorf("MatchSkills with no required = %v, want nil", got)
	}
	if got := MatchSkills([]string{"python"}, nil); got != nil {
		t.Errorf("MatchSkills with no extracted = %v, want nil", got)
	}
}
