package matching

import "strings"

// MatchSkills returns the subset of required skills found in the extracted
// set. A required skill matches an extracted one when either is a substring
// of the other, both compared lowercase and trimmed. The rule is permissive
// on purpose: it catches partial and abbreviated mentions ("aws" inside
// "aws lambda", "java" inside "javascript") at the cost of false positives
// for very short tokens. Consumers rely on the lenient behavior.
//
// Each required skill is matched at most once, taking the first extracted
// skill that satisfies the rule. The result preserves required-skill order.
func MatchSkills(required, extracted []string) []string {
	if len(required) == 0 || len(extracted) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(extracted))
	for _, e := range extracted {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			normalized = append(normalized, e)
		}
	}

	var matched []string
	for _, r := range required {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		for _, e := range normalized {
			if strings.Contains(e, r) || strings.Contains(r, e) {
				matched = append(matched, r)
				break
			}
		}
	}
	return matched
}
