package textproc

import "strings"

// SkillExtractor recognizes known skill tokens in normalized resume text.
// The vocabulary is pluggable; extraction itself is deterministic and
// returns each skill at most once, lowercase, in vocabulary order.
type SkillExtractor struct {
	vocabulary []string
}

// NewSkillExtractor builds an extractor over the given vocabulary. Entries
// are normalized up front so multi-word skills match the normalized text.
func NewSkillExtractor(vocabulary []string) *SkillExtractor {
	normalized := make([]string, 0, len(vocabulary))
	seen := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		norm := Normalize(v)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		normalized = append(normalized, norm)
	}
	return &SkillExtractor{vocabulary: normalized}
}

// NewDefaultSkillExtractor returns an extractor with the built-in vocabulary.
func NewDefaultSkillExtractor() *SkillExtractor {
	return NewSkillExtractor(defaultVocabulary)
}

// Extract returns the vocabulary skills present in the text as whole-token
// occurrences. Empty input yields an empty result, never an error.
func (e *SkillExtractor) Extract(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}

	// Padding with spaces makes whole-token matching a plain substring
	// check, and works for multi-word skills since normalization collapses
	// whitespace to single spaces.
	padded := " " + norm + " "

	var found []string
	for _, skill := range e.vocabulary {
		if strings.Contains(padded, " "+skill+" ") {
			found = append(found, skill)
		}
	}
	return found
}

// defaultVocabulary covers the skills commonly requested in screening tasks.
// It is deliberately flat: refining it changes recall, not the extraction
// contract.
var defaultVocabulary = []string{
	"python", "java", "javascript", "typescript", "go", "golang",
	"c", "c++", "c#", "rust", "ruby", "php", "kotlin", "swift", "scala",
	"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
	"aws", "aws lambda", "azure", "gcp", "terraform", "docker",
	"kubernetes", "linux", "git", "ci cd", "jenkins", "ansible",
	"react", "angular", "vue", "node", "django", "flask", "spring",
	"fastapi", "graphql", "rest", "grpc", "kafka", "rabbitmq",
	"machine learning", "deep learning", "nlp", "pandas", "numpy",
	"tensorflow", "pytorch", "spark", "hadoop", "airflow",
	"html", "css", "sass", "webpack", "agile", "scrum",
}
