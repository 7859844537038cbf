package matching

import (
	"math"

	"resume-screener/internal/textproc"
)

// Similarity returns the cosine similarity of the TF-IDF vectors of the two
// documents, treating exactly these two documents as the corpus. The result
// is in [0, 1]; an empty document or disjoint vocabularies yield 0.
//
// IDF uses the smoothed form ln((1+n)/(1+df)) + 1 with n = 2, so terms
// appearing in both documents weigh less than terms unique to one.
func Similarity(a, b string) float64 {
	termsA := termFrequencies(a)
	termsB := termFrequencies(b)
	if len(termsA) == 0 || len(termsB) == 0 {
		return 0
	}

	df := make(map[string]int, len(termsA)+len(termsB))
	for t := range termsA {
		df[t]++
	}
	for t := range termsB {
		df[t]++
	}

	const nDocs = 2.0
	var dot, normA, normB float64
	for term, count := range df {
		idf := math.Log((1+nDocs)/(1+float64(count))) + 1
		wA := float64(termsA[term]) * idf
		wB := float64(termsB[term]) * idf
		dot += wA * wB
		normA += wA * wA
		normB += wB * wB
	}
	if dot == 0 || normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Guard against floating point drift past 1.0 for identical documents.
	if sim > 1 {
		sim = 1
	}
	return sim
}

func termFrequencies(doc string) map[string]int {
	tokens := textproc.Tokenize(doc)
	if len(tokens) == 0 {
		return nil
	}
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}
