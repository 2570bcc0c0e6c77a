// ABOUTME: Signature matching policies for visitor recognition
// ABOUTME: Exact placeholder matcher and a cosine-similarity matcher
package storage

import (
	"math"
	"slices"
)

// SignatureMatcher scores a stored signature against a probe.
// ok reports whether the candidate counts as a match at all; among
// matches the highest score wins.
type SignatureMatcher interface {
	Match(probe, candidate []float64) (score float64, ok bool)
}

// ExactMatcher matches only identical, non-empty signatures. It stands in
// for real biometric comparison.
type ExactMatcher struct{}

// Match implements SignatureMatcher
func (ExactMatcher) Match(probe, candidate []float64) (float64, bool) {
	if len(probe) == 0 || !slices.Equal(probe, candidate) {
		return 0, false
	}
	return 1, true
}

// DefaultCosineThreshold is the similarity a CosineMatcher requires when
// none is configured
const DefaultCosineThreshold = 0.6

// CosineMatcher matches signatures whose cosine similarity reaches Threshold
type CosineMatcher struct {
	Threshold float64
}

// Match implements SignatureMatcher
func (m CosineMatcher) Match(probe, candidate []float64) (float64, bool) {
	score := cosineSimilarity(probe, candidate)
	return score, score > 0 && score >= m.Threshold
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// MatcherByName returns the matcher for a configured policy name
func MatcherByName(name string, threshold float64) SignatureMatcher {
	switch name {
	case "cosine":
		if threshold <= 0 {
			threshold = DefaultCosineThreshold
		}
		return CosineMatcher{Threshold: threshold}
	default:
		return ExactMatcher{}
	}
}
