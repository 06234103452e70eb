package dedupe

import (
	"github.com/agext/levenshtein"

	"github.com/touchbasehq/touchbase-backend/internal/normalization"
)

// NameSimilarityThreshold is the fixed cutoff for the similar_name pass.
// Levenshtein similarity of normalized display names at or above this value
// flags a pair; one edit in a ten-rune name (0.9) passes, two do not.
const NameSimilarityThreshold = 0.85

// NameSimilarity scores two display names in [0,1] on their normalized
// forms. Empty names never match anything.
func NameSimilarity(a, b string) float64 {
	na, nb := normalization.Name(a), normalization.Name(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return levenshtein.Similarity(na, nb, nil)
}
