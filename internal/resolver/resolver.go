package resolver

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Similarity thresholds for local-index matching.
const (
	// MatchThreshold is the floor below which no candidate is accepted.
	MatchThreshold = 0.6
	// StrongMatchThreshold accepts a title match outright when the artist
	// already agrees.
	StrongMatchThreshold = 0.8
)

// Candidate is one potential match from a catalog: the remote identifier plus
// the metadata used for scoring.
type Candidate struct {
	ID     string
	Title  string
	Artist string
	Album  string
}

var levenshtein = metrics.NewLevenshtein()

// similarity scores two strings in [0, 1] using a Levenshtein ratio.
func similarity(a, b string) float64 {
	return strutil.Similarity(a, b, levenshtein)
}
