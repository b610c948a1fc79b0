package resolver

import (
	"strings"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

// Index matches track descriptors against a pre-fetched catalog listing.
// Building the index normalizes every candidate title once; resolving a
// descriptor never refetches the catalog.
type Index struct {
	candidates []Candidate
	normTitles []string
	byTitle    map[string][]int

	// Thresholds default to the package constants.
	Threshold       float64
	StrongThreshold float64
}

// NewIndex builds an index over the given candidates.
func NewIndex(candidates []Candidate) *Index {
	ix := &Index{
		candidates:      candidates,
		normTitles:      make([]string, len(candidates)),
		byTitle:         make(map[string][]int, len(candidates)),
		Threshold:       MatchThreshold,
		StrongThreshold: StrongMatchThreshold,
	}
	for i, c := range candidates {
		norm := shared.NormalizeTitle(c.Title)
		ix.normTitles[i] = norm
		ix.byTitle[norm] = append(ix.byTitle[norm], i)
	}
	return ix
}

// Len returns the number of indexed candidates.
func (ix *Index) Len() int {
	return len(ix.candidates)
}

// Resolve finds the best candidate for a track descriptor.
//
// Stages, in order: exact normalized-title match; artist-qualified strong
// title match when the descriptor text splits as "artist - title"; best fuzzy
// title score above the threshold, with a combined artist+title score allowed
// to override when the descriptor carries an artist. Returns false when
// nothing clears the floor.
func (ix *Index) Resolve(track models.Track) (Candidate, bool) {
	query := shared.NormalizeTitle(track.Title)
	artist := track.Artist

	if hits := ix.byTitle[query]; len(hits) > 0 {
		return ix.candidates[hits[0]], true
	}

	if splitArtist, splitTitle, ok := shared.SplitArtistTitle(track.Title); ok {
		if artist == "" {
			artist = splitArtist
		}
		splitNorm := shared.NormalizeTitle(splitTitle)
		lowArtist := strings.ToLower(splitArtist)
		for i, c := range ix.candidates {
			if strings.Contains(strings.ToLower(c.Artist), lowArtist) && similarity(splitNorm, ix.normTitles[i]) > ix.StrongThreshold {
				return c, true
			}
		}
		// The split title is the better query for the fuzzy stage.
		query = splitNorm
	}

	bestIdx := -1
	bestScore := 0.0
	for i := range ix.candidates {
		if score := similarity(query, ix.normTitles[i]); score >= ix.Threshold && score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if artist != "" {
		combined := strings.ToLower(artist) + " " + query
		for i, c := range ix.candidates {
			candCombined := strings.ToLower(c.Artist) + " " + ix.normTitles[i]
			if score := similarity(combined, candCombined); score >= ix.Threshold && score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
	}

	if bestIdx < 0 {
		return Candidate{}, false
	}
	return ix.candidates[bestIdx], true
}
