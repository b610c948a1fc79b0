package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

// Searcher issues one track search against a remote catalog.
type Searcher interface {
	SearchTrack(ctx context.Context, query string) ([]Candidate, error)
}

// SearchResolver resolves descriptors through a remote search endpoint using
// progressively simplified queries. Each level is lossier than the last;
// searching stops at the first level that returns any result, and the top
// result of that search is the match.
type SearchResolver struct {
	searcher Searcher
	logger   *log.Logger
}

// NewSearchResolver creates a search resolver over the given searcher.
func NewSearchResolver(searcher Searcher, logger *log.Logger) *SearchResolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SearchResolver{searcher: searcher, logger: logger}
}

// Resolve runs the level ladder for a track. The returned provenance carries
// the level that produced the hit. A search transport error aborts the ladder
// and propagates; an empty result set just moves to the next level.
func (r *SearchResolver) Resolve(ctx context.Context, track models.Track) (Candidate, models.Provenance, error) {
	for level, query := range QueryLevels(track.Title, track.Artist) {
		if query == "" {
			continue
		}

		results, err := r.searcher.SearchTrack(ctx, query)
		if err != nil {
			// An error surviving the executor's retries means the backend is
			// down, not that this query was too strict. The ladder advances
			// only on an empty result, never on a failed call.
			return Candidate{}, models.ProvenanceMiss(), fmt.Errorf("search failed at level %d: %w", level, err)
		}
		if len(results) > 0 {
			r.logger.Debug("resolved", "title", track.Title, "level", level, "query", query)
			return results[0], models.ProvenanceLevel(level), nil
		}
	}

	return Candidate{}, models.ProvenanceMiss(), fmt.Errorf("%w: %s", shared.ErrTrackNotFound, track.SearchText())
}

var (
	parenthetical  = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]`)
	titleSeparator = regexp.MustCompile(`\s*[:\-–—].*$`)
	artistList     = regexp.MustCompile(`\s*[,;&]\s*|\s+(?:feat\.?|ft\.?|with)\s+`)
)

// QueryLevels builds the five search queries for a title and artist, from
// most faithful to most simplified:
//
//	0: full artist and title, accents and path noise stripped
//	1: parenthetical content removed from the title
//	2: title truncated at the first colon or dash
//	3: first listed artist only
//	4: title only
func QueryLevels(title, artist string) [5]string {
	stripped := parenthetical.ReplaceAllString(title, " ")
	truncated := titleSeparator.ReplaceAllString(stripped, "")
	if strings.TrimSpace(truncated) == "" {
		truncated = stripped
	}
	first := firstArtist(artist)

	return [5]string{
		shared.CleanForSearch(join(artist, title)),
		shared.CleanForSearch(join(artist, stripped)),
		shared.CleanForSearch(join(artist, truncated)),
		shared.CleanForSearch(join(first, truncated)),
		shared.CleanForSearch(truncated),
	}
}

// firstArtist keeps only the first name in a multi-artist credit.
func firstArtist(artist string) string {
	parts := artistList.Split(artist, 2)
	return strings.TrimSpace(parts[0])
}

func join(artist, title string) string {
	if artist == "" {
		return title
	}
	return artist + " " + title
}
