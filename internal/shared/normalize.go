// Text normalization helpers for track identity matching.
package shared

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	trackNumberPrefix = regexp.MustCompile(`^\s*\d{1,3}\s*[-._)]\s*`)
	qualifier         = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]`)
	whitespace        = regexp.MustCompile(`\s+`)
	unsafeName        = regexp.MustCompile(`[^\w\- ]`)
	searchPunctuation = regexp.MustCompile(`[":\[\]()']`)
	splitPattern      = regexp.MustCompile(`\s+[-–—]\s+`)

	accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// audioExtensions are file suffixes treated as noise when a descriptor's title
// was derived from a file name.
var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".wav": true, ".aac": true,
	".ogg": true, ".wma": true, ".m4a": true, ".opus": true,
}

// StripAccents removes combining marks, so "Beyoncé" compares equal to "Beyonce".
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// CollapseWhitespace trims a string and folds runs of whitespace to single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// NormalizeTitle reduces a track title to its comparable form: leading track
// numbers, parenthesized or bracketed qualifiers, and audio file extensions are
// stripped, then the result is lower-cased with collapsed whitespace.
//
// "01 - Song (Live).mp3" and "Song" normalize to the same string.
func NormalizeTitle(s string) string {
	s = strings.TrimSpace(s)
	if ext := strings.ToLower(filepath.Ext(s)); audioExtensions[ext] {
		s = strings.TrimSuffix(s, s[len(s)-len(ext):])
	}
	s = trackNumberPrefix.ReplaceAllString(s, "")
	s = qualifier.ReplaceAllString(s, " ")
	return CollapseWhitespace(strings.ToLower(s))
}

// SplitArtistTitle splits descriptor text written as "Artist - Title".
// Returns ok=false when the text does not follow that pattern.
func SplitArtistTitle(s string) (artist, title string, ok bool) {
	parts := splitPattern.Split(s, 2)
	if len(parts) != 2 {
		return "", "", false
	}
	artist = strings.TrimSpace(parts[0])
	title = strings.TrimSpace(parts[1])
	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

// SanitizeName cleans a playlist name for cross-catalog comparison and
// creation: characters outside word runes, hyphens, and spaces become spaces,
// and runs of spaces collapse.
func SanitizeName(s string) string {
	s = unsafeName.ReplaceAllString(s, " ")
	return CollapseWhitespace(s)
}

// NormalizeName returns the case-insensitive comparable form of a playlist name.
func NormalizeName(s string) string {
	return strings.ToLower(SanitizeName(s))
}

// NormalizeTrackKey builds the cache key used to look up a track across
// catalogs: lower-cased title and artist with collapsed whitespace, joined by
// a pipe.
func NormalizeTrackKey(title, artist string) string {
	return CollapseWhitespace(strings.ToLower(title)) + "|" + CollapseWhitespace(strings.ToLower(artist))
}

// CleanForSearch prepares free text for a remote search query: accents
// stripped, path separators and search-hostile punctuation replaced with
// spaces, whitespace collapsed.
func CleanForSearch(s string) string {
	s = StripAccents(s)
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "\\", " ")
	s = searchPunctuation.ReplaceAllString(s, " ")
	return CollapseWhitespace(s)
}
