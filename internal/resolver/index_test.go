package resolver

import (
	"testing"

	"github.com/desertthunder/cadence/internal/models"
)

func testIndex() *Index {
	return NewIndex([]Candidate{
		{ID: "1", Title: "Song", Artist: "Band"},
		{ID: "2", Title: "Another Tune", Artist: "Other Band"},
		{ID: "3", Title: "Completely Different", Artist: "Someone Else"},
	})
}

func TestIndexResolve(t *testing.T) {
	t.Run("exact normalized title wins", func(t *testing.T) {
		ix := testIndex()

		got, ok := ix.Resolve(models.Track{Title: "Song", Artist: "Band"})
		if !ok || got.ID != "1" {
			t.Errorf("got (%+v, %v)", got, ok)
		}
	})

	t.Run("track number and qualifier are stripped before matching", func(t *testing.T) {
		ix := testIndex()

		got, ok := ix.Resolve(models.Track{Title: "01 - Song (Live)", Artist: "Band"})
		if !ok || got.ID != "1" {
			t.Errorf("got (%+v, %v)", got, ok)
		}
	})

	t.Run("file extension noise is stripped", func(t *testing.T) {
		ix := testIndex()

		got, ok := ix.Resolve(models.Track{Title: "Another Tune.mp3"})
		if !ok || got.ID != "2" {
			t.Errorf("got (%+v, %v)", got, ok)
		}
	})

	t.Run("artist-title split matches strong title with agreeing artist", func(t *testing.T) {
		ix := NewIndex([]Candidate{
			{ID: "a", Title: "Gold", Artist: "First Band"},
			{ID: "b", Title: "Golden", Artist: "Second Band"},
		})

		got, ok := ix.Resolve(models.Track{Title: "Second Band - Golden"})
		if !ok || got.ID != "b" {
			t.Errorf("got (%+v, %v)", got, ok)
		}
	})

	t.Run("fuzzy match above threshold", func(t *testing.T) {
		ix := testIndex()

		// One character off the indexed title.
		got, ok := ix.Resolve(models.Track{Title: "Another Tun"})
		if !ok || got.ID != "2" {
			t.Errorf("got (%+v, %v)", got, ok)
		}
	})

	t.Run("nothing above the floor", func(t *testing.T) {
		ix := testIndex()

		if got, ok := ix.Resolve(models.Track{Title: "zzzzzzzz"}); ok {
			t.Errorf("expected miss, got %+v", got)
		}
	})

	t.Run("combined artist and title breaks ties", func(t *testing.T) {
		ix := NewIndex([]Candidate{
			{ID: "x", Title: "Home", Artist: "Alpha"},
			{ID: "y", Title: "Home", Artist: "Omega Collective"},
		})

		got, ok := ix.Resolve(models.Track{Title: "Homes", Artist: "Omega Collective"})
		if !ok || got.ID != "y" {
			t.Errorf("got (%+v, %v)", got, ok)
		}
	})

	t.Run("empty index misses", func(t *testing.T) {
		ix := NewIndex(nil)
		if _, ok := ix.Resolve(models.Track{Title: "Song"}); ok {
			t.Error("expected miss on empty index")
		}
		if ix.Len() != 0 {
			t.Errorf("Len = %d", ix.Len())
		}
	})
}
