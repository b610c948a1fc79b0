package models

// Catalog identifies a music service whose library participates in a sync.
type Catalog string

const (
	CatalogPlex    Catalog = "plex"
	CatalogSpotify Catalog = "spotify"
	CatalogTidal   Catalog = "tidal"
)

// String implements fmt.Stringer.
func (c Catalog) String() string {
	return string(c)
}

// Valid reports whether the catalog is one of the known services.
func (c Catalog) Valid() bool {
	switch c {
	case CatalogPlex, CatalogSpotify, CatalogTidal:
		return true
	}
	return false
}
