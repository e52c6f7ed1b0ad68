package core

import (
	"context"
	"errors"
)

// ErrCatalogNotFound is returned (wrapped) by Catalog implementations when
// the requested title does not exist.
var ErrCatalogNotFound = errors.New("catalog: not found")

// CatalogMatch is one candidate returned by a foreign id lookup.
type CatalogMatch struct {
	CanonicalID  int64
	Kind         MediaKind
	Title        string
	PosterPath   string
	BackdropPath string
	Date         string // release or first air date, YYYY-MM-DD
}

// ForeignMatches groups lookup results by kind, in catalog order.
type ForeignMatches struct {
	Movies []CatalogMatch
	Series []CatalogMatch
}

// CatalogDetail is the detail record of one title.
type CatalogDetail struct {
	CanonicalID  int64
	Kind         MediaKind
	Title        string
	PosterPath   string
	BackdropPath string
	Date         string
}

// Catalog resolves identifiers against the external media catalog.
// Both calls may fail with a transport error; the resolver treats that as
// terminal for the row and never retries.
type Catalog interface {
	LookupByForeignID(ctx context.Context, foreignID string) (*ForeignMatches, error)
	FetchDetail(ctx context.Context, canonicalID int64, kind MediaKind) (*CatalogDetail, error)
}
