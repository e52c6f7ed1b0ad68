package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingIdentifier is the row error for generic rows that carry
// neither a canonical id nor a foreign id.
var ErrMissingIdentifier = errors.New("missing required identifier")

// resolveError is a terminal row failure with a user-facing message.
type resolveError struct {
	msg string
	err error
}

func (e *resolveError) Error() string { return e.msg }
func (e *resolveError) Unwrap() error { return e.err }

func rowErrorf(cause error, format string, args ...any) error {
	return &resolveError{msg: fmt.Sprintf(format, args...), err: cause}
}

// Resolution is the result of resolving one row.
type Resolution struct {
	Entity *ResolvedEntity

	fetched bool // a detail record was already read for this entity
}

// Resolver turns rows into catalog identities. The strategy is chosen by
// dialect. Enrichment is a separate step, run only for rows that will be
// written.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a Resolver backed by catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve resolves one row. A non-nil error is terminal for the row.
func (r *Resolver) Resolve(ctx context.Context, dialect Dialect, row RowFields) (*Resolution, error) {
	var (
		entity  *ResolvedEntity
		fetched bool
		err     error
	)
	switch dialect {
	case DialectNative:
		entity, err = r.resolveNative(row)
	case DialectForeign:
		entity, err = r.resolveForeign(ctx, row.ForeignID)
		if err == nil && entity.Title == "" {
			entity.Title = row.Title
		}
	default:
		entity, fetched, err = r.resolveGeneric(ctx, row)
	}
	if err != nil {
		return nil, err
	}

	return &Resolution{Entity: entity, fetched: fetched}, nil
}

// Enrich fills missing artwork and date with at most one detail fetch per
// resolution. A failed fetch comes back as a warning; the entity keeps
// what it has.
func (r *Resolver) Enrich(ctx context.Context, res *Resolution) []string {
	if res.fetched || !res.Entity.needsEnrichment() {
		return nil
	}
	res.fetched = true
	if warn := r.enrich(ctx, res.Entity); warn != "" {
		return []string{warn}
	}
	return nil
}

// resolveNative reads the row as-is; no catalog call is needed to know
// the identity.
func (r *Resolver) resolveNative(row RowFields) (*ResolvedEntity, error) {
	if row.Title == "" {
		return nil, rowErrorf(nil, "missing title")
	}
	if row.Kind == "" {
		return nil, rowErrorf(nil, "missing type")
	}
	kind, ok := ParseMediaKind(row.Kind)
	if !ok {
		return nil, rowErrorf(nil, "invalid type %q (expected movie or tv)", row.Kind)
	}
	if row.CanonicalID == "" {
		return nil, rowErrorf(nil, "missing canonical id")
	}
	id, ok := ParseCanonicalID(row.CanonicalID)
	if !ok {
		return nil, rowErrorf(nil, "invalid canonical id %q", row.CanonicalID)
	}

	entity := &ResolvedEntity{
		CanonicalID: id,
		Kind:        kind,
		Title:       row.Title,
	}
	entity.SetDate(ToPgDate(row.Date))
	return entity, nil
}

// resolveForeign performs exactly one lookup by foreign id. Movie matches
// win over series matches because the catalog lists them first.
func (r *Resolver) resolveForeign(ctx context.Context, foreignID string) (*ResolvedEntity, error) {
	if !ValidForeignID(foreignID) {
		if foreignID == "" {
			return nil, rowErrorf(nil, "missing foreign id")
		}
		return nil, rowErrorf(nil, "invalid foreign id %q (expected tt followed by digits)", foreignID)
	}

	matches, err := r.catalog.LookupByForeignID(ctx, foreignID)
	if err != nil {
		return nil, rowErrorf(err, "catalog lookup failed for %s: %v", foreignID, err)
	}

	var m *CatalogMatch
	switch {
	case matches != nil && len(matches.Movies) > 0:
		m = &matches.Movies[0]
	case matches != nil && len(matches.Series) > 0:
		m = &matches.Series[0]
	default:
		return nil, rowErrorf(ErrCatalogNotFound, "no catalog match for %s", foreignID)
	}

	return entityFromCatalog(m.CanonicalID, m.Kind, m.Title, m.PosterPath, m.BackdropPath, m.Date), nil
}

// resolveGeneric prefers the canonical id column and falls back to the
// foreign id. Without a declared kind it tries movie, then tv, and stops.
func (r *Resolver) resolveGeneric(ctx context.Context, row RowFields) (*ResolvedEntity, bool, error) {
	id, hasID := ParseCanonicalID(row.CanonicalID)
	if !hasID {
		if row.ForeignID == "" {
			return nil, false, ErrMissingIdentifier
		}
		entity, err := r.resolveForeign(ctx, row.ForeignID)
		if err != nil {
			return nil, false, err
		}
		if entity.Title == "" {
			entity.Title = row.Title
		}
		return entity, false, nil
	}

	kinds := []MediaKind{KindMovie, KindTV}
	if k, ok := ParseMediaKind(row.Kind); ok {
		kinds = []MediaKind{k}
	}

	var lastErr error
	for _, kind := range kinds {
		detail, err := r.catalog.FetchDetail(ctx, id, kind)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		entity := entityFromCatalog(id, kind, detail.Title, detail.PosterPath, detail.BackdropPath, detail.Date)
		if entity.Title == "" {
			entity.Title = row.Title
		}
		return entity, true, nil
	}

	if len(kinds) == 1 {
		return nil, false, rowErrorf(lastErr, "catalog fetch failed for %s %d: %v", kinds[0], id, lastErr)
	}
	return nil, false, rowErrorf(lastErr, "no catalog match for canonical id %d as movie or tv: %v", id, lastErr)
}

// enrich fills missing artwork and date from a detail fetch. A failure
// degrades the entity instead of rejecting it.
func (r *Resolver) enrich(ctx context.Context, e *ResolvedEntity) string {
	detail, err := r.catalog.FetchDetail(ctx, e.CanonicalID, e.Kind)
	if err != nil {
		return fmt.Sprintf("artwork and release date unavailable for %q: %v", e.Title, err)
	}
	if !e.PosterPath.Valid {
		e.PosterPath = ToPgText(detail.PosterPath)
	}
	if !e.BackdropPath.Valid {
		e.BackdropPath = ToPgText(detail.BackdropPath)
	}
	if !e.Date().Valid {
		e.SetDate(ToPgDate(detail.Date))
	}
	if e.Title == "" {
		e.Title = detail.Title
	}
	return ""
}

func entityFromCatalog(id int64, kind MediaKind, title, poster, backdrop, date string) *ResolvedEntity {
	e := &ResolvedEntity{
		CanonicalID:  id,
		Kind:         kind,
		Title:        title,
		PosterPath:   ToPgText(poster),
		BackdropPath: ToPgText(backdrop),
	}
	e.SetDate(ToPgDate(date))
	return e
}
