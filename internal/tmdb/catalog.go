package tmdb

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/listimport/internal/core"
)

var _ core.Catalog = (*Client)(nil)

// LookupByForeignID resolves an IMDb id. Movie and series matches are
// returned in TMDB order; an empty result is not an error.
func (c *Client) LookupByForeignID(ctx context.Context, foreignID string) (*core.ForeignMatches, error) {
	resp, err := c.FindByIMDbID(ctx, foreignID)
	if err != nil {
		return nil, err
	}

	out := &core.ForeignMatches{
		Movies: make([]core.CatalogMatch, 0, len(resp.MovieResults)),
		Series: make([]core.CatalogMatch, 0, len(resp.TVResults)),
	}
	for _, r := range resp.MovieResults {
		out.Movies = append(out.Movies, match(r, core.KindMovie))
	}
	for _, r := range resp.TVResults {
		out.Series = append(out.Series, match(r, core.KindTV))
	}
	return out, nil
}

// FetchDetail reads the detail record of one title.
func (c *Client) FetchDetail(ctx context.Context, canonicalID int64, kind core.MediaKind) (*core.CatalogDetail, error) {
	var (
		r   *Result
		err error
	)
	switch kind {
	case core.KindMovie:
		r, err = c.GetMovieDetails(ctx, canonicalID)
	case core.KindTV:
		r, err = c.GetTVDetails(ctx, canonicalID)
	default:
		return nil, fmt.Errorf("tmdb: unsupported media type %q", kind)
	}
	if err != nil {
		return nil, err
	}

	m := match(*r, kind)
	return &core.CatalogDetail{
		CanonicalID:  m.CanonicalID,
		Kind:         m.Kind,
		Title:        m.Title,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		Date:         m.Date,
	}, nil
}

func match(r Result, kind core.MediaKind) core.CatalogMatch {
	return core.CatalogMatch{
		CanonicalID:  r.ID,
		Kind:         kind,
		Title:        r.DisplayTitle(),
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		Date:         r.Date(),
	}
}
