package collections

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/listimport/internal/core"
	db "github.com/JonMunkholm/listimport/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// notFound turns pgx.ErrNoRows into the nil entry FindEntry reports for
// an absent item.
func notFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// itemRow is the column set every item table shares.
type itemRow struct {
	ID           pgtype.UUID
	Parent       pgtype.UUID // user for the watchlist, list or playlist otherwise
	TmdbID       int64
	MediaType    string
	Title        string
	PosterPath   pgtype.Text
	BackdropPath pgtype.Text
	ReleaseDate  pgtype.Date
	FirstAirDate pgtype.Date
	SortOrder    int32
	Note         pgtype.Text
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

func (r itemRow) entry(ref core.CollectionRef) (*core.CollectionEntry, error) {
	kind, ok := core.ParseMediaKind(r.MediaType)
	if !ok {
		return nil, fmt.Errorf("stored media type %q", r.MediaType)
	}
	return &core.CollectionEntry{
		ID:           core.FromPgUUID(r.ID),
		OwnerID:      ref.OwnerID,
		CollectionID: ref.CollectionID,
		CanonicalID:  r.TmdbID,
		Kind:         kind,
		Title:        r.Title,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		ReleaseDate:  r.ReleaseDate,
		FirstAirDate: r.FirstAirDate,
		Order:        int(r.SortOrder),
		Note:         r.Note,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}, nil
}

func fromWatchlist(i db.WatchlistItem) itemRow {
	return itemRow{
		ID: i.ID, Parent: i.UserID, TmdbID: i.TmdbID, MediaType: i.MediaType, Title: i.Title,
		PosterPath: i.PosterPath, BackdropPath: i.BackdropPath,
		ReleaseDate: i.ReleaseDate, FirstAirDate: i.FirstAirDate,
		SortOrder: i.SortOrder, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt,
	}
}

func fromList(i db.ListItem) itemRow {
	return itemRow{
		ID: i.ID, Parent: i.ListID, TmdbID: i.TmdbID, MediaType: i.MediaType, Title: i.Title,
		PosterPath: i.PosterPath, BackdropPath: i.BackdropPath,
		ReleaseDate: i.ReleaseDate, FirstAirDate: i.FirstAirDate,
		SortOrder: i.SortOrder, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt,
	}
}

func fromPlaylist(i db.PlaylistItem) itemRow {
	return itemRow{
		ID: i.ID, Parent: i.PlaylistID, TmdbID: i.TmdbID, MediaType: i.MediaType, Title: i.Title,
		PosterPath: i.PosterPath, BackdropPath: i.BackdropPath,
		ReleaseDate: i.ReleaseDate, FirstAirDate: i.FirstAirDate,
		SortOrder: i.SortOrder, Note: i.Note, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt,
	}
}
