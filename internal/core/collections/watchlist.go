package collections

import (
	"context"

	"github.com/JonMunkholm/listimport/internal/core"
	db "github.com/JonMunkholm/listimport/internal/database"
	"github.com/google/uuid"
)

func init() {
	registerWatchlist()
}

// The watchlist is one per user and needs no ownership check: the owner
// is the key.
func registerWatchlist() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Key:       "watchlist",
			Label:     "Watchlist",
			Singleton: true,
		},
		FindEntry: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef, id int64, kind core.MediaKind) (*core.CollectionEntry, error) {
			item, err := db.New(dbtx).GetWatchlistItem(ctx, db.GetWatchlistItemParams{
				UserID:    core.PgUUID(ref.OwnerID),
				TmdbID:    id,
				MediaType: string(kind),
			})
			if notFound(err) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return fromWatchlist(item).entry(ref)
		},
		MaxOrder: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef) (int, error) {
			n, err := db.New(dbtx).GetWatchlistMaxOrder(ctx, core.PgUUID(ref.OwnerID))
			return int(n), err
		},
		CreateEntry: func(ctx context.Context, dbtx core.DBTX, e core.CollectionEntry) (*core.CollectionEntry, error) {
			item, err := db.New(dbtx).InsertWatchlistItem(ctx, db.InsertWatchlistItemParams{
				ID:           core.PgUUID(e.ID),
				UserID:       core.PgUUID(e.OwnerID),
				TmdbID:       e.CanonicalID,
				MediaType:    string(e.Kind),
				Title:        e.Title,
				PosterPath:   e.PosterPath,
				BackdropPath: e.BackdropPath,
				ReleaseDate:  e.ReleaseDate,
				FirstAirDate: e.FirstAirDate,
				SortOrder:    int32(e.Order),
			})
			if err != nil {
				return nil, err
			}
			return fromWatchlist(item).entry(core.CollectionRef{OwnerID: e.OwnerID})
		},
		UpdateEntry: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef, id uuid.UUID, upd core.EntryUpdate) (*core.CollectionEntry, error) {
			item, err := db.New(dbtx).UpdateWatchlistItem(ctx, db.UpdateWatchlistItemParams{
				ID:           core.PgUUID(id),
				UserID:       core.PgUUID(ref.OwnerID),
				Title:        upd.Title,
				ReleaseDate:  upd.ReleaseDate,
				FirstAirDate: upd.FirstAirDate,
				SortOrder:    upd.Order,
			})
			if err != nil {
				return nil, err
			}
			return fromWatchlist(item).entry(ref)
		},
	})
}
