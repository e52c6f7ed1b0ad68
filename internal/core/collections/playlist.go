package collections

import (
	"context"

	"github.com/JonMunkholm/listimport/internal/core"
	db "github.com/JonMunkholm/listimport/internal/database"
	"github.com/google/uuid"
)

func init() {
	registerPlaylist()
}

// Playlists are lists with a free-text note per entry.
func registerPlaylist() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Key:     "playlist",
			Label:   "Playlist",
			HasNote: true,
		},
		Owns: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef) (bool, error) {
			return db.New(dbtx).PlaylistOwnedBy(ctx, db.PlaylistOwnedByParams{
				ID:     core.PgUUID(ref.CollectionID),
				UserID: core.PgUUID(ref.OwnerID),
			})
		},
		FindEntry: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef, id int64, kind core.MediaKind) (*core.CollectionEntry, error) {
			item, err := db.New(dbtx).GetPlaylistItem(ctx, db.GetPlaylistItemParams{
				PlaylistID: core.PgUUID(ref.CollectionID),
				TmdbID:     id,
				MediaType:  string(kind),
			})
			if notFound(err) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return fromPlaylist(item).entry(ref)
		},
		MaxOrder: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef) (int, error) {
			n, err := db.New(dbtx).GetPlaylistMaxOrder(ctx, core.PgUUID(ref.CollectionID))
			return int(n), err
		},
		CreateEntry: func(ctx context.Context, dbtx core.DBTX, e core.CollectionEntry) (*core.CollectionEntry, error) {
			item, err := db.New(dbtx).InsertPlaylistItem(ctx, db.InsertPlaylistItemParams{
				ID:           core.PgUUID(e.ID),
				PlaylistID:   core.PgUUID(e.CollectionID),
				TmdbID:       e.CanonicalID,
				MediaType:    string(e.Kind),
				Title:        e.Title,
				PosterPath:   e.PosterPath,
				BackdropPath: e.BackdropPath,
				ReleaseDate:  e.ReleaseDate,
				FirstAirDate: e.FirstAirDate,
				SortOrder:    int32(e.Order),
				Note:         e.Note,
			})
			if err != nil {
				return nil, err
			}
			return fromPlaylist(item).entry(core.CollectionRef{OwnerID: e.OwnerID, CollectionID: e.CollectionID})
		},
		UpdateEntry: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef, id uuid.UUID, upd core.EntryUpdate) (*core.CollectionEntry, error) {
			item, err := db.New(dbtx).UpdatePlaylistItem(ctx, db.UpdatePlaylistItemParams{
				ID:           core.PgUUID(id),
				PlaylistID:   core.PgUUID(ref.CollectionID),
				Title:        upd.Title,
				ReleaseDate:  upd.ReleaseDate,
				FirstAirDate: upd.FirstAirDate,
				SortOrder:    upd.Order,
				Note:         upd.Note,
			})
			if err != nil {
				return nil, err
			}
			return fromPlaylist(item).entry(ref)
		},
	})
}
