package collections

import (
	"context"

	"github.com/JonMunkholm/listimport/internal/core"
	db "github.com/JonMunkholm/listimport/internal/database"
	"github.com/google/uuid"
)

func init() {
	registerList()
}

func registerList() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Key:   "list",
			Label: "List",
		},
		Owns: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef) (bool, error) {
			return db.New(dbtx).ListOwnedBy(ctx, db.ListOwnedByParams{
				ID:     core.PgUUID(ref.CollectionID),
				UserID: core.PgUUID(ref.OwnerID),
			})
		},
		FindEntry: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef, id int64, kind core.MediaKind) (*core.CollectionEntry, error) {
			item, err := db.New(dbtx).GetListItem(ctx, db.GetListItemParams{
				ListID:    core.PgUUID(ref.CollectionID),
				TmdbID:    id,
				MediaType: string(kind),
			})
			if notFound(err) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return fromList(item).entry(ref)
		},
		MaxOrder: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef) (int, error) {
			n, err := db.New(dbtx).GetListMaxOrder(ctx, core.PgUUID(ref.CollectionID))
			return int(n), err
		},
		CreateEntry: func(ctx context.Context, dbtx core.DBTX, e core.CollectionEntry) (*core.CollectionEntry, error) {
			item, err := db.New(dbtx).InsertListItem(ctx, db.InsertListItemParams{
				ID:           core.PgUUID(e.ID),
				ListID:       core.PgUUID(e.CollectionID),
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
			return fromList(item).entry(core.CollectionRef{OwnerID: e.OwnerID, CollectionID: e.CollectionID})
		},
		UpdateEntry: func(ctx context.Context, dbtx core.DBTX, ref core.CollectionRef, id uuid.UUID, upd core.EntryUpdate) (*core.CollectionEntry, error) {
			item, err := db.New(dbtx).UpdateListItem(ctx, db.UpdateListItemParams{
				ID:           core.PgUUID(id),
				ListID:       core.PgUUID(ref.CollectionID),
				Title:        upd.Title,
				ReleaseDate:  upd.ReleaseDate,
				FirstAirDate: upd.FirstAirDate,
				SortOrder:    upd.Order,
			})
			if err != nil {
				return nil, err
			}
			return fromList(item).entry(ref)
		},
	})
}
