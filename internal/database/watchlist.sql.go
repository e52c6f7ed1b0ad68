package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getWatchlistItem = `-- name: GetWatchlistItem :one
SELECT id, user_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, created_at, updated_at
FROM watchlist_items
WHERE user_id = $1 AND tmdb_id = $2 AND media_type = $3
`

type GetWatchlistItemParams struct {
	UserID    pgtype.UUID
	TmdbID    int64
	MediaType string
}

func (q *Queries) GetWatchlistItem(ctx context.Context, arg GetWatchlistItemParams) (WatchlistItem, error) {
	row := q.db.QueryRow(ctx, getWatchlistItem, arg.UserID, arg.TmdbID, arg.MediaType)
	var i WatchlistItem
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.TmdbID,
		&i.MediaType,
		&i.Title,
		&i.PosterPath,
		&i.BackdropPath,
		&i.ReleaseDate,
		&i.FirstAirDate,
		&i.SortOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getWatchlistMaxOrder = `-- name: GetWatchlistMaxOrder :one
SELECT COALESCE(MAX(sort_order), 0)::int AS max_order
FROM watchlist_items
WHERE user_id = $1
`

func (q *Queries) GetWatchlistMaxOrder(ctx context.Context, userID pgtype.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getWatchlistMaxOrder, userID)
	var max_order int32
	err := row.Scan(&max_order)
	return max_order, err
}

const insertWatchlistItem = `-- name: InsertWatchlistItem :one
INSERT INTO watchlist_items (
    id, user_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
RETURNING id, user_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, created_at, updated_at
`

type InsertWatchlistItemParams struct {
	ID           pgtype.UUID
	UserID       pgtype.UUID
	TmdbID       int64
	MediaType    string
	Title        string
	PosterPath   pgtype.Text
	BackdropPath pgtype.Text
	ReleaseDate  pgtype.Date
	FirstAirDate pgtype.Date
	SortOrder    int32
}

func (q *Queries) InsertWatchlistItem(ctx context.Context, arg InsertWatchlistItemParams) (WatchlistItem, error) {
	row := q.db.QueryRow(ctx, insertWatchlistItem,
		arg.ID,
		arg.UserID,
		arg.TmdbID,
		arg.MediaType,
		arg.Title,
		arg.PosterPath,
		arg.BackdropPath,
		arg.ReleaseDate,
		arg.FirstAirDate,
		arg.SortOrder,
	)
	var i WatchlistItem
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.TmdbID,
		&i.MediaType,
		&i.Title,
		&i.PosterPath,
		&i.BackdropPath,
		&i.ReleaseDate,
		&i.FirstAirDate,
		&i.SortOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateWatchlistItem = `-- name: UpdateWatchlistItem :one
UPDATE watchlist_items
SET title          = $3,
    release_date   = COALESCE($4, release_date),
    first_air_date = COALESCE($5, first_air_date),
    sort_order     = COALESCE($6, sort_order),
    updated_at     = now()
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, created_at, updated_at
`

type UpdateWatchlistItemParams struct {
	ID           pgtype.UUID
	UserID       pgtype.UUID
	Title        string
	ReleaseDate  pgtype.Date
	FirstAirDate pgtype.Date
	SortOrder    pgtype.Int4
}

func (q *Queries) UpdateWatchlistItem(ctx context.Context, arg UpdateWatchlistItemParams) (WatchlistItem, error) {
	row := q.db.QueryRow(ctx, updateWatchlistItem,
		arg.ID,
		arg.UserID,
		arg.Title,
		arg.ReleaseDate,
		arg.FirstAirDate,
		arg.SortOrder,
	)
	var i WatchlistItem
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.TmdbID,
		&i.MediaType,
		&i.Title,
		&i.PosterPath,
		&i.BackdropPath,
		&i.ReleaseDate,
		&i.FirstAirDate,
		&i.SortOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
