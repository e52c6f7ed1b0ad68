package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getListItem = `-- name: GetListItem :one
SELECT id, list_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, created_at, updated_at
FROM list_items
WHERE list_id = $1 AND tmdb_id = $2 AND media_type = $3
`

type GetListItemParams struct {
	ListID    pgtype.UUID
	TmdbID    int64
	MediaType string
}

func (q *Queries) GetListItem(ctx context.Context, arg GetListItemParams) (ListItem, error) {
	row := q.db.QueryRow(ctx, getListItem, arg.ListID, arg.TmdbID, arg.MediaType)
	var i ListItem
	err := row.Scan(
		&i.ID,
		&i.ListID,
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

const getListMaxOrder = `-- name: GetListMaxOrder :one
SELECT COALESCE(MAX(sort_order), 0)::int AS max_order
FROM list_items
WHERE list_id = $1
`

func (q *Queries) GetListMaxOrder(ctx context.Context, listID pgtype.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getListMaxOrder, listID)
	var max_order int32
	err := row.Scan(&max_order)
	return max_order, err
}

const insertListItem = `-- name: InsertListItem :one
INSERT INTO list_items (
    id, list_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
RETURNING id, list_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, created_at, updated_at
`

type InsertListItemParams struct {
	ID           pgtype.UUID
	ListID       pgtype.UUID
	TmdbID       int64
	MediaType    string
	Title        string
	PosterPath   pgtype.Text
	BackdropPath pgtype.Text
	ReleaseDate  pgtype.Date
	FirstAirDate pgtype.Date
	SortOrder    int32
}

func (q *Queries) InsertListItem(ctx context.Context, arg InsertListItemParams) (ListItem, error) {
	row := q.db.QueryRow(ctx, insertListItem,
		arg.ID,
		arg.ListID,
		arg.TmdbID,
		arg.MediaType,
		arg.Title,
		arg.PosterPath,
		arg.BackdropPath,
		arg.ReleaseDate,
		arg.FirstAirDate,
		arg.SortOrder,
	)
	var i ListItem
	err := row.Scan(
		&i.ID,
		&i.ListID,
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

const updateListItem = `-- name: UpdateListItem :one
UPDATE list_items
SET title          = $3,
    release_date   = COALESCE($4, release_date),
    first_air_date = COALESCE($5, first_air_date),
    sort_order     = COALESCE($6, sort_order),
    updated_at     = now()
WHERE id = $1 AND list_id = $2
RETURNING id, list_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, created_at, updated_at
`

type UpdateListItemParams struct {
	ID           pgtype.UUID
	ListID       pgtype.UUID
	Title        string
	ReleaseDate  pgtype.Date
	FirstAirDate pgtype.Date
	SortOrder    pgtype.Int4
}

func (q *Queries) UpdateListItem(ctx context.Context, arg UpdateListItemParams) (ListItem, error) {
	row := q.db.QueryRow(ctx, updateListItem,
		arg.ID,
		arg.ListID,
		arg.Title,
		arg.ReleaseDate,
		arg.FirstAirDate,
		arg.SortOrder,
	)
	var i ListItem
	err := row.Scan(
		&i.ID,
		&i.ListID,
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

const listOwnedBy = `-- name: ListOwnedBy :one
SELECT EXISTS (
    SELECT 1 FROM lists WHERE id = $1 AND user_id = $2
) AS owned
`

type ListOwnedByParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

func (q *Queries) ListOwnedBy(ctx context.Context, arg ListOwnedByParams) (bool, error) {
	row := q.db.QueryRow(ctx, listOwnedBy, arg.ID, arg.UserID)
	var owned bool
	err := row.Scan(&owned)
	return owned, err
}

const createList = `-- name: CreateList :one
INSERT INTO lists (id, user_id, name)
VALUES ($1, $2, $3)
RETURNING id, user_id, name, created_at
`

type CreateListParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
	Name   string
}

func (q *Queries) CreateList(ctx context.Context, arg CreateListParams) (List, error) {
	row := q.db.QueryRow(ctx, createList, arg.ID, arg.UserID, arg.Name)
	var i List
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.CreatedAt,
	)
	return i, err
}
