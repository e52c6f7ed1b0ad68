package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getPlaylistItem = `-- name: GetPlaylistItem :one
SELECT id, playlist_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, note, created_at, updated_at
FROM playlist_items
WHERE playlist_id = $1 AND tmdb_id = $2 AND media_type = $3
`

type GetPlaylistItemParams struct {
	PlaylistID pgtype.UUID
	TmdbID     int64
	MediaType  string
}

func (q *Queries) GetPlaylistItem(ctx context.Context, arg GetPlaylistItemParams) (PlaylistItem, error) {
	row := q.db.QueryRow(ctx, getPlaylistItem, arg.PlaylistID, arg.TmdbID, arg.MediaType)
	var i PlaylistItem
	err := row.Scan(
		&i.ID,
		&i.PlaylistID,
		&i.TmdbID,
		&i.MediaType,
		&i.Title,
		&i.PosterPath,
		&i.BackdropPath,
		&i.ReleaseDate,
		&i.FirstAirDate,
		&i.SortOrder,
		&i.Note,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPlaylistMaxOrder = `-- name: GetPlaylistMaxOrder :one
SELECT COALESCE(MAX(sort_order), 0)::int AS max_order
FROM playlist_items
WHERE playlist_id = $1
`

func (q *Queries) GetPlaylistMaxOrder(ctx context.Context, playlistID pgtype.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getPlaylistMaxOrder, playlistID)
	var max_order int32
	err := row.Scan(&max_order)
	return max_order, err
}

const insertPlaylistItem = `-- name: InsertPlaylistItem :one
INSERT INTO playlist_items (
    id, playlist_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, note
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)
RETURNING id, playlist_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, note, created_at, updated_at
`

type InsertPlaylistItemParams struct {
	ID           pgtype.UUID
	PlaylistID   pgtype.UUID
	TmdbID       int64
	MediaType    string
	Title        string
	PosterPath   pgtype.Text
	BackdropPath pgtype.Text
	ReleaseDate  pgtype.Date
	FirstAirDate pgtype.Date
	SortOrder    int32
	Note         pgtype.Text
}

func (q *Queries) InsertPlaylistItem(ctx context.Context, arg InsertPlaylistItemParams) (PlaylistItem, error) {
	row := q.db.QueryRow(ctx, insertPlaylistItem,
		arg.ID,
		arg.PlaylistID,
		arg.TmdbID,
		arg.MediaType,
		arg.Title,
		arg.PosterPath,
		arg.BackdropPath,
		arg.ReleaseDate,
		arg.FirstAirDate,
		arg.SortOrder,
		arg.Note,
	)
	var i PlaylistItem
	err := row.Scan(
		&i.ID,
		&i.PlaylistID,
		&i.TmdbID,
		&i.MediaType,
		&i.Title,
		&i.PosterPath,
		&i.BackdropPath,
		&i.ReleaseDate,
		&i.FirstAirDate,
		&i.SortOrder,
		&i.Note,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updatePlaylistItem = `-- name: UpdatePlaylistItem :one
UPDATE playlist_items
SET title          = $3,
    release_date   = COALESCE($4, release_date),
    first_air_date = COALESCE($5, first_air_date),
    sort_order     = COALESCE($6, sort_order),
    note           = COALESCE($7, note),
    updated_at     = now()
WHERE id = $1 AND playlist_id = $2
RETURNING id, playlist_id, tmdb_id, media_type, title, poster_path, backdrop_path, release_date, first_air_date, sort_order, note, created_at, updated_at
`

type UpdatePlaylistItemParams struct {
	ID           pgtype.UUID
	PlaylistID   pgtype.UUID
	Title        string
	ReleaseDate  pgtype.Date
	FirstAirDate pgtype.Date
	SortOrder    pgtype.Int4
	Note         pgtype.Text
}

func (q *Queries) UpdatePlaylistItem(ctx context.Context, arg UpdatePlaylistItemParams) (PlaylistItem, error) {
	row := q.db.QueryRow(ctx, updatePlaylistItem,
		arg.ID,
		arg.PlaylistID,
		arg.Title,
		arg.ReleaseDate,
		arg.FirstAirDate,
		arg.SortOrder,
		arg.Note,
	)
	var i PlaylistItem
	err := row.Scan(
		&i.ID,
		&i.PlaylistID,
		&i.TmdbID,
		&i.MediaType,
		&i.Title,
		&i.PosterPath,
		&i.BackdropPath,
		&i.ReleaseDate,
		&i.FirstAirDate,
		&i.SortOrder,
		&i.Note,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const playlistOwnedBy = `-- name: PlaylistOwnedBy :one
SELECT EXISTS (
    SELECT 1 FROM playlists WHERE id = $1 AND user_id = $2
) AS owned
`

type PlaylistOwnedByParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

func (q *Queries) PlaylistOwnedBy(ctx context.Context, arg PlaylistOwnedByParams) (bool, error) {
	row := q.db.QueryRow(ctx, playlistOwnedBy, arg.ID, arg.UserID)
	var owned bool
	err := row.Scan(&owned)
	return owned, err
}

const createPlaylist = `-- name: CreatePlaylist :one
INSERT INTO playlists (id, user_id, name)
VALUES ($1, $2, $3)
RETURNING id, user_id, name, created_at
`

type CreatePlaylistParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
	Name   string
}

func (q *Queries) CreatePlaylist(ctx context.Context, arg CreatePlaylistParams) (Playlist, error) {
	row := q.db.QueryRow(ctx, createPlaylist, arg.ID, arg.UserID, arg.Name)
	var i Playlist
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.CreatedAt,
	)
	return i, err
}
