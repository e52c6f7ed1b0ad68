package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Import struct {
	ID           pgtype.UUID
	UserID       pgtype.UUID
	Collection   string
	CollectionID pgtype.UUID
	FileName     string
	Dialect      string
	Policy       string
	TotalRows    int32
	Imported     int32
	Skipped      int32
	ErrorCount   int32
	WarningCount int32
	Success      bool
	DurationMs   int64
	CreatedAt    pgtype.Timestamptz
}

type ImportIssue struct {
	ID        int64
	ImportID  pgtype.UUID
	RowNumber int32
	Severity  string
	Message   string
}

type List struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	Name      string
	CreatedAt pgtype.Timestamptz
}

type ListItem struct {
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
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type Playlist struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	Name      string
	CreatedAt pgtype.Timestamptz
}

type PlaylistItem struct {
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
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type WatchlistItem struct {
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
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}
