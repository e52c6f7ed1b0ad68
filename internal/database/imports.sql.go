package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertImport = `-- name: InsertImport :one
INSERT INTO imports (
    id, user_id, collection, collection_id, file_name, dialect, policy,
    total_rows, imported, skipped, error_count, warning_count, success, duration_ms
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
)
RETURNING id, user_id, collection, collection_id, file_name, dialect, policy, total_rows, imported, skipped, error_count, warning_count, success, duration_ms, created_at
`

type InsertImportParams struct {
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
}

func (q *Queries) InsertImport(ctx context.Context, arg InsertImportParams) (Import, error) {
	row := q.db.QueryRow(ctx, insertImport,
		arg.ID,
		arg.UserID,
		arg.Collection,
		arg.CollectionID,
		arg.FileName,
		arg.Dialect,
		arg.Policy,
		arg.TotalRows,
		arg.Imported,
		arg.Skipped,
		arg.ErrorCount,
		arg.WarningCount,
		arg.Success,
		arg.DurationMs,
	)
	var i Import
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Collection,
		&i.CollectionID,
		&i.FileName,
		&i.Dialect,
		&i.Policy,
		&i.TotalRows,
		&i.Imported,
		&i.Skipped,
		&i.ErrorCount,
		&i.WarningCount,
		&i.Success,
		&i.DurationMs,
		&i.CreatedAt,
	)
	return i, err
}

const getImport = `-- name: GetImport :one
SELECT id, user_id, collection, collection_id, file_name, dialect, policy, total_rows, imported, skipped, error_count, warning_count, success, duration_ms, created_at
FROM imports
WHERE id = $1 AND user_id = $2
`

type GetImportParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

func (q *Queries) GetImport(ctx context.Context, arg GetImportParams) (Import, error) {
	row := q.db.QueryRow(ctx, getImport, arg.ID, arg.UserID)
	var i Import
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Collection,
		&i.CollectionID,
		&i.FileName,
		&i.Dialect,
		&i.Policy,
		&i.TotalRows,
		&i.Imported,
		&i.Skipped,
		&i.ErrorCount,
		&i.WarningCount,
		&i.Success,
		&i.DurationMs,
		&i.CreatedAt,
	)
	return i, err
}

const listImportsByUser = `-- name: ListImportsByUser :many
SELECT id, user_id, collection, collection_id, file_name, dialect, policy, total_rows, imported, skipped, error_count, warning_count, success, duration_ms, created_at
FROM imports
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`

type ListImportsByUserParams struct {
	UserID pgtype.UUID
	Limit  int32
}

func (q *Queries) ListImportsByUser(ctx context.Context, arg ListImportsByUserParams) ([]Import, error) {
	rows, err := q.db.Query(ctx, listImportsByUser, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Import
	for rows.Next() {
		var i Import
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Collection,
			&i.CollectionID,
			&i.FileName,
			&i.Dialect,
			&i.Policy,
			&i.TotalRows,
			&i.Imported,
			&i.Skipped,
			&i.ErrorCount,
			&i.WarningCount,
			&i.Success,
			&i.DurationMs,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listImportIssues = `-- name: ListImportIssues :many
SELECT id, import_id, row_number, severity, message
FROM import_issues
WHERE import_id = $1
ORDER BY row_number, id
`

func (q *Queries) ListImportIssues(ctx context.Context, importID pgtype.UUID) ([]ImportIssue, error) {
	rows, err := q.db.Query(ctx, listImportIssues, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportIssue
	for rows.Next() {
		var i ImportIssue
		if err := rows.Scan(
			&i.ID,
			&i.ImportID,
			&i.RowNumber,
			&i.Severity,
			&i.Message,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// -- name: InsertImportIssues :copyfrom
// INSERT INTO import_issues (import_id, row_number, severity, message) VALUES ($1, $2, $3, $4);

type InsertImportIssuesParams struct {
	ImportID  pgtype.UUID
	RowNumber int32
	Severity  string
	Message   string
}
