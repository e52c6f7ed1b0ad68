package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	db "github.com/JonMunkholm/listimport/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrImportNotFound is returned for an unknown import id or one owned by
// another user.
var ErrImportNotFound = errors.New("import not found")

// ImportRecord is what the history store keeps about a finished job.
type ImportRecord struct {
	Job      *ImportJob
	OwnerID  uuid.UUID
	TargetID uuid.UUID
	Policy   DuplicatePolicy
}

// HistoryStore persists import outcomes so users can review past jobs and
// download their row issues.
type HistoryStore interface {
	RecordImport(ctx context.Context, rec ImportRecord) error
	ListImports(ctx context.Context, ownerID uuid.UUID, limit int) ([]ImportSummary, error)
	ImportIssues(ctx context.Context, ownerID, importID uuid.UUID) (*ImportSummary, []ImportIssue, error)
}

// pgHistory is the Postgres HistoryStore.
type pgHistory struct {
	db DBTX
}

// NewPgHistory returns a HistoryStore over the imports tables.
func NewPgHistory(conn DBTX) HistoryStore {
	return &pgHistory{db: conn}
}

// RecordImport writes the summary and its issues in one transaction when
// the handle supports it.
func (h *pgHistory) RecordImport(ctx context.Context, rec ImportRecord) error {
	if b, ok := h.db.(db.TxBeginner); ok {
		return pgx.BeginFunc(ctx, b, func(tx pgx.Tx) error {
			return recordImport(ctx, db.New(h.db).WithTx(tx), rec)
		})
	}
	return recordImport(ctx, db.New(h.db), rec)
}

func recordImport(ctx context.Context, q *db.Queries, rec ImportRecord) error {
	job, rep := rec.Job, rec.Job.Report

	_, err := q.InsertImport(ctx, db.InsertImportParams{
		ID:           PgUUID(job.ID),
		UserID:       PgUUID(rec.OwnerID),
		Collection:   job.Collection,
		CollectionID: PgUUID(rec.TargetID),
		FileName:     job.FileName,
		Dialect:      job.Dialect.String(),
		Policy:       string(rec.Policy),
		TotalRows:    int32(job.TotalRows),
		Imported:     int32(rep.Imported),
		Skipped:      int32(rep.Skipped),
		ErrorCount:   int32(len(rep.Errors)),
		WarningCount: int32(len(rep.Warnings)),
		Success:      rep.Success,
		DurationMs:   job.Duration.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("insert import: %w", err)
	}

	issues := issueParams(job.ID, rep)
	if len(issues) == 0 {
		return nil
	}
	if _, err := q.InsertImportIssues(ctx, issues); err != nil {
		return fmt.Errorf("insert import issues: %w", err)
	}
	return nil
}

func issueParams(jobID uuid.UUID, rep *ImportReport) []db.InsertImportIssuesParams {
	out := make([]db.InsertImportIssuesParams, 0, len(rep.Errors)+len(rep.Warnings))
	for _, e := range rep.Errors {
		out = append(out, db.InsertImportIssuesParams{
			ImportID:  PgUUID(jobID),
			RowNumber: int32(e.Row),
			Severity:  "error",
			Message:   e.Message,
		})
	}
	for _, w := range rep.Warnings {
		out = append(out, db.InsertImportIssuesParams{
			ImportID:  PgUUID(jobID),
			RowNumber: int32(w.Row),
			Severity:  "warning",
			Message:   w.Message,
		})
	}
	return out
}

func (h *pgHistory) ListImports(ctx context.Context, ownerID uuid.UUID, limit int) ([]ImportSummary, error) {
	rows, err := db.New(h.db).ListImportsByUser(ctx, db.ListImportsByUserParams{
		UserID: PgUUID(ownerID),
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}

	out := make([]ImportSummary, len(rows))
	for i, r := range rows {
		out[i] = summaryFromRow(r)
	}
	return out, nil
}

func (h *pgHistory) ImportIssues(ctx context.Context, ownerID, importID uuid.UUID) (*ImportSummary, []ImportIssue, error) {
	q := db.New(h.db)

	row, err := q.GetImport(ctx, db.GetImportParams{ID: PgUUID(importID), UserID: PgUUID(ownerID)})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrImportNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get import: %w", err)
	}

	rows, err := q.ListImportIssues(ctx, row.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list import issues: %w", err)
	}

	summary := summaryFromRow(row)
	issues := make([]ImportIssue, len(rows))
	for i, r := range rows {
		issues[i] = ImportIssue{Row: int(r.RowNumber), Severity: r.Severity, Message: r.Message}
	}
	return &summary, issues, nil
}

func summaryFromRow(r db.Import) ImportSummary {
	var created time.Time
	if r.CreatedAt.Valid {
		created = r.CreatedAt.Time
	}
	return ImportSummary{
		ID:           FromPgUUID(r.ID),
		Collection:   r.Collection,
		CollectionID: FromPgUUID(r.CollectionID),
		FileName:     r.FileName,
		Dialect:      r.Dialect,
		Policy:       DuplicatePolicy(r.Policy),
		TotalRows:    int(r.TotalRows),
		Imported:     int(r.Imported),
		Skipped:      int(r.Skipped),
		Errors:       int(r.ErrorCount),
		Warnings:     int(r.WarningCount),
		Success:      r.Success,
		CreatedAt:    created,
	}
}
