package database

import (
	"context"
)

// iteratorForInsertImportIssues implements pgx.CopyFromSource.
type iteratorForInsertImportIssues struct {
	rows                 []InsertImportIssuesParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertImportIssues) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertImportIssues) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].ImportID,
		r.rows[0].RowNumber,
		r.rows[0].Severity,
		r.rows[0].Message,
	}, nil
}

func (r iteratorForInsertImportIssues) Err() error {
	return nil
}

func (q *Queries) InsertImportIssues(ctx context.Context, arg []InsertImportIssuesParams) (int64, error) {
	return q.db.CopyFrom(ctx, []string{"import_issues"}, []string{"import_id", "row_number", "severity", "message"}, &iteratorForInsertImportIssues{rows: arg})
}
