package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/JonMunkholm/listimport/internal/logging"
)

// firstDataRow is the reported number of the first data row; the header
// is row 1.
const firstDataRow = 2

// Engine runs imports. It holds no per-job state and is safe for
// concurrent use; concurrent jobs into the same collection are not
// serialized here (see Service).
type Engine struct {
	resolver *Resolver
}

// NewEngine creates an Engine resolving rows against catalog.
func NewEngine(catalog Catalog) *Engine {
	return &Engine{resolver: NewResolver(catalog)}
}

// Import processes every row of table into coll, strictly in file order.
//
// A malformed table, an invalid mapping or an unknown policy is returned
// as an error before any row is touched. After that, failures are confined
// to their row and recorded in the report. If ctx is cancelled the report
// of the rows completed so far is returned together with ctx's error.
func (e *Engine) Import(ctx context.Context, table *ParsedTable, coll Collection, policy DuplicatePolicy) (*ImportReport, error) {
	if table == nil {
		return nil, &MalformedTableError{Reason: "no table"}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if policy != PolicySkip && policy != PolicyUpdate {
		return nil, fmt.Errorf("invalid duplicate policy %q", policy)
	}

	logger := logging.WithFields(ctx,
		"collection", coll.Info().Key,
		"ref", coll.Ref().String(),
		"dialect", table.Dialect.String(),
		"policy", string(policy),
	)
	logger.Info("import started", "rows", len(table.Rows))

	report := newImportReport()
	pos := newPositionAssigner(coll)

	for i, raw := range table.Rows {
		if err := ctx.Err(); err != nil {
			logger.Warn("import interrupted", "processed", report.Processed(), "error", err)
			return report, err
		}

		rowNum := i + firstDataRow
		out := e.processRow(ctx, logger, table, coll, pos, policy, raw, rowNum)

		// A row that failed only because the job was cancelled is not
		// the row's fault; leave it out of the report.
		if out.kind == outcomeFailed && ctx.Err() != nil {
			logger.Warn("import interrupted", "processed", report.Processed(), "row", rowNum, "error", ctx.Err())
			return report, ctx.Err()
		}
		report.record(out)
	}

	report.Success = true
	logger.Info("import finished",
		"imported", report.Imported,
		"skipped", report.Skipped,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
	)
	return report, nil
}

// processRow resolves and reconciles one row. Nothing escapes: errors and
// panics become a failed outcome.
func (e *Engine) processRow(
	ctx context.Context,
	logger *slog.Logger,
	table *ParsedTable,
	coll Collection,
	pos *positionAssigner,
	policy DuplicatePolicy,
	raw []string,
	rowNum int,
) (out rowOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic processing row",
				"row", rowNum,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			out = rowOutcome{row: rowNum, kind: outcomeFailed, message: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	fields := table.Fields(raw)

	res, err := e.resolver.Resolve(ctx, table.Dialect, fields)
	if err != nil {
		logger.Debug("row not resolved", "row", rowNum, "error", err)
		return rowOutcome{row: rowNum, kind: outcomeFailed, message: err.Error()}
	}

	out, err = reconcile(ctx, coll, pos, e.resolver, policy, res, fields)
	if err != nil {
		var pe *persistError
		if !errors.As(err, &pe) {
			logger.Debug("row not placed", "row", rowNum, "error", err)
			return rowOutcome{row: rowNum, kind: outcomeFailed, message: err.Error()}
		}
		logger.Warn("row not saved", "row", rowNum, "error", err)
		return rowOutcome{row: rowNum, kind: outcomeFailed, message: persistMessage(err)}
	}

	out.row = rowNum
	return out
}

// persistMessage phrases a storage failure for the report without leaking
// driver text.
func persistMessage(err error) string {
	var pe *persistError
	op := "save entry"
	if errors.As(err, &pe) {
		op = pe.op
	}
	msg := MapError(err)
	return fmt.Sprintf("could not %s: %s (Code: %s)", op, msg.Message, msg.Code)
}

func newImportReport() *ImportReport {
	return &ImportReport{
		Errors:   []RowError{},
		Warnings: []RowWarning{},
	}
}

// record folds one outcome into the report.
func (r *ImportReport) record(out rowOutcome) {
	switch out.kind {
	case outcomeImported:
		r.Imported++
	case outcomeSkipped:
		r.Skipped++
	default:
		r.Errors = append(r.Errors, RowError{Row: out.row, Message: out.message})
		return
	}
	for _, w := range out.warnings {
		r.Warnings = append(r.Warnings, RowWarning{Row: out.row, Message: w})
	}
}
