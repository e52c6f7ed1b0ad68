package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/listimport/internal/config"
	"github.com/JonMunkholm/listimport/internal/logging"
	"github.com/JonMunkholm/listimport/internal/metrics"
	"github.com/google/uuid"
)

// DefaultImportTimeout bounds a single import job when no config is given.
const DefaultImportTimeout = 10 * time.Minute

// DefaultHistoryLimit is how many past imports ListImports returns.
const DefaultHistoryLimit = 50

// Service wires the import engine to storage, the catalog and the
// process-wide limits. It is what the HTTP layer and the CLI call.
type Service struct {
	db      DBTX
	engine  *Engine
	history HistoryStore
	limiter *ImportLimiter
	locks   *collectionLocks

	maxFileSize  int64
	timeout      time.Duration
	historyLimit int
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithHistory replaces the Postgres history store.
func WithHistory(h HistoryStore) ServiceOption {
	return func(s *Service) { s.history = h }
}

// NewService creates a Service. cfg may be nil, in which case defaults
// are used for every import limit.
func NewService(conn DBTX, catalog Catalog, cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if catalog == nil {
		return nil, errors.New("core: catalog is required")
	}

	var ic config.ImportConfig
	if cfg != nil {
		ic = cfg.Import
	}

	s := &Service{
		db:           conn,
		engine:       NewEngine(catalog),
		limiter:      NewImportLimiter(ic.MaxConcurrent, ic.MaxWaitTime),
		locks:        newCollectionLocks(),
		maxFileSize:  ic.MaxFileSize,
		timeout:      ic.Timeout,
		historyLimit: ic.HistoryLimit,
	}
	if s.maxFileSize <= 0 {
		s.maxFileSize = DefaultMaxFileSize
	}
	if s.timeout <= 0 {
		s.timeout = DefaultImportTimeout
	}
	if s.historyLimit <= 0 {
		s.historyLimit = DefaultHistoryLimit
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		if conn == nil {
			return nil, errors.New("core: database handle is required without a history store")
		}
		s.history = NewPgHistory(conn)
	}

	s.limiter.OnChange(metrics.SetActiveImports)
	return s, nil
}

// Collections returns the registered collection types.
func (s *Service) Collections() []CollectionInfo {
	defs := All()
	infos := make([]CollectionInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// MaxFileSize is the upload limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// DetectResult describes how a file would be read, without importing it.
type DetectResult struct {
	Dialect   Dialect   `json:"dialect"`
	Headers   []string  `json:"headers"`
	Columns   ColumnMap `json:"columns"`
	Mapping   []string  `json:"mapping"`
	TotalRows int       `json:"totalRows"`
	Valid     bool      `json:"valid"`
	Problem   string    `json:"problem,omitempty"`
}

// Detect parses data and reports the detected dialect and mapping. A
// mapping override is applied before validation. Schema problems are
// reported in the result; only unreadable files return an error.
func (s *Service) Detect(ctx context.Context, data io.Reader, mapping ColumnMap) (*DetectResult, error) {
	res, err := DetectTable(data, s.maxFileSize, mapping)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("detected dialect",
		"dialect", res.Dialect.String(),
		"rows", res.TotalRows,
		"mapping", res.Mapping,
		"valid", res.Valid,
	)
	return res, nil
}

// DetectTable is Detect without a Service, for callers that have no
// database or catalog.
func DetectTable(data io.Reader, maxBytes int64, mapping ColumnMap) (*DetectResult, error) {
	table, err := ParseTable(data, maxBytes)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		table = table.WithMapping(mapping)
	}

	res := &DetectResult{
		Dialect:   table.Dialect,
		Headers:   table.Headers,
		Columns:   table.Columns,
		Mapping:   DescribeMapping(table.Headers, table.Columns),
		TotalRows: len(table.Rows),
		Valid:     true,
	}
	if err := table.Validate(); err != nil {
		res.Valid = false
		res.Problem = err.Error()
	}
	return res, nil
}

// ImportRequest is one file to import.
type ImportRequest struct {
	Collection string          // registry key
	Ref        CollectionRef   // owner and, for named collections, the target id
	Policy     DuplicatePolicy // skip or update
	FileName   string
	Data       io.Reader
	Mapping    ColumnMap // optional override of the detected mapping
}

// Import runs one import job synchronously.
//
// Unknown collections, unreadable files and schema failures are returned
// as errors with no job. Once rows are being processed the job is always
// returned; if it was cut short by cancellation or the job timeout the
// error is returned alongside the partial job.
func (s *Service) Import(ctx context.Context, req ImportRequest) (job *ImportJob, err error) {
	timer := metrics.NewTimer()

	def, ok := Get(req.Collection)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, req.Collection)
	}

	if req.Policy != PolicySkip && req.Policy != PolicyUpdate {
		return nil, fmt.Errorf("invalid duplicate policy %q", req.Policy)
	}

	ref := req.Ref
	if def.Info.Singleton {
		ref.CollectionID = uuid.Nil
	} else if ref.CollectionID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", def.Info.Key, ErrCollectionNotFound)
	}

	table, err := ParseTable(req.Data, s.maxFileSize)
	if err != nil {
		metrics.ObserveImport(def.Info.Key, "unknown", "rejected", timer.Elapsed(), 0, 0, 0, 0)
		return nil, err
	}
	if req.Mapping != nil {
		table = table.WithMapping(req.Mapping)
	}
	if err := table.Validate(); err != nil {
		metrics.ObserveImport(def.Info.Key, table.Dialect.String(), "rejected", timer.Elapsed(), 0, 0, 0, 0)
		return nil, err
	}

	if err := CheckOwnership(ctx, def, s.db, ref); err != nil {
		return nil, err
	}

	// The collection lock comes first so a job queued behind another job
	// for the same collection does not hold an import slot while it waits.
	unlock, err := s.locks.lock(ctx, lockKey(def.Info.Key, ref))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	jobID := uuid.New()
	ctx = logging.WithJobID(ctx, jobID.String())
	logger := logging.WithFields(ctx, "collection", def.Info.Key, "file", req.FileName)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in import", "panic", r)
			job, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, runErr := s.engine.Import(jobCtx, table, Bind(def, s.db, ref), req.Policy)
	if report == nil {
		return nil, runErr
	}

	job = &ImportJob{
		ID:         jobID,
		Collection: def.Info.Key,
		Dialect:    table.Dialect,
		FileName:   req.FileName,
		TotalRows:  len(table.Rows),
		Duration:   timer.Elapsed(),
		Report:     report,
	}

	status := "completed"
	if runErr != nil {
		status = "cancelled"
	}
	metrics.ObserveImport(def.Info.Key, table.Dialect.String(), status, job.Duration,
		report.Imported, report.Skipped, len(report.Errors), len(report.Warnings))

	// History is written even for a cancelled job, so it must not inherit
	// the cancellation.
	rec := ImportRecord{Job: job, OwnerID: ref.OwnerID, TargetID: ref.CollectionID, Policy: req.Policy}
	if herr := s.history.RecordImport(context.WithoutCancel(ctx), rec); herr != nil {
		logger.Warn("failed to record import history", "error", herr)
	}

	return job, runErr
}

// ListImports returns the caller's most recent imports, newest first.
func (s *Service) ListImports(ctx context.Context, ownerID uuid.UUID) ([]ImportSummary, error) {
	return s.history.ListImports(ctx, ownerID, s.historyLimit)
}

// ImportIssues returns a past import and its row errors and warnings.
func (s *Service) ImportIssues(ctx context.Context, ownerID, importID uuid.UUID) (*ImportSummary, []ImportIssue, error) {
	return s.history.ImportIssues(ctx, ownerID, importID)
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
