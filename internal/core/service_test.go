package core

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/listimport/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore backs registered definitions with one memCollection per ref.
type memStore struct {
	mu    sync.Mutex
	colls map[CollectionRef]*memCollection
	owner map[uuid.UUID]uuid.UUID // collection id -> owner
}

func newMemStore() *memStore {
	return &memStore{
		colls: make(map[CollectionRef]*memCollection),
		owner: make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *memStore) coll(info CollectionInfo, ref CollectionRef) *memCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.colls[ref]
	if !ok {
		c = &memCollection{info: info, ref: ref}
		s.colls[ref] = c
	}
	return c
}

func (s *memStore) definition(info CollectionInfo) CollectionDefinition {
	def := CollectionDefinition{
		Info: info,
		FindEntry: func(ctx context.Context, _ DBTX, ref CollectionRef, id int64, kind MediaKind) (*CollectionEntry, error) {
			return s.coll(info, ref).FindEntry(ctx, id, kind)
		},
		MaxOrder: func(ctx context.Context, _ DBTX, ref CollectionRef) (int, error) {
			return s.coll(info, ref).MaxOrder(ctx)
		},
		CreateEntry: func(ctx context.Context, _ DBTX, e CollectionEntry) (*CollectionEntry, error) {
			return s.coll(info, CollectionRef{OwnerID: e.OwnerID, CollectionID: e.CollectionID}).CreateEntry(ctx, e)
		},
		UpdateEntry: func(ctx context.Context, _ DBTX, ref CollectionRef, id uuid.UUID, upd EntryUpdate) (*CollectionEntry, error) {
			return s.coll(info, ref).UpdateEntry(ctx, id, upd)
		},
	}
	if !info.Singleton {
		def.Owns = func(_ context.Context, _ DBTX, ref CollectionRef) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.owner[ref.CollectionID] == ref.OwnerID, nil
		}
	}
	return def
}

func (s *memStore) create(owner uuid.UUID) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.owner[id] = owner
	s.mu.Unlock()
	return id
}

// memHistory is an in-memory HistoryStore.
type memHistory struct {
	mu      sync.Mutex
	records []ImportRecord
}

func (h *memHistory) RecordImport(ctx context.Context, rec ImportRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return nil
}

func (h *memHistory) ListImports(_ context.Context, owner uuid.UUID, limit int) ([]ImportSummary, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []ImportSummary
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		if rec := h.records[i]; rec.OwnerID == owner {
			out = append(out, ImportSummary{ID: rec.Job.ID, Collection: rec.Job.Collection, Policy: rec.Policy})
		}
	}
	return out, nil
}

func (h *memHistory) ImportIssues(_ context.Context, owner, id uuid.UUID) (*ImportSummary, []ImportIssue, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rec := range h.records {
		if rec.Job.ID != id || rec.OwnerID != owner {
			continue
		}
		var issues []ImportIssue
		for _, e := range rec.Job.Report.Errors {
			issues = append(issues, ImportIssue{Row: e.Row, Severity: "error", Message: e.Message})
		}
		return &ImportSummary{ID: id}, issues, nil
	}
	return nil, nil, ErrImportNotFound
}

func (h *memHistory) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

type serviceFixture struct {
	svc     *Service
	store   *memStore
	history *memHistory
	catalog *fakeCatalog
}

func newServiceFixture(t *testing.T, cfg *config.Config) *serviceFixture {
	t.Helper()
	resetRegistry(t)

	f := &serviceFixture{
		store:   newMemStore(),
		history: &memHistory{},
		catalog: newFakeCatalog().
			movie(27205, "Inception", "2010-07-16").
			series(1396, "Breaking Bad", "2008-01-20").
			imdb("tt1375666", 27205, KindMovie),
	}
	Register(f.store.definition(CollectionInfo{Key: "watchlist", Label: "Watchlist", Singleton: true}))
	Register(f.store.definition(CollectionInfo{Key: "list", Label: "List"}))
	Register(f.store.definition(CollectionInfo{Key: "playlist", Label: "Playlist", HasNote: true}))

	svc, err := NewService(nil, f.catalog, cfg, WithHistory(f.history))
	require.NoError(t, err)
	f.svc = svc
	return f
}

func csvBody(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func nativeFile() *strings.Reader {
	return csvBody(nativeHeader,
		"Inception,movie,27205,,,",
		"Breaking Bad,tv,1396,,,",
	)
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	assert.Error(t, err, "catalog is required")

	_, err = NewService(nil, newFakeCatalog(), nil)
	assert.Error(t, err, "database handle is required without a history store")

	svc, err := NewService(nil, newFakeCatalog(), nil, WithHistory(&memHistory{}))
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultMaxFileSize), svc.MaxFileSize())
	assert.Equal(t, DefaultMaxConcurrentImports, svc.LimiterStatus().MaxConcurrent)
}

func TestService_Collections(t *testing.T) {
	f := newServiceFixture(t, nil)

	var keys []string
	for _, info := range f.svc.Collections() {
		keys = append(keys, info.Key)
	}
	assert.Equal(t, []string{"list", "playlist", "watchlist"}, keys)
}

func TestService_ImportWatchlist(t *testing.T) {
	f := newServiceFixture(t, nil)
	owner := uuid.New()

	job, err := f.svc.Import(context.Background(), ImportRequest{
		Collection: "watchlist",
		Ref:        CollectionRef{OwnerID: owner, CollectionID: uuid.New()},
		Policy:     PolicySkip,
		FileName:   "export.csv",
		Data:       nativeFile(),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, "watchlist", job.Collection)
	assert.Equal(t, DialectNative, job.Dialect)
	assert.Equal(t, 2, job.TotalRows)
	assert.True(t, job.Report.Success)
	assert.Equal(t, 2, job.Report.Imported)

	coll := f.store.coll(CollectionInfo{}, CollectionRef{OwnerID: owner})
	assert.Equal(t, 2, coll.count(), "watchlist entries are keyed by owner only")

	require.Equal(t, 1, f.history.count())
	rec := f.history.records[0]
	assert.Equal(t, owner, rec.OwnerID)
	assert.Equal(t, uuid.Nil, rec.TargetID)
	assert.Equal(t, PolicySkip, rec.Policy)
	assert.Equal(t, job, rec.Job)
}

func TestService_ImportPlaylistWithMappingOverride(t *testing.T) {
	f := newServiceFixture(t, nil)
	owner := uuid.New()
	playlistID := f.store.create(owner)

	job, err := f.svc.Import(context.Background(), ImportRequest{
		Collection: "playlist",
		Ref:        CollectionRef{OwnerID: owner, CollectionID: playlistID},
		Policy:     PolicySkip,
		Data:       csvBody("A,B,C", "tt1375666,Inception,must watch"),
		Mapping:    ColumnMap{FieldForeignID: 0, FieldTitle: 1, FieldNote: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, job.Report.Imported)

	coll := f.store.coll(CollectionInfo{}, CollectionRef{OwnerID: owner, CollectionID: playlistID})
	e := coll.get(27205, KindMovie)
	require.NotNil(t, e)
	assert.Equal(t, "must watch", e.Note.String)
}

func TestService_ImportRejections(t *testing.T) {
	f := newServiceFixture(t, nil)
	owner := uuid.New()
	listID := f.store.create(owner)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     ImportRequest
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown collection",
			req:     ImportRequest{Collection: "favorites", Ref: CollectionRef{OwnerID: owner}, Policy: PolicySkip, Data: nativeFile()},
			wantErr: ErrUnknownCollection,
		},
		{
			name:    "invalid policy",
			req:     ImportRequest{Collection: "watchlist", Ref: CollectionRef{OwnerID: owner}, Policy: "merge", Data: nativeFile()},
			wantMsg: `invalid duplicate policy "merge"`,
		},
		{
			name:    "list without id",
			req:     ImportRequest{Collection: "list", Ref: CollectionRef{OwnerID: owner}, Policy: PolicySkip, Data: nativeFile()},
			wantErr: ErrCollectionNotFound,
		},
		{
			name:    "list owned by someone else",
			req:     ImportRequest{Collection: "list", Ref: CollectionRef{OwnerID: uuid.New(), CollectionID: listID}, Policy: PolicySkip, Data: nativeFile()},
			wantErr: ErrCollectionNotFound,
		},
		{
			name:    "empty file",
			req:     ImportRequest{Collection: "watchlist", Ref: CollectionRef{OwnerID: owner}, Policy: PolicySkip, Data: strings.NewReader("")},
			wantErr: ErrEmptyFile,
		},
		{
			name: "schema failure",
			req: ImportRequest{
				Collection: "watchlist", Ref: CollectionRef{OwnerID: owner}, Policy: PolicySkip,
				Data: nativeFile(), Mapping: ColumnMap{FieldTitle: 0},
			},
			wantErr: ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := f.svc.Import(ctx, tt.req)
			require.Error(t, err)
			assert.Nil(t, job)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}

	assert.Equal(t, 0, f.history.count(), "rejected imports leave no history")
	assert.Equal(t, 0, f.svc.LimiterStatus().Active)
}

func TestService_ImportFileTooLarge(t *testing.T) {
	cfg := &config.Config{}
	cfg.Import.MaxFileSize = 16
	f := newServiceFixture(t, cfg)

	_, err := f.svc.Import(context.Background(), ImportRequest{
		Collection: "watchlist", Ref: CollectionRef{OwnerID: uuid.New()}, Policy: PolicySkip, Data: nativeFile(),
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestService_ImportBusy(t *testing.T) {
	cfg := &config.Config{}
	cfg.Import.MaxConcurrent = 1
	cfg.Import.MaxWaitTime = 20 * time.Millisecond
	f := newServiceFixture(t, cfg)

	require.True(t, f.svc.limiter.TryAcquire())
	defer f.svc.limiter.Release()

	_, err := f.svc.Import(context.Background(), ImportRequest{
		Collection: "watchlist", Ref: CollectionRef{OwnerID: uuid.New()}, Policy: PolicySkip, Data: nativeFile(),
	})
	assert.ErrorIs(t, err, ErrTooManyImports)
}

func TestService_ImportTimeoutKeepsPartialReport(t *testing.T) {
	cfg := &config.Config{}
	cfg.Import.Timeout = 50 * time.Millisecond
	f := newServiceFixture(t, cfg)
	f.catalog.detailFn = func(ctx context.Context, _ int64, _ MediaKind) error {
		<-ctx.Done()
		return ctx.Err()
	}
	owner := uuid.New()

	job, err := f.svc.Import(context.Background(), ImportRequest{
		Collection: "watchlist", Ref: CollectionRef{OwnerID: owner}, Policy: PolicySkip, Data: nativeFile(),
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, job)
	assert.False(t, job.Report.Success)
	// the first row survives enrichment timing out, with a warning
	assert.Equal(t, 1, job.Report.Imported)
	assert.Len(t, job.Report.Warnings, 1)

	require.Equal(t, 1, f.history.count(), "history is written after cancellation")
	assert.Equal(t, owner, f.history.records[0].OwnerID)
	assert.Equal(t, 0, f.svc.LimiterStatus().Active)
}

func TestService_ConcurrentImportsIntoSameList(t *testing.T) {
	f := newServiceFixture(t, nil)
	owner := uuid.New()
	listID := f.store.create(owner)

	var wg sync.WaitGroup
	jobs := make([]*ImportJob, 2)
	for i := range jobs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			job, err := f.svc.Import(context.Background(), ImportRequest{
				Collection: "list",
				Ref:        CollectionRef{OwnerID: owner, CollectionID: listID},
				Policy:     PolicySkip,
				Data:       nativeFile(),
			})
			assert.NoError(t, err)
			jobs[i] = job
		}(i)
	}
	wg.Wait()

	require.NotNil(t, jobs[0])
	require.NotNil(t, jobs[1])
	assert.Equal(t, 2, jobs[0].Report.Imported+jobs[1].Report.Imported)
	assert.Equal(t, 2, jobs[0].Report.Skipped+jobs[1].Report.Skipped)

	coll := f.store.coll(CollectionInfo{}, CollectionRef{OwnerID: owner, CollectionID: listID})
	assert.Equal(t, 2, coll.count())
	assert.Equal(t, 0, f.svc.locks.size())
}

func TestService_QueuedImportHoldsNoSlot(t *testing.T) {
	cfg := &config.Config{}
	cfg.Import.MaxConcurrent = 1
	cfg.Import.MaxWaitTime = 20 * time.Millisecond
	f := newServiceFixture(t, cfg)
	owner := uuid.New()

	// another job is importing into this watchlist
	unlock, err := f.svc.locks.lock(context.Background(), lockKey("watchlist", CollectionRef{OwnerID: owner}))
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	queued := make(chan error, 1)
	go func() {
		_, err := f.svc.Import(ctx, ImportRequest{
			Collection: "watchlist", Ref: CollectionRef{OwnerID: owner}, Policy: PolicySkip, Data: nativeFile(),
		})
		queued <- err
	}()
	time.Sleep(10 * time.Millisecond)

	// the only slot is still free for a different collection
	job, err := f.svc.Import(context.Background(), ImportRequest{
		Collection: "watchlist", Ref: CollectionRef{OwnerID: uuid.New()}, Policy: PolicySkip, Data: nativeFile(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, job.Report.Imported)

	cancel()
	select {
	case err := <-queued:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("queued import ignored cancellation")
	}
	assert.Equal(t, 0, f.svc.LimiterStatus().Active)
}

func TestService_Detect(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.Detect(ctx, csvBody(imdbRatingsHeader, imdbRatingsRow("tt1375666", "Inception")), nil)
	require.NoError(t, err)
	assert.Equal(t, DialectForeign, res.Dialect)
	assert.True(t, res.Valid)
	assert.Equal(t, 1, res.TotalRows)
	assert.Equal(t, []string{"title=Title", "foreign_id=Const"}, res.Mapping)

	res, err = f.svc.Detect(ctx, nativeFile(), ColumnMap{FieldTitle: 0})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Problem, "missing required column")

	_, err = f.svc.Detect(ctx, strings.NewReader(""), nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	assert.Equal(t, 0, f.catalog.lookups+f.catalog.detailCount(), "detection never calls the catalog")
}

func TestService_History(t *testing.T) {
	f := newServiceFixture(t, nil)
	owner := uuid.New()
	ctx := context.Background()

	job, err := f.svc.Import(ctx, ImportRequest{
		Collection: "watchlist",
		Ref:        CollectionRef{OwnerID: owner},
		Policy:     PolicySkip,
		Data:       csvBody(nativeHeader, "Inception,movie,27205,,,", ",movie,1,,,"),
	})
	require.NoError(t, err)

	list, err := f.svc.ListImports(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, job.ID, list[0].ID)

	others, err := f.svc.ListImports(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)

	_, issues, err := f.svc.ImportIssues(ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []ImportIssue{{Row: 3, Severity: "error", Message: "missing title"}}, issues)

	_, _, err = f.svc.ImportIssues(ctx, uuid.New(), job.ID)
	assert.ErrorIs(t, err, ErrImportNotFound)
}

func TestService_WaitForImports(t *testing.T) {
	f := newServiceFixture(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, f.svc.WaitForImports(ctx))
}
