package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memCollection is an in-memory Collection. Hooks let tests inject
// failures at the storage boundary.
type memCollection struct {
	mu      sync.Mutex
	info    CollectionInfo
	ref     CollectionRef
	entries []*CollectionEntry

	onCreate func(CollectionEntry) error
	onUpdate func(uuid.UUID, EntryUpdate) error
	findErr  error
	maxErr   error

	creates int
	updates int
}

func newMemCollection(key string, hasNote bool) *memCollection {
	return &memCollection{
		info: CollectionInfo{Key: key, Label: key, HasNote: hasNote},
		ref:  CollectionRef{OwnerID: uuid.New(), CollectionID: uuid.New()},
	}
}

func (c *memCollection) Info() CollectionInfo { return c.info }
func (c *memCollection) Ref() CollectionRef   { return c.ref }

func (c *memCollection) FindEntry(_ context.Context, id int64, kind MediaKind) (*CollectionEntry, error) {
	if c.findErr != nil {
		return nil, c.findErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.CanonicalID == id && e.Kind == kind {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (c *memCollection) MaxOrder(context.Context) (int, error) {
	if c.maxErr != nil {
		return 0, c.maxErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	max := 0
	for _, e := range c.entries {
		if e.Order > max {
			max = e.Order
		}
	}
	return max, nil
}

func (c *memCollection) CreateEntry(_ context.Context, e CollectionEntry) (*CollectionEntry, error) {
	if c.onCreate != nil {
		if err := c.onCreate(e); err != nil {
			return nil, err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e.OwnerID = c.ref.OwnerID
	e.CollectionID = c.ref.CollectionID
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	c.entries = append(c.entries, &e)
	c.creates++
	cp := e
	return &cp, nil
}

func (c *memCollection) UpdateEntry(_ context.Context, id uuid.UUID, upd EntryUpdate) (*CollectionEntry, error) {
	if c.onUpdate != nil {
		if err := c.onUpdate(id, upd); err != nil {
			return nil, err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID != id {
			continue
		}
		if upd.Title != "" {
			e.Title = upd.Title
		}
		if upd.ReleaseDate.Valid {
			e.ReleaseDate = upd.ReleaseDate
		}
		if upd.FirstAirDate.Valid {
			e.FirstAirDate = upd.FirstAirDate
		}
		if upd.Note.Valid {
			e.Note = upd.Note
		}
		if upd.Order.Valid {
			e.Order = int(upd.Order.Int32)
		}
		e.UpdatedAt = time.Now()
		c.updates++
		cp := *e
		return &cp, nil
	}
	return nil, fmt.Errorf("entry %s: no rows in result set", id)
}

// add seeds an existing entry.
func (c *memCollection) add(id int64, kind MediaKind, title string, order int) *CollectionEntry {
	e := &CollectionEntry{
		ID:           uuid.New(),
		OwnerID:      c.ref.OwnerID,
		CollectionID: c.ref.CollectionID,
		CanonicalID:  id,
		Kind:         kind,
		Title:        title,
		Order:        order,
	}
	c.entries = append(c.entries, e)
	return e
}

func (c *memCollection) get(id int64, kind MediaKind) *CollectionEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.CanonicalID == id && e.Kind == kind {
			return e
		}
	}
	return nil
}

func (c *memCollection) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type detailKey struct {
	id   int64
	kind MediaKind
}

// fakeCatalog serves canned lookups and details and counts calls.
type fakeCatalog struct {
	mu       sync.Mutex
	foreign  map[string]*ForeignMatches
	details  map[detailKey]*CatalogDetail
	lookupFn func(ctx context.Context, id string) error
	detailFn func(ctx context.Context, id int64, kind MediaKind) error

	lookups     int
	detailCalls []detailKey
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		foreign: make(map[string]*ForeignMatches),
		details: make(map[detailKey]*CatalogDetail),
	}
}

func (c *fakeCatalog) movie(id int64, title, date string) *fakeCatalog {
	c.details[detailKey{id, KindMovie}] = &CatalogDetail{
		CanonicalID: id, Kind: KindMovie, Title: title,
		PosterPath: fmt.Sprintf("/p%d.jpg", id), BackdropPath: fmt.Sprintf("/b%d.jpg", id), Date: date,
	}
	return c
}

func (c *fakeCatalog) series(id int64, title, date string) *fakeCatalog {
	c.details[detailKey{id, KindTV}] = &CatalogDetail{
		CanonicalID: id, Kind: KindTV, Title: title,
		PosterPath: fmt.Sprintf("/p%d.jpg", id), BackdropPath: fmt.Sprintf("/b%d.jpg", id), Date: date,
	}
	return c
}

// imdb registers a foreign id that resolves to an already registered detail.
func (c *fakeCatalog) imdb(foreignID string, id int64, kind MediaKind) *fakeCatalog {
	d := c.details[detailKey{id, kind}]
	m := CatalogMatch{CanonicalID: id, Kind: kind}
	if d != nil {
		m.Title, m.PosterPath, m.BackdropPath, m.Date = d.Title, d.PosterPath, d.BackdropPath, d.Date
	}
	fm := c.foreign[foreignID]
	if fm == nil {
		fm = &ForeignMatches{}
		c.foreign[foreignID] = fm
	}
	if kind == KindTV {
		fm.Series = append(fm.Series, m)
	} else {
		fm.Movies = append(fm.Movies, m)
	}
	return c
}

func (c *fakeCatalog) LookupByForeignID(ctx context.Context, foreignID string) (*ForeignMatches, error) {
	c.mu.Lock()
	c.lookups++
	c.mu.Unlock()
	if c.lookupFn != nil {
		if err := c.lookupFn(ctx, foreignID); err != nil {
			return nil, err
		}
	}
	if fm, ok := c.foreign[foreignID]; ok {
		return fm, nil
	}
	return &ForeignMatches{}, nil
}

func (c *fakeCatalog) FetchDetail(ctx context.Context, id int64, kind MediaKind) (*CatalogDetail, error) {
	c.mu.Lock()
	c.detailCalls = append(c.detailCalls, detailKey{id, kind})
	c.mu.Unlock()
	if c.detailFn != nil {
		if err := c.detailFn(ctx, id, kind); err != nil {
			return nil, err
		}
	}
	if d, ok := c.details[detailKey{id, kind}]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: %s %d", ErrCatalogNotFound, kind, id)
}

func (c *fakeCatalog) detailCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.detailCalls)
}

// mustTable parses csv lines into a table.
func mustTable(t *testing.T, lines ...string) *ParsedTable {
	t.Helper()
	table, err := ParseTable(strings.NewReader(strings.Join(lines, "\n")+"\n"), 0)
	require.NoError(t, err)
	return table
}

// IMDb ratings export header.
const imdbRatingsHeader = "Const,Your Rating,Date Rated,Title,URL,Title Type,IMDb Rating,Runtime (mins),Year,Genres,Num Votes,Release Date,Directors"

func imdbRatingsRow(id, title string) string {
	return id + ",8,2024-01-01," + title + ",https://www.imdb.com/title/" + id + "/,Movie,8.8,148,2010,Action,2000000,2010-07-16,Christopher Nolan"
}
