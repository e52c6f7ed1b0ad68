package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownCollection is returned for a collection key nobody registered.
var ErrUnknownCollection = errors.New("unknown collection")

// ErrCollectionNotFound is returned when the caller does not own the
// target collection (or it does not exist).
var ErrCollectionNotFound = errors.New("collection not found")

// CollectionInfo describes a collection type.
type CollectionInfo struct {
	Key       string // "watchlist", "list", "playlist"
	Label     string // Display name
	Singleton bool   // one per user, addressed without a collection id
	HasNote   bool   // entries carry a free-text note
}

// Collection is the capability set the import engine needs from a target
// collection. Implementations must commit each write before returning so
// the next row observes it.
type Collection interface {
	Info() CollectionInfo
	Ref() CollectionRef
	// FindEntry returns the entry keyed by (canonicalID, kind), or nil.
	FindEntry(ctx context.Context, canonicalID int64, kind MediaKind) (*CollectionEntry, error)
	// MaxOrder returns the highest order in the collection, 0 when empty.
	MaxOrder(ctx context.Context) (int, error)
	CreateEntry(ctx context.Context, entry CollectionEntry) (*CollectionEntry, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, upd EntryUpdate) (*CollectionEntry, error)
}

// OwnsFunc reports whether ref's owner may import into ref's collection.
type OwnsFunc func(ctx context.Context, db DBTX, ref CollectionRef) (bool, error)

// FindEntryFunc looks up an entry by catalog identity.
type FindEntryFunc func(ctx context.Context, db DBTX, ref CollectionRef, canonicalID int64, kind MediaKind) (*CollectionEntry, error)

// MaxOrderFunc returns the current max order of the collection.
type MaxOrderFunc func(ctx context.Context, db DBTX, ref CollectionRef) (int, error)

// CreateEntryFunc inserts a new entry.
type CreateEntryFunc func(ctx context.Context, db DBTX, entry CollectionEntry) (*CollectionEntry, error)

// UpdateEntryFunc applies an update to an existing entry.
type UpdateEntryFunc func(ctx context.Context, db DBTX, ref CollectionRef, id uuid.UUID, upd EntryUpdate) (*CollectionEntry, error)

// CollectionDefinition contains everything needed to import into one
// collection type.
type CollectionDefinition struct {
	Info        CollectionInfo
	Owns        OwnsFunc
	FindEntry   FindEntryFunc
	MaxOrder    MaxOrderFunc
	CreateEntry CreateEntryFunc
	UpdateEntry UpdateEntryFunc
}

var (
	registry   = make(map[string]CollectionDefinition)
	registryMu sync.RWMutex
)

// Register adds a collection definition to the registry.
// Panics if a collection with the same key is already registered.
func Register(def CollectionDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("collection already registered: %s", def.Info.Key))
	}
	if def.FindEntry == nil || def.MaxOrder == nil || def.CreateEntry == nil || def.UpdateEntry == nil {
		panic(fmt.Sprintf("collection %s: incomplete definition", def.Info.Key))
	}

	registry[def.Info.Key] = def
}

// Get returns a collection definition by key.
// Returns false if not found.
func Get(key string) (CollectionDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered collection definitions sorted by key.
func All() []CollectionDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]CollectionDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// CollectionCount returns the number of registered collection types.
func CollectionCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered collections.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]CollectionDefinition)
}

// Bind attaches a definition to a database handle and a concrete
// collection, producing the adapter the engine imports into.
func Bind(def CollectionDefinition, db DBTX, ref CollectionRef) Collection {
	if def.Info.Singleton {
		ref.CollectionID = uuid.Nil
	}
	return &boundCollection{def: def, db: db, ref: ref}
}

type boundCollection struct {
	def CollectionDefinition
	db  DBTX
	ref CollectionRef
}

func (c *boundCollection) Info() CollectionInfo { return c.def.Info }
func (c *boundCollection) Ref() CollectionRef   { return c.ref }

func (c *boundCollection) FindEntry(ctx context.Context, canonicalID int64, kind MediaKind) (*CollectionEntry, error) {
	return c.def.FindEntry(ctx, c.db, c.ref, canonicalID, kind)
}

func (c *boundCollection) MaxOrder(ctx context.Context) (int, error) {
	return c.def.MaxOrder(ctx, c.db, c.ref)
}

func (c *boundCollection) CreateEntry(ctx context.Context, entry CollectionEntry) (*CollectionEntry, error) {
	entry.OwnerID = c.ref.OwnerID
	entry.CollectionID = c.ref.CollectionID
	if !c.def.Info.HasNote {
		entry.Note.Valid = false
	}
	return c.def.CreateEntry(ctx, c.db, entry)
}

func (c *boundCollection) UpdateEntry(ctx context.Context, id uuid.UUID, upd EntryUpdate) (*CollectionEntry, error) {
	if !c.def.Info.HasNote {
		upd.Note.Valid = false
	}
	return c.def.UpdateEntry(ctx, c.db, c.ref, id, upd)
}

// CheckOwnership resolves the Owns hook. Definitions without one (the
// singleton watchlist) accept every owner.
func CheckOwnership(ctx context.Context, def CollectionDefinition, db DBTX, ref CollectionRef) error {
	if def.Owns == nil {
		return nil
	}
	ok, err := def.Owns(ctx, db, ref)
	if err != nil {
		return fmt.Errorf("check %s ownership: %w", def.Info.Key, err)
	}
	if !ok {
		return fmt.Errorf("%s %s: %w", def.Info.Key, ref.CollectionID, ErrCollectionNotFound)
	}
	return nil
}
