// Package core provides the business logic for importing movie and TV
// lists into user collections.
//
// The package holds all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the CLI and the tests without
// modification.
//
// # Architecture
//
// An import flows through five stages:
//
//  1. [ParseTable] reads the upload, strips a BOM, repairs invalid UTF-8 and
//     sniffs the delimiter.
//  2. [Detect] classifies the header as a native export, a foreign
//     (IMDb-style) export or a generic list, and maps columns to [Field]s.
//  3. The [Resolver] turns each row into a canonical catalog entity, either
//     directly (native), through the foreign-id lookup or by title search.
//  4. The reconciler checks the target [Collection] for an existing entry
//     and skips or updates it according to the [DuplicatePolicy]. Rows that
//     will be written are enriched with detail data; skipped rows are not.
//  5. The position assigner gives new entries an order, honoring explicit
//     orders and appending after the current maximum otherwise.
//
// Row outcomes are aggregated into an [ImportReport]. A failing row never
// aborts the job.
//
// # Collection Registry
//
// Collection types are registered at init time using [Register]. Each
// [CollectionDefinition] carries the storage operations for one type:
//
//	core.Register(core.CollectionDefinition{
//	    Info:        core.CollectionInfo{Key: "playlist", Label: "Playlist", HasNote: true},
//	    Owns:        playlistOwnedBy,
//	    FindEntry:   findPlaylistItem,
//	    MaxOrder:    playlistMaxOrder,
//	    CreateEntry: createPlaylistItem,
//	    UpdateEntry: updatePlaylistItem,
//	})
//
// The watchlist, list and playlist definitions live in the collections
// subpackage and are enabled with a blank import.
//
// # Concurrency
//
// [Service.Import] admits at most Import.MaxConcurrent jobs through an
// [ImportLimiter] and serializes jobs that target the same collection, so
// duplicate checks and order assignment see a consistent view.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - CAT001-CAT004: Catalog errors (unauthorized, rate limited, unavailable, not found)
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - FILE001-FILE005: File errors (size, encoding, format)
//   - IMP001-IMP007: Import errors (schema, policy, cancelled, timeout)
//   - COL001-COL002: Collection errors (unknown type, not found)
package core
