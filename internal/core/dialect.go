package core

import (
	"errors"
	"fmt"
	"strings"
)

// Dialect is the detected origin format of an uploaded table.
type Dialect int

const (
	// DialectGeneric is anything not recognized; columns are found by
	// synonym matching and any subset may be missing.
	DialectGeneric Dialect = iota
	// DialectNative is this application's own round-trip export.
	DialectNative
	// DialectForeign is an IMDb list or ratings export, identified only by
	// the Const column.
	DialectForeign
)

func (d Dialect) String() string {
	switch d {
	case DialectNative:
		return "native"
	case DialectForeign:
		return "foreign-export"
	default:
		return "generic"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ErrMalformedTable is the sentinel wrapped by MalformedTableError.
var ErrMalformedTable = errors.New("malformed table")

// MalformedTableError rejects a table with no columns or no data rows.
type MalformedTableError struct {
	Reason string
}

func (e *MalformedTableError) Error() string {
	return "malformed table: " + e.Reason
}

func (e *MalformedTableError) Unwrap() error {
	return ErrMalformedTable
}

// ErrSchema is the sentinel wrapped by SchemaError.
var ErrSchema = errors.New("schema validation failed")

// SchemaError rejects a mapping that cannot serve the detected dialect.
type SchemaError struct {
	Dialect Dialect
	Missing []Field
	Reason  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, f := range e.Missing {
			names[i] = f.String()
		}
		return fmt.Sprintf("missing required column for %s file: %s", e.Dialect, strings.Join(names, ", "))
	}
	return fmt.Sprintf("%s file: %s", e.Dialect, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// Native export columns. note and releaseDate are optional, so the native
// dialect matches four exact header sets.
var (
	nativeRequired = map[string]Field{
		"title":       FieldTitle,
		"type":        FieldKind,
		"canonicalid": FieldCanonicalID,
		"order":       FieldOrder,
	}
	nativeOptional = map[string]Field{
		"note":        FieldNote,
		"releasedate": FieldDate,
	}
)

// IMDb export header sets. Only the columns named in foreignColumns are
// mapped; the rest are carried for set equality.
var (
	foreignHeaderSets = [][]string{
		// list export
		{"position", "const", "created", "modified", "description", "title", "url", "title type",
			"imdb rating", "runtime (mins)", "year", "genres", "num votes", "release date", "directors"},
		// list export, 2023 layout
		{"position", "const", "created", "modified", "description", "title", "original title", "url",
			"title type", "imdb rating", "runtime (mins)", "year", "genres", "num votes", "release date",
			"directors", "your rating", "date rated"},
		// ratings export
		{"const", "your rating", "date rated", "title", "url", "title type", "imdb rating",
			"runtime (mins)", "year", "genres", "num votes", "release date", "directors"},
		// ratings export, 2023 layout
		{"const", "your rating", "date rated", "title", "original title", "url", "title type",
			"imdb rating", "runtime (mins)", "year", "genres", "num votes", "release date", "directors"},
	}
	foreignColumns = map[string]Field{
		"const":       FieldForeignID,
		"position":    FieldOrder,
		"description": FieldNote,
		"title":       FieldTitle,
	}
)

// synonym lists the header spellings the generic mapper accepts for one
// field. exact is tried against every column before any stem is.
type synonym struct {
	field Field
	exact []string
	stems []string
}

// genericSynonyms is evaluated in order; a column claimed by an earlier
// field is not offered to later ones. Identifiers go first so "tmdb title"
// style headers cannot steal an id column. Id stems name the id itself, so
// site columns such as "IMDb Rating" are never read as identifiers.
var genericSynonyms = []synonym{
	{
		field: FieldCanonicalID,
		exact: []string{"tmdb id", "tmdbid", "tmdb", "canonical id", "canonicalid", "tmdb movie id", "tmdb show id"},
		stems: []string{"tmdb id", "tmdbid", "canonical id"},
	},
	{
		field: FieldForeignID,
		exact: []string{"imdb id", "imdbid", "imdb", "const", "foreign id", "foreignid", "imdb const"},
		stems: []string{"imdb id", "imdbid", "imdb const", "const"},
	},
	{
		field: FieldKind,
		exact: []string{"type", "kind", "media type", "mediatype", "title type", "category"},
		stems: []string{"type", "kind"},
	},
	{
		field: FieldTitle,
		exact: []string{"title", "name", "movie", "show", "film", "original title"},
		stems: []string{"title", "name"},
	},
	{
		field: FieldOrder,
		exact: []string{"order", "position", "rank", "#", "index", "sort order"},
		stems: []string{"order", "position", "rank"},
	},
	{
		field: FieldNote,
		exact: []string{"note", "notes", "description", "comment", "comments", "review"},
		stems: []string{"note", "desc", "comment"},
	},
	{
		field: FieldDate,
		exact: []string{"release date", "releasedate", "first air date", "air date", "premiere date", "date"},
		stems: []string{"release", "air date", "premiere"},
	},
}

// Detect classifies a header row and produces the field mapping.
//
// Native and foreign-export are recognized by exact, order-independent set
// equality of normalized header names; anything else is generic. Rows are
// only checked for existence, so the same header always yields the same
// dialect and mapping.
func Detect(headers []string, rows [][]string) (Dialect, ColumnMap, error) {
	if len(headers) == 0 || allBlank(headers) {
		return DialectGeneric, nil, &MalformedTableError{Reason: "no columns"}
	}
	if len(rows) == 0 {
		return DialectGeneric, nil, &MalformedTableError{Reason: "no data rows"}
	}

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	if cols, ok := matchNative(normalized); ok {
		return DialectNative, cols, nil
	}
	if cols, ok := matchForeign(normalized); ok {
		return DialectForeign, cols, nil
	}
	return DialectGeneric, mapGeneric(headers), nil
}

func matchNative(headers []string) (ColumnMap, bool) {
	set, ok := headerSet(headers)
	if !ok {
		return nil, false
	}
	for name := range nativeRequired {
		if !set[name] {
			return nil, false
		}
	}
	for name := range set {
		if _, req := nativeRequired[name]; req {
			continue
		}
		if _, opt := nativeOptional[name]; !opt {
			return nil, false
		}
	}

	cols := make(ColumnMap, len(headers))
	for i, h := range headers {
		if f, ok := nativeRequired[h]; ok {
			cols[f] = i
		} else if f, ok := nativeOptional[h]; ok {
			cols[f] = i
		}
	}
	return cols, true
}

func matchForeign(headers []string) (ColumnMap, bool) {
	set, ok := headerSet(headers)
	if !ok {
		return nil, false
	}
	for _, candidate := range foreignHeaderSets {
		if !sameSet(set, candidate) {
			continue
		}
		cols := make(ColumnMap, len(foreignColumns))
		for i, h := range headers {
			if f, ok := foreignColumns[h]; ok {
				cols[f] = i
			}
		}
		return cols, true
	}
	return nil, false
}

// mapGeneric binds each field to the first unclaimed column whose header
// is an exact synonym, falling back to the first one containing a stem.
func mapGeneric(headers []string) ColumnMap {
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = headerKey(h)
	}

	cols := make(ColumnMap)
	claimed := make([]bool, len(headers))

	for _, syn := range genericSynonyms {
		idx := -1
		for i, key := range keys {
			if !claimed[i] && key != "" && containsString(syn.exact, key) {
				idx = i
				break
			}
		}
		if idx < 0 {
			for i, key := range keys {
				if claimed[i] || key == "" {
					continue
				}
				if containsStem(key, syn.stems) {
					idx = i
					break
				}
			}
		}
		if idx >= 0 {
			claimed[idx] = true
			cols[syn.field] = idx
		}
	}
	return cols
}

// requiredFields lists the fields a dialect cannot resolve rows without.
// Generic files degrade to per-row "missing required identifier" errors
// instead.
func requiredFields(d Dialect) []Field {
	switch d {
	case DialectNative:
		return []Field{FieldTitle, FieldKind, FieldCanonicalID}
	case DialectForeign:
		return []Field{FieldForeignID}
	default:
		return nil
	}
}

// ValidateSchema checks that cols references only existing columns and
// binds every field the dialect requires. Failures are batch-level.
func ValidateSchema(d Dialect, cols ColumnMap, columnCount int) error {
	for _, f := range cols.Fields() {
		if i := cols[f]; i < 0 || i >= columnCount {
			return &SchemaError{
				Dialect: d,
				Reason:  fmt.Sprintf("column not found: %s mapped to index %d of %d columns", f, i, columnCount),
			}
		}
	}

	var missing []Field
	for _, f := range requiredFields(d) {
		if !cols.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Dialect: d, Missing: missing}
	}

	seen := make(map[int]Field, len(cols))
	for _, f := range cols.Fields() {
		if other, dup := seen[cols[f]]; dup {
			return &SchemaError{
				Dialect: d,
				Reason:  fmt.Sprintf("column %d mapped to both %s and %s", cols[f], other, f),
			}
		}
		seen[cols[f]] = f
	}
	return nil
}

// DescribeMapping renders cols as "field=Header" pairs for logs and the CLI.
func DescribeMapping(headers []string, cols ColumnMap) []string {
	out := make([]string, 0, len(cols))
	for _, f := range cols.Fields() {
		name := "?"
		if i := cols[f]; i >= 0 && i < len(headers) {
			name = CleanCell(headers[i])
		}
		out = append(out, f.String()+"="+name)
	}
	return out
}

func headerSet(headers []string) (map[string]bool, bool) {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		if set[h] {
			// duplicate header names never match a fixed set
			return nil, false
		}
		set[h] = true
	}
	return set, true
}

func sameSet(set map[string]bool, names []string) bool {
	if len(set) != len(names) {
		return false
	}
	for _, n := range names {
		if !set[n] {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsStem(key string, stems []string) bool {
	for _, stem := range stems {
		if strings.Contains(key, stem) {
			return true
		}
	}
	return false
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if CleanCell(c) != "" {
			return false
		}
	}
	return true
}
