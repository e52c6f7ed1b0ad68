package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	db "github.com/JonMunkholm/listimport/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX = db.DBTX

// MediaKind is the catalog media type of an entry.
type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

// kindAliases maps normalized spellings seen in exports to a MediaKind.
// IMDb "Title Type" values are included so generic files that kept that
// column still resolve.
var kindAliases = map[string]MediaKind{
	"movie":        KindMovie,
	"movies":       KindMovie,
	"film":         KindMovie,
	"tvmovie":      KindMovie,
	"video":        KindMovie,
	"tv":           KindTV,
	"series":       KindTV,
	"show":         KindTV,
	"tvshow":       KindTV,
	"tvseries":     KindTV,
	"tvminiseries": KindTV,
	"miniseries":   KindTV,
}

// ParseMediaKind parses a raw kind cell. Returns false for anything that is
// not recognizably a movie or a series.
func ParseMediaKind(s string) (MediaKind, bool) {
	key := strings.ToLower(CleanCell(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	k, ok := kindAliases[key]
	return k, ok
}

// Valid reports whether k is one of the two known kinds.
func (k MediaKind) Valid() bool {
	return k == KindMovie || k == KindTV
}

// Field is a canonical column the column mapper can bind a header to.
type Field int

const (
	FieldTitle Field = iota
	FieldKind
	FieldCanonicalID
	FieldForeignID
	FieldOrder
	FieldNote
	FieldDate
)

var fieldNames = [...]string{
	FieldTitle:       "title",
	FieldKind:        "kind",
	FieldCanonicalID: "canonical_id",
	FieldForeignID:   "foreign_id",
	FieldOrder:       "order",
	FieldNote:        "note",
	FieldDate:        "date",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField looks up a field by its String name.
func ParseField(s string) (Field, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range fieldNames {
		if name == s {
			return Field(i), true
		}
	}
	return 0, false
}

// ColumnMap maps canonical fields to column positions in the header.
type ColumnMap map[Field]int

// Index returns the column bound to f.
func (m ColumnMap) Index(f Field) (int, bool) {
	i, ok := m[f]
	return i, ok
}

// Has reports whether f is mapped.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Fields returns the mapped fields in declaration order.
func (m ColumnMap) Fields() []Field {
	out := make([]Field, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON encodes the map keyed by field name.
func (m ColumnMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(m))
	for f, i := range m {
		out[f.String()] = i
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a {"field": index} object. Unknown field names are
// rejected so a typo in a mapping override is not silently ignored.
func (m *ColumnMap) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ColumnMap, len(raw))
	for name, i := range raw {
		f, ok := ParseField(name)
		if !ok {
			return fmt.Errorf("unknown mapping field %q", name)
		}
		out[f] = i
	}
	*m = out
	return nil
}

// ParsedTable is a tokenized upload: header, data rows, the detected
// dialect and the field mapping the detector produced.
type ParsedTable struct {
	Headers []string
	Rows    [][]string
	Dialect Dialect
	Columns ColumnMap
}

// Cell returns the cleaned value of field f in row. Unmapped fields and
// short rows yield "".
func (t *ParsedTable) Cell(row []string, f Field) string {
	i, ok := t.Columns.Index(f)
	if !ok || i < 0 || i >= len(row) {
		return ""
	}
	return CleanCell(row[i])
}

// RowFields is the mapped view of one data row.
type RowFields struct {
	Title       string
	Kind        string
	CanonicalID string
	ForeignID   string
	Order       string
	Note        string
	Date        string
}

// Fields extracts all mapped cells of row.
func (t *ParsedTable) Fields(row []string) RowFields {
	return RowFields{
		Title:       t.Cell(row, FieldTitle),
		Kind:        t.Cell(row, FieldKind),
		CanonicalID: t.Cell(row, FieldCanonicalID),
		ForeignID:   t.Cell(row, FieldForeignID),
		Order:       t.Cell(row, FieldOrder),
		Note:        t.Cell(row, FieldNote),
		Date:        t.Cell(row, FieldDate),
	}
}

// ResolvedEntity is a row resolved to a catalog identity. It is never
// persisted directly.
type ResolvedEntity struct {
	CanonicalID  int64
	Kind         MediaKind
	Title        string
	PosterPath   pgtype.Text
	BackdropPath pgtype.Text
	ReleaseDate  pgtype.Date // movies
	FirstAirDate pgtype.Date // tv
}

// Date returns the date field that applies to the entity's kind.
func (e *ResolvedEntity) Date() pgtype.Date {
	if e.Kind == KindTV {
		return e.FirstAirDate
	}
	return e.ReleaseDate
}

// SetDate stores d in the date field that applies to the entity's kind.
func (e *ResolvedEntity) SetDate(d pgtype.Date) {
	if e.Kind == KindTV {
		e.FirstAirDate = d
		return
	}
	e.ReleaseDate = d
}

// needsEnrichment reports whether artwork or the date is still missing.
func (e *ResolvedEntity) needsEnrichment() bool {
	return !e.PosterPath.Valid || !e.BackdropPath.Valid || !e.Date().Valid
}

// CollectionRef identifies the target collection of an import.
// CollectionID is uuid.Nil for singleton collections (the watchlist).
type CollectionRef struct {
	OwnerID      uuid.UUID
	CollectionID uuid.UUID
}

func (r CollectionRef) String() string {
	if r.CollectionID == uuid.Nil {
		return r.OwnerID.String()
	}
	return r.OwnerID.String() + "/" + r.CollectionID.String()
}

// CollectionEntry is one persisted item of a watchlist, list or playlist.
type CollectionEntry struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	CollectionID uuid.UUID
	CanonicalID  int64
	Kind         MediaKind
	Title        string
	PosterPath   pgtype.Text
	BackdropPath pgtype.Text
	ReleaseDate  pgtype.Date
	FirstAirDate pgtype.Date
	Order        int
	Note         pgtype.Text // playlists only
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EntryUpdate carries the fields the update policy may change. Invalid
// (unset) values leave the stored field untouched.
type EntryUpdate struct {
	Title        string
	ReleaseDate  pgtype.Date
	FirstAirDate pgtype.Date
	Note         pgtype.Text
	Order        pgtype.Int4
}

// DuplicatePolicy selects what happens when a row resolves to an entity
// already present in the target collection.
type DuplicatePolicy string

const (
	PolicySkip   DuplicatePolicy = "skip"
	PolicyUpdate DuplicatePolicy = "update"
)

// ParseDuplicatePolicy parses a policy name. An empty string is skip.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyUpdate:
		return PolicyUpdate, nil
	default:
		return "", fmt.Errorf("invalid duplicate policy %q (expected skip or update)", s)
	}
}

// RowError is a terminal failure for one row. Row counts the header as 1.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"error"`
}

// RowWarning is a non-terminal problem for one row; the entry was still
// written with a degraded field.
type RowWarning struct {
	Row     int    `json:"row"`
	Message string `json:"warning"`
}

// ImportReport is the aggregate result of one import job.
type ImportReport struct {
	Success  bool         `json:"success"`
	Imported int          `json:"imported"`
	Skipped  int          `json:"skipped"`
	Errors   []RowError   `json:"errors"`
	Warnings []RowWarning `json:"warnings"`
}

// Processed returns the number of rows accounted for so far.
func (r *ImportReport) Processed() int {
	return r.Imported + r.Skipped + len(r.Errors)
}

// ImportJob is a finished import as returned to callers of Service.Import.
type ImportJob struct {
	ID         uuid.UUID     `json:"id"`
	Collection string        `json:"collection"`
	Dialect    Dialect       `json:"dialect"`
	FileName   string        `json:"fileName,omitempty"`
	TotalRows  int           `json:"totalRows"`
	Duration   time.Duration `json:"-"`
	Report     *ImportReport `json:"report"`
}

// ImportSummary is one row of a caller's import history.
type ImportSummary struct {
	ID           uuid.UUID       `json:"id"`
	Collection   string          `json:"collection"`
	CollectionID uuid.UUID       `json:"collectionId"`
	FileName     string          `json:"fileName"`
	Dialect      string          `json:"dialect"`
	Policy       DuplicatePolicy `json:"policy"`
	TotalRows    int             `json:"totalRows"`
	Imported     int             `json:"imported"`
	Skipped      int             `json:"skipped"`
	Errors       int             `json:"errors"`
	Warnings     int             `json:"warnings"`
	Success      bool            `json:"success"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ImportIssue is a stored row error or warning of a past import.
type ImportIssue struct {
	Row      int    `json:"row"`
	Severity string `json:"severity"` // "error" or "warning"
	Message  string `json:"message"`
}
