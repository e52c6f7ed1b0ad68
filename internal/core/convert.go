package core

// convert.go turns raw spreadsheet cells into typed values.
//
// Export files from different trackers disagree on almost everything:
// date layouts, Excel formula wrapping (="123"), stray quotes, a UTF-8 BOM
// glued to the first header. All ToPg* functions return Valid=false for
// empty or unparsable input so the database stores NULL.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// foreignIDPattern is the shape of an IMDb title constant.
var foreignIDPattern = regexp.MustCompile(`^tt\d+$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are
// assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006", "January 2, 2006",
		"2006-01-02T15:04:05Z07:00",
		"20060102",
	}
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a string to pgtype.Date.
// Supports multiple date formats and handles 2-digit years with pivot.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	for _, layout := range fourDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return pgtype.Date{Time: truncateDay(t), Valid: true}
		}
	}

	currentYear := time.Now().Year()
	pivotYear := currentYear + TwoDigitYearPivot

	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	return pgtype.Date{Valid: false}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ToPgInt4 converts an int to pgtype.Int4.
// Returns invalid if the value is zero or does not fit in 32 bits.
func ToPgInt4(i int) pgtype.Int4 {
	if i == 0 || i > math.MaxInt32 || i < math.MinInt32 {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

// PgUUID converts a uuid.UUID to pgtype.UUID. uuid.Nil is stored as NULL.
func PgUUID(u uuid.UUID) pgtype.UUID {
	if u == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: u, Valid: true}
}

// FromPgUUID converts a pgtype.UUID back to uuid.UUID. NULL becomes uuid.Nil.
func FromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}

// ParseCanonicalID parses a catalog id cell. Only positive integers are
// usable identifiers.
func ParseCanonicalID(s string) (int64, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ValidForeignID reports whether s looks like an IMDb title constant.
func ValidForeignID(s string) bool {
	return foreignIDPattern.MatchString(s)
}

// MaxOrder is the largest position a collection entry can hold; orders
// are stored as int4.
const MaxOrder = math.MaxInt32

// ParseOrder parses an explicit position. Only integers in 1..MaxOrder
// count.
func ParseOrder(s string) (int, bool) {
	s = CleanCell(s)
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int(n), true
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace and a leading byte order mark
// - Removes Excel formula prefix (="...")
// - Removes surrounding double quotes (single quotes are kept: '71 is a title)
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"`)

	return strings.TrimSpace(s)
}

// normalizeHeader lowercases and trims a header cell for set comparison.
func normalizeHeader(s string) string {
	return strings.ToLower(CleanCell(s))
}

// headerKey is normalizeHeader with separators folded to single spaces,
// so "TMDB_ID", "tmdb-id" and "tmdb  id" compare equal.
func headerKey(s string) string {
	s = normalizeHeader(s)
	s = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
