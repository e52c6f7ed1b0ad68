package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// ----------------------------------------------------------------------------
// ToPgDate Tests
// ----------------------------------------------------------------------------

func TestToPgDate(t *testing.T) {
	originalPivot := TwoDigitYearPivot
	defer func() { TwoDigitYearPivot = originalPivot }()

	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		// Valid: ISO format (YYYY-MM-DD), the native export layout
		{
			name:      "ISO format standard",
			input:     "2010-07-16",
			wantValid: true,
			wantYear:  2010,
			wantMonth: time.July,
			wantDay:   16,
		},
		{
			name:      "ISO format leap year Feb 29",
			input:     "2024-02-29",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.February,
			wantDay:   29,
		},
		{
			name:      "ISO with slashes",
			input:     "2008/01/20",
			wantValid: true,
			wantYear:  2008,
			wantMonth: time.January,
			wantDay:   20,
		},

		// Valid: US format (MM/DD/YYYY)
		{
			name:      "US format with slashes",
			input:     "01/15/2024",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   15,
		},
		{
			name:      "US format single digit month/day",
			input:     "1/5/2024",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   5,
		},

		// Valid: written month names seen in tracker exports
		{
			name:      "short month name",
			input:     "Jul 16, 2010",
			wantValid: true,
			wantYear:  2010,
			wantMonth: time.July,
			wantDay:   16,
		},
		{
			name:      "day first month name",
			input:     "16 Jul 2010",
			wantValid: true,
			wantYear:  2010,
			wantMonth: time.July,
			wantDay:   16,
		},

		// Valid: compact and RFC 3339
		{
			name:      "compact YYYYMMDD",
			input:     "20100716",
			wantValid: true,
			wantYear:  2010,
			wantMonth: time.July,
			wantDay:   16,
		},
		{
			name:      "RFC 3339 keeps only the day",
			input:     "2010-07-16T23:30:00-05:00",
			wantValid: true,
			wantYear:  2010,
			wantMonth: time.July,
			wantDay:   16,
		},
		{
			name:      "surrounding whitespace",
			input:     "  2010-07-16  ",
			wantValid: true,
			wantYear:  2010,
			wantMonth: time.July,
			wantDay:   16,
		},

		// Invalid
		{
			name:      "empty string",
			input:     "",
			wantValid: false,
		},
		{
			name:      "whitespace only",
			input:     "   ",
			wantValid: false,
		},
		{
			name:      "year only",
			input:     "2010",
			wantValid: false,
		},
		{
			name:      "day first numeric is not guessed",
			input:     "16/07/2010",
			wantValid: false,
		},
		{
			name:      "not a date",
			input:     "unknown",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgDate(tt.input)

			if result.Valid != tt.wantValid {
				t.Errorf("ToPgDate(%q).Valid = %v, want %v",
					tt.input, result.Valid, tt.wantValid)
				return
			}

			if tt.wantValid {
				if result.Time.Year() != tt.wantYear {
					t.Errorf("ToPgDate(%q).Year = %d, want %d",
						tt.input, result.Time.Year(), tt.wantYear)
				}
				if result.Time.Month() != tt.wantMonth {
					t.Errorf("ToPgDate(%q).Month = %v, want %v",
						tt.input, result.Time.Month(), tt.wantMonth)
				}
				if result.Time.Day() != tt.wantDay {
					t.Errorf("ToPgDate(%q).Day = %d, want %d",
						tt.input, result.Time.Day(), tt.wantDay)
				}
			}
		})
	}
}

// TestToPgDate_TwoDigitYear tests 2-digit year handling with pivot year logic
func TestToPgDate_TwoDigitYear(t *testing.T) {
	originalPivot := TwoDigitYearPivot
	defer func() { TwoDigitYearPivot = originalPivot }()
	TwoDigitYearPivot = 20

	tests := []struct {
		name     string
		input    string
		wantYear int
	}{
		{name: "2-digit year 25 as 2025", input: "01/15/25", wantYear: 2025},
		{name: "2-digit year 30 (within pivot)", input: "01/15/30", wantYear: 2030},
		{name: "2-digit year 99 as 1999", input: "01/15/99", wantYear: 1999},
		{name: "dash format 2-digit year", input: "1-15-85", wantYear: 1985},
		{name: "dot format 2-digit year", input: "01.15.99", wantYear: 1999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgDate(tt.input)
			if !result.Valid {
				t.Fatalf("ToPgDate(%q).Valid = false, want true", tt.input)
			}
			if got := result.Time.Year(); got != tt.wantYear {
				t.Errorf("ToPgDate(%q).Year = %d, want %d", tt.input, got, tt.wantYear)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgText / ToPgInt4 Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantValid  bool
		wantString string
	}{
		{name: "simple string", input: "rewatch", wantValid: true, wantString: "rewatch"},
		{name: "trims whitespace", input: "  rewatch  ", wantValid: true, wantString: "rewatch"},
		{name: "empty string", input: "", wantValid: false},
		{name: "whitespace only", input: " \t ", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgText(tt.input)
			if result.Valid != tt.wantValid {
				t.Errorf("ToPgText(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
			}
			if result.String != tt.wantString {
				t.Errorf("ToPgText(%q).String = %q, want %q", tt.input, result.String, tt.wantString)
			}
		})
	}
}

func TestToPgInt4(t *testing.T) {
	if got := ToPgInt4(0); got.Valid {
		t.Errorf("ToPgInt4(0).Valid = true, want false")
	}
	if got := ToPgInt4(7); !got.Valid || got.Int32 != 7 {
		t.Errorf("ToPgInt4(7) = %+v, want 7", got)
	}
	if got := ToPgInt4(MaxOrder + 1); got.Valid {
		t.Errorf("ToPgInt4(MaxOrder+1) = %+v, want invalid", got)
	}
}

func TestPgUUID(t *testing.T) {
	if got := PgUUID(uuid.Nil); got.Valid {
		t.Errorf("PgUUID(Nil).Valid = true, want false")
	}
	if got := FromPgUUID(PgUUID(uuid.Nil)); got != uuid.Nil {
		t.Errorf("FromPgUUID(NULL) = %v, want Nil", got)
	}

	id := uuid.New()
	if got := FromPgUUID(PgUUID(id)); got != id {
		t.Errorf("FromPgUUID(PgUUID(%v)) = %v", id, got)
	}
}

// ----------------------------------------------------------------------------
// Identifier Tests
// ----------------------------------------------------------------------------

func TestParseCanonicalID(t *testing.T) {
	tests := []struct {
		input  string
		wantID int64
		wantOK bool
	}{
		{"27205", 27205, true},
		{"  550 ", 550, true},
		{`="1396"`, 1396, true},
		{`"603"`, 603, true},
		{"", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"12.5", 0, false},
		{"tt1375666", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, ok := ParseCanonicalID(tt.input)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("ParseCanonicalID(%q) = (%d, %v), want (%d, %v)",
					tt.input, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestValidForeignID(t *testing.T) {
	tests := map[string]bool{
		"tt1375666":  true,
		"tt0000001":  true,
		"tt":         false,
		"TT1375666":  false,
		"nm0000138":  false,
		"1375666":    false,
		"tt13756a6":  false,
		" tt1375666": false,
		"":           false,
	}

	for input, want := range tests {
		if got := ValidForeignID(input); got != want {
			t.Errorf("ValidForeignID(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{" 42 ", 42, true},
		{`="3"`, 3, true},
		{"", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"2.5", 0, false},
		{"2147483647", 2147483647, true},
		{"2147483648", 0, false},
		{"4294967297", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseOrder(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseOrder(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseMediaKind(t *testing.T) {
	tests := []struct {
		input  string
		want   MediaKind
		wantOK bool
	}{
		{"movie", KindMovie, true},
		{"Movie", KindMovie, true},
		{"tvMovie", KindMovie, true},
		{"tv", KindTV, true},
		{"TV Series", KindTV, true},
		{"tvMiniSeries", KindTV, true},
		{"tv_show", KindTV, true},
		{"", "", false},
		{"podcast", "", false},
		{"videoGame", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseMediaKind(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseMediaKind(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Basic cleaning
		{
			name:  "simple string unchanged",
			input: "Inception",
			want:  "Inception",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},

		// Whitespace trimming
		{
			name:  "surrounded by whitespace",
			input: "  Inception  ",
			want:  "Inception",
		},

		// Excel formula prefix handling
		{
			name:  "Excel formula with quotes",
			input: `="27205"`,
			want:  "27205",
		},
		{
			name:  "bare equals sign",
			input: "=SUM(A1)",
			want:  "SUM(A1)",
		},

		// Quote handling
		{
			name:  "stray double quotes",
			input: `"Heat"`,
			want:  "Heat",
		},
		{
			name:  "single quotes are part of the title",
			input: "'71",
			want:  "'71",
		},

		// Byte order mark glued to the first header
		{
			name:  "leading BOM",
			input: "\ufeffTitle",
			want:  "Title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanCell(tt.input)
			if got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHeaderKey(t *testing.T) {
	tests := map[string]string{
		"TMDB_ID":      "tmdb id",
		"tmdb-id":      "tmdb id",
		"  Tmdb  Id ":  "tmdb id",
		"Release.Date": "release date",
		`="Title"`:     "title",
	}

	for input, want := range tests {
		if got := headerKey(input); got != want {
			t.Errorf("headerKey(%q) = %q, want %q", input, got, want)
		}
	}
}
