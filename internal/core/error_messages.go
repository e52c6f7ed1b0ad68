// Package core provides the business logic for list import operations.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Database Errors (DB001-DB099)
//
// Errors related to database operations and constraints:
//
//	DB001 - Duplicate key: This title is already in the collection
//	        Action: Re-import with the update policy to overwrite it
//	        Patterns: "duplicate key"
//
//	DB002 - Unique constraint: This value must be unique but already exists
//	        Action: Check for repeated rows in your file
//	        Patterns: "unique constraint", "violates unique"
//
//	DB003 - Foreign key: Referenced record does not exist
//	        Action: Make sure the list still exists
//	        Patterns: "foreign key constraint", "violates foreign key"
//
//	DB004 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB005 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB006 - Timeout: Operation timed out
//	        Action: Try importing a smaller file or try again later
//	        Patterns: "timeout"
//
//	DB007 - Deadlock: Database was busy with conflicting operations
//	        Action: Please try again
//	        Patterns: "deadlock"
//
// # File Errors (FILE001-FILE099)
//
// Errors related to file handling and parsing:
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Split the file into smaller chunks
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Export the list again as CSV
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File contains invalid characters
//	          Action: Save file as UTF-8 encoding
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV file to import
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Please upload a CSV file with data rows
//	          Patterns: "empty file"
//
// # Import Errors (IMP001-IMP099)
//
// Errors that reject a whole import before any row is processed:
//
//	IMP001 - Malformed table: The file has no header or no data rows
//	         Action: Check that the first row holds column names
//	         Patterns: "malformed table"
//
//	IMP002 - Missing column: A column required by the detected format is missing
//	         Action: Add the column or supply a column mapping
//	         Patterns: "missing required column"
//
//	IMP003 - Column not found: The column mapping points past the last column
//	         Action: Check the column mapping against the file header
//	         Patterns: "column not found"
//
//	IMP004 - Invalid mapping: The column mapping is not usable
//	         Action: Map each field to a different column
//	         Patterns: "mapped to both", "unknown mapping field", "invalid mapping"
//
//	IMP005 - Invalid policy: Duplicate policy is not recognized
//	         Action: Use skip or update
//	         Patterns: "invalid duplicate policy"
//
//	IMP006 - System busy: Too many imports in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent imports"
//
//	IMP007 - Import not found: No import with this id exists
//	         Action: Check the import history for the correct id
//	         Patterns: "import not found"
//
// # Collection Errors (COL001-COL099)
//
//	COL001 - Unknown collection: Collection type is not configured
//	         Action: Import into a watchlist, list, or playlist
//	         Patterns: "unknown collection"
//
//	COL002 - Collection not found: The target does not exist or is not yours
//	         Action: Verify the list id
//	         Patterns: "collection not found"
//
// # Catalog Errors (CAT001-CAT099)
//
// Errors from the movie catalog service:
//
//	CAT001 - Catalog credentials rejected
//	         Action: Contact the site administrator
//	         Patterns: "tmdb: unauthorized"
//
//	CAT002 - Catalog is throttling requests
//	         Action: Please wait a minute and re-import the failed rows
//	         Patterns: "tmdb: rate limited"
//
//	CAT003 - Catalog is unavailable
//	         Action: Please try again later
//	         Patterns: "tmdb: server error"
//
//	CAT004 - Title not found in the catalog
//	         Action: Check the id in the file
//	         Patterns: "catalog: not found"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Action: Try importing a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
//	REQ003 - Not signed in: No user identity on the request
//	         Action: Sign in and try again
//	         Patterns: "missing user identity"
//
//	REQ004 - Invalid request: A form field is missing or malformed
//	         Action: Check the form fields and try again
//	         Patterns: "validation failed"
//
// # Rate Limiting (RATE001-RATE099)
//
// Errors related to request throttling:
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. Multiple patterns can map to the same code
// (e.g., DB002 matches both "unique constraint" and "violates unique").
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated patterns to understand what triggered it
//  3. Review the suggested action to guide the user
//  4. If ERR000, check application logs for the original technical error
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// Catalog Errors (CAT001-CAT004)
	// Checked first: catalog errors wrap transport text that would otherwise
	// match the generic database and rate limit patterns below.
	// =========================================================================
	{
		pattern: "tmdb: unauthorized",
		msg: UserMessage{
			Message: "Catalog credentials were rejected",
			Action:  "Contact the site administrator",
			Code:    "CAT001",
		},
	},
	{
		pattern: "tmdb: rate limited",
		msg: UserMessage{
			Message: "The catalog is throttling requests",
			Action:  "Please wait a minute and re-import the failed rows",
			Code:    "CAT002",
		},
	},
	{
		pattern: "tmdb: server error",
		msg: UserMessage{
			Message: "The catalog is unavailable",
			Action:  "Please try again later",
			Code:    "CAT003",
		},
	},
	{
		pattern: "catalog: not found",
		msg: UserMessage{
			Message: "Title not found in the catalog",
			Action:  "Check the id in the file",
			Code:    "CAT004",
		},
	},

	// =========================================================================
	// Database Constraint Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "This title is already in the collection",
			Action:  "Re-import with the update policy to overwrite it",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for repeated rows in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Check for repeated rows in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Make sure the list still exists",
			Code:    "DB003",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Make sure the list still exists",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB007)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Export the list again as CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with data rows",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP007)
	// =========================================================================
	{
		pattern: "malformed table",
		msg: UserMessage{
			Message: "The file has no header or no data rows",
			Action:  "Check that the first row holds column names",
			Code:    "IMP001",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A column required by the detected format is missing",
			Action:  "Add the column or supply a column mapping",
			Code:    "IMP002",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "The column mapping points past the last column",
			Action:  "Check the column mapping against the file header",
			Code:    "IMP003",
		},
	},
	{
		pattern: "mapped to both",
		msg: UserMessage{
			Message: "The column mapping is not usable",
			Action:  "Map each field to a different column",
			Code:    "IMP004",
		},
	},
	{
		pattern: "unknown mapping field",
		msg: UserMessage{
			Message: "The column mapping is not usable",
			Action:  "Use title, kind, canonical_id, foreign_id, order, note or date",
			Code:    "IMP004",
		},
	},
	{
		pattern: "invalid mapping",
		msg: UserMessage{
			Message: "The column mapping is not valid JSON",
			Action:  `Send an object such as {"title": 0, "kind": 1}`,
			Code:    "IMP004",
		},
	},
	{
		pattern: "invalid duplicate policy",
		msg: UserMessage{
			Message: "Duplicate policy is not recognized",
			Action:  "Use skip or update",
			Code:    "IMP005",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP006",
		},
	},
	{
		pattern: "import not found",
		msg: UserMessage{
			Message: "Import not found",
			Action:  "Check the import history for the correct id",
			Code:    "IMP007",
		},
	},

	// =========================================================================
	// Collection Errors (COL001-COL002)
	// =========================================================================
	{
		pattern: "unknown collection",
		msg: UserMessage{
			Message: "Unknown collection type",
			Action:  "Import into a watchlist, list, or playlist",
			Code:    "COL001",
		},
	},
	{
		pattern: "collection not found",
		msg: UserMessage{
			Message: "Collection not found",
			Action:  "Verify the list id",
			Code:    "COL002",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ004)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try importing a smaller file or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "missing user identity",
		msg: UserMessage{
			Message: "You are not signed in",
			Action:  "Sign in and try again",
			Code:    "REQ003",
		},
	},
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "The request is missing or has invalid fields",
			Action:  "Check the form fields and try again",
			Code:    "REQ004",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := errors.New("duplicate key violation")
//	msg := MapError(err)
//	// msg.Code == "DB001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
