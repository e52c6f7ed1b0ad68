// Package middleware provides HTTP middleware for the import server.
package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the same error shape the handlers use.
func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"code":    code,
	})
}
