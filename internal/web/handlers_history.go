package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/listimport/internal/core"
	"github.com/JonMunkholm/listimport/internal/logging"
	"github.com/JonMunkholm/listimport/internal/web/templates"
)

// handleListImports returns the caller's recent imports, newest first.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	items, err := s.service.ListImports(r.Context(), owner)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if items == nil {
		items = []core.ImportSummary{}
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ImportHistory(items).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render import history", "error", err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, items)
}

// handleGetImport returns one import summary with its issues.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	jobID, err := uuidParam(r, "jobID", core.ErrImportNotFound)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	summary, issues, err := s.service.ImportIssues(r.Context(), owner, jobID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if issues == nil {
		issues = []core.ImportIssue{}
	}
	writeJSON(w, r, http.StatusOK, struct {
		*core.ImportSummary
		Issues []core.ImportIssue `json:"issues"`
	}{summary, issues})
}

// handleExportIssues downloads the row errors and warnings of one import
// as CSV, errors first.
func (s *Server) handleExportIssues(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	jobID, err := uuidParam(r, "jobID", core.ErrImportNotFound)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	summary, issues, err := s.service.ImportIssues(r.Context(), owner, jobID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("import_%s_issues.csv", summary.ID)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write([]string{"Row", "Severity", "Message"}); err != nil {
		return
	}
	for _, issue := range issues {
		if err := csvWriter.Write([]string{strconv.Itoa(issue.Row), issue.Severity, issue.Message}); err != nil {
			logging.FromContext(r.Context()).Warn("write issues csv", "error", err)
			return
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		logging.FromContext(r.Context()).Warn("flush issues csv", "error", err)
	}
}
