package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/listimport/internal/core"
	"github.com/JonMunkholm/listimport/internal/logging"
	"github.com/JonMunkholm/listimport/internal/web/templates"
	"github.com/google/uuid"
)

// importForm holds the non-file fields of an import upload.
type importForm struct {
	DuplicatePolicy string `form:"duplicate_policy" validate:"omitempty,oneof=skip update"`
	Mapping         string `form:"mapping" validate:"omitempty,json"`
}

// detectForm holds the non-file fields of a detection upload.
type detectForm struct {
	Mapping string `form:"mapping" validate:"omitempty,json"`
}

// importResponse is the report plus job metadata. The report fields are
// promoted to the top level.
type importResponse struct {
	*core.ImportReport
	JobID      uuid.UUID    `json:"jobId"`
	Collection string       `json:"collection"`
	Dialect    core.Dialect `json:"dialect"`
	TotalRows  int          `json:"totalRows"`
	Cancelled  bool         `json:"cancelled,omitempty"`
	Message    string       `json:"message,omitempty"`
}

// handleListCollections lists the collection types that accept imports.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	type collection struct {
		Key       string `json:"key"`
		Label     string `json:"label"`
		Singleton bool   `json:"singleton"`
		HasNote   bool   `json:"hasNote"`
	}
	infos := s.service.Collections()
	out := make([]collection, len(infos))
	for i, c := range infos {
		out[i] = collection{Key: c.Key, Label: c.Label, Singleton: c.Singleton, HasNote: c.HasNote}
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleLimiterStatus reports import slot usage.
func (s *Server) handleLimiterStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.LimiterStatus())
}

// handleDetect reports the dialect and mapping of an upload without
// importing it.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	upload, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer upload.Body.Close()

	form := detectForm{Mapping: r.FormValue("mapping")}
	if err := s.validate.Validate(form); err != nil {
		s.respondError(w, r, err)
		return
	}
	mapping, err := parseMapping(form.Mapping)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.Detect(r.Context(), upload.Body, mapping)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.DetectResult(res).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render detect result", "error", err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handleImport returns the upload handler for one collection type.
// idParam names the chi URL parameter holding the collection id; it is
// empty for singleton collections.
func (s *Server) handleImport(collection, idParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerID(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		ref := core.CollectionRef{OwnerID: owner}
		if idParam != "" {
			ref.CollectionID, err = uuidParam(r, idParam, core.ErrCollectionNotFound)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
		}

		upload, err := s.readUpload(w, r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		defer upload.Body.Close()

		form := importForm{
			DuplicatePolicy: strings.ToLower(strings.TrimSpace(r.FormValue("duplicate_policy"))),
			Mapping:         r.FormValue("mapping"),
		}
		if err := s.validate.Validate(form); err != nil {
			s.respondError(w, r, err)
			return
		}
		policy, err := core.ParseDuplicatePolicy(form.DuplicatePolicy)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		mapping, err := parseMapping(form.Mapping)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		job, err := s.service.Import(r.Context(), core.ImportRequest{
			Collection: collection,
			Ref:        ref,
			Policy:     policy,
			FileName:   upload.Name,
			Data:       upload.Body,
			Mapping:    mapping,
		})
		if job == nil {
			if err == nil {
				err = errors.New("import returned no result")
			}
			s.respondError(w, r, err)
			return
		}

		resp := importResponse{
			ImportReport: job.Report,
			JobID:        job.ID,
			Collection:   job.Collection,
			Dialect:      job.Dialect,
			TotalRows:    job.TotalRows,
		}
		// A job cut short still reports the rows it finished.
		if err != nil {
			resp.Cancelled = true
			resp.Message = core.FormatUserError(err)
			if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
				logging.FromContext(r.Context()).Info("client went away during import", "job_id", job.ID)
				return
			}
		}

		logging.FromContext(r.Context()).Info("import finished",
			"job_id", job.ID,
			"collection", job.Collection,
			"dialect", job.Dialect.String(),
			"imported", job.Report.Imported,
			"skipped", job.Report.Skipped,
			"errors", len(job.Report.Errors),
			"warnings", len(job.Report.Warnings),
			"cancelled", resp.Cancelled,
		)

		if isHTMX(r) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := templates.ImportReport(job, resp.Cancelled).Render(r.Context(), w); err != nil {
				logging.FromContext(r.Context()).Error("render import report", "error", err)
			}
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}
