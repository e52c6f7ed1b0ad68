package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/JonMunkholm/listimport/internal/core"
	mw "github.com/JonMunkholm/listimport/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// multipartOverhead is room for form fields and part headers on top of the
// file size limit.
const multipartOverhead = 1 << 20

// ownerID returns the caller set by RequireUser.
func ownerID(r *http.Request) (uuid.UUID, error) {
	id, ok := mw.UserID(r.Context())
	if !ok {
		return uuid.Nil, errors.New("missing user identity")
	}
	return id, nil
}

// uuidParam parses a UUID path parameter. A malformed id is reported as
// not found so existence is not leaked.
func uuidParam(r *http.Request, name string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", notFound, chi.URLParam(r, name))
	}
	return id, nil
}

// errInvalidMapping marks a mapping override that could not be decoded.
var errInvalidMapping = errors.New("invalid mapping")

// uploadedFile is the file part of a multipart upload.
type uploadedFile struct {
	Name string
	Body multipart.File
}

// readUpload parses the multipart body with the service size limit and
// returns the "file" part. Callers must close Body.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*uploadedFile, error) {
	maxSize := s.service.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
		}
		return nil, &ValidationError{Fields: map[string]string{"file": "must be sent as multipart/form-data"}}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"file": "is required"}}
	}
	if header.Size > maxSize {
		file.Close()
		return nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
	}
	return &uploadedFile{Name: header.Filename, Body: file}, nil
}

// parseMapping decodes an optional mapping override.
func parseMapping(raw string) (core.ColumnMap, error) {
	if raw == "" {
		return nil, nil
	}
	var m core.ColumnMap
	if err := m.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidMapping, err)
	}
	return m, nil
}
