package server

import (
	"io"
	"net/http"

	"github.com/matzehuels/conceptmap/pkg/document"
	errs "github.com/matzehuels/conceptmap/pkg/errors"
)

type documentsResponse struct {
	Documents []document.Document `json:"documents"`
	Chars     int                 `json:"chars"`
}

// uploadDocuments handles POST /api/documents with multipart field "files".
// The whole upload is rejected if any file is unreadable.
func (s *Server) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid upload"))
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "no files in upload"))
		return
	}

	docs := make([]*document.Document, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "open %s", h.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", h.Filename))
			return
		}
		doc, err := document.Extract(h.Filename, data)
		if err != nil {
			s.writeError(w, err)
			return
		}
		docs = append(docs, doc)
	}

	s.docs.Add(docs...)
	s.session.SetContext(s.docs.Combined())
	s.logger.Info("documents uploaded", "files", len(docs), "total", s.docs.Len())
	s.listDocuments(w, r)
}

func (s *Server) listDocuments(w http.ResponseWriter, _ *http.Request) {
	docs := s.docs.List()
	total := 0
	for _, d := range docs {
		total += d.Chars
	}
	writeJSON(w, http.StatusOK, documentsResponse{Documents: docs, Chars: total})
}

func (s *Server) clearDocuments(w http.ResponseWriter, r *http.Request) {
	s.docs.Clear()
	s.session.SetContext("")
	s.listDocuments(w, r)
}
