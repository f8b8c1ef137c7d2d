package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/conceptmap/pkg/view"
)

type saveViewRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

func (s *Server) listViews(w http.ResponseWriter, r *http.Request) {
	list, err := s.views.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []view.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// saveView handles POST /api/views, storing the current graph.
func (s *Server) saveView(w http.ResponseWriter, r *http.Request) {
	var req saveViewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	v, err := view.New(req.Name, req.Prompt, s.session.Export())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.views.Save(r.Context(), v); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("view saved", "id", v.ID, "name", v.Name, "nodes", len(v.Graph.Nodes))
	writeJSON(w, http.StatusCreated, v.Summary())
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Get(r.Context(), chi.URLParam(r, "viewID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) deleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.views.Delete(r.Context(), chi.URLParam(r, "viewID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadView handles POST /api/views/{viewID}/load, replacing the session graph.
func (s *Server) loadView(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Get(r.Context(), chi.URLParam(r, "viewID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.session.Load(v.Graph); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Status())
}
