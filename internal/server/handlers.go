package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/render/nodelink"
	"github.com/matzehuels/conceptmap/pkg/session"
)

type generateRequest struct {
	Lens string `json:"lens"`
}

type instructionRequest struct {
	Instruction string `json:"instruction"`
}

type mutationResponse struct {
	Result session.Result `json:"result"`
	Status session.Status `json:"status"`
}

type undoResponse struct {
	Undone bool           `json:"undone"`
	Status session.Status `json:"status"`
}

type visibleResponse struct {
	Graph     graph.Graph     `json:"graph"`
	Layout    layout.Layout   `json:"layout"`
	Collapsed map[string]bool `json:"collapsed"`
}

func (s *Server) mutated(w http.ResponseWriter, res session.Result, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Result: res, Status: s.session.Status()})
}

// generate handles POST /api/generate.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.session.Regenerate(r.Context(), req.Lens)
	s.mutated(w, res, err)
}

// refineGlobal handles POST /api/refine.
func (s *Server) refineGlobal(w http.ResponseWriter, r *http.Request) {
	var req instructionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.session.RefineGlobal(r.Context(), req.Instruction)
	s.mutated(w, res, err)
}

// dive handles POST /api/nodes/{nodeID}/dive.
func (s *Server) dive(w http.ResponseWriter, r *http.Request) {
	var req instructionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.session.Dive(r.Context(), chi.URLParam(r, "nodeID"), req.Instruction)
	s.mutated(w, res, err)
}

// refineNode handles POST /api/nodes/{nodeID}/refine.
func (s *Server) refineNode(w http.ResponseWriter, r *http.Request) {
	var req instructionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.session.Refine(r.Context(), chi.URLParam(r, "nodeID"), req.Instruction)
	s.mutated(w, res, err)
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	ok := s.session.Undo(r.Context())
	writeJSON(w, http.StatusOK, undoResponse{Undone: ok, Status: s.session.Status()})
}

func (s *Server) expand(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Expand(chi.URLParam(r, "nodeID")); err != nil {
		s.writeError(w, err)
		return
	}
	s.getVisible(w, r)
}

func (s *Server) collapse(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Collapse(chi.URLParam(r, "nodeID")); err != nil {
		s.writeError(w, err)
		return
	}
	s.getVisible(w, r)
}

func (s *Server) expandAll(w http.ResponseWriter, r *http.Request) {
	s.session.ExpandAll()
	s.getVisible(w, r)
}

func (s *Server) getGraph(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Export())
}

func (s *Server) getVisible(w http.ResponseWriter, _ *http.Request) {
	f := s.session.Frame()
	writeJSON(w, http.StatusOK, visibleResponse{Graph: f.Graph, Layout: f.Layout, Collapsed: f.Collapsed})
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Status())
}

// render handles GET /api/render?format=svg|dot.
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	f := s.session.Frame()
	dot := nodelink.ToDOT(f.Graph, f.Layout, nodelink.Options{
		Detailed:  true,
		Collapsed: f.Collapsed,
		Geometry:  s.session.LayoutConfig(),
	})

	switch r.URL.Query().Get("format") {
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
	case "", "svg":
		svg, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "INVALID_INPUT", Message: "format must be svg or dot"})
	}
}
