package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interaction"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/session"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// =============================================================================
// Simulations
// =============================================================================

type createRequest struct {
	Nodes  []graph.Node           `json:"nodes"`
	Edges  []graph.Edge           `json:"edges"`
	Width  float64                `json:"width"`
	Height float64                `json:"height"`
	Params *force.Params          `json:"params,omitempty"`
	Seeds  map[string]force.Point `json:"seeds,omitempty"`
}

type eventResponse struct {
	Changed bool         `json:"changed"`
	View    session.View `json:"view"`
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	cfg := session.Config{
		Width:       req.Width,
		Height:      req.Height,
		Params:      s.cfg.Params,
		Interaction: s.cfg.Interaction,
		Seeds:       req.Seeds,
	}
	if req.Params != nil {
		cfg.Params = *req.Params
	}

	sess, err := s.store.Create(r.Context(), graph.Graph{Nodes: req.Nodes, Edges: req.Edges}, cfg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v := sess.View()
	s.logger.Info("session created", "id", sess.ID, "nodes", len(req.Nodes), "dropped_edges", v.Dropped)
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.store.List()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	n := 1
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "n must be a positive integer, got %q", q))
			return
		}
		n = min(v, s.cfg.MaxTicksPerRequest)
	}
	writeJSON(w, http.StatusOK, sess.Tick(r.Context(), n))
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var e interaction.Event
	if err := s.decodeJSON(w, r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	changed, err := sess.Handle(r.Context(), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Changed: changed, View: sess.View()})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateDimensions(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Resize(req.Width, req.Height))
}

// session resolves the {id} URL parameter, writing a 404 when it names no
// live session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// =============================================================================
// Headless layout and fitting
// =============================================================================

type layoutRequest struct {
	Nodes   []graph.Node     `json:"nodes"`
	Edges   []graph.Edge     `json:"edges"`
	Options pipeline.Options `json:"options"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := req.Options
	opts.Formats = []string{format}
	opts.Logger = s.logger
	if opts.Params == (force.Params{}) {
		opts.Params = s.cfg.Params
	}

	res, err := s.runner.Run(r.Context(), graph.Graph{Nodes: req.Nodes, Edges: req.Edges}, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

type fitRequest struct {
	Width   float64              `json:"width"`
	Height  float64              `json:"height"`
	Padding float64              `json:"padding"`
	Box     *viewport.ContentBox `json:"box,omitempty"`
	SVG     string               `json:"svg,omitempty"` // box is read from the root viewBox
}

type fitResponse struct {
	Box       viewport.ContentBox `json:"box"`
	Transform viewport.Transform  `json:"transform"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var req fitRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateDimensions(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}

	var box viewport.ContentBox
	switch {
	case req.SVG != "":
		b, err := viewport.BoxFromSVG([]byte(req.SVG))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		box = b
	case req.Box != nil:
		box = *req.Box
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "one of box or svg is required"))
		return
	}

	writeJSON(w, http.StatusOK, fitResponse{
		Box:       box,
		Transform: viewport.Fit(req.Width, req.Height, box, req.Padding),
	})
}
