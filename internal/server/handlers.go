package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flashaov/pkg/buildinfo"
	"github.com/matzehuels/flashaov/pkg/compositor"
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/graphio"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
	"github.com/matzehuels/flashaov/pkg/observability"
	"github.com/matzehuels/flashaov/pkg/scene"
	"github.com/matzehuels/flashaov/pkg/store"
)

// ReconcileRequest is the body of POST /v1/reconcile. A nil Graph loads the
// scene's stored snapshot, or starts from an empty graph. Nil Options use the
// server defaults.
type ReconcileRequest struct {
	Scene   scene.Scene         `json:"scene"`
	Graph   *graphio.Graph      `json:"graph,omitempty"`
	Options *compositor.Options `json:"options,omitempty"`
	Persist bool                `json:"persist,omitempty"`
}

// ReconcileResponse is the reconciled snapshot and the pass report.
type ReconcileResponse struct {
	Graph  graphio.Graph      `json:"graph"`
	Report *compositor.Report `json:"report"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
	Store  string         `json:"store"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get(), Store: s.opts.Store.Backend()})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBody)

	var req ReconcileRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if err := req.Scene.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Persist && req.Scene.Name == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "persist needs a scene name"))
		return
	}

	key := s.opts.Keyer.GraphKey(req.Scene.Name)
	g, err := s.startGraph(r, req, key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.opts.Defaults
	if req.Options != nil {
		opts = *req.Options
	}
	rec := compositor.NewReconciler(compositor.GraphContext{Host: g, Provider: &req.Scene}, opts, s.logger)
	report, err := rec.Reconcile(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Persist {
		if err := store.SaveGraph(ctx, s.opts.Store, key, g, s.opts.TTL); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, ReconcileResponse{Graph: graphio.FromGraph(g), Report: report})
}

func (s *Server) startGraph(r *http.Request, req ReconcileRequest, key string) (*nodegraph.Graph, error) {
	if req.Graph != nil {
		return graphio.ToGraph(*req.Graph)
	}
	if req.Scene.Name != "" {
		g, found, err := store.LoadGraph(r.Context(), s.opts.Store, key)
		if err != nil {
			return nil, err
		}
		if found {
			return g, nil
		}
	}
	return nodegraph.New(), nil
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "scene")
	g, found, err := store.LoadGraph(r.Context(), s.opts.Store, s.opts.Keyer.GraphKey(name))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !found {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no snapshot for scene %q", name))
		return
	}
	writeJSON(w, http.StatusOK, graphio.FromGraph(g))
}

// observe reports every request to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status,
			"id", middleware.GetReqID(r.Context()), "elapsed", elapsed.Round(time.Microsecond))
	})
}
