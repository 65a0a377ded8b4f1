package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vango-dev/morph/internal/errors"
	"github.com/vango-dev/morph/pkg/dom"
	"github.com/vango-dev/morph/pkg/instrument"
	"github.com/vango-dev/morph/pkg/render"
)

// TreeResponse is the JSON body returned by create and reconcile.
type TreeResponse struct {
	ID      string              `json:"id"`
	Version int                 `json:"version"`
	HTML    string              `json:"html"`
	Summary *instrument.Summary `json:"summary,omitempty"`
}

// TreeInfo is an entry of the tree list.
type TreeInfo struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	root, err := s.readTree(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := uuid.NewString()
	t := newTree(id, root)
	html := render.HTML(root)

	s.mu.Lock()
	s.trees[id] = t
	s.mu.Unlock()
	s.metrics().TreeCreated()
	s.persist(r.Context(), id, html)

	s.logger.Info("tree created", "tree", id, "root", root.String())
	w.Header().Set("Location", "/trees/"+id)
	writeJSON(w, http.StatusCreated, TreeResponse{ID: id, Version: 1, HTML: html})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	trees := make([]*tree, 0, len(s.trees))
	for _, t := range s.trees {
		trees = append(trees, t)
	}
	s.mu.RUnlock()

	list := make([]TreeInfo, 0, len(trees))
	for _, t := range trees {
		t.mu.Lock()
		list = append(list, TreeInfo{ID: t.id, Version: t.version})
		t.mu.Unlock()
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.tree(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pretty := r.URL.Query().Get("pretty") != ""
	renderer := render.NewRenderer(render.RendererConfig{Pretty: pretty, State: r.URL.Query().Get("state") != ""})

	t.mu.Lock()
	html, err := renderer.RenderToString(t.root)
	version := t.version
	t.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Tree-Version", strconv.Itoa(version))
	io.WriteString(w, html)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	t, err := s.tree(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	target, err := s.readTree(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.deleted {
		s.writeError(w, r, errors.New("H001").WithDetailf("tree %q", t.id))
		return
	}

	var mutations []MutationEvent
	opts := s.config.reconcileOptions()
	opts.OnMutation = journal(t.root, &mutations)

	result, summary, err := s.runner.Run(r.Context(), t.root, target, opts)
	if result != nil {
		t.root = result
	}
	if len(mutations) > 0 {
		t.version++
		html := render.HTML(t.root)
		s.persist(r.Context(), t.id, html)
		ev := Event{
			Type:      EventReconcile,
			Tree:      t.id,
			Version:   t.version,
			Summary:   &summary,
			Mutations: mutations,
		}
		if err != nil {
			ev.Error = err.Error()
		}
		t.broadcast(ev)
	}
	if err != nil {
		s.logger.Warn("reconcile failed", "tree", t.id, "error", err)
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TreeResponse{
		ID:      t.id,
		Version: t.version,
		HTML:    render.HTML(t.root),
		Summary: &summary,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	t, ok := s.trees[id]
	delete(s.trees, id)
	s.mu.Unlock()
	if !ok {
		s.writeError(w, r, errors.New("H001").WithDetailf("tree %q", id))
		return
	}

	t.mu.Lock()
	t.deleted = true
	t.broadcast(Event{Type: EventDeleted, Tree: id, Version: t.version})
	t.mu.Unlock()
	t.closeWatchers()

	s.metrics().TreeDeleted()
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.logger.Error("snapshot delete failed", "tree", id, "error", err)
	}
	s.logger.Info("tree deleted", "tree", id)
	w.WriteHeader(http.StatusNoContent)
}

// tree returns the tree named by the id URL parameter.
func (s *Server) tree(r *http.Request) (*tree, error) {
	id := chi.URLParam(r, "id")
	t, ok := s.lookup(id)
	if !ok {
		return nil, errors.New("H001").WithDetailf("tree %q", id)
	}
	return t, nil
}

// readTree parses the request body as a single element.
func (s *Server) readTree(w http.ResponseWriter, r *http.Request) (*dom.Node, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		return nil, errors.New("H002").WithDetail("read body").Wrap(err)
	}
	return dom.ParseElement(string(body))
}

// persist writes a snapshot. Failures are logged; the live tree stays
// authoritative.
func (s *Server) persist(ctx context.Context, id, html string) {
	if err := s.store.Put(ctx, id, []byte(html)); err != nil {
		s.logger.Error("snapshot write failed", "tree", id, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
