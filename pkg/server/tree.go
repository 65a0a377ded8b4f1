package server

import (
	"sync"

	"github.com/vango-dev/morph/pkg/dom"
	"github.com/vango-dev/morph/pkg/instrument"
	"github.com/vango-dev/morph/pkg/morph"
)

// Event types sent to watchers.
const (
	EventSnapshot  = "snapshot"  // current HTML, sent on connect
	EventReconcile = "reconcile" // journal of one reconcile
	EventDeleted   = "deleted"   // tree removed; the stream ends
)

// Event is one message on a watch stream.
type Event struct {
	Type      string              `json:"type"`
	Tree      string              `json:"tree"`
	Version   int                 `json:"version"`
	HTML      string              `json:"html,omitempty"`
	Summary   *instrument.Summary `json:"summary,omitempty"`
	Mutations []MutationEvent     `json:"mutations,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// MutationEvent is a journal entry addressed by child index paths from the
// tree root. Path is null for nodes outside the live tree at the time of
// the change.
type MutationEvent struct {
	Op     string `json:"op"`
	Path   []int  `json:"path"`
	Parent []int  `json:"parent,omitempty"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
}

// tree is one live tree. mu serializes reconciles and guards every field
// except id.
type tree struct {
	id string

	mu       sync.Mutex
	root     *dom.Node
	version  int
	deleted  bool
	watchers map[*watcher]struct{}
}

func newTree(id string, root *dom.Node) *tree {
	return &tree{
		id:       id,
		root:     root,
		version:  1,
		watchers: make(map[*watcher]struct{}),
	}
}

// journal records mutations relative to root as they are applied. A root
// replacement moves the reference to the new root.
func journal(root *dom.Node, out *[]MutationEvent) func(morph.Mutation) {
	return func(m morph.Mutation) {
		if m.Op == morph.OpReplaceNode && m.Parent == nil {
			root = m.Node
		}
		ev := MutationEvent{
			Op:    m.Op.String(),
			Path:  dom.Path(root, m.Node),
			Name:  m.Name,
			Value: m.Value,
		}
		if m.Parent != nil {
			ev.Parent = dom.Path(root, m.Parent)
		}
		*out = append(*out, ev)
	}
}

// watcher is a connected watch stream.
type watcher struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func newWatcher(buffer int) *watcher {
	return &watcher{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

func (w *watcher) close() {
	w.once.Do(func() { close(w.done) })
}

// broadcast queues ev for every watcher. Watchers whose queue is full are
// disconnected. Callers hold t.mu.
func (t *tree) broadcast(ev Event) {
	for w := range t.watchers {
		select {
		case w.events <- ev:
		default:
			w.close()
			delete(t.watchers, w)
		}
	}
}

func (t *tree) closeWatchers() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for w := range t.watchers {
		w.close()
		delete(t.watchers, w)
	}
}
