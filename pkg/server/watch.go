package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/morph/pkg/render"
)

const (
	watchWriteTimeout = 10 * time.Second
	watchPongWait     = 60 * time.Second
	watchPingPeriod   = watchPongWait * 9 / 10
)

// handleWatch streams events for one tree. The first event is a snapshot of
// the current HTML; the stream ends when the tree is deleted, the server
// shuts down, or the client falls too far behind.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	t, err := s.tree(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "tree", t.id, "error", err)
		return
	}
	defer conn.Close()

	wt := newWatcher(s.config.WatchBuffer)
	t.mu.Lock()
	if t.deleted {
		t.mu.Unlock()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "tree deleted"))
		return
	}
	wt.events <- Event{Type: EventSnapshot, Tree: t.id, Version: t.version, HTML: render.HTML(t.root)}
	t.watchers[wt] = struct{}{}
	t.mu.Unlock()

	s.metrics().WatcherConnected()
	s.logger.Debug("watcher connected", "tree", t.id)
	defer func() {
		t.mu.Lock()
		delete(t.watchers, wt)
		t.mu.Unlock()
		s.metrics().WatcherDisconnected()
		s.logger.Debug("watcher disconnected", "tree", t.id)
	}()

	// Incoming messages are ignored; reading detects the close.
	conn.SetReadDeadline(time.Now().Add(watchPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchPongWait))
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wt.close()
				return
			}
		}
	}()

	ping := time.NewTicker(watchPingPeriod)
	defer ping.Stop()

	for {
		select {
		case ev := <-wt.events:
			if !s.send(conn, ev) {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-wt.done:
			// Deliver what was queued before the close, such as a deleted event.
			for {
				select {
				case ev := <-wt.events:
					if !s.send(conn, ev) {
						return
					}
				default:
					conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
					conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, ev Event) bool {
	conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
	if err := conn.WriteJSON(ev); err != nil {
		s.logger.Debug("watch write failed", "tree", ev.Tree, "error", err)
		return false
	}
	return true
}
