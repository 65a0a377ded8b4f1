package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWatch(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/trees/" + id + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return ev
}

func TestWatchStreamsJournal(t *testing.T) {
	s := newTestServer(t, Config{})
	srv := httptest.NewServer(s)
	defer srv.Close()

	id := create(t, s, `<ul><li id="a">A</li></ul>`).ID
	conn := dialWatch(t, srv, id)

	ev := readEvent(t, conn)
	if ev.Type != EventSnapshot || ev.Version != 1 || ev.HTML != `<ul><li id="a">A</li></ul>` {
		t.Fatalf("first event = %+v, want snapshot v1", ev)
	}

	rec := do(t, s, http.MethodPut, "/trees/"+id, `<ul class="x"><li id="a">A</li><li id="b">B</li></ul>`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT = %d", rec.Code)
	}

	ev = readEvent(t, conn)
	if ev.Type != EventReconcile || ev.Version != 2 {
		t.Fatalf("event = %+v, want reconcile v2", ev)
	}
	if ev.Summary == nil || ev.Summary.Total != len(ev.Mutations) {
		t.Errorf("summary = %+v, want total %d", ev.Summary, len(ev.Mutations))
	}
	if len(ev.Mutations) != 2 {
		t.Fatalf("mutations = %+v, want 2", ev.Mutations)
	}

	attr := ev.Mutations[0]
	if attr.Op != "SetAttr" || attr.Name != "class" || attr.Value != "x" || len(attr.Path) != 0 || attr.Path == nil {
		t.Errorf("mutations[0] = %+v, want SetAttr class=x at root", attr)
	}
	insert := ev.Mutations[1]
	if insert.Op != "InsertNode" || len(insert.Path) != 1 || insert.Path[0] != 1 {
		t.Errorf("mutations[1] = %+v, want InsertNode at [1]", insert)
	}

	do(t, s, http.MethodDelete, "/trees/"+id, "")
	ev = readEvent(t, conn)
	if ev.Type != EventDeleted {
		t.Errorf("event = %+v, want deleted", ev)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage() error = %v, want normal close", err)
	}
}

func TestWatchersFanOut(t *testing.T) {
	s := newTestServer(t, Config{})
	srv := httptest.NewServer(s)
	defer srv.Close()

	id := create(t, s, `<p>a</p>`).ID
	c1 := dialWatch(t, srv, id)
	c2 := dialWatch(t, srv, id)
	readEvent(t, c1)
	readEvent(t, c2)

	do(t, s, http.MethodPut, "/trees/"+id, `<p>b</p>`)

	for i, c := range []*websocket.Conn{c1, c2} {
		ev := readEvent(t, c)
		if ev.Type != EventReconcile || len(ev.Mutations) != 1 || ev.Mutations[0].Op != "SetText" {
			t.Errorf("watcher %d event = %+v, want one SetText", i, ev)
		}
	}
}

func TestWatchRootTagChange(t *testing.T) {
	s := newTestServer(t, Config{})
	srv := httptest.NewServer(s)
	defer srv.Close()

	id := create(t, s, `<div><p id="a">A</p></div>`).ID
	conn := dialWatch(t, srv, id)
	readEvent(t, conn)

	rec := do(t, s, http.MethodPut, "/trees/"+id, `<section><p id="a">B</p></section>`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT = %d %s", rec.Code, rec.Body.String())
	}

	ev := readEvent(t, conn)
	if ev.Type != EventReconcile || len(ev.Mutations) != 2 {
		t.Fatalf("event = %+v, want reconcile with 2 mutations", ev)
	}
	replace := ev.Mutations[0]
	if replace.Op != "ReplaceNode" || replace.Path == nil || len(replace.Path) != 0 {
		t.Errorf("mutations[0] = %+v, want ReplaceNode at root", replace)
	}
	text := ev.Mutations[1]
	if text.Op != "SetText" || len(text.Path) != 2 || text.Path[0] != 0 || text.Path[1] != 0 {
		t.Errorf("mutations[1] = %+v, want SetText at [0 0]", text)
	}
	if ev.Version != 2 {
		t.Errorf("version = %d, want 2", ev.Version)
	}
}
