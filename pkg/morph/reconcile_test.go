package morph

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/vango-dev/morph/internal/errors"
	"github.com/vango-dev/morph/pkg/dom"
	"github.com/vango-dev/morph/pkg/render"
)

func parse(t *testing.T, s string) *dom.Node {
	t.Helper()
	n, err := dom.ParseElement(s)
	if err != nil {
		t.Fatalf("ParseElement(%q) error = %v", s, err)
	}
	return n
}

func reconcile(t *testing.T, live, target *dom.Node, opts Options) *dom.Node {
	t.Helper()
	out, err := Reconcile(live, target, opts)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	return out
}

// recorder counts hook calls.
type recorder struct {
	added     []*dom.Node
	discarded []*dom.Node
	updated   []*dom.Node
	mutations []Mutation
}

func (rec *recorder) options() Options {
	return Options{
		OnNodeAdded: func(n *dom.Node) error {
			rec.added = append(rec.added, n)
			return nil
		},
		OnNodeDiscarded: func(n *dom.Node) error {
			rec.discarded = append(rec.discarded, n)
			return nil
		},
		OnElementUpdated: func(n *dom.Node) error {
			rec.updated = append(rec.updated, n)
			return nil
		},
		OnMutation: func(m Mutation) {
			rec.mutations = append(rec.mutations, m)
		},
	}
}

func (rec *recorder) ops() []Op {
	out := make([]Op, len(rec.mutations))
	for i, m := range rec.mutations {
		out[i] = m.Op
	}
	return out
}

func TestReconcileMatchesTarget(t *testing.T) {
	tests := []struct {
		name   string
		live   string
		target string
	}{
		{"text change", `<p>a</p>`, `<p>b</p>`},
		{"attribute added", `<div></div>`, `<div class="x" title="t"></div>`},
		{"attribute removed", `<div class="x" title="t"></div>`, `<div title="t"></div>`},
		{"attribute updated", `<a href="/a">x</a>`, `<a href="/b">x</a>`},
		{"children appended", `<ul><li>1</li></ul>`, `<ul><li>1</li><li>2</li><li>3</li></ul>`},
		{"children removed", `<ul><li>1</li><li>2</li><li>3</li></ul>`, `<ul><li>1</li></ul>`},
		{"all children removed", `<ul><li>1</li><li>2</li></ul>`, `<ul></ul>`},
		{"element replaced by text", `<div><span>x</span></div>`, `<div>plain</div>`},
		{"tag change in child", `<div><span>x</span></div>`, `<div><em>x</em></div>`},
		{"keyed reorder", `<ul><li id="a">A</li><li id="b">B</li><li id="c">C</li></ul>`, `<ul><li id="c">C</li><li id="a">A</li><li id="b">B</li></ul>`},
		{"keyed insert middle", `<ul><li id="a">A</li><li id="c">C</li></ul>`, `<ul><li id="a">A</li><li id="b">B</li><li id="c">C</li></ul>`},
		{"keyed remove middle", `<ul><li id="a">A</li><li id="b">B</li><li id="c">C</li></ul>`, `<ul><li id="a">A</li><li id="c">C</li></ul>`},
		{"keyed and unkeyed mixed", `<div><p>x</p><p id="k">k</p><p>y</p></div>`, `<div><p id="k">k2</p><p>x</p></div>`},
		{"nested", `<div><section><h1>T</h1><p>a</p></section></div>`, `<div><section><h1>T2</h1><p>a</p><p>b</p></section><footer>f</footer></div>`},
		{"root tag mismatch", `<div class="a"><span id="s">x</span></div>`, `<section class="b"><span id="s">y</span></section>`},
		{"namespaced attributes", `<svg><use xlink:href="#a"></use></svg>`, `<svg><use xlink:href="#b"></use></svg>`},
		{"duplicate keys", `<div><p id="x">1</p><p id="x">2</p></div>`, `<div><p id="x">1</p></div>`},
		{"duplicate target keys", `<div><p id="x">1</p></div>`, `<div><p id="x">1</p><p id="x">2</p></div>`},
		{"forward reference", `<div><span></span><section><p id="k">live</p></section></div>`, `<div><span><p id="k">new</p></span><section></section></div>`},
		{"keyed moves between parents", `<div><ul><li id="a">A</li></ul><ol></ol></div>`, `<div><ul></ul><ol><li id="a">A</li></ol></div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := render.HTML(parse(t, tt.target))
			got := reconcile(t, parse(t, tt.live), parse(t, tt.target), Options{})
			if html := render.HTML(got); html != want {
				t.Errorf("result = %s\nwant     %s", html, want)
			}
		})
	}
}

func TestIdempotence(t *testing.T) {
	inputs := []string{
		`<div class="card"><h1>Title</h1><p>Body <b>bold</b></p></div>`,
		`<ul><li id="a">A</li><li id="b">B</li><li>plain</li></ul>`,
		`<form><input type="checkbox" checked><input value="v"><textarea>t</textarea><select><option>a</option><option selected>b</option></select></form>`,
		`<svg viewBox="0 0 1 1"><use xlink:href="#i"></use></svg>`,
		`<form><select><option>a</option><option>b</option></select></form>`,
		`<select><optgroup label="g"><option>a</option></optgroup><option>b</option></select>`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			live := parse(t, in)
			before := render.HTML(live)
			target := live.Clone()

			rec := &recorder{}
			got := reconcile(t, live, target, rec.options())

			if got != live {
				t.Error("root identity changed")
			}
			if len(rec.added) != 0 || len(rec.discarded) != 0 || len(rec.updated) != 0 {
				t.Errorf("hooks fired: added=%d discarded=%d updated=%d", len(rec.added), len(rec.discarded), len(rec.updated))
			}
			if len(rec.mutations) != 0 {
				t.Errorf("mutations = %v, want none", rec.ops())
			}
			if after := render.HTML(live); after != before {
				t.Errorf("tree changed:\n%s\n%s", before, after)
			}
		})
	}
}

func TestKeyStabilityUnderReordering(t *testing.T) {
	live := parse(t, `<ul><li id="1">A</li><li id="2">B</li></ul>`)
	a, b := live.FirstChild, live.LastChild

	rec := &recorder{}
	reconcile(t, live, parse(t, `<ul><li id="2">B</li><li id="1">A</li></ul>`), rec.options())

	if live.FirstChild != b || live.LastChild != a {
		t.Errorf("children = %v, want same objects [B, A]", live.Children())
	}
	if len(rec.discarded) != 0 {
		t.Errorf("discarded = %v, want none", rec.discarded)
	}
	if len(rec.added) != 0 {
		t.Errorf("added = %v, want none", rec.added)
	}
}

func TestDuplicateKeyTolerance(t *testing.T) {
	live := parse(t, `<div><p id="x">1</p><p id="x">2</p></div>`)
	first := live.FirstChild

	rec := &recorder{}
	reconcile(t, live, parse(t, `<div><p id="x">1</p></div>`), rec.options())

	if live.ChildCount() != 1 {
		t.Fatalf("ChildCount() = %d, want 1", live.ChildCount())
	}
	if live.FirstChild != first {
		t.Error("kept element is not the first duplicate")
	}
	// The second <p> and its text.
	if len(rec.discarded) != 2 {
		t.Errorf("discarded = %v, want 2 nodes", rec.discarded)
	}
}

func TestRootTagMismatch(t *testing.T) {
	live := parse(t, `<div><span id="s">x</span></div>`)
	span := live.FirstChild
	wrapper := dom.NewElement("main")
	wrapper.AppendChild(live)

	rec := &recorder{}
	got := reconcile(t, live, parse(t, `<section><span id="s">x</span></section>`), rec.options())

	if got == live {
		t.Fatal("root was not replaced")
	}
	if got.Tag != "section" {
		t.Errorf("Tag = %q, want section", got.Tag)
	}
	if got.FirstChild != span {
		t.Error("child span was not moved into the new root")
	}
	if wrapper.FirstChild != got || live.Parent != nil {
		t.Error("new root did not take the old root's place in its parent")
	}
	if !reflect.DeepEqual(rec.discarded, []*dom.Node{live}) {
		t.Errorf("discarded = %v, want old root only", rec.discarded)
	}
	if !reflect.DeepEqual(rec.added, []*dom.Node{got}) {
		t.Errorf("added = %v, want new root only", rec.added)
	}
}

func TestRootKindMismatch(t *testing.T) {
	live := parse(t, `<div><p id="k">x</p></div>`)
	target := parse(t, `hello`)

	rec := &recorder{}
	got := reconcile(t, live, target, rec.options())

	if got != target {
		t.Fatalf("result = %v, want target", got)
	}
	// div, its keyed child once the pool is flushed, and the text inside it.
	if len(rec.discarded) != 3 {
		t.Errorf("discarded = %v, want 3 nodes", rec.discarded)
	}
	if !reflect.DeepEqual(rec.added, []*dom.Node{target}) {
		t.Errorf("added = %v, want target", rec.added)
	}
}

func TestRootText(t *testing.T) {
	live := dom.NewText("a")
	got := reconcile(t, live, dom.NewText("b"), Options{})
	if got != live || live.Text != "b" {
		t.Errorf("text root = %v, want updated in place", got)
	}
}

func TestControlStateSync(t *testing.T) {
	t.Run("checkbox unchecked", func(t *testing.T) {
		live := parse(t, `<input type="checkbox" checked>`)
		if !live.Props.Checked {
			t.Fatal("precondition: checkbox should start checked")
		}
		reconcile(t, live, parse(t, `<input type="checkbox">`), Options{})
		if live.Props.Checked {
			t.Error("Checked = true, want false")
		}
		if live.HasAttr("checked") {
			t.Error("checked attribute still present")
		}
	})

	t.Run("typed value restored", func(t *testing.T) {
		live := parse(t, `<input value="a">`)
		live.Props.Value = "typed"

		rec := &recorder{}
		reconcile(t, live, parse(t, `<input value="a">`), rec.options())

		if live.Props.Value != "a" {
			t.Errorf("Value = %q, want a", live.Props.Value)
		}
		if len(rec.mutations) != 1 || rec.mutations[0].Op != OpSetProperty || rec.mutations[0].Value != "a" {
			t.Errorf("mutations = %+v, want one SetProperty", rec.mutations)
		}
		if len(rec.updated) != 1 {
			t.Errorf("OnElementUpdated calls = %d, want 1", len(rec.updated))
		}
	})

	t.Run("value removed", func(t *testing.T) {
		live := parse(t, `<input value="a">`)
		reconcile(t, live, parse(t, `<input>`), Options{})
		if live.Props.Value != "" {
			t.Errorf("Value = %q, want empty", live.Props.Value)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		live := parse(t, `<input>`)
		reconcile(t, live, parse(t, `<input disabled>`), Options{})
		if !live.Props.Disabled {
			t.Error("Disabled = false, want true")
		}
	})

	t.Run("textarea", func(t *testing.T) {
		live := parse(t, `<textarea>old</textarea>`)
		live.Props.Value = "typed"
		reconcile(t, live, parse(t, `<textarea>new</textarea>`), Options{})
		if live.Props.Value != "new" {
			t.Errorf("Value = %q, want new", live.Props.Value)
		}
	})

	t.Run("ignore control values", func(t *testing.T) {
		live := parse(t, `<input type="checkbox" checked>`)
		reconcile(t, live, parse(t, `<input type="checkbox">`), Options{IgnoreControlValues: true})
		if !live.Props.Checked {
			t.Error("Checked changed although control values are ignored")
		}
		if live.HasAttr("checked") {
			t.Error("attributes must still be synced")
		}
	})
}

func TestSelectSync(t *testing.T) {
	tests := []struct {
		name     string
		live     string
		target   string
		wantIdx  int
		selected []bool
	}{
		{
			name:     "selection moves",
			live:     `<select><option>a</option><option>b</option></select>`,
			target:   `<select><option>a</option><option selected>b</option></select>`,
			wantIdx:  1,
			selected: []bool{false, true},
		},
		{
			name:     "selection cleared falls back to first",
			live:     `<select><option>a</option><option selected>b</option></select>`,
			target:   `<select><option>a</option><option>b</option></select>`,
			wantIdx:  0,
			selected: []bool{true, false},
		},
		{
			name:     "through optgroups",
			live:     `<select><optgroup label="g"><option>a</option><option>b</option></optgroup><option>c</option></select>`,
			target:   `<select><optgroup label="g"><option>a</option><option>b</option></optgroup><option selected>c</option></select>`,
			wantIdx:  2,
			selected: []bool{false, false, true},
		},
		{
			name:     "multiple",
			live:     `<select multiple><option selected>a</option><option>b</option></select>`,
			target:   `<select multiple><option>a</option><option selected>b</option></select>`,
			wantIdx:  1,
			selected: []bool{false, true},
		},
		{
			name:     "options removed",
			live:     `<select><option>a</option></select>`,
			target:   `<select></select>`,
			wantIdx:  -1,
			selected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := parse(t, tt.live)
			reconcile(t, live, parse(t, tt.target), Options{})

			if live.Props.SelectedIndex != tt.wantIdx {
				t.Errorf("SelectedIndex = %d, want %d", live.Props.SelectedIndex, tt.wantIdx)
			}
			for i, o := range live.Options() {
				if o.Props.Selected != tt.selected[i] {
					t.Errorf("option %d Selected = %v, want %v", i, o.Props.Selected, tt.selected[i])
				}
			}
		})
	}
}

func TestSelectUserChangeRestored(t *testing.T) {
	live := parse(t, `<select><option>a</option><option>b</option></select>`)
	live.Props.SelectedIndex = 1
	live.Options()[1].Props.Selected = true
	live.Options()[0].Props.Selected = false

	reconcile(t, live, live.Clone(), Options{})

	if live.Props.SelectedIndex != 0 {
		t.Errorf("SelectedIndex = %d, want 0", live.Props.SelectedIndex)
	}
}

func TestSelectUserChangeJournal(t *testing.T) {
	live := parse(t, `<select><option>a</option><option>b</option></select>`)
	live.Props.SelectedIndex = 1
	live.Options()[0].Props.Selected = false
	live.Options()[1].Props.Selected = true

	rec := &recorder{}
	reconcile(t, live, live.Clone(), rec.options())

	if len(rec.mutations) != 1 {
		t.Fatalf("mutations = %v, want one SetProperty", rec.ops())
	}
	m := rec.mutations[0]
	if m.Op != OpSetProperty || m.Node != live || m.Name != "selectedIndex" || m.Value != "0" {
		t.Errorf("mutation = %+v, want selectedIndex=0 on the select", m)
	}
	if sel := live.Options(); !sel[0].Props.Selected || sel[1].Props.Selected {
		t.Errorf("option selected = [%v %v], want [true false]", sel[0].Props.Selected, sel[1].Props.Selected)
	}
}

func TestChildrenUpdateVeto(t *testing.T) {
	live := parse(t, `<div class="a"><p id="k">x</p></div>`)
	p := live.FirstChild

	rec := &recorder{}
	opts := rec.options()
	opts.OnBeforeElementChildrenUpdated = func(live, target *dom.Node) error {
		return SkipNode
	}
	reconcile(t, live, parse(t, `<div class="b"><span>y</span></div>`), opts)

	if live.AttrValue("class") != "b" {
		t.Errorf("class = %q, want b", live.AttrValue("class"))
	}
	if live.FirstChild != p || live.ChildCount() != 1 {
		t.Errorf("children = %v, want untouched", live.Children())
	}
	if len(rec.discarded) != 0 {
		t.Errorf("discarded = %v, want none", rec.discarded)
	}
}

func TestElementUpdateVeto(t *testing.T) {
	live := parse(t, `<div><p class="a">x</p><i>1</i></div>`)
	p := live.FirstChild

	opts := Options{
		OnBeforeElementUpdated: func(live, target *dom.Node) error {
			if live.Tag == "p" {
				return SkipNode
			}
			return nil
		},
	}
	reconcile(t, live, parse(t, `<div><p class="b">y</p><i>2</i></div>`), opts)

	if p.AttrValue("class") != "a" || p.TextContent() != "x" {
		t.Errorf("vetoed subtree changed: %s", render.HTML(p))
	}
	if got := live.LastChild.TextContent(); got != "2" {
		t.Errorf("sibling text = %q, want 2", got)
	}
}

func TestBeforeNodeAdded(t *testing.T) {
	t.Run("skip", func(t *testing.T) {
		live := parse(t, `<ul></ul>`)
		opts := Options{
			OnBeforeNodeAdded: func(n *dom.Node) (*dom.Node, error) {
				if n.ID() == "no" {
					return nil, SkipNode
				}
				return nil, nil
			},
		}
		reconcile(t, live, parse(t, `<ul><li id="yes"></li><li id="no"></li></ul>`), opts)
		if got := render.HTML(live); got != `<ul><li id="yes"></li></ul>` {
			t.Errorf("result = %s", got)
		}
	})

	t.Run("substitute", func(t *testing.T) {
		live := parse(t, `<ul></ul>`)
		repl := dom.NewElement("li")
		repl.SetAttr("class", "custom")
		opts := Options{
			OnBeforeNodeAdded: func(n *dom.Node) (*dom.Node, error) {
				return repl, nil
			},
		}
		reconcile(t, live, parse(t, `<ul><li>x</li></ul>`), opts)
		if live.FirstChild != repl {
			t.Errorf("child = %v, want replacement", live.FirstChild)
		}
	})
}

func TestBeforeNodeDiscardedVeto(t *testing.T) {
	live := parse(t, `<ul><li class="keep">k</li><li>x</li></ul>`)
	keep := live.FirstChild

	rec := &recorder{}
	opts := rec.options()
	opts.OnBeforeNodeDiscarded = func(n *dom.Node) error {
		if n.AttrValue("class") == "keep" {
			return SkipNode
		}
		return nil
	}
	reconcile(t, live, parse(t, `<ul></ul>`), opts)

	if live.FirstChild != keep || live.ChildCount() != 1 {
		t.Errorf("children = %v, want only the vetoed node", live.Children())
	}
	for _, d := range rec.discarded {
		if d == keep {
			t.Error("vetoed node reported discarded")
		}
	}
}

func TestBeforeNodeDiscardedNotAskedOnReorder(t *testing.T) {
	live := parse(t, `<ul><li id="1">A</li><li id="2">B</li></ul>`)
	a, b := live.FirstChild, live.LastChild

	var asked []*dom.Node
	opts := Options{
		OnBeforeNodeDiscarded: func(n *dom.Node) error {
			asked = append(asked, n)
			return SkipNode
		},
	}
	reconcile(t, live, parse(t, `<ul><li id="2">B</li><li id="1">A</li></ul>`), opts)

	if live.ChildCount() != 2 || live.FirstChild != b || live.LastChild != a {
		t.Errorf("result = %s, want the same two items reversed", render.HTML(live))
	}
	if len(asked) != 0 {
		t.Errorf("OnBeforeNodeDiscarded called for %v, want no calls", asked)
	}
}

func TestBeforeNodeDiscardedVetoKeyed(t *testing.T) {
	live := parse(t, `<ul><li id="1">A</li><li id="2">B</li><li id="3">C</li></ul>`)
	first := live.FirstChild

	rec := &recorder{}
	opts := rec.options()
	var asked []*dom.Node
	opts.OnBeforeNodeDiscarded = func(n *dom.Node) error {
		asked = append(asked, n)
		if n.ID() == "1" {
			return SkipNode
		}
		return nil
	}
	reconcile(t, live, parse(t, `<ul><li id="2">B</li><li id="3">C</li></ul>`), opts)

	if got, want := render.HTML(live), `<ul><li id="1">A</li><li id="2">B</li><li id="3">C</li></ul>`; got != want {
		t.Errorf("result = %s, want %s", got, want)
	}
	if live.FirstChild != first {
		t.Error("vetoed node was not restored in place")
	}
	if !reflect.DeepEqual(asked, []*dom.Node{first}) {
		t.Errorf("asked = %v, want only <li#1>", asked)
	}
	if len(rec.discarded) != 0 {
		t.Errorf("discarded = %v, want none", rec.discarded)
	}
}

func TestObserverSkipStopsDescent(t *testing.T) {
	live := parse(t, `<div></div>`)
	var added []string
	opts := Options{
		OnNodeAdded: func(n *dom.Node) error {
			added = append(added, n.String())
			if n.Tag == "ul" {
				return SkipNode
			}
			return nil
		},
	}
	reconcile(t, live, parse(t, `<div><ul><li>a</li></ul><p></p></div>`), opts)

	want := []string{"<ul>", "<p>"}
	if !reflect.DeepEqual(added, want) {
		t.Errorf("added = %v, want %v", added, want)
	}
}

func TestHookErrorAborts(t *testing.T) {
	errBoom := stderrors.New("boom")
	live := parse(t, `<div></div>`)
	opts := Options{
		OnNodeAdded: func(n *dom.Node) error {
			return errBoom
		},
	}

	_, err := Reconcile(live, parse(t, `<div><p></p></div>`), opts)
	if err == nil {
		t.Fatal("expected error")
	}
	if !stderrors.Is(err, errBoom) {
		t.Errorf("error %v does not unwrap to the hook error", err)
	}
	if !errors.HasCode(err, "M002") {
		t.Errorf("error %v does not carry code M002", err)
	}
	if !strings.Contains(err.Error(), "OnNodeAdded") {
		t.Errorf("error %q does not name the hook", err.Error())
	}
}

func TestHookErrorDuringRootChange(t *testing.T) {
	errBoom := stderrors.New("boom")
	page := dom.NewElement("body")
	live := parse(t, `<div><p id="keep">a</p><span>b</span></div>`)
	page.AppendChild(live)
	p := live.FirstChild

	opts := Options{
		OnBeforeElementUpdated: func(n, _ *dom.Node) error {
			if n.Tag == "p" {
				return errBoom
			}
			return nil
		},
	}
	out, err := Reconcile(live, parse(t, `<section><p id="keep">a2</p><span>b</span></section>`), opts)
	if !errors.HasCode(err, "M002") {
		t.Fatalf("error = %v, want M002", err)
	}
	if out == nil || out.Tag != "section" {
		t.Fatalf("result = %v, want the new <section>", out)
	}
	if page.FirstChild != out || page.ChildCount() != 1 {
		t.Errorf("page children = %v, want only the returned root", page.Children())
	}
	if out.ChildCount() != 2 || out.FirstChild != p {
		t.Errorf("result = %s, want original children kept", render.HTML(out))
	}
}

func TestNilNodes(t *testing.T) {
	n := dom.NewElement("div")
	for _, tt := range []struct {
		name         string
		live, target *dom.Node
	}{
		{"nil live", nil, n},
		{"nil target", n, nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(tt.live, tt.target, Options{})
			if !errors.HasCode(err, "M001") {
				t.Errorf("error = %v, want M001", err)
			}
		})
	}
}

func TestIsSameNode(t *testing.T) {
	t.Run("root", func(t *testing.T) {
		live := parse(t, `<div class="a"></div>`)
		got := reconcile(t, live, parse(t, `<div class="b"></div>`), Options{
			IsSameNode: func(live, target *dom.Node) bool { return true },
		})
		if got != live || live.AttrValue("class") != "a" {
			t.Error("IsSameNode at root should leave live unchanged")
		}
	})

	t.Run("child", func(t *testing.T) {
		live := parse(t, `<div><widget-x data-state="live"></widget-x><p>a</p></div>`)
		widget := live.FirstChild
		opts := Options{
			IsSameNode: func(live, target *dom.Node) bool {
				return live.Tag == "widget-x" && target.Tag == "widget-x"
			},
		}
		reconcile(t, live, parse(t, `<div><widget-x data-state="target"></widget-x><p>b</p></div>`), opts)
		if live.FirstChild != widget || widget.AttrValue("data-state") != "live" {
			t.Errorf("widget = %s, want untouched", render.HTML(widget))
		}
		if got := live.LastChild.TextContent(); got != "b" {
			t.Errorf("sibling text = %q, want b", got)
		}
	})
}

func TestChildrenOnly(t *testing.T) {
	live := parse(t, `<div class="a"><p>1</p></div>`)
	got := reconcile(t, live, parse(t, `<section class="b"><p>2</p><p>3</p></section>`), Options{ChildrenOnly: true})

	if got != live {
		t.Fatal("ChildrenOnly replaced the root")
	}
	if html := render.HTML(live); html != `<div class="a"><p>2</p><p>3</p></div>` {
		t.Errorf("result = %s", html)
	}
}

func TestForwardReferenceKeepsIdentity(t *testing.T) {
	live := parse(t, `<div><span></span><section><p id="k">live</p></section></div>`)
	p := live.LastChild.FirstChild

	rec := &recorder{}
	reconcile(t, live, parse(t, `<div><span><p id="k">new</p></span><section></section></div>`), rec.options())

	span := live.FirstChild
	if span.FirstChild != p {
		t.Fatalf("span child = %v, want the original <p>", span.FirstChild)
	}
	if p.TextContent() != "new" {
		t.Errorf("text = %q, want new", p.TextContent())
	}
	if live.LastChild.ChildCount() != 0 {
		t.Error("section should be empty")
	}
	for _, d := range rec.discarded {
		if d == p {
			t.Error("reused node reported discarded")
		}
	}
}

func TestForwardReferenceReportsNothing(t *testing.T) {
	live := parse(t, `<div><span></span><section><p id="k"><b>y</b></p></section></div>`)
	p := live.LastChild.FirstChild

	rec := &recorder{}
	reconcile(t, live, parse(t, `<div><span><p id="k"><b>y</b></p></span><section></section></div>`), rec.options())

	if live.FirstChild.FirstChild != p {
		t.Fatalf("result = %s, want the original <p> moved into span", render.HTML(live))
	}
	if len(rec.added) != 0 {
		t.Errorf("added = %v, want none", rec.added)
	}
	if len(rec.discarded) != 0 {
		t.Errorf("discarded = %v, want none", rec.discarded)
	}
}

func TestPoolReuseInsideAdoptedSubtree(t *testing.T) {
	live := parse(t, `<div><p id="k">x</p></div>`)
	p := live.FirstChild

	rec := &recorder{}
	reconcile(t, live, parse(t, `<div><section><p id="k">x</p></section></div>`), rec.options())

	section := live.FirstChild
	if section.Tag != "section" || section.FirstChild != p {
		t.Fatalf("result = %s, want original <p> inside new section", render.HTML(live))
	}
	if len(rec.discarded) != 0 {
		t.Errorf("discarded = %v, want none", rec.discarded)
	}
	if !reflect.DeepEqual(rec.added, []*dom.Node{section}) {
		t.Errorf("added = %v, want only the section", rec.added)
	}
}

func TestKeyedDescendantOfDiscardedNode(t *testing.T) {
	live := parse(t, `<div><section><p id="k">x</p></section></div>`)
	section := live.FirstChild
	p := section.FirstChild

	rec := &recorder{}
	reconcile(t, live, parse(t, `<div><article><p id="k">x</p></article></div>`), rec.options())

	if live.FirstChild.Tag != "article" || live.FirstChild.FirstChild != p {
		t.Fatalf("result = %s, want original <p> inside article", render.HTML(live))
	}
	if !reflect.DeepEqual(rec.discarded, []*dom.Node{section}) {
		t.Errorf("discarded = %v, want only the section", rec.discarded)
	}
}

func TestUnusedPoolFlushed(t *testing.T) {
	live := parse(t, `<ul><li id="a">A</li><li id="b">B</li></ul>`)
	b := live.LastChild

	rec := &recorder{}
	reconcile(t, live, parse(t, `<ul><li id="a">A</li></ul>`), rec.options())

	// <li#b> and its text node.
	if len(rec.discarded) != 2 || rec.discarded[0] != b {
		t.Errorf("discarded = %v, want <li#b> and its text", rec.discarded)
	}
}

func TestCustomKey(t *testing.T) {
	live := parse(t, `<ul><li data-key="1">A</li><li data-key="2">B</li></ul>`)
	a, b := live.FirstChild, live.LastChild

	reconcile(t, live, parse(t, `<ul><li data-key="2">B</li><li data-key="1">A</li></ul>`), Options{
		GetNodeKey: KeyAttr("data-key"),
	})
	if live.FirstChild != b || live.LastChild != a {
		t.Error("custom keys did not preserve identity")
	}
}

func TestCustomKeyOverridesID(t *testing.T) {
	live := parse(t, `<ul><li id="x">A</li><li id="y">B</li></ul>`)
	a := live.FirstChild

	// With ids ignored both items are unkeyed and match positionally.
	reconcile(t, live, parse(t, `<ul><li id="y">B</li><li id="x">A</li></ul>`), Options{
		GetNodeKey: func(*dom.Node) string { return "" },
	})
	if live.FirstChild != a || a.ID() != "y" {
		t.Errorf("first child = %v, want original node updated to id y", live.FirstChild)
	}
}

func TestNamespacedAttributeSync(t *testing.T) {
	live := parse(t, `<svg><use xlink:href="#a"></use></svg>`)

	rec := &recorder{}
	reconcile(t, live, parse(t, `<svg><use xlink:href="#b"></use></svg>`), rec.options())

	use := live.FirstChild
	if v, _ := use.AttrNS(dom.NamespaceXLink, "href"); v != "#b" {
		t.Errorf("xlink:href = %q, want #b", v)
	}
	if use.AttrCount() != 1 {
		t.Errorf("AttrCount() = %d, want 1", use.AttrCount())
	}
	if len(rec.mutations) != 1 || rec.mutations[0].Name != "xlink:href" {
		t.Errorf("mutations = %+v", rec.mutations)
	}
}

func TestAttributeOrderOfOperations(t *testing.T) {
	live := parse(t, `<div a="1" b="2"></div>`)

	rec := &recorder{}
	reconcile(t, live, parse(t, `<div b="3" c="4"></div>`), rec.options())

	var got []string
	for _, m := range rec.mutations {
		got = append(got, m.Op.String()+":"+m.Name)
	}
	want := []string{"SetAttr:b", "SetAttr:c", "RemoveAttr:a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mutations = %v, want %v", got, want)
	}
}

func TestMutationJournal(t *testing.T) {
	live := parse(t, `<div><p>a</p></div>`)

	rec := &recorder{}
	reconcile(t, live, parse(t, `<div class="x"><p>b</p><span></span></div>`), rec.options())

	want := []Op{OpSetAttr, OpInsertNode, OpSetText}
	if got := rec.ops(); !reflect.DeepEqual(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
	if m := rec.mutations[1]; m.Parent != live || m.Node.Tag != "span" {
		t.Errorf("InsertNode = %+v", m)
	}
}

func TestDocumentOrder(t *testing.T) {
	live := parse(t, `<div><p><i></i></p><ul><li></li></ul></div>`)

	var order []string
	opts := Options{
		OnBeforeElementUpdated: func(live, target *dom.Node) error {
			order = append(order, live.Tag)
			return nil
		},
	}
	reconcile(t, live, live.Clone(), opts)

	want := []string{"div", "p", "i", "ul", "li"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestLoggerSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	live := parse(t, `<ul></ul>`)
	reconcile(t, live, parse(t, `<ul><li>a</li></ul>`), Options{Logger: logger})

	out := buf.String()
	if !strings.Contains(out, "reconcile complete") || !strings.Contains(out, "added=2") {
		t.Errorf("log output = %q", out)
	}
}
