package morph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/morph/pkg/dom"
)

// AttrChange describes an attribute that an update touched, or a registered
// attribute that is being re-synchronized without having changed.
type AttrChange struct {
	Name   string
	Old    string
	New    string
	HadOld bool
	HasNew bool
}

// PropertyHandler brings el.Props in line with an attribute. It reports
// whether Props changed.
type PropertyHandler func(el *dom.Node, c AttrChange) bool

// ElementHandler runs after a matched element's subtree has been
// reconciled. It reports whether live.Props changed.
type ElementHandler func(live, target *dom.Node) bool

// Phase tells when a policy entry runs.
type Phase string

const (
	PhaseAttribute Phase = "attribute"
	PhaseChildren  Phase = "children"
)

// Entry is one registered handler, as listed by Policy.Entries.
type Entry struct {
	Tag   string `json:"tag"`
	Name  string `json:"name"` // Attribute for PhaseAttribute, property for PhaseChildren
	Phase Phase  `json:"phase"`
}

type propKey struct {
	tag  string
	attr string
}

type elementEntry struct {
	prop string
	fn   ElementHandler
}

// Policy is a table of control-state handlers for HTML elements.
// A Policy must not be modified while a Reconcile call is using it.
type Policy struct {
	props    map[propKey]PropertyHandler
	elements map[string]elementEntry
	byTag    map[string][]string
}

// NewPolicy returns an empty policy.
func NewPolicy() *Policy {
	return &Policy{
		props:    make(map[propKey]PropertyHandler),
		elements: make(map[string]elementEntry),
		byTag:    make(map[string][]string),
	}
}

// DefaultPolicy returns a new policy with the standard form-control handlers.
func DefaultPolicy() *Policy {
	p := NewPolicy()
	p.Handle("input", "value", syncInputValue)
	p.Handle("input", "checked", syncFlag(func(pr *dom.Props) *bool { return &pr.Checked }))
	p.Handle("input", "disabled", syncFlag(func(pr *dom.Props) *bool { return &pr.Disabled }))
	p.Handle("option", "selected", syncOptionSelected)
	p.HandleElement("textarea", "value", syncTextareaValue)
	p.HandleElement("select", "selectedIndex", syncSelect)
	return p
}

var defaultPolicy = DefaultPolicy()

// Clone returns an independent copy of p.
func (p *Policy) Clone() *Policy {
	c := NewPolicy()
	for k, h := range p.props {
		c.props[k] = h
	}
	for k, e := range p.elements {
		c.elements[k] = e
	}
	for k, attrs := range p.byTag {
		c.byTag[k] = append([]string(nil), attrs...)
	}
	return c
}

// Handle registers h for attr on tag, replacing any existing handler.
func (p *Policy) Handle(tag, attr string, h PropertyHandler) *Policy {
	k := propKey{strings.ToLower(tag), strings.ToLower(attr)}
	if _, exists := p.props[k]; !exists {
		p.byTag[k.tag] = append(p.byTag[k.tag], k.attr)
	}
	p.props[k] = h
	return p
}

// HandleElement registers h to run after the children of tag elements are
// reconciled. prop names the property h maintains.
func (p *Policy) HandleElement(tag, prop string, h ElementHandler) *Policy {
	p.elements[strings.ToLower(tag)] = elementEntry{prop: prop, fn: h}
	return p
}

// Lookup returns the handler registered for attr on tag.
func (p *Policy) Lookup(tag, attr string) (PropertyHandler, bool) {
	h, ok := p.props[propKey{strings.ToLower(tag), strings.ToLower(attr)}]
	return h, ok
}

// Entries lists every registered handler sorted by tag, phase and name.
func (p *Policy) Entries() []Entry {
	var out []Entry
	for k := range p.props {
		out = append(out, Entry{Tag: k.tag, Name: k.attr, Phase: PhaseAttribute})
	}
	for tag, e := range p.elements {
		out = append(out, Entry{Tag: tag, Name: e.prop, Phase: PhaseChildren})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tag != out[j].Tag {
			return out[i].Tag < out[j].Tag
		}
		if out[i].Phase != out[j].Phase {
			return out[i].Phase < out[j].Phase
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (p *Policy) attrsFor(tag string) []string {
	return p.byTag[tag]
}

func (p *Policy) element(tag string) (elementEntry, bool) {
	e, ok := p.elements[tag]
	return e, ok
}

func syncInputValue(el *dom.Node, c AttrChange) bool {
	want := ""
	if c.HasNew {
		want = c.New
	}
	if el.Props.Value == want {
		return false
	}
	el.Props.Value = want
	return true
}

func syncFlag(field func(*dom.Props) *bool) PropertyHandler {
	return func(el *dom.Node, c AttrChange) bool {
		f := field(&el.Props)
		if *f == c.HasNew {
			return false
		}
		*f = c.HasNew
		return true
	}
}

var syncSelected = syncFlag(func(pr *dom.Props) *bool { return &pr.Selected })

// syncOptionSelected mirrors the selected attribute, except for options of
// a single select: their state is settled by the select's own handler once
// all of its options are known.
func syncOptionSelected(el *dom.Node, c AttrChange) bool {
	if sel := ownerSelect(el); sel != nil && !sel.HasAttr("multiple") {
		return false
	}
	return syncSelected(el, c)
}

func ownerSelect(option *dom.Node) *dom.Node {
	p := option.Parent
	if p != nil && p.IsElement("optgroup") {
		p = p.Parent
	}
	if p != nil && p.IsElement("select") {
		return p
	}
	return nil
}

func syncTextareaValue(live, _ *dom.Node) bool {
	want := live.TextContent()
	if live.Props.Value == want {
		return false
	}
	live.Props.Value = want
	return true
}

func syncSelect(live, _ *dom.Node) bool {
	return dom.UpdateSelection(live)
}

// propValue renders the current value of a property for the journal.
func propValue(el *dom.Node, name string) string {
	switch name {
	case "value":
		return el.Props.Value
	case "checked":
		return strconv.FormatBool(el.Props.Checked)
	case "selected":
		return strconv.FormatBool(el.Props.Selected)
	case "disabled":
		return strconv.FormatBool(el.Props.Disabled)
	case "selectedIndex":
		return strconv.Itoa(el.Props.SelectedIndex)
	default:
		return ""
	}
}
