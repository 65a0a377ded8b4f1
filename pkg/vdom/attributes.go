package vdom

import (
	"fmt"
	"strings"
)

// Attribute creates an arbitrary attribute. Qualified names with an xlink:
// or xml: prefix are placed in the matching namespace on materialization.
func Attribute(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// On attaches an event handler. Handlers are kept on the VNode for callers
// that inspect it and are left out of materialized trees.
func On(event string, handler any) Attr {
	if !strings.HasPrefix(event, "on") {
		event = "on" + event
	}
	return Attr{Key: strings.ToLower(event), Value: handler}
}

// Global attributes

func ID(id string) Attr               { return Attribute("id", id) }
func Class(classes ...string) Attr    { return Attribute("class", strings.Join(classes, " ")) }
func StyleAttr(style string) Attr     { return Attribute("style", style) }
func TitleAttr(title string) Attr     { return Attribute("title", title) }
func Lang(lang string) Attr           { return Attribute("lang", lang) }
func Dir(dir string) Attr             { return Attribute("dir", dir) }
func Role(role string) Attr           { return Attribute("role", role) }
func TabIndex(index int) Attr         { return Attribute("tabindex", index) }
func Hidden() Attr                    { return Attribute("hidden", true) }
func ContentEditable(on bool) Attr    { return Attribute("contenteditable", on) }
func Spellcheck(on bool) Attr         { return Attribute("spellcheck", on) }
func Draggable(on bool) Attr          { return Attribute("draggable", on) }
func AriaLabel(label string) Attr     { return Attribute("aria-label", label) }
func AriaHidden(hidden bool) Attr     { return Attribute("aria-hidden", hidden) }
func AriaExpanded(expanded bool) Attr { return Attribute("aria-expanded", expanded) }
func AriaSelected(selected bool) Attr { return Attribute("aria-selected", selected) }
func AriaControls(id string) Attr     { return Attribute("aria-controls", id) }
func AriaDescribedBy(id string) Attr  { return Attribute("aria-describedby", id) }

// Data creates a data-* attribute.
func Data(key, value string) Attr { return Attribute("data-"+key, value) }

// Links and media

func Href(url string) Attr      { return Attribute("href", url) }
func Target(target string) Attr { return Attribute("target", target) }
func Rel(rel string) Attr       { return Attribute("rel", rel) }
func Src(url string) Attr       { return Attribute("src", url) }
func Alt(text string) Attr      { return Attribute("alt", text) }
func Width(w int) Attr          { return Attribute("width", w) }
func Height(h int) Attr         { return Attribute("height", h) }
func Loading(mode string) Attr  { return Attribute("loading", mode) }
func Controls() Attr            { return Attribute("controls", true) }
func Autoplay() Attr            { return Attribute("autoplay", true) }
func Loop() Attr                { return Attribute("loop", true) }
func MutedAttr() Attr           { return Attribute("muted", true) }
func Open() Attr                { return Attribute("open", true) }

// Forms

func Name(name string) Attr          { return Attribute("name", name) }
func Value(value string) Attr        { return Attribute("value", value) }
func Type(t string) Attr             { return Attribute("type", t) }
func Placeholder(text string) Attr   { return Attribute("placeholder", text) }
func Disabled() Attr                 { return Attribute("disabled", true) }
func Readonly() Attr                 { return Attribute("readonly", true) }
func Required() Attr                 { return Attribute("required", true) }
func Checked() Attr                  { return Attribute("checked", true) }
func Selected() Attr                 { return Attribute("selected", true) }
func Multiple() Attr                 { return Attribute("multiple", true) }
func Autofocus() Attr                { return Attribute("autofocus", true) }
func Autocomplete(value string) Attr { return Attribute("autocomplete", value) }
func Pattern(pattern string) Attr    { return Attribute("pattern", pattern) }
func MinLength(n int) Attr           { return Attribute("minlength", n) }
func MaxLength(n int) Attr           { return Attribute("maxlength", n) }
func Min(value string) Attr          { return Attribute("min", value) }
func Max(value string) Attr          { return Attribute("max", value) }
func Step(value string) Attr         { return Attribute("step", value) }
func Rows(n int) Attr                { return Attribute("rows", n) }
func Cols(n int) Attr                { return Attribute("cols", n) }
func Action(url string) Attr         { return Attribute("action", url) }
func Method(method string) Attr      { return Attribute("method", method) }
func For(id string) Attr             { return Attribute("for", id) }
func FormAttr(id string) Attr        { return Attribute("form", id) }

// Tables

func Colspan(n int) Attr      { return Attribute("colspan", n) }
func Rowspan(n int) Attr      { return Attribute("rowspan", n) }
func Scope(scope string) Attr { return Attribute("scope", scope) }

// SVG

func ViewBox(box string) Attr   { return Attribute("viewBox", box) }
func Fill(color string) Attr    { return Attribute("fill", color) }
func Stroke(color string) Attr  { return Attribute("stroke", color) }
func D(path string) Attr        { return Attribute("d", path) }
func XLinkHref(ref string) Attr { return Attribute("xlink:href", ref) }

// ClassIf returns a class attribute when condition holds and an empty
// attribute otherwise.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return Class(class)
	}
	return Attr{}
}

// AttrIf returns a when condition holds.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// Classes joins class names. Arguments may be strings, []string, or
// map[string]bool; map keys are included in sorted order when true.
func Classes(classes ...any) Attr {
	var parts []string
	for _, c := range classes {
		switch v := c.(type) {
		case string:
			if v != "" {
				parts = append(parts, v)
			}
		case []string:
			for _, s := range v {
				if s != "" {
					parts = append(parts, s)
				}
			}
		case map[string]bool:
			for _, k := range sortedKeys(v) {
				if v[k] {
					parts = append(parts, k)
				}
			}
		case fmt.Stringer:
			parts = append(parts, v.String())
		}
	}
	return Attribute("class", strings.Join(parts, " "))
}
