package morph

import (
	"strings"

	"github.com/vango-dev/morph/pkg/dom"
)

// syncAttributes makes live's attribute set equal to target's. Additions and
// updates are applied before removals. Registered property handlers run for
// every attribute touched and then for every registered attribute that was
// not, so live state drifted by user input is restored. It reports whether
// anything changed.
func (r *reconciler) syncAttributes(live, target *dom.Node) bool {
	changed := false
	policy := r.policyFor(live)
	var registered []string
	if policy != nil {
		registered = policy.attrsFor(live.Tag)
	}
	var touched map[string]bool
	touch := func(name string) {
		if touched == nil {
			touched = make(map[string]bool, len(registered))
		}
		touched[strings.ToLower(name)] = true
	}

	for _, ta := range target.Attrs() {
		la, had := live.LookupAttr(ta)
		if had && la.Value == ta.Value && la.Name == ta.Name {
			continue
		}
		live.SetAttrNS(ta.Namespace, ta.Name, ta.Value)
		r.emit(Mutation{Op: OpSetAttr, Node: live, Name: ta.Name, Value: ta.Value})
		changed = true

		if len(registered) > 0 && ta.Namespace == "" {
			touch(ta.Name)
			if r.applyProperty(policy, live, AttrChange{
				Name:   ta.Name,
				Old:    la.Value,
				New:    ta.Value,
				HadOld: had,
				HasNew: true,
			}) {
				changed = true
			}
		}
	}

	for _, la := range live.Attrs() {
		if _, ok := target.LookupAttr(la); ok {
			continue
		}
		live.RemoveAttrNS(la.Namespace, la.LocalName())
		r.emit(Mutation{Op: OpRemoveAttr, Node: live, Name: la.Name})
		changed = true

		if len(registered) > 0 && la.Namespace == "" {
			touch(la.Name)
			if r.applyProperty(policy, live, AttrChange{
				Name:   la.Name,
				Old:    la.Value,
				HadOld: true,
			}) {
				changed = true
			}
		}
	}

	for _, name := range registered {
		if touched[name] {
			continue
		}
		v, ok := live.Attr(name)
		if r.applyProperty(policy, live, AttrChange{
			Name:   name,
			Old:    v,
			New:    v,
			HadOld: ok,
			HasNew: ok,
		}) {
			changed = true
		}
	}

	return changed
}

func (r *reconciler) policyFor(el *dom.Node) *Policy {
	if r.opts.IgnoreControlValues || el.Kind != dom.KindElement || el.Namespace != "" {
		return nil
	}
	return r.policy
}

func (r *reconciler) applyProperty(p *Policy, el *dom.Node, c AttrChange) bool {
	h, ok := p.Lookup(el.Tag, c.Name)
	if !ok || !h(el, c) {
		return false
	}
	name := strings.ToLower(c.Name)
	r.emit(Mutation{Op: OpSetProperty, Node: el, Name: name, Value: propValue(el, name)})
	return true
}

// syncElementState runs the post-children handler for live's tag.
func (r *reconciler) syncElementState(live, target *dom.Node) bool {
	p := r.policyFor(live)
	if p == nil {
		return false
	}
	e, ok := p.element(live.Tag)
	if !ok || !e.fn(live, target) {
		return false
	}
	r.emit(Mutation{Op: OpSetProperty, Node: live, Name: e.prop, Value: propValue(live, e.prop)})
	return true
}
