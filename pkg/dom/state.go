package dom

// Options returns the option elements of a select in document order,
// including those nested in optgroups.
func (n *Node) Options() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.IsElement("option"):
			out = append(out, c)
		case c.IsElement("optgroup"):
			for o := c.FirstChild; o != nil; o = o.NextSibling {
				if o.IsElement("option") {
					out = append(out, o)
				}
			}
		}
	}
	return out
}

// UpdateSelection recomputes the selection state of a select element from
// the selected attributes of its options and reports whether any Props
// changed.
//
// A single select picks the last option marked selected and falls back to
// the first option. A multiple select mirrors every option's attribute.
func UpdateSelection(sel *Node) bool {
	opts := sel.Options()
	changed := false
	idx := -1

	if sel.HasAttr("multiple") {
		for i, o := range opts {
			want := o.HasAttr("selected")
			if want && idx < 0 {
				idx = i
			}
			if o.Props.Selected != want {
				o.Props.Selected = want
				changed = true
			}
		}
	} else {
		for i, o := range opts {
			if o.HasAttr("selected") {
				idx = i
			}
		}
		if idx < 0 && len(opts) > 0 {
			idx = 0
		}
		for i, o := range opts {
			want := i == idx
			if o.Props.Selected != want {
				o.Props.Selected = want
				changed = true
			}
		}
	}

	if sel.Props.SelectedIndex != idx {
		sel.Props.SelectedIndex = idx
		changed = true
	}
	return changed
}

// ResetState initializes the live state of every element under root from
// its attributes, as if the markup had just been parsed.
func ResetState(root *Node) {
	var selects []*Node
	root.Walk(func(n *Node) bool {
		if n.Kind != KindElement || n.Namespace != "" {
			return true
		}
		switch n.Tag {
		case "input":
			n.Props.Value = n.AttrValue("value")
			n.Props.Checked = n.HasAttr("checked")
			n.Props.Disabled = n.HasAttr("disabled")
		case "textarea":
			n.Props.Value = n.TextContent()
			n.Props.Disabled = n.HasAttr("disabled")
		case "option":
			n.Props.Selected = n.HasAttr("selected")
			n.Props.Disabled = n.HasAttr("disabled")
		case "select":
			n.Props.Disabled = n.HasAttr("disabled")
			selects = append(selects, n)
		case "button", "fieldset", "optgroup":
			n.Props.Disabled = n.HasAttr("disabled")
		}
		return true
	})
	for _, sel := range selects {
		UpdateSelection(sel)
	}
}
