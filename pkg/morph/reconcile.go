package morph

import (
	stderrors "errors"
	"strings"

	"github.com/vango-dev/morph/internal/errors"
	"github.com/vango-dev/morph/pkg/dom"
)

type taskKind uint8

const (
	taskMorph    taskKind = iota // attributes, hooks and children
	taskChildren                 // children only
	taskFinish                   // post-children work for an element
)

type task struct {
	kind   taskKind
	live   *dom.Node
	target *dom.Node

	// discardTarget marks a pair whose target is a placeholder that was
	// already adopted into the live tree and has now been swapped out.
	discardTarget bool
}

type stats struct {
	added     int
	discarded int
	updated   int
	mutations int
}

// reconciler holds the scratch state of one Reconcile call.
type reconciler struct {
	opts   Options
	policy *Policy
	root   *dom.Node
	stack  []task
	stats  stats

	pool      map[string]*dom.Node // removed keyed live nodes awaiting reuse
	poolKey   map[*dom.Node]string
	poolOrder []*dom.Node
	unmatched map[string]*dom.Node // adopted target nodes by key
	placed    map[*dom.Node]bool   // nodes this call already put into the live tree
	origin    map[*dom.Node]position

	// Adopted keyed nodes may still be swapped for a live node later in the
	// walk. They and their descendants are reported added once settled.
	placeholders []*dom.Node
	unreported   map[*dom.Node]bool
}

// position is where a pooled node sat before it was removed.
type position struct {
	parent *dom.Node
	next   *dom.Node
}

// Reconcile mutates live until it matches target and returns the resulting
// root. The result differs from live only when the root itself had to be
// replaced. target is consumed: its nodes may be moved into the live tree.
//
// When a hook aborts the call, the returned root is the live tree as far as
// it was reconciled, together with the error. It is nil only for M001.
func Reconcile(live, target *dom.Node, opts Options) (*dom.Node, error) {
	if live == nil || target == nil {
		return nil, errors.New("M001").WithDetailf("live=%v target=%v", live, target)
	}

	r := &reconciler{
		opts:       opts,
		policy:     opts.Policy,
		pool:       make(map[string]*dom.Node),
		poolKey:    make(map[*dom.Node]string),
		unmatched:  make(map[string]*dom.Node),
		placed:     make(map[*dom.Node]bool),
		origin:     make(map[*dom.Node]position),
		unreported: make(map[*dom.Node]bool),
	}
	if r.policy == nil {
		r.policy = defaultPolicy
	}

	result, err := r.run(live, target)
	if opts.Logger != nil {
		attrs := []any{
			"root", live.String(),
			"added", r.stats.added,
			"discarded", r.stats.discarded,
			"updated", r.stats.updated,
			"mutations", r.stats.mutations,
		}
		if err != nil {
			opts.Logger.Debug("reconcile aborted", append(attrs, "error", err)...)
		} else {
			opts.Logger.Debug("reconcile complete", attrs...)
		}
	}
	return result, err
}

func (r *reconciler) run(live, target *dom.Node) (*dom.Node, error) {
	if r.opts.ChildrenOnly {
		if live.Kind == dom.KindText || target.Kind == dom.KindText {
			return live, nil
		}
		r.root = live
		r.push(task{kind: taskChildren, live: live, target: target})
		return live, r.finish()
	}

	if r.isSameNode(live, target) {
		return live, nil
	}

	switch {
	case live.Kind == dom.KindText && target.Kind == dom.KindText:
		r.setText(live, target.Text)
		return live, nil

	case live.Kind == dom.KindElement && target.Kind == dom.KindElement:
		if !sameElementType(live, target) {
			return r.morphRootElement(live, target)
		}
		r.root = live
		r.push(task{kind: taskMorph, live: live, target: target})
		return live, r.finish()

	case live.Kind == dom.KindFragment && target.Kind == dom.KindFragment:
		r.root = live
		r.push(task{kind: taskChildren, live: live, target: target})
		return live, r.finish()

	default:
		return r.replaceRoot(live, target)
	}
}

// morphRootElement handles a root element whose tag or namespace differs
// from the target's. The live children move into a new element, which then
// takes the old root's place.
func (r *reconciler) morphRootElement(live, target *dom.Node) (*dom.Node, error) {
	n := dom.NewElementNS(target.Namespace, target.Tag)
	for c := live.FirstChild; c != nil; c = live.FirstChild {
		n.AppendChild(c)
	}
	parent := live.Parent
	if parent != nil {
		parent.ReplaceChild(n, live)
	}
	r.root = n
	r.placed[n] = true
	r.emit(Mutation{Op: OpReplaceNode, Node: n, Parent: parent})

	r.push(task{kind: taskMorph, live: n, target: target})
	if err := r.drain(); err != nil {
		return n, err
	}
	if err := r.settle(); err != nil {
		return n, err
	}

	if err := r.reportDiscarded(live); err != nil && err != SkipNode {
		return n, err
	}
	if err := r.reportAdded(n); err != nil && err != SkipNode {
		return n, err
	}
	return n, r.flush()
}

// replaceRoot puts target in place of a live root of a different kind.
func (r *reconciler) replaceRoot(live, target *dom.Node) (*dom.Node, error) {
	r.root = target
	target.Detach()
	parent := live.Parent
	if parent != nil {
		parent.ReplaceChild(target, live)
	}
	r.emit(Mutation{Op: OpReplaceNode, Node: target, Parent: parent})

	if err := r.discard(live); err != nil {
		return target, err
	}
	if err := r.added(target); err != nil {
		return target, err
	}
	return target, r.finish()
}

func (r *reconciler) finish() error {
	if err := r.drain(); err != nil {
		return err
	}
	if err := r.settle(); err != nil {
		return err
	}
	return r.flush()
}

func (r *reconciler) push(t task) {
	r.stack = append(r.stack, t)
}

func (r *reconciler) drain() error {
	for len(r.stack) > 0 {
		t := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]

		var err error
		switch t.kind {
		case taskMorph:
			err = r.morphElement(t)
		case taskChildren:
			err = r.morphChildren(t.live, t.target)
		case taskFinish:
			err = r.finishElement(t)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// morphElement updates a matched pair and schedules its children.
func (r *reconciler) morphElement(t task) error {
	live, target := t.live, t.target

	if k := r.keyOf(target); k != "" {
		if r.pool[k] == live {
			delete(r.pool, k)
		}
		if r.unmatched[k] == target {
			delete(r.unmatched, k)
		}
	}

	if t.discardTarget {
		r.push(task{kind: taskFinish, live: live, target: target, discardTarget: true})
	}

	if h := r.opts.OnBeforeElementUpdated; h != nil {
		if err := h(live, target); err != nil {
			if err == SkipNode {
				return nil
			}
			return hookError("OnBeforeElementUpdated", live, err)
		}
	}

	if r.syncAttributes(live, target) {
		r.stats.updated++
		if h := r.opts.OnElementUpdated; h != nil {
			if err := h(live); err != nil && err != SkipNode {
				return hookError("OnElementUpdated", live, err)
			}
		}
	}

	if h := r.opts.OnBeforeElementChildrenUpdated; h != nil {
		if err := h(live, target); err != nil {
			if err == SkipNode {
				return nil
			}
			return hookError("OnBeforeElementChildrenUpdated", live, err)
		}
	}

	if r.policyFor(live) != nil {
		if _, ok := r.policy.element(live.Tag); ok {
			r.push(task{kind: taskFinish, live: live, target: target})
		}
	}
	return r.morphChildren(live, target)
}

// finishElement runs once the subtree of a pair has been reconciled.
func (r *reconciler) finishElement(t task) error {
	if t.discardTarget {
		// Whatever is left of the swapped-out placeholder leaves the tree.
		return r.discard(t.target)
	}
	r.syncElementState(t.live, t.target)
	return nil
}

// morphChildren reconciles the children of a matched pair. Pairs found are
// pushed so that they are processed in document order.
func (r *reconciler) morphChildren(live, target *dom.Node) error {
	dups := r.duplicateKeys(live)
	liveKey := func(n *dom.Node) string {
		if dups[n] {
			return ""
		}
		return r.keyOf(n)
	}
	var seenTarget map[string]bool

	var pending []task
	cur := live.FirstChild

	for tc := target.FirstChild; tc != nil; {
		next := tc.NextSibling

		tk := r.keyOf(tc)
		if tk != "" {
			if seenTarget[tk] {
				tk = ""
			} else {
				if seenTarget == nil {
					seenTarget = make(map[string]bool)
				}
				seenTarget[tk] = true
			}
		}

		if tk != "" {
			if p := r.takePooled(tk, tc, live); p != nil {
				live.InsertBefore(p, cur)
				r.placed[p] = true
				r.emit(Mutation{Op: OpMoveNode, Node: p, Parent: live})
				pending = append(pending, task{kind: taskMorph, live: p, target: tc})
				tc = next
				continue
			}
		}

		matched := false
		for cur != nil {
			curNext := cur.NextSibling
			lk := liveKey(cur)

			if r.isSameNode(cur, tc) {
				matched = true
				cur = curNext
				break
			}

			if compatible(cur, lk, tc, tk) {
				switch cur.Kind {
				case dom.KindText:
					r.setText(cur, tc.Text)
				case dom.KindElement:
					pending = append(pending, task{kind: taskMorph, live: cur, target: tc})
				case dom.KindFragment:
					pending = append(pending, task{kind: taskChildren, live: cur, target: tc})
				}
				matched = true
				cur = curNext
				break
			}

			if lk != "" {
				if x := r.unmatched[lk]; x != nil && r.canSwap(cur, x) {
					r.swap(lk, cur, x)
					cur = curNext
					continue
				}
			}

			if err := r.remove(cur, lk); err != nil {
				return err
			}
			cur = curNext
		}

		if !matched {
			if tk != "" {
				if p := r.takePooled(tk, tc, live); p != nil {
					live.InsertBefore(p, cur)
					r.placed[p] = true
					r.emit(Mutation{Op: OpMoveNode, Node: p, Parent: live})
					pending = append(pending, task{kind: taskMorph, live: p, target: tc})
					tc = next
					continue
				}
				if _, ok := r.unmatched[tk]; !ok {
					r.unmatched[tk] = tc
				}
			}
			if err := r.adopt(tc, live, cur); err != nil {
				return err
			}
		}
		tc = next
	}

	for cur != nil {
		curNext := cur.NextSibling
		lk := liveKey(cur)
		if lk != "" {
			if x := r.unmatched[lk]; x != nil && r.canSwap(cur, x) {
				r.swap(lk, cur, x)
				cur = curNext
				continue
			}
		}
		if err := r.remove(cur, lk); err != nil {
			return err
		}
		cur = curNext
	}

	for i := len(pending) - 1; i >= 0; i-- {
		r.push(pending[i])
	}
	return nil
}

// duplicateKeys returns the children of parent whose key already appeared
// on an earlier sibling.
func (r *reconciler) duplicateKeys(parent *dom.Node) map[*dom.Node]bool {
	var seen map[string]bool
	var dups map[*dom.Node]bool
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		k := r.keyOf(c)
		if k == "" {
			continue
		}
		if seen[k] {
			if dups == nil {
				dups = make(map[*dom.Node]bool)
			}
			dups[c] = true
			continue
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		seen[k] = true
	}
	return dups
}

// adopt moves a target node into the live tree before ref.
func (r *reconciler) adopt(tc, parent, ref *dom.Node) error {
	if r.placed[tc] {
		parent.InsertBefore(tc, ref)
		r.emit(Mutation{Op: OpMoveNode, Node: tc, Parent: parent})
		if r.unreported[tc] {
			return r.reportDeferred(tc)
		}
		return nil
	}

	n := tc
	if h := r.opts.OnBeforeNodeAdded; h != nil {
		repl, err := h(tc)
		if err != nil {
			if err == SkipNode {
				return nil
			}
			return hookError("OnBeforeNodeAdded", tc, err)
		}
		if repl != nil {
			n = repl
		}
	}

	parent.InsertBefore(n, ref)
	r.emit(Mutation{Op: OpInsertNode, Node: n, Parent: parent})
	return r.added(n)
}

// added reports n and its descendants as added. Keyed descendants with a
// compatible pooled live node are replaced by it; the others are recorded
// as unmatched so a live node found later can take their place.
func (r *reconciler) added(n *dom.Node) error {
	for d := n; d != nil; {
		if d != n && d.Kind == dom.KindElement {
			if k := r.keyOf(d); k != "" {
				if p := r.takePooled(k, d, d.Parent); p != nil {
					next := d.NextSkip(n)
					d.Parent.ReplaceChild(p, d)
					r.placed[p] = true
					r.emit(Mutation{Op: OpMoveNode, Node: p, Parent: p.Parent})
					r.push(task{kind: taskMorph, live: p, target: d})
					d = next
					continue
				}
				if _, ok := r.unmatched[k]; !ok {
					r.unmatched[k] = d
				}
			}
		}

		r.placed[d] = true
		if r.isPlaceholder(d) {
			r.unreported[d] = true
			r.placeholders = append(r.placeholders, d)
			d = d.Next(n)
			continue
		}
		if d.Parent != nil && r.unreported[d.Parent] {
			r.unreported[d] = true
			d = d.Next(n)
			continue
		}

		err := r.reportAdded(d)
		if err == SkipNode {
			d = d.NextSkip(n)
			continue
		}
		if err != nil {
			return err
		}
		d = d.Next(n)
	}
	return nil
}

// isPlaceholder reports whether n is an adopted target node registered in
// the unmatched table.
func (r *reconciler) isPlaceholder(n *dom.Node) bool {
	if n.Kind != dom.KindElement {
		return false
	}
	k := r.keyOf(n)
	return k != "" && r.unmatched[k] == n
}

// settle reports the placeholders that kept their place as added.
func (r *reconciler) settle() error {
	for len(r.placeholders) > 0 {
		x := r.placeholders[0]
		r.placeholders = r.placeholders[1:]
		if !r.unreported[x] {
			continue
		}
		if err := r.reportDeferred(x); err != nil {
			return err
		}
	}
	return nil
}

// reportDeferred reports the unreported nodes of n's subtree as added.
func (r *reconciler) reportDeferred(n *dom.Node) error {
	for d := n; d != nil; {
		if !r.unreported[d] {
			d = d.Next(n)
			continue
		}
		delete(r.unreported, d)
		err := r.reportAdded(d)
		if err == SkipNode {
			next := d.NextSkip(n)
			for c := d.Next(n); c != next; c = c.Next(n) {
				delete(r.unreported, c)
			}
			d = next
			continue
		}
		if err != nil {
			return err
		}
		d = d.Next(n)
	}
	return nil
}

// remove takes a live child out of the tree. Keyed nodes go to the pool and
// are only discarded, subject to OnBeforeNodeDiscarded, if nothing reuses
// them; the rest are discarded now.
func (r *reconciler) remove(n *dom.Node, key string) error {
	if key != "" && r.canPool(key, n) {
		r.emit(Mutation{Op: OpRemoveNode, Node: n, Parent: n.Parent})
		r.origin[n] = position{parent: n.Parent, next: n.NextSibling}
		n.Detach()
		r.putPooled(key, n)
		return nil
	}

	if h := r.opts.OnBeforeNodeDiscarded; h != nil {
		if err := h(n); err != nil {
			if err == SkipNode {
				return nil
			}
			return hookError("OnBeforeNodeDiscarded", n, err)
		}
	}

	r.emit(Mutation{Op: OpRemoveNode, Node: n, Parent: n.Parent})
	n.Detach()
	return r.discard(n)
}

// discard reports a detached node and its descendants as discarded.
// Keyed descendants are kept for reuse instead of being reported.
func (r *reconciler) discard(n *dom.Node) error {
	for d := n; d != nil; {
		if d != n && d.Kind == dom.KindElement {
			if k := r.keyOf(d); k != "" {
				next := d.NextSkip(n)
				if x := r.unmatched[k]; x != nil && r.canSwap(d, x) {
					r.swap(k, d, x)
					d = next
					continue
				}
				if r.putPooled(k, d) {
					d = next
					continue
				}
			}
		}

		if r.unreported[d] {
			// Never reported added, so not reported discarded either.
			delete(r.unreported, d)
			d = d.Next(n)
			continue
		}

		err := r.reportDiscarded(d)
		if err == SkipNode {
			d = d.NextSkip(n)
			continue
		}
		if err != nil {
			return err
		}
		d = d.Next(n)
	}
	return nil
}

// flush discards every pooled node that was never reused. A node kept by
// OnBeforeNodeDiscarded goes back to where it was removed from.
func (r *reconciler) flush() error {
	for _, p := range r.poolOrder {
		if r.pool[r.poolKey[p]] != p || r.root.Contains(p) {
			continue
		}
		if h := r.opts.OnBeforeNodeDiscarded; h != nil {
			if err := h(p); err != nil {
				if err != SkipNode {
					return hookError("OnBeforeNodeDiscarded", p, err)
				}
				r.restore(p)
				continue
			}
		}
		for d := p; d != nil; {
			if d != p && r.isPooled(d) {
				d = d.NextSkip(p)
				continue
			}
			if r.unreported[d] {
				delete(r.unreported, d)
				d = d.Next(p)
				continue
			}
			err := r.reportDiscarded(d)
			if err == SkipNode {
				d = d.NextSkip(p)
				continue
			}
			if err != nil {
				return err
			}
			d = d.Next(p)
		}
	}
	return nil
}

// restore reinserts a pooled node at its recorded position when that
// parent is still part of the result.
func (r *reconciler) restore(p *dom.Node) {
	o, ok := r.origin[p]
	if !ok || !r.root.Contains(o.parent) {
		return
	}
	ref := o.next
	if ref != nil && ref.Parent != o.parent {
		ref = nil
	}
	o.parent.InsertBefore(p, ref)
	r.emit(Mutation{Op: OpMoveNode, Node: p, Parent: o.parent})
}

func (r *reconciler) canPool(key string, n *dom.Node) bool {
	p, ok := r.pool[key]
	return !ok || p == n
}

func (r *reconciler) putPooled(key string, n *dom.Node) bool {
	if !r.canPool(key, n) {
		return false
	}
	r.pool[key] = n
	if _, seen := r.poolKey[n]; !seen {
		r.poolKey[n] = key
		r.poolOrder = append(r.poolOrder, n)
	}
	return true
}

// takePooled removes and returns the pooled node for key when it can stand
// in for target under parent.
func (r *reconciler) takePooled(key string, target, parent *dom.Node) *dom.Node {
	p, ok := r.pool[key]
	if !ok || !compatible(p, key, target, key) || p.Contains(parent) {
		return nil
	}
	delete(r.pool, key)
	return p
}

func (r *reconciler) isPooled(n *dom.Node) bool {
	k, ok := r.poolKey[n]
	return ok && r.pool[k] == n
}

// canSwap reports whether live can take the place of the adopted
// placeholder x.
func (r *reconciler) canSwap(live, x *dom.Node) bool {
	return x.Kind == dom.KindElement &&
		sameElementType(live, x) &&
		r.root.Contains(x) &&
		!live.Contains(x) &&
		!x.Contains(live)
}

// swap moves live into the position of the placeholder x and schedules the
// pair. x is discarded once the pair's subtree has been reconciled.
func (r *reconciler) swap(key string, live, x *dom.Node) {
	delete(r.unmatched, key)
	if r.pool[key] == live {
		delete(r.pool, key)
	}
	parent := x.Parent
	if live.Parent != nil {
		r.emit(Mutation{Op: OpRemoveNode, Node: live, Parent: live.Parent})
	}
	parent.ReplaceChild(live, x)
	r.placed[live] = true
	r.emit(Mutation{Op: OpReplaceNode, Node: live, Parent: parent})
	r.push(task{kind: taskMorph, live: live, target: x, discardTarget: true})
}

func (r *reconciler) setText(n *dom.Node, text string) {
	if n.Text == text {
		return
	}
	n.Text = text
	r.emit(Mutation{Op: OpSetText, Node: n, Value: text})
}

func (r *reconciler) reportAdded(n *dom.Node) error {
	r.stats.added++
	h := r.opts.OnNodeAdded
	if h == nil {
		return nil
	}
	if err := h(n); err != nil {
		if err == SkipNode {
			return SkipNode
		}
		return hookError("OnNodeAdded", n, err)
	}
	return nil
}

func (r *reconciler) reportDiscarded(n *dom.Node) error {
	r.stats.discarded++
	h := r.opts.OnNodeDiscarded
	if h == nil {
		return nil
	}
	if err := h(n); err != nil {
		if err == SkipNode {
			return SkipNode
		}
		return hookError("OnNodeDiscarded", n, err)
	}
	return nil
}

func (r *reconciler) emit(m Mutation) {
	r.stats.mutations++
	if r.opts.OnMutation != nil {
		r.opts.OnMutation(m)
	}
}

func (r *reconciler) isSameNode(live, target *dom.Node) bool {
	return r.opts.IsSameNode != nil && r.opts.IsSameNode(live, target)
}

func (r *reconciler) keyOf(n *dom.Node) string {
	if n.Kind != dom.KindElement {
		return ""
	}
	if r.opts.GetNodeKey != nil {
		return r.opts.GetNodeKey(n)
	}
	return n.ID()
}

// compatible reports whether live can be updated into target given their
// effective keys.
func compatible(live *dom.Node, liveKey string, target *dom.Node, targetKey string) bool {
	if live.Kind != target.Kind {
		return false
	}
	switch live.Kind {
	case dom.KindText, dom.KindFragment:
		return true
	default:
		return sameElementType(live, target) && liveKey == targetKey
	}
}

func sameElementType(a, b *dom.Node) bool {
	return strings.EqualFold(a.Tag, b.Tag) &&
		dom.NormalizeNamespace(a.Namespace) == dom.NormalizeNamespace(b.Namespace)
}

func hookError(hook string, n *dom.Node, err error) error {
	var coded *errors.Error
	if stderrors.As(err, &coded) && coded.Code == "M002" {
		return err
	}
	return errors.New("M002").WithDetailf("%s on %s", hook, n).Wrap(err)
}
