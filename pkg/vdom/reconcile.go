package vdom

// Reconcile matches a freshly built node against its prior rendering.
// Mismatched kinds or tags leave next untouched: it initializes as a
// fresh node on first serialize, and the prior subtree is disposed.
func Reconcile(next, prev *VNode) error {
	if next == nil || prev == nil {
		return nil
	}
	if next.Kind != prev.Kind {
		prev.Dispose()
		return nil
	}
	switch next.Kind {
	case KindText:
		return nil
	case KindElement:
		if next.Tag != prev.Tag {
			prev.Dispose()
			return nil
		}
		if err := ReconcileChildren(next.Children, prev.Children); err != nil {
			return err
		}
		if next.Tooltip != nil && prev.Tooltip != nil {
			return Reconcile(next.Tooltip, prev.Tooltip)
		}
		if prev.Tooltip != nil {
			prev.Tooltip.Dispose()
		}
		return nil
	case KindComponent:
		return next.Comp.Reconcile(prev.Comp)
	}
	return nil
}

// ReconcileChildren walks a new sibling list against the prior one.
// Keyed nodes match the first remaining prior node with an equal key;
// unkeyed nodes fall back to positional matching against the head of
// the remaining prior list. Prior nodes left unmatched are disposed.
//
// Duplicate keys or partially keyed lists give the same
// undefined-but-safe behaviour as common JavaScript UI libraries: a
// prior node is never matched twice and the pass never fails on
// malformed keys.
func ReconcileChildren(next []*VNode, prev []*VNode) error {
	remaining := make([]*VNode, len(prev))
	copy(remaining, prev)

	for _, n := range next {
		if key, ok := n.Key(); ok {
			for j, o := range remaining {
				if ok2, _ := matchKey(o, key); ok2 {
					if err := Reconcile(n, o); err != nil {
						return err
					}
					remaining = append(remaining[:j], remaining[j+1:]...)
					break
				}
			}
		} else if len(remaining) > 0 {
			o := remaining[0]
			remaining = remaining[1:]
			if err := Reconcile(n, o); err != nil {
				return err
			}
		}
		// No prior left: n stays fresh and initializes on first
		// serialize.
	}

	for _, o := range remaining {
		o.Dispose()
	}
	return nil
}

func matchKey(v *VNode, key string) (bool, string) {
	k, ok := v.Key()
	return ok && k == key, k
}
