package routing

// PreferredOrder returns the active copies of entries ordered by locality.
//
// The first attribute in attributes for which the local node has a value is
// the only one considered. Copies whose node carries the same value for it
// come first, all other active copies follow; relative order is preserved in
// both tiers. When no attribute has a local value, or nodes is nil, the result
// is the active copies in their original order.
//
// The returned slice is freshly allocated but holds the same *Entry pointers
// as entries.
func PreferredOrder(entries []*Entry, attributes []string, nodes NodeDirectory) []*Entry {
	active := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e.Active() {
			active = append(active, e)
		}
	}
	if len(active) == 0 || nodes == nil {
		return active
	}

	attr, localValue, ok := localAttribute(attributes, nodes)
	if !ok {
		return active
	}

	out := make([]*Entry, 0, len(active))
	var others []*Entry
	for _, e := range active {
		if v, found := nodeAttribute(nodes, e.CurrentNodeID(), attr); found && v == localValue {
			out = append(out, e)
		} else {
			others = append(others, e)
		}
	}
	return append(out, others...)
}

func localAttribute(attributes []string, nodes NodeDirectory) (attr, value string, ok bool) {
	local, found := nodes.Attributes(nodes.LocalNodeID())
	if !found {
		return "", "", false
	}
	for _, a := range attributes {
		if v, has := local[a]; has {
			return a, v, true
		}
	}
	return "", "", false
}

func nodeAttribute(nodes NodeDirectory, nodeID, attr string) (string, bool) {
	attrs, ok := nodes.Attributes(nodeID)
	if !ok {
		return "", false
	}
	v, ok := attrs[attr]
	return v, ok
}
