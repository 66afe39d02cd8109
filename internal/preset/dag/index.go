package dag

import "sort"

type NodeID uint32

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// BuildIndex collects every preset name, declared or referenced, sorts them
// and hands out IDs in that order.
func BuildIndex(nodes []Node) Index {
	uniq := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.Name != "" {
			uniq[n.Name] = struct{}{}
		}
		for _, dep := range n.Extends {
			if dep == "" {
				continue
			}
			uniq[dep] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]NodeID, len(names))
	for i, name := range names {
		nameToID[name] = NodeID(i)
	}
	return Index{
		NameToID: nameToID,
		IDToName: names,
	}
}
