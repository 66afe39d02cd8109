package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []NodeID   // linear order, registered presets only
	Batches [][]NodeID // waves of mutually independent presets
	Cyclic  bool
	Cycles  []NodeID // nodes left with non-zero in-degree
}

// ToposortKahn orders presets so that every preset precedes the presets it
// extends.
func ToposortKahn(g Graph) *Topo {
	count := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]NodeID, 0, count),
		Batches: make([][]NodeID, 0),
	}

	active := 0
	for i := 0; i < count; i++ {
		if g.Present[i] {
			active++
		}
	}

	current := make([]NodeID, 0, count)
	for i := 0; i < count; i++ {
		if !g.Present[i] || indeg[i] != 0 {
			continue
		}
		current = append(current, nodeID(i))
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]NodeID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := 0; i < count; i++ {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, nodeID(i))
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}

func nodeID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("preset id overflow: %w", err))
	}
	return id
}
