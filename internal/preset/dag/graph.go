package dag

import (
	"fmt"
	"slices"
	"strings"

	"lintconf/internal/diag"
)

type Graph struct {
	Edges   [][]NodeID // Edges[from] = []to; from extends to
	Indeg   []int      // in-degrees for Kahn, counting only present presets
	Present []bool     // the preset is registered, not merely referenced
}

// Node is one registered preset and the presets it extends, in order.
type Node struct {
	Name     string
	Extends  []string
	Reporter diag.Reporter
}

type Slot struct {
	Node
	Present bool
}

// Layer is the identity used for graph-level diagnostics about a preset.
func Layer(name string) string {
	return "preset:" + name
}

func BuildGraph(idx Index, nodes []Node) (Graph, []Slot) {
	count := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]NodeID, count),
		Indeg:   make([]int, count),
		Present: make([]bool, count),
	}
	slots := make([]Slot, count)
	for i, name := range idx.IDToName {
		slots[i].Name = name
	}

	for _, node := range nodes {
		if node.Name == "" {
			continue
		}
		id, ok := idx.NameToID[node.Name]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			// Same name twice: keep the first, fold the extends of the rest in.
			slot.Extends = append(slot.Extends, node.Extends...)
			continue
		}
		slot.Node = node
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Extends) == 0 {
			continue
		}
		seen := make(map[NodeID]struct{}, len(slot.Extends))
		for _, dep := range slot.Extends {
			toID, ok := idx.NameToID[dep]
			if !ok {
				continue
			}
			if NodeID(from) == toID {
				report(slot.Reporter, diag.PrsCyclicPreset, slot.Name,
					fmt.Sprintf("preset %q extends itself: %s -> %s", slot.Name, slot.Name, slot.Name))
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}

			g.Edges[from] = append(g.Edges[from], toID)
			if g.Present[int(toID)] {
				g.Indeg[int(toID)]++
			} else {
				report(slot.Reporter, diag.PrsUnknownPreset, slot.Name,
					fmt.Sprintf("preset %q extends unknown preset %q", slot.Name, dep))
			}
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}

	return g, slots
}

// ReportCycles emits one error per preset left on a cycle after Kahn.
func ReportCycles(idx Index, slots []Slot, topo *Topo) {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, ", ")

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present {
			continue
		}
		report(slot.Reporter, diag.PrsCyclicPreset, slot.Name,
			fmt.Sprintf("preset %q cannot be ordered because of an extends cycle among: %s", slot.Name, summary))
	}
}

func report(r diag.Reporter, code diag.Code, name, msg string) {
	if r == nil {
		return
	}
	r.Report(code, diag.SevError, Layer(name), "extends", msg, nil)
}
