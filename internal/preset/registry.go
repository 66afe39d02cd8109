package preset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/preset/dag"
	"lintconf/internal/project"
	"lintconf/internal/schema"
)

// Registry is the read-only view the resolver needs.
type Registry interface {
	Lookup(name string) ([]config.Declaration, bool)
}

var (
	ErrDuplicatePreset = errors.New("duplicate preset")
	ErrEmptyPresetName = errors.New("empty preset name")
)

// LayerIdentity names the i-th declaration of a preset in diagnostics.
func LayerIdentity(name string, i int) string {
	return fmt.Sprintf("preset:%s#%d", name, i)
}

// Snapshot is an immutable set of presets.
type Snapshot struct {
	presets     map[string][]config.Declaration
	sources     map[string]string
	fingerprint project.Digest
}

// Builder accumulates presets for one Snapshot. It is not safe for
// concurrent use.
type Builder struct {
	presets map[string][]config.Declaration
	sources map[string]string
}

func NewBuilder() *Builder {
	return &Builder{
		presets: make(map[string][]config.Declaration),
		sources: make(map[string]string),
	}
}

// Add registers name with its ordered declarations. source is informational
// (a file path, "builtin").
func (b *Builder) Add(name, source string, decls ...config.Declaration) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyPresetName
	}
	if prev, ok := b.sources[name]; ok {
		return fmt.Errorf("%w %q: defined in %s and %s", ErrDuplicatePreset, name, prev, source)
	}
	out := make([]config.Declaration, len(decls))
	for i, d := range decls {
		out[i] = config.Declaration{
			Identity: LayerIdentity(name, i),
			Fields:   config.CloneMap(d.Fields),
		}
	}
	b.presets[name] = out
	b.sources[name] = source
	return nil
}

// Snapshot freezes the builder's content. The builder must not be reused.
func (b *Builder) Snapshot() *Snapshot {
	s := &Snapshot{
		presets: b.presets,
		sources: b.sources,
	}
	s.fingerprint = s.computeFingerprint()
	b.presets = nil
	b.sources = nil
	return s
}

// Empty returns a snapshot with no presets.
func Empty() *Snapshot {
	return NewBuilder().Snapshot()
}

// Lookup returns a private copy of the preset's declarations.
func (s *Snapshot) Lookup(name string) ([]config.Declaration, bool) {
	if s == nil {
		return nil, false
	}
	decls, ok := s.presets[name]
	if !ok {
		return nil, false
	}
	out := make([]config.Declaration, len(decls))
	for i, d := range decls {
		out[i] = config.Declaration{Identity: d.Identity, Fields: config.CloneMap(d.Fields)}
	}
	return out, true
}

// Names returns every preset name in sorted order.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.presets)
}

// Source reports where name was loaded from.
func (s *Snapshot) Source(name string) string {
	if s == nil {
		return ""
	}
	return s.sources[name]
}

// Fingerprint identifies the snapshot content; two snapshots with the same
// presets have the same fingerprint.
func (s *Snapshot) Fingerprint() project.Digest {
	if s == nil {
		return project.Digest{}
	}
	return s.fingerprint
}

func (s *Snapshot) computeFingerprint() project.Digest {
	var b strings.Builder
	for _, name := range s.Names() {
		for i, d := range s.presets[name] {
			// %#v prints map keys sorted and keeps value types apart.
			fmt.Fprintf(&b, "%s\x00%d\x00%#v\n", name, i, d.Fields)
		}
	}
	return project.Sum([]byte(b.String()))
}

// Check validates every preset declaration and the extends graph as a
// whole: references to missing presets and cycles are reported for every
// preset involved, not just along one resolution path.
func (s *Snapshot) Check() []diag.Diagnostic {
	var out []diag.Diagnostic
	if s == nil {
		return out
	}
	names := s.Names()
	nodes := make([]dag.Node, 0, len(names))
	graphDiags := make(map[string]*[]diag.Diagnostic, len(names))
	for _, name := range names {
		var extends []string
		for _, d := range s.presets[name] {
			layer, diags := schema.Validate(d)
			out = append(out, diags...)
			extends = append(extends, layer.Extends...)
		}
		items := new([]diag.Diagnostic)
		graphDiags[name] = items
		// Extends gathered from several declarations may repeat a bad
		// reference; report it once per preset.
		nodes = append(nodes, dag.Node{
			Name:     name,
			Extends:  extends,
			Reporter: diag.NewDedupReporter(diag.SliceReporter{Items: items}),
		})
	}

	idx := dag.BuildIndex(nodes)
	g, slots := dag.BuildGraph(idx, nodes)
	dag.ReportCycles(idx, slots, dag.ToposortKahn(g))

	for _, name := range names {
		out = append(out, *graphDiags[name]...)
	}
	return out
}

// Order lists presets so that each comes before the presets it extends.
// Presets caught in a cycle are left out; Check reports them.
func (s *Snapshot) Order() []string {
	if s == nil {
		return nil
	}
	names := s.Names()
	nodes := make([]dag.Node, 0, len(names))
	for _, name := range names {
		var extends []string
		for _, d := range s.presets[name] {
			layer, _ := schema.Validate(d)
			extends = append(extends, layer.Extends...)
		}
		nodes = append(nodes, dag.Node{Name: name, Extends: extends})
	}
	idx := dag.BuildIndex(nodes)
	g, _ := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(g)
	out := make([]string, 0, len(topo.Order))
	for _, id := range topo.Order {
		out = append(out, idx.IDToName[int(id)])
	}
	return out
}
