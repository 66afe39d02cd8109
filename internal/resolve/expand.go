package resolve

import (
	"context"
	"fmt"
	"strings"

	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/observ"
	"lintconf/internal/preset"
	"lintconf/internal/schema"
	"lintconf/internal/trace"
)

// validated is one expanded layer and what its validation reported.
type validated struct {
	layer config.Layer
	diags []diag.Diagnostic
}

// expander walks the extends graph of one resolution call. path is the
// chain of presets currently being expanded, active indexes into it. ctx
// follows the expansion so trace events and timings know which preset
// chain they belong to.
type expander struct {
	ctx    context.Context
	reg    preset.Registry
	path   []string
	active map[string]int
	out    []validated
}

func newExpander(ctx context.Context, reg preset.Registry) *expander {
	if ctx == nil {
		ctx = context.Background()
	}
	return &expander{
		ctx:    ctx,
		reg:    reg,
		active: make(map[string]int),
	}
}

// declaration validates d, expands everything it extends, then appends d
// itself so that it outranks its presets.
func (x *expander) declaration(d config.Declaration) error {
	if err := x.ctx.Err(); err != nil {
		return err
	}
	done := observ.Track(x.ctx, "validate", d.Identity)
	layer, diags := schema.Validate(d)
	note := fmt.Sprintf("%d diagnostics", len(diags))
	done(note)
	trace.PointCtx(x.ctx, trace.ScopeLayer, "layer:"+d.Identity, note)

	for i, name := range layer.Extends {
		field := config.FieldExtends
		if len(layer.Extends) > 1 {
			field = fmt.Sprintf("%s[%d]", config.FieldExtends, i)
		}
		if err := x.preset(d.Identity, field, name); err != nil {
			return err
		}
	}
	x.out = append(x.out, validated{layer: layer, diags: diags})
	return nil
}

func (x *expander) preset(from, field, name string) error {
	if start, onPath := x.active[name]; onPath {
		chain := append(append([]string(nil), x.path[start:]...), name)
		d := diag.NewFatal(diag.PrsCyclicPreset, from, field,
			fmt.Sprintf("cyclic preset reference: %s", strings.Join(chain, " -> ")))
		for _, n := range chain[:len(chain)-1] {
			d = d.WithNote("preset:"+n, config.FieldExtends, fmt.Sprintf("%q is being expanded here", n))
		}
		return &FatalError{Diagnostic: d, err: ErrCyclicPreset}
	}
	decls, ok := x.reg.Lookup(name)
	if !ok {
		d := diag.NewFatal(diag.PrsUnknownPreset, from, field,
			fmt.Sprintf("unknown preset %q", name))
		return &FatalError{Diagnostic: d, err: ErrUnknownPreset}
	}

	outer := x.ctx
	x.ctx = trace.WithPreset(outer, name)
	x.active[name] = len(x.path)
	x.path = append(x.path, name)
	defer func() {
		x.path = x.path[:len(x.path)-1]
		delete(x.active, name)
		x.ctx = outer
	}()

	for i, d := range decls {
		if d.Identity == "" {
			d.Identity = preset.LayerIdentity(name, i)
		}
		if err := x.declaration(d); err != nil {
			return err
		}
	}
	return nil
}
