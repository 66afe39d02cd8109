package resolve

import (
	"context"
	"fmt"
	"strconv"

	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/merge"
	"lintconf/internal/observ"
	"lintconf/internal/preset"
	"lintconf/internal/trace"
)

// Engine resolves declarations against one registry. It holds no mutable
// state and is safe for concurrent use as long as the registry is.
type Engine struct {
	registry preset.Registry
}

func New(reg preset.Registry) *Engine {
	if reg == nil {
		reg = preset.Empty()
	}
	return &Engine{registry: reg}
}

// Resolve expands, validates and merges local over its presets.
//
// A cyclic or unknown preset reference returns a zero Result and a
// *FatalError. Context cancellation is checked between layers and returned
// as is. Otherwise the error is nil and Result.State tells whether a
// configuration was produced.
func (e *Engine) Resolve(ctx context.Context, local config.Declaration) (Result, error) {
	return e.resolve(ctx, []config.Declaration{local})
}

// Override resolves base with override appended as a new highest-priority
// layer named name. Neither input is modified; this is how a caller disables
// rules for one deployment without editing a shared declaration.
func (e *Engine) Override(ctx context.Context, base config.Declaration, name string, override config.Declaration) (Result, error) {
	top := config.Declaration{Identity: name, Fields: override.Fields}
	return e.resolve(ctx, []config.Declaration{base, top})
}

// Layers returns the expanded layer identities of local, lowest priority
// first, without merging.
func (e *Engine) Layers(ctx context.Context, local config.Declaration) ([]string, error) {
	x := newExpander(ctx, e.registry)
	if err := x.declaration(local); err != nil {
		return nil, err
	}
	out := make([]string, len(x.out))
	for i, v := range x.out {
		out[i] = v.layer.Identity
	}
	return out, nil
}

func (e *Engine) resolve(ctx context.Context, decls []config.Declaration) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.BeginCtx(ctx, trace.ScopePass, "resolve")
	defer span.End("")

	expandCtx, expandSpan := trace.BeginCtx(ctx, trace.ScopePass, "expand")
	x := newExpander(expandCtx, e.registry)
	for _, d := range decls {
		if err := x.declaration(d); err != nil {
			expandSpan.End(err.Error())
			return Result{}, err
		}
	}
	expandSpan.WithExtra("layers", strconv.Itoa(len(x.out))).End("")

	var res Result
	layers := make([]config.Layer, 0, len(x.out))
	for _, v := range x.out {
		res.Layers = append(res.Layers, v.layer.Identity)
		res.Diagnostics = append(res.Diagnostics, v.diags...)
		if diag.HasErrors(v.diags) {
			res.Excluded = append(res.Excluded, v.layer.Identity)
			continue
		}
		layers = append(layers, v.layer)
	}

	_, mergeSpan := trace.BeginCtx(ctx, trace.ScopePass, "merge")
	done := observ.Track(ctx, "merge", "")
	eff, origins, mergeDiags := merge.MergeExplained(layers)
	done(fmt.Sprintf("%d layers", len(layers)))
	mergeSpan.WithExtra("rules", strconv.Itoa(len(eff.Rules))).End("")

	res.Diagnostics = append(res.Diagnostics, mergeDiags...)
	res.Origins = origins
	if diag.HasErrors(res.Diagnostics) {
		span.WithExtra("state", StateFailed.String())
		return res, nil
	}
	res.Config = eff
	span.WithExtra("state", StateResolved.String())
	return res, nil
}

// Explain describes where each effective rule came from, one line per rule
// in name order.
func Explain(res Result) []string {
	if res.Config == nil {
		return nil
	}
	names := res.Config.RuleNames()
	out := make([]string, 0, len(names))
	for _, name := range names {
		r := res.Config.Rules[name]
		out = append(out, fmt.Sprintf("%s = %s (from %s)", name, r.Severity, res.Origins.Rules[name]))
	}
	return out
}
