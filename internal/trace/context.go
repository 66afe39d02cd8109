package trace

import (
	"context"
	"strings"
)

// frame is everything a resolution carries down its call chain for
// tracing: the sink, the enclosing span, the declaration file being
// resolved and the presets currently being expanded, outermost first.
type frame struct {
	tracer Tracer
	span   SpanContext
	file   string
	chain  []string
}

type frameKey struct{}

func frameOf(ctx context.Context) frame {
	if ctx == nil {
		return frame{}
	}
	f, _ := ctx.Value(frameKey{}).(frame)
	return f
}

func withFrame(ctx context.Context, f frame) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, frameKey{}, f)
}

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if t := frameOf(ctx).tracer; t != nil {
		return t
	}
	return Nop
}

func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	f := frameOf(ctx)
	f.tracer = t
	return withFrame(ctx, f)
}

// SpanContext identifies the active span and where the resolution stands.
type SpanContext struct {
	SpanID uint64
	GID    uint64
	File   string
	Preset string // "base -> react" while expanding react from base
}

// CurrentSpan returns the active span of ctx; the zero value when none.
func CurrentSpan(ctx context.Context) SpanContext {
	f := frameOf(ctx)
	sc := f.span
	sc.File = f.file
	sc.Preset = strings.Join(f.chain, " -> ")
	return sc
}

func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	f := frameOf(ctx)
	f.span = SpanContext{SpanID: sc.SpanID, GID: sc.GID}
	return withFrame(ctx, f)
}

// WithFile marks ctx as resolving the declaration at path. It resets the
// preset chain.
func WithFile(ctx context.Context, path string) context.Context {
	f := frameOf(ctx)
	f.file = path
	f.chain = nil
	return withFrame(ctx, f)
}

// WithPreset records that name is being expanded below the presets already
// in ctx.
func WithPreset(ctx context.Context, name string) context.Context {
	f := frameOf(ctx)
	f.chain = append(f.chain[:len(f.chain):len(f.chain)], name)
	return withFrame(ctx, f)
}

// stamp copies the resolution position of ctx onto ev.
func stamp(ctx context.Context, ev *Event) {
	f := frameOf(ctx)
	ev.File = f.file
	if len(f.chain) > 0 {
		ev.Preset = strings.Join(f.chain, " -> ")
	}
}
