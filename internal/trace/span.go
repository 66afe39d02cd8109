package trace

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	globalSeq   uint64
	globalSpans uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return atomic.AddUint64(&globalSeq, 1)
}

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 {
	return atomic.AddUint64(&globalSpans, 1)
}

// getGoroutineID parses the goroutine number out of runtime.Stack.
func getGoroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}

	buf = buf[len(prefix):]
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}

	gid, err := strconv.ParseUint(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span tracks one begin/end pair.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	gid      uint64
	scope    Scope
	name     string
	started  time.Time
	file     string
	preset   string
	extra    map[string]string
}

// Begin starts a span under parent (0 for a root span). It returns a no-op
// span when t does not emit scope.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, parent, Event{})
}

// begin emits the opening event; at carries the file and preset position
// the span belongs to.
func begin(t Tracer, scope Scope, name string, parent uint64, at Event) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop}
	}

	s := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: parent,
		gid:      getGoroutineID(),
		scope:    scope,
		name:     name,
		started:  time.Now(),
		file:     at.File,
		preset:   at.Preset,
	}
	t.Emit(&Event{
		Time:     s.started,
		Seq:      NextSeq(),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		GID:      s.gid,
		Name:     name,
		File:     s.file,
		Preset:   s.preset,
	})
	return s
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return 0
	}

	dur := time.Since(s.started)

	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
		File:     s.file,
		Preset:   s.preset,
		Extra:    s.extra,
	})

	return dur
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}

	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// PointCtx emits an instant event under the span of ctx, tagged with the
// file and preset chain ctx is resolving.
func PointCtx(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	ev := &Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: CurrentSpan(ctx).SpanID,
		GID:      getGoroutineID(),
		Name:     name,
		Detail:   detail,
	}
	stamp(ctx, ev)
	t.Emit(ev)
}

// BeginCtx starts a span whose parent is the span stored in ctx and returns
// a context carrying the new span. The span inherits the file and preset
// chain of ctx.
func BeginCtx(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	var at Event
	stamp(ctx, &at)
	span := begin(FromContext(ctx), scope, name, CurrentSpan(ctx).SpanID, at)
	if span.ID() == 0 {
		return ctx, span
	}
	return WithSpanContext(ctx, SpanContext{SpanID: span.ID(), GID: span.gid}), span
}
