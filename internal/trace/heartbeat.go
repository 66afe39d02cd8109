package trace

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Heartbeat is a Tracer that forwards to another and, every interval,
// emits a heartbeat naming the declaration files whose spans are still
// open and how long they have been running. A file that keeps showing up
// is a resolution that does not finish.
type Heartbeat struct {
	next     Tracer
	interval time.Duration

	mu   sync.Mutex
	open map[uint64]openSpan
	beat uint64

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type openSpan struct {
	file    string
	started time.Time
}

// StartHeartbeat wraps t and starts beating. It returns nil when t is off or
// interval is not positive; callers keep using t directly then.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		next:     t,
		interval: interval,
		open:     make(map[uint64]openSpan),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

// Emit tracks spans that belong to a file and forwards ev.
func (h *Heartbeat) Emit(ev *Event) {
	if ev == nil {
		return
	}
	if ev.File != "" && ev.SpanID != 0 {
		h.mu.Lock()
		switch ev.Kind {
		case KindSpanBegin:
			h.open[ev.SpanID] = openSpan{file: ev.File, started: ev.Time}
		case KindSpanEnd:
			delete(h.open, ev.SpanID)
		}
		h.mu.Unlock()
	}
	h.next.Emit(ev)
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			h.emitBeat(now)
		case <-h.stop:
			return
		}
	}
}

func (h *Heartbeat) emitBeat(now time.Time) {
	h.mu.Lock()
	h.beat++
	detail := fmt.Sprintf("#%d %s", h.beat, h.pendingLocked(now))
	h.mu.Unlock()

	h.next.Emit(&Event{
		Time:   now,
		Seq:    NextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		GID:    getGoroutineID(),
		Name:   "heartbeat",
		Detail: detail,
	})
}

// pendingLocked lists open files, longest running first, each with the age
// of its oldest open span.
func (h *Heartbeat) pendingLocked(now time.Time) string {
	if len(h.open) == 0 {
		return "idle"
	}
	oldest := make(map[string]time.Time)
	for _, s := range h.open {
		if t, ok := oldest[s.file]; !ok || s.started.Before(t) {
			oldest[s.file] = s.started
		}
	}
	files := make([]string, 0, len(oldest))
	for f := range oldest {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		if !oldest[files[i]].Equal(oldest[files[j]]) {
			return oldest[files[i]].Before(oldest[files[j]])
		}
		return files[i] < files[j]
	})
	parts := make([]string, len(files))
	for i, f := range files {
		parts[i] = fmt.Sprintf("%s %s", f, now.Sub(oldest[f]).Round(time.Millisecond))
	}
	return fmt.Sprintf("%d open: %s", len(files), strings.Join(parts, ", "))
}

// Stop ends the heartbeat goroutine. It is safe to call more than once and
// on a nil Heartbeat.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Heartbeat) Flush() error  { return h.next.Flush() }
func (h *Heartbeat) Close() error  { return h.next.Close() }
func (h *Heartbeat) Level() Level  { return h.next.Level() }
func (h *Heartbeat) Enabled() bool { return h.next.Enabled() }
