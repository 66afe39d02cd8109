package observ

import (
	"context"
	"sync"
	"time"
)

// Phase is one timed step of a resolution. Phases started while another is
// open nest under it; Layer names the configuration layer a phase worked
// on, empty for file-level phases.
type Phase struct {
	Name  string
	Layer string
	Depth int
	Start time.Time
	Dur   time.Duration
	Note  string
	done  bool
}

// Timer records the phases of one file's resolution. The engine reports
// per-layer phases into the timer found in its context.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	open   int
}

func NewTimer() *Timer { return &Timer{} }

// Begin starts a file-level phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	return t.BeginLayer(name, "")
}

// BeginLayer starts a phase working on layer.
func (t *Timer) BeginLayer(name, layer string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Layer: layer, Depth: t.open, Start: time.Now()})
	t.open++
	return len(t.phases) - 1
}

// End finishes the phase at idx. Unknown or finished indexes are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) || t.phases[idx].done {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
	p.done = true
	t.open--
}

type ctxKey struct{}

func WithTimer(ctx context.Context, t *Timer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the timer of ctx or nil; a nil Timer records nothing.
func FromContext(ctx context.Context) *Timer {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(ctxKey{}).(*Timer)
	return t
}

// Track starts a phase on the timer of ctx and returns the function that
// ends it.
func Track(ctx context.Context, name, layer string) func(note string) {
	t := FromContext(ctx)
	idx := t.BeginLayer(name, layer)
	return func(note string) { t.End(idx, note) }
}

type PhaseReport struct {
	Name       string  `json:"name"`
	Layer      string  `json:"layer,omitempty"`
	Depth      int     `json:"depth,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serializable form of a Timer. TotalMS sums the top-level
// phases only, so nested layer phases are not counted twice.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Slowest returns the longest layer phase, if any.
func (r Report) Slowest() (PhaseReport, bool) {
	var best PhaseReport
	found := false
	for _, p := range r.Phases {
		if p.Layer == "" {
			continue
		}
		if !found || p.DurationMS > best.DurationMS {
			best, found = p, true
		}
	}
	return best, found
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		if p.Depth == 0 {
			total += p.Dur
		}
		report.Phases[i] = PhaseReport{
			Name:       p.Name,
			Layer:      p.Layer,
			Depth:      p.Depth,
			DurationMS: millis(p.Dur),
			Note:       p.Note,
		}
	}
	report.TotalMS = millis(total)
	return report
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
