package diag

type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag that keeps at most max diagnostics (0 = unlimited).
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add stores d unless the limit is reached. The limit only trims warnings
// and infos; errors and fatals are always kept so that a full bag never
// hides a failure.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max && d.Severity < SevError {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Attach stores d regardless of the limit. It is for diagnostics the tool
// itself adds, such as timings, which the user asked for explicitly.
func (b *Bag) Attach(d Diagnostic) {
	b.items = append(b.items, d)
}

// HasErrors reports whether any diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic has Severity >= Warning.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the internal slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasErrors reports whether items contain an error or fatal diagnostic.
func HasErrors(items []Diagnostic) bool {
	for i := range items {
		if items[i].Severity >= SevError {
			return true
		}
	}
	return false
}
