package diag

// Reporter is the minimal sink producers emit diagnostics into.
// Implementations: BagReporter, SliceReporter, DedupReporter.
type Reporter interface {
	Report(code Code, sev Severity, layer, field, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, layer, field, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, layer, field, msg),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, layer, field, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, layer, field, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, layer, field, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, layer, field, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(layer, field, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(layer, field, msg)
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Layer, b.diag.Field, b.diag.Message, b.diag.Notes)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, layer, field, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Layer: layer, Field: field, Notes: notes,
	})
}

// SliceReporter appends into a plain slice; the validator and merger use it
// because their contracts return []Diagnostic.
type SliceReporter struct{ Items *[]Diagnostic }

func (r SliceReporter) Report(code Code, sev Severity, layer, field, msg string, notes []Note) {
	if r.Items == nil {
		return
	}
	*r.Items = append(*r.Items, Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Layer: layer, Field: field, Notes: notes,
	})
}
