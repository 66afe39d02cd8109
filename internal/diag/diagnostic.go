package diag

// Note attaches secondary context, usually pointing at another layer.
type Note struct {
	Layer string
	Field string
	Msg   string
}

// Diagnostic is one validation, merge or expansion problem.
// Layer is the identity of the offending layer (file path or
// "preset:<name>#<index>"), Field the dotted path inside it.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Layer    string
	Field    string
	Notes    []Note
}

func New(sev Severity, code Code, layer, field, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Layer:    layer,
		Field:    field,
	}
}

func NewError(code Code, layer, field, msg string) Diagnostic {
	return New(SevError, code, layer, field, msg)
}

func NewFatal(code Code, layer, field, msg string) Diagnostic {
	return New(SevFatal, code, layer, field, msg)
}

func (d Diagnostic) WithNote(layer, field, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Layer: layer, Field: field, Msg: msg})
	return d
}

// Location renders "layer:field" (or just the layer when field is empty).
func (d Diagnostic) Location() string {
	if d.Field == "" {
		return d.Layer
	}
	if d.Layer == "" {
		return d.Field
	}
	return d.Layer + ":" + d.Field
}
