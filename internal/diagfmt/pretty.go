package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lintconf/internal/diag"
)

type palette struct {
	fatal, err, warn, info *color.Color
	code, loc, note        *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		fatal: color.New(color.FgRed, color.Bold, color.Underline),
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		info:  color.New(color.FgCyan),
		code:  color.New(color.Bold),
		loc:   color.New(color.FgHiBlack),
		note:  color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.fatal, p.err, p.warn, p.info, p.code, p.loc, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevFatal:
		return p.fatal
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty prints diagnostics in human-readable form, in the order given.
// Each diagnostic renders as
//
//	<SEV> <CODE>: <message>
//	  --> <layer>:<field>
//	  = note: <layer>:<field>: <message>
func Pretty(w io.Writer, items []diag.Diagnostic, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		msg := d.Message
		if opts.Width > 0 {
			msg = runewidth.Truncate(msg, opts.Width, "...")
		}
		fmt.Fprintf(w, "%s %s: %s\n",
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			msg)
		if loc := location(d.Layer, d.Field, opts.PathMode, opts.BaseDir); loc != "" {
			fmt.Fprintf(w, "  %s %s\n", p.loc.Sprint("-->"), loc)
		}
		if !opts.ShowNotes && d.Code != diag.ObsTimings {
			continue
		}
		for _, n := range d.Notes {
			loc := location(n.Layer, n.Field, opts.PathMode, opts.BaseDir)
			if loc == "" {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("= note:"), n.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("= note:"), loc, n.Msg)
		}
	}
}

// Summary renders "N errors, M warnings" for the end of a run.
func Summary(items []diag.Diagnostic) string {
	var errs, warns int
	for _, d := range items {
		switch {
		case d.Severity >= diag.SevError:
			errs++
		case d.Severity == diag.SevWarning:
			warns++
		}
	}
	return fmt.Sprintf("%d %s, %d %s", errs, plural(errs, "error"), warns, plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
