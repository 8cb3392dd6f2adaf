package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"stark/internal/diag"
	"stark/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info *color.Color
	code, loc       *color.Color
	gutter, caret   *color.Color
	note            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		loc:    color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.loc, p.gutter, p.caret, p.note} {
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
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Диагностики без места (source.NoSpan) печатаются без пути и контекста.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var sb strings.Builder
	for _, d := range bag.Items() {
		if loc, ok := location(d.Primary, fs, opts.PathMode, opts.BaseDir); ok {
			sb.WriteString(p.loc.Sprint(loc))
			sb.WriteString(": ")
		}
		sb.WriteString(p.severity(d.Severity).Sprint(d.Severity.String()))
		sb.WriteByte(' ')
		sb.WriteString(p.code.Sprint(d.Code.ID()))
		sb.WriteString(": ")
		sb.WriteString(d.Message)
		sb.WriteByte('\n')
		if located(d.Primary, fs) {
			writeSnippet(&sb, fs, d.Primary, int(opts.Context), p)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			sb.WriteString("  ")
			sb.WriteString(p.note.Sprint("note"))
			sb.WriteString(": ")
			if loc, ok := location(n.Span, fs, opts.PathMode, opts.BaseDir); ok {
				sb.WriteString(loc)
				sb.WriteString(": ")
			}
			sb.WriteString(n.Msg)
			sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func located(sp source.Span, fs *source.FileSet) bool {
	return fs != nil && sp != source.NoSpan && fs.Has(sp.File)
}

func location(sp source.Span, fs *source.FileSet, mode PathMode, base string) (string, bool) {
	if !located(sp, fs) {
		return "", false
	}
	start, _ := fs.Resolve(sp)
	path := formatPath(fs.Get(sp.File).Path, mode, base)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col), true
}

// writeSnippet prints the primary line with context and underlines the
// span. Columns are display columns: tabs expand and wide runes count twice.
func writeSnippet(sb *strings.Builder, fs *source.FileSet, sp source.Span, context int, p palette) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	first := max(int(start.Line)-context, 1)
	last := int(start.Line) + context
	if n := len(f.LineIdx) + 1; last > n {
		last = n
	}
	width := len(strconv.Itoa(last))
	gutter := func(label string) {
		sb.WriteString(p.gutter.Sprint(fmt.Sprintf("%*s |", width, label)))
	}
	for ln := first; ln <= last; ln++ {
		text := f.Line(uint32(ln)) //nolint:gosec // bounded by the line index
		gutter(strconv.Itoa(ln))
		if text != "" {
			sb.WriteByte(' ')
			sb.WriteString(expandTabs(text))
		}
		sb.WriteByte('\n')
		if ln != int(start.Line) {
			continue
		}
		from := int(start.Col) - 1
		to := len(text)
		if end.Line == start.Line {
			to = int(end.Col) - 1
		}
		from = min(from, len(text))
		to = min(max(to, from), len(text))
		pad := displayWidth(text[:from])
		mark := max(displayWidth(text[from:to]), 1)
		gutter("")
		sb.WriteByte(' ')
		sb.WriteString(strings.Repeat(" ", pad))
		sb.WriteString(p.caret.Sprint("^" + strings.Repeat("~", mark-1)))
		sb.WriteByte('\n')
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}
