package diag

import (
	"stark/internal/source"
)

// Severity orders diagnostics; anything at SevError or above fails a build.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one message about a declaration, an expression or the
// manifest. Primary is source.NoSpan when nothing in the input is to blame,
// e.g. a metadata table overflow.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// Promoted returns d with a warning raised to an error.
func (d Diagnostic) Promoted() Diagnostic {
	if d.Severity == SevWarning {
		d.Severity = SevError
	}
	return d
}
