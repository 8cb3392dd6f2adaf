package diagfmt

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Table prints rows in aligned columns. Widths are display widths, so names
// with wide runes still line up.
type Table struct {
	header []string
	rows   [][]string
	color  bool
}

// NewTable starts a table with the given column headers.
func NewTable(header ...string) *Table {
	return &Table{header: header}
}

// WithColor makes the header bold.
func (t *Table) WithColor(on bool) *Table {
	t.color = on
	return t
}

// Row appends one row. Missing cells are blank and extra cells are kept.
func (t *Table) Row(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) Len() int { return len(t.rows) }

// Render writes the table. The last column is not padded.
func (t *Table) Render(w io.Writer) error {
	var widths []int
	measure := func(cells []string) {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	measure(t.header)
	for _, r := range t.rows {
		measure(r)
	}

	bold := color.New(color.Bold)
	if t.color {
		bold.EnableColor()
	} else {
		bold.DisableColor()
	}
	var sb strings.Builder
	line := func(cells []string, style *color.Color) {
		var row strings.Builder
		for i, c := range cells {
			if i > 0 {
				row.WriteString("  ")
			}
			if i == len(cells)-1 {
				row.WriteString(c)
				break
			}
			row.WriteString(runewidth.FillRight(c, widths[i]))
		}
		text := strings.TrimRight(row.String(), " ")
		if style != nil {
			text = style.Sprint(text)
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	if len(t.header) > 0 {
		line(t.header, bold)
	}
	for _, r := range t.rows {
		line(r, nil)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
