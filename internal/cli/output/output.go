// Package output renders CLI results as tables, JSON or plain text.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeTable Mode = "table"
	ModeJSON  Mode = "json"
	ModePlain Mode = "plain"
)

// ParseMode returns the mode for name. Empty selects ModeTable.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(name)); m {
	case "":
		return ModeTable, nil
	case ModeTable, ModeJSON, ModePlain:
		return m, nil
	default:
		return "", fmt.Errorf("invalid output format %q (want table, json or plain)", name)
	}
}

// Renderer writes command output.
type Renderer struct {
	out    io.Writer
	err    io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a renderer writing results to out and diagnostics to
// errOut.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeTable
	}
	return &Renderer{out: out, err: errOut, mode: mode, styles: DefaultStyles()}
}

// Mode returns the output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// Styles returns the styles used for text output.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the result writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes a line to the result writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the result writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Errorf writes a styled error line to the diagnostics writer.
func (r *Renderer) Errorf(format string, a ...any) {
	_, _ = fmt.Fprintln(r.err, r.styles.Error.Render("Error: "+fmt.Sprintf(format, a...)))
}

// Warnf writes a styled warning line to the diagnostics writer.
func (r *Renderer) Warnf(format string, a ...any) {
	_, _ = fmt.Fprintln(r.err, r.styles.Warning.Render(fmt.Sprintf(format, a...)))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes a light-style table. In plain mode the rows are written tab
// separated without the header.
func (r *Renderer) Table(header []string, rows [][]any) {
	if r.mode == ModePlain {
		for _, row := range rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = FormatValue(v)
			}
			r.Println(strings.Join(cells, "\t"))
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	// headers are column names; keep their case
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = FormatValue(v)
		}
		t.AppendRow(tr)
	}
	t.Render()
}

// FormatValue renders a scanned or bound value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
