package gen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/l1jgo/ecsgen/internal/schema"
)

// Writer builds one Go source file line by line. Indentation is tracked so
// unformatted output stays readable; the final layout comes from the
// formatter.
type Writer struct {
	buf    bytes.Buffer
	indent int
}

func NewWriter() *Writer {
	w := &Writer{}
	w.buf.Grow(4096)
	return w
}

// Line writes one formatted line at the current indentation.
func (w *Writer) Line(format string, args ...any) {
	if format == "" {
		w.buf.WriteByte('\n')
		return
	}
	w.buf.WriteString(strings.Repeat("\t", w.indent))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

// Blank writes an empty line.
func (w *Writer) Blank() {
	w.buf.WriteByte('\n')
}

// Open writes a line ending a block opener and indents what follows.
func (w *Writer) Open(format string, args ...any) {
	w.Line(format, args...)
	w.indent++
}

// Close dedents and writes the closing line.
func (w *Writer) Close(s string) {
	if w.indent > 0 {
		w.indent--
	}
	w.Line("%s", s)
}

// Comment writes text as // comment lines.
func (w *Writer) Comment(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			w.Line("//")
			continue
		}
		w.Line("// %s", line)
	}
}

// Raw writes s verbatim, indenting each non-empty line. Lines continuing a
// multi-line raw string literal are copied unchanged.
func (w *Writer) Raw(s string) {
	raw := schema.RawStringLines(s)
	for i, line := range strings.Split(s, "\n") {
		switch {
		case raw[i]:
			w.buf.WriteString(line)
			w.buf.WriteByte('\n')
		case strings.TrimSpace(line) == "":
			w.Blank()
		default:
			w.Line("%s", line)
		}
	}
}

// Bytes returns the source written so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}
