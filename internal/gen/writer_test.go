package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterIndents(t *testing.T) {
	w := NewWriter()
	w.Comment("Run does\n\nthings.")
	w.Open("func Run() {")
	w.Raw("if ok {\n\treturn\n}\n\nx()")
	w.Close("}")
	w.Close(")")

	assert.Equal(t, "// Run does\n//\n// things.\nfunc Run() {\n\tif ok {\n\t\treturn\n\t}\n\n\tx()\n}\n)\n", string(w.Bytes()))
}

func TestWriterRawKeepsRawStrings(t *testing.T) {
	w := NewWriter()
	w.Open("func f() string {")
	w.Raw("s := `a\n  b\n\n`\nreturn s")
	w.Close("}")

	assert.Equal(t, "func f() string {\n\ts := `a\n  b\n\n`\n\treturn s\n}\n", string(w.Bytes()))
}
