package clzerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vippsas/clausewitz/clzerr"
)

func TestKind_String(t *testing.T) {
	cases := map[clzerr.Kind]string{
		clzerr.Message:         "Message",
		clzerr.TokenizerError:  "TokenizerError",
		clzerr.UnexpectedToken: "UnexpectedToken",
		clzerr.InvalidNumber:   "InvalidNumber",
		clzerr.InvalidType:     "InvalidType",
		clzerr.InvalidValue:    "InvalidValue",
		clzerr.InvalidState:    "InvalidState",
		clzerr.DepthMismatch:   "DepthMismatch",
		clzerr.MissingField:    "MissingField",
		clzerr.DuplicateField:  "DuplicateField",
		clzerr.UnknownField:    "UnknownField",
		clzerr.UnknownVariant:  "UnknownVariant",
		clzerr.Kind(999):       "Unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestError_ErrorWithoutContext(t *testing.T) {
	err := clzerr.New(clzerr.InvalidNumber, 7, "bad number %q", "abc")
	assert.Equal(t, `InvalidNumber at byte 7: bad number "abc"`, err.Error())
}

func TestLineCol(t *testing.T) {
	src := "abc\ndef\nghi"
	cases := []struct {
		offset   int
		line,col int
	}{
		{0, 1, 1},
		{3, 1, 4},
		{4, 2, 1},
		{7, 2, 4},
		{8, 3, 1},
		{100, 3, 4}, // clamped to end of source
	}
	for _, c := range cases {
		line, col := clzerr.LineCol(src, c.offset)
		assert.Equal(t, c.line, line, "offset %d line", c.offset)
		assert.Equal(t, c.col, col, "offset %d col", c.offset)
	}
}

func TestBuildContext_CentersOnOffendingLine(t *testing.T) {
	src := "line1\nline2\nline3\nline4\nline5"
	ctx := clzerr.BuildContext(src, 12, 1) // offset 12 is in "line3"
	require.Equal(t, 2, ctx.FirstLineNo)
	assert.Equal(t, []string{"line2", "line3", "line4"}, ctx.Lines)
	assert.Equal(t, 3, ctx.CaretLine)
	assert.Equal(t, 1, ctx.CaretCol)
}

func TestBuildContext_ClampsAtDocumentBoundaries(t *testing.T) {
	src := "only one line"
	ctx := clzerr.BuildContext(src, 3, 5)
	assert.Equal(t, 1, ctx.FirstLineNo)
	assert.Equal(t, []string{"only one line"}, ctx.Lines)
}

func TestContext_RenderPlacesCaret(t *testing.T) {
	ctx := clzerr.BuildContext("abcdef", 3, 0)
	rendered := ctx.Render()
	assert.Contains(t, rendered, "abcdef")
	assert.Contains(t, rendered, "^")
}

func TestError_WithContext_FirstAttacherWins(t *testing.T) {
	err := clzerr.New(clzerr.UnexpectedToken, 2, "boom")
	err.WithContext("abcdef", 1)
	first := err.Context
	err.WithContext("zzzzzz", 1)
	assert.Same(t, first, err.Context)
}

func TestMultiError_EmptyAndAdd(t *testing.T) {
	var m clzerr.MultiError
	assert.True(t, m.Empty())

	m.Add("doc1", clzerr.New(clzerr.MissingField, 0, "missing x"))
	m.Add("doc2", clzerr.New(clzerr.UnknownField, 5, "unknown y"))
	assert.False(t, m.Empty())

	s := m.Error()
	assert.Contains(t, s, "2 parse error(s)")
	assert.Contains(t, s, "doc1")
	assert.Contains(t, s, "doc2")
	assert.Contains(t, s, "missing x")
	assert.Contains(t, s, "unknown y")
}
