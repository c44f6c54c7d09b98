// Package clzerr defines the error model shared by the tokenizer, reader,
// value tree, and decode packages: a small set of typed error kinds, each
// carrying a byte offset into the original source plus an optional rendered
// context block.
package clzerr

import (
	"fmt"
	"strings"
)

// Kind classifies an Error. The zero value is never used by a constructed
// Error; Message is the open-ended fallback kind.
type Kind int

const (
	Message Kind = iota
	TokenizerError
	UnexpectedToken
	InvalidNumber
	InvalidType
	InvalidValue
	InvalidState
	DepthMismatch
	MissingField
	DuplicateField
	UnknownField
	UnknownVariant
)

func (k Kind) String() string {
	switch k {
	case Message:
		return "Message"
	case TokenizerError:
		return "TokenizerError"
	case UnexpectedToken:
		return "UnexpectedToken"
	case InvalidNumber:
		return "InvalidNumber"
	case InvalidType:
		return "InvalidType"
	case InvalidValue:
		return "InvalidValue"
	case InvalidState:
		return "InvalidState"
	case DepthMismatch:
		return "DepthMismatch"
	case MissingField:
		return "MissingField"
	case DuplicateField:
		return "DuplicateField"
	case UnknownField:
		return "UnknownField"
	case UnknownVariant:
		return "UnknownVariant"
	default:
		return "Unknown"
	}
}

// Error is the single error type produced anywhere in the parsing pipeline.
type Error struct {
	Kind    Kind
	Offset  int
	Msg     string
	Context *Context // nil until attached, see WithContext
}

func (e *Error) Error() string {
	if e.Context != nil {
		return fmt.Sprintf("%s at byte %d: %s\n%s", e.Kind, e.Offset, e.Msg, e.Context.Render())
	}
	return fmt.Sprintf("%s at byte %d: %s", e.Kind, e.Offset, e.Msg)
}

// New constructs an Error with no context attached yet.
func New(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// WithContext attaches source context to e if it doesn't already have one,
// and returns e. Higher layers call this on the way back up the call stack
// so the first (innermost) attacher wins.
func (e *Error) WithContext(source string, contextLines int) *Error {
	if e.Context == nil {
		c := BuildContext(source, e.Offset, contextLines)
		e.Context = &c
	}
	return e
}

// Context is a handful of source lines centered on an offset, with a caret
// marking the exact column.
type Context struct {
	Lines       []string
	FirstLineNo int // 1-based line number of Lines[0]
	CaretLine   int // 1-based line number of the offending offset
	CaretCol    int // 1-based column of the offending offset
}

// LineCol converts a byte offset into 1-based (line, col) coordinates.
func LineCol(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	line = 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart + 1
}

// BuildContext extracts up to contextLines lines before and after the line
// containing offset, centered on it.
func BuildContext(source string, offset int, contextLines int) Context {
	if contextLines < 0 {
		contextLines = 0
	}
	allLines := strings.Split(source, "\n")
	caretLine, caretCol := LineCol(source, offset)

	first := caretLine - contextLines
	if first < 1 {
		first = 1
	}
	last := caretLine + contextLines
	if last > len(allLines) {
		last = len(allLines)
	}

	lines := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		lines = append(lines, allLines[i-1])
	}

	return Context{
		Lines:       lines,
		FirstLineNo: first,
		CaretLine:   caretLine,
		CaretCol:    caretCol,
	}
}

// Render formats the context as a handful of numbered lines with a caret
// under the offending column.
func (c Context) Render() string {
	var b strings.Builder
	for i, line := range c.Lines {
		lineNo := c.FirstLineNo + i
		fmt.Fprintf(&b, "%5d | %s\n", lineNo, line)
		if lineNo == c.CaretLine {
			fmt.Fprintf(&b, "      | %s^\n", strings.Repeat(" ", max(0, c.CaretCol-1)))
		}
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MultiError aggregates errors from parsing several independent documents,
// in the manner of the teacher's SQLCodeParseErrors aggregate.
type MultiError struct {
	Errors []*Error
	// Names holds the source name associated with each entry in Errors,
	// parallel by index (e.g. a file path or Session key).
	Names []string
}

func (m *MultiError) Add(name string, err *Error) {
	m.Names = append(m.Names, name)
	m.Errors = append(m.Errors, err)
}

func (m *MultiError) Empty() bool {
	return len(m.Errors) == 0
}

func (m *MultiError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "clausewitz: %d parse error(s):\n", len(m.Errors))
	for i, e := range m.Errors {
		fmt.Fprintf(&b, "%s: %s\n", m.Names[i], e.Error())
	}
	return b.String()
}
