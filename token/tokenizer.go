package token

import (
	"unicode"
	"unicode/utf8"

	"github.com/smasher164/xid"
	"github.com/vippsas/clausewitz/clzerr"
)

// Tokenizer lexes raw UTF-8 text into a lazy, single-pass sequence of
// Tokens, per spec §4.1. Scanning allocates a peek record and a *Token for
// each token produced, in addition to the rune-offset table that RuneIndex
// builds lazily.
//
// Once Next returns an error, the tokenizer has stopped: every subsequent
// call returns (nil, nil) — this is the "iterator view" spec §4.1
// describes, built directly into Next/Peek rather than as a separate
// wrapper, since Go has no natural analogue of a fused-on-first-None/Err
// iterator adapter. Peek reports a pending error without stopping the
// tokenizer, so the Next that follows it returns that same error.
type Tokenizer struct {
	src    string
	cursor int // byte offset of the next not-yet-produced token

	peeked *peekResult

	stopped bool
	lastErr *clzerr.Error

	// lastNewlineSkipped reports whether the whitespace/comment run
	// immediately before the most recently returned token contained a
	// newline. It is exposed through NewlineBeforeLastToken.
	lastNewlineSkipped bool

	// runeOffsets[i] is the byte offset of the i-th rune boundary in src,
	// built lazily up to runeBytesCovered as RuneIndex needs it.
	runeOffsets      []int
	runeBytesCovered int
}

// Mark is an opaque saved tokenizer position for save/restore.
type Mark int

func New(src string) *Tokenizer {
	return &Tokenizer{src: src}
}

// Position returns the current byte-offset cursor.
func (t *Tokenizer) Position() int {
	return t.cursor
}

// Source returns the original source string the tokenizer was built from.
func (t *Tokenizer) Source() string {
	return t.src
}

// Mark saves the current position.
func (t *Tokenizer) Mark() Mark {
	return Mark(t.cursor)
}

// Reset restores a previously saved position. Any cached peek and any
// stopped/error state is cleared, since the caller is explicitly rewinding
// past whatever triggered it.
func (t *Tokenizer) Reset(m Mark) {
	t.cursor = int(m)
	t.peeked = nil
	t.stopped = false
	t.lastErr = nil
}

// Err returns the error that stopped the tokenizer, if any.
func (t *Tokenizer) Err() *clzerr.Error {
	return t.lastErr
}

// SliceFor returns the borrowed source slice a token denotes.
func (t *Tokenizer) SliceFor(tok Token) string {
	return t.src[tok.Offset:tok.End()]
}

// DateFor parses the four date fields out of a Date-kind token's lexeme.
func (t *Tokenizer) DateFor(tok Token) (Date, error) {
	return ParseDate(t.SliceFor(tok))
}

// NewlineBeforeLastToken reports whether a newline was skipped as
// whitespace immediately before the token most recently returned by Next.
func (t *Tokenizer) NewlineBeforeLastToken() bool {
	return t.lastNewlineSkipped
}

type peekResult struct {
	tok            *Token
	newCursor      int
	newlineSkipped bool
	err            *clzerr.Error
}

func (t *Tokenizer) ensurePeek() *peekResult {
	if t.peeked == nil {
		tok, newCursor, nlSkipped, err := t.scanFrom(t.cursor)
		t.peeked = &peekResult{tok: tok, newCursor: newCursor, newlineSkipped: nlSkipped, err: err}
	}
	return t.peeked
}

// Peek returns the next token without consuming it. A nil Token and nil
// error means EOF (spec's None). Calling Peek repeatedly, or Peek then
// Next, is idempotent per spec §8.
func (t *Tokenizer) Peek() (*Token, *clzerr.Error) {
	if t.stopped {
		return nil, nil
	}
	p := t.ensurePeek()
	return p.tok, p.err
}

// PeekNewlineBefore reports whether the whitespace/comment run between the
// current cursor and the next (peeked but not yet consumed) token contains
// a newline. The reader's ReadStringlike relies on this to implement
// significant-newline value elision.
func (t *Tokenizer) PeekNewlineBefore() bool {
	if t.stopped {
		return false
	}
	return t.ensurePeek().newlineSkipped
}

// Next consumes and returns the next token.
func (t *Tokenizer) Next() (*Token, *clzerr.Error) {
	if t.stopped {
		return nil, nil
	}
	p := t.ensurePeek()
	t.peeked = nil
	if p.err != nil {
		t.stopped = true
		t.lastErr = p.err
		return nil, p.err
	}
	t.cursor = p.newCursor
	t.lastNewlineSkipped = p.newlineSkipped
	return p.tok, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == ':'
}

// scanFrom scans exactly one token (skipping leading whitespace/comments)
// starting at byte offset pos. It never mutates t.cursor; the caller
// commits the returned newCursor.
func (t *Tokenizer) scanFrom(pos int) (tok *Token, newPos int, newlineSkipped bool, err *clzerr.Error) {
	src := t.src
	i := pos

	for i < len(src) {
		r, w := utf8.DecodeRuneInString(src[i:])
		if r == '#' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		}
		if unicode.IsSpace(r) {
			if r == '\n' {
				newlineSkipped = true
			}
			i += w
			continue
		}
		break
	}

	if i >= len(src) {
		return nil, i, newlineSkipped, nil
	}

	start := i
	r, w := utf8.DecodeRuneInString(src[i:])

	mk := func(k Kind, length int) *Token {
		return &Token{Kind: k, Offset: start, Length: length}
	}

	switch r {
	case '{':
		return mk(OpenBrace, w), i + w, newlineSkipped, nil
	case '}':
		return mk(CloseBrace, w), i + w, newlineSkipped, nil
	case '=':
		return mk(Equals, w), i + w, newlineSkipped, nil
	case '>':
		if r2, w2 := utf8.DecodeRuneInString(src[i+w:]); r2 == '=' {
			return mk(GreaterThanEq, w+w2), i + w + w2, newlineSkipped, nil
		}
		return mk(GreaterThan, w), i + w, newlineSkipped, nil
	case '<':
		if r2, w2 := utf8.DecodeRuneInString(src[i+w:]); r2 == '=' {
			return mk(LessThanEq, w+w2), i + w + w2, newlineSkipped, nil
		}
		return mk(LessThan, w), i + w, newlineSkipped, nil
	case '?':
		if r2, w2 := utf8.DecodeRuneInString(src[i+w:]); r2 == '=' {
			return mk(ExistenceCheck, w+w2), i + w + w2, newlineSkipped, nil
		}
		return nil, i, newlineSkipped, clzerr.New(clzerr.TokenizerError, start, "unexpected character %q, expected '?='", r)
	case '"':
		tok, newPos, _, err = t.scanString(i+w, start)
		return tok, newPos, newlineSkipped, err
	}

	if r == '.' {
		return nil, i, newlineSkipped, clzerr.New(clzerr.TokenizerError, start, "number or date cannot start with '.'")
	}

	if r == '-' || (r >= '0' && r <= '9') {
		tok, newPos, _, err = t.scanNumberOrDate(i, start)
		return tok, newPos, newlineSkipped, err
	}

	if isIdentStart(src[i]) {
		tok, newPos, _, err = t.scanIdentifier(i, start)
		return tok, newPos, newlineSkipped, err
	}

	if looksLikeUnicodeIdentifier(r) {
		return nil, i, newlineSkipped, clzerr.New(clzerr.TokenizerError, start,
			"unexpected character %q: identifiers in this dialect are ASCII-only ([_A-Za-z][_A-Za-z0-9:]*)", r)
	}
	return nil, i, newlineSkipped, clzerr.New(clzerr.TokenizerError, start, "unexpected character %q", r)
}

func (t *Tokenizer) scanString(i, start int) (*Token, int, bool, *clzerr.Error) {
	src := t.src
	for i < len(src) {
		if src[i] == '"' {
			return &Token{Kind: String, Offset: start, Length: i + 1 - start}, i + 1, false, nil
		}
		_, w := utf8.DecodeRuneInString(src[i:])
		i += w
	}
	return nil, i, false, clzerr.New(clzerr.TokenizerError, start, "unterminated string literal")
}

func (t *Tokenizer) scanIdentifier(i, start int) (*Token, int, bool, *clzerr.Error) {
	src := t.src
	for i < len(src) && isIdentCont(src[i]) {
		i++
	}
	lexeme := src[start:i]
	if lexeme == "yes" || lexeme == "no" {
		return &Token{Kind: Boolean, Offset: start, Length: i - start}, i, false, nil
	}
	return &Token{Kind: Identifier, Offset: start, Length: i - start}, i, false, nil
}

// scanNumberOrDate implements the dotted-component classification rules of
// spec §4.1: 0 or 1 '.' separators is a Number, 2 or 3 is a Date, 4+ is an
// error, and a dangling '.' (no digits following) is always an error. A
// bare '-' not followed by a digit is an error.
func (t *Tokenizer) scanNumberOrDate(i, start int) (*Token, int, bool, *clzerr.Error) {
	src := t.src
	negative := false
	if src[i] == '-' {
		negative = true
		i++
		if i >= len(src) || !isDigit(src[i]) {
			return nil, i, false, clzerr.New(clzerr.TokenizerError, start, "bare '-' is not a valid number")
		}
	}

	readDigits := func() int {
		j := i
		for j < len(src) && isDigit(src[j]) {
			j++
		}
		n := j - i
		i = j
		return n
	}

	readDigits()
	dotCount := 0
	for i < len(src) && src[i] == '.' {
		dotCount++
		if dotCount > 3 {
			return nil, i, false, clzerr.New(clzerr.TokenizerError, start, "number or date has too many '.' components")
		}
		i++ // consume '.'
		if readDigits() == 0 {
			return nil, i, false, clzerr.New(clzerr.TokenizerError, start, "number or date ends in '.'")
		}
	}

	kind := Number
	if dotCount >= 2 {
		kind = Date
		if negative {
			return nil, i, false, clzerr.New(clzerr.TokenizerError, start, "dates cannot be negative")
		}
	}
	return &Token{Kind: kind, Offset: start, Length: i - start}, i, false, nil
}

// ensureRuneOffsets extends the lazily built rune-boundary table up to
// byte offset upTo.
func (t *Tokenizer) ensureRuneOffsets(upTo int) {
	if upTo > len(t.src) {
		upTo = len(t.src)
	}
	for t.runeBytesCovered < upTo {
		_, w := utf8.DecodeRuneInString(t.src[t.runeBytesCovered:])
		if w == 0 {
			break
		}
		t.runeOffsets = append(t.runeOffsets, t.runeBytesCovered)
		t.runeBytesCovered += w
	}
}

// RuneIndex returns the 0-based rune index corresponding to a byte offset,
// extending the lazy rune-offset table as needed. Repeated calls reuse the
// table instead of re-decoding UTF-8 from the start of the source each
// time. Context does not use it: its line/col math is byte-based.
func (t *Tokenizer) RuneIndex(byteOffset int) int {
	t.ensureRuneOffsets(byteOffset)
	lo, hi := 0, len(t.runeOffsets)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.runeOffsets[mid] < byteOffset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Context builds source context around a byte offset for error reporting,
// per spec §4.5's ErrorContext.
func (t *Tokenizer) Context(offset, contextLines int) clzerr.Context {
	return clzerr.BuildContext(t.src, offset, contextLines)
}

// looksLikeUnicodeIdentifier reports whether r would begin an identifier in
// a broader Unicode sense (per golang.org/x/tools-adjacent github.com/smasher164/xid,
// the same classification used by Go's own identifier grammar) even though
// this dialect's identifiers are ASCII-only. It exists purely to produce a
// clearer TokenizerError message than "unexpected character" when a user
// pastes in a non-ASCII identifier-like name.
func looksLikeUnicodeIdentifier(r rune) bool {
	return xid.Start(r) || xid.Continue(r)
}
