// Package reader layers a grammar-aware view over the token package: enter
// and leave collections, identify the next property, distinguish sequences
// from maps, and classify the next value's coarse type, per spec §4.2.
package reader

import (
	"github.com/vippsas/clausewitz/clzerr"
	"github.com/vippsas/clausewitz/token"
)

// CollectionKind distinguishes a brace group containing KEY = VALUE pairs
// (Object) from one containing bare values (Array).
type CollectionKind int

const (
	Array CollectionKind = iota + 1
	Object
)

func (k CollectionKind) String() string {
	if k == Object {
		return "Object"
	}
	return "Array"
}

// Key is an object key: either an identifier or a date, per spec §3.
type Key struct {
	IsDate bool
	Ident  string
	Date   token.Date
}

func (k Key) String() string {
	if k.IsDate {
		return k.Date.String()
	}
	return k.Ident
}

// Reader wraps a Tokenizer with collection-depth bookkeeping. It is
// single-use: once an operation returns an error, continued use has
// undefined semantics beyond "returns errors" (spec §4.2's failure mode).
// There is exactly one active Reader per parse (spec §5).
type Reader struct {
	tk    *token.Tokenizer
	depth int
}

func New(source string) *Reader {
	return &Reader{tk: token.New(source)}
}

// Tokenizer exposes the underlying tokenizer for low-level consumers
// (spec §6's "Reader::new(source) plus the operations of §4.2").
func (r *Reader) Tokenizer() *token.Tokenizer {
	return r.tk
}

// Depth returns the current collection depth; zero at the top level.
func (r *Reader) Depth() int {
	return r.depth
}

func (r *Reader) errf(kind clzerr.Kind, offset int, format string, args ...any) *clzerr.Error {
	return clzerr.New(kind, offset, format, args...)
}

// BeginCollection consumes '{' and increments depth.
func (r *Reader) BeginCollection() *clzerr.Error {
	tok, err := r.tk.Next()
	if err != nil {
		return err
	}
	if tok == nil || tok.Kind != token.OpenBrace {
		return r.unexpected(tok, "'{'")
	}
	r.depth++
	return nil
}

// EndCollection consumes '}' and decrements depth. Consuming '}' when depth
// is already zero is a DepthMismatch.
func (r *Reader) EndCollection() *clzerr.Error {
	if r.depth == 0 {
		return r.errf(clzerr.DepthMismatch, r.tk.Position(), "end_collection called at depth zero")
	}
	tok, err := r.tk.Next()
	if err != nil {
		return err
	}
	if tok == nil || tok.Kind != token.CloseBrace {
		return r.unexpected(tok, "'}'")
	}
	r.depth--
	return nil
}

func (r *Reader) unexpected(tok *token.Token, expected string) *clzerr.Error {
	if tok == nil {
		return r.errf(clzerr.UnexpectedToken, r.tk.Position(), "unexpected end of input, expected %s", expected)
	}
	return r.errf(clzerr.UnexpectedToken, tok.Offset, "unexpected token %s, expected %s", r.tk.SliceFor(*tok), expected)
}

// NextProperty peeks the next key/value pair at the current map scope: it
// returns ok=false if EOF at depth zero or if the next token is '}' (the
// caller then calls EndCollection itself). Otherwise it requires the next
// token to be Identifier or Date, consumes it as the key, requires '=',
// then peeks (without consuming) the value's coarse Real type. EOF right
// after the '=' is an elided final value: it returns ok=true with a zero
// Real, leaving ReadStringlike/IsNextValueEmpty to report the elision.
func (r *Reader) NextProperty() (key Key, valueReal token.Real, ok bool, err *clzerr.Error) {
	tok, perr := r.tk.Peek()
	if perr != nil {
		return Key{}, 0, false, perr
	}
	if tok == nil {
		if r.depth == 0 {
			return Key{}, 0, false, nil
		}
		return Key{}, 0, false, r.errf(clzerr.UnexpectedToken, r.tk.Position(), "unexpected end of input inside collection, expected property or '}'")
	}
	if tok.Kind == token.CloseBrace {
		return Key{}, 0, false, nil
	}
	if tok.Kind != token.Identifier && tok.Kind != token.Date {
		return Key{}, 0, false, r.unexpected(tok, "a property key (identifier or date)")
	}

	keyTok, nerr := r.tk.Next()
	if nerr != nil {
		return Key{}, 0, false, nerr
	}
	if keyTok.Kind == token.Date {
		d, derr := r.tk.DateFor(*keyTok)
		if derr != nil {
			return Key{}, 0, false, r.errf(clzerr.InvalidValue, keyTok.Offset, "%s", derr)
		}
		key = Key{IsDate: true, Date: d}
	} else {
		key = Key{Ident: r.tk.SliceFor(*keyTok)}
	}

	eq, eerr := r.tk.Next()
	if eerr != nil {
		return Key{}, 0, false, eerr
	}
	if eq == nil || eq.Kind != token.Equals {
		return Key{}, 0, false, r.unexpected(eq, "'='")
	}

	valTok, verr := r.tk.Peek()
	if verr != nil {
		return Key{}, 0, false, verr
	}
	if valTok == nil {
		return key, 0, true, nil
	}
	return key, token.RealOf(valTok.Kind), true, nil
}

// NextArrayValue peeks: returns the Real type of the next array element, or
// ok=false at '}' or EOF.
func (r *Reader) NextArrayValue() (valueReal token.Real, ok bool, err *clzerr.Error) {
	tok, perr := r.tk.Peek()
	if perr != nil {
		return 0, false, perr
	}
	if tok == nil || tok.Kind == token.CloseBrace {
		return 0, false, nil
	}
	return token.RealOf(tok.Kind), true, nil
}

// IsCollectionEnded reports whether the next token is '}' (or EOF), for
// array-recursion loops to test against.
func (r *Reader) IsCollectionEnded() (bool, *clzerr.Error) {
	tok, err := r.tk.Peek()
	if err != nil {
		return false, err
	}
	return tok == nil || tok.Kind == token.CloseBrace, nil
}

// TryDiscernArrayOrMap is called before BeginCollection when the caller
// must choose between sequence and map. It assumes the next token is '{'.
// It saves position, consumes '{', inspects the token(s) after it, then
// restores position so the caller can still call BeginCollection.
//
// Disambiguation: '}' -> Array (empty collection defaults to sequence);
// Identifier or Date immediately followed by '=' -> Object; anything else
// -> Array.
func (r *Reader) TryDiscernArrayOrMap() (CollectionKind, *clzerr.Error) {
	mark := r.tk.Mark()
	defer r.tk.Reset(mark)

	open, err := r.tk.Next()
	if err != nil {
		return 0, err
	}
	if open == nil || open.Kind != token.OpenBrace {
		return 0, r.unexpected(open, "'{'")
	}

	next, perr := r.tk.Peek()
	if perr != nil {
		return 0, perr
	}
	if next == nil {
		return Array, nil
	}
	if next.Kind == token.CloseBrace {
		return Array, nil
	}
	if next.Kind == token.Identifier || next.Kind == token.Date {
		if _, nerr := r.tk.Next(); nerr != nil {
			return 0, nerr
		}
		after, aerr := r.tk.Peek()
		if aerr != nil {
			return 0, aerr
		}
		if after != nil && after.Kind == token.Equals {
			return Object, nil
		}
		return Array, nil
	}
	return Array, nil
}

// ReadStringlike reads a possibly-empty string where the last consumed
// character was '=': it returns empty if EOF, if a newline separates the
// '=' from the next token, or if the next token is '}' while inside a
// collection (spec Open Question (c): at depth zero a '}' cannot appear
// here anyway, since the document has no enclosing braces). Otherwise it
// reads an identifier or quoted string.
func (r *Reader) ReadStringlike() (string, *clzerr.Error) {
	if r.tk.PeekNewlineBefore() {
		return "", nil
	}
	tok, err := r.tk.Peek()
	if err != nil {
		return "", err
	}
	if tok == nil {
		return "", nil
	}
	if tok.Kind == token.CloseBrace && r.depth > 0 {
		return "", nil
	}
	if tok.Kind == token.Identifier || tok.Kind == token.String {
		consumed, cerr := r.tk.Next()
		if cerr != nil {
			return "", cerr
		}
		lex := r.tk.SliceFor(*consumed)
		if consumed.Kind == token.String {
			return lex[1 : len(lex)-1], nil
		}
		return lex, nil
	}
	return "", r.unexpected(tok, "a string-like value (identifier or quoted string)")
}

// IsNextValueEmpty reports whether the value position here was elided: a
// newline separates the just-consumed '=' from whatever comes next (so that
// token, whatever it is, belongs to the next property, not this value),
// EOF, or '}' while inside a collection. Used to implement optional/unit
// types. This mirrors ReadStringlike's own elision check rather than
// guessing from token kind, since an Identifier token is a perfectly valid
// value when no newline precedes it (e.g. `id_val = ident`).
func (r *Reader) IsNextValueEmpty() (bool, *clzerr.Error) {
	if r.tk.PeekNewlineBefore() {
		return true, nil
	}
	tok, err := r.tk.Peek()
	if err != nil {
		return false, err
	}
	if tok == nil || (tok.Kind == token.CloseBrace && r.depth > 0) {
		return true, nil
	}
	return false, nil
}

// PeekExpectedString peeks a quoted string without consuming it, for
// low-level consumers; the decode package's variant dispatch does not call
// it. ok is false if the next token is not a String.
func (r *Reader) PeekExpectedString() (s string, ok bool, err *clzerr.Error) {
	tok, perr := r.tk.Peek()
	if perr != nil {
		return "", false, perr
	}
	if tok == nil || tok.Kind != token.String {
		return "", false, nil
	}
	lex := r.tk.SliceFor(*tok)
	return lex[1 : len(lex)-1], true, nil
}

// --- primitive consumers used by the decode driver ---

// ReadBoolean consumes a Boolean token ('yes'/'no').
func (r *Reader) ReadBoolean() (bool, *clzerr.Error) {
	tok, err := r.tk.Next()
	if err != nil {
		return false, err
	}
	if tok == nil || tok.Kind != token.Boolean {
		return false, r.unexpected(tok, "a boolean ('yes' or 'no')")
	}
	return r.tk.SliceFor(*tok) == "yes", nil
}

// ReadNumber consumes a Number token and returns its raw lexeme; the caller
// (decode) parses it to the requested width/signedness.
func (r *Reader) ReadNumber() (lexeme string, offset int, err *clzerr.Error) {
	tok, nerr := r.tk.Next()
	if nerr != nil {
		return "", 0, nerr
	}
	if tok == nil || tok.Kind != token.Number {
		return "", 0, r.unexpected(tok, "a number")
	}
	return r.tk.SliceFor(*tok), tok.Offset, nil
}

// ReadDate consumes a Date token.
func (r *Reader) ReadDate() (token.Date, *clzerr.Error) {
	tok, nerr := r.tk.Next()
	if nerr != nil {
		return token.Date{}, nerr
	}
	if tok == nil || tok.Kind != token.Date {
		return token.Date{}, r.unexpected(tok, "a date")
	}
	d, derr := r.tk.DateFor(*tok)
	if derr != nil {
		return token.Date{}, r.errf(clzerr.InvalidValue, tok.Offset, "%s", derr)
	}
	return d, nil
}

// ReadIdentifier consumes an Identifier token and returns its raw text.
func (r *Reader) ReadIdentifier() (string, *clzerr.Error) {
	tok, nerr := r.tk.Next()
	if nerr != nil {
		return "", nerr
	}
	if tok == nil || tok.Kind != token.Identifier {
		return "", r.unexpected(tok, "an identifier")
	}
	return r.tk.SliceFor(*tok), nil
}

// ReadString consumes a quoted String token and returns its content without
// the surrounding quotes.
func (r *Reader) ReadString() (string, *clzerr.Error) {
	tok, nerr := r.tk.Next()
	if nerr != nil {
		return "", nerr
	}
	if tok == nil || tok.Kind != token.String {
		return "", r.unexpected(tok, "a quoted string")
	}
	lex := r.tk.SliceFor(*tok)
	return lex[1 : len(lex)-1], nil
}

// PeekNextReal peeks the coarse Real classification of the next token, or
// ok=false at EOF.
func (r *Reader) PeekNextReal() (token.Real, bool, *clzerr.Error) {
	tok, err := r.tk.Peek()
	if err != nil {
		return 0, false, err
	}
	if tok == nil {
		return 0, false, nil
	}
	return token.RealOf(tok.Kind), true, nil
}
