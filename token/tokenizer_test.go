package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vippsas/clausewitz/token"
)

func collect(t *testing.T, src string) ([]*token.Token, *token.Tokenizer) {
	t.Helper()
	tk := token.New(src)
	var toks []*token.Token
	for {
		tok, err := tk.Next()
		if err != nil {
			return toks, tk
		}
		if tok == nil {
			break
		}
		toks = append(toks, tok)
	}
	return toks, tk
}

func TestTokenizer_PunctuationRoundTrip(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"{", token.OpenBrace},
		{"}", token.CloseBrace},
		{"=", token.Equals},
		{">", token.GreaterThan},
		{"<", token.LessThan},
		{">=", token.GreaterThanEq},
		{"<=", token.LessThanEq},
		{"?=", token.ExistenceCheck},
		{"identifier_1", token.Identifier},
		{"yes", token.Boolean},
		{"no", token.Boolean},
		{`"a string"`, token.String},
		{"123", token.Number},
		{"-45", token.Number},
		{"1.5", token.Number},
		{"1940.1.1", token.Date},
		{"1980.08.11.1", token.Date},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			toks, tk := collect(t, c.src)
			require.Len(t, toks, 1)
			assert.Equal(t, c.kind, toks[0].Kind)
			assert.Equal(t, c.src, tk.SliceFor(*toks[0]))
		})
	}
}

func TestTokenizer_StringsSeparatedByComment(t *testing.T) {
	toks, tk := collect(t, "\"str1\"\"str2\"#comment\n\"str3\"")
	require.Len(t, toks, 3)
	for i, want := range []string{"str1", "str2", "str3"} {
		assert.Equal(t, token.String, toks[i].Kind)
		lex := tk.SliceFor(*toks[i])
		assert.Equal(t, want, lex[1:len(lex)-1])
	}
}

func TestTokenizer_MixedSequence(t *testing.T) {
	toks, tk := collect(t, `{ property = "test" } # comment
82.3 > 1 >= 0`)
	wantKinds := []token.Kind{
		token.OpenBrace, token.Identifier, token.Equals, token.String, token.CloseBrace,
		token.Number, token.GreaterThan, token.Number, token.GreaterThanEq, token.Number,
	}
	require.Len(t, toks, len(wantKinds))
	for i, k := range wantKinds {
		assert.Equalf(t, k, toks[i].Kind, "token %d (%s)", i, tk.SliceFor(*toks[i]))
	}
}

func TestTokenizer_MalformedNumbers(t *testing.T) {
	for _, src := range []string{"-", ".01", "0.1...2", "-1.", "-.", "-.0"} {
		t.Run(src, func(t *testing.T) {
			tk := token.New(src)
			var sawErr bool
			for {
				tok, err := tk.Next()
				if err != nil {
					sawErr = true
					break
				}
				if tok == nil {
					break
				}
			}
			assert.True(t, sawErr, "expected a tokenizer error for %q", src)
		})
	}
}

func TestTokenizer_Dates(t *testing.T) {
	for _, src := range []string{"1940.1.1", "1980.08.11.1"} {
		toks, _ := collect(t, src)
		require.Len(t, toks, 1)
		assert.Equal(t, token.Date, toks[0].Kind)
	}
	for _, src := range []string{"1930.1.", "1930.1.3.", "1959..1"} {
		t.Run(src, func(t *testing.T) {
			tk := token.New(src)
			var sawErr bool
			for {
				tok, err := tk.Next()
				if err != nil {
					sawErr = true
					break
				}
				if tok == nil {
					break
				}
			}
			assert.True(t, sawErr, "expected a tokenizer error for %q", src)
		})
	}
}

func TestTokenizer_PeekIsIdempotent(t *testing.T) {
	tk := token.New("foo = 1")
	peeked, err := tk.Peek()
	require.Nil(t, err)
	peekedAgain, err := tk.Peek()
	require.Nil(t, err)
	assert.Equal(t, peeked, peekedAgain)
	next, err := tk.Next()
	require.Nil(t, err)
	assert.Equal(t, peeked, next)
}

func TestTokenizer_MarkAndReset(t *testing.T) {
	tk := token.New("a = b")
	mark := tk.Mark()
	first, _ := tk.Next()
	require.NotNil(t, first)
	tk.Reset(mark)
	again, _ := tk.Next()
	assert.Equal(t, first, again)
}

func TestTokenizer_StopsAfterFirstError(t *testing.T) {
	tk := token.New("ok #\n$")
	tok, err := tk.Next()
	require.Nil(t, err)
	require.NotNil(t, tok)
	_, err = tk.Next()
	require.NotNil(t, err)
	tok, err = tk.Next()
	assert.Nil(t, tok)
	assert.Nil(t, err)
}

func TestDate_U128RoundTrip(t *testing.T) {
	dates := []token.Date{
		{},
		{Years: 1940, Months: 1, Days: 1},
		{Years: 1980, Months: 8, Days: 11, Hours: 1},
		{Years: 4294967295, Months: 12, Days: 31, Hours: 23},
	}
	for _, d := range dates {
		hi, lo := d.ToU128()
		assert.Equal(t, d, token.DateFromU128(hi, lo))
	}
}
