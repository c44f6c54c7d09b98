package reader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vippsas/clausewitz/reader"
	"github.com/vippsas/clausewitz/token"
)

func TestReader_NextPropertyBasic(t *testing.T) {
	r := reader.New(`a = 1
b = "x"`)
	key, real, ok, err := r.NextProperty()
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", key.Ident)
	assert.Equal(t, token.RealNumber, real)
	_, _, _ = r.ReadNumber()

	key, real, ok, err = r.NextProperty()
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", key.Ident)
	assert.Equal(t, token.RealString, real)
	s, serr := r.ReadString()
	require.Nil(t, serr)
	assert.Equal(t, "x", s)

	_, _, ok, err = r.NextProperty()
	require.Nil(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Depth())
}

func TestReader_DepthBalances(t *testing.T) {
	r := reader.New(`a = { x = 1 y = 2 }`)
	_, _, ok, err := r.NextProperty()
	require.Nil(t, err)
	require.True(t, ok)
	require.Nil(t, r.BeginCollection())
	assert.Equal(t, 1, r.Depth())
	for {
		_, _, ok, err := r.NextProperty()
		require.Nil(t, err)
		if !ok {
			break
		}
		_, _, _ = r.ReadNumber()
	}
	require.Nil(t, r.EndCollection())
	assert.Equal(t, 0, r.Depth())
}

func TestReader_TryDiscernArrayOrMap(t *testing.T) {
	cases := []struct {
		src  string
		want reader.CollectionKind
	}{
		{"{}", reader.Array},
		{"{ 1 2 3 }", reader.Array},
		{"{ x = 1 }", reader.Object},
		{`{ 1940.1.1 = 1 }`, reader.Object},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			r := reader.New(c.src)
			kind, err := r.TryDiscernArrayOrMap()
			require.Nil(t, err)
			assert.Equal(t, c.want, kind)
			require.Nil(t, r.BeginCollection())
		})
	}
}

func TestReader_SignificantNewlineElision(t *testing.T) {
	src := "str1 = \n str2 = test\n str3 =\n str4 = test"
	r := reader.New(src)
	var got []string
	for {
		key, real, ok, err := r.NextProperty()
		require.Nil(t, err)
		if !ok {
			break
		}
		assert.Equal(t, token.RealIdentifier, real)
		s, serr := r.ReadStringlike()
		require.Nil(t, serr)
		got = append(got, s)
		_ = key
	}
	assert.Equal(t, []string{"", "test", "", "test"}, got)
}

func TestReader_IsCollectionEndedAndArrayValues(t *testing.T) {
	r := reader.New("{ 1 2 3 }")
	_, err := r.TryDiscernArrayOrMap()
	require.Nil(t, err)
	require.Nil(t, r.BeginCollection())
	var nums []string
	for {
		ended, err := r.IsCollectionEnded()
		require.Nil(t, err)
		if ended {
			break
		}
		_, ok, err := r.NextArrayValue()
		require.Nil(t, err)
		require.True(t, ok)
		lex, _, err := r.ReadNumber()
		require.Nil(t, err)
		nums = append(nums, lex)
	}
	require.Nil(t, r.EndCollection())
	assert.Equal(t, []string{"1", "2", "3"}, nums)
}

func TestReader_UnexpectedTokenForBadBoolean(t *testing.T) {
	r := reader.New("bool_val = 18")
	_, _, ok, err := r.NextProperty()
	require.Nil(t, err)
	require.True(t, ok)
	_, berr := r.ReadBoolean()
	require.NotNil(t, berr)
}

func TestReader_DateKey(t *testing.T) {
	r := reader.New("1444.1.1 = 5")
	key, _, ok, err := r.NextProperty()
	require.Nil(t, err)
	require.True(t, ok)
	assert.True(t, key.IsDate)
	assert.Equal(t, token.Date{Years: 1444, Months: 1, Days: 1}, key.Date)
}
