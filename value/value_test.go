package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vippsas/clausewitz/reader"
	"github.com/vippsas/clausewitz/token"
	"github.com/vippsas/clausewitz/value"
)

func parse(t *testing.T, src string) value.Value {
	t.Helper()
	r := reader.New(src)
	v, err := value.Parse(r)
	require.Nil(t, err)
	return v
}

func TestValue_PreservesOrderAndDuplicates(t *testing.T) {
	v := parse(t, "a = 1\nb = 2\na = 3")
	require.Equal(t, value.KindObject, v.Kind)
	require.Len(t, v.Object, 3)
	assert.Equal(t, "a", v.Object[0].Key.Ident)
	assert.Equal(t, int64(1), v.Object[0].Value.Integer)
	assert.Equal(t, "b", v.Object[1].Key.Ident)
	assert.Equal(t, "a", v.Object[2].Key.Ident)
	assert.Equal(t, int64(3), v.Object[2].Value.Integer)
}

func TestValue_NestedObjectAndArray(t *testing.T) {
	v := parse(t, "obj = { x = 1 } arr = { 1 2 3 }")
	obj, ok := v.Get("obj")
	require.True(t, ok)
	assert.Equal(t, value.KindObject, obj.Kind)
	x, ok := obj.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), x.Integer)

	arr, ok := v.Get("arr")
	require.True(t, ok)
	require.Equal(t, value.KindArray, arr.Kind)
	require.Len(t, arr.Array, 3)
	assert.Equal(t, int64(2), arr.Array[1].Integer)
}

func TestValue_EmptyBraceIsArray(t *testing.T) {
	v := parse(t, "x = {}")
	x, ok := v.Get("x")
	require.True(t, ok)
	assert.Equal(t, value.KindArray, x.Kind)
	assert.Empty(t, x.Array)
}

func TestValue_DecimalVsInteger(t *testing.T) {
	v := parse(t, "a = 5\nb = 5.0")
	a, _ := v.Get("a")
	b, _ := v.Get("b")
	assert.Equal(t, value.KindInteger, a.Kind)
	assert.Equal(t, value.KindDecimal, b.Kind)
	assert.Equal(t, 5.0, b.Decimal)
}

func TestValue_Owned_ClonesStrings(t *testing.T) {
	src := `name = "hello"`
	v := parse(t, src)
	owned := v.Owned()
	name, ok := owned.Get("name")
	require.True(t, ok)
	assert.Equal(t, "hello", name.Str)
}

func TestValue_Dump_DoesNotPanic(t *testing.T) {
	v := parse(t, `a = 1 b = "x" c = { 1 2 }`)
	assert.NotPanics(t, func() { _ = v.Dump() })
}

func TestValue_DateKeyAndValue(t *testing.T) {
	v := parse(t, "1940.1.1 = 1933.11.4")
	require.Len(t, v.Object, 1)
	key := v.Object[0].Key
	assert.True(t, key.IsDate)
	assert.Equal(t, token.Date{Years: 1940, Months: 1, Days: 1}, key.Date)
	val := v.Object[0].Value
	assert.Equal(t, value.KindDate, val.Kind)
	assert.Equal(t, token.Date{Years: 1933, Months: 11, Days: 4}, val.Date)
}
