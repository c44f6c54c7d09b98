package clausewitz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vippsas/clausewitz"
)

type demoRecord struct {
	Name string `clausewitz:"name"`
	Age  int32  `clausewitz:"age"`
}

func TestParseValue(t *testing.T) {
	v, err := clausewitz.ParseValue("name = \"Alice\"\nage = 30")
	require.NoError(t, err)
	name, ok := v.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Alice", name.Str)
}

func TestParseValue_ErrorHasContext(t *testing.T) {
	_, err := clausewitz.ParseValue("name = \"unterminated")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "^")
}

func TestParseAs(t *testing.T) {
	rec, err := clausewitz.ParseAs[demoRecord]("name = Bob\nage = 41")
	require.NoError(t, err)
	assert.Equal(t, demoRecord{Name: "Bob", Age: 41}, rec)
}

func TestSession_AggregatesErrorsAcrossDocuments(t *testing.T) {
	s := clausewitz.NewSession()
	_, err1 := s.ParseValue("good.txt", "a = 1")
	require.NoError(t, err1)

	_, err2 := s.ParseValue("bad.txt", "a = { ")
	require.Error(t, err2)

	errs := s.Errors()
	assert.False(t, errs.Empty())
	assert.Len(t, errs.Errors, 1)
	assert.Equal(t, "bad.txt", errs.Names[0])
}

func TestSession_ID_IsStable(t *testing.T) {
	s := clausewitz.NewSession()
	assert.Equal(t, s.ID(), s.ID())
}
