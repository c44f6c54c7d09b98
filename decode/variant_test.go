package decode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vippsas/clausewitz/clzerr"
	"github.com/vippsas/clausewitz/decode"
)

type tupleFields struct {
	F0 int32
	F1 float32
	F2 string
}

type untaggedDemo struct {
	Unit  *decode.Unit `clausewitz:"Unit"`
	Item  *bool        `clausewitz:"Item"`
	Pair  *[2]int32    `clausewitz:"Pair"`
	Tuple *tupleFields `clausewitz:"Tuple"`
}

func (v *untaggedDemo) ClausewitzVariant() decode.VariantScheme { return decode.VariantScheme{} }

type untaggedWrapper struct {
	Val untaggedDemo `clausewitz:"val"`
}

func TestDecode_UntaggedVariant_Unit(t *testing.T) {
	var w untaggedWrapper
	err := decodeInto(t, "val =", &w)
	require.Nil(t, err)
	assert.NotNil(t, w.Val.Unit)
	assert.Nil(t, w.Val.Item)
	assert.Nil(t, w.Val.Pair)
	assert.Nil(t, w.Val.Tuple)
}

func TestDecode_UntaggedVariant_Newtype(t *testing.T) {
	var w untaggedWrapper
	err := decodeInto(t, "val = yes", &w)
	require.Nil(t, err)
	require.NotNil(t, w.Val.Item)
	assert.True(t, *w.Val.Item)
}

func TestDecode_UntaggedVariant_Pair(t *testing.T) {
	var w untaggedWrapper
	err := decodeInto(t, "val = { 0 1 }", &w)
	require.Nil(t, err)
	require.NotNil(t, w.Val.Pair)
	assert.Equal(t, [2]int32{0, 1}, *w.Val.Pair)
}

func TestDecode_UntaggedVariant_Tuple(t *testing.T) {
	var w untaggedWrapper
	err := decodeInto(t, `val = { 0 1.0 "test" }`, &w)
	require.Nil(t, err)
	require.NotNil(t, w.Val.Tuple)
	assert.Equal(t, tupleFields{F0: 0, F1: 1.0, F2: "test"}, *w.Val.Tuple)
}

type itemPayload struct {
	Num int32 `clausewitz:"num"`
}

type taggedDemo struct {
	Unit *decode.Unit `clausewitz:"Unit"`
	Item *itemPayload `clausewitz:"Item"`
}

func (v *taggedDemo) ClausewitzVariant() decode.VariantScheme {
	return decode.VariantScheme{Tagged: true, TagField: "type"}
}

type taggedWrapper struct {
	Val taggedDemo `clausewitz:"val"`
}

func TestDecode_TaggedVariant_Unit(t *testing.T) {
	var w taggedWrapper
	err := decodeInto(t, "val = { type = Unit }", &w)
	require.Nil(t, err)
	assert.NotNil(t, w.Val.Unit)
}

func TestDecode_TaggedVariant_StructArm(t *testing.T) {
	var w taggedWrapper
	err := decodeInto(t, "val = { type = Item num = 900 }", &w)
	require.Nil(t, err)
	require.NotNil(t, w.Val.Item)
	assert.Equal(t, int32(900), w.Val.Item.Num)
}

func TestDecode_TaggedVariant_UnknownTag(t *testing.T) {
	var w taggedWrapper
	err := decodeInto(t, "val = { type = Incorrect }", &w)
	require.NotNil(t, err)
	assert.Equal(t, clzerr.UnknownVariant, err.Kind)
}

func TestDecode_TaggedVariant_NonObjectIsInvalidType(t *testing.T) {
	var w taggedWrapper
	err := decodeInto(t, "val = 900", &w)
	require.NotNil(t, err)
	assert.Equal(t, clzerr.InvalidType, err.Kind)
}
