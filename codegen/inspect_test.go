package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReflectStructTagLookup(t *testing.T) {
	cases := []struct {
		tag, key, want string
	}{
		{`clausewitz:"name"`, "clausewitz", "name"},
		{`clausewitz:"name,dup"`, "clausewitz", "name,dup"},
		{`json:"x" clausewitz:"item,dup"`, "clausewitz", "item,dup"},
		{`clausewitz:"-"`, "clausewitz", "-"},
		{`json:"x"`, "clausewitz", ""},
		{``, "clausewitz", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, reflectStructTagLookup(c.tag, c.key))
	}
}
