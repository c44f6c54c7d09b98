package decode

import (
	"reflect"
	"sort"
	"strings"

	"github.com/vippsas/clausewitz/clzerr"
)

// fieldInfo describes one exported field of a record type, as declared by
// its `clausewitz:"..."` struct tag (spec §4.4.2).
type fieldInfo struct {
	name  string
	index int
	dup   bool
}

// recordFields is the parsed, partitioned field set of a record type: the
// union spec §4.4.2 calls for, keyed by wire name, plus the normal/dup
// partition needed to enforce MissingField only against normal fields.
type recordFields struct {
	byName map[string]fieldInfo
	normal []fieldInfo
	dup    []fieldInfo
	known  []string // sorted, for UnknownField messages
}

// fieldsOf parses t's struct tags into a recordFields. It rejects
// non-struct types, mirroring the generator's "rejects declarations that
// are not named-field records" rule (spec §4.4.2's last sentence) even
// though this is the reflect-based runtime path rather than codegen.
func fieldsOf(t reflect.Type) (*recordFields, *clzerr.Error) {
	if t.Kind() != reflect.Struct {
		return nil, clzerr.New(clzerr.InvalidType, 0, "decode: %s is not a named-field record type", t)
	}
	rf := &recordFields{byName: make(map[string]fieldInfo)}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		tag := sf.Tag.Get("clausewitz")
		if tag == "-" {
			continue
		}
		name, dup := parseTag(tag, sf.Name)
		fi := fieldInfo{name: name, index: i, dup: dup}
		rf.byName[name] = fi
		if dup {
			rf.dup = append(rf.dup, fi)
		} else {
			rf.normal = append(rf.normal, fi)
		}
		rf.known = append(rf.known, name)
	}
	sort.Strings(rf.known)
	return rf, nil
}

// parseTag splits a `clausewitz:"name,dup"`-style tag into its wire name
// and duplicate-collector flag. An empty tag falls back to the Go field
// name, the way encoding/json and yaml.v3 both do.
func parseTag(tag, fallback string) (name string, dup bool) {
	if tag == "" {
		return fallback, false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = fallback
	}
	for _, opt := range parts[1:] {
		if opt == "dup" {
			dup = true
		}
	}
	return name, dup
}

func (rf *recordFields) knownNamesList() string {
	return strings.Join(rf.known, ", ")
}
