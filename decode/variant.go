package decode

import (
	"fmt"
	"reflect"

	"github.com/vippsas/clausewitz/clzerr"
	"github.com/vippsas/clausewitz/reader"
	"github.com/vippsas/clausewitz/token"
	"github.com/vippsas/clausewitz/value"
)

// Variant is implemented by a struct representing a tagged union: exactly
// one of its pointer fields is set after a successful decode. Two wire
// representations are supported, matching the two variant scenarios of
// spec §8's end-to-end tests:
//
//   - Untagged: ClausewitzVariant returns a zero VariantScheme. The arm is
//     picked purely from the shape of the next value: elision selects the
//     sole unit arm, a bare primitive selects the newtype arm whose payload
//     type matches its coarse Real classification, and a bracketed sequence
//     selects among fixed-arity tuple arms (Go arrays or positional F0, F1,
//     ... structs) by counting elements. A bare identifier or string is not
//     compared against arm tags: it only selects a string-kind newtype arm.
//   - Internally tagged: ClausewitzVariant returns a VariantScheme naming a
//     TagField (e.g. "type"). The value is an object whose first property
//     must be that tag field; its identifier value picks the arm, and a
//     struct arm's own fields are the object's remaining properties (the
//     tag and the payload share one flat object, e.g.
//     `val = { type = Item num = 900 }`).
type Variant interface {
	ClausewitzVariant() VariantScheme
}

// VariantScheme configures how a Variant struct's wire representation is
// read. The zero value is the untagged scheme.
type VariantScheme struct {
	Tagged   bool
	TagField string // wire key carrying the tag, e.g. "type"; only used when Tagged
}

type variantKind int

const (
	variantUnit variantKind = iota
	variantNewtype
	variantTuple
	variantStruct
)

type variantArm struct {
	tag   string
	index int
	kind  variantKind
}

type variantArms struct {
	byTag []variantArm // declaration order; find reports a shape-matching tie as no match
}

func (a *variantArms) find(kind variantKind, pred func(variantArm) bool) (variantArm, bool) {
	var match variantArm
	found := false
	for _, arm := range a.byTag {
		if arm.kind != kind || !pred(arm) {
			continue
		}
		if found {
			return variantArm{}, false // ambiguous
		}
		match, found = arm, true
	}
	return match, found
}

func (a *variantArms) byName(name string) (variantArm, bool) {
	for _, arm := range a.byTag {
		if arm.tag == name {
			return arm, true
		}
	}
	return variantArm{}, false
}

// variantArmsOf classifies each pointer field of a Variant struct by the
// shape of what it points to: Unit -> unit arm, a fixed-size Go array ->
// tuple arm (arity is the array length), a slice -> also tuple arm (no
// static arity, so the untagged scheme never selects it, and the tagged
// scheme rejects tuple arms), struct (other than token.Date/U128) -> struct
// arm, anything else -> newtype arm. A pointer field's arm tag is its
// `clausewitz:"tag"`, or the Go field name when the tag is empty; the
// tagged scheme looks arms up by it.
func variantArmsOf(t reflect.Type) *variantArms {
	arms := &variantArms{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" || sf.Type.Kind() != reflect.Ptr {
			continue
		}
		tag := sf.Tag.Get("clausewitz")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = sf.Name
		}
		elem := sf.Type.Elem()
		arms.byTag = append(arms.byTag, variantArm{tag: tag, index: i, kind: classifyArm(elem)})
	}
	return arms
}

func classifyArm(elem reflect.Type) variantKind {
	switch {
	case elem == reflect.TypeOf(Unit{}):
		return variantUnit
	case elem.Kind() == reflect.Array:
		return variantTuple
	case elem.Kind() == reflect.Slice:
		return variantTuple
	case elem.Kind() == reflect.Struct && isPositionalTupleStruct(elem):
		return variantTuple
	case elem.Kind() == reflect.Struct && elem != reflect.TypeOf(token.Date{}) && elem != reflect.TypeOf(U128{}):
		return variantStruct
	default:
		return variantNewtype
	}
}

// isPositionalTupleStruct reports whether t's exported fields are named F0,
// F1, F2, ... in order: the convention used to represent a heterogeneous
// tuple arm (e.g. Tuple(i32, f32, string)) as a Go struct, since a Go array
// cannot hold elements of different types the way Pair(i32,i32) can as
// [2]int32.
func isPositionalTupleStruct(t reflect.Type) bool {
	if t.NumField() == 0 {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || f.Name != fmt.Sprintf("F%d", i) {
			return false
		}
	}
	return true
}

func tupleArity(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Array:
		return t.Len()
	case reflect.Struct:
		return t.NumField()
	}
	return -1
}

// decodeVariant implements spec §4.4.1's variant dispatch for both wire
// schemes described on the Variant type above.
func decodeVariant(r *reader.Reader, real token.Real, rv reflect.Value) *clzerr.Error {
	scheme := rv.Addr().Interface().(Variant).ClausewitzVariant()
	arms := variantArmsOf(rv.Type())

	if scheme.Tagged {
		return decodeTaggedVariant(r, real, rv, arms, scheme)
	}
	return decodeUntaggedVariant(r, real, rv, arms)
}

func decodeUntaggedVariant(r *reader.Reader, real token.Real, rv reflect.Value, arms *variantArms) *clzerr.Error {
	empty, err := r.IsNextValueEmpty()
	if err != nil {
		return err
	}
	if empty {
		arm, found := arms.find(variantUnit, func(variantArm) bool { return true })
		if !found {
			return clzerr.New(clzerr.UnknownVariant, r.Tokenizer().Position(), "no unit arm declared for an elided value")
		}
		return setUnitArm(rv, arm)
	}

	switch real {
	case token.RealObjectOrArray:
		kind, derr := r.TryDiscernArrayOrMap()
		if derr != nil {
			return derr
		}
		if kind == reader.Array {
			n, cerr := countArity(r)
			if cerr != nil {
				return cerr
			}
			arm, found := arms.find(variantTuple, func(a variantArm) bool {
				return tupleArity(rv.Field(a.index).Type().Elem()) == n
			})
			if !found {
				return clzerr.New(clzerr.UnknownVariant, r.Tokenizer().Position(), "no tuple arm of arity %d", n)
			}
			return decodeArmPayload(r, real, rv, arm)
		}
		arm, found := arms.find(variantStruct, func(variantArm) bool { return true })
		if !found {
			return clzerr.New(clzerr.UnknownVariant, r.Tokenizer().Position(), "no struct arm declared for an object payload")
		}
		return decodeArmPayload(r, real, rv, arm)

	default:
		arm, found := arms.find(variantNewtype, func(a variantArm) bool {
			return realMatchesType(real, rv.Field(a.index).Type().Elem())
		})
		if !found {
			return clzerr.New(clzerr.UnknownVariant, r.Tokenizer().Position(), "no newtype arm matches a %s payload", real)
		}
		return decodeArmPayload(r, real, rv, arm)
	}
}

// realMatchesType reports whether a bare primitive of classification real
// is a plausible fit for Go type t, for untagged newtype-arm selection.
func realMatchesType(real token.Real, t reflect.Type) bool {
	switch real {
	case token.RealBoolean:
		return t.Kind() == reflect.Bool
	case token.RealNumber:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	case token.RealDate:
		return t == reflect.TypeOf(token.Date{}) || t == reflect.TypeOf(U128{})
	case token.RealString, token.RealIdentifier:
		return t.Kind() == reflect.String
	}
	return false
}

// countArity counts the elements of the sequence about to be read, without
// consuming any of them: it saves position, reads the sequence generically
// via value.ParseOne (discarding the results), then restores position.
func countArity(r *reader.Reader) (int, *clzerr.Error) {
	mark := r.Tokenizer().Mark()
	defer r.Tokenizer().Reset(mark)

	if err := r.BeginCollection(); err != nil {
		return 0, err
	}
	n := 0
	for {
		elemReal, ok, err := r.NextArrayValue()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		if _, err := value.ParseOne(r, elemReal); err != nil {
			return 0, err
		}
		n++
	}
	// Close the collection so the reader's depth is back where it started;
	// the deferred Reset then rewinds the tokenizer to the opening '{'.
	if err := r.EndCollection(); err != nil {
		return 0, err
	}
	return n, nil
}

// decodeTaggedVariant implements the internally-tagged scheme: the value is
// an object whose first property must be scheme.TagField, naming the arm;
// a struct arm's fields are the object's remaining properties (spec §8's
// `val = { type = Item num = 900 }`).
func decodeTaggedVariant(r *reader.Reader, real token.Real, rv reflect.Value, arms *variantArms, scheme VariantScheme) *clzerr.Error {
	if real != token.RealObjectOrArray {
		return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(), "expected an object keyed by %q", scheme.TagField)
	}
	kind, derr := r.TryDiscernArrayOrMap()
	if derr != nil {
		return derr
	}
	if kind != reader.Object {
		return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(), "expected an object keyed by %q", scheme.TagField)
	}
	if err := r.BeginCollection(); err != nil {
		return err
	}

	tagKey, tagReal, ok, err := r.NextProperty()
	if err != nil {
		return err
	}
	if !ok || tagKey.IsDate || tagKey.Ident != scheme.TagField {
		return clzerr.New(clzerr.InvalidState, r.Tokenizer().Position(), "expected tag field %q first", scheme.TagField)
	}
	if tagReal != token.RealIdentifier {
		return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(), "tag field %q must be an identifier", scheme.TagField)
	}
	tag, terr := r.ReadIdentifier()
	if terr != nil {
		return terr
	}
	arm, found := arms.byName(tag)
	if !found {
		return clzerr.New(clzerr.UnknownVariant, r.Tokenizer().Position(), "unknown variant tag %q", tag)
	}

	switch arm.kind {
	case variantUnit:
		if err := setUnitArm(rv, arm); err != nil {
			return err
		}
	case variantStruct:
		fv := rv.Field(arm.index)
		target := reflect.New(fv.Type().Elem())
		fields, ferr := fieldsOf(fv.Type().Elem())
		if ferr != nil {
			return ferr
		}
		if err := decodeRecordFields(r, target.Elem(), fields); err != nil {
			return err
		}
		fv.Set(target)
	default:
		return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(),
			"variant tag %q: only unit and struct arms are supported by the internally tagged scheme", tag)
	}

	return r.EndCollection()
}

func setUnitArm(rv reflect.Value, arm variantArm) *clzerr.Error {
	fv := rv.Field(arm.index)
	fv.Set(reflect.New(fv.Type().Elem()))
	return nil
}

func decodeArmPayload(r *reader.Reader, real token.Real, rv reflect.Value, arm variantArm) *clzerr.Error {
	fv := rv.Field(arm.index)
	elemType := fv.Type().Elem()
	target := reflect.New(elemType)
	if elemType.Kind() == reflect.Struct && isPositionalTupleStruct(elemType) {
		if err := decodeTupleStruct(r, target.Elem()); err != nil {
			return err
		}
		fv.Set(target)
		return nil
	}
	if err := decodeValue(r, real, target.Elem()); err != nil {
		return err
	}
	fv.Set(target)
	return nil
}

// decodeTupleStruct decodes a heterogeneous tuple arm represented as a
// positional struct (see isPositionalTupleStruct): each field is read from
// the sequence in declaration order, so fields may have differing Go types
// the way a fixed-size Go array cannot.
func decodeTupleStruct(r *reader.Reader, rv reflect.Value) *clzerr.Error {
	if err := r.BeginCollection(); err != nil {
		return err
	}
	for i := 0; i < rv.NumField(); i++ {
		elemReal, ok, err := r.NextArrayValue()
		if err != nil {
			return err
		}
		if !ok {
			return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(),
				"too few elements for %s (expected %d)", rv.Type(), rv.NumField())
		}
		if err := decodeValue(r, elemReal, rv.Field(i)); err != nil {
			return err
		}
	}
	ended, eerr := r.IsCollectionEnded()
	if eerr != nil {
		return eerr
	}
	if !ended {
		return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(), "too many elements for %s", rv.Type())
	}
	return r.EndCollection()
}
