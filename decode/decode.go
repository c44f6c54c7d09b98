// Package decode implements the schema-directed deserialization driver of
// spec §4.4: a reflect-based visitor that walks a reader and fills in a
// user-declared Go value, dispatching on the target type's reflect.Kind the
// way gopkg.in/yaml.v3 dispatches on a target's reflect.Kind when decoding
// tag-annotated structs (the teacher uses yaml.v3 the same way in
// sqlparser/dom.go's ParseYamlInDocstring).
//
// Field tags use the key "clausewitz": `clausewitz:"name"` renames a field,
// `clausewitz:"name,dup"` marks a duplicate-collector field (spec §4.4.2),
// and `clausewitz:"-"` skips a field entirely.
package decode

import (
	"reflect"
	"strconv"

	"github.com/vippsas/clausewitz/clzerr"
	"github.com/vippsas/clausewitz/reader"
	"github.com/vippsas/clausewitz/token"
	"github.com/vippsas/clausewitz/value"
)

// Unit marks a field that must be present but carries no value, per spec
// §4.4's "Unit / unit-struct" dispatch row.
type Unit struct{}

// U128 is the Go stand-in for the "128-bit integer" dispatch row: spec §3's
// canonical date<->u128 bijection, represented as a (high, low) uint64 pair
// since Go has no native 128-bit integer (see token.Date.ToU128).
type U128 struct {
	Hi, Lo uint64
}

// Into deserializes source, already wrapped in r, into out, which must be a
// non-nil pointer to a struct. The document is an implicit top-level
// object, so the root record is decoded without opening a collection (spec
// §4.4's root-object-started bit collapses to "the caller of Into never
// wraps with BeginCollection/EndCollection"; every nested record call does).
func Into(r *reader.Reader, out any) *clzerr.Error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return clzerr.New(clzerr.InvalidType, 0, "decode: out must be a non-nil pointer, got %T", out)
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return clzerr.New(clzerr.InvalidType, 0, "decode: top-level target must be a struct, got %s", elem.Kind())
	}
	fields, ferr := fieldsOf(elem.Type())
	if ferr != nil {
		return ferr
	}
	return decodeRecordFields(r, elem, fields)
}

// DecodeValueInto decodes a single value of the given coarse Real
// classification into out, a non-nil pointer. It is the entry point
// generated code (package codegen) calls for each field, so a generated
// RecordVisitor shares the exact same primitive dispatch as the reflective
// path instead of duplicating it.
func DecodeValueInto(r *reader.Reader, real token.Real, out any) *clzerr.Error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return clzerr.New(clzerr.InvalidType, 0, "decode: out must be a non-nil pointer, got %T", out)
	}
	return decodeValue(r, real, rv.Elem())
}

// decodeValue is the central dispatch: given the already-peeked coarse Real
// classification of the next value and an addressable reflect.Value to
// fill, it routes to the appropriate reader primitive per spec §4.4's
// dispatch table.
func decodeValue(r *reader.Reader, real token.Real, rv reflect.Value) *clzerr.Error {
	if rv.Type() == reflect.TypeOf(token.Date{}) {
		d, err := r.ReadDate()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(d))
		return nil
	}
	if rv.Type() == reflect.TypeOf(U128{}) {
		d, err := r.ReadDate()
		if err != nil {
			return err
		}
		hi, lo := d.ToU128()
		rv.Set(reflect.ValueOf(U128{Hi: hi, Lo: lo}))
		return nil
	}
	if rv.Type() == reflect.TypeOf(Unit{}) {
		empty, err := r.IsNextValueEmpty()
		if err != nil {
			return err
		}
		if !empty {
			return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(), "expected no value for a unit field")
		}
		return nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		b, err := r.ReadBoolean()
		if err != nil {
			return err
		}
		rv.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		lexeme, offset, err := r.ReadNumber()
		if err != nil {
			return err
		}
		n, perr := strconv.ParseInt(lexeme, 10, rv.Type().Bits())
		if perr != nil {
			return clzerr.New(clzerr.InvalidNumber, offset, "%q does not fit in %s: %s", lexeme, rv.Type(), perr)
		}
		rv.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		lexeme, offset, err := r.ReadNumber()
		if err != nil {
			return err
		}
		n, perr := strconv.ParseUint(lexeme, 10, rv.Type().Bits())
		if perr != nil {
			return clzerr.New(clzerr.InvalidNumber, offset, "%q does not fit in %s: %s", lexeme, rv.Type(), perr)
		}
		rv.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		lexeme, offset, err := r.ReadNumber()
		if err != nil {
			return err
		}
		f, perr := strconv.ParseFloat(lexeme, rv.Type().Bits())
		if perr != nil {
			return clzerr.New(clzerr.InvalidNumber, offset, "%q is not a valid %s: %s", lexeme, rv.Type(), perr)
		}
		rv.SetFloat(f)
		return nil

	case reflect.String:
		s, err := r.ReadStringlike()
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil

	case reflect.Ptr:
		empty, err := r.IsNextValueEmpty()
		if err != nil {
			return err
		}
		if empty {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		target := reflect.New(rv.Type().Elem())
		if err := decodeValue(r, real, target.Elem()); err != nil {
			return err
		}
		rv.Set(target)
		return nil

	case reflect.Slice, reflect.Array:
		return decodeSequence(r, rv)

	case reflect.Map:
		return decodeMap(r, rv)

	case reflect.Interface:
		v, err := decodeAny(r, real)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(v))
		return nil

	case reflect.Struct:
		if isVariant(rv.Type()) {
			return decodeVariant(r, real, rv)
		}
		return decodeNestedRecord(r, rv)
	}

	return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(), "decode: unsupported target type %s", rv.Type())
}

// decodeNestedRecord handles a record reached as a struct-typed field (not
// the top-level document). The target's shape, not a lookahead guess at the
// brace contents, decides how `{}` and `{ ... }` are read: a record target
// always opens as an object, so an empty collection decodes to zero fields
// (spec §9's "schema-directed parses override sequence-wins when the target
// is a map") rather than being rejected as a bare sequence. A genuinely
// array-shaped body (bare values with no keys) still fails, just later: the
// first NextProperty call rejects a non-Identifier/Date key token.
func decodeNestedRecord(r *reader.Reader, rv reflect.Value) *clzerr.Error {
	if err := r.BeginCollection(); err != nil {
		return err
	}
	fields, ferr := fieldsOf(rv.Type())
	if ferr != nil {
		return ferr
	}
	if err := decodeRecordFields(r, rv, fields); err != nil {
		return err
	}
	return r.EndCollection()
}

// decodeRecordFields implements spec §4.4.2's duplicate-collector record
// visitor: it does not itself open or close a collection, so it can serve
// both the unwrapped top-level document and an already-opened nested
// record.
func decodeRecordFields(r *reader.Reader, rv reflect.Value, fields *recordFields) *clzerr.Error {
	filled := make(map[int]bool, len(fields.normal))
	for {
		key, real, ok, err := r.NextProperty()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if key.IsDate {
			return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(), "record fields cannot be keyed by a date")
		}
		fi, found := fields.byName[key.Ident]
		if !found {
			return clzerr.New(clzerr.UnknownField, r.Tokenizer().Position(),
				"unknown field %q, known fields: %s", key.Ident, fields.knownNamesList())
		}
		fv := rv.Field(fi.index)
		if fi.dup {
			elemType := fv.Type().Elem()
			elem := reflect.New(elemType).Elem()
			if err := decodeValue(r, real, elem); err != nil {
				return err
			}
			fv.Set(reflect.Append(fv, elem))
			continue
		}
		if filled[fi.index] {
			return clzerr.New(clzerr.DuplicateField, r.Tokenizer().Position(), "duplicate field %q", key.Ident)
		}
		if err := decodeValue(r, real, fv); err != nil {
			return err
		}
		filled[fi.index] = true
	}
	for _, fi := range fields.normal {
		if !filled[fi.index] {
			return clzerr.New(clzerr.MissingField, r.Tokenizer().Position(), "missing required field %q", fi.name)
		}
	}
	return nil
}

// decodeSequence handles both Sequence and tuple target shapes. A fixed-size
// array target enforces exact arity (spec §8.1's tuple-variant arity
// checking, generalized to any array target): too few or too many elements
// is InvalidType, not silent truncation or zero-fill.
func decodeSequence(r *reader.Reader, rv reflect.Value) *clzerr.Error {
	if err := r.BeginCollection(); err != nil {
		return err
	}
	isArray := rv.Kind() == reflect.Array
	i := 0
	for {
		elemReal, ok, err := r.NextArrayValue()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if isArray {
			if i >= rv.Len() {
				return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(),
					"too many elements for %s (expected %d)", rv.Type(), rv.Len())
			}
			if err := decodeValue(r, elemReal, rv.Index(i)); err != nil {
				return err
			}
		} else {
			elem := reflect.New(rv.Type().Elem()).Elem()
			if err := decodeValue(r, elemReal, elem); err != nil {
				return err
			}
			rv.Set(reflect.Append(rv, elem))
		}
		i++
	}
	if isArray && i != rv.Len() {
		return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(),
			"too few elements for %s (got %d, expected %d)", rv.Type(), i, rv.Len())
	}
	return r.EndCollection()
}

// decodeMap handles a record reached via a map[string]V or map[token.Date]V
// target (spec §8.1's additive map-deserialization property). Keys are
// either plain strings or structural dates. As with decodeNestedRecord, the
// target's shape decides the read, not a lookahead guess: `{}` always
// decodes to an empty map rather than being rejected as a sequence (spec
// §9's override rule), and a bare-value sequence still fails via
// NextProperty's own key-token check.
func decodeMap(r *reader.Reader, rv reflect.Value) *clzerr.Error {
	keyType := rv.Type().Key()
	isDateKey := keyType == reflect.TypeOf(token.Date{})
	if !isDateKey && keyType.Kind() != reflect.String {
		return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(),
			"unsupported map key type %s (want string or token.Date)", keyType)
	}
	if err := r.BeginCollection(); err != nil {
		return err
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(rv.Type()))
	}
	for {
		key, real, ok, err := r.NextProperty()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var kv reflect.Value
		if isDateKey {
			if !key.IsDate {
				return clzerr.New(clzerr.InvalidType, r.Tokenizer().Position(), "expected a date key, found %q", key.Ident)
			}
			kv = reflect.ValueOf(key.Date)
		} else {
			if key.IsDate {
				kv = reflect.ValueOf(key.Date.String()).Convert(keyType)
			} else {
				kv = reflect.ValueOf(key.Ident).Convert(keyType)
			}
		}
		ev := reflect.New(rv.Type().Elem()).Elem()
		if err := decodeValue(r, real, ev); err != nil {
			return err
		}
		rv.SetMapIndex(kv, ev)
	}
	return r.EndCollection()
}

// decodeAny implements the self-describing dispatch row: it delegates to
// value.ParseOne and converts the result into plain Go values (map[string]
// any, []any, and so on) so callers targeting `any` get something directly
// usable without importing the value package themselves.
func decodeAny(r *reader.Reader, real token.Real) (any, *clzerr.Error) {
	v, err := value.ParseOne(r, real)
	if err != nil {
		return nil, err
	}
	return toPlain(v), nil
}

func toPlain(v value.Value) any {
	switch v.Kind {
	case value.KindNone:
		return nil
	case value.KindInteger:
		return v.Integer
	case value.KindDecimal:
		return v.Decimal
	case value.KindBoolean:
		return v.Boolean
	case value.KindDate:
		return v.Date
	case value.KindString, value.KindIdentifier:
		return v.Str
	case value.KindArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = toPlain(e)
		}
		return out
	case value.KindObject:
		out := make(map[string]any, len(v.Object))
		for _, p := range v.Object {
			out[p.Key.String()] = toPlain(p.Value)
		}
		return out
	}
	return nil
}

func isVariant(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(reflect.TypeOf((*Variant)(nil)).Elem()) ||
		t.Implements(reflect.TypeOf((*Variant)(nil)).Elem())
}
