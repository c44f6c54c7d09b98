// Package value builds an untyped tree from a reader for schema-less
// consumption, per spec §4.3.
package value

import (
	"strconv"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/vippsas/clausewitz/clzerr"
	"github.com/vippsas/clausewitz/reader"
	"github.com/vippsas/clausewitz/token"
)

// Kind discriminates the Value union described in spec §3.
type Kind int

const (
	KindNone Kind = iota
	KindInteger
	KindDecimal
	KindBoolean
	KindDate
	KindString
	KindIdentifier
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindInteger:
		return "Integer"
	case KindDecimal:
		return "Decimal"
	case KindBoolean:
		return "Boolean"
	case KindDate:
		return "Date"
	case KindString:
		return "String"
	case KindIdentifier:
		return "Identifier"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Pair is one entry of an ordered, duplicate-preserving Object multimap.
type Pair struct {
	Key   reader.Key
	Value Value
}

// Value is the generic value tree node: a tagged union, not an interface,
// so that borrowing a source string never forces it into an interface{}
// box (see SPEC_FULL.md §3.1).
type Value struct {
	Kind Kind

	Integer int64
	Decimal float64
	Boolean bool
	Date    token.Date
	Str     string // used for both String and Identifier kinds
	Object  []Pair
	Array   []Value
}

func None() Value                { return Value{Kind: KindNone} }
func Int(v int64) Value          { return Value{Kind: KindInteger, Integer: v} }
func Dec(v float64) Value        { return Value{Kind: KindDecimal, Decimal: v} }
func Bool(v bool) Value          { return Value{Kind: KindBoolean, Boolean: v} }
func DateVal(v token.Date) Value { return Value{Kind: KindDate, Date: v} }
func Str(v string) Value         { return Value{Kind: KindString, Str: v} }
func Identifier(v string) Value  { return Value{Kind: KindIdentifier, Str: v} }
func Obj(pairs []Pair) Value     { return Value{Kind: KindObject, Object: pairs} }
func Arr(vals []Value) Value     { return Value{Kind: KindArray, Array: vals} }

// Owned returns a copy of v where every string has been detached from the
// original source's backing array via strings.Clone, so the result can
// outlive the source string (spec §4.3's borrowed/owned guarantee; see
// SPEC_FULL.md §3.1 for why this is a no-op type change in Go but still a
// meaningful allocation/retention boundary).
func (v Value) Owned() Value {
	out := v
	switch v.Kind {
	case KindString, KindIdentifier:
		out.Str = strings.Clone(v.Str)
	case KindObject:
		out.Object = make([]Pair, len(v.Object))
		for i, p := range v.Object {
			out.Object[i] = Pair{Key: cloneKey(p.Key), Value: p.Value.Owned()}
		}
	case KindArray:
		out.Array = make([]Value, len(v.Array))
		for i, e := range v.Array {
			out.Array[i] = e.Owned()
		}
	}
	return out
}

func cloneKey(k reader.Key) reader.Key {
	if k.IsDate {
		return k
	}
	return reader.Key{Ident: strings.Clone(k.Ident)}
}

// Dump pretty-prints v for debugging via github.com/alecthomas/repr, in the
// spirit of the teacher's Create.String()/WithoutPos() debug helpers.
func (v Value) Dump() string {
	return repr.String(v, repr.Indent("  "))
}

// Get looks up the first pair in an Object whose key matches name,
// returning (value, true), or (None(), false) if absent. Duplicates are
// not an error here; callers that care about duplicate-ness should walk
// Object directly.
func (v Value) Get(name string) (Value, bool) {
	if v.Kind != KindObject {
		return None(), false
	}
	for _, p := range v.Object {
		if !p.Key.IsDate && p.Key.Ident == name {
			return p.Value, true
		}
	}
	return None(), false
}

// Parse constructs a Value from r without a schema: the root is parsed as
// an implicit object by iterating NextProperty and recursing per property
// (spec §4.3, §6).
func Parse(r *reader.Reader) (Value, *clzerr.Error) {
	var pairs []Pair
	for {
		key, real, ok, err := r.NextProperty()
		if err != nil {
			return Value{}, err
		}
		if !ok {
			break
		}
		v, verr := parseOne(r, real)
		if verr != nil {
			return Value{}, verr
		}
		pairs = append(pairs, Pair{Key: key, Value: v})
	}
	return Obj(pairs), nil
}

// ParseOne recurses into a single value given its already-peeked coarse
// Real classification. Exported for decode's self-describing ("any")
// dispatch case (spec §4.4's "Self-describing" row), which needs the same
// recursion value.Parse uses internally.
func ParseOne(r *reader.Reader, real token.Real) (Value, *clzerr.Error) {
	return parseOne(r, real)
}

// parseOne recurses into a single value given its already-peeked coarse
// Real classification.
func parseOne(r *reader.Reader, real token.Real) (Value, *clzerr.Error) {
	switch real {
	case token.RealBoolean:
		b, err := r.ReadBoolean()
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil

	case token.RealIdentifier:
		s, err := r.ReadIdentifier()
		if err != nil {
			return Value{}, err
		}
		return Identifier(s), nil

	case token.RealString:
		s, err := r.ReadString()
		if err != nil {
			return Value{}, err
		}
		return Str(s), nil

	case token.RealDate:
		d, err := r.ReadDate()
		if err != nil {
			return Value{}, err
		}
		return DateVal(d), nil

	case token.RealNumber:
		lexeme, offset, err := r.ReadNumber()
		if err != nil {
			return Value{}, err
		}
		if strings.Contains(lexeme, ".") {
			f, perr := strconv.ParseFloat(lexeme, 64)
			if perr != nil {
				return Value{}, clzerr.New(clzerr.InvalidNumber, offset, "invalid decimal %q: %s", lexeme, perr)
			}
			return Dec(f), nil
		}
		i, perr := strconv.ParseInt(lexeme, 10, 64)
		if perr != nil {
			return Value{}, clzerr.New(clzerr.InvalidNumber, offset, "invalid integer %q: %s", lexeme, perr)
		}
		return Int(i), nil

	case token.RealObjectOrArray:
		kind, err := r.TryDiscernArrayOrMap()
		if err != nil {
			return Value{}, err
		}
		if err := r.BeginCollection(); err != nil {
			return Value{}, err
		}
		var result Value
		if kind == reader.Array {
			var vals []Value
			for {
				elemReal, ok, err := r.NextArrayValue()
				if err != nil {
					return Value{}, err
				}
				if !ok {
					break
				}
				v, verr := parseOne(r, elemReal)
				if verr != nil {
					return Value{}, verr
				}
				vals = append(vals, v)
			}
			result = Arr(vals)
		} else {
			var pairs []Pair
			for {
				key, propReal, ok, err := r.NextProperty()
				if err != nil {
					return Value{}, err
				}
				if !ok {
					break
				}
				v, verr := parseOne(r, propReal)
				if verr != nil {
					return Value{}, verr
				}
				pairs = append(pairs, Pair{Key: key, Value: v})
			}
			result = Obj(pairs)
		}
		if err := r.EndCollection(); err != nil {
			return Value{}, err
		}
		return result, nil
	}
	return None(), nil
}
