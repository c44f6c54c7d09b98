package main

import "github.com/vippsas/clausewitz/value"

// toYAMLShape converts a value.Value into plain Go data (map[string]any,
// []any, primitives) that gopkg.in/yaml.v3 can marshal directly.
func toYAMLShape(v value.Value) any {
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
		return v.Date.String()
	case value.KindString, value.KindIdentifier:
		return v.Str
	case value.KindArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = toYAMLShape(e)
		}
		return out
	case value.KindObject:
		out := make(map[string]any, len(v.Object))
		for _, p := range v.Object {
			out[p.Key.String()] = toYAMLShape(p.Value)
		}
		return out
	}
	return nil
}
