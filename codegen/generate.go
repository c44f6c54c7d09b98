package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"
)

// Generate renders the source of one clausewitz_gen.go file covering every
// record in infos, all belonging to the same package (packageName is the short Go
// package identifier, not the import path). Each record gets a
// Decode<StructName> function implementing spec §4.4.2's duplicate-collector
// record visitor directly against the reader package, with no reflection:
// a dup field whose declared type is not a slice fails at generation time
// (ElemExpr is left empty by FindRecords, see below), not at runtime.
func Generate(packageName string, infos []RecordInfo) ([]byte, error) {
	var buf bytes.Buffer
	if err := genTemplate.Execute(&buf, struct {
		Package string
		Records []RecordInfo
	}{Package: packageName, Records: infos}); err != nil {
		return nil, fmt.Errorf("codegen: render: %w", err)
	}
	for _, rec := range infos {
		for _, f := range rec.Fields {
			if f.Dup && f.ElemExpr == "" {
				return nil, fmt.Errorf("codegen: %s.%s is tagged dup but its type %s is not a slice",
					rec.StructName, f.GoName, f.TypeExpr)
			}
		}
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: gofmt generated source: %w", err)
	}
	return formatted, nil
}

var genTemplate = template.Must(template.New("clausewitz_gen").Parse(`// Code generated by clausewitzgen. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/vippsas/clausewitz/clzerr"
	"github.com/vippsas/clausewitz/decode"
	"github.com/vippsas/clausewitz/reader"
)

{{range .Records}}
// Decode{{.StructName}} deserializes one {{.StructName}} from r without
// reflection, enforcing the normal/duplicate-collector field partition of
// spec §4.4.2.
func Decode{{.StructName}}(r *reader.Reader, root bool) (out {{.StructName}}, err *clzerr.Error) {
	if !root {
		if err = r.BeginCollection(); err != nil {
			return out, err
		}
	}
	var filled struct {
{{range .Fields}}{{if not .Dup}}		{{.GoName}} bool
{{end}}{{end}}	}
	for {
		key, real, ok, perr := r.NextProperty()
		if perr != nil {
			return out, perr
		}
		if !ok {
			break
		}
		switch key.String() {
{{range .Fields}}		case {{printf "%q" .WireName}}:
{{if .Dup}}			var elem {{.ElemExpr}}
			if err = decode.DecodeValueInto(r, real, &elem); err != nil {
				return out, err
			}
			out.{{.GoName}} = append(out.{{.GoName}}, elem)
{{else}}			if filled.{{.GoName}} {
				return out, clzerr.New(clzerr.DuplicateField, r.Tokenizer().Position(), "duplicate field %q", key.String())
			}
			if err = decode.DecodeValueInto(r, real, &out.{{.GoName}}); err != nil {
				return out, err
			}
			filled.{{.GoName}} = true
{{end}}{{end}}		default:
			return out, clzerr.New(clzerr.UnknownField, r.Tokenizer().Position(), "unknown field %q", key.String())
		}
	}
{{range .Fields}}{{if not .Dup}}	if !filled.{{.GoName}} {
		return out, clzerr.New(clzerr.MissingField, r.Tokenizer().Position(), "missing required field {{printf "%q" .WireName}}")
	}
{{end}}{{end}}	if !root {
		if err = r.EndCollection(); err != nil {
			return out, err
		}
	}
	return out, nil
}
{{end}}
`))
