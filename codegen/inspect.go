// Package codegen finds struct declarations carrying a
// `clausewitz:"...,dup"`-tagged field and emits a concrete RecordVisitor
// for each, per spec §4.4.2's "the visitor is generated so that the
// type-check happens at build time, not runtime" (SPEC_FULL.md §4.6).
//
// It is grounded directly on the teacher's goparser package: load packages
// with golang.org/x/tools/go/packages, walk their ASTs with go/ast, extract
// information about specific declaration shapes. The teacher looks for
// embed.FS arguments passed to MustInclude; we look for struct field tags
// instead.
package codegen

import (
	"go/ast"
	"go/types"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// FieldInfo describes one field of a discovered record, with enough type
// information to generate code that the Go compiler itself will reject if
// the declaration doesn't actually support the required operation (default
// construction and single-element extension for a dup field).
type FieldInfo struct {
	GoName   string // Go field identifier
	WireName string // clausewitz:"wire_name[,dup]"
	Dup      bool
	TypeExpr string // the field's type as Go source, e.g. "[]string"
	ElemExpr string // for Dup fields, the collection's element type as Go source
}

// RecordInfo describes one struct type qualifying for generation: it has at
// least one clausewitz:"...,dup" field.
type RecordInfo struct {
	Package    string // import path
	StructName string
	Fields     []FieldInfo
}

// Load wraps packages.Load the same way the teacher's GetPackages does,
// requesting enough mode bits to resolve field types.
func Load(dir string, patterns ...string) ([]*packages.Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedSyntax | packages.NeedImports,
		Dir: dir,
	}
	return packages.Load(cfg, patterns...)
}

// FindRecords walks every syntax tree in pkgs looking for struct type
// declarations with a duplicate-collector field, the way the teacher's
// inspector walks call expressions looking for MustInclude.
func FindRecords(pkgs []*packages.Package) []RecordInfo {
	var out []RecordInfo
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				ts, ok := n.(*ast.TypeSpec)
				if !ok {
					return true
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					return true
				}
				if info, ok := inspectStruct(pkg, ts.Name.Name, st); ok {
					out = append(out, info)
				}
				return true
			})
		}
	}
	return out
}

func inspectStruct(pkg *packages.Package, name string, st *ast.StructType) (RecordInfo, bool) {
	info := RecordInfo{Package: pkg.PkgPath, StructName: name}
	hasDup := false
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 || field.Tag == nil {
			continue
		}
		tagValue, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			continue
		}
		tag := reflectStructTagLookup(tagValue, "clausewitz")
		if tag == "" || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		wireName := parts[0]
		dup := false
		for _, opt := range parts[1:] {
			if opt == "dup" {
				dup = true
			}
		}
		for _, nameIdent := range field.Names {
			fi := FieldInfo{GoName: nameIdent.Name, WireName: wireName, Dup: dup}
			if tv := pkg.TypesInfo.TypeOf(field.Type); tv != nil {
				fi.TypeExpr = types.TypeString(tv, types.RelativeTo(pkg.Types))
				if dup {
					if sl, ok := tv.Underlying().(*types.Slice); ok {
						fi.ElemExpr = types.TypeString(sl.Elem(), types.RelativeTo(pkg.Types))
					}
				}
			}
			if dup {
				hasDup = true
			}
			info.Fields = append(info.Fields, fi)
		}
	}
	return info, hasDup
}

// reflectStructTagLookup duplicates reflect.StructTag.Get's tiny parser so
// codegen doesn't need to import reflect merely to parse a string literal
// extracted from source.
func reflectStructTagLookup(tag, key string) string {
	for tag != "" {
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}
		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			break
		}
		name := tag[:i]
		tag = tag[i+1:]
		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		qvalue := tag[:i+1]
		tag = tag[i+1:]
		if name == key {
			v, err := strconv.Unquote(qvalue)
			if err != nil {
				return ""
			}
			return v
		}
	}
	return ""
}
