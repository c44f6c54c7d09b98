package codegen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/tools/go/packages"
)

// WriteAll loads every package under dir matching patterns, finds records
// needing a generated visitor, and writes one clausewitz_gen.go per package
// directory that has at least one. It mirrors the teacher's
// GetPackages-then-walk shape (goparser/utils.go, goparser/inspect.go)
// end to end as a single convenience entry point for cmd/clausewitzgen.
func WriteAll(log *logrus.Logger, dir string, patterns ...string) error {
	pkgs, err := Load(dir, patterns...)
	if err != nil {
		return fmt.Errorf("codegen: load packages: %w", err)
	}

	byPackage := make(map[*packages.Package][]RecordInfo)
	for _, pkg := range pkgs {
		for _, rec := range FindRecords([]*packages.Package{pkg}) {
			byPackage[pkg] = append(byPackage[pkg], rec)
		}
	}

	if len(byPackage) == 0 {
		log.Info("codegen: no clausewitz:\"...,dup\" fields found, nothing to generate")
		return nil
	}

	for pkg, recs := range byPackage {
		src, err := Generate(pkg.Name, recs)
		if err != nil {
			return fmt.Errorf("codegen: package %s: %w", pkg.PkgPath, err)
		}
		outDir := packageDir(pkg)
		outPath := filepath.Join(outDir, "clausewitz_gen.go")
		if err := os.WriteFile(outPath, src, 0o644); err != nil {
			return fmt.Errorf("codegen: write %s: %w", outPath, err)
		}
		log.WithFields(logrus.Fields{
			"package": pkg.PkgPath,
			"records": len(recs),
			"out":     outPath,
		}).Info("codegen: wrote generated visitor file")
	}
	return nil
}

func packageDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) > 0 {
		return filepath.Dir(pkg.GoFiles[0])
	}
	return "."
}
