package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestOnlyBlobPackageImportsInfra keeps the infra blob backends behind the
// blob package; everything else depends on blob.Store.
func TestOnlyBlobPackageImportsInfra(t *testing.T) {
	const (
		infraPrefix   = "loanlocator/internal/infra/blob"
		allowedPrefix = "loanlocator/internal/blob"
	)
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "loanlocator/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	var violations []string
	for _, pkg := range pkgs {
		if strings.HasPrefix(pkg.PkgPath, allowedPrefix) || strings.HasPrefix(pkg.PkgPath, infraPrefix) {
			continue
		}
		for importPath := range pkg.Imports {
			if importPath == infraPrefix || strings.HasPrefix(importPath, infraPrefix+"/") {
				violations = append(violations, pkg.PkgPath+": "+importPath)
			}
		}
	}
	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("forbidden import of infra blob package: %s", v)
	}
}
