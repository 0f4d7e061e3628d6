// Command check_boundaries enforces the import rules between and inside the
// bounded contexts under contexts/. Run it from the repository root:
//
//	go run ./scripts
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "warden"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what a layer may import besides the stdlib. Module-relative
// entries are joined to the importing module's path.
type layerRule struct {
	moduleRelative []string
	external       []string
	noAdapters     bool
	noRuntime      bool
}

var layerRules = map[string]layerRule{
	"domain": {
		moduleRelative: []string{"domain"},
		noAdapters:     true,
		noRuntime:      true,
	},
	"ports": {
		moduleRelative: []string{"domain", "ports"},
		external:       []string{modulePath + "/contracts"},
		noAdapters:     true,
		noRuntime:      true,
	},
	"application": {
		moduleRelative: []string{"application", "domain", "ports"},
		external:       []string{modulePath + "/contracts", "golang.org/x/sync"},
		noAdapters:     true,
		noRuntime:      true,
	},
}

var runtimePrefixes = []string{
	modulePath + "/internal/",
	modulePath + "/integrations/",
	modulePath + "/platform/",
}

func main() {
	violations, err := collectViolations("contexts")
	if err != nil {
		fmt.Fprintf(os.Stderr, "walk contexts: %v\n", err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations walks root, which must be the contexts/ directory, and
// returns violations sorted by file, line and import.
func collectViolations(root string) ([]violation, error) {
	var violations []violation

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		// <context>/<service>/<layer>/...
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 4 {
			return nil
		}
		modulePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[0], parts[1])
		found, err := validateFile(path, filepath.ToSlash(path), parts[2], modulePrefix)
		if err != nil {
			return err
		}
		violations = append(violations, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})
	return violations, nil
}

func validateFile(path string, displayPath string, layer string, modulePrefix string) ([]violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: displayPath, Line: 1, Rule: "file must parse"}}, nil
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		report := func(rule string) {
			violations = append(violations, violation{
				File:   displayPath,
				Line:   fset.Position(imp.Pos()).Line,
				Import: importPath,
				Rule:   rule,
			})
		}

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, modulePrefix) {
			report("cross-module imports are forbidden")
		}

		rule, ok := layerRules[layer]
		if !ok {
			continue
		}
		if rule.noAdapters && strings.Contains(importPath, "/adapters/") {
			report(layer + " must not import adapters")
		}
		if rule.noRuntime && hasAnyPrefix(importPath, runtimePrefixes) {
			report(layer + " must not import runtime infrastructure")
		}
		if !isStdlib(importPath) && !rule.allows(importPath, modulePrefix) {
			report(layer + " import is outside explicit allowlist")
		}
	}
	return violations, nil
}

func (r layerRule) allows(importPath string, modulePrefix string) bool {
	for _, rel := range r.moduleRelative {
		if hasPrefix(importPath, modulePrefix+"/"+rel) {
			return true
		}
	}
	for _, ext := range r.external {
		if hasPrefix(importPath, ext) {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
