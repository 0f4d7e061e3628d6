package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRepositoryContextsRespectBoundaries(t *testing.T) {
	violations, err := collectViolations(filepath.Join("..", "contexts"))
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	for _, v := range violations {
		t.Errorf("%s:%d imports %q (%s)", v.File, v.Line, v.Import, v.Rule)
	}
}

func writeSource(t *testing.T, root string, rel string, imports ...string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := "package x\n\nimport (\n"
	for _, imp := range imports {
		src += "\t_ \"" + imp + "\"\n"
	}
	src += ")\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCollectViolationsFlagsLayerAndModuleLeaks(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "safety/pipeline/domain/entities/asset.go",
		"time",
		"warden/contexts/safety/pipeline/adapters/memory",
	)
	writeSource(t, root, "safety/pipeline/application/commands/run.go",
		"context",
		"warden/contexts/safety/pipeline/ports",
		"warden/contexts/safety/ledger/application/commands",
		"warden/internal/platform/db",
		"golang.org/x/sync/errgroup",
		"github.com/redis/go-redis/v9",
	)
	writeSource(t, root, "safety/pipeline/ports/ports.go",
		"warden/contracts/gen/events/v1",
		"warden/contexts/safety/pipeline/domain/entities",
	)
	writeSource(t, root, "safety/pipeline/adapters/redis/lease.go",
		"github.com/redis/go-redis/v9",
	)

	violations, err := collectViolations(root)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	got := map[string]int{}
	for _, v := range violations {
		got[v.Import+" | "+v.Rule]++
	}
	want := []string{
		"warden/contexts/safety/pipeline/adapters/memory | domain must not import adapters",
		"warden/contexts/safety/pipeline/adapters/memory | domain import is outside explicit allowlist",
		"warden/contexts/safety/ledger/application/commands | cross-module imports are forbidden",
		"warden/contexts/safety/ledger/application/commands | application import is outside explicit allowlist",
		"warden/internal/platform/db | application must not import runtime infrastructure",
		"warden/internal/platform/db | application import is outside explicit allowlist",
		"github.com/redis/go-redis/v9 | application import is outside explicit allowlist",
	}
	for _, key := range want {
		if got[key] != 1 {
			t.Errorf("expected violation %q, got %v", key, got)
		}
	}
	if len(violations) != len(want) {
		t.Fatalf("expected %d violations, got %d: %+v", len(want), len(violations), violations)
	}
}
