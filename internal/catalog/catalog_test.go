package catalog

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/AntoineGS/cursorrules/internal/assets"
)

const validRule = `---
description: Example
globs: "**/*.go"
alwaysApply: false
---

<rule>
name: example
filters:
  - type: file_extension
actions:
  - type: suggest
</rule>

## Critical Rules

- Be nice.
`

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func itemNames(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func mustScan(t *testing.T, c *Catalog) Index {
	t.Helper()
	idx, err := c.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	return idx
}

func TestScan_Bundled(t *testing.T) {
	idx := mustScan(t, New(assets.Rules()))

	wantCategories := []Category{CategoryStandards, CategoryTest, CategoryUtils}
	if got := idx.Categories(); !slices.Equal(got, wantCategories) {
		t.Errorf("Categories() = %v, want %v", got, wantCategories)
	}

	want := map[Category][]string{
		CategoryStandards: {"go-standards", "react-patterns", "typescript-standards-auto"},
		CategoryTest:      {"testing-pyramid", "vitest-best-practices"},
		CategoryUtils:     {"agent-communication", "git-commit-push-agent"},
	}
	for category, rules := range want {
		if got := names(idx[category]); !slices.Equal(got, rules) {
			t.Errorf("%s = %v, want %v", category, got, rules)
		}
	}

	if idx.Len() != 7 {
		t.Errorf("Len() = %d, want 7", idx.Len())
	}

	for _, e := range idx[CategoryStandards] {
		if e.AbsolutePathHint != "" {
			t.Errorf("embedded rule %s has a path hint %q", e.Name, e.AbsolutePathHint)
		}
		if e.RelativePath != "standards/"+e.Name+Extension {
			t.Errorf("RelativePath = %q", e.RelativePath)
		}
	}
}

func TestScan_SkipsNonRulesAndDirectories(t *testing.T) {
	fsys := fstest.MapFS{
		"standards/a.mdc":        {Data: []byte(validRule)},
		"standards/readme.md":    {Data: []byte("# notes")},
		"standards/nested/b.mdc": {Data: []byte(validRule)},
		"test/c.mdc":             {Data: []byte(validRule)},
		"other/d.mdc":            {Data: []byte(validRule)},
	}

	idx := mustScan(t, New(fsys))

	if got := names(idx[CategoryStandards]); !slices.Equal(got, []string{"a"}) {
		t.Errorf("standards = %v, want [a]", got)
	}
	if got := names(idx[CategoryTest]); !slices.Equal(got, []string{"c"}) {
		t.Errorf("test = %v, want [c]", got)
	}
	if len(idx[CategoryUtils]) != 0 {
		t.Errorf("utils = %v, want none", names(idx[CategoryUtils]))
	}
	if got := idx.Categories(); !slices.Equal(got, []Category{CategoryStandards, CategoryTest}) {
		t.Errorf("Categories() = %v", got)
	}
}

func TestScan_EmptyTree(t *testing.T) {
	idx := mustScan(t, New(fstest.MapFS{}))

	if len(idx.Categories()) != 0 || idx.Len() != 0 || len(idx.Items()) != 0 {
		t.Errorf("empty tree gave categories %v, %d rules", idx.Categories(), idx.Len())
	}
}

func TestFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "utils"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "utils", "x.mdc"), []byte(validRule), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := FromDir(dir)
	if err != nil {
		t.Fatalf("FromDir() error = %v", err)
	}

	idx := mustScan(t, c)
	if len(idx[CategoryUtils]) != 1 {
		t.Fatalf("utils = %v, want one rule", names(idx[CategoryUtils]))
	}
	if got, want := idx[CategoryUtils][0].AbsolutePathHint, filepath.Join(dir, "utils", "x.mdc"); got != want {
		t.Errorf("AbsolutePathHint = %q, want %q", got, want)
	}
}

func TestFromDir_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := FromDir(filepath.Join(dir, "missing"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("FromDir(missing) error = %v, want 'does not exist'", err)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err = FromDir(file)
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("FromDir(file) error = %v, want 'not a directory'", err)
	}
}

func TestWithLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mustScan(t, New(assets.Rules()).WithLogger(logger))

	if !strings.Contains(logs.String(), "scanned category") {
		t.Errorf("debug log not written to the custom logger: %q", logs.String())
	}
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory(" Standards ")
	if !ok || c != CategoryStandards {
		t.Errorf("ParseCategory(\" Standards \") = %q, %v", c, ok)
	}

	if _, ok := ParseCategory("docs"); ok {
		t.Error("ParseCategory(docs) accepted an unknown category")
	}
}

func TestItems_DisplayLabel(t *testing.T) {
	items := NewItems(CategoryTest, []Entry{{Name: "unit", RelativePath: "test/unit.mdc"}})
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}

	if got := items[0].DisplayLabel(); got != "[test] unit" {
		t.Errorf("DisplayLabel() = %q", got)
	}
	if items[0].Selected {
		t.Error("new item is selected")
	}
	if items[0].RelativePath != "test/unit.mdc" {
		t.Errorf("RelativePath = %q", items[0].RelativePath)
	}
}

func TestIndex_Items_Order(t *testing.T) {
	idx := Index{
		CategoryUtils:     {{Name: "u", RelativePath: "utils/u.mdc"}},
		CategoryStandards: {{Name: "s", RelativePath: "standards/s.mdc"}},
	}

	items := idx.Items()
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Category != CategoryStandards || items[1].Category != CategoryUtils {
		t.Errorf("items out of category order: %v, %v", items[0].Category, items[1].Category)
	}
}

func TestFilter(t *testing.T) {
	idx := mustScan(t, New(assets.Rules()))

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"none keeps all", nil, nil},
		{"category name", []string{"test"}, []string{"testing-pyramid", "vitest-best-practices"}},
		{"glob with extension", []string{"standards/go-*.mdc"}, []string{"go-standards"}},
		{"glob without extension", []string{"**/*-agent"}, []string{"git-commit-push-agent"}},
		{"several", []string{"utils/agent-*", "test/vitest*"}, []string{"vitest-best-practices", "agent-communication"}},
		{"no match", []string{"nothing/*"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, err := idx.Filter(tt.patterns)
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}

			if tt.want == nil {
				if filtered.Len() != idx.Len() {
					t.Errorf("Len() = %d, want %d", filtered.Len(), idx.Len())
				}
				return
			}

			if got := itemNames(filtered.Items()); !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%v) = %v, want %v", tt.patterns, got, tt.want)
			}
		})
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := Index{}.Filter([]string{"standards/[a-"})
	if err == nil || !strings.Contains(err.Error(), "invalid pattern") {
		t.Errorf("Filter() error = %v, want 'invalid pattern'", err)
	}
}

func TestSearch(t *testing.T) {
	idx := mustScan(t, New(assets.Rules()))

	results := idx.Search("vitest")
	if len(results) == 0 || results[0].Name != "vitest-best-practices" {
		t.Errorf("Search(vitest) = %v", itemNames(results))
	}

	if got := idx.Search("zzzzqqq"); len(got) != 0 {
		t.Errorf("Search(zzzzqqq) = %v, want none", itemNames(got))
	}
	if got := idx.Search(""); len(got) != idx.Len() {
		t.Errorf("Search(\"\") returned %d items, want %d", len(got), idx.Len())
	}
}
