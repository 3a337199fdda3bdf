package catalog

import (
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/AntoineGS/cursorrules/internal/assets"
)

func TestVerify_BundledRulesAreValid(t *testing.T) {
	issues, err := New(assets.Rules()).Verify()
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	for _, issue := range issues {
		t.Errorf("bundled rule issue: %s", issue)
	}
}

func TestCheckRule(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "valid",
			content: validRule,
		},
		{
			name:    "crlf line endings",
			content: strings.ReplaceAll(validRule, "\n", "\r\n"),
		},
		{
			name:    "no front matter",
			content: "<rule>\nname: x\nfilters:\nactions:\n</rule>\n## Critical Rules\n",
			want:    []string{`missing opening "---"`},
		},
		{
			name:    "unterminated front matter",
			content: "---\ndescription: x\n<rule>\n",
			want:    []string{`missing closing "---"`},
		},
		{
			name:    "missing key",
			content: strings.Replace(validRule, "alwaysApply: false\n", "", 1),
			want:    []string{`front matter is missing "alwaysApply"`},
		},
		{
			name:    "missing critical rules",
			content: strings.Replace(validRule, "## Critical Rules", "## Notes", 1),
			want:    []string{`missing "## Critical Rules"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckRule([]byte(tt.content))
			for _, want := range tt.want {
				if !slices.Contains(got, want) {
					t.Errorf("CheckRule() = %q, missing %q", got, want)
				}
			}
			if len(tt.want) == 0 && len(got) != 0 {
				t.Errorf("CheckRule() = %q, want no problems", got)
			}
		})
	}
}

func TestCheckRule_UnquotedGlobIsInvalidYAML(t *testing.T) {
	content := strings.Replace(validRule, `globs: "**/*.go"`, "globs: **/*.go", 1)

	got := CheckRule([]byte(content))
	if len(got) != 1 || !strings.Contains(got[0], "front matter is not valid YAML") {
		t.Errorf("CheckRule() = %q, want one YAML problem", got)
	}
}

func TestVerify_ReportsPaths(t *testing.T) {
	fsys := fstest.MapFS{
		"standards/good.mdc": {Data: []byte(validRule)},
		"utils/bad.mdc":      {Data: []byte("just text")},
	}

	issues, err := New(fsys).Verify()
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(issues) == 0 {
		t.Fatal("Verify() found no issues in utils/bad.mdc")
	}

	for _, issue := range issues {
		if issue.Path != "utils/bad.mdc" {
			t.Errorf("issue reported for %s", issue.Path)
		}
	}
	if !strings.HasPrefix(issues[0].String(), "utils/bad.mdc: ") {
		t.Errorf("String() = %q", issues[0].String())
	}
}
