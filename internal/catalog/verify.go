package catalog

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// requiredFrontMatter are the keys every rule header must declare.
var requiredFrontMatter = []string{"description", "globs", "alwaysApply"}

// requiredMarkers must appear somewhere in the rule body.
var requiredMarkers = []string{"<rule>", "name:", "filters:", "actions:", "## Critical Rules"}

// RuleIssue is a problem found in one rule file.
type RuleIssue struct {
	Path    string
	Problem string
}

func (i RuleIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Problem)
}

// Verify checks the structure of every rule in the catalog.
func (c *Catalog) Verify() ([]RuleIssue, error) {
	idx, err := c.Scan()
	if err != nil {
		return nil, err
	}

	var issues []RuleIssue
	for _, category := range Categories {
		for _, e := range idx[category] {
			content, err := fs.ReadFile(c.fsys, e.RelativePath)
			if err != nil {
				issues = append(issues, RuleIssue{Path: e.RelativePath, Problem: fmt.Sprintf("unreadable: %v", err)})
				continue
			}

			for _, problem := range CheckRule(content) {
				issues = append(issues, RuleIssue{Path: e.RelativePath, Problem: problem})
			}
		}
	}

	return issues, nil
}

// CheckRule returns the structural problems of a single rule file.
func CheckRule(content []byte) []string {
	var problems []string

	header, body, err := splitFrontMatter(content)
	if err != nil {
		problems = append(problems, err.Error())
	} else {
		var fields map[string]any
		if err := yaml.Unmarshal(header, &fields); err != nil {
			problems = append(problems, fmt.Sprintf("front matter is not valid YAML: %v", err))
		} else {
			for _, key := range requiredFrontMatter {
				if _, ok := fields[key]; !ok {
					problems = append(problems, fmt.Sprintf("front matter is missing %q", key))
				}
			}
		}
		content = body
	}

	for _, marker := range requiredMarkers {
		if !bytes.Contains(content, []byte(marker)) {
			problems = append(problems, fmt.Sprintf("missing %q", marker))
		}
	}

	return problems
}

func splitFrontMatter(content []byte) (header, body []byte, err error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	if !strings.HasPrefix(text, frontMatterDelimiter+"\n") {
		return nil, nil, fmt.Errorf("missing opening %q", frontMatterDelimiter)
	}

	rest := text[len(frontMatterDelimiter)+1:]
	if strings.HasPrefix(rest, frontMatterDelimiter) {
		return nil, []byte(rest[len(frontMatterDelimiter):]), nil
	}

	end := strings.Index(rest, "\n"+frontMatterDelimiter+"\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n"+frontMatterDelimiter) {
			end = len(rest) - len(frontMatterDelimiter) - 1
		} else {
			return nil, nil, fmt.Errorf("missing closing %q", frontMatterDelimiter)
		}
	}

	header = []byte(rest[:end])
	bodyStart := end + len(frontMatterDelimiter) + 1
	if bodyStart < len(rest) {
		body = []byte(rest[bodyStart:])
	}

	return header, body, nil
}
