package installer

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// unifiedDiff renders a line diff between the installed file and the rule
// that would replace it. It returns "" when the contents are equal.
func unifiedDiff(installed, incoming []byte, target string) string {
	if string(installed) == string(incoming) {
		return ""
	}

	dmp := diffmatchpatch.New()

	a, b, lineArray := dmp.DiffLinesToChars(string(installed), string(incoming))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("--- installed (%s)\n", target))
	sb.WriteString("+++ bundled rule\n")

	for _, diff := range diffs {
		lines := strings.Split(diff.Text, "\n")
		// Remove trailing empty string from split
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			switch diff.Type {
			case diffmatchpatch.DiffDelete:
				sb.WriteString("- " + line + "\n")
			case diffmatchpatch.DiffInsert:
				sb.WriteString("+ " + line + "\n")
			case diffmatchpatch.DiffEqual:
				sb.WriteString("  " + line + "\n")
			}
		}
	}

	return sb.String()
}
