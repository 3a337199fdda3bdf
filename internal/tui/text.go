package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AntoineGS/cursorrules/internal/catalog"
)

// RunText is the line based selection used when stdin is not a terminal.
// It prints every rule numbered and reads one answer from r: numbers such
// as "1,3,5", "all", or a category name. An empty answer selects nothing.
func (c *Controller) RunText(ctx context.Context, dest string, r io.Reader) (Summary, error) {
	idx, err := c.catalog.Scan()
	if err != nil {
		return Summary{}, fmt.Errorf("scanning rules: %w", err)
	}

	items := idx.Items()
	if len(items) == 0 {
		c.notice(WarningStyle, NoticeNoCategories)
		return Summary{Status: StatusNoCategories}, nil
	}

	c.printTextMenu(items)

	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Summary{}, fmt.Errorf("reading selection: %w", err)
	}

	selected := ParseTextSelection(answer, items)
	for _, item := range selected {
		fmt.Fprintf(c.out, "  • %s\n", item.DisplayLabel())
	}

	return c.finish(ctx, dest, selected)
}

func (c *Controller) printTextMenu(items []catalog.Item) {
	title := "Rule selection"
	fmt.Fprintln(c.out, TitleStyle.Render(title))
	fmt.Fprintln(c.out, TitleRuleStyle.Render(strings.Repeat("=", len(title))))
	fmt.Fprintln(c.out)

	for i, item := range items {
		fmt.Fprintf(c.out, "  %d. %s\n", i+1, item.DisplayLabel())
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, MutedTextStyle.Render(`Enter numbers separated by commas (e.g. 1,3,5), "all", or a category name.`))
	fmt.Fprintln(c.out, MutedTextStyle.Render("Press Enter to skip."))
	fmt.Fprint(c.out, "Select rules to install: ")
}

// ParseTextSelection resolves a text answer against items. Unknown numbers
// are ignored and each item is returned at most once, in list order.
func ParseTextSelection(answer string, items []catalog.Item) []catalog.Item {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return nil
	}

	picked := make([]bool, len(items))

	switch category, isCategory := catalog.ParseCategory(answer); {
	case answer == "all":
		for i := range picked {
			picked[i] = true
		}
	case isCategory:
		for i, item := range items {
			picked[i] = item.Category == category
		}
	default:
		for _, field := range strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == ' ' }) {
			n, err := strconv.Atoi(field)
			if err != nil || n < 1 || n > len(items) {
				continue
			}
			picked[n-1] = true
		}
	}

	var selected []catalog.Item
	for i, item := range items {
		if picked[i] {
			item.Selected = true
			selected = append(selected, item)
		}
	}

	return selected
}
