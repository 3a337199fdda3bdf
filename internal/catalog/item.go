package catalog

import "fmt"

// Item is a rule offered for selection.
type Item struct {
	Name         string
	Category     Category
	RelativePath string
	Selected     bool
}

// DisplayLabel returns the label shown in menus, e.g. "[standards] go-standards".
func (i Item) DisplayLabel() string {
	return fmt.Sprintf("[%s] %s", i.Category, i.Name)
}

// NewItems converts scanned entries of one category into unselected items.
func NewItems(category Category, entries []Entry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, Item{
			Name:         e.Name,
			Category:     category,
			RelativePath: e.RelativePath,
		})
	}

	return items
}
