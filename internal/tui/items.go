package tui

import (
	"context"
	"fmt"

	"github.com/AntoineGS/cursorrules/internal/catalog"
)

// ItemsStatus is the result of applying a key to a category's item menu.
type ItemsStatus int

const (
	// ItemsPending means the menu keeps listening.
	ItemsPending ItemsStatus = iota
	// ItemsConfirmed means the user accepted the category.
	ItemsConfirmed
	// ItemsCancelled means the user went back. Selections are kept.
	ItemsCancelled
)

// ItemsOutcome reports what a key did to the item menu.
type ItemsOutcome struct {
	Status ItemsStatus
}

// Resolved reports whether the menu is finished for this visit.
func (o ItemsOutcome) Resolved() bool {
	return o.Status != ItemsPending
}

// CategoryMenuState is the multi-select state of one category. It lives for
// the whole session and is mutated in place on every visit.
type CategoryMenuState struct {
	Category      catalog.Category
	Items         []catalog.Item
	Cursor        int
	SelectedCount int
}

// NewCategoryMenuState creates the state for category with nothing selected.
func NewCategoryMenuState(category catalog.Category, entries []catalog.Entry) *CategoryMenuState {
	return &CategoryMenuState{
		Category: category,
		Items:    catalog.NewItems(category, entries),
	}
}

// Apply performs one key on the state.
func (s *CategoryMenuState) Apply(k Key) ItemsOutcome {
	last := len(s.Items) - 1

	switch k {
	case KeyUp:
		if s.Cursor > 0 {
			s.Cursor--
		}
	case KeyDown:
		if s.Cursor < last {
			s.Cursor++
		}
	case KeyToggle:
		if s.Cursor >= 0 && s.Cursor <= last {
			s.setSelected(s.Cursor, !s.Items[s.Cursor].Selected)
		}
	case KeySelectAll:
		for i := range s.Items {
			s.setSelected(i, true)
		}
	case KeyClearAll:
		for i := range s.Items {
			s.setSelected(i, false)
		}
	case KeyConfirm:
		return ItemsOutcome{Status: ItemsConfirmed}
	case KeyCancel:
		return ItemsOutcome{Status: ItemsCancelled}
	case KeyNone, KeyBack:
		// not used by the item menu
	}

	return ItemsOutcome{Status: ItemsPending}
}

// setSelected updates one item and keeps SelectedCount in step.
func (s *CategoryMenuState) setSelected(i int, selected bool) {
	if s.Items[i].Selected == selected {
		return
	}

	s.Items[i].Selected = selected
	if selected {
		s.SelectedCount++
	} else {
		s.SelectedCount--
	}
}

// Selected returns the selected items in menu order.
func (s *CategoryMenuState) Selected() []catalog.Item {
	selected := make([]catalog.Item, 0, s.SelectedCount)
	for _, item := range s.Items {
		if item.Selected {
			selected = append(selected, item)
		}
	}
	return selected
}

// Menu describes the frame for the current state.
func (s *CategoryMenuState) Menu() Menu {
	lines := make([]string, len(s.Items))
	for i, item := range s.Items {
		box := UncheckedStyle.Render(CheckboxUnchecked)
		if item.Selected {
			box = CheckedStyle.Render(CheckboxChecked)
		}
		lines[i] = box + " " + item.DisplayLabel()
	}

	return Menu{
		Title:  fmt.Sprintf("[%s] Rule selection", s.Category),
		Lines:  lines,
		Cursor: s.Cursor,
		Footer: []string{
			fmt.Sprintf("Selected: %d/%d rules", s.SelectedCount, len(s.Items)),
			RenderHelp(helpPairs(Keys.Up, Keys.Down, Keys.Toggle, Keys.SelectAll, Keys.ClearAll, Keys.Confirm, Keys.Cancel)...),
		},
	}
}

// itemsListener feeds keys from an Input into a CategoryMenuState.
type itemsListener struct {
	state    *CategoryMenuState
	renderer *MenuRenderer
	outcome  ItemsOutcome
}

func (l *itemsListener) View() string {
	return l.renderer.Render(l.state.Menu())
}

func (l *itemsListener) HandleKey(k Key) bool {
	l.outcome = l.state.Apply(k)
	return l.outcome.Resolved()
}

// SelectItems runs the item menu for state until the user confirms or goes
// back. state is mutated in place and returned with the outcome.
func SelectItems(ctx context.Context, in Input, r *MenuRenderer, state *CategoryMenuState) (*CategoryMenuState, ItemsOutcome, error) {
	l := &itemsListener{state: state, renderer: r}
	if err := in.Listen(ctx, l); err != nil {
		return state, ItemsOutcome{}, err
	}
	return state, l.outcome, nil
}
