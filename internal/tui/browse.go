package tui

import (
	"context"
	"fmt"

	"github.com/AntoineGS/cursorrules/internal/catalog"
)

// BrowseStatus is the result of applying a key to the category browser.
type BrowseStatus int

const (
	// BrowsePending means the browser keeps listening.
	BrowsePending BrowseStatus = iota
	// BrowseCancelled means the user aborted the session.
	BrowseCancelled
	// BrowseChosen means the user picked a category to edit.
	BrowseChosen
	// BrowseFinished means the user picked the finish entry.
	BrowseFinished
)

// BrowseOutcome reports what a key did to the browser. Category is set only
// for BrowseChosen.
type BrowseOutcome struct {
	Status   BrowseStatus
	Category catalog.Category
}

// Resolved reports whether the browser is finished for this visit.
func (o BrowseOutcome) Resolved() bool {
	return o.Status != BrowsePending
}

// BrowseState is the category browser: the non-empty categories followed by
// the finish entry. A new one is created, cursor at the top, on every visit.
type BrowseState struct {
	Categories []catalog.Category
	Labels     []string
	Cursor     int
}

// NewBrowseState creates the browser for categories. states, when given,
// supply the per-category selection counts shown next to each name.
func NewBrowseState(categories []catalog.Category, states map[catalog.Category]*CategoryMenuState) *BrowseState {
	labels := make([]string, 0, len(categories)+1)
	for _, c := range categories {
		label := string(c)
		if st, ok := states[c]; ok {
			label = fmt.Sprintf("%s (%d/%d selected)", c, st.SelectedCount, len(st.Items))
		}
		labels = append(labels, label)
	}
	labels = append(labels, FinishLabel)

	return &BrowseState{
		Categories: categories,
		Labels:     labels,
	}
}

// finishIndex is the position of the synthetic finish entry.
func (s *BrowseState) finishIndex() int {
	return len(s.Categories)
}

// Apply performs one key on the state.
func (s *BrowseState) Apply(k Key) BrowseOutcome {
	switch k {
	case KeyUp:
		if s.Cursor > 0 {
			s.Cursor--
		}
	case KeyDown:
		if s.Cursor < s.finishIndex() {
			s.Cursor++
		}
	case KeyConfirm:
		if s.Cursor == s.finishIndex() {
			return BrowseOutcome{Status: BrowseFinished}
		}
		return BrowseOutcome{Status: BrowseChosen, Category: s.Categories[s.Cursor]}
	case KeyCancel, KeyBack:
		return BrowseOutcome{Status: BrowseCancelled}
	case KeyNone, KeyToggle, KeySelectAll, KeyClearAll:
		// not used by the browser
	}

	return BrowseOutcome{Status: BrowsePending}
}

// Menu describes the frame for the current state.
func (s *BrowseState) Menu() Menu {
	return Menu{
		Title:  BrowseTitle,
		Lines:  s.Labels,
		Cursor: s.Cursor,
		Footer: []string{
			RenderHelp(helpPairs(Keys.Up, Keys.Down, Keys.Confirm, Keys.Cancel)...),
		},
	}
}

type browseListener struct {
	state    *BrowseState
	renderer *MenuRenderer
	outcome  BrowseOutcome
}

func (l *browseListener) View() string {
	return l.renderer.Render(l.state.Menu())
}

func (l *browseListener) HandleKey(k Key) bool {
	l.outcome = l.state.Apply(k)
	return l.outcome.Resolved()
}

// SelectCategory runs the category browser until it resolves.
func SelectCategory(ctx context.Context, in Input, r *MenuRenderer, state *BrowseState) (BrowseOutcome, error) {
	l := &browseListener{state: state, renderer: r}
	if err := in.Listen(ctx, l); err != nil {
		return BrowseOutcome{}, err
	}
	return l.outcome, nil
}
