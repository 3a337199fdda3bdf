package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/AntoineGS/cursorrules/internal/catalog"
)

// Scanner lists the available rules.
type Scanner interface {
	Scan() (catalog.Index, error)
}

// Copier writes rules into a validated destination.
type Copier interface {
	CopyAll(ctx context.Context, dest string) error
	CopySelected(ctx context.Context, dest string, items []catalog.Item) error
}

// DestinationValidator turns a user supplied destination into a safe
// absolute path.
type DestinationValidator interface {
	Validate(raw string) (string, error)
}

// Status is how a selection session ended.
type Status int

const (
	// StatusCancelled means the user aborted in the category browser.
	StatusCancelled Status = iota
	// StatusNoCategories means the catalog had nothing to offer.
	StatusNoCategories
	// StatusNoSelection means the user finished without selecting anything.
	StatusNoSelection
	// StatusCopied means the selected rules were copied.
	StatusCopied
)

func (s Status) String() string {
	switch s {
	case StatusCancelled:
		return "cancelled"
	case StatusNoCategories:
		return "no categories"
	case StatusNoSelection:
		return "no selection"
	case StatusCopied:
		return "copied"
	default:
		return "unknown"
	}
}

// Summary describes the end of a session. Destination and Items are set
// only when rules were copied.
type Summary struct {
	Status      Status
	Destination string
	Items       []catalog.Item
}

// Controller runs the interactive selection: the category browser and the
// per-category item menus, then hands the selection to the copier.
type Controller struct {
	catalog  Scanner
	copier   Copier
	guard    DestinationValidator
	input    Input
	renderer *MenuRenderer
	out      io.Writer
	logger   *slog.Logger
}

// NewController creates a Controller. Notices are written to io.Discard
// until WithOutput is used.
func NewController(scanner Scanner, copier Copier, guard DestinationValidator, input Input) *Controller {
	return &Controller{
		catalog:  scanner,
		copier:   copier,
		guard:    guard,
		input:    input,
		renderer: NewMenuRenderer(),
		out:      io.Discard,
		logger:   slog.Default(),
	}
}

// WithOutput sets where notices are printed.
func (c *Controller) WithOutput(w io.Writer) *Controller {
	c2 := *c
	c2.out = w

	return &c2
}

// WithLogger sets a custom logger
func (c *Controller) WithLogger(logger *slog.Logger) *Controller {
	c2 := *c
	c2.logger = logger

	return &c2
}

// Run drives the menus until the user cancels or finishes. dest is validated
// only once the user finishes with a non-empty selection.
func (c *Controller) Run(ctx context.Context, dest string) (Summary, error) {
	idx, err := c.catalog.Scan()
	if err != nil {
		return Summary{}, fmt.Errorf("scanning rules: %w", err)
	}

	categories := idx.Categories()
	if len(categories) == 0 {
		c.notice(WarningStyle, NoticeNoCategories)
		return Summary{Status: StatusNoCategories}, nil
	}

	states := make(map[catalog.Category]*CategoryMenuState, len(categories))
	for _, category := range categories {
		states[category] = NewCategoryMenuState(category, idx[category])
	}

	for {
		browse := NewBrowseState(categories, states)

		outcome, err := SelectCategory(ctx, c.input, c.renderer, browse)
		if err != nil {
			return Summary{}, err
		}

		switch outcome.Status {
		case BrowseCancelled:
			c.logger.Debug("selection cancelled")
			c.notice(WarningStyle, NoticeCancelled)
			return Summary{Status: StatusCancelled}, nil

		case BrowseFinished:
			return c.finish(ctx, dest, Aggregate(categories, states))

		case BrowseChosen:
			state, itemsOutcome, err := SelectItems(ctx, c.input, c.renderer, states[outcome.Category])
			if err != nil {
				return Summary{}, err
			}
			states[outcome.Category] = state

			c.logger.Debug("left category",
				slog.String("category", string(outcome.Category)),
				slog.Int("selected", state.SelectedCount),
				slog.Bool("confirmed", itemsOutcome.Status == ItemsConfirmed))

		case BrowsePending:
			// Listen only returns once the browser resolved.
			return Summary{}, fmt.Errorf("category browser ended unresolved")
		}
	}
}

// Aggregate returns every selected item, category by category in the given
// order.
func Aggregate(categories []catalog.Category, states map[catalog.Category]*CategoryMenuState) []catalog.Item {
	var items []catalog.Item
	for _, category := range categories {
		if st, ok := states[category]; ok {
			items = append(items, st.Selected()...)
		}
	}
	return items
}

// finish validates dest and copies items. An empty selection copies nothing.
func (c *Controller) finish(ctx context.Context, dest string, items []catalog.Item) (Summary, error) {
	if len(items) == 0 {
		c.notice(WarningStyle, NoticeNoSelection)
		return Summary{Status: StatusNoSelection}, nil
	}

	target, err := c.guard.Validate(dest)
	if err != nil {
		return Summary{}, err
	}

	c.logger.Debug("copying selection",
		slog.String("destination", target),
		slog.Int("rules", len(items)))

	if err := c.copier.CopySelected(ctx, target, items); err != nil {
		return Summary{}, err
	}

	return Summary{Status: StatusCopied, Destination: target, Items: items}, nil
}

func (c *Controller) notice(style lipgloss.Style, msg string) {
	fmt.Fprintln(c.out, style.Render(msg))
}
