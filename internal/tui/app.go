// Package tui implements the keyboard driven rule selection: the category
// browser, the per-category item menus and the controller that joins them.
package tui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the menus when both in and stdout are terminals, and falls back
// to the line based prompt read from in otherwise.
func Run(ctx context.Context, c *Controller, dest string, in io.Reader) (Summary, error) {
	if f, ok := in.(*os.File); ok && isTerminal(f) && IsTerminal() {
		return c.Run(ctx, dest)
	}

	return c.RunText(ctx, dest, in)
}

// NewControllerForTerminal wires a Controller to a terminal reading keys from
// in and drawing on out.
func NewControllerForTerminal(scanner Scanner, copier Copier, guard DestinationValidator, in io.Reader, out io.Writer) *Controller {
	input := NewTerminalInput(tea.WithInput(in), tea.WithOutput(out))
	return NewController(scanner, copier, guard, input).WithOutput(out)
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	return isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
