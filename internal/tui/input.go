package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	// ErrInputBusy is returned when a second listener subscribes while one
	// is still active.
	ErrInputBusy = errors.New("input already has an active listener")
	// ErrScriptExhausted is returned by ScriptedInput when its keys run out
	// before the listener resolves.
	ErrScriptExhausted = errors.New("key script exhausted before the menu resolved")
)

// Listener consumes keys until it reports that it is done.
type Listener interface {
	// View renders the current frame.
	View() string
	// HandleKey applies k and reports whether the listener is finished.
	HandleKey(k Key) bool
}

// Input is a source of key events. Listen subscribes l, delivers keys to it
// in order until it is done and unsubscribes it before returning. At most
// one listener is subscribed at a time.
type Input interface {
	Listen(ctx context.Context, l Listener) error
}

// guard enforces a single active subscription.
type guard struct {
	mu     sync.Mutex
	active bool
}

func (g *guard) acquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active {
		return ErrInputBusy
	}
	g.active = true
	return nil
}

func (g *guard) release() {
	g.mu.Lock()
	g.active = false
	g.mu.Unlock()
}

// TerminalInput reads keys from the terminal. Each subscription runs its own
// bubbletea program, which has exited by the time Listen returns.
type TerminalInput struct {
	guard
	opts []tea.ProgramOption
}

// NewTerminalInput creates a TerminalInput; opts are passed to every program.
func NewTerminalInput(opts ...tea.ProgramOption) *TerminalInput {
	return &TerminalInput{opts: opts}
}

// Listen runs one program for l. A program that ends before l resolves,
// because ctx was canceled or the program was killed, is delivered to l as
// KeyCancel.
func (in *TerminalInput) Listen(ctx context.Context, l Listener) error {
	if err := in.acquire(); err != nil {
		return err
	}
	defer in.release()

	model := &listenerModel{listener: l}
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, in.opts...)

	_, err := tea.NewProgram(model, opts...).Run()

	if !model.done {
		l.HandleKey(KeyCancel)
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running menu: %w", err)
	}

	return nil
}

// listenerModel adapts a Listener to a bubbletea model.
type listenerModel struct {
	listener Listener
	done     bool
}

func (m *listenerModel) Init() tea.Cmd {
	return nil
}

func (m *listenerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	k := KeyFromMsg(keyMsg)
	if k == KeyNone {
		return m, nil
	}

	if m.listener.HandleKey(k) {
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *listenerModel) View() string {
	if m.done {
		return ""
	}
	return m.listener.View()
}

// ScriptedInput replays a fixed sequence of keys and records every frame the
// listeners render. The script carries over between subscriptions.
type ScriptedInput struct {
	guard
	keys   []Key
	pos    int
	Frames []string
}

// NewScriptedInput creates an input that will deliver keys in order.
func NewScriptedInput(keys ...Key) *ScriptedInput {
	return &ScriptedInput{keys: keys}
}

// Remaining returns how many scripted keys have not been delivered.
func (s *ScriptedInput) Remaining() int {
	return len(s.keys) - s.pos
}

// Listen delivers scripted keys to l until it resolves.
func (s *ScriptedInput) Listen(_ context.Context, l Listener) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.Frames = append(s.Frames, l.View())

	for s.pos < len(s.keys) {
		k := s.keys[s.pos]
		s.pos++

		if l.HandleKey(k) {
			return nil
		}
		s.Frames = append(s.Frames, l.View())
	}

	return ErrScriptExhausted
}
