package tui

// This file provides interactive prompts using Charm Huh.

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// Terminal layout constants.
const (
	// TerminalEdgeMargin is the number of characters to leave between
	// prompt content and the terminal edge.
	TerminalEdgeMargin = 4

	// MinPromptWidth is the minimum usable width for prompt content.
	MinPromptWidth = 40

	// DefaultPromptWidth caps prompts on wide terminals.
	DefaultPromptWidth = 80
)

// Prompter asks the user questions. Commands depend on it so tests can
// answer without a terminal.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(message string, defaultYes bool) (bool, error)
	// Input asks for a single line of text.
	Input(prompt, defaultValue string) (string, error)
}

// HuhPrompter implements Prompter with huh forms.
type HuhPrompter struct {
	// Accessible enables huh's screen reader mode.
	Accessible bool
}

// Compile-time interface check.
var _ Prompter = (*HuhPrompter)(nil)

// NewHuhPrompter creates a prompter. Accessible mode follows the
// ACCESSIBLE environment variable.
func NewHuhPrompter() *HuhPrompter {
	_, accessible := os.LookupEnv("ACCESSIBLE")
	return &HuhPrompter{Accessible: accessible}
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // file descriptors fit in int
}

// Confirm presents a yes/no prompt.
func (p *HuhPrompter) Confirm(message string, defaultYes bool) (bool, error) {
	confirmed := defaultYes

	field := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	if err := p.run(field, "confirm prompt failed"); err != nil {
		return false, err
	}
	return confirmed, nil
}

// Input presents a single-line text prompt.
func (p *HuhPrompter) Input(prompt, defaultValue string) (string, error) {
	value := defaultValue

	field := huh.NewInput().
		Title(prompt).
		Value(&value)

	if err := p.run(field, "input prompt failed"); err != nil {
		return "", err
	}
	return value, nil
}

// run shows a single-field form. It refuses to run without a terminal so
// callers never hang waiting for input that cannot arrive.
func (p *HuhPrompter) run(field huh.Field, errorContext string) error {
	if !IsInteractive() {
		return gberrors.ErrNonInteractiveMode
	}

	CheckNoColor()

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(Theme()).
		WithWidth(promptWidth()).
		WithAccessible(p.Accessible)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return gberrors.ErrOperationCanceled
		}
		return fmt.Errorf("%s: %w", errorContext, err)
	}
	return nil
}

// Theme returns a huh theme using the package colors.
func Theme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorPrimary)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorPrimary)

	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorError)

	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)

	return t
}

// promptWidth adapts the prompt to the terminal, leaving a margin.
func promptWidth() int {
	available := TerminalWidth() - TerminalEdgeMargin
	switch {
	case available < MinPromptWidth:
		return MinPromptWidth
	case available > DefaultPromptWidth:
		return DefaultPromptWidth
	default:
		return available
	}
}
