// Package tui is the interactive terminal presenter for manual review.
//
// Each prompt runs its own short-lived bubbletea program so the engine keeps
// control of the loop between entries.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"artreview/internal/multiart"
	"artreview/internal/policy"
)

// Presenter implements policy.Presenter on a terminal.
type Presenter struct {
	input     io.Reader
	output    io.Writer
	keys      KeyMap
	altScreen bool
}

var _ policy.Presenter = (*Presenter)(nil)

// Option configures a Presenter.
type Option func(*Presenter)

// WithIO overrides the terminal streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(p *Presenter) {
		p.input = in
		p.output = out
	}
}

// WithAltScreen runs prompts on the alternate screen buffer.
func WithAltScreen() Option {
	return func(p *Presenter) { p.altScreen = true }
}

// New creates a terminal presenter.
func New(opts ...Option) *Presenter {
	p := &Presenter{input: os.Stdin, output: os.Stdout, keys: DefaultKeyMap()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Choose implements policy.Presenter.
func (p *Presenter) Choose(ctx context.Context, prompt policy.Prompt) (policy.Choice, error) {
	final, err := p.run(ctx, newChooseModel(prompt, p.keys))
	if err != nil {
		return policy.Choice{}, err
	}
	m, ok := final.(chooseModel)
	if !ok || !m.done {
		return policy.Choice{Action: policy.ActionCancel}, nil
	}
	return m.choice, nil
}

// EditWorkingSet implements policy.Presenter.
func (p *Presenter) EditWorkingSet(ctx context.Context, ws *multiart.WorkingSet, prompt policy.Prompt) (bool, error) {
	final, err := p.run(ctx, newEditModel(ws, prompt, p.keys))
	if err != nil {
		return false, err
	}
	m, ok := final.(editModel)
	if !ok {
		return false, nil
	}
	return m.commit, nil
}

func (p *Presenter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(p.input),
		tea.WithOutput(p.output),
	}
	if p.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		// A cancelled context ends the prompt the same way as the cancel key.
		if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
			return final, nil
		}
		return nil, fmt.Errorf("run prompt: %w", err)
	}
	return final, nil
}
